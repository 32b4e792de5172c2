package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	UsersCollection    = "user"
	RequestsCollection = "request"
	PaymentsCollection = "payments"
	BlogsCollection    = "blogs"
)

var (
	clientOnce sync.Once
	client     *mongo.Client
	clientErr  error
)

// Connect returns the process-wide client, dialing and pinging it on first use.
// A failed first attempt is cached as well; the process is expected to exit.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	clientOnce.Do(func() {
		client, clientErr = dial(ctx, uri)
	})
	return client, clientErr
}

func dial(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	serverAPI := options.ServerAPI(options.ServerAPIVersion1).
		SetStrict(true).
		SetDeprecationErrors(true)

	c, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := c.Ping(ctx, readpref.Primary()); err != nil {
		_ = c.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return c, nil
}

// Pinger checks store reachability for the health endpoint.
type Pinger struct {
	DB *mongo.Database
}

func (p Pinger) Ping(ctx context.Context) error {
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return p.DB.Client().Ping(checkCtx, readpref.Primary())
}
