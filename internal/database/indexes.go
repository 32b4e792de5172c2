package database

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// EnsureAll creates every index the stores rely on. Failures are collected so
// one bad collection does not hide the others.
func EnsureAll(db *mongo.Database, log *zap.Logger) error {
	return errors.Join(
		EnsureUserIndexes(db, log),
		EnsureRequestIndexes(db, log),
		EnsurePaymentIndexes(db, log),
		EnsureBlogIndexes(db, log),
	)
}

func EnsureUserIndexes(db *mongo.Database, log *zap.Logger) error {
	return ensure(db, log, UsersCollection, mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName("email_unique").
			SetUnique(true),
	}, mongo.IndexModel{
		Keys:    bson.D{{Key: "role", Value: 1}, {Key: "status", Value: 1}, {Key: "bloodGroup", Value: 1}},
		Options: options.Index().SetName("donor_search"),
	})
}

func EnsureRequestIndexes(db *mongo.Database, log *zap.Logger) error {
	return ensure(db, log, RequestsCollection, mongo.IndexModel{
		Keys:    bson.D{{Key: "requesterEmail", Value: 1}, {Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("requester_recent"),
	}, mongo.IndexModel{
		Keys:    bson.D{{Key: "donationStatus", Value: 1}, {Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("status_recent"),
	})
}

// EnsurePaymentIndexes makes transactionId unique so concurrent confirmation
// callbacks cannot record the same payment twice.
func EnsurePaymentIndexes(db *mongo.Database, log *zap.Logger) error {
	return ensure(db, log, PaymentsCollection, mongo.IndexModel{
		Keys: bson.D{{Key: "transactionId", Value: 1}},
		Options: options.Index().
			SetName("transactionId_unique").
			SetUnique(true),
	})
}

func EnsureBlogIndexes(db *mongo.Database, log *zap.Logger) error {
	return ensure(db, log, BlogsCollection, mongo.IndexModel{
		Keys:    bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("status_recent"),
	})
}

func ensure(db *mongo.Database, log *zap.Logger, collection string, models ...mongo.IndexModel) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	names, err := db.Collection(collection).Indexes().CreateMany(ctx, models)
	if err != nil {
		log.Error("index creation failed", zap.String("collection", collection), zap.Error(err))
		return err
	}
	log.Info("indexes ensured", zap.String("collection", collection), zap.Strings("indexes", names))
	return nil
}
