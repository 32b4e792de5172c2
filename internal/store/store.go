// Package store holds the Mongo-backed collections. Methods return the
// driver's mutation results unchanged so handlers can echo them.
package store

import (
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrDuplicate  = errors.New("duplicate key")
	ErrInvalidID  = errors.New("invalid id")
	ErrNotPending = errors.New("request is no longer pending")
)

// ParseID converts a hex path parameter into an ObjectID.
func ParseID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(hex))
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return id, nil
}

// Page is a skip/limit window. A zero Limit returns everything.
type Page struct {
	Skip  int64
	Limit int64
}

// newestFirst sorts by createdAt descending and applies the page window.
func (p Page) newestFirst() *options.FindOptions {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if p.Skip > 0 {
		opts.SetSkip(p.Skip)
	}
	if p.Limit > 0 {
		opts.SetLimit(p.Limit)
	}
	return opts
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

// setFields builds a $set document from the non-nil pointers in fields.
func setFields(fields map[string]*string) bson.M {
	set := bson.M{}
	for key, value := range fields {
		if value != nil {
			set[key] = strings.TrimSpace(*value)
		}
	}
	return set
}
