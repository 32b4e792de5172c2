package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"blooddonation/internal/database"
	"blooddonation/internal/models"
)

type Payments struct {
	c *mongo.Collection
}

func NewPayments(db *mongo.Database) *Payments {
	return &Payments{c: db.Collection(database.PaymentsCollection)}
}

func (s *Payments) FindByTransactionID(ctx context.Context, txID string) (*models.Payment, error) {
	var p models.Payment
	if err := s.c.FindOne(ctx, bson.M{"transactionId": txID}).Decode(&p); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// Record stores p unless a payment with the same transaction id exists, in
// which case the stored one is returned and created is false. The unique
// transactionId index settles races between concurrent callbacks: the loser's
// insert fails with a duplicate key and falls back to the lookup.
func (s *Payments) Record(ctx context.Context, p models.Payment) (models.Payment, bool, error) {
	existing, err := s.FindByTransactionID(ctx, p.TransactionID)
	if err == nil {
		return *existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return models.Payment{}, false, err
	}

	res, err := s.c.InsertOne(ctx, p)
	if mongo.IsDuplicateKeyError(err) {
		existing, err := s.FindByTransactionID(ctx, p.TransactionID)
		if err != nil {
			return models.Payment{}, false, err
		}
		return *existing, false, nil
	}
	if err != nil {
		return models.Payment{}, false, err
	}

	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = id
	}
	return p, true, nil
}

func (s *Payments) List(ctx context.Context, page Page) ([]models.Payment, int64, error) {
	total, err := s.c.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}

	opts := page.newestFirst().SetSort(bson.D{{Key: "paidAt", Value: -1}})
	cursor, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	payments := make([]models.Payment, 0)
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

// TotalAmount sums every recorded payment amount.
func (s *Payments) TotalAmount(ctx context.Context) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$amount"},
		}}},
	}

	cursor, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}
