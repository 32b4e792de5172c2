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

type Requests struct {
	c *mongo.Collection
}

func NewRequests(db *mongo.Database) *Requests {
	return &Requests{c: db.Collection(database.RequestsCollection)}
}

type RequestQuery struct {
	RequesterEmail string
	Status         string
	Page
}

func (q RequestQuery) Filter() bson.M {
	filter := bson.M{}
	if q.RequesterEmail != "" {
		filter["requesterEmail"] = q.RequesterEmail
	}
	if q.Status != "" {
		filter["donationStatus"] = q.Status
	}
	return filter
}

func (s *Requests) FindByID(ctx context.Context, id primitive.ObjectID) (*models.DonationRequest, error) {
	var r models.DonationRequest
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

// List returns a page of requests, newest first, and the count for the whole
// filter. The two reads are not a snapshot.
func (s *Requests) List(ctx context.Context, q RequestQuery) ([]models.DonationRequest, int64, error) {
	filter := q.Filter()

	total, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	requests, err := s.find(ctx, filter, q.Page)
	if err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

// Recent returns the requester's n newest requests.
func (s *Requests) Recent(ctx context.Context, email string, n int64) ([]models.DonationRequest, error) {
	return s.find(ctx, bson.M{"requesterEmail": email}, Page{Limit: n})
}

func (s *Requests) find(ctx context.Context, filter bson.M, page Page) ([]models.DonationRequest, error) {
	cursor, err := s.c.Find(ctx, filter, page.newestFirst())
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	requests := make([]models.DonationRequest, 0)
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

func (s *Requests) Insert(ctx context.Context, r models.DonationRequest) (*mongo.InsertOneResult, error) {
	return s.c.InsertOne(ctx, r)
}

// RequestUpdate carries editable request fields. Nil means unchanged.
type RequestUpdate struct {
	RecipientName     *string
	RecipientDistrict *string
	RecipientUpazila  *string
	HospitalName      *string
	FullAddress       *string
	BloodGroup        *string
	DonationDate      *string
	DonationTime      *string
	RequestMessage    *string
}

func (u RequestUpdate) Set() bson.M {
	return setFields(map[string]*string{
		"recipientName":     u.RecipientName,
		"recipientDistrict": u.RecipientDistrict,
		"recipientUpazila":  u.RecipientUpazila,
		"hospitalName":      u.HospitalName,
		"fullAddress":       u.FullAddress,
		"bloodGroup":        u.BloodGroup,
		"donationDate":      u.DonationDate,
		"donationTime":      u.DonationTime,
		"requestMessage":    u.RequestMessage,
	})
}

func (s *Requests) Update(ctx context.Context, id primitive.ObjectID, u RequestUpdate) (*mongo.UpdateResult, error) {
	return s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": u.Set()})
}

func (s *Requests) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (*mongo.UpdateResult, error) {
	return s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"donationStatus": status}})
}

// Claim assigns a donor only while the request is still pending, so of two
// concurrent claims exactly one matches. It returns ErrNotFound or
// ErrNotPending when nothing was updated.
func (s *Requests) Claim(ctx context.Context, id primitive.ObjectID, donorName, donorEmail string) (*mongo.UpdateResult, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "donationStatus": models.DonationPending},
		bson.M{"$set": bson.M{
			"donorName":      donorName,
			"donorEmail":     donorEmail,
			"donationStatus": models.DonationInProgress,
		}},
	)
	if err != nil {
		return nil, err
	}
	if res.MatchedCount > 0 {
		return res, nil
	}

	if _, err := s.FindByID(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return nil, ErrNotPending
}

func (s *Requests) Delete(ctx context.Context, id primitive.ObjectID) (*mongo.DeleteResult, error) {
	return s.c.DeleteOne(ctx, bson.M{"_id": id})
}

// CountByStatus counts requests in the status, or all requests when empty.
func (s *Requests) CountByStatus(ctx context.Context, status string) (int64, error) {
	return s.c.CountDocuments(ctx, RequestQuery{Status: status}.Filter())
}
