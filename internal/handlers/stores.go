package handlers

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"blooddonation/internal/models"
	"blooddonation/internal/store"
)

type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Insert(ctx context.Context, u models.User) (*mongo.InsertOneResult, error)
	List(ctx context.Context, q store.UserQuery) ([]models.User, int64, error)
	CountByRole(ctx context.Context, role string) (int64, error)
	UpdateStatus(ctx context.Context, email, status string) (*mongo.UpdateResult, error)
	UpdateRole(ctx context.Context, email, role string) (*mongo.UpdateResult, error)
	UpdateProfile(ctx context.Context, email string, u store.ProfileUpdate) (*mongo.UpdateResult, error)
	SearchDonors(ctx context.Context, q store.DonorQuery) ([]models.User, error)
}

type RequestStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.DonationRequest, error)
	List(ctx context.Context, q store.RequestQuery) ([]models.DonationRequest, int64, error)
	Recent(ctx context.Context, email string, n int64) ([]models.DonationRequest, error)
	Insert(ctx context.Context, r models.DonationRequest) (*mongo.InsertOneResult, error)
	Update(ctx context.Context, id primitive.ObjectID, u store.RequestUpdate) (*mongo.UpdateResult, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (*mongo.UpdateResult, error)
	Claim(ctx context.Context, id primitive.ObjectID, donorName, donorEmail string) (*mongo.UpdateResult, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*mongo.DeleteResult, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
}

type PaymentStore interface {
	Record(ctx context.Context, p models.Payment) (models.Payment, bool, error)
	List(ctx context.Context, page store.Page) ([]models.Payment, int64, error)
	TotalAmount(ctx context.Context) (float64, error)
}

type BlogStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Blog, error)
	List(ctx context.Context, q store.BlogQuery) ([]models.Blog, int64, error)
	Count(ctx context.Context, q store.BlogQuery) (int64, error)
	Insert(ctx context.Context, b models.Blog) (*mongo.InsertOneResult, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (*mongo.UpdateResult, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*mongo.DeleteResult, error)
}

// Pinger reports whether the document store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
