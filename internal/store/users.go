package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"blooddonation/internal/database"
	"blooddonation/internal/models"
)

type Users struct {
	c *mongo.Collection
}

func NewUsers(db *mongo.Database) *Users {
	return &Users{c: db.Collection(database.UsersCollection)}
}

// FindByEmail returns ErrNotFound when no user has the email.
func (s *Users) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// Insert writes a new user. The unique email index turns a racing duplicate
// registration into ErrDuplicate.
func (s *Users) Insert(ctx context.Context, u models.User) (*mongo.InsertOneResult, error) {
	res, err := s.c.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return nil, ErrDuplicate
	}
	return res, err
}

type UserQuery struct {
	Status string
	Page
}

func (q UserQuery) filter() bson.M {
	filter := bson.M{}
	if q.Status != "" {
		filter["status"] = q.Status
	}
	return filter
}

// List returns one page of users plus the total for the same filter.
func (s *Users) List(ctx context.Context, q UserQuery) ([]models.User, int64, error) {
	filter := q.filter()

	total, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	cursor, err := s.c.Find(ctx, filter, q.newestFirst())
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	users := make([]models.User, 0)
	if err := cursor.All(ctx, &users); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// CountByRole counts users with the role, or all users when role is empty.
func (s *Users) CountByRole(ctx context.Context, role string) (int64, error) {
	filter := bson.M{}
	if role != "" {
		filter["role"] = role
	}
	return s.c.CountDocuments(ctx, filter)
}

func (s *Users) UpdateStatus(ctx context.Context, email, status string) (*mongo.UpdateResult, error) {
	return s.c.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": bson.M{"status": status}})
}

func (s *Users) UpdateRole(ctx context.Context, email, role string) (*mongo.UpdateResult, error) {
	return s.c.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": bson.M{"role": role}})
}

// ProfileUpdate carries the self-editable profile fields. Nil means unchanged.
type ProfileUpdate struct {
	Name       *string
	PhotoURL   *string
	BloodGroup *string
	District   *string
	Upazila    *string
}

func (u ProfileUpdate) Set() bson.M {
	return setFields(map[string]*string{
		"name":       u.Name,
		"photoURL":   u.PhotoURL,
		"bloodGroup": u.BloodGroup,
		"district":   u.District,
		"upazila":    u.Upazila,
	})
}

func (s *Users) UpdateProfile(ctx context.Context, email string, u ProfileUpdate) (*mongo.UpdateResult, error) {
	return s.c.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": u.Set()})
}

// DonorQuery narrows a donor search. Empty fields are not matched.
type DonorQuery struct {
	BloodGroup string
	District   string
	Upazila    string
}

// Filter always restricts to active donors.
func (q DonorQuery) Filter() bson.M {
	filter := bson.M{
		"role":   models.RoleDonor,
		"status": models.StatusActive,
	}
	if q.BloodGroup != "" {
		filter["bloodGroup"] = q.BloodGroup
	}
	if q.District != "" {
		filter["district"] = q.District
	}
	if q.Upazila != "" {
		filter["upazila"] = q.Upazila
	}
	return filter
}

func (s *Users) SearchDonors(ctx context.Context, q DonorQuery) ([]models.User, error) {
	cursor, err := s.c.Find(ctx, q.Filter(), Page{}.newestFirst())
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	donors := make([]models.User, 0)
	if err := cursor.All(ctx, &donors); err != nil {
		return nil, err
	}
	return donors, nil
}
