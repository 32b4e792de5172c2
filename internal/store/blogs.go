package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"blooddonation/internal/database"
	"blooddonation/internal/models"
)

type Blogs struct {
	c *mongo.Collection
}

func NewBlogs(db *mongo.Database) *Blogs {
	return &Blogs{c: db.Collection(database.BlogsCollection)}
}

type BlogQuery struct {
	Status      string
	AuthorEmail string
	Page
}

func (q BlogQuery) Filter() bson.M {
	filter := bson.M{}
	if q.Status != "" {
		filter["status"] = q.Status
	}
	if q.AuthorEmail != "" {
		filter["authorEmail"] = q.AuthorEmail
	}
	return filter
}

func (s *Blogs) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Blog, error) {
	var b models.Blog
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&b); err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (s *Blogs) List(ctx context.Context, q BlogQuery) ([]models.Blog, int64, error) {
	filter := q.Filter()

	total, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	cursor, err := s.c.Find(ctx, filter, q.newestFirst())
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	blogs := make([]models.Blog, 0)
	if err := cursor.All(ctx, &blogs); err != nil {
		return nil, 0, err
	}
	return blogs, total, nil
}

func (s *Blogs) Count(ctx context.Context, q BlogQuery) (int64, error) {
	return s.c.CountDocuments(ctx, q.Filter())
}

func (s *Blogs) Insert(ctx context.Context, b models.Blog) (*mongo.InsertOneResult, error) {
	return s.c.InsertOne(ctx, b)
}

func (s *Blogs) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (*mongo.UpdateResult, error) {
	return s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": status}})
}

func (s *Blogs) Delete(ctx context.Context, id primitive.ObjectID) (*mongo.DeleteResult, error) {
	return s.c.DeleteOne(ctx, bson.M{"_id": id})
}
