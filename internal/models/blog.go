package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	BlogDraft     = "draft"
	BlogPublished = "published"
)

type Blog struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title       string             `bson:"title" json:"title"`
	Thumbnail   string             `bson:"thumbnail,omitempty" json:"thumbnail,omitempty"`
	Content     string             `bson:"content" json:"content"`
	Tags        StringList         `bson:"tags,omitempty" json:"tags,omitempty"`
	AuthorEmail string             `bson:"authorEmail" json:"authorEmail"`
	AuthorName  string             `bson:"authorName,omitempty" json:"authorName,omitempty"`
	Status      string             `bson:"status" json:"status"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

func ValidBlogStatus(status string) bool {
	return status == BlogDraft || status == BlogPublished
}
