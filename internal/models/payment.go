package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AnonymousDonor is recorded when checkout metadata carries no donor name.
const AnonymousDonor = "Anonymous"

// Payment is a confirmed donation to the platform fund. TransactionID holds
// the gateway payment-intent id and is unique across the collection.
type Payment struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Amount        float64            `bson:"amount" json:"amount"`
	DonorEmail    string             `bson:"donorEmail" json:"donorEmail"`
	DonorName     string             `bson:"donorName" json:"donorName"`
	TransactionID string             `bson:"transactionId" json:"transactionId"`
	PaidAt        time.Time          `bson:"paidAt" json:"paidAt"`
}
