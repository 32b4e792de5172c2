package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DonationPending    = "pending"
	DonationInProgress = "inprogress"
	DonationDone       = "done"
	DonationCanceled   = "canceled"
)

// DonationRequest is a call for blood posted by a requester. Donor fields
// stay empty until someone claims the request.
type DonationRequest struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	RequesterName     string             `bson:"requesterName" json:"requesterName"`
	RequesterEmail    string             `bson:"requesterEmail" json:"requesterEmail"`
	RecipientName     string             `bson:"recipientName" json:"recipientName"`
	RecipientDistrict string             `bson:"recipientDistrict" json:"recipientDistrict"`
	RecipientUpazila  string             `bson:"recipientUpazila" json:"recipientUpazila"`
	HospitalName      string             `bson:"hospitalName" json:"hospitalName"`
	FullAddress       string             `bson:"fullAddress" json:"fullAddress"`
	BloodGroup        string             `bson:"bloodGroup" json:"bloodGroup"`
	DonationDate      string             `bson:"donationDate" json:"donationDate"`
	DonationTime      string             `bson:"donationTime" json:"donationTime"`
	RequestMessage    string             `bson:"requestMessage,omitempty" json:"requestMessage,omitempty"`
	DonorName         string             `bson:"donorName,omitempty" json:"donorName,omitempty"`
	DonorEmail        string             `bson:"donorEmail,omitempty" json:"donorEmail,omitempty"`
	DonationStatus    string             `bson:"donationStatus" json:"donationStatus"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
}

func ValidDonationStatus(status string) bool {
	switch status {
	case DonationPending, DonationInProgress, DonationDone, DonationCanceled:
		return true
	}
	return false
}
