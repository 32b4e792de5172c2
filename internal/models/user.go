package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleDonor     = "donor"
	RoleVolunteer = "volunteer"
	RoleAdmin     = "admin"

	StatusActive  = "active"
	StatusBlocked = "blocked"
)

// User is a registered platform member. Email is the business key.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Email      string             `bson:"email" json:"email"`
	Name       string             `bson:"name" json:"name"`
	PhotoURL   string             `bson:"photoURL,omitempty" json:"photoURL,omitempty"`
	BloodGroup string             `bson:"bloodGroup,omitempty" json:"bloodGroup,omitempty"`
	District   string             `bson:"district,omitempty" json:"district,omitempty"`
	Upazila    string             `bson:"upazila,omitempty" json:"upazila,omitempty"`
	Role       string             `bson:"role" json:"role"`
	Status     string             `bson:"status" json:"status"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

func ValidRole(role string) bool {
	switch role {
	case RoleDonor, RoleVolunteer, RoleAdmin:
		return true
	}
	return false
}

func ValidUserStatus(status string) bool {
	return status == StatusActive || status == StatusBlocked
}

// IsStaff reports whether the role may moderate requests and blogs.
func IsStaff(role string) bool {
	return role == RoleAdmin || role == RoleVolunteer
}
