package models

import "time"

const (
	RoleStudent        = "student"
	RoleInstituteAdmin = "institute-admin"
	RoleAdmin          = "admin"
)

type User struct {
	ID            string    `bson:"_id,omitempty" json:"id"`
	Name          string    `bson:"name" json:"name"`
	Email         string    `bson:"email" json:"email"`
	Password      string    `bson:"password,omitempty" json:"-"`
	Role          string    `bson:"role" json:"role"`
	RollNumber    string    `bson:"rollNumber,omitempty" json:"rollNumber,omitempty"`
	Grade         string    `bson:"grade,omitempty" json:"grade,omitempty"`
	Institute     string    `bson:"institute,omitempty" json:"institute,omitempty"`
	InstituteName string    `bson:"instituteName,omitempty" json:"instituteName,omitempty"`
	Address       string    `bson:"address,omitempty" json:"address,omitempty"`
	ContactNumber string    `bson:"contactNumber,omitempty" json:"contactNumber,omitempty"`
	CreatedBy     string    `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
}

func ValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleInstituteAdmin, RoleAdmin:
		return true
	}
	return false
}
