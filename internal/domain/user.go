package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

const (
	RoleOwner Role = "owner" // gym owner, full access
	RoleStaff Role = "staff" // front desk, cannot manage the exercise catalog
)

// User is a person who signs in to manage the gym. Members themselves do not log in.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // Should be unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role         Role               `bson:"role" json:"role"`
	GymName      string             `bson:"gymName,omitempty" json:"gymName,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) IsOwner() bool {
	return u.Role == RoleOwner
}
