package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a contest participant who can log in and vote
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name           string             `bson:"name" json:"name"`
	Handle         string             `bson:"handle" json:"handle"`
	PasswordHash   string             `bson:"passwordHash" json:"-"`
	HasSetPassword bool               `bson:"hasSetPassword" json:"hasSetPassword"`
	IsAdmin        bool               `bson:"isAdmin" json:"isAdmin"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// PublicUser is the handle-only projection exposed to everyone
type PublicUser struct {
	Handle string `json:"handle"`
}

// CreateUserRequest is the admin payload for pre-registering a user
type CreateUserRequest struct {
	Handle  string `json:"handle" binding:"required"`
	Name    string `json:"name" binding:"required"`
	IsAdmin bool   `json:"isAdmin"`
}

// UpdateUserRequest is the admin payload for editing a user
type UpdateUserRequest struct {
	Name           *string `json:"name"`
	Handle         *string `json:"handle"`
	Password       *string `json:"password"`
	HasSetPassword *bool   `json:"hasSetPassword"`
	IsAdmin        *bool   `json:"isAdmin"`
}
