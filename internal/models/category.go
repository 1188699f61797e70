package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Participant is a nominee inside a category
type Participant struct {
	Handle   string `bson:"handle" json:"handle"`
	ImageRef string `bson:"imageRef,omitempty" json:"imageRef,omitempty"`
}

// Category represents a named award with its participant list
type Category struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name         string             `bson:"name" json:"name"`
	Participants []Participant      `bson:"participants" json:"participants"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// HasParticipant reports whether handle is nominated in the category
func (c *Category) HasParticipant(handle string) bool {
	for _, p := range c.Participants {
		if p.Handle == handle {
			return true
		}
	}
	return false
}

// StructureOnly returns a copy of the category without its participants.
// Used for the public view while categories are still being chosen.
func (c *Category) StructureOnly() *Category {
	return &Category{
		ID:           c.ID,
		Name:         c.Name,
		Participants: []Participant{},
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// CategoryRequest is the admin payload for creating or editing a category
type CategoryRequest struct {
	Name         *string        `json:"name"`
	Participants *[]Participant `json:"participants"`
}
