package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SuggestionStatus is the review state of a category suggestion
type SuggestionStatus string

const (
	SuggestionPending  SuggestionStatus = "pending"
	SuggestionApproved SuggestionStatus = "approved"
	SuggestionRejected SuggestionStatus = "rejected"
)

// Valid reports whether s is a known status
func (s SuggestionStatus) Valid() bool {
	switch s {
	case SuggestionPending, SuggestionApproved, SuggestionRejected:
		return true
	}
	return false
}

// CategorySuggestion is a category proposed by anyone before the contest starts
type CategorySuggestion struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	SuggesterName string             `bson:"suggesterName" json:"suggesterName"`
	CategoryName  string             `bson:"categoryName" json:"categoryName"`
	Participants  []string           `bson:"participants" json:"participants"`
	Observations  string             `bson:"observations,omitempty" json:"observations,omitempty"`
	Status        SuggestionStatus   `bson:"status" json:"status"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}

// CreateSuggestionRequest is the public payload for a new suggestion
type CreateSuggestionRequest struct {
	SuggesterName string   `json:"suggesterName" binding:"required"`
	CategoryName  string   `json:"categoryName" binding:"required"`
	Participants  []string `json:"participants"`
	Observations  string   `json:"observations"`
}

// AddParticipantsRequest appends handles to an existing suggestion
type AddParticipantsRequest struct {
	Participants []string `json:"participants"`
}

// UpdateSuggestionRequest is the admin edit payload; nil fields are left as they are
type UpdateSuggestionRequest struct {
	SuggesterName *string           `json:"suggesterName"`
	CategoryName  *string           `json:"categoryName"`
	Participants  *[]string         `json:"participants"`
	Observations  *string           `json:"observations"`
	Status        *SuggestionStatus `json:"status"`
}
