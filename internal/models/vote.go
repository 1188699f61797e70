package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vote is a single user's current choice of participant within one category.
// At most one Vote exists per (VoterID, CategoryID).
type Vote struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	VoterID           primitive.ObjectID `bson:"voterId" json:"voterId"`
	VoterHandle       string             `bson:"voterHandle" json:"voterHandle"`
	CategoryID        primitive.ObjectID `bson:"categoryId" json:"categoryId"`
	CategoryName      string             `bson:"categoryName" json:"categoryName"`
	ParticipantHandle string             `bson:"participantHandle" json:"participantHandle"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
}

// CastVotesRequest is the body of POST /votes: categoryId -> participant handle
type CastVotesRequest struct {
	Votes map[string]string `json:"votes"`
}

// VoteMapResponse is returned by the vote endpoints
type VoteMapResponse struct {
	Votes map[string]string `json:"votes"`
}
