package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// ParticipantTally is one ranked row of a category's results
type ParticipantTally struct {
	Participant  string   `json:"participant"`
	VoteCount    int      `json:"voteCount"`
	VoterHandles []string `json:"voterHandles"`
}

// CategoryResults is the ranked standing of a single category
type CategoryResults struct {
	CategoryID   primitive.ObjectID `json:"categoryId"`
	CategoryName string             `json:"categoryName"`
	Results      []ParticipantTally `json:"results"`
	TotalVotes   int                `json:"totalVotes"`
}

// UserVote is one entry of the per-voter breakdown
type UserVote struct {
	CategoryName      string `json:"categoryName"`
	ParticipantHandle string `json:"participantHandle"`
}

// AllResults is the admin view: every category plus votes grouped by voter
type AllResults struct {
	CategoryResults []CategoryResults     `json:"categoryResults"`
	VotesByUser     map[string][]UserVote `json:"userVotes"`
}
