package models

import "time"

// Vote target types. Votes are polymorphic over questions and answers.
const (
	TargetQuestion = "question"
	TargetAnswer   = "answer"
)

// Vote directions.
const (
	VoteUp   = "up"
	VoteDown = "down"
)

// Vote - tracks individual user votes on questions and answers.
// One vote per (voter, target) pair.
type Vote struct {
	ID         int       `gorm:"primaryKey" json:"id"`
	VoterID    int       `gorm:"uniqueIndex:idx_votes_voter_target" json:"voter_id"`
	TargetID   int       `gorm:"uniqueIndex:idx_votes_voter_target" json:"target_id"`
	TargetType string    `gorm:"uniqueIndex:idx_votes_voter_target" json:"target_type"`
	Direction  string    `gorm:"not null" json:"direction"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
