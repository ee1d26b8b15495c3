package models

import "time"

// InteractionRecord is an append-only activity log entry written outside the
// primary transaction. It is advisory telemetry: losing one never invalidates
// a question or answer.
type InteractionRecord struct {
	ID         int       `gorm:"primaryKey" json:"id"`
	ActorID    int       `gorm:"index" json:"actor_id"`
	Verb       string    `gorm:"not null" json:"verb"`
	TargetType string    `json:"target_type"`
	TargetID   int       `json:"target_id"`
	CreatedAt  time.Time `json:"created_at"`
}
