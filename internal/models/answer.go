package models

import "time"

type Answer struct {
	ID         int       `gorm:"primaryKey" json:"id"`
	QuestionID int       `gorm:"index;not null" json:"question_id"`
	AuthorID   int       `gorm:"index" json:"author_id"`
	Author     User      `gorm:"foreignKey:AuthorID" json:"author"`
	Content    string    `gorm:"not null" json:"content"`
	Upvotes    int       `gorm:"default:0" json:"upvotes"`
	Downvotes  int       `gorm:"default:0" json:"downvotes"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type CreateAnswerRequest struct {
	Content string `json:"content" binding:"required"`
}

// AnswerPage is the result of a paginated answer listing.
type AnswerPage struct {
	Items      []Answer `json:"items"`
	HasNext    bool     `json:"has_next"`
	TotalCount int64    `json:"total_count"`
}
