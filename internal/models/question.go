package models

import "time"

type Question struct {
	ID          int       `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Content     string    `gorm:"not null" json:"content"`
	AuthorID    int       `gorm:"index" json:"author_id"`
	Author      User      `gorm:"foreignKey:AuthorID" json:"author"`
	AnswerCount int       `gorm:"default:0" json:"answer_count"`
	Upvotes     int       `gorm:"default:0" json:"upvotes"`
	Downvotes   int       `gorm:"default:0" json:"downvotes"`
	Views       int       `gorm:"default:0" json:"views"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateQuestionRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}
