package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noorhashem/devflow-backend/internal/logger"
	"github.com/noorhashem/devflow-backend/internal/models"
)

type QuestionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, question *models.Question) error
	GetByID(ctx context.Context, tx *gorm.DB, id int) (*models.Question, error)
	ListRecent(ctx context.Context, tx *gorm.DB, limit, offset int) ([]models.Question, error)
	// AdjustAnswerCount applies an atomic in-place delta to answer_count.
	// A negative delta is guarded so the counter never goes below zero.
	// Returns the number of rows updated (0 when the question is gone).
	AdjustAnswerCount(ctx context.Context, tx *gorm.DB, id, delta int) (int64, error)
	IncrementViews(ctx context.Context, tx *gorm.DB, id int) error
}

type questionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuestionRepo {
	return &questionRepo{db: db, log: baseLog.With("repo", "QuestionRepo")}
}

func (qr *questionRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return qr.db
}

func (qr *questionRepo) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	return qr.conn(tx).WithContext(ctx).Create(question).Error
}

func (qr *questionRepo) GetByID(ctx context.Context, tx *gorm.DB, id int) (*models.Question, error) {
	var question models.Question
	if err := qr.conn(tx).WithContext(ctx).
		Preload("Author").
		First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (qr *questionRepo) ListRecent(ctx context.Context, tx *gorm.DB, limit, offset int) ([]models.Question, error) {
	var questions []models.Question
	if err := qr.conn(tx).WithContext(ctx).
		Preload("Author").
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (qr *questionRepo) AdjustAnswerCount(ctx context.Context, tx *gorm.DB, id, delta int) (int64, error) {
	query := qr.conn(tx).WithContext(ctx).
		Model(&models.Question{}).
		Where("id = ?", id)
	if delta < 0 {
		query = query.Where("answer_count >= ?", -delta)
	}
	result := query.UpdateColumn("answer_count", gorm.Expr("answer_count + ?", delta))
	return result.RowsAffected, result.Error
}

func (qr *questionRepo) IncrementViews(ctx context.Context, tx *gorm.DB, id int) error {
	return qr.conn(tx).WithContext(ctx).
		Model(&models.Question{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}
