package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noorhashem/devflow-backend/internal/logger"
	"github.com/noorhashem/devflow-backend/internal/models"
)

type AnswerRepo interface {
	Create(ctx context.Context, tx *gorm.DB, answer *models.Answer) error
	GetByID(ctx context.Context, tx *gorm.DB, id int) (*models.Answer, error)
	// Delete removes an answer by id and reports how many rows went away,
	// so callers can tell a no-op delete from a successful one.
	Delete(ctx context.Context, tx *gorm.DB, id int) (int64, error)
	CountByQuestion(ctx context.Context, tx *gorm.DB, questionID int) (int64, error)
	// ListByQuestion returns one window of answers for a question, author
	// preloaded, ordered by the given SQL order clause.
	ListByQuestion(ctx context.Context, tx *gorm.DB, questionID int, order string, offset, limit int) ([]models.Answer, error)
}

type answerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnswerRepo(db *gorm.DB, baseLog *logger.Logger) AnswerRepo {
	return &answerRepo{db: db, log: baseLog.With("repo", "AnswerRepo")}
}

func (ar *answerRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return ar.db
}

func (ar *answerRepo) Create(ctx context.Context, tx *gorm.DB, answer *models.Answer) error {
	return ar.conn(tx).WithContext(ctx).Create(answer).Error
}

func (ar *answerRepo) GetByID(ctx context.Context, tx *gorm.DB, id int) (*models.Answer, error) {
	var answer models.Answer
	if err := ar.conn(tx).WithContext(ctx).First(&answer, id).Error; err != nil {
		return nil, err
	}
	return &answer, nil
}

func (ar *answerRepo) Delete(ctx context.Context, tx *gorm.DB, id int) (int64, error) {
	result := ar.conn(tx).WithContext(ctx).Delete(&models.Answer{}, id)
	return result.RowsAffected, result.Error
}

func (ar *answerRepo) CountByQuestion(ctx context.Context, tx *gorm.DB, questionID int) (int64, error) {
	var count int64
	if err := ar.conn(tx).WithContext(ctx).
		Model(&models.Answer{}).
		Where("question_id = ?", questionID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (ar *answerRepo) ListByQuestion(ctx context.Context, tx *gorm.DB, questionID int, order string, offset, limit int) ([]models.Answer, error) {
	var answers []models.Answer
	if err := ar.conn(tx).WithContext(ctx).
		Where("question_id = ?", questionID).
		Preload("Author").
		Order(order).
		Offset(offset).
		Limit(limit).
		Find(&answers).Error; err != nil {
		return nil, err
	}
	return answers, nil
}
