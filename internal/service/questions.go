package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/noorhashem/devflow-backend/internal/apperr"
	"github.com/noorhashem/devflow-backend/internal/logger"
	"github.com/noorhashem/devflow-backend/internal/models"
	"github.com/noorhashem/devflow-backend/internal/repository"
)

// QuestionService covers the question read surface plus creation. Question
// deletion is not exposed; the answer cascade is the only delete path.
type QuestionService struct {
	db        *gorm.DB
	questions repository.QuestionRepo
	log       *logger.Logger
}

func NewQuestionService(db *gorm.DB, questions repository.QuestionRepo, baseLog *logger.Logger) *QuestionService {
	return &QuestionService{
		db:        db,
		questions: questions,
		log:       baseLog.With("service", "QuestionService"),
	}
}

func (s *QuestionService) Create(ctx context.Context, actorID int, title, content string) (*models.Question, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" {
		return nil, apperr.Validation("title must not be empty")
	}
	if content == "" {
		return nil, apperr.Validation("content must not be empty")
	}

	question := &models.Question{
		Title:    title,
		Content:  content,
		AuthorID: actorID,
	}
	if err := s.questions.Create(ctx, nil, question); err != nil {
		return nil, apperr.WriteFailed("question", err)
	}
	return question, nil
}

// Get loads a question and bumps its view counter. The bump is a single
// atomic update, not a transaction - a lost view is harmless.
func (s *QuestionService) Get(ctx context.Context, id int) (*models.Question, error) {
	if id <= 0 {
		return nil, apperr.Validation("invalid question id")
	}

	if err := s.questions.IncrementViews(ctx, nil, id); err != nil {
		s.log.Warn("failed to increment views", "question_id", id, "error", err)
	}

	question, err := s.questions.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("question")
		}
		return nil, apperr.New(apperr.KindWriteFailed, "failed to load question", err)
	}
	return question, nil
}

func (s *QuestionService) ListRecent(ctx context.Context, page, pageSize int) ([]models.Question, error) {
	if page < 1 {
		page = defaultPage
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	questions, err := s.questions.ListRecent(ctx, nil, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, apperr.New(apperr.KindWriteFailed, "failed to list questions", err)
	}
	if questions == nil {
		questions = []models.Question{}
	}
	return questions, nil
}
