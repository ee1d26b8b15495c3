package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/noorhashem/devflow-backend/internal/apperr"
	"github.com/noorhashem/devflow-backend/internal/cache"
	"github.com/noorhashem/devflow-backend/internal/logger"
	"github.com/noorhashem/devflow-backend/internal/models"
	"github.com/noorhashem/devflow-backend/internal/repository"
)

const (
	defaultPage     = 1
	defaultPageSize = 10
	maxPageSize     = 100
)

// TaskQueue schedules best-effort work for after the current transaction has
// committed. Satisfied by *dispatch.Dispatcher.
type TaskQueue interface {
	Enqueue(name string, fn func(context.Context) error)
}

// AnswerService owns the answer aggregate: every mutation of an answer, of
// the votes targeting it, and of its question's answer_count goes through one
// transaction here. Nothing else writes answer_count.
type AnswerService struct {
	db           *gorm.DB
	questions    repository.QuestionRepo
	answers      repository.AnswerRepo
	votes        repository.VoteRepo
	interactions repository.InteractionRepo
	queue        TaskQueue
	invalidator  cache.Invalidator
	log          *logger.Logger
}

func NewAnswerService(
	db *gorm.DB,
	questions repository.QuestionRepo,
	answers repository.AnswerRepo,
	votes repository.VoteRepo,
	interactions repository.InteractionRepo,
	queue TaskQueue,
	invalidator cache.Invalidator,
	baseLog *logger.Logger,
) *AnswerService {
	return &AnswerService{
		db:           db,
		questions:    questions,
		answers:      answers,
		votes:        votes,
		interactions: interactions,
		queue:        queue,
		invalidator:  invalidator,
		log:          baseLog.With("service", "AnswerService"),
	}
}

// Create inserts an answer and increments the question's answer_count in one
// transaction. The interaction log entry and the cache invalidation are
// enqueued only after commit and never affect the returned result.
func (s *AnswerService) Create(ctx context.Context, actorID, questionID int, content string) (*models.Answer, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Validation("content must not be empty")
	}
	if questionID <= 0 {
		return nil, apperr.Validation("invalid question id")
	}

	var created *models.Answer
	err := runInTransaction(ctx, s.db, s.log, func(tx *gorm.DB) error {
		if _, err := s.questions.GetByID(ctx, tx, questionID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("question")
			}
			return apperr.New(apperr.KindWriteFailed, "failed to load question", err)
		}

		// Built fresh on every attempt so a retried transaction does not
		// reuse the id assigned by a rolled-back insert.
		answer := &models.Answer{
			QuestionID: questionID,
			AuthorID:   actorID,
			Content:    content,
		}
		if err := s.answers.Create(ctx, tx, answer); err != nil {
			if isWriteConflict(err) {
				return apperr.WriteConflict(err)
			}
			return apperr.WriteFailed("answer", err)
		}

		if _, err := s.questions.AdjustAnswerCount(ctx, tx, questionID, 1); err != nil {
			if isWriteConflict(err) {
				return apperr.WriteConflict(err)
			}
			return apperr.WriteFailed("question counter", err)
		}

		created = answer
		return nil
	})
	if err != nil {
		return nil, err
	}

	answerID := created.ID
	s.queue.Enqueue("interaction:post:answer", func(ctx context.Context) error {
		return s.interactions.Create(ctx, &models.InteractionRecord{
			ActorID:    actorID,
			Verb:       "post",
			TargetType: models.TargetAnswer,
			TargetID:   answerID,
		})
	})
	s.queue.Enqueue("cache:invalidate:question", func(ctx context.Context) error {
		s.invalidator.InvalidateQuestion(ctx, questionID)
		return nil
	})

	return created, nil
}

// List returns one page of a question's answers with the author joined.
// The count and window queries are not synchronized, so has_next can be off
// by one under concurrent writes.
func (s *AnswerService) List(ctx context.Context, questionID, page, pageSize int, filter Filter) (*models.AnswerPage, error) {
	if questionID <= 0 {
		return nil, apperr.Validation("invalid question id")
	}
	if page < 1 {
		page = defaultPage
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	offset := (page - 1) * pageSize

	total, err := s.answers.CountByQuestion(ctx, nil, questionID)
	if err != nil {
		return nil, apperr.New(apperr.KindWriteFailed, "failed to count answers", err)
	}

	items, err := s.answers.ListByQuestion(ctx, nil, questionID, filter.orderClause(), offset, pageSize)
	if err != nil {
		return nil, apperr.New(apperr.KindWriteFailed, "failed to list answers", err)
	}
	if items == nil {
		items = []models.Answer{}
	}

	return &models.AnswerPage{
		Items:      items,
		HasNext:    total > int64(offset+len(items)),
		TotalCount: total,
	}, nil
}

// Delete removes an answer, every vote cast on it, and its contribution to
// the question's answer_count, atomically. Only the author may delete.
func (s *AnswerService) Delete(ctx context.Context, actorID, answerID int) error {
	if answerID <= 0 {
		return apperr.Validation("invalid answer id")
	}

	var questionID int
	err := runInTransaction(ctx, s.db, s.log, func(tx *gorm.DB) error {
		answer, err := s.answers.GetByID(ctx, tx, answerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("answer")
			}
			return apperr.New(apperr.KindWriteFailed, "failed to load answer", err)
		}

		if answer.AuthorID != actorID {
			return apperr.Forbidden("not the author")
		}

		// Counter and vote cleanup go first; the answer row is the last
		// thing to disappear. Zero rows on the decrement means the question
		// is already gone - the deletion still proceeds.
		if _, err := s.questions.AdjustAnswerCount(ctx, tx, answer.QuestionID, -1); err != nil {
			if isWriteConflict(err) {
				return apperr.WriteConflict(err)
			}
			return apperr.WriteFailed("question counter", err)
		}

		if _, err := s.votes.DeleteForTarget(ctx, tx, answerID, models.TargetAnswer); err != nil {
			if isWriteConflict(err) {
				return apperr.WriteConflict(err)
			}
			return apperr.WriteFailed("votes", err)
		}

		rows, err := s.answers.Delete(ctx, tx, answerID)
		if err != nil {
			if isWriteConflict(err) {
				return apperr.WriteConflict(err)
			}
			return apperr.WriteFailed("answer", err)
		}
		if rows == 0 {
			// Lost the race against a concurrent delete.
			return apperr.NotFound("answer")
		}

		questionID = answer.QuestionID
		return nil
	})
	if err != nil {
		return err
	}

	// No interaction record on deletion, only the cache hook.
	s.queue.Enqueue("cache:invalidate:question", func(ctx context.Context) error {
		s.invalidator.InvalidateQuestion(ctx, questionID)
		return nil
	})

	return nil
}
