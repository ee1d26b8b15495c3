package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noorhashem/devflow-backend/internal/logger"
	"github.com/noorhashem/devflow-backend/internal/models"
)

// InteractionRepo appends to the activity log. Writes happen outside the
// primary transaction, on the dispatcher's own connection.
type InteractionRepo interface {
	Create(ctx context.Context, record *models.InteractionRecord) error
}

type interactionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInteractionRepo(db *gorm.DB, baseLog *logger.Logger) InteractionRepo {
	return &interactionRepo{db: db, log: baseLog.With("repo", "InteractionRepo")}
}

func (ir *interactionRepo) Create(ctx context.Context, record *models.InteractionRecord) error {
	return ir.db.WithContext(ctx).Create(record).Error
}
