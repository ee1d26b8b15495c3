package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noorhashem/devflow-backend/internal/logger"
	"github.com/noorhashem/devflow-backend/internal/models"
)

type VoteRepo interface {
	Create(ctx context.Context, tx *gorm.DB, vote *models.Vote) error
	// DeleteForTarget removes every vote cast on one target. Used by the
	// answer deletion cascade.
	DeleteForTarget(ctx context.Context, tx *gorm.DB, targetID int, targetType string) (int64, error)
	CountForTarget(ctx context.Context, tx *gorm.DB, targetID int, targetType string) (int64, error)
}

type voteRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVoteRepo(db *gorm.DB, baseLog *logger.Logger) VoteRepo {
	return &voteRepo{db: db, log: baseLog.With("repo", "VoteRepo")}
}

func (vr *voteRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return vr.db
}

func (vr *voteRepo) Create(ctx context.Context, tx *gorm.DB, vote *models.Vote) error {
	return vr.conn(tx).WithContext(ctx).Create(vote).Error
}

func (vr *voteRepo) DeleteForTarget(ctx context.Context, tx *gorm.DB, targetID int, targetType string) (int64, error) {
	result := vr.conn(tx).WithContext(ctx).
		Where("target_id = ? AND target_type = ?", targetID, targetType).
		Delete(&models.Vote{})
	return result.RowsAffected, result.Error
}

func (vr *voteRepo) CountForTarget(ctx context.Context, tx *gorm.DB, targetID int, targetType string) (int64, error) {
	var count int64
	if err := vr.conn(tx).WithContext(ctx).
		Model(&models.Vote{}).
		Where("target_id = ? AND target_type = ?", targetID, targetType).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
