package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/logger"
	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/types"
)

type LearningSequenceRepo interface {
	Create(ctx context.Context, tx *gorm.DB, sequence *types.LearningSequence) (*types.LearningSequence, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, sequenceIDs []uuid.UUID) ([]*types.LearningSequence, error)
	Save(ctx context.Context, tx *gorm.DB, sequence *types.LearningSequence) (*types.LearningSequence, error)
	SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, sequenceIDs []uuid.UUID) error
}

type learningSequenceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLearningSequenceRepo(db *gorm.DB, baseLog *logger.Logger) LearningSequenceRepo {
	repoLog := baseLog.With("repo", "LearningSequenceRepo")
	return &learningSequenceRepo{db: db, log: repoLog}
}

func (r *learningSequenceRepo) Create(ctx context.Context, tx *gorm.DB, sequence *types.LearningSequence) (*types.LearningSequence, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(sequence).Error; err != nil {
		return nil, err
	}
	return sequence, nil
}

func (r *learningSequenceRepo) GetByIDs(ctx context.Context, tx *gorm.DB, sequenceIDs []uuid.UUID) ([]*types.LearningSequence, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.LearningSequence
	if len(sequenceIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", sequenceIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *learningSequenceRepo) Save(ctx context.Context, tx *gorm.DB, sequence *types.LearningSequence) (*types.LearningSequence, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Save(sequence).Error; err != nil {
		return nil, err
	}
	return sequence, nil
}

func (r *learningSequenceRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, sequenceIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(sequenceIDs) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", sequenceIDs).
		Delete(&types.LearningSequence{}).Error; err != nil {
		return err
	}
	return nil
}
