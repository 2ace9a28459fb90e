package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/logger"
	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/types"
)

// traversalOrder is the documented sort for sequence positions: ascending
// position, ties broken by creation order, then id so the order is total.
const traversalOrder = "position ASC, created_at ASC, id ASC"

type SequencePositionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, position *types.SequencePosition) (*types.SequencePosition, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, positionIDs []uuid.UUID) ([]*types.SequencePosition, error)
	ListBySequenceID(ctx context.Context, tx *gorm.DB, sequenceID uuid.UUID) ([]*types.SequencePosition, error)
	ListBySequenceIDLocked(ctx context.Context, tx *gorm.DB, sequenceID uuid.UUID) ([]*types.SequencePosition, error)
	UpdatePosition(ctx context.Context, tx *gorm.DB, positionID uuid.UUID, position int) (int64, error)
	UpdateOptional(ctx context.Context, tx *gorm.DB, positionID uuid.UUID, isOptional bool) (int64, error)
	SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, positionIDs []uuid.UUID) error
	SoftDeleteBySequenceIDs(ctx context.Context, tx *gorm.DB, sequenceIDs []uuid.UUID) error
}

type sequencePositionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSequencePositionRepo(db *gorm.DB, baseLog *logger.Logger) SequencePositionRepo {
	repoLog := baseLog.With("repo", "SequencePositionRepo")
	return &sequencePositionRepo{db: db, log: repoLog}
}

func (r *sequencePositionRepo) Create(ctx context.Context, tx *gorm.DB, position *types.SequencePosition) (*types.SequencePosition, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(position).Error; err != nil {
		return nil, err
	}
	return position, nil
}

func (r *sequencePositionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, positionIDs []uuid.UUID) ([]*types.SequencePosition, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.SequencePosition
	if len(positionIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", positionIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *sequencePositionRepo) ListBySequenceID(ctx context.Context, tx *gorm.DB, sequenceID uuid.UUID) ([]*types.SequencePosition, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.SequencePosition
	if err := transaction.WithContext(ctx).
		Where("sequence_id = ?", sequenceID).
		Order(traversalOrder).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ListBySequenceIDLocked reads the sequence's positions under a FOR UPDATE
// row lock so membership checks are evaluated against a commit-time snapshot.
// Must be called inside a transaction. sqlite has no row locks; its
// database-level write lock gives the same serialization in tests.
func (r *sequencePositionRepo) ListBySequenceIDLocked(ctx context.Context, tx *gorm.DB, sequenceID uuid.UUID) ([]*types.SequencePosition, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	q := transaction.WithContext(ctx)
	if transaction.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var results []*types.SequencePosition
	if err := q.
		Where("sequence_id = ?", sequenceID).
		Order(traversalOrder).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *sequencePositionRepo) UpdatePosition(ctx context.Context, tx *gorm.DB, positionID uuid.UUID, position int) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.SequencePosition{}).
		Where("id = ?", positionID).
		Update("position", position)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *sequencePositionRepo) UpdateOptional(ctx context.Context, tx *gorm.DB, positionID uuid.UUID, isOptional bool) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.SequencePosition{}).
		Where("id = ?", positionID).
		Update("is_optional", isOptional)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *sequencePositionRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, positionIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(positionIDs) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", positionIDs).
		Delete(&types.SequencePosition{}).Error; err != nil {
		return err
	}
	return nil
}

func (r *sequencePositionRepo) SoftDeleteBySequenceIDs(ctx context.Context, tx *gorm.DB, sequenceIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(sequenceIDs) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("sequence_id IN ?", sequenceIDs).
		Delete(&types.SequencePosition{}).Error; err != nil {
		return err
	}
	return nil
}
