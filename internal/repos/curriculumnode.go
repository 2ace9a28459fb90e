package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/logger"
	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/types"
)

type CurriculumNodeRepo interface {
	Create(ctx context.Context, tx *gorm.DB, node *types.CurriculumNode) (*types.CurriculumNode, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, nodeIDs []uuid.UUID) ([]*types.CurriculumNode, error)
	GetByParentIDs(ctx context.Context, tx *gorm.DB, parentIDs []uuid.UUID) ([]*types.CurriculumNode, error)
	GetRoots(ctx context.Context, tx *gorm.DB) ([]*types.CurriculumNode, error)
	CountAll(ctx context.Context, tx *gorm.DB) (int64, error)
	CountChildren(ctx context.Context, tx *gorm.DB, nodeID uuid.UUID) (int64, error)
	Save(ctx context.Context, tx *gorm.DB, node *types.CurriculumNode) (*types.CurriculumNode, error)
	SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, nodeIDs []uuid.UUID) error
}

type curriculumNodeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCurriculumNodeRepo(db *gorm.DB, baseLog *logger.Logger) CurriculumNodeRepo {
	repoLog := baseLog.With("repo", "CurriculumNodeRepo")
	return &curriculumNodeRepo{db: db, log: repoLog}
}

func (r *curriculumNodeRepo) Create(ctx context.Context, tx *gorm.DB, node *types.CurriculumNode) (*types.CurriculumNode, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(node).Error; err != nil {
		return nil, err
	}
	return node, nil
}

func (r *curriculumNodeRepo) GetByIDs(ctx context.Context, tx *gorm.DB, nodeIDs []uuid.UUID) ([]*types.CurriculumNode, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.CurriculumNode
	if len(nodeIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", nodeIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *curriculumNodeRepo) GetByParentIDs(ctx context.Context, tx *gorm.DB, parentIDs []uuid.UUID) ([]*types.CurriculumNode, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.CurriculumNode
	if len(parentIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("parent_id IN ?", parentIDs).
		Order(`parent_id, "order" ASC NULLS LAST, created_at ASC`).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *curriculumNodeRepo) GetRoots(ctx context.Context, tx *gorm.DB) ([]*types.CurriculumNode, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.CurriculumNode
	if err := transaction.WithContext(ctx).
		Where("parent_id IS NULL").
		Order(`"order" ASC NULLS LAST, created_at ASC`).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *curriculumNodeRepo) CountAll(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.CurriculumNode{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *curriculumNodeRepo) CountChildren(ctx context.Context, tx *gorm.DB, nodeID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.CurriculumNode{}).
		Where("parent_id = ?", nodeID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *curriculumNodeRepo) Save(ctx context.Context, tx *gorm.DB, node *types.CurriculumNode) (*types.CurriculumNode, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Save(node).Error; err != nil {
		return nil, err
	}
	return node, nil
}

func (r *curriculumNodeRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, nodeIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(nodeIDs) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", nodeIDs).
		Delete(&types.CurriculumNode{}).Error; err != nil {
		return err
	}
	return nil
}
