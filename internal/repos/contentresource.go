package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/logger"
	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/types"
)

// ContentResourceRepo is the collaborator boundary to the content store: the
// engine only ever needs existence checks, grade metadata and the
// which-node-does-this-reference count that gates node deletion.
type ContentResourceRepo interface {
	Create(ctx context.Context, tx *gorm.DB, resource *types.ContentResource) (*types.ContentResource, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, resourceIDs []uuid.UUID) ([]*types.ContentResource, error)
	CountByCurriculumNodeID(ctx context.Context, tx *gorm.DB, nodeID uuid.UUID) (int64, error)
}

type contentResourceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContentResourceRepo(db *gorm.DB, baseLog *logger.Logger) ContentResourceRepo {
	repoLog := baseLog.With("repo", "ContentResourceRepo")
	return &contentResourceRepo{db: db, log: repoLog}
}

func (r *contentResourceRepo) Create(ctx context.Context, tx *gorm.DB, resource *types.ContentResource) (*types.ContentResource, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(resource).Error; err != nil {
		return nil, err
	}
	return resource, nil
}

func (r *contentResourceRepo) GetByIDs(ctx context.Context, tx *gorm.DB, resourceIDs []uuid.UUID) ([]*types.ContentResource, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ContentResource
	if len(resourceIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", resourceIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *contentResourceRepo) CountByCurriculumNodeID(ctx context.Context, tx *gorm.DB, nodeID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.ContentResource{}).
		Where("curriculum_node_id = ?", nodeID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
