package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/logger"
	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/types"
)

type PrerequisiteEdgeRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, edge *types.PrerequisiteEdge) (*types.PrerequisiteEdge, error)
	GetByNodeIDs(ctx context.Context, tx *gorm.DB, nodeIDs []uuid.UUID) ([]*types.PrerequisiteEdge, error)
	Delete(ctx context.Context, tx *gorm.DB, prerequisiteNodeID, dependentNodeID uuid.UUID) (int64, error)
	DeleteByNodeIDs(ctx context.Context, tx *gorm.DB, nodeIDs []uuid.UUID) error
}

type prerequisiteEdgeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPrerequisiteEdgeRepo(db *gorm.DB, baseLog *logger.Logger) PrerequisiteEdgeRepo {
	repoLog := baseLog.With("repo", "PrerequisiteEdgeRepo")
	return &prerequisiteEdgeRepo{db: db, log: repoLog}
}

// Upsert inserts the edge or, when the ordered pair already exists, updates
// its strength level. The composite primary key keeps the pair unique.
func (r *prerequisiteEdgeRepo) Upsert(ctx context.Context, tx *gorm.DB, edge *types.PrerequisiteEdge) (*types.PrerequisiteEdge, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "prerequisite_node_id"}, {Name: "dependent_node_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"strength_level",
				"updated_at",
			}),
		}).
		Create(edge).Error; err != nil {
		return nil, err
	}
	return edge, nil
}

func (r *prerequisiteEdgeRepo) GetByNodeIDs(ctx context.Context, tx *gorm.DB, nodeIDs []uuid.UUID) ([]*types.PrerequisiteEdge, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.PrerequisiteEdge
	if len(nodeIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("prerequisite_node_id IN ? OR dependent_node_id IN ?", nodeIDs, nodeIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *prerequisiteEdgeRepo) Delete(ctx context.Context, tx *gorm.DB, prerequisiteNodeID, dependentNodeID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	res := transaction.WithContext(ctx).
		Where("prerequisite_node_id = ? AND dependent_node_id = ?", prerequisiteNodeID, dependentNodeID).
		Delete(&types.PrerequisiteEdge{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// DeleteByNodeIDs removes every edge mentioning any of the nodes as either
// endpoint. Runs ahead of node deletion so dependency information is never
// orphaned.
func (r *prerequisiteEdgeRepo) DeleteByNodeIDs(ctx context.Context, tx *gorm.DB, nodeIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(nodeIDs) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("prerequisite_node_id IN ? OR dependent_node_id IN ?", nodeIDs, nodeIDs).
		Delete(&types.PrerequisiteEdge{}).Error; err != nil {
		return err
	}
	return nil
}
