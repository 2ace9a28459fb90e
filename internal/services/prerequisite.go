package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/apierr"
	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/logger"
	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/repos"
	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/types"
)

// PrerequisiteService maintains the directed prerequisite graph between
// curriculum nodes. The graph is independent of the parent/child tree and is
// deliberately not checked for cycles: mutual reinforcement (A requires B
// requires A) is a permitted relationship in the observed curriculum data.
type PrerequisiteService interface {
	UpsertEdge(ctx context.Context, tx *gorm.DB, prerequisiteNodeID, dependentNodeID uuid.UUID, strength types.StrengthLevel) (*types.PrerequisiteEdge, error)
	DeleteEdge(ctx context.Context, tx *gorm.DB, prerequisiteNodeID, dependentNodeID uuid.UUID) error
	ListForNode(ctx context.Context, tx *gorm.DB, nodeID uuid.UUID) ([]*types.PrerequisiteEdge, error)
}

type prerequisiteService struct {
	db       *gorm.DB
	log      *logger.Logger
	nodeRepo repos.CurriculumNodeRepo
	edgeRepo repos.PrerequisiteEdgeRepo
}

func NewPrerequisiteService(
	db *gorm.DB,
	baseLog *logger.Logger,
	nodeRepo repos.CurriculumNodeRepo,
	edgeRepo repos.PrerequisiteEdgeRepo,
) PrerequisiteService {
	return &prerequisiteService{
		db:       db,
		log:      baseLog.With("service", "PrerequisiteService"),
		nodeRepo: nodeRepo,
		edgeRepo: edgeRepo,
	}
}

func (s *prerequisiteService) UpsertEdge(ctx context.Context, tx *gorm.DB, prerequisiteNodeID, dependentNodeID uuid.UUID, strength types.StrengthLevel) (*types.PrerequisiteEdge, error) {
	if prerequisiteNodeID == dependentNodeID {
		return nil, apierr.Structural("self_prerequisite", fmt.Errorf("a node cannot be its own prerequisite")).WithIDs(prerequisiteNodeID)
	}
	if strength == "" {
		strength = types.StrengthRequired
	}
	if !strength.Valid() {
		return nil, apierr.Validation("invalid_strength_level", fmt.Errorf("unknown strength level %q", strength))
	}

	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	var edge *types.PrerequisiteEdge
	err := transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		nodes, err := s.nodeRepo.GetByIDs(ctx, txx, []uuid.UUID{prerequisiteNodeID, dependentNodeID})
		if err != nil {
			return err
		}
		if len(nodes) != 2 {
			missing := missingNodeIDs(nodes, prerequisiteNodeID, dependentNodeID)
			return apierr.Referential("node_not_found", fmt.Errorf("edge endpoint does not exist")).WithIDs(missing...)
		}
		edge = &types.PrerequisiteEdge{
			PrerequisiteNodeID: prerequisiteNodeID,
			DependentNodeID:    dependentNodeID,
			StrengthLevel:      strength,
		}
		edge, err = s.edgeRepo.Upsert(ctx, txx, edge)
		return err
	})
	if err != nil {
		return nil, err
	}
	return edge, nil
}

func (s *prerequisiteService) DeleteEdge(ctx context.Context, tx *gorm.DB, prerequisiteNodeID, dependentNodeID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	deleted, err := s.edgeRepo.Delete(ctx, transaction, prerequisiteNodeID, dependentNodeID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return apierr.Referential("edge_not_found", fmt.Errorf("prerequisite edge does not exist")).WithIDs(prerequisiteNodeID, dependentNodeID)
	}
	return nil
}

func (s *prerequisiteService) ListForNode(ctx context.Context, tx *gorm.DB, nodeID uuid.UUID) ([]*types.PrerequisiteEdge, error) {
	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	nodes, err := s.nodeRepo.GetByIDs(ctx, transaction, []uuid.UUID{nodeID})
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, apierr.Referential("node_not_found", fmt.Errorf("node does not exist")).WithIDs(nodeID)
	}
	return s.edgeRepo.GetByNodeIDs(ctx, transaction, []uuid.UUID{nodeID})
}

func missingNodeIDs(found []*types.CurriculumNode, wanted ...uuid.UUID) []uuid.UUID {
	present := make(map[uuid.UUID]struct{}, len(found))
	for _, n := range found {
		present[n.ID] = struct{}{}
	}
	var missing []uuid.UUID
	for _, id := range wanted {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
