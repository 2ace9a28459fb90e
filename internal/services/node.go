package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/apierr"
	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/logger"
	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/repos"
	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/types"
)

type CreateNodeInput struct {
	Name        string
	Description string
	NodeType    types.NodeType
	Order       *int
	GradeLevels []types.GradeLevel
	Metadata    datatypes.JSON
	ParentID    *uuid.UUID
}

// UpdateNodeInput is an explicit set of optional fields; nil means "leave
// unchanged". Reparenting is tri-state: SetParent false leaves the parent
// alone, SetParent true with a nil ParentID moves the node to the root.
type UpdateNodeInput struct {
	Name        *string
	Description *string
	NodeType    *types.NodeType
	Order       *int
	GradeLevels *[]types.GradeLevel
	Metadata    datatypes.JSON
	SetParent   bool
	ParentID    *uuid.UUID
}

type NodeSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type NodeDetail struct {
	Node     *types.CurriculumNode `json:"node"`
	Parent   *NodeSummary          `json:"parent,omitempty"`
	Children []NodeSummary         `json:"children"`
}

type NodeService interface {
	Create(ctx context.Context, tx *gorm.DB, input CreateNodeInput) (*types.CurriculumNode, error)
	Get(ctx context.Context, tx *gorm.DB, nodeID uuid.UUID) (*NodeDetail, error)
	ListChildren(ctx context.Context, tx *gorm.DB, nodeID uuid.UUID) ([]*types.CurriculumNode, error)
	ListRoots(ctx context.Context, tx *gorm.DB) ([]*types.CurriculumNode, error)
	Update(ctx context.Context, tx *gorm.DB, nodeID uuid.UUID, input UpdateNodeInput) (*types.CurriculumNode, error)
	Delete(ctx context.Context, tx *gorm.DB, nodeID uuid.UUID) error
}

type nodeService struct {
	db       *gorm.DB
	log      *logger.Logger
	guard    TreeIntegrityGuard
	nodeRepo repos.CurriculumNodeRepo
	edgeRepo repos.PrerequisiteEdgeRepo
}

func NewNodeService(
	db *gorm.DB,
	baseLog *logger.Logger,
	guard TreeIntegrityGuard,
	nodeRepo repos.CurriculumNodeRepo,
	edgeRepo repos.PrerequisiteEdgeRepo,
) NodeService {
	return &nodeService{
		db:       db,
		log:      baseLog.With("service", "NodeService"),
		guard:    guard,
		nodeRepo: nodeRepo,
		edgeRepo: edgeRepo,
	}
}

func (s *nodeService) Create(ctx context.Context, tx *gorm.DB, input CreateNodeInput) (*types.CurriculumNode, error) {
	if input.Name == "" {
		return nil, apierr.Validation("empty_name", fmt.Errorf("node name must not be empty"))
	}
	nodeType := input.NodeType
	if nodeType == "" {
		nodeType = types.NodeTypeGeneric
	}
	if !nodeType.Valid() {
		return nil, apierr.Validation("invalid_node_type", fmt.Errorf("unknown node type %q", input.NodeType))
	}
	gradeLevels, err := types.EncodeGradeLevels(input.GradeLevels)
	if err != nil {
		return nil, apierr.Validation("invalid_grade_level", err)
	}

	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	var created *types.CurriculumNode
	err = transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		if err := s.guard.ValidateReparent(ctx, txx, nil, input.ParentID); err != nil {
			return err
		}
		node := &types.CurriculumNode{
			Name:        input.Name,
			Description: input.Description,
			NodeType:    nodeType,
			Order:       input.Order,
			GradeLevels: gradeLevels,
			Metadata:    input.Metadata,
			ParentID:    input.ParentID,
		}
		var err error
		created, err = s.nodeRepo.Create(ctx, txx, node)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("curriculum node created", "node_id", created.ID, "node_type", created.NodeType)
	return created, nil
}

func (s *nodeService) Get(ctx context.Context, tx *gorm.DB, nodeID uuid.UUID) (*NodeDetail, error) {
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
	node := nodes[0]

	detail := &NodeDetail{Node: node, Children: []NodeSummary{}}
	if node.ParentID != nil {
		parents, err := s.nodeRepo.GetByIDs(ctx, transaction, []uuid.UUID{*node.ParentID})
		if err != nil {
			return nil, err
		}
		if len(parents) > 0 {
			detail.Parent = &NodeSummary{ID: parents[0].ID, Name: parents[0].Name}
		}
	}
	children, err := s.nodeRepo.GetByParentIDs(ctx, transaction, []uuid.UUID{nodeID})
	if err != nil {
		return nil, err
	}
	for _, child := range children {
		detail.Children = append(detail.Children, NodeSummary{ID: child.ID, Name: child.Name})
	}
	return detail, nil
}

func (s *nodeService) ListChildren(ctx context.Context, tx *gorm.DB, nodeID uuid.UUID) ([]*types.CurriculumNode, error) {
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
	return s.nodeRepo.GetByParentIDs(ctx, transaction, []uuid.UUID{nodeID})
}

func (s *nodeService) ListRoots(ctx context.Context, tx *gorm.DB) ([]*types.CurriculumNode, error) {
	return s.nodeRepo.GetRoots(ctx, tx)
}

func (s *nodeService) Update(ctx context.Context, tx *gorm.DB, nodeID uuid.UUID, input UpdateNodeInput) (*types.CurriculumNode, error) {
	if input.Name != nil && *input.Name == "" {
		return nil, apierr.Validation("empty_name", fmt.Errorf("node name must not be empty"))
	}
	if input.NodeType != nil && !input.NodeType.Valid() {
		return nil, apierr.Validation("invalid_node_type", fmt.Errorf("unknown node type %q", *input.NodeType))
	}

	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	var updated *types.CurriculumNode
	err := transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		nodes, err := s.nodeRepo.GetByIDs(ctx, txx, []uuid.UUID{nodeID})
		if err != nil {
			return err
		}
		if len(nodes) == 0 {
			return apierr.Referential("node_not_found", fmt.Errorf("node does not exist")).WithIDs(nodeID)
		}
		node := nodes[0]

		if input.Name != nil {
			node.Name = *input.Name
		}
		if input.Description != nil {
			node.Description = *input.Description
		}
		if input.NodeType != nil {
			node.NodeType = *input.NodeType
		}
		if input.Order != nil {
			node.Order = input.Order
		}
		if input.GradeLevels != nil {
			encoded, err := types.EncodeGradeLevels(*input.GradeLevels)
			if err != nil {
				return apierr.Validation("invalid_grade_level", err)
			}
			node.GradeLevels = encoded
		}
		if input.Metadata != nil {
			node.Metadata = input.Metadata
		}
		if input.SetParent {
			// Reparenting always re-runs the guard against current rows, never
			// a cached tree, so a concurrent move cannot slip a cycle through.
			if err := s.guard.ValidateReparent(ctx, txx, &nodeID, input.ParentID); err != nil {
				return err
			}
			node.ParentID = input.ParentID
		}

		updated, err = s.nodeRepo.Save(ctx, txx, node)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a node once the deletion guard passes, cascading its
// prerequisite edges inside the same transaction.
func (s *nodeService) Delete(ctx context.Context, tx *gorm.DB, nodeID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	err := transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		nodes, err := s.nodeRepo.GetByIDs(ctx, txx, []uuid.UUID{nodeID})
		if err != nil {
			return err
		}
		if len(nodes) == 0 {
			return apierr.Referential("node_not_found", fmt.Errorf("node does not exist")).WithIDs(nodeID)
		}
		if err := s.guard.ValidateDeletion(ctx, txx, nodeID); err != nil {
			return err
		}
		if err := s.edgeRepo.DeleteByNodeIDs(ctx, txx, []uuid.UUID{nodeID}); err != nil {
			return err
		}
		return s.nodeRepo.SoftDeleteByIDs(ctx, txx, []uuid.UUID{nodeID})
	})
	if err != nil {
		return err
	}
	s.log.Info("curriculum node deleted", "node_id", nodeID)
	return nil
}
