package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/apierr"
	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/logger"
	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/repos"
)

// TreeIntegrityGuard gates every create, reparent and delete on the
// curriculum tree. It is pure validation: it never writes, and callers run it
// inside the same transaction as the write so it always sees current rows.
type TreeIntegrityGuard interface {
	ValidateReparent(ctx context.Context, tx *gorm.DB, nodeID *uuid.UUID, proposedParentID *uuid.UUID) error
	ValidateDeletion(ctx context.Context, tx *gorm.DB, nodeID uuid.UUID) error
}

type treeIntegrityGuard struct {
	db          *gorm.DB
	log         *logger.Logger
	nodeRepo    repos.CurriculumNodeRepo
	contentRepo repos.ContentResourceRepo
}

func NewTreeIntegrityGuard(
	db *gorm.DB,
	baseLog *logger.Logger,
	nodeRepo repos.CurriculumNodeRepo,
	contentRepo repos.ContentResourceRepo,
) TreeIntegrityGuard {
	return &treeIntegrityGuard{
		db:          db,
		log:         baseLog.With("service", "TreeIntegrityGuard"),
		nodeRepo:    nodeRepo,
		contentRepo: contentRepo,
	}
}

// ValidateReparent checks a proposed parent assignment. nodeID is nil for a
// brand-new node. The ancestor walk is bounded by the total node count so it
// terminates even on a corrupted chain.
func (g *treeIntegrityGuard) ValidateReparent(ctx context.Context, tx *gorm.DB, nodeID *uuid.UUID, proposedParentID *uuid.UUID) error {
	if proposedParentID == nil {
		return nil
	}
	if nodeID != nil && *proposedParentID == *nodeID {
		return apierr.Structural("self_parent", fmt.Errorf("a node cannot be its own parent")).WithIDs(*nodeID)
	}

	transaction := tx
	if transaction == nil {
		transaction = g.db
	}

	parents, err := g.nodeRepo.GetByIDs(ctx, transaction, []uuid.UUID{*proposedParentID})
	if err != nil {
		return err
	}
	if len(parents) == 0 {
		return apierr.Referential("node_not_found", fmt.Errorf("proposed parent does not exist")).WithIDs(*proposedParentID)
	}

	if nodeID == nil {
		// New nodes have no descendants, so any existing parent is safe.
		return nil
	}

	bound, err := g.nodeRepo.CountAll(ctx, transaction)
	if err != nil {
		return err
	}

	current := parents[0]
	for steps := int64(0); steps <= bound; steps++ {
		if current.ID == *nodeID {
			return apierr.Structural("cycle_detected", fmt.Errorf("node %s is an ancestor of proposed parent %s", nodeID, proposedParentID)).WithIDs(*nodeID, *proposedParentID)
		}
		if current.ParentID == nil {
			return nil
		}
		ancestors, err := g.nodeRepo.GetByIDs(ctx, transaction, []uuid.UUID{*current.ParentID})
		if err != nil {
			return err
		}
		if len(ancestors) == 0 {
			// Dangling parent pointer; the chain terminates here.
			g.log.Warn("ancestor walk hit dangling parent pointer", "node_id", current.ID, "parent_id", *current.ParentID)
			return nil
		}
		current = ancestors[0]
	}

	// The walk outlived the node count, which only happens on a pre-existing
	// cycle in stored data. Refuse to make it worse.
	return apierr.Structural("cycle_detected", fmt.Errorf("ancestor chain of %s does not terminate", proposedParentID)).WithIDs(*proposedParentID)
}

// ValidateDeletion rejects deletion while children or referencing content
// still exist, naming the blocking dependency. Prerequisite edges do not
// block: the deletion flow cascades them first.
func (g *treeIntegrityGuard) ValidateDeletion(ctx context.Context, tx *gorm.DB, nodeID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = g.db
	}

	children, err := g.nodeRepo.CountChildren(ctx, transaction, nodeID)
	if err != nil {
		return err
	}
	if children > 0 {
		return apierr.DependencyBlocked("children_exist", fmt.Errorf("node has %d child node(s); delete or reparent them first", children)).WithIDs(nodeID)
	}

	contentRefs, err := g.contentRepo.CountByCurriculumNodeID(ctx, transaction, nodeID)
	if err != nil {
		return err
	}
	if contentRefs > 0 {
		return apierr.DependencyBlocked("content_references_exist", fmt.Errorf("node is referenced by %d content resource(s); detach them first", contentRefs)).WithIDs(nodeID)
	}
	return nil
}
