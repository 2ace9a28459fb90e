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

type AddContentInput struct {
	SequenceID        uuid.UUID
	ContentResourceID uuid.UUID
	Position          *int
	IsOptional        bool
}

// AddContentResult carries the created placement plus the grade-level
// advisory verdict. The verdict never blocks the add.
type AddContentResult struct {
	Position      *types.SequencePosition `json:"position"`
	GradeAdvisory CompatibilityVerdict    `json:"grade_advisory"`
}

type PositionUpdate struct {
	PositionID uuid.UUID `json:"id"`
	Position   int       `json:"position"`
}

// SequenceOrderingEngine maintains the ordered list of content placements
// within one sequence. Every mutation runs in a single transaction and reads
// the sequence's positions under a row lock, so the duplicate-content and
// membership checks are always evaluated against the commit-time snapshot.
type SequenceOrderingEngine interface {
	AddContent(ctx context.Context, tx *gorm.DB, input AddContentInput) (*AddContentResult, error)
	RemoveContent(ctx context.Context, tx *gorm.DB, sequenceID, positionID uuid.UUID) error
	SetOptional(ctx context.Context, tx *gorm.DB, sequenceID, positionID uuid.UUID, isOptional bool) (*types.SequencePosition, error)
	UpdatePlacement(ctx context.Context, tx *gorm.DB, sequenceID, positionID uuid.UUID, position *int, isOptional *bool) (*types.SequencePosition, error)
	Reorder(ctx context.Context, tx *gorm.DB, sequenceID uuid.UUID, updates []PositionUpdate) ([]*types.SequencePosition, error)
}

type sequenceOrderingEngine struct {
	db          *gorm.DB
	log         *logger.Logger
	seqRepo     repos.LearningSequenceRepo
	posRepo     repos.SequencePositionRepo
	nodeRepo    repos.CurriculumNodeRepo
	contentRepo repos.ContentResourceRepo
}

func NewSequenceOrderingEngine(
	db *gorm.DB,
	baseLog *logger.Logger,
	seqRepo repos.LearningSequenceRepo,
	posRepo repos.SequencePositionRepo,
	nodeRepo repos.CurriculumNodeRepo,
	contentRepo repos.ContentResourceRepo,
) SequenceOrderingEngine {
	return &sequenceOrderingEngine{
		db:          db,
		log:         baseLog.With("service", "SequenceOrderingEngine"),
		seqRepo:     seqRepo,
		posRepo:     posRepo,
		nodeRepo:    nodeRepo,
		contentRepo: contentRepo,
	}
}

func (e *sequenceOrderingEngine) AddContent(ctx context.Context, tx *gorm.DB, input AddContentInput) (*AddContentResult, error) {
	if input.Position != nil && *input.Position < 1 {
		return nil, apierr.Validation("invalid_position", fmt.Errorf("position must be a positive integer"))
	}

	transaction := tx
	if transaction == nil {
		transaction = e.db
	}

	result := &AddContentResult{GradeAdvisory: CompatibilityUnspecified}
	err := transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		sequences, err := e.seqRepo.GetByIDs(ctx, txx, []uuid.UUID{input.SequenceID})
		if err != nil {
			return err
		}
		if len(sequences) == 0 {
			return apierr.Referential("sequence_not_found", fmt.Errorf("sequence does not exist")).WithIDs(input.SequenceID)
		}
		sequence := sequences[0]

		contents, err := e.contentRepo.GetByIDs(ctx, txx, []uuid.UUID{input.ContentResourceID})
		if err != nil {
			return err
		}
		if len(contents) == 0 {
			return apierr.Referential("content_not_found", fmt.Errorf("content resource does not exist")).WithIDs(input.ContentResourceID)
		}
		content := contents[0]

		positions, err := e.posRepo.ListBySequenceIDLocked(ctx, txx, input.SequenceID)
		if err != nil {
			return err
		}
		maxPosition := 0
		for _, p := range positions {
			if p.ContentResourceID == input.ContentResourceID {
				return apierr.Structural("duplicate_content", fmt.Errorf("content already present in sequence")).WithIDs(input.ContentResourceID)
			}
			if p.Position > maxPosition {
				maxPosition = p.Position
			}
		}

		position := maxPosition + 1
		if input.Position != nil {
			position = *input.Position
		}
		created, err := e.posRepo.Create(ctx, txx, &types.SequencePosition{
			SequenceID:        input.SequenceID,
			ContentResourceID: input.ContentResourceID,
			Position:          position,
			IsOptional:        input.IsOptional,
		})
		if err != nil {
			return err
		}
		result.Position = created

		sequenceLevels, err := sequenceGradeLevels(ctx, txx, e.nodeRepo, sequence)
		if err != nil {
			return err
		}
		result.GradeAdvisory = Compatibility(sequenceLevels, types.DecodeGradeLevels(content.GradeLevels))
		return nil
	})
	if err != nil {
		return nil, err
	}
	if result.GradeAdvisory == CompatibilityNoOverlap {
		e.log.Warn("content added with mismatched grade levels", "sequence_id", input.SequenceID, "content_resource_id", input.ContentResourceID)
	}
	return result, nil
}

func (e *sequenceOrderingEngine) RemoveContent(ctx context.Context, tx *gorm.DB, sequenceID, positionID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = e.db
	}

	return transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		if err := e.checkOwnership(ctx, txx, sequenceID, positionID); err != nil {
			return err
		}
		// No renumbering of survivors: gaps are fine, ordering is relative.
		return e.posRepo.SoftDeleteByIDs(ctx, txx, []uuid.UUID{positionID})
	})
}

func (e *sequenceOrderingEngine) SetOptional(ctx context.Context, tx *gorm.DB, sequenceID, positionID uuid.UUID, isOptional bool) (*types.SequencePosition, error) {
	transaction := tx
	if transaction == nil {
		transaction = e.db
	}

	var updated *types.SequencePosition
	err := transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		if err := e.checkOwnership(ctx, txx, sequenceID, positionID); err != nil {
			return err
		}
		affected, err := e.posRepo.UpdateOptional(ctx, txx, positionID, isOptional)
		if err != nil {
			return err
		}
		if affected == 0 {
			return apierr.Conflict("sequence_membership_changed", fmt.Errorf("position disappeared before commit")).WithIDs(positionID)
		}
		rows, err := e.posRepo.GetByIDs(ctx, txx, []uuid.UUID{positionID})
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return apierr.Conflict("sequence_membership_changed", fmt.Errorf("position disappeared before commit")).WithIDs(positionID)
		}
		updated = rows[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdatePlacement applies a single-position patch (reposition and/or the
// optional flag) inside one transaction, so a rejected half never leaves the
// other half committed.
func (e *sequenceOrderingEngine) UpdatePlacement(ctx context.Context, tx *gorm.DB, sequenceID, positionID uuid.UUID, position *int, isOptional *bool) (*types.SequencePosition, error) {
	if position == nil && isOptional == nil {
		return nil, apierr.Validation("empty_patch", fmt.Errorf("patch requires a position or an optional flag")).WithIDs(positionID)
	}

	transaction := tx
	if transaction == nil {
		transaction = e.db
	}

	var updated *types.SequencePosition
	err := transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		if position != nil {
			if _, err := e.Reorder(ctx, txx, sequenceID, []PositionUpdate{{PositionID: positionID, Position: *position}}); err != nil {
				return err
			}
		}
		if isOptional != nil {
			p, err := e.SetOptional(ctx, txx, sequenceID, positionID, *isOptional)
			if err != nil {
				return err
			}
			updated = p
			return nil
		}
		rows, err := e.posRepo.GetByIDs(ctx, txx, []uuid.UUID{positionID})
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return apierr.Referential("position_not_in_sequence", fmt.Errorf("position does not belong to the sequence")).WithIDs(positionID)
		}
		updated = rows[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Reorder applies a batch of position updates as one atomic unit. Every id in
// the batch must belong to the sequence; otherwise nothing changes and the
// rejection names the offending ids. The batch does not need to cover every
// position: unmentioned rows keep their value.
func (e *sequenceOrderingEngine) Reorder(ctx context.Context, tx *gorm.DB, sequenceID uuid.UUID, updates []PositionUpdate) ([]*types.SequencePosition, error) {
	if len(updates) == 0 {
		return nil, apierr.Validation("empty_reorder", fmt.Errorf("reorder requires at least one position update"))
	}
	for _, u := range updates {
		if u.Position < 1 {
			return nil, apierr.Validation("invalid_position", fmt.Errorf("position must be a positive integer")).WithIDs(u.PositionID)
		}
	}

	transaction := tx
	if transaction == nil {
		transaction = e.db
	}

	var reordered []*types.SequencePosition
	err := transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		sequences, err := e.seqRepo.GetByIDs(ctx, txx, []uuid.UUID{sequenceID})
		if err != nil {
			return err
		}
		if len(sequences) == 0 {
			return apierr.Referential("sequence_not_found", fmt.Errorf("sequence does not exist")).WithIDs(sequenceID)
		}

		positions, err := e.posRepo.ListBySequenceIDLocked(ctx, txx, sequenceID)
		if err != nil {
			return err
		}
		membership := make(map[uuid.UUID]struct{}, len(positions))
		for _, p := range positions {
			membership[p.ID] = struct{}{}
		}

		var invalid []uuid.UUID
		for _, u := range updates {
			if _, ok := membership[u.PositionID]; !ok {
				invalid = append(invalid, u.PositionID)
			}
		}
		if len(invalid) > 0 {
			return apierr.Referential("position_not_in_sequence", fmt.Errorf("%d position id(s) do not belong to the sequence", len(invalid))).WithIDs(invalid...)
		}

		for _, u := range updates {
			affected, err := e.posRepo.UpdatePosition(ctx, txx, u.PositionID, u.Position)
			if err != nil {
				return err
			}
			if affected == 0 {
				// Row vanished between the membership read and the write; the
				// transaction rolls back so no partial reorder is visible.
				return apierr.Conflict("sequence_membership_changed", fmt.Errorf("position disappeared before commit")).WithIDs(u.PositionID)
			}
		}

		reordered, err = e.posRepo.ListBySequenceID(ctx, txx, sequenceID)
		return err
	})
	if err != nil {
		return nil, err
	}
	e.log.Debug("sequence reordered", "sequence_id", sequenceID, "updates", len(updates))
	return reordered, nil
}

func (e *sequenceOrderingEngine) checkOwnership(ctx context.Context, tx *gorm.DB, sequenceID, positionID uuid.UUID) error {
	rows, err := e.posRepo.GetByIDs(ctx, tx, []uuid.UUID{positionID})
	if err != nil {
		return err
	}
	// Cross-sequence ids are rejected, never silently ignored.
	if len(rows) == 0 || rows[0].SequenceID != sequenceID {
		return apierr.Referential("position_not_in_sequence", fmt.Errorf("position does not belong to the sequence")).WithIDs(positionID)
	}
	return nil
}
