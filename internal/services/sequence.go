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

type CreateSequenceInput struct {
	Name             string
	Description      string
	IsTemplate       bool
	CurriculumNodeID *uuid.UUID
}

// UpdateSequenceInput: nil fields are left unchanged; SetNode true with a nil
// CurriculumNodeID detaches the sequence from its node.
type UpdateSequenceInput struct {
	Name             *string
	Description      *string
	IsTemplate       *bool
	SetNode          bool
	CurriculumNodeID *uuid.UUID
}

// SequenceDetail is a sequence with its positions pre-sorted in traversal
// order and the grade-level set derived from the associated node.
type SequenceDetail struct {
	Sequence    *types.LearningSequence   `json:"sequence"`
	Positions   []*types.SequencePosition `json:"positions"`
	GradeLevels []types.GradeLevel        `json:"grade_levels"`
}

type SequenceService interface {
	Create(ctx context.Context, tx *gorm.DB, input CreateSequenceInput) (*types.LearningSequence, error)
	Get(ctx context.Context, tx *gorm.DB, sequenceID uuid.UUID) (*SequenceDetail, error)
	Update(ctx context.Context, tx *gorm.DB, sequenceID uuid.UUID, input UpdateSequenceInput) (*types.LearningSequence, error)
	Delete(ctx context.Context, tx *gorm.DB, sequenceID uuid.UUID) error
}

type sequenceService struct {
	db          *gorm.DB
	log         *logger.Logger
	seqRepo     repos.LearningSequenceRepo
	posRepo     repos.SequencePositionRepo
	nodeRepo    repos.CurriculumNodeRepo
	contentRepo repos.ContentResourceRepo
}

func NewSequenceService(
	db *gorm.DB,
	baseLog *logger.Logger,
	seqRepo repos.LearningSequenceRepo,
	posRepo repos.SequencePositionRepo,
	nodeRepo repos.CurriculumNodeRepo,
	contentRepo repos.ContentResourceRepo,
) SequenceService {
	return &sequenceService{
		db:          db,
		log:         baseLog.With("service", "SequenceService"),
		seqRepo:     seqRepo,
		posRepo:     posRepo,
		nodeRepo:    nodeRepo,
		contentRepo: contentRepo,
	}
}

func (s *sequenceService) Create(ctx context.Context, tx *gorm.DB, input CreateSequenceInput) (*types.LearningSequence, error) {
	if input.Name == "" {
		return nil, apierr.Validation("empty_name", fmt.Errorf("sequence name must not be empty"))
	}

	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	var created *types.LearningSequence
	err := transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		if input.CurriculumNodeID != nil {
			nodes, err := s.nodeRepo.GetByIDs(ctx, txx, []uuid.UUID{*input.CurriculumNodeID})
			if err != nil {
				return err
			}
			if len(nodes) == 0 {
				return apierr.Referential("node_not_found", fmt.Errorf("associated node does not exist")).WithIDs(*input.CurriculumNodeID)
			}
		}
		sequence := &types.LearningSequence{
			Name:             input.Name,
			Description:      input.Description,
			IsTemplate:       input.IsTemplate,
			CurriculumNodeID: input.CurriculumNodeID,
		}
		var err error
		created, err = s.seqRepo.Create(ctx, txx, sequence)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("learning sequence created", "sequence_id", created.ID)
	return created, nil
}

func (s *sequenceService) Get(ctx context.Context, tx *gorm.DB, sequenceID uuid.UUID) (*SequenceDetail, error) {
	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	sequences, err := s.seqRepo.GetByIDs(ctx, transaction, []uuid.UUID{sequenceID})
	if err != nil {
		return nil, err
	}
	if len(sequences) == 0 {
		return nil, apierr.Referential("sequence_not_found", fmt.Errorf("sequence does not exist")).WithIDs(sequenceID)
	}
	sequence := sequences[0]

	positions, err := s.posRepo.ListBySequenceID(ctx, transaction, sequenceID)
	if err != nil {
		return nil, err
	}
	gradeLevels, err := sequenceGradeLevels(ctx, transaction, s.nodeRepo, sequence)
	if err != nil {
		return nil, err
	}
	return &SequenceDetail{
		Sequence:    sequence,
		Positions:   positions,
		GradeLevels: gradeLevels,
	}, nil
}

func (s *sequenceService) Update(ctx context.Context, tx *gorm.DB, sequenceID uuid.UUID, input UpdateSequenceInput) (*types.LearningSequence, error) {
	if input.Name != nil && *input.Name == "" {
		return nil, apierr.Validation("empty_name", fmt.Errorf("sequence name must not be empty"))
	}

	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	var updated *types.LearningSequence
	err := transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		sequences, err := s.seqRepo.GetByIDs(ctx, txx, []uuid.UUID{sequenceID})
		if err != nil {
			return err
		}
		if len(sequences) == 0 {
			return apierr.Referential("sequence_not_found", fmt.Errorf("sequence does not exist")).WithIDs(sequenceID)
		}
		sequence := sequences[0]

		if input.Name != nil {
			sequence.Name = *input.Name
		}
		if input.Description != nil {
			sequence.Description = *input.Description
		}
		if input.IsTemplate != nil {
			sequence.IsTemplate = *input.IsTemplate
		}
		if input.SetNode {
			if input.CurriculumNodeID != nil {
				nodes, err := s.nodeRepo.GetByIDs(ctx, txx, []uuid.UUID{*input.CurriculumNodeID})
				if err != nil {
					return err
				}
				if len(nodes) == 0 {
					return apierr.Referential("node_not_found", fmt.Errorf("associated node does not exist")).WithIDs(*input.CurriculumNodeID)
				}
			}
			sequence.CurriculumNodeID = input.CurriculumNodeID
		}

		updated, err = s.seqRepo.Save(ctx, txx, sequence)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the sequence and its positions; positions go first so the
// sequence never exists with dangling placements.
func (s *sequenceService) Delete(ctx context.Context, tx *gorm.DB, sequenceID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	err := transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		sequences, err := s.seqRepo.GetByIDs(ctx, txx, []uuid.UUID{sequenceID})
		if err != nil {
			return err
		}
		if len(sequences) == 0 {
			return apierr.Referential("sequence_not_found", fmt.Errorf("sequence does not exist")).WithIDs(sequenceID)
		}
		if err := s.posRepo.SoftDeleteBySequenceIDs(ctx, txx, []uuid.UUID{sequenceID}); err != nil {
			return err
		}
		return s.seqRepo.SoftDeleteByIDs(ctx, txx, []uuid.UUID{sequenceID})
	})
	if err != nil {
		return err
	}
	s.log.Info("learning sequence deleted", "sequence_id", sequenceID)
	return nil
}

// sequenceGradeLevels derives a sequence's grade-level set from its
// associated node; a detached sequence has the empty set.
func sequenceGradeLevels(ctx context.Context, tx *gorm.DB, nodeRepo repos.CurriculumNodeRepo, sequence *types.LearningSequence) ([]types.GradeLevel, error) {
	if sequence.CurriculumNodeID == nil {
		return []types.GradeLevel{}, nil
	}
	nodes, err := nodeRepo.GetByIDs(ctx, tx, []uuid.UUID{*sequence.CurriculumNodeID})
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return []types.GradeLevel{}, nil
	}
	return types.DecodeGradeLevels(nodes[0].GradeLevels), nil
}
