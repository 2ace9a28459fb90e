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

type CreateContentInput struct {
	Title            string
	ContentType      types.ContentResourceType
	GradeLevels      []types.GradeLevel
	CurriculumNodeID *uuid.UUID
	Metadata         datatypes.JSON
}

// ContentService is the thin collaborator boundary to the content store:
// enough surface for existence checks and grade metadata, nothing more.
type ContentService interface {
	Create(ctx context.Context, tx *gorm.DB, input CreateContentInput) (*types.ContentResource, error)
	Get(ctx context.Context, tx *gorm.DB, resourceID uuid.UUID) (*types.ContentResource, error)
}

type contentService struct {
	db          *gorm.DB
	log         *logger.Logger
	contentRepo repos.ContentResourceRepo
	nodeRepo    repos.CurriculumNodeRepo
}

func NewContentService(
	db *gorm.DB,
	baseLog *logger.Logger,
	contentRepo repos.ContentResourceRepo,
	nodeRepo repos.CurriculumNodeRepo,
) ContentService {
	return &contentService{
		db:          db,
		log:         baseLog.With("service", "ContentService"),
		contentRepo: contentRepo,
		nodeRepo:    nodeRepo,
	}
}

func (s *contentService) Create(ctx context.Context, tx *gorm.DB, input CreateContentInput) (*types.ContentResource, error) {
	if input.Title == "" {
		return nil, apierr.Validation("empty_title", fmt.Errorf("content title must not be empty"))
	}
	contentType := input.ContentType
	if contentType == "" {
		contentType = types.ContentTypeText
	}
	gradeLevels, err := types.EncodeGradeLevels(input.GradeLevels)
	if err != nil {
		return nil, apierr.Validation("invalid_grade_level", err)
	}

	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	var created *types.ContentResource
	err = transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		if input.CurriculumNodeID != nil {
			nodes, err := s.nodeRepo.GetByIDs(ctx, txx, []uuid.UUID{*input.CurriculumNodeID})
			if err != nil {
				return err
			}
			if len(nodes) == 0 {
				return apierr.Referential("node_not_found", fmt.Errorf("curriculum node does not exist")).WithIDs(*input.CurriculumNodeID)
			}
		}
		var err error
		created, err = s.contentRepo.Create(ctx, txx, &types.ContentResource{
			Title:            input.Title,
			ContentType:      contentType,
			GradeLevels:      gradeLevels,
			CurriculumNodeID: input.CurriculumNodeID,
			Metadata:         input.Metadata,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *contentService) Get(ctx context.Context, tx *gorm.DB, resourceID uuid.UUID) (*types.ContentResource, error) {
	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	resources, err := s.contentRepo.GetByIDs(ctx, transaction, []uuid.UUID{resourceID})
	if err != nil {
		return nil, err
	}
	if len(resources) == 0 {
		return nil, apierr.Referential("content_not_found", fmt.Errorf("content resource does not exist")).WithIDs(resourceID)
	}
	return resources[0], nil
}
