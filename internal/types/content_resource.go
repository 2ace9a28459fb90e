package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ContentResourceType mirrors the renderers the platform supports. Rendering
// itself happens outside this service; the engine only needs existence and
// grade metadata.
type ContentResourceType string

const (
	ContentTypeText       ContentResourceType = "TEXT"
	ContentTypeVideo      ContentResourceType = "VIDEO"
	ContentTypePDF        ContentResourceType = "PDF"
	ContentTypeSimulation ContentResourceType = "SIMULATION"
	ContentTypeExercise   ContentResourceType = "EXERCISE"
)

type ContentResource struct {
	ID               uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	Title            string              `gorm:"column:title;not null" json:"title"`
	ContentType      ContentResourceType `gorm:"column:content_type;not null;default:TEXT" json:"content_type"`
	GradeLevels      datatypes.JSON      `gorm:"column:grade_levels;type:jsonb" json:"grade_levels"` // []GradeLevel
	CurriculumNodeID *uuid.UUID          `gorm:"type:uuid;index:idx_content_resource_node" json:"curriculum_node_id,omitempty"`
	CurriculumNode   *CurriculumNode     `gorm:"constraint:OnDelete:SET NULL;foreignKey:CurriculumNodeID;references:ID" json:"curriculum_node,omitempty"`
	Metadata         datatypes.JSON      `gorm:"column:metadata;type:jsonb" json:"metadata"`
	CreatedAt        time.Time           `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time           `gorm:"not null" json:"updated_at"`
	DeletedAt        gorm.DeletedAt      `gorm:"index" json:"deleted_at,omitempty"`
}

func (ContentResource) TableName() string { return "content_resource" }

func (r *ContentResource) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
