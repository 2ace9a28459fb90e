package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LearningSequence is a named, ordered collection of content placements. Its
// grade-level set is derived from the optionally associated curriculum node.
type LearningSequence struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name             string          `gorm:"column:name;not null" json:"name"`
	Description      string          `gorm:"column:description" json:"description"`
	IsTemplate       bool            `gorm:"column:is_template;not null;default:false" json:"is_template"`
	CurriculumNodeID *uuid.UUID      `gorm:"type:uuid;index:idx_learning_sequence_node" json:"curriculum_node_id,omitempty"`
	CurriculumNode   *CurriculumNode `gorm:"constraint:OnDelete:SET NULL;foreignKey:CurriculumNodeID;references:ID" json:"curriculum_node,omitempty"`
	CreatedAt        time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"not null" json:"updated_at"`
	DeletedAt        gorm.DeletedAt  `gorm:"index" json:"deleted_at,omitempty"`
}

func (LearningSequence) TableName() string { return "learning_sequence" }

func (s *LearningSequence) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
