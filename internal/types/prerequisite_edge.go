package types

import (
	"time"

	"github.com/google/uuid"
)

// StrengthLevel classifies how hard a prerequisite relationship is.
type StrengthLevel string

const (
	StrengthRequired    StrengthLevel = "REQUIRED"
	StrengthRecommended StrengthLevel = "RECOMMENDED"
)

func (s StrengthLevel) Valid() bool {
	switch s {
	case StrengthRequired, StrengthRecommended:
		return true
	}
	return false
}

// PrerequisiteEdge is a directed dependency between two curriculum nodes,
// keyed on the ordered (prerequisite, dependent) pair. The graph is kept
// independent of the parent/child tree and is not required to be acyclic.
type PrerequisiteEdge struct {
	PrerequisiteNodeID uuid.UUID       `gorm:"type:uuid;primaryKey" json:"prerequisite_node_id"`
	DependentNodeID    uuid.UUID       `gorm:"type:uuid;primaryKey;index:idx_prerequisite_edge_dependent" json:"dependent_node_id"`
	PrerequisiteNode   *CurriculumNode `gorm:"constraint:OnDelete:CASCADE;foreignKey:PrerequisiteNodeID;references:ID" json:"prerequisite_node,omitempty"`
	DependentNode      *CurriculumNode `gorm:"constraint:OnDelete:CASCADE;foreignKey:DependentNodeID;references:ID" json:"dependent_node,omitempty"`
	StrengthLevel      StrengthLevel   `gorm:"column:strength_level;not null;default:REQUIRED" json:"strength_level"`
	CreatedAt          time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"not null" json:"updated_at"`
}

func (PrerequisiteEdge) TableName() string { return "prerequisite_edge" }
