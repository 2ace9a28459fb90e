package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NodeType classifies a curriculum node within the taxonomy.
type NodeType string

const (
	NodeTypeYear    NodeType = "YEAR"
	NodeTypeAxis    NodeType = "AXIS"
	NodeTypeUnit    NodeType = "UNIT"
	NodeTypeTopic   NodeType = "TOPIC"
	NodeTypeConcept NodeType = "CONCEPT"
	NodeTypeGeneric NodeType = "GENERIC"
)

func (t NodeType) Valid() bool {
	switch t {
	case NodeTypeYear, NodeTypeAxis, NodeTypeUnit, NodeTypeTopic, NodeTypeConcept, NodeTypeGeneric:
		return true
	}
	return false
}

type CurriculumNode struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string          `gorm:"column:name;not null" json:"name"`
	Description string          `gorm:"column:description" json:"description"`
	NodeType    NodeType        `gorm:"column:node_type;not null;default:GENERIC" json:"node_type"`
	Order       *int            `gorm:"column:order" json:"order,omitempty"`
	GradeLevels datatypes.JSON  `gorm:"column:grade_levels;type:jsonb" json:"grade_levels"` // []GradeLevel
	Metadata    datatypes.JSON  `gorm:"column:metadata;type:jsonb" json:"metadata"`
	ParentID    *uuid.UUID      `gorm:"type:uuid;index:idx_curriculum_node_parent" json:"parent_id,omitempty"`
	Parent      *CurriculumNode `gorm:"constraint:OnDelete:SET NULL;foreignKey:ParentID;references:ID" json:"parent,omitempty"`
	CreatedAt   time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"deleted_at,omitempty"`
}

func (CurriculumNode) TableName() string { return "curriculum_node" }

func (n *CurriculumNode) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
