package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SequencePosition is one ordered placement of a content item inside a
// learning sequence. Position values are positive but neither contiguous nor
// unique; traversal order is position ascending with created_at then id as
// tie-breakers.
type SequencePosition struct {
	ID                uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	SequenceID        uuid.UUID         `gorm:"type:uuid;not null;index:idx_sequence_position_sequence" json:"sequence_id"`
	Sequence          *LearningSequence `gorm:"constraint:OnDelete:CASCADE;foreignKey:SequenceID;references:ID" json:"sequence,omitempty"`
	ContentResourceID uuid.UUID         `gorm:"type:uuid;not null;index:idx_sequence_position_content" json:"content_resource_id"`
	ContentResource   *ContentResource  `gorm:"constraint:OnDelete:CASCADE;foreignKey:ContentResourceID;references:ID" json:"content_resource,omitempty"`
	Position          int               `gorm:"column:position;not null" json:"position"`
	IsOptional        bool              `gorm:"column:is_optional;not null;default:false" json:"is_optional"`
	CreatedAt         time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time         `gorm:"not null" json:"updated_at"`
	DeletedAt         gorm.DeletedAt    `gorm:"index" json:"deleted_at,omitempty"`
}

func (SequencePosition) TableName() string { return "sequence_position" }

func (p *SequencePosition) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
