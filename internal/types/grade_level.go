package types

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
)

// GradeLevel is one of the supported secondary-school years.
type GradeLevel string

const (
	GradeLevelFirst  GradeLevel = "FIRST"
	GradeLevelSecond GradeLevel = "SECOND"
	GradeLevelThird  GradeLevel = "THIRD"
)

func (g GradeLevel) Valid() bool {
	switch g {
	case GradeLevelFirst, GradeLevelSecond, GradeLevelThird:
		return true
	}
	return false
}

// EncodeGradeLevels packs a grade-level set into the jsonb column format.
func EncodeGradeLevels(levels []GradeLevel) (datatypes.JSON, error) {
	for _, g := range levels {
		if !g.Valid() {
			return nil, fmt.Errorf("invalid grade level %q", g)
		}
	}
	if levels == nil {
		levels = []GradeLevel{}
	}
	raw, err := json.Marshal(levels)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// DecodeGradeLevels unpacks a jsonb grade-level column; a null or empty
// column decodes as the empty set.
func DecodeGradeLevels(raw datatypes.JSON) []GradeLevel {
	if len(raw) == 0 {
		return []GradeLevel{}
	}
	var levels []GradeLevel
	if err := json.Unmarshal(raw, &levels); err != nil {
		return []GradeLevel{}
	}
	if levels == nil {
		return []GradeLevel{}
	}
	return levels
}
