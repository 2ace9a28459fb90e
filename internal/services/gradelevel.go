package services

import (
	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/types"
)

// CompatibilityVerdict is the advisory result of comparing two grade-level
// sets. It is surfaced to the caller as a warning and never blocks a write.
type CompatibilityVerdict string

const (
	CompatibilityCompatible  CompatibilityVerdict = "COMPATIBLE"
	CompatibilityNoOverlap   CompatibilityVerdict = "NO_OVERLAP"
	CompatibilityUnspecified CompatibilityVerdict = "UNSPECIFIED"
)

// Compatibility compares two grade-level sets. An empty set on either side
// means "no restriction" and yields UNSPECIFIED rather than a mismatch.
func Compatibility(setA, setB []types.GradeLevel) CompatibilityVerdict {
	if len(setA) == 0 || len(setB) == 0 {
		return CompatibilityUnspecified
	}
	members := make(map[types.GradeLevel]struct{}, len(setA))
	for _, g := range setA {
		members[g] = struct{}{}
	}
	for _, g := range setB {
		if _, ok := members[g]; ok {
			return CompatibilityCompatible
		}
	}
	return CompatibilityNoOverlap
}
