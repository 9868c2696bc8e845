// Package health gathers probe signals and decides whether an operation
// may keep going.
package health

import (
	"github.com/ArtAhmetaj/adaptive-backfill/internal/model"
)

// ShouldHalt reports whether any signal in the set demands a halt.
// OR semantics: one halt entry halts the whole set, without weighting.
// An empty snapshot does not halt.
func ShouldHalt(signals model.Snapshot) bool {
	for _, sig := range signals {
		if !sig.Healthy {
			return true
		}
	}
	return false
}
