// Package pipeline implements the enrichment pipeline: cleaning, plant
// aggregation, metadata merge, capacity-factor derivation, geographic
// filtering, and the batched classification orchestrator.
package pipeline

import (
	"go.uber.org/zap"

	"github.com/gridsage/plantenrich/internal/eia"
)

// sentinelPlantCode is the feed's "state total" pseudo-plant.
const sentinelPlantCode = "99999"

// aggregateSentinel marks rows that roll up all fuels or prime movers.
const aggregateSentinel = "ALL"

// CleanStats counts rows removed per rule.
type CleanStats struct {
	Input            int
	RemovedSentinel  int
	RemovedZeroGen   int
	RemovedPlantCode int
	Kept             int
}

// Clean drops aggregate sentinel rows, rows without a usable generation
// value, and the non-plant sentinel code. Rows failing several rules are
// attributed to the first matching rule. Empty input yields empty output.
func Clean(rows []eia.GenerationRow) ([]eia.GenerationRow, CleanStats) {
	stats := CleanStats{Input: len(rows)}
	kept := make([]eia.GenerationRow, 0, len(rows))

	for _, row := range rows {
		switch {
		case row.FuelCode == aggregateSentinel || row.PrimeMover == aggregateSentinel:
			stats.RemovedSentinel++
		case row.GrossGeneration == nil || *row.GrossGeneration == 0:
			stats.RemovedZeroGen++
		case row.PlantCode == sentinelPlantCode:
			stats.RemovedPlantCode++
		default:
			kept = append(kept, row)
		}
	}

	stats.Kept = len(kept)
	zap.L().Info("clean: filtered raw rows",
		zap.Int("input", stats.Input),
		zap.Int("removed_sentinel", stats.RemovedSentinel),
		zap.Int("removed_zero_gen", stats.RemovedZeroGen),
		zap.Int("removed_plant_code", stats.RemovedPlantCode),
		zap.Int("kept", stats.Kept),
	)
	return kept, stats
}
