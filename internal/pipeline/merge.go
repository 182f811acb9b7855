package pipeline

import (
	"go.uber.org/zap"

	"github.com/gridsage/plantenrich/internal/model"
	"github.com/gridsage/plantenrich/internal/refdata"
)

// MergeStats counts match outcomes of the metadata join.
type MergeStats struct {
	Matched   int
	Unmatched int
}

// Merge performs a left outer join of generation records against the
// reference table: every record is retained, matched records gain capacity
// and location metadata, unmatched records keep those fields absent.
func Merge(records []model.PlantRecord, table *refdata.Table) ([]model.PlantRecord, MergeStats) {
	var stats MergeStats
	merged := make([]model.PlantRecord, len(records))

	for i, rec := range records {
		merged[i] = rec

		meta, ok := table.Plants[rec.PlantCode]
		if !ok || rec.PlantCode == 0 {
			stats.Unmatched++
			continue
		}
		stats.Matched++

		out := &merged[i]
		out.MetadataMatched = true
		out.OperatorName = meta.UtilityName
		out.Address = meta.Address()
		out.Latitude = meta.Latitude
		out.Longitude = meta.Longitude
		out.PlantCapacityMW = meta.TotalMW
		out.CapacityByType = meta.CapacityByType
		if meta.PlantName != "" {
			out.PlantName = meta.PlantName
		}
		if out.StateCode == "" {
			out.StateCode = meta.State
		}
	}

	zap.L().Info("merge: joined reference metadata",
		zap.Int("matched", stats.Matched),
		zap.Int("unmatched", stats.Unmatched),
	)
	return merged, stats
}
