package pipeline

import (
	"go.uber.org/zap"

	"github.com/gridsage/plantenrich/internal/model"
)

// FilterGeographic restricts records to those whose state code passes the
// filter spec. Filtering is idempotent and an empty result is valid; it
// simply propagates an empty enriched output.
func FilterGeographic(records []model.PlantRecord, spec model.FilterSpec) []model.PlantRecord {
	if spec.Kind == model.FilterAll {
		return records
	}

	kept := make([]model.PlantRecord, 0, len(records))
	for _, rec := range records {
		if spec.Matches(rec.StateCode) {
			kept = append(kept, rec)
		}
	}

	zap.L().Info("geofilter: restricted working set",
		zap.String("filter", spec.String()),
		zap.Int("input", len(records)),
		zap.Int("kept", len(kept)),
	)
	return kept
}
