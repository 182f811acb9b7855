package pipeline

import (
	"math"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gridsage/plantenrich/internal/model"
)

// HoursInPeriod returns the total hours of a monthly reporting period given
// as "YYYY-MM" (days in month × 24).
func HoursInPeriod(period string) (float64, error) {
	start, err := time.Parse("2006-01", period)
	if err != nil {
		return 0, eris.Wrapf(err, "capacity: parse period %q", period)
	}
	days := start.AddDate(0, 1, 0).Sub(start).Hours() / 24
	return days * 24, nil
}

// CapacityFactorPercent computes generation as a percentage of the
// theoretical maximum over the period, rounded to two decimals. The value
// is deliberately not clamped: factors above 100% are the signal the
// classifier interprets, not an error.
func CapacityFactorPercent(generationMWh, capacityMW, totalHours float64) float64 {
	theoreticalMax := capacityMW * totalHours
	return math.Round(generationMWh/theoreticalMax*100*100) / 100
}

// ApplyCapacityFactors derives the capacity factor for every record with a
// known, non-zero capacity. Records without one are left untouched: an
// unknown capacity cannot be divided by, so the field stays absent.
func ApplyCapacityFactors(records []model.PlantRecord, period string) ([]model.PlantRecord, int, error) {
	hours, err := HoursInPeriod(period)
	if err != nil {
		return nil, 0, err
	}

	out := make([]model.PlantRecord, len(records))
	computed := 0
	for i, rec := range records {
		out[i] = rec
		if rec.PlantCapacityMW == nil || *rec.PlantCapacityMW <= 0 || rec.TotalGenerationMWh == nil {
			continue
		}
		cf := CapacityFactorPercent(*rec.TotalGenerationMWh, *rec.PlantCapacityMW, hours)
		out[i].CapacityFactorPercent = &cf
		computed++
	}

	zap.L().Info("capacity: derived capacity factors",
		zap.String("period", period),
		zap.Float64("period_hours", hours),
		zap.Int("computed", computed),
		zap.Int("skipped", len(records)-computed),
	)
	return out, computed, nil
}
