package pipeline

import (
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/gridsage/plantenrich/internal/eia"
	"github.com/gridsage/plantenrich/internal/model"
)

// AggregateByPlant folds per-fuel generation rows into one record per
// plant: generation is summed across fuels, fuel descriptions are combined,
// and the per-fuel breakdown is preserved. Output is sorted by total
// generation, descending, so batches lead with the largest plants.
func AggregateByPlant(rows []eia.GenerationRow) []model.PlantRecord {
	groups := make(map[string][]eia.GenerationRow)
	order := make([]string, 0)
	for _, row := range rows {
		if _, seen := groups[row.PlantCode]; !seen {
			order = append(order, row.PlantCode)
		}
		groups[row.PlantCode] = append(groups[row.PlantCode], row)
	}

	records := make([]model.PlantRecord, 0, len(groups))
	for _, code := range order {
		group := groups[code]
		first := group[0]

		var total float64
		fuelSet := make(map[string]bool)
		breakdown := make([]model.FuelContribution, 0, len(group))
		for _, row := range group {
			gen := 0.0
			if row.GrossGeneration != nil {
				gen = *row.GrossGeneration
			}
			total += gen
			if row.FuelDescription != "" {
				fuelSet[row.FuelDescription] = true
			}
			breakdown = append(breakdown, model.FuelContribution{
				FuelCode:      row.FuelCode,
				FuelType:      row.FuelDescription,
				PrimeMover:    row.PrimeMover,
				GenerationMWh: gen,
			})
		}

		fuels := make([]string, 0, len(fuelSet))
		for f := range fuelSet {
			fuels = append(fuels, f)
		}
		sort.Strings(fuels)
		fuelType := strings.Join(fuels, ", ")
		if fuelType == "" {
			fuelType = "Mixed"
		}

		// Plant codes that fail numeric coercion keep their record but can
		// never match the reference table.
		plantCode, err := strconv.ParseInt(code, 10, 64)
		if err != nil {
			plantCode = 0
			zap.L().Debug("aggregate: uncoercible plant code",
				zap.String("plant_code", code),
				zap.String("plant_name", first.PlantName),
			)
		}

		stateCode := first.State
		if resolved, ok := model.StateCodeFor(first.StateDescription); ok && stateCode == "" {
			stateCode = resolved
		}

		gen := total
		records = append(records, model.PlantRecord{
			PlantCode:          plantCode,
			Period:             first.Period,
			PlantName:          first.PlantName,
			StateCode:          stateCode,
			StateName:          first.StateDescription,
			FuelType:           fuelType,
			PrimeMover:         first.PrimeMover,
			TotalGenerationMWh: &gen,
			FuelBreakdown:      breakdown,
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Generation() > records[j].Generation()
	})

	zap.L().Info("aggregate: folded fuel rows into plants",
		zap.Int("rows", len(rows)),
		zap.Int("plants", len(records)),
	)
	return records
}
