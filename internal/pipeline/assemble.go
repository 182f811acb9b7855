package pipeline

import (
	"github.com/rotisserie/eris"

	"github.com/gridsage/plantenrich/internal/model"
)

// Assemble attaches classification outcomes to their records, producing the
// final enriched set. Every record must carry exactly one flag by now; a
// record without one means the orchestrator's coverage guarantee was
// broken, which is a defect, not a run outcome, and fails loudly.
func Assemble(records []model.PlantRecord, outcomes []Outcome) ([]model.PlantRecord, error) {
	if len(records) != len(outcomes) {
		return nil, eris.Errorf("assemble: %d records but %d outcomes", len(records), len(outcomes))
	}

	enriched := make([]model.PlantRecord, len(records))
	for i, rec := range records {
		out := outcomes[i]
		if out.Flag == "" || out.Source == "" {
			return nil, eris.Errorf("assemble: record %q (plant %d) exited the pipeline unclassified",
				rec.PlantName, rec.PlantCode)
		}
		enriched[i] = rec
		enriched[i].ClassificationFlag = out.Flag
		enriched[i].FlagSource = out.Source
		enriched[i].AnalysisNotes = out.Notes
	}
	return enriched, nil
}
