package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridsage/plantenrich/internal/model"
)

func TestAssemble_AttachesOutcomes(t *testing.T) {
	records := []model.PlantRecord{
		{PlantName: "A"},
		{PlantName: "B"},
	}
	outcomes := []Outcome{
		{Flag: "Normal", Source: model.FlagSourceClassifier, Notes: "within range"},
		{Flag: "High_Nuclear", Source: model.FlagSourceFallback},
	}

	enriched, err := Assemble(records, outcomes)

	require.NoError(t, err)
	assert.Equal(t, "Normal", enriched[0].ClassificationFlag)
	assert.Equal(t, model.FlagSourceClassifier, enriched[0].FlagSource)
	assert.Equal(t, "within range", enriched[0].AnalysisNotes)
	assert.Equal(t, "High_Nuclear", enriched[1].ClassificationFlag)

	// Input records stay unclassified.
	assert.Empty(t, records[0].ClassificationFlag)
}

func TestAssemble_LengthMismatch(t *testing.T) {
	_, err := Assemble(make([]model.PlantRecord, 2), make([]Outcome, 1))
	assert.Error(t, err)
}

func TestAssemble_UnclassifiedRecordFails(t *testing.T) {
	records := []model.PlantRecord{{PlantName: "A"}}
	outcomes := []Outcome{{}}

	_, err := Assemble(records, outcomes)
	assert.Error(t, err)
}
