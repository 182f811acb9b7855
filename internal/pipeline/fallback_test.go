package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gridsage/plantenrich/internal/model"
)

func TestRuleFallback_NoCapacityFactor(t *testing.T) {
	f := NewRuleFallback()

	out := f.Classify(model.PlantRecord{PlantName: "Unknown", FuelType: "Nuclear"})

	assert.Equal(t, model.FlagNoData, out.Flag)
	assert.Equal(t, model.FlagSourceFallback, out.Source)
}

func TestRuleFallback_FuelBands(t *testing.T) {
	f := NewRuleFallback()

	tests := []struct {
		name string
		fuel string
		cf   float64
		flag string
	}{
		{"nuclear in band", "Nuclear", 95, "Normal"},
		{"nuclear low", "Nuclear", 50, "Low_Nuclear"},
		{"nuclear high", "Nuclear", 115, "High_Nuclear"},
		{"nuclear extreme high", "Nuclear", 250, "Extreme_Nuclear"},
		{"nuclear extreme low", "Nuclear", 30, "Extreme_Nuclear"},
		{"gas in band", "Natural Gas", 55, "Normal"},
		{"coal high", "Coal", 95, "High_Fossil"},
		{"hydro low", "Conventional Hydroelectric", 7, "Low_Hydro"},
		{"wind in band", "Wind", 30, "Normal"},
		{"solar extreme", "Solar Photovoltaic", 120, "Extreme_Solar"},
		{"keyword match is case-insensitive", "NUCLEAR", 95, "Normal"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := testRecord("P", tc.fuel, "AL", tc.cf)
			out := f.Classify(rec)
			assert.Equal(t, tc.flag, out.Flag)
			assert.Equal(t, model.FlagSourceFallback, out.Source)
		})
	}
}

func TestRuleFallback_KeywordOrderPrefersSpecificFuel(t *testing.T) {
	f := NewRuleFallback()

	// "gas" appears in the fossil bucket, but a combined description that
	// names a known fuel takes that fuel's band rather than the mixed rule.
	out := f.Classify(testRecord("Combo", "Petroleum Liquids, Natural Gas", "TX", 55))
	assert.Equal(t, "Normal", out.Flag)
}

func TestRuleFallback_MixedFuelOutsideGenericBand(t *testing.T) {
	f := NewRuleFallback()

	// No keyword matches; comma means multiple fuels.
	out := f.Classify(testRecord("Mixed Plant", "Petroleum Liquids, Wood Waste", "GA", 95))
	assert.Equal(t, model.FlagMixedUnusual, out.Flag)

	out = f.Classify(testRecord("Mixed Plant", "Petroleum Liquids, Wood Waste", "GA", 50))
	assert.Equal(t, model.FlagNormal, out.Flag)
}

func TestRuleFallback_UnrecognizedSingleFuelUsesGenericBand(t *testing.T) {
	f := NewRuleFallback()

	out := f.Classify(testRecord("Geo Plant", "Geothermal", "NV", 95))
	assert.Equal(t, "High_Geothermal", out.Flag)

	out = f.Classify(testRecord("Geo Plant", "Geothermal", "NV", 50))
	assert.Equal(t, model.FlagNormal, out.Flag)
}

func TestValidFlag(t *testing.T) {
	valid := []string{
		"Normal", "Mixed_Fuel_Unusual", "No_Data",
		"High_Nuclear", "Low_Solar", "Extreme_Wind", "High_Natural Gas",
	}
	for _, flag := range valid {
		assert.True(t, ValidFlag(flag), flag)
	}

	invalid := []string{
		"", "normal", "High_", "Low_", "Extreme_", "Weird", "OK", "high_nuclear",
	}
	for _, flag := range invalid {
		assert.False(t, ValidFlag(flag), flag)
	}
}
