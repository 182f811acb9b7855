package pipeline

import (
	"strings"

	"github.com/gridsage/plantenrich/internal/model"
)

// Outcome is one record's classification result.
type Outcome struct {
	Flag   string
	Source model.FlagSource
	Notes  string
}

// fuelRule maps a family of fuel-description keywords to the capacity
// factor band considered normal for that fuel.
type fuelRule struct {
	label    string
	keywords []string
	low      float64
	high     float64
}

// fallbackRules holds the expected capacity-factor ranges per fuel type.
// Order matters: the first keyword match wins, so nuclear is checked before
// the broader fossil bucket.
var fallbackRules = []fuelRule{
	{label: "Nuclear", keywords: []string{"nuclear"}, low: 70, high: 110},
	{label: "Fossil", keywords: []string{"natural gas", "gas", "coal"}, low: 20, high: 90},
	{label: "Hydro", keywords: []string{"hydro", "water"}, low: 10, high: 80},
	{label: "Wind", keywords: []string{"wind"}, low: 5, high: 60},
	{label: "Solar", keywords: []string{"solar", "sun"}, low: 5, high: 50},
}

// mixedRule is the generic band applied to plants whose combined fuel
// description matches no single rule.
var mixedRule = fuelRule{label: "Mixed", low: 10, high: 90}

// extremeFactor scales the band bounds: above high×factor or below
// low÷factor is flagged Extreme rather than merely High/Low.
const extremeFactor = 2.0

// RuleFallback is the deterministic classifier used when the external
// classifier fails for a batch, or returns no result for a record.
type RuleFallback struct{}

// NewRuleFallback creates the rule-based fallback classifier.
func NewRuleFallback() *RuleFallback {
	return &RuleFallback{}
}

// Classify derives a flag from the record's fuel type and capacity factor
// alone. The categories match the external classifier's so downstream
// consumers cannot distinguish source by shape; provenance is carried in
// Outcome.Source.
func (f *RuleFallback) Classify(rec model.PlantRecord) Outcome {
	if rec.CapacityFactorPercent == nil {
		return Outcome{Flag: model.FlagNoData, Source: model.FlagSourceFallback}
	}

	cf := *rec.CapacityFactorPercent
	fuel := strings.ToLower(rec.FuelType)

	for _, rule := range fallbackRules {
		for _, kw := range rule.keywords {
			if strings.Contains(fuel, kw) {
				return Outcome{Flag: rule.flag(cf), Source: model.FlagSourceFallback}
			}
		}
	}

	// Mixed or unrecognized fuel: a plant combining several fuels that
	// still lands far outside the generic band is its own category.
	if strings.Contains(rec.FuelType, ",") {
		if cf < mixedRule.low || cf > mixedRule.high {
			return Outcome{Flag: model.FlagMixedUnusual, Source: model.FlagSourceFallback}
		}
		return Outcome{Flag: model.FlagNormal, Source: model.FlagSourceFallback}
	}

	rule := mixedRule
	rule.label = labelForFuel(rec.FuelType)
	return Outcome{Flag: rule.flag(cf), Source: model.FlagSourceFallback}
}

// flag places a capacity factor against the rule's band.
func (r fuelRule) flag(cf float64) string {
	switch {
	case cf >= r.low && cf <= r.high:
		return model.FlagNormal
	case cf > r.high*extremeFactor || cf < r.low/extremeFactor:
		return model.FlagPrefixExtreme + r.label
	case cf > r.high:
		return model.FlagPrefixHigh + r.label
	default:
		return model.FlagPrefixLow + r.label
	}
}

// labelForFuel condenses an arbitrary fuel description into a flag suffix
// by capitalizing its first word: "petroleum liquids" -> "Petroleum".
func labelForFuel(fuelType string) string {
	fields := strings.Fields(fuelType)
	if len(fields) == 0 {
		return "Other"
	}
	word := strings.ToLower(strings.Trim(fields[0], ",.;"))
	if word == "" {
		return "Other"
	}
	return strings.ToUpper(word[:1]) + word[1:]
}

// ValidFlag reports whether a classifier-supplied flag has one of the five
// allowed shapes. Anything else is treated as a missing result so the
// record falls through to the fallback.
func ValidFlag(flag string) bool {
	switch flag {
	case model.FlagNormal, model.FlagMixedUnusual, model.FlagNoData:
		return true
	}
	for _, prefix := range []string{model.FlagPrefixHigh, model.FlagPrefixLow, model.FlagPrefixExtreme} {
		if strings.HasPrefix(flag, prefix) && len(flag) > len(prefix) {
			return true
		}
	}
	return false
}
