package model

// FlagSource records whether a classification flag came from the external
// classifier or the deterministic rule fallback.
type FlagSource string

const (
	FlagSourceClassifier FlagSource = "classifier"
	FlagSourceFallback   FlagSource = "fallback"
)

// Well-known flag categories. High/Low/Extreme flags carry a fuel-type
// suffix (e.g. "High_Nuclear") and are validated by prefix, not enumerated.
const (
	FlagNormal       = "Normal"
	FlagMixedUnusual = "Mixed_Fuel_Unusual"
	FlagNoData       = "No_Data"

	FlagPrefixHigh    = "High_"
	FlagPrefixLow     = "Low_"
	FlagPrefixExtreme = "Extreme_"
)

// FuelContribution is one fuel/prime-mover row folded into an aggregated
// plant record.
type FuelContribution struct {
	FuelCode      string  `json:"fuel_code"`
	FuelType      string  `json:"fuel_type"`
	PrimeMover    string  `json:"prime_mover"`
	GenerationMWh float64 `json:"generation_mwh"`
}

// PlantRecord is one plant's generation observation for a single reporting
// period, progressively enriched as it moves through the pipeline. Derived
// fields use pointers so "not yet computed" is distinguishable from zero.
type PlantRecord struct {
	// Identity.
	PlantCode int64  `json:"plant_code"`
	Period    string `json:"period"`

	// Descriptive, from the generation feed.
	PlantName  string `json:"plant_name"`
	StateCode  string `json:"state_code"`
	StateName  string `json:"state_name,omitempty"`
	CountyName string `json:"county_name,omitempty"`
	FuelType   string `json:"fuel_type"`
	PrimeMover string `json:"prime_mover,omitempty"`

	// Measured.
	TotalGenerationMWh *float64           `json:"total_generation_mwh"`
	FuelBreakdown      []FuelContribution `json:"fuel_breakdown,omitempty"`

	// Gained from the metadata merge; nil/empty when no match existed.
	OperatorName    string             `json:"operator_name,omitempty"`
	Address         string             `json:"address,omitempty"`
	Latitude        *float64           `json:"latitude,omitempty"`
	Longitude       *float64           `json:"longitude,omitempty"`
	PlantCapacityMW *float64           `json:"plant_capacity_mw,omitempty"`
	CapacityByType  map[string]float64 `json:"capacity_by_type,omitempty"`
	MetadataMatched bool               `json:"metadata_matched"`

	// Derived downstream.
	CapacityFactorPercent *float64   `json:"capacity_factor_percent,omitempty"`
	ClassificationFlag    string     `json:"classification_flag,omitempty"`
	FlagSource            FlagSource `json:"flag_source,omitempty"`
	AnalysisNotes         string     `json:"analysis_notes,omitempty"`
}

// Classifiable reports whether the record carries enough data to be
// submitted to the external classifier.
func (r *PlantRecord) Classifiable() bool {
	return r.CapacityFactorPercent != nil && r.FuelType != ""
}

// Generation returns the measured generation or 0 when absent.
func (r *PlantRecord) Generation() float64 {
	if r.TotalGenerationMWh == nil {
		return 0
	}
	return *r.TotalGenerationMWh
}
