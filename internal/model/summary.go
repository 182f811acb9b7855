package model

// RunSummary tallies per-stage exclusions and classification outcomes so a
// user can judge result trustworthiness without inspecting internals.
type RunSummary struct {
	Period string `json:"period"`
	Filter string `json:"filter"`

	RawRecords        int `json:"raw_records"`
	RemovedSentinel   int `json:"removed_sentinel"`
	RemovedZeroGen    int `json:"removed_zero_gen"`
	RemovedPlantCode  int `json:"removed_plant_code"`
	AggregatedPlants  int `json:"aggregated_plants"`
	MetadataMatched   int `json:"metadata_matched"`
	MetadataUnmatched int `json:"metadata_unmatched"`
	CapacityComputed  int `json:"capacity_computed"`
	FilteredRecords   int `json:"filtered_records"`
	UnmatchedCodes    int `json:"unmatched_filter_codes"`

	BatchesTotal          int     `json:"batches_total"`
	BatchesFailed         int     `json:"batches_failed"`
	ClassifierFlags       int     `json:"classifier_flags"`
	FallbackFlags         int     `json:"fallback_flags"`
	UnmatchedResponseKeys int     `json:"unmatched_response_keys"`
	EstimatedCostUSD      float64 `json:"estimated_cost_usd"`
}

// TokenUsage accumulates classifier token consumption across batches.
type TokenUsage struct {
	InputTokens         int `json:"input_tokens"`
	OutputTokens        int `json:"output_tokens"`
	CacheCreationTokens int `json:"cache_creation_tokens"`
	CacheReadTokens     int `json:"cache_read_tokens"`
}
