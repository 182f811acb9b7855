package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gridsage/plantenrich/internal/config"
	"github.com/gridsage/plantenrich/internal/model"
	"github.com/gridsage/plantenrich/pkg/anthropic"
)

const classifySystemPrompt = `You are an energy analyst reviewing power plant capacity factors for one reporting month.
Flag unusual variations based on these typical ranges:

- Nuclear plants: 90%+ (highest)
- Natural gas: 50-70%
- Coal: 40-60%
- Hydroelectric: 30-60%
- Wind: 20-40% (intermittent)
- Solar PV: 20-30% (intermittent)

For each plant respond with ONLY a JSON object mapping plant names to flags:
- "Normal" - within expected range
- "High_[FuelType]" - unusually high for fuel type
- "Low_[FuelType]" - unusually low for fuel type
- "Extreme_[FuelType]" - extremely unusual
- "Mixed_Fuel_Unusual" - for mixed fuel plants with odd performance

Example response format:
{"Plant Name 1": "Normal", "Plant Name 2": "High_Nuclear", "Plant Name 3": "Low_Solar"}`

// classifyPayloadItem is the per-plant slice of fields the classifier needs.
type classifyPayloadItem struct {
	PlantName      string   `json:"plantName"`
	FuelType       string   `json:"fuelType"`
	CapacityFactor float64  `json:"capacityFactor"`
	CapacityMW     *float64 `json:"capacity"`
	State          string   `json:"state"`
}

// ClassifyStats reports orchestration outcomes for the run summary.
type ClassifyStats struct {
	BatchesTotal    int
	BatchesFailed   int
	ClassifierFlags int
	FallbackFlags   int
	UnmatchedKeys   int
	Usage           model.TokenUsage
	CostUSD         float64
}

// Orchestrator submits fixed-size batches of records to the external
// classifier, strictly sequentially with a fixed inter-batch delay, and
// reconciles results back onto records by exact plant name. Failures are
// scoped: a failed batch falls back to the rule classifier, a partial
// response only sends the unanswered records there.
type Orchestrator struct {
	client   anthropic.Client
	model    string
	cfg      config.ClassifyConfig
	clock    clockwork.Clock
	fallback *RuleFallback
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithClock injects the time source used for inter-batch pacing. Tests use
// a fake clock to simulate pacing without wall-clock delay.
func WithClock(c clockwork.Clock) OrchestratorOption {
	return func(o *Orchestrator) {
		o.clock = c
	}
}

// NewOrchestrator creates a classification orchestrator.
func NewOrchestrator(client anthropic.Client, model string, cfg config.ClassifyConfig, opts ...OrchestratorOption) *Orchestrator {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 25
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1000
	}
	o := &Orchestrator{
		client:   client,
		model:    model,
		cfg:      cfg,
		clock:    clockwork.NewRealClock(),
		fallback: NewRuleFallback(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Classify assigns exactly one outcome to every record. The returned slice
// is aligned with the input: outcomes[i] belongs to records[i]. Records
// lacking a capacity factor or fuel type are never submitted; they receive
// the fallback's no-data handling directly.
func (o *Orchestrator) Classify(ctx context.Context, records []model.PlantRecord) ([]Outcome, ClassifyStats, error) {
	outcomes := make([]Outcome, len(records))
	var stats ClassifyStats

	var eligible []int
	for i := range records {
		if records[i].Classifiable() {
			eligible = append(eligible, i)
			continue
		}
		outcomes[i] = o.fallback.Classify(records[i])
		stats.FallbackFlags++
	}

	batches := batchIndexes(eligible, o.cfg.BatchSize)
	stats.BatchesTotal = len(batches)

	for batchNum, batch := range batches {
		if batchNum > 0 {
			// Pacing: batch N+1 is never submitted before batch N's
			// delay elapses.
			select {
			case <-ctx.Done():
				return nil, stats, eris.Wrap(ctx.Err(), "classify: interrupted between batches")
			case <-o.clock.After(o.cfg.InterBatchDelay):
			}
		}

		log := zap.L().With(
			zap.Int("batch", batchNum+1),
			zap.Int("batches", len(batches)),
			zap.Int("size", len(batch)),
		)

		entries, ok := o.submitBatch(ctx, records, batch, &stats)
		if !ok {
			// Full-batch failure: transport error, empty, or unparseable
			// response. Every record in this batch takes the fallback path
			// and the run continues with the next batch.
			stats.BatchesFailed++
			for _, idx := range batch {
				outcomes[idx] = o.fallback.Classify(records[idx])
				stats.FallbackFlags++
			}
			log.Warn("classify: batch failed, rule fallback applied")
			continue
		}

		matched := o.reconcile(records, batch, entries, outcomes, &stats)
		log.Info("classify: batch reconciled",
			zap.Int("classifier_flags", matched),
			zap.Int("fallback_flags", len(batch)-matched),
		)
	}

	usage := anthropic.TokenUsage{
		InputTokens:              int64(stats.Usage.InputTokens),
		OutputTokens:             int64(stats.Usage.OutputTokens),
		CacheCreationInputTokens: int64(stats.Usage.CacheCreationTokens),
		CacheReadInputTokens:     int64(stats.Usage.CacheReadTokens),
	}
	stats.CostUSD = usage.EstimateCost(o.model)
	usage.LogCost(o.model, "classify")

	return outcomes, stats, nil
}

// submitBatch sends one batch and returns the parsed name→flag entries.
// ok=false signals a full-batch failure.
func (o *Orchestrator) submitBatch(ctx context.Context, records []model.PlantRecord, batch []int, stats *ClassifyStats) (map[string]classifierEntry, bool) {
	items := make([]classifyPayloadItem, 0, len(batch))
	for _, idx := range batch {
		rec := records[idx]
		items = append(items, classifyPayloadItem{
			PlantName:      rec.PlantName,
			FuelType:       rec.FuelType,
			CapacityFactor: *rec.CapacityFactorPercent,
			CapacityMW:     rec.PlantCapacityMW,
			State:          rec.StateCode,
		})
	}

	payload, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		zap.L().Error("classify: marshal batch payload", zap.Error(err))
		return nil, false
	}

	temp := o.cfg.Temperature
	resp, err := o.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       o.model,
		MaxTokens:   o.cfg.MaxTokens,
		System:      anthropic.BuildCachedSystemBlocks(classifySystemPrompt),
		Temperature: &temp,
		Messages: []anthropic.Message{
			{Role: "user", Content: fmt.Sprintf("Plants to analyze:\n%s", payload)},
		},
	})
	if err != nil {
		zap.L().Warn("classify: batch call failed", zap.Error(err))
		return nil, false
	}

	stats.Usage.InputTokens += int(resp.Usage.InputTokens)
	stats.Usage.OutputTokens += int(resp.Usage.OutputTokens)
	stats.Usage.CacheCreationTokens += int(resp.Usage.CacheCreationInputTokens)
	stats.Usage.CacheReadTokens += int(resp.Usage.CacheReadInputTokens)

	entries, ok := parseClassifierResponse(anthropic.ExtractText(resp))
	if !ok {
		zap.L().Warn("classify: no parseable mapping in response",
			zap.String("stop_reason", resp.StopReason),
		)
		return nil, false
	}
	return entries, true
}

// reconcile applies parsed entries onto the batch's records by exact plant
// name. Records the response skipped, and records whose flag fails shape
// validation, fall back individually; keys naming no record in the batch
// are dropped and counted. Returns the number of classifier-sourced flags.
func (o *Orchestrator) reconcile(records []model.PlantRecord, batch []int, entries map[string]classifierEntry, outcomes []Outcome, stats *ClassifyStats) int {
	byName := make(map[string][]int, len(batch))
	for _, idx := range batch {
		name := records[idx].PlantName
		byName[name] = append(byName[name], idx)
	}

	answered := make(map[int]bool, len(batch))
	matched := 0
	for name, entry := range entries {
		idxs, ok := byName[name]
		if !ok {
			stats.UnmatchedKeys++
			zap.L().Debug("classify: response key matches no plant in batch",
				zap.String("key", name),
			)
			continue
		}
		if !ValidFlag(entry.Flag) {
			zap.L().Debug("classify: invalid flag shape",
				zap.String("plant", name),
				zap.String("flag", entry.Flag),
			)
			continue
		}
		for _, idx := range idxs {
			outcomes[idx] = Outcome{
				Flag:   entry.Flag,
				Source: model.FlagSourceClassifier,
				Notes:  entry.Notes,
			}
			answered[idx] = true
			matched++
		}
	}
	stats.ClassifierFlags += matched

	// Partial batch failure: only the unanswered records fall back;
	// classifier-derived flags on their siblings are kept.
	for _, idx := range batch {
		if answered[idx] {
			continue
		}
		outcomes[idx] = o.fallback.Classify(records[idx])
		stats.FallbackFlags++
	}
	return matched
}

// batchIndexes partitions indexes into fixed-size batches preserving order;
// the last batch may be smaller.
func batchIndexes(idxs []int, size int) [][]int {
	if len(idxs) == 0 {
		return nil
	}
	batches := make([][]int, 0, (len(idxs)+size-1)/size)
	for start := 0; start < len(idxs); start += size {
		end := min(start+size, len(idxs))
		batches = append(batches, idxs[start:end])
	}
	return batches
}
