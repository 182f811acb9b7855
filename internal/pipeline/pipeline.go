package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gridsage/plantenrich/internal/eia"
	"github.com/gridsage/plantenrich/internal/model"
	"github.com/gridsage/plantenrich/internal/refdata"
	"github.com/gridsage/plantenrich/internal/store"
)

// Feed supplies the raw generation snapshot for one reporting period.
type Feed interface {
	FacilityFuel(ctx context.Context, period string) ([]eia.GenerationRow, error)
}

// Result is the output of one enrichment run.
type Result struct {
	RunID   string
	Records []model.PlantRecord
	Summary model.RunSummary
}

// Pipeline wires the enrichment stages end to end. Stages execute strictly
// sequentially and never mutate upstream state; only the two input fetches
// run concurrently.
type Pipeline struct {
	feed     Feed
	metadata refdata.Source
	orch     *Orchestrator
	store    store.Store // nil disables persistence
}

// New creates a Pipeline with all dependencies.
func New(feed Feed, metadata refdata.Source, orch *Orchestrator, st store.Store) *Pipeline {
	return &Pipeline{
		feed:     feed,
		metadata: metadata,
		orch:     orch,
		store:    st,
	}
}

// Run executes the full enrichment for one period and filter.
// unmatchedFilterCodes is the count of invalid state codes the caller
// dropped while parsing the filter; it is carried into the summary.
func (p *Pipeline) Run(ctx context.Context, period string, filter model.FilterSpec, unmatchedFilterCodes int) (*Result, error) {
	log := zap.L().With(zap.String("period", period), zap.String("filter", filter.String()))
	log.Info("pipeline: starting enrichment run")
	start := time.Now()

	var rows []eia.GenerationRow
	var table *refdata.Table

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = p.feed.FacilityFuel(gCtx, period)
		return eris.Wrap(err, "pipeline: fetch generation snapshot")
	})
	g.Go(func() error {
		body, err := p.metadata.Open(gCtx)
		if err != nil {
			return eris.Wrap(err, "pipeline: open reference metadata")
		}
		defer body.Close() //nolint:errcheck
		table, err = refdata.Load(gCtx, body)
		return eris.Wrap(err, "pipeline: load reference metadata")
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	cleaned, cleanStats := Clean(rows)
	records := AggregateByPlant(cleaned)
	merged, mergeStats := Merge(records, table)

	withCF, cfComputed, err := ApplyCapacityFactors(merged, period)
	if err != nil {
		return nil, err
	}

	filtered := FilterGeographic(withCF, filter)

	outcomes, classifyStats, err := p.orch.Classify(ctx, filtered)
	if err != nil {
		return nil, err
	}

	enriched, err := Assemble(filtered, outcomes)
	if err != nil {
		return nil, err
	}

	summary := model.RunSummary{
		Period:                period,
		Filter:                filter.String(),
		RawRecords:            cleanStats.Input,
		RemovedSentinel:       cleanStats.RemovedSentinel,
		RemovedZeroGen:        cleanStats.RemovedZeroGen,
		RemovedPlantCode:      cleanStats.RemovedPlantCode,
		AggregatedPlants:      len(records),
		MetadataMatched:       mergeStats.Matched,
		MetadataUnmatched:     mergeStats.Unmatched,
		CapacityComputed:      cfComputed,
		FilteredRecords:       len(filtered),
		UnmatchedCodes:        unmatchedFilterCodes,
		BatchesTotal:          classifyStats.BatchesTotal,
		BatchesFailed:         classifyStats.BatchesFailed,
		ClassifierFlags:       classifyStats.ClassifierFlags,
		FallbackFlags:         classifyStats.FallbackFlags,
		UnmatchedResponseKeys: classifyStats.UnmatchedKeys,
		EstimatedCostUSD:      classifyStats.CostUSD,
	}

	result := &Result{
		RunID:   uuid.New().String(),
		Records: enriched,
		Summary: summary,
	}

	if p.store != nil {
		run := &store.Run{
			ID:      result.RunID,
			Period:  period,
			Filter:  filter.String(),
			Summary: summary,
		}
		if err := p.store.SaveRun(ctx, run, enriched); err != nil {
			return nil, eris.Wrap(err, "pipeline: persist run")
		}
	}

	log.Info("pipeline: run complete",
		zap.String("run_id", result.RunID),
		zap.Int("enriched_records", len(enriched)),
		zap.Int("batches_total", summary.BatchesTotal),
		zap.Int("batches_failed", summary.BatchesFailed),
		zap.Int("classifier_flags", summary.ClassifierFlags),
		zap.Int("fallback_flags", summary.FallbackFlags),
		zap.Int("unmatched_response_keys", summary.UnmatchedResponseKeys),
		zap.Float64("estimated_cost_usd", summary.EstimatedCostUSD),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}
