package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gridsage/plantenrich/internal/eia"
	"github.com/gridsage/plantenrich/internal/fetcher"
	"github.com/gridsage/plantenrich/internal/model"
	"github.com/gridsage/plantenrich/internal/pipeline"
	"github.com/gridsage/plantenrich/internal/refdata"
	anthropicpkg "github.com/gridsage/plantenrich/pkg/anthropic"
)

var (
	enrichPeriod   string
	enrichStates   []string
	enrichRegion   string
	enrichAll      bool
	enrichMetadata string
	enrichOut      string
	enrichDB       string
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Run the full enrichment pipeline for one reporting month",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		period := enrichPeriod
		if period == "" {
			period = cfg.EIA.Period
		}

		filter, unmatched, err := resolveFilter()
		if err != nil {
			return err
		}
		if len(unmatched) > 0 {
			zap.L().Warn("enrich: ignoring unknown state codes",
				zap.Strings("codes", unmatched),
			)
		}

		st, err := initStore(enrichDB)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		httpFetcher := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			RateLimiters: fetcher.DefaultRateLimiters(),
		})
		feed := eia.NewClient(httpFetcher, cfg.EIA.BaseURL, cfg.EIA.Key, cfg.EIA.PageSize)
		metadata := metadataSource(httpFetcher)

		anthropicClient := anthropicpkg.NewClient(cfg.Anthropic.Key)
		orch := pipeline.NewOrchestrator(anthropicClient, cfg.Anthropic.Model, cfg.Classify)

		p := pipeline.New(feed, metadata, orch, st)
		result, err := p.Run(ctx, period, filter, len(unmatched))
		if err != nil {
			return eris.Wrap(err, "enrich run")
		}

		outPath, err := writeEnrichedJSON(result, period, filter)
		if err != nil {
			return err
		}
		zap.L().Info("enrich: wrote enriched records",
			zap.String("path", outPath),
			zap.Int("records", len(result.Records)),
		)

		// Print the run summary to stdout for scripting.
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result.Summary)
	},
}

// resolveFilter builds the geographic filter from the mutually exclusive
// --all / --region / --states flags.
func resolveFilter() (model.FilterSpec, []string, error) {
	set := 0
	if enrichAll {
		set++
	}
	if enrichRegion != "" {
		set++
	}
	if len(enrichStates) > 0 {
		set++
	}
	if set > 1 {
		return model.FilterSpec{}, nil, eris.New("enrich: --all, --region, and --states are mutually exclusive")
	}
	if enrichAll {
		return model.AllFilter(), nil, nil
	}
	return model.ParseFilterSpec(enrichRegion, enrichStates)
}

// metadataSource picks the reference-table source: an explicit path flag wins,
// then a configured URL, then the configured path.
func metadataSource(f fetcher.Fetcher) refdata.Source {
	if enrichMetadata != "" {
		return refdata.FileSource{Path: enrichMetadata}
	}
	if cfg.Metadata.URL != "" {
		return refdata.HTTPSource{Fetcher: f, URL: cfg.Metadata.URL}
	}
	return refdata.FileSource{Path: cfg.Metadata.Path}
}

func writeEnrichedJSON(result *pipeline.Result, period string, filter model.FilterSpec) (string, error) {
	dir := enrichOut
	if dir == "" {
		dir = cfg.Output.Dir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", eris.Wrap(err, "enrich: create output dir")
	}

	// e.g. enriched_2025-02_region-west_1a2b3c4d.json
	tag := strings.NewReplacer(":", "-", ",", "-").Replace(filter.String())
	name := fmt.Sprintf("enriched_%s_%s_%.8s.json", period, tag, result.RunID)
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", eris.Wrap(err, "enrich: create output file")
	}
	defer f.Close() //nolint:errcheck

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	payload := struct {
		RunID   string              `json:"run_id"`
		Summary model.RunSummary    `json:"summary"`
		Records []model.PlantRecord `json:"records"`
	}{result.RunID, result.Summary, result.Records}
	if err := enc.Encode(payload); err != nil {
		return "", eris.Wrap(err, "enrich: write output file")
	}
	return path, nil
}

func init() {
	enrichCmd.Flags().StringVar(&enrichPeriod, "period", "", "reporting month as YYYY-MM (default from config)")
	enrichCmd.Flags().StringSliceVar(&enrichStates, "states", nil, "comma-separated 2-letter state codes (e.g. CA,NY)")
	enrichCmd.Flags().StringVar(&enrichRegion, "region", "", "census region: northeast, midwest, south, west")
	enrichCmd.Flags().BoolVar(&enrichAll, "all", false, "process all states (default when no filter given)")
	enrichCmd.Flags().StringVar(&enrichMetadata, "metadata", "", "path to the plant metadata CSV (overrides config)")
	enrichCmd.Flags().StringVar(&enrichOut, "out", "", "output directory for enriched JSON (overrides config)")
	enrichCmd.Flags().StringVar(&enrichDB, "db", "", "run store path (overrides config)")
	rootCmd.AddCommand(enrichCmd)
}
