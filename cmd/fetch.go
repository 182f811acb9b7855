package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gridsage/plantenrich/internal/eia"
	"github.com/gridsage/plantenrich/internal/fetcher"
)

var (
	fetchPeriod string
	fetchOut    string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch a raw generation snapshot without enriching it",
	Long:  "Downloads the monthly facility-fuel snapshot and writes it to a JSON file. Useful for inspecting feed contents before a full enrichment run.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		period := fetchPeriod
		if period == "" {
			period = cfg.EIA.Period
		}

		httpFetcher := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			RateLimiters: fetcher.DefaultRateLimiters(),
		})
		feed := eia.NewClient(httpFetcher, cfg.EIA.BaseURL, cfg.EIA.Key, cfg.EIA.PageSize)

		rows, err := feed.FacilityFuel(ctx, period)
		if err != nil {
			return eris.Wrap(err, "fetch snapshot")
		}

		path := fetchOut
		if path == "" {
			path = filepath.Join(cfg.Output.Dir, fmt.Sprintf("snapshot_%s.json", period))
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return eris.Wrap(err, "fetch: create output dir")
		}

		f, err := os.Create(path)
		if err != nil {
			return eris.Wrap(err, "fetch: create output file")
		}
		defer f.Close() //nolint:errcheck

		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rows); err != nil {
			return eris.Wrap(err, "fetch: write output file")
		}

		zap.L().Info("fetch: snapshot saved",
			zap.String("period", period),
			zap.String("path", path),
			zap.Int("rows", len(rows)),
		)
		fmt.Println(path)
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVar(&fetchPeriod, "period", "", "reporting month as YYYY-MM (default from config)")
	fetchCmd.Flags().StringVar(&fetchOut, "out", "", "output file path (default <output.dir>/snapshot_<period>.json)")
	rootCmd.AddCommand(fetchCmd)
}
