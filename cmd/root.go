package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gridsage/plantenrich/internal/config"
	"github.com/gridsage/plantenrich/internal/store"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "plantenrich",
	Short: "Monthly power plant generation enrichment pipeline",
	Long:  "Fetches monthly facility-level generation data, merges plant metadata, derives capacity factors, and flags unusual performance via batched Claude classification with a rule-based fallback.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// initStore opens the run store at the configured path, honoring a per-command
// override.
func initStore(override string) (store.Store, error) {
	path := cfg.Store.Path
	if override != "" {
		path = override
	}
	return store.NewSQLite(path)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
