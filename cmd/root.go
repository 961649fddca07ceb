package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/transcript-geo/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "transcript-geo",
	Short: "Resolve place names from podcast transcripts to coordinates",
	Long:  "Turns the free-text location names extracted from a podcast transcript into map points using a Nominatim-compatible search service, with cleaning, validation and scoring tuned for noisy conversational names.",
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

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
