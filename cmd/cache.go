package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/transcript-geo/internal/searchcache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the search response cache",
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete expired cache entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("cache"); err != nil {
			return err
		}

		st, err := searchcache.Open(ctx, cfg.Cache.Driver, cfg.Cache.DSN, cfg.Cache.Table)
		if err != nil {
			return eris.Wrap(err, "open search cache")
		}
		defer st.Close() //nolint:errcheck

		n, err := st.Prune(ctx)
		if err != nil {
			return eris.Wrap(err, "cache prune")
		}

		zap.L().Info("cache pruned", zap.String("driver", cfg.Cache.Driver), zap.Int64("deleted", n))
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %d expired entries\n", n)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cachePruneCmd)
	rootCmd.AddCommand(cacheCmd)
}
