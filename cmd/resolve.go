package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/transcript-geo/internal/export"
	"github.com/sells-group/transcript-geo/internal/input"
	"github.com/sells-group/transcript-geo/internal/locate"
	"github.com/sells-group/transcript-geo/internal/model"
)

var (
	resolveOutDir string
	resolveFormat string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <file|url>...",
	Short: "Resolve extracted locations from JSON, YAML or XLSX batch files",
	Long:  "Each input is an independent batch, read from a local path or an http(s) or ftp URL. Inputs run concurrently up to batch.max_concurrent_files; locations within a file are resolved one at a time.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		format, err := export.ParseFormat(resolveFormat)
		if err != nil {
			return err
		}

		env, err := initResolveEnv(ctx, cfg, "resolve")
		if err != nil {
			return err
		}
		defer env.Close()

		return resolveFiles(ctx, args, resolveOptions{
			OutDir:      resolveOutDir,
			Format:      format,
			Concurrency: cfg.Batch.MaxConcurrentFiles,
			Stdout:      cmd.OutOrStdout(),
		}, func() batchRunner { return env.NewBatch() })
	},
}

func init() {
	resolveCmd.Flags().StringVar(&resolveOutDir, "out", "", "output directory (default: stdout for a single json/geojson file, otherwise <input>.resolved.<ext> next to each input)")
	resolveCmd.Flags().StringVar(&resolveFormat, "format", "json", "output format: json, geojson, xlsx, shp")
	rootCmd.AddCommand(resolveCmd)
}

// batchRunner is satisfied by *locate.Batch.
type batchRunner interface {
	Run(ctx context.Context, locs []model.ExtractedLocation) (*locate.BatchResult, error)
}

type resolveOptions struct {
	OutDir      string
	Format      export.Format
	Concurrency int
	Stdout      io.Writer
}

// resolveFiles runs one batch per file. Partial results are written even
// when a batch aborts; the first abort error is returned after all files
// finish.
func resolveFiles(ctx context.Context, files []string, opts resolveOptions, newBatch func() batchRunner) error {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	toStdout := opts.OutDir == "" && len(files) == 1 &&
		(opts.Format == export.FormatJSON || opts.Format == export.FormatGeoJSON)

	if opts.OutDir != "" {
		if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
			return eris.Wrapf(err, "resolve: create output dir %s", opts.OutDir)
		}
	}

	// Files are independent; one failing does not cancel the others.
	var g errgroup.Group
	g.SetLimit(opts.Concurrency)

	for _, file := range files {
		g.Go(func() error {
			log := zap.L().With(zap.String("file", file))

			locs, err := input.Load(ctx, file)
			if err != nil {
				return err
			}

			res, runErr := newBatch().Run(ctx, locs)
			if res == nil {
				return runErr
			}

			log.Info("file resolved",
				zap.String("run_id", res.RunID),
				zap.Int("resolved", res.Resolved),
				zap.Int("failed", res.Failed),
				zap.Strings("unresolved", res.Unresolved),
			)

			var writeErr error
			if toStdout {
				writeErr = export.Write(opts.Stdout, opts.Format, res.Locations)
			} else {
				writeErr = writeOutput(outputPath(opts.OutDir, file, opts.Format), opts.Format, res.Locations)
			}
			if writeErr != nil {
				return writeErr
			}
			if runErr != nil {
				return eris.Wrapf(runErr, "resolve %s", file)
			}
			return nil
		})
	}

	return g.Wait()
}

// outputPath places <base>.<ext> in outDir. With no outDir the file goes
// next to a local input, or in the working directory for a URL, as
// <base>.resolved.<ext> so the input is never overwritten.
func outputPath(outDir, src string, f export.Format) string {
	base := input.BaseName(src)
	if outDir != "" {
		return filepath.Join(outDir, base+"."+f.Extension())
	}
	dir := "."
	if !input.IsRemote(src) {
		dir = filepath.Dir(src)
	}
	return filepath.Join(dir, base+".resolved."+f.Extension())
}

func writeOutput(path string, f export.Format, locs []model.GeocodedLocation) error {
	if f == export.FormatShapefile {
		return export.WriteShapefile(path, locs)
	}

	out, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "resolve: create %s", path)
	}
	if err := export.Write(out, f, locs); err != nil {
		_ = out.Close()
		return err
	}
	return eris.Wrapf(out.Close(), "resolve: close %s", path)
}
