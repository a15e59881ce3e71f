package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"geometry-simplifier/internal/config"
	"geometry-simplifier/internal/geojsonio"
)

// maxParallelFiles bounds how many files are simplified at once.
const maxParallelFiles = 8

func newSimplifyCommand() *cobra.Command {
	cfg := config.NewDefaultConfig()

	cmd := &cobra.Command{
		Use:   "simplify [files...]",
		Short: "Simplify GeoJSON files, or stdin when no file is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger := newLogger(cfg.Verbosity)

			if len(args) == 0 {
				return simplifyStream(cmd.InOrStdin(), cmd.OutOrStdout(), cfg, logger)
			}
			return simplifyFiles(cmd.Context(), args, cmd.OutOrStdout(), cfg, logger)
		},
	}

	flags := cmd.Flags()
	bindSimplifierFlags(flags, &cfg)
	flags.StringVarP(&cfg.OutDir, "out-dir", "o", "", "write each result to this directory instead of stdout")

	return cmd
}

func simplifyStream(in io.Reader, out io.Writer, cfg config.Config, logger logr.Logger) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return errors.Wrap(err, "read stdin")
	}
	doc, err := geojsonio.Decode(data)
	if err != nil {
		return err
	}
	result, err := doc.Simplify(cfg.SimplifierOptions(logger)...)
	if err != nil {
		return err
	}
	return writeDocument(out, result)
}

// simplifyFiles processes files concurrently. Results go to cfg.OutDir
// under the input's base name, or to out in argument order.
func simplifyFiles(ctx context.Context, files []string, out io.Writer, cfg config.Config, logger logr.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.OutDir != "" {
		if err := checkOutputNames(files); err != nil {
			return err
		}
		if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
			return errors.Wrapf(err, "create %s", cfg.OutDir)
		}
	}

	results := make([]geojsonio.Document, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFiles)

	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := geojsonio.ReadFile(file)
			if err != nil {
				return err
			}
			result, err := doc.Simplify(cfg.SimplifierOptions(logger.WithValues("file", file))...)
			if err != nil {
				return errors.Wrapf(err, "simplify %s", file)
			}
			logger.V(1).Info("simplified file", "file", file, "type", result.Type())

			if cfg.OutDir == "" {
				results[i] = result
				return nil
			}
			return writeFile(filepath.Join(cfg.OutDir, filepath.Base(file)), result)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if cfg.OutDir != "" {
		return nil
	}
	for _, r := range results {
		if err := writeDocument(out, r); err != nil {
			return err
		}
	}
	return nil
}

// checkOutputNames rejects inputs that would be written to the same file
// in the output directory.
func checkOutputNames(files []string) error {
	seen := make(map[string]string, len(files))
	for _, file := range files {
		name := filepath.Base(file)
		if prev, ok := seen[name]; ok {
			return errors.Errorf("%s and %s would both be written to %s", prev, file, name)
		}
		seen[name] = file
	}
	return nil
}

func writeFile(path string, doc geojsonio.Document) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := writeDocument(f, doc); err != nil {
		f.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	return errors.Wrapf(f.Close(), "close %s", path)
}

func writeDocument(w io.Writer, doc geojsonio.Document) error {
	return errors.Wrap(json.NewEncoder(w).Encode(doc), "encode geojson")
}
