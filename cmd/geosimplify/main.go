package main

import (
	"fmt"
	"log"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"geometry-simplifier/internal/config"
)

func newLogger(verbosity int) logr.Logger {
	stdLogger := log.New(os.Stderr, "", log.LstdFlags)
	stdr.SetVerbosity(verbosity)
	return stdr.NewWithOptions(stdLogger, stdr.Options{LogCaller: stdr.Error}).WithName("geosimplify")
}

// bindSimplifierFlags registers the flags shared by every command.
func bindSimplifierFlags(flags *pflag.FlagSet, cfg *config.Config) {
	flags.Float64Var(&cfg.Threshold, "threshold", cfg.Threshold, "distance below which consecutive points are merged")
	flags.IntVar(&cfg.Precision, "precision", cfg.Precision, "decimal places kept in coordinates")
	flags.BoolVar(&cfg.LegacyThreshold, "legacy-threshold", cfg.LegacyThreshold,
		"always start thinning from the default threshold, ignoring --threshold")
	flags.IntVarP(&cfg.Verbosity, "verbosity", "v", cfg.Verbosity, "log verbosity")
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "geosimplify",
		Short:         "Round and thin GeoJSON coordinates",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newSimplifyCommand(), newServeCommand())
	return root
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Exit with err: %s\n", err)
		os.Exit(1)
	}
}
