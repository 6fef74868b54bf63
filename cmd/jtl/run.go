// The run command applies a single mapping spec to a source document.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bgoodspeed/jtl"
	"github.com/bgoodspeed/jtl/docfile"
	"github.com/bgoodspeed/jtl/jq"
	"github.com/bgoodspeed/jtl/jqpath"
	"github.com/bgoodspeed/jtl/watch"
)

var (
	flagRunETL    string
	flagRunSrc    string
	flagRunDst    string
	flagRunOut    string
	flagRunStdout bool
	flagRunWatch  bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Apply a mapping spec to a source document",
	Long: `Run loads a mapping spec and a source document, applies every mapping
in order, and writes the resulting document.

The destination starts from --dst when given and readable, otherwise
from an empty object. Output goes to --out, or to stdout when --out is
"-" or --stdout is set.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&flagRunETL, "etl", "", "mapping spec file (required)")
	f.StringVar(&flagRunSrc, "src", "", "source document file (required)")
	f.StringVar(&flagRunDst, "dst", "", "destination seed file (missing file seeds an empty object)")
	f.StringVar(&flagRunOut, "out", "-", `output file ("-" for stdout)`)
	f.BoolVar(&flagRunStdout, "stdout", false, "force output to stdout")
	f.String(cfgKeyDelimiter, `\n`, "string-upsert delimiter (escape sequences interpreted)")
	f.BoolVar(&flagRunWatch, "watch", false, "rerun whenever the input files change")

	runCmd.MarkFlagRequired("etl")
	runCmd.MarkFlagRequired("src")
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store := docfile.NewStore()
	delim := jqpath.Unescape(cfg.GetString(cfgKeyDelimiter))
	runner := jtl.NewRunner(jq.New(), jtl.WithDelimiter(delim), jtl.WithLoader(store))

	once := func(ctx context.Context) error {
		spec, err := loadSpec(store, flagRunETL)
		if err != nil {
			return err
		}
		src, err := store.Load(flagRunSrc)
		if err != nil {
			return fmt.Errorf("failed to load source %q: %w", flagRunSrc, err)
		}
		dst, err := loadSeed(store, flagRunDst)
		if err != nil {
			return err
		}

		out, err := runner.Run(ctx, spec, src, dst)
		if err != nil {
			return err
		}
		return writeOutput(store, flagRunOut, flagRunStdout, out)
	}

	if err := once(ctx); err != nil {
		return err
	}
	if !flagRunWatch {
		return nil
	}

	paths := watchable(flagRunOut, flagRunETL, flagRunSrc, flagRunDst)
	logger.Info("watching for changes", "paths", paths)
	return watch.Watch(ctx, paths, watchConfig(), once)
}
