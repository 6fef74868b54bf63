// The chain command runs a multi-step sequence of mapping specs.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bgoodspeed/jtl"
	"github.com/bgoodspeed/jtl/docfile"
	"github.com/bgoodspeed/jtl/jq"
	"github.com/bgoodspeed/jtl/jqpath"
	"github.com/bgoodspeed/jtl/watch"
)

var (
	flagChainMeta   string
	flagChainOut    string
	flagChainStdout bool
	flagChainWatch  bool
)

var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Run a chain of mapping specs",
	Long: `Chain loads a chain file describing an ordered list of steps, runs each
step's mapping spec, and writes the final step's output. Steps may
reference the previous step's output document as "$prev". Relative file
references inside the chain resolve against the chain file's directory.`,
	Args: cobra.NoArgs,
	RunE: runChain,
}

func init() {
	f := chainCmd.Flags()
	f.StringVar(&flagChainMeta, "meta", "", "chain file (required)")
	f.StringVar(&flagChainOut, "out", "-", `output file ("-" for stdout)`)
	f.BoolVar(&flagChainStdout, "stdout", false, "force output to stdout")
	f.String(cfgKeyDelimiter, `\n`, "string-upsert delimiter (escape sequences interpreted)")
	f.BoolVar(&flagChainWatch, "watch", false, "rerun whenever the chain or its step files change")

	chainCmd.MarkFlagRequired("meta")
}

func runChain(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store := docfile.NewStore()
	delim := jqpath.Unescape(cfg.GetString(cfgKeyDelimiter))
	runner := jtl.NewRunner(jq.New(), jtl.WithDelimiter(delim), jtl.WithLoader(store))

	once := func(ctx context.Context) error {
		chain, err := loadChain(store, flagChainMeta)
		if err != nil {
			return err
		}
		out, err := runner.RunChain(ctx, chain)
		if err != nil {
			return err
		}
		return writeOutput(store, flagChainOut, flagChainStdout, out)
	}

	if err := once(ctx); err != nil {
		return err
	}
	if !flagChainWatch {
		return nil
	}

	chain, err := loadChain(store, flagChainMeta)
	if err != nil {
		return err
	}
	paths := watchable(flagChainOut, chainWatchPaths(chain, flagChainMeta)...)
	logger.Info("watching for changes", "paths", paths)
	return watch.Watch(ctx, paths, watchConfig(), once)
}

// loadChain reads and validates a chain file, anchoring relative step
// references at the file's directory.
func loadChain(store *docfile.Store, path string) (*jtl.ChainSpec, error) {
	raw, err := store.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load chain %q: %w", path, err)
	}
	chain, err := jtl.ParseChainSpec(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid chain %q: %w", path, err)
	}
	chain.Dir = filepath.Dir(path)
	return chain, nil
}

// chainWatchPaths lists the chain file and every literal file reference
// among its steps, resolved against the chain directory.
func chainWatchPaths(chain *jtl.ChainSpec, metaPath string) []string {
	seen := map[string]bool{metaPath: true}
	paths := []string{metaPath}
	add := func(ref string) {
		if ref == "" || ref == jtl.PrevSentinel {
			return
		}
		p := ref
		if !filepath.IsAbs(p) {
			p = filepath.Join(chain.Dir, p)
		}
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}
	for _, step := range chain.Steps {
		add(step.ETL)
		add(step.Src)
		add(step.Dst)
	}
	return paths
}
