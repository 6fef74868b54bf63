// Shared helpers for the run and chain commands.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/bgoodspeed/jtl"
	"github.com/bgoodspeed/jtl/docfile"
	"github.com/bgoodspeed/jtl/watch"
)

// loadSpec reads and validates a mapping spec file.
func loadSpec(store *docfile.Store, path string) (*jtl.Spec, error) {
	raw, err := store.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load spec %q: %w", path, err)
	}
	spec, err := jtl.ParseSpec(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid spec %q: %w", path, err)
	}
	return spec, nil
}

// loadSeed resolves the destination seed: the named file when it
// exists, an empty object when the file is missing or no file was
// named.
func loadSeed(store *docfile.Store, path string) (any, error) {
	if path == "" {
		return map[string]any{}, nil
	}
	v, err := store.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load destination %q: %w", path, err)
	}
	return v, nil
}

// writeOutput sends the result to stdout, or writes the output file,
// skipping the write when the rendered content matches the previous
// run.
func writeOutput(store *docfile.Store, outPath string, toStdout bool, v any) error {
	if toStdout || outPath == "" || outPath == "-" {
		return store.WriteTo(os.Stdout, v)
	}
	_, err := store.SaveIfChanged(outPath, v)
	return err
}

// watchable filters a path list down to watch candidates, dropping
// empties and the output target. Watching the output would retrigger
// the loop on every finished write.
func watchable(out string, paths ...string) []string {
	var result []string
	for _, p := range paths {
		if p == "" || p == out {
			continue
		}
		result = append(result, p)
	}
	return result
}

func watchConfig() watch.Config {
	return watch.Config{
		Debounce: cfg.GetDuration(cfgKeyWatchDebounce),
		Logger:   logger,
		OnError: func(err error) {
			logger.Error("rerun failed", "error", err)
		},
	}
}
