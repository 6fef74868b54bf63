package jtl

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/mitchellh/mapstructure"
)

// Step is one link of a chain: which spec to run, where its source and
// destination documents come from, and per-step overrides. Src and Dst
// accept PrevSentinel to reference the previous step's output.
type Step struct {
	ETL     string         `mapstructure:"etl"`
	Src     string         `mapstructure:"src"`
	Dst     string         `mapstructure:"dst"`
	Context map[string]any `mapstructure:"ctx"`
	Options StepOptions    `mapstructure:"options"`
}

// StepOptions carries per-step execution overrides.
type StepOptions struct {
	Delimiter *string `mapstructure:"delimiter"`
}

// ChainSpec is a loaded meta-chain: a shared context seeding every step
// and an ordered, non-empty step list. Dir anchors relative file
// references (normally the chain file's directory).
type ChainSpec struct {
	Context map[string]any `mapstructure:"ctx"`
	Steps   []Step         `mapstructure:"steps"`
	Dir     string         `mapstructure:"-"`
}

// ParseChainSpec interprets a decoded JSON value as a chain spec:
//
//	{
//	  "ctx": {"env": "prod"},
//	  "steps": [
//	    {"etl": "extract.json", "src": "input.json"},
//	    {"etl": "enrich.json", "src": "$prev", "options": {"delimiter": ", "}}
//	  ]
//	}
//
// steps must be present and non-empty; every step needs etl and src.
func ParseChainSpec(v any) (*ChainSpec, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, &FormatError{Reason: "chain spec must be a JSON object"}
	}

	var chain ChainSpec
	if err := mapstructure.Decode(obj, &chain); err != nil {
		return nil, &FormatError{Reason: err.Error()}
	}

	if len(chain.Steps) == 0 {
		return nil, &ConfigError{Reason: `"steps" must be a non-empty array`}
	}
	for i, step := range chain.Steps {
		if step.ETL == "" {
			return nil, &MissingFieldError{Entity: "step", Index: i + 1, Field: "etl"}
		}
		if step.Src == "" {
			return nil, &MissingFieldError{Entity: "step", Index: i + 1, Field: "src"}
		}
	}
	return &chain, nil
}

// RunChain executes every step of chain in order and returns the last
// step's output. Each step loads its spec, merges contexts
// (chain < spec < step), resolves its source and destination documents,
// and runs its mappings; the output becomes $prev for the following
// step. The first failure aborts the whole run.
func (r *Runner) RunChain(ctx context.Context, chain *ChainSpec) (any, error) {
	if len(chain.Steps) == 0 {
		return nil, &ConfigError{Reason: `"steps" must be a non-empty array`}
	}

	var prev any
	havePrev := false

	for i, step := range chain.Steps {
		stepNo := i + 1

		rawSpec, err := r.loader.Load(resolveRef(chain.Dir, step.ETL))
		if err != nil {
			return nil, &StepError{Step: stepNo, Err: fmt.Errorf("failed to load spec %q: %w", step.ETL, err)}
		}
		spec, err := ParseSpec(rawSpec)
		if err != nil {
			return nil, &StepError{Step: stepNo, Err: err}
		}

		// Effective context, lowest precedence first: chain, spec, step.
		effCtx := deepCopyMap(chain.Context)
		deepMerge(effCtx, spec.Context)
		deepMerge(effCtx, step.Context)
		spec.Context = effCtx

		delim := r.delimiter
		if step.Options.Delimiter != nil {
			delim = *step.Options.Delimiter
		}

		var src any
		if step.Src == PrevSentinel {
			if !havePrev {
				return nil, &InvalidChainStateError{Step: stepNo, Ref: "src"}
			}
			src = prev
		} else {
			src, err = r.loader.Load(resolveRef(chain.Dir, step.Src))
			if err != nil {
				return nil, &StepError{Step: stepNo, Err: fmt.Errorf("failed to load source %q: %w", step.Src, err)}
			}
		}

		var dst any
		switch {
		case step.Dst == PrevSentinel:
			if !havePrev {
				return nil, &InvalidChainStateError{Step: stepNo, Ref: "dst"}
			}
			dst = deepCopyValue(prev)
		case step.Dst != "":
			d, err := r.loader.Load(resolveRef(chain.Dir, step.Dst))
			switch {
			case errors.Is(err, fs.ErrNotExist):
				dst = map[string]any{}
			case err != nil:
				return nil, &StepError{Step: stepNo, Err: fmt.Errorf("failed to load destination %q: %w", step.Dst, err)}
			default:
				dst = d
			}
		default:
			dst = map[string]any{}
		}

		out, err := r.runSpec(ctx, spec, src, dst, delim)
		if err != nil {
			return nil, &StepError{Step: stepNo, Err: err}
		}
		prev = out
		havePrev = true
	}

	return prev, nil
}

// resolveRef joins a step reference to the chain's base directory,
// leaving absolute references alone.
func resolveRef(dir, ref string) string {
	if dir == "" || filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(dir, ref)
}
