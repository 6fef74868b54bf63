package jtl

import (
	"context"

	"github.com/bgoodspeed/jtl/docfile"
)

// DefaultDelimiter joins string values written by upsert mappings when
// no other delimiter is configured.
const DefaultDelimiter = "\n"

// PrevSentinel is the chain-step reference meaning "the previous step's
// output document".
const PrevSentinel = "$prev"

// Evaluator is the expression-language boundary. Evaluate runs expr
// against input with vars bound as named variables ($ctx and friends)
// and returns the full ordered result sequence.
//
// Implementations must be pure: identical arguments produce identical
// results. The engine composes a prelude fragment around the user
// expression textually but never interprets the dialect itself.
type Evaluator interface {
	Evaluate(ctx context.Context, expr string, input any, vars map[string]any) ([]any, error)
}

// DocumentLoader resolves document references used by chain steps. A
// missing file must surface an error satisfying
// errors.Is(err, fs.ErrNotExist) so destination seeds can fall back to
// an empty object.
type DocumentLoader interface {
	Load(path string) (any, error)
}

// Runner executes specs and chains against in-memory documents.
//
// Example:
//
//	runner := jtl.NewRunner(jq.New())
//	out, err := runner.Run(ctx, spec, src, map[string]any{})
type Runner struct {
	eval      Evaluator
	loader    DocumentLoader
	delimiter string
}

// Option configures a Runner.
type Option func(*Runner)

// WithDelimiter overrides the default string-upsert delimiter.
func WithDelimiter(delim string) Option {
	return func(r *Runner) { r.delimiter = delim }
}

// WithLoader replaces the loader used to resolve chain-step document
// references. The default reads files from disk with format detection.
func WithLoader(l DocumentLoader) Option {
	return func(r *Runner) { r.loader = l }
}

// NewRunner returns a Runner backed by the given evaluator.
func NewRunner(eval Evaluator, opts ...Option) *Runner {
	r := &Runner{
		eval:      eval,
		loader:    docfile.NewStore(),
		delimiter: DefaultDelimiter,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run applies every mapping of spec in document order against src,
// mutating a destination seeded from dst, and returns the final
// document. Later mappings observe the writes of earlier ones.
//
// The returned document is usually dst mutated in place, but root-path
// mappings may replace it wholesale, so callers must use the return
// value.
func (r *Runner) Run(ctx context.Context, spec *Spec, src, dst any) (any, error) {
	return r.runSpec(ctx, spec, src, dst, r.delimiter)
}

func (r *Runner) runSpec(ctx context.Context, spec *Spec, src, dst any, delim string) (any, error) {
	doc := dst
	for i, m := range spec.Mappings {
		if err := r.applyMapping(ctx, m, src, spec, &doc, delim); err != nil {
			return nil, &MappingError{Index: i + 1, Src: m.Src, Dst: m.Dst, Err: err}
		}
	}
	return doc, nil
}
