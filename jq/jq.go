// Package jq implements the engine's Evaluator boundary with
// github.com/itchyny/gojq.
//
// Programs are compiled once and cached, keyed by program text and bound
// variable names, so chains that reapply the same mappings skip
// recompilation. Values must stay inside the gojq domain (nil, bool,
// int, float64, *big.Int, string, []any, map[string]any); the format
// package's Normalize takes care of that for decoded documents.
package jq

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/itchyny/gojq"
)

// ExpressionError reports a failure to parse, compile, or run an
// expression.
type ExpressionError struct {
	Expr string
	Err  error
}

func (e *ExpressionError) Error() string {
	return fmt.Sprintf("expression %q: %v", e.Expr, e.Err)
}

func (e *ExpressionError) Unwrap() error { return e.Err }

// TimeoutError reports an evaluation aborted by a context deadline.
type TimeoutError struct {
	Expr string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("expression %q: evaluation deadline exceeded", e.Expr)
}

// Evaluator evaluates jq programs. Safe for concurrent use.
type Evaluator struct {
	mu    sync.RWMutex
	cache map[string]*gojq.Code
}

// New returns an Evaluator with an empty program cache.
//
// Example:
//
//	runner := jtl.NewRunner(jq.New())
func New() *Evaluator {
	return &Evaluator{cache: map[string]*gojq.Code{}}
}

// Evaluate runs expr against input and returns the full ordered result
// sequence. vars are bound as jq variables; names carry the leading
// dollar sign (e.g. "$ctx").
func (e *Evaluator) Evaluate(ctx context.Context, expr string, input any, vars map[string]any) ([]any, error) {
	names, values := splitVars(vars)

	code, err := e.compile(expr, names)
	if err != nil {
		return nil, &ExpressionError{Expr: expr, Err: err}
	}

	iter := code.RunWithContext(ctx, input, values...)
	var results []any
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := v.(error); ok {
			if ctxErr := ctx.Err(); ctxErr != nil {
				if errors.Is(ctxErr, context.DeadlineExceeded) {
					return nil, &TimeoutError{Expr: expr}
				}
				return nil, ctxErr
			}
			return nil, &ExpressionError{Expr: expr, Err: err}
		}
		results = append(results, v)
	}
	return results, nil
}

// compile returns the cached program for expr and varNames, compiling
// and caching it on first use.
func (e *Evaluator) compile(expr string, varNames []string) (*gojq.Code, error) {
	key := expr + "\x00" + strings.Join(varNames, ",")

	e.mu.RLock()
	code, ok := e.cache[key]
	e.mu.RUnlock()
	if ok {
		return code, nil
	}

	query, err := gojq.Parse(expr)
	if err != nil {
		return nil, err
	}

	var opts []gojq.CompilerOption
	if len(varNames) > 0 {
		opts = append(opts, gojq.WithVariables(varNames))
	}
	code, err = gojq.Compile(query, opts...)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.cache[key] = code
	e.mu.Unlock()
	return code, nil
}

// splitVars flattens the variable map into the parallel name/value
// slices gojq expects, ordered deterministically by name.
func splitVars(vars map[string]any) ([]string, []any) {
	if len(vars) == 0 {
		return nil, nil
	}
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	values := make([]any, len(names))
	for i, name := range names {
		values[i] = vars[name]
	}
	return names, values
}
