package jtl

import (
	"context"
	"strings"

	"github.com/bgoodspeed/jtl/jqpath"
)

// Mapping modes. Mode strings compare case-insensitively.
const (
	ModeUpsert  = "upsert"
	ModeReplace = "replace"
)

// Mapping is one transformation rule: evaluate Src against the source
// document and write the results at Dst.
type Mapping struct {
	Src       string  // expression in the evaluator's dialect (required)
	Dst       string  // destination path, jqpath syntax (required)
	Mode      string  // ModeUpsert (default) or ModeReplace
	Delimiter *string // per-mapping delimiter override, backslash-escaped
}

// applyMapping runs m against src and writes into *doc. The mode is
// validated before anything is evaluated. delim is the effective
// default; a per-mapping delimiter overrides it after unescaping.
func (r *Runner) applyMapping(ctx context.Context, m Mapping, src any, spec *Spec, doc *any, delim string) error {
	mode := strings.ToLower(m.Mode)
	if mode == "" {
		mode = ModeUpsert
	}
	if mode != ModeUpsert && mode != ModeReplace {
		return &UnsupportedModeError{Mode: m.Mode}
	}

	if m.Delimiter != nil {
		delim = jqpath.Unescape(*m.Delimiter)
	}

	vars := map[string]any{"$ctx": contextValue(spec.Context)}
	results, err := r.eval.Evaluate(ctx, wrapExpr(spec.Prelude, m.Src), src, vars)
	if err != nil {
		return err
	}

	segs, err := jqpath.Parse(m.Dst)
	if err != nil {
		return err
	}

	if mode == ModeReplace {
		var value any
		switch len(results) {
		case 0:
			value = nil
		case 1:
			value = results[0]
		default:
			value = []any(results)
		}
		tgt, err := ensureTarget(doc, m.Dst, segs)
		if err != nil {
			return err
		}
		tgt.store(replaceValue(value))
		return nil
	}

	// Upsert: no results, no write. Otherwise each result applies one
	// single-value upsert, in order, each seeing the previous one.
	if len(results) == 0 {
		return nil
	}
	tgt, err := ensureTarget(doc, m.Dst, segs)
	if err != nil {
		return err
	}
	for _, res := range results {
		tgt.store(upsertValue(tgt.load(), res, delim))
	}
	return nil
}

// wrapExpr composes the spec prelude around a mapping expression. The
// expression is parenthesized so the prelude can end in definitions.
func wrapExpr(prelude, expr string) string {
	if prelude == "" {
		return "(" + expr + ")"
	}
	return prelude + " (" + expr + ")"
}

// contextValue never hands the evaluator a nil context: expressions see
// an empty object when no ctx was configured.
func contextValue(ctx map[string]any) any {
	if ctx == nil {
		return map[string]any{}
	}
	return ctx
}
