package format

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"time"
)

// Normalize coerces a freshly decoded value into the engine's JSON
// domain: nil, bool, int, float64, *big.Int, string, []any, and
// map[string]any. Decoders produce types outside this set (YAML yields
// map[any]any for non-string keys, TOML yields int64 and time.Time),
// and the engine and jq evaluator must never see them.
//
// Conversions:
//
//   - map[any]any → map[string]any: non-string keys are stringified
//   - int8/int16/int32/int64 → int (out-of-range int64 → float64)
//   - uint/uint8/uint16/uint32/uint64 → int (out-of-range → float64)
//   - float32 → float64
//   - time.Time → RFC 3339 string
//   - json.Number → int or float64 (unparseable → string)
//   - fmt.Stringer (TOML local dates and times) → string
//
// Maps and slices already in the domain are normalized in place.
func Normalize(v any) any {
	switch val := v.(type) {
	case nil, bool, int, float64, string, *big.Int:
		return val
	case map[string]any:
		for k, elem := range val {
			val[k] = Normalize(elem)
		}
		return val
	case []any:
		for i, elem := range val {
			val[i] = Normalize(elem)
		}
		return val
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[mapKey(k)] = Normalize(elem)
		}
		return out
	case int8:
		return int(val)
	case int16:
		return int(val)
	case int32:
		return int(val)
	case int64:
		if val > math.MaxInt || val < math.MinInt {
			return float64(val)
		}
		return int(val)
	case uint:
		if uint64(val) > math.MaxInt {
			return float64(val)
		}
		return int(val)
	case uint8:
		return int(val)
	case uint16:
		return int(val)
	case uint32:
		return int(val)
	case uint64:
		if val > math.MaxInt {
			return float64(val)
		}
		return int(val)
	case float32:
		return float64(val)
	case time.Time:
		return val.Format(time.RFC3339)
	case json.Number:
		if i, err := strconv.Atoi(string(val)); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(string(val), 64); err == nil {
			return f
		}
		return string(val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// mapKey renders a map key as a string.
func mapKey(k any) string {
	if s, ok := k.(string); ok {
		return s
	}
	return fmt.Sprint(k)
}
