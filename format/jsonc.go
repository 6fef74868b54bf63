package format

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tailscale/hujson"
)

// unmarshalJSONC decodes JSON with comments and trailing commas by
// standardizing through hujson's AST first.
func unmarshalJSONC(data []byte) (any, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	v, err := hujson.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JSONC: %w", err)
	}
	v.Standardize()

	var out any
	if err := json.Unmarshal(v.Pack(), &out); err != nil {
		return nil, fmt.Errorf("failed to decode JSONC: %w", err)
	}
	return out, nil
}
