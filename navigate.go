package jtl

import (
	"fmt"
	"math/big"

	"github.com/bgoodspeed/jtl/jqpath"
)

// target is a writable location resolved by ensureTarget: the document
// root itself, an object member, or an array element.
type target struct {
	root   *any
	parent map[string]any
	key    string
	list   []any
	index  int
}

// load returns the current value at the target; nil when nothing has
// been written there yet.
func (t *target) load() any {
	switch {
	case t.root != nil:
		return *t.root
	case t.parent != nil:
		return t.parent[t.key]
	default:
		return t.list[t.index]
	}
}

// store writes v at the target.
func (t *target) store(v any) {
	switch {
	case t.root != nil:
		*t.root = v
	case t.parent != nil:
		t.parent[t.key] = v
	default:
		t.list[t.index] = v
	}
}

// ensureTarget walks segs from the document root, creating missing
// containers along the way, and returns the final writable location
// without storing anything there.
//
// Index segments require arrays, which are padded with nulls up to the
// index; a null slot becomes an array when the following segment is an
// index, an object otherwise. Key segments require objects, with missing
// or null members created the same way. A conflicting existing value
// (indexing into a string, keying into an array) is a TypeMismatchError;
// existing containers of the right kind are never replaced.
//
// path is the original path text, used only in errors.
func ensureTarget(root *any, path string, segs []jqpath.Segment) (*target, error) {
	if len(segs) == 0 {
		return &target{root: root}, nil
	}

	cur := *root
	store := func(v any) { *root = v }

	for i := 0; i < len(segs)-1; i++ {
		seg, next := segs[i], segs[i+1]
		if seg.Kind == jqpath.KindIndex {
			list, ok := cur.([]any)
			if !ok {
				return nil, &TypeMismatchError{Path: path, SegmentIndex: i, Expected: "array", Actual: jsonTypeName(cur)}
			}
			if grown := growList(list, seg.Index); len(grown) != len(list) {
				list = grown
				store(list)
			}
			child := list[seg.Index]
			if child == nil {
				child = emptyContainer(next)
				list[seg.Index] = child
			}
			idx, l := seg.Index, list
			store = func(v any) { l[idx] = v }
			cur = child
			continue
		}

		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, &TypeMismatchError{Path: path, SegmentIndex: i, Expected: "object", Actual: jsonTypeName(cur)}
		}
		child := obj[seg.Key]
		if child == nil {
			child = emptyContainer(next)
			obj[seg.Key] = child
		}
		key, o := seg.Key, obj
		store = func(v any) { o[key] = v }
		cur = child
	}

	last := segs[len(segs)-1]
	if last.Kind == jqpath.KindIndex {
		list, ok := cur.([]any)
		if !ok {
			return nil, &TypeMismatchError{Path: path, SegmentIndex: len(segs) - 1, Expected: "array", Actual: jsonTypeName(cur)}
		}
		if grown := growList(list, last.Index); len(grown) != len(list) {
			list = grown
			store(list)
		}
		return &target{list: list, index: last.Index}, nil
	}

	obj, ok := cur.(map[string]any)
	if !ok {
		return nil, &TypeMismatchError{Path: path, SegmentIndex: len(segs) - 1, Expected: "object", Actual: jsonTypeName(cur)}
	}
	return &target{parent: obj, key: last.Key}, nil
}

// growList pads list with nulls until index is addressable.
func growList(list []any, index int) []any {
	for len(list) <= index {
		list = append(list, nil)
	}
	return list
}

// emptyContainer picks the container kind a null slot should become,
// based on the segment that will descend into it next.
func emptyContainer(next jqpath.Segment) any {
	if next.Kind == jqpath.KindIndex {
		return []any{}
	}
	return map[string]any{}
}

// jsonTypeName names v's JSON kind for error messages.
func jsonTypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case int, int64, float64, *big.Int:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
