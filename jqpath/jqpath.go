// Package jqpath parses destination paths written in the concrete-lvalue
// subset of jq's path syntax.
//
// A path selects exactly one location in a JSON document: object members by
// name, array elements by position. Wildcards, slices, and filter
// expressions are not part of the subset; a destination is always a single
// assignable place.
//
// Accepted forms:
//
//	.                      root (the whole document)
//	.name                  member "name"
//	.items[2]              member "items", element 2
//	.meta["release date"]  member "meta", member "release date"
//	.tags['v1.0']          member "tags", member "v1.0"
//
// Bracket keys may contain backslash escapes (\n, \t, \", \\, \xHH, \uHHHH,
// and friends), interpreted by Unescape.
package jqpath

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// SegmentKind discriminates the two kinds of path segments.
type SegmentKind int

const (
	// KindKey selects an object member by name.
	KindKey SegmentKind = iota
	// KindIndex selects an array element by position.
	KindIndex
)

// Segment is one step of a parsed path: an object key or an array index.
// Kind tells which of Key/Index is meaningful.
type Segment struct {
	Kind  SegmentKind
	Key   string
	Index int
}

// Key returns a key segment selecting the object member name.
func Key(name string) Segment {
	return Segment{Kind: KindKey, Key: name}
}

// Index returns an index segment selecting the array element at i.
func Index(i int) Segment {
	return Segment{Kind: KindIndex, Index: i}
}

// String renders the segment in canonical path form: dot notation for
// plain identifiers, bracket notation otherwise.
func (s Segment) String() string {
	if s.Kind == KindIndex {
		return "[" + strconv.Itoa(s.Index) + "]"
	}
	if isIdentifier(s.Key) {
		return "." + s.Key
	}
	return `["` + escapeKey(s.Key) + `"]`
}

// Build renders a segment sequence back into path syntax.
// An empty sequence renders as "." (the root path).
//
// Example:
//
//	Build([]Segment{Key("a"), Index(2), Key("b c")})  -> `.a[2]["b c"]`
func Build(segs []Segment) string {
	if len(segs) == 0 {
		return "."
	}
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.String())
	}
	return b.String()
}

// SyntaxError reports a destination path outside the concrete-lvalue
// subset. Offset is the byte position of the first unparseable character
// and Remainder the text from that position on.
type SyntaxError struct {
	Path      string
	Offset    int
	Remainder string
}

func (e *SyntaxError) Error() string {
	if e.Path == "" || e.Path[0] != '.' {
		return fmt.Sprintf("destination path must start with '.': %q", e.Path)
	}
	return fmt.Sprintf("unsupported or non-concrete destination path near %q in %q (offset %d)", e.Remainder, e.Path, e.Offset)
}

// Parse parses a destination path into its segment sequence.
// The path must start with '.'; the bare path "." yields an empty
// sequence, meaning the whole document.
//
// Examples:
//
//	Parse(".")                      -> [], nil
//	Parse(".a.b")                   -> [Key("a"), Key("b")], nil
//	Parse(".items[2]")              -> [Key("items"), Index(2)], nil
//	Parse(`.meta["release date"]`)  -> [Key("meta"), Key("release date")], nil
//	Parse("items")                  -> nil, *SyntaxError (missing leading '.')
func Parse(path string) ([]Segment, error) {
	if path == "" || path[0] != '.' {
		return nil, &SyntaxError{Path: path, Offset: 0, Remainder: path}
	}
	if path == "." {
		return []Segment{}, nil
	}

	var segs []Segment
	i := 0
	for i < len(path) {
		seg, next, ok := scanSegment(path, i)
		if !ok {
			return nil, &SyntaxError{Path: path, Offset: i, Remainder: path[i:]}
		}
		segs = append(segs, seg)
		i = next
	}
	return segs, nil
}

// scanSegment matches one token starting at offset i.
// Returns the segment, the offset just past it, and whether a token matched.
func scanSegment(path string, i int) (Segment, int, bool) {
	switch path[i] {
	case '.':
		j := i + 1
		if j >= len(path) || !isIdentStart(path[j]) {
			return Segment{}, 0, false
		}
		j++
		for j < len(path) && isIdentPart(path[j]) {
			j++
		}
		return Key(path[i+1 : j]), j, true
	case '[':
		return scanBracket(path, i)
	}
	return Segment{}, 0, false
}

// scanBracket matches [digits], ["quoted"], or ['quoted'], allowing
// whitespace between the brackets and the token.
func scanBracket(path string, i int) (Segment, int, bool) {
	j := skipSpace(path, i+1)
	if j >= len(path) {
		return Segment{}, 0, false
	}

	if c := path[j]; c >= '0' && c <= '9' {
		start := j
		for j < len(path) && path[j] >= '0' && path[j] <= '9' {
			j++
		}
		idx, err := strconv.Atoi(path[start:j])
		if err != nil {
			return Segment{}, 0, false
		}
		j = skipSpace(path, j)
		if j >= len(path) || path[j] != ']' {
			return Segment{}, 0, false
		}
		return Index(idx), j + 1, true
	}

	quote := path[j]
	if quote != '"' && quote != '\'' {
		return Segment{}, 0, false
	}
	j++
	start := j
	for j < len(path) {
		switch path[j] {
		case quote:
			raw := path[start:j]
			j = skipSpace(path, j+1)
			if j >= len(path) || path[j] != ']' {
				return Segment{}, 0, false
			}
			return Key(Unescape(raw)), j + 1, true
		case '\\':
			if j+1 >= len(path) {
				return Segment{}, 0, false
			}
			j += 2
		default:
			j++
		}
	}
	return Segment{}, 0, false
}

func skipSpace(path string, i int) int {
	for i < len(path) && (path[i] == ' ' || path[i] == '\t') {
		i++
	}
	return i
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isIdentifier(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentPart(s[i]) {
			return false
		}
	}
	return true
}

// Unescape interprets backslash escapes in s: the usual single-character
// escapes (\n, \t, \r, \b, \f, \v, \a, \\, \', \"), octal (\ooo), hex
// (\xHH), and unicode (\uHHHH, \UHHHHHHHH) forms. Unrecognized or
// malformed escapes are kept verbatim.
//
// The same rules apply to bracket-quoted path keys and to delimiter
// strings given on the command line or in mapping definitions.
func Unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			i++
			continue
		}
		switch esc := s[i+1]; esc {
		case 'n':
			b.WriteByte('\n')
			i += 2
		case 't':
			b.WriteByte('\t')
			i += 2
		case 'r':
			b.WriteByte('\r')
			i += 2
		case 'b':
			b.WriteByte('\b')
			i += 2
		case 'f':
			b.WriteByte('\f')
			i += 2
		case 'v':
			b.WriteByte('\v')
			i += 2
		case 'a':
			b.WriteByte(0x07)
			i += 2
		case '\\', '\'', '"':
			b.WriteByte(esc)
			i += 2
		case 'x':
			if v, n := hexValue(s[i+2:], 2); n == 2 {
				b.WriteRune(rune(v))
				i += 4
			} else {
				b.WriteByte(c)
				i++
			}
		case 'u':
			if v, n := hexValue(s[i+2:], 4); n == 4 {
				b.WriteRune(rune(v))
				i += 6
			} else {
				b.WriteByte(c)
				i++
			}
		case 'U':
			if v, n := hexValue(s[i+2:], 8); n == 8 && v <= int(unicode.MaxRune) {
				b.WriteRune(rune(v))
				i += 10
			} else {
				b.WriteByte(c)
				i++
			}
		default:
			if esc >= '0' && esc <= '7' {
				v, n := octValue(s[i+1:], 3)
				b.WriteRune(rune(v))
				i += 1 + n
			} else {
				b.WriteByte('\\')
				b.WriteByte(esc)
				i += 2
			}
		}
	}
	return b.String()
}

// hexValue parses up to max hex digits from the front of s.
// Returns the value and the number of digits consumed.
func hexValue(s string, max int) (int, int) {
	v, n := 0, 0
	for n < max && n < len(s) {
		d := hexDigit(s[n])
		if d < 0 {
			break
		}
		v = v<<4 | d
		n++
	}
	return v, n
}

func hexDigit(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}

// octValue parses up to max octal digits from the front of s.
func octValue(s string, max int) (int, int) {
	v, n := 0, 0
	for n < max && n < len(s) && s[n] >= '0' && s[n] <= '7' {
		v = v<<3 | int(s[n]-'0')
		n++
	}
	return v, n
}

func escapeKey(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
