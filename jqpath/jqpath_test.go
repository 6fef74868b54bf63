package jqpath

import (
	"errors"
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		path string
		want []Segment
	}{
		{
			name: "root",
			path: ".",
			want: []Segment{},
		},
		{
			name: "single key",
			path: ".name",
			want: []Segment{Key("name")},
		},
		{
			name: "nested keys",
			path: ".a.b.c",
			want: []Segment{Key("a"), Key("b"), Key("c")},
		},
		{
			name: "underscore identifier",
			path: "._private.x2",
			want: []Segment{Key("_private"), Key("x2")},
		},
		{
			name: "index",
			path: ".items[2]",
			want: []Segment{Key("items"), Index(2)},
		},
		{
			name: "index with whitespace",
			path: ".items[ 10 ]",
			want: []Segment{Key("items"), Index(10)},
		},
		{
			name: "chained indexes",
			path: ".grid[0][1]",
			want: []Segment{Key("grid"), Index(0), Index(1)},
		},
		{
			name: "double quoted key",
			path: `.meta["release date"]`,
			want: []Segment{Key("meta"), Key("release date")},
		},
		{
			name: "single quoted key",
			path: `.tags['v1.0']`,
			want: []Segment{Key("tags"), Key("v1.0")},
		},
		{
			name: "quoted key with whitespace padding",
			path: `.m[ "k" ]`,
			want: []Segment{Key("m"), Key("k")},
		},
		{
			name: "escaped quote inside key",
			path: `.foo["bar baz"][0]["qu\"ote"]`,
			want: []Segment{Key("foo"), Key("bar baz"), Index(0), Key(`qu"ote`)},
		},
		{
			name: "escaped newline inside key",
			path: `.x["a\nb"]`,
			want: []Segment{Key("x"), Key("a\nb")},
		},
		{
			name: "mixed deep path",
			path: `.a[0].b["c d"][3]`,
			want: []Segment{Key("a"), Index(0), Key("b"), Key("c d"), Index(3)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.path)
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tt.path, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		wantOffset int
	}{
		{
			name:       "empty path",
			path:       "",
			wantOffset: 0,
		},
		{
			name:       "missing leading dot",
			path:       "name",
			wantOffset: 0,
		},
		{
			name:       "bracket at start",
			path:       `["a"]`,
			wantOffset: 0,
		},
		{
			name:       "trailing dot",
			path:       ".foo.",
			wantOffset: 4,
		},
		{
			name:       "double dot",
			path:       "..",
			wantOffset: 0,
		},
		{
			name:       "dot before bracket",
			path:       ".[0]",
			wantOffset: 0,
		},
		{
			name:       "empty brackets (iterator syntax)",
			path:       ".foo[]",
			wantOffset: 4,
		},
		{
			name:       "unterminated bracket",
			path:       ".foo[1",
			wantOffset: 4,
		},
		{
			name:       "unterminated quote",
			path:       `.foo["bar]`,
			wantOffset: 4,
		},
		{
			name:       "negative index",
			path:       ".foo[-1]",
			wantOffset: 4,
		},
		{
			name:       "identifier starting with digit",
			path:       ".2abc",
			wantOffset: 0,
		},
		{
			name:       "trailing garbage",
			path:       ".foo!bar",
			wantOffset: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.path)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want SyntaxError", tt.path)
			}
			var synErr *SyntaxError
			if !errors.As(err, &synErr) {
				t.Fatalf("Parse(%q) error = %T, want *SyntaxError", tt.path, err)
			}
			if synErr.Offset != tt.wantOffset {
				t.Errorf("Parse(%q) offset = %d, want %d", tt.path, synErr.Offset, tt.wantOffset)
			}
			if synErr.Remainder != tt.path[tt.wantOffset:] {
				t.Errorf("Parse(%q) remainder = %q, want %q", tt.path, synErr.Remainder, tt.path[tt.wantOffset:])
			}
		})
	}
}

func TestUnescape(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain string",
			input: "hello",
			want:  "hello",
		},
		{
			name:  "newline",
			input: `a\nb`,
			want:  "a\nb",
		},
		{
			name:  "tab",
			input: `a\tb`,
			want:  "a\tb",
		},
		{
			name:  "double backslash",
			input: `a\\n`,
			want:  `a\n`,
		},
		{
			name:  "escaped quotes",
			input: `\"\'`,
			want:  `"'`,
		},
		{
			name:  "hex escape",
			input: `\x41`,
			want:  "A",
		},
		{
			name:  "unicode escape",
			input: `\u00e9`,
			want:  "é",
		},
		{
			name:  "long unicode escape",
			input: `\U0001F600`,
			want:  "\U0001F600",
		},
		{
			name:  "octal escape",
			input: `\101`,
			want:  "A",
		},
		{
			name:  "unknown escape kept verbatim",
			input: `\q`,
			want:  `\q`,
		},
		{
			name:  "malformed hex kept verbatim",
			input: `\xZZ`,
			want:  `\xZZ`,
		},
		{
			name:  "trailing backslash",
			input: `abc\`,
			want:  `abc\`,
		},
		{
			name:  "pipe delimiter untouched",
			input: " | ",
			want:  " | ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Unescape(tt.input)
			if got != tt.want {
				t.Errorf("Unescape(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name string
		segs []Segment
		want string
	}{
		{
			name: "empty is root",
			segs: nil,
			want: ".",
		},
		{
			name: "identifier keys use dot form",
			segs: []Segment{Key("a"), Key("b")},
			want: ".a.b",
		},
		{
			name: "indexes",
			segs: []Segment{Key("items"), Index(2)},
			want: ".items[2]",
		},
		{
			name: "non-identifier key is quoted",
			segs: []Segment{Key("a"), Key("b c")},
			want: `.a["b c"]`,
		},
		{
			name: "quote inside key is escaped",
			segs: []Segment{Key(`qu"ote`)},
			want: `["qu\"ote"]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Build(tt.segs)
			if got != tt.want {
				t.Errorf("Build(%v) = %q, want %q", tt.segs, got, tt.want)
			}
		})
	}
}

func TestBuildParseRoundTrip(t *testing.T) {
	paths := []string{
		".",
		".a.b.c",
		".items[0][3]",
		`.meta["release date"]`,
		`.x["qu\"ote"]`,
	}
	for _, path := range paths {
		segs, err := Parse(path)
		if err != nil {
			t.Fatalf("Parse(%q) returned error: %v", path, err)
		}
		rebuilt := Build(segs)
		again, err := Parse(rebuilt)
		if err != nil {
			t.Fatalf("Parse(Build(%q)) = Parse(%q) returned error: %v", path, rebuilt, err)
		}
		if !reflect.DeepEqual(segs, again) {
			t.Errorf("round trip of %q changed segments: %v -> %v", path, segs, again)
		}
	}
}
