package jtl

import "fmt"

// TypeMismatchError is returned when navigation meets a container whose
// kind conflicts with the path segment: an index segment over a
// non-array, or a key segment over a non-object.
type TypeMismatchError struct {
	Path         string // full destination path being navigated
	SegmentIndex int    // position of the conflicting segment
	Expected     string // container kind the segment requires
	Actual       string // JSON kind actually found
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch at segment %d of %q: expected %s, got %s", e.SegmentIndex, e.Path, e.Expected, e.Actual)
}

// FormatError is returned when a spec or chain document has an unusable
// shape.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid spec: %s", e.Reason)
}

// MissingFieldError is returned when a mapping or chain step lacks a
// required field. Index is the 1-based position of the entity in its
// list.
type MissingFieldError struct {
	Entity string // "mapping" or "step"
	Index  int
	Field  string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s %d: missing required field %q", e.Entity, e.Index, e.Field)
}

// InvalidChainStateError is returned when a step references $prev before
// any step has produced an output.
type InvalidChainStateError struct {
	Step int    // 1-based step number
	Ref  string // "src" or "dst"
}

func (e *InvalidChainStateError) Error() string {
	return fmt.Sprintf("step %d: %s %q used but no previous output exists", e.Step, e.Ref, PrevSentinel)
}

// UnsupportedModeError is returned for a mapping mode outside
// upsert/replace. It is raised before the mapping's expression is
// evaluated.
type UnsupportedModeError struct {
	Mode string
}

func (e *UnsupportedModeError) Error() string {
	return fmt.Sprintf("unsupported mode: %q", e.Mode)
}

// ConfigError is returned for a chain spec that cannot be run at all,
// such as an empty step list.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid chain: %s", e.Reason)
}

// MappingError wraps a failure from a single mapping with enough context
// to locate it: its 1-based position, expression, and destination path.
type MappingError struct {
	Index int
	Src   string
	Dst   string
	Err   error
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("mapping %d (%s -> %s): %v", e.Index, e.Src, e.Dst, e.Err)
}

func (e *MappingError) Unwrap() error { return e.Err }

// StepError wraps a failure from a chain step with its 1-based step
// number.
type StepError struct {
	Step int
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
