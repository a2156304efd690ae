// Package diag is the compiler's append-only error collector (spec.md
// §4.5). Diagnostics accumulate across a phase; Collector.Barrier raises a
// fatal Failure carrying the whole list when any entry is present.
//
// Diagnostic shape and JSON envelope: a short taxonomy code, a phase
// tag, a human message, and an optional Fix suggestion.
package diag

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/quarkc/compiler/internal/sid"
)

// Code is a short, stable taxonomy code (spec.md §7).
type Code string

const (
	DuplicateDefinition   Code = "SYM001"
	UnresolvedReference   Code = "SYM002"
	AmbiguousReference    Code = "SYM003"
	TypeMismatch          Code = "TYP001"
	MissingMember         Code = "TYP002"
	ArityMismatch         Code = "TYP003"
	MissingTypeMapping    Code = "TYP004"
	TestClassWithCtor     Code = "LWR001"
	InternalInvariant     Code = "INT001"
)

// Phase tags which pipeline stage raised a diagnostic.
type Phase string

const (
	PhaseSymbols Phase = "symbols"
	PhaseTypes   Phase = "types"
	PhaseCheck   Phase = "check"
	PhaseMono    Phase = "mono"
	PhaseLower   Phase = "lower"
)

// Diagnostic is a single user-facing error.
type Diagnostic struct {
	Phase   Phase
	Code    Code
	Message string
	Node    sid.SID // stable id of the offending AST node, "" if none
	Fix     string  // optional suggestion, "" if none
}

func (d Diagnostic) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s: %s", d.Phase, d.Code, d.Message)
	if d.Node != "" {
		fmt.Fprintf(&b, " (at %s)", d.Node)
	}
	if d.Fix != "" {
		fmt.Fprintf(&b, "\n  suggestion: %s", d.Fix)
	}
	return b.String()
}

// Encoded is the JSON-serialisable form of a Diagnostic
// (schema/sid/phase/code/message/fix).
type Encoded struct {
	Schema  string `json:"schema"`
	SID     string `json:"sid"`
	Phase   string `json:"phase"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Fix     string `json:"fix,omitempty"`
}

const schemaVersion = "quarkc.diag/v1"

// Encode renders a Diagnostic as its JSON envelope.
func (d Diagnostic) Encode() Encoded {
	s := string(d.Node)
	if s == "" {
		s = "unknown"
	}
	return Encoded{
		Schema:  schemaVersion,
		SID:     s,
		Phase:   string(d.Phase),
		Code:    string(d.Code),
		Message: d.Message,
		Fix:     d.Fix,
	}
}

// ToJSON marshals the diagnostic deterministically (struct field order is
// fixed, so encoding/json already produces stable output).
func (d Diagnostic) ToJSON() ([]byte, error) {
	return json.Marshal(d.Encode())
}

// Collector is a single append-only list of diagnostics, owned
// exclusively by one Compiler instance (spec.md §5: no shared state).
type Collector struct {
	entries []Diagnostic
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Add appends a diagnostic.
func (c *Collector) Add(d Diagnostic) {
	c.entries = append(c.entries, d)
}

// Errorf is a convenience wrapper around Add.
func (c *Collector) Errorf(phase Phase, code Code, node sid.SID, format string, args ...interface{}) {
	c.Add(Diagnostic{Phase: phase, Code: code, Node: node, Message: fmt.Sprintf(format, args...)})
}

// Len reports how many diagnostics have been collected.
func (c *Collector) Len() int { return len(c.entries) }

// Entries returns the collected diagnostics in insertion order.
func (c *Collector) Entries() []Diagnostic {
	return append([]Diagnostic(nil), c.entries...)
}

// Failure is the fatal, aggregated user-error raised at a phase boundary
// when diagnostics are pending (spec.md §4.5, §7 "Propagation policy").
type Failure struct {
	Diagnostics []Diagnostic
}

func (f *Failure) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d error(s):\n", len(f.Diagnostics))
	for _, d := range f.Diagnostics {
		b.WriteString(d.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// Barrier aborts progression to the next pipeline stage if any
// diagnostic is pending; otherwise it is a no-op.
func (c *Collector) Barrier() error {
	if len(c.entries) == 0 {
		return nil
	}
	return &Failure{Diagnostics: c.Entries()}
}

// InternalError is the separate fatal channel for invariant violations
// (pattern-dispatch shape assertions, stack misuse): bugs, not user
// errors, and never collected alongside user diagnostics.
type InternalError struct {
	Where string
	Cause error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal compiler error in %s: %v", e.Where, e.Cause)
}

func (e *InternalError) Unwrap() error { return e.Cause }

// Invariant panics with an InternalError; callers that hit a state the
// core's own pattern-dispatch guarantees cannot occur should use this
// rather than returning a user diagnostic.
func Invariant(where string, format string, args ...interface{}) {
	panic(&InternalError{Where: where, Cause: fmt.Errorf(format, args...)})
}
