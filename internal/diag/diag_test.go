package diag

import (
	"encoding/json"
	"testing"
)

func TestEncodeUsesUnknownForEmptyNode(t *testing.T) {
	d := Diagnostic{Phase: PhaseCheck, Code: TypeMismatch, Message: "bad shape"}
	enc := d.Encode()
	if enc.SID != "unknown" {
		t.Errorf("expected SID unknown for empty node, got %q", enc.SID)
	}
	if enc.Schema != schemaVersion {
		t.Errorf("expected schema %q, got %q", schemaVersion, enc.Schema)
	}
}

func TestToJSONRoundTrips(t *testing.T) {
	d := Diagnostic{Phase: PhaseLower, Code: TestClassWithCtor, Message: "no ctor allowed", Fix: "remove __init__"}
	data, err := d.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	var got Encoded
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Code != string(TestClassWithCtor) || got.Fix != "remove __init__" {
		t.Errorf("unexpected round-trip: %+v", got)
	}
}

func TestBarrierNoOpWhenEmpty(t *testing.T) {
	c := NewCollector()
	if err := c.Barrier(); err != nil {
		t.Errorf("expected nil error on empty collector, got %v", err)
	}
}

func TestBarrierReturnsFailureWithEntries(t *testing.T) {
	c := NewCollector()
	c.Errorf(PhaseSymbols, DuplicateDefinition, "", "%q redefined", "fib")
	err := c.Barrier()
	if err == nil {
		t.Fatal("expected a Failure")
	}
	failure, ok := err.(*Failure)
	if !ok {
		t.Fatalf("expected *Failure, got %T", err)
	}
	if len(failure.Diagnostics) != 1 || failure.Diagnostics[0].Code != DuplicateDefinition {
		t.Errorf("unexpected diagnostics: %+v", failure.Diagnostics)
	}
}

func TestInvariantPanicsWithInternalError(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected Invariant to panic")
		}
		ie, ok := r.(*InternalError)
		if !ok {
			t.Fatalf("expected *InternalError, got %T", r)
		}
		if ie.Where != "lower.stack" {
			t.Errorf("unexpected Where: %s", ie.Where)
		}
	}()
	Invariant("lower.stack", "popped an empty frame")
}
