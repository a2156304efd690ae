package sid

import "testing"

func TestNewSIDDeterministic(t *testing.T) {
	a := NewSID("/tmp/foo.src", 10, 20, "Call", []int{0, 1})
	b := NewSID("/tmp/foo.src", 10, 20, "Call", []int{0, 1})
	if a != b {
		t.Errorf("NewSID is not deterministic: %s != %s", a, b)
	}
}

func TestNewSIDDiffersByChildPath(t *testing.T) {
	a := NewSID("/tmp/foo.src", 10, 20, "Call", []int{0, 1})
	b := NewSID("/tmp/foo.src", 10, 20, "Call", []int{0, 2})
	if a == b {
		t.Errorf("NewSID should differ when child path differs")
	}
}

func TestSIDMapRoundTrip(t *testing.T) {
	m := NewSIDMap()
	surface := SID("surface1")
	core1 := SID("core1")
	core2 := SID("core2")
	m.AddMapping(surface, core1)
	m.AddMapping(surface, core2)

	got := m.GetCoreSIDs(surface)
	if len(got) != 2 || got[0] != core1 || got[1] != core2 {
		t.Errorf("GetCoreSIDs(%s) = %v, want [%s %s]", surface, got, core1, core2)
	}

	back, ok := m.GetSurfaceSID(core2)
	if !ok || back != surface {
		t.Errorf("GetSurfaceSID(%s) = (%s, %v), want (%s, true)", core2, back, ok, surface)
	}
}
