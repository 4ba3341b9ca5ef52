package button

import (
	"reflect"
	"testing"
)

func TestGate_Disabled(t *testing.T) {
	g := NewGate(false)

	if g.Activate() {
		t.Fatalf("disabled gate should not activate")
	}
	if got := g.State(); got != StateDisabled {
		t.Fatalf("unexpected state: got=%v want=%v", got, StateDisabled)
	}
}

func TestGate_Cycle(t *testing.T) {
	g := NewGate(true)

	if got := g.State(); got != StateInactive {
		t.Fatalf("unexpected initial state: %v", got)
	}
	if !g.Activate() {
		t.Fatalf("inactive gate should activate")
	}
	if g.Activate() {
		t.Fatalf("active gate should not activate again")
	}
	if !g.Active() {
		t.Fatalf("gate should be active")
	}
	if !g.Deactivate() {
		t.Fatalf("active gate should deactivate")
	}
	if g.Deactivate() {
		t.Fatalf("inactive gate should not deactivate")
	}
	if !g.Activate() {
		t.Fatalf("gate should activate again after a cycle")
	}
}

func TestGate_Holders(t *testing.T) {
	g := NewGate(true)

	if !g.AddHolder(5) || !g.AddHolder(3) {
		t.Fatalf("new holders should be added")
	}
	if g.AddHolder(5) {
		t.Fatalf("duplicate holder should be rejected")
	}
	if got := g.Holders(); !reflect.DeepEqual(got, []int64{3, 5}) {
		t.Fatalf("unexpected holders: %v", got)
	}
	if !g.RemoveHolder(3) || g.RemoveHolder(3) {
		t.Fatalf("remove should succeed exactly once")
	}
	if g.HasHolder(3) || !g.HasHolder(5) {
		t.Fatalf("unexpected holder membership")
	}
}
