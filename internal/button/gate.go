// Package button holds the big red button state machine.
package button

import (
	"sort"
	"sync"
)

// State is the button's current phase.
type State int

const (
	StateDisabled State = iota
	StateInactive
	StateActive
)

func (s State) String() string {
	switch s {
	case StateInactive:
		return "inactive"
	case StateActive:
		return "active"
	default:
		return "disabled"
	}
}

// Gate tracks whether the button can be pressed and who holds its role.
// A disabled gate never becomes active.
type Gate struct {
	mu      sync.Mutex
	enabled bool
	active  bool
	holders map[int64]struct{}
}

func NewGate(enabled bool) *Gate {
	return &Gate{enabled: enabled, holders: make(map[int64]struct{})}
}

func (g *Gate) Enabled() bool {
	return g.enabled
}

func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch {
	case !g.enabled:
		return StateDisabled
	case g.active:
		return StateActive
	default:
		return StateInactive
	}
}

func (g *Gate) Active() bool {
	return g.State() == StateActive
}

// Activate moves Inactive to Active. It reports false in any other state.
func (g *Gate) Activate() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.enabled || g.active {
		return false
	}
	g.active = true
	return true
}

// Deactivate moves Active to Inactive and reports whether it did.
func (g *Gate) Deactivate() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.active {
		return false
	}
	g.active = false
	return true
}

// AddHolder records userID as holding the button role. It returns false
// when the user already holds it.
func (g *Gate) AddHolder(userID int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.holders[userID]; ok {
		return false
	}
	g.holders[userID] = struct{}{}
	return true
}

func (g *Gate) RemoveHolder(userID int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.holders[userID]; !ok {
		return false
	}
	delete(g.holders, userID)
	return true
}

func (g *Gate) HasHolder(userID int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, ok := g.holders[userID]
	return ok
}

// Holders returns the current role holders in ascending order.
func (g *Gate) Holders() []int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	ids := make([]int64, 0, len(g.holders))
	for id := range g.holders {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
