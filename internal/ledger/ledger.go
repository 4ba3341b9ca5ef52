// Package ledger tracks which users currently hold which prize.
package ledger

import (
	"fmt"
	"sort"
	"sync"
)

// Ledger maps a prize name to the set of users holding it. Every prize must
// be registered up front; touching an unknown prize panics.
type Ledger struct {
	mu      sync.Mutex
	holders map[string]map[int64]struct{}
}

func New(prizeNames ...string) *Ledger {
	l := &Ledger{holders: make(map[string]map[int64]struct{}, len(prizeNames))}
	for _, name := range prizeNames {
		l.holders[name] = make(map[int64]struct{})
	}
	return l
}

// Grant adds userID to the prize's holders. It returns false, and changes
// nothing, when the user already holds the prize.
func (l *Ledger) Grant(prize string, userID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	set := l.set(prize)
	if _, ok := set[userID]; ok {
		return false
	}
	set[userID] = struct{}{}
	return true
}

// Revoke removes userID from the prize's holders and reports whether it was
// present.
func (l *Ledger) Revoke(prize string, userID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	set := l.set(prize)
	if _, ok := set[userID]; !ok {
		return false
	}
	delete(set, userID)
	return true
}

func (l *Ledger) Holds(prize string, userID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, ok := l.set(prize)[userID]
	return ok
}

// Holders returns the user IDs holding prize in ascending order.
func (l *Ledger) Holders(prize string) []int64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	set := l.set(prize)
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (l *Ledger) Count(prize string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.set(prize))
}

// Snapshot copies every prize's holders.
func (l *Ledger) Snapshot() map[string][]int64 {
	l.mu.Lock()
	names := make([]string, 0, len(l.holders))
	for name := range l.holders {
		names = append(names, name)
	}
	l.mu.Unlock()

	out := make(map[string][]int64, len(names))
	for _, name := range names {
		out[name] = l.Holders(name)
	}
	return out
}

func (l *Ledger) set(prize string) map[int64]struct{} {
	set, ok := l.holders[prize]
	if !ok {
		panic(fmt.Sprintf("ledger: unknown prize %q", prize))
	}
	return set
}
