package entity

import (
	"sort"
	"time"
)

// World is the mutable aggregate behind the store: every settlement plus the
// game state. The dirty flag covers the game state only; settlements are
// rebuilt from seeds on every start.
type World struct {
	settlements map[SettlementID]*Settlement
	order       []SettlementID
	state       GameState
	dirty       bool
}

func NewWorld(settlements []Settlement, state GameState) *World {
	w := &World{
		settlements: make(map[SettlementID]*Settlement, len(settlements)),
		state:       state,
	}
	for i := range settlements {
		s := settlements[i].Clone()
		w.settlements[s.ID] = &s
		w.order = append(w.order, s.ID)
	}
	sort.Ints(w.order)
	return w
}

// Settlement returns the live instance.
func (w *World) Settlement(id SettlementID) (*Settlement, bool) {
	s, ok := w.settlements[id]
	return s, ok
}

// Settlements returns the live instances ordered by id.
func (w *World) Settlements() []*Settlement {
	out := make([]*Settlement, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.settlements[id])
	}
	return out
}

func (w *World) State() GameState {
	return w.state
}

func (w *World) SetState(s GameState) {
	if w.state == s {
		return
	}
	w.state = s
	w.dirty = true
}

func (w *World) MarkDirty() {
	w.dirty = true
}

func (w *World) Dirty() bool {
	return w.dirty
}

func (w *World) ClearDirty() {
	w.dirty = false
}

func (w *World) BuildPersistSnapshot(version uint64) (*GameStatePersistSnapshot, bool) {
	if w == nil || !w.Dirty() {
		return nil, false
	}
	return &GameStatePersistSnapshot{
		Version: version,
		State:   w.state,
		SavedAt: time.Now(),
	}, true
}
