package entity

import (
	"testing"

	"github.com/Chinaskijl/stttg/internal/shared/gameconfig/resource"
)

func TestWorld_DirtyOnlyOnChange(t *testing.T) {
	w := NewWorld(nil, InitialGameState())
	if w.Dirty() {
		t.Fatalf("fresh world should be clean")
	}
	w.SetState(InitialGameState())
	if w.Dirty() {
		t.Fatalf("identical state should not mark dirty")
	}

	s := InitialGameState()
	s.Resources[resource.Gold] = 1
	w.SetState(s)
	snap, ok := w.BuildPersistSnapshot(4)
	if !ok || snap.Version != 4 || snap.State.Resources[resource.Gold] != 1 {
		t.Fatalf("snapshot=%+v ok=%v", snap, ok)
	}
	w.ClearDirty()
	if _, ok := w.BuildPersistSnapshot(5); ok {
		t.Fatalf("clean world should not snapshot")
	}
}

func TestSettlement_CloneIsDeep(t *testing.T) {
	timer := 3
	s := Settlement{
		ID:             1,
		Buildings:      []string{"farm"},
		BuildingLimits: map[string]int{"farm": 5},
		ProtestTimer:   &timer,
	}
	c := s.Clone()
	c.Buildings[0] = "house"
	c.BuildingLimits["farm"] = 1
	*c.ProtestTimer = 9

	if s.Buildings[0] != "farm" || s.BuildingLimits["farm"] != 5 || *s.ProtestTimer != 3 {
		t.Fatalf("clone shares memory with original: %+v", s)
	}
}

func TestSettlement_Clamp(t *testing.T) {
	s := Settlement{Population: 120, MaxPopulation: 100, Satisfaction: -4, TaxRate: 14, Military: -1}
	s.Clamp()
	if s.Population != 100 || s.Satisfaction != 0 || s.TaxRate != 10 || s.Military != 0 {
		t.Fatalf("clamp=%+v", s)
	}
}

func TestParseOwner(t *testing.T) {
	if o, err := ParseOwner("AI"); err != nil || o != OwnerEnemy {
		t.Fatalf("ai alias: %v %v", o, err)
	}
	if _, err := ParseOwner("pirates"); err == nil {
		t.Fatalf("expected error")
	}
}
