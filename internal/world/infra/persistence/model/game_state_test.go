package model

import (
	"testing"
	"time"

	"github.com/Chinaskijl/stttg/internal/shared/gameconfig/resource"
	"github.com/Chinaskijl/stttg/internal/world/entity"
)

func TestRowToState_RejectsUnknownResource(t *testing.T) {
	if _, err := RowToState(GameStateRow{Resources: `{"gold":1,"mana":2}`}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestSnapshotToRow_CarriesState(t *testing.T) {
	st := entity.InitialGameState()
	st.Military = 7
	row, err := SnapshotToRow(&entity.GameStatePersistSnapshot{Version: 3, State: st, SavedAt: time.Now()})
	if err != nil {
		t.Fatalf("to row: %v", err)
	}
	if row.ID != SlotID || row.Version != 3 {
		t.Fatalf("row=%+v", row)
	}
	back, err := RowToState(row)
	if err != nil {
		t.Fatalf("from row: %v", err)
	}
	if back.Military != 7 || back.Resources[resource.Food] != 1000 {
		t.Fatalf("state=%+v", back)
	}
}
