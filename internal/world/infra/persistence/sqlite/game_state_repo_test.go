package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Chinaskijl/stttg/internal/shared/gameconfig/resource"
	sharedsqlite "github.com/Chinaskijl/stttg/internal/shared/infrastructure/sqlite"
	"github.com/Chinaskijl/stttg/internal/shared/serverconfig"
	"github.com/Chinaskijl/stttg/internal/world/entity"
)

func TestGameStateRepository_Upsert(t *testing.T) {
	db, err := sharedsqlite.Open(serverconfig.SQLiteConfig{Path: filepath.Join(t.TempDir(), "state.db")})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	repo, err := NewGameStateRepository(db)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	ctx := context.Background()

	if st, err := repo.Load(ctx); err != nil || st != nil {
		t.Fatalf("empty slot: %v %v", st, err)
	}

	st := entity.InitialGameState()
	for v := uint64(1); v <= 2; v++ {
		st.Resources[resource.Steel] = float64(v)
		if err := repo.Save(ctx, &entity.GameStatePersistSnapshot{Version: v, State: st, SavedAt: time.Now()}); err != nil {
			t.Fatalf("save v%d: %v", v, err)
		}
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Resources[resource.Steel] != 2 || got.Resources[resource.Food] != 1000 {
		t.Fatalf("loaded %+v", got)
	}

	var rows int
	if err := db.Get(&rows, "SELECT COUNT(*) FROM game_state"); err != nil || rows != 1 {
		t.Fatalf("rows=%d err=%v", rows, err)
	}
}
