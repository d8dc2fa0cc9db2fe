package dc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Chinaskijl/stttg/internal/shared/gameconfig/resource"
	"github.com/Chinaskijl/stttg/internal/world/entity"
	"github.com/Chinaskijl/stttg/internal/world/infra/persistence/memory"
	"github.com/Chinaskijl/stttg/modules/kit/logx"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met in time")
}

func TestGameStateDC_FlushWritesOnlyWhenDirty(t *testing.T) {
	repo := memory.NewGameStateRepository()
	w := entity.NewWorld(nil, entity.InitialGameState())
	d := NewGameStateDC(repo, w, time.Second, logx.Nop())

	_ = d.Flush(context.Background())
	time.Sleep(20 * time.Millisecond)
	if repo.Saves() != 0 {
		t.Fatalf("clean world should not be saved")
	}

	st := w.State()
	st.Resources[resource.Gold] = 42
	w.SetState(st)
	_ = d.Flush(context.Background())
	waitFor(t, func() bool { return repo.Saves() == 1 })

	got, _ := repo.Load(context.Background())
	if got.Resources[resource.Gold] != 42 {
		t.Fatalf("saved gold=%v", got.Resources[resource.Gold])
	}
	if w.Dirty() {
		t.Fatalf("flush should clear the dirty flag")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := d.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestGameStateDC_RetriesAfterFailure(t *testing.T) {
	repo := memory.NewGameStateRepository()
	repo.FailWith(errors.New("disk full"))
	w := entity.NewWorld(nil, entity.InitialGameState())
	d := NewGameStateDC(repo, w, time.Second, logx.Nop())

	w.MarkDirty()
	_ = d.Flush(context.Background())
	waitFor(t, func() bool { return d.Failures() >= 1 })

	repo.FailWith(nil)
	waitFor(t, func() bool { return repo.Saves() == 1 })
	if repo.Version() != 1 {
		t.Fatalf("version=%d", repo.Version())
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = d.Close(ctx)
}

func TestGameStateDC_CloseFlushesPending(t *testing.T) {
	repo := memory.NewGameStateRepository()
	w := entity.NewWorld(nil, entity.InitialGameState())
	d := NewGameStateDC(repo, w, time.Hour, logx.Nop())

	st := w.State()
	st.Military = 9
	w.SetState(st)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := d.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
	got, _ := repo.Load(context.Background())
	if got == nil || got.Military != 9 {
		t.Fatalf("close did not flush: %+v", got)
	}
}
