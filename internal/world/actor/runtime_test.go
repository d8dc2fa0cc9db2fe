package actor

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Chinaskijl/stttg/internal/shared/gameconfig/building"
	"github.com/Chinaskijl/stttg/internal/shared/gameconfig/region"
	"github.com/Chinaskijl/stttg/internal/shared/gameconfig/resource"
	"github.com/Chinaskijl/stttg/internal/world/actors"
	"github.com/Chinaskijl/stttg/internal/world/app"
	"github.com/Chinaskijl/stttg/internal/world/entity"
	"github.com/Chinaskijl/stttg/internal/world/infra/snapshot"
	"github.com/Chinaskijl/stttg/internal/world/service/market"
	"github.com/Chinaskijl/stttg/internal/world/service/opponent"
	"github.com/Chinaskijl/stttg/internal/world/service/settlement"
	"github.com/Chinaskijl/stttg/internal/world/service/sim"
	"github.com/Chinaskijl/stttg/internal/world/service/territory"
	"github.com/Chinaskijl/stttg/internal/world/store"
	"github.com/Chinaskijl/stttg/modules/kit/logx"
)

var clock = time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)

type recorder struct {
	mu     sync.Mutex
	events []any
}

func (r *recorder) Broadcast(v any) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, v)
	return true
}

func (r *recorder) count(kind string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		var t string
		switch ev := e.(type) {
		case actors.CitiesUpdate:
			t = ev.Type
		case actors.GameUpdate:
			t = ev.Type
		case actors.TransferStart:
			t = ev.Type
		case actors.TransferComplete:
			t = ev.Type
		}
		if t == kind {
			n++
		}
	}
	return n
}

type health struct {
	mu      sync.Mutex
	serving bool
}

func (h *health) SetServing(serving bool) {
	h.mu.Lock()
	h.serving = serving
	h.mu.Unlock()
}

func (h *health) get() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.serving
}

func newRuntime(t *testing.T) (*Runtime, *recorder, *health, string) {
	t.Helper()
	ctx := context.Background()
	catalog := building.Default()
	settlements := store.BuildSettlements(ctx, region.Default(), catalog, nil, logx.Nop())
	st := store.New(entity.NewWorld(settlements, entity.InitialGameState()), catalog, nil, logx.Nop())
	terr := territory.New(st, territory.DefaultConfig(), logx.Nop())
	w := actors.World{
		Store:      st,
		Engine:     sim.NewEngine(catalog, logx.Nop()),
		Settlement: settlement.New(st, catalog, logx.Nop()),
		Market: market.New(st, logx.Nop(),
			market.WithClock(func() time.Time { return clock }),
			market.WithRand(rand.New(rand.NewSource(3))),
		),
		Territory: terr,
		Opponent:  opponent.New(st, catalog, terr, logx.Nop()),
	}
	feed, h := &recorder{}, &health{}
	dir := t.TempDir()
	rt := NewRuntime(w, actors.Options{
		SnapshotDir: dir,
		Now:         func() time.Time { return clock },
		Feed:        feed,
		Health:      h,
	}, time.Second)
	return rt, feed, h, dir
}

func TestRuntime_CaptureBuildAndTax(t *testing.T) {
	rt, feed, h, _ := newRuntime(t)
	defer rt.Shutdown()
	ctx := context.Background()

	capital, err := rt.Capture(ctx, 1, true, "")
	if err != nil {
		t.Fatalf("capital: %v", err)
	}
	if capital.Settlement.Owner != entity.OwnerPlayer {
		t.Fatalf("capital=%+v", capital.Settlement)
	}
	if !h.get() {
		t.Fatalf("health not serving once online")
	}

	built, err := rt.Build(ctx, 1, "house")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if built.GameState.Resources[resource.Wood] != 490 || len(built.Settlement.Buildings) != 1 {
		t.Fatalf("build result=%+v", built)
	}
	if _, err := rt.Build(ctx, 2, "house"); !errors.Is(err, app.ErrForbidden) {
		t.Fatalf("build on neutral: %v", err)
	}
	if _, err := rt.SetTax(ctx, 1, 11); !errors.Is(err, app.ErrInvalidArgument) {
		t.Fatalf("tax 11: %v", err)
	}
	if _, err := rt.Capture(ctx, 2, false, "bribe"); app.GetErrorReasonCode(err) != app.ReasonCaptureMethod.Code {
		t.Fatalf("unknown method: %v", err)
	}

	cities, err := rt.Settlements(ctx)
	if err != nil || len(cities) != 5 || len(cities[0].Buildings) != 1 {
		t.Fatalf("cities=%v err=%v", cities, err)
	}
	if feed.count(actors.EventCitiesUpdate) < 2 || feed.count(actors.EventGameUpdate) < 2 {
		t.Fatalf("feed missed state broadcasts: %+v", feed.events)
	}
}

func TestRuntime_MarketRoundTrip(t *testing.T) {
	rt, _, _, _ := newRuntime(t)
	defer rt.Shutdown()
	ctx := context.Background()

	listings, err := rt.Listings(ctx)
	if err != nil || len(listings) != 12 {
		t.Fatalf("seeded listings=%d err=%v", len(listings), err)
	}
	placed, err := rt.PlaceListing(ctx, market.CreateListing{Resource: resource.Wood, Amount: 10, PricePerUnit: 3, Type: market.Sell})
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if placed.GameState.Resources[resource.Wood] != 490 {
		t.Fatalf("escrow=%v", placed.GameState.Resources[resource.Wood])
	}
	if _, err := rt.Purchase(ctx, placed.Listing.ID); !errors.Is(err, app.ErrForbidden) {
		t.Fatalf("buy own listing: %v", err)
	}
	cancelled, err := rt.CancelListing(ctx, placed.Listing.ID)
	if err != nil || cancelled.GameState.Resources[resource.Wood] != 500 {
		t.Fatalf("cancel=%+v err=%v", cancelled, err)
	}
	if history, err := rt.PriceHistory(ctx, resource.Wood, 0); err != nil || len(history) == 0 {
		t.Fatalf("history=%v err=%v", history, err)
	}
}

func TestRuntime_DeployAndSendArmy(t *testing.T) {
	rt, feed, _, _ := newRuntime(t)
	defer rt.Shutdown()
	ctx := context.Background()

	if _, err := rt.Capture(ctx, 1, true, ""); err != nil {
		t.Fatalf("capital: %v", err)
	}
	state := entity.InitialGameState()
	state.Military = 100
	if _, err := rt.ReplaceGameState(ctx, state); err != nil {
		t.Fatalf("replace: %v", err)
	}
	deployed, err := rt.Deploy(ctx, 1, 50)
	if err != nil || deployed.Settlement.Military != 50 || deployed.GameState.Military != 50 {
		t.Fatalf("deploy=%+v err=%v", deployed, err)
	}

	sent, err := rt.SendArmy(ctx, 1, 2, 20)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if sent.TravelTime != 30000 || sent.Transfer.Amount != 20 {
		t.Fatalf("transfer=%+v", sent)
	}
	pending, err := rt.Transfers(ctx)
	if err != nil || len(pending) != 1 {
		t.Fatalf("pending=%v err=%v", pending, err)
	}
	if feed.count(actors.EventTransferStart) != 1 {
		t.Fatalf("transfer start not broadcast")
	}
	if _, err := rt.SendArmy(ctx, 1, 2, 31); !errors.Is(err, app.ErrInsufficient) {
		t.Fatalf("overdraw: %v", err)
	}
}

func TestRuntime_SnapshotAndShutdown(t *testing.T) {
	rt, _, h, dir := newRuntime(t)
	ctx := context.Background()

	res, err := rt.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	var body actors.Archive
	if _, err := snapshot.Read(res.Path, &body); err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(body.Settlements) != 5 || len(body.Market.Listings) != 12 {
		t.Fatalf("archive settlements=%d listings=%d", len(body.Settlements), len(body.Market.Listings))
	}

	if err := os.Remove(res.Path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	rt.Shutdown()
	if h.get() {
		t.Fatalf("still serving after shutdown")
	}
	files, _ := filepath.Glob(filepath.Join(dir, "world-*.json.zst"))
	if len(files) != 1 {
		t.Fatalf("shutdown archives=%v", files)
	}
}

func TestRuntime_Timeout(t *testing.T) {
	rt := &Runtime{timeout: time.Second}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if d := rt.timeoutFromContext(ctx); d > 10*time.Millisecond {
		t.Fatalf("timeout=%v", d)
	}
	if _, err := rt.Settlements(context.Background()); CodeFromError(err) != 500 {
		t.Fatalf("uninitialised runtime: %v", err)
	}
}
