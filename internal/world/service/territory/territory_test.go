package territory

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/Chinaskijl/stttg/internal/shared/gameconfig/building"
	"github.com/Chinaskijl/stttg/internal/shared/gameconfig/region"
	"github.com/Chinaskijl/stttg/internal/shared/gameconfig/resource"
	"github.com/Chinaskijl/stttg/internal/world/app"
	"github.com/Chinaskijl/stttg/internal/world/entity"
	"github.com/Chinaskijl/stttg/internal/world/store"
	"github.com/Chinaskijl/stttg/modules/kit/logx"
)

var t0 = time.Date(2026, 5, 9, 10, 0, 0, 0, time.UTC)

func newService(t *testing.T, edit func(ss []entity.Settlement, st *entity.GameState)) (*Service, *store.Store) {
	t.Helper()
	catalog := building.Default()
	settlements := store.BuildSettlements(context.Background(), region.Default(), catalog, nil, logx.Nop())
	state := entity.InitialGameState()
	if edit != nil {
		edit(settlements, &state)
	}
	st := store.New(entity.NewWorld(settlements, state), catalog, nil, logx.Nop())
	return New(st, DefaultConfig(), logx.Nop()), st
}

func TestCaptureCapital(t *testing.T) {
	svc, st := newService(t, func(ss []entity.Settlement, _ *entity.GameState) {
		ss[1].Population = 300
	})
	got, err := svc.CaptureCapital(2)
	if err != nil {
		t.Fatalf("capital: %v", err)
	}
	if got.Owner != entity.OwnerPlayer || got.Population != 0 {
		t.Fatalf("capital=%+v", got)
	}
	if _, err := svc.CaptureCapital(3); !errors.Is(err, app.ErrInvalidArgument) || app.GetErrorReasonCode(err) != app.ReasonCapitalAlreadyChosen.Code {
		t.Fatalf("second capital: %v", err)
	}
	if s, _ := st.Get(3); s.Owner != entity.OwnerNeutral {
		t.Fatalf("second capital changed owner")
	}
	if _, err := svc.CaptureCapital(42); !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("unknown id: %v", err)
	}
}

func TestCaptureMilitary_Succeeds(t *testing.T) {
	svc, st := newService(t, func(ss []entity.Settlement, gs *entity.GameState) {
		ss[2].MaxPopulation = 1000
		ss[2].Population = 400
		gs.Military = 300
	})
	got, err := svc.CaptureMilitary(3)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if got.Owner != entity.OwnerPlayer || got.Population != 0 || got.Satisfaction != 50 {
		t.Fatalf("settlement=%+v", got)
	}
	if st.GameState().Military != 50 {
		t.Fatalf("military=%v", st.GameState().Military)
	}
	if _, err := svc.CaptureMilitary(3); !errors.Is(err, app.ErrInvalidArgument) {
		t.Fatalf("recapture of own settlement: %v", err)
	}
}

func TestCaptureMilitary_AllOrNothing(t *testing.T) {
	svc, st := newService(t, func(ss []entity.Settlement, gs *entity.GameState) {
		ss[2].MaxPopulation = 1000
		gs.Military = 249
	})
	_, err := svc.CaptureMilitary(3)
	if !errors.Is(err, app.ErrInsufficient) {
		t.Fatalf("err=%v", err)
	}
	var e *app.Error
	errors.As(err, &e)
	if req, _ := e.DataValue("required"); req != 250.0 {
		t.Fatalf("required=%v", req)
	}
	s, _ := st.Get(3)
	if s.Owner != entity.OwnerNeutral || st.GameState().Military != 249 {
		t.Fatalf("partial capture: owner=%s military=%v", s.Owner, st.GameState().Military)
	}
}

func TestCaptureInfluence(t *testing.T) {
	svc, st := newService(t, func(ss []entity.Settlement, gs *entity.GameState) {
		ss[0].Owner = entity.OwnerEnemy
		ss[0].Military = 40
		gs.Resources[resource.Influence] = 120
	})
	got, err := svc.CaptureInfluence(1)
	if err != nil {
		t.Fatalf("annex: %v", err)
	}
	if got.Owner != entity.OwnerPlayer || got.Military != 0 || got.Satisfaction != 75 {
		t.Fatalf("settlement=%+v", got)
	}
	if left := st.GameState().Resources[resource.Influence]; left != 20 {
		t.Fatalf("influence left=%v", left)
	}
	if _, err := svc.CaptureInfluence(2); !errors.Is(err, app.ErrInsufficient) {
		t.Fatalf("annex without influence: %v", err)
	}
}

func TestCosts(t *testing.T) {
	cases := []struct {
		max       float64
		military  float64
		influence float64
	}{
		{max: 1000, military: 250, influence: 100},
		{max: 101, military: 26, influence: 21},
		{max: 0, military: 0, influence: 30},
	}
	for _, tc := range cases {
		s := entity.Settlement{MaxPopulation: tc.max}
		if got := MilitaryCost(s); got != tc.military {
			t.Fatalf("max=%v military=%v", tc.max, got)
		}
		if got := InfluenceCost(s); got != tc.influence {
			t.Fatalf("max=%v influence=%v", tc.max, got)
		}
	}
}

func TestDeploy(t *testing.T) {
	svc, st := newService(t, func(ss []entity.Settlement, gs *entity.GameState) {
		ss[0].Owner = entity.OwnerPlayer
		gs.Military = 10
	})
	if _, err := svc.Deploy(1, 11); !errors.Is(err, app.ErrInsufficient) {
		t.Fatalf("over-deploy: %v", err)
	}
	if _, err := svc.Deploy(2, 1); !errors.Is(err, app.ErrForbidden) {
		t.Fatalf("deploy to neutral: %v", err)
	}
	got, err := svc.Deploy(1, 4)
	if err != nil {
		t.Fatalf("deploy: %v", err)
	}
	if got.Military != 4 || st.GameState().Military != 6 {
		t.Fatalf("garrison=%v military=%v", got.Military, st.GameState().Military)
	}
}

func TestTravelTime(t *testing.T) {
	lo, hi := 5*time.Second, 30*time.Second
	if got := TravelTime(0.1, 100, lo, hi); got != lo {
		t.Fatalf("short trip=%v", got)
	}
	if got := TravelTime(0.5, 100, lo, hi); got != 18*time.Second {
		t.Fatalf("mid trip=%v", got)
	}
	if got := TravelTime(600, 100, lo, hi); got != hi {
		t.Fatalf("long trip=%v", got)
	}
	km := DistanceKm(55.7558, 37.6173, 59.9343, 30.3351)
	if math.Abs(km-634) > 5 {
		t.Fatalf("moscow-petersburg=%v", km)
	}
}

func TestDispatch_Validation(t *testing.T) {
	svc, st := newService(t, func(ss []entity.Settlement, _ *entity.GameState) {
		ss[0].Owner = entity.OwnerPlayer
		ss[0].Military = 10
	})
	cases := []struct {
		name     string
		from, to int
		amount   float64
		want     error
	}{
		{name: "zero", from: 1, to: 2, amount: 0, want: app.ErrInvalidArgument},
		{name: "same", from: 1, to: 1, amount: 1, want: app.ErrInvalidArgument},
		{name: "missing source", from: 9, to: 2, amount: 1, want: app.ErrNotFound},
		{name: "missing target", from: 1, to: 9, amount: 1, want: app.ErrNotFound},
		{name: "not owner", from: 2, to: 1, amount: 1, want: app.ErrForbidden},
		{name: "too many", from: 1, to: 2, amount: 11, want: app.ErrInsufficient},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Dispatch(tc.from, tc.to, tc.amount, entity.OwnerPlayer, t0); !errors.Is(err, tc.want) {
				t.Fatalf("err=%v want %v", err, tc.want)
			}
		})
	}
	if s, _ := st.Get(1); s.Military != 10 || len(svc.Pending()) != 0 {
		t.Fatalf("rejected dispatch changed state")
	}
}

func TestDispatch_ResolveOutcomes(t *testing.T) {
	svc, st := newService(t, func(ss []entity.Settlement, _ *entity.GameState) {
		ss[0].Owner = entity.OwnerPlayer
		ss[0].Military = 100
		ss[1].Owner = entity.OwnerPlayer
		ss[2].Military = 20
		ss[2].Population = 500
		ss[3].Owner = entity.OwnerEnemy
		ss[3].Military = 50
		ss[3].Population = 700
	})

	reinforce, err := svc.Dispatch(1, 2, 10, entity.OwnerPlayer, t0)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if s, _ := st.Get(1); s.Military != 90 {
		t.Fatalf("source not debited: %v", s.Military)
	}
	if reinforce.Duration() != 30*time.Second || reinforce.From.ID != 1 || reinforce.To.ID != 2 {
		t.Fatalf("transfer=%+v", reinforce)
	}
	svc.Dispatch(1, 3, 30, entity.OwnerPlayer, t0.Add(time.Second))
	svc.Dispatch(1, 4, 40, entity.OwnerPlayer, t0.Add(2*time.Second))

	if out := svc.ResolveDue(t0.Add(29 * time.Second)); len(out) != 0 {
		t.Fatalf("resolved early: %+v", out)
	}
	if len(svc.Pending()) != 3 || svc.Pending()[0].ID != reinforce.ID {
		t.Fatalf("pending=%+v", svc.Pending())
	}

	out := svc.ResolveDue(t0.Add(time.Minute))
	if len(out) != 3 {
		t.Fatalf("outcomes=%+v", out)
	}
	if out[0].Result != Reinforced || out[0].Settlement.Military != 10 {
		t.Fatalf("reinforce=%+v", out[0])
	}
	if out[1].Result != Captured {
		t.Fatalf("capture=%+v", out[1])
	}
	neutral, _ := st.Get(3)
	if neutral.Owner != entity.OwnerPlayer || neutral.Military != 10 || neutral.Population != 0 || neutral.Satisfaction != 50 {
		t.Fatalf("captured neutral=%+v", neutral)
	}
	if out[2].Result != Failed {
		t.Fatalf("attack=%+v", out[2])
	}
	enemy, _ := st.Get(4)
	if enemy.Owner != entity.OwnerEnemy || enemy.Military != 10 || enemy.Population != 700 {
		t.Fatalf("defender=%+v", enemy)
	}
	if len(svc.Pending()) != 0 || len(svc.ResolveDue(t0.Add(time.Hour))) != 0 {
		t.Fatalf("transfer resolved twice")
	}
}

func TestResolve_CaptureKeepsPopulationOfOwnedTarget(t *testing.T) {
	svc, st := newService(t, func(ss []entity.Settlement, _ *entity.GameState) {
		ss[0].Owner = entity.OwnerEnemy
		ss[0].Military = 100
		ss[1].Owner = entity.OwnerPlayer
		ss[1].Military = 5
		ss[1].Population = 300
		ss[1].Satisfaction = 80
	})
	if _, err := svc.Dispatch(1, 2, 60, entity.OwnerEnemy, t0); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	out := svc.ResolveDue(t0.Add(time.Minute))
	if len(out) != 1 || out[0].Result != Captured {
		t.Fatalf("outcomes=%+v", out)
	}
	s, _ := st.Get(2)
	if s.Owner != entity.OwnerEnemy || s.Military != 55 || s.Population != 300 || s.Satisfaction != 80 {
		t.Fatalf("settlement=%+v", s)
	}
}
