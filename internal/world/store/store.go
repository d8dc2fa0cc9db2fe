package store

import (
	"context"
	"sort"

	"github.com/Chinaskijl/stttg/internal/shared/gameconfig/building"
	"github.com/Chinaskijl/stttg/internal/shared/gameconfig/region"
	"github.com/Chinaskijl/stttg/internal/world/app"
	"github.com/Chinaskijl/stttg/internal/world/app/port"
	"github.com/Chinaskijl/stttg/internal/world/entity"
	"github.com/Chinaskijl/stttg/modules/kit/logx"

	"go.uber.org/zap"
)

// Store is the single source of truth for settlements and the game state.
// It is not safe for concurrent use; the world actor owns it.
type Store struct {
	world   *entity.World
	catalog *building.Catalog
	repo    port.GameStateRepository
	log     logx.Logger
}

func New(world *entity.World, catalog *building.Catalog, repo port.GameStateRepository, l logx.Logger) *Store {
	if l == nil {
		l = logx.Nop()
	}
	if catalog == nil {
		catalog = building.Default()
	}
	return &Store{world: world, catalog: catalog, repo: repo, log: l}
}

// BuildSettlements turns seeds into neutral settlements: population 0,
// satisfaction 50, tax 5, every catalog building available.
func BuildSettlements(ctx context.Context, seeds []region.Seed, catalog *building.Catalog, boundaries region.BoundaryProvider, l logx.Logger) []entity.Settlement {
	if l == nil {
		l = logx.Nop()
	}
	out := make([]entity.Settlement, 0, len(seeds))
	for _, sd := range seeds {
		s := entity.Settlement{
			ID:                 sd.ID,
			Name:               sd.Name,
			Latitude:           sd.Latitude,
			Longitude:          sd.Longitude,
			MaxPopulation:      sd.MaxPopulation,
			Owner:              entity.OwnerNeutral,
			Buildings:          []string{},
			AvailableBuildings: catalog.IDs(),
			BuildingLimits:     catalog.Limits(),
			Satisfaction:       50,
			TaxRate:            entity.DefaultTaxRate,
			Resources:          sd.Resources,
		}
		if boundaries != nil {
			ring, err := boundaries.Boundary(ctx, sd)
			if err != nil {
				l.Warn("settlement boundary unavailable", zap.Int("settlement_id", sd.ID), zap.Error(err))
			} else {
				s.Boundaries = ring
			}
		}
		out = append(out, s)
	}
	return out
}

func (s *Store) World() *entity.World {
	return s.world
}

func (s *Store) Catalog() *building.Catalog {
	return s.catalog
}

// List returns copies ordered by id.
func (s *Store) List() []entity.Settlement {
	live := s.world.Settlements()
	out := make([]entity.Settlement, 0, len(live))
	for _, st := range live {
		out = append(out, st.Clone())
	}
	return out
}

func (s *Store) Get(id entity.SettlementID) (entity.Settlement, error) {
	st, ok := s.world.Settlement(id)
	if !ok {
		return entity.Settlement{}, app.ErrNotFound.WithReason(app.ReasonSettlementNotFound).WithData("settlement_id", id)
	}
	return st.Clone(), nil
}

func (s *Store) OwnedBy(owner entity.Owner) []entity.Settlement {
	out := make([]entity.Settlement, 0)
	for _, st := range s.world.Settlements() {
		if st.Owner == owner {
			out = append(out, st.Clone())
		}
	}
	return out
}

func (s *Store) PlayerSettlements() []entity.Settlement {
	return s.OwnedBy(entity.OwnerPlayer)
}

// Update merges p into the settlement and returns the result. An update
// that would break a building limit is rejected as a whole.
func (s *Store) Update(id entity.SettlementID, p entity.Patch) (entity.Settlement, error) {
	live, ok := s.world.Settlement(id)
	if !ok {
		return entity.Settlement{}, app.ErrNotFound.WithReason(app.ReasonSettlementNotFound).WithData("settlement_id", id)
	}

	next := live.Clone()
	prevSatisfaction := live.Satisfaction
	p.Apply(&next)

	if over, count, limit, bad := s.firstLimitViolation(&next); bad {
		s.log.Warn("settlement update rejected: building limit",
			zap.Int("settlement_id", id),
			zap.String("building", over),
			zap.Int("count", count),
			zap.Int("limit", limit),
		)
		return live.Clone(), app.ErrLimitExceeded.
			WithReason(app.ReasonBuildingLimit).
			WithData("building", over).
			WithData("count", count).
			WithData("limit", limit)
	}

	if p.Satisfaction != nil && prevSatisfaction == 0 && *p.Satisfaction > 45 && *p.Satisfaction < 50 {
		s.log.Warn("suspicious satisfaction change suppressed",
			zap.Int("settlement_id", id),
			zap.Float64("requested", *p.Satisfaction),
		)
		next.Satisfaction = 0
	}

	next.Clamp()
	*live = next
	return next.Clone(), nil
}

func (s *Store) limitFor(st *entity.Settlement, id string) int {
	if st.BuildingLimits != nil {
		if l, ok := st.BuildingLimits[id]; ok {
			return l
		}
	}
	return s.catalog.MaxCount(id)
}

func (s *Store) firstLimitViolation(st *entity.Settlement) (string, int, int, bool) {
	counts := st.BuildingCounts()
	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if limit := s.limitFor(st, id); counts[id] > limit {
			return id, counts[id], limit, true
		}
	}
	return "", 0, 0, false
}

// LimitFor is the effective cap of building id in settlement st.
func (s *Store) LimitFor(st entity.Settlement, id string) int {
	return s.limitFor(&st, id)
}

func (s *Store) GameState() entity.GameState {
	return s.world.State()
}

func (s *Store) SetGameState(state entity.GameState) {
	s.world.SetState(state)
}

// Load replaces the in-memory state with the stored slot. A read failure
// keeps the last known good state.
func (s *Store) Load(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	state, err := s.repo.Load(ctx)
	if err != nil {
		s.log.Error("game state load failed, keeping cached state", zap.Error(err))
		return app.ErrPersistence.WithReason(app.ReasonRepoLoadFail).WithCause(err)
	}
	if state == nil {
		return nil
	}
	s.world.SetState(*state)
	s.world.ClearDirty()
	return nil
}

// Reset installs the initial game state and writes it to the slot at once.
func (s *Store) Reset(ctx context.Context) error {
	s.world.SetState(entity.InitialGameState())
	s.world.MarkDirty()
	if s.repo == nil {
		return nil
	}
	snap, _ := s.world.BuildPersistSnapshot(0)
	if err := s.repo.Save(ctx, snap); err != nil {
		s.log.Error("game state reset write failed", zap.Error(err))
		return app.ErrPersistence.WithReason(app.ReasonRepoSaveFail).WithCause(err)
	}
	s.world.ClearDirty()
	return nil
}
