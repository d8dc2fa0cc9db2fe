package territory

import (
	"container/heap"
	"math"
	"sort"
	"time"

	"github.com/Chinaskijl/stttg/internal/shared/gameconfig/resource"
	"github.com/Chinaskijl/stttg/internal/shared/utils"
	"github.com/Chinaskijl/stttg/internal/world/app"
	"github.com/Chinaskijl/stttg/internal/world/entity"
	"github.com/Chinaskijl/stttg/modules/kit/logx"

	"go.uber.org/zap"
)

const (
	capturedSatisfaction = 50.0
	annexedSatisfaction  = 75.0
	influenceCap         = 100.0
	influenceFallback    = 30.0
)

// Ledger is the store surface ownership changes go through.
type Ledger interface {
	Get(id entity.SettlementID) (entity.Settlement, error)
	PlayerSettlements() []entity.Settlement
	Update(id entity.SettlementID, p entity.Patch) (entity.Settlement, error)
	GameState() entity.GameState
	SetGameState(state entity.GameState)
}

type Config struct {
	SpeedKmh    float64
	MinTravel   time.Duration
	MaxTravel   time.Duration
	IDGenerator utils.IDGenerator
}

func DefaultConfig() Config {
	return Config{SpeedKmh: 100, MinTravel: 5 * time.Second, MaxTravel: 30 * time.Second}
}

// Service runs the capture protocol and the army transfers in flight.
type Service struct {
	ledger  Ledger
	cfg     Config
	log     logx.Logger
	pending transferQueue
	seq     int64
}

func New(ledger Ledger, cfg Config, l logx.Logger) *Service {
	if l == nil {
		l = logx.Nop()
	}
	def := DefaultConfig()
	if cfg.SpeedKmh <= 0 {
		cfg.SpeedKmh = def.SpeedKmh
	}
	if cfg.MinTravel <= 0 {
		cfg.MinTravel = def.MinTravel
	}
	if cfg.MaxTravel < cfg.MinTravel {
		cfg.MaxTravel = max(def.MaxTravel, cfg.MinTravel)
	}
	return &Service{ledger: ledger, cfg: cfg, log: l}
}

// MilitaryCost is the aggregate military a conquest of s consumes.
func MilitaryCost(s entity.Settlement) float64 {
	return math.Ceil(s.MaxPopulation / 4)
}

// InfluenceCost is the influence a peaceful annexation of s consumes.
func InfluenceCost(s entity.Settlement) float64 {
	if s.MaxPopulation <= 0 {
		return influenceFallback
	}
	return math.Min(math.Ceil(s.MaxPopulation*0.2), influenceCap)
}

// CaptureCapital claims the player's first settlement free of charge.
func (s *Service) CaptureCapital(id entity.SettlementID) (entity.Settlement, error) {
	target, err := s.ledger.Get(id)
	if err != nil {
		return entity.Settlement{}, err
	}
	if len(s.ledger.PlayerSettlements()) > 0 {
		return entity.Settlement{}, app.Invalid(app.ReasonCapitalAlreadyChosen).WithData("settlement_id", id)
	}
	if target.Owner == entity.OwnerPlayer {
		return entity.Settlement{}, app.Invalid(app.ReasonAlreadyOwned).WithData("settlement_id", id)
	}
	out, err := s.ledger.Update(id, entity.Patch{
		Owner:      entity.Ptr(entity.OwnerPlayer),
		Population: entity.Ptr(0.0),
	})
	if err != nil {
		return entity.Settlement{}, err
	}
	s.log.Info("capital chosen", zap.Int("settlement_id", id), zap.String("name", out.Name))
	return out, nil
}

func (s *Service) CaptureMilitary(id entity.SettlementID) (entity.Settlement, error) {
	target, err := s.captureTarget(id)
	if err != nil {
		return entity.Settlement{}, err
	}
	required := MilitaryCost(target)
	state := s.ledger.GameState()
	if state.Military < required {
		return entity.Settlement{}, app.Insufficient(app.ReasonCaptureMilitary, "military", required, state.Military).
			WithData("settlement_id", id)
	}
	out, err := s.ledger.Update(id, entity.Patch{
		Owner:        entity.Ptr(entity.OwnerPlayer),
		Population:   entity.Ptr(0.0),
		Satisfaction: entity.Ptr(capturedSatisfaction),
	})
	if err != nil {
		return entity.Settlement{}, err
	}
	state.Military -= required
	s.ledger.SetGameState(state)
	s.log.Info("settlement conquered",
		zap.Int("settlement_id", id),
		zap.Float64("military_spent", required),
		zap.Float64("military_left", state.Military),
	)
	return out, nil
}

func (s *Service) CaptureInfluence(id entity.SettlementID) (entity.Settlement, error) {
	target, err := s.captureTarget(id)
	if err != nil {
		return entity.Settlement{}, err
	}
	required := InfluenceCost(target)
	state := s.ledger.GameState()
	available := state.Resources[resource.Influence]
	if available < required {
		return entity.Settlement{}, app.Insufficient(app.ReasonCaptureInfluence, resource.Influence.String(), required, available).
			WithData("settlement_id", id)
	}
	out, err := s.ledger.Update(id, entity.Patch{
		Owner:        entity.Ptr(entity.OwnerPlayer),
		Military:     entity.Ptr(0.0),
		Satisfaction: entity.Ptr(annexedSatisfaction),
	})
	if err != nil {
		return entity.Settlement{}, err
	}
	state.Resources[resource.Influence] = resource.Round(available-required, 4)
	s.ledger.SetGameState(state)
	s.log.Info("settlement annexed",
		zap.Int("settlement_id", id),
		zap.Float64("influence_spent", required),
	)
	return out, nil
}

func (s *Service) captureTarget(id entity.SettlementID) (entity.Settlement, error) {
	target, err := s.ledger.Get(id)
	if err != nil {
		return entity.Settlement{}, err
	}
	if target.Owner == entity.OwnerPlayer {
		return entity.Settlement{}, app.Invalid(app.ReasonAlreadyOwned).WithData("settlement_id", id)
	}
	return target, nil
}

// Claim hands a settlement to owner with the given population. The
// opponent pays for its claims before calling it.
func (s *Service) Claim(id entity.SettlementID, owner entity.Owner, population float64) (entity.Settlement, error) {
	out, err := s.ledger.Update(id, entity.Patch{
		Owner:      entity.Ptr(owner),
		Population: entity.Ptr(population),
	})
	if err != nil {
		return entity.Settlement{}, err
	}
	s.log.Info("settlement claimed",
		zap.Int("settlement_id", id),
		zap.String("owner", string(owner)),
		zap.Float64("population", out.Population),
	)
	return out, nil
}

// Deploy moves aggregate military into the garrison of a player settlement.
func (s *Service) Deploy(id entity.SettlementID, amount float64) (entity.Settlement, error) {
	if !(amount > 0) {
		return entity.Settlement{}, app.Invalid(app.ReasonTransferAmount).WithData("amount", amount)
	}
	target, err := s.ledger.Get(id)
	if err != nil {
		return entity.Settlement{}, err
	}
	if target.Owner != entity.OwnerPlayer {
		return entity.Settlement{}, app.ErrForbidden.WithReason(app.ReasonNotOwner).WithData("settlement_id", id)
	}
	state := s.ledger.GameState()
	if state.Military < amount {
		return entity.Settlement{}, app.Insufficient(app.ReasonDeployTroops, "military", amount, state.Military)
	}
	out, err := s.ledger.Update(id, entity.Patch{Military: entity.Ptr(target.Military + amount)})
	if err != nil {
		return entity.Settlement{}, err
	}
	state.Military -= amount
	s.ledger.SetGameState(state)
	return out, nil
}

// Dispatch debits amount troops from the source garrison and puts them on
// the road. The source must belong to owner.
func (s *Service) Dispatch(from, to entity.SettlementID, amount float64, owner entity.Owner, now time.Time) (Transfer, error) {
	if !(amount > 0) {
		return Transfer{}, app.Invalid(app.ReasonTransferAmount).WithData("amount", amount)
	}
	if from == to {
		return Transfer{}, app.Invalid(app.ReasonTransferSameCity).WithData("settlement_id", from)
	}
	src, err := s.ledger.Get(from)
	if err != nil {
		return Transfer{}, err
	}
	dst, err := s.ledger.Get(to)
	if err != nil {
		return Transfer{}, err
	}
	if src.Owner != owner {
		return Transfer{}, app.ErrForbidden.WithReason(app.ReasonNotOwner).WithData("settlement_id", from)
	}
	if src.Military < amount {
		return Transfer{}, app.Insufficient(app.ReasonTransferTroops, "military", amount, src.Military).
			WithData("settlement_id", from)
	}
	if _, err := s.ledger.Update(from, entity.Patch{Military: entity.Ptr(src.Military - amount)}); err != nil {
		return Transfer{}, err
	}

	km := DistanceKm(src.Latitude, src.Longitude, dst.Latitude, dst.Longitude)
	t := &Transfer{
		ID:          s.nextID(),
		From:        endpointOf(src),
		To:          endpointOf(dst),
		Amount:      amount,
		Owner:       src.Owner,
		StartTime:   now,
		ArrivalTime: now.Add(TravelTime(km, s.cfg.SpeedKmh, s.cfg.MinTravel, s.cfg.MaxTravel)),
	}
	heap.Push(&s.pending, t)
	s.log.Info("army dispatched",
		zap.Int64("transfer_id", t.ID),
		zap.Int("from", from),
		zap.Int("to", to),
		zap.Float64("amount", amount),
		zap.Float64("distance_km", km),
		zap.Duration("duration", t.Duration()),
	)
	return *t, nil
}

func (s *Service) nextID() int64 {
	if s.cfg.IDGenerator != nil {
		return s.cfg.IDGenerator.NextID()
	}
	s.seq++
	return s.seq
}

// ResolveDue settles every transfer that has arrived by now, earliest first.
func (s *Service) ResolveDue(now time.Time) []Outcome {
	var out []Outcome
	for {
		t, ok := s.pending.popDue(now)
		if !ok {
			return out
		}
		o, err := s.resolve(*t)
		if err != nil {
			s.log.Error("army arrival failed", zap.Int64("transfer_id", t.ID), zap.Error(err))
			continue
		}
		out = append(out, o)
	}
}

func (s *Service) resolve(t Transfer) (Outcome, error) {
	dst, err := s.ledger.Get(t.To.ID)
	if err != nil {
		return Outcome{}, err
	}
	o := Outcome{Transfer: t}
	var p entity.Patch
	switch {
	case dst.Owner == t.Owner:
		o.Result = Reinforced
		p.Military = entity.Ptr(dst.Military + t.Amount)
	case t.Amount > dst.Military:
		o.Result = Captured
		p.Owner = entity.Ptr(t.Owner)
		p.Military = entity.Ptr(t.Amount - dst.Military)
		if dst.Owner == entity.OwnerNeutral {
			p.Population = entity.Ptr(0.0)
		}
		if t.Owner == entity.OwnerPlayer {
			p.Satisfaction = entity.Ptr(capturedSatisfaction)
		}
	default:
		o.Result = Failed
		p.Military = entity.Ptr(dst.Military - t.Amount)
	}
	if o.Settlement, err = s.ledger.Update(dst.ID, p); err != nil {
		return Outcome{}, err
	}
	s.log.Info("army arrived",
		zap.Int64("transfer_id", t.ID),
		zap.Int("settlement_id", dst.ID),
		zap.String("result", string(o.Result)),
		zap.Float64("garrison", o.Settlement.Military),
	)
	return o, nil
}

// Pending lists the transfers in flight ordered by arrival.
func (s *Service) Pending() []Transfer {
	out := make([]Transfer, 0, len(s.pending))
	for _, t := range s.pending {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		return transferQueue{&out[i], &out[j]}.Less(0, 1)
	})
	return out
}
