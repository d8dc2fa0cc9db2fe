package sim

import (
	"math"

	"github.com/Chinaskijl/stttg/internal/shared/gameconfig/building"
	"github.com/Chinaskijl/stttg/internal/shared/gameconfig/resource"
	"github.com/Chinaskijl/stttg/internal/world/entity"
	"github.com/Chinaskijl/stttg/modules/kit/logx"

	"go.uber.org/zap"
)

const (
	subsidyPerCapita   = 0.5
	foodPerCapita      = 0.1
	baseSatisfaction   = 0.5
	starvedPenalty     = 5.0
	highTaxPenalty     = 0.2
	lowTaxBonus        = 0.1
	satisfactionNoise  = 0.01
	influenceThreshold = 70.0
	influencePerPoint  = 0.05
)

// Ledger is the part of the settlement store a tick reads and writes.
type Ledger interface {
	PlayerSettlements() []entity.Settlement
	Update(id entity.SettlementID, p entity.Patch) (entity.Settlement, error)
	GameState() entity.GameState
	SetGameState(state entity.GameState)
}

type Outcome struct {
	SettlementID      entity.SettlementID `json:"settlementId"`
	Starved           bool                `json:"starved"`
	Tax               float64             `json:"tax"`
	SatisfactionDelta float64             `json:"satisfactionDelta"`
	Growth            float64             `json:"growth"`
}

type Report struct {
	Outcomes  []Outcome          `json:"outcomes"`
	Delta     resource.Resources `json:"delta"`
	Recruited float64            `json:"recruited"`
	Changed   bool               `json:"changed"`
}

type Engine struct {
	catalog *building.Catalog
	log     logx.Logger
}

func NewEngine(catalog *building.Catalog, l logx.Logger) *Engine {
	if l == nil {
		l = logx.Nop()
	}
	if catalog == nil {
		catalog = building.Default()
	}
	return &Engine{catalog: catalog, log: l}
}

// LacksWorkers reports whether the declared worker requirement of the
// settlement's buildings exceeds its population.
func (e *Engine) LacksWorkers(s entity.Settlement) bool {
	required := float64(e.catalog.Workers(s.Buildings))
	return required > 0 && s.Population-required < 0
}

// Tick advances the player's economy by one step.
func (e *Engine) Tick(l Ledger) Report {
	var rep Report
	settlements := l.PlayerSettlements()
	state := l.GameState()
	if len(settlements) == 0 {
		e.log.Debug("tick skipped: player owns no settlements",
			zap.Float64("military", state.Military),
		)
		return rep
	}

	var delta resource.Resources
	rep.Outcomes = make([]Outcome, 0, len(settlements))
	totalPopulation := 0.0

	for _, s := range settlements {
		out := Outcome{SettlementID: s.ID}
		totalPopulation += s.Population
		out.Starved = e.LacksWorkers(s)

		out.Tax = tax(s)
		delta.Add(resource.Gold, out.Tax)

		if s.Population > 0 {
			out.SatisfactionDelta = e.satisfaction(l, s, out.Starved, &rep)
		} else {
			e.log.Debug("settlement has no population, satisfaction unchanged", zap.Int("settlement_id", s.ID))
		}

		if s.Population > 0 && !out.Starved {
			e.produce(s, &delta, state.Resources)
		} else if len(s.Buildings) > 0 {
			e.log.Debug("settlement produced nothing",
				zap.Int("settlement_id", s.ID),
				zap.Float64("population", s.Population),
				zap.Int("workers_required", e.catalog.Workers(s.Buildings)),
			)
		}

		if s.Population > 0 && s.Satisfaction > influenceThreshold {
			delta.Add(resource.Influence, (s.Satisfaction-influenceThreshold)*influencePerPoint)
		}
		rep.Outcomes = append(rep.Outcomes, out)
	}

	delta.Add(resource.Food, -totalPopulation*foodPerCapita)
	rep.Delta = delta

	next := state
	next.Resources.AddAll(delta)
	next.Resources.Normalize()

	population := 0.0
	for i, s := range settlements {
		pop := s.Population
		if growth := e.growth(s); next.Resources[resource.Food] > 0 && s.MaxPopulation > 0 && pop < s.MaxPopulation {
			grown := math.Min(pop+growth, s.MaxPopulation)
			if grown != pop {
				if _, err := l.Update(s.ID, entity.Patch{Population: entity.Ptr(grown)}); err != nil {
					e.log.Warn("population write rejected", zap.Int("settlement_id", s.ID), zap.Error(err))
				} else {
					rep.Outcomes[i].Growth = grown - pop
					rep.Changed = true
					pop = grown
				}
			}
		}
		population += pop
	}
	next.Population = population

	if weapons := next.Resources[resource.Weapons]; weapons > 0 {
		if free := next.Population - next.Military; free > 0 {
			recruits := math.Min(1, math.Min(free, weapons))
			next.Resources.Add(resource.Weapons, -recruits)
			next.Resources.Normalize()
			next.Military += recruits
			rep.Recruited = recruits
		}
	}

	if next != state {
		rep.Changed = true
	}
	l.SetGameState(next)
	return rep
}

func tax(s entity.Settlement) float64 {
	if s.TaxRate == 0 {
		return -s.Population * subsidyPerCapita
	}
	return s.Population * float64(s.TaxRate) / 5
}

func (e *Engine) satisfaction(l Ledger, s entity.Settlement, starved bool, rep *Report) float64 {
	change := baseSatisfaction
	if starved {
		change = -starvedPenalty
	}
	switch {
	case s.TaxRate > entity.DefaultTaxRate:
		change -= float64(s.TaxRate-entity.DefaultTaxRate) * highTaxPenalty
	case s.TaxRate < entity.DefaultTaxRate:
		change += float64(entity.DefaultTaxRate-s.TaxRate) * lowTaxBonus
	}
	next := math.Max(0, math.Min(100, s.Satisfaction+change))
	applied := next - s.Satisfaction
	if math.Abs(applied) <= satisfactionNoise {
		return 0
	}
	updated, err := l.Update(s.ID, entity.Patch{Satisfaction: entity.Ptr(next)})
	if err != nil {
		e.log.Warn("satisfaction write rejected", zap.Int("settlement_id", s.ID), zap.Error(err))
		return 0
	}
	rep.Changed = true
	return updated.Satisfaction - s.Satisfaction
}

// produce adds the building yields of one settlement. Conversion buildings
// only run while the input stock, including this tick's output, covers them.
func (e *Engine) produce(s entity.Settlement, delta *resource.Resources, stock resource.Resources) {
	for _, id := range s.Buildings {
		def, ok := e.catalog.Get(id)
		if !ok || def.Production == nil {
			continue
		}
		if c := def.Consumption; c != nil {
			if stock[c.Resource]+delta[c.Resource] < c.Amount {
				continue
			}
			delta.Add(c.Resource, -c.Amount)
		}
		delta.Add(def.Production.Resource, def.Yield(s.Population))
	}
}

func (e *Engine) growth(s entity.Settlement) float64 {
	total := 0.0
	for _, id := range s.Buildings {
		if def, ok := e.catalog.Get(id); ok {
			total += def.Growth()
		}
	}
	return total
}
