package opponent

import (
	"math"
	"time"

	"github.com/Chinaskijl/stttg/internal/shared/gameconfig/building"
	"github.com/Chinaskijl/stttg/internal/shared/gameconfig/resource"
	"github.com/Chinaskijl/stttg/internal/world/entity"
	"github.com/Chinaskijl/stttg/internal/world/service/territory"
	"github.com/Chinaskijl/stttg/modules/kit/logx"

	"go.uber.org/zap"
)

const (
	annexThreshold  = 50.0
	attackThreshold = 200.0
	attackShare     = 0.7
)

type Ledger interface {
	OwnedBy(owner entity.Owner) []entity.Settlement
	Update(id entity.SettlementID, p entity.Patch) (entity.Settlement, error)
	LimitFor(st entity.Settlement, id string) int
}

// Territory is the capture protocol the opponent acts through.
type Territory interface {
	Claim(id entity.SettlementID, owner entity.Owner, population float64) (entity.Settlement, error)
	Dispatch(from, to entity.SettlementID, amount float64, owner entity.Owner, now time.Time) (territory.Transfer, error)
}

type Build struct {
	SettlementID entity.SettlementID `json:"settlementId"`
	Building     string              `json:"building"`
}

type Annexation struct {
	SettlementID entity.SettlementID `json:"settlementId"`
	Method       string              `json:"method"`
	Cost         float64             `json:"cost"`
}

// Report describes one decision cycle.
type Report struct {
	Settlements int                  `json:"settlements"`
	Population  float64              `json:"population"`
	Military    float64              `json:"military"`
	Budget      resource.Resources   `json:"budget"`
	Drilled     float64              `json:"drilled"`
	Built       []Build              `json:"built"`
	Annexed     *Annexation          `json:"annexed,omitempty"`
	Attacks     []territory.Transfer `json:"attacks"`
}

func (r Report) Changed() bool {
	return r.Drilled > 0 || len(r.Built) > 0 || r.Annexed != nil || len(r.Attacks) > 0
}

type Opponent struct {
	ledger    Ledger
	catalog   *building.Catalog
	territory Territory
	log       logx.Logger
}

func New(ledger Ledger, catalog *building.Catalog, t Territory, l logx.Logger) *Opponent {
	if l == nil {
		l = logx.Nop()
	}
	if catalog == nil {
		catalog = building.Default()
	}
	return &Opponent{ledger: ledger, catalog: catalog, territory: t, log: l}
}

// Decide runs one cycle: drill, build, annex, attack.
func (o *Opponent) Decide(now time.Time) Report {
	var rep Report
	own := o.ledger.OwnedBy(entity.OwnerEnemy)
	if len(own) == 0 {
		o.log.Debug("opponent idle: no settlements")
		return rep
	}
	rep.Drilled = o.drill(own)
	own = o.ledger.OwnedBy(entity.OwnerEnemy)

	players := o.ledger.OwnedBy(entity.OwnerPlayer)
	threatened := len(players) > 0
	rep.Budget, rep.Population, rep.Military = o.budget(own)
	rep.Settlements = len(own)
	o.log.Info("opponent status",
		zap.Int("settlements", len(own)),
		zap.Float64("population", rep.Population),
		zap.Float64("military", rep.Military),
		zap.Any("budget", rep.Budget.ToMap(true)),
	)

	for _, s := range own {
		id, ok := o.choose(s, rep.Budget, threatened)
		if !ok {
			continue
		}
		def, _ := o.catalog.Get(id)
		buildings := append(append([]string(nil), s.Buildings...), id)
		if _, err := o.ledger.Update(s.ID, entity.Patch{Buildings: &buildings}); err != nil {
			o.log.Warn("opponent build rejected", zap.Int("settlement_id", s.ID), zap.String("building", id), zap.Error(err))
			continue
		}
		rep.Budget.SubAll(def.Cost)
		rep.Built = append(rep.Built, Build{SettlementID: s.ID, Building: id})
	}

	if neutrals := o.ledger.OwnedBy(entity.OwnerNeutral); rep.Military > annexThreshold && len(neutrals) > 0 {
		rep.Annexed = o.annex(neutrals[0], own, &rep)
	}

	if rep.Military > attackThreshold && threatened {
		rep.Attacks = o.attack(players[0], now, &rep)
	}
	return rep
}

// drill adds the barracks output of every settlement to its garrison.
func (o *Opponent) drill(own []entity.Settlement) float64 {
	total := 0.0
	for _, s := range own {
		gain := 0.0
		for _, id := range s.Buildings {
			if def, ok := o.catalog.Get(id); ok && def.Military != nil {
				gain += float64(def.Military.Production)
			}
		}
		if gain == 0 {
			continue
		}
		if _, err := o.ledger.Update(s.ID, entity.Patch{Military: entity.Ptr(s.Military + gain)}); err != nil {
			o.log.Warn("opponent drill rejected", zap.Int("settlement_id", s.ID), zap.Error(err))
			continue
		}
		total += gain
	}
	return total
}

// budget sums base yields and the flat output of every built building.
func (o *Opponent) budget(own []entity.Settlement) (resource.Resources, float64, float64) {
	var rs resource.Resources
	pop, mil := 0.0, 0.0
	for _, s := range own {
		pop += s.Population
		mil += s.Military
		rs.AddAll(s.Resources)
		for _, id := range s.Buildings {
			if def, ok := o.catalog.Get(id); ok && def.Production != nil {
				rs.Add(def.Production.Resource, def.Production.Amount)
			}
		}
	}
	return rs, pop, mil
}

func (o *Opponent) choose(s entity.Settlement, budget resource.Resources, threatened bool) (string, bool) {
	counts := s.BuildingCounts()
	candidates := []struct {
		id   string
		want bool
	}{
		{"farm", counts["farm"] == 0},
		{"logging_camp", counts["logging_camp"] == 0},
		{"house", counts["house"] == 0},
		{"barracks", threatened && counts["barracks"] == 0},
	}
	for _, c := range candidates {
		if c.want && o.buildable(s, c.id, counts, budget) {
			return c.id, true
		}
	}

	// one extra building at most, first match wins
	switch {
	case budget[resource.Food] < 100 && counts["farm"] < 3 && o.buildable(s, "farm", counts, budget):
		return "farm", true
	case budget[resource.Wood] < 100 && counts["logging_camp"] < 3 && o.buildable(s, "logging_camp", counts, budget):
		return "logging_camp", true
	case threatened && counts["barracks"] < 2 && o.buildable(s, "barracks", counts, budget):
		return "barracks", true
	case s.Population < s.MaxPopulation*0.5 && counts["house"] < 3 && o.buildable(s, "house", counts, budget):
		return "house", true
	case counts["gold_mine"] == 0 && o.buildable(s, "gold_mine", counts, budget):
		return "gold_mine", true
	}
	return "", false
}

func (o *Opponent) buildable(s entity.Settlement, id string, counts map[string]int, budget resource.Resources) bool {
	def, ok := o.catalog.Get(id)
	if !ok || !s.IsAvailable(id) {
		return false
	}
	if counts[id] >= o.ledger.LimitFor(s, id) {
		return false
	}
	return budget.Covers(def.Cost)
}

func (o *Opponent) annex(target entity.Settlement, own []entity.Settlement, rep *Report) *Annexation {
	influenceCost := math.Ceil(target.MaxPopulation / 500)
	militaryCost := territory.MilitaryCost(target)

	if rep.Budget[resource.Influence] >= influenceCost {
		if _, err := o.territory.Claim(target.ID, entity.OwnerEnemy, math.Ceil(target.MaxPopulation*0.1)); err != nil {
			o.log.Warn("opponent annexation failed", zap.Int("settlement_id", target.ID), zap.Error(err))
			return nil
		}
		rep.Budget.Add(resource.Influence, -influenceCost)
		return &Annexation{SettlementID: target.ID, Method: "influence", Cost: influenceCost}
	}
	if rep.Military < militaryCost {
		return nil
	}
	if _, err := o.territory.Claim(target.ID, entity.OwnerEnemy, 0); err != nil {
		o.log.Warn("opponent conquest failed", zap.Int("settlement_id", target.ID), zap.Error(err))
		return nil
	}
	left := militaryCost
	for _, s := range own {
		if left <= 0 {
			break
		}
		used := math.Min(s.Military, left)
		if used <= 0 {
			continue
		}
		if _, err := o.ledger.Update(s.ID, entity.Patch{Military: entity.Ptr(s.Military - used)}); err != nil {
			o.log.Warn("opponent garrison draw failed", zap.Int("settlement_id", s.ID), zap.Error(err))
			continue
		}
		left -= used
	}
	rep.Military -= militaryCost - left
	return &Annexation{SettlementID: target.ID, Method: "military", Cost: militaryCost}
}

// attack commits 70% of the force against target, drawn from every garrison
// in proportion to its size.
func (o *Opponent) attack(target entity.Settlement, now time.Time, rep *Report) []territory.Transfer {
	if rep.Military <= target.MaxPopulation/3 {
		return nil
	}
	own := o.ledger.OwnedBy(entity.OwnerEnemy)
	force := 0.0
	for _, s := range own {
		force += s.Military
	}
	commit := math.Floor(force * attackShare)
	if commit <= 0 {
		return nil
	}
	o.log.Info("opponent attacking",
		zap.Int("target", target.ID),
		zap.String("name", target.Name),
		zap.Float64("commit", commit),
	)

	var out []territory.Transfer
	left := commit
	for i, s := range own {
		share := math.Floor(s.Military * commit / force)
		if i == len(own)-1 {
			share = math.Min(left, s.Military)
		}
		share = math.Min(share, left)
		if share <= 0 {
			continue
		}
		t, err := o.territory.Dispatch(s.ID, target.ID, share, entity.OwnerEnemy, now)
		if err != nil {
			o.log.Warn("opponent dispatch failed", zap.Int("settlement_id", s.ID), zap.Error(err))
			continue
		}
		left -= share
		out = append(out, t)
	}
	rep.Military -= commit - left
	return out
}
