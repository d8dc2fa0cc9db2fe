package settlement

import (
	"github.com/Chinaskijl/stttg/internal/shared/gameconfig/building"
	"github.com/Chinaskijl/stttg/internal/world/app"
	"github.com/Chinaskijl/stttg/internal/world/entity"
	"github.com/Chinaskijl/stttg/modules/kit/logx"

	"go.uber.org/zap"
)

type Ledger interface {
	Get(id entity.SettlementID) (entity.Settlement, error)
	Update(id entity.SettlementID, p entity.Patch) (entity.Settlement, error)
	LimitFor(st entity.Settlement, id string) int
	GameState() entity.GameState
	SetGameState(state entity.GameState)
}

// Service handles the player's direct orders to an owned settlement.
type Service struct {
	ledger  Ledger
	catalog *building.Catalog
	log     logx.Logger
}

func New(ledger Ledger, catalog *building.Catalog, l logx.Logger) *Service {
	if l == nil {
		l = logx.Nop()
	}
	if catalog == nil {
		catalog = building.Default()
	}
	return &Service{ledger: ledger, catalog: catalog, log: l}
}

// Build pays for one instance of buildingID out of the game state and adds
// it to the settlement. Either both happen or neither does.
func (s *Service) Build(id entity.SettlementID, buildingID string) (entity.Settlement, entity.GameState, error) {
	st, err := s.owned(id)
	if err != nil {
		return entity.Settlement{}, entity.GameState{}, err
	}
	def, ok := s.catalog.Get(buildingID)
	if !ok {
		return entity.Settlement{}, entity.GameState{}, app.Invalid(app.ReasonUnknownBuilding).WithData("building", buildingID)
	}
	if !st.IsAvailable(buildingID) {
		return entity.Settlement{}, entity.GameState{}, app.Invalid(app.ReasonBuildingNotAvailable).
			WithData("settlement_id", id).
			WithData("building", buildingID)
	}
	count, limit := st.CountBuilding(buildingID), s.ledger.LimitFor(st, buildingID)
	if count >= limit {
		return entity.Settlement{}, entity.GameState{}, app.ErrLimitExceeded.
			WithReason(app.ReasonBuildingLimit).
			WithData("building", buildingID).
			WithData("count", count).
			WithData("limit", limit)
	}

	state := s.ledger.GameState()
	if r, short := state.Resources.Shortfall(def.Cost); short {
		return entity.Settlement{}, entity.GameState{}, app.Insufficient(app.ReasonBuildCost, r.String(), def.Cost[r], state.Resources[r]).
			WithData("building", buildingID)
	}

	buildings := append(append([]string(nil), st.Buildings...), buildingID)
	out, err := s.ledger.Update(id, entity.Patch{Buildings: &buildings})
	if err != nil {
		return entity.Settlement{}, entity.GameState{}, err
	}
	state.Resources.SubAll(def.Cost)
	state.Resources.Normalize()
	s.ledger.SetGameState(state)

	s.log.Info("building constructed",
		zap.Int("settlement_id", id),
		zap.String("building", buildingID),
		zap.Int("count", count+1),
		zap.Any("cost", def.Cost.ToMap(true)),
	)
	return out, state, nil
}

// SetTax changes the tax rate of an owned settlement. The rate must be an
// integer in [0, 10].
func (s *Service) SetTax(id entity.SettlementID, rate int) (entity.Settlement, error) {
	if _, err := s.owned(id); err != nil {
		return entity.Settlement{}, err
	}
	if rate < entity.MinTaxRate || rate > entity.MaxTaxRate {
		return entity.Settlement{}, app.Invalid(app.ReasonTaxRateOutOfRange).WithData("tax_rate", rate)
	}
	out, err := s.ledger.Update(id, entity.Patch{TaxRate: entity.Ptr(rate)})
	if err != nil {
		return entity.Settlement{}, err
	}
	s.log.Info("tax rate changed", zap.Int("settlement_id", id), zap.Int("tax_rate", rate))
	return out, nil
}

func (s *Service) owned(id entity.SettlementID) (entity.Settlement, error) {
	st, err := s.ledger.Get(id)
	if err != nil {
		return entity.Settlement{}, err
	}
	if st.Owner != entity.OwnerPlayer {
		return entity.Settlement{}, app.ErrForbidden.WithReason(app.ReasonNotOwner).WithData("settlement_id", id)
	}
	return st, nil
}
