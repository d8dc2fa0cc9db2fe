package actors

import (
	"github.com/Chinaskijl/stttg/internal/world/entity"
	"github.com/Chinaskijl/stttg/internal/world/service/territory"
)

// Feed event types.
const (
	EventCitiesUpdate     = "CITIES_UPDATE"
	EventGameUpdate       = "GAME_UPDATE"
	EventTransferStart    = "MILITARY_TRANSFER_START"
	EventTransferComplete = "MILITARY_TRANSFER_COMPLETE"
)

type CitiesUpdate struct {
	Type   string              `json:"type"`
	Cities []entity.Settlement `json:"cities"`
}

type GameUpdate struct {
	Type      string           `json:"type"`
	GameState entity.GameState `json:"gameState"`
}

type TransferStart struct {
	Type      string             `json:"type"`
	ID        int64              `json:"id,string"`
	FromCity  territory.Endpoint `json:"fromCity"`
	ToCity    territory.Endpoint `json:"toCity"`
	Amount    float64            `json:"amount"`
	Owner     entity.Owner       `json:"owner"`
	Duration  int64              `json:"duration"`
	StartTime int64              `json:"startTime"`
}

type TransferComplete struct {
	Type   string              `json:"type"`
	ID     int64               `json:"id,string"`
	ToCity entity.SettlementID `json:"toCity"`
	Result territory.Result    `json:"result"`
}

func CitiesUpdateEvent(cities []entity.Settlement) CitiesUpdate {
	return CitiesUpdate{Type: EventCitiesUpdate, Cities: cities}
}

func GameUpdateEvent(state entity.GameState) GameUpdate {
	return GameUpdate{Type: EventGameUpdate, GameState: state}
}

func transferStartEvent(t territory.Transfer) TransferStart {
	return TransferStart{
		Type:      EventTransferStart,
		ID:        t.ID,
		FromCity:  t.From,
		ToCity:    t.To,
		Amount:    t.Amount,
		Owner:     t.Owner,
		Duration:  t.Duration().Milliseconds(),
		StartTime: t.StartTime.UnixMilli(),
	}
}

func transferCompleteEvent(o territory.Outcome) TransferComplete {
	return TransferComplete{
		Type:   EventTransferComplete,
		ID:     o.Transfer.ID,
		ToCity: o.Transfer.To.ID,
		Result: o.Result,
	}
}
