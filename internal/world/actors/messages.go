package actors

import (
	"github.com/Chinaskijl/stttg/internal/shared/gameconfig/resource"
	"github.com/Chinaskijl/stttg/internal/world/entity"
	"github.com/Chinaskijl/stttg/internal/world/service/market"
	"github.com/Chinaskijl/stttg/internal/world/service/territory"
)

// WorldMessage marks the requests the world actor answers.
type WorldMessage interface {
	worldMessage()
}

type worldRequest struct{}

func (worldRequest) worldMessage() {}

// Reply is the answer to every WorldMessage. Err is an app error when the
// request was rejected.
type Reply struct {
	Data any
	Err  error
}

type ListSettlements struct{ worldRequest }

type GetGameState struct{ worldRequest }

type ReplaceGameState struct {
	worldRequest
	State entity.GameState
}

type ListBuildings struct{ worldRequest }

type Build struct {
	worldRequest
	SettlementID entity.SettlementID
	BuildingID   string
}

type SetTax struct {
	worldRequest
	SettlementID entity.SettlementID
	TaxRate      int
}

const (
	CaptureByMilitary  = "military"
	CaptureByInfluence = "influence"
)

type Capture struct {
	worldRequest
	SettlementID entity.SettlementID
	IsCapital    bool
	Method       string
}

type SendArmy struct {
	worldRequest
	From   entity.SettlementID
	To     entity.SettlementID
	Amount float64
}

type Deploy struct {
	worldRequest
	SettlementID entity.SettlementID
	Amount       float64
}

type ListTransfers struct{ worldRequest }

type ListListings struct{ worldRequest }

type GetPriceHistory struct {
	worldRequest
	Resource resource.Resource
	Days     int
}

type ListTransactions struct {
	worldRequest
	Limit int
}

type PlaceListing struct {
	worldRequest
	Listing market.CreateListing
}

type Purchase struct {
	worldRequest
	ListingID int64
}

type CancelListing struct {
	worldRequest
	ListingID int64
}

type TakeSnapshot struct{ worldRequest }

// Results carried in Reply.Data.

type SettlementResult struct {
	Settlement entity.Settlement `json:"city"`
	GameState  entity.GameState  `json:"gameState"`
}

type TransferResult struct {
	Transfer territory.Transfer `json:"transfer"`
	// TravelTime is in milliseconds.
	TravelTime int64 `json:"travelTime"`
}

type ListingResult struct {
	Listing   market.Listing   `json:"listing"`
	GameState entity.GameState `json:"gameState"`
}

type PurchaseResult struct {
	Transaction market.Transaction `json:"transaction"`
	GameState   entity.GameState   `json:"gameState"`
}

type SnapshotResult struct {
	Path string `json:"path"`
	Tick uint64 `json:"tick"`
}
