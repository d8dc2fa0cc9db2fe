package handler

import (
	"context"

	"github.com/Chinaskijl/stttg/internal/shared/gameconfig/building"
	"github.com/Chinaskijl/stttg/internal/shared/gameconfig/resource"
	"github.com/Chinaskijl/stttg/internal/world/actors"
	"github.com/Chinaskijl/stttg/internal/world/entity"
	"github.com/Chinaskijl/stttg/internal/world/service/market"
	"github.com/Chinaskijl/stttg/internal/world/service/territory"
)

// World is the game surface the transports call. *actor.Runtime
// implements it.
type World interface {
	Settlements(ctx context.Context) ([]entity.Settlement, error)
	GameState(ctx context.Context) (entity.GameState, error)
	ReplaceGameState(ctx context.Context, state entity.GameState) (entity.GameState, error)
	Buildings(ctx context.Context) ([]building.Definition, error)
	Build(ctx context.Context, id entity.SettlementID, buildingID string) (actors.SettlementResult, error)
	SetTax(ctx context.Context, id entity.SettlementID, rate int) (entity.Settlement, error)
	Capture(ctx context.Context, id entity.SettlementID, isCapital bool, method string) (actors.SettlementResult, error)
	SendArmy(ctx context.Context, from, to entity.SettlementID, amount float64) (actors.TransferResult, error)
	Deploy(ctx context.Context, id entity.SettlementID, amount float64) (actors.SettlementResult, error)
	Transfers(ctx context.Context) ([]territory.Transfer, error)
	Listings(ctx context.Context) ([]market.Listing, error)
	PriceHistory(ctx context.Context, r resource.Resource, days int) ([]market.PricePoint, error)
	Transactions(ctx context.Context, limit int) ([]market.Transaction, error)
	PlaceListing(ctx context.Context, req market.CreateListing) (actors.ListingResult, error)
	Purchase(ctx context.Context, listingID int64) (actors.PurchaseResult, error)
	CancelListing(ctx context.Context, listingID int64) (actors.ListingResult, error)
	Snapshot(ctx context.Context) (actors.SnapshotResult, error)
}
