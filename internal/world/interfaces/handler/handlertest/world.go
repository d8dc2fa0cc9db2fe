package handlertest

import (
	"context"

	"github.com/Chinaskijl/stttg/internal/shared/gameconfig/building"
	"github.com/Chinaskijl/stttg/internal/shared/gameconfig/resource"
	"github.com/Chinaskijl/stttg/internal/world/actors"
	"github.com/Chinaskijl/stttg/internal/world/entity"
	"github.com/Chinaskijl/stttg/internal/world/interfaces/handler"
	"github.com/Chinaskijl/stttg/internal/world/service/market"
	"github.com/Chinaskijl/stttg/internal/world/service/territory"
)

var _ handler.World = (*World)(nil)

// World is an in-memory handler.World. Every call returns Err alongside
// a canned payload and records the arguments the transports decoded.
type World struct {
	Err      error
	TaxRate  int
	Replaced *entity.GameState
	Listing  market.CreateListing
	Days     int
}

func (f *World) Settlements(context.Context) ([]entity.Settlement, error) {
	return []entity.Settlement{{ID: 1, Name: "Moscow", Owner: entity.OwnerPlayer}}, f.Err
}

func (f *World) GameState(context.Context) (entity.GameState, error) {
	return entity.InitialGameState(), f.Err
}

func (f *World) ReplaceGameState(_ context.Context, state entity.GameState) (entity.GameState, error) {
	f.Replaced = &state
	return state, f.Err
}

func (f *World) Buildings(context.Context) ([]building.Definition, error) {
	return building.Default().All(), f.Err
}

func (f *World) Build(_ context.Context, id entity.SettlementID, _ string) (actors.SettlementResult, error) {
	return actors.SettlementResult{Settlement: entity.Settlement{ID: id}}, f.Err
}

func (f *World) SetTax(_ context.Context, id entity.SettlementID, rate int) (entity.Settlement, error) {
	f.TaxRate = rate
	return entity.Settlement{ID: id, TaxRate: rate}, f.Err
}

func (f *World) Capture(_ context.Context, id entity.SettlementID, _ bool, _ string) (actors.SettlementResult, error) {
	return actors.SettlementResult{Settlement: entity.Settlement{ID: id}}, f.Err
}

func (f *World) SendArmy(_ context.Context, from, to entity.SettlementID, amount float64) (actors.TransferResult, error) {
	return actors.TransferResult{Transfer: territory.Transfer{ID: 7, From: territory.Endpoint{ID: from}, To: territory.Endpoint{ID: to}, Amount: amount}}, f.Err
}

func (f *World) Deploy(_ context.Context, id entity.SettlementID, _ float64) (actors.SettlementResult, error) {
	return actors.SettlementResult{Settlement: entity.Settlement{ID: id}}, f.Err
}

func (f *World) Transfers(context.Context) ([]territory.Transfer, error) {
	return nil, f.Err
}

func (f *World) Listings(context.Context) ([]market.Listing, error) {
	return nil, f.Err
}

func (f *World) PriceHistory(_ context.Context, _ resource.Resource, days int) ([]market.PricePoint, error) {
	f.Days = days
	return nil, f.Err
}

func (f *World) Transactions(context.Context, int) ([]market.Transaction, error) {
	return nil, f.Err
}

func (f *World) PlaceListing(_ context.Context, req market.CreateListing) (actors.ListingResult, error) {
	f.Listing = req
	return actors.ListingResult{}, f.Err
}

func (f *World) Purchase(context.Context, int64) (actors.PurchaseResult, error) {
	return actors.PurchaseResult{}, f.Err
}

func (f *World) CancelListing(context.Context, int64) (actors.ListingResult, error) {
	return actors.ListingResult{}, f.Err
}

func (f *World) Snapshot(context.Context) (actors.SnapshotResult, error) {
	return actors.SnapshotResult{}, f.Err
}
