package actors

import (
	"github.com/Chinaskijl/stttg/internal/world/app"
	"github.com/Chinaskijl/stttg/internal/world/entity"
	"github.com/Chinaskijl/stttg/internal/world/service/market"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

type WorldHandler struct{}

var WH = &WorldHandler{}

func respond(ctx actor.Context, data any, err error) {
	if err != nil {
		ctx.Respond(Reply{Err: err})
		return
	}
	ctx.Respond(Reply{Data: data})
}

func (h *WorldHandler) HandleListSettlements(ctx actor.Context, p *WorldActor, _ *ListSettlements) {
	respond(ctx, p.world.Store.List(), nil)
}

func (h *WorldHandler) HandleGetGameState(ctx actor.Context, p *WorldActor, _ *GetGameState) {
	respond(ctx, p.world.Store.GameState(), nil)
}

func (h *WorldHandler) HandleReplaceGameState(ctx actor.Context, p *WorldActor, req *ReplaceGameState) {
	state := req.State
	state.Resources.Normalize()
	p.world.Store.SetGameState(state)
	p.log.Info("game state replaced", zap.Any("resources", state.Resources.ToMap(true)))
	p.publish(GameUpdateEvent(state))
	respond(ctx, state, nil)
}

func (h *WorldHandler) HandleListBuildings(ctx actor.Context, p *WorldActor, _ *ListBuildings) {
	respond(ctx, p.world.Store.Catalog().All(), nil)
}

func (h *WorldHandler) HandleBuild(ctx actor.Context, p *WorldActor, req *Build) {
	s, state, err := p.world.Settlement.Build(req.SettlementID, req.BuildingID)
	if err != nil {
		respond(ctx, nil, err)
		return
	}
	p.publishState()
	respond(ctx, SettlementResult{Settlement: s, GameState: state}, nil)
}

func (h *WorldHandler) HandleSetTax(ctx actor.Context, p *WorldActor, req *SetTax) {
	s, err := p.world.Settlement.SetTax(req.SettlementID, req.TaxRate)
	if err != nil {
		respond(ctx, nil, err)
		return
	}
	p.publish(CitiesUpdateEvent(p.world.Store.List()))
	respond(ctx, s, nil)
}

func (h *WorldHandler) HandleCapture(ctx actor.Context, p *WorldActor, req *Capture) {
	var (
		s   entity.Settlement
		err error
	)
	switch {
	case req.IsCapital:
		s, err = p.world.Territory.CaptureCapital(req.SettlementID)
	case req.Method == "" || req.Method == CaptureByMilitary:
		s, err = p.world.Territory.CaptureMilitary(req.SettlementID)
	case req.Method == CaptureByInfluence:
		s, err = p.world.Territory.CaptureInfluence(req.SettlementID)
	default:
		err = app.Invalid(app.ReasonCaptureMethod).WithData("method", req.Method)
	}
	if err != nil {
		respond(ctx, nil, err)
		return
	}
	p.publishState()
	respond(ctx, SettlementResult{Settlement: s, GameState: p.world.Store.GameState()}, nil)
}

func (h *WorldHandler) HandleSendArmy(ctx actor.Context, p *WorldActor, req *SendArmy) {
	t, err := p.world.Territory.Dispatch(req.From, req.To, req.Amount, entity.OwnerPlayer, p.now())
	if err != nil {
		respond(ctx, nil, err)
		return
	}
	p.publish(transferStartEvent(t))
	p.publish(CitiesUpdateEvent(p.world.Store.List()))
	respond(ctx, TransferResult{Transfer: t, TravelTime: t.Duration().Milliseconds()}, nil)
}

func (h *WorldHandler) HandleDeploy(ctx actor.Context, p *WorldActor, req *Deploy) {
	s, err := p.world.Territory.Deploy(req.SettlementID, req.Amount)
	if err != nil {
		respond(ctx, nil, err)
		return
	}
	p.publishState()
	respond(ctx, SettlementResult{Settlement: s, GameState: p.world.Store.GameState()}, nil)
}

func (h *WorldHandler) HandleListTransfers(ctx actor.Context, p *WorldActor, _ *ListTransfers) {
	respond(ctx, p.world.Territory.Pending(), nil)
}

func (h *WorldHandler) HandleListListings(ctx actor.Context, p *WorldActor, _ *ListListings) {
	respond(ctx, p.world.Market.Listings(), nil)
}

func (h *WorldHandler) HandleGetPriceHistory(ctx actor.Context, p *WorldActor, req *GetPriceHistory) {
	respond(ctx, p.world.Market.PriceHistory(req.Resource, req.Days), nil)
}

func (h *WorldHandler) HandleListTransactions(ctx actor.Context, p *WorldActor, req *ListTransactions) {
	respond(ctx, p.world.Market.Transactions(req.Limit), nil)
}

func (h *WorldHandler) HandlePlaceListing(ctx actor.Context, p *WorldActor, req *PlaceListing) {
	l, err := p.world.Market.CreatePlayerListing(req.Listing)
	if err != nil {
		respond(ctx, nil, err)
		return
	}
	state := p.world.Store.GameState()
	p.publish(GameUpdateEvent(state))
	respond(ctx, ListingResult{Listing: l, GameState: state}, nil)
}

func (h *WorldHandler) HandlePurchase(ctx actor.Context, p *WorldActor, req *Purchase) {
	tx, err := p.world.Market.Purchase(req.ListingID, market.OwnerPlayer)
	if err != nil {
		respond(ctx, nil, err)
		return
	}
	state := p.world.Store.GameState()
	p.publish(GameUpdateEvent(state))
	respond(ctx, PurchaseResult{Transaction: tx, GameState: state}, nil)
}

func (h *WorldHandler) HandleCancelListing(ctx actor.Context, p *WorldActor, req *CancelListing) {
	l, err := p.world.Market.Cancel(req.ListingID, market.OwnerPlayer)
	if err != nil {
		respond(ctx, nil, err)
		return
	}
	state := p.world.Store.GameState()
	p.publish(GameUpdateEvent(state))
	respond(ctx, ListingResult{Listing: l, GameState: state}, nil)
}

func (h *WorldHandler) HandleTakeSnapshot(ctx actor.Context, p *WorldActor, _ *TakeSnapshot) {
	if p.opts.SnapshotDir == "" {
		respond(ctx, nil, app.ErrUnavailable.WithReason(app.ReasonArchiveFail).WithData("snapshot_dir", ""))
		return
	}
	res, err := p.archive()
	respond(ctx, res, err)
}
