package ws

import (
	"context"
	"encoding/json"

	"github.com/Chinaskijl/stttg/internal/shared/gameconfig/resource"
	"github.com/Chinaskijl/stttg/internal/shared/transport"
	"github.com/Chinaskijl/stttg/internal/shared/transport/ws"
	"github.com/Chinaskijl/stttg/internal/world/actors"
	"github.com/Chinaskijl/stttg/internal/world/app"
	"github.com/Chinaskijl/stttg/internal/world/interfaces/handler"
	"github.com/Chinaskijl/stttg/modules/kit/logx"

	"go.uber.org/zap"
)

type WsHandler struct {
	world handler.World
	log   logx.Logger
}

func NewWsHandler(w handler.World, l logx.Logger) *WsHandler {
	if l == nil {
		l = logx.Nop()
	}
	return &WsHandler{world: w, log: l}
}

func (h *WsHandler) RegisterRoutes(r *ws.Router) {
	gameGroup := r.Group("game")
	gameGroup.Handle("state", h.gameState)

	cityGroup := r.Group("city")
	cityGroup.Handle("list", h.cityList)

	marketGroup := r.Group("market")
	marketGroup.Handle("listings", h.marketListings)
	marketGroup.Handle("prices", h.marketPrices)
}

// OnConnect pushes the current ledger and then the settlements to a new viewer.
func (h *WsHandler) OnConnect(ctx context.Context, conn ws.WSConn) {
	state, err := h.world.GameState(ctx)
	if err != nil {
		h.log.Warn("ws initial game state", zap.String("conn", conn.ID()), zap.Error(err))
		return
	}
	cities, err := h.world.Settlements(ctx)
	if err != nil {
		h.log.Warn("ws initial cities", zap.String("conn", conn.ID()), zap.Error(err))
		return
	}
	for _, ev := range []any{actors.GameUpdateEvent(state), actors.CitiesUpdateEvent(cities)} {
		frame, err := json.Marshal(ev)
		if err != nil {
			h.log.Error("ws initial frame", zap.Error(err))
			return
		}
		if !conn.SendRaw(frame) {
			h.log.Warn("ws initial frame dropped", zap.String("conn", conn.ID()))
			return
		}
	}
}

func (h *WsHandler) gameState(ctx context.Context, _ *ws.WsMsgReq, wsResp *ws.WsMsgResp) {
	state, err := h.world.GameState(ctx)
	if err != nil {
		h.error(ctx, wsResp, "game.state", err)
		return
	}
	h.ok(wsResp, state)
}

func (h *WsHandler) cityList(ctx context.Context, _ *ws.WsMsgReq, wsResp *ws.WsMsgResp) {
	cities, err := h.world.Settlements(ctx)
	if err != nil {
		h.error(ctx, wsResp, "city.list", err)
		return
	}
	h.ok(wsResp, cities)
}

func (h *WsHandler) marketListings(ctx context.Context, _ *ws.WsMsgReq, wsResp *ws.WsMsgResp) {
	listings, err := h.world.Listings(ctx)
	if err != nil {
		h.error(ctx, wsResp, "market.listings", err)
		return
	}
	h.ok(wsResp, listings)
}

type pricesReq struct {
	Resource string `json:"resource"`
	Days     int    `json:"days"`
}

func (h *WsHandler) marketPrices(ctx context.Context, wsReq *ws.WsMsgReq, wsResp *ws.WsMsgResp) {
	var req pricesReq
	if err := ws.BindJSON(wsReq, &req); err != nil {
		h.fail(wsResp, transport.InvalidParam, "malformed request")
		return
	}
	r, err := resource.Parse(req.Resource)
	if err != nil {
		h.error(ctx, wsResp, "market.prices", app.Invalid(app.ReasonUnknownResource).WithData("resource", req.Resource))
		return
	}
	points, err := h.world.PriceHistory(ctx, r, req.Days)
	if err != nil {
		h.error(ctx, wsResp, "market.prices", err)
		return
	}
	h.ok(wsResp, points)
}

func (h *WsHandler) ok(resp *ws.WsMsgResp, data any) {
	if resp == nil || resp.Body == nil {
		return
	}
	resp.Body.Code = transport.OK
	resp.Body.Msg = data
}

func (h *WsHandler) fail(resp *ws.WsMsgResp, code int, msg string) {
	if resp == nil || resp.Body == nil {
		return
	}
	resp.Body.Code = code
	resp.Body.Msg = msg
}

func (h *WsHandler) error(ctx context.Context, resp *ws.WsMsgResp, action string, err error) {
	code, msg, _ := handler.HandleError(ctx, h.log, action, err)
	h.fail(resp, code, msg)
}
