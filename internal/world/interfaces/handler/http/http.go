package http

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"io"
	"math"
	nethttp "net/http"
	"strconv"

	"github.com/Chinaskijl/stttg/internal/shared/gameconfig/resource"
	"github.com/Chinaskijl/stttg/internal/shared/transport"
	"github.com/Chinaskijl/stttg/internal/world/app"
	"github.com/Chinaskijl/stttg/internal/world/entity"
	"github.com/Chinaskijl/stttg/internal/world/interfaces/handler"
	"github.com/Chinaskijl/stttg/internal/world/service/market"
	"github.com/Chinaskijl/stttg/modules/kit/logx"
	"github.com/Chinaskijl/stttg/modules/kit/tracex"

	"github.com/gin-gonic/gin"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/game_state.schema.json
var gameStateSchema string

const maxBody = 1 << 20

type HttpHandler struct {
	world     handler.World
	log       logx.Logger
	gameState *jsonschema.Schema
}

func NewHttpHandler(w handler.World, l logx.Logger) *HttpHandler {
	if l == nil {
		l = logx.Nop()
	}
	return &HttpHandler{
		world:     w,
		log:       l,
		gameState: jsonschema.MustCompileString("game_state.schema.json", gameStateSchema),
	}
}

func (h *HttpHandler) RegisterRoutes(group *gin.RouterGroup) {
	api := group.Group("/api")

	cities := api.Group("/cities")
	cities.GET("", h.ListCities)
	cities.POST("/:id/build", h.Build)
	cities.POST("/:id/tax", h.SetTax)
	cities.PATCH("/:id/capture", h.Capture)

	military := api.Group("/military")
	military.POST("/transfer", h.Transfer)
	military.POST("/deploy", h.Deploy)
	military.GET("/transfers", h.Transfers)

	api.GET("/game-state", h.GetGameState)
	api.POST("/game-state", h.ReplaceGameState)
	api.GET("/buildings", h.Buildings)

	m := api.Group("/market")
	m.GET("/listings", h.Listings)
	m.GET("/prices/:resource", h.PriceHistory)
	m.GET("/transactions", h.Transactions)
	m.POST("/create-listing", h.CreateListing)
	m.POST("/purchase", h.Purchase)
	m.POST("/cancel", h.Cancel)

	api.POST("/admin/snapshot", h.Snapshot)
}

type buildReq struct {
	BuildingID string `json:"buildingId"`
}

type taxReq struct {
	TaxRate *float64 `json:"taxRate"`
}

type captureReq struct {
	IsCapital     bool   `json:"isCapital"`
	CaptureMethod string `json:"captureMethod"`
}

type transferReq struct {
	FromCityID int     `json:"fromCityId"`
	ToCityID   int     `json:"toCityId"`
	Amount     float64 `json:"amount"`
}

type deployReq struct {
	CityID int     `json:"cityId"`
	Amount float64 `json:"amount"`
}

type listingReq struct {
	ResourceType string      `json:"resourceType"`
	Amount       float64     `json:"amount"`
	PricePerUnit float64     `json:"pricePerUnit"`
	Type         market.Side `json:"type"`
}

type listingIDReq struct {
	ListingID int64 `json:"listingId"`
}

func (h *HttpHandler) ListCities(c *gin.Context) {
	ctx := h.ctx(c)
	cities, err := h.world.Settlements(ctx)
	h.reply(ctx, c, "list cities", cities, err)
}

func (h *HttpHandler) Build(c *gin.Context) {
	ctx := h.ctx(c)
	id, ok := h.settlementID(ctx, c)
	if !ok {
		return
	}
	var req buildReq
	if err := c.ShouldBindJSON(&req); err != nil {
		h.error(ctx, c, "build", app.ErrReqParamERR.WithCause(err))
		return
	}
	res, err := h.world.Build(ctx, id, req.BuildingID)
	h.reply(ctx, c, "build", res, err)
}

func (h *HttpHandler) SetTax(c *gin.Context) {
	ctx := h.ctx(c)
	id, ok := h.settlementID(ctx, c)
	if !ok {
		return
	}
	var req taxReq
	if err := c.ShouldBindJSON(&req); err != nil {
		h.error(ctx, c, "set tax", app.ErrReqParamERR.WithCause(err))
		return
	}
	// missing or fractional rates go through as out of range; ownership
	// is checked first
	rate := -1
	if v := req.TaxRate; v != nil && *v == math.Trunc(*v) && math.Abs(*v) < math.MaxInt32 {
		rate = int(*v)
	}
	s, err := h.world.SetTax(ctx, id, rate)
	h.reply(ctx, c, "set tax", s, err)
}

func (h *HttpHandler) Capture(c *gin.Context) {
	ctx := h.ctx(c)
	id, ok := h.settlementID(ctx, c)
	if !ok {
		return
	}
	var req captureReq
	if err := c.ShouldBindJSON(&req); err != nil {
		h.error(ctx, c, "capture", app.ErrReqParamERR.WithCause(err))
		return
	}
	res, err := h.world.Capture(ctx, id, req.IsCapital, req.CaptureMethod)
	h.reply(ctx, c, "capture", res, err)
}

func (h *HttpHandler) Transfer(c *gin.Context) {
	ctx := h.ctx(c)
	var req transferReq
	if err := c.ShouldBindJSON(&req); err != nil {
		h.error(ctx, c, "military transfer", app.ErrReqParamERR.WithCause(err))
		return
	}
	res, err := h.world.SendArmy(ctx, req.FromCityID, req.ToCityID, req.Amount)
	h.reply(ctx, c, "military transfer", res, err)
}

func (h *HttpHandler) Deploy(c *gin.Context) {
	ctx := h.ctx(c)
	var req deployReq
	if err := c.ShouldBindJSON(&req); err != nil {
		h.error(ctx, c, "military deploy", app.ErrReqParamERR.WithCause(err))
		return
	}
	res, err := h.world.Deploy(ctx, req.CityID, req.Amount)
	h.reply(ctx, c, "military deploy", res, err)
}

func (h *HttpHandler) Transfers(c *gin.Context) {
	ctx := h.ctx(c)
	res, err := h.world.Transfers(ctx)
	h.reply(ctx, c, "military transfers", res, err)
}

func (h *HttpHandler) GetGameState(c *gin.Context) {
	ctx := h.ctx(c)
	res, err := h.world.GameState(ctx)
	h.reply(ctx, c, "get game state", res, err)
}

// ReplaceGameState overwrites the ledger after the body passes the schema.
func (h *HttpHandler) ReplaceGameState(c *gin.Context) {
	ctx := h.ctx(c)
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBody))
	if err != nil {
		h.error(ctx, c, "replace game state", app.ErrReqParamERR.WithCause(err))
		return
	}
	var doc any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		h.error(ctx, c, "replace game state", app.ErrReqParamERR.WithCause(err))
		return
	}
	if err := h.gameState.Validate(doc); err != nil {
		h.error(ctx, c, "replace game state", app.Invalid(app.ReasonInvalidGameState).WithData("detail", err.Error()))
		return
	}
	var state entity.GameState
	if err := json.Unmarshal(raw, &state); err != nil {
		h.error(ctx, c, "replace game state", app.Invalid(app.ReasonInvalidGameState).WithCause(err))
		return
	}
	res, err := h.world.ReplaceGameState(ctx, state)
	h.reply(ctx, c, "replace game state", res, err)
}

func (h *HttpHandler) Buildings(c *gin.Context) {
	ctx := h.ctx(c)
	res, err := h.world.Buildings(ctx)
	h.reply(ctx, c, "list buildings", res, err)
}

func (h *HttpHandler) Listings(c *gin.Context) {
	ctx := h.ctx(c)
	res, err := h.world.Listings(ctx)
	h.reply(ctx, c, "market listings", res, err)
}

func (h *HttpHandler) PriceHistory(c *gin.Context) {
	ctx := h.ctx(c)
	r, err := resource.Parse(c.Param("resource"))
	if err != nil {
		h.error(ctx, c, "market prices", app.Invalid(app.ReasonUnknownResource).WithData("resource", c.Param("resource")))
		return
	}
	days, ok := h.queryInt(ctx, c, "days")
	if !ok {
		return
	}
	res, err := h.world.PriceHistory(ctx, r, days)
	h.reply(ctx, c, "market prices", res, err)
}

func (h *HttpHandler) Transactions(c *gin.Context) {
	ctx := h.ctx(c)
	limit, ok := h.queryInt(ctx, c, "limit")
	if !ok {
		return
	}
	res, err := h.world.Transactions(ctx, limit)
	h.reply(ctx, c, "market transactions", res, err)
}

func (h *HttpHandler) CreateListing(c *gin.Context) {
	ctx := h.ctx(c)
	var req listingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		h.error(ctx, c, "create listing", app.ErrReqParamERR.WithCause(err))
		return
	}
	r, err := resource.Parse(req.ResourceType)
	if err != nil {
		h.error(ctx, c, "create listing", app.Invalid(app.ReasonUnknownResource).WithData("resource", req.ResourceType))
		return
	}
	res, err := h.world.PlaceListing(ctx, market.CreateListing{
		Resource:     r,
		Amount:       req.Amount,
		PricePerUnit: req.PricePerUnit,
		Type:         req.Type,
	})
	h.reply(ctx, c, "create listing", res, err)
}

func (h *HttpHandler) Purchase(c *gin.Context) {
	ctx := h.ctx(c)
	var req listingIDReq
	if err := c.ShouldBindJSON(&req); err != nil {
		h.error(ctx, c, "purchase listing", app.ErrReqParamERR.WithCause(err))
		return
	}
	res, err := h.world.Purchase(ctx, req.ListingID)
	h.reply(ctx, c, "purchase listing", res, err)
}

func (h *HttpHandler) Cancel(c *gin.Context) {
	ctx := h.ctx(c)
	var req listingIDReq
	if err := c.ShouldBindJSON(&req); err != nil {
		h.error(ctx, c, "cancel listing", app.ErrReqParamERR.WithCause(err))
		return
	}
	res, err := h.world.CancelListing(ctx, req.ListingID)
	h.reply(ctx, c, "cancel listing", res, err)
}

func (h *HttpHandler) Snapshot(c *gin.Context) {
	ctx := h.ctx(c)
	res, err := h.world.Snapshot(ctx)
	h.reply(ctx, c, "world snapshot", res, err)
}

func (h *HttpHandler) ctx(c *gin.Context) context.Context {
	return tracex.WithSpanID(c.Request.Context(), "world")
}

func (h *HttpHandler) settlementID(ctx context.Context, c *gin.Context) (entity.SettlementID, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		h.error(ctx, c, "settlement id", app.Invalid(app.ReasonInvalidSettlementID).WithData("id", c.Param("id")))
		return 0, false
	}
	return id, true
}

func (h *HttpHandler) queryInt(ctx context.Context, c *gin.Context, key string) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		h.error(ctx, c, "query "+key, app.ErrReqParamERR.WithData(key, raw))
		return 0, false
	}
	return v, true
}

func (h *HttpHandler) reply(ctx context.Context, c *gin.Context, action string, data any, err error) {
	if err != nil {
		h.error(ctx, c, action, err)
		return
	}
	c.JSON(nethttp.StatusOK, handler.Success(data))
}

func (h *HttpHandler) error(ctx context.Context, c *gin.Context, action string, err error) {
	code, msg, data := handler.HandleError(ctx, h.log, action, err)
	c.JSON(transport.HTTPStatus(code), handler.Error(code, msg, data))
}
