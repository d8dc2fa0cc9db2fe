package actors

import (
	"fmt"
	"reflect"

	"github.com/Chinaskijl/stttg/internal/world/app"
	"github.com/Chinaskijl/stttg/modules/kit/logx"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

type Dispatcher struct {
	handlers map[reflect.Type]Handler
	log      logx.Logger
}

type Handler struct {
	fn      reflect.Value
	reqType reflect.Type
}

func NewDispatcher(l logx.Logger) *Dispatcher {
	if l == nil {
		l = logx.Nop()
	}
	d := &Dispatcher{
		handlers: make(map[reflect.Type]Handler),
		log:      l,
	}
	d.registerAll()
	return d
}

func (d *Dispatcher) registerAll() {
	register(d, WH.HandleListSettlements)
	register(d, WH.HandleGetGameState)
	register(d, WH.HandleReplaceGameState)
	register(d, WH.HandleListBuildings)
	register(d, WH.HandleBuild)
	register(d, WH.HandleSetTax)
	register(d, WH.HandleCapture)
	register(d, WH.HandleSendArmy)
	register(d, WH.HandleDeploy)
	register(d, WH.HandleListTransfers)
	register(d, WH.HandleListListings)
	register(d, WH.HandleGetPriceHistory)
	register(d, WH.HandleListTransactions)
	register(d, WH.HandlePlaceListing)
	register(d, WH.HandlePurchase)
	register(d, WH.HandleCancelListing)
	register(d, WH.HandleTakeSnapshot)
}

func register[Req WorldMessage](
	d *Dispatcher,
	fn func(ctx actor.Context, p *WorldActor, req Req),
) {
	reqType := reflect.TypeOf((*Req)(nil)).Elem()
	if reqType == nil {
		panic("dispatcher req type cannot be nil")
	}

	d.handlers[reqType] = Handler{
		fn:      reflect.ValueOf(fn),
		reqType: reqType,
	}
}

// Dispatch answers req with the registered handler. A handler panic is
// answered with an internal error.
func (d *Dispatcher) Dispatch(ctx actor.Context, p *WorldActor, req WorldMessage) {
	if req == nil {
		ctx.Respond(Reply{Err: app.ErrReqParamERR})
		return
	}

	bodyType := reflect.TypeOf(req)
	handler, ok := d.handlers[bodyType]
	if !ok {
		ctx.Respond(Reply{Err: app.ErrReqParamERR.WithData("request", bodyType.String())})
		return
	}

	defer func() {
		if r := recover(); r != nil {
			err := app.ErrInternal.WithCause(fmt.Errorf("%v", r))
			d.log.Error("world request panicked", zap.String("request", bodyType.String()), zap.Error(err))
			ctx.Respond(Reply{Err: err})
		}
	}()

	handler.fn.Call([]reflect.Value{
		reflect.ValueOf(ctx),
		reflect.ValueOf(p),
		reflect.ValueOf(req),
	})
}
