package actor

import (
	"context"
	"errors"
	"time"

	"github.com/Chinaskijl/stttg/internal/shared/gameconfig/building"
	"github.com/Chinaskijl/stttg/internal/shared/gameconfig/resource"
	"github.com/Chinaskijl/stttg/internal/shared/transport"
	"github.com/Chinaskijl/stttg/internal/world/actors"
	"github.com/Chinaskijl/stttg/internal/world/entity"
	"github.com/Chinaskijl/stttg/internal/world/service/market"
	"github.com/Chinaskijl/stttg/internal/world/service/territory"

	protoactor "github.com/asynkron/protoactor-go/actor"
)

const defaultAskTimeout = 3 * time.Second

type RuntimeError struct {
	Code    int
	Message string
	Cause   error
}

func (e *RuntimeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

func (e *RuntimeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Runtime is the synchronous face of the world actor used by the
// transports. Every call is one request/reply round trip.
type Runtime struct {
	system  *protoactor.ActorSystem
	root    *protoactor.RootContext
	manager *protoactor.PID
	timeout time.Duration
}

func NewRuntime(w actors.World, opts actors.Options, askTimeout time.Duration) *Runtime {
	if askTimeout <= 0 {
		askTimeout = defaultAskTimeout
	}

	system := protoactor.NewActorSystem()
	root := system.Root
	managerProps := protoactor.PropsFromProducer(func() protoactor.Actor {
		return actors.NewManagerActor(w, opts)
	})
	manager := root.Spawn(managerProps)

	return &Runtime{
		system:  system,
		root:    root,
		manager: manager,
		timeout: askTimeout,
	}
}

// Shutdown stops the world (archiving and flushing it) and then the system.
func (r *Runtime) Shutdown() {
	if r == nil {
		return
	}
	if r.root != nil && r.manager != nil {
		_ = r.root.StopFuture(r.manager).Wait()
	}
	if r.system != nil {
		r.system.Shutdown()
	}
}

func (r *Runtime) Settlements(ctx context.Context) ([]entity.Settlement, error) {
	return ask[[]entity.Settlement](ctx, r, &actors.ListSettlements{})
}

func (r *Runtime) GameState(ctx context.Context) (entity.GameState, error) {
	return ask[entity.GameState](ctx, r, &actors.GetGameState{})
}

func (r *Runtime) ReplaceGameState(ctx context.Context, state entity.GameState) (entity.GameState, error) {
	return ask[entity.GameState](ctx, r, &actors.ReplaceGameState{State: state})
}

func (r *Runtime) Buildings(ctx context.Context) ([]building.Definition, error) {
	return ask[[]building.Definition](ctx, r, &actors.ListBuildings{})
}

func (r *Runtime) Build(ctx context.Context, id entity.SettlementID, buildingID string) (actors.SettlementResult, error) {
	return ask[actors.SettlementResult](ctx, r, &actors.Build{SettlementID: id, BuildingID: buildingID})
}

func (r *Runtime) SetTax(ctx context.Context, id entity.SettlementID, rate int) (entity.Settlement, error) {
	return ask[entity.Settlement](ctx, r, &actors.SetTax{SettlementID: id, TaxRate: rate})
}

func (r *Runtime) Capture(ctx context.Context, id entity.SettlementID, isCapital bool, method string) (actors.SettlementResult, error) {
	return ask[actors.SettlementResult](ctx, r, &actors.Capture{SettlementID: id, IsCapital: isCapital, Method: method})
}

func (r *Runtime) SendArmy(ctx context.Context, from, to entity.SettlementID, amount float64) (actors.TransferResult, error) {
	return ask[actors.TransferResult](ctx, r, &actors.SendArmy{From: from, To: to, Amount: amount})
}

func (r *Runtime) Deploy(ctx context.Context, id entity.SettlementID, amount float64) (actors.SettlementResult, error) {
	return ask[actors.SettlementResult](ctx, r, &actors.Deploy{SettlementID: id, Amount: amount})
}

func (r *Runtime) Transfers(ctx context.Context) ([]territory.Transfer, error) {
	return ask[[]territory.Transfer](ctx, r, &actors.ListTransfers{})
}

func (r *Runtime) Listings(ctx context.Context) ([]market.Listing, error) {
	return ask[[]market.Listing](ctx, r, &actors.ListListings{})
}

func (r *Runtime) PriceHistory(ctx context.Context, res resource.Resource, days int) ([]market.PricePoint, error) {
	return ask[[]market.PricePoint](ctx, r, &actors.GetPriceHistory{Resource: res, Days: days})
}

func (r *Runtime) Transactions(ctx context.Context, limit int) ([]market.Transaction, error) {
	return ask[[]market.Transaction](ctx, r, &actors.ListTransactions{Limit: limit})
}

func (r *Runtime) PlaceListing(ctx context.Context, req market.CreateListing) (actors.ListingResult, error) {
	return ask[actors.ListingResult](ctx, r, &actors.PlaceListing{Listing: req})
}

func (r *Runtime) Purchase(ctx context.Context, listingID int64) (actors.PurchaseResult, error) {
	return ask[actors.PurchaseResult](ctx, r, &actors.Purchase{ListingID: listingID})
}

func (r *Runtime) CancelListing(ctx context.Context, listingID int64) (actors.ListingResult, error) {
	return ask[actors.ListingResult](ctx, r, &actors.CancelListing{ListingID: listingID})
}

func (r *Runtime) Snapshot(ctx context.Context) (actors.SnapshotResult, error) {
	return ask[actors.SnapshotResult](ctx, r, &actors.TakeSnapshot{})
}

// ask sends msg to the world and unwraps the Reply. Business rejections come
// back as the app error the world produced.
func ask[T any](ctx context.Context, r *Runtime, msg actors.WorldMessage) (T, error) {
	var zero T
	if r == nil {
		return zero, &RuntimeError{Code: transport.SystemError, Message: "actor runtime not initialised"}
	}
	res, err := r.request(r.manager, msg, r.timeoutFromContext(ctx))
	if err != nil {
		return zero, err
	}
	reply, ok := res.(actors.Reply)
	if !ok {
		return zero, &RuntimeError{Code: transport.SystemError, Message: "unexpected world reply"}
	}
	if reply.Err != nil {
		return zero, reply.Err
	}
	if reply.Data == nil {
		return zero, nil
	}
	out, ok := reply.Data.(T)
	if !ok {
		return zero, &RuntimeError{Code: transport.SystemError, Message: "unexpected world reply payload"}
	}
	return out, nil
}

func (r *Runtime) request(pid *protoactor.PID, msg any, timeout time.Duration) (any, error) {
	if r == nil || r.root == nil {
		return nil, &RuntimeError{Code: transport.SystemError, Message: "actor runtime not initialised"}
	}
	if pid == nil {
		return nil, &RuntimeError{Code: transport.SystemError, Message: "actor pid is nil"}
	}

	future := r.root.RequestFuture(pid, msg, timeout)
	res, err := future.Result()
	if err != nil {
		code := transport.SystemError
		if errors.Is(err, protoactor.ErrTimeout) {
			code = transport.Unavailable
		}
		return nil, &RuntimeError{
			Code:    code,
			Message: "world actor request failed",
			Cause:   err,
		}
	}
	return res, nil
}

func (r *Runtime) timeoutFromContext(ctx context.Context) time.Duration {
	if r == nil || r.timeout <= 0 {
		return defaultAskTimeout
	}
	if ctx == nil {
		return r.timeout
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		return r.timeout
	}
	remain := time.Until(deadline)
	if remain <= 0 {
		return time.Millisecond
	}
	if remain < r.timeout {
		return remain
	}
	return r.timeout
}

func CodeFromError(err error) int {
	if err == nil {
		return transport.OK
	}
	var re *RuntimeError
	if errors.As(err, &re) && re != nil && re.Code != 0 {
		return re.Code
	}
	return transport.SystemError
}
