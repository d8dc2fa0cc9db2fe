package actors

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/Chinaskijl/stttg/internal/world/app"
	"github.com/Chinaskijl/stttg/internal/world/dc"
	"github.com/Chinaskijl/stttg/internal/world/entity"
	"github.com/Chinaskijl/stttg/internal/world/infra/snapshot"
	"github.com/Chinaskijl/stttg/internal/world/service/market"
	"github.com/Chinaskijl/stttg/internal/world/service/opponent"
	"github.com/Chinaskijl/stttg/internal/world/service/settlement"
	"github.com/Chinaskijl/stttg/internal/world/service/sim"
	"github.com/Chinaskijl/stttg/internal/world/service/territory"
	"github.com/Chinaskijl/stttg/internal/world/store"
	"github.com/Chinaskijl/stttg/modules/kit/logx"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

type State int

const (
	None State = iota
	Init
	Online
	Offline
	Stopping
)

// Broadcaster pushes feed events to every viewer.
type Broadcaster interface {
	Broadcast(v any) bool
}

type HealthReporter interface {
	SetServing(serving bool)
}

// World is everything the actor owns. None of it is safe for concurrent
// use; only the actor touches it once spawned.
type World struct {
	Store      *store.Store
	DC         *dc.GameStateDC
	Engine     *sim.Engine
	Settlement *settlement.Service
	Market     *market.Market
	Territory  *territory.Service
	Opponent   *opponent.Opponent
}

type Options struct {
	TickEvery   time.Duration
	AIEvery     time.Duration
	MarketEvery time.Duration
	SnapshotDir string
	Now         func() time.Time
	Feed        Broadcaster
	Health      HealthReporter
	Log         logx.Logger
}

type WorldActor struct {
	state      State
	world      World
	opts       Options
	log        logx.Logger
	dispatcher *Dispatcher
	loopStop   chan struct{}
	tick       uint64
}

type tickMsg struct{}

func (tickMsg) NotInfluenceReceiveTimeout() {}

type aiTickMsg struct{}

func (aiTickMsg) NotInfluenceReceiveTimeout() {}

type marketTickMsg struct{}

func (marketTickMsg) NotInfluenceReceiveTimeout() {}

type flushTick struct{}

func (flushTick) NotInfluenceReceiveTimeout() {}

func NewWorldActor(w World, opts Options) *WorldActor {
	if opts.Log == nil {
		opts.Log = logx.Nop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &WorldActor{
		state:      None,
		world:      w,
		opts:       opts,
		log:        opts.Log,
		dispatcher: NewDispatcher(opts.Log),
	}
}

func (p *WorldActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		p.state = Init
		p.init(ctx)
		return
	case *actor.Stopping:
		p.stopLoops()
		p.setServing(false)
		if p.opts.SnapshotDir != "" {
			if _, err := p.archive(); err != nil {
				p.log.Error("world archive on shutdown failed", zap.Error(err))
			}
		}
		if p.world.DC != nil {
			closeCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := p.world.DC.Close(closeCtx); err != nil {
				p.log.Error("game state dc close failed", zap.Error(err))
			}
		}
		p.state = Stopping
		return
	case *actor.Stopped:
		p.stopLoops()
		p.state = Offline
		return
	case *actor.Restarting:
		p.stopLoops()
		p.setServing(false)
		p.state = Init
		return
	case tickMsg:
		if p.state == Online {
			p.safely("tick", p.onTick)
		}
		return
	case aiTickMsg:
		if p.state == Online {
			p.safely("opponent", p.onOpponent)
		}
		return
	case marketTickMsg:
		if p.state == Online {
			p.safely("market", p.onMarket)
		}
		return
	case flushTick:
		if p.state != Online || p.world.DC == nil {
			return
		}
		if err := p.world.DC.Flush(context.TODO()); err != nil {
			p.log.Error("game state periodic flush failed", zap.Error(err))
		}
		return
	case WorldMessage:
		if msg == nil {
			ctx.Respond(Reply{Err: app.ErrReqParamERR})
			return
		}
		if p.state != Online {
			ctx.Respond(Reply{Err: app.ErrUnavailable})
			return
		}
		p.dispatcher.Dispatch(ctx, p, msg)
	default:
		return
	}
}

func (p *WorldActor) init(ctx actor.Context) {
	if len(p.world.Market.Listings()) == 0 {
		n := p.world.Market.SeedSynthetic()
		p.log.Info("market seeded", zap.Int("listings", n))
	}
	p.state = Online
	p.startLoops(ctx)
	p.setServing(true)
	p.log.Info("world online",
		zap.Int("settlements", len(p.world.Store.List())),
		zap.Duration("tick", p.opts.TickEvery),
	)
}

func (p *WorldActor) now() time.Time {
	return p.opts.Now()
}

func (p *WorldActor) setServing(serving bool) {
	if p.opts.Health != nil {
		p.opts.Health.SetServing(serving)
	}
}

// safely runs one periodic step. A panic is logged and the step skipped;
// the actor keeps its state.
func (p *WorldActor) safely(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			err := app.ErrInternal.WithReason(app.ReasonTickPanic).WithCause(fmt.Errorf("%v", r))
			p.log.Error("world step panicked, skipped",
				zap.String("step", name),
				zap.Uint64("tick", p.tick),
				zap.Error(err),
			)
		}
	}()
	fn()
}

func (p *WorldActor) onTick() {
	p.tick++
	for _, o := range p.world.Territory.ResolveDue(p.now()) {
		p.publish(transferCompleteEvent(o))
	}
	rep := p.world.Engine.Tick(p.world.Store)
	if len(rep.Outcomes) > 0 {
		p.log.Debug("tick",
			zap.Uint64("tick", p.tick),
			zap.Int("settlements", len(rep.Outcomes)),
			zap.Float64("recruited", rep.Recruited),
		)
	}
	p.publishState()
}

func (p *WorldActor) onOpponent() {
	rep := p.world.Opponent.Decide(p.now())
	for _, t := range rep.Attacks {
		p.publish(transferStartEvent(t))
	}
	if rep.Changed() {
		p.publish(CitiesUpdateEvent(p.world.Store.List()))
	}
}

func (p *WorldActor) onMarket() {
	purged, seeded := p.world.Market.Maintain()
	if purged > 0 || seeded > 0 {
		p.log.Info("market maintained", zap.Int("purged", purged), zap.Int("seeded", seeded))
	}
}

func (p *WorldActor) publish(v any) {
	if p.opts.Feed != nil {
		p.opts.Feed.Broadcast(v)
	}
}

func (p *WorldActor) publishState() {
	p.publish(CitiesUpdateEvent(p.world.Store.List()))
	p.publish(GameUpdateEvent(p.world.Store.GameState()))
}

// Archive is the body of a world archive.
type Archive struct {
	Settlements []entity.Settlement  `json:"settlements"`
	GameState   entity.GameState     `json:"gameState"`
	Market      market.Book          `json:"market"`
	Transfers   []territory.Transfer `json:"transfers"`
}

func (p *WorldActor) archive() (SnapshotResult, error) {
	at := p.now()
	path := filepath.Join(p.opts.SnapshotDir, snapshot.FileName(at, p.tick))
	body := Archive{
		Settlements: p.world.Store.List(),
		GameState:   p.world.Store.GameState(),
		Market:      p.world.Market.Book(),
		Transfers:   p.world.Territory.Pending(),
	}
	if err := snapshot.Write(path, snapshot.Header{CreatedAt: at, Tick: p.tick}, body); err != nil {
		return SnapshotResult{}, app.ErrInternal.WithReason(app.ReasonArchiveFail).WithCause(err)
	}
	p.log.Info("world archived", zap.String("path", path), zap.Uint64("tick", p.tick))
	return SnapshotResult{Path: path, Tick: p.tick}, nil
}

func (p *WorldActor) startLoops(ctx actor.Context) {
	if p.loopStop != nil {
		return
	}
	p.loopStop = make(chan struct{})
	self := ctx.Self()
	root := ctx.ActorSystem().Root

	every := func(interval time.Duration, msg any) {
		if interval <= 0 {
			return
		}
		go func(stop <-chan struct{}) {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					root.Send(self, msg)
				case <-stop:
					return
				}
			}
		}(p.loopStop)
	}
	every(p.opts.TickEvery, tickMsg{})
	every(p.opts.AIEvery, aiTickMsg{})
	every(p.opts.MarketEvery, marketTickMsg{})
	if p.world.DC != nil {
		every(p.world.DC.FlushEvery(), flushTick{})
	}
}

func (p *WorldActor) stopLoops() {
	if p.loopStop == nil {
		return
	}
	close(p.loopStop)
	p.loopStop = nil
}
