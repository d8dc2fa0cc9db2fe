package dc

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Chinaskijl/stttg/internal/world/app/port"
	"github.com/Chinaskijl/stttg/internal/world/entity"
	"github.com/Chinaskijl/stttg/modules/kit/logx"

	"go.uber.org/zap"
)

const (
	defaultFlushEvery = 3000 * time.Millisecond
	retryBackoff      = 200 * time.Millisecond
)

// GameStateDC writes dirty game-state snapshots to the repository from a
// background goroutine. Only the newest pending snapshot is kept.
type GameStateDC struct {
	repo       port.GameStateRepository
	entity     *entity.World
	flushEvery time.Duration
	log        logx.Logger

	mu      sync.Mutex
	pending *entity.GameStatePersistSnapshot
	version uint64
	closed  bool
	failed  int

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
}

func NewGameStateDC(repo port.GameStateRepository, world *entity.World, flushEvery time.Duration, l logx.Logger) *GameStateDC {
	if flushEvery <= 0 {
		flushEvery = defaultFlushEvery
	}
	if l == nil {
		l = logx.Nop()
	}
	d := &GameStateDC{
		repo:       repo,
		entity:     world,
		flushEvery: flushEvery,
		log:        l,
		wake:       make(chan struct{}, 1),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	go d.writerLoop()
	return d
}

// Flush enqueues the current state when it changed since the last flush.
// It never blocks on I/O.
func (d *GameStateDC) Flush(ctx context.Context) error {
	_ = ctx
	if !d.IsDirty() {
		return nil
	}
	if d.repo == nil {
		return errors.New("game state repository is nil")
	}
	s, ok := d.buildNextSnapshot()
	if !ok {
		return nil
	}
	d.enqueueLatest(s)
	return nil
}

func (d *GameStateDC) IsDirty() bool {
	if d.entity == nil {
		return false
	}
	return d.entity.Dirty()
}

func (d *GameStateDC) Entity() *entity.World {
	return d.entity
}

func (d *GameStateDC) FlushEvery() time.Duration {
	return d.flushEvery
}

// Failures counts save attempts that returned an error.
func (d *GameStateDC) Failures() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.failed
}

// Close flushes, then waits for the writer to drain or ctx to end.
func (d *GameStateDC) Close(ctx context.Context) error {
	_ = d.Flush(ctx)

	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.stop)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *GameStateDC) buildNextSnapshot() (*entity.GameStatePersistSnapshot, bool) {
	if d.entity == nil {
		return nil, false
	}
	d.mu.Lock()
	d.version++
	version := d.version
	d.mu.Unlock()

	s, ok := d.entity.BuildPersistSnapshot(version)
	if !ok {
		return nil, false
	}
	d.entity.ClearDirty()
	return s, true
}

func (d *GameStateDC) enqueueLatest(s *entity.GameStatePersistSnapshot) {
	if s == nil {
		return
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	if d.pending == nil || d.pending.Version < s.Version {
		d.pending = s
	}
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *GameStateDC) popPending() *entity.GameStatePersistSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.pending
	d.pending = nil
	return s
}

func (d *GameStateDC) requeueOnError(s *entity.GameStatePersistSnapshot) bool {
	d.mu.Lock()
	d.failed++
	if d.closed {
		d.mu.Unlock()
		return false
	}
	if d.pending == nil || d.pending.Version < s.Version {
		d.pending = s
	}
	d.mu.Unlock()
	return true
}

func (d *GameStateDC) writerLoop() {
	defer close(d.done)

	for {
		select {
		case <-d.wake:
			d.consumePending()
		case <-d.stop:
			d.consumePending()
			return
		}
	}
}

func (d *GameStateDC) consumePending() {
	for {
		s := d.popPending()
		if s == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := d.repo.Save(ctx, s)
		cancel()
		if err == nil {
			continue
		}
		d.log.Error("game state save failed", zap.Uint64("version", s.Version), zap.Error(err))
		// a newer snapshot, if any, replaces this one
		if !d.requeueOnError(s) {
			return
		}
		select {
		case <-time.After(retryBackoff):
		case <-d.stop:
		}
	}
}
