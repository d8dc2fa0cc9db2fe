package memory

import (
	"context"
	"sync"

	"github.com/Chinaskijl/stttg/internal/world/entity"
)

// GameStateRepository keeps the slot in process memory.
type GameStateRepository struct {
	mu      sync.Mutex
	state   *entity.GameState
	version uint64
	saves   int
	failErr error
}

func NewGameStateRepository() *GameStateRepository {
	return &GameStateRepository{}
}

func (r *GameStateRepository) Load(ctx context.Context) (*entity.GameState, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return nil, r.failErr
	}
	if r.state == nil {
		return nil, nil
	}
	s := *r.state
	return &s, nil
}

func (r *GameStateRepository) Save(ctx context.Context, s *entity.GameStatePersistSnapshot) error {
	_ = ctx
	if s == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return r.failErr
	}
	st := s.State
	r.state = &st
	r.version = s.Version
	r.saves++
	return nil
}

// FailWith makes every later call return err; nil heals the repository.
func (r *GameStateRepository) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failErr = err
}

func (r *GameStateRepository) Saves() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

func (r *GameStateRepository) Version() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.version
}
