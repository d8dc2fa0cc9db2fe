package file

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Chinaskijl/stttg/internal/world/entity"
	"github.com/Chinaskijl/stttg/internal/world/errs"
	"github.com/Chinaskijl/stttg/internal/world/infra/persistence/model"
)

const (
	OpLoad = "repo.gamestate.file.Load"
	OpSave = "repo.gamestate.file.Save"
)

// GameStateRepository stores the slot as one JSON file. Reads are served
// from memory for ttl after the last read or write.
type GameStateRepository struct {
	path string
	ttl  time.Duration
	now  func() time.Time

	mu       sync.Mutex
	cached   *entity.GameState
	cachedAt time.Time
}

func NewGameStateRepository(path string, ttl time.Duration) *GameStateRepository {
	return &GameStateRepository{path: path, ttl: ttl, now: time.Now}
}

func (r *GameStateRepository) Load(ctx context.Context) (*entity.GameState, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cached != nil && r.ttl > 0 && r.now().Sub(r.cachedAt) < r.ttl {
		s := *r.cached
		return &s, nil
	}

	raw, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Wrap(OpLoad, errs.KindInfra, err, map[string]any{"path": r.path})
	}
	var doc model.FileDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errs.Wrap(OpLoad, errs.KindInfra, err, map[string]any{"path": r.path})
	}
	r.remember(doc.GameState)
	s := doc.GameState
	return &s, nil
}

func (r *GameStateRepository) Save(ctx context.Context, s *entity.GameStatePersistSnapshot) error {
	_ = ctx
	if s == nil {
		return nil
	}
	raw, err := json.MarshalIndent(model.FileDoc{Version: s.Version, SavedAt: s.SavedAt, GameState: s.State}, "", "  ")
	if err != nil {
		return errs.Wrap(OpSave, errs.KindInfra, err, map[string]any{"version": s.Version})
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := writeAtomic(r.path, raw); err != nil {
		return errs.Wrap(OpSave, errs.KindInfra, err, map[string]any{"path": r.path, "version": s.Version})
	}
	r.remember(s.State)
	return nil
}

func (r *GameStateRepository) remember(s entity.GameState) {
	r.cached = &s
	r.cachedAt = r.now()
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
