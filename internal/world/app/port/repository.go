package port

import (
	"context"

	"github.com/Chinaskijl/stttg/internal/world/entity"
)

// GameStateRepository is the single durable slot of the aggregate game
// state. Load returns (nil, nil) when the slot is empty.
type GameStateRepository interface {
	Load(ctx context.Context) (*entity.GameState, error)
	Save(ctx context.Context, s *entity.GameStatePersistSnapshot) error
}
