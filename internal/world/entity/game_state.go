package entity

import (
	"time"

	"github.com/Chinaskijl/stttg/internal/shared/gameconfig/resource"
)

// GameState is the aggregate ledger shared by the player's settlements.
type GameState struct {
	Resources  Resources `json:"resources"`
	Population float64   `json:"population"`
	Military   float64   `json:"military"`
}

// InitialGameState is the ledger a fresh session starts from.
func InitialGameState() GameState {
	var rs Resources
	rs[resource.Gold] = 500
	rs[resource.Wood] = 500
	rs[resource.Food] = 1000
	rs[resource.Oil] = 500
	return GameState{Resources: rs}
}

type GameStatePersistSnapshot struct {
	Version uint64
	State   GameState
	SavedAt time.Time
}
