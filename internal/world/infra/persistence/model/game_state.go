package model

import (
	"encoding/json"
	"time"

	"github.com/Chinaskijl/stttg/internal/shared/gameconfig/resource"
	"github.com/Chinaskijl/stttg/internal/world/entity"
)

// SlotID is the key of the single game-state slot in every backend.
const SlotID = 1

// GameStateDoc is the mongodb document.
type GameStateDoc struct {
	ID         int                `bson:"_id"`
	Version    uint64             `bson:"version"`
	Resources  map[string]float64 `bson:"resources"`
	Population float64            `bson:"population"`
	Military   float64            `bson:"military"`
	SavedAt    time.Time          `bson:"saved_at"`
}

// GameStateRow is the gorm (mysql) and sqlx (sqlite) row.
type GameStateRow struct {
	ID         uint32    `gorm:"column:id;type:int UNSIGNED;primaryKey;not null;" db:"id"`
	Version    uint64    `gorm:"column:version;type:bigint UNSIGNED;not null;" db:"version"`
	Resources  string    `gorm:"column:resources;type:text;not null;" db:"resources"` // JSON object keyed by resource
	Population float64   `gorm:"column:population;not null;" db:"population"`
	Military   float64   `gorm:"column:military;not null;" db:"military"`
	SavedAt    time.Time `gorm:"column:saved_at;type:datetime(3);not null;" db:"saved_at"`
}

func (m *GameStateRow) TableName() string {
	return "game_state"
}

// FileDoc is the on-disk JSON slot.
type FileDoc struct {
	Version   uint64           `json:"version"`
	SavedAt   time.Time        `json:"savedAt"`
	GameState entity.GameState `json:"gameState"`
}

func SnapshotToDoc(s *entity.GameStatePersistSnapshot) GameStateDoc {
	return GameStateDoc{
		ID:         SlotID,
		Version:    s.Version,
		Resources:  s.State.Resources.ToMap(false),
		Population: s.State.Population,
		Military:   s.State.Military,
		SavedAt:    s.SavedAt,
	}
}

func DocToState(d GameStateDoc) (*entity.GameState, error) {
	rs, err := resource.FromMap(d.Resources)
	if err != nil {
		return nil, err
	}
	return &entity.GameState{Resources: rs, Population: d.Population, Military: d.Military}, nil
}

func SnapshotToRow(s *entity.GameStatePersistSnapshot) (GameStateRow, error) {
	raw, err := json.Marshal(s.State.Resources)
	if err != nil {
		return GameStateRow{}, err
	}
	return GameStateRow{
		ID:         SlotID,
		Version:    s.Version,
		Resources:  string(raw),
		Population: s.State.Population,
		Military:   s.State.Military,
		SavedAt:    s.SavedAt.UTC(),
	}, nil
}

func RowToState(r GameStateRow) (*entity.GameState, error) {
	var rs resource.Resources
	if err := json.Unmarshal([]byte(r.Resources), &rs); err != nil {
		return nil, err
	}
	return &entity.GameState{Resources: rs, Population: r.Population, Military: r.Military}, nil
}
