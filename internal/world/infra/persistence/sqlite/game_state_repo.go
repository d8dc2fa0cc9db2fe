package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Chinaskijl/stttg/internal/world/entity"
	"github.com/Chinaskijl/stttg/internal/world/errs"
	"github.com/Chinaskijl/stttg/internal/world/infra/persistence/model"

	"github.com/jmoiron/sqlx"
)

const (
	OpMigrate = "repo.gamestate.sqlite.Migrate"
	OpLoad    = "repo.gamestate.sqlite.Load"
	OpSave    = "repo.gamestate.sqlite.Save"
)

const schema = `
CREATE TABLE IF NOT EXISTS game_state (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	version INTEGER NOT NULL,
	resources TEXT NOT NULL,
	population REAL NOT NULL,
	military REAL NOT NULL,
	saved_at TIMESTAMP NOT NULL
);
`

type GameStateRepository struct {
	db *sqlx.DB
}

func NewGameStateRepository(db *sqlx.DB) (*GameStateRepository, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, errs.Wrap(OpMigrate, errs.KindInfra, err, nil)
	}
	return &GameStateRepository{db: db}, nil
}

func (r *GameStateRepository) Load(ctx context.Context) (*entity.GameState, error) {
	var row model.GameStateRow
	err := r.db.GetContext(ctx, &row,
		`SELECT id, version, resources, population, military FROM game_state WHERE id = ?`, model.SlotID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, errs.Wrap(OpLoad, errs.KindInfra, err, nil)
	}
	st, err := model.RowToState(row)
	if err != nil {
		return nil, errs.Wrap(OpLoad, errs.KindInfra, err, map[string]any{"version": row.Version})
	}
	return st, nil
}

func (r *GameStateRepository) Save(ctx context.Context, s *entity.GameStatePersistSnapshot) error {
	if s == nil {
		return nil
	}
	row, err := model.SnapshotToRow(s)
	if err != nil {
		return errs.Wrap(OpSave, errs.KindInfra, err, map[string]any{"version": s.Version})
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errs.Wrap(OpSave, errs.KindInfra, err, nil)
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx, `
INSERT INTO game_state (id, version, resources, population, military, saved_at)
VALUES (:id, :version, :resources, :population, :military, :saved_at)
ON CONFLICT(id) DO UPDATE SET
	version = excluded.version,
	resources = excluded.resources,
	population = excluded.population,
	military = excluded.military,
	saved_at = excluded.saved_at`, row)
	if err != nil {
		return errs.Wrap(OpSave, errs.KindInfra, err, map[string]any{"version": s.Version})
	}
	if err := tx.Commit(); err != nil {
		return errs.Wrap(OpSave, errs.KindInfra, err, map[string]any{"version": s.Version})
	}
	return nil
}
