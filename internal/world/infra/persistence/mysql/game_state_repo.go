package mysql

import (
	"context"
	"errors"

	"github.com/Chinaskijl/stttg/internal/world/entity"
	"github.com/Chinaskijl/stttg/internal/world/errs"
	"github.com/Chinaskijl/stttg/internal/world/infra/persistence/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	OpMigrate = "repo.gamestate.mysql.Migrate"
	OpLoad    = "repo.gamestate.mysql.Load"
	OpSave    = "repo.gamestate.mysql.Save"
)

type GameStateRepository struct {
	db *gorm.DB
}

func NewGameStateRepository(db *gorm.DB) (*GameStateRepository, error) {
	if err := db.AutoMigrate(&model.GameStateRow{}); err != nil {
		return nil, errs.Wrap(OpMigrate, errs.KindInfra, err, nil)
	}
	return &GameStateRepository{db: db}, nil
}

func (r *GameStateRepository) WithTx(tx *gorm.DB) *GameStateRepository {
	return &GameStateRepository{db: tx}
}

func (r *GameStateRepository) Load(ctx context.Context) (*entity.GameState, error) {
	var row model.GameStateRow
	err := r.db.WithContext(ctx).Where("id = ?", model.SlotID).First(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
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
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"version", "resources", "population", "military", "saved_at"}),
	}).Create(&row).Error
	if err != nil {
		return errs.Wrap(OpSave, errs.KindInfra, err, map[string]any{"version": s.Version})
	}
	return nil
}
