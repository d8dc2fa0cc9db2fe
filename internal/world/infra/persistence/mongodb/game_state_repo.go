package mongodb

import (
	"context"
	"errors"

	"github.com/Chinaskijl/stttg/internal/world/entity"
	"github.com/Chinaskijl/stttg/internal/world/errs"
	"github.com/Chinaskijl/stttg/internal/world/infra/persistence/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const defaultCollectionName = "game_state"

const (
	OpLoad = "repo.gamestate.mongodb.Load"
	OpSave = "repo.gamestate.mongodb.Save"
)

type GameStateRepository struct {
	coll *mongo.Collection
}

func NewGameStateRepository(db *mongo.Database) *GameStateRepository {
	return &GameStateRepository{
		coll: db.Collection(defaultCollectionName),
	}
}

func (r *GameStateRepository) Load(ctx context.Context) (*entity.GameState, error) {
	if r == nil || r.coll == nil {
		return nil, errors.New("mongodb game_state collection is nil")
	}

	var doc model.GameStateDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": model.SlotID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Wrap(OpLoad, errs.KindInfra, err, nil)
	}
	st, err := model.DocToState(doc)
	if err != nil {
		return nil, errs.Wrap(OpLoad, errs.KindInfra, err, map[string]any{"version": doc.Version})
	}
	return st, nil
}

func (r *GameStateRepository) Save(ctx context.Context, s *entity.GameStatePersistSnapshot) error {
	if s == nil {
		return nil
	}
	if r == nil || r.coll == nil {
		return errors.New("mongodb game_state collection is nil")
	}

	doc := model.SnapshotToDoc(s)
	_, err := r.coll.ReplaceOne(
		ctx,
		bson.M{"_id": doc.ID},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return errs.Wrap(OpSave, errs.KindInfra, err, map[string]any{"version": s.Version})
	}
	return nil
}
