package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/Chinaskijl/stttg/internal/shared/serverconfig"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"
)

const defaultDatabase = "stttg"

// Open connects and pings. The caller owns Disconnect.
func Open(ctx context.Context, cfg serverconfig.MongoDBConfig, l *zap.Logger) (*mongo.Client, string, error) {
	if cfg.URI == "" {
		return nil, "", errors.New("mongodb uri is empty")
	}
	if l == nil {
		l = zap.NewNop()
	}
	database := cfg.Database
	if database == "" {
		database = defaultDatabase
	}

	timeout := time.Duration(cfg.ConnectTimeoutS) * time.Second
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI).SetConnectTimeout(timeout))
	if err != nil {
		return nil, "", err
	}
	if err = client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, "", err
	}

	l.Info("open mongodb success",
		zap.String("uri", cfg.URI),
		zap.String("database", database),
	)
	return client, database, nil
}
