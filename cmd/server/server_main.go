package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	nethttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Chinaskijl/stttg/internal/shared/gameconfig/building"
	"github.com/Chinaskijl/stttg/internal/shared/gameconfig/region"
	"github.com/Chinaskijl/stttg/internal/shared/infrastructure/db"
	sharedmongo "github.com/Chinaskijl/stttg/internal/shared/infrastructure/mongo"
	sharedsqlite "github.com/Chinaskijl/stttg/internal/shared/infrastructure/sqlite"
	"github.com/Chinaskijl/stttg/internal/shared/logs"
	"github.com/Chinaskijl/stttg/internal/shared/serverconfig"
	"github.com/Chinaskijl/stttg/internal/shared/transport/grpc"
	transporthttp "github.com/Chinaskijl/stttg/internal/shared/transport/http"
	"github.com/Chinaskijl/stttg/internal/shared/transport/ws"
	"github.com/Chinaskijl/stttg/internal/shared/utils"
	worldactor "github.com/Chinaskijl/stttg/internal/world/actor"
	worldactors "github.com/Chinaskijl/stttg/internal/world/actors"
	"github.com/Chinaskijl/stttg/internal/world/app/port"
	"github.com/Chinaskijl/stttg/internal/world/dc"
	"github.com/Chinaskijl/stttg/internal/world/entity"
	worldfile "github.com/Chinaskijl/stttg/internal/world/infra/persistence/file"
	worldmemory "github.com/Chinaskijl/stttg/internal/world/infra/persistence/memory"
	worldmongo "github.com/Chinaskijl/stttg/internal/world/infra/persistence/mongodb"
	worldmysql "github.com/Chinaskijl/stttg/internal/world/infra/persistence/mysql"
	worldsqlite "github.com/Chinaskijl/stttg/internal/world/infra/persistence/sqlite"
	"github.com/Chinaskijl/stttg/internal/world/interfaces"
	"github.com/Chinaskijl/stttg/internal/world/service/market"
	"github.com/Chinaskijl/stttg/internal/world/service/opponent"
	"github.com/Chinaskijl/stttg/internal/world/service/settlement"
	"github.com/Chinaskijl/stttg/internal/world/service/sim"
	"github.com/Chinaskijl/stttg/internal/world/service/territory"
	"github.com/Chinaskijl/stttg/internal/world/store"
	"github.com/Chinaskijl/stttg/modules/kit/logx"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const healthService = "stttg.World"

func main() {
	cfgPath := flag.String("config", "", "path to conf.yml")
	flag.Parse()

	serverconfig.Load(*cfgPath)
	if err := logs.Init("stttg", serverconfig.Conf.Log); err != nil {
		panic(err)
	}
	defer logs.Sync()
	logs.Info("conf", zap.Any("conf", serverconfig.Conf))

	baseLogger := logx.NewZapLogger(logs.Logger())
	gameConf := serverconfig.Conf.Game

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	catalog := building.Default()
	if gameConf.BuildingsFile != "" {
		c, err := building.Load(gameConf.BuildingsFile)
		if err != nil {
			logs.Fatal("load building catalog failed", zap.String("path", gameConf.BuildingsFile), zap.Error(err))
		}
		catalog = c
	}
	seeds := region.Default()
	if gameConf.RegionsFile != "" {
		s, err := region.Load(gameConf.RegionsFile)
		if err != nil {
			logs.Fatal("load regions failed", zap.String("path", gameConf.RegionsFile), zap.Error(err))
		}
		seeds = s
	}

	repo, closeRepo, err := openRepository(ctx, serverconfig.Conf)
	if err != nil {
		logs.Fatal("open game state repository failed", zap.String("driver", serverconfig.Conf.Persistence.Driver), zap.Error(err))
	}
	defer closeRepo()

	settlements := store.BuildSettlements(ctx, seeds, catalog, region.NewSyntheticBoundaries(), baseLogger)
	world := entity.NewWorld(settlements, entity.InitialGameState())
	st := store.New(world, catalog, repo, baseLogger)
	if gameConf.ShouldReset() {
		if err := st.Reset(ctx); err != nil {
			logs.Error("reset game state failed", zap.Error(err))
		}
	} else if err := st.Load(ctx); err != nil {
		logs.Error("load game state failed, starting from the initial state", zap.Error(err))
	}

	ids, err := utils.DefaultSnowflake()
	if err != nil {
		logs.Fatal("init snowflake failed", zap.Error(err))
	}
	seed := gameConf.MarketSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	terr := territory.New(st, territory.Config{
		SpeedKmh:    gameConf.ArmySpeedKmh,
		MinTravel:   gameConf.TransferMin(),
		MaxTravel:   gameConf.TransferMax(),
		IDGenerator: ids,
	}, baseLogger)
	w := worldactors.World{
		Store:      st,
		DC:         dc.NewGameStateDC(repo, world, gameConf.Flush(), baseLogger),
		Engine:     sim.NewEngine(catalog, baseLogger),
		Settlement: settlement.New(st, catalog, baseLogger),
		Market:     market.New(st, baseLogger, market.WithIDs(ids), market.WithRand(rand.New(rand.NewSource(seed)))),
		Territory:  terr,
		Opponent:   opponent.New(st, catalog, terr, baseLogger),
	}

	hub := ws.NewHub(baseLogger)
	go hub.Run(ctx)

	opts := worldactors.Options{
		TickEvery:   gameConf.Tick(),
		AIEvery:     gameConf.AIInterval(),
		MarketEvery: gameConf.MarketMaintenance(),
		SnapshotDir: gameConf.SnapshotDir,
		Feed:        hub,
		Log:         baseLogger,
	}
	var healthServer *grpc.HealthServer
	if grpcConf := serverconfig.Conf.GRPCServer; grpcConf.Port > 0 {
		healthServer = grpc.NewHealthServer(addr(grpcConf.Host, grpcConf.Port), healthService, baseLogger)
		opts.Health = healthServer
	}
	runtime := worldactor.NewRuntime(w, opts, gameConf.AskTimeout())

	module := interfaces.New(runtime, baseLogger)
	wsRouter := ws.NewRouter(baseLogger)
	wsModules := []ws.Registrar{
		module,
	}
	for _, m := range wsModules {
		m.WsRegister(wsRouter)
	}
	wsServer := ws.NewServer(ctx, wsRouter, hub, baseLogger)
	wsServer.OnConnect(module.OnConnect)

	httpConf := serverconfig.Conf.HTTPServer
	engine := gin.New()
	engine.Use(gin.Recovery())
	httpServer := transporthttp.NewHttpServer(addr(httpConf.Host, httpConf.Port), engine, baseLogger, transporthttp.Options{
		CorsOrigins: httpConf.CorsOrigins,
		RateLimit:   httpConf.RateLimit,
		RateBurst:   httpConf.RateBurst,
	})
	httpModules := []transporthttp.Registrar{
		module,
	}
	for _, m := range httpModules {
		httpServer.Register(m)
	}
	httpServer.Engine().GET("/ws", gin.WrapH(wsServer))

	errCh := make(chan error, 2)
	go func() {
		if err := httpServer.Start(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			errCh <- fmt.Errorf("http server start failed: %w", err)
		}
	}()
	if healthServer != nil {
		go func() {
			if err := healthServer.Serve(); err != nil {
				errCh <- fmt.Errorf("grpc health server failed: %w", err)
			}
		}()
	}
	logs.Info("server started",
		zap.String("http", addr(httpConf.Host, httpConf.Port)),
		zap.Int("settlements", len(settlements)),
		zap.Int("buildings", len(catalog.IDs())),
	)

	select {
	case <-ctx.Done():
		logs.Info("shutdown signal received")
	case err := <-errCh:
		logs.Error("server exited unexpectedly", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
	// the actor archives the world and flushes the ledger while stopping
	runtime.Shutdown()
	if healthServer != nil {
		healthServer.Stop()
	}
	logs.Info("server stopped")
}

func addr(host string, port int) string {
	if host == "" {
		host = "0.0.0.0"
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// openRepository returns the game-state slot for the configured driver and
// the func that releases it.
func openRepository(ctx context.Context, conf serverconfig.Config) (port.GameStateRepository, func(), error) {
	noop := func() {}
	switch conf.Persistence.Driver {
	case "memory":
		return worldmemory.NewGameStateRepository(), noop, nil
	case "file":
		return worldfile.NewGameStateRepository(conf.Persistence.FilePath, conf.Game.StateCacheTTL()), noop, nil
	case "sqlite":
		sqlDB, err := sharedsqlite.Open(conf.SQLite)
		if err != nil {
			return nil, nil, err
		}
		repo, err := worldsqlite.NewGameStateRepository(sqlDB)
		if err != nil {
			_ = sqlDB.Close()
			return nil, nil, err
		}
		return repo, func() { _ = sqlDB.Close() }, nil
	case "mysql":
		gormDB, err := db.Open(conf.MySQL)
		if err != nil {
			return nil, nil, err
		}
		repo, err := worldmysql.NewGameStateRepository(gormDB)
		if err != nil {
			return nil, nil, err
		}
		closeDB := func() {
			if sqlDB, err := gormDB.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return repo, closeDB, nil
	case "mongodb":
		client, database, err := sharedmongo.Open(ctx, conf.MongoDB, logs.Logger())
		if err != nil {
			return nil, nil, err
		}
		closeClient := func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_ = client.Disconnect(disconnectCtx)
		}
		return worldmongo.NewGameStateRepository(client.Database(database)), closeClient, nil
	default:
		return nil, nil, fmt.Errorf("unknown persistence driver %q", conf.Persistence.Driver)
	}
}
