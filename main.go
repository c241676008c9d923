package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/thanhkt275/RMS-BE-sub001/internal/broadcast"
	"github.com/thanhkt275/RMS-BE-sub001/internal/config"
	"github.com/thanhkt275/RMS-BE-sub001/internal/database/db_client"
	"github.com/thanhkt275/RMS-BE-sub001/internal/display"
	"github.com/thanhkt275/RMS-BE-sub001/internal/http/http_server"
	"github.com/thanhkt275/RMS-BE-sub001/internal/rankings"
	"github.com/thanhkt275/RMS-BE-sub001/internal/redis/redis_client"
	"github.com/thanhkt275/RMS-BE-sub001/internal/scores"
	"github.com/thanhkt275/RMS-BE-sub001/internal/scores/scorestore"
	"github.com/thanhkt275/RMS-BE-sub001/internal/timer"
	"github.com/thanhkt275/RMS-BE-sub001/internal/ws"
)

var (
	Log, _ = zap.NewDevelopment()
)

func main() {
	defer Log.Sync()
	zap.ReplaceGlobals(Log)

	// 1. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		Log.Fatal("Failed to load configuration", zap.Error(err))
	}
	Log.Debug("Configuration loaded successfully", zap.Any("config", cfg))

	// 2. Context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	// 3. Redis (display-settings replay store)
	redisClient, err := redis_client.NewRedisClient(cfg.RedisHost, int(cfg.RedisPort))
	if err != nil {
		Log.Fatal("Failed to create Redis client", zap.Error(err))
	}
	defer redisClient.Close()
	Log.Debug("Redis client created successfully")

	// 4. Postgres db client (match-score persistence collaborator)
	pgDb, err := db_client.Open(cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDb)
	if err != nil {
		Log.Fatal("pg-open", zap.Error(err))
	}
	defer pgDb.Close()

	// 5. Hub + broadcast routing policy
	hub := ws.NewHub()
	displayStore := display.NewRedisStore(redisClient)
	emitter := broadcast.NewEmitter(hub, displayStore)

	// 6. Match timer engine
	timerEngine := timer.NewEngine(emitter)
	defer timerEngine.Shutdown()

	// 7. Score streaming / persistence bridge
	scoreStore := scorestore.New(pgDb)
	bridge := scores.NewBridge(scoreStore, emitter)

	// 8. Ranking relay: the external ranking engine holds this, not the hub.
	rankingRelay := rankings.NewRelay(emitter)

	// 9. WS gateway server
	wsSrv := ws.NewServer(hub, emitter, displayStore, timerEngine, bridge)

	// 10. HTTP + WS server
	httpServer := http_server.NewHttpServer(ctx, cfg.HttpServerPort, wsSrv, rankingRelay)
	if err := httpServer.Start(); err != nil {
		Log.Fatal("Failed to start HTTP server", zap.Error(err))
	}
}
