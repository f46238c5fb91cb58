package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"surveyassistant/internal/cache"
	"surveyassistant/internal/config"
	"surveyassistant/internal/pkg/logger"
	"surveyassistant/internal/repository"
	"surveyassistant/internal/service"
	"surveyassistant/internal/transport/rest"
	"surveyassistant/internal/transport/ws"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const module = "server"

func main() {
	cfg := config.Load()
	log := logger.NewZapLogger(cfg.LogFilePath, cfg.IsProduction())
	defer log.Sync()

	log.Info(module, "starting", map[string]interface{}{"env": cfg.AppEnv, "port": cfg.HTTPPort})
	ctx := context.Background()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		fatal(log, "failed to connect to MongoDB", err)
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		fatal(log, "failed to ping MongoDB", err)
	}
	log.Info(module, "connected to MongoDB", map[string]interface{}{"db": cfg.MongoDB})
	db := mongoClient.Database(cfg.MongoDB)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr(),
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		fatal(log, "failed to ping Redis", err)
	}
	log.Info(module, "connected to Redis", map[string]interface{}{"addr": cfg.RedisAddr()})

	wsHub := ws.NewHub(log)

	resultRepo := repository.NewResultRepo(db)
	progressCache := cache.NewProgressCache(rdb, cfg.ProgressTTL)

	authSvc := service.NewAuthService(cfg)
	sessionSvc, err := service.NewSessionService(cfg, resultRepo, progressCache, authSvc, log)
	if err != nil {
		fatal(log, "failed to create session service", err)
	}

	// Inject broadcaster (wsHub implements service.Broadcaster)
	sessionSvc.SetBroadcaster(wsHub)

	container := &rest.Container{
		AuthService:    authSvc,
		SessionService: sessionSvc,
		WSHub:          wsHub,
		WSHandler:      ws.NewHandler(wsHub, authSvc, sessionSvc, log),
		CORSOrigins:    cfg.CORSOrigins,
	}
	router := rest.NewRouter(container)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info(module, "listening", map[string]interface{}{"addr": srv.Addr, "host_user": cfg.HostUsername})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(log, "listen failed", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info(module, "shutting down", nil)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(module, "forced shutdown", map[string]interface{}{"error": err.Error()})
	}

	log.Info(module, "server exited", nil)
}

func fatal(log logger.ILogger, message string, err error) {
	log.Error(module, message, map[string]interface{}{"error": err.Error()})
	_ = log.Sync()
	os.Exit(1)
}
