package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/virtualstage/backlot/internal/ai"
	"github.com/virtualstage/backlot/internal/api"
	"github.com/virtualstage/backlot/internal/app"
	"github.com/virtualstage/backlot/internal/app/maintenance"
	iauth "github.com/virtualstage/backlot/internal/auth"
	"github.com/virtualstage/backlot/internal/cache"
	"github.com/virtualstage/backlot/internal/database"
	"github.com/virtualstage/backlot/internal/middleware"
	"github.com/virtualstage/backlot/internal/monitoring"
	"github.com/virtualstage/backlot/internal/monitoring/checks"
	"github.com/virtualstage/backlot/internal/realtime"
	"github.com/virtualstage/backlot/internal/services"
	"github.com/virtualstage/backlot/internal/storage"
	"github.com/virtualstage/backlot/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("backlot-server", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)

	var configPath string
	fs.StringVar(&configPath, "config", "", "Path to configuration directory or file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadApplicationConfig(configPath)
	if err != nil {
		return err
	}

	generated, err := app.ApplyRuntimeDefaults(cfg)
	if err != nil {
		return err
	}

	if err := app.ConfigureLogging(cfg.Server.LogLevel); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	defer logger.Sync() // best effort

	log := logger.WithModule("bootstrap")
	for key := range generated {
		log.Info("generated runtime secret", zap.String("key", key))
	}

	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := initialiseDatabase(cfg)
	if err != nil {
		return err
	}
	defer closeDatabase(db, log)

	dbStore := cache.NewDatabaseStore(db)

	var redisStore *cache.RedisStore
	if cfg.Cache.Redis.Enabled {
		store, redisErr := cache.NewRedisStore(cfg.Cache.RedisClientConfig())
		if redisErr != nil {
			log.Warn("redis unavailable; falling back to database-backed operations", zap.Error(redisErr))
		} else {
			redisStore = store
			log.Info("redis connected", zap.String("addr", cfg.Cache.Redis.Address))
		}
	}

	defer func() {
		if redisStore != nil {
			_ = redisStore.Close()
		}
	}()

	jwtService, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	if err != nil {
		return fmt.Errorf("initialise jwt service: %w", err)
	}

	sessionCfg := cfg.Auth.SessionServiceConfig()
	switch {
	case redisStore != nil:
		sessionCfg.Cache = iauth.NewSessionStoreCache(redisStore)
	default:
		sessionCfg.Cache = iauth.NewSessionStoreCache(dbStore)
	}

	sessionSvc, err := iauth.NewSessionService(db, jwtService, sessionCfg)
	if err != nil {
		return fmt.Errorf("initialise session service: %w", err)
	}

	auditSvc, err := services.NewAuditService(db)
	if err != nil {
		return fmt.Errorf("initialise audit service: %w", err)
	}

	cleaner := maintenance.NewCleaner(db, sessionSvc, auditSvc)
	if err := cleaner.Start(); err != nil {
		return fmt.Errorf("start maintenance jobs: %w", err)
	}
	defer func() {
		stopCtx := cleaner.Stop()
		if err := cleaner.RunOnce(stopCtx); err != nil {
			log.Warn("maintenance shutdown cleanup failed", zap.Error(err))
		}
	}()

	var rateStore middleware.RateStore
	switch {
	case redisStore != nil:
		rateStore = middleware.NewRedisRateStore(redisStore)
	default:
		rateStore = middleware.NewDatabaseRateStore(dbStore)
	}

	hub := realtime.NewHub()

	var parser services.StoryParser
	if cfg.AI.Enabled() {
		client, aiErr := ai.NewClient(cfg.AI.ClientConfig())
		if aiErr != nil {
			return fmt.Errorf("initialise completion client: %w", aiErr)
		}
		parser = ai.NewParser(client)
		log.Info("script analysis enabled", zap.String("model", cfg.AI.Model))
	} else {
		log.Info("script analysis disabled; configure ai.api_key to enable story parsing")
	}

	var media *storage.MediaStore
	if cfg.Storage.S3.Enabled {
		media, err = storage.NewMediaStore(ctx, cfg.Storage.BucketConfig(), logger.WithModule("storage"))
		if err != nil {
			return fmt.Errorf("initialise media store: %w", err)
		}
		log.Info("media storage enabled", zap.String("bucket", cfg.Storage.S3.Bucket))
	}

	health := monitoring.NewHealthManager()
	health.RegisterLiveness(checks.Database(db, 0))
	health.RegisterReadiness(checks.Database(db, 0))
	var redisPinger checks.RedisPinger
	if redisStore != nil {
		redisPinger = redisStore
	}
	health.RegisterReadiness(checks.Redis(redisPinger, cfg.Cache.Redis.Enabled, cfg.Cache.Redis.Timeout))
	health.RegisterReadiness(checks.Realtime(hub))
	health.RegisterReadiness(checks.Maintenance(cleaner, 0))

	router, err := api.NewRouter(db, jwtService, cfg, sessionSvc, api.Deps{
		RateStore: rateStore,
		Hub:       hub,
		Parser:    parser,
		Media:     media,
		Health:    health,
	})
	if err != nil {
		return fmt.Errorf("build api router: %w", err)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	if err, ok := <-serverErr; ok && err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	log.Info("server stopped gracefully")
	return nil
}

func loadApplicationConfig(path string) (*app.Config, error) {
	switch {
	case strings.TrimSpace(path) == "":
		return app.LoadConfig()
	default:
		info, err := os.Stat(path)
		if err == nil {
			if info.IsDir() {
				return app.LoadConfig(path)
			}
			return app.LoadConfig(filepath.Dir(path))
		}
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config path %q does not exist", path)
		}
		return nil, fmt.Errorf("stat config path: %w", err)
	}
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database.ConnectionConfig()
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrateAndSeed(db); err != nil {
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	log := logger.WithModule("database")
	log.Info("database connected", zap.String("driver", dbCfg.Driver))

	return db, nil
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	if db == nil {
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("failed to obtain underlying sql DB for closing", zap.Error(err))
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}
