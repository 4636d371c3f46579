package main

import (
	"net/http"
	"time"

	"antigravity/focus/internal/auth"
	"antigravity/focus/internal/config"
	"antigravity/focus/internal/events"
	"antigravity/focus/internal/handlers"
	"antigravity/focus/internal/leveling"
	"antigravity/focus/internal/metrics"
	"antigravity/focus/internal/models"
	"antigravity/focus/internal/repositories"
	"antigravity/focus/internal/routers"
	"antigravity/focus/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	connectTimeout = 30 * time.Second
	retryInterval  = 2 * time.Second
)

// seams for tests
var (
	gormOpen = func(dsn string) (*gorm.DB, error) {
		if dsn == "" {
			// local development fallback
			return gorm.Open(sqlite.Open("focus.db"), &gorm.Config{})
		}
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}
	sleep = time.Sleep
)

func connectWithRetry(dsn string, timeout time.Duration, logger *zap.Logger) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := gormOpen(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, err
		}
		logger.Warn("database not ready, retrying", zap.Error(err))
		sleep(retryInterval)
	}
}

func newRouter(cfg *config.Config, db *gorm.DB, notifier services.Notifier, logger *zap.Logger) *chi.Mux {
	codec := auth.NewCodec(cfg.JWTSecret, cfg.TokenLifetime)
	resolver := auth.NewResolver(codec)

	userRepo := &repositories.UserRepository{DB: db}
	taskRepo := &repositories.TaskRepository{DB: db}
	levelRepo := &repositories.LevelRepository{DB: db}
	engine := leveling.NewEngine(time.Now().UnixNano())

	accounts := services.NewAccountService(userRepo, codec)
	tasks := services.NewTaskService(taskRepo, levelRepo, engine, notifier, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, middleware.Timeout(60*time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))
	r.Use(metrics.Middleware("focus"))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	routers.AuthRoutes(r, handlers.NewAuthHandler(accounts))
	routers.FocusRoutes(r, resolver, handlers.NewFocusHandler(tasks))
	return r
}

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	db, err := connectWithRetry(cfg.DatabaseURL, connectTimeout, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := db.AutoMigrate(&models.User{}, &models.FocusTask{}, &models.UserLevel{}); err != nil {
		logger.Fatal("failed to migrate schema", zap.Error(err))
	}

	var notifier services.Notifier
	if cfg.RedisAddr != "" {
		publisher := events.NewPublisher(cfg.RedisAddr, logger)
		defer publisher.Close()
		notifier = publisher
	}

	r := newRouter(cfg, db, notifier, logger)

	addr := ":" + cfg.Port
	logger.Info("focus service listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
