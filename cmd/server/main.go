package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Skufu/heartcheck/internal/classifier"
	"github.com/Skufu/heartcheck/internal/logging"
	"github.com/Skufu/heartcheck/internal/predict"
	"github.com/Skufu/heartcheck/internal/report"
)

type HealthChecker interface {
	Ping(ctx context.Context) error
}

const (
	modelSourceFile     = "file"
	modelSourcePostgres = "postgres"
)

type Config struct {
	Port        string
	DatabaseURL string
	EnableDB    bool
	ModelSource string
	ModelPath   string
	ModelName   string
	ReportDir   string
	LogLevel    string
}

// NeedsDB reports whether a database connection must be opened at start.
func (c *Config) NeedsDB() bool {
	return c.EnableDB || c.ModelSource == modelSourcePostgres
}

func main() {
	gin.SetMode(getEnv("GIN_MODE", "release"))

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	var db HealthChecker
	var pool *pgxpool.Pool
	if cfg.NeedsDB() {
		pool, err = connectDB(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("database connection failed", zap.Error(err))
		}
		defer pool.Close()
		db = pool
	}

	model, err := loadModel(ctx, cfg, pool)
	if err != nil {
		logger.Fatal("model load failed", zap.Error(err))
	}
	logger.Info("model loaded", zap.String("model", model.Name()), zap.String("source", cfg.ModelSource))

	if err := os.MkdirAll(cfg.ReportDir, 0o700); err != nil {
		logger.Fatal("report dir", zap.String("dir", cfg.ReportDir), zap.Error(err))
	}
	assembler := report.NewAssembler(cfg.ReportDir, report.PDF{Compress: true}, report.XLSX{})
	svc := predict.NewService(model, assembler, logger)

	router := setupRouter(db, svc, logger)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	logger.Info("server listening", zap.String("port", cfg.Port), zap.String("reports", cfg.ReportDir))
	waitForShutdown(server, logger)
}

func loadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		EnableDB:    strings.EqualFold(getEnv("ENABLE_DB", "false"), "true"),
		ModelSource: strings.ToLower(getEnv("MODEL_SOURCE", modelSourceFile)),
		ModelPath:   getEnv("MODEL_PATH", filepath.Join("models", "heart_disease_model.yaml")),
		ModelName:   getEnv("MODEL_NAME", "heart-disease-logreg"),
		ReportDir:   getEnv("REPORT_DIR", filepath.Join(os.TempDir(), "heartcheck-reports")),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}

	switch cfg.ModelSource {
	case modelSourceFile, modelSourcePostgres:
	default:
		return nil, fmt.Errorf("MODEL_SOURCE must be %q or %q, got %q", modelSourceFile, modelSourcePostgres, cfg.ModelSource)
	}

	if cfg.EnableDB && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when ENABLE_DB=true")
	}
	if cfg.ModelSource == modelSourcePostgres && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when MODEL_SOURCE=postgres")
	}

	return cfg, nil
}

func connectDB(ctx context.Context, url string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return pool, nil
}

func loadModel(ctx context.Context, cfg *Config, db classifier.RowQuerier) (*classifier.Model, error) {
	if cfg.ModelSource == modelSourcePostgres {
		loadCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return classifier.LoadPostgres(loadCtx, db, cfg.ModelName)
	}
	return classifier.LoadFile(cfg.ModelPath)
}

func waitForShutdown(server *http.Server, logger *zap.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
