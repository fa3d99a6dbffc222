package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	api "github.com/educontent/examforge/internal/api/http"
	"github.com/educontent/examforge/internal/catalog"
	"github.com/educontent/examforge/internal/config"
	"github.com/educontent/examforge/internal/db"
	"github.com/educontent/examforge/internal/recognize"
	"github.com/educontent/examforge/internal/render"
	"github.com/educontent/examforge/internal/storage"
	"github.com/educontent/examforge/internal/tagging"
	"github.com/educontent/examforge/internal/variant"
)

func main() {
	cfg := config.FromEnv()

	logger := newLogger(cfg.LogMode)
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}

	blobs, err := storage.NewFSStore(cfg.UploadBasePath)
	if err != nil {
		logger.Fatal("blob store", zap.Error(err))
	}

	catalogStore := catalog.NewSQLStore(dbh, logger)
	variantStore := variant.NewSQLStore(dbh, logger)
	selector := variant.NewSelector(logger)
	generator := variant.NewGenerator(dbh, selector, logger,
		variant.WithDefaults(
			variant.DifficultyRange{Min: cfg.DefaultDifficultyMin, Max: cfg.DefaultDifficultyMax},
			cfg.DefaultDurationMin))

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	api.Mount(r, api.Deps{
		Catalog:    catalogStore,
		Variants:   variantStore,
		Generator:  generator,
		Suggester:  tagging.Heuristic{},
		Recognizer: recognize.Stub{},
		Renderer:   &render.TextRenderer{},
		Blobs:      blobs,
	})

	logger.Info("listening", zap.String("addr", cfg.HTTPAddr), zap.String("db", cfg.DBDriver))
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func newLogger(mode string) *zap.Logger {
	var logger *zap.Logger
	var err error
	switch mode {
	case "prod", "production":
		logger, err = zap.NewProduction()
	default:
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	return logger
}
