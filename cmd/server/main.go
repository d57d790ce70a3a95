package main

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/feedbackdesk/feedbackdesk-backend/internal/config"
	"github.com/feedbackdesk/feedbackdesk-backend/internal/database"
	"github.com/feedbackdesk/feedbackdesk-backend/internal/middleware"
	"github.com/feedbackdesk/feedbackdesk-backend/internal/routes"
	"github.com/feedbackdesk/feedbackdesk-backend/internal/services"
)

func main() {
	// No .env is fine; everything can come from the environment.
	_ = godotenv.Load()

	cfg := config.Load()

	logger := newLogger(cfg)
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	logger.Info("connecting to PostgreSQL")
	if err := database.ConnectPostgres(cfg.PostgresURI); err != nil {
		logger.Fatal("failed to connect to PostgreSQL", zap.Error(err))
	}
	defer database.DisconnectPostgres()

	logger.Info("connecting to Redis")
	if err := database.ConnectRedis(cfg.RedisURI); err != nil {
		logger.Fatal("failed to connect to Redis", zap.Error(err))
	}
	defer database.DisconnectRedis()

	logger.Info("connecting to MongoDB")
	if err := database.Connect(cfg.MongoURI); err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer database.Disconnect()

	if err := services.EnsureIndexes(context.Background()); err != nil {
		logger.Warn("failed to ensure MongoDB indexes", zap.Error(err))
	}

	if err := services.InitAttachments(cfg); err != nil {
		logger.Fatal("failed to initialize attachment store", zap.Error(err))
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.RateLimitMiddleware)
	if cfg.IsProduction() {
		r.Use(middleware.SecurityHeaders)
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	routes.SetupRoutes(r)

	// Locally stored attachments; Cloudinary-backed deployments never hit this.
	uploadServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(services.Attachments.Dir())))
	r.Get("/uploads/*", uploadServer.ServeHTTP)

	logger.Info("feedbackdesk backend running", zap.String("port", cfg.Port))
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) *zap.Logger {
	if cfg.IsProduction() {
		return zap.Must(zap.NewProduction())
	}
	return zap.Must(zap.NewDevelopment())
}
