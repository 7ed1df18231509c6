package main

import (
	"context"
	"os"
	"time"

	"book-tracker/backend/internal/analysis"
	"book-tracker/backend/internal/config"
	"book-tracker/backend/internal/handler"
	"book-tracker/backend/internal/middleware"
	"book-tracker/backend/internal/repository"
	"book-tracker/backend/internal/supabase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// coverBucket is the Storage bucket holding cover images.
const coverBucket = "books"

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	logger.Info().Str("env", cfg.Env).Msg("starting book tracker api")

	sb, err := supabase.New(supabase.Config{
		URL:    cfg.SupabaseURL,
		APIKey: cfg.SupabaseKey,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create supabase client")
	}

	genaiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: cfg.GeminiAPIKey,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create genai client")
	}

	repo := repository.NewSupabaseBookRepository(sb)
	analyzer := analysis.NewAnalyzer(analysis.NewGeminiVisionClient(genaiClient, analysis.DefaultModel))

	bookHandler := handler.NewBookHandler(repo)
	authHandler := handler.NewAuthHandler(sb.Auth(), logger)
	uploadHandler := handler.NewUploadHandler(sb.Storage(coverBucket))
	analysisHandler := handler.NewAnalysisHandler(analyzer, logger)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	allowedOrigins := cfg.AllowedOrigins
	if gin.Mode() != gin.ReleaseMode {
		allowedOrigins = append(allowedOrigins, "http://localhost:5173")
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization", middleware.UserIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// The inference call is the only metered upstream; gate it with the
	// daily quota first, then per-IP limiting.
	ipLimiter := middleware.NewIPRateLimiter(rate.Every(2*time.Second), 3)
	dailyQuota := middleware.NewDailyQuota(200)

	r.GET("/health", handler.HandleHealth)
	r.GET("/", handler.HandleRoot)

	api := r.Group("/api")
	{
		authHandler.Register(api.Group("/auth"))

		api.POST("/books/img-upload", uploadHandler.Upload)
		api.POST("/book-analysis/analyze",
			middleware.RateLimit(ipLimiter, dailyQuota, logger),
			analysisHandler.Analyze)

		books := api.Group("/books", middleware.SessionGate(sb.Auth(), logger))
		bookHandler.Register(books)
	}

	logger.Info().Str("port", cfg.Port).Strs("allowed_origins", allowedOrigins).Msg("server ready")
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal().Err(err).Msg("failed to start server")
	}
}
