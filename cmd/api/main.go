package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"

	"plagcheck/internal/config"
	"plagcheck/internal/corpus"
	"plagcheck/internal/database"
	"plagcheck/internal/database/migration"
	"plagcheck/internal/embedding"
	"plagcheck/internal/extract"
	handlers "plagcheck/internal/http/handler"
	"plagcheck/internal/http/middleware"
	"plagcheck/internal/otel"
	"plagcheck/internal/repository/postgres"
	"plagcheck/internal/service"
	"plagcheck/internal/similarity"
	"plagcheck/internal/storage"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	ctx := context.Background()

	// Initialize tracing; degrades to a noop provider when no collector is set
	shutdownTracing, err := otel.Init(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, cfg.Database.Host); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	// Initialize reusable S3-compatible object storage client (MinIO-supported)
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	// Initialize the embedding client and similarity scorer
	embedder, err := embedding.NewClient(cfg.Embedding)
	if err != nil {
		log.Fatalf("failed to initialize embedding client: %v", err)
	}
	scorer := similarity.NewEmbeddingScorer(embedder)

	// Load the reference corpus (built-in unless CORPUS_PATH overrides it)
	corpusText, err := corpus.Load(cfg.CorpusPath)
	if err != nil {
		log.Fatalf("failed to load corpus: %v", err)
	}

	// Metrics registry shared by HTTP middleware and the check pipeline
	reg := prometheus.NewRegistry()
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatalf("failed to register http metrics: %v", err)
	}
	checkMetrics, err := service.NewMetrics(reg)
	if err != nil {
		log.Fatalf("failed to register pipeline metrics: %v", err)
	}

	// Initialize repositories and services
	docRepo := postgres.NewDocumentPostgres(db)
	checkSvc := service.NewCheckService(
		docRepo,
		objStore,
		extract.New(),
		scorer,
		corpusText,
		postgres.IsUniqueViolation,
		checkMetrics,
	)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())
	app.Use(promMiddleware.Handler())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.AllowedOrigins, ","),
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type,X-Request-ID",
	}))

	// Register HTTP routes with injected service
	handlers.RegisterRoutes(app, db, checkSvc, reg)

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
