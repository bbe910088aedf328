package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/bryanwahyu/complaint-analyst/internal/application"
	apparchive "github.com/bryanwahyu/complaint-analyst/internal/application/archive"
	appsessions "github.com/bryanwahyu/complaint-analyst/internal/application/sessions"
	"github.com/bryanwahyu/complaint-analyst/internal/config"
	"github.com/bryanwahyu/complaint-analyst/internal/domain/ai"
	"github.com/bryanwahyu/complaint-analyst/internal/domain/archive"
	"github.com/bryanwahyu/complaint-analyst/internal/infra/ai/fake"
	aiopenai "github.com/bryanwahyu/complaint-analyst/internal/infra/ai/openai"
	mysqlp "github.com/bryanwahyu/complaint-analyst/internal/infra/db/mysql"
	pgp "github.com/bryanwahyu/complaint-analyst/internal/infra/db/postgres"
	"github.com/bryanwahyu/complaint-analyst/internal/infra/httpserver"
	"github.com/bryanwahyu/complaint-analyst/internal/infra/id"
	minioStore "github.com/bryanwahyu/complaint-analyst/internal/infra/storage"
	"github.com/bryanwahyu/complaint-analyst/internal/middleware"
	"github.com/bryanwahyu/complaint-analyst/internal/observability"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		fatal("config load error", err)
	}
	observability.Setup(os.Stdout, cfg.Log.Format, cfg.Log.Level)
	log := observability.Logger()

	if err := cfg.Validate(); err != nil {
		if errors.Is(err, ai.ErrMissingCredential) {
			fatal("missing AI credential, set API_KEY", err)
		}
		fatal("invalid config", err)
	}
	loc, _ := cfg.Location()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := newAIClient(cfg)
	if err != nil {
		fatal("ai client init error", err)
	}

	ids, err := id.New(cfg.Session.NodeID)
	if err != nil {
		fatal("id generator init error", err)
	}

	svc := appsessions.NewService(client, application.SystemClock{}, ids)
	svc.Location = loc
	svc.Metrics = middleware.Recorder{}

	checkers := map[string]middleware.HealthChecker{}

	// audit archive
	var archiveSvc *apparchive.Service
	if cfg.Archive.Driver != "" {
		db, repo, err := openArchive(ctx, cfg)
		if err != nil {
			fatal("archive init error", err)
		}
		defer db.Close()
		archiveSvc = apparchive.NewService(repo, application.SystemClock{})
		svc.Archive = archiveSvc
		checkers["archive"] = &middleware.DatabaseHealthChecker{DB: db}
		log.Info("audit archive enabled", "driver", cfg.Archive.Driver)
	}

	// document retention
	if cfg.Minio.Endpoint != "" {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			fatal("minio init error", err)
		}
		svc.Documents = store
		checkers["documents"] = store
		log.Info("document retention enabled", "bucket", cfg.Minio.BucketName)
	}

	mux := chi.NewRouter()
	mux.Use(chimw.RequestID)
	mux.Use(chimw.Recoverer)
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	mux.Use(middleware.APIKeyAuth(cfg.Auth.Keys))
	mux.Use(middleware.RateLimitMiddleware(ctx, cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate))
	mux.Mount("/", httpserver.NewRouter(httpserver.Options{
		Sessions:       svc,
		Archive:        archiveSvc,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		HealthCheckers: checkers,
	}))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		// analysis and extraction wait on the model
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server listening", "addr", addr, "ai_provider", cfg.AI.Provider)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fatal("server error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server...", "sessions_open", svc.Count())

	ctx2, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Error("shutdown error", "error", err)
	}
}

func newAIClient(cfg *config.Config) (ai.Client, error) {
	if cfg.AI.Provider == config.ProviderFake {
		observability.Logger().Warn("using offline AI client, analyses are keyword based")
		return fake.NewClient(), nil
	}
	return aiopenai.NewClient(aiopenai.Options{
		APIKey:  cfg.AI.APIKey,
		BaseURL: cfg.AIBaseURL(),
		Model:   cfg.AI.Model,
	})
}

func openArchive(ctx context.Context, cfg *config.Config) (*sql.DB, archive.Repository, error) {
	switch cfg.Archive.Driver {
	case "postgres":
		db, err := pgp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, fmt.Errorf("postgres connect: %w", err)
		}
		repo := pgp.NewAnalysisRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return db, repo, nil
	default:
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, nil, fmt.Errorf("mysql connect: %w", err)
		}
		repo := mysqlp.NewAnalysisRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return db, repo, nil
	}
}

func fatal(msg string, err error) {
	observability.Logger().Error(msg, "error", err)
	os.Exit(1)
}
