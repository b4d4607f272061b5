package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/clinicase/clinicase/internal/application"
	appcompliance "github.com/clinicase/clinicase/internal/application/compliance"
	appdocuments "github.com/clinicase/clinicase/internal/application/documents"
	appexports "github.com/clinicase/clinicase/internal/application/exports"
	appintegrations "github.com/clinicase/clinicase/internal/application/integrations"
	apprequirements "github.com/clinicase/clinicase/internal/application/requirements"
	apptestcases "github.com/clinicase/clinicase/internal/application/testcases"
	appusers "github.com/clinicase/clinicase/internal/application/users"
	"github.com/clinicase/clinicase/internal/config"
	"github.com/clinicase/clinicase/internal/domain/compliance"
	"github.com/clinicase/clinicase/internal/domain/documents"
	"github.com/clinicase/clinicase/internal/domain/requirements"
	"github.com/clinicase/clinicase/internal/domain/testcases"
	domtrackers "github.com/clinicase/clinicase/internal/domain/trackers"
	"github.com/clinicase/clinicase/internal/domain/users"
	openaix "github.com/clinicase/clinicase/internal/infra/ai/openai"
	"github.com/clinicase/clinicase/internal/infra/bus"
	mysqlp "github.com/clinicase/clinicase/internal/infra/db/mysql"
	postgresp "github.com/clinicase/clinicase/internal/infra/db/postgres"
	"github.com/clinicase/clinicase/internal/infra/extract"
	"github.com/clinicase/clinicase/internal/infra/httpserver"
	minioStore "github.com/clinicase/clinicase/internal/infra/storage"
	"github.com/clinicase/clinicase/internal/infra/trackers"
	"github.com/clinicase/clinicase/internal/infra/vector"
	"github.com/clinicase/clinicase/internal/middleware"
)

type repositories struct {
	testCases    testcases.Repository
	requirements requirements.Repository
	documents    documents.Repository
	analyses     compliance.Repository
	users        users.Repository
}

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	// connect database (mysql or postgres)
	db, repos, err := connectDatabase(ctx, cfg)
	if err != nil {
		logger.Fatal("database connect error", zap.Error(err))
	}
	defer db.Close()

	// init minio
	store, err := minioStore.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
	if err != nil {
		logger.Fatal("minio init error", zap.Error(err))
	}

	// init redis publisher
	publisher := bus.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	defer publisher.Close()

	// init weaviate retriever
	retriever, err := vector.New(
		cfg.Weaviate.Host,
		cfg.Weaviate.Scheme,
		cfg.Weaviate.APIKey,
		cfg.Weaviate.ClassName,
		logger,
	)
	if err != nil {
		logger.Fatal("weaviate init error", zap.Error(err))
	}

	// init openai generator
	generator := openaix.NewClient(
		cfg.OpenAI.APIKey,
		cfg.OpenAI.Model,
		time.Duration(cfg.OpenAI.TimeoutSeconds)*time.Second,
	)

	// init extraction client
	extractor := extract.NewClient(cfg.Extraction.Endpoint, cfg.Extraction.APIKey)

	clock := application.SystemClock{}

	// init services
	testCasesSvc := &apptestcases.Service{
		Repo:      repos.testCases,
		Documents: repos.documents,
		Retriever: retriever,
		Generator: generator,
		Publisher: publisher,
		Clock:     clock,
		Logger:    logger,
	}
	complianceSvc := &appcompliance.Service{
		TestCases: repos.testCases,
		Analyses:  repos.analyses,
		Retriever: retriever,
		Generator: generator,
		Clock:     clock,
		Logger:    logger,
	}
	exportsSvc := &appexports.Service{
		Repo:   repos.testCases,
		Store:  store,
		Clock:  clock,
		Logger: logger,
	}
	documentsSvc := &appdocuments.Service{
		Repo:      repos.documents,
		Source:    store,
		Extractor: extractor,
		Publisher: publisher,
		Clock:     clock,
		Logger:    logger,
	}
	requirementsSvc := &apprequirements.Service{Repo: repos.requirements, Clock: clock}
	usersSvc := &appusers.Service{Repo: repos.users, Clock: clock}
	integrationsSvc := &appintegrations.Service{
		TestCases: repos.testCases,
		Trackers:  buildTrackers(cfg),
		Logger:    logger,
	}

	checkers := map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
		"storage": middleware.CheckerFunc(func(ctx context.Context) error {
			return store.Check(ctx)
		}),
		"redis": middleware.CheckerFunc(func(ctx context.Context) error {
			return publisher.Ping(ctx)
		}),
	}

	// init router
	mux := chi.NewRouter()
	mux.Use(middleware.LoggingMiddleware(logger))
	mux.Use(middleware.MetricsMiddleware)
	if len(cfg.Auth.APIKeys) > 0 {
		mux.Use(middleware.APIKeyAuth(cfg.Auth.APIKeys))
	}
	if cfg.RateLimit.Capacity > 0 {
		mux.Use(middleware.RateLimitMiddleware(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate))
	}
	mux.Mount("/", httpserver.NewRouter(httpserver.Deps{
		TestCases:      testCasesSvc,
		Compliance:     complianceSvc,
		Exports:        exportsSvc,
		Documents:      documentsSvc,
		Requirements:   requirementsSvc,
		Users:          usersSvc,
		Integrations:   integrationsSvc,
		HealthCheckers: checkers,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Logger:         logger,
	}))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		logger.Info("server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down server")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}

func connectDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, *repositories, error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, err
		}
		return db, &repositories{
			testCases:    postgresp.NewTestCaseRepository(db),
			requirements: postgresp.NewRequirementRepository(db),
			documents:    postgresp.NewDocumentRepository(db),
			analyses:     postgresp.NewAnalysisRepository(db),
			users:        postgresp.NewUserRepository(db),
		}, nil
	default:
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, nil, err
		}
		return db, &repositories{
			testCases:    mysqlp.NewTestCaseRepository(db),
			requirements: mysqlp.NewRequirementRepository(db),
			documents:    mysqlp.NewDocumentRepository(db),
			analyses:     mysqlp.NewAnalysisRepository(db),
			users:        mysqlp.NewUserRepository(db),
		}, nil
	}
}

func buildTrackers(cfg *config.Config) map[string]domtrackers.Tracker {
	out := make(map[string]domtrackers.Tracker)
	if j := cfg.Integrations.Jira; j.BaseURL != "" {
		out["jira"] = trackers.NewJira(j.BaseURL, j.Email, j.APIToken)
	}
	if a := cfg.Integrations.AzureDevOps; a.Organization != "" {
		out["azure-devops"] = trackers.NewAzureDevOps(a.Organization, a.PersonalAccessToken)
	}
	if p := cfg.Integrations.Polarion; p.BaseURL != "" {
		out["polarion"] = trackers.NewPolarion(p.BaseURL, p.APIToken)
	}
	return out
}
