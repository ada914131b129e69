// Package app wires the process: logger, storage client, services, and the
// HTTP router. Both entrypoints build the same container and differ only in
// how they serve it and where identity comes from.
package app

import (
	"context"
	"fmt"
	"net/http"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/volchd/projects-api/internal/config"
	"github.com/volchd/projects-api/internal/handlers"
	"github.com/volchd/projects-api/internal/middleware"
	"github.com/volchd/projects-api/internal/repository"
	"github.com/volchd/projects-api/internal/repository/dynamo"
	"github.com/volchd/projects-api/internal/service/project"
	"github.com/volchd/projects-api/internal/service/task"
	"github.com/volchd/projects-api/pkg/observability"
)

// Container holds the wired dependencies of one process.
type Container struct {
	Config     *config.Config
	Logger     *zap.Logger
	Metrics    *observability.Metrics
	Tracer     *observability.Tracer
	Repository repository.Repository
	Projects   project.Service
	Tasks      task.Service
	Router     *chi.Mux
}

// New wires every dependency from the given configuration. A nil identity
// selects the router's default, the API Gateway authorizer check; the local
// server passes a header-based one instead.
func New(ctx context.Context, cfg *config.Config, identity func(http.Handler) http.Handler) (*Container, error) {
	logger, err := buildLogger(cfg)
	if err != nil {
		return nil, err
	}

	client, err := dynamo.NewClient(ctx, dynamo.ClientOptions{
		Region:        cfg.AWSRegion,
		Endpoint:      cfg.StorageEndpoint(),
		EnableTracing: cfg.Features.EnableTracing,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build storage client: %w", err)
	}

	tracer := observability.NewTracer("projects-api", cfg.Features.EnableTracing)
	store := dynamo.New(client, dynamo.Config{
		TableName: cfg.TableName,
		IndexName: cfg.IndexName,
	}, logger).WithTracer(tracer)

	var metrics *observability.Metrics
	if cfg.Features.EnableMetrics {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config for metrics: %w", err)
		}
		metrics = observability.NewMetrics(cfg.MetricsNamespace, cloudwatch.NewFromConfig(awsCfg), logger)
	}

	projects := project.NewService(store)
	tasks := task.NewService(store)

	routerCfg := handlers.RouterConfig{
		Logger:   logger,
		Metrics:  metrics,
		Identity: identity,
	}
	if cfg.Features.EnableCircuitBreaker {
		cb := middleware.DefaultCircuitBreakerConfig("dynamodb")
		routerCfg.CircuitBreaker = &cb
	}

	router := handlers.NewRouter(
		handlers.NewProjectHandler(projects, logger),
		handlers.NewTaskHandler(tasks, logger),
		routerCfg,
	)

	return &Container{
		Config:     cfg,
		Logger:     logger,
		Metrics:    metrics,
		Tracer:     tracer,
		Repository: store,
		Projects:   projects,
		Tasks:      tasks,
		Router:     router,
	}, nil
}

// buildLogger constructs the process logger: human-readable in development,
// JSON elsewhere, at the configured level.
func buildLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.IsDevelopment() {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}
