// Package app provides application-level wiring and dependency injection
// for the athena-query binaries.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awsathena "github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"athena-query/internal/athena"
	"athena-query/internal/config"
	"athena-query/internal/domain"
	"athena-query/internal/service/query"
	"athena-query/internal/storage"
)

// Deps holds the external dependencies that main() must provide.
// ExecutionAPI and ObjectStore are optional; when nil they are built from Cfg.
type Deps struct {
	Cfg          *config.Config
	Logger       *slog.Logger
	ExecutionAPI domain.ExecutionAPI
	ObjectStore  domain.ObjectStore
}

// App holds the fully-wired query service plus the request defaults from config.
type App struct {
	Query   *query.QueryService
	Schemes []string // result location schemes the object store can read
	cfg     *config.Config
}

// New wires clients and services from the provided deps.
func New(ctx context.Context, deps Deps) (*App, error) {
	cfg := deps.Cfg
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	api := deps.ExecutionAPI
	store := deps.ObjectStore
	var schemes []string

	if api == nil || store == nil {
		awsCfg, err := loadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if api == nil {
			api = athena.NewClient(newAthenaClient(awsCfg, cfg), athena.Defaults{
				Catalog:        cfg.Catalog,
				WorkGroup:      cfg.WorkGroup,
				OutputLocation: cfg.OutputLocation,
			})
		}
		if store == nil {
			router, err := newRouter(ctx, awsCfg, cfg)
			if err != nil {
				return nil, err
			}
			schemes = router.Schemes()
			store = router
		}
	}

	executor := query.NewExecutor(api, query.WithLogger(logger))
	svc := query.NewQueryService(executor, query.NewFetcher(store), query.NewClassifier(), logger)

	logger.Info("query service ready",
		"region", cfg.Region, "workgroup", cfg.WorkGroup, "result_schemes", schemes)

	return &App{Query: svc, Schemes: schemes, cfg: cfg}, nil
}

// Request fills the configured database when req leaves it empty.
func (a *App) Request(req domain.QueryRequest) domain.QueryRequest {
	if req.Database == "" {
		req.Database = a.cfg.Database
	}
	return req
}

// Run applies configured request defaults and runs the query.
func (a *App) Run(ctx context.Context, req domain.QueryRequest) (*query.Outcome, error) {
	return a.Query.Run(ctx, a.Request(req))
}

func loadAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.HasStaticCredentials() {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(*cfg.KeyID, *cfg.Secret, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load AWS config: %w", err)
	}
	return awsCfg, nil
}

func newAthenaClient(awsCfg aws.Config, cfg *config.Config) *awsathena.Client {
	return awsathena.NewFromConfig(awsCfg, func(o *awsathena.Options) {
		if cfg.AthenaURL != "" {
			o.BaseEndpoint = aws.String(cfg.AthenaURL)
		}
	})
}

func newRouter(ctx context.Context, awsCfg aws.Config, cfg *config.Config) (*storage.Router, error) {
	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
		o.UsePathStyle = cfg.S3PathStyle
	})
	router := storage.NewRouter().Register(storage.NewS3Store(s3Client), "s3", "s3a")

	if cfg.HasGCS() {
		gcsStore, err := storage.NewGCSStore(ctx, cfg.GCSKeyFile)
		if err != nil {
			return nil, err
		}
		router.Register(gcsStore, "gs")
	}
	if cfg.HasAzure() {
		azStore, err := storage.NewAzureStore(cfg.AzureAccountName, cfg.AzureAccountKey)
		if err != nil {
			return nil, err
		}
		router.Register(azStore, "az")
	}
	return router, nil
}
