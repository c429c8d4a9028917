// Copyright 2025 AxonFlow
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package main is the entry point for the decision governance engine.
//
// Usage:
//
//	./decisiongovd
//
// Environment Variables (see config.Config for the full list):
//
//	PORT - HTTP server port (default: 8080)
//	TENANT_SOURCE_KIND - file|s3|gcs|azureblob|postgres|mysql|mongodb|cassandra (default: file)
//	TENANT_DATA_DIR - local tenant fixture directory, used when TENANT_SOURCE_KIND=file
//	LLM_PROVIDER / DEEP_REASONER_PROVIDER - gemini|bedrock|null
//	CONFIG_FILE - optional YAML file filling in anything the environment left unset
package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/storage"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-redis/redis/v8"
	"github.com/gocql/gocql"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"decisiongov/platform/config"
	"decisiongov/platform/extractor"
	"decisiongov/platform/httpapi"
	"decisiongov/platform/lifecycle"
	"decisiongov/platform/llmprovider"
	"decisiongov/platform/pipeline"
	"decisiongov/platform/reasoner"
	"decisiongov/platform/rules"
	"decisiongov/platform/shared/logger"
	"decisiongov/platform/tenant"
)

// app holds every wired component the server needs. Built once in main
// and passed around explicitly, unlike the teacher's package-level
// singletons initialized by initializeComponents().
type app struct {
	cfg    *config.Config
	log    *logger.Logger
	server *httpapi.Server
	pool   *pipeline.WorkerPool
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("decisiongovd: load config: %v", err)
	}

	a, err := build(context.Background(), cfg)
	if err != nil {
		log.Fatalf("decisiongovd: build: %v", err)
	}

	a.log.Info("", "", "decision governance engine starting", map[string]interface{}{
		"port":               cfg.Port,
		"tenant_source_kind": cfg.TenantSourceKind,
		"llm_provider":       cfg.LLMProvider,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           a.server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.ErrorWithCode("", "", "http server stopped unexpectedly", 500, err, nil)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	a.log.Info("", "", "shutting down", nil)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	a.pool.Stop()
}

// build wires every component from cfg, following the teacher's
// connector-selection pattern in initializeComponents but returning an
// explicit struct instead of mutating package globals.
func build(ctx context.Context, cfg *config.Config) (*app, error) {
	appLog := logger.New("decisiongovd")

	tenantSource, err := buildTenantSource(ctx, cfg)
	if err != nil {
		return nil, err
	}
	registry := tenant.NewRegistry(logger.New("tenant"), tenantSource)

	extractProvider, err := buildProvider(ctx, cfg, cfg.LLMProvider, cfg.LLMAPIKey, cfg.GeminiModel)
	if err != nil {
		return nil, err
	}
	reasonProvider, err := buildProvider(ctx, cfg, cfg.DeepReasonerProvider, cfg.DeepReasonerAPIKey, cfg.GeminiModel)
	if err != nil {
		return nil, err
	}

	var rateCache *extractor.RateCache
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		rateCache = extractor.NewRateCache(redis.NewClient(opt), time.Minute, 60)
	}

	ext := extractor.New(extractProvider, rateCache, logger.New("extractor"), 3)
	ruleEngine := rules.NewEngine()
	reason := reasoner.New(reasonProvider, logger.New("reasoner"))
	lc := lifecycle.NewStore()

	orch := pipeline.New(registry, ext, ruleEngine, reason, lc, logger.New("pipeline"))

	poolSize := cfg.WorkerPoolSize
	queueDepth := cfg.QueueDepth
	pool := pipeline.NewWorkerPool(orch, logger.New("pipeline"), poolSize, queueDepth)
	pool.Start(context.Background())

	server := httpapi.NewServer(orch, pool, registry, lc, logger.New("httpapi"))

	return &app{cfg: cfg, log: appLog, server: server, pool: pool}, nil
}

// buildTenantSource selects the configured tenant.Source implementation,
// mirroring the teacher's env-var-driven connector selection.
func buildTenantSource(ctx context.Context, cfg *config.Config) (tenant.Source, error) {
	switch cfg.TenantSourceKind {
	case "", "file":
		return tenant.NewFileSource(cfg.TenantDataDir), nil

	case "s3":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, err
		}
		return tenant.NewS3Source(s3.NewFromConfig(awsCfg), cfg.S3Bucket, cfg.S3Prefix), nil

	case "gcs":
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, err
		}
		return tenant.NewGCSSource(client, cfg.GCSBucket, cfg.GCSPrefix), nil

	case "azureblob":
		var client *azblob.Client
		var err error
		if cfg.AzureStorageConnectionString != "" {
			client, err = azblob.NewClientFromConnectionString(cfg.AzureStorageConnectionString, nil)
		} else {
			var cred *azidentity.DefaultAzureCredential
			cred, err = azidentity.NewDefaultAzureCredential(nil)
			if err == nil {
				client, err = azblob.NewClient(cfg.AzureStorageAccountURL, cred, nil)
			}
		}
		if err != nil {
			return nil, err
		}
		return tenant.NewAzureBlobSource(client, cfg.AzureContainer, cfg.AzurePrefix), nil

	case "postgres":
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return tenant.NewPostgresSource(db, "tenants", "id", "document"), nil

	case "mysql":
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, err
		}
		return tenant.NewMySQLSource(db, "tenants", "id", "document"), nil

	case "mongodb":
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, err
		}
		collection := client.Database("decisiongov").Collection("tenants")
		return tenant.NewMongoSource(collection), nil

	case "cassandra":
		cluster := gocql.NewCluster(cfg.CassandraHosts)
		session, err := cluster.CreateSession()
		if err != nil {
			return nil, err
		}
		return tenant.NewCassandraSource(session, "tenants", "id", "document"), nil

	default:
		return tenant.NewFileSource(cfg.TenantDataDir), nil
	}
}

// buildProvider selects an llmprovider.Provider by kind, used for both
// the Extractor's provider and the Reasoner's deep-reasoning provider.
func buildProvider(ctx context.Context, cfg *config.Config, kind, apiKey, geminiModel string) (llmprovider.Provider, error) {
	switch kind {
	case "gemini":
		if apiKey == "" {
			return llmprovider.NullProvider{}, nil
		}
		return llmprovider.NewGeminiProvider(apiKey, geminiModel), nil

	case "bedrock":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.BedrockRegion))
		if err != nil {
			return nil, err
		}
		return llmprovider.NewBedrockProvider(bedrockruntime.NewFromConfig(awsCfg), ""), nil

	case "null", "":
		return llmprovider.NullProvider{}, nil

	default:
		return llmprovider.NullProvider{}, nil
	}
}
