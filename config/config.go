// Package config loads process configuration from environment variables,
// with an optional YAML file overlay for local development, following the
// same precedence the teacher's orchestrator uses for its LLM config:
// environment first, YAML file fills in anything unset.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the full set of process-level settings the entry point needs
// to wire every component together.
type Config struct {
	Port string `yaml:"port"`

	TenantSourceKind string `yaml:"tenant_source_kind"`
	TenantDataDir    string `yaml:"tenant_data_dir"`

	LLMAPIKey          string `yaml:"llm_api_key"`
	LLMProvider        string `yaml:"llm_provider"`
	DeepReasonerAPIKey string `yaml:"deep_reasoner_api_key"`
	DeepReasonerProvider string `yaml:"deep_reasoner_provider"`
	BedrockRegion      string `yaml:"bedrock_region"`
	GeminiModel        string `yaml:"gemini_model"`

	RedisURL string `yaml:"redis_url"`

	WorkerPoolSize int `yaml:"worker_pool_size"`
	QueueDepth     int `yaml:"queue_depth"`

	PostgresDSN     string `yaml:"postgres_dsn"`
	MySQLDSN        string `yaml:"mysql_dsn"`
	MongoURI        string `yaml:"mongo_uri"`
	CassandraHosts  string `yaml:"cassandra_hosts"`
	S3Bucket        string `yaml:"s3_bucket"`
	S3Prefix        string `yaml:"s3_prefix"`
	GCSBucket       string `yaml:"gcs_bucket"`
	GCSPrefix       string `yaml:"gcs_prefix"`
	AzureStorageConnectionString string `yaml:"azure_storage_connection_string"`
	AzureStorageAccountURL       string `yaml:"azure_storage_account_url"`
	AzureContainer               string `yaml:"azure_container"`
	AzurePrefix                  string `yaml:"azure_prefix"`

	AWSSecretsRegion   string `yaml:"aws_secrets_region"`
	LLMAPIKeySecretName          string `yaml:"llm_api_key_secret_name"`
	DeepReasonerAPIKeySecretName string `yaml:"deep_reasoner_api_key_secret_name"`
}

// Load builds a Config from environment variables, then overlays a YAML
// file named by CONFIG_FILE (if set) on top of whatever the environment
// left unset. Environment variables always win over the file: the file is
// for filling gaps in local development, not overriding a deployment's
// environment.
func Load() (*Config, error) {
	cfg := &Config{
		Port:             os.Getenv("PORT"),
		TenantSourceKind: os.Getenv("TENANT_SOURCE_KIND"),
		TenantDataDir:    os.Getenv("TENANT_DATA_DIR"),

		LLMAPIKey:            os.Getenv("LLM_API_KEY"),
		LLMProvider:          os.Getenv("LLM_PROVIDER"),
		DeepReasonerAPIKey:   os.Getenv("DEEP_REASONER_API_KEY"),
		DeepReasonerProvider: os.Getenv("DEEP_REASONER_PROVIDER"),
		BedrockRegion:        os.Getenv("BEDROCK_REGION"),
		GeminiModel:          os.Getenv("GEMINI_MODEL"),

		RedisURL: os.Getenv("REDIS_URL"),

		WorkerPoolSize: getenvInt("WORKER_POOL_SIZE", 0),
		QueueDepth:     getenvInt("QUEUE_DEPTH", 0),

		PostgresDSN:    os.Getenv("POSTGRES_DSN"),
		MySQLDSN:       os.Getenv("MYSQL_DSN"),
		MongoURI:       os.Getenv("MONGO_URI"),
		CassandraHosts: os.Getenv("CASSANDRA_HOSTS"),
		S3Bucket:       os.Getenv("S3_BUCKET"),
		S3Prefix:       os.Getenv("S3_PREFIX"),
		GCSBucket:      os.Getenv("GCS_BUCKET"),
		GCSPrefix:      os.Getenv("GCS_PREFIX"),
		AzureStorageConnectionString: os.Getenv("AZURE_STORAGE_CONNECTION_STRING"),
		AzureStorageAccountURL:       os.Getenv("AZURE_STORAGE_ACCOUNT_URL"),
		AzureContainer:               os.Getenv("AZURE_CONTAINER"),
		AzurePrefix:                  os.Getenv("AZURE_PREFIX"),

		AWSSecretsRegion:             os.Getenv("AWS_SECRETS_REGION"),
		LLMAPIKeySecretName:          os.Getenv("LLM_API_KEY_SECRET_NAME"),
		DeepReasonerAPIKeySecretName: os.Getenv("DEEP_REASONER_API_KEY_SECRET_NAME"),
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := overlayYAML(cfg, path); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", path, err)
		}
	}

	applyDefaults(cfg)
	return cfg, nil
}

// applyDefaults fills in any field still unset after the environment and
// YAML overlay have both had a chance to set it.
func applyDefaults(cfg *Config) {
	defaults := Config{
		Port:                 "8080",
		TenantSourceKind:     "file",
		TenantDataDir:        "./tenants",
		LLMProvider:          "gemini",
		DeepReasonerProvider: "bedrock",
		BedrockRegion:        "us-east-1",
		S3Prefix:             "tenants",
		GCSPrefix:            "tenants",
		AzurePrefix:          "tenants",
		AWSSecretsRegion:     "us-east-1",
	}
	mergeZeroFields(cfg, &defaults)
}

// overlayYAML fills in any field in cfg that is still its zero value from
// the YAML file at path. It decodes into a second Config and copies over
// whatever differs, rather than decoding directly into cfg, so an already
// environment-set field is never clobbered by the file.
func overlayYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return err
	}
	mergeZeroFields(cfg, &fileCfg)
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
