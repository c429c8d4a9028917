package config

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// secretCacheEntry mirrors the teacher's TTL-cached secret entry: a value
// plus when it stops being trusted.
type secretCacheEntry struct {
	value     string
	expiresAt time.Time
}

// secretsAPI is the subset of *secretsmanager.Client this package depends
// on, so tests can substitute a fake.
type secretsAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretsResolver fetches secret values from AWS Secrets Manager and
// caches them for a configurable TTL, so resolving the same secret name
// repeatedly (e.g. on every tenant load) doesn't hit AWS every time.
type SecretsResolver struct {
	client secretsAPI
	ttl    time.Duration

	mu    sync.Mutex
	cache map[string]secretCacheEntry
}

// NewSecretsResolver constructs a SecretsResolver for the given region.
func NewSecretsResolver(ctx context.Context, region string, ttl time.Duration) (*SecretsResolver, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("config: load AWS config: %w", err)
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &SecretsResolver{
		client: secretsmanager.NewFromConfig(awsCfg),
		ttl:    ttl,
		cache:  make(map[string]secretCacheEntry),
	}, nil
}

// Resolve returns the named secret's current value, an empty string if
// name is empty (no secret configured for this setting).
func (r *SecretsResolver) Resolve(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", nil
	}

	r.mu.Lock()
	if entry, ok := r.cache[name]; ok && time.Now().Before(entry.expiresAt) {
		r.mu.Unlock()
		return entry.value, nil
	}
	r.mu.Unlock()

	out, err := r.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		return "", fmt.Errorf("config: get secret %q: %w", name, err)
	}
	value := aws.ToString(out.SecretString)

	r.mu.Lock()
	r.cache[name] = secretCacheEntry{value: value, expiresAt: time.Now().Add(r.ttl)}
	r.mu.Unlock()

	return value, nil
}
