package config

// mergeZeroFields copies every non-zero string/int field from src into
// dst wherever dst's corresponding field is still its zero value. Kept as
// an explicit field list rather than reflection so new Config fields must
// be deliberately wired in here too.
func mergeZeroFields(dst, src *Config) {
	strFields := []struct {
		d *string
		s string
	}{
		{&dst.Port, src.Port},
		{&dst.TenantSourceKind, src.TenantSourceKind},
		{&dst.TenantDataDir, src.TenantDataDir},
		{&dst.LLMAPIKey, src.LLMAPIKey},
		{&dst.LLMProvider, src.LLMProvider},
		{&dst.DeepReasonerAPIKey, src.DeepReasonerAPIKey},
		{&dst.DeepReasonerProvider, src.DeepReasonerProvider},
		{&dst.BedrockRegion, src.BedrockRegion},
		{&dst.GeminiModel, src.GeminiModel},
		{&dst.RedisURL, src.RedisURL},
		{&dst.PostgresDSN, src.PostgresDSN},
		{&dst.MySQLDSN, src.MySQLDSN},
		{&dst.MongoURI, src.MongoURI},
		{&dst.CassandraHosts, src.CassandraHosts},
		{&dst.S3Bucket, src.S3Bucket},
		{&dst.S3Prefix, src.S3Prefix},
		{&dst.GCSBucket, src.GCSBucket},
		{&dst.GCSPrefix, src.GCSPrefix},
		{&dst.AzureStorageConnectionString, src.AzureStorageConnectionString},
		{&dst.AzureStorageAccountURL, src.AzureStorageAccountURL},
		{&dst.AzureContainer, src.AzureContainer},
		{&dst.AzurePrefix, src.AzurePrefix},
		{&dst.AWSSecretsRegion, src.AWSSecretsRegion},
		{&dst.LLMAPIKeySecretName, src.LLMAPIKeySecretName},
		{&dst.DeepReasonerAPIKeySecretName, src.DeepReasonerAPIKeySecretName},
	}
	for _, f := range strFields {
		if *f.d == "" {
			*f.d = f.s
		}
	}

	if dst.WorkerPoolSize == 0 {
		dst.WorkerPoolSize = src.WorkerPoolSize
	}
	if dst.QueueDepth == 0 {
		dst.QueueDepth = src.QueueDepth
	}
}
