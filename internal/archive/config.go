package archive

// Provider identifies the archive backend.
type Provider string

const (
	ProviderMinIO Provider = "minio"
)

// Config holds all settings needed to connect to an archive backend.
type Config struct {
	// Provider is the storage backend (e.g. ProviderMinIO).
	Provider Provider

	// Endpoint is the host:port of the storage server.
	Endpoint string

	// AccessKey is the access key ID (MinIO / S3 style).
	AccessKey string

	// SecretKey is the secret access key.
	SecretKey string

	// UseSSL controls whether TLS is used for the connection.
	UseSSL bool

	// Region is used by region-aware backends (e.g. AWS S3).
	// Leave empty for MinIO.
	Region string

	// Bucket is the bucket used for dump/base snapshot exchange, set by
	// the --archive-bucket CLI flag.
	Bucket string
}

// DefaultConfig returns a sensible local-dev config for MinIO.
func DefaultConfig(endpoint, accessKey, secretKey string) *Config {
	return &Config{
		Provider:  ProviderMinIO,
		Endpoint:  endpoint,
		AccessKey: accessKey,
		SecretKey: secretKey,
		UseSSL:    false,
	}
}
