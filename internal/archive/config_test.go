package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("localhost:9000", "minioadmin", "minioadmin")

	assert.Equal(t, ProviderMinIO, cfg.Provider)
	assert.Equal(t, "localhost:9000", cfg.Endpoint)
	assert.Equal(t, "minioadmin", cfg.AccessKey)
	assert.Equal(t, "minioadmin", cfg.SecretKey)
	assert.False(t, cfg.UseSSL)
	assert.Empty(t, cfg.Region)
	assert.Empty(t, cfg.Bucket)
}
