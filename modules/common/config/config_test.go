package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "imagen-4.0-fast-generate-001", cfg.ImagenFastModel)
	assert.Equal(t, "imagen-4.0-generate-001", cfg.ImagenProModel)
	assert.NotEqual(t, cfg.ImagenFastModel, cfg.ImagenProModel)
	assert.Equal(t, 180*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, int64(10*1024*1024), cfg.UploadMaxBytes)
	assert.False(t, cfg.BlobEnabled())
	assert.Equal(t, ProjectStoreMemory, cfg.ResolvedProjectStore())
}

func TestParse_GeminiKeyFallback(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "alt-key")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "alt-key", cfg.GeminiAPIKey)

	t.Setenv("NANO_BANANA_API_KEY", "primary")
	cfg, err = Parse()
	require.NoError(t, err)
	assert.Equal(t, "primary", cfg.GeminiAPIKey)
}

func TestParse_BlobToken(t *testing.T) {
	t.Setenv("BLOB_READ_WRITE_TOKEN", "token")

	_, err := Parse()
	require.Error(t, err, "supabase backend needs SUPABASE_URL")

	t.Setenv("SUPABASE_URL", "https://example.supabase.co/")
	cfg, err := Parse()
	require.NoError(t, err)
	assert.True(t, cfg.BlobEnabled())
	assert.Equal(t, "https://example.supabase.co", cfg.SupabaseURL)
	assert.Equal(t, ProjectStoreBlob, cfg.ResolvedProjectStore())
}

func TestParse_S3Backend(t *testing.T) {
	t.Setenv("BLOB_BACKEND", "S3")
	t.Setenv("S3_BUCKET", "bucket")
	t.Setenv("S3_ACCESS_KEY_ID", "id")
	t.Setenv("S3_SECRET_ACCESS_KEY", "secret")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, BlobBackendS3, cfg.BlobBackend)
	assert.True(t, cfg.BlobEnabled())
}

func TestParse_InvalidCombinations(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown backend", env: map[string]string{"BLOB_BACKEND": "ftp"}},
		{name: "unknown store", env: map[string]string{"PROJECT_STORE": "mongo"}},
		{name: "redis without host", env: map[string]string{"PROJECT_STORE": "redis"}},
		{name: "supabase without key", env: map[string]string{"PROJECT_STORE": "supabase", "SUPABASE_URL": "https://x"}},
		{name: "blob store without blob", env: map[string]string{"PROJECT_STORE": "blob"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Parse()
			assert.Error(t, err)
		})
	}
}

func TestGetRedisAddr(t *testing.T) {
	cfg := &Config{RedisHost: "cache", RedisPort: "6380"}
	assert.Equal(t, "cache:6380", cfg.GetRedisAddr())
}
