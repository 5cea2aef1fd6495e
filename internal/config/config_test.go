package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"ENV", "PORT", "APP_URL", "ALLOWED_ORIGINS", "TOKEN_TTL", "MEDIA_MAX_BYTES", "MEDIA_RESTRICT_TYPES", "MEDIA_ALLOWED_TYPES", "MAX_JOURNAL_IMAGES", "MEDIA_BACKEND", "JWT_SECRET", "REDIS_URI"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "http://localhost:5000", cfg.AppURL)
	assert.Equal(t, 7*24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, int64(5*1024*1024), cfg.MediaMaxBytes)
	assert.True(t, cfg.MediaRestrictTypes)
	assert.Equal(t, []string{"image/jpeg", "image/png", "image/gif"}, cfg.MediaAllowedTypes)
	assert.Equal(t, 5, cfg.MaxJournalImages)
	assert.Equal(t, MediaBackendLocal, cfg.MediaBackend)
	assert.Empty(t, cfg.RedisURI)
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("APP_URL", "https://api.example.com/")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("MEDIA_RESTRICT_TYPES", "false")
	t.Setenv("MEDIA_MAX_BYTES", "1024")
	t.Setenv("MONGO_TRANSACTIONS", "true")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "https://api.example.com", cfg.AppURL)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.False(t, cfg.MediaRestrictTypes)
	assert.Equal(t, int64(1024), cfg.MediaMaxBytes)
	assert.True(t, cfg.MongoTransactions)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "default secret in production",
			mutate:  func(c *Config) { c.Environment = "production" },
			wantErr: "JWT_SECRET",
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.MediaBackend = "ftp" },
			wantErr: "unknown MEDIA_BACKEND",
		},
		{
			name:    "cloudinary without credentials",
			mutate:  func(c *Config) { c.MediaBackend = MediaBackendCloudinary },
			wantErr: "CLOUDINARY_CLOUD_NAME",
		},
		{
			name:    "minio without credentials",
			mutate:  func(c *Config) { c.MediaBackend = MediaBackendMinio },
			wantErr: "MINIO_ACCESS_KEY",
		},
		{
			name: "production with secret",
			mutate: func(c *Config) {
				c.Environment = "production"
				c.JWTSecret = "something-long-and-random"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				JWTSecret:        defaultJWTSecret,
				MediaBackend:     MediaBackendLocal,
				MediaMaxBytes:    1,
				MaxJournalImages: 1,
			}
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
