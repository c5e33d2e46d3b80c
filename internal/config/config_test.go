package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("SUPABASE_URL", "https://example.supabase.co")
	t.Setenv("AWS_BUCKET_NAME", "bucket")
	t.Setenv("AWS_REGION", "eu-west-3")
}

func TestLoadConfigDefaults(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PORT", "")
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("STORAGE_PREFIX", "")
	t.Setenv("STORAGE_TIMEOUT", "")
	t.Setenv("MAX_UPLOAD_MB", "")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StorageDriverS3, cfg.Storage.Driver)
	assert.Equal(t, "posts", cfg.Storage.Prefix)
	assert.Equal(t, 30*time.Second, cfg.Storage.Timeout)
	assert.Equal(t, int64(50<<20), cfg.MaxUploadBytes)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
}

func TestLoadConfigMinio(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("STORAGE_DRIVER", "MINIO")
	t.Setenv("MINIO_ENDPOINT", "localhost:9000")
	t.Setenv("MINIO_BUCKET", "media")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("MAX_UPLOAD_MB", "8")
	t.Setenv("STORAGE_TIMEOUT", "2m")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, StorageDriverMinio, cfg.Storage.Driver)
	assert.True(t, cfg.Storage.Minio.UseSSL)
	assert.Equal(t, "media", cfg.Storage.Minio.Bucket)
	assert.Equal(t, 2*time.Minute, cfg.Storage.Timeout)
	assert.Equal(t, int64(8<<20), cfg.MaxUploadBytes)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "Missing database url",
			env:     map[string]string{"DATABASE_URL": ""},
			wantErr: "DATABASE_URL is required",
		},
		{
			name:    "Unknown storage driver",
			env:     map[string]string{"STORAGE_DRIVER": "ftp"},
			wantErr: `unknown STORAGE_DRIVER "ftp"`,
		},
		{
			name:    "Minio without endpoint",
			env:     map[string]string{"STORAGE_DRIVER": "minio", "MINIO_ENDPOINT": "", "MINIO_BUCKET": "media"},
			wantErr: "MINIO_ENDPOINT is required",
		},
		{
			name:    "Bad timeout",
			env:     map[string]string{"STORAGE_TIMEOUT": "soon"},
			wantErr: `invalid duration "soon"`,
		},
		{
			name:    "Bad upload size",
			env:     map[string]string{"MAX_UPLOAD_MB": "lots"},
			wantErr: "MaxUploadMB",
		},
		{
			name:    "Non positive upload size",
			env:     map[string]string{"MAX_UPLOAD_MB": "0"},
			wantErr: "MAX_UPLOAD_MB must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
