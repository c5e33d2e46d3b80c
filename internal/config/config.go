package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	StorageDriverS3    = "s3"
	StorageDriverMinio = "minio"
)

type Config struct {
	Port            string   `env:"PORT" envDefault:"8080"`
	DBUrl           string   `env:"DATABASE_URL"`
	JWTSecret       string   `env:"JWT_SECRET"`
	SupabaseURL     string   `env:"SUPABASE_URL"`
	SupabaseAnonKey string   `env:"SUPABASE_ANON_KEY"`
	MaxUploadMB     int      `env:"MAX_UPLOAD_MB" envDefault:"50"`
	CORSOrigins     []string `env:"CORS_ORIGINS" envSeparator:","`
	Storage         StorageConfig

	// MaxUploadBytes is derived from MaxUploadMB.
	MaxUploadBytes int64
}

type StorageConfig struct {
	Driver  string        `env:"STORAGE_DRIVER" envDefault:"s3"`
	Prefix  string        `env:"STORAGE_PREFIX" envDefault:"posts"`
	Timeout time.Duration `env:"STORAGE_TIMEOUT" envDefault:"30s"`
	S3      S3Config
	Minio   MinioConfig
}

type S3Config struct {
	Bucket          string `env:"AWS_BUCKET_NAME"`
	Region          string `env:"AWS_REGION"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	// Endpoint overrides the AWS endpoint for S3-compatible providers.
	Endpoint string `env:"S3_ENDPOINT"`
}

type MinioConfig struct {
	Endpoint  string `env:"MINIO_ENDPOINT"`
	AccessKey string `env:"MINIO_ACCESS_KEY"`
	SecretKey string `env:"MINIO_SECRET_KEY"`
	Bucket    string `env:"MINIO_BUCKET"`
	PublicURL string `env:"MINIO_PUBLIC_URL"`
	UseSSL    bool   `env:"MINIO_USE_SSL" envDefault:"false"`
}

// LoadConfig reads the environment, after loading a .env file when present.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := new(Config)
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	cfg.Storage.Driver = strings.ToLower(cfg.Storage.Driver)
	cfg.MaxUploadBytes = int64(cfg.MaxUploadMB) << 20
	for i := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(cfg.CORSOrigins[i])
	}
	cfg.CORSOrigins = slices.DeleteFunc(cfg.CORSOrigins, func(origin string) bool { return origin == "" })

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every missing required setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.DBUrl == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.SupabaseURL == "" {
		errs = append(errs, errors.New("SUPABASE_URL is required"))
	}
	if c.MaxUploadMB <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_MB must be positive"))
	}

	switch c.Storage.Driver {
	case StorageDriverS3:
		if c.Storage.S3.Bucket == "" {
			errs = append(errs, errors.New("AWS_BUCKET_NAME is required"))
		}
		if c.Storage.S3.Region == "" {
			errs = append(errs, errors.New("AWS_REGION is required"))
		}
	case StorageDriverMinio:
		if c.Storage.Minio.Endpoint == "" {
			errs = append(errs, errors.New("MINIO_ENDPOINT is required"))
		}
		if c.Storage.Minio.Bucket == "" {
			errs = append(errs, errors.New("MINIO_BUCKET is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver))
	}

	return errors.Join(errs...)
}
