package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/sngm3741/store-finder/api/internal/logger"
)

// Photo storage backends.
const (
	PhotoBackendLocal = "local"
	PhotoBackendMinio = "minio"
)

// JWTConfig defines issuer/secret pair for auth verification.
type JWTConfig struct {
	Issuer string
	Secret []byte
}

// MinioConfig holds the object storage connection used when PhotoBackend is "minio".
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string `default:"store-photos"`
	UseSSL    bool
}

// Config holds runtime configuration shared across the application.
type Config struct {
	Addr            string        `default:":8080" validate:"required"`
	MongoURI        string        `default:"mongodb://mongo:27017" validate:"required"`
	MongoDatabase   string        `default:"store-finder" validate:"required"`
	StoreCollection string        `default:"stores" validate:"required"`
	UserCollection  string        `default:"users" validate:"required"`
	Timeout         time.Duration `default:"10s"`
	JWTConfigs      []JWTConfig   `validate:"min=1"`
	JWTAudience     string
	AllowedOrigins  []string `default:"[\"*\"]"`
	PhotoBackend    string   `default:"local" validate:"oneof=local minio"`
	UploadDir       string   `default:"./public/uploads" validate:"required"`
	UploadMaxBytes  int64    `default:"10485760" validate:"gt=0"`
	Minio           MinioConfig
	Log             logger.Config
}

// Load reads .env (when present) and environment variables and returns a validated Config.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		return Config{}, fmt.Errorf("config defaults: %w", err)
	}

	cfg.Addr = envOrDefault("HTTP_ADDR", cfg.Addr)
	cfg.MongoURI = envOrDefault("MONGO_URI", cfg.MongoURI)
	cfg.MongoDatabase = envOrDefault("MONGO_DB", cfg.MongoDatabase)
	cfg.StoreCollection = envOrDefault("STORE_COLLECTION", cfg.StoreCollection)
	cfg.UserCollection = envOrDefault("USER_COLLECTION", cfg.UserCollection)
	if v := os.Getenv("MONGO_CONNECT_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = parsed
		}
	}

	if secret := strings.TrimSpace(os.Getenv("AUTH_JWT_SECRET")); secret != "" {
		cfg.JWTConfigs = append(cfg.JWTConfigs, JWTConfig{
			Issuer: envOrDefault("AUTH_JWT_ISSUER", "store-finder-auth"),
			Secret: []byte(secret),
		})
	}
	if secret := strings.TrimSpace(os.Getenv("AUTH_LINE_JWT_SECRET")); secret != "" {
		cfg.JWTConfigs = append(cfg.JWTConfigs, JWTConfig{
			Issuer: envOrDefault("AUTH_LINE_JWT_ISSUER", "line-auth"),
			Secret: []byte(secret),
		})
	}
	cfg.JWTAudience = strings.TrimSpace(os.Getenv("AUTH_JWT_AUDIENCE"))
	cfg.AllowedOrigins = parseList("API_ALLOWED_ORIGINS", cfg.AllowedOrigins)

	cfg.PhotoBackend = strings.ToLower(envOrDefault("PHOTO_BACKEND", cfg.PhotoBackend))
	cfg.UploadDir = envOrDefault("UPLOAD_DIR", cfg.UploadDir)
	if raw := strings.TrimSpace(os.Getenv("UPLOAD_MAX_BYTES")); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("UPLOAD_MAX_BYTES: %w", err)
		}
		cfg.UploadMaxBytes = parsed
	}

	cfg.Minio.Endpoint = envOrDefault("MINIO_ENDPOINT", cfg.Minio.Endpoint)
	cfg.Minio.AccessKey = envOrDefault("MINIO_ACCESS_KEY", cfg.Minio.AccessKey)
	cfg.Minio.SecretKey = envOrDefault("MINIO_SECRET_KEY", cfg.Minio.SecretKey)
	cfg.Minio.Bucket = envOrDefault("MINIO_BUCKET", cfg.Minio.Bucket)
	cfg.Minio.UseSSL = strings.EqualFold(strings.TrimSpace(os.Getenv("MINIO_USE_SSL")), "true")

	cfg.Log.Level = strings.ToLower(envOrDefault("LOG_LEVEL", cfg.Log.Level))
	cfg.Log.Encoding = strings.ToLower(envOrDefault("LOG_ENCODING", cfg.Log.Encoding))

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			failed := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				tag := fe.Tag()
				if fe.Param() != "" {
					tag += "=" + fe.Param()
				}
				failed = append(failed, fe.Namespace()+": "+tag)
			}
			return fmt.Errorf("invalid config -> %s", strings.Join(failed, ", "))
		}
		return err
	}
	if c.PhotoBackend == PhotoBackendMinio && (c.Minio.Endpoint == "" || c.Minio.AccessKey == "" || c.Minio.SecretKey == "") {
		return errors.New("invalid config -> PHOTO_BACKEND=minio needs MINIO_ENDPOINT, MINIO_ACCESS_KEY and MINIO_SECRET_KEY")
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseList(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			values = append(values, part)
		}
	}

	if len(values) == 0 {
		return fallback
	}
	return values
}
