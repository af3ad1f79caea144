package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage provider names accepted by STORAGE_PROVIDER
const (
	StorageS3       = "s3"
	StorageImageKit = "imagekit"
)

type Config struct {
	Port                    string
	Env                     string
	LogLevel                string
	LogFormat               string
	MongoURI                string
	MongoDatabase           string
	PostgresConnStr         string
	JWTSecret               string
	TokenTTL                time.Duration
	CookieSecure            bool
	CORSOrigins             []string
	MaxVideoSize            string
	AuthRateLimit           float64
	FirebaseCredentialsPath string
	Storage                 StorageConfig
}

// StorageConfig selects one object storage backend. The S3 and ImageKit
// credential sets are mutually exclusive unless Provider names one explicitly.
type StorageConfig struct {
	Provider string
	S3       S3Config
	ImageKit ImageKitConfig
}

type S3Config struct {
	AccessKey     string
	SecretKey     string
	Bucket        string
	Region        string
	Endpoint      string
	PublicBaseURL string
}

type ImageKitConfig struct {
	PublicKey   string
	PrivateKey  string
	URLEndpoint string
	// UploadPrefix overrides the upload API base URL.
	UploadPrefix string
}

func (c S3Config) configured() bool {
	return c.AccessKey != "" || c.SecretKey != "" || c.Bucket != ""
}

func (c ImageKitConfig) configured() bool {
	return c.PublicKey != "" || c.PrivateKey != "" || c.URLEndpoint != ""
}

// Load reads the .env file (if any) and the process environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	ttl, err := time.ParseDuration(getEnv("TOKEN_TTL", "72h"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}
	rateLimit, err := strconv.ParseFloat(getEnv("AUTH_RATE_LIMIT", "5"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid AUTH_RATE_LIMIT: %w", err)
	}
	env := getEnv("ENV", "development")
	// Production sessions only travel over HTTPS unless overridden.
	cookieSecure, err := strconv.ParseBool(getEnv("COOKIE_SECURE", strconv.FormatBool(isProduction(env))))
	if err != nil {
		return nil, fmt.Errorf("invalid COOKIE_SECURE: %w", err)
	}

	cfg := &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     env,
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		LogFormat:               getEnv("LOG_FORMAT", "json"),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDatabase:           getEnv("MONGO_DATABASE", "foodreels"),
		PostgresConnStr:         getEnv("POSTGRES_CONN_STR", ""),
		JWTSecret:               getEnv("JWT_SECRET", ""),
		TokenTTL:                ttl,
		CookieSecure:            cookieSecure,
		CORSOrigins:             splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		MaxVideoSize:            getEnv("MAX_VIDEO_SIZE", "100M"),
		AuthRateLimit:           rateLimit,
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		Storage: StorageConfig{
			Provider: strings.ToLower(getEnv("STORAGE_PROVIDER", "")),
			S3: S3Config{
				AccessKey:     getEnv("AWS_ACCESS_KEY", ""),
				SecretKey:     getEnv("AWS_SECRET_KEY", ""),
				Bucket:        getEnv("AWS_BUCKET_NAME", ""),
				Region:        getEnv("AWS_REGION", ""),
				Endpoint:      getEnv("AWS_S3_ENDPOINT", ""),
				PublicBaseURL: getEnv("AWS_PUBLIC_BASE_URL", ""),
			},
			ImageKit: ImageKitConfig{
				PublicKey:    getEnv("IMAGEKIT_PUBLIC_KEY", ""),
				PrivateKey:   getEnv("IMAGEKIT_PRIVATE_KEY", ""),
				URLEndpoint:  getEnv("IMAGEKIT_URL_ENDPOINT", ""),
				UploadPrefix: getEnv("IMAGEKIT_UPLOAD_PREFIX", ""),
			},
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required settings and resolves the storage provider.
func (c *Config) Validate() error {
	var errs []error
	if c.MongoURI == "" {
		errs = append(errs, errors.New("MONGO_URI environment variable not set"))
	}
	if c.PostgresConnStr == "" {
		errs = append(errs, errors.New("POSTGRES_CONN_STR environment variable not set"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET environment variable not set"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.AuthRateLimit <= 0 {
		errs = append(errs, errors.New("AUTH_RATE_LIMIT must be positive"))
	}
	if err := c.Storage.resolve(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (s *StorageConfig) resolve() error {
	if s.Provider == "" {
		switch {
		case s.S3.configured() && s.ImageKit.configured():
			return errors.New("both S3 and ImageKit credentials are set; choose one with STORAGE_PROVIDER")
		case s.S3.configured():
			s.Provider = StorageS3
		case s.ImageKit.configured():
			s.Provider = StorageImageKit
		default:
			return errors.New("no object storage configured: set AWS_* or IMAGEKIT_* variables")
		}
	}

	switch s.Provider {
	case StorageS3:
		if s.S3.AccessKey == "" || s.S3.SecretKey == "" || s.S3.Bucket == "" || s.S3.Region == "" {
			return errors.New("S3 storage requires AWS_ACCESS_KEY, AWS_SECRET_KEY, AWS_BUCKET_NAME and AWS_REGION")
		}
	case StorageImageKit:
		if s.ImageKit.PrivateKey == "" || s.ImageKit.URLEndpoint == "" {
			return errors.New("ImageKit storage requires IMAGEKIT_PRIVATE_KEY and IMAGEKIT_URL_ENDPOINT")
		}
	default:
		return fmt.Errorf("unknown STORAGE_PROVIDER %q", s.Provider)
	}
	return nil
}

func isProduction(env string) bool {
	return strings.EqualFold(env, "production")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
