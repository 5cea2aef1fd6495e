package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// Media storage backends selectable through MEDIA_BACKEND.
const (
	MediaBackendLocal      = "local"
	MediaBackendCloudinary = "cloudinary"
	MediaBackendMinio      = "minio"
)

type Config struct {
	Environment    string // ENV: production, development, etc.
	Port           string
	AppURL         string // public base URL used to build absolute upload URLs
	ShareBaseURL   string
	AllowedOrigins []string
	TrustProxy     bool // honour X-Real-IP / X-Forwarded-For in logs

	MongoURI          string
	MongoDatabase     string
	MongoTransactions bool // requires a replica set
	DBTimeout         time.Duration

	RedisURI     string // empty disables the feed cache and cross-instance fan-out
	FeedCacheTTL time.Duration

	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int

	MediaBackend       string
	UploadsDir         string
	MediaMaxBytes      int64
	MediaRestrictTypes bool
	MediaAllowedTypes  []string
	MaxJournalImages   int

	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	MinioPublicURL string
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))
	port := getEnv("PORT", "5000")

	allowedOrigins := parseList(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		for _, u := range []string{getEnv("FRONTEND_URL", "http://localhost:3000"), getEnv("FRONTEND_URL_2", "")} {
			u = strings.TrimSpace(u)
			if u != "" {
				allowedOrigins = append(allowedOrigins, u)
			}
		}
	}

	return &Config{
		Environment:    env,
		Port:           port,
		AppURL:         strings.TrimRight(getEnv("APP_URL", "http://localhost:"+port), "/"),
		ShareBaseURL:   strings.TrimRight(getEnv("SHARE_BASE_URL", "https://yourapp.com/share"), "/"),
		AllowedOrigins: allowedOrigins,
		TrustProxy:     getEnvBool("TRUST_PROXY", false),

		MongoURI:          getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://localhost:27017/travel-journal")),
		MongoDatabase:     getEnv("MONGO_DB", ""),
		MongoTransactions: getEnvBool("MONGO_TRANSACTIONS", false),
		DBTimeout:         getEnvDuration("DB_TIMEOUT", 5*time.Second),

		RedisURI:     getEnv("REDIS_URI", ""),
		FeedCacheTTL: getEnvDuration("FEED_CACHE_TTL", 30*time.Second),

		JWTSecret:  getEnv("JWT_SECRET", defaultJWTSecret),
		TokenTTL:   getEnvDuration("TOKEN_TTL", 7*24*time.Hour),
		BcryptCost: int(getEnvInt64("BCRYPT_COST", 10)),

		MediaBackend:       strings.ToLower(getEnv("MEDIA_BACKEND", MediaBackendLocal)),
		UploadsDir:         getEnv("UPLOADS_DIR", "uploads"),
		MediaMaxBytes:      getEnvInt64("MEDIA_MAX_BYTES", 5*1024*1024),
		MediaRestrictTypes: getEnvBool("MEDIA_RESTRICT_TYPES", true),
		MediaAllowedTypes:  parseList(getEnv("MEDIA_ALLOWED_TYPES", "image/jpeg,image/png,image/gif")),
		MaxJournalImages:   int(getEnvInt64("MAX_JOURNAL_IMAGES", 5)),

		CloudinaryName:      getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		CloudinaryFolder:    getEnv("CLOUDINARY_FOLDER", "travel-journal"),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getEnv("MINIO_BUCKET", "journal-images"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),
		MinioPublicURL: strings.TrimRight(getEnv("MINIO_PUBLIC_URL", "http://localhost:9000"), "/"),
	}
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	if c.IsProduction() && c.JWTSecret == defaultJWTSecret {
		return errors.New("JWT_SECRET must be set in production")
	}
	switch c.MediaBackend {
	case MediaBackendLocal:
	case MediaBackendCloudinary:
		if c.CloudinaryName == "" || c.CloudinaryAPIKey == "" || c.CloudinaryAPISecret == "" {
			return errors.New("cloudinary media backend requires CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET")
		}
	case MediaBackendMinio:
		if c.MinioAccessKey == "" || c.MinioSecretKey == "" {
			return errors.New("minio media backend requires MINIO_ACCESS_KEY and MINIO_SECRET_KEY")
		}
	default:
		return fmt.Errorf("unknown MEDIA_BACKEND %q", c.MediaBackend)
	}
	if c.MediaMaxBytes <= 0 {
		return errors.New("MEDIA_MAX_BYTES must be positive")
	}
	if c.MaxJournalImages <= 0 {
		return errors.New("MAX_JOURNAL_IMAGES must be positive")
	}
	return nil
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

func parseList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvInt64(key string, defaultValue int64) int64 {
	v, err := strconv.ParseInt(getEnv(key, ""), 10, 64)
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}
