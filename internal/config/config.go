package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration loaded from environment variables or a .env file.
type Config struct {
	AppEnv          string        `mapstructure:"APP_ENV" validate:"required,oneof=development staging production test"`
	Port            string        `mapstructure:"PORT" validate:"required,numeric"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT" validate:"required"`

	LogLevel  string `mapstructure:"LOG_LEVEL" validate:"required,oneof=trace debug info warn error fatal panic"`
	LogFormat string `mapstructure:"LOG_FORMAT" validate:"required,oneof=json console"`

	DatabaseURL   string `mapstructure:"DATABASE_URL" validate:"required"`
	DBMaxConns    int32  `mapstructure:"DB_MAX_CONNS" validate:"gte=0,lte=1000"`
	DBAutoMigrate bool   `mapstructure:"DB_AUTO_MIGRATE"`

	// RedisAddr empty disables the verified-token cache.
	RedisAddr     string        `mapstructure:"REDIS_ADDR" validate:"omitempty,hostname_port"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB" validate:"gte=0,lte=15"`
	TokenCacheTTL time.Duration `mapstructure:"TOKEN_CACHE_TTL"`

	IdentityProvider        string        `mapstructure:"IDENTITY_PROVIDER" validate:"required,oneof=firebase jwks"`
	FirebaseProjectID       string        `mapstructure:"FIREBASE_PROJECT_ID" validate:"required"`
	FirebaseCredentialsFile string        `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
	JWKSURL                 string        `mapstructure:"JWKS_URL" validate:"omitempty,url"`
	JWKSRefreshInterval     time.Duration `mapstructure:"JWKS_REFRESH_INTERVAL"`
	AllowHeaderIdentity     bool          `mapstructure:"AUTH_ALLOW_HEADER_IDENTITY"`

	MinioEndpoint    string        `mapstructure:"MINIO_ENDPOINT" validate:"required"`
	MinioAccessKey   string        `mapstructure:"MINIO_ACCESS_KEY" validate:"required"`
	MinioSecretKey   string        `mapstructure:"MINIO_SECRET_KEY" validate:"required"`
	MinioUseSSL      bool          `mapstructure:"MINIO_USE_SSL"`
	StorageBucket    string        `mapstructure:"STORAGE_BUCKET" validate:"required"`
	StoragePublicURL string        `mapstructure:"STORAGE_PUBLIC_URL" validate:"omitempty,url"`
	StorageURLExpiry time.Duration `mapstructure:"STORAGE_URL_EXPIRY" validate:"required"`
	MaxUploadBytes   int64         `mapstructure:"MAX_UPLOAD_BYTES" validate:"gt=0"`

	// UserSyncInterval of zero disables the provider -> database sync job.
	UserSyncInterval time.Duration `mapstructure:"USER_SYNC_INTERVAL"`

	CORSAllowedOrigins []string `mapstructure:"CORS_ALLOWED_ORIGINS"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

var defaults = map[string]interface{}{
	"APP_ENV":                    "development",
	"PORT":                       "8080",
	"SHUTDOWN_TIMEOUT":           "15s",
	"LOG_LEVEL":                  "info",
	"LOG_FORMAT":                 "json",
	"DB_MAX_CONNS":               10,
	"DB_AUTO_MIGRATE":            false,
	"REDIS_DB":                   0,
	"TOKEN_CACHE_TTL":            "5m",
	"IDENTITY_PROVIDER":          "firebase",
	"JWKS_URL":                   "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com",
	"JWKS_REFRESH_INTERVAL":      "1h",
	"AUTH_ALLOW_HEADER_IDENTITY": true,
	"MINIO_ENDPOINT":             "localhost:9000",
	"MINIO_ACCESS_KEY":           "minioadmin",
	"MINIO_SECRET_KEY":           "minioadmin",
	"MINIO_USE_SSL":              false,
	"STORAGE_BUCKET":             "circuitweb",
	"STORAGE_URL_EXPIRY":         "24h",
	"MAX_UPLOAD_BYTES":           32 << 20,
	"USER_SYNC_INTERVAL":         "0s",
	"CORS_ALLOWED_ORIGINS":       "*",
}

// keys without a default still have to be bound so Unmarshal sees them.
var unboundKeys = []string{
	"DATABASE_URL",
	"REDIS_ADDR",
	"REDIS_PASSWORD",
	"FIREBASE_PROJECT_ID",
	"FIREBASE_CREDENTIALS_FILE",
	"STORAGE_PUBLIC_URL",
}

// Load reads .env files if present, applies defaults, binds environment variables
// and validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for _, key := range unboundKeys {
		_ = v.BindEnv(key)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config unmarshal error: %w", err)
	}

	// comma separated env values arrive as a single element
	c.CORSAllowedOrigins = splitList(c.CORSAllowedOrigins)

	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &c, nil
}

// MustLoad loads configuration or exits the process on failure.
func MustLoad() *Config {
	c, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	return c
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
