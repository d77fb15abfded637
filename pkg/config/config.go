package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// Config holds the application configuration.
type Config struct {
	// Environment
	Environment string
	Port        string

	// Database
	PostgresDSN string
	SQLitePath  string

	// Credentials
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int

	// Access policy
	AccessPolicy       string
	TenantScopedReads  bool
	LoginUnifiedErrors bool

	// HTTP
	AllowedOrigins []string
	LoginRateLimit string
	RequestTimeout time.Duration
	MaxBodyBytes   int64
	// TrustProxy takes the client address from X-Forwarded-For and
	// X-Real-IP. Enable only behind a proxy that overwrites those headers.
	TrustProxy bool

	// Logging
	LogLevel string
	Debug    bool
}

// LoadConfig loads configuration from the environment, falling back to the
// .env file that matches ENVIRONMENT.
func LoadConfig() *Config {
	return load(viper.New())
}

func load(v *viper.Viper) *Config {
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("PORT", "3000")
	v.SetDefault("SQLITE_PATH", "./data/taskhub.db")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("TOKEN_TTL", time.Hour)
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("ALLOWED_ORIGINS", "*")
	v.SetDefault("LOGIN_RATE_LIMIT", "20-M")
	v.SetDefault("REQUEST_TIMEOUT", 25*time.Second)
	v.SetDefault("MAX_BODY_BYTES", 1<<20)
	v.SetDefault("LOG_LEVEL", "info")
	v.AutomaticEnv()

	// Environment variables win over file values; a missing file is not an error.
	switch v.GetString("ENVIRONMENT") {
	case "production":
		v.SetConfigFile(".env.production")
	default:
		v.SetConfigFile(".env.local")
	}
	v.SetConfigType("env")
	_ = v.ReadInConfig()

	cfg := &Config{
		Environment:        v.GetString("ENVIRONMENT"),
		Port:               v.GetString("PORT"),
		PostgresDSN:        strings.TrimSpace(v.GetString("POSTGRES_DSN")),
		SQLitePath:         strings.TrimSpace(v.GetString("SQLITE_PATH")),
		JWTSecret:          v.GetString("JWT_SECRET"),
		TokenTTL:           v.GetDuration("TOKEN_TTL"),
		BcryptCost:         v.GetInt("BCRYPT_COST"),
		AccessPolicy:       strings.TrimSpace(v.GetString("ACCESS_POLICY")),
		TenantScopedReads:  v.GetBool("TENANT_SCOPED_READS"),
		LoginUnifiedErrors: v.GetBool("LOGIN_UNIFIED_ERRORS"),
		LoginRateLimit:     strings.TrimSpace(v.GetString("LOGIN_RATE_LIMIT")),
		RequestTimeout:     v.GetDuration("REQUEST_TIMEOUT"),
		MaxBodyBytes:       v.GetInt64("MAX_BODY_BYTES"),
		TrustProxy:         v.GetBool("TRUST_PROXY"),
		LogLevel:           v.GetString("LOG_LEVEL"),
		Debug:              v.GetBool("DEBUG"),
	}

	allowedOrigins := strings.TrimSpace(v.GetString("ALLOWED_ORIGINS"))
	if allowedOrigins == "*" {
		cfg.AllowedOrigins = []string{"*"}
	} else {
		for _, o := range strings.Split(allowedOrigins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}

	if cfg.IsProduction() {
		cfg.Debug = false
	}

	return cfg
}

// Cached config (initialized once per cold start)
var (
	cachedConfig *Config
	configOnce   sync.Once
)

// GetCached returns the process-wide cached Config.
// On serverless deployments it initializes once per cold start and is reused
// across warm invocations.
func GetCached() *Config {
	configOnce.Do(func() {
		cachedConfig = LoadConfig()
	})
	return cachedConfig
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.JWTSecret == "" || c.JWTSecret == defaultJWTSecret {
		if c.IsProduction() {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
	}

	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}

	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost)
	}

	if c.PostgresDSN == "" {
		if c.IsProduction() {
			return fmt.Errorf("POSTGRES_DSN must be set in production")
		}
		if c.SQLitePath == "" {
			return fmt.Errorf("incomplete database configuration: set POSTGRES_DSN or SQLITE_PATH")
		}
	}

	return nil
}

// UsesDefaultSecret reports whether the built-in development secret is in use.
func (c *Config) UsesDefaultSecret() bool {
	return c.JWTSecret == defaultJWTSecret
}

// IsProduction reports whether ENVIRONMENT is production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment reports whether ENVIRONMENT is development.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
