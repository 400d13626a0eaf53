package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// MinPasswordLength is the floor for PASSWORD_MIN_LENGTH.
const MinPasswordLength = 8

type Config struct {
	DatabaseURL        string
	HTTPAddr           string // Listen address for the API server
	RedisURL           string // Optional; sessions and stats fall back to memory when empty
	JWTSecret          string // Secret key for JWT token signing
	JWTTTL             int    // JWT token expiration time in hours
	PasswordMinLength  int
	RateLimitRPS       float64 // Rate limit for general API endpoints (requests per second)
	RateLimitBurst     int     // Burst size for rate limiting
	RateLimitAuthRPS   float64 // Rate limit for auth endpoints (stricter)
	RateLimitAuthBurst int     // Burst size for auth endpoints
	LogLevel           string
	LogFormat          string
	StatsCacheTTL      time.Duration // How long a user's statistics stay cached
	ShutdownTimeout    time.Duration
}

// Load reads configuration from, in increasing precedence: built-in
// defaults, an optional config file (any format viper understands), a .env
// file and the process environment.
func Load(configFile string) (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or defaults")
	}

	v := viper.New()
	setDefaults(v)
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{
		DatabaseURL:        getEnv("DATABASE_URL", v.GetString("database_url")),
		HTTPAddr:           getEnv("HTTP_ADDR", v.GetString("http_addr")),
		RedisURL:           getEnv("REDIS_URL", v.GetString("redis_url")),
		JWTSecret:          getEnv("JWT_SECRET", v.GetString("jwt_secret")),
		JWTTTL:             getEnvInt("JWT_TTL_HOURS", v.GetInt("jwt_ttl_hours")),
		PasswordMinLength:  getEnvInt("PASSWORD_MIN_LENGTH", v.GetInt("password_min_length")),
		RateLimitRPS:       getEnvFloat("RATE_LIMIT_RPS", v.GetFloat64("rate_limit_rps")),
		RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", v.GetInt("rate_limit_burst")),
		RateLimitAuthRPS:   getEnvFloat("RATE_LIMIT_AUTH_RPS", v.GetFloat64("rate_limit_auth_rps")),
		RateLimitAuthBurst: getEnvInt("RATE_LIMIT_AUTH_BURST", v.GetInt("rate_limit_auth_burst")),
		LogLevel:           getEnv("LOG_LEVEL", v.GetString("log_level")),
		LogFormat:          getEnv("LOG_FORMAT", v.GetString("log_format")),
		StatsCacheTTL:      getEnvDuration("STATS_CACHE_TTL", v.GetDuration("stats_cache_ttl")),
		ShutdownTimeout:    getEnvDuration("SHUTDOWN_TIMEOUT", v.GetDuration("shutdown_timeout")),
	}
	if cfg.PasswordMinLength < MinPasswordLength {
		cfg.PasswordMinLength = MinPasswordLength
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("jwt_ttl_hours", 24)
	v.SetDefault("password_min_length", MinPasswordLength)
	v.SetDefault("rate_limit_rps", 10.0)      // 10 requests per second for general API
	v.SetDefault("rate_limit_burst", 20)      // Allow bursts of 20
	v.SetDefault("rate_limit_auth_rps", 5.0)  // 5 requests per second for auth (stricter)
	v.SetDefault("rate_limit_auth_burst", 10) // Allow bursts of 10
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("stats_cache_ttl", 5*time.Minute)
	v.SetDefault("shutdown_timeout", 10*time.Second)
}

// Validate reports every problem at once so a misconfigured deployment can
// be fixed in one pass.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DatabaseURL) == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if len(c.JWTSecret) < 32 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 bytes"))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL_HOURS must be positive"))
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive"))
	}
	if c.RateLimitAuthRPS <= 0 || c.RateLimitAuthBurst <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_AUTH_RPS and RATE_LIMIT_AUTH_BURST must be positive"))
	}
	if c.StatsCacheTTL < 0 {
		errs = append(errs, errors.New("STATS_CACHE_TTL cannot be negative"))
	}
	return errors.Join(errs...)
}

// TokenTTL returns the JWT lifetime.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTTTL) * time.Hour
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
