package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "promptmaster_dev_secret_change_me"

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Security  SecurityConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Seed      SeedConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        string
	Timeout     time.Duration
	LogsPath    string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Enabled      bool
	Host         string
	Port         int
	Password     string
	Database     int
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CacheTTL     time.Duration
}

// JWTConfig holds signing and lifetime settings for both token kinds.
// AccessTTL defaults to 7 days to stay compatible with existing clients.
type JWTConfig struct {
	Secret          string
	Issuer          string
	AccessAudience  string
	RefreshAudience string
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
}

type SecurityConfig struct {
	HashAlgorithm    string
	BcryptCost       int
	MaxLoginAttempts int
	LockoutDuration  time.Duration
	ResetTokenTTL    time.Duration
}

type RateLimitConfig struct {
	AuthRequests int
	AuthWindow   time.Duration
	APIRequests  int
	APIWindow    time.Duration
}

type CORSConfig struct {
	AllowedOrigin string
}

type SeedConfig struct {
	AdminEmail        string
	AdminPassword     string
	// AdminPasswordHash, when set, is stored as the admin digest instead of hashing AdminPassword.
	AdminPasswordHash string
	AdminName         string
}

func LoadConfig() (*Config, error) {
	// .env is optional; real deployments inject the environment directly
	_ = godotenv.Load()

	config := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "promptmaster-api"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Timeout:     getEnvAsDuration("REQUEST_TIMEOUT", 30*time.Second),
			LogsPath:    getEnv("LOGS_PATH", ""),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			Name:            getEnv("DB_NAME", "promptmaster"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 50),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		},
		Redis: RedisConfig{
			Enabled:      getEnvAsBool("REDIS_ENABLED", false),
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnvAsInt("REDIS_PORT", 6379),
			Password:     getEnv("REDIS_PASSWORD", ""),
			Database:     getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			DialTimeout:  getEnvAsDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvAsDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvAsDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			CacheTTL:     getEnvAsDuration("CACHE_TTL", 5*time.Minute),
		},
		JWT: JWTConfig{
			Secret:          getEnv("JWT_SECRET", defaultJWTSecret),
			Issuer:          getEnv("JWT_ISSUER", "promptmaster"),
			AccessAudience:  getEnv("JWT_ACCESS_AUDIENCE", "promptmaster-users"),
			RefreshAudience: getEnv("JWT_REFRESH_AUDIENCE", "promptmaster-refresh"),
			AccessTTL:       getEnvAsDuration("JWT_ACCESS_TTL", 7*24*time.Hour),
			RefreshTTL:      getEnvAsDuration("JWT_REFRESH_TTL", 30*24*time.Hour),
		},
		Security: SecurityConfig{
			HashAlgorithm:    getEnv("PASSWORD_HASH_ALGORITHM", "bcrypt"),
			BcryptCost:       getEnvAsInt("BCRYPT_COST", 12),
			MaxLoginAttempts: getEnvAsInt("MAX_LOGIN_ATTEMPTS", 5),
			LockoutDuration:  getEnvAsDuration("LOCKOUT_DURATION", 30*time.Minute),
			ResetTokenTTL:    getEnvAsDuration("RESET_TOKEN_TTL", time.Hour),
		},
		RateLimit: RateLimitConfig{
			AuthRequests: getEnvAsInt("RATE_LIMIT_AUTH_REQUESTS", 5),
			AuthWindow:   getEnvAsDuration("RATE_LIMIT_AUTH_WINDOW", 15*time.Minute),
			APIRequests:  getEnvAsInt("RATE_LIMIT_API_REQUESTS", 100),
			APIWindow:    getEnvAsDuration("RATE_LIMIT_API_WINDOW", 15*time.Minute),
		},
		CORS: CORSConfig{
			AllowedOrigin: getEnv("CORS_ALLOWED_ORIGIN", "http://localhost:3000"),
		},
		Seed: SeedConfig{
			AdminEmail:        getEnv("ADMIN_EMAIL", "admin@promptmaster.dev"),
			AdminPassword:     getEnv("ADMIN_PASSWORD", "ChangeMe123!"),
			AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
			AdminName:         getEnv("ADMIN_NAME", "PromptMaster Admin"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate rejects settings the services cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	}
	if c.IsProduction() && c.JWT.Secret == defaultJWTSecret {
		errs = append(errs, errors.New("JWT_SECRET must be set in production"))
	}
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		errs = append(errs, errors.New("token TTLs must be positive"))
	}
	if c.Security.HashAlgorithm != "bcrypt" && c.Security.HashAlgorithm != "argon2id" {
		errs = append(errs, fmt.Errorf("unsupported PASSWORD_HASH_ALGORITHM %q", c.Security.HashAlgorithm))
	}
	if c.Security.BcryptCost < 4 || c.Security.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST %d out of range 4..31", c.Security.BcryptCost))
	}
	if c.Security.MaxLoginAttempts <= 0 {
		errs = append(errs, errors.New("MAX_LOGIN_ATTEMPTS must be positive"))
	}
	if c.RateLimit.AuthRequests <= 0 || c.RateLimit.APIRequests <= 0 {
		errs = append(errs, errors.New("rate limit request counts must be positive"))
	}
	if c.RateLimit.AuthWindow <= 0 || c.RateLimit.APIWindow <= 0 {
		errs = append(errs, errors.New("rate limit windows must be positive"))
	}

	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func (c *Config) DatabaseConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func (c *Config) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		boolValue, err := strconv.ParseBool(value)
		if err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
