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

// Cart storage drivers.
const (
	CartStorageRedis    = "redis"
	CartStoragePostgres = "postgres"
	CartStorageMemory   = "memory"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port      string
	Env       string
	JWTSecret string
	JWTTTL    time.Duration

	CORSAllowedOrigins []string

	DB        DatabaseConfig
	Redis     RedisConfig
	BakeryAPI BakeryAPIConfig
	Cart      CartConfig
	Catalog   CatalogConfig
	Checkout  CheckoutConfig
	Worker    WorkerConfig
	Assets    AssetsConfig
	SMTP      SMTPConfig
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// BakeryAPIConfig points at the upstream bakery REST API.
type BakeryAPIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// CartConfig controls where carts live and how long.
type CartConfig struct {
	Storage string
	TTL     time.Duration // lifetime of a stored cart record
	IdleTTL time.Duration // lifetime of an unused in-memory store
}

// CatalogConfig controls catalog caching.
type CatalogConfig struct {
	CacheTTL time.Duration
}

// CheckoutConfig contains order pricing and validation rules.
type CheckoutConfig struct {
	DeliveryCharge          float64
	FreeDeliveryThreshold   float64
	PhotoRequiredCategories []string
}

// WorkerConfig contains interval configuration for background workers.
type WorkerConfig struct {
	CatalogSyncInterval time.Duration
	CartEvictInterval   time.Duration
}

// AssetsConfig contains the MinIO/S3 asset host settings. Uploads are
// disabled when Endpoint is empty.
type AssetsConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
}

// SMTPConfig contains mail settings. Confirmation mails are disabled when
// Host is empty.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Load .env if present; ignore error if file is missing so that production
	// environments relying solely on real environment variables keep working.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.CORSAllowedOrigins = getEnvList("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000")

	// Database
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	cfg.BakeryAPI = BakeryAPIConfig{
		BaseURL: strings.TrimSuffix(getEnv("BAKERY_API_URL", ""), "/"),
	}

	cfg.Cart = CartConfig{
		Storage: strings.ToLower(getEnv("CART_STORAGE", CartStorageRedis)),
	}

	cfg.Checkout = CheckoutConfig{
		DeliveryCharge:          getEnvFloat("DELIVERY_CHARGE", 0),
		FreeDeliveryThreshold:   getEnvFloat("FREE_DELIVERY_THRESHOLD", 0),
		PhotoRequiredCategories: getEnvList("PHOTO_REQUIRED_CATEGORIES", "Photo Cakes"),
	}

	// Asset host (MinIO / S3 compatible)
	cfg.Assets = AssetsConfig{
		Endpoint:  getEnv("MINIO_ENDPOINT", ""),
		AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		SecretKey: getEnv("MINIO_SECRET_KEY", ""),
		Bucket:    getEnv("MINIO_BUCKET", "cake-assets"),
		UseSSL:    getEnv("MINIO_USE_SSL", "false") == "true",
		PublicURL: strings.TrimSuffix(getEnv("MINIO_PUBLIC_URL", ""), "/"),
	}

	cfg.SMTP = SMTPConfig{
		Host:     getEnv("SMTP_HOST", ""),
		Port:     getEnvInt("SMTP_PORT", 587),
		Username: getEnv("SMTP_USERNAME", ""),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     getEnv("SMTP_FROM", "orders@localhost"),
	}

	// Durations
	var err error
	if cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", "24h"); err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	if cfg.BakeryAPI.Timeout, err = parseDurationEnv("BAKERY_API_TIMEOUT", "15s"); err != nil {
		return nil, fmt.Errorf("invalid BAKERY_API_TIMEOUT: %w", err)
	}
	if cfg.Cart.TTL, err = parseDurationEnv("CART_TTL", "720h"); err != nil {
		return nil, fmt.Errorf("invalid CART_TTL: %w", err)
	}
	if cfg.Cart.IdleTTL, err = parseDurationEnv("CART_IDLE_TTL", "30m"); err != nil {
		return nil, fmt.Errorf("invalid CART_IDLE_TTL: %w", err)
	}
	if cfg.Catalog.CacheTTL, err = parseDurationEnv("CATALOG_CACHE_TTL", "10m"); err != nil {
		return nil, fmt.Errorf("invalid CATALOG_CACHE_TTL: %w", err)
	}
	if cfg.Worker.CatalogSyncInterval, err = parseDurationEnv("CATALOG_SYNC_INTERVAL", "5m"); err != nil {
		return nil, fmt.Errorf("invalid CATALOG_SYNC_INTERVAL: %w", err)
	}
	if cfg.Worker.CartEvictInterval, err = parseDurationEnv("CART_EVICT_INTERVAL", "5m"); err != nil {
		return nil, fmt.Errorf("invalid CART_EVICT_INTERVAL: %w", err)
	}

	// Receipts and Postgres cart snapshots need a database in every mode.
	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set for authentication")
	}

	if cfg.BakeryAPI.BaseURL == "" {
		return nil, errors.New("BAKERY_API_URL must point at the bakery REST API")
	}

	switch cfg.Cart.Storage {
	case CartStorageRedis, CartStoragePostgres, CartStorageMemory:
	default:
		return nil, fmt.Errorf("unknown CART_STORAGE %q: use redis, postgres or memory", cfg.Cart.Storage)
	}

	if cfg.Checkout.DeliveryCharge < 0 || cfg.Checkout.FreeDeliveryThreshold < 0 {
		return nil, errors.New("DELIVERY_CHARGE and FREE_DELIVERY_THRESHOLD must be >= 0")
	}

	return cfg, nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// getEnvFloat returns the value of an environment variable as a float or a default if empty/invalid.
func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// getEnvList splits a comma separated variable, dropping blanks.
func getEnvList(key, def string) []string {
	raw := getEnv(key, def)
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}
