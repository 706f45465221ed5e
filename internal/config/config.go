package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StorePostgres = "postgres"
)

type Config struct {
	Port           string
	Env            string
	LogLevel       string
	Store          string
	BookingsFile   string
	DoctorsFile    string
	DatabaseURL    string
	SlotCapacity   int
	Slots          string
	RedisURL       string
	LockTTL        time.Duration
	BookRatePerMin int
	BookRateBurst  int
	ReportCron     string
	StaticDir      string
	CORSOrigins    []string
	TrustProxy     bool
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		Env:          getEnv("ENV", "development"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		Store:        strings.ToLower(getEnv("STORE", StoreFile)),
		BookingsFile: getEnv("BOOKINGS_FILE", "data/bookings.json"),
		DoctorsFile:  os.Getenv("DOCTORS_FILE"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		Slots:        os.Getenv("SLOTS"),
		RedisURL:     os.Getenv("REDIS_URL"),
		ReportCron:   getEnv("REPORT_CRON", "0 20 * * *"),
		StaticDir:    getEnv("STATIC_DIR", "public"),
	}
	if _, ok := os.LookupEnv("DOCTORS_FILE"); !ok {
		cfg.DoctorsFile = "data/doctors.json"
	}
	if _, ok := os.LookupEnv("REPORT_CRON"); ok {
		cfg.ReportCron = strings.TrimSpace(os.Getenv("REPORT_CRON"))
	}

	var err error
	if cfg.SlotCapacity, err = getInt("SLOT_CAPACITY", 1); err != nil {
		return nil, err
	}
	if cfg.BookRatePerMin, err = getInt("BOOK_RATE_PER_MIN", 60); err != nil {
		return nil, err
	}
	if cfg.BookRateBurst, err = getInt("BOOK_RATE_BURST", 10); err != nil {
		return nil, err
	}
	if cfg.LockTTL, err = time.ParseDuration(getEnv("LOCK_TTL", "5s")); err != nil {
		return nil, fmt.Errorf("LOCK_TTL: %w", err)
	}
	if cfg.TrustProxy, err = strconv.ParseBool(getEnv("TRUST_PROXY", "false")); err != nil {
		return nil, fmt.Errorf("TRUST_PROXY: %w", err)
	}

	for _, o := range strings.Split(getEnv("CORS_ORIGINS", "*"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.SlotCapacity < 1 {
		return fmt.Errorf("SLOT_CAPACITY must be at least 1, got %d", c.SlotCapacity)
	}
	switch c.Store {
	case StoreMemory:
	case StoreFile:
		if c.BookingsFile == "" {
			return fmt.Errorf("BOOKINGS_FILE is required when STORE is %q", StoreFile)
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE is %q", StorePostgres)
		}
	default:
		return fmt.Errorf("STORE must be %q, %q or %q, got %q", StoreMemory, StoreFile, StorePostgres, c.Store)
	}
	// Only the file store keeps state that several processes share through
	// REDIS_URL locks. Postgres serializes writers itself.
	if c.RedisURL != "" && c.Store != StoreFile {
		return fmt.Errorf("REDIS_URL is only supported with STORE=%q, got %q", StoreFile, c.Store)
	}
	if c.BookRatePerMin < 1 || c.BookRateBurst < 1 {
		return fmt.Errorf("BOOK_RATE_PER_MIN and BOOK_RATE_BURST must be positive")
	}
	if c.LockTTL <= 0 {
		return fmt.Errorf("LOCK_TTL must be positive")
	}
	return nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}
