package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Log       LogConfig
	Pricing   PricingConfig
	Order     OrderConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port               int
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	ShutdownTimeout    time.Duration
	CORSAllowedOrigins []string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type LogConfig struct {
	Level string
	// Format is "json" for production output or "console" for local runs.
	Format string
}

// PricingConfig holds the business rates applied by the pricing calculator.
// Rates are fractions: 0.08 means 8%.
type PricingConfig struct {
	TaxRate           float64
	ServiceChargeRate float64
	LoyaltyPointsRate float64
}

type OrderConfig struct {
	MaxItemsPerOrder      int
	MinCustomerNameLength int
	// MaxCustomerNameLength matches the orders.customer_name column width.
	MaxCustomerNameLength int
	// StrictItemValidation rejects an order when any requested item id does
	// not resolve to an available menu item. When false, unresolved ids are
	// dropped and the order fails only if nothing resolves.
	StrictItemValidation bool
	TxTimeout            time.Duration
}

type CacheConfig struct {
	Enabled         bool
	TTL             time.Duration
	AvailabilityTTL time.Duration
	Size            int
}

type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	durations := map[string]time.Duration{}
	for _, key := range []string{
		"SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT", "SERVER_IDLE_TIMEOUT", "SERVER_SHUTDOWN_TIMEOUT",
		"DB_CONN_MAX_LIFETIME", "ORDER_TX_TIMEOUT", "CACHE_TTL", "CACHE_AVAILABILITY_TTL",
	} {
		d, err := time.ParseDuration(v.GetString(key))
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", key, err)
		}
		durations[key] = d
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:               v.GetInt("SERVER_PORT"),
			ReadTimeout:        durations["SERVER_READ_TIMEOUT"],
			WriteTimeout:       durations["SERVER_WRITE_TIMEOUT"],
			IdleTimeout:        durations["SERVER_IDLE_TIMEOUT"],
			ShutdownTimeout:    durations["SERVER_SHUTDOWN_TIMEOUT"],
			CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: durations["DB_CONN_MAX_LIFETIME"],
			AutoMigrate:     v.GetBool("DB_AUTO_MIGRATE"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Pricing: PricingConfig{
			TaxRate:           v.GetFloat64("PRICING_TAX_RATE"),
			ServiceChargeRate: v.GetFloat64("PRICING_SERVICE_CHARGE_RATE"),
			LoyaltyPointsRate: v.GetFloat64("PRICING_LOYALTY_POINTS_RATE"),
		},
		Order: OrderConfig{
			MaxItemsPerOrder:      v.GetInt("ORDER_MAX_ITEMS"),
			MinCustomerNameLength: v.GetInt("ORDER_MIN_CUSTOMER_NAME_LENGTH"),
			MaxCustomerNameLength: v.GetInt("ORDER_MAX_CUSTOMER_NAME_LENGTH"),
			StrictItemValidation:  v.GetBool("ORDER_STRICT_ITEM_VALIDATION"),
			TxTimeout:             durations["ORDER_TX_TIMEOUT"],
		},
		Cache: CacheConfig{
			Enabled:         v.GetBool("CACHE_ENABLED"),
			TTL:             durations["CACHE_TTL"],
			AvailabilityTTL: durations["CACHE_AVAILABILITY_TTL"],
			Size:            v.GetInt("CACHE_SIZE"),
		},
		RateLimit: RateLimitConfig{
			Enabled: v.GetBool("RATE_LIMIT_ENABLED"),
			RPS:     v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:   v.GetInt("RATE_LIMIT_BURST"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_READ_TIMEOUT", "10s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "10s")
	v.SetDefault("SERVER_IDLE_TIMEOUT", "30s")
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 3306)
	v.SetDefault("DB_USER", "bistro")
	v.SetDefault("DB_PASSWORD", "secret")
	v.SetDefault("DB_NAME", "bistro")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	v.SetDefault("DB_AUTO_MIGRATE", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("PRICING_TAX_RATE", 0.08)
	v.SetDefault("PRICING_SERVICE_CHARGE_RATE", 0.10)
	v.SetDefault("PRICING_LOYALTY_POINTS_RATE", 1)
	v.SetDefault("ORDER_MAX_ITEMS", 20)
	v.SetDefault("ORDER_MIN_CUSTOMER_NAME_LENGTH", 2)
	v.SetDefault("ORDER_MAX_CUSTOMER_NAME_LENGTH", 255)
	v.SetDefault("ORDER_STRICT_ITEM_VALIDATION", false)
	v.SetDefault("ORDER_TX_TIMEOUT", "5s")
	v.SetDefault("CACHE_ENABLED", true)
	v.SetDefault("CACHE_TTL", "5m")
	v.SetDefault("CACHE_AVAILABILITY_TTL", "30s")
	v.SetDefault("CACHE_SIZE", 512)
	v.SetDefault("RATE_LIMIT_ENABLED", true)
	v.SetDefault("RATE_LIMIT_RPS", 10)
	v.SetDefault("RATE_LIMIT_BURST", 20)
}

// Validate rejects settings the components cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Server.Port <= 0 || c.Server.Port > 65535:
		return fmt.Errorf("invalid SERVER_PORT %d", c.Server.Port)
	case c.Pricing.TaxRate < 0 || c.Pricing.ServiceChargeRate < 0 || c.Pricing.LoyaltyPointsRate < 0:
		return fmt.Errorf("pricing rates must be non-negative")
	case c.Order.MaxItemsPerOrder <= 0:
		return fmt.Errorf("ORDER_MAX_ITEMS must be positive")
	case c.Order.MaxCustomerNameLength < c.Order.MinCustomerNameLength || c.Order.MaxCustomerNameLength > 255:
		return fmt.Errorf("ORDER_MAX_CUSTOMER_NAME_LENGTH must be between ORDER_MIN_CUSTOMER_NAME_LENGTH and 255")
	case c.Order.TxTimeout <= 0:
		return fmt.Errorf("ORDER_TX_TIMEOUT must be positive")
	case c.Cache.Enabled && c.Cache.Size <= 0:
		return fmt.Errorf("CACHE_SIZE must be positive when the cache is enabled")
	case c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0):
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive when rate limiting is enabled")
	}
	return nil
}

// DSN builds the go-sql-driver/mysql data source name.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&loc=UTC",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
