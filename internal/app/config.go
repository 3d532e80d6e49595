package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

const defaultAddr = "0.0.0.0:8080"

// Config holds the service configuration, loadable from environment variables
// (CAFE_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL string `usage:"PostgreSQL connection URL (CAFE_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	RateLimit   RateLimitConfig
	Health      HealthConfig
	Graceful    GracefulConfig
}

// RateLimitConfig controls the per-client token bucket limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// HealthConfig controls background probe scheduling.
type HealthConfig struct {
	Interval        time.Duration `default:"10s"   usage:"Interval between health check runs" flag:"health-interval"`
	MaxGoroutines   int           `default:"10000" usage:"Liveness fails above this goroutine count" flag:"max-goroutines"`
	DatabaseTimeout time.Duration `default:"5s"    usage:"Timeout of the database ping check" flag:"db-check-timeout"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables and YAML config
// files, then applies platform defaults.
func LoadConfig() (*Config, error) {
	return loadConfig(aconfig.Config{
		EnvPrefix: "CAFE",
		Files:     []string{"config.yaml", "/etc/cafeteria/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
}

func loadConfig(ac aconfig.Config) (*Config, error) {
	var cfg Config
	if err := aconfig.LoaderFor(&cfg, ac).Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return errors.New("database URL is required: set CAFE_DATABASE_URL or DATABASE_URL")
	}
	if c.RateLimit.Max <= 0 || c.RateLimit.Window <= 0 {
		return errors.Errorf("invalid rate limit %d per %s", c.RateLimit.Max, c.RateLimit.Window)
	}
	return nil
}

// applyPlatformDefaults maps the standard DATABASE_URL and PORT variables set
// by hosting platforms onto the CAFE_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}
