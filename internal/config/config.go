// Package config loads service configuration from defaults, an optional YAML
// file and CHECKOUT_* environment variables, in increasing precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. CHECKOUT_SERVER_PORT.
const EnvPrefix = "CHECKOUT"

// Config aggregates application configuration values.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	API      APIConfig      `mapstructure:"api"`
	Breaker  BreakerConfig  `mapstructure:"breaker"`
	Checkout CheckoutConfig `mapstructure:"checkout"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

// ServerConfig governs the HTTP server.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// APIConfig describes the storefront API the collaborators talk to.
type APIConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
	SpamToken     string        `mapstructure:"spam_token"`
}

// BreakerConfig configures the circuit breaker in front of the storefront API.
type BreakerConfig struct {
	FailureThreshold  int           `mapstructure:"failure_threshold"`
	ResetTimeout      time.Duration `mapstructure:"reset_timeout"`
	HalfOpenSuccesses int           `mapstructure:"half_open_successes"`
}

// CheckoutConfig configures the orchestration layer itself.
type CheckoutConfig struct {
	FixturePath         string        `mapstructure:"fixture_path"`
	ContractsDir        string        `mapstructure:"contracts_dir"` // per-contract schema overrides
	PaymentRequiredRule string        `mapstructure:"payment_required_rule"`
	ExternalSource      string        `mapstructure:"external_source"`
	OperationTimeout    time.Duration `mapstructure:"operation_timeout"`
	JournalLimit        int           `mapstructure:"journal_limit"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level         string `mapstructure:"level"`
	Format        string `mapstructure:"format"` // text|json
	IncludeCaller bool   `mapstructure:"include_caller"`
}

// TracingConfig selects the span exporter.
type TracingConfig struct {
	ServiceName string `mapstructure:"service_name"`
	Exporter    string `mapstructure:"exporter"` // none|stdout
}

var defaults = map[string]any{
	"server.host":             "0.0.0.0",
	"server.port":             8080,
	"server.read_timeout":     10 * time.Second,
	"server.write_timeout":    15 * time.Second,
	"server.shutdown_timeout": 10 * time.Second,

	"api.base_url":       "http://localhost:8081",
	"api.timeout":        10 * time.Second,
	"api.retry_attempts": 2,
	"api.retry_delay":    200 * time.Millisecond,
	"api.spam_token":     "",

	"breaker.failure_threshold":   5,
	"breaker.reset_timeout":       30 * time.Second,
	"breaker.half_open_successes": 1,

	"checkout.fixture_path":          "",
	"checkout.contracts_dir":         "",
	"checkout.payment_required_rule": "",
	"checkout.external_source":       "",
	"checkout.operation_timeout":     30 * time.Second,
	"checkout.journal_limit":         1000,

	"logging.level":          "info",
	"logging.format":         "text",
	"logging.include_caller": false,

	"tracing.service_name": "checkout-orchestrator",
	"tracing.exporter":     "none",
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	cfg, err := decode(newViper())
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads path (skipped when empty) and applies environment overrides.
func Load(path string) (Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the service cannot start with.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d out of range", c.Server.Port)
	}
	if c.API.BaseURL == "" {
		return fmt.Errorf("config: api.base_url is required")
	}
	if c.API.RetryAttempts < 0 {
		return fmt.Errorf("config: api.retry_attempts must not be negative")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("config: logging.format %q must be text or json", c.Logging.Format)
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}
