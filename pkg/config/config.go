package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Store struct {
		Path string `yaml:"path"`
	} `yaml:"store"`
	Providers []string `yaml:"providers"`
	Binance   struct {
		Symbols         []string `yaml:"symbols"` // lowercase in config
		Transport       string   `yaml:"transport"`
		RestPollSeconds float64  `yaml:"rest_poll_seconds"`
		WebSocketURL    string   `yaml:"websocket_url"`
		RestURL         string   `yaml:"rest_url"`
	} `yaml:"binance"`
	Bars struct {
		Intervals []string `yaml:"intervals"`
	} `yaml:"bars"`
	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic"`
		RequiredAcks int           `yaml:"required_acks"`
		Compression  string        `yaml:"compression"`
		MaxAttempts  int           `yaml:"max_attempts"`
		Linger       time.Duration `yaml:"linger"`
		BatchSize    int           `yaml:"batch_size"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
	} `yaml:"kafka"`
	Cache struct {
		Enabled bool          `yaml:"enabled"`
		TTL     time.Duration `yaml:"ttl"`
		Redis   struct {
			Enabled  bool   `yaml:"enabled"`
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("BINANCE_SYMBOLS"); v != "" {
		c.Binance.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("BINANCE_TRANSPORT"); v != "" {
		c.Binance.Transport = v
	}
	if v := os.Getenv("BINANCE_REST_POLL_SECONDS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Binance.RestPollSeconds = f
		}
	}
	if v := os.Getenv("BAR_INTERVALS"); v != "" {
		c.Bars.Intervals = strings.Split(v, ",")
	}
	if v := os.Getenv("STORE_PATH"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
	if c.Store.Path == "" {
		c.Store.Path = "data/market.db"
	}
	if len(c.Providers) == 0 {
		c.Providers = []string{"binance"}
	}
	if len(c.Binance.Symbols) == 0 {
		c.Binance.Symbols = []string{"btcusdt", "ethusdt"}
	}
	if c.Binance.Transport == "" {
		c.Binance.Transport = "auto"
	}
	if c.Binance.RestPollSeconds == 0 {
		c.Binance.RestPollSeconds = 2.0
	}
	if len(c.Bars.Intervals) == 0 {
		c.Bars.Intervals = []string{"1m", "5m", "15m", "1h", "4h", "1d", "1w"}
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 5 * time.Second
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Binance.Transport {
	case "ws", "rest", "auto":
	default:
		return fmt.Errorf("binance.transport must be 'ws', 'rest', or 'auto', got '%s'", c.Binance.Transport)
	}
	if len(c.Binance.Symbols) == 0 {
		return fmt.Errorf("binance.symbols cannot be empty")
	}
	has1m := false
	for _, i := range c.Bars.Intervals {
		if i == "1m" {
			has1m = true
		}
	}
	if !has1m {
		return fmt.Errorf("bars.intervals must include 1m")
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers required when kafka.enabled")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("kafka.topic required when kafka.enabled")
		}
	}
	return nil
}

// SymbolsUpper returns the configured symbols normalised to uppercase.
func (c *Config) SymbolsUpper() []string {
	out := make([]string, 0, len(c.Binance.Symbols))
	for _, s := range c.Binance.Symbols {
		out = append(out, strings.ToUpper(strings.TrimSpace(s)))
	}
	return out
}
