package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App      AppConfig      `yaml:"app"`
	Storage  StorageConfig  `yaml:"storage"`
	Cart     CartConfig     `yaml:"cart"`
	Delivery DeliveryConfig `yaml:"delivery"`
	Shop     ShopConfig     `yaml:"shop"`
}

type AppConfig struct {
	Env      string `yaml:"env"`
	LogLevel string `yaml:"log_level"`
}

// StorageConfig selects the device-local storage area the cart lives in.
type StorageConfig struct {
	Backend      string `yaml:"backend"` // file, sqlite
	DataDir      string `yaml:"data_dir"`
	SQLiteFile   string `yaml:"sqlite_file"`
	PollInterval string `yaml:"poll_interval"`
}

type CartConfig struct {
	MaxLines int `yaml:"max_lines"`
}

// DeliveryConfig prices delivery in whole DZD per wilaya code. A zero
// price disables that option for the wilaya.
type DeliveryConfig struct {
	Rates map[int]RateConfig `yaml:"rates"`
}

type RateConfig struct {
	Stopdesk int64 `yaml:"stopdesk"`
	Domicile int64 `yaml:"domicile"`
}

// ShopConfig holds the catalog and order database.
type ShopConfig struct {
	SQLiteFile string `yaml:"sqlite_file"`
}

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Env:      "dev",
			LogLevel: "info",
		},
		Storage: StorageConfig{
			Backend:      BackendFile,
			DataDir:      defaultDataDir(),
			SQLiteFile:   "localstorage.db",
			PollInterval: "250ms",
		},
		Cart: CartConfig{MaxLines: 10},
		Delivery: DeliveryConfig{Rates: map[int]RateConfig{
			6:  {Stopdesk: 450, Domicile: 750},
			9:  {Stopdesk: 400, Domicile: 650},
			11: {Domicile: 1500},
			15: {Stopdesk: 450, Domicile: 750},
			16: {Stopdesk: 400, Domicile: 600},
			19: {Stopdesk: 450, Domicile: 800},
			23: {Stopdesk: 500, Domicile: 850},
			25: {Stopdesk: 500, Domicile: 800},
			31: {Stopdesk: 450, Domicile: 800},
		}},
		Shop: ShopConfig{SQLiteFile: "shop.db"},
	}
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "gayla-shop")
	}
	return ".gayla-shop"
}

// Load reads a YAML file over the defaults. A missing file is not an error.
// Environment variables win over both.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	c.App.Env = getEnv("APP_ENV", c.App.Env)
	c.App.LogLevel = getEnv("LOG_LEVEL", c.App.LogLevel)
	c.Storage.Backend = getEnv("CART_BACKEND", c.Storage.Backend)
	c.Storage.DataDir = getEnv("CART_DATA_DIR", c.Storage.DataDir)
	c.Storage.PollInterval = getEnv("CART_POLL_INTERVAL", c.Storage.PollInterval)
	c.Cart.MaxLines = getEnvInt("CART_MAX_LINES", c.Cart.MaxLines)
}

func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("invalid storage backend: %q (valid: %s, %s)", c.Storage.Backend, BackendFile, BackendSQLite)
	}
	if c.Storage.DataDir == "" {
		return fmt.Errorf("storage data_dir is empty")
	}
	if _, err := time.ParseDuration(c.Storage.PollInterval); err != nil {
		return fmt.Errorf("invalid storage poll_interval %q: %w", c.Storage.PollInterval, err)
	}
	if c.Cart.MaxLines < 1 {
		return fmt.Errorf("cart max_lines must be at least 1, got %d", c.Cart.MaxLines)
	}
	for code, rate := range c.Delivery.Rates {
		if rate.Stopdesk < 0 || rate.Domicile < 0 {
			return fmt.Errorf("delivery rate for wilaya %d is negative", code)
		}
	}
	return nil
}

// GetPollInterval returns the sqlite watcher poll interval.
func (c *Config) GetPollInterval() time.Duration {
	d, err := time.ParseDuration(c.Storage.PollInterval)
	if err != nil || d <= 0 {
		return 250 * time.Millisecond
	}
	return d
}

// Path resolves a file name relative to the data directory.
func (c *Config) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Storage.DataDir, name)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)

	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}

	return n
}
