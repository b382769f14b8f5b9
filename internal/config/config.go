package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const fileName = "config.yaml"

type Config struct {
	API      API      `yaml:"api"`
	Cart     Cart     `yaml:"cart"`
	Checkout Checkout `yaml:"checkout"`
	Log      Log      `yaml:"log"`

	// StateDir holds the session file, the local cart database and the config file.
	StateDir string `yaml:"state_dir"`
}

type API struct {
	BaseURL    string        `yaml:"base_url"`
	UploadsURL string        `yaml:"uploads_url"`
	Timeout    time.Duration `yaml:"timeout"`
}

type Cart struct {
	// DSN selects the cart store: postgres://... or a SQLite file path.
	DSN      string `yaml:"dsn"`
	Currency string `yaml:"currency"`
}

type Checkout struct {
	TaxRate       string `yaml:"tax_rate"`
	MaxConcurrent int    `yaml:"max_concurrent"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() Config {
	stateDir := defaultStateDir()

	return Config{
		API: API{
			BaseURL:    "http://localhost:8080/api",
			UploadsURL: "http://localhost:8080/",
			Timeout:    15 * time.Second,
		},
		Cart: Cart{
			Currency: "USD",
		},
		Checkout: Checkout{
			TaxRate:       "0.08",
			MaxConcurrent: 4,
		},
		Log: Log{
			Level:  "warn",
			Format: "console",
		},
		StateDir: stateDir,
	}
}

// Load layers defaults, the YAML file and environment overrides, in that order.
// An empty path means <state dir>/config.yaml, which may be absent.
func Load(path string) (Config, error) {
	cfg := Default()
	if dir := os.Getenv("STOREFRONT_STATE_DIR"); dir != "" {
		cfg.StateDir = dir
	}

	explicit := path != ""
	if !explicit {
		path = filepath.Join(cfg.StateDir, fileName)
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("yaml.Unmarshal[%s]: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("os.ReadFile: %w", err)
	}

	applyEnv(&cfg)

	if cfg.Cart.DSN == "" {
		cfg.Cart.DSN = "sqlite://" + filepath.Join(cfg.StateDir, "cart.db")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is empty")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}
	if c.StateDir == "" {
		return fmt.Errorf("state_dir is empty")
	}
	if c.Checkout.MaxConcurrent <= 0 {
		return fmt.Errorf("checkout.max_concurrent must be positive")
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.API.BaseURL = getEnv("STOREFRONT_API_URL", cfg.API.BaseURL)
	cfg.API.UploadsURL = getEnv("STOREFRONT_UPLOADS_URL", cfg.API.UploadsURL)
	cfg.API.Timeout = getEnvDuration("STOREFRONT_TIMEOUT", cfg.API.Timeout)
	cfg.Cart.DSN = getEnv("STOREFRONT_CART_DSN", cfg.Cart.DSN)
	cfg.Cart.Currency = getEnv("STOREFRONT_CURRENCY", cfg.Cart.Currency)
	cfg.Checkout.MaxConcurrent = getEnvInt("STOREFRONT_MAX_CONCURRENT", cfg.Checkout.MaxConcurrent)
	cfg.Log.Level = getEnv("STOREFRONT_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("STOREFRONT_LOG_FORMAT", cfg.Log.Format)
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".storefront"
	}
	return filepath.Join(home, ".storefront")
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

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}

	return d
}
