package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/expricer/exclusivity-service/internal/domain/pricing"
)

const (
	LedgerBackendPostgres = "postgres"
	LedgerBackendFile     = "file"
)

type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	Redis     RedisConfig     `json:"redis"`
	Ledger    LedgerConfig    `json:"ledger"`
	Product   ProductConfig   `json:"product"`
	RateLimit RateLimitConfig `json:"rate_limit"`
}

type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

type DatabaseConfig struct {
	Driver         string `json:"driver"`
	Host           string `json:"host"`
	Port           int    `json:"port"`
	User           string `json:"user"`
	Password       string `json:"password"`
	DBName         string `json:"dbname"`
	SSLMode        string `json:"sslmode"`
	MigrationsPath string `json:"migrations_path"`
}

type RedisConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// LedgerConfig selects the durable store behind the sales ledger:
// "postgres" for the transactional store, "file" for the single-node
// JSON state file.
type LedgerConfig struct {
	Backend       string `json:"backend"`
	StatePath     string `json:"state_path"`
	LockTimeoutMS int    `json:"lock_timeout_ms"`
}

// ProductConfig describes the one limited edition this deployment sells.
type ProductConfig struct {
	Name      string  `json:"name"`
	WorkType  string  `json:"work_type"`
	MaxCopies int     `json:"max_copies"`
	MinPrice  float64 `json:"min_price"`
}

type RateLimitConfig struct {
	Enabled       bool `json:"enabled"`
	MaxRequests   int  `json:"max_requests"`
	WindowSeconds int  `json:"window_seconds"`
}

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Ledger.Backend == "" {
		c.Ledger.Backend = LedgerBackendPostgres
	}
	if c.Ledger.LockTimeoutMS <= 0 {
		c.Ledger.LockTimeoutMS = 3000
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	if c.RateLimit.MaxRequests <= 0 {
		c.RateLimit.MaxRequests = 100
	}
	if c.RateLimit.WindowSeconds <= 0 {
		c.RateLimit.WindowSeconds = 3600
	}
}

func (c *Config) Validate() error {
	switch c.Ledger.Backend {
	case LedgerBackendPostgres:
	case LedgerBackendFile:
		if c.Ledger.StatePath == "" {
			return fmt.Errorf("ledger.state_path is required for the file backend")
		}
	default:
		return fmt.Errorf("unknown ledger backend %q", c.Ledger.Backend)
	}

	req := pricing.QuoteRequest{
		WorkType:  c.Product.WorkType,
		MaxCopies: c.Product.MaxCopies,
		MinPrice:  c.Product.MinPrice,
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid product config: %w", err)
	}

	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return "host=" + c.Host +
		" port=" + strconv.Itoa(c.Port) +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.DBName +
		" sslmode=" + c.SSLMode
}
