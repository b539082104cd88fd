package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type Config struct {
	Environment string `mapstructure:"ENV"`
	HTTPAddr    string `mapstructure:"HTTP_ADDR"`
	DBDSN       string `mapstructure:"DB_DSN"`

	RPCURL          string `mapstructure:"RPC_URL"`
	ChainID         int64  `mapstructure:"CHAIN_ID"`
	SessionContract string `mapstructure:"SESSION_CONTRACT"`
	ScoreContract   string `mapstructure:"SCORE_CONTRACT"`
	RewardContract  string `mapstructure:"REWARD_CONTRACT"`

	AccountKeyRef string        `mapstructure:"ACCOUNT_KEY_REF"`
	SecretsDir    string        `mapstructure:"SECRETS_DIR"`
	VaultAddr     string        `mapstructure:"VAULT_ADDR"`
	VaultToken    string        `mapstructure:"VAULT_TOKEN"`
	VaultMount    string        `mapstructure:"VAULT_MOUNT"`
	VaultPrefix   string        `mapstructure:"VAULT_PREFIX"`
	GasLimit      uint64        `mapstructure:"GAS_LIMIT"`
	GasPriceGwei  int64         `mapstructure:"GAS_PRICE_GWEI"`
	RPCTimeout    time.Duration `mapstructure:"RPC_TIMEOUT"`
	ReadRetries   uint64        `mapstructure:"READ_RETRIES"`

	GroqAPIKey        string        `mapstructure:"GROQ_API_KEY"`
	GroqModel         string        `mapstructure:"GROQ_MODEL"`
	GroqBaseURL       string        `mapstructure:"GROQ_BASE_URL"`
	GroqTemperature   float64       `mapstructure:"GROQ_TEMPERATURE"`
	GenerationTimeout time.Duration `mapstructure:"GENERATION_TIMEOUT"`

	TelegramToken     string        `mapstructure:"TELEGRAM_TOKEN"`
	ReconcileInterval time.Duration `mapstructure:"RECONCILE_INTERVAL"`
	ReconcileDropAge  time.Duration `mapstructure:"RECONCILE_DROP_AFTER"`
	RateLimitRPS      float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst    int           `mapstructure:"RATE_LIMIT_BURST"`
	MigrationsDir     string        `mapstructure:"MIGRATIONS_DIR"`
}

var defaults = map[string]interface{}{
	"ENV":                  "development",
	"HTTP_ADDR":            ":5000",
	"DB_DSN":               "",
	"RPC_URL":              "",
	"CHAIN_ID":             0,
	"SESSION_CONTRACT":     "",
	"SCORE_CONTRACT":       "",
	"REWARD_CONTRACT":      "",
	"ACCOUNT_KEY_REF":      "account/signer",
	"SECRETS_DIR":          ".secrets",
	"VAULT_ADDR":           "",
	"VAULT_TOKEN":          "",
	"VAULT_MOUNT":          "secret",
	"VAULT_PREFIX":         "tutorchain",
	"GAS_LIMIT":            200000,
	"GAS_PRICE_GWEI":       50,
	"RPC_TIMEOUT":          "0s",
	"READ_RETRIES":         3,
	"GROQ_API_KEY":         "",
	"GROQ_MODEL":           "llama-3.1-8b-instant",
	"GROQ_BASE_URL":        "https://api.groq.com/openai/v1",
	"GROQ_TEMPERATURE":     0.7,
	"GENERATION_TIMEOUT":   "20s",
	"TELEGRAM_TOKEN":       "",
	"RECONCILE_INTERVAL":   "0s",
	"RECONCILE_DROP_AFTER": "1h",
	"RATE_LIMIT_RPS":       5,
	"RATE_LIMIT_BURST":     10,
	"MIGRATIONS_DIR":       "",
}

// Load читает .env (если есть) и переменные окружения
func Load(logger *zap.Logger) (*Config, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		logger.Debug("No .env file found, using environment variables")
	} else {
		logger.Info("Loaded configuration from .env file")
	}

	return FromViper(viper.New())
}

// FromViper собирает конфиг из окружения через v
func FromViper(v *viper.Viper) (*Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	return &cfg, nil
}

// Validate проверяет поля, нужные для работы с леджером
func (c *Config) Validate() error {
	var errs []error

	if c.RPCURL == "" {
		errs = append(errs, errors.New("RPC_URL is required but not set"))
	}
	for _, addr := range []struct {
		key      string
		value    string
		optional bool
	}{
		{key: "SESSION_CONTRACT", value: c.SessionContract},
		{key: "SCORE_CONTRACT", value: c.ScoreContract},
		{key: "REWARD_CONTRACT", value: c.RewardContract, optional: true},
	} {
		if addr.value == "" && addr.optional {
			continue
		}
		if !common.IsHexAddress(addr.value) {
			errs = append(errs, fmt.Errorf("%s must be a hex address, got %q", addr.key, addr.value))
		}
	}
	if c.AccountKeyRef == "" {
		errs = append(errs, errors.New("ACCOUNT_KEY_REF is required but not set"))
	}
	if c.ChainID < 0 {
		errs = append(errs, errors.New("CHAIN_ID must not be negative"))
	}
	if c.GasPriceGwei < 0 {
		errs = append(errs, errors.New("GAS_PRICE_GWEI must not be negative"))
	}
	if c.ReconcileDropAge < 0 {
		errs = append(errs, errors.New("RECONCILE_DROP_AFTER must not be negative"))
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive"))
	}

	return errors.Join(errs...)
}
