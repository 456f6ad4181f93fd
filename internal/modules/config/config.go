package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"quant_bot/internal/models"
	strategyservice "quant_bot/internal/modules/strategy/service"
)

const (
	configFilePathENV = "CONFIG_FILE"
	apiKeyENV         = "BINANCE_API_KEY"
	apiSecretENV      = "BINANCE_API_SECRET"
	tokenTelegramENV  = "TELEGRAM_TOKEN"
	databaseDSN       = "DATABASE_DSN"
)

type Config struct {
	Service struct {
		Name       string `yaml:"name"`
		Host       string `yaml:"host"`
		HealthPort int    `yaml:"health_port"`
	} `yaml:"service"`

	Exchange struct {
		Paper       bool   `yaml:"paper"`
		RESTBaseURL string `yaml:"rest_base_url"`
		APIKey      string `yaml:"api_key"`
		APISecret   string `yaml:"api_secret"`
		QuoteAsset  string `yaml:"quote_asset"`
	} `yaml:"exchange"`

	Market struct {
		WSBaseURL    string   `yaml:"ws_base_url"`
		Symbols      []string `yaml:"symbols"`
		Interval     string   `yaml:"interval"`
		HistoryLimit int      `yaml:"history_limit"`
	} `yaml:"market"`

	Strategies []strategyservice.StrategySpec `yaml:"strategies"`

	Gate struct {
		CooldownSeconds int `yaml:"cooldown_seconds"`
	} `yaml:"signal_gate"`

	Risk models.RiskParameters `yaml:"risk"`

	Journal struct {
		DSN string `yaml:"dsn"`
	} `yaml:"journal"`

	Telegram struct {
		Token  string `yaml:"token"`
		ChatID int64  `yaml:"chat_id"`
	} `yaml:"telegram"`

	Tracing struct {
		Host string `yaml:"host"` // empty disables the tracer
		Port int    `yaml:"port"`
	} `yaml:"tracing"`
}

func defaults() Config {
	var cfg Config
	cfg.Service.Name = "quant_bot"
	cfg.Service.Host = "0.0.0.0"
	cfg.Service.HealthPort = intFromEnv("HEALTH_PORT", 8080)

	cfg.Exchange.Paper = boolFromEnv("PAPER_TRADING", true)
	cfg.Exchange.RESTBaseURL = getenvDefault("BINANCE_REST_URL", "https://api.binance.com")
	cfg.Exchange.QuoteAsset = getenvDefault("QUOTE_ASSET", "USDT")

	cfg.Market.WSBaseURL = getenvDefault("BINANCE_WS_URL", "wss://stream.binance.com:9443")
	cfg.Market.Interval = getenvDefault("TIMEFRAME", "1m")
	cfg.Market.HistoryLimit = intFromEnv("HISTORY_LIMIT", 1000)

	cfg.Gate.CooldownSeconds = intFromEnv("COOLDOWN_SECONDS", 300)
	cfg.Risk = models.DefaultRiskParameters()

	cfg.Tracing.Host = getenvDefault("JAEGER_AGENT_HOST", "")
	cfg.Tracing.Port = intFromEnv("JAEGER_AGENT_PORT", 6831)
	return cfg
}

func NewConfig() (*Config, error) {
	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = "values_local.yaml"
	}
	path := configFileName
	if !strings.Contains(path, "/") {
		path = "configs/" + path
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open config %s", path)
	}
	defer func() {
		_ = file.Close()
	}()

	config := defaults()
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, errors.Wrapf(err, "decode config %s", path)
	}

	if key := os.Getenv(apiKeyENV); key != "" {
		config.Exchange.APIKey = key
	}
	if secret := os.Getenv(apiSecretENV); secret != "" {
		config.Exchange.APISecret = secret
	}
	if token := os.Getenv(tokenTelegramENV); token != "" {
		config.Telegram.Token = token
	}
	if dsn := os.Getenv(databaseDSN); dsn != "" {
		config.Journal.DSN = dsn
	}

	if err := config.Risk.Validate(); err != nil {
		return nil, errors.Wrap(err, "risk configuration")
	}
	if len(config.Market.Symbols) == 0 {
		return nil, errors.New("market.symbols must not be empty")
	}
	if !config.Exchange.Paper && (config.Exchange.APIKey == "" || config.Exchange.APISecret == "") {
		return nil, errors.New("live trading requires exchange api credentials")
	}

	return &config, nil
}

func intFromEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func boolFromEnv(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if v == "1" || v == "true" || v == "TRUE" {
			return true
		}
		if v == "0" || v == "false" || v == "FALSE" {
			return false
		}
	}
	return def
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
