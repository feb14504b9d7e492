package config

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	// Local storage
	DataDir    string `env:"WIKID_DATA_DIR"`
	QuotaBytes int64  `env:"WIKID_QUOTA_BYTES"`

	// Remote protocol endpoints
	PLCDirectoryURL string `env:"WIKID_PLC_URL"`
	AppViewURL      string `env:"WIKID_APPVIEW_URL"`

	// OAuth client
	OAuthClientID string `env:"WIKID_OAUTH_CLIENT_ID"`
	CallbackPort  int    `env:"WIKID_CALLBACK_PORT"`

	// Misc
	LogLevel string `env:"WIKID_LOG_LEVEL"`
	Version  bool   `env:"-"` // show version and exit (flag only)
}

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// flags работают ТОЛЬКО если переменные из env не заданы
	flag.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "каталог локального хранилища")
	flag.Int64Var(&cfg.QuotaBytes, "quota", cfg.QuotaBytes, "квота локального хранилища в байтах")
	flag.StringVar(&cfg.PLCDirectoryURL, "plc-url", cfg.PLCDirectoryURL, "URL справочника DID")
	flag.StringVar(&cfg.AppViewURL, "appview-url", cfg.AppViewURL, "URL appview для резолва handle и чтения лент")
	flag.StringVar(&cfg.OAuthClientID, "oauth-client-id", cfg.OAuthClientID, "OAuth client_id (URL метаданных клиента)")
	flag.IntVar(&cfg.CallbackPort, "callback-port", cfg.CallbackPort, "порт loopback-слушателя OAuth callback")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "уровень логирования (debug|info|warn|error)")
	flag.BoolVar(&cfg.Version, "version", cfg.Version, "Show version and exit")

	flag.Parse()

	// Defaults
	if cfg.DataDir == "" {
		cfgDir, err := os.UserConfigDir()
		if err == nil {
			cfg.DataDir = filepath.Join(cfgDir, "WikiKeeper")
		} else {
			cfg.DataDir = ".wikikeeper"
		}
	}
	if cfg.QuotaBytes <= 0 {
		cfg.QuotaBytes = 256 << 20 // 256 MiB
	}
	if cfg.PLCDirectoryURL == "" {
		cfg.PLCDirectoryURL = "https://plc.directory"
	}
	if cfg.AppViewURL == "" {
		cfg.AppViewURL = "https://public.api.bsky.app"
	}
	if cfg.CallbackPort == 0 {
		cfg.CallbackPort = 8917
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	return cfg
}
