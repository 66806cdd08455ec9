package config

import (
	"flag"
	"os"
	"sync"
)

const (
	defaultServerAddress = ":8080"
	defaultDatabaseDSN   = ""
	defaultStoreFile     = "orders.json"
	defaultNotifyAddr    = ""
	defaultLogLevel      = "debug"
)

type Config struct {
	ServerAddr        string
	DatabaseDSN       string
	StoreFile         string
	SigningKey        string
	SigningKeyFile    string
	AdminPasswordHash string
	AuthTokenKey      string
	NotifyAddr        string
	LogLevel          string
}

var (
	once      sync.Once
	singleton *Config
)

// New returns new Config. It parses command line and environment variables only once.
func New() (*Config, error) {
	once.Do(func() {
		cfg := Config{}

		// initialize flags
		flag.StringVar(&cfg.ServerAddr, "a", defaultServerAddress, "license server address")
		flag.StringVar(&cfg.DatabaseDSN, "d", defaultDatabaseDSN, "order database DSN (empty for file store)")
		flag.StringVar(&cfg.StoreFile, "f", defaultStoreFile, "order store file path")
		flag.StringVar(&cfg.SigningKeyFile, "k", "", "license signing key file")
		flag.StringVar(&cfg.NotifyAddr, "n", defaultNotifyAddr, "notification gateway address")
		flag.StringVar(&cfg.LogLevel, "l", defaultLogLevel, "log level")

		flag.Parse()

		// if environment variable is set, then using it
		if runAddrEnv := os.Getenv("RUN_ADDRESS"); runAddrEnv != "" {
			cfg.ServerAddr = runAddrEnv
		}
		if dataBaseURIEnv := os.Getenv("DATABASE_URI"); dataBaseURIEnv != "" {
			cfg.DatabaseDSN = dataBaseURIEnv
		}
		if storeFileEnv := os.Getenv("STORE_FILE"); storeFileEnv != "" {
			cfg.StoreFile = storeFileEnv
		}
		if signingKeyEnv := os.Getenv("SIGNING_KEY"); signingKeyEnv != "" {
			cfg.SigningKey = signingKeyEnv
		}
		if signingKeyFileEnv := os.Getenv("SIGNING_KEY_FILE"); signingKeyFileEnv != "" {
			cfg.SigningKeyFile = signingKeyFileEnv
		}
		if adminPasswordHashEnv := os.Getenv("ADMIN_PASSWORD_HASH"); adminPasswordHashEnv != "" {
			cfg.AdminPasswordHash = adminPasswordHashEnv
		}
		if authTokenKeyEnv := os.Getenv("AUTH_TOKEN_KEY"); authTokenKeyEnv != "" {
			cfg.AuthTokenKey = authTokenKeyEnv
		}
		if notifyAddrEnv := os.Getenv("NOTIFY_ADDRESS"); notifyAddrEnv != "" {
			cfg.NotifyAddr = notifyAddrEnv
		}
		if logLevelEnv := os.Getenv("LOG_LEVEL"); logLevelEnv != "" {
			cfg.LogLevel = logLevelEnv
		}

		singleton = &cfg
	})

	return singleton, nil
}
