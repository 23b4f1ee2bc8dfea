package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the defaults of the command line flags, read from the
// environment and an optional .env file in the working directory.
type Config struct {
	Book        string `env:"BK_BOOK"`
	Namespace   string `env:"BK_NAMESPACE" envDefault:"ASX"`
	Currency    string `env:"BK_CURRENCY" envDefault:"AUD"`
	LogLevel    string `env:"BK_LOG_LEVEL" envDefault:"info"`
	QuoteSource string `env:"BK_QUOTE_SOURCE" envDefault:"chart"`
	QuoteURL    string `env:"BK_QUOTE_URL"`
	QuoteCache  string `env:"BK_QUOTE_CACHE" envDefault:"day"`
	EODHDAPIKey string `env:"EODHD_API_KEY"`
}

// cfg is the configuration in use, loaded by Setup.
var cfg = mustDefaultConfig()

// LoadConfig reads the configuration. Variables already set in the
// environment take precedence over the .env file.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("cannot load .env: %w", err)
	}
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}

func mustDefaultConfig() Config {
	var c Config
	if err := env.ParseWithOptions(&c, env.Options{Environment: map[string]string{}}); err != nil {
		panic(err)
	}
	return c
}
