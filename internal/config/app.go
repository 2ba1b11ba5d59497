package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Data struct {
	// Dir is the root of the file-backed data store.
	Dir string `mapstructure:"dir"`
	// DatabaseURL switches the data store to PostgreSQL when set.
	DatabaseURL string `mapstructure:"database_url"`
}

type Site struct {
	Dir string `mapstructure:"dir"`
}

type HTTPClient struct {
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	Retries        uint    `mapstructure:"retries"`
	BackoffSeconds float64 `mapstructure:"backoff_seconds"`
}

func (c *HTTPClient) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Backoff returns the base delay that is doubled on every retry.
func (c *HTTPClient) Backoff() time.Duration {
	return time.Duration(c.BackoffSeconds * float64(time.Second))
}

type Cron struct {
	Spec string `mapstructure:"spec"`
}

type Logging struct {
	Level string `mapstructure:"level"`
}

type AppConfig struct {
	Data       Data       `mapstructure:"data"`
	Site       Site       `mapstructure:"site"`
	HTTPClient HTTPClient `mapstructure:"http_client"`
	Cron       Cron       `mapstructure:"cron"`
	Logging    Logging    `mapstructure:"logging"`
}

func Init() (*AppConfig, error) {
	var cfg AppConfig

	// Both files are optional; defaults and env vars cover the rest.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	viper.SetConfigFile("config.yaml")
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	viper.SetDefault("data.dir", "data")
	viper.SetDefault("site.dir", "_site")
	viper.SetDefault("http_client.timeout_seconds", 10)
	viper.SetDefault("http_client.retries", 10)
	viper.SetDefault("http_client.backoff_seconds", 0.5)
	viper.SetDefault("cron.spec", "0 9 * * *")
	viper.SetDefault("logging.level", "info")

	// data store env vars
	_ = viper.BindEnv("data.dir", "DATA_DIR")
	_ = viper.BindEnv("data.database_url", "DATABASE_URL")

	// site env vars
	_ = viper.BindEnv("site.dir", "SITE_DIR")

	// http client env vars
	_ = viper.BindEnv("http_client.timeout_seconds", "HTTP_CLIENT_TIMEOUT_SECONDS")
	_ = viper.BindEnv("http_client.retries", "HTTP_CLIENT_RETRIES")
	_ = viper.BindEnv("http_client.backoff_seconds", "HTTP_CLIENT_BACKOFF_SECONDS")

	// cron env vars
	_ = viper.BindEnv("cron.spec", "CRON_SPEC")

	// logging env vars
	_ = viper.BindEnv("logging.level", "LOG_LEVEL")

	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	return &cfg, nil
}
