package config

import (
	"fmt"
	"time"

	env "github.com/caarlos0/env/v11"
)

type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required"`
	Port        int    `env:"PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv      string `env:"APP_ENV" envDefault:"production"`

	GatewayBaseURL       string `env:"GATEWAY_BASE_URL" envDefault:"https://sandbox.monnify.com"`
	GatewayAPIKey        string `env:"GATEWAY_API_KEY,required"`
	GatewaySecretKey     string `env:"GATEWAY_SECRET_KEY,required"`
	GatewaySourceAccount string `env:"GATEWAY_SOURCE_ACCOUNT,required"`

	EmailEnabled     bool   `env:"EMAIL_ENABLED" envDefault:"false"`
	SMTPHost         string `env:"SMTP_HOST" envDefault:""`
	SMTPPort         int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername     string `env:"SMTP_USERNAME" envDefault:""`
	SMTPPassword     string `env:"SMTP_PASSWORD" envDefault:""`
	EmailFromName    string `env:"EMAIL_FROM_NAME" envDefault:"Payroll System"`
	EmailFromAddress string `env:"EMAIL_FROM_ADDRESS" envDefault:""`

	// MaxConcurrentRuns bounds how many payroll runs may execute at once
	// across all organizations; RunTimeout caps a single run so a wedged
	// gateway cannot leave it in processing forever.
	MaxConcurrentRuns int           `env:"MAX_CONCURRENT_RUNS" envDefault:"4"`
	RunTimeout        time.Duration `env:"RUN_TIMEOUT" envDefault:"15m"`

	DBMaxOpenConns     int `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns     int `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBConnMaxLifetimeS int `env:"DB_CONN_MAX_LIFETIME_S" envDefault:"300"`
	DBConnMaxIdleTimeS int `env:"DB_CONN_MAX_IDLE_TIME_S" envDefault:"60"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}
