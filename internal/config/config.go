package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config carries all process configuration, including the house settlement
// accounts injected into the orchestrators. Code never reads these from the
// environment mid-flow.
type Config struct {
	DBSource string
	Port     string
	Env      string

	T24BaseURL   string
	T24CompanyID string
	T24Timeout   time.Duration

	// House/pool accounts used as settlement counterparty on pooled rails.
	CrossBankAccount     string
	InternationalAccount string
	WalletAccount        string
	AirtimeAccount       string
	TaxAccount           string

	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPass     string
	EmailEnabled bool
}

// Load reads configuration from the environment, after a best-effort .env load.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Warn(".env file not found, relying on process environment")
	}

	dbSource := os.Getenv("DB_SOURCE")
	if dbSource == "" {
		return nil, fmt.Errorf("DB_SOURCE environment variable is required")
	}

	t24BaseURL := os.Getenv("T24_BASE_URL")
	if t24BaseURL == "" {
		return nil, fmt.Errorf("T24_BASE_URL environment variable is required")
	}

	timeout, err := time.ParseDuration(getEnv("T24_TIMEOUT", "10s"))
	if err != nil {
		timeout = 10 * time.Second
	}

	return &Config{
		DBSource: dbSource,
		Port:     getEnv("SERVER_PORT", "8080"),
		Env:      getEnv("ENVIRONMENT", "development"),

		T24BaseURL:   t24BaseURL,
		T24CompanyID: getEnv("T24_COMPANY_ID", "ST0010002"),
		T24Timeout:   timeout,

		CrossBankAccount:     os.Getenv("CROSS_BANK_GL_ACCOUNT"),
		InternationalAccount: os.Getenv("INTERNATIONAL_GL_ACCOUNT"),
		WalletAccount:        os.Getenv("WALLET_GL_ACCOUNT"),
		AirtimeAccount:       os.Getenv("AIRTIME_GL_ACCOUNT"),
		TaxAccount:           os.Getenv("TAX_GL_ACCOUNT"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPass:     os.Getenv("SMTP_PASS"),
		EmailEnabled: os.Getenv("EMAIL_ENABLED") == "true",
	}, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
