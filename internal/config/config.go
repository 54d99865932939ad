package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"crmsync/internal/fakturoid"
	"crmsync/internal/invoicesync"
	"crmsync/internal/logger"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type Config struct {
	// Fakturoid Configuration
	FakturoidAccount        string        `env:"FAKTUROID_ACCOUNT" validate:"required"`
	FakturoidEmail          string        `env:"FAKTUROID_EMAIL" validate:"required,email"`
	FakturoidAPIKey         string        `env:"FAKTUROID_API_KEY" validate:"required"`
	FakturoidUserAgent      string        `env:"FAKTUROID_USER_AGENT"`
	FakturoidBaseURL        string        `env:"FAKTUROID_BASE_URL" validate:"required,url"`
	FakturoidWebURL         string        `env:"FAKTUROID_WEB_URL" validate:"required,url"`
	FakturoidEURGeneratorID int64         `env:"FAKTUROID_EUR_GENERATOR_ID" validate:"gte=0"`
	FakturoidTimeout        time.Duration `env:"FAKTUROID_TIMEOUT" validate:"gt=0"`

	// Bank accounts keyed by currency code
	BankAccounts map[string]BankAccount `env:"BANK_ACCOUNT_CURRENCIES" validate:"dive"`

	// Local CRM store
	DatabaseDSN string `env:"DATABASE_DSN" validate:"required"`

	// Language of invoice texts
	Locale string `env:"LOCALE" validate:"required,bcp47_language_tag"`

	// Google Sheets Configuration
	GoogleSheetURL       string `env:"GOOGLE_SHEET_URL" validate:"omitempty,url"`
	GoogleSheetWorksheet string `env:"GOOGLE_SHEET_WORKSHEET"`

	// Logging Configuration
	LogLevel      string `env:"LOG_LEVEL" validate:"oneof=trace debug info warn error fatal panic"`
	LogFormat     string `env:"LOG_FORMAT" validate:"oneof=console json"`
	LogTimeFormat string `env:"LOG_TIME_FORMAT"`
	LogOutput     string `env:"LOG_OUTPUT"`
}

// BankAccount is read from <CUR>_BANK_ACCOUNT, <CUR>_IBAN, <CUR>_SWIFT_BIC and <CUR>_EXCHANGE_RATE.
type BankAccount struct {
	BankAccount  string `env:"BANK_ACCOUNT" validate:"required"`
	IBAN         string `env:"IBAN" validate:"required,min=15,max=34"`
	SwiftBIC     string `env:"SWIFT_BIC" validate:"required,min=8,max=11"`
	ExchangeRate decimal.Decimal
}

func Load() (*Config, error) {
	timeout, err := time.ParseDuration(getEnv("FAKTUROID_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("FAKTUROID_TIMEOUT: %w", err)
	}
	generatorID, err := strconv.ParseInt(getEnv("FAKTUROID_EUR_GENERATOR_ID", "0"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("FAKTUROID_EUR_GENERATOR_ID: %w", err)
	}
	bankAccounts, err := loadBankAccounts(getEnv("BANK_ACCOUNT_CURRENCIES", ""))
	if err != nil {
		return nil, err
	}

	config := &Config{
		FakturoidAccount:        getEnv("FAKTUROID_ACCOUNT", ""),
		FakturoidEmail:          getEnv("FAKTUROID_EMAIL", ""),
		FakturoidAPIKey:         getEnv("FAKTUROID_API_KEY", ""),
		FakturoidUserAgent:      getEnv("FAKTUROID_USER_AGENT", ""),
		FakturoidBaseURL:        getEnv("FAKTUROID_BASE_URL", fakturoid.DefaultBaseURL),
		FakturoidWebURL:         getEnv("FAKTUROID_WEB_URL", fakturoid.DefaultWebURL),
		FakturoidEURGeneratorID: generatorID,
		FakturoidTimeout:        timeout,
		BankAccounts:            bankAccounts,
		DatabaseDSN:             getEnv("DATABASE_DSN", "crmsync.db"),
		Locale:                  getEnv("LOCALE", "cs"),
		GoogleSheetURL:          getEnv("GOOGLE_SHEET_URL", ""),
		GoogleSheetWorksheet:    getEnv("GOOGLE_SHEET_WORKSHEET", "Faktury"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		LogFormat:               getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:           getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:               getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func loadBankAccounts(currencies string) (map[string]BankAccount, error) {
	accounts := map[string]BankAccount{}
	for _, code := range strings.Split(currencies, ",") {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" {
			continue
		}

		acc := BankAccount{
			BankAccount: getEnv(code+"_BANK_ACCOUNT", ""),
			IBAN:        strings.ReplaceAll(getEnv(code+"_IBAN", ""), " ", ""),
			SwiftBIC:    getEnv(code+"_SWIFT_BIC", ""),
		}
		if rate := getEnv(code+"_EXCHANGE_RATE", ""); rate != "" {
			d, err := decimal.NewFromString(rate)
			if err != nil {
				return nil, fmt.Errorf("%s_EXCHANGE_RATE: %w", code, err)
			}
			acc.ExchangeRate = d
		}
		accounts[code] = acc
	}
	return accounts, nil
}

func (c *Config) validate() error {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		return f.Name
	})

	err := v.Struct(c)
	var verrs validator.ValidationErrors
	if err == nil || !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// describe renders a validation failure in terms of environment variables,
// e.g. "EUR_IBAN is required".
func describe(fe validator.FieldError) string {
	name := fe.Field()
	ns := fe.Namespace()
	if i := strings.Index(ns, "["); i >= 0 {
		if j := strings.Index(ns[i:], "]"); j >= 0 {
			name = ns[i+1:i+j] + "_" + name
		}
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", name)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", name, fe.Tag())
	}
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

// GetFakturoidConfig returns the API client configuration
func (c *Config) GetFakturoidConfig() fakturoid.Config {
	return fakturoid.Config{
		BaseURL:   c.FakturoidBaseURL,
		Account:   c.FakturoidAccount,
		Email:     c.FakturoidEmail,
		APIKey:    c.FakturoidAPIKey,
		UserAgent: c.FakturoidUserAgent,
		Timeout:   c.FakturoidTimeout,
	}
}

// GetBankAccounts returns the payment bundles for the sync service
func (c *Config) GetBankAccounts() map[string]invoicesync.BankAccount {
	out := make(map[string]invoicesync.BankAccount, len(c.BankAccounts))
	for code, acc := range c.BankAccounts {
		out[code] = invoicesync.BankAccount{
			BankAccount:  acc.BankAccount,
			IBAN:         acc.IBAN,
			SwiftBIC:     acc.SwiftBIC,
			ExchangeRate: acc.ExchangeRate,
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
