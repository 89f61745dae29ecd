// Package config loads the fx-sheets configuration from an optional configuration file,
// an optional .env file and FXSHEETS_ environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Sheets  Sheets
	Rates   Rates
	Metrics Metrics
}

type Sheets struct {
	URL          string
	Worksheet    string
	Credentials  string
	InputOption  string
	LogRange     string
	LogRetention uint
}

type Rates struct {
	URL        string
	Base       string
	Currencies []string
	Start      civil.Date
	Timeout    time.Duration
}

type Metrics struct {
	Pushgateway string
	Job         string
}

const (
	USER_ENTERED = "USER_ENTERED"
	RAW          = "RAW"
)

var defaults = map[string]any{
	"sheets.url":           "",
	"sheets.worksheet":     "",
	"sheets.credentials":   "",
	"sheets.input-option":  USER_ENTERED,
	"sheets.log-range":     "Log!A1:G",
	"sheets.log-retention": 30,
	"rates.url":            "https://api.frankfurter.app",
	"rates.base":           "USD",
	"rates.currencies":     []string{"INR", "EUR", "GBP", "JPY", "AUD", "CAD", "CNY"},
	"rates.start":          "2010-01-01",
	"rates.timeout":        "60s",
	"metrics.pushgateway":  "",
	"metrics.job":          "fx-sheets",
}

var currencyCode = regexp.MustCompile(`^[A-Z]{3}$`)
var spreadsheetURL = regexp.MustCompile(`^https://docs.google.com/spreadsheets/d/(.*?)(?:/.*)?$`)

// Load reads the configuration from the (optional) file, the (optional) .env file in the
// same directory and the environment. The overrides are applied last and are typically
// the values of any command line flags that were set.
func Load(file string, overrides map[string]any) (*Config, error) {
	v := viper.New()

	for k, value := range defaults {
		v.SetDefault(k, value)
	}

	if file != "" {
		dotenv := filepath.Join(filepath.Dir(file), ".env")
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("error loading %v (%w)", dotenv, err)
		}

		if _, err := os.Stat(file); err == nil {
			v.SetConfigFile(file)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("error reading configuration file %v (%w)", file, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	v.SetEnvPrefix("FXSHEETS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for k, value := range overrides {
		v.Set(k, value)
	}

	return parse(v)
}

func parse(v *viper.Viper) (*Config, error) {
	start, err := civil.ParseDate(strings.TrimSpace(v.GetString("rates.start")))
	if err != nil {
		return nil, fmt.Errorf("invalid rates.start '%v' (%w)", v.GetString("rates.start"), err)
	}

	timeout, err := time.ParseDuration(v.GetString("rates.timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid rates.timeout '%v' (%w)", v.GetString("rates.timeout"), err)
	}

	config := Config{
		Sheets: Sheets{
			URL:          strings.TrimSpace(v.GetString("sheets.url")),
			Worksheet:    strings.TrimSpace(v.GetString("sheets.worksheet")),
			Credentials:  strings.TrimSpace(v.GetString("sheets.credentials")),
			InputOption:  strings.ToUpper(strings.TrimSpace(v.GetString("sheets.input-option"))),
			LogRange:     strings.TrimSpace(v.GetString("sheets.log-range")),
			LogRetention: v.GetUint("sheets.log-retention"),
		},
		Rates: Rates{
			URL:        strings.TrimSpace(v.GetString("rates.url")),
			Base:       strings.ToUpper(strings.TrimSpace(v.GetString("rates.base"))),
			Currencies: currencies(v.GetStringSlice("rates.currencies")),
			Start:      start,
			Timeout:    timeout,
		},
		Metrics: Metrics{
			Pushgateway: strings.TrimSpace(v.GetString("metrics.pushgateway")),
			Job:         strings.TrimSpace(v.GetString("metrics.job")),
		},
	}

	return &config, nil
}

// SpreadsheetID extracts the spreadsheet ID from the spreadsheet URL.
func (c *Config) SpreadsheetID() (string, error) {
	match := spreadsheetURL.FindStringSubmatch(c.Sheets.URL)
	if len(match) < 2 || match[1] == "" {
		return "", fmt.Errorf("invalid spreadsheet URL - expected something like 'https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms'")
	}

	return match[1], nil
}

// Validate checks the options required for a rates update.
func (c *Config) Validate() error {
	if c.Sheets.URL == "" {
		return fmt.Errorf("spreadsheet URL is a required option")
	}

	if _, err := c.SpreadsheetID(); err != nil {
		return err
	}

	if c.Sheets.Credentials == "" {
		return fmt.Errorf("credentials is a required option")
	}

	if c.Sheets.InputOption != USER_ENTERED && c.Sheets.InputOption != RAW {
		return fmt.Errorf("invalid input option '%v' - expected %v or %v", c.Sheets.InputOption, USER_ENTERED, RAW)
	}

	if !currencyCode.MatchString(c.Rates.Base) {
		return fmt.Errorf("invalid base currency '%v'", c.Rates.Base)
	}

	if len(c.Rates.Currencies) == 0 {
		return fmt.Errorf("at least one target currency is required")
	}

	seen := map[string]bool{}
	for _, currency := range c.Rates.Currencies {
		if !currencyCode.MatchString(currency) {
			return fmt.Errorf("invalid target currency '%v'", currency)
		}

		if currency == c.Rates.Base {
			return fmt.Errorf("target currency '%v' is the base currency", currency)
		}

		if seen[currency] {
			return fmt.Errorf("duplicate target currency '%v'", currency)
		}

		seen[currency] = true
	}

	if c.Rates.Timeout < 0 {
		return fmt.Errorf("invalid rates timeout '%v'", c.Rates.Timeout)
	}

	return nil
}

// currencies accepts both lists and comma separated strings (as set from environment
// variables or command line flags).
func currencies(list []string) []string {
	codes := []string{}
	for _, item := range list {
		for _, s := range strings.Split(item, ",") {
			if code := strings.ToUpper(strings.TrimSpace(s)); code != "" {
				codes = append(codes, code)
			}
		}
	}

	return codes
}
