package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AccountSettings are per-account report options.
type AccountSettings struct {
	Parse     bool
	Name      string
	Filename  string
	StartDate time.Time
}

// Accounts is the parsed accounts file.
type Accounts struct {
	DefaultStartDate  time.Time
	Settings          map[string]AccountSettings
	TickerCurrency    map[string]string
	InstrumentAliases map[string][]string
}

// DefaultTickerCurrency maps exchange currency instruments to the currency they represent.
var DefaultTickerCurrency = map[string]string{
	"USD000UTSTOM": "USD",
	"USD000TODTOM": "USD",
	"EUR_RUB__TOM": "EUR",
	"CHFRUB_TOM":   "CHF",
	"HKDRUB_TOM":   "HKD",
	"TRYRUB_TOM":   "TRY",
}

type accountsFile struct {
	DefaultStartDate  string                 `yaml:"default_start_date"`
	Accounts          map[string]accountYAML `yaml:"accounts"`
	TickerCurrency    map[string]string      `yaml:"ticker_currency"`
	InstrumentAliases map[string][]string    `yaml:"instrument_aliases"`
}

type accountYAML struct {
	Parse     *bool  `yaml:"parse"`
	Name      string `yaml:"name"`
	Filename  string `yaml:"filename"`
	StartDate string `yaml:"start_date"`
}

// LoadAccounts reads the accounts file. A missing file yields the built-in defaults.
func LoadAccounts(path string) (Accounts, error) {
	accounts := Accounts{
		Settings:          map[string]AccountSettings{},
		TickerCurrency:    copyMap(DefaultTickerCurrency),
		InstrumentAliases: map[string][]string{},
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return accounts, nil
	}
	if err != nil {
		return Accounts{}, fmt.Errorf("reading accounts file: %w", err)
	}

	var raw accountsFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Accounts{}, fmt.Errorf("%w: parsing %s: %v", ErrInvalidConfig, path, err)
	}

	if raw.DefaultStartDate != "" {
		accounts.DefaultStartDate, err = parseDate(raw.DefaultStartDate)
		if err != nil {
			return Accounts{}, fmt.Errorf("%w: default_start_date: %v", ErrInvalidConfig, err)
		}
	}

	for id, a := range raw.Accounts {
		s := accounts.For(id)
		if a.Parse != nil {
			s.Parse = *a.Parse
		}
		if a.Name != "" {
			s.Name = a.Name
		}
		if a.Filename != "" {
			s.Filename = a.Filename
		}
		if a.StartDate != "" {
			s.StartDate, err = parseDate(a.StartDate)
			if err != nil {
				return Accounts{}, fmt.Errorf("%w: account %s start_date: %v", ErrInvalidConfig, id, err)
			}
		}
		accounts.Settings[id] = s
	}

	for ticker, code := range raw.TickerCurrency {
		if len(code) != 3 {
			return Accounts{}, fmt.Errorf("%w: ticker_currency %s: %q is not a currency code", ErrInvalidConfig, ticker, code)
		}
		accounts.TickerCurrency[ticker] = strings.ToUpper(code)
	}
	for id, aliases := range raw.InstrumentAliases {
		accounts.InstrumentAliases[id] = aliases
	}

	return accounts, nil
}

// For returns the settings of an account, falling back to defaults for accounts not in the file.
func (a Accounts) For(id string) AccountSettings {
	if s, ok := a.Settings[id]; ok {
		return s
	}
	return AccountSettings{
		Parse:     true,
		Name:      "account-" + id,
		Filename:  "tinkoffReport_%Y.%b.%d_" + id,
		StartDate: a.DefaultStartDate,
	}
}

// FileName expands %Y, %m, %b and %d in the filename pattern against date and appends .xlsx.
func (s AccountSettings) FileName(date time.Time) string {
	r := strings.NewReplacer(
		"%Y", date.Format("2006"),
		"%m", date.Format("01"),
		"%b", date.Format("Jan"),
		"%d", date.Format("02"),
	)
	return r.Replace(s.Filename) + ".xlsx"
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(time.DateOnly, s)
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
