package config

import "github.com/shopspring/decimal"

type config struct {
	Exchange ExchangeConfig
	Database DatabaseConfig
	Trading  TradingConfig
	Symbols  []string
}

type ExchangeConfig struct {
	APIKey    string
	SecretKey string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

type TradingConfig struct {
	// InitialBalance seeds lazily created user balances.
	InitialBalance decimal.Decimal
}
