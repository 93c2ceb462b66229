package backtest

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is one completed round trip (buy then full sell) of the simulated user.
type Trade struct {
	Symbol     string
	EntryTime  time.Time
	ExitTime   time.Time
	EntryPrice decimal.Decimal
	ExitPrice  decimal.Decimal
	Quantity   int64
	PnL        decimal.Decimal
	Reason     string
}

// EquityPoint tracks the simulated account value over time (cash plus
// holdings marked at the current close).
type EquityPoint struct {
	Timestamp time.Time
	Equity    decimal.Decimal
}

// Results summarizes a finished backtest run.
type Results struct {
	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	WinRate       float64

	MaxDrawdown  float64
	FinalEquity  decimal.Decimal
	RealizedPnl  decimal.Decimal
	FinalBalance decimal.Decimal

	Trades      []Trade
	EquityCurve []EquityPoint
}

// Config drives a backtest run.
type Config struct {
	InitialBalance decimal.Decimal
	Symbols        []string
	TimeFrame      string
	StartTime      time.Time
	EndTime        time.Time

	// PositionFraction is the share of available cash a single entry may
	// deploy. Defaults to 0.1.
	PositionFraction decimal.Decimal
}

// NewConfig creates a config with the default sizing
func NewConfig() Config {
	return Config{
		InitialBalance:   decimal.NewFromInt(1_000_000),
		TimeFrame:        "1h",
		PositionFraction: decimal.NewFromFloat(0.1),
	}
}
