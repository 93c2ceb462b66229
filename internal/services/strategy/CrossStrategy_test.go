package strategy

import (
	"testing"

	"StockTradeSim/internal/models"
)

func candles(closes []float64) []models.Price {
	prices := make([]models.Price, len(closes))
	for i, c := range closes {
		prices[i].Close = c
	}
	return prices
}

// declineThenGrind drops steadily, then zigzags upward so the fast EMA has
// to cross above the slow one while RSI stays out of overbought territory.
func declineThenGrind() []float64 {
	var closes []float64
	price := 110.0
	for i := 0; i < 35; i++ {
		price -= 0.1
		closes = append(closes, price)
	}
	for i := 0; i < 40; i++ {
		if i%2 == 0 {
			price += 0.5
		} else {
			price -= 0.4
		}
		closes = append(closes, price)
	}
	return closes
}

func TestAnalyze_TooFewCandlesHolds(t *testing.T) {
	strat := NewCrossStrategy()
	prices := candles(make([]float64, strat.MinCandles()-1))

	result, err := strat.Analyze(prices, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Signal != SignalHold {
		t.Errorf("expected hold, got %s", result.Signal)
	}
}

func TestAnalyze_OverboughtSellsTheHolding(t *testing.T) {
	strat := NewCrossStrategy()
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}

	result, err := strat.Analyze(candles(closes), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Signal != SignalSell {
		t.Fatalf("expected sell on overbought holding, got %s", result.Signal)
	}
	if result.Reason != "overbought" {
		t.Errorf("expected overbought reason, got %q", result.Reason)
	}
}

func TestAnalyze_SteadyUptrendWithoutCrossHolds(t *testing.T) {
	strat := NewCrossStrategy()
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}

	result, err := strat.Analyze(candles(closes), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Signal != SignalHold {
		t.Errorf("expected hold without a fresh cross, got %s", result.Signal)
	}
}

func TestAnalyze_UptrendReversalProducesBuySignal(t *testing.T) {
	strat := NewCrossStrategy()
	prices := candles(declineThenGrind())

	sawBuy := false
	for i := strat.MinCandles(); i < len(prices); i++ {
		result, err := strat.Analyze(prices[:i+1], false)
		if err != nil {
			t.Fatalf("unexpected error at candle %d: %v", i, err)
		}
		if result.Signal == SignalBuy {
			sawBuy = true
			if result.Confidence <= 0 {
				t.Errorf("buy signal with confidence %f", result.Confidence)
			}
		}
	}
	if !sawBuy {
		t.Error("reversal into an uptrend never produced a buy signal")
	}
}

func TestAnalyze_BreakdownProducesSellSignal(t *testing.T) {
	strat := NewCrossStrategy()
	closes := declineThenGrind()
	price := closes[len(closes)-1]
	for i := 0; i < 15; i++ {
		price -= 1.0
		closes = append(closes, price)
	}
	prices := candles(closes)

	sawSell := false
	for i := strat.MinCandles(); i < len(prices); i++ {
		result, err := strat.Analyze(prices[:i+1], true)
		if err != nil {
			t.Fatalf("unexpected error at candle %d: %v", i, err)
		}
		if result.Signal == SignalSell {
			sawSell = true
		}
	}
	if !sawSell {
		t.Error("breakdown never produced a sell signal while holding")
	}
}
