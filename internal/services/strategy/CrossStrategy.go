package strategy

import (
	"StockTradeSim/internal/models"
	"StockTradeSim/internal/services/indicators"
)

// CrossStrategy is a long-only EMA-crossover strategy with an RSI filter:
// buy on a bullish fast/slow cross when RSI is not overbought, sell the
// holding on a bearish cross or when RSI runs hot.
type CrossStrategy struct {
	fastPeriod int
	slowPeriod int
	rsiPeriod  int

	overbought float64

	ema *indicators.EMAService
	rsi *indicators.RSIService
}

// NewCrossStrategy creates a CrossStrategy with the default periods
func NewCrossStrategy() *CrossStrategy {
	return &CrossStrategy{
		fastPeriod: 12,
		slowPeriod: 26,
		rsiPeriod:  14,
		overbought: 70,
		ema:        indicators.NewEMAService(),
		rsi:        indicators.NewRSIService(),
	}
}

// MinCandles is the number of candles the strategy needs before its first
// meaningful signal.
func (s *CrossStrategy) MinCandles() int {
	return s.slowPeriod + 2
}

// Analyze inspects the candle history up to and including the current
// candle and recommends an action for it.
func (s *CrossStrategy) Analyze(prices []models.Price, holding bool) (*StrategyResult, error) {
	if len(prices) < s.MinCandles() {
		return holdResult("not enough candles"), nil
	}

	closes := make([]float64, len(prices))
	for i, p := range prices {
		closes[i] = p.Close
	}

	fast := s.ema.Calculate(closes, s.fastPeriod)
	slow := s.ema.Calculate(closes, s.slowPeriod)
	cross := s.ema.DetectCross(fast, slow)
	rsi := s.rsi.Latest(closes, s.rsiPeriod)

	if holding {
		if cross.Crossed && cross.Direction < 0 {
			return &StrategyResult{Signal: SignalSell, Reason: "bearish cross", Confidence: 0.5 + cross.Strength}, nil
		}
		if rsi >= s.overbought {
			return &StrategyResult{Signal: SignalSell, Reason: "overbought", Confidence: 0.5}, nil
		}
		return holdResult("no exit signal"), nil
	}

	if cross.Crossed && cross.Direction > 0 && rsi < s.overbought {
		return &StrategyResult{Signal: SignalBuy, Reason: "bullish cross", Confidence: 0.5 + cross.Strength}, nil
	}
	return holdResult("no entry signal"), nil
}
