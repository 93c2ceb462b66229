package strategy

// Signal is the action a strategy recommends for the current candle.
type Signal string

const (
	SignalHold Signal = "hold"
	SignalBuy  Signal = "buy"
	SignalSell Signal = "sell"
)

// StrategyResult represents the output of a strategy analysis
type StrategyResult struct {
	Signal     Signal
	Reason     string
	Confidence float64
}

func holdResult(reason string) *StrategyResult {
	return &StrategyResult{
		Signal: SignalHold,
		Reason: reason,
	}
}
