package indicators

// EMAService provides Exponential Moving Average calculations
type EMAService struct{}

// CrossSignal represents EMA crossover status
type CrossSignal struct {
	Crossed   bool    // Whether a cross occurred on the latest point
	Direction int     // 1 (bullish), -1 (bearish)
	Strength  float64 // Relative gap between the lines after the cross
}

// NewEMAService creates a new EMA service instance
func NewEMAService() *EMAService {
	return &EMAService{}
}

// Calculate computes EMA for the entire price series. Entries before the
// first full period are left at zero.
func (s *EMAService) Calculate(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) < period {
		return nil
	}

	ema := make([]float64, len(prices))
	multiplier := 2.0 / (float64(period) + 1.0)

	// Seed with the SMA of the first period
	sma := 0.0
	for i := 0; i < period; i++ {
		sma += prices[i]
	}
	ema[period-1] = sma / float64(period)

	for i := period; i < len(prices); i++ {
		ema[i] = (prices[i]-ema[i-1])*multiplier + ema[i-1]
	}

	return ema
}

// DetectCross inspects the last two points of a fast and a slow EMA series
// for a crossover.
func (s *EMAService) DetectCross(fast, slow []float64) CrossSignal {
	n := len(fast)
	if n < 2 || len(slow) != n || slow[n-1] == 0 || slow[n-2] == 0 {
		return CrossSignal{}
	}

	prevDiff := fast[n-2] - slow[n-2]
	currDiff := fast[n-1] - slow[n-1]

	signal := CrossSignal{}
	if prevDiff <= 0 && currDiff > 0 {
		signal.Crossed = true
		signal.Direction = 1
	} else if prevDiff >= 0 && currDiff < 0 {
		signal.Crossed = true
		signal.Direction = -1
	}
	if signal.Crossed && slow[n-1] != 0 {
		signal.Strength = currDiff / slow[n-1]
		if signal.Strength < 0 {
			signal.Strength = -signal.Strength
		}
	}
	return signal
}
