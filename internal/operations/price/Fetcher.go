package price

import (
	"context"
	"strconv"
	"time"

	"StockTradeSim/internal/models"

	"github.com/adshao/go-binance/v2"
	"github.com/sirupsen/logrus"
)

// PriceFetcher pulls historical klines for the configured symbols, in
// 500-candle chunks to respect the exchange limit.
type PriceFetcher struct {
	client  *binance.Client
	symbols []string
	log     *logrus.Logger
}

// NewPriceFetcher creates a new instance of PriceFetcher
func NewPriceFetcher(client *binance.Client, symbols []string, log *logrus.Logger) *PriceFetcher {
	return &PriceFetcher{
		client:  client,
		symbols: symbols,
		log:     log,
	}
}

func (f *PriceFetcher) FetchPrices(ctx context.Context, timeframe string, days int) ([]models.Price, error) {
	endTime := time.Now()
	startTime := endTime.AddDate(0, 0, -days)
	var allPrices []models.Price

	chunkDuration := calculateChunkDuration(timeframe)
	currentStart := startTime
	currentEnd := currentStart.Add(chunkDuration)

	for currentStart.Before(endTime) {
		if currentEnd.After(endTime) {
			currentEnd = endTime
		}

		for _, symbol := range f.symbols {
			klines, err := f.client.NewKlinesService().
				Symbol(symbol).
				Interval(timeframe).
				StartTime(currentStart.UnixNano() / int64(time.Millisecond)).
				EndTime(currentEnd.UnixNano() / int64(time.Millisecond)).
				Limit(500).
				Do(ctx)

			if err != nil {
				f.log.Warnf("error fetching prices for %s: %v", symbol, err)
				continue
			}

			for _, k := range klines {
				allPrices = append(allPrices, models.Price{
					Symbol:     symbol,
					TimeFrame:  timeframe,
					OpenTime:   time.Unix(k.OpenTime/1000, 0),
					CloseTime:  time.Unix(k.CloseTime/1000, 0),
					Open:       parseFloat(f.log, k.Open),
					High:       parseFloat(f.log, k.High),
					Low:        parseFloat(f.log, k.Low),
					Close:      parseFloat(f.log, k.Close),
					Volume:     parseFloat(f.log, k.Volume),
					TradeCount: k.TradeNum,
				})
			}

			f.log.Debugf("fetched %d %s candles for %s from %s to %s",
				len(klines), timeframe, symbol,
				currentStart.Format("2006-01-02 15:04:05"),
				currentEnd.Format("2006-01-02 15:04:05"))
		}

		currentStart = currentEnd
		currentEnd = currentStart.Add(chunkDuration)

		// small delay to avoid rate limits
		time.Sleep(100 * time.Millisecond)
	}

	return allPrices, nil
}

func calculateChunkDuration(timeframe string) time.Duration {
	intervalsMap := map[string]time.Duration{
		"1m":  time.Minute,
		"5m":  5 * time.Minute,
		"15m": 15 * time.Minute,
		"1h":  time.Hour,
		"1d":  24 * time.Hour,
	}

	// 500 is the exchange's max candles per request
	return intervalsMap[timeframe] * 500
}

func parseFloat(log *logrus.Logger, s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		log.Warnf("error parsing float: %v", err)
		return 0
	}
	return f
}
