package price

import (
	"context"
	"time"

	"StockTradeSim/internal/models"
	"StockTradeSim/internal/repositories"

	"github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// PriceRecorder polls the latest candle per timeframe and persists it.
// Recording a close also refreshes the stock's reference price, which is
// what position total_value consumers read.
type PriceRecorder struct {
	client    *binance.Client
	priceRepo repositories.PriceRepository
	stockRepo repositories.StockRepository
	symbols   []string
	log       *logrus.Logger
}

// NewPriceRecorder creates a new instance of PriceRecorder
func NewPriceRecorder(client *binance.Client, priceRepo repositories.PriceRepository, stockRepo repositories.StockRepository, symbols []string, log *logrus.Logger) *PriceRecorder {
	return &PriceRecorder{
		client:    client,
		priceRepo: priceRepo,
		stockRepo: stockRepo,
		symbols:   symbols,
		log:       log,
	}
}

func (r *PriceRecorder) StartRecording(ctx context.Context) {
	timeframes := map[string]time.Duration{
		models.PriceTimeFrame5m:  5 * time.Minute,
		models.PriceTimeFrame15m: 15 * time.Minute,
		models.PriceTimeFrame1h:  time.Hour,
		models.PriceTimeFrame1d:  24 * time.Hour,
	}

	for timeframe, interval := range timeframes {
		go r.recordTimeframe(ctx, timeframe, interval)
	}
}

func (r *PriceRecorder) recordTimeframe(ctx context.Context, timeframe string, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.log.Infof("starting %s price recording", timeframe)

	for {
		select {
		case <-ctx.Done():
			r.log.Infof("stopping %s price recording", timeframe)
			return
		case <-ticker.C:
			r.recordPrices(ctx, timeframe)
		}
	}
}

func (r *PriceRecorder) recordPrices(ctx context.Context, timeframe string) {
	for _, symbol := range r.symbols {
		klines, err := r.client.NewKlinesService().
			Symbol(symbol).
			Interval(timeframe).
			Limit(1).
			Do(ctx)

		if err != nil {
			r.log.Warnf("error getting kline for %s-%s: %v", symbol, timeframe, err)
			continue
		}
		if len(klines) == 0 {
			continue
		}

		k := klines[0]
		price := &models.Price{
			Symbol:     symbol,
			TimeFrame:  timeframe,
			OpenTime:   time.Unix(k.OpenTime/1000, 0),
			CloseTime:  time.Unix(k.CloseTime/1000, 0),
			Open:       parseFloat(r.log, k.Open),
			High:       parseFloat(r.log, k.High),
			Low:        parseFloat(r.log, k.Low),
			Close:      parseFloat(r.log, k.Close),
			Volume:     parseFloat(r.log, k.Volume),
			TradeCount: k.TradeNum,
		}

		if err := r.priceRepo.Create(ctx, price); err != nil {
			r.log.Warnf("error saving price for %s-%s: %v", symbol, timeframe, err)
			continue
		}

		lastPrice, err := decimal.NewFromString(k.Close)
		if err != nil {
			r.log.Warnf("error parsing close for %s: %v", symbol, err)
			continue
		}
		if err := r.stockRepo.UpdateLastPrice(ctx, symbol, lastPrice); err != nil {
			r.log.Warnf("error updating reference price for %s: %v", symbol, err)
		}

		r.log.Debugf("recorded %s price for %s: %v", timeframe, symbol, price.Close)
	}
}
