package handlers

import (
	"context"

	"StockTradeSim/internal/models"
	"StockTradeSim/internal/operations/price"
	"StockTradeSim/internal/repositories"

	"github.com/adshao/go-binance/v2"
	"github.com/sirupsen/logrus"
)

// PriceHandler bootstraps the market-data feed: it backfills kline history
// for the configured symbols and then keeps recording live closes.
type PriceHandler struct {
	priceRepo     repositories.PriceRepository
	stockRepo     repositories.StockRepository
	client        *binance.Client
	priceRecorder *price.PriceRecorder
	priceFetcher  *price.PriceFetcher
	symbols       []string
	log           *logrus.Logger
}

// NewPriceHandler creates a new instance of PriceHandler
func NewPriceHandler(client *binance.Client, priceRepo repositories.PriceRepository, stockRepo repositories.StockRepository, symbols []string, log *logrus.Logger) *PriceHandler {
	return &PriceHandler{
		client:       client,
		priceRepo:    priceRepo,
		stockRepo:    stockRepo,
		symbols:      symbols,
		log:          log,
		priceFetcher: price.NewPriceFetcher(client, symbols, log),
	}
}

func (h *PriceHandler) Start(ctx context.Context) error {
	h.priceRecorder = price.NewPriceRecorder(h.client, h.priceRepo, h.stockRepo, h.symbols, h.log)

	if err := h.fetchHistoricalData(ctx); err != nil {
		return err
	}

	go h.priceRecorder.StartRecording(ctx)

	return nil
}

func (h *PriceHandler) fetchHistoricalData(ctx context.Context) error {
	timeframes := map[string]int{
		models.PriceTimeFrame5m:  7,
		models.PriceTimeFrame15m: 7,
		models.PriceTimeFrame1h:  7,
		models.PriceTimeFrame1d:  30,
	}

	for timeframe, days := range timeframes {
		h.log.Infof("fetching %s historical data for %d days", timeframe, days)

		prices, err := h.priceFetcher.FetchPrices(ctx, timeframe, days)
		if err != nil {
			return err
		}

		for i := range prices {
			if err := h.priceRepo.Create(ctx, &prices[i]); err != nil {
				h.log.Warnf("error saving historical price: %v", err)
			}
		}
	}

	return nil
}
