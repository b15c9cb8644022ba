package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Clover403/Doji-Hunter/internal/domain"
)

// symbolListCap bounds the symbol listing; terminals routinely carry
// thousands of instruments and the listing is a convenience view.
const symbolListCap = 50

// MarketService serves the pass-through market-data reads: symbol listing
// and candle retrieval.
type MarketService struct {
	venue  domain.Venue
	logger *slog.Logger
}

// NewMarketService creates a MarketService over the given venue.
func NewMarketService(venue domain.Venue, logger *slog.Logger) *MarketService {
	return &MarketService{
		venue:  venue,
		logger: logger.With(slog.String("component", "market")),
	}
}

// Symbols returns the first 50 instruments the venue offers.
func (s *MarketService) Symbols(ctx context.Context) ([]domain.Symbol, error) {
	symbols, err := s.venue.Symbols(ctx)
	if err != nil {
		return nil, fmt.Errorf("market: symbols: %w", err)
	}
	if len(symbols) > symbolListCap {
		symbols = symbols[:symbolListCap]
	}
	return symbols, nil
}

// Candles returns up to count most recent bars for the symbol. Unknown
// timeframe strings fall back to M15, matching the venue's behavior.
func (s *MarketService) Candles(ctx context.Context, symbol, timeframe string, count int) ([]domain.Candle, error) {
	if count <= 0 {
		count = 10
	}
	tf := domain.ParseTimeframe(timeframe)

	candles, err := s.venue.Candles(ctx, symbol, tf, count)
	if err != nil {
		return nil, fmt.Errorf("market: candles %s %s: %w", symbol, tf, err)
	}

	s.logger.DebugContext(ctx, "candles fetched",
		slog.String("symbol", symbol),
		slog.String("timeframe", string(tf)),
		slog.Int("count", len(candles)),
	)

	return candles, nil
}
