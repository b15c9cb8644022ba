package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Clover403/Doji-Hunter/internal/domain"
)

// MarketService defines the methods the market handler requires from the
// service layer.
type MarketService interface {
	Symbols(ctx context.Context) ([]domain.Symbol, error)
	Candles(ctx context.Context, symbol, timeframe string, count int) ([]domain.Candle, error)
}

// MarketHandler serves the market-data pass-through endpoints.
type MarketHandler struct {
	markets MarketService
	logger  *slog.Logger
}

// NewMarketHandler creates a MarketHandler with the given service and
// logger.
func NewMarketHandler(markets MarketService, logger *slog.Logger) *MarketHandler {
	return &MarketHandler{markets: markets, logger: logger}
}

// ListSymbols returns the available instruments (capped at the first 50).
// GET /symbols
func (h *MarketHandler) ListSymbols(w http.ResponseWriter, r *http.Request) {
	symbols, err := h.markets.Symbols(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list symbols failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if symbols == nil {
		symbols = []domain.Symbol{}
	}
	writeJSON(w, http.StatusOK, symbols)
}

// GetCandles returns recent OHLCV bars for a symbol.
// GET /candles?symbol=EURUSD&timeframe=M15&count=10
func (h *MarketHandler) GetCandles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	symbol := q.Get("symbol")
	if symbol == "" {
		symbol = "BTCUSD"
	}
	timeframe := q.Get("timeframe")
	count := queryInt(r, "count", 10)

	candles, err := h.markets.Candles(r.Context(), symbol, timeframe, count)
	if err != nil {
		if errors.Is(err, domain.ErrSymbolUnavailable) {
			writeError(w, http.StatusNotFound, "Symbol "+symbol+" not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: get candles failed",
			slog.String("symbol", symbol),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if candles == nil {
		candles = []domain.Candle{}
	}
	writeJSON(w, http.StatusOK, candles)
}
