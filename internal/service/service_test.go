package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/Clover403/Doji-Hunter/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubVenue is a scriptable venue for service tests. Unset function fields
// return zero values.
type stubVenue struct {
	initErr error

	account    *domain.AccountStatus
	accountErr error

	quote      *domain.Quote
	quoteErr   error
	quoteErrs  []error // consumed per call when non-empty
	quoteCalls int

	ack         domain.VenueAck
	submitErr   error
	submitCalls int
	lastRequest domain.VenueOrderRequest

	positions    []domain.Position
	positionsErr error

	symbols    []domain.Symbol
	symbolsErr error

	candles    []domain.Candle
	candlesErr error

	lastCandleSymbol    string
	lastCandleTimeframe domain.Timeframe
	lastCandleCount     int

	mock bool
}

func (v *stubVenue) InitializeSession(_ context.Context) error { return v.initErr }

func (v *stubVenue) Account(_ context.Context) (*domain.AccountStatus, error) {
	return v.account, v.accountErr
}

func (v *stubVenue) Quote(_ context.Context, _ string) (*domain.Quote, error) {
	v.quoteCalls++
	if len(v.quoteErrs) > 0 {
		err := v.quoteErrs[0]
		v.quoteErrs = v.quoteErrs[1:]
		if err != nil {
			return nil, err
		}
		return v.quote, nil
	}
	return v.quote, v.quoteErr
}

func (v *stubVenue) SubmitOrder(_ context.Context, req domain.VenueOrderRequest) (domain.VenueAck, error) {
	v.submitCalls++
	v.lastRequest = req
	return v.ack, v.submitErr
}

func (v *stubVenue) Positions(_ context.Context, filter domain.PositionFilter) ([]domain.Position, error) {
	if v.positionsErr != nil {
		return nil, v.positionsErr
	}
	var out []domain.Position
	for _, p := range v.positions {
		if filter.Matches(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (v *stubVenue) Symbols(_ context.Context) ([]domain.Symbol, error) {
	return v.symbols, v.symbolsErr
}

func (v *stubVenue) Candles(_ context.Context, symbol string, tf domain.Timeframe, count int) ([]domain.Candle, error) {
	v.lastCandleSymbol = symbol
	v.lastCandleTimeframe = tf
	v.lastCandleCount = count
	return v.candles, v.candlesErr
}

func (v *stubVenue) LastError(_ context.Context) string { return "" }

func (v *stubVenue) MockMode() bool { return v.mock }

var _ domain.Venue = (*stubVenue)(nil)
