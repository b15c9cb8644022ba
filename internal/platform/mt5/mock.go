package mt5

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/Clover403/Doji-Hunter/internal/domain"
)

// Mock is an in-process venue for testing and paper runs. No real trades
// execute. Orders always complete with the venue's success code and
// materialize as mock positions, so the verification path behaves as it
// does against a real terminal.
type Mock struct {
	mu         sync.Mutex
	positions  map[int64]domain.Position
	nextTicket int64
	nextDeal   int64
	lastErr    string
}

// NewMock creates a Mock with no open positions.
func NewMock() *Mock {
	return &Mock{
		positions:  make(map[int64]domain.Position),
		nextTicket: 100000,
		nextDeal:   500000,
	}
}

// InitializeSession always succeeds.
func (m *Mock) InitializeSession(ctx context.Context) error { return nil }

// Account returns a fixed demo account with trading enabled.
func (m *Mock) Account(ctx context.Context) (*domain.AccountStatus, error) {
	return &domain.AccountStatus{
		Login:          12345678,
		Name:           "Demo Account",
		Server:         "Mock-Server",
		Currency:       "USD",
		Balance:        10000,
		Equity:         10000,
		MarginFree:     10000,
		Leverage:       100,
		TradingAllowed: true,
		ExpertAllowed:  true,
	}, nil
}

// Quote returns a fixed spread around a per-symbol base price, or nil for
// symbols the mock does not know.
func (m *Mock) Quote(ctx context.Context, symbol string) (*domain.Quote, error) {
	base, ok := basePrice(symbol)
	if !ok {
		return nil, nil
	}
	spread := base * 0.0005
	return &domain.Quote{Bid: base, Ask: base + spread}, nil
}

// SubmitOrder acknowledges with the success code and records or removes a
// mock position depending on whether the request references one.
func (m *Mock) SubmitOrder(ctx context.Context, req domain.VenueOrderRequest) (domain.VenueAck, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if req.Position != 0 {
		// Closing request: the referenced position disappears from the book.
		delete(m.positions, req.Position)
		m.nextDeal++
		return domain.VenueAck{
			RetCode:      domain.TradeRetcodeDone,
			OrderTicket:  req.Position,
			DealTicket:   m.nextDeal,
			FilledPrice:  req.Price,
			FilledVolume: req.Volume,
			Comment:      "Request executed",
		}, nil
	}

	m.nextTicket++
	m.nextDeal++
	pos := domain.Position{
		Ticket:       m.nextTicket,
		Symbol:       req.Symbol,
		Side:         req.Side,
		Volume:       req.Volume,
		OpenPrice:    req.Price,
		CurrentPrice: req.Price,
		StopLoss:     req.StopLoss,
		TakeProfit:   req.TakeProfit,
		OpenTime:     time.Now().Unix(),
		Magic:        req.Magic,
		Comment:      req.Comment,
	}
	m.positions[pos.Ticket] = pos

	return domain.VenueAck{
		RetCode:      domain.TradeRetcodeDone,
		OrderTicket:  pos.Ticket,
		DealTicket:   m.nextDeal,
		FilledPrice:  req.Price,
		FilledVolume: req.Volume,
		Comment:      "Request executed",
	}, nil
}

// Positions returns the mock book filtered.
func (m *Mock) Positions(ctx context.Context, filter domain.PositionFilter) ([]domain.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Position, 0, len(m.positions))
	for _, p := range m.positions {
		if filter.Matches(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Symbols returns the instruments the mock quotes.
func (m *Mock) Symbols(ctx context.Context) ([]domain.Symbol, error) {
	return []domain.Symbol{
		{Name: "EURUSD", Description: "Euro vs US Dollar", ContractSize: 100000, VolumeMin: 0.01, VolumeMax: 100},
		{Name: "GBPUSD", Description: "Great Britain Pound vs US Dollar", ContractSize: 100000, VolumeMin: 0.01, VolumeMax: 100},
		{Name: "BTCUSD", Description: "Bitcoin vs US Dollar", ContractSize: 1, VolumeMin: 0.01, VolumeMax: 10},
		{Name: "XAUUSD", Description: "Gold vs US Dollar", ContractSize: 100, VolumeMin: 0.01, VolumeMax: 50},
	}, nil
}

// Candles synthesizes a deterministic walk ending at the current base
// price.
func (m *Mock) Candles(ctx context.Context, symbol string, tf domain.Timeframe, count int) ([]domain.Candle, error) {
	base, ok := basePrice(symbol)
	if !ok {
		return nil, domain.ErrSymbolUnavailable
	}
	if count <= 0 {
		count = 10
	}

	step := time.Duration(tf.Minutes()) * time.Minute
	now := time.Now().Truncate(step)

	out := make([]domain.Candle, 0, count)
	price := base
	for i := count; i > 0; i-- {
		t := now.Add(-time.Duration(i) * step)
		// Small oscillation keyed to the bar index so runs are repeatable.
		wave := math.Sin(float64(i)) * base * 0.0004
		open := price
		clos := base + wave
		high := math.Max(open, clos) + base*0.0001
		low := math.Min(open, clos) - base*0.0001
		out = append(out, domain.Candle{
			Time:   t.Unix(),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  clos,
			Volume: 100,
		})
		price = clos
	}
	return out, nil
}

// LastError returns the most recent mock error string.
func (m *Mock) LastError(ctx context.Context) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastErr == "" {
		return "(0) no error"
	}
	return m.lastErr
}

// MockMode reports true.
func (m *Mock) MockMode() bool { return true }

// DropPosition removes a position from the mock book without a close
// request, simulating a trade that vanished (closed by SL/TP or on the
// terminal side).
func (m *Mock) DropPosition(ticket int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.positions, ticket)
}

func basePrice(symbol string) (float64, bool) {
	switch {
	case strings.HasPrefix(symbol, "EUR"):
		return 1.1000, true
	case strings.HasPrefix(symbol, "GBP"):
		return 1.2700, true
	case strings.HasPrefix(symbol, "BTC"):
		return 60000.0, true
	case strings.HasPrefix(symbol, "XAU"):
		return 2300.0, true
	default:
		return 0, false
	}
}

// Compile-time interface check.
var _ domain.Venue = (*Mock)(nil)
