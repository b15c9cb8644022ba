package domain

import (
	"context"
	"time"
)

// Venue is the execution-venue adapter contract. The venue (a trading
// terminal or its RPC bridge) is treated as a black box: it accepts order
// requests and is the single source of truth for positions and account
// state.
//
// Read methods return (nil, nil)-style "not available" results where the
// venue distinguishes absence from failure; LastError exposes the venue's
// most recent low-level error string for diagnostics.
type Venue interface {
	// InitializeSession verifies the terminal session is up, establishing it
	// if needed. Safe to call repeatedly.
	InitializeSession(ctx context.Context) error

	// Account returns the logged-in account, or nil if no account session
	// is active.
	Account(ctx context.Context) (*AccountStatus, error)

	// Quote returns the current bid/ask for the symbol, or nil if the
	// symbol is unknown or has no quote.
	Quote(ctx context.Context, symbol string) (*Quote, error)

	// SubmitOrder sends a trade request. It may open or close a real
	// position; callers must never invoke it twice for one client intent.
	SubmitOrder(ctx context.Context, req VenueOrderRequest) (VenueAck, error)

	// Positions returns the live open positions passing the filter.
	Positions(ctx context.Context, filter PositionFilter) ([]Position, error)

	// Symbols lists the instruments the venue offers.
	Symbols(ctx context.Context) ([]Symbol, error)

	// Candles returns up to count most recent bars for the symbol.
	Candles(ctx context.Context, symbol string, tf Timeframe, count int) ([]Candle, error)

	// LastError returns the venue's most recent error description.
	LastError(ctx context.Context) string

	// MockMode reports whether this adapter is the in-process mock rather
	// than a real terminal.
	MockMode() bool
}

// LockManager provides short-lived exclusive locks, used to serialize
// overlapping order requests on one account.
type LockManager interface {
	// Acquire obtains the lock for key with the given TTL, returning an
	// unlock function. Returns ErrLockHeld if another holder has it.
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

// SignalBus is a lightweight pub/sub channel for lifecycle events
// (order executed, order declined, position closed). Delivery is best
// effort; the trading path never depends on it.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	// Subscribe returns a channel of raw payloads for the given channels.
	// The returned channel closes when ctx is cancelled.
	Subscribe(ctx context.Context, channels ...string) (<-chan BusMessage, error)
}

// BusMessage is one published event with its source channel.
type BusMessage struct {
	Channel string
	Payload []byte
}
