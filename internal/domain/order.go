package domain

import "fmt"

// OrderSide indicates whether this is a buy or sell.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

// Valid reports whether the side is one of the two known values.
func (s OrderSide) Valid() bool {
	return s == OrderSideBuy || s == OrderSideSell
}

// Opposite returns the side that closes a position opened on s.
func (s OrderSide) Opposite() OrderSide {
	if s == OrderSideBuy {
		return OrderSideSell
	}
	return OrderSideBuy
}

// Venue trade-request result codes. TradeRetcodeDone is the only code that
// means the request completed; everything else is a decline.
const (
	TradeRetcodeDone = 10009
)

// Fixed order policy applied to every venue request this gateway sends.
// The magic number tags the gateway's own trades so verification can tell
// them apart from positions opened elsewhere on the same account.
const (
	OrderDeviationPoints = 20
	OrderMagic           = 234000
	OrderCommentOpen     = "DojiHunter AI"
	OrderCommentClose    = "DojiHunter Close"
)

// OrderIntent is a venue-agnostic request to open a trade. It is immutable
// once constructed and never persisted; each client request produces one.
type OrderIntent struct {
	Symbol     string
	Side       OrderSide
	Volume     float64
	StopLoss   float64 // 0 means unset
	TakeProfit float64 // 0 means unset
}

// Validate checks the intent before any venue call is made. A rejected
// intent must never reach the venue.
func (i OrderIntent) Validate() error {
	if i.Symbol == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalidIntent)
	}
	if !i.Side.Valid() {
		return fmt.Errorf("%w: side must be BUY or SELL, got %q", ErrInvalidIntent, string(i.Side))
	}
	if i.Volume <= 0 {
		return fmt.Errorf("%w: volume must be positive, got %v", ErrInvalidIntent, i.Volume)
	}
	return nil
}

// Fingerprint identifies the intent for duplicate-submission detection.
func (i OrderIntent) Fingerprint() string {
	return fmt.Sprintf("%s|%s|%v", i.Symbol, i.Side, i.Volume)
}

// VenueOrderRequest is the venue-shaped projection of an OrderIntent plus
// the fixed policy fields. It is derived deterministically from the intent
// and the current quote, and lives only for the duration of one submission.
type VenueOrderRequest struct {
	Symbol     string    `json:"symbol"`
	Side       OrderSide `json:"type"`
	Volume     float64   `json:"volume"`
	Price      float64   `json:"price"`
	StopLoss   float64   `json:"sl"`
	TakeProfit float64   `json:"tp"`
	Deviation  int       `json:"deviation"`
	Magic      int64     `json:"magic"`
	Comment    string    `json:"comment"`
	// Position references the ticket being closed; zero for an opening order.
	Position int64 `json:"position,omitempty"`
	// TimeInForce and Filling are fixed to GTC / IOC for market orders.
	TimeInForce string `json:"type_time"`
	Filling     string `json:"type_filling"`
}

// VenueAck is the venue's immediate response to a submission. It is
// transient and consumed right away by the orchestrator; the acknowledgement
// is not proof the position exists.
type VenueAck struct {
	RetCode      int     `json:"retcode"`
	OrderTicket  int64   `json:"order"`
	DealTicket   int64   `json:"deal"`
	FilledPrice  float64 `json:"price"`
	FilledVolume float64 `json:"volume"`
	Comment      string  `json:"comment"`
}

// Done reports whether the venue completed the request.
func (a VenueAck) Done() bool {
	return a.RetCode == TradeRetcodeDone
}
