package domain

// Quote is the current bid/ask for a symbol. Market orders cross the
// spread: a BUY fills at the ask and a SELL at the bid.
type Quote struct {
	Bid float64 `json:"bid"`
	Ask float64 `json:"ask"`
}

// PriceFor returns the execution price for a market order on the given side.
func (q Quote) PriceFor(side OrderSide) float64 {
	if side == OrderSideBuy {
		return q.Ask
	}
	return q.Bid
}

// Symbol describes a tradeable instrument as reported by the venue.
type Symbol struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	ContractSize float64 `json:"contractSize"`
	VolumeMin    float64 `json:"volumeMin"`
	VolumeMax    float64 `json:"volumeMax"`
}

// Candle is a single OHLCV bar.
type Candle struct {
	Time   int64   `json:"time"` // unix seconds, bar open
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// Timeframe is a candle period in the venue's notation.
type Timeframe string

const (
	TimeframeM1  Timeframe = "M1"
	TimeframeM5  Timeframe = "M5"
	TimeframeM15 Timeframe = "M15"
	TimeframeM30 Timeframe = "M30"
	TimeframeH1  Timeframe = "H1"
	TimeframeH4  Timeframe = "H4"
	TimeframeD1  Timeframe = "D1"
)

// ParseTimeframe maps a string to a known timeframe, defaulting to M15 for
// unknown input (the venue does the same).
func ParseTimeframe(s string) Timeframe {
	switch Timeframe(s) {
	case TimeframeM1, TimeframeM5, TimeframeM15, TimeframeM30, TimeframeH1, TimeframeH4, TimeframeD1:
		return Timeframe(s)
	default:
		return TimeframeM15
	}
}

// Minutes returns the bar length in minutes.
func (tf Timeframe) Minutes() int {
	switch tf {
	case TimeframeM1:
		return 1
	case TimeframeM5:
		return 5
	case TimeframeM15:
		return 15
	case TimeframeM30:
		return 30
	case TimeframeH1:
		return 60
	case TimeframeH4:
		return 240
	case TimeframeD1:
		return 1440
	default:
		return 15
	}
}
