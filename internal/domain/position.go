package domain

// Position is a venue-reported open trade. Authoritative state lives in the
// venue: the gateway never caches or owns positions, it only reads
// snapshots. A position exists only if the venue's live query returns it.
type Position struct {
	Ticket       int64     `json:"ticket"`
	Symbol       string    `json:"symbol"`
	Side         OrderSide `json:"type"`
	Volume       float64   `json:"volume"`
	OpenPrice    float64   `json:"openPrice"`
	CurrentPrice float64   `json:"currentPrice"`
	StopLoss     float64   `json:"sl"`
	TakeProfit   float64   `json:"tp"`
	Profit       float64   `json:"profit"`
	Swap         float64   `json:"swap"`
	OpenTime     int64     `json:"time"` // unix seconds
	Magic        int64     `json:"magic"`
	Comment      string    `json:"comment"`
}

// PositionFilter narrows a live position query. Zero values mean "any".
type PositionFilter struct {
	Symbol string
	Ticket int64
}

// Matches reports whether the position passes the filter.
func (f PositionFilter) Matches(p Position) bool {
	if f.Symbol != "" && p.Symbol != f.Symbol {
		return false
	}
	if f.Ticket != 0 && p.Ticket != f.Ticket {
		return false
	}
	return true
}
