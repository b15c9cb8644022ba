package domain

// AccountStatus is the venue-reported state of the trading account. It is
// read fresh on every health check and account request; balances change with
// every tick, so caching it across requests would report stale money.
type AccountStatus struct {
	Login          int64   `json:"login"`
	Name           string  `json:"name"`
	Server         string  `json:"server"`
	Currency       string  `json:"currency"`
	Balance        float64 `json:"balance"`
	Equity         float64 `json:"equity"`
	Margin         float64 `json:"margin"`
	MarginFree     float64 `json:"marginFree"`
	MarginLevel    float64 `json:"marginLevel"`
	Leverage       int     `json:"leverage"`
	TradingAllowed bool    `json:"tradingAllowed"`
	ExpertAllowed  bool    `json:"tradingExpertAllowed"`
}

// Readiness is the result of the pre-trade health check. All checks are
// evaluated even after the first failure so the caller sees every problem
// at once.
type Readiness struct {
	Ready  bool            `json:"ready"`
	Checks ReadinessChecks `json:"checks"`
	Errors []string        `json:"errors"`
}

// ReadinessChecks records the outcome of each individual probe, in the order
// they run.
type ReadinessChecks struct {
	Connected         bool  `json:"connected"`
	AccountLoggedIn   bool  `json:"loggedIn"`
	TradingAllowed    bool  `json:"tradingAllowed"`
	CanFetchPositions bool  `json:"canFetchPositions"`
	MockMode          bool  `json:"mockMode"`
	AccountNumber     int64 `json:"accountNumber,omitempty"`
	OpenPositions     int   `json:"openPositions"`
}
