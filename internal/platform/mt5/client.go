// Package mt5 implements the execution-venue adapter for a MetaTrader 5
// terminal reached through its bridge RPC, plus an in-process mock used in
// mock mode and in tests.
package mt5

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Clover403/Doji-Hunter/internal/domain"
)

// Client is the REST client for the terminal bridge RPC. Every method maps
// to one MT5 API call on the far side.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client for the bridge at baseURL. The timeout bounds
// every call, including order submission; an expired call surfaces as
// domain.ErrVenueUnreachable.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// InitializeSession asks the terminal to initialize (or confirm) its
// session.
func (c *Client) InitializeSession(ctx context.Context) error {
	var resp struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := c.do(ctx, http.MethodPost, "/initialize", nil, &resp); err != nil {
		return fmt.Errorf("mt5: initialize: %w", err)
	}
	if !resp.Success {
		return fmt.Errorf("mt5: initialize: %w: %s", domain.ErrNotReady, resp.Error)
	}
	return nil
}

// Account returns the logged-in account, or nil if the terminal has no
// active account session.
func (c *Client) Account(ctx context.Context) (*domain.AccountStatus, error) {
	var info accountInfo
	err := c.do(ctx, http.MethodGet, "/account_info", nil, &info)
	if err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("mt5: account info: %w", err)
	}
	if info.Login == 0 {
		return nil, nil
	}
	return info.toDomain(), nil
}

// Quote returns the current tick for symbol, or nil if the symbol is
// unknown.
func (c *Client) Quote(ctx context.Context, symbol string) (*domain.Quote, error) {
	q := url.Values{"symbol": {symbol}}
	var t tick
	err := c.do(ctx, http.MethodGet, "/symbol_info_tick?"+q.Encode(), nil, &t)
	if err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("mt5: tick %s: %w", symbol, err)
	}
	if t.Bid == 0 && t.Ask == 0 {
		return nil, nil
	}
	return &domain.Quote{Bid: t.Bid, Ask: t.Ask}, nil
}

// SubmitOrder sends one trade request. Never retried here or anywhere
// above: a duplicate send can double real-money exposure.
func (c *Client) SubmitOrder(ctx context.Context, req domain.VenueOrderRequest) (domain.VenueAck, error) {
	var res orderResult
	if err := c.do(ctx, http.MethodPost, "/order_send", fromDomainRequest(req), &res); err != nil {
		return domain.VenueAck{}, fmt.Errorf("mt5: order send: %w", err)
	}
	return res.toDomain(), nil
}

// Positions returns the live open positions passing the filter.
func (c *Client) Positions(ctx context.Context, filter domain.PositionFilter) ([]domain.Position, error) {
	q := url.Values{}
	if filter.Symbol != "" {
		q.Set("symbol", filter.Symbol)
	}
	if filter.Ticket != 0 {
		q.Set("ticket", strconv.FormatInt(filter.Ticket, 10))
	}
	path := "/positions_get"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var raw []position
	if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, fmt.Errorf("mt5: positions: %w", err)
	}

	out := make([]domain.Position, 0, len(raw))
	for _, p := range raw {
		out = append(out, p.toDomain())
	}
	return out, nil
}

// Symbols lists the instruments the terminal offers.
func (c *Client) Symbols(ctx context.Context) ([]domain.Symbol, error) {
	var raw []symbolInfo
	if err := c.do(ctx, http.MethodGet, "/symbols_get", nil, &raw); err != nil {
		return nil, fmt.Errorf("mt5: symbols: %w", err)
	}
	out := make([]domain.Symbol, 0, len(raw))
	for _, s := range raw {
		out = append(out, s.toDomain())
	}
	return out, nil
}

// Candles returns up to count most recent bars for the symbol.
func (c *Client) Candles(ctx context.Context, symbol string, tf domain.Timeframe, count int) ([]domain.Candle, error) {
	q := url.Values{
		"symbol":    {symbol},
		"timeframe": {string(tf)},
		"count":     {strconv.Itoa(count)},
	}
	var raw []rate
	err := c.do(ctx, http.MethodGet, "/copy_rates?"+q.Encode(), nil, &raw)
	if err != nil {
		if errors.Is(err, errNotFound) {
			return nil, fmt.Errorf("mt5: candles %s: %w", symbol, domain.ErrSymbolUnavailable)
		}
		return nil, fmt.Errorf("mt5: candles %s: %w", symbol, err)
	}
	out := make([]domain.Candle, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.toDomain())
	}
	return out, nil
}

// LastError returns the terminal's last error description, or a connection
// note if even that call fails.
func (c *Client) LastError(ctx context.Context) string {
	var resp struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodGet, "/last_error", nil, &resp); err != nil {
		return fmt.Sprintf("last_error unavailable: %v", err)
	}
	return fmt.Sprintf("(%d) %s", resp.Code, resp.Message)
}

// MockMode reports false: this adapter talks to a real terminal.
func (c *Client) MockMode() bool { return false }

// errNotFound marks a bridge 404 so callers can map absence to nil results.
var errNotFound = errors.New("not found")

// do executes one bridge RPC call and decodes the JSON response into out.
// Network and deadline failures are wrapped in domain.ErrVenueUnreachable.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isNetworkErr(err) {
			return fmt.Errorf("%w: %v", domain.ErrVenueUnreachable, err)
		}
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: read response: %v", domain.ErrVenueUnreachable, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errNotFound
	case resp.StatusCode >= 400:
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(data, &e)
		if e.Error != "" {
			return fmt.Errorf("bridge returned %d: %s", resp.StatusCode, e.Error)
		}
		return fmt.Errorf("bridge returned %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// isNetworkErr reports whether err is a transport-level failure rather than
// a protocol error.
func isNetworkErr(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// Compile-time interface check.
var _ domain.Venue = (*Client)(nil)
