package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Clover403/Doji-Hunter/internal/domain"
	"github.com/Clover403/Doji-Hunter/internal/executor"
)

// OrderExecutor runs the order lifecycle; the handler only translates HTTP
// to intents and terminal states back to status codes.
type OrderExecutor interface {
	Open(ctx context.Context, intent domain.OrderIntent) (executor.OpenResult, error)
	Close(ctx context.Context, ticket int64) (executor.CloseResult, error)
}

// OrderHandler serves the order placement and close endpoints.
type OrderHandler struct {
	orders OrderExecutor
	logger *slog.Logger
}

// NewOrderHandler creates an OrderHandler with the given executor and
// logger.
func NewOrderHandler(orders OrderExecutor, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, logger: logger}
}

// placeOrderRequest is the JSON body of POST /order.
type placeOrderRequest struct {
	Symbol     string  `json:"symbol"`
	Type       string  `json:"type"` // BUY or SELL
	Volume     float64 `json:"volume"`
	StopLoss   float64 `json:"sl"`
	TakeProfit float64 `json:"tp"`
}

// PlaceOrder opens a market position. This call can move real money; every
// terminal state of the lifecycle maps to exactly one status code, and a
// venue decline always carries the venue's raw retcode and comment.
// POST /order
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	intent := domain.OrderIntent{
		Symbol:     req.Symbol,
		Side:       domain.OrderSide(req.Type),
		Volume:     req.Volume,
		StopLoss:   req.StopLoss,
		TakeProfit: req.TakeProfit,
	}

	result, err := h.orders.Open(r.Context(), intent)
	if err != nil {
		h.writeOrderError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"orderTicket":      result.Ack.OrderTicket,
		"dealTicket":       result.Ack.DealTicket,
		"entryPrice":       result.Ack.FilledPrice,
		"volume":           result.Ack.FilledVolume,
		"symbol":           intent.Symbol,
		"type":             intent.Side,
		"resultCode":       result.Ack.RetCode,
		"positionVerified": result.Verified,
	})
}

// ClosePosition closes an open position by ticket.
// POST /close/{ticket}
func (h *OrderHandler) ClosePosition(w http.ResponseWriter, r *http.Request) {
	ticket, ok := pathTicket(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid ticket")
		return
	}

	result, err := h.orders.Close(r.Context(), ticket)
	if err != nil {
		h.writeOrderError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"closedTicket": result.ClosedTicket,
		"closePrice":   result.ClosePrice,
		"profit":       result.Profit,
	})
}

// writeOrderError maps lifecycle errors onto the HTTP surface. Venue detail
// (raw retcode and comment) is passed through verbatim; replacing it with a
// generic message would hide exactly the information needed to diagnose a
// live-trading failure.
func (h *OrderHandler) writeOrderError(w http.ResponseWriter, r *http.Request, err error) {
	var declined *domain.DeclinedError
	if errors.As(err, &declined) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "Order rejected by venue: " + declined.Comment,
			"retcode": declined.RetCode,
			"comment": declined.Comment,
		})
		return
	}

	var notReady *executor.NotReadyError
	if errors.As(err, &notReady) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"success": false,
			"error":   "venue not ready for trading",
			"errors":  notReady.Errors,
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrInvalidIntent):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   err.Error(),
		})
	case errors.Is(err, domain.ErrSymbolUnavailable):
		writeJSON(w, http.StatusNotFound, map[string]any{
			"success": false,
			"error":   err.Error(),
		})
	case errors.Is(err, domain.ErrPositionNotFound):
		writeJSON(w, http.StatusNotFound, map[string]any{
			"success": false,
			"error":   err.Error(),
		})
	case errors.Is(err, domain.ErrDuplicateIntent), errors.Is(err, domain.ErrLockHeld):
		writeJSON(w, http.StatusConflict, map[string]any{
			"success": false,
			"error":   err.Error(),
		})
	default:
		h.logger.ErrorContext(r.Context(), "handler: order operation failed",
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   err.Error(),
		})
	}
}
