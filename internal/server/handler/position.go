package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Clover403/Doji-Hunter/internal/domain"
)

// PositionService defines the methods the position handler requires.
type PositionService interface {
	List(ctx context.Context) ([]domain.Position, error)
	Get(ctx context.Context, ticket int64) (domain.Position, error)
}

// PositionHandler serves the live position snapshot endpoints. The venue is
// the single source of truth: if a position is not in the response, it does
// not exist.
type PositionHandler struct {
	positions PositionService
	health    HealthService
	logger    *slog.Logger
}

// NewPositionHandler creates a PositionHandler with the given services and
// logger.
func NewPositionHandler(positions PositionService, health HealthService, logger *slog.Logger) *PositionHandler {
	return &PositionHandler{
		positions: positions,
		health:    health,
		logger:    logger,
	}
}

// ListPositions returns all open positions.
// GET /positions
func (h *PositionHandler) ListPositions(w http.ResponseWriter, r *http.Request) {
	if readiness := h.health.CheckReady(r.Context()); !readiness.Ready {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"success":   false,
			"errors":    readiness.Errors,
			"positions": []domain.Position{},
		})
		return
	}

	positions, err := h.positions.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list positions failed",
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success":   false,
			"error":     err.Error(),
			"positions": []domain.Position{},
		})
		return
	}

	if positions == nil {
		positions = []domain.Position{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"count":     len(positions),
		"positions": positions,
	})
}

// GetPosition verifies a specific position exists.
// GET /positions/{ticket}
func (h *PositionHandler) GetPosition(w http.ResponseWriter, r *http.Request) {
	ticket, ok := pathTicket(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid ticket")
		return
	}

	pos, err := h.positions.Get(r.Context(), ticket)
	if err != nil {
		if errors.Is(err, domain.ErrPositionNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]any{
				"exists":  false,
				"ticket":  ticket,
				"message": "Position not found",
			})
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: get position failed",
			slog.Int64("ticket", ticket),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"exists":    true,
		"ticket":    pos.Ticket,
		"symbol":    pos.Symbol,
		"type":      pos.Side,
		"volume":    pos.Volume,
		"openPrice": pos.OpenPrice,
		"profit":    pos.Profit,
	})
}
