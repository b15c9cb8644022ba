package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Clover403/Doji-Hunter/internal/domain"
)

// HealthService defines the methods the health handler requires from the
// service layer.
type HealthService interface {
	CheckReady(ctx context.Context) domain.Readiness
	Status(ctx context.Context) (connected bool, account *domain.AccountStatus)
	MockMode() bool
}

// HealthHandler serves the liveness and trading-readiness endpoints.
type HealthHandler struct {
	health HealthService
	logger *slog.Logger
}

// NewHealthHandler creates a HealthHandler with the given service and
// logger.
func NewHealthHandler(health HealthService, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{health: health, logger: logger}
}

// HealthCheck reports basic liveness: whether the venue is reachable and
// which account is logged in.
// GET /health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	connected, account := h.health.Status(r.Context())

	resp := map[string]any{
		"status":    "ok",
		"connected": connected,
		"account":   nil,
		"server":    nil,
		"mockMode":  h.health.MockMode(),
	}
	if account != nil {
		resp["account"] = account.Login
		resp["server"] = account.Server
	}

	writeJSON(w, http.StatusOK, resp)
}

// TradingHealth runs every readiness probe and reports all failures
// together. Status 200 only when the venue is fully ready for real orders.
// GET /health/trading
func (h *HealthHandler) TradingHealth(w http.ResponseWriter, r *http.Request) {
	readiness := h.health.CheckReady(r.Context())

	status := http.StatusOK
	message := "READY for trading"
	if !readiness.Ready {
		status = http.StatusServiceUnavailable
		message = "NOT READY - see errors"
	}

	writeJSON(w, status, map[string]any{
		"ready":   readiness.Ready,
		"checks":  readiness.Checks,
		"errors":  readiness.Errors,
		"message": message,
	})
}
