package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Clover403/Doji-Hunter/internal/domain"
)

// AccountService defines the methods the account handler requires.
type AccountService interface {
	Get(ctx context.Context) (domain.AccountStatus, error)
}

// AccountHandler serves the account information endpoint.
type AccountHandler struct {
	account AccountService
	logger  *slog.Logger
}

// NewAccountHandler creates an AccountHandler with the given service and
// logger.
func NewAccountHandler(account AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{account: account, logger: logger}
}

// GetAccount returns the current account state, read fresh from the venue.
// GET /account
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.account.Get(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: get account failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "Cannot get account info")
		return
	}

	writeJSON(w, http.StatusOK, account)
}
