package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Clover403/Doji-Hunter/internal/domain"
)

// AccountService reads the account state. Always fetched fresh: balances
// change with every tick.
type AccountService struct {
	venue  domain.Venue
	logger *slog.Logger
}

// NewAccountService creates an AccountService over the given venue.
func NewAccountService(venue domain.Venue, logger *slog.Logger) *AccountService {
	return &AccountService{
		venue:  venue,
		logger: logger.With(slog.String("component", "account")),
	}
}

// Get returns the current account status, or an error if no account session
// is active.
func (s *AccountService) Get(ctx context.Context) (domain.AccountStatus, error) {
	account, err := s.venue.Account(ctx)
	if err != nil {
		return domain.AccountStatus{}, fmt.Errorf("account: %w", err)
	}
	if account == nil {
		return domain.AccountStatus{}, fmt.Errorf("account: %w: not logged in", domain.ErrNotReady)
	}
	return *account, nil
}
