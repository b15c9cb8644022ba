// Package service implements the gateway's application services on top of
// the venue adapter. Services hold no state of their own: every call reads
// fresh from the venue, which is the single source of truth.
package service

import (
	"context"
	"log/slog"

	"github.com/Clover403/Doji-Hunter/internal/domain"
)

// HealthService runs the pre-trade readiness probes. It is used both by the
// readiness endpoint and as the mandatory gate before any order operation.
type HealthService struct {
	venue  domain.Venue
	logger *slog.Logger
}

// NewHealthService creates a HealthService over the given venue.
func NewHealthService(venue domain.Venue, logger *slog.Logger) *HealthService {
	return &HealthService{
		venue:  venue,
		logger: logger.With(slog.String("component", "health")),
	}
}

// CheckReady evaluates every readiness probe and reports all failures
// together; it never short-circuits, so an operator sees the full picture
// in one call. All probes are read-only.
func (s *HealthService) CheckReady(ctx context.Context) domain.Readiness {
	r := domain.Readiness{
		Errors: []string{},
	}
	r.Checks.MockMode = s.venue.MockMode()

	// Probe 1: terminal session.
	if err := s.venue.InitializeSession(ctx); err != nil {
		r.Errors = append(r.Errors, "terminal not initialized: "+err.Error())
	} else {
		r.Checks.Connected = true
	}

	// Probe 2 and 3: account login and the account's trading flag.
	account, err := s.venue.Account(ctx)
	switch {
	case err != nil:
		r.Errors = append(r.Errors, "cannot get account info: "+err.Error())
	case account == nil:
		r.Errors = append(r.Errors, "cannot get account info - not logged in")
	default:
		r.Checks.AccountLoggedIn = true
		r.Checks.AccountNumber = account.Login
		if account.TradingAllowed {
			r.Checks.TradingAllowed = true
		} else {
			r.Errors = append(r.Errors, "trading not allowed on this account")
		}
	}

	// Probe 4: a position query proves read access, not just login.
	positions, err := s.venue.Positions(ctx, domain.PositionFilter{})
	if err != nil {
		r.Errors = append(r.Errors, "cannot fetch positions: "+err.Error())
	} else {
		r.Checks.CanFetchPositions = true
		r.Checks.OpenPositions = len(positions)
	}

	r.Ready = r.Checks.Connected &&
		r.Checks.AccountLoggedIn &&
		r.Checks.TradingAllowed &&
		r.Checks.CanFetchPositions

	if !r.Ready {
		s.logger.WarnContext(ctx, "readiness check failed",
			slog.Any("errors", r.Errors),
		)
	}

	return r
}

// Status returns the basic liveness view: whether the venue is reachable
// and, if so, the current account.
func (s *HealthService) Status(ctx context.Context) (connected bool, account *domain.AccountStatus) {
	if err := s.venue.InitializeSession(ctx); err != nil {
		return false, nil
	}
	account, err := s.venue.Account(ctx)
	if err != nil {
		return true, nil
	}
	return true, account
}

// MockMode reports whether the venue is the in-process mock.
func (s *HealthService) MockMode() bool {
	return s.venue.MockMode()
}
