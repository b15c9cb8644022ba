package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Clover403/Doji-Hunter/internal/domain"
)

// PositionService reads live position snapshots from the venue. Nothing is
// cached: if a position is not in the venue's answer, it does not exist.
type PositionService struct {
	venue  domain.Venue
	logger *slog.Logger
}

// NewPositionService creates a PositionService over the given venue.
func NewPositionService(venue domain.Venue, logger *slog.Logger) *PositionService {
	return &PositionService{
		venue:  venue,
		logger: logger.With(slog.String("component", "positions")),
	}
}

// List returns all open positions.
func (s *PositionService) List(ctx context.Context) ([]domain.Position, error) {
	positions, err := retryRead(ctx, func(ctx context.Context) ([]domain.Position, error) {
		return s.venue.Positions(ctx, domain.PositionFilter{})
	})
	if err != nil {
		return nil, fmt.Errorf("positions: list: %w", err)
	}
	return positions, nil
}

// Get returns the open position with the given ticket, or
// domain.ErrPositionNotFound if the venue does not report one.
func (s *PositionService) Get(ctx context.Context, ticket int64) (domain.Position, error) {
	positions, err := retryRead(ctx, func(ctx context.Context) ([]domain.Position, error) {
		return s.venue.Positions(ctx, domain.PositionFilter{Ticket: ticket})
	})
	if err != nil {
		return domain.Position{}, fmt.Errorf("positions: get %d: %w", ticket, err)
	}
	if len(positions) == 0 {
		return domain.Position{}, fmt.Errorf("positions: ticket %d: %w", ticket, domain.ErrPositionNotFound)
	}
	return positions[0], nil
}
