package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Clover403/Doji-Hunter/internal/domain"
)

// OrderService is the order submission engine. It converts a venue-agnostic
// intent into the venue's required shape, submits it exactly once, and
// interprets the low-level result code. It does not verify positions or
// gate on readiness; the orchestrator sequences those around it.
type OrderService struct {
	venue  domain.Venue
	logger *slog.Logger
}

// NewOrderService creates an OrderService over the given venue.
func NewOrderService(venue domain.Venue, logger *slog.Logger) *OrderService {
	return &OrderService{
		venue:  venue,
		logger: logger.With(slog.String("component", "orders")),
	}
}

// Submit sends one opening market order for the intent.
//
// The intent is validated before any venue call. The execution price is the
// ask for a BUY and the bid for a SELL: market orders cross the spread, and
// that choice is deliberate, not configurable. A non-success result code is
// returned as a DeclinedError carrying the venue's raw code and comment,
// and is never retried here.
func (s *OrderService) Submit(ctx context.Context, intent domain.OrderIntent) (domain.VenueAck, error) {
	if err := intent.Validate(); err != nil {
		return domain.VenueAck{}, err
	}

	quote, err := retryRead(ctx, func(ctx context.Context) (*domain.Quote, error) {
		return s.venue.Quote(ctx, intent.Symbol)
	})
	if err != nil {
		return domain.VenueAck{}, fmt.Errorf("order: quote %s: %w", intent.Symbol, err)
	}
	if quote == nil {
		return domain.VenueAck{}, fmt.Errorf("order: %w: %s has no quote", domain.ErrSymbolUnavailable, intent.Symbol)
	}

	req := domain.VenueOrderRequest{
		Symbol:      intent.Symbol,
		Side:        intent.Side,
		Volume:      intent.Volume,
		Price:       quote.PriceFor(intent.Side),
		StopLoss:    intent.StopLoss,
		TakeProfit:  intent.TakeProfit,
		Deviation:   domain.OrderDeviationPoints,
		Magic:       domain.OrderMagic,
		Comment:     domain.OrderCommentOpen,
		TimeInForce: "GTC",
		Filling:     "IOC",
	}

	s.logger.InfoContext(ctx, "submitting order",
		slog.String("symbol", intent.Symbol),
		slog.String("side", string(intent.Side)),
		slog.Float64("volume", intent.Volume),
		slog.Float64("price", req.Price),
	)

	ack, err := s.venue.SubmitOrder(ctx, req)
	if err != nil {
		return domain.VenueAck{}, fmt.Errorf("order: submit: %w", err)
	}

	if !ack.Done() {
		s.logger.WarnContext(ctx, "venue declined order",
			slog.Int("retcode", ack.RetCode),
			slog.String("comment", ack.Comment),
		)
		return ack, &domain.DeclinedError{RetCode: ack.RetCode, Comment: ack.Comment}
	}

	s.logger.InfoContext(ctx, "order acknowledged",
		slog.Int64("order_ticket", ack.OrderTicket),
		slog.Int64("deal_ticket", ack.DealTicket),
		slog.Float64("filled_price", ack.FilledPrice),
	)

	return ack, nil
}

// SubmitClose sends one closing market order for the given open position.
// The request references the position's ticket and takes the opposite side,
// priced at the bid for closing a BUY and the ask for closing a SELL.
func (s *OrderService) SubmitClose(ctx context.Context, pos domain.Position) (domain.VenueAck, error) {
	quote, err := retryRead(ctx, func(ctx context.Context) (*domain.Quote, error) {
		return s.venue.Quote(ctx, pos.Symbol)
	})
	if err != nil {
		return domain.VenueAck{}, fmt.Errorf("order: quote %s: %w", pos.Symbol, err)
	}
	if quote == nil {
		return domain.VenueAck{}, fmt.Errorf("order: %w: %s has no quote", domain.ErrSymbolUnavailable, pos.Symbol)
	}

	closeSide := pos.Side.Opposite()
	req := domain.VenueOrderRequest{
		Symbol:      pos.Symbol,
		Side:        closeSide,
		Volume:      pos.Volume,
		Price:       quote.PriceFor(closeSide),
		Deviation:   domain.OrderDeviationPoints,
		Magic:       domain.OrderMagic,
		Comment:     domain.OrderCommentClose,
		Position:    pos.Ticket,
		TimeInForce: "GTC",
		Filling:     "IOC",
	}

	s.logger.InfoContext(ctx, "closing position",
		slog.Int64("ticket", pos.Ticket),
		slog.String("symbol", pos.Symbol),
		slog.Float64("volume", pos.Volume),
	)

	ack, err := s.venue.SubmitOrder(ctx, req)
	if err != nil {
		return domain.VenueAck{}, fmt.Errorf("order: close %d: %w", pos.Ticket, err)
	}

	if !ack.Done() {
		s.logger.WarnContext(ctx, "venue declined close",
			slog.Int64("ticket", pos.Ticket),
			slog.Int("retcode", ack.RetCode),
			slog.String("comment", ack.Comment),
		)
		return ack, &domain.DeclinedError{RetCode: ack.RetCode, Comment: ack.Comment}
	}

	return ack, nil
}
