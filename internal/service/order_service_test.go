package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Clover403/Doji-Hunter/internal/domain"
)

func TestSubmitValidatesBeforeVenueCall(t *testing.T) {
	tests := []struct {
		name   string
		intent domain.OrderIntent
	}{
		{"zero volume", domain.OrderIntent{Symbol: "EURUSD", Side: domain.OrderSideBuy, Volume: 0}},
		{"negative volume", domain.OrderIntent{Symbol: "EURUSD", Side: domain.OrderSideBuy, Volume: -0.01}},
		{"missing symbol", domain.OrderIntent{Side: domain.OrderSideBuy, Volume: 0.01}},
		{"bad side", domain.OrderIntent{Symbol: "EURUSD", Side: "LONG", Volume: 0.01}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			venue := &stubVenue{}
			svc := NewOrderService(venue, testLogger())

			_, err := svc.Submit(context.Background(), tt.intent)
			if !errors.Is(err, domain.ErrInvalidIntent) {
				t.Fatalf("expected ErrInvalidIntent, got %v", err)
			}
			if venue.quoteCalls != 0 || venue.submitCalls != 0 {
				t.Errorf("invalid intent reached the venue: %d quotes, %d submits",
					venue.quoteCalls, venue.submitCalls)
			}
		})
	}
}

func TestSubmitPricesAcrossTheSpread(t *testing.T) {
	tests := []struct {
		side      domain.OrderSide
		wantPrice float64
	}{
		{domain.OrderSideBuy, 1.1002},  // ask
		{domain.OrderSideSell, 1.1000}, // bid
	}

	for _, tt := range tests {
		t.Run(string(tt.side), func(t *testing.T) {
			venue := &stubVenue{
				quote: &domain.Quote{Bid: 1.1000, Ask: 1.1002},
				ack:   domain.VenueAck{RetCode: domain.TradeRetcodeDone, OrderTicket: 100001},
			}
			svc := NewOrderService(venue, testLogger())

			_, err := svc.Submit(context.Background(), domain.OrderIntent{
				Symbol: "EURUSD", Side: tt.side, Volume: 0.01,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if venue.lastRequest.Price != tt.wantPrice {
				t.Errorf("expected price %v, got %v", tt.wantPrice, venue.lastRequest.Price)
			}
		})
	}
}

func TestSubmitCarriesPolicyFields(t *testing.T) {
	venue := &stubVenue{
		quote: &domain.Quote{Bid: 1.1000, Ask: 1.1002},
		ack:   domain.VenueAck{RetCode: domain.TradeRetcodeDone},
	}
	svc := NewOrderService(venue, testLogger())

	_, err := svc.Submit(context.Background(), domain.OrderIntent{
		Symbol: "EURUSD", Side: domain.OrderSideBuy, Volume: 0.01,
		StopLoss: 1.0950, TakeProfit: 1.1100,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := venue.lastRequest
	if req.Deviation != domain.OrderDeviationPoints {
		t.Errorf("expected deviation %d, got %d", domain.OrderDeviationPoints, req.Deviation)
	}
	if req.Magic != domain.OrderMagic {
		t.Errorf("expected magic %d, got %d", domain.OrderMagic, req.Magic)
	}
	if req.Comment != domain.OrderCommentOpen {
		t.Errorf("expected comment %q, got %q", domain.OrderCommentOpen, req.Comment)
	}
	if req.TimeInForce != "GTC" || req.Filling != "IOC" {
		t.Errorf("unexpected execution policy: tif=%q filling=%q", req.TimeInForce, req.Filling)
	}
	if req.StopLoss != 1.0950 || req.TakeProfit != 1.1100 {
		t.Errorf("stops lost in translation: sl=%v tp=%v", req.StopLoss, req.TakeProfit)
	}
}

func TestSubmitDeclinedKeepsRawVerdict(t *testing.T) {
	venue := &stubVenue{
		quote: &domain.Quote{Bid: 1.1000, Ask: 1.1002},
		ack:   domain.VenueAck{RetCode: 10013, Comment: "Invalid request"},
	}
	svc := NewOrderService(venue, testLogger())

	ack, err := svc.Submit(context.Background(), domain.OrderIntent{
		Symbol: "EURUSD", Side: domain.OrderSideBuy, Volume: 0.01,
	})
	if !errors.Is(err, domain.ErrVenueDeclined) {
		t.Fatalf("expected ErrVenueDeclined, got %v", err)
	}

	var declined *domain.DeclinedError
	if !errors.As(err, &declined) {
		t.Fatalf("expected *DeclinedError, got %T", err)
	}
	if declined.RetCode != 10013 || declined.Comment != "Invalid request" {
		t.Errorf("venue verdict was altered: %+v", declined)
	}
	if ack.RetCode != 10013 {
		t.Errorf("expected raw ack alongside the error, got %+v", ack)
	}
	if venue.submitCalls != 1 {
		t.Errorf("expected exactly 1 submission, got %d", venue.submitCalls)
	}
}

func TestSubmitNeverRetriesSubmission(t *testing.T) {
	venue := &stubVenue{
		quote:     &domain.Quote{Bid: 1.1000, Ask: 1.1002},
		submitErr: domain.ErrVenueUnreachable,
	}
	svc := NewOrderService(venue, testLogger())

	_, err := svc.Submit(context.Background(), domain.OrderIntent{
		Symbol: "EURUSD", Side: domain.OrderSideBuy, Volume: 0.01,
	})
	if !errors.Is(err, domain.ErrVenueUnreachable) {
		t.Fatalf("expected ErrVenueUnreachable, got %v", err)
	}
	if venue.submitCalls != 1 {
		t.Errorf("submission was retried: %d calls", venue.submitCalls)
	}
}

func TestSubmitRetriesQuoteOnce(t *testing.T) {
	venue := &stubVenue{
		quote:     &domain.Quote{Bid: 1.1000, Ask: 1.1002},
		quoteErrs: []error{domain.ErrVenueUnreachable, nil},
		ack:       domain.VenueAck{RetCode: domain.TradeRetcodeDone},
	}
	svc := NewOrderService(venue, testLogger())

	_, err := svc.Submit(context.Background(), domain.OrderIntent{
		Symbol: "EURUSD", Side: domain.OrderSideBuy, Volume: 0.01,
	})
	if err != nil {
		t.Fatalf("unexpected error after quote retry: %v", err)
	}
	if venue.quoteCalls != 2 {
		t.Errorf("expected 2 quote attempts, got %d", venue.quoteCalls)
	}
}

func TestSubmitUnknownSymbol(t *testing.T) {
	venue := &stubVenue{quote: nil}
	svc := NewOrderService(venue, testLogger())

	_, err := svc.Submit(context.Background(), domain.OrderIntent{
		Symbol: "NOSUCH", Side: domain.OrderSideBuy, Volume: 0.01,
	})
	if !errors.Is(err, domain.ErrSymbolUnavailable) {
		t.Fatalf("expected ErrSymbolUnavailable, got %v", err)
	}
	if venue.submitCalls != 0 {
		t.Errorf("unknown symbol reached submission: %d calls", venue.submitCalls)
	}
}

func TestSubmitCloseReversesTheSide(t *testing.T) {
	tests := []struct {
		openSide  domain.OrderSide
		closeSide domain.OrderSide
		wantPrice float64
	}{
		{domain.OrderSideBuy, domain.OrderSideSell, 1.1000}, // closes at bid
		{domain.OrderSideSell, domain.OrderSideBuy, 1.1002}, // closes at ask
	}

	for _, tt := range tests {
		t.Run(string(tt.openSide), func(t *testing.T) {
			venue := &stubVenue{
				quote: &domain.Quote{Bid: 1.1000, Ask: 1.1002},
				ack:   domain.VenueAck{RetCode: domain.TradeRetcodeDone, FilledPrice: tt.wantPrice},
			}
			svc := NewOrderService(venue, testLogger())

			pos := domain.Position{
				Ticket: 100001,
				Symbol: "EURUSD",
				Side:   tt.openSide,
				Volume: 0.01,
			}
			_, err := svc.SubmitClose(context.Background(), pos)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			req := venue.lastRequest
			if req.Side != tt.closeSide {
				t.Errorf("expected close side %s, got %s", tt.closeSide, req.Side)
			}
			if req.Price != tt.wantPrice {
				t.Errorf("expected price %v, got %v", tt.wantPrice, req.Price)
			}
			if req.Position != 100001 {
				t.Errorf("close request lost the position ticket: %d", req.Position)
			}
			if req.Comment != domain.OrderCommentClose {
				t.Errorf("expected comment %q, got %q", domain.OrderCommentClose, req.Comment)
			}
		})
	}
}
