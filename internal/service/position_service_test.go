package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Clover403/Doji-Hunter/internal/domain"
)

func TestPositionGet(t *testing.T) {
	venue := &stubVenue{positions: []domain.Position{
		{Ticket: 100001, Symbol: "EURUSD", Volume: 0.01},
		{Ticket: 100002, Symbol: "GBPUSD", Volume: 0.02},
	}}
	svc := NewPositionService(venue, testLogger())

	pos, err := svc.Get(context.Background(), 100002)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pos.Symbol != "GBPUSD" {
		t.Errorf("expected GBPUSD, got %s", pos.Symbol)
	}
}

func TestPositionGetMissingTicket(t *testing.T) {
	venue := &stubVenue{}
	svc := NewPositionService(venue, testLogger())

	_, err := svc.Get(context.Background(), 999999)
	if !errors.Is(err, domain.ErrPositionNotFound) {
		t.Fatalf("expected ErrPositionNotFound, got %v", err)
	}
}

func TestPositionList(t *testing.T) {
	venue := &stubVenue{positions: []domain.Position{
		{Ticket: 100001, Symbol: "EURUSD"},
	}}
	svc := NewPositionService(venue, testLogger())

	positions, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(positions) != 1 {
		t.Errorf("expected 1 position, got %d", len(positions))
	}
}
