package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Clover403/Doji-Hunter/internal/domain"
)

type fakePositionService struct {
	positions []domain.Position
	listErr   error

	pos    domain.Position
	getErr error
}

func (f *fakePositionService) List(_ context.Context) ([]domain.Position, error) {
	return f.positions, f.listErr
}

func (f *fakePositionService) Get(_ context.Context, _ int64) (domain.Position, error) {
	return f.pos, f.getErr
}

func readyHealth() *fakeHealthService {
	return &fakeHealthService{readiness: domain.Readiness{Ready: true}}
}

func TestListPositions(t *testing.T) {
	svc := &fakePositionService{positions: []domain.Position{
		{Ticket: 100001, Symbol: "EURUSD", Side: domain.OrderSideBuy, Volume: 0.01},
		{Ticket: 100002, Symbol: "GBPUSD", Side: domain.OrderSideSell, Volume: 0.02},
	}}
	h := NewPositionHandler(svc, readyHealth(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/positions", nil)
	rec := httptest.NewRecorder()
	h.ListPositions(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp["success"] != true || resp["count"] != float64(2) {
		t.Errorf("unexpected response: %v", resp)
	}
	positions, ok := resp["positions"].([]any)
	if !ok || len(positions) != 2 {
		t.Fatalf("expected 2 positions, got %v", resp["positions"])
	}
	first, _ := positions[0].(map[string]any)
	if first["ticket"] != float64(100001) || first["type"] != "BUY" {
		t.Errorf("position mistranslated: %v", first)
	}
}

func TestListPositionsEmptyIsAnArray(t *testing.T) {
	h := NewPositionHandler(&fakePositionService{}, readyHealth(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/positions", nil)
	rec := httptest.NewRecorder()
	h.ListPositions(rec, req)

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	positions, ok := resp["positions"].([]any)
	if !ok {
		t.Fatalf("expected JSON array, got %T", resp["positions"])
	}
	if len(positions) != 0 {
		t.Errorf("expected empty array, got %v", positions)
	}
}

func TestListPositionsNotReady(t *testing.T) {
	health := &fakeHealthService{readiness: domain.Readiness{
		Ready:  false,
		Errors: []string{"terminal not initialized: connection refused"},
	}}
	h := NewPositionHandler(&fakePositionService{}, health, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/positions", nil)
	rec := httptest.NewRecorder()
	h.ListPositions(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp["success"] != false {
		t.Error("expected success=false")
	}
	if _, ok := resp["positions"].([]any); !ok {
		t.Errorf("expected positions array even when not ready, got %v", resp["positions"])
	}
}

func TestGetPosition(t *testing.T) {
	svc := &fakePositionService{pos: domain.Position{
		Ticket:    100001,
		Symbol:    "EURUSD",
		Side:      domain.OrderSideBuy,
		Volume:    0.01,
		OpenPrice: 1.1002,
		Profit:    3.2,
	}}
	h := NewPositionHandler(svc, readyHealth(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/positions/100001", nil)
	req.SetPathValue("ticket", "100001")
	rec := httptest.NewRecorder()
	h.GetPosition(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp["exists"] != true || resp["ticket"] != float64(100001) || resp["openPrice"] != 1.1002 {
		t.Errorf("unexpected response: %v", resp)
	}
}

func TestGetPositionNotFound(t *testing.T) {
	svc := &fakePositionService{getErr: domain.ErrPositionNotFound}
	h := NewPositionHandler(svc, readyHealth(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/positions/999999", nil)
	req.SetPathValue("ticket", "999999")
	rec := httptest.NewRecorder()
	h.GetPosition(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp["exists"] != false || resp["ticket"] != float64(999999) {
		t.Errorf("unexpected response: %v", resp)
	}
}
