package executor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Clover403/Doji-Hunter/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeHealth struct {
	readiness domain.Readiness
}

func (f *fakeHealth) CheckReady(_ context.Context) domain.Readiness {
	return f.readiness
}

type fakeEngine struct {
	submitCalls int
	ack         domain.VenueAck
	err         error

	closeCalls int
	closeAck   domain.VenueAck
	closeErr   error
}

func (f *fakeEngine) Submit(_ context.Context, _ domain.OrderIntent) (domain.VenueAck, error) {
	f.submitCalls++
	return f.ack, f.err
}

func (f *fakeEngine) SubmitClose(_ context.Context, _ domain.Position) (domain.VenueAck, error) {
	f.closeCalls++
	return f.closeAck, f.closeErr
}

type fakePositionGetter struct {
	pos domain.Position
	err error
}

func (f *fakePositionGetter) Get(_ context.Context, _ int64) (domain.Position, error) {
	return f.pos, f.err
}

type fakePositionReader struct {
	positions []domain.Position
	err       error
}

func (f *fakePositionReader) Positions(_ context.Context, _ domain.PositionFilter) ([]domain.Position, error) {
	return f.positions, f.err
}

type fakeLocks struct {
	acquired int
	released int
	err      error
}

func (f *fakeLocks) Acquire(_ context.Context, _ string, _ time.Duration) (func(), error) {
	if f.err != nil {
		return nil, f.err
	}
	f.acquired++
	return func() { f.released++ }, nil
}

func readyReadiness() domain.Readiness {
	r := domain.Readiness{Ready: true, Errors: []string{}}
	r.Checks.Connected = true
	r.Checks.AccountLoggedIn = true
	r.Checks.TradingAllowed = true
	r.Checks.CanFetchPositions = true
	r.Checks.AccountNumber = 12345678
	return r
}

func notReadyReadiness(errs ...string) domain.Readiness {
	return domain.Readiness{Ready: false, Errors: errs}
}

// instantVerifier returns a Verifier over reader whose sleeps complete
// immediately, so tests never wait on real timers.
func instantVerifier(reader PositionReader) *Verifier {
	v := NewVerifier(reader, VerifierConfig{
		Settle:         500 * time.Millisecond,
		Interval:       500 * time.Millisecond,
		MaxWait:        2 * time.Second,
		PriceTolerance: 0.01,
	}, testLogger())
	v.sleep = func(_ context.Context, _ time.Duration) error { return nil }
	return v
}

func buyIntent() domain.OrderIntent {
	return domain.OrderIntent{Symbol: "EURUSD", Side: domain.OrderSideBuy, Volume: 0.01}
}

func TestOpenNotReadySkipsSubmission(t *testing.T) {
	engine := &fakeEngine{}
	orch := NewOrchestrator(
		&fakeHealth{readiness: notReadyReadiness("trading not allowed on this account")},
		engine,
		instantVerifier(&fakePositionReader{}),
		&fakePositionGetter{},
		nil,
		testLogger(),
	)

	result, err := orch.Open(context.Background(), buyIntent())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, domain.ErrNotReady) {
		t.Errorf("expected ErrNotReady, got %v", err)
	}
	if result.State != StateRejectedNotReady {
		t.Errorf("expected state %q, got %q", StateRejectedNotReady, result.State)
	}
	if engine.submitCalls != 0 {
		t.Errorf("expected 0 submissions, got %d", engine.submitCalls)
	}

	var nrErr *NotReadyError
	if !errors.As(err, &nrErr) {
		t.Fatalf("expected *NotReadyError, got %T", err)
	}
	if len(nrErr.Errors) != 1 || nrErr.Errors[0] != "trading not allowed on this account" {
		t.Errorf("unexpected probe errors: %v", nrErr.Errors)
	}
}

func TestOpenInvalidIntentSkipsSubmission(t *testing.T) {
	engine := &fakeEngine{}
	orch := NewOrchestrator(
		&fakeHealth{readiness: readyReadiness()},
		engine,
		instantVerifier(&fakePositionReader{}),
		&fakePositionGetter{},
		nil,
		testLogger(),
	)

	intent := buyIntent()
	intent.Volume = 0

	_, err := orch.Open(context.Background(), intent)
	if !errors.Is(err, domain.ErrInvalidIntent) {
		t.Errorf("expected ErrInvalidIntent, got %v", err)
	}
	if engine.submitCalls != 0 {
		t.Errorf("expected 0 submissions, got %d", engine.submitCalls)
	}
}

func TestOpenDeclinedKeepsVenueVerdict(t *testing.T) {
	ack := domain.VenueAck{RetCode: 10004, Comment: "Requote"}
	engine := &fakeEngine{
		ack: ack,
		err: &domain.DeclinedError{RetCode: 10004, Comment: "Requote"},
	}
	orch := NewOrchestrator(
		&fakeHealth{readiness: readyReadiness()},
		engine,
		instantVerifier(&fakePositionReader{}),
		&fakePositionGetter{},
		nil,
		testLogger(),
	)

	result, err := orch.Open(context.Background(), buyIntent())
	if !errors.Is(err, domain.ErrVenueDeclined) {
		t.Fatalf("expected ErrVenueDeclined, got %v", err)
	}
	if result.State != StateRejectedDeclined {
		t.Errorf("expected state %q, got %q", StateRejectedDeclined, result.State)
	}
	if result.Ack.RetCode != 10004 || result.Ack.Comment != "Requote" {
		t.Errorf("venue verdict was altered: %+v", result.Ack)
	}
	if engine.submitCalls != 1 {
		t.Errorf("expected exactly 1 submission, got %d", engine.submitCalls)
	}
}

func TestOpenConfirmedAndVerified(t *testing.T) {
	ack := domain.VenueAck{
		RetCode:      domain.TradeRetcodeDone,
		OrderTicket:  100001,
		DealTicket:   500001,
		FilledPrice:  1.1002,
		FilledVolume: 0.01,
	}
	reader := &fakePositionReader{positions: []domain.Position{
		{Ticket: 100001, Symbol: "EURUSD", OpenPrice: 1.1002, Magic: domain.OrderMagic},
	}}
	engine := &fakeEngine{ack: ack}
	orch := NewOrchestrator(
		&fakeHealth{readiness: readyReadiness()},
		engine,
		instantVerifier(reader),
		&fakePositionGetter{},
		nil,
		testLogger(),
	)

	result, err := orch.Open(context.Background(), buyIntent())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.State != StateConfirmed {
		t.Errorf("expected state %q, got %q", StateConfirmed, result.State)
	}
	if !result.Verified {
		t.Error("expected verified result")
	}
	if result.Position.Ticket != 100001 {
		t.Errorf("expected position ticket 100001, got %d", result.Position.Ticket)
	}
}

func TestOpenConfirmedUnverifiedIsNotAnError(t *testing.T) {
	ack := domain.VenueAck{
		RetCode:     domain.TradeRetcodeDone,
		OrderTicket: 100001,
		FilledPrice: 1.1002,
	}
	orch := NewOrchestrator(
		&fakeHealth{readiness: readyReadiness()},
		&fakeEngine{ack: ack},
		instantVerifier(&fakePositionReader{}),
		&fakePositionGetter{},
		nil,
		testLogger(),
	)

	result, err := orch.Open(context.Background(), buyIntent())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.State != StateConfirmedUnverified {
		t.Errorf("expected state %q, got %q", StateConfirmedUnverified, result.State)
	}
	if result.Verified {
		t.Error("expected unverified result")
	}
	if result.Ack.OrderTicket != 100001 {
		t.Errorf("ack lost in unverified path: %+v", result.Ack)
	}
}

func TestOpenDuplicateIntentRejected(t *testing.T) {
	ack := domain.VenueAck{RetCode: domain.TradeRetcodeDone, OrderTicket: 100001}
	engine := &fakeEngine{ack: ack}
	orch := NewOrchestrator(
		&fakeHealth{readiness: readyReadiness()},
		engine,
		instantVerifier(&fakePositionReader{positions: []domain.Position{
			{Ticket: 100001, Symbol: "EURUSD"},
		}}),
		&fakePositionGetter{},
		NewDedup(time.Minute),
		testLogger(),
	)

	if _, err := orch.Open(context.Background(), buyIntent()); err != nil {
		t.Fatalf("first open failed: %v", err)
	}
	_, err := orch.Open(context.Background(), buyIntent())
	if !errors.Is(err, domain.ErrDuplicateIntent) {
		t.Fatalf("expected ErrDuplicateIntent, got %v", err)
	}
	if engine.submitCalls != 1 {
		t.Errorf("duplicate reached the venue: %d submissions", engine.submitCalls)
	}
}

func TestOpenLockHeldSkipsSubmission(t *testing.T) {
	engine := &fakeEngine{ack: domain.VenueAck{RetCode: domain.TradeRetcodeDone}}
	orch := NewOrchestrator(
		&fakeHealth{readiness: readyReadiness()},
		engine,
		instantVerifier(&fakePositionReader{}),
		&fakePositionGetter{},
		nil,
		testLogger(),
	).WithAccountLock(&fakeLocks{err: domain.ErrLockHeld}, 15*time.Second)

	_, err := orch.Open(context.Background(), buyIntent())
	if !errors.Is(err, domain.ErrLockHeld) {
		t.Fatalf("expected ErrLockHeld, got %v", err)
	}
	if engine.submitCalls != 0 {
		t.Errorf("expected 0 submissions, got %d", engine.submitCalls)
	}
}

func TestOpenReleasesAccountLock(t *testing.T) {
	locks := &fakeLocks{}
	orch := NewOrchestrator(
		&fakeHealth{readiness: readyReadiness()},
		&fakeEngine{ack: domain.VenueAck{RetCode: domain.TradeRetcodeDone, OrderTicket: 100001}},
		instantVerifier(&fakePositionReader{positions: []domain.Position{
			{Ticket: 100001, Symbol: "EURUSD"},
		}}),
		&fakePositionGetter{},
		nil,
		testLogger(),
	).WithAccountLock(locks, 15*time.Second)

	if _, err := orch.Open(context.Background(), buyIntent()); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if locks.acquired != 1 || locks.released != 1 {
		t.Errorf("lock acquired %d times, released %d times", locks.acquired, locks.released)
	}
}

func TestCloseMissingTicketSkipsSubmission(t *testing.T) {
	engine := &fakeEngine{}
	orch := NewOrchestrator(
		&fakeHealth{readiness: readyReadiness()},
		engine,
		instantVerifier(&fakePositionReader{}),
		&fakePositionGetter{err: domain.ErrPositionNotFound},
		nil,
		testLogger(),
	)

	_, err := orch.Close(context.Background(), 999999)
	if !errors.Is(err, domain.ErrPositionNotFound) {
		t.Fatalf("expected ErrPositionNotFound, got %v", err)
	}
	if engine.closeCalls != 0 {
		t.Errorf("expected 0 close submissions, got %d", engine.closeCalls)
	}
}

func TestCloseConfirmed(t *testing.T) {
	pos := domain.Position{
		Ticket: 100001,
		Symbol: "EURUSD",
		Side:   domain.OrderSideBuy,
		Volume: 0.01,
		Profit: 12.5,
	}
	engine := &fakeEngine{closeAck: domain.VenueAck{
		RetCode:     domain.TradeRetcodeDone,
		FilledPrice: 1.1050,
	}}
	orch := NewOrchestrator(
		&fakeHealth{readiness: readyReadiness()},
		engine,
		instantVerifier(&fakePositionReader{}),
		&fakePositionGetter{pos: pos},
		nil,
		testLogger(),
	)

	result, err := orch.Close(context.Background(), 100001)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.State != StateConfirmed {
		t.Errorf("expected state %q, got %q", StateConfirmed, result.State)
	}
	if result.ClosedTicket != 100001 {
		t.Errorf("expected closed ticket 100001, got %d", result.ClosedTicket)
	}
	if result.ClosePrice != 1.1050 {
		t.Errorf("expected close price 1.1050, got %v", result.ClosePrice)
	}
	if result.Profit != 12.5 {
		t.Errorf("expected profit 12.5, got %v", result.Profit)
	}
}

func TestCloseNotReadySkipsSubmission(t *testing.T) {
	engine := &fakeEngine{}
	orch := NewOrchestrator(
		&fakeHealth{readiness: notReadyReadiness("terminal not initialized: dial tcp refused")},
		engine,
		instantVerifier(&fakePositionReader{}),
		&fakePositionGetter{pos: domain.Position{Ticket: 100001}},
		nil,
		testLogger(),
	)

	result, err := orch.Close(context.Background(), 100001)
	if !errors.Is(err, domain.ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
	if result.State != StateRejectedNotReady {
		t.Errorf("expected state %q, got %q", StateRejectedNotReady, result.State)
	}
	if engine.closeCalls != 0 {
		t.Errorf("expected 0 close submissions, got %d", engine.closeCalls)
	}
}
