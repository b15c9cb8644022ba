package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Clover403/Doji-Hunter/internal/domain"
)

// State names the terminal states of the per-request lifecycle machine:
// Start -> CheckingReadiness -> Submitting -> Verifying, terminating in one
// of the values below. Each maps to exactly one HTTP outcome.
type State string

const (
	StateConfirmed           State = "confirmed"
	StateConfirmedUnverified State = "confirmed_unverified"
	StateRejectedNotReady    State = "rejected_not_ready"
	StateRejectedDeclined    State = "rejected_venue_declined"
)

// ReadinessChecker is the readiness gate the orchestrator consults before
// touching the venue's order path.
type ReadinessChecker interface {
	CheckReady(ctx context.Context) domain.Readiness
}

// SubmissionEngine submits opening and closing orders.
type SubmissionEngine interface {
	Submit(ctx context.Context, intent domain.OrderIntent) (domain.VenueAck, error)
	SubmitClose(ctx context.Context, pos domain.Position) (domain.VenueAck, error)
}

// PositionGetter looks up one live position by ticket.
type PositionGetter interface {
	Get(ctx context.Context, ticket int64) (domain.Position, error)
}

// Notifier delivers operator notifications for lifecycle events.
type Notifier interface {
	Notify(ctx context.Context, event, title, message string) error
}

// NotReadyError carries the individual probe failures behind a readiness
// rejection so the caller sees every problem, not a generic message.
type NotReadyError struct {
	Errors []string
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("venue not ready for trading: %v", e.Errors)
}

// Is makes errors.Is(err, domain.ErrNotReady) match.
func (e *NotReadyError) Is(target error) bool {
	return target == domain.ErrNotReady
}

// OpenResult is the verdict for an open request.
type OpenResult struct {
	State    State
	Ack      domain.VenueAck
	Position domain.Position // zero unless Verified
	Verified bool
}

// CloseResult is the verdict for a close request.
type CloseResult struct {
	State        State
	ClosedTicket int64
	ClosePrice   float64
	// Profit is the venue-reported profit of the position at the moment it
	// was looked up for closing.
	Profit float64
}

// Orchestrator sequences readiness gate, submission, and verification into
// one atomic-feeling operation per client request. It holds no mutable
// state across requests; position authority lives entirely in the venue.
type Orchestrator struct {
	health    ReadinessChecker
	engine    SubmissionEngine
	verifier  *Verifier
	positions PositionGetter
	dedup     *Dedup
	logger    *slog.Logger

	// Optional collaborators; nil disables the concern.
	locks    domain.LockManager
	lockTTL  time.Duration
	bus      domain.SignalBus
	notifier Notifier
}

// NewOrchestrator wires the lifecycle machine. dedup may be nil to disable
// duplicate-intent rejection.
func NewOrchestrator(
	health ReadinessChecker,
	engine SubmissionEngine,
	verifier *Verifier,
	positions PositionGetter,
	dedup *Dedup,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		health:    health,
		engine:    engine,
		verifier:  verifier,
		positions: positions,
		dedup:     dedup,
		logger:    logger.With(slog.String("component", "orchestrator")),
	}
}

// WithAccountLock serializes order operations per account through the given
// lock manager. Overlapping orders on one account can otherwise race at the
// venue.
func (o *Orchestrator) WithAccountLock(locks domain.LockManager, ttl time.Duration) *Orchestrator {
	o.locks = locks
	o.lockTTL = ttl
	return o
}

// WithSignalBus publishes lifecycle events on the bus (channel "orders").
func (o *Orchestrator) WithSignalBus(bus domain.SignalBus) *Orchestrator {
	o.bus = bus
	return o
}

// WithNotifier sends operator notifications on terminal states.
func (o *Orchestrator) WithNotifier(n Notifier) *Orchestrator {
	o.notifier = n
	return o
}

// Open runs the open-intent lifecycle. On a nil error the result state is
// StateConfirmed or StateConfirmedUnverified; the latter is a qualified
// success meaning the submission was acknowledged but the position could
// not be confirmed within the verification window.
func (o *Orchestrator) Open(ctx context.Context, intent domain.OrderIntent) (OpenResult, error) {
	// Rejections before the venue is contacted risk no side effect.
	if err := intent.Validate(); err != nil {
		return OpenResult{}, err
	}
	if o.dedup.IsDuplicate(intent.Fingerprint()) {
		return OpenResult{}, fmt.Errorf("orchestrator: %w: %s", domain.ErrDuplicateIntent, intent.Fingerprint())
	}

	readiness := o.health.CheckReady(ctx)
	if !readiness.Ready {
		return OpenResult{State: StateRejectedNotReady}, &NotReadyError{Errors: readiness.Errors}
	}

	unlock, err := o.acquireAccountLock(ctx, readiness.Checks.AccountNumber)
	if err != nil {
		return OpenResult{}, err
	}
	defer unlock()

	ack, err := o.engine.Submit(ctx, intent)
	if err != nil {
		o.publish(ctx, "order_declined", map[string]any{
			"symbol":  intent.Symbol,
			"side":    string(intent.Side),
			"retcode": ack.RetCode,
			"comment": ack.Comment,
		})
		o.notify(ctx, "order_declined", "Order declined",
			fmt.Sprintf("%s %s %v: %v", intent.Side, intent.Symbol, intent.Volume, err))
		return OpenResult{State: StateRejectedDeclined, Ack: ack}, err
	}

	pos, verified := o.verifier.Verify(ctx, ack, intent)

	result := OpenResult{
		State:    StateConfirmed,
		Ack:      ack,
		Position: pos,
		Verified: verified,
	}
	event := "order_executed"
	if !verified {
		result.State = StateConfirmedUnverified
		event = "order_unverified"
	}

	o.logger.InfoContext(ctx, "open order finished",
		slog.String("state", string(result.State)),
		slog.Int64("order_ticket", ack.OrderTicket),
		slog.Bool("verified", verified),
	)
	o.publish(ctx, event, map[string]any{
		"symbol":      intent.Symbol,
		"side":        string(intent.Side),
		"volume":      intent.Volume,
		"orderTicket": ack.OrderTicket,
		"entryPrice":  ack.FilledPrice,
		"verified":    verified,
	})
	o.notify(ctx, event, "Order executed",
		fmt.Sprintf("%s %s %v @ %v (ticket %d, verified=%v)",
			intent.Side, intent.Symbol, intent.Volume, ack.FilledPrice, ack.OrderTicket, verified))

	return result, nil
}

// Close runs the close-by-ticket lifecycle. Close needs no verification
// step: the submission result code plus the fact the position used to
// exist confirm it.
func (o *Orchestrator) Close(ctx context.Context, ticket int64) (CloseResult, error) {
	readiness := o.health.CheckReady(ctx)
	if !readiness.Ready {
		return CloseResult{State: StateRejectedNotReady}, &NotReadyError{Errors: readiness.Errors}
	}

	unlock, err := o.acquireAccountLock(ctx, readiness.Checks.AccountNumber)
	if err != nil {
		return CloseResult{}, err
	}
	defer unlock()

	pos, err := o.positions.Get(ctx, ticket)
	if err != nil {
		return CloseResult{}, err
	}

	ack, err := o.engine.SubmitClose(ctx, pos)
	if err != nil {
		o.publish(ctx, "close_declined", map[string]any{
			"ticket":  ticket,
			"retcode": ack.RetCode,
			"comment": ack.Comment,
		})
		return CloseResult{State: StateRejectedDeclined}, err
	}

	result := CloseResult{
		State:        StateConfirmed,
		ClosedTicket: ticket,
		ClosePrice:   ack.FilledPrice,
		Profit:       pos.Profit,
	}

	o.logger.InfoContext(ctx, "position closed",
		slog.Int64("ticket", ticket),
		slog.Float64("close_price", ack.FilledPrice),
	)
	o.publish(ctx, "position_closed", map[string]any{
		"ticket":     ticket,
		"closePrice": ack.FilledPrice,
		"profit":     pos.Profit,
	})
	o.notify(ctx, "position_closed", "Position closed",
		fmt.Sprintf("ticket %d closed @ %v, profit %v", ticket, ack.FilledPrice, pos.Profit))

	return result, nil
}

// acquireAccountLock takes the per-account lock when configured. The
// returned unlock is always safe to call.
func (o *Orchestrator) acquireAccountLock(ctx context.Context, login int64) (func(), error) {
	if o.locks == nil {
		return func() {}, nil
	}
	unlock, err := o.locks.Acquire(ctx, fmt.Sprintf("account:%d", login), o.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: account lock: %w", err)
	}
	return unlock, nil
}

// publish sends a lifecycle event on the bus. Best effort: the trading
// verdict never depends on it.
func (o *Orchestrator) publish(ctx context.Context, event string, fields map[string]any) {
	if o.bus == nil {
		return
	}
	fields["event"] = event
	payload, err := json.Marshal(fields)
	if err != nil {
		return
	}
	if err := o.bus.Publish(ctx, "orders", payload); err != nil {
		o.logger.WarnContext(ctx, "publish event failed",
			slog.String("event", event),
			slog.String("error", err.Error()),
		)
	}
}

// notify delivers an operator notification. Best effort as well.
func (o *Orchestrator) notify(ctx context.Context, event, title, message string) {
	if o.notifier == nil {
		return
	}
	if err := o.notifier.Notify(ctx, event, title, message); err != nil {
		o.logger.WarnContext(ctx, "notification failed",
			slog.String("event", event),
			slog.String("error", err.Error()),
		)
	}
}
