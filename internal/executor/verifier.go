// Package executor sequences the order lifecycle: readiness gate, single
// submission, and independent position verification, producing one
// unambiguous verdict per client request.
package executor

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/Clover403/Doji-Hunter/internal/domain"
)

// PositionReader is the slice of the venue the verifier needs.
type PositionReader interface {
	Positions(ctx context.Context, filter domain.PositionFilter) ([]domain.Position, error)
}

// VerifierConfig tunes the verification window.
type VerifierConfig struct {
	// Settle is the delay before the first query; the venue's book can lag
	// its own acknowledgement.
	Settle time.Duration
	// Interval spaces the queries after the first.
	Interval time.Duration
	// MaxWait bounds the whole window, measured from the start of Verify.
	MaxWait time.Duration
	// PriceTolerance is the absolute open-price tolerance for the fallback
	// match.
	PriceTolerance float64
}

// Verifier independently confirms that an acknowledged order materialized
// as a live position. The venue's acknowledgement can race its own book
// update, so "success" from submission does not guarantee the position is
// queryable yet; the verifier polls within a bounded window instead of
// trusting the ack.
type Verifier struct {
	positions PositionReader
	cfg       VerifierConfig
	logger    *slog.Logger

	// sleep is replaceable so tests run without real delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewVerifier creates a Verifier over the given position reader.
func NewVerifier(positions PositionReader, cfg VerifierConfig, logger *slog.Logger) *Verifier {
	if cfg.Interval <= 0 {
		cfg.Interval = 500 * time.Millisecond
	}
	return &Verifier{
		positions: positions,
		cfg:       cfg,
		logger:    logger.With(slog.String("component", "verifier")),
		sleep:     sleepCtx,
	}
}

// Verify polls the live position list for a position matching the
// acknowledgement. It returns the resolved position and true on a match,
// or (zero, false) when the window expires without one. Not finding the
// position is not a failure of the overall operation, since the submission
// already succeeded per its result code; the caller surfaces it as a
// warning flag, never an error.
//
// Matching order: exact ticket equality with the ack's order ticket first,
// then the heuristic fallback (same symbol, gateway magic tag, open price
// within tolerance of the acknowledged fill). The fallback can false-match
// under concurrent orders on the same symbol and account; serializing
// per-account requests removes that window.
func (v *Verifier) Verify(ctx context.Context, ack domain.VenueAck, intent domain.OrderIntent) (domain.Position, bool) {
	deadline := time.Now().Add(v.cfg.MaxWait)

	if err := v.sleep(ctx, v.cfg.Settle); err != nil {
		return domain.Position{}, false
	}

	for {
		positions, err := v.positions.Positions(ctx, domain.PositionFilter{Symbol: intent.Symbol})
		if err != nil {
			v.logger.WarnContext(ctx, "verification query failed",
				slog.Int64("order_ticket", ack.OrderTicket),
				slog.String("error", err.Error()),
			)
		} else if pos, ok := matchPosition(positions, ack, intent, v.cfg.PriceTolerance); ok {
			v.logger.InfoContext(ctx, "position verified",
				slog.Int64("ticket", pos.Ticket),
				slog.Float64("open_price", pos.OpenPrice),
			)
			return pos, true
		}

		if time.Now().Add(v.cfg.Interval).After(deadline) {
			v.logger.WarnContext(ctx, "position not found within verification window",
				slog.Int64("order_ticket", ack.OrderTicket),
				slog.String("symbol", intent.Symbol),
			)
			return domain.Position{}, false
		}
		if err := v.sleep(ctx, v.cfg.Interval); err != nil {
			return domain.Position{}, false
		}
	}
}

// matchPosition applies the match rules to one position snapshot. It is a
// pure function of its inputs: running it twice against an unchanged list
// yields the same answer.
func matchPosition(positions []domain.Position, ack domain.VenueAck, intent domain.OrderIntent, tolerance float64) (domain.Position, bool) {
	for _, pos := range positions {
		if pos.Ticket == ack.OrderTicket {
			return pos, true
		}
	}
	for _, pos := range positions {
		if pos.Symbol == intent.Symbol &&
			pos.Magic == domain.OrderMagic &&
			math.Abs(pos.OpenPrice-ack.FilledPrice) < tolerance {
			return pos, true
		}
	}
	return domain.Position{}, false
}

// sleepCtx waits for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
