package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/worklens/worklens/internal/store"
)

// Status lists the batch's candidates and partitions them against the
// ledger. Read-only; a listing or ledger failure is fatal for the call.
func (r *Runner) Status(ctx context.Context, employeeID, date string) (*store.Status, error) {
	refs, err := r.lister.List(ctx, employeeID, date)
	if err != nil {
		return nil, fmt.Errorf("list recordings for %s/%s: %w", employeeID, date, err)
	}

	candidates := make([]string, 0, len(refs))
	for _, ref := range refs {
		candidates = append(candidates, ref.FileName)
	}
	return store.StatusFor(ctx, r.ledger, employeeID, date, candidates)
}

// Reprocess retracts the ledger entries for every candidate in the batch and
// then runs the pipeline with force=true. A failed retraction is logged and
// tolerated: the forced run bypasses the skip check regardless, and a
// successful re-run overwrites the stale ledger timestamp anyway.
func (r *Runner) Reprocess(ctx context.Context, employeeID, date string) (*Result, error) {
	refs, err := r.lister.List(ctx, employeeID, date)
	if err != nil {
		return nil, fmt.Errorf("list recordings for %s/%s: %w", employeeID, date, err)
	}

	for _, ref := range refs {
		if err := r.ledger.UnmarkProcessed(ctx, employeeID, ref.FileName); err != nil {
			log.Warn().Err(err).
				Str("employeeId", employeeID).
				Str("fileName", ref.FileName).
				Msg("Failed to retract ledger entry before reprocess")
		}
	}

	return r.Run(ctx, employeeID, date, true)
}
