package engine

import (
	"context"
	"time"
)

// DefaultBatchDelay spaces out consecutive owners in a batch run so a large
// precompute sweep does not saturate the model backend.
const DefaultBatchDelay = 2 * time.Second

// BatchItem is the outcome of one owner's computation inside a batch run.
type BatchItem struct {
	OwnerID  string
	Response *Response
	Err      error
}

// BatchCompute runs FindMatches for each owner sequentially, pausing between
// owners. Per-owner failures are recorded and do not stop the sweep; only
// context cancellation ends the run early, returning the items completed so
// far together with the context error.
func (e *Engine) BatchCompute(ctx context.Context, ownerIDs []string, delay time.Duration) ([]BatchItem, error) {
	if delay < 0 {
		delay = DefaultBatchDelay
	}

	items := make([]BatchItem, 0, len(ownerIDs))
	for i, ownerID := range ownerIDs {
		if i > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				return items, ctx.Err()
			case <-time.After(delay):
			}
		}
		if err := ctx.Err(); err != nil {
			return items, err
		}

		resp, err := e.FindMatches(ctx, Request{OwnerID: ownerID, ForceRefresh: true})
		if err != nil {
			e.logger.Warn("batch compute for owner %s failed: %v", ownerID, err)
		}
		items = append(items, BatchItem{OwnerID: ownerID, Response: resp, Err: err})
	}
	return items, nil
}
