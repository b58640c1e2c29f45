package voting

import (
	"context"
	"log/slog"
)

// Trigger is the propagation policy: after a mutation to an item or its
// votes, it decides which profiles must be refreshed. Item ratings are
// recomputed inside the mutating transaction by the engine; the trigger
// handles the follow-up profile recomputation.
type Trigger struct {
	agg *Aggregator
}

func NewTrigger(agg *Aggregator) *Trigger {
	return &Trigger{agg: agg}
}

// VoteMutated refreshes the profile of the author whose item's vote set
// changed. Runs after the vote transaction has committed; a failure here
// leaves the committed vote in place and is repaired by reconciliation, so
// it is logged rather than surfaced to the voter.
func (t *Trigger) VoteMutated(ctx context.Context, authorID int) {
	if err := t.agg.RecomputeProfile(ctx, authorID); err != nil {
		slog.Error("profile refresh after vote failed", "author_id", authorID, "error", err)
	}
}

// ItemsMutated refreshes the profiles of every named author, deduplicated.
// Called after item creation and deletion paths, including cascades.
func (t *Trigger) ItemsMutated(ctx context.Context, authorIDs ...int) error {
	seen := make(map[int]bool, len(authorIDs))
	for _, id := range authorIDs {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		if err := t.agg.RecomputeProfile(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
