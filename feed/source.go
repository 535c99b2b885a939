package feed

import (
	"context"
	"errors"
	"fmt"
)

// Source opens live subscriptions to a feed
type Source interface {
	// Subscribe returns the most recent items (newest first, at most limit) and a stream of later additions
	Subscribe(ctx context.Context, feedID string, limit int) (Subscription, error)
}

// Subscription is one live view of a feed
type Subscription interface {
	// Snapshot returns the initial items, newest first
	Snapshot() []Item
	// Added yields items appended after the snapshot; closed when the subscription ends
	Added() <-chan Item
	// Err reports why Added was closed, nil after a clean Close
	Err() error
	Close() error
}

var ErrClosed = errors.New("subscription closed")

// SubscriptionError wraps any failure to open or keep a feed subscription
type SubscriptionError struct {
	FeedID string
	Err    error
}

func (e *SubscriptionError) Error() string {
	return fmt.Sprintf("feed %q subscription: %v", e.FeedID, e.Err)
}

func (e *SubscriptionError) Unwrap() error {
	return e.Err
}

// newestFirst trims items to limit, assuming they are already newest first
func newestFirst(items []Item, limit int) []Item {
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
