package feed

import (
	"context"
	"errors"
	"sync"
)

const memorySubscriptionBuffer = 256

var errLagging = errors.New("subscriber lagging")

// MemorySource is an in-process feed hub used by demo mode and tests
type MemorySource struct {
	mu      sync.Mutex
	feeds   map[string][]Item // chronological order
	subs    map[string]map[*memorySubscription]struct{}
	failure error
}

// NewMemorySource creates an empty hub
func NewMemorySource() *MemorySource {
	return &MemorySource{
		feeds: make(map[string][]Item),
		subs:  make(map[string]map[*memorySubscription]struct{}),
	}
}

// SetFailure makes subsequent Subscribe calls fail with err (nil restores normal operation)
func (m *MemorySource) SetFailure(err error) {
	m.mu.Lock()
	m.failure = err
	m.mu.Unlock()
}

// Publish appends an item to a feed and delivers it to live subscribers
func (m *MemorySource) Publish(feedID string, item Item) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.feeds[feedID] = append(m.feeds[feedID], item)
	for sub := range m.subs[feedID] {
		select {
		case sub.added <- item:
		default:
			delete(m.subs[feedID], sub)
			sub.finish(errLagging)
		}
	}
}

// Disconnect ends every live subscription on a feed with err, simulating a dropped connection
func (m *MemorySource) Disconnect(feedID string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for sub := range m.subs[feedID] {
		sub.finish(err)
	}
	delete(m.subs, feedID)
}

// Subscribe implements Source
func (m *MemorySource) Subscribe(ctx context.Context, feedID string, limit int) (Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failure != nil {
		return nil, &SubscriptionError{FeedID: feedID, Err: m.failure}
	}

	history := m.feeds[feedID]
	snapshot := make([]Item, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		snapshot = append(snapshot, history[i])
	}

	sub := &memorySubscription{
		source:   m,
		feedID:   feedID,
		snapshot: newestFirst(snapshot, limit),
		added:    make(chan Item, memorySubscriptionBuffer),
	}
	if m.subs[feedID] == nil {
		m.subs[feedID] = make(map[*memorySubscription]struct{})
	}
	m.subs[feedID][sub] = struct{}{}
	return sub, nil
}

type memorySubscription struct {
	source   *MemorySource
	feedID   string
	snapshot []Item
	added    chan Item

	once sync.Once
	err  error
}

func (s *memorySubscription) Snapshot() []Item  { return s.snapshot }
func (s *memorySubscription) Added() <-chan Item { return s.added }

func (s *memorySubscription) Err() error {
	s.source.mu.Lock()
	defer s.source.mu.Unlock()
	return s.err
}

// finish must be called with source.mu held
func (s *memorySubscription) finish(err error) {
	s.once.Do(func() {
		s.err = err
		close(s.added)
	})
}

func (s *memorySubscription) Close() error {
	s.source.mu.Lock()
	defer s.source.mu.Unlock()
	delete(s.source.subs[s.feedID], s)
	s.finish(nil)
	return nil
}
