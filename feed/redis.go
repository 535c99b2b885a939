package feed

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/gravity-wall/constant"
	"github.com/lixenwraith/gravity-wall/core"
)

// RedisSource reads a feed kept in redis: sorted set "feed:<id>" (score = createdAt millis,
// member = item JSON) for the snapshot and pub/sub channel "feed:<id>:added" for additions.
type RedisSource struct {
	client *redis.Client
	log    *logrus.Entry
}

// NewRedisSource wraps an existing client
func NewRedisSource(client *redis.Client, log *logrus.Entry) *RedisSource {
	return &RedisSource{client: client, log: log}
}

// FeedKey is the sorted set holding a feed's history
func FeedKey(feedID string) string {
	return "feed:" + feedID
}

// AddedChannel is the pub/sub channel announcing new items
func AddedChannel(feedID string) string {
	return "feed:" + feedID + ":added"
}

// Subscribe implements Source. The channel subscription is confirmed before the snapshot is read
// so no addition can fall between the two; an item seen in both is deduplicated downstream.
func (s *RedisSource) Subscribe(ctx context.Context, feedID string, limit int) (Subscription, error) {
	pubsub := s.client.Subscribe(ctx, AddedChannel(feedID))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, &SubscriptionError{FeedID: feedID, Err: fmt.Errorf("redis subscribe: %w", err)}
	}

	members, err := s.client.ZRevRange(ctx, FeedKey(feedID), 0, int64(limit-1)).Result()
	if err != nil {
		pubsub.Close()
		return nil, &SubscriptionError{FeedID: feedID, Err: fmt.Errorf("redis snapshot: %w", err)}
	}

	snapshot := make([]Item, 0, len(members))
	for _, m := range members {
		item, err := ParseItem([]byte(m))
		if err != nil {
			s.log.WithError(err).Debug("skipping malformed feed member")
			continue
		}
		snapshot = append(snapshot, item)
	}

	sub := &redisSubscription{
		pubsub:   pubsub,
		feedID:   feedID,
		snapshot: snapshot,
		added:    make(chan Item, constant.FeedBufferSize),
		done:     make(chan struct{}),
		log:      s.log,
	}
	core.Go(sub.readLoop)
	return sub, nil
}

type redisSubscription struct {
	pubsub   *redis.PubSub
	feedID   string
	snapshot []Item
	added    chan Item
	done     chan struct{}
	log      *logrus.Entry

	mu       sync.Mutex
	err      error
	closeOne sync.Once
}

func (s *redisSubscription) Snapshot() []Item  { return s.snapshot }
func (s *redisSubscription) Added() <-chan Item { return s.added }

func (s *redisSubscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *redisSubscription) readLoop() {
	defer close(s.added)

	messages := s.pubsub.Channel()
	for {
		select {
		case <-s.done:
			return
		case msg, ok := <-messages:
			if !ok {
				select {
				case <-s.done:
				default:
					s.mu.Lock()
					s.err = &SubscriptionError{FeedID: s.feedID, Err: ErrClosed}
					s.mu.Unlock()
				}
				return
			}
			item, err := ParseItem([]byte(msg.Payload))
			if err != nil {
				s.log.WithError(err).Debug("skipping malformed feed message")
				continue
			}
			select {
			case s.added <- item:
			case <-s.done:
				return
			}
		}
	}
}

func (s *redisSubscription) Close() error {
	var err error
	s.closeOne.Do(func() {
		close(s.done)
		err = s.pubsub.Close()
	})
	return err
}
