package feed

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/gravity-wall/constant"
	"github.com/lixenwraith/gravity-wall/core"
)

// Subscriber keeps a live subscription open and forwards eligible items.
// Duplicate ids are forwarded as-is: the wall enforces one body per id.
type Subscriber struct {
	source   Source
	feedID   string
	limit    int
	fallback *Fallback
	log      *logrus.Entry

	newBackOff func() backoff.BackOff

	fallbackOnce   sync.Once
	fallbackActive atomic.Bool
}

// NewSubscriber creates a subscriber; a nil source means no live feed is configured
func NewSubscriber(source Source, feedID string, limit int, fallback *Fallback, log *logrus.Entry) *Subscriber {
	return &Subscriber{
		source:   source,
		feedID:   feedID,
		limit:    limit,
		fallback: fallback,
		log:      log,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = constant.ResubscribeInitialInterval
			b.MaxInterval = constant.ResubscribeMaxInterval
			b.MaxElapsedTime = 0
			return b
		},
	}
}

// FallbackActive reports whether placeholder content has been activated
func (s *Subscriber) FallbackActive() bool {
	return s.fallbackActive.Load()
}

// Run forwards items to out until ctx is done
func (s *Subscriber) Run(ctx context.Context, out chan<- Item) error {
	if s.source == nil {
		s.activateFallback(ctx, out, "no feed source configured")
		<-ctx.Done()
		return ctx.Err()
	}

	bo := s.newBackOff()
	for {
		err := s.session(ctx, out, bo)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		var subErr *SubscriptionError
		if !errors.As(err, &subErr) {
			err = &SubscriptionError{FeedID: s.feedID, Err: err}
		}
		s.log.WithError(err).Warn("feed subscription failed")
		s.activateFallback(ctx, out, "subscription error")

		wait := bo.NextBackOff()
		if wait == backoff.Stop {
			wait = constant.ResubscribeMaxInterval
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// session runs one subscription to completion
func (s *Subscriber) session(ctx context.Context, out chan<- Item, bo backoff.BackOff) error {
	sub, err := s.source.Subscribe(ctx, s.feedID, s.limit)
	if err != nil {
		return err
	}
	defer sub.Close()
	bo.Reset()

	snapshot := sub.Snapshot()
	eligible := 0
	for _, item := range snapshot {
		if !item.Eligible() {
			continue
		}
		eligible++
		if !s.emit(ctx, out, item) {
			return ctx.Err()
		}
	}
	s.log.WithFields(logrus.Fields{
		"feed":     s.feedID,
		"snapshot": len(snapshot),
		"photos":   eligible,
	}).Info("feed subscribed")

	if eligible == 0 {
		s.activateFallback(ctx, out, "empty feed")
	}

	added := sub.Added()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case item, ok := <-added:
			if !ok {
				if err := sub.Err(); err != nil {
					return err
				}
				return ErrClosed
			}
			if !item.Eligible() {
				s.log.WithFields(logrus.Fields{"item": item.ID, "kind": item.Kind}).Debug("skipping non-photo item")
				continue
			}
			if !s.emit(ctx, out, item) {
				return ctx.Err()
			}
		}
	}
}

func (s *Subscriber) emit(ctx context.Context, out chan<- Item, item Item) bool {
	select {
	case <-ctx.Done():
		return false
	case out <- item:
		return true
	}
}

// activateFallback starts the placeholder sequence at most once per subscriber
func (s *Subscriber) activateFallback(ctx context.Context, out chan<- Item, reason string) {
	if s.fallback == nil {
		return
	}
	s.fallbackOnce.Do(func() {
		s.fallbackActive.Store(true)
		s.log.WithField("reason", reason).Info("fallback provider activated")
		core.Go(func() {
			if err := s.fallback.Run(ctx, out); err != nil && !errors.Is(err, context.Canceled) {
				s.log.WithError(err).Debug("fallback provider stopped")
			}
		})
	})
}
