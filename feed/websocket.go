package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/lixenwraith/gravity-wall/constant"
	"github.com/lixenwraith/gravity-wall/core"
)

// Websocket feed protocol message types
const (
	msgSubscribe = "subscribe"
	msgSnapshot  = "snapshot"
	msgAdded     = "added"
	msgError     = "error"
)

// WebsocketSource subscribes to a feed relay speaking a small JSON protocol:
//
//	-> {"type":"subscribe","feed":"<id>","limit":50}
//	<- {"type":"snapshot","items":[...]}   newest first
//	<- {"type":"added","item":{...}}        one per new upload
//	<- {"type":"error","message":"..."}
type WebsocketSource struct {
	url          string
	dialer       websocket.Dialer
	pingInterval time.Duration
	log          *logrus.Entry
}

// NewWebsocketSource creates a source for a ws:// or wss:// relay URL
func NewWebsocketSource(url string, log *logrus.Entry) *WebsocketSource {
	return &WebsocketSource{
		url: url,
		dialer: websocket.Dialer{
			HandshakeTimeout: constant.WebsocketHandshakeTimeout,
		},
		pingInterval: constant.WebsocketPingInterval,
		log:          log,
	}
}

// Subscribe implements Source
func (s *WebsocketSource) Subscribe(ctx context.Context, feedID string, limit int) (Subscription, error) {
	conn, _, err := s.dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return nil, &SubscriptionError{FeedID: feedID, Err: fmt.Errorf("websocket dial: %w", err)}
	}

	req := map[string]any{
		"type":  msgSubscribe,
		"feed":  feedID,
		"limit": limit,
	}
	if err := conn.WriteJSON(req); err != nil {
		conn.Close()
		return nil, &SubscriptionError{FeedID: feedID, Err: fmt.Errorf("send subscribe: %w", err)}
	}

	// First reply must be the snapshot
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetReadDeadline(deadline)
	} else {
		conn.SetReadDeadline(time.Now().Add(constant.WebsocketHandshakeTimeout))
	}
	_, raw, err := conn.ReadMessage()
	if err != nil {
		conn.Close()
		return nil, &SubscriptionError{FeedID: feedID, Err: fmt.Errorf("read snapshot: %w", err)}
	}
	conn.SetReadDeadline(time.Time{})

	msg := gjson.ParseBytes(raw)
	switch msg.Get("type").String() {
	case msgSnapshot:
	case msgError:
		conn.Close()
		return nil, &SubscriptionError{FeedID: feedID, Err: errors.New(msg.Get("message").String())}
	default:
		conn.Close()
		return nil, &SubscriptionError{FeedID: feedID, Err: fmt.Errorf("unexpected first message %q", msg.Get("type").String())}
	}

	sub := &wsSubscription{
		conn:     conn,
		feedID:   feedID,
		snapshot: newestFirst(parseItems(msg.Get("items")), limit),
		added:    make(chan Item, constant.FeedBufferSize),
		done:     make(chan struct{}),
		log:      s.log,
	}

	core.Go(sub.readLoop)
	core.Go(func() { sub.pingLoop(s.pingInterval) })

	return sub, nil
}

type wsSubscription struct {
	conn     *websocket.Conn
	feedID   string
	snapshot []Item
	added    chan Item
	done     chan struct{}
	log      *logrus.Entry

	mu       sync.Mutex
	err      error
	finished bool
	closeOne sync.Once
}

func (s *wsSubscription) Snapshot() []Item  { return s.snapshot }
func (s *wsSubscription) Added() <-chan Item { return s.added }

func (s *wsSubscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *wsSubscription) setErr(err error) {
	s.mu.Lock()
	if !s.finished {
		s.err = err
		s.finished = true
	}
	s.mu.Unlock()
}

// readLoop is the only writer of s.added and closes it on exit
func (s *wsSubscription) readLoop() {
	defer close(s.added)

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
				s.setErr(nil)
			default:
				s.setErr(&SubscriptionError{FeedID: s.feedID, Err: err})
			}
			return
		}

		msg := gjson.ParseBytes(raw)
		switch msg.Get("type").String() {
		case msgAdded:
			item, err := itemFromResult(msg.Get("item"))
			if err != nil {
				s.log.WithError(err).Debug("skipping malformed feed item")
				continue
			}
			select {
			case s.added <- item:
			case <-s.done:
				s.setErr(nil)
				return
			}
		case msgError:
			s.setErr(&SubscriptionError{FeedID: s.feedID, Err: errors.New(msg.Get("message").String())})
			s.conn.Close()
			return
		default:
			s.log.WithField("type", msg.Get("type").String()).Debug("ignoring feed message")
		}
	}
}

func (s *wsSubscription) pingLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(constant.WebsocketHandshakeTimeout)
			if err := s.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}

func (s *wsSubscription) Close() error {
	var err error
	s.closeOne.Do(func() {
		close(s.done)
		s.setErr(nil)
		deadline := time.Now().Add(time.Second)
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		err = s.conn.Close()
	})
	return err
}
