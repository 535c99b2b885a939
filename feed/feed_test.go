package feed

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/gravity-wall/constant"
)

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func photo(id string) Item {
	return Item{ID: id, URL: "https://cdn.example/" + id + ".jpg", Kind: KindPhoto}
}

func recv(t *testing.T, ch <-chan Item, within time.Duration) Item {
	t.Helper()
	select {
	case item := <-ch:
		return item
	case <-time.After(within):
		t.Fatalf("no item within %v", within)
		return Item{}
	}
}

func TestParseItem(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Item
		wantErr bool
	}{
		{
			name: "rfc3339",
			raw:  `{"id":"a1","url":"https://x/a1.jpg","kind":"photo","createdAt":"2026-06-01T18:30:00Z"}`,
			want: Item{ID: "a1", URL: "https://x/a1.jpg", Kind: KindPhoto, CreatedAt: time.Date(2026, 6, 1, 18, 30, 0, 0, time.UTC)},
		},
		{
			name: "millis and aliases",
			raw:  `{"id":"v1","downloadUrl":"https://x/v1.mp4","type":"video","createdAt":1000}`,
			want: Item{ID: "v1", URL: "https://x/v1.mp4", Kind: KindVideo, CreatedAt: time.UnixMilli(1000)},
		},
		{
			name: "kind defaults to photo",
			raw:  `{"id":"p","url":"u"}`,
			want: Item{ID: "p", URL: "u", Kind: KindPhoto},
		},
		{name: "missing id", raw: `{"url":"u"}`, wantErr: true},
		{name: "bad json", raw: `{"id":`, wantErr: true},
		{name: "bad time", raw: `{"id":"p","createdAt":"yesterday"}`, wantErr: true},
		{name: "array", raw: `[1,2]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseItem([]byte(tt.raw))
			if tt.wantErr {
				require.ErrorIs(t, err, ErrMalformedItem)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want.ID, got.ID)
			assert.Equal(t, tt.want.URL, got.URL)
			assert.Equal(t, tt.want.Kind, got.Kind)
			assert.True(t, tt.want.CreatedAt.Equal(got.CreatedAt))
		})
	}
}

func TestItemEligible(t *testing.T) {
	assert.True(t, photo("a").Eligible())
	assert.False(t, Item{ID: "v", URL: "u", Kind: KindVideo}.Eligible())
	assert.False(t, Item{ID: "", URL: "u", Kind: KindPhoto}.Eligible())
	assert.False(t, Item{ID: "x", Kind: KindPhoto}.Eligible())
}

func TestMemorySourceSnapshotNewestFirst(t *testing.T) {
	src := NewMemorySource()
	for _, id := range []string{"p1", "p2", "p3", "p4"} {
		src.Publish("party", photo(id))
	}

	sub, err := src.Subscribe(context.Background(), "party", 3)
	require.NoError(t, err)
	defer sub.Close()

	ids := make([]string, 0, 3)
	for _, item := range sub.Snapshot() {
		ids = append(ids, item.ID)
	}
	assert.Equal(t, []string{"p4", "p3", "p2"}, ids)

	src.Publish("party", photo("p5"))
	assert.Equal(t, "p5", recv(t, sub.Added(), time.Second).ID)
}

func TestMemorySourceFailureAndDisconnect(t *testing.T) {
	src := NewMemorySource()
	src.SetFailure(errors.New("offline"))
	_, err := src.Subscribe(context.Background(), "party", 10)
	var subErr *SubscriptionError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, "party", subErr.FeedID)

	src.SetFailure(nil)
	sub, err := src.Subscribe(context.Background(), "party", 10)
	require.NoError(t, err)

	dropped := errors.New("dropped")
	src.Disconnect("party", dropped)
	_, ok := <-sub.Added()
	assert.False(t, ok)
	assert.ErrorIs(t, sub.Err(), dropped)
}

func TestFallbackIDs(t *testing.T) {
	fb := NewFallback([]string{"placeholder://a", "placeholder://b"}, 5, time.Millisecond, testLog())
	items := fb.Items()
	require.Len(t, items, 5)

	seen := make(map[string]bool)
	for i, item := range items {
		assert.True(t, IsFallbackID(item.ID))
		assert.True(t, item.Eligible())
		assert.False(t, seen[item.ID], "duplicate synthetic id")
		seen[item.ID] = true
		// Stable across calls
		assert.Equal(t, FallbackID(i, item.URL), item.ID)
	}
	assert.Equal(t, items, fb.Items())
	assert.False(t, IsFallbackID("p1"))
}

func TestFallbackPacing(t *testing.T) {
	fb := NewFallback([]string{"placeholder://a"}, 3, 30*time.Millisecond, testLog())
	out := make(chan Item, 3)

	start := time.Now()
	require.NoError(t, fb.Run(context.Background(), out))
	elapsed := time.Since(start)

	assert.Len(t, out, 3)
	// Two waits between three items
	assert.GreaterOrEqual(t, elapsed, 60*time.Millisecond)
}

func newTestSubscriber(src Source, fb *Fallback) *Subscriber {
	s := NewSubscriber(src, "party", constant.FeedSnapshotLimit, fb, testLog())
	s.newBackOff = func() backoff.BackOff { return backoff.NewConstantBackOff(10 * time.Millisecond) }
	return s
}

func TestSubscriberFiltersNonPhoto(t *testing.T) {
	src := NewMemorySource()
	src.Publish("party", photo("p1"))
	src.Publish("party", Item{ID: "v1", URL: "https://x/v1.mp4", Kind: KindVideo})
	src.Publish("party", photo("p2"))

	s := newTestSubscriber(src, nil)
	out := make(chan Item, 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx, out)

	assert.Equal(t, "p2", recv(t, out, time.Second).ID)
	assert.Equal(t, "p1", recv(t, out, time.Second).ID)

	src.Publish("party", Item{ID: "v2", URL: "https://x/v2.mp4", Kind: KindVideo})
	src.Publish("party", photo("p3"))
	assert.Equal(t, "p3", recv(t, out, time.Second).ID)
	assert.False(t, s.FallbackActive())
}

func TestSubscriberFallbackOnImmediateError(t *testing.T) {
	src := NewMemorySource()
	src.SetFailure(errors.New("unreachable"))

	fb := NewFallback([]string{"placeholder://a"}, 2, constant.FallbackInterval, testLog())
	s := newTestSubscriber(src, fb)
	out := make(chan Item, 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	start := time.Now()
	go s.Run(ctx, out)

	item := recv(t, out, constant.FallbackInterval)
	assert.True(t, IsFallbackID(item.ID))
	assert.Less(t, time.Since(start), constant.FallbackInterval)
	assert.True(t, s.FallbackActive())
}

func TestSubscriberFallbackOnEmptyFeedThenRealData(t *testing.T) {
	src := NewMemorySource()
	fb := NewFallback([]string{"placeholder://a"}, 1, time.Millisecond, testLog())
	s := newTestSubscriber(src, fb)
	out := make(chan Item, 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx, out)

	assert.True(t, IsFallbackID(recv(t, out, time.Second).ID))

	// Live additions still flow after fallback activation
	require.Eventually(t, func() bool {
		src.mu.Lock()
		defer src.mu.Unlock()
		return len(src.subs["party"]) == 1
	}, time.Second, 5*time.Millisecond)
	src.Publish("party", photo("real"))
	assert.Equal(t, "real", recv(t, out, time.Second).ID)
}

func TestSubscriberResubscribesAfterDrop(t *testing.T) {
	src := NewMemorySource()
	src.Publish("party", photo("p1"))

	s := newTestSubscriber(src, nil)
	out := make(chan Item, 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx, out)

	assert.Equal(t, "p1", recv(t, out, time.Second).ID)
	src.Disconnect("party", errors.New("connection reset"))

	// Snapshot is replayed on resubscribe; duplicates are the wall's concern
	assert.Equal(t, "p1", recv(t, out, time.Second).ID)
}

func TestSubscriberNoSource(t *testing.T) {
	fb := NewFallback([]string{"placeholder://a"}, 1, time.Millisecond, testLog())
	s := NewSubscriber(nil, "party", 10, fb, testLog())
	out := make(chan Item, 1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, out) }()

	assert.True(t, IsFallbackID(recv(t, out, time.Second).ID))
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWebsocketSource(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var req map[string]any
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		if req["type"] != "subscribe" || req["feed"] != "party" {
			conn.WriteJSON(map[string]any{"type": "error", "message": "bad request"})
			return
		}

		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"snapshot","items":[
			{"id":"p2","url":"https://x/p2.jpg","kind":"photo"},
			{"id":"bad"},
			{"id":"p1","url":"https://x/p1.jpg","kind":"photo"}]}`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"added","item":{"id":"p3","url":"https://x/p3.jpg","kind":"photo"}}`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"error","message":"feed deleted"}`))

		// Hold until the client goes away
		conn.ReadMessage()
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	src := NewWebsocketSource(url, testLog())

	sub, err := src.Subscribe(context.Background(), "party", 10)
	require.NoError(t, err)
	defer sub.Close()

	snap := sub.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, "p2", snap[0].ID)
	assert.False(t, snap[1].Eligible())
	assert.Equal(t, "p1", snap[2].ID)

	assert.Equal(t, "p3", recv(t, sub.Added(), time.Second).ID)

	_, ok := <-sub.Added()
	assert.False(t, ok)
	var subErr *SubscriptionError
	require.ErrorAs(t, sub.Err(), &subErr)
	assert.Contains(t, subErr.Error(), "feed deleted")
}

func TestWebsocketSourceRejected(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		var req map[string]any
		conn.ReadJSON(&req)
		conn.WriteJSON(map[string]any{"type": "error", "message": "unknown feed"})
	}))
	defer srv.Close()

	src := NewWebsocketSource("ws"+strings.TrimPrefix(srv.URL, "http"), testLog())
	_, err := src.Subscribe(context.Background(), "nope", 10)
	var subErr *SubscriptionError
	require.ErrorAs(t, err, &subErr)
	assert.Contains(t, err.Error(), "unknown feed")
}

func TestWebsocketSourceDialFailure(t *testing.T) {
	src := NewWebsocketSource("ws://127.0.0.1:1/none", testLog())
	_, err := src.Subscribe(context.Background(), "party", 10)
	var subErr *SubscriptionError
	require.ErrorAs(t, err, &subErr)
}

func TestDemoUploadsIntoMemorySource(t *testing.T) {
	src := NewMemorySource()
	sub, err := src.Subscribe(context.Background(), "demo", 10)
	require.NoError(t, err)
	defer sub.Close()

	demo := NewDemo(src, "demo", []string{"placeholder://a", "placeholder://b"}, 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go demo.Run(ctx)

	seen := make(map[string]struct{})
	kinds := make(map[Kind]int)
	for len(seen) < demoVideoEvery {
		item := recv(t, sub.Added(), time.Second)
		seen[item.ID] = struct{}{}
		kinds[item.Kind]++
		assert.Contains(t, []string{"placeholder://a", "placeholder://b"}, item.URL)
	}
	assert.Equal(t, demoVideoEvery-1, kinds[KindPhoto])
	assert.Equal(t, 1, kinds[KindVideo])
}

func TestDemoWithoutURLsReturns(t *testing.T) {
	demo := NewDemo(NewMemorySource(), "demo", nil, time.Millisecond)
	assert.NoError(t, demo.Run(context.Background()))
}
