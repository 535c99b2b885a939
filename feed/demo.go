package feed

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Demo simulates guests uploading into a MemorySource, one photo per interval.
// Every few uploads it also posts a video, which the subscriber must drop.
type Demo struct {
	source   *MemorySource
	feedID   string
	urls     []string
	interval time.Duration
	now      func() time.Time
}

// demoVideoEvery is the upload period of the ignored video items
const demoVideoEvery = 5

// NewDemo creates an uploader cycling through urls
func NewDemo(source *MemorySource, feedID string, urls []string, interval time.Duration) *Demo {
	return &Demo{
		source:   source,
		feedID:   feedID,
		urls:     urls,
		interval: interval,
		now:      time.Now,
	}
}

// Run uploads until ctx is cancelled
func (d *Demo) Run(ctx context.Context) error {
	if len(d.urls) == 0 {
		return nil
	}

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for n := 1; ; n++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			d.source.Publish(d.feedID, d.upload(n))
		}
	}
}

func (d *Demo) upload(n int) Item {
	kind := KindPhoto
	if n%demoVideoEvery == 0 {
		kind = KindVideo
	}
	return Item{
		ID:        uuid.NewString(),
		URL:       d.urls[n%len(d.urls)],
		Kind:      kind,
		CreatedAt: d.now(),
	}
}
