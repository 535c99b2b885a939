package feed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/gravity-wall/constant"
)

// fallbackNamespace seeds the name-based UUIDs of synthetic items so ids are stable across runs
var fallbackNamespace = uuid.MustParse("6f1d3c2e-9a8b-4f7e-8d21-5c0a7e4b9f13")

// Fallback emits a paced sequence of placeholder items so the wall is never empty
type Fallback struct {
	placeholders []string
	count        int
	interval     time.Duration
	log          *logrus.Entry
}

// NewFallback creates a provider cycling through placeholders until count items were emitted
func NewFallback(placeholders []string, count int, interval time.Duration, log *logrus.Entry) *Fallback {
	return &Fallback{
		placeholders: placeholders,
		count:        count,
		interval:     interval,
		log:          log,
	}
}

// FallbackID derives the synthetic id of the i-th placeholder item
func FallbackID(i int, url string) string {
	name := fmt.Sprintf("%d|%s", i, url)
	return constant.FallbackIDPrefix + uuid.NewSHA1(fallbackNamespace, []byte(name)).String()
}

// IsFallbackID reports whether id belongs to the synthetic id space
func IsFallbackID(id string) bool {
	return strings.HasPrefix(id, constant.FallbackIDPrefix)
}

// Items returns the full synthetic sequence in emission order
func (f *Fallback) Items() []Item {
	if len(f.placeholders) == 0 {
		return nil
	}
	items := make([]Item, 0, f.count)
	for i := 0; i < f.count; i++ {
		url := f.placeholders[i%len(f.placeholders)]
		items = append(items, Item{
			ID:   FallbackID(i, url),
			URL:  url,
			Kind: KindPhoto,
		})
	}
	return items
}

// Run emits the first item immediately and the rest one per interval
func (f *Fallback) Run(ctx context.Context, out chan<- Item) error {
	items := f.Items()
	if len(items) == 0 {
		return nil
	}

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for i, item := range items {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
		item.CreatedAt = time.Now()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case out <- item:
		}
	}

	f.log.WithField("items", len(items)).Debug("fallback sequence complete")
	return nil
}
