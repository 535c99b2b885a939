// Package feed observes the external append-only photo feed and turns it into
// a stream of eligible items for the wall.
package feed

import (
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
)

// Kind is the media kind of a feed item
type Kind string

const (
	KindPhoto Kind = "photo"
	KindVideo Kind = "video"
)

// Item is one upload observed on the feed. Immutable once observed.
type Item struct {
	ID        string
	URL       string
	Kind      Kind
	CreatedAt time.Time
}

// Eligible reports whether the item may become a body on the wall
func (i Item) Eligible() bool {
	return i.Kind == KindPhoto && i.ID != "" && i.URL != ""
}

var ErrMalformedItem = errors.New("malformed feed item")

// ParseItem decodes one item from its JSON representation.
// Accepts "url" or "downloadUrl", "kind" or "type", and createdAt as RFC3339 or unix milliseconds.
func ParseItem(raw []byte) (Item, error) {
	if !gjson.ValidBytes(raw) {
		return Item{}, fmt.Errorf("%w: invalid json", ErrMalformedItem)
	}
	return itemFromResult(gjson.ParseBytes(raw))
}

func itemFromResult(r gjson.Result) (Item, error) {
	if !r.IsObject() {
		return Item{}, fmt.Errorf("%w: not an object", ErrMalformedItem)
	}

	item := Item{
		ID:  r.Get("id").String(),
		URL: r.Get("url").String(),
	}
	if item.URL == "" {
		item.URL = r.Get("downloadUrl").String()
	}

	kind := r.Get("kind")
	if !kind.Exists() {
		kind = r.Get("type")
	}
	item.Kind = Kind(kind.String())
	if item.Kind == "" {
		item.Kind = KindPhoto
	}

	created := r.Get("createdAt")
	switch created.Type {
	case gjson.Number:
		item.CreatedAt = time.UnixMilli(created.Int())
	case gjson.String:
		ts, err := time.Parse(time.RFC3339Nano, created.String())
		if err != nil {
			return Item{}, fmt.Errorf("%w: createdAt: %v", ErrMalformedItem, err)
		}
		item.CreatedAt = ts
	}

	if item.ID == "" {
		return Item{}, fmt.Errorf("%w: missing id", ErrMalformedItem)
	}
	return item, nil
}

// parseItems decodes a JSON array, skipping malformed entries
func parseItems(r gjson.Result) []Item {
	arr := r.Array()
	items := make([]Item, 0, len(arr))
	for _, entry := range arr {
		item, err := itemFromResult(entry)
		if err != nil {
			continue
		}
		items = append(items, item)
	}
	return items
}
