package texture

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Stats are cumulative pipeline counters
type Stats struct {
	Hits     uint64
	Misses   uint64
	Failures uint64
}

// Pipeline fetches, normalizes and caches textures by URL.
// Entries are never evicted during a session and failures are never cached.
type Pipeline struct {
	fetcher    Fetcher
	normalizer Normalizer
	log        logrus.FieldLogger

	mu    sync.RWMutex
	cache map[string]*Texture
	group singleflight.Group

	hits     atomic.Uint64
	misses   atomic.Uint64
	failures atomic.Uint64
}

// NewPipeline creates a pipeline with an empty cache
func NewPipeline(fetcher Fetcher, normalizer Normalizer, log logrus.FieldLogger) *Pipeline {
	return &Pipeline{
		fetcher:    fetcher,
		normalizer: normalizer,
		log:        log,
		cache:      make(map[string]*Texture),
	}
}

// Acquire returns the texture for url, fetching and normalizing it on first use.
// Concurrent calls for the same url share a single fetch.
func (p *Pipeline) Acquire(ctx context.Context, url string) (*Texture, error) {
	if tex, ok := p.Cached(url); ok {
		p.hits.Add(1)
		return tex, nil
	}

	v, err, shared := p.group.Do(url, func() (any, error) {
		// Re-check under the flight; a previous flight may have just filled it
		if tex, ok := p.Cached(url); ok {
			return tex, nil
		}
		p.misses.Add(1)

		data, err := p.fetcher.Fetch(ctx, url)
		if err != nil {
			return nil, &AcquisitionError{URL: url, Stage: StageFetch, Err: err}
		}

		tex, err := p.normalizer.Normalize(url, data)
		if err != nil {
			var acqErr *AcquisitionError
			if errors.As(err, &acqErr) {
				return nil, err
			}
			return nil, &AcquisitionError{URL: url, Stage: StageDecode, Err: err}
		}

		p.mu.Lock()
		p.cache[url] = tex
		p.mu.Unlock()
		return tex, nil
	})
	if err != nil {
		p.failures.Add(1)
		p.log.WithError(err).WithField("url", url).Warn("texture acquisition failed")
		return nil, err
	}

	if shared {
		p.log.WithField("url", url).Debug("texture fetch shared")
	}
	return v.(*Texture), nil
}

// Cached returns a cached texture without fetching
func (p *Pipeline) Cached(url string) (*Texture, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	tex, ok := p.cache[url]
	return tex, ok
}

// Len returns the number of cached textures
func (p *Pipeline) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.cache)
}

// Stats returns a snapshot of the counters
func (p *Pipeline) Stats() Stats {
	return Stats{
		Hits:     p.hits.Load(),
		Misses:   p.misses.Load(),
		Failures: p.failures.Load(),
	}
}
