// Package metrics exposes wall activity as Prometheus metrics and serves a small
// HTTP control surface next to them.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lixenwraith/gravity-wall/texture"
)

// Collector implements engine.Observer on a private registry
type Collector struct {
	registry *prometheus.Registry

	feedItems      *prometheus.CounterVec
	skipped        prometheus.Counter
	acquisitions   *prometheus.CounterVec
	acquireLatency prometheus.Histogram
	bodiesLive     prometheus.Gauge
	scale          prometheus.Gauge
	frameDuration  prometheus.Histogram
}

// NewCollector creates a collector with all wall metrics registered
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = "gravitywall"
	}

	c := &Collector{registry: prometheus.NewRegistry()}

	c.feedItems = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_items_total",
			Help:      "Eligible feed items accepted for acquisition, by origin",
		},
		[]string{"origin"},
	)

	c.skipped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "feed_duplicates_total",
		Help:      "Feed items skipped because their id already has a body or a pending acquisition",
	})

	c.acquisitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "acquisitions_total",
			Help:      "Finished texture acquisitions by result",
		},
		[]string{"result"},
	)

	c.acquireLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "acquisition_seconds",
		Help:      "Time from feed item to decoded texture",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
	})

	c.bodiesLive = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "bodies_live",
		Help:      "Bodies currently in the world",
	})

	c.scale = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "scale",
		Help:      "Current global scale parameter (percent)",
	})

	c.frameDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "frame_seconds",
		Help:      "Time spent advancing and rendering one frame",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 10), // 0.5ms to ~250ms
	})

	c.registry.MustRegister(
		c.feedItems,
		c.skipped,
		c.acquisitions,
		c.acquireLatency,
		c.bodiesLive,
		c.scale,
		c.frameDuration,
	)
	return c
}

// Registry returns the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// WatchPipeline exports texture cache counters read at scrape time
func (c *Collector) WatchPipeline(namespace string, p *texture.Pipeline) {
	if namespace == "" {
		namespace = "gravitywall"
	}
	c.registry.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "texture",
			Name:      "cached",
			Help:      "Textures held in the session cache",
		}, func() float64 { return float64(p.Len()) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "texture",
			Name:      "cache_hits_total",
			Help:      "Acquisitions served from cache",
		}, func() float64 { return float64(p.Stats().Hits) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "texture",
			Name:      "fetches_total",
			Help:      "Acquisitions that went to the network",
		}, func() float64 { return float64(p.Stats().Misses) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "texture",
			Name:      "fetch_failures_total",
			Help:      "Acquisitions that failed to fetch or decode",
		}, func() float64 { return float64(p.Stats().Failures) }),
	)
}

func (c *Collector) ItemReceived(fallback bool) {
	origin := "feed"
	if fallback {
		origin = "fallback"
	}
	c.feedItems.WithLabelValues(origin).Inc()
}

func (c *Collector) ItemSkipped() {
	c.skipped.Inc()
}

func (c *Collector) AcquisitionFinished(ok bool, elapsed time.Duration) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	c.acquisitions.WithLabelValues(result).Inc()
	c.acquireLatency.Observe(elapsed.Seconds())
}

func (c *Collector) BodySpawned(live int) {
	c.bodiesLive.Set(float64(live))
}

func (c *Collector) ScaleChanged(scale float64) {
	c.scale.Set(scale)
}

func (c *Collector) FrameCompleted(elapsed time.Duration) {
	c.frameDuration.Observe(elapsed.Seconds())
}
