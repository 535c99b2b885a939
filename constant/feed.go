package constant

import "time"

// Feed Subscriber
const (
	// FeedSnapshotLimit is the number of most recent items observed at subscription time
	FeedSnapshotLimit = 50

	// ResubscribeInitialInterval and ResubscribeMaxInterval bound the reconnect backoff
	ResubscribeInitialInterval = 500 * time.Millisecond
	ResubscribeMaxInterval     = 30 * time.Second

	// WebsocketPingInterval keeps idle feed connections alive
	WebsocketPingInterval = 25 * time.Second

	// WebsocketHandshakeTimeout bounds the initial dial
	WebsocketHandshakeTimeout = 10 * time.Second
)

// Fallback Provider
const (
	// FallbackInterval paces synthetic items
	FallbackInterval = 600 * time.Millisecond

	// FallbackCount is the number of synthetic items emitted per activation
	FallbackCount = 8

	// FallbackIDPrefix keeps synthetic ids out of the real id space
	FallbackIDPrefix = "fallback:"

	// DemoUploadInterval paces simulated guest uploads in demo mode
	DemoUploadInterval = 2 * time.Second
)

// Texture Acquisition
const (
	TextureWidth       = 160
	TextureHeight      = 120
	TextureQuality     = 85
	FetchTimeout       = 15 * time.Second
	FetchMaxBytes      = 25 << 20
	FetchRatePerSecond = 8.0
	FetchBurst         = 4

	// TextureMaxSourcePixels bounds the declared size of a source image before it is decoded
	TextureMaxSourcePixels = 40_000_000
)
