package constant

import "time"

// Wall Loop Timing
const (
	// FrameUpdateInterval is the physics+render frame interval (~60 FPS)
	FrameUpdateInterval = 16 * time.Millisecond

	// MaxFrameDelta caps wall-clock dt fed into the simulation after a stall
	MaxFrameDelta = 100 * time.Millisecond

	// PhysicsSubstep is the fixed integration step; Advance splits dt into substeps of at most this size
	PhysicsSubstep = time.Second / 120
)

// Channel capacities
const (
	// FeedBufferSize buffers feed notifications between subscriber and loop
	FeedBufferSize = 64

	// EventBufferSize buffers terminal events between poller and loop
	EventBufferSize = 256

	// ResultBufferSize buffers completed acquisitions waiting for the loop
	ResultBufferSize = 64
)
