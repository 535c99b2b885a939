package engine

import (
	"time"

	"github.com/lixenwraith/gravity-wall/physics"
)

// Status is the per-frame summary drawn in the status row
type Status struct {
	Scale    float64
	Bodies   int
	Pending  int
	Held     bool
	Fallback bool
	FPS      float64
}

// Renderer draws the world and owns the cell <-> world projection
type Renderer interface {
	// Resize adapts to a new terminal size and returns the simulation viewport in world units
	Resize(cols, rows int) (width, height float64)
	// CellToWorld maps a terminal cell to the world point at its center
	CellToWorld(col, row int) (x, y float64)
	// SliderValueAt maps a cell on the scale slider to a scale value
	SliderValueAt(col, row int) (float64, bool)
	Render(world *physics.World, status Status)
}

// Observer receives wall activity for metrics
type Observer interface {
	ItemReceived(fallback bool)
	ItemSkipped()
	AcquisitionFinished(ok bool, elapsed time.Duration)
	BodySpawned(live int)
	ScaleChanged(scale float64)
	FrameCompleted(elapsed time.Duration)
}

// SpawnNotifier is told each time a body enters the world
type SpawnNotifier interface {
	Spawned()
}

type nopObserver struct{}

func (nopObserver) ItemReceived(bool) {}
func (nopObserver) ItemSkipped() {}
func (nopObserver) AcquisitionFinished(bool, time.Duration) {}
func (nopObserver) BodySpawned(int) {}
func (nopObserver) ScaleChanged(float64) {}
func (nopObserver) FrameCompleted(time.Duration) {}

type nopNotifier struct{}

func (nopNotifier) Spawned() {}
