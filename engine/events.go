package engine

// Event is an input to the wall loop. Events are produced by the terminal poller
// (via input.Translator) or by tests, and consumed only by the loop goroutine.
type Event interface {
	isEvent()
}

// PointerAction distinguishes pointer phases
type PointerAction int

const (
	PointerMove PointerAction = iota
	PointerDown
	PointerUp
)

func (a PointerAction) String() string {
	switch a {
	case PointerMove:
		return "move"
	case PointerDown:
		return "down"
	case PointerUp:
		return "up"
	default:
		return "unknown"
	}
}

// PointerEvent carries a pointer phase at a terminal cell
type PointerEvent struct {
	Action PointerAction
	Col    int
	Row    int
}

// ResizeEvent reports the new terminal size in cells, status row included
type ResizeEvent struct {
	Cols int
	Rows int
}

// ScaleEvent changes the global scale parameter.
// Absolute events set Value; relative events add Delta to the current scale.
type ScaleEvent struct {
	Absolute bool
	Value    float64
	Delta    float64
}

// QuitEvent stops the loop
type QuitEvent struct{}

func (PointerEvent) isEvent() {}
func (ResizeEvent) isEvent() {}
func (ScaleEvent) isEvent() {}
func (QuitEvent) isEvent() {}
