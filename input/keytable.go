package input

import (
	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/gravity-wall/constant"
	"github.com/lixenwraith/gravity-wall/engine"
)

// KeyTable maps keys to wall events
type KeyTable struct {
	// SpecialKeys binds non-rune keys (Esc, Ctrl+*, arrows)
	SpecialKeys map[tcell.Key]engine.Event
	// Runes binds printable keys
	Runes map[rune]engine.Event
}

// DefaultKeyTable returns the default key bindings
func DefaultKeyTable() *KeyTable {
	return &KeyTable{
		SpecialKeys: map[tcell.Key]engine.Event{
			tcell.KeyEscape: engine.QuitEvent{},
			tcell.KeyCtrlC:  engine.QuitEvent{},
			tcell.KeyCtrlQ:  engine.QuitEvent{},
			tcell.KeyUp:     engine.ScaleEvent{Delta: constant.ScaleStep},
			tcell.KeyRight:  engine.ScaleEvent{Delta: constant.ScaleStep},
			tcell.KeyDown:   engine.ScaleEvent{Delta: -constant.ScaleStep},
			tcell.KeyLeft:   engine.ScaleEvent{Delta: -constant.ScaleStep},
		},
		Runes: map[rune]engine.Event{
			'q': engine.QuitEvent{},
			'+': engine.ScaleEvent{Delta: constant.ScaleStep},
			'=': engine.ScaleEvent{Delta: constant.ScaleStep},
			'-': engine.ScaleEvent{Delta: -constant.ScaleStep},
			'_': engine.ScaleEvent{Delta: -constant.ScaleStep},
			'0': engine.ScaleEvent{Absolute: true, Value: constant.ScaleDefault},
		},
	}
}
