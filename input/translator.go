// Package input translates tcell events into wall events
package input

import (
	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/gravity-wall/constant"
	"github.com/lixenwraith/gravity-wall/engine"
)

// Translator is the input state machine. It tracks the primary button so tcell's
// button-mask reports become discrete press, drag and release events.
// Not safe for concurrent use; the terminal poller owns it.
type Translator struct {
	keyTable *KeyTable
	pressed  bool
}

// NewTranslator creates a translator with the default key table
func NewTranslator() *Translator {
	return &Translator{keyTable: DefaultKeyTable()}
}

// Translate maps one tcell event; ok is false for events the wall ignores
func (t *Translator) Translate(ev tcell.Event) (engine.Event, bool) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		cols, rows := ev.Size()
		return engine.ResizeEvent{Cols: cols, Rows: rows}, true
	case *tcell.EventKey:
		return t.translateKey(ev)
	case *tcell.EventMouse:
		return t.translateMouse(ev)
	}
	return nil, false
}

func (t *Translator) translateKey(ev *tcell.EventKey) (engine.Event, bool) {
	if ev.Key() == tcell.KeyRune {
		out, ok := t.keyTable.Runes[ev.Rune()]
		return out, ok
	}
	out, ok := t.keyTable.SpecialKeys[ev.Key()]
	return out, ok
}

func (t *Translator) translateMouse(ev *tcell.EventMouse) (engine.Event, bool) {
	col, row := ev.Position()
	buttons := ev.Buttons()

	switch {
	case buttons&tcell.WheelUp != 0:
		return engine.ScaleEvent{Delta: constant.ScaleStep}, true
	case buttons&tcell.WheelDown != 0:
		return engine.ScaleEvent{Delta: -constant.ScaleStep}, true
	}

	down := buttons&tcell.Button1 != 0
	switch {
	case down && !t.pressed:
		t.pressed = true
		return engine.PointerEvent{Action: engine.PointerDown, Col: col, Row: row}, true
	case !down && t.pressed:
		t.pressed = false
		return engine.PointerEvent{Action: engine.PointerUp, Col: col, Row: row}, true
	default:
		return engine.PointerEvent{Action: engine.PointerMove, Col: col, Row: row}, true
	}
}
