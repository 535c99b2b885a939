package constant

import "time"

// Spawn chime
const (
	ChimeSampleRate  = 44100
	ChimeBuffer      = 100 * time.Millisecond
	ChimeNoteLow     = 660.0
	ChimeNoteHigh    = 990.0
	ChimeNoteLength  = 60 * time.Millisecond
	ChimeMinInterval = 120 * time.Millisecond
)

// Chime envelope and level
const (
	ChimeAttack  = 5 * time.Millisecond
	ChimeRelease = 40 * time.Millisecond
	ChimeVolume  = 0.35
)
