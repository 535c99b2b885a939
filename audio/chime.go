// Package audio plays the optional spawn chime
package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/gravity-wall/constant"
)

const sampleRate = beep.SampleRate(constant.ChimeSampleRate)

// Player accepts streamers for playback
type Player interface {
	Play(s beep.Streamer)
}

// speakerPlayer feeds a mixer that is playing on the system speaker
type speakerPlayer struct {
	mixer *beep.Mixer
}

func (p *speakerPlayer) Play(s beep.Streamer) {
	speaker.Lock()
	p.mixer.Add(s)
	speaker.Unlock()
}

// Chime plays a short rising two-note sound when a photo lands on the wall.
// Chimes closer together than constant.ChimeMinInterval are coalesced.
type Chime struct {
	mu     sync.Mutex
	player Player
	last   time.Time
	now    func() time.Time
}

// NewChime initializes the speaker when enabled. Any init failure yields a silent chime.
func NewChime(enabled bool, log *logrus.Entry) *Chime {
	if !enabled {
		return &Chime{now: time.Now}
	}

	if err := speaker.Init(sampleRate, sampleRate.N(constant.ChimeBuffer)); err != nil {
		log.WithError(err).Warn("audio unavailable, continuing without sound")
		return &Chime{now: time.Now}
	}

	mixer := &beep.Mixer{}
	speaker.Play(mixer)
	return NewChimeWithPlayer(&speakerPlayer{mixer: mixer}, time.Now)
}

// NewChimeWithPlayer creates a chime on a custom player and clock
func NewChimeWithPlayer(player Player, now func() time.Time) *Chime {
	return &Chime{player: player, now: now}
}

// Enabled reports whether chimes reach a player
func (c *Chime) Enabled() bool {
	return c.player != nil
}

// Spawned implements engine.SpawnNotifier
func (c *Chime) Spawned() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.player == nil {
		return
	}
	now := c.now()
	if !c.last.IsZero() && now.Sub(c.last) < constant.ChimeMinInterval {
		return
	}
	c.last = now
	c.player.Play(chimeStreamer())
}

// Close stops playback
func (c *Chime) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if sp, ok := c.player.(*speakerPlayer); ok {
		speaker.Lock()
		sp.mixer.Clear()
		speaker.Unlock()
		speaker.Close()
	}
	c.player = nil
}

// chimeStreamer builds the low-then-high note sequence
func chimeStreamer() beep.Streamer {
	note := func(freq float64) beep.Streamer {
		return newEnvelope(newTone(freq, constant.ChimeNoteLength, sampleRate),
			constant.ChimeNoteLength, constant.ChimeAttack, constant.ChimeRelease, sampleRate)
	}
	return withVolume(beep.Seq(note(constant.ChimeNoteLow), note(constant.ChimeNoteHigh)), constant.ChimeVolume)
}
