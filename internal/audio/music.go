package audio

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/marquessv/sidecast/internal/domain/state"
)

// MusicPlayer is the transport-level music backend (MPD in production).
type MusicPlayer interface {
	Play() error
	Pause() error
	Next() error
	SetVolume(percent int) error
}

// MusicController drives state-aware ambient music: playing while browsing,
// paused during gameplay, and faded to silence whenever the referee awards
// audio focus elsewhere.
type MusicController struct {
	player MusicPlayer
	fader  *Fader
	fade   time.Duration

	mu       sync.Mutex
	gameplay bool
	playing  bool
	winner   Source
}

// NewMusicController wires the controller to the referee and starts
// following its verdicts.
func NewMusicController(player MusicPlayer, referee *Referee, fade time.Duration) *MusicController {
	c := &MusicController{player: player, fade: fade}
	c.fader = NewFader(&musicVolume{c: c})
	referee.Subscribe(c.onWinner)
	return c
}

// OnStateChange reacts to display state transitions. Called from the display
// controller's dispatch loop.
func (c *MusicController) OnStateChange(st state.AppState) {
	_, inGameplay := st.(state.GamePlaying)

	c.mu.Lock()
	changed := c.gameplay != inGameplay
	c.gameplay = inGameplay
	winner := c.winner
	c.mu.Unlock()

	if !changed {
		return
	}

	if inGameplay {
		c.fadeOutAndPause()
		return
	}
	// Back from gameplay; resume only if music still holds audio focus.
	if winner == SourceMusic {
		c.resume()
	}
}

// onWinner follows the referee's verdict.
func (c *MusicController) onWinner(src Source) {
	c.mu.Lock()
	c.winner = src
	gameplay := c.gameplay
	c.mu.Unlock()

	if gameplay {
		return
	}
	if src == SourceMusic {
		c.resume()
	} else {
		c.fadeOutAndPause()
	}
}

// Next skips to the next ambient track. Ignored while the backend is
// paused, so a queued-up skip cannot fire mid-gameplay.
func (c *MusicController) Next() {
	c.mu.Lock()
	playing := c.playing
	c.mu.Unlock()

	if !playing {
		return
	}
	if err := c.player.Next(); err != nil {
		log.Warn().Err(err).Msg("Music skip failed")
	}
}

// Close silences and pauses the backend.
func (c *MusicController) Close() {
	c.fadeOutAndPause()
}

func (c *MusicController) resume() {
	c.mu.Lock()
	wasPlaying := c.playing
	c.playing = true
	c.mu.Unlock()

	if !wasPlaying {
		if err := c.player.Play(); err != nil {
			log.Warn().Err(err).Msg("Music play failed")
			c.mu.Lock()
			c.playing = false
			c.mu.Unlock()
			return
		}
	}
	c.fader.FadeTo(1, c.fade, nil)
}

func (c *MusicController) fadeOutAndPause() {
	c.fader.FadeTo(0, c.fade, func() {
		c.mu.Lock()
		wasPlaying := c.playing
		c.playing = false
		c.mu.Unlock()

		if !wasPlaying {
			return
		}
		if err := c.player.Pause(); err != nil {
			log.Warn().Err(err).Msg("Music pause failed")
		}
	})
}

// musicVolume adapts the MPD volume scale to the fader's [0, 1] range.
type musicVolume struct {
	c *MusicController
}

func (m *musicVolume) SetVolume(v float64) {
	if err := m.c.player.SetVolume(int(v*100 + 0.5)); err != nil {
		log.Debug().Err(err).Msg("Music volume update failed")
	}
}

func (m *musicVolume) Playing() bool {
	m.c.mu.Lock()
	defer m.c.mu.Unlock()
	return m.c.playing
}
