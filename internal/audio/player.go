// Package audio plays the hit effect on the local sound device.
package audio

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"
	"github.com/rs/zerolog/log"
)

const (
	fallbackRate = beep.SampleRate(44100)
	fallbackFreq = 880
	fallbackLen  = 50 * time.Millisecond
	bufferLen    = 100 * time.Millisecond
)

var ErrUnavailable = errors.New("audio device not initialized")

// Player implements game.Sound. The clip is decoded once into memory so
// every hit replays it without touching the source again.
type Player struct {
	mu          sync.Mutex
	clip        *beep.Buffer
	mixer       *beep.Mixer
	volume      float64 // in halvings, 0 is unchanged
	muted       bool
	initialized bool
}

// NewPlayer decodes a WAV clip. If the clip cannot be decoded the player
// falls back to a short sine beep.
func NewPlayer(wavData []byte) *Player {
	p := &Player{mixer: &beep.Mixer{}}

	clip, err := decodeWAV(wavData)
	if err != nil {
		log.Warn().Err(err).Str("component", "audio").Msg("hit clip unusable, using a tone")
		clip, err = toneClip()
		if err != nil {
			log.Error().Err(err).Str("component", "audio").Msg("building fallback tone")
		}
	}
	p.clip = clip
	return p
}

func decodeWAV(data []byte) (*beep.Buffer, error) {
	streamer, format, err := wav.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding wav: %w", err)
	}
	defer streamer.Close()

	buf := beep.NewBuffer(format)
	buf.Append(streamer)
	if err := streamer.Err(); err != nil {
		return nil, fmt.Errorf("reading wav: %w", err)
	}
	if buf.Len() == 0 {
		return nil, errors.New("empty wav clip")
	}
	return buf, nil
}

func toneClip() (*beep.Buffer, error) {
	sine, err := generators.SineTone(fallbackRate, fallbackFreq)
	if err != nil {
		return nil, err
	}
	buf := beep.NewBuffer(beep.Format{SampleRate: fallbackRate, NumChannels: 2, Precision: 2})
	buf.Append(beep.Take(fallbackRate.N(fallbackLen), sine))
	return buf, nil
}

// Initialize opens the sound device at the clip's sample rate.
func (p *Player) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}
	if p.clip == nil {
		return ErrUnavailable
	}

	rate := p.clip.Format().SampleRate
	if err := speaker.Init(rate, rate.N(bufferLen)); err != nil {
		return fmt.Errorf("initializing speaker: %w", err)
	}
	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

// SetMuted silences PlayHit without closing the device.
func (p *Player) SetMuted(muted bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.muted = muted
}

// SetVolume adjusts loudness in halvings: -1 is half as loud, 1 twice.
func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = v
}

// PlayHit queues the clip and returns immediately.
func (p *Player) PlayHit() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.muted {
		return nil
	}
	if !p.initialized {
		return ErrUnavailable
	}

	s := p.hitStreamer()
	speaker.Lock()
	p.mixer.Add(s)
	speaker.Unlock()
	return nil
}

func (p *Player) hitStreamer() beep.Streamer {
	return &effects.Volume{
		Streamer: p.clip.Streamer(0, p.clip.Len()),
		Base:     2,
		Volume:   p.volume,
		Silent:   false,
	}
}

// Close stops playback and releases the device.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	speaker.Clear()
	speaker.Close()
	p.initialized = false
}
