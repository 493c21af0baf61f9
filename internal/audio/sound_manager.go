// Package audio plays the engine rumble, the horn and the ambient loops.
package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"train-simulator/internal/sim"
)

const (
	sampleRate   = beep.SampleRate(44100)
	hornDuration = 900 * time.Millisecond
)

// SoundManager owns the speaker and the long-running streams.
type SoundManager struct {
	mu          sync.Mutex
	volume      float64
	mixer       *beep.Mixer
	rumble      *RumbleGenerator
	rumbleCtrl  *beep.Ctrl
	ambientCtrl *beep.Ctrl
	night       bool
	initialized bool
}

func NewSoundManager(volume float64) *SoundManager {
	return &SoundManager{
		volume: volume,
		mixer:  &beep.Mixer{},
	}
}

// Initialize opens the speaker and starts the silent mixer.
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(withVolume(sm.mixer, sm.volume))
	sm.initialized = true
	return nil
}

// Cleanup pauses every stream and empties the mixer.
func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	speaker.Lock()
	for _, c := range []*beep.Ctrl{sm.rumbleCtrl, sm.ambientCtrl} {
		if c != nil {
			c.Paused = true
		}
	}
	sm.mixer.Clear()
	speaker.Unlock()

	sm.rumbleCtrl, sm.ambientCtrl, sm.rumble = nil, nil, nil
	sm.initialized = false
}

// SetMoving starts, retunes or pauses the rumble loop.
func (sm *SoundManager) SetMoving(moving bool, speed float32) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	if sm.rumbleCtrl == nil {
		sm.rumble = NewRumbleGenerator(sampleRate, speed)
		sm.rumbleCtrl = &beep.Ctrl{Streamer: sm.rumble, Paused: !moving}
		speaker.Lock()
		sm.mixer.Add(sm.rumbleCtrl)
		speaker.Unlock()
		return
	}
	speaker.Lock()
	sm.rumble.SetSpeed(speed)
	sm.rumbleCtrl.Paused = !moving
	speaker.Unlock()
}

// Horn plays one blast.
func (sm *SoundManager) Horn() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	speaker.Lock()
	sm.mixer.Add(beep.Take(sampleRate.N(hornDuration), NewHornGenerator(sampleRate, hornDuration)))
	speaker.Unlock()
}

// SetAmbient swaps between wind and crickets. Repeating the current choice
// is a no-op.
func (sm *SoundManager) SetAmbient(night bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized || (sm.ambientCtrl != nil && sm.night == night) {
		return
	}
	var s beep.Streamer = NewWindGenerator(sampleRate, time.Now().UnixNano())
	if night {
		s = NewCricketGenerator(sampleRate)
	}
	next := &beep.Ctrl{Streamer: s}

	speaker.Lock()
	if sm.ambientCtrl != nil {
		// A paused Ctrl keeps its slot in the mixer; drop its streamer so
		// the mixer removes it on the next pass.
		sm.ambientCtrl.Streamer = nil
	}
	sm.mixer.Add(next)
	speaker.Unlock()

	sm.ambientCtrl = next
	sm.night = night
}

// Play turns the cues for one transition into sound.
func (sm *SoundManager) Play(cues []Cue, next sim.Snapshot) {
	for _, c := range cues {
		switch c {
		case CueDepart, CueArrive:
			sm.Horn()
		case CueRumbleStart, CueRumblePitch:
			sm.SetMoving(true, next.Speed)
		case CueRumbleStop, CueBrake:
			sm.SetMoving(false, next.Speed)
		}
	}
}
