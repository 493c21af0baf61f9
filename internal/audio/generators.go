package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// RumbleGenerator is the engine loop. Its base frequency follows the speed
// factor; change it only under speaker.Lock once playing.
type RumbleGenerator struct {
	sr    beep.SampleRate
	freq  float64
	phase float64
	wob   float64
}

const (
	rumbleBase    = 45.0
	rumblePerStep = 6.0
)

func NewRumbleGenerator(sr beep.SampleRate, speed float32) *RumbleGenerator {
	g := &RumbleGenerator{sr: sr}
	g.SetSpeed(speed)
	return g
}

// SetSpeed retunes the rumble for a speed factor.
func (g *RumbleGenerator) SetSpeed(speed float32) {
	g.freq = rumbleBase + rumblePerStep*float64(speed)
}

func (g *RumbleGenerator) Freq() float64 { return g.freq }

func (g *RumbleGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		// Wheel beat: a slow amplitude wobble at a tenth of the tone.
		g.phase += g.freq / float64(g.sr)
		g.wob += g.freq / 10 / float64(g.sr)
		g.phase -= math.Floor(g.phase)
		g.wob -= math.Floor(g.wob)

		tone := 0.6*math.Sin(2*math.Pi*g.phase) + 0.25*math.Sin(4*math.Pi*g.phase)
		beat := 0.7 + 0.3*math.Sin(2*math.Pi*g.wob)
		sample := 0.2 * tone * beat

		samples[i][0] = sample
		samples[i][1] = sample
	}
	return len(samples), true
}

func (g *RumbleGenerator) Err() error { return nil }

// HornGenerator is a two-tone air horn with a short attack and release.
// It ends after its duration.
type HornGenerator struct {
	sr       beep.SampleRate
	pos      int
	duration int
	attack   int
}

func NewHornGenerator(sr beep.SampleRate, d time.Duration) *HornGenerator {
	return &HornGenerator{sr: sr, duration: sr.N(d), attack: sr.N(40 * time.Millisecond)}
}

func (g *HornGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if g.pos >= g.duration {
			return i, i > 0
		}
		t := float64(g.pos) / float64(g.sr)

		env := 1.0
		if g.pos < g.attack {
			env = float64(g.pos) / float64(g.attack)
		}
		if rem := g.duration - g.pos; rem < g.attack {
			env = float64(rem) / float64(g.attack)
		}

		// A minor third, slightly detuned like a real horn.
		sample := 0.2*math.Sin(2*math.Pi*311*t) + 0.15*math.Sin(2*math.Pi*370*t) + 0.05*math.Sin(2*math.Pi*622.5*t)
		sample *= env

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *HornGenerator) Err() error { return nil }

// WindGenerator is low-passed noise for the daytime ambience.
type WindGenerator struct {
	sr    beep.SampleRate
	seed  int64
	last  float64
	gust  float64
	level float64
}

func NewWindGenerator(sr beep.SampleRate, seed int64) *WindGenerator {
	return &WindGenerator{sr: sr, seed: seed, level: 0.12}
}

func (g *WindGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		g.seed = (g.seed*1103515245 + 12345) & 0x7fffffff
		noise := float64(g.seed)/float64(0x7fffffff)*2 - 1
		g.last += 0.02 * (noise - g.last)

		g.gust += 0.15 / float64(g.sr)
		g.gust -= math.Floor(g.gust)
		swell := 0.6 + 0.4*math.Sin(2*math.Pi*g.gust)

		sample := g.level * swell * g.last * 4
		samples[i][0] = sample
		samples[i][1] = sample
	}
	return len(samples), true
}

func (g *WindGenerator) Err() error { return nil }

// CricketGenerator chirps in short bursts for the night ambience.
type CricketGenerator struct {
	sr     beep.SampleRate
	pos    int
	period int
	chirp  int
}

func NewCricketGenerator(sr beep.SampleRate) *CricketGenerator {
	return &CricketGenerator{
		sr:     sr,
		period: sr.N(900 * time.Millisecond),
		chirp:  sr.N(25 * time.Millisecond),
	}
}

func (g *CricketGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		in := g.pos % g.period
		sample := 0.0
		// Three pulses at the start of each period.
		if pulse := in / g.chirp; pulse < 6 && pulse%2 == 0 {
			t := float64(in) / float64(g.sr)
			env := math.Sin(math.Pi * float64(in%g.chirp) / float64(g.chirp))
			sample = 0.08 * env * math.Sin(2*math.Pi*4200*t)
		}
		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *CricketGenerator) Err() error { return nil }

// withVolume scales s by a linear gain; zero or less is silent.
func withVolume(s beep.Streamer, vol float64) *effects.Volume {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}
