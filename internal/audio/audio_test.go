package audio

import (
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"train-simulator/internal/sim"
	"train-simulator/internal/track"
)

func TestCues(t *testing.T) {
	t.Parallel()
	stopped := sim.Snapshot{Speed: 1}
	running := sim.Snapshot{Speed: 1, Moving: true}
	faster := sim.Snapshot{Speed: 1.5, Moving: true}

	tests := []struct {
		name       string
		prev, next sim.Snapshot
		want       []Cue
	}{
		{"start", stopped, running, []Cue{CueDepart, CueRumbleStart}},
		{"stop", running, stopped, []Cue{CueRumbleStop}},
		{"speed up", running, faster, []Cue{CueRumblePitch}},
		{"speed while stopped", stopped, sim.Snapshot{Speed: 2}, nil},
		{"steady", running, running, nil},
		{"arrive", running, sim.Snapshot{Speed: 1, Arrived: true}, []Cue{CueRumbleStop, CueArrive}},
		{"off track", running, sim.Snapshot{Speed: 1, OffTrack: true}, []Cue{CueRumbleStop, CueBrake}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Cues(tt.prev, tt.next))
		})
	}
}

func TestCuesFromJourney(t *testing.T) {
	t.Parallel()
	s := sim.New(track.Default(), sim.Options{})
	prev := s.Snapshot()

	var all []Cue
	s.Apply(sim.Start)
	for i := 0; i < 5000; i++ {
		s.Tick()
		next := s.Snapshot()
		all = append(all, Cues(prev, next)...)
		prev = next
		if !next.Moving {
			break
		}
	}
	assert.Equal(t, []Cue{CueDepart, CueRumbleStart, CueRumbleStop, CueArrive}, all)
}

func TestCueString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "rumble-pitch", CueRumblePitch.String())
	assert.Equal(t, "unknown", Cue(99).String())
}

func streamAll(t *testing.T, s beep.Streamer, n int) [][2]float64 {
	t.Helper()
	buf := make([][2]float64, n)
	got, _ := s.Stream(buf)
	require.NoError(t, s.Err())
	return buf[:got]
}

func assertInRange(t *testing.T, samples [][2]float64) {
	t.Helper()
	for i, s := range samples {
		if s[0] < -1 || s[0] > 1 || s[0] != s[1] {
			t.Fatalf("sample %d out of range or not mono: %v", i, s)
		}
	}
}

func TestLoopGeneratorsStayInRange(t *testing.T) {
	t.Parallel()
	sr := beep.SampleRate(44100)
	gens := map[string]beep.Streamer{
		"rumble":  NewRumbleGenerator(sr, 5.5),
		"wind":    NewWindGenerator(sr, 42),
		"cricket": NewCricketGenerator(sr),
	}
	for name, g := range gens {
		samples := streamAll(t, g, sr.N(time.Second))
		assert.Len(t, samples, sr.N(time.Second), name)
		assertInRange(t, samples)
	}
}

func TestRumbleFollowsSpeed(t *testing.T) {
	t.Parallel()
	g := NewRumbleGenerator(44100, 1)
	slow := g.Freq()
	g.SetSpeed(5.5)
	assert.Greater(t, g.Freq(), slow)
	assert.InDelta(t, rumbleBase+rumblePerStep*5.5, g.Freq(), 1e-9)
}

func TestHornEnds(t *testing.T) {
	t.Parallel()
	sr := beep.SampleRate(44100)
	h := NewHornGenerator(sr, 100*time.Millisecond)

	samples := streamAll(t, h, sr.N(time.Second))
	assert.Len(t, samples, sr.N(100*time.Millisecond))
	assertInRange(t, samples)
	assert.InDelta(t, 0, samples[0][0], 1e-9, "attack starts silent")

	n, ok := h.Stream(make([][2]float64, 16))
	assert.Zero(t, n)
	assert.False(t, ok)
}

func TestCricketIsSilentBetweenChirps(t *testing.T) {
	t.Parallel()
	sr := beep.SampleRate(44100)
	g := NewCricketGenerator(sr)
	samples := streamAll(t, g, g.period)

	quiet := samples[6*g.chirp:]
	for _, s := range quiet {
		require.Zero(t, s[0])
	}
}

func TestUninitializedManagerIsSilent(t *testing.T) {
	t.Parallel()
	sm := NewSoundManager(0.5)
	// None of these may touch the speaker before Initialize.
	sm.SetMoving(true, 2)
	sm.Horn()
	sm.SetAmbient(true)
	sm.Play([]Cue{CueDepart, CueRumbleStart}, sim.Snapshot{Speed: 1, Moving: true})
	sm.Cleanup()
	assert.Nil(t, sm.rumbleCtrl)
	assert.Nil(t, sm.ambientCtrl)
}

func TestWithVolume(t *testing.T) {
	t.Parallel()
	v := withVolume(NewCricketGenerator(44100), 0)
	assert.True(t, v.Silent)
	v = withVolume(NewCricketGenerator(44100), 0.5)
	assert.False(t, v.Silent)
	assert.InDelta(t, -1, v.Volume, 1e-9)
}
