package audio

import "train-simulator/internal/sim"

// Cue is a sound event derived from a change in train state.
type Cue int

const (
	CueDepart Cue = iota
	CueRumbleStart
	CueRumbleStop
	CueRumblePitch
	CueArrive
	CueBrake
)

var cueNames = [...]string{"depart", "rumble-start", "rumble-stop", "rumble-pitch", "arrive", "brake"}

func (c Cue) String() string {
	if int(c) < len(cueNames) {
		return cueNames[c]
	}
	return "unknown"
}

// Cues lists what to play for the transition from prev to next. Starting
// blows the horn before the rumble; arriving stops the rumble before the
// horn; leaving the corridor brakes.
func Cues(prev, next sim.Snapshot) []Cue {
	var out []Cue
	switch {
	case !prev.Moving && next.Moving:
		out = append(out, CueDepart, CueRumbleStart)
	case prev.Moving && !next.Moving:
		out = append(out, CueRumbleStop)
		switch {
		case next.Arrived && !prev.Arrived:
			out = append(out, CueArrive)
		case next.OffTrack && !prev.OffTrack:
			out = append(out, CueBrake)
		}
	case next.Moving && prev.Speed != next.Speed:
		out = append(out, CueRumblePitch)
	}
	return out
}
