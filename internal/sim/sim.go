// Package sim owns the train state and advances it through a track one fixed
// tick at a time. It has no rendering, audio or input dependencies; callers
// read Snapshot values.
package sim

import (
	"math"

	"train-simulator/internal/track"
)

// Options configures the speed range. Zero fields take the defaults.
type Options struct {
	MinSpeed  float32
	MaxSpeed  float32
	SpeedStep float32
}

// Simulation holds all mutable state of a journey.
type Simulation struct {
	track    *track.Track
	follower *track.Follower

	state TrainState
	speed SpeedFactor
	prev  track.Pose

	ticks    uint64
	distance float64
	segment  string
	segIndex int
	arrived  bool
	offTrack bool
}

func New(t *track.Track, opts Options) *Simulation {
	speed := DefaultSpeed()
	if opts.MinSpeed > 0 {
		speed.Min = opts.MinSpeed
	}
	if opts.MaxSpeed > 0 {
		speed.Max = opts.MaxSpeed
	}
	if opts.SpeedStep > 0 {
		speed.Step = opts.SpeedStep
	}
	speed.Value = speed.Min

	s := &Simulation{
		track:    t,
		follower: track.NewFollower(t),
		speed:    speed,
	}
	s.Reset()
	return s
}

func (s *Simulation) State() TrainState  { return s.state }
func (s *Simulation) Speed() SpeedFactor { return s.speed }

// Reset puts the train back at the track start, stopped, with counters and
// arrival cleared. The speed setting is kept.
func (s *Simulation) Reset() {
	s.state = TrainState{Pose: s.track.Start}
	s.prev = s.track.Start
	s.ticks = 0
	s.distance = 0
	s.arrived = false
	s.offTrack = false
	s.segment = ""
	s.segIndex = -1
	if seg, idx, ok := s.follower.Locate(s.state.Pose); ok {
		s.segment = seg.Name
		s.segIndex = idx
	}
}

// Apply executes a command and reports what changed.
func (s *Simulation) Apply(cmd Command) Effect {
	switch cmd {
	case Start:
		if s.arrived || s.offTrack || s.state.Moving {
			return EffectNone
		}
		s.state.Moving = true
		return EffectMotion
	case Stop:
		if !s.state.Moving {
			return EffectNone
		}
		s.state.Moving = false
		return EffectMotion
	case SpeedUp:
		if s.speed.Up() {
			return EffectSpeed
		}
		return EffectNone
	case SlowDown:
		if s.speed.Down() {
			return EffectSpeed
		}
		return EffectNone
	case Reset:
		s.Reset()
		return EffectReset
	case Day, Night, CameraDriver, CameraThirdPerson, CameraFree:
		return EffectExternal
	}
	return EffectNone
}

// Tick advances one fixed step. A stopped train is Idle. Arrived and OffTrack
// leave the pose where it was and stop the train.
func (s *Simulation) Tick() Outcome {
	s.prev = s.state.Pose
	if !s.state.Moving {
		return Idle
	}
	s.ticks++

	next, step := s.follower.Step(s.state.Pose, s.speed.Value)
	switch step.Result {
	case track.Arrived:
		s.state.Moving = false
		s.arrived = true
		return Arrived
	case track.OffTrack:
		s.state.Moving = false
		s.offTrack = true
		return OffTrack
	}

	dx := float64(next.X - s.state.Pose.X)
	dz := float64(next.Z - s.state.Pose.Z)
	s.distance += math.Hypot(dx, dz)
	s.state.Pose = next
	s.segment = step.Segment
	s.segIndex = step.Index
	return Advanced
}

// Interpolated is the pose alpha of the way from the previous tick to the
// current one, for drawing between fixed steps.
func (s *Simulation) Interpolated(alpha float64) track.Pose {
	return s.prev.Lerp(s.state.Pose, float32(max(0, min(1, alpha))))
}

// Snapshot is a read-only copy of the simulation for renderers, audio and
// telemetry.
type Snapshot struct {
	Tick         uint64  `json:"tick"`
	X            float32 `json:"x"`
	Y            float32 `json:"y"`
	Z            float32 `json:"z"`
	Pitch        float32 `json:"pitch"`
	Yaw          float32 `json:"yaw"`
	Roll         float32 `json:"roll"`
	Speed        float32 `json:"speed"`
	Moving       bool    `json:"moving"`
	Segment      string  `json:"segment"`
	SegmentIndex int     `json:"segment_index"`
	Arrived      bool    `json:"arrived"`
	OffTrack     bool    `json:"off_track"`
	Distance     float64 `json:"distance"`
}

func (s *Simulation) Snapshot() Snapshot {
	p := s.state.Pose
	return Snapshot{
		Tick:         s.ticks,
		X:            p.X,
		Y:            p.Y,
		Z:            p.Z,
		Pitch:        p.Pitch,
		Yaw:          p.Yaw,
		Roll:         p.Roll,
		Speed:        s.speed.Value,
		Moving:       s.state.Moving,
		Segment:      s.segment,
		SegmentIndex: s.segIndex,
		Arrived:      s.arrived,
		OffTrack:     s.offTrack,
		Distance:     s.distance,
	}
}

// Pose rebuilds the train pose carried by a snapshot.
func (sn Snapshot) Pose() track.Pose {
	return track.Pose{X: sn.X, Y: sn.Y, Z: sn.Z, Pitch: sn.Pitch, Yaw: sn.Yaw, Roll: sn.Roll}
}

// State names the train's condition for status lines.
func (sn Snapshot) State() string {
	switch {
	case sn.Arrived:
		return "ARRIVED"
	case sn.OffTrack:
		return "OFF TRACK"
	case sn.Moving:
		return "RUNNING"
	}
	return "STOPPED"
}
