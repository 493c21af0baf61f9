package sim

import "train-simulator/internal/track"

// TrainState is the mutable train: pose plus whether it is under way.
type TrainState struct {
	Pose   track.Pose
	Moving bool
}

const (
	DefaultMinSpeed  float32 = 1.0
	DefaultMaxSpeed  float32 = 5.5
	DefaultSpeedStep float32 = 0.5
)

// SpeedFactor is the multiplier applied to every per-tick delta. It moves in
// Step increments and never leaves [Min, Max].
type SpeedFactor struct {
	Value float32
	Min   float32
	Max   float32
	Step  float32
}

func DefaultSpeed() SpeedFactor {
	return SpeedFactor{
		Value: DefaultMinSpeed,
		Min:   DefaultMinSpeed,
		Max:   DefaultMaxSpeed,
		Step:  DefaultSpeedStep,
	}
}

// Up raises the value by one step if that stays within Max.
func (s *SpeedFactor) Up() bool {
	if s.Value+s.Step <= s.Max {
		s.Value += s.Step
		return true
	}
	return false
}

// Down lowers the value by one step if that stays within Min.
func (s *SpeedFactor) Down() bool {
	if s.Value-s.Step >= s.Min {
		s.Value -= s.Step
		return true
	}
	return false
}
