package track

import (
	"encoding/json"
	"fmt"
	"os"
)

// MaxValidateTicks bounds the forward simulation Validate runs.
const MaxValidateTicks = 200000

// Load reads a track from a JSON file and validates its structure.
func Load(path string) (*Track, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read track: %w", err)
	}
	var t Track
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse track %s: %w", path, err)
	}
	if err := t.Check(); err != nil {
		return nil, fmt.Errorf("track %s: %w", path, err)
	}
	return &t, nil
}

// Save writes t as indented JSON.
func Save(path string, t *Track) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("encode track: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write track: %w", err)
	}
	return nil
}

// Check validates the static shape of the track: at least one segment,
// positive weights and positive correction steps.
func (t *Track) Check() error {
	if len(t.Segments) == 0 {
		return ErrNoSegments
	}
	for i, s := range t.Segments {
		if s.Weight <= 0 {
			return fmt.Errorf("segment %d (%s) weight: %w: %g", i, s.Name, ErrBadStep, s.Weight)
		}
		for _, c := range []*Correction{s.Height, s.Yaw, s.Roll} {
			if err := c.validate(); err != nil {
				return fmt.Errorf("segment %d (%s): %w", i, s.Name, err)
			}
		}
	}
	return nil
}

// Validate runs Check and then drives the corridor from Start at each of the
// given speeds. Every run must reach the terminal region without leaving the
// corridor and without ever returning to an earlier segment.
func (t *Track) Validate(speeds ...float32) error {
	if err := t.Check(); err != nil {
		return err
	}
	f := NewFollower(t)
	for _, speed := range speeds {
		if speed <= 0 {
			return fmt.Errorf("speed %g: %w", speed, ErrBadStep)
		}
		if _, err := f.Run(speed, MaxValidateTicks); err != nil {
			return fmt.Errorf("at speed %g: %w", speed, err)
		}
	}
	return nil
}

// Run drives the follower from the track start at a constant speed until it
// stops advancing, returning the number of ticks spent. The terminal tick
// counts.
func (f *Follower) Run(speed float32, budget int) (int, error) {
	pose := f.track.Start
	last := -1
	for tick := 1; tick <= budget; tick++ {
		next, step := f.Step(pose, speed)
		switch step.Result {
		case Arrived:
			return tick, nil
		case OffTrack:
			return tick, fmt.Errorf("%w at (%.2f, %.2f) after segment %d", ErrOffTrack, pose.X, pose.Z, last)
		}
		if step.Index < last {
			return tick, fmt.Errorf("%w: %d after %d", ErrRegressed, step.Index, last)
		}
		last = step.Index
		pose = next
	}
	return budget, ErrNoArrival
}
