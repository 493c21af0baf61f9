package sim

import (
	"encoding/json"
	"errors"
	"fmt"

	"train-simulator/internal/track"
)

// DefaultJourneyTicks caps a headless run when the input sets no limit.
const DefaultJourneyTicks = 100000

// JourneyMeta identifies a headless run.
type JourneyMeta struct {
	Track       string  `json:"track"`
	TickRate    int     `json:"tick_rate"`
	Speed       float32 `json:"speed"`
	SampleEvery int     `json:"sample_every"`
}

// JourneyInput is the JSON-serialisable input to Run. A nil Track means the
// compiled-in route.
type JourneyInput struct {
	Track       *track.Track `json:"track,omitempty"`
	TickRate    int          `json:"tick_rate,omitempty"`
	Speed       float32      `json:"speed,omitempty"`
	SampleEvery int          `json:"sample_every,omitempty"`
	MaxTicks    int          `json:"max_ticks,omitempty"`
}

// JourneyRow is the train state at one sampled tick.
type JourneyRow struct {
	Tick    uint64  `json:"tick"`
	X       float32 `json:"x"`
	Y       float32 `json:"y"`
	Z       float32 `json:"z"`
	Yaw     float32 `json:"yaw"`
	Segment string  `json:"segment"`
}

// JourneyLog is the complete output of a headless run.
type JourneyLog struct {
	Meta     JourneyMeta  `json:"journey_meta"`
	Rows     []JourneyRow `json:"output"`
	Outcome  string       `json:"outcome"`
	Ticks    uint64       `json:"ticks"`
	Seconds  float64      `json:"seconds"`
	Distance float64      `json:"distance"`
}

// Run drives a journey from the track start at a constant speed until the
// train arrives, leaves the corridor or hits MaxTicks.
func Run(in JourneyInput) (JourneyLog, error) {
	t := in.Track
	if t == nil {
		t = track.Default()
	}
	if err := t.Check(); err != nil {
		return JourneyLog{}, err
	}
	if in.TickRate <= 0 {
		in.TickRate = DefaultTickRate
	}
	if in.Speed == 0 {
		in.Speed = DefaultMinSpeed
	}
	if in.Speed < 0 {
		return JourneyLog{}, fmt.Errorf("speed %g: %w", in.Speed, track.ErrBadStep)
	}
	if in.SampleEvery <= 0 {
		in.SampleEvery = in.TickRate
	}
	if in.MaxTicks <= 0 {
		in.MaxTicks = DefaultJourneyTicks
	}

	s := New(t, Options{MinSpeed: in.Speed, MaxSpeed: in.Speed})
	s.Apply(Start)

	log := JourneyLog{
		Meta: JourneyMeta{
			Track:       t.Name,
			TickRate:    in.TickRate,
			Speed:       in.Speed,
			SampleEvery: in.SampleEvery,
		},
	}
	log.Rows = append(log.Rows, row(s.Snapshot()))

	outcome := Advanced
	for i := 0; i < in.MaxTicks && outcome == Advanced; i++ {
		outcome = s.Tick()
		snap := s.Snapshot()
		if outcome != Advanced || snap.Tick%uint64(in.SampleEvery) == 0 {
			log.Rows = append(log.Rows, row(snap))
		}
	}

	snap := s.Snapshot()
	log.Outcome = outcome.String()
	if outcome == Advanced {
		log.Outcome = "incomplete"
	}
	log.Ticks = snap.Tick
	log.Seconds = float64(snap.Tick) / float64(in.TickRate)
	log.Distance = snap.Distance
	return log, nil
}

func row(sn Snapshot) JourneyRow {
	return JourneyRow{Tick: sn.Tick, X: sn.X, Y: sn.Y, Z: sn.Z, Yaw: sn.Yaw, Segment: sn.Segment}
}

// ErrEmptyInput is returned by RunJSON for blank input.
var ErrEmptyInput = errors.New("sim: empty journey input")

// RunJSON decodes a JourneyInput, runs it and encodes the JourneyLog.
func RunJSON(jsonInput string) (string, error) {
	if jsonInput == "" {
		return "", ErrEmptyInput
	}
	var input JourneyInput
	if err := json.Unmarshal([]byte(jsonInput), &input); err != nil {
		return "", fmt.Errorf("invalid input JSON: %w", err)
	}

	log, err := Run(input)
	if err != nil {
		return "", err
	}

	out, err := json.Marshal(log)
	if err != nil {
		return "", fmt.Errorf("marshaling output: %w", err)
	}
	return string(out), nil
}
