package track

import "train-simulator/internal/piecewise"

// Result classifies a single follower step.
type Result int

const (
	Advanced Result = iota
	Arrived
	OffTrack
)

func (r Result) String() string {
	switch r {
	case Advanced:
		return "advanced"
	case Arrived:
		return "arrived"
	case OffTrack:
		return "off-track"
	}
	return "unknown"
}

// Step describes what the follower did on one tick. Index is -1 and Segment
// empty when no segment matched.
type Step struct {
	Index   int
	Segment string
	Result  Result
}

// Follower advances a pose along a track's corridor table.
type Follower struct {
	track *Track
	table *piecewise.Table[Segment]
}

func NewFollower(t *Track) *Follower {
	return &Follower{track: t, table: t.Table()}
}

// Locate returns the segment that currently owns p, if any.
func (f *Follower) Locate(p Pose) (Segment, int, bool) {
	rule, idx, ok := f.table.Lookup(p.Point())
	return rule.Value, idx, ok
}

// Step moves p by one tick at the given speed. Speed is not clamped here.
//
// When no segment matches, the pose comes back unchanged and the result is
// Arrived inside the terminal region or OffTrack anywhere else.
func (f *Follower) Step(p Pose, speed float32) (Pose, Step) {
	seg, idx, ok := f.Locate(p)
	if !ok {
		res := OffTrack
		if f.track.InTerminal(p) {
			res = Arrived
		}
		return p, Step{Index: -1, Result: res}
	}

	dx, dz := seg.Delta(speed)
	p.X += dx
	p.Z += dz
	p.Y = seg.Height.Apply(p.Y)
	p.Yaw = seg.Yaw.Apply(p.Yaw)
	p.Roll = seg.Roll.Apply(p.Roll)

	return p, Step{Index: idx, Segment: seg.Name, Result: Advanced}
}
