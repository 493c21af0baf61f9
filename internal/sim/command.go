package sim

import "fmt"

// Command is an operator input. The viewer maps keys to commands; the
// simulation only understands the train-related ones.
type Command int

const (
	Start Command = iota
	Stop
	SpeedUp
	SlowDown
	Reset
	Day
	Night
	CameraDriver
	CameraThirdPerson
	CameraFree
)

var commandNames = [...]string{
	Start:             "start",
	Stop:              "stop",
	SpeedUp:           "speed-up",
	SlowDown:          "slow-down",
	Reset:             "reset",
	Day:               "day",
	Night:             "night",
	CameraDriver:      "camera-driver",
	CameraThirdPerson: "camera-third-person",
	CameraFree:        "camera-free",
}

func (c Command) String() string {
	if c >= 0 && int(c) < len(commandNames) {
		return commandNames[c]
	}
	return fmt.Sprintf("Command(%d)", int(c))
}

// ParseCommand is the inverse of Command.String.
func ParseCommand(s string) (Command, error) {
	for i, name := range commandNames {
		if name == s {
			return Command(i), nil
		}
	}
	return 0, fmt.Errorf("sim: unknown command %q", s)
}

// Effect tells the caller what a command changed so it can react (audio,
// HUD, camera) without inspecting the simulation.
type Effect int

const (
	EffectNone Effect = iota
	EffectMotion
	EffectSpeed
	EffectReset
	// EffectExternal marks commands owned by the caller, such as camera and
	// environment switches.
	EffectExternal
)

// Outcome is the result of one Tick.
type Outcome int

const (
	Idle Outcome = iota
	Advanced
	Arrived
	OffTrack
)

func (o Outcome) String() string {
	switch o {
	case Idle:
		return "idle"
	case Advanced:
		return "advanced"
	case Arrived:
		return "arrived"
	case OffTrack:
		return "off-track"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}
