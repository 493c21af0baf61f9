// Package config holds the viewer and tool settings. Defaults reproduce the
// stock scene; a JSON file and command-line flags override them in that
// order.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
)

var ErrInvalid = errors.New("config: invalid")

type Window struct {
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Title      string `json:"title"`
	VSync      bool   `json:"vsync"`
	Fullscreen bool   `json:"fullscreen"`
}

// Assets lists model paths relative to Root. Skybox is a directory holding
// the six cubemap faces.
type Assets struct {
	Root      string `json:"root"`
	Train     string `json:"train"`
	Terrain   string `json:"terrain"`
	Bucuresti string `json:"bucuresti"`
	Brasov    string `json:"brasov"`
	Skybox    string `json:"skybox"`
}

// Path resolves an asset path against Root. Absolute paths are returned as is.
func (a Assets) Path(rel string) string {
	if rel == "" || filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(a.Root, rel)
}

type Sim struct {
	TickRate      int     `json:"tick_rate"`
	MaxFrameTicks int     `json:"max_frame_ticks"`
	MinSpeed      float32 `json:"min_speed"`
	MaxSpeed      float32 `json:"max_speed"`
	SpeedStep     float32 `json:"speed_step"`
}

type Audio struct {
	Enabled bool    `json:"enabled"`
	Volume  float64 `json:"volume"`
}

// Telemetry.Addr empty disables the broadcast server.
type Telemetry struct {
	Addr string `json:"addr"`
}

type Config struct {
	Window    Window    `json:"window"`
	Assets    Assets    `json:"assets"`
	TrackFile string    `json:"track_file,omitempty"`
	Sim       Sim       `json:"sim"`
	Audio     Audio     `json:"audio"`
	Telemetry Telemetry `json:"telemetry"`
}

func Default() Config {
	return Config{
		Window: Window{
			Width:  1920,
			Height: 1080,
			Title:  "TrainSimulator",
			VSync:  true,
		},
		Assets: Assets{
			Root:      "Resources",
			Train:     "train/train.obj",
			Terrain:   "terrain/terrain.obj",
			Bucuresti: "stations/bucurestiMap/bucuresti.obj",
			Brasov:    "stations/brasovMap/brasov.obj",
			Skybox:    "textures",
		},
		Sim: Sim{
			TickRate:      60,
			MaxFrameTicks: 5,
			MinSpeed:      1.0,
			MaxSpeed:      5.5,
			SpeedStep:     0.5,
		},
		Audio: Audio{
			Enabled: true,
			Volume:  0.6,
		},
	}
}

// Load overlays the JSON file at path onto Default and validates the result.
// An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	}
	if c.Sim.TickRate <= 0 {
		return fmt.Errorf("%w: tick rate %d", ErrInvalid, c.Sim.TickRate)
	}
	if c.Sim.MaxFrameTicks <= 0 {
		return fmt.Errorf("%w: max frame ticks %d", ErrInvalid, c.Sim.MaxFrameTicks)
	}
	if c.Sim.MinSpeed <= 0 || c.Sim.MaxSpeed < c.Sim.MinSpeed {
		return fmt.Errorf("%w: speed range [%g, %g]", ErrInvalid, c.Sim.MinSpeed, c.Sim.MaxSpeed)
	}
	if c.Sim.SpeedStep <= 0 {
		return fmt.Errorf("%w: speed step %g", ErrInvalid, c.Sim.SpeedStep)
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		return fmt.Errorf("%w: volume %g", ErrInvalid, c.Audio.Volume)
	}
	return nil
}

// RegisterFlags binds the commonly overridden settings to fs. Values already
// in c become the flag defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.Window.Width, "width", c.Window.Width, "window width")
	fs.IntVar(&c.Window.Height, "height", c.Window.Height, "window height")
	fs.BoolVar(&c.Window.Fullscreen, "fullscreen", c.Window.Fullscreen, "fullscreen on the primary monitor")
	fs.StringVar(&c.Assets.Root, "assets", c.Assets.Root, "asset root directory")
	fs.StringVar(&c.TrackFile, "track", c.TrackFile, "track JSON file (default: built-in route)")
	fs.IntVar(&c.Sim.TickRate, "tick-rate", c.Sim.TickRate, "simulation ticks per second")
	fs.BoolVar(&c.Audio.Enabled, "audio", c.Audio.Enabled, "enable sound")
	fs.StringVar(&c.Telemetry.Addr, "telemetry", c.Telemetry.Addr, "serve snapshots on this address, e.g. :8089")
}

// Parse reads -config and the common flags from args. Values come from the
// defaults, then the config file, then any flag given explicitly. Commands
// may register their own flags on fs first.
func Parse(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Default()
	path := fs.String("config", "", "JSON config file")
	cfg.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if *path == "" {
		return cfg, cfg.Validate()
	}

	loaded, err := Load(*path)
	if err != nil {
		return loaded, err
	}
	overlay := flag.NewFlagSet(fs.Name(), flag.ContinueOnError)
	loaded.RegisterFlags(overlay)
	var setErr error
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "config" || setErr != nil || overlay.Lookup(f.Name) == nil {
			return
		}
		if err := overlay.Set(f.Name, f.Value.String()); err != nil {
			setErr = fmt.Errorf("flag -%s: %w", f.Name, err)
		}
	})
	if setErr != nil {
		return loaded, setErr
	}
	return loaded, loaded.Validate()
}
