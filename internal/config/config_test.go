package config

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1920, cfg.Window.Width)
	assert.Equal(t, "TrainSimulator", cfg.Window.Title)
	assert.Equal(t, filepath.Join("Resources", "train", "train.obj"), cfg.Assets.Path(cfg.Assets.Train))
}

func TestValidateRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Window.Width = 0 }},
		{"zero tick rate", func(c *Config) { c.Sim.TickRate = 0 }},
		{"zero frame ticks", func(c *Config) { c.Sim.MaxFrameTicks = 0 }},
		{"inverted speed range", func(c *Config) { c.Sim.MinSpeed, c.Sim.MaxSpeed = 3, 2 }},
		{"zero min speed", func(c *Config) { c.Sim.MinSpeed = 0 }},
		{"zero step", func(c *Config) { c.Sim.SpeedStep = 0 }},
		{"loud", func(c *Config) { c.Audio.Volume = 2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "cfg.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"sim":{"max_speed":4},"telemetry":{"addr":":8089"}}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, cfg.Sim.MaxSpeed, 1e-6)
	assert.InDelta(t, 1.0, cfg.Sim.MinSpeed, 1e-6)
	assert.Equal(t, ":8089", cfg.Telemetry.Addr)
	assert.Equal(t, 60, cfg.Sim.TickRate)
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"window":`), 0o644))
	_, err = Load(bad)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.json")
	require.NoError(t, os.WriteFile(invalid, []byte(`{"sim":{"tick_rate":-1}}`), 0o644))
	_, err = Load(invalid)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestRegisterFlags(t *testing.T) {
	t.Parallel()
	cfg := Default()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg.RegisterFlags(fs)

	require.NoError(t, fs.Parse([]string{"-track", "route.json", "-audio=false", "-width", "800"}))
	assert.Equal(t, "route.json", cfg.TrackFile)
	assert.False(t, cfg.Audio.Enabled)
	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, 1080, cfg.Window.Height)
}

func TestAssetPath(t *testing.T) {
	t.Parallel()
	a := Assets{Root: "res"}
	assert.Equal(t, "", a.Path(""))
	abs := filepath.Join(string(filepath.Separator), "abs", "x.obj")
	assert.Equal(t, abs, a.Path(abs))
}

func TestParseLayersFileUnderFlags(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "cfg.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"window":{"width":1024},"telemetry":{"addr":":9000"}}`), 0o644))

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := Parse(fs, []string{"-config", path, "-telemetry", ":7000", "-audio=false"})
	require.NoError(t, err)
	assert.Equal(t, 1024, cfg.Window.Width)
	assert.Equal(t, ":7000", cfg.Telemetry.Addr)
	assert.False(t, cfg.Audio.Enabled)
	assert.Equal(t, 1080, cfg.Window.Height)
}

func TestParseKeepsCommandFlags(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "cfg.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"sim":{"tick_rate":30}}`), 0o644))

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	schema := fs.Bool("schema", false, "print schema")
	cfg, err := Parse(fs, []string{"-schema", "-config", path, "input.json"})
	require.NoError(t, err)
	assert.True(t, *schema)
	assert.Equal(t, 30, cfg.Sim.TickRate)
	assert.Equal(t, []string{"input.json"}, fs.Args())
}

func TestParseWithoutFile(t *testing.T) {
	t.Parallel()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := Parse(fs, []string{"-tick-rate", "120"})
	require.NoError(t, err)
	assert.Equal(t, 120, cfg.Sim.TickRate)

	fs = flag.NewFlagSet("test", flag.ContinueOnError)
	_, err = Parse(fs, []string{"-tick-rate", "0"})
	assert.ErrorIs(t, err, ErrInvalid)

	fs = flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	_, err = Parse(fs, []string{"-nope"})
	assert.Error(t, err)
}
