package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"train-simulator/internal/sim"
)

func runJourney(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := run(args, strings.NewReader(stdin), &out, &errOut)
	return out.String(), err
}

func TestDefaultJourneyArrives(t *testing.T) {
	t.Parallel()
	out, err := runJourney(t, "", "-speed", "5.5", "-sample", "600")
	require.NoError(t, err)

	var log sim.JourneyLog
	require.NoError(t, json.Unmarshal([]byte(out), &log))
	assert.Equal(t, "arrived", log.Outcome)
	assert.Equal(t, "bucuresti-brasov", log.Meta.Track)
	assert.InDelta(t, 5.5, log.Meta.Speed, 1e-6)
	assert.Equal(t, 600, log.Meta.SampleEvery)
}

func TestJourneyFromStdin(t *testing.T) {
	t.Parallel()
	out, err := runJourney(t, `{"speed":2,"max_ticks":10}`, "-")
	require.NoError(t, err)

	var log sim.JourneyLog
	require.NoError(t, json.Unmarshal([]byte(out), &log))
	assert.Equal(t, "incomplete", log.Outcome)
	assert.Equal(t, uint64(10), log.Ticks)

	_, err = runJourney(t, "", "-")
	assert.ErrorIs(t, err, sim.ErrEmptyInput)
}

func TestJourneyFromFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "in.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"tick_rate":30}`), 0o644))

	out, err := runJourney(t, "", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"tick_rate":30`)

	_, err = runJourney(t, "", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestSchemaFlags(t *testing.T) {
	t.Parallel()
	out, err := runJourney(t, "", "-schema")
	require.NoError(t, err)
	assert.Contains(t, out, "Train Simulator Telemetry")

	out, err = runJourney(t, "", "-command-schema")
	require.NoError(t, err)
	assert.Contains(t, out, "Train Simulator Command")
}

func TestExportAndValidateTrack(t *testing.T) {
	t.Parallel()
	out, err := runJourney(t, "", "-export-track")
	require.NoError(t, err)
	assert.Contains(t, out, `"bucuresti-platform"`)

	path := filepath.Join(t.TempDir(), "route.json")
	require.NoError(t, os.WriteFile(path, []byte(out), 0o644))
	out, err = runJourney(t, "", "-track", path, "-validate")
	require.NoError(t, err)
	assert.Contains(t, out, "bucuresti-brasov")
}

func TestBadFlags(t *testing.T) {
	t.Parallel()
	_, err := runJourney(t, "", "-tick-rate", "0")
	assert.Error(t, err)

	_, err = runJourney(t, "", "-speed", "-1")
	assert.Error(t, err)
}
