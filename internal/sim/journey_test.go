package sim

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunDefaultJourney(t *testing.T) {
	t.Parallel()

	log, err := Run(JourneyInput{})
	require.NoError(t, err)

	assert.Equal(t, "bucuresti-brasov", log.Meta.Track)
	assert.Equal(t, DefaultTickRate, log.Meta.TickRate)
	assert.Equal(t, "arrived", log.Outcome)
	assert.GreaterOrEqual(t, log.Ticks, uint64(3700))
	assert.LessOrEqual(t, log.Ticks, uint64(4000))
	assert.InDelta(t, float64(log.Ticks)/60, log.Seconds, 1e-9)

	require.NotEmpty(t, log.Rows)
	first := log.Rows[0]
	assert.Zero(t, first.Tick)
	assert.InDelta(t, 400, first.X, 1e-6)
	last := log.Rows[len(log.Rows)-1]
	assert.Equal(t, log.Ticks, last.Tick)
	assert.Less(t, last.X, float32(-3079))
}

func TestRunSampling(t *testing.T) {
	t.Parallel()

	log, err := Run(JourneyInput{Speed: 5.5, SampleEvery: 100})
	require.NoError(t, err)
	for _, r := range log.Rows[1 : len(log.Rows)-1] {
		assert.Zero(t, r.Tick%100)
	}
	assert.Equal(t, "arrived", log.Outcome)
}

func TestRunIncomplete(t *testing.T) {
	t.Parallel()

	log, err := Run(JourneyInput{MaxTicks: 10})
	require.NoError(t, err)
	assert.Equal(t, "incomplete", log.Outcome)
	assert.EqualValues(t, 10, log.Ticks)
}

func TestRunJSON(t *testing.T) {
	t.Parallel()

	out, err := RunJSON(`{"speed": 2, "sample_every": 500}`)
	require.NoError(t, err)

	var log JourneyLog
	require.NoError(t, json.Unmarshal([]byte(out), &log))
	assert.Equal(t, "arrived", log.Outcome)
	assert.InDelta(t, 2, log.Meta.Speed, 1e-6)

	_, err = RunJSON("{not json")
	assert.ErrorContains(t, err, "invalid input JSON")

	_, err = RunJSON("")
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = RunJSON(`{"speed": -1}`)
	assert.Error(t, err)

	_, err = RunJSON(`{"track": {"name": "empty"}}`)
	assert.Error(t, err)
}
