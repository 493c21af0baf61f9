package main

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"train-simulator/internal/sim"
	"train-simulator/internal/track"
)

func TestRouteMapTracesCorridor(t *testing.T) {
	t.Parallel()
	m := newRouteMap(track.Default())

	require.Greater(t, len(m.points), 1000)
	first := m.points[0]
	assert.InDelta(t, 400, first.x, 1e-6)
	assert.InDelta(t, 100, first.z, 1e-6)
	assert.Equal(t, -1, first.segment)

	assert.InDelta(t, 400, m.maxX, 1e-3)
	assert.Less(t, m.minX, float32(-3000))
	assert.LessOrEqual(t, m.minZ, m.maxZ)

	prev := 0
	for _, p := range m.points[1:] {
		assert.GreaterOrEqual(t, p.segment, prev)
		prev = p.segment
	}
}

func TestProject(t *testing.T) {
	t.Parallel()
	m := &routeMap{minX: -100, maxX: 100, minZ: 0, maxZ: 50}

	col, row := m.project(-100, 0, 81, 11)
	assert.Equal(t, 0, col)
	assert.Equal(t, 0, row)

	col, row = m.project(100, 50, 81, 11)
	assert.Equal(t, 80, col)
	assert.Equal(t, 10, row)

	col, row = m.project(0, 25, 81, 11)
	assert.Equal(t, 40, col)
	assert.Equal(t, 5, row)

	col, row = m.project(1e6, -1e6, 81, 11)
	assert.Equal(t, 80, col)
	assert.Equal(t, 0, row)

	flat := &routeMap{minX: 5, maxX: 5, minZ: 5, maxZ: 5}
	col, row = flat.project(5, 5, 40, 10)
	assert.Equal(t, 20, col)
	assert.Equal(t, 5, row)
}

func rowText(s tcell.Screen, y, w int) string {
	var b strings.Builder
	for x := 0; x < w; x++ {
		r, _, _, _ := s.GetContent(x, y)
		b.WriteRune(r)
	}
	return b.String()
}

func TestDrawPlacesTrainAndStatus(t *testing.T) {
	t.Parallel()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	defer screen.Fini()
	screen.SetSize(100, 30)

	trk := track.Default()
	m := newRouteMap(trk)
	sn := sim.New(trk, sim.Options{}).Snapshot()
	m.draw(screen, sn, "local")

	col, row := m.project(sn.X, sn.Z, 100, 30-statusRows)
	r, _, _, _ := screen.GetContent(col, row)
	assert.Equal(t, '@', r)

	status := rowText(screen, 28, 100)
	assert.Contains(t, status, "bucuresti-brasov")
	assert.Contains(t, status, "[local]")
	assert.Contains(t, status, "STOPPED")
	assert.Contains(t, rowText(screen, 29, 100), "ENTER start")
}

func TestTrainStyle(t *testing.T) {
	t.Parallel()
	fg := func(sn sim.Snapshot) tcell.Color {
		c, _, _ := trainStyle(sn).Decompose()
		return c
	}
	assert.Equal(t, tcell.ColorYellow, fg(sim.Snapshot{}))
	assert.Equal(t, tcell.ColorLime, fg(sim.Snapshot{Moving: true}))
	assert.Equal(t, tcell.ColorAqua, fg(sim.Snapshot{Arrived: true}))
	assert.Equal(t, tcell.ColorRed, fg(sim.Snapshot{OffTrack: true}))
}

func TestLocalDriver(t *testing.T) {
	t.Parallel()
	d := &localDriver{
		sim:   sim.New(track.Default(), sim.Options{}),
		clock: sim.NewClock(60, 5),
	}
	require.NoError(t, d.Send(sim.Start))
	d.Advance(d.clock.Step() * 3)
	sn := d.Snapshot()
	assert.True(t, sn.Moving)
	assert.Equal(t, uint64(3), sn.Tick)
	assert.Equal(t, "local", d.Source())
}

func TestRemoteDriverKeepsLatest(t *testing.T) {
	t.Parallel()
	d := &remoteDriver{updates: make(chan sim.Snapshot, 1)}
	d.updates <- sim.Snapshot{Tick: 7}
	d.Advance(0)
	assert.Equal(t, uint64(7), d.Snapshot().Tick)

	d.Advance(0)
	assert.Equal(t, uint64(7), d.Snapshot().Tick)
}
