package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"train-simulator/internal/sim"
	"train-simulator/internal/track"
)

const (
	traceSpeed  = 1
	traceBudget = track.MaxValidateTicks
	statusRows  = 2
)

var segmentColors = []tcell.Color{
	tcell.ColorTeal,
	tcell.ColorOlive,
	tcell.ColorNavy,
	tcell.ColorPurple,
	tcell.ColorMaroon,
	tcell.ColorGreen,
	tcell.ColorGray,
}

type routePoint struct {
	x, z    float32
	segment int
}

// routeMap is a top-down XZ trace of the corridor scaled to the terminal.
type routeMap struct {
	name                   string
	points                 []routePoint
	minX, maxX, minZ, maxZ float32
}

// newRouteMap follows the corridor from the start at the slowest speed and
// keeps every pose it passes through.
func newRouteMap(t *track.Track) *routeMap {
	m := &routeMap{name: t.Name}
	f := track.NewFollower(t)
	pose := t.Start
	m.points = append(m.points, routePoint{x: pose.X, z: pose.Z, segment: -1})
	for i := 0; i < traceBudget; i++ {
		next, step := f.Step(pose, traceSpeed)
		if step.Result != track.Advanced {
			break
		}
		pose = next
		m.points = append(m.points, routePoint{x: pose.X, z: pose.Z, segment: step.Index})
	}

	m.minX, m.maxX = pose.X, pose.X
	m.minZ, m.maxZ = pose.Z, pose.Z
	for _, p := range m.points {
		m.minX = min(m.minX, p.x)
		m.maxX = max(m.maxX, p.x)
		m.minZ = min(m.minZ, p.z)
		m.maxZ = max(m.maxZ, p.z)
	}
	return m
}

// project maps world XZ to a cell in a w×h area. Degenerate spans collapse
// to the middle of the area.
func (m *routeMap) project(x, z float32, w, h int) (col, row int) {
	scale := func(v, lo, hi float32, n int) int {
		if n <= 1 || hi-lo < 1e-6 {
			return n / 2
		}
		c := int((v - lo) / (hi - lo) * float32(n-1))
		return max(0, min(n-1, c))
	}
	return scale(x, m.minX, m.maxX, w), scale(z, m.minZ, m.maxZ, h)
}

func trainStyle(sn sim.Snapshot) tcell.Style {
	color := tcell.ColorYellow
	switch {
	case sn.OffTrack:
		color = tcell.ColorRed
	case sn.Arrived:
		color = tcell.ColorAqua
	case sn.Moving:
		color = tcell.ColorLime
	}
	return tcell.StyleDefault.Foreground(color).Bold(true)
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}

// draw renders the route, both stations, the train and the status lines.
func (m *routeMap) draw(s tcell.Screen, sn sim.Snapshot, source string) {
	s.Clear()
	w, h := s.Size()
	mapH := h - statusRows
	if w <= 0 || mapH <= 0 {
		s.Show()
		return
	}

	for _, p := range m.points {
		col, row := m.project(p.x, p.z, w, mapH)
		color := tcell.ColorGray
		if p.segment >= 0 {
			color = segmentColors[p.segment%len(segmentColors)]
		}
		s.SetContent(col, row, '·', nil, tcell.StyleDefault.Foreground(color))
	}

	station := tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	first, last := m.points[0], m.points[len(m.points)-1]
	col, row := m.project(first.x, first.z, w, mapH)
	s.SetContent(col, row, '◆', nil, station)
	col, row = m.project(last.x, last.z, w, mapH)
	s.SetContent(col, row, '■', nil, station)

	col, row = m.project(sn.X, sn.Z, w, mapH)
	s.SetContent(col, row, '@', nil, trainStyle(sn))

	seg := sn.Segment
	if seg == "" {
		seg = "-"
	}
	status := fmt.Sprintf(" %s [%s] %s | speed %.1f | %s | x %.0f z %.0f yaw %.1f | tick %d",
		m.name, source, sn.State(), sn.Speed, seg, sn.X, sn.Z, sn.Yaw, sn.Tick)
	drawText(s, 0, h-2, tcell.StyleDefault.Reverse(true), padRight(status, w))
	drawText(s, 0, h-1, tcell.StyleDefault.Foreground(tcell.ColorSilver),
		" ENTER start  BACKSPACE stop  +/- speed  r reset  q quit")
	s.Show()
}

func padRight(s string, w int) string {
	for len(s) < w {
		s += " "
	}
	return s
}
