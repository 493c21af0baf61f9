package main

import (
	"train-simulator/core"
	"train-simulator/internal/sim"
	"train-simulator/scene"
)

type binding struct {
	keys []int
	cmd  sim.Command
}

var bindings = []binding{
	{[]int{core.KeyEnter, core.KeyKPEnter}, sim.Start},
	{[]int{core.KeyBackspace}, sim.Stop},
	{[]int{core.KeyEqual, core.KeyKPAdd}, sim.SpeedUp},
	{[]int{core.KeyMinus, core.KeyKPSubtract}, sim.SlowDown},
	{[]int{core.KeyR}, sim.Reset},
	{[]int{core.Key1}, sim.CameraDriver},
	{[]int{core.Key2}, sim.CameraThirdPerson},
	{[]int{core.Key3}, sim.CameraFree},
	{[]int{core.Key4}, sim.Day},
	{[]int{core.Key5}, sim.Night},
}

// keyEdges remembers last frame's key state so each press fires once.
// A group of keys sharing one action is tracked under its first key.
type keyEdges map[int]bool

func (k keyEdges) pressed(w *core.Window, keys ...int) bool {
	down := false
	for _, key := range keys {
		if w.IsKeyPressed(key) {
			down = true
			break
		}
	}
	was := k[keys[0]]
	k[keys[0]] = down
	return down && !was
}

// pollCommands appends a command for every binding pressed this frame.
func pollCommands(w *core.Window, edges keyEdges, out []sim.Command) []sim.Command {
	for _, b := range bindings {
		if edges.pressed(w, b.keys...) {
			out = append(out, b.cmd)
		}
	}
	return out
}

const boostFactor float32 = 10

// freeCamera flies the camera with WASD, SPACE and CTRL and looks around
// while the right mouse button is held.
type freeCamera struct {
	firstMouse   bool
	lastX, lastY float64
}

func newFreeCamera() *freeCamera {
	return &freeCamera{firstMouse: true}
}

func (fc *freeCamera) Update(w *core.Window, cam *scene.Camera, dt float32) {
	if w.IsMouseButtonPressed(core.MouseButtonRight) {
		x, y := w.GetCursorPos()
		if fc.firstMouse {
			fc.lastX, fc.lastY = x, y
			fc.firstMouse = false
		}
		cam.ProcessMouseMovement(float32(x-fc.lastX), float32(fc.lastY-y), true)
		fc.lastX, fc.lastY = x, y
	} else {
		fc.firstMouse = true
	}

	if w.IsKeyPressed(core.KeyLeftShift) || w.IsKeyPressed(core.KeyRightShift) {
		dt *= boostFactor
	}
	moves := []struct {
		key int
		dir scene.Movement
	}{
		{core.KeyW, scene.Forward},
		{core.KeyS, scene.Backward},
		{core.KeyA, scene.Left},
		{core.KeyD, scene.Right},
		{core.KeySpace, scene.Up},
		{core.KeyLeftControl, scene.Down},
		{core.KeyRightControl, scene.Down},
	}
	for _, m := range moves {
		if w.IsKeyPressed(m.key) {
			cam.ProcessKeyboard(m.dir, dt)
		}
	}
}
