package main

import (
	"fmt"

	"train-simulator/internal/environment"
	"train-simulator/internal/sim"
	"train-simulator/internal/viewpoint"
	"train-simulator/scene"
)

func printControls() {
	fmt.Println("===========================================")
	fmt.Println("  TrainSimulator - Bucuresti to Brasov")
	fmt.Println("===========================================")
	fmt.Println("")
	fmt.Println("TRAIN:")
	fmt.Println("  ENTER          - Start")
	fmt.Println("  BACKSPACE      - Stop")
	fmt.Println("  = / +          - Speed up")
	fmt.Println("  -              - Slow down")
	fmt.Println("  R              - Reset to Bucuresti")
	fmt.Println("  H              - Horn")
	fmt.Println("")
	fmt.Println("CAMERA:")
	fmt.Println("  1 / 2 / 3      - Driver / third person / free")
	fmt.Println("  W A S D        - Move (free camera)")
	fmt.Println("  SPACE / CTRL   - Up / down (free camera)")
	fmt.Println("  SHIFT          - Move faster")
	fmt.Println("  Right Mouse Drag - Look around")
	fmt.Println("  Scroll         - Zoom")
	fmt.Println("  P              - Print camera position")
	fmt.Println("")
	fmt.Println("ENVIRONMENT:")
	fmt.Println("  4 / 5          - Day / night")
	fmt.Println("")
	fmt.Println("F1: controls   EXIT: ESC")
	fmt.Println("===========================================")
	fmt.Println("")
}

func windowTitle(fps int, sn sim.Snapshot, mode viewpoint.Mode, env environment.Kind) string {
	seg := sn.Segment
	if seg == "" {
		seg = "-"
	}
	return fmt.Sprintf("TrainSimulator | FPS: %d | %s | speed %.1f | %s | %s camera | %s",
		fps, sn.State(), sn.Speed, seg, mode, env)
}

func frameLog(frame int, fps float64, sn sim.Snapshot, stats scene.DrawStats) string {
	return fmt.Sprintf("[Frame %d] FPS: %.1f | Train: (%.1f, %.1f, %.1f) yaw %.1f | %s | Objs: %d Tris: %d Culled: %d",
		frame, fps, sn.X, sn.Y, sn.Z, sn.Yaw, sn.State(), stats.Objects, stats.Triangles, stats.Culled)
}
