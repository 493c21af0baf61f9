package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"time"

	"train-simulator/core"
	"train-simulator/internal/audio"
	"train-simulator/internal/config"
	"train-simulator/internal/environment"
	"train-simulator/internal/sim"
	"train-simulator/internal/telemetry"
	"train-simulator/internal/track"
	"train-simulator/internal/viewpoint"
	"train-simulator/renderer"
	"train-simulator/scene"
)

const exhaustParticles = 256

// viewer owns everything the frame loop mutates.
type viewer struct {
	sim      *sim.Simulation
	world    *scene.World
	cam      *scene.Camera
	rig      *viewpoint.Rig
	free     *freeCamera
	presets  [2]environment.Preset
	fader    *environment.Fader
	sound    *audio.SoundManager
	soundOn  bool
	hub      *telemetry.Hub
	exhaust  *scene.Emitter
	keys     keyEdges
	commands []sim.Command
}

var onOff = map[bool]string{true: "ON", false: "OFF"}

// apply routes one command to the simulation, or to the camera rig and
// environment when the simulation reports it as external.
func (v *viewer) apply(cmd sim.Command) {
	switch v.sim.Apply(cmd) {
	case sim.EffectMotion:
		sn := v.sim.Snapshot()
		fmt.Printf("[Train] %s -> %s\n", cmd, sn.State())
	case sim.EffectSpeed:
		fmt.Printf("[Train] speed %.1f\n", v.sim.Snapshot().Speed)
	case sim.EffectReset:
		fmt.Println("[Train] reset to Bucuresti")
	case sim.EffectExternal:
		v.applyExternal(cmd)
	}
}

func (v *viewer) applyExternal(cmd sim.Command) {
	if mode, ok := viewpoint.ModeFor(cmd); ok {
		if v.rig.SetMode(v.cam, mode) {
			fmt.Printf("[Camera] %s\n", mode)
		}
		return
	}
	kind := environment.Day
	if cmd == sim.Night {
		kind = environment.Night
	}
	if v.fader.Switch(v.presets[kind]) {
		fmt.Printf("[Env] %s\n", kind)
		if v.soundOn {
			v.sound.SetAmbient(kind == environment.Night)
		}
	}
}

// drainRemote applies commands sent by telemetry clients without blocking.
func (v *viewer) drainRemote() {
	if v.hub == nil {
		return
	}
	for {
		select {
		case cmd := <-v.hub.Commands():
			fmt.Printf("[Telemetry] remote %s\n", cmd)
			v.apply(cmd)
		default:
			return
		}
	}
}

func loadSky(p environment.Preset) *scene.Cubemap {
	cm, err := scene.LoadCubemap(p.Faces)
	if err != nil {
		fmt.Printf("[Assets] %s skybox: %v (using gradient)\n", p.Kind, err)
		return nil
	}
	return cm
}

// startTelemetry serves the hub on addr. It returns nil when the listener
// cannot be opened.
func startTelemetry(ctx context.Context, addr string) (*telemetry.Hub, <-chan error) {
	hub := telemetry.NewHub(telemetry.HubConfig{
		Logger: log.New(os.Stdout, "[Telemetry] ", 0),
	})
	ready := make(chan net.Addr, 1)
	errc := make(chan error, 1)
	go func() { errc <- telemetry.Serve(ctx, addr, hub, ready) }()

	select {
	case bound := <-ready:
		fmt.Printf("[Telemetry] serving ws://%s/ws\n", bound)
		return hub, errc
	case err := <-errc:
		fmt.Printf("[Telemetry] %v (continuing without it)\n", err)
		return nil, nil
	}
}

func main() {
	cfg, err := config.Parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		os.Exit(2)
	}
	if err := run(cfg); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	trk := track.Default()
	if cfg.TrackFile != "" {
		var err error
		if trk, err = track.Load(cfg.TrackFile); err != nil {
			return fmt.Errorf("failed to load track: %w", err)
		}
	}
	if err := trk.Validate(cfg.Sim.MinSpeed, cfg.Sim.MaxSpeed); err != nil {
		fmt.Printf("[Track] WARNING: %v\n", err)
	}
	fmt.Printf("[Track] %s: %d segments\n", trk.Name, len(trk.Segments))

	window, err := core.NewWindow(core.WindowConfig{
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Title:      cfg.Window.Title,
		Resizable:  true,
		VSync:      cfg.Window.VSync,
		Fullscreen: cfg.Window.Fullscreen,
	})
	if err != nil {
		return err
	}
	defer window.Destroy()

	renderEngine, err := renderer.NewRenderEngine(window)
	if err != nil {
		return err
	}
	defer renderEngine.Destroy()

	world, warnings := scene.LoadWorld(scene.WorldPaths{
		Train:     cfg.Assets.Path(cfg.Assets.Train),
		Terrain:   cfg.Assets.Path(cfg.Assets.Terrain),
		Bucuresti: cfg.Assets.Path(cfg.Assets.Bucuresti),
		Brasov:    cfg.Assets.Path(cfg.Assets.Brasov),
	})
	for _, w := range warnings {
		fmt.Printf("[Assets] %v (using placeholder)\n", w)
	}
	if err := renderEngine.UploadModels(world.Models()); err != nil {
		fmt.Printf("[Assets] texture upload: %v (continuing untextured)\n", err)
	}

	if err := renderEngine.EnableShadows(); err != nil {
		fmt.Printf("Shadow map init failed (continuing without shadows): %v\n", err)
	} else {
		shadows := renderEngine.ShadowSettings()
		fmt.Printf("Shadow mapping enabled (%s, %.2f units/texel)\n",
			shadows, shadows.TexelSize(2*scene.ShadowExtent))
	}

	presets := environment.Presets(cfg.Assets.Path(cfg.Assets.Skybox))
	if err := renderEngine.EnableSkybox(loadSky(presets[environment.Day]), loadSky(presets[environment.Night])); err != nil {
		fmt.Printf("Skybox init failed (continuing without it): %v\n", err)
	} else {
		fmt.Println("Skybox enabled (cubemap, gradient fallback)")
	}

	v := &viewer{
		sim: sim.New(trk, sim.Options{
			MinSpeed:  cfg.Sim.MinSpeed,
			MaxSpeed:  cfg.Sim.MaxSpeed,
			SpeedStep: cfg.Sim.SpeedStep,
		}),
		world:   world,
		cam:     scene.NewCamera(viewpoint.FreeStart),
		rig:     viewpoint.NewRig(),
		free:    newFreeCamera(),
		presets: presets,
		fader:   environment.NewFader(presets[environment.Day], environment.DefaultFade),
		sound:   audio.NewSoundManager(cfg.Audio.Volume),
		exhaust: scene.NewExhaustEmitter(exhaustParticles, time.Now().UnixNano()),
		keys:    keyEdges{},
	}
	renderEngine.SetEnvironment(v.fader.Target(), v.fader.Current())

	if cfg.Audio.Enabled {
		if err := v.sound.Initialize(); err != nil {
			fmt.Printf("Audio init failed (continuing without sound): %v\n", err)
		} else {
			v.soundOn = true
			v.sound.SetAmbient(false)
		}
	}
	defer v.sound.Cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	var serveErr <-chan error
	if cfg.Telemetry.Addr != "" {
		v.hub, serveErr = startTelemetry(ctx, cfg.Telemetry.Addr)
	}
	defer func() {
		cancel()
		if serveErr == nil {
			return
		}
		select {
		case err := <-serveErr:
			if err != nil {
				fmt.Printf("[Telemetry] %v\n", err)
			}
		case <-time.After(3 * time.Second):
		}
	}()

	window.SetScrollCallback(func(_, yoff float64) {
		if v.rig.Mode() == viewpoint.Free {
			v.cam.ProcessMouseScroll(float32(yoff))
		}
	})

	printControls()
	fmt.Printf("Audio: %s | Telemetry: %s\n", onOff[v.soundOn], onOff[v.hub != nil])

	clock := sim.NewClock(cfg.Sim.TickRate, cfg.Sim.MaxFrameTicks)
	prev := v.sim.Snapshot()
	fbW, fbH := window.GetFramebufferSize()

	lastTime := window.Time()
	lastTitle := lastTime
	frameCount := 0
	titleFrames := 0
	fps := 0

	for !window.ShouldClose() {
		now := window.Time()
		elapsed := time.Duration((now - lastTime) * float64(time.Second))
		lastTime = now
		dt := float32(elapsed.Seconds())

		window.PollEvents()

		if window.IsKeyPressed(core.KeyEscape) {
			window.SetShouldClose(true)
			continue
		}
		if v.keys.pressed(window, core.KeyF1) {
			printControls()
		}
		if v.keys.pressed(window, core.KeyH) && v.soundOn {
			v.sound.Horn()
		}
		if v.keys.pressed(window, core.KeyP) {
			p := v.cam.Position
			fmt.Printf("[Camera] position (%.1f, %.1f, %.1f) yaw %.1f pitch %.1f\n",
				p.X(), p.Y(), p.Z(), v.cam.Yaw, v.cam.Pitch)
		}

		v.commands = pollCommands(window, v.keys, v.commands[:0])
		for _, cmd := range v.commands {
			v.apply(cmd)
		}
		v.drainRemote()

		for n := clock.Advance(elapsed); n > 0; n-- {
			switch v.sim.Tick() {
			case sim.Arrived:
				sn := v.sim.Snapshot()
				fmt.Printf("[Train] arrived at Brasov after %d ticks (%.0f units)\n", sn.Tick, sn.Distance)
			case sim.OffTrack:
				sn := v.sim.Snapshot()
				fmt.Printf("[Train] WARNING: left the corridor at (%.1f, %.1f, %.1f), stopped\n", sn.X, sn.Y, sn.Z)
			}
		}

		next := v.sim.Snapshot()
		if v.soundOn {
			v.sound.Play(audio.Cues(prev, next), next)
		}
		prev = next

		pose := v.sim.Interpolated(clock.Alpha())
		v.world.PlaceTrain(pose)
		scene.AttachExhaust(v.exhaust, v.world.Train.Placement, next.Moving, next.Speed)
		v.exhaust.Update(dt)

		if v.rig.Mode() == viewpoint.Free {
			v.free.Update(window, v.cam, dt)
		} else {
			v.rig.Place(v.cam, pose, trk)
		}

		renderEngine.SetEnvironment(v.fader.Target(), v.fader.Update(dt))

		if w, h := window.GetFramebufferSize(); w != fbW || h != fbH {
			fbW, fbH = w, h
			renderEngine.Resize(w, h)
		}

		renderEngine.Render(renderer.Frame{
			View:        v.cam.ViewMatrix(),
			Projection:  v.cam.Projection(window.Aspect()),
			CameraPos:   v.cam.Position,
			LightPos:    v.world.LightPos,
			ShadowFocus: pose.Position(),
			Items:       v.world.Items(),
			Exhaust:     v.exhaust,
		})
		renderEngine.Present()

		if v.hub != nil {
			if err := v.hub.Publish(next); err != nil {
				fmt.Printf("[Telemetry] publish: %v\n", err)
			}
		}

		frameCount++
		titleFrames++
		if since := now - lastTitle; since >= 1 {
			fps = int(float64(titleFrames) / since)
			titleFrames = 0
			lastTitle = now
			window.SetTitle(windowTitle(fps, next, v.rig.Mode(), v.fader.Target()))
		}
		if frameCount%60 == 0 && dt > 0 {
			fmt.Println(frameLog(frameCount, 1/float64(dt), next, renderEngine.DrawStats()))
		}
	}

	fmt.Println("Shutting down")
	return nil
}
