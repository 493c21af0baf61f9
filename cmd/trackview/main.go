// Command trackview draws the corridor as a top-down terminal map. It runs
// its own simulation, or with -connect follows a viewer's telemetry and
// forwards driving keys to it.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"train-simulator/internal/config"
	"train-simulator/internal/sim"
	"train-simulator/internal/telemetry"
	"train-simulator/internal/track"
)

const frameInterval = 16 * time.Millisecond

// driver is whatever the keys steer: the local simulation or a remote viewer.
type driver interface {
	Send(cmd sim.Command) error
	Snapshot() sim.Snapshot
	Advance(elapsed time.Duration)
	Source() string
}

type localDriver struct {
	sim   *sim.Simulation
	clock *sim.Clock
}

func (d *localDriver) Send(cmd sim.Command) error {
	d.sim.Apply(cmd)
	return nil
}

func (d *localDriver) Snapshot() sim.Snapshot { return d.sim.Snapshot() }
func (d *localDriver) Source() string         { return "local" }

func (d *localDriver) Advance(elapsed time.Duration) {
	for n := d.clock.Advance(elapsed); n > 0; n-- {
		d.sim.Tick()
	}
}

// remoteDriver keeps the latest snapshot received from a viewer.
type remoteDriver struct {
	client  *telemetry.Client
	updates chan sim.Snapshot
	last    sim.Snapshot
}

func (d *remoteDriver) Send(cmd sim.Command) error { return d.client.Send(cmd) }
func (d *remoteDriver) Snapshot() sim.Snapshot     { return d.last }
func (d *remoteDriver) Source() string             { return "remote" }

func (d *remoteDriver) Advance(time.Duration) {
	for {
		select {
		case sn := <-d.updates:
			d.last = sn
		default:
			return
		}
	}
}

// follow forwards snapshots, dropping the oldest when the view lags.
func (d *remoteDriver) follow(ctx context.Context, errc chan<- error) {
	errc <- d.client.Follow(ctx, func(sn sim.Snapshot) {
		select {
		case d.updates <- sn:
		default:
			select {
			case <-d.updates:
			default:
			}
			d.updates <- sn
		}
	})
}

// commandFor maps a key to a driving command.
func commandFor(ev *tcell.EventKey) (sim.Command, bool) {
	switch ev.Key() {
	case tcell.KeyEnter:
		return sim.Start, true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return sim.Stop, true
	case tcell.KeyRune:
		switch ev.Rune() {
		case '+', '=':
			return sim.SpeedUp, true
		case '-':
			return sim.SlowDown, true
		case 'r', 'R':
			return sim.Reset, true
		}
	}
	return 0, false
}

func isQuit(ev *tcell.EventKey) bool {
	return ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
		(ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q'))
}

func main() {
	err := run(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "trackview: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("trackview", flag.ContinueOnError)
	connect := fs.String("connect", "", "follow a viewer's telemetry, e.g. ws://localhost:8089/ws")
	cfg, err := config.Parse(fs, args)
	if err != nil {
		return err
	}

	trk := track.Default()
	if cfg.TrackFile != "" {
		if trk, err = track.Load(cfg.TrackFile); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		d       driver
		followc = make(chan error, 1)
	)
	if *connect != "" {
		client, err := telemetry.Dial(ctx, *connect)
		if err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		defer client.Close()
		rd := &remoteDriver{client: client, updates: make(chan sim.Snapshot, 1)}
		rd.last = sim.New(trk, sim.Options{}).Snapshot()
		go rd.follow(ctx, followc)
		d = rd
	} else {
		d = &localDriver{
			sim: sim.New(trk, sim.Options{
				MinSpeed:  cfg.Sim.MinSpeed,
				MaxSpeed:  cfg.Sim.MaxSpeed,
				SpeedStep: cfg.Sim.SpeedStep,
			}),
			clock: sim.NewClock(cfg.Sim.TickRate, cfg.Sim.MaxFrameTicks),
		}
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("screen: %w", err)
	}
	defer screen.Fini()

	return loop(screen, newRouteMap(trk), d, followc)
}

// loop redraws every frame and applies keys until quit or the remote
// connection ends.
func loop(screen tcell.Screen, m *routeMap, d driver, followc <-chan error) error {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	last := time.Now()
	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if isQuit(ev) {
					return nil
				}
				if cmd, ok := commandFor(ev); ok {
					if err := d.Send(cmd); err != nil {
						return fmt.Errorf("send %s: %w", cmd, err)
					}
				}
			case *tcell.EventResize:
				screen.Sync()
			}

		case err := <-followc:
			return err

		case now := <-ticker.C:
			d.Advance(now.Sub(last))
			last = now
			m.draw(screen, d.Snapshot(), d.Source())
		}
	}
}
