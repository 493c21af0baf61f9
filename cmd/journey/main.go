// Command journey runs the corridor headlessly and prints the sampled
// journey as JSON.
//
//	journey                      run the built-in route at minimum speed
//	journey -speed 3 -sample 30  choose speed and sampling interval
//	journey input.json           run a JourneyInput document ("-" reads stdin)
//	journey -schema              print the telemetry snapshot schema
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/invopop/jsonschema"

	"train-simulator/internal/config"
	"train-simulator/internal/sim"
	"train-simulator/internal/telemetry"
	"train-simulator/internal/track"
)

func main() {
	err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "journey: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("journey", flag.ContinueOnError)
	fs.SetOutput(stderr)
	speed := fs.Float64("speed", 0, "constant speed factor (default: minimum speed)")
	sample := fs.Int("sample", 0, "record every Nth tick (default: once per second)")
	maxTicks := fs.Int("max-ticks", 0, "stop after this many ticks")
	schema := fs.Bool("schema", false, "print the telemetry snapshot schema and exit")
	commandSchema := fs.Bool("command-schema", false, "print the telemetry command schema and exit")
	exportTrack := fs.Bool("export-track", false, "print the track as JSON and exit")
	validate := fs.Bool("validate", false, "check the track reaches Brasov at the configured speeds and exit")

	cfg, err := config.Parse(fs, args)
	if err != nil {
		return err
	}

	switch {
	case *schema:
		return printSchema(stdout, telemetry.Schema())
	case *commandSchema:
		return printSchema(stdout, telemetry.CommandSchema())
	}

	trk := track.Default()
	if cfg.TrackFile != "" {
		if trk, err = track.Load(cfg.TrackFile); err != nil {
			return err
		}
	}

	switch {
	case *exportTrack:
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(trk)
	case *validate:
		speeds := []float32{cfg.Sim.MinSpeed, cfg.Sim.MaxSpeed}
		if err := trk.Validate(speeds...); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s: %d segments, reaches the terminal at speeds %g..%g\n",
			trk.Name, len(trk.Segments), cfg.Sim.MinSpeed, cfg.Sim.MaxSpeed)
		return nil
	}

	var input string
	if rest := fs.Args(); len(rest) > 0 {
		input, err = readInput(rest[0], stdin)
		if err != nil {
			return err
		}
	} else {
		in := sim.JourneyInput{
			Track:       trk,
			TickRate:    cfg.Sim.TickRate,
			Speed:       float32(*speed),
			SampleEvery: *sample,
			MaxTicks:    *maxTicks,
		}
		if in.Speed == 0 {
			in.Speed = cfg.Sim.MinSpeed
		}
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode input: %w", err)
		}
		input = string(data)
	}

	out, err := sim.RunJSON(input)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, out)
	return err
}

func readInput(name string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if name == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return string(data), nil
}

func printSchema(w io.Writer, s *jsonschema.Schema) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode schema: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
