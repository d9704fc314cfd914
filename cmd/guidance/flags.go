package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
)

// errUsage marks command-line mistakes; main exits 2 for them.
var errUsage = errors.New("usage")

func parse(fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %w", errUsage, err)
}

// runOptions are the flags of the default run command.
type runOptions struct {
	video       string
	out         string
	configPath  string
	model       string
	csvPath     string
	dbPath      string
	plotPath    string
	chartPath   string
	vehicleX    string
	bandOffset  string
	noPrompt    bool
	noPreview   bool
	metricsAddr string
	progress    int
	debug       bool
	version     bool
}

func parseRunFlags(args []string, output io.Writer) (*runOptions, error) {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(output)
	o := &runOptions{}
	fs.StringVar(&o.video, "video", "", "Input video file (required)")
	fs.StringVar(&o.out, "out", "", "Annotated output video (default <video>_guidance.mp4)")
	fs.StringVar(&o.configPath, "config", "", "Guidance tuning JSON file")
	fs.StringVar(&o.model, "model", "", "ONNX model path (overrides config)")
	fs.StringVar(&o.csvPath, "csv", "", "Write per-frame clearance CSV to this path")
	fs.StringVar(&o.dbPath, "db", "", "Record the run in this sqlite database")
	fs.StringVar(&o.plotPath, "plot", "", "Write a PNG clearance timeline to this path")
	fs.StringVar(&o.chartPath, "chart", "", "Write an HTML clearance chart to this path")
	fs.StringVar(&o.vehicleX, "vehicle-x", "", "Vehicle center X ratio in [0,1]; skips the prompt")
	fs.StringVar(&o.bandOffset, "band-offset", "", "Band Y offset ratio in [-0.2,0.2]; skips the prompt")
	fs.BoolVar(&o.noPrompt, "no-prompt", false, "Never prompt; use config or defaults for calibration")
	fs.BoolVar(&o.noPreview, "no-preview", false, "Do not open the preview window")
	fs.StringVar(&o.metricsAddr, "metrics-addr", "", "Serve Prometheus /metrics on this address during the run")
	fs.IntVar(&o.progress, "progress", 100, "Log progress every N frames (0 disables)")
	fs.BoolVar(&o.debug, "debug", false, "Log every frame")
	fs.BoolVar(&o.version, "version", false, "Print version and exit")

	if err := parse(fs, args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected arguments: %v", errUsage, fs.Args())
	}
	if o.version {
		return o, nil
	}
	if o.video == "" {
		return nil, fmt.Errorf("%w: -video is required", errUsage)
	}
	if o.progress < 0 {
		return nil, fmt.Errorf("%w: -progress must be non-negative, got %d", errUsage, o.progress)
	}
	return o, nil
}

type serveOptions struct {
	listen string
	dbPath string
	dev    bool
}

func parseServeFlags(args []string, output io.Writer) (*serveOptions, error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(output)
	o := &serveOptions{}
	fs.StringVar(&o.listen, "listen", ":8080", "Listen address")
	fs.StringVar(&o.dbPath, "db", defaultDBFile, "Run database")
	fs.BoolVar(&o.dev, "dev", false, "Read migrations from internal/db/migrations on disk")
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	if o.listen == "" {
		return nil, fmt.Errorf("%w: listen address is required", errUsage)
	}
	return o, nil
}

type migrateOptions struct {
	dbPath string
	dev    bool
	args   []string
}

func parseMigrateFlags(args []string, output io.Writer) (*migrateOptions, error) {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(output)
	o := &migrateOptions{}
	fs.StringVar(&o.dbPath, "db", defaultDBFile, "Run database")
	fs.BoolVar(&o.dev, "dev", false, "Read migrations from internal/db/migrations on disk")
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	o.args = fs.Args()
	return o, nil
}
