// Command motionfeat extracts dense spatio-temporal descriptors (HOG, HOF,
// MBH and the frequency-domain channels) from a frame log or a synthetic
// sequence and writes them as TSV and/or to a SQLite database.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/banshee-data/motionfeat/internal/config"
	"github.com/banshee-data/motionfeat/internal/monitoring"
	"github.com/banshee-data/motionfeat/internal/version"
	"github.com/banshee-data/motionfeat/internal/video/l1frames"
	"github.com/banshee-data/motionfeat/internal/video/l5descriptor"
	"github.com/banshee-data/motionfeat/internal/video/pipeline"
	"github.com/banshee-data/motionfeat/internal/video/report"
	"github.com/banshee-data/motionfeat/internal/video/sink"
	"github.com/banshee-data/motionfeat/internal/video/storage/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatalf("motionfeat: %v", err)
	}
}

type options struct {
	input        string
	synthetic    int
	width        int
	height       int
	seed         int64
	configPath   string
	dense        bool
	interpolate  bool
	goodPTS      string
	output       string
	dbPath       string
	reportPath   string
	diag         bool
	trace        bool
	printVersion bool

	channels map[string]*bool
}

func parseFlags(args []string, stderr io.Writer) (*options, *config.ExtractConfig, error) {
	fs := flag.NewFlagSet("motionfeat", flag.ContinueOnError)
	fs.SetOutput(stderr)

	o := &options{}
	fs.StringVar(&o.input, "input", "", "frame log (.mvlog) to read")
	fs.IntVar(&o.synthetic, "synthetic", 0, "generate this many synthetic frames instead of reading -input")
	fs.IntVar(&o.width, "width", 320, "synthetic frame width in pixels")
	fs.IntVar(&o.height, "height", 240, "synthetic frame height in pixels")
	fs.Int64Var(&o.seed, "seed", 1, "synthetic motion noise seed")
	fs.StringVar(&o.configPath, "config", "", "extraction config JSON (default: "+config.DefaultConfigPath+" when found)")
	fs.BoolVar(&o.dense, "dense", false, "scan every grid position instead of half-block strides")
	fs.BoolVar(&o.interpolate, "interpolation", false, "interpolate the motion field to (2w-1)x(2h-1)")
	fs.StringVar(&o.goodPTS, "goodpts", "", "comma-separated PTS values to process; others are ignored")
	fs.StringVar(&o.output, "o", "-", "TSV output path, - for stdout, empty to disable")
	fs.StringVar(&o.dbPath, "db", "", "SQLite database to store the run in")
	fs.StringVar(&o.reportPath, "report", "", "write a timing report (.png or .html)")
	fs.BoolVar(&o.diag, "diag", false, "log per-run diagnostics to stderr")
	fs.BoolVar(&o.trace, "trace", false, "log per-frame telemetry to stderr")
	fs.BoolVar(&o.printVersion, "version", false, "print version and exit")

	o.channels = map[string]*bool{
		"hog": fs.Bool("hog", true, "enable the hog channel"),
		"hof": fs.Bool("hof", true, "enable the hof channel"),
		"mbh": fs.Bool("mbh", true, "enable the mbh channels"),
		"sv":  fs.Bool("sv", false, "enable the spatial variance channel"),
		"dc":  fs.Bool("dc", false, "enable the dc channel"),
		"vv":  fs.Bool("vv", false, "enable the vertical variance channel"),
		"hv":  fs.Bool("hv", false, "enable the horizontal variance channel"),
	}

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if o.printVersion {
		return o, nil, nil
	}

	cfg, err := loadConfig(o.configPath)
	if err != nil {
		return nil, nil, err
	}

	// Only flags given on the command line override the config file.
	targets := map[string]**bool{
		"hog": &cfg.EnableHOG,
		"hof": &cfg.EnableHOF,
		"mbh": &cfg.EnableMBH,
		"sv":  &cfg.EnableSpatialVariance,
		"dc":  &cfg.EnableDC,
		"vv":  &cfg.EnableVerticalVariance,
		"hv":  &cfg.EnableHorizontalVariance,
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "dense":
			mode := config.ScanHalfBlock
			if o.dense {
				mode = config.ScanDense
			}
			cfg.ScanStrideMode = &mode
		case "interpolation":
			config.SetBool(&cfg.Interpolation, o.interpolate)
		default:
			if dst, ok := targets[f.Name]; ok {
				config.SetBool(dst, *o.channels[f.Name])
			}
		}
	})

	if o.goodPTS != "" {
		pts, err := parsePTSList(o.goodPTS)
		if err != nil {
			return nil, nil, err
		}
		cfg.GoodPTS = pts
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return o, cfg, nil
}

func loadConfig(path string) (*config.ExtractConfig, error) {
	if path != "" {
		return config.LoadExtractConfig(path)
	}
	cfg, err := config.LoadDefaultConfig()
	if err != nil {
		return config.EmptyExtractConfig(), nil
	}
	return cfg, nil
}

func parsePTSList(s string) ([]int, error) {
	var out []int
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("invalid -goodpts value %q: %w", field, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func openSource(o *options) (l1frames.Source, func() error, error) {
	switch {
	case o.input != "":
		rd, err := l1frames.OpenFile(o.input)
		if err != nil {
			return nil, nil, err
		}
		return rd, rd.Close, nil
	case o.synthetic > 0:
		return l1frames.NewSyntheticSource(o.width, o.height, o.synthetic, o.seed), func() error { return nil }, nil
	}
	return nil, nil, errors.New("one of -input or -synthetic is required")
}

// multiSink hands every patch to each sink in order.
type multiSink []l5descriptor.Sink

func (m multiSink) WritePatch(p l5descriptor.Patch, desc []float32) error {
	for _, s := range m {
		if err := s.WritePatch(p, desc); err != nil {
			return err
		}
	}
	return nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	o, cfg, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if o.printVersion {
		fmt.Fprintln(stdout, version.String())
		return nil
	}

	var diagW, traceW io.Writer
	if o.diag {
		diagW = stderr
	}
	if o.trace {
		traceW = stderr
	}
	l5descriptor.SetLogWriters(stderr, diagW, traceW)
	pipeline.SetLogWriters(stderr, diagW, traceW)
	monitoring.SetLogger(log.New(stderr, "", 0).Printf)

	src, closeSrc, err := openSource(o)
	if err != nil {
		return err
	}
	defer closeSrc()

	pcfg := pipeline.ConfigFromExtract(cfg)
	timers := monitoring.NewPhaseTimers(nil)

	var sinks multiSink
	var tsv *sink.TSVWriter
	if o.output != "" {
		w := stdout
		if o.output != "-" {
			f, err := os.Create(o.output)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			defer f.Close()
			w = f
		}
		tsv = sink.NewTSVWriter(w, pcfg.FlowScale)
		sinks = append(sinks, tsv)
	}

	// The runner needs its sink up front; the database run is attached
	// once the layout is known.
	var dbRun *sqlite.Run
	lateDB := l5descriptor.SinkFunc(func(p l5descriptor.Patch, desc []float32) error {
		if dbRun == nil {
			return nil
		}
		return dbRun.WritePatch(p, desc)
	})
	sinks = append(sinks, lateDB)

	runner, err := pipeline.NewRunner(pcfg, src, sinks, pipeline.WithObserver(timers))
	if err != nil {
		return err
	}
	layout := runner.Engine().Layout()

	if tsv != nil {
		if err := tsv.WriteHeader(layout); err != nil {
			return err
		}
	}
	if o.dbPath != "" {
		store, err := sqlite.Open(o.dbPath)
		if err != nil {
			return err
		}
		defer store.Close()
		cfgJSON, err := json.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("encode config: %w", err)
		}
		if dbRun, err = store.BeginRun(cfgJSON, layout, runner.FrameSize()); err != nil {
			return err
		}
	}

	stats, runErr := runner.Run(ctx)

	if tsv != nil {
		if err := tsv.Flush(); err != nil && runErr == nil {
			runErr = err
		}
	}
	if dbRun != nil {
		if err := dbRun.Finish(sqlite.RunSummary{Frames: stats.Frames, SkippedFrames: stats.SkippedFrames}); err != nil && runErr == nil {
			runErr = err
		}
	}

	timers.Print(monitoring.RunCounts{
		Frames:            stats.FramesRead,
		SkippedFrames:     stats.SkippedFrames,
		ComputeDescriptor: stats.Queries,
	})

	if o.reportPath != "" {
		if err := writeReport(o.reportPath, stats, timers.Summary()); err != nil && runErr == nil {
			runErr = err
		}
	}
	return runErr
}

func writeReport(path string, stats pipeline.Stats, timings []monitoring.PhaseTiming) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer f.Close()

	s := report.Summary{Title: "motionfeat " + filepath.Base(path), Frames: stats.Frames, Patches: stats.Patches}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		err = report.WritePNG(f, s, timings)
	case ".html", ".htm":
		err = report.WriteHTML(f, s, timings)
	default:
		err = fmt.Errorf("report must be .png or .html, got %q", path)
	}
	if err != nil {
		return err
	}
	return f.Close()
}
