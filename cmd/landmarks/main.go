// Command landmarks extracts spectral landmarks from audio.
//
// Usage:
//
//	landmarks [flags]
//
// Audio comes from a WAV file (-in, channels are mixed to mono) or from a
// synthetic tone-burst signal (-tone). Each landmark is printed as soon as it
// is confirmed, TSpan steps after it occurred.
//
// Examples:
//
//	landmarks -in song.wav
//	landmarks -in song.wav -block 4096 -step 1024 -tspan 8 -format json
//	landmarks -tone 440 -seconds 3 -min-amp 0.1
//	landmarks -in song.wav -metrics-addr :9100 -v
//	landmarks -windows
//
// LANDMARK_BLOCK, LANDMARK_STEP, LANDMARK_TSPAN and LANDMARK_WINDOW override
// the built-in defaults and may be set in a .env file in the working
// directory.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-landmark/dsp/analyzer"
	"github.com/cwbudde/algo-landmark/dsp/core"
	"github.com/cwbudde/algo-landmark/dsp/landmark"
	"github.com/cwbudde/algo-landmark/dsp/pipeline"
	"github.com/cwbudde/algo-landmark/dsp/window"
)

type config struct {
	in          string
	tone        float64
	seconds     float64
	rate        float64
	block       int
	step        int
	tSpan       int
	window      string
	binCenter   bool
	shift       float64
	minAmp      float64
	format      string
	metricsAddr string
	verbose     bool
	windows     bool
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "error: loading .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := parseFlags(os.Args[1:], os.Getenv, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	if cfg.windows {
		if err := printWindows(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, os.Stdout, os.Stderr); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, getenv func(string) string, stderr io.Writer) (config, error) {
	var cfg config

	fsFlags := flag.NewFlagSet("landmarks", flag.ContinueOnError)
	fsFlags.SetOutput(stderr)
	fsFlags.StringVar(&cfg.in, "in", "", "WAV file to analyze")
	fsFlags.Float64Var(&cfg.tone, "tone", 0, "synthesize tone bursts at this frequency in Hz instead of reading -in")
	fsFlags.Float64Var(&cfg.seconds, "seconds", 2, "length of the synthetic signal")
	fsFlags.Float64Var(&cfg.rate, "rate", 48000, "sample rate of the synthetic signal")
	fsFlags.IntVar(&cfg.block, "block", envInt(getenv, "LANDMARK_BLOCK", 2048), "FFT block size (power of two)")
	fsFlags.IntVar(&cfg.step, "step", envInt(getenv, "LANDMARK_STEP", 512), "samples per frame step")
	fsFlags.IntVar(&cfg.tSpan, "tspan", envInt(getenv, "LANDMARK_TSPAN", 4), "half window in steps; also the reporting latency")
	fsFlags.StringVar(&cfg.window, "window", envString(getenv, "LANDMARK_WINDOW", "hann"),
		"analysis window: "+strings.Join(window.Names(), ", "))
	fsFlags.BoolVar(&cfg.binCenter, "bin-center", false, "report bin center frequencies instead of phase-refined estimates")
	fsFlags.Float64Var(&cfg.shift, "shift", 1, "pitch shift factor applied to frames before detection")
	fsFlags.Float64Var(&cfg.minAmp, "min-amp", 0, "only print landmarks at or above this amplitude")
	fsFlags.StringVar(&cfg.format, "format", "table", "output format: table or json")
	fsFlags.StringVar(&cfg.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running")
	fsFlags.BoolVar(&cfg.verbose, "v", false, "debug logging")
	fsFlags.BoolVar(&cfg.windows, "windows", false, "list analysis windows and exit")

	if err := fsFlags.Parse(args); err != nil {
		return cfg, err
	}

	if cfg.windows {
		return cfg, nil
	}

	switch {
	case cfg.in == "" && cfg.tone <= 0:
		return cfg, fmt.Errorf("one of -in or -tone is required")
	case cfg.in != "" && cfg.tone > 0:
		return cfg, fmt.Errorf("-in and -tone are mutually exclusive")
	case cfg.format != "table" && cfg.format != "json":
		return cfg, fmt.Errorf("unknown format %q", cfg.format)
	case cfg.tone > 0 && cfg.seconds <= 0:
		return cfg, fmt.Errorf("-seconds must be > 0: %f", cfg.seconds)
	}
	return cfg, nil
}

func envInt(getenv func(string) string, key string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(getenv(key)))
	if err != nil {
		return def
	}
	return v
}

func envString(getenv func(string) string, key, def string) string {
	if v := strings.TrimSpace(getenv(key)); v != "" {
		return v
	}
	return def
}

func run(ctx context.Context, cfg config, stdout, stderr io.Writer) error {
	level := slog.LevelInfo
	if cfg.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	src, err := openSource(cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	winType, err := window.ParseType(cfg.window)
	if err != nil {
		return err
	}
	mode := analyzer.FrequencyInstantaneous
	if cfg.binCenter {
		mode = analyzer.FrequencyBinCenter
	}

	an, err := analyzer.New([]core.ProcessorOption{
		core.WithSampleRate(src.SampleRate()),
		core.WithBlockSize(cfg.block),
		core.WithStepSize(cfg.step),
	}, analyzer.WithWindow(winType), analyzer.WithFrequencyMode(mode))
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	p, err := pipeline.New(an, cfg.tSpan,
		pipeline.WithShift(cfg.shift),
		pipeline.WithLogger(logger),
		pipeline.WithRegisterer(reg),
	)
	if err != nil {
		return err
	}

	logger.Info("analyzing",
		"source", src.Name(),
		"rate", src.SampleRate(),
		"bins", an.BinCount(),
		"window", window.Info(winType).Name,
		"resolution_hz", window.Info(winType).ENBW*an.BinFrequency(1),
		"step_ms", an.StepDuration()*1000,
		"latency_ms", an.StepDuration()*1000*float64(cfg.tSpan),
	)

	if cfg.metricsAddr != "" {
		srv := &http.Server{
			Addr:              cfg.metricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "err", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	printer, err := newPrinter(cfg.format, stdout, cfg.minAmp)
	if err != nil {
		return err
	}

	in := make(chan []float64, 4)
	out := make(chan []landmark.Landmark, 4)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(in)
		return src.Stream(gctx, in)
	})
	g.Go(func() error {
		defer close(out)
		return p.Run(gctx, in, out)
	})
	g.Go(func() error {
		for batch := range out {
			for _, l := range batch {
				if err := printer.Print(p.TimeOf(l), l); err != nil {
					return err
				}
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	if err := printer.Flush(); err != nil {
		return err
	}

	logger.Info("done", "frames", p.Detector().Step(), "printed", printer.Count())
	return nil
}
