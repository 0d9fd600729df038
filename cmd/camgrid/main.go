// Package main provides the CLI entry point for camgrid.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/camgrid/pkg/adapters/ffmpegbin"
	"github.com/user/camgrid/pkg/adapters/ffmpegsink"
	"github.com/user/camgrid/pkg/adapters/ffmpegsource"
	"github.com/user/camgrid/pkg/adapters/ffprobe"
	"github.com/user/camgrid/pkg/adapters/filesink"
	"github.com/user/camgrid/pkg/adapters/ggrenderer"
	"github.com/user/camgrid/pkg/adapters/logger"
	"github.com/user/camgrid/pkg/adapters/mp4probe"
	"github.com/user/camgrid/pkg/adapters/nullsink"
	"github.com/user/camgrid/pkg/adapters/osfilesystem"
	"github.com/user/camgrid/pkg/batch"
	"github.com/user/camgrid/pkg/config"
	"github.com/user/camgrid/pkg/orchestrator"
	"github.com/user/camgrid/pkg/pipeline"
	"github.com/user/camgrid/pkg/ports"
	"github.com/user/camgrid/pkg/summarizer"
)

var version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "camgrid",
		Usage:   l10n.T("Merge multi-camera recordings into a synchronized grid video"),
		Version: version,
		Description: l10n.T("camgrid resamples cameras with different frame rates to a common cadence, " +
			"arranges them in a grid and burns in a running timecode."),
		Commands: []*cli.Command{
			{
				Name:      "merge",
				Usage:     l10n.T("Merge camera files into one grid video"),
				ArgsUsage: "CAMERA...",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "output",
						Aliases:  []string{"o"},
						Usage:    l10n.T("Output video file path (required)"),
						Required: true,
						Category: l10n.T("Output"),
					},
				}, commonFlags()...),
				Action: runMerge,
			},
			{
				Name:      "batch",
				Usage:     l10n.T("Merge every recording found under a directory"),
				ArgsUsage: "ROOT",
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:     "workers",
						Aliases:  []string{"j"},
						Usage:    l10n.T("Number of recordings merged in parallel"),
						Category: l10n.T("Discovery"),
					},
					&cli.StringFlag{
						Name:     "recording-pattern",
						Usage:    l10n.T("Glob matching recording files (e.g., *.qtm)"),
						Category: l10n.T("Discovery"),
					},
					&cli.StringFlag{
						Name:     "camera-pattern",
						Usage:    l10n.T("Glob appended to the recording name to find cameras (e.g., _Miqus*.avi)"),
						Category: l10n.T("Discovery"),
					},
					&cli.StringFlag{
						Name:     "output-ext",
						Usage:    l10n.T("Extension of the merged video written next to each recording"),
						Category: l10n.T("Output"),
					},
					&cli.StringFlag{
						Name:     "summary",
						Usage:    l10n.T("Output execution summary to file (Markdown format)"),
						Category: l10n.T("Output"),
					},
				}, commonFlags()...),
				Action: runBatch,
			},
			{
				Name:  "version",
				Usage: l10n.T("Show version information"),
				Action: func(c *cli.Context) error {
					fmt.Println(l10n.F("camgrid version %s", version))
					return nil
				},
			},
		},
	}
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "config",
			Aliases:  []string{"c"},
			Usage:    l10n.T("YAML configuration file"),
			Category: l10n.T("Configuration"),
		},
		&cli.StringFlag{
			Name:     "codec",
			Usage:    l10n.T("Output codec (h264, av1)"),
			Category: l10n.T("Video"),
		},
		&cli.BoolFlag{
			Name:     "clear-each-tick",
			Usage:    l10n.T("Clear the canvas before every output frame"),
			Category: l10n.T("Video"),
		},
		&cli.StringFlag{
			Name:     "background-color",
			Usage:    l10n.T("Background color (hex, e.g., #000000)"),
			Category: l10n.T("Video"),
		},
		&cli.StringFlag{
			Name:     "overlay-position",
			Usage:    l10n.T("Timecode position (top-left, center)"),
			Category: l10n.T("Overlay"),
		},
		&cli.Float64Flag{
			Name:     "font-size",
			Usage:    l10n.T("Timecode font size in points"),
			Category: l10n.T("Overlay"),
		},
		&cli.StringFlag{
			Name:     "font",
			Usage:    l10n.T("TrueType font file for the timecode"),
			Category: l10n.T("Overlay"),
		},
		&cli.BoolFlag{
			Name:     "midnight",
			Usage:    l10n.T("Start the clock at 00:00:00 when no camera carries a timecode"),
			Category: l10n.T("Overlay"),
		},
		&cli.StringFlag{
			Name:     "ffmpeg",
			Usage:    l10n.T("Path to ffmpeg executable"),
			EnvVars:  []string{ffmpegbin.FFmpeg.EnvVar()},
			Category: l10n.T("Tools"),
		},
		&cli.StringFlag{
			Name:     "ffprobe",
			Usage:    l10n.T("Path to ffprobe executable"),
			EnvVars:  []string{ffmpegbin.FFprobe.EnvVar()},
			Category: l10n.T("Tools"),
		},
		&cli.BoolFlag{
			Name:     "debug",
			Aliases:  []string{"d"},
			Usage:    l10n.T("Enable debug output"),
			Category: l10n.T("Debug"),
		},
		&cli.StringFlag{
			Name:     "debug-dir",
			Usage:    l10n.T("Directory for debug output"),
			Category: l10n.T("Debug"),
		},
		&cli.StringFlag{
			Name:     "log-level",
			Aliases:  []string{"l"},
			Usage:    l10n.T("Log level (debug, info, warn, error)"),
			Category: l10n.T("Logging"),
		},
		&cli.BoolFlag{
			Name:     "quiet",
			Aliases:  []string{"Q"},
			Usage:    l10n.T("Suppress all log output"),
			Category: l10n.T("Logging"),
		},
	}
}

// loadConfig reads the configuration file, if any, and applies flag
// overrides on top of it.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = config.LoadFromFile(path); err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
	}

	if c.IsSet("codec") {
		cfg.Codec = c.String("codec")
	}
	if c.IsSet("clear-each-tick") {
		cfg.ClearEachTick = c.Bool("clear-each-tick")
	}
	if c.IsSet("background-color") {
		cfg.BackgroundColor = c.String("background-color")
	}
	if c.IsSet("overlay-position") {
		cfg.Overlay.Position = c.String("overlay-position")
	}
	if c.IsSet("font-size") {
		cfg.Overlay.FontSize = c.Float64("font-size")
	}
	if c.IsSet("font") {
		cfg.Overlay.FontPath = c.String("font")
	}
	if c.IsSet("midnight") {
		cfg.MidnightFallback = c.Bool("midnight")
	}
	if c.IsSet("ffmpeg") {
		cfg.FFmpegPath = c.String("ffmpeg")
	}
	if c.IsSet("ffprobe") {
		cfg.FFprobePath = c.String("ffprobe")
	}
	if c.IsSet("debug") {
		cfg.Debug = c.Bool("debug")
	}
	if c.IsSet("debug-dir") {
		cfg.DebugDir = c.String("debug-dir")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.Bool("quiet") {
		cfg.LogLevel = "quiet"
	}

	// Batch only
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.IsSet("recording-pattern") {
		cfg.RecordingPattern = c.String("recording-pattern")
	}
	if c.IsSet("camera-pattern") {
		cfg.CameraPattern = c.String("camera-pattern")
	}
	if c.IsSet("output-ext") {
		cfg.OutputExt = c.String("output-ext")
	}

	return cfg, cfg.Validate()
}

func newLogger(cfg config.Config) ports.Logger {
	if cfg.LogLevel == "quiet" {
		return logger.NewNoop()
	}
	return logger.NewConsole(ports.ParseLogLevel(cfg.LogLevel))
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(log ports.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Interrupted, shutting down...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// newMerger wires the adapters into an orchestrator.
func newMerger(ctx context.Context, cfg config.Config, fs ports.FileSystem, log ports.Logger) (*orchestrator.Orchestrator, error) {
	ffmpegPath, err := ffmpegbin.Find(ffmpegbin.FFmpeg, cfg.FFmpegPath)
	if err != nil {
		return nil, err
	}
	ffprobePath, err := ffmpegbin.FindSibling(ffmpegbin.FFprobe, cfg.FFprobePath, ffmpegPath)
	if err != nil {
		return nil, err
	}
	log.Debug("Using %s and %s", ffmpegPath, ffprobePath)

	sinks := ffmpegsink.NewOpener(ffmpegPath, log)
	selection, err := sinks.SelectFor(ctx, ports.Codec(cfg.Codec))
	if err != nil {
		return nil, err
	}
	log.Debug("Encoding %s with %s", selection.Codec, selection.Encoder)

	probe := ffprobe.New(ffprobePath)
	prober := mp4probe.New(probe, log)
	renderer := ggrenderer.New()

	var debug ports.DebugSink
	if cfg.Debug {
		if err := fs.MkdirAll(cfg.DebugDir); err != nil {
			return nil, fmt.Errorf("create debug directory: %w", err)
		}
		debug = filesink.New(cfg.DebugDir, fs, renderer)
	} else {
		debug = nullsink.New()
	}

	orchConfig := cfg.ToOrchestratorConfig()
	orchConfig.Codec = selection.Codec

	return orchestrator.New(
		ffmpegsource.NewOpener(ffmpegPath, prober, log),
		probe,
		sinks,
		renderer,
		debug,
		orchConfig,
		log,
	), nil
}

func newFormatter(markdown bool) summarizer.Formatter {
	opts := []summarizer.Option{
		summarizer.WithTranslator(l10n.T),
		summarizer.WithVersion(version),
	}
	if markdown {
		return summarizer.NewMarkdownFormatter(opts...)
	}
	return summarizer.NewTableFormatter(opts...)
}

func runMerge(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit(l10n.T("At least one camera file is required"), 2)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	ctx, cancel := signalContext(log)
	defer cancel()

	fs := osfilesystem.New()
	merger, err := newMerger(ctx, cfg, fs, log)
	if err != nil {
		return err
	}

	output := c.String("output")
	name := strings.TrimSuffix(filepath.Base(output), filepath.Ext(output))
	input := pipeline.MergeInput{
		Name:       name,
		OutputPath: output,
		Sources:    c.Args().Slice(),
	}

	started := time.Now()
	result, err := merger.Execute(ctx, input)
	if err != nil {
		return err
	}

	size, _ := fs.Size(output)
	log.Info("Output saved to %s", output)

	if cfg.LogLevel != "quiet" {
		summary := summarizer.NewBuilder().
			WithMerged(name, result, size, time.Since(started)).
			Build()
		return summarizer.NewWriter(fs, newFormatter(false)).Print(os.Stdout, summary)
	}
	return nil
}

func runBatch(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit(l10n.T("A root directory argument is required"), 2)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	ctx, cancel := signalContext(log)
	defer cancel()

	fs := osfilesystem.New()
	merger, err := newMerger(ctx, cfg, fs, log)
	if err != nil {
		return err
	}

	runner := batch.NewRunner(fs, merger, cfg.ToBatchOptions(c.Args().First()), log)
	summary, runErr := runner.Run(ctx)
	if summary == nil {
		return runErr
	}

	if cfg.LogLevel != "quiet" {
		if err := summarizer.NewWriter(fs, newFormatter(false)).Print(os.Stdout, summary); err != nil {
			return err
		}
	}

	if path := c.String("summary"); path != "" {
		if err := summarizer.NewWriter(fs, newFormatter(true)).Write(path, summary); err != nil {
			log.Error("Failed to write summary: %s", err)
		} else {
			log.Info("Summary saved to %s", path)
		}
	}

	if runErr != nil {
		return runErr
	}
	if failed := summary.Count(summarizer.StatusFailed); failed > 0 {
		return cli.Exit(l10n.F("%d recordings failed", failed), 1)
	}
	return nil
}
