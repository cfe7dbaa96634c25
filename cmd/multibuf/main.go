// Package main is the entry point for the multibuf CLI: it composes an
// aggregate from a TOML manifest of file excerpts and prints it with a
// file:line gutter. With -watch it keeps running, propagating file
// changes into the aggregate and re-rendering on every edit event.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/multibuf"
	"github.com/dshills/multibuf/internal/config"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()
	if opts.showVersion {
		fmt.Printf("multibuf %s (%s)\n", version, commit)
		return 0
	}
	if opts.manifestPath == "" {
		fmt.Fprintln(os.Stderr, "Error: manifest path required")
		flag.Usage()
		return 2
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))

	manifest, err := loadManifest(opts.manifestPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ws, err := compose(manifest, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	render(os.Stdout, ws)

	if !opts.watch {
		return 0
	}

	events, cancelEvents := ws.aggregate.Events()
	defer cancelEvents()

	stop, err := ws.watchFiles(logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer stop()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-signals:
			return 0
		case e := <-events:
			logger.Debug("aggregate edit",
				"old", e.OldRange,
				"new", e.NewRange,
				"delta", e.Delta())
			render(os.Stdout, ws)
		}
	}
}

type options struct {
	configPath   string
	manifestPath string
	watch        bool
	showVersion  bool
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	flag.BoolVar(&opts.watch, "watch", false, "Watch source files and re-render on change")
	flag.BoolVar(&opts.showVersion, "version", false, "Print version and exit")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] manifest.toml\n\nFlags:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	opts.manifestPath = flag.Arg(0)
	return opts
}

// workspace ties the aggregate to the files backing its buffers.
type workspace struct {
	aggregate *multibuf.MultiBuffer
	buffers   map[string]*multibuf.Buffer
	files     map[multibuf.BufferID]string
}

// compose loads every file the manifest references and builds the
// aggregate, one excerpt per manifest entry, in manifest order.
func compose(m *manifest, cfg config.Config, logger *slog.Logger) (*workspace, error) {
	ws := &workspace{
		aggregate: multibuf.New(
			multibuf.WithDefaultPadding(multibuf.Padding{
				Before: cfg.Padding.Before,
				After:  cfg.Padding.After,
			}),
			multibuf.WithEventBuffer(cfg.EventBuffer),
			multibuf.WithLogger(logger),
		),
		buffers: make(map[string]*multibuf.Buffer),
		files:   make(map[multibuf.BufferID]string),
	}

	specs := make([]multibuf.ExcerptSpec, 0, len(m.Excerpts))
	for _, e := range m.Excerpts {
		buf, ok := ws.buffers[e.File]
		if !ok {
			data, err := os.ReadFile(e.File)
			if err != nil {
				return nil, fmt.Errorf("loading %s: %w", e.File, err)
			}
			buf = multibuf.NewBuffer(string(data))
			ws.buffers[e.File] = buf
			ws.files[buf.ID()] = e.File
		}
		specs = append(specs, multibuf.ExcerptSpec{
			Buffer:  buf,
			Lines:   multibuf.LineRange{Start: e.StartLine, End: e.EndLine},
			Padding: multibuf.Padding{Before: e.Context, After: e.Context},
		})
	}

	if _, err := ws.aggregate.InsertExcerpts(0, specs); err != nil {
		return nil, fmt.Errorf("composing aggregate: %w", err)
	}
	return ws, nil
}
