// Package main runs a single form field in the terminal.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dshills/fieldedit/internal/config"
	"github.com/dshills/fieldedit/internal/script"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type options struct {
	ConfigPath string
	ScriptPath string
	LogPath    string
	LogLevel   string
	Text       string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	settings := &config.File{}
	if opts.ConfigPath != "" {
		f, err := config.Load(opts.ConfigPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		settings = f
	}
	params, err := settings.Params()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	logPath, levelName := settings.Log.Path, settings.Log.Level
	if opts.LogPath != "" {
		logPath = opts.LogPath
	}
	if opts.LogLevel != "" {
		levelName = opts.LogLevel
	}
	level, err := config.LogSection{Level: levelName}.ZapLevel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	logger, err := newLogger(logPath, level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open log: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	scriptPath := settings.Script.Validate
	if opts.ScriptPath != "" {
		scriptPath = opts.ScriptPath
	}
	var validator *script.Validator
	if scriptPath != "" {
		validator = script.New(script.WithLogger(logger))
		defer validator.Close()
		if err := validator.LoadFile(scriptPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		params.Validate = true
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize terminal: %v\n", err)
		return 1
	}
	defer screen.Fini()
	screen.EnablePaste()

	h := newHost(screen, params, validator, logger)
	if opts.Text != "" {
		if err := h.e.SetText(opts.Text); err != nil {
			logger.Warn("initial text rejected", zap.Error(err))
		}
	}

	if opts.ConfigPath != "" {
		w, err := config.NewWatcher(opts.ConfigPath, func(f *config.File, err error) {
			ev := &reloadEvent{err: err}
			if err == nil {
				ev.params, ev.err = f.Params()
				ev.params.Validate = ev.params.Validate || validator != nil
			}
			ev.SetEventNow()
			_ = screen.PostEvent(ev)
		}, config.WithWatchLogger(logger))
		if err != nil {
			logger.Warn("config watch disabled", zap.Error(err))
		} else {
			defer w.Close()
		}
	}

	// Handle signals for graceful shutdown
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		_ = screen.PostEvent(tcell.NewEventInterrupt(nil))
	}()

	if err := h.Run(); err != nil && !errors.Is(err, errQuit) {
		screen.Fini()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags() options {
	var opts options
	var showVersion bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to a TOML field settings file")
	flag.StringVar(&opts.ScriptPath, "validate", "", "Path to a Lua validation script")
	flag.StringVar(&opts.LogPath, "log", "", "Write a JSON log to this file")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&opts.Text, "text", "", "Initial field text")
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "fieldedit - edit one form field in the terminal\n\n")
		fmt.Fprintf(os.Stderr, "Usage: fieldedit [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nKeys:\n")
		fmt.Fprintf(os.Stderr, "  arrows, Home/End     move (Shift extends the selection)\n")
		fmt.Fprintf(os.Stderr, "  Ctrl-Home/Ctrl-End   document start/end\n")
		fmt.Fprintf(os.Stderr, "  Ctrl-Up/Ctrl-Down    paragraph start/end\n")
		fmt.Fprintf(os.Stderr, "  Ctrl-Z/Ctrl-Y        undo/redo\n")
		fmt.Fprintf(os.Stderr, "  Ctrl-A/Ctrl-W        select all/select word\n")
		fmt.Fprintf(os.Stderr, "  Esc, Ctrl-Q          quit\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("fieldedit %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	return opts
}

// newLogger writes JSON lines to path. The terminal belongs to the field,
// so without a path nothing is logged.
func newLogger(path string, level zapcore.Level) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	return cfg.Build()
}
