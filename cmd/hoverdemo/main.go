// Package main is the entry point for the hover intent demo.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dshills/hoverintent/internal/app"
	"github.com/dshills/hoverintent/internal/config"
	"github.com/dshills/hoverintent/internal/input/teamouse"
	"github.com/dshills/hoverintent/internal/renderer/backend"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type options struct {
	configPath string
	hooksPath  string
	logPath    string
	logLevel   string
	ui         string
	watch      bool
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	file, err := app.LoadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if opts.logPath != "" {
		file.Log.Path = opts.logPath
	}
	if opts.logLevel != "" {
		file.Log.Level = opts.logLevel
		if err := file.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	logging, err := app.OpenLogging(file.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer logging.Close()
	logger := logging.Logger.With("version", version)

	appOpts := app.Options{
		ConfigPath: opts.configPath,
		HooksPath:  opts.hooksPath,
		Watch:      opts.watch,
		Logger:     logger,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch opts.ui {
	case "tea":
		err = runTea(ctx, file, appOpts)
	default:
		err = runTerminal(ctx, file, appOpts)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("exited", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func runTerminal(ctx context.Context, file *config.File, opts app.Options) error {
	term, err := backend.NewTerminal()
	if err != nil {
		return &app.InitError{Component: "terminal", Err: err}
	}
	if err := term.Init(); err != nil {
		return &app.InitError{Component: "terminal", Err: err}
	}
	defer term.Shutdown()

	a, err := app.New(file, term.Scheduler(), opts)
	if err != nil {
		return err
	}
	defer a.Close()

	a.Sink().Resize(term.Size())
	return term.Run(ctx, a.Sink(), a.View())
}

func runTea(ctx context.Context, file *config.File, opts app.Options) error {
	sched := teamouse.NewScheduler()
	a, err := app.New(file, sched, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	p := tea.NewProgram(teamouse.New(a.Sink(), a.View()), append(teamouse.Options(), tea.WithContext(ctx))...)
	sched.Attach(p)
	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return ctx.Err()
	}
	return err
}

func parseFlags() options {
	var opts options
	var showVersion bool

	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file (TOML or YAML)")
	flag.StringVar(&opts.configPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.hooksPath, "hooks", "", "Path to a Lua hooks script")
	flag.StringVar(&opts.logPath, "log", "", "Write logs to this file")
	flag.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&opts.ui, "ui", "tcell", "Terminal host: tcell or tea")
	flag.BoolVar(&opts.watch, "watch", false, "Reload configuration and hooks when they change")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "hoverdemo - menu aim in the terminal\n\n")
		fmt.Fprintf(os.Stderr, "Usage: hoverdemo [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  hoverdemo                          Built-in menus and defaults\n")
		fmt.Fprintf(os.Stderr, "  hoverdemo -c demo.toml -watch      Live-reload a configuration\n")
		fmt.Fprintf(os.Stderr, "  hoverdemo -hooks veto.lua -ui tea  Script callbacks under bubbletea\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("hoverdemo %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	switch opts.ui {
	case "tcell", "tea":
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid ui %q (must be tcell or tea)\n", opts.ui)
		os.Exit(2)
	}
	return opts
}
