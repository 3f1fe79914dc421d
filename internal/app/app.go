// Package app wires the hover intent demo together: configuration, the
// surface and its signal bus, the menubar, hook scripts and live reload.
//
// The host (a tcell terminal or a bubbletea program) owns the event loop.
// It supplies a clock.Scheduler whose callbacks run on that loop and feeds
// input into App.Sink.
package app

import (
	"log/slog"
	"path/filepath"

	"github.com/dshills/hoverintent/internal/clock"
	"github.com/dshills/hoverintent/internal/config"
	"github.com/dshills/hoverintent/internal/config/loader"
	"github.com/dshills/hoverintent/internal/config/watcher"
	"github.com/dshills/hoverintent/internal/event"
	"github.com/dshills/hoverintent/internal/input"
	"github.com/dshills/hoverintent/internal/plugin"
	"github.com/dshills/hoverintent/internal/renderer"
	"github.com/dshills/hoverintent/internal/surface"
)

// Options configures the application.
type Options struct {
	// ConfigPath is the configuration file. Empty means built-in defaults.
	ConfigPath string

	// HooksPath overrides the hooks script named by the configuration.
	HooksPath string

	// Watch reloads the configuration and hooks when their files change.
	Watch bool

	// Logger receives application logs. Defaults to slog.Default.
	Logger *slog.Logger

	// Menus replaces the default menus.
	Menus []Menu
}

// App is the running demo.
type App struct {
	sched   clock.Scheduler
	logger  *slog.Logger
	bus     *event.Bus
	surface *surface.Surface
	menubar *Menubar
	hooks   *plugin.Hooks
	watcher *watcher.Watcher

	file       *config.File
	configPath string
	hooksPath  string
}

// LoadConfig reads path, applies HOVERINTENT_ environment overrides and
// validates the result.
func LoadConfig(path string) (*config.File, error) {
	f, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := f.ApplyEnv(loader.NewEnvLoader(loader.DefaultEnvPrefix).Load()); err != nil {
		return nil, err
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// New builds the application from file. sched must run callbacks on the
// host's event loop.
func New(file *config.File, sched clock.Scheduler, opts Options) (*App, error) {
	if file == nil {
		file = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	menus := opts.Menus
	if len(menus) == 0 {
		menus = DefaultMenus()
	}

	a := &App{
		sched:      sched,
		logger:     logger,
		file:       file,
		configPath: opts.ConfigPath,
		hooksPath:  opts.HooksPath,
	}
	if a.hooksPath == "" {
		a.hooksPath = file.Hooks
	}

	a.bus = event.NewBus(event.WithLogger(logger))
	a.surface = surface.New(sched, surface.WithBus(a.bus))

	if a.hooksPath != "" {
		h, err := plugin.Load(a.hooksPath, plugin.WithLogger(logger))
		if err != nil {
			return nil, &InitError{Component: "hooks", Err: err}
		}
		a.hooks = h
	}

	mb, err := NewMenubar(a.surface, menus, WithHooks(a.hooks), WithMenubarLogger(logger))
	if err != nil {
		a.closeHooks()
		return nil, err
	}
	a.menubar = mb
	if err := mb.Bind(file); err != nil {
		logger.Warn("some bindings were not installed", "error", err)
	}

	if opts.Watch {
		if err := a.watch(); err != nil {
			a.Close()
			return nil, &InitError{Component: "watcher", Err: err}
		}
	}
	return a, nil
}

func (a *App) watch() error {
	var paths []string
	for _, p := range []string{a.configPath, a.hooksPath} {
		if p != "" {
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 {
		return nil
	}

	w, err := watcher.New(watcher.WithLogger(a.logger))
	if err != nil {
		return err
	}
	for _, p := range paths {
		if err := w.Watch(p); err != nil {
			_ = w.Close()
			return err
		}
	}
	w.OnChange(func(ev watcher.Event) {
		a.sched.AfterFunc(0, func() { a.Reload(ev.Path) })
	})
	a.watcher = w
	a.logger.Info("watching", "files", w.WatchedFiles())
	return nil
}

// Reload re-reads the file at path if it is the configuration or the hooks
// script. On error the running setup is kept.
func (a *App) Reload(path string) {
	switch {
	case samePath(path, a.hooksPath) && a.hooks != nil:
		if err := a.hooks.Reload(a.hooksPath); err != nil {
			a.logger.Warn("hooks reload failed", "path", path, "error", err)
		}
	case samePath(path, a.configPath):
		f, err := LoadConfig(a.configPath)
		if err != nil {
			a.logger.Warn("config reload failed", "path", path, "error", err)
			return
		}
		a.file = f
		if err := a.menubar.Bind(f); err != nil {
			a.logger.Warn("some bindings were not installed", "error", err)
		}
		a.logger.Info("config reloaded", "path", path, "bindings", len(a.menubar.Bindings()))
	}
}

func samePath(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

// Config returns the active configuration.
func (a *App) Config() *config.File {
	return a.file
}

// Surface returns the element tree.
func (a *App) Surface() *surface.Surface {
	return a.surface
}

// Menubar returns the menubar.
func (a *App) Menubar() *Menubar {
	return a.menubar
}

// Sink returns the input sink for the host.
func (a *App) Sink() input.Sink {
	return a.menubar
}

// View returns the view for the host.
func (a *App) View() renderer.View {
	return a.menubar
}

// Close stops watching, destroys bindings and releases the hooks script.
func (a *App) Close() {
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			a.logger.Warn("watcher close failed", "error", err)
		}
		a.watcher = nil
	}
	if a.menubar != nil {
		a.menubar.Close()
	}
	a.closeHooks()
}

func (a *App) closeHooks() {
	if a.hooks == nil {
		return
	}
	if err := a.hooks.Close(); err != nil {
		a.logger.Warn("hooks close failed", "error", err)
	}
	a.hooks = nil
}
