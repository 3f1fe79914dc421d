package config

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/dshills/hoverintent/internal/config/loader"
	"github.com/dshills/hoverintent/internal/event/topic"
	"github.com/dshills/hoverintent/internal/intent"
	"github.com/dshills/hoverintent/internal/surface"
)

// Duration is a time.Duration written as a string ("150ms", "1.5s").
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// File is the contents of a configuration file.
type File struct {
	// Log configures the demo's log output.
	Log LogSection `toml:"log" yaml:"log"`

	// Hooks is the path of a Lua script defining on_hover and on_leave.
	Hooks string `toml:"hooks" yaml:"hooks"`

	// Defaults apply to every binding that leaves a field unset.
	Defaults Binding `toml:"defaults" yaml:"defaults"`

	// Bindings are the named bindings.
	Bindings []Binding `toml:"binding" yaml:"bindings"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `toml:"level" yaml:"level"`
	Path   string `toml:"path" yaml:"path"`
	Format string `toml:"format" yaml:"format"`
}

// Binding configures one intent binding.
type Binding struct {
	Name            string   `toml:"name" yaml:"name"`
	Root            string   `toml:"root" yaml:"root"`
	Selector        string   `toml:"selector" yaml:"selector"`
	Attr            string   `toml:"attr" yaml:"attr"`
	MoveThreshold   Duration `toml:"move_threshold" yaml:"move_threshold"`
	IdleThreshold   Duration `toml:"idle_threshold" yaml:"idle_threshold"`
	ActivationDelay Duration `toml:"activation_delay" yaml:"activation_delay"`
	ScrollThreshold float64  `toml:"scroll_threshold" yaml:"scroll_threshold"`
	ForceLeaveTopic string   `toml:"force_leave_topic" yaml:"force_leave_topic"`
}

// Default returns the built-in configuration.
func Default() *File {
	return &File{
		Log: LogSection{Level: "info", Format: "text"},
		Defaults: Binding{
			Attr:            intent.DefaultAttr,
			MoveThreshold:   Duration(intent.DefaultMoveThreshold),
			IdleThreshold:   Duration(intent.DefaultIdleThreshold),
			ActivationDelay: Duration(intent.DefaultActivationDelay),
			ForceLeaveTopic: intent.DefaultForceLeaveTopic.String(),
		},
	}
}

// Load reads path over the built-in defaults. A missing file yields the
// defaults. The result is validated.
func Load(path string, opts ...loader.FileOption) (*File, error) {
	f := Default()
	if path != "" {
		if _, err := loader.New(opts...).Load(path, f); err != nil {
			return nil, err
		}
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// ApplyEnv overrides settings from dotted paths as produced by
// loader.EnvLoader. Unknown paths are ignored.
func (f *File) ApplyEnv(env map[string]string) error {
	for path, value := range env {
		var err error
		switch path {
		case "log.level":
			f.Log.Level = value
		case "log.path":
			f.Log.Path = loader.ExpandEnvInString(value)
		case "log.format":
			f.Log.Format = value
		case "hooks":
			f.Hooks = loader.ExpandEnvInString(value)
		case "defaults.attr":
			f.Defaults.Attr = value
		case "defaults.selector":
			f.Defaults.Selector = value
		case "defaults.moveThreshold":
			err = f.Defaults.MoveThreshold.UnmarshalText([]byte(value))
		case "defaults.idleThreshold":
			err = f.Defaults.IdleThreshold.UnmarshalText([]byte(value))
		case "defaults.activationDelay":
			err = f.Defaults.ActivationDelay.UnmarshalText([]byte(value))
		case "defaults.scrollThreshold":
			f.Defaults.ScrollThreshold, err = strconv.ParseFloat(value, 64)
		case "defaults.forceLeaveTopic":
			f.Defaults.ForceLeaveTopic = value
		}
		if err != nil {
			return &ValidationError{Path: path, Message: err.Error(), Value: value, Code: ErrCodeTypeMismatch}
		}
	}
	return nil
}

// Validate checks every setting and returns ValidationErrors listing all
// failures, or nil.
func (f *File) Validate() error {
	var errs ValidationErrors

	if _, err := parseLevel(f.Log.Level); err != nil {
		errs = append(errs, &ValidationError{Path: "log.level", Message: "must be debug, info, warn or error", Value: f.Log.Level, Code: ErrCodeInvalidEnum})
	}
	switch f.Log.Format {
	case "", "text", "json":
	default:
		errs = append(errs, &ValidationError{Path: "log.format", Message: "must be text or json", Value: f.Log.Format, Code: ErrCodeInvalidEnum})
	}

	errs = append(errs, f.Defaults.validate("defaults")...)

	seen := make(map[string]bool, len(f.Bindings))
	for i, b := range f.Bindings {
		prefix := fmt.Sprintf("binding[%d]", i)
		if b.Name == "" {
			errs = append(errs, &ValidationError{Path: prefix + ".name", Message: "is required", Code: ErrCodeRequiredMissing})
		} else if seen[b.Name] {
			errs = append(errs, &ValidationError{Path: prefix + ".name", Message: "is used by another binding", Value: b.Name, Code: ErrCodeDuplicate})
		}
		seen[b.Name] = true

		r := f.Resolve(b)
		if r.Root == "" && r.Selector == "" {
			errs = append(errs, &ValidationError{Path: prefix + ".selector", Message: "is required when root is empty", Code: ErrCodeRequiredMissing})
		}
		errs = append(errs, b.validate(prefix)...)
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (b Binding) validate(prefix string) ValidationErrors {
	var errs ValidationErrors
	for _, d := range []struct {
		name string
		v    Duration
	}{
		{"move_threshold", b.MoveThreshold},
		{"idle_threshold", b.IdleThreshold},
		{"activation_delay", b.ActivationDelay},
	} {
		if d.v < 0 {
			errs = append(errs, &ValidationError{Path: prefix + "." + d.name, Message: "must not be negative", Value: d.v.Std(), Code: ErrCodeOutOfRange})
		}
	}
	if b.ScrollThreshold < 0 {
		errs = append(errs, &ValidationError{Path: prefix + ".scroll_threshold", Message: "must not be negative", Value: b.ScrollThreshold, Code: ErrCodeOutOfRange})
	}
	if b.ForceLeaveTopic != "" {
		t := topic.Topic(b.ForceLeaveTopic)
		if !t.IsValid() || t.IsWildcard() {
			errs = append(errs, &ValidationError{Path: prefix + ".force_leave_topic", Message: "must be a concrete topic", Value: b.ForceLeaveTopic, Code: ErrCodePatternMismatch})
		}
	}
	if b.Selector != "" {
		if _, err := surface.ParseSelector(b.Selector); err != nil {
			errs = append(errs, &ValidationError{Path: prefix + ".selector", Message: err.Error(), Value: b.Selector, Code: ErrCodePatternMismatch})
		}
	}
	return errs
}

// Lookup returns the named binding with defaults applied.
func (f *File) Lookup(name string) (Binding, error) {
	for _, b := range f.Bindings {
		if b.Name == name {
			return f.Resolve(b), nil
		}
	}
	return Binding{}, fmt.Errorf("%q: %w", name, ErrBindingNotFound)
}

// Resolve fills b's unset fields from the defaults.
func (f *File) Resolve(b Binding) Binding {
	d := f.Defaults
	if b.Selector == "" {
		b.Selector = d.Selector
	}
	if b.Attr == "" {
		b.Attr = d.Attr
	}
	if b.MoveThreshold == 0 {
		b.MoveThreshold = d.MoveThreshold
	}
	if b.IdleThreshold == 0 {
		b.IdleThreshold = d.IdleThreshold
	}
	if b.ActivationDelay == 0 {
		b.ActivationDelay = d.ActivationDelay
	}
	if b.ScrollThreshold == 0 {
		b.ScrollThreshold = d.ScrollThreshold
	}
	if b.ForceLeaveTopic == "" {
		b.ForceLeaveTopic = d.ForceLeaveTopic
	}
	return b
}

// Intent converts b into an intent configuration. Callbacks and the logger
// are left for the caller to set.
func (b Binding) Intent() (intent.Config, error) {
	cfg := intent.Config{
		Attr:            b.Attr,
		MoveThreshold:   b.MoveThreshold.Std(),
		IdleThreshold:   b.IdleThreshold.Std(),
		ActivationDelay: b.ActivationDelay.Std(),
		ScrollThreshold: b.ScrollThreshold,
		ForceLeaveTopic: topic.Topic(b.ForceLeaveTopic),
	}
	if b.Selector != "" {
		m, err := surface.ParseSelector(b.Selector)
		if err != nil {
			return intent.Config{}, fmt.Errorf("binding %q: %w", b.Name, err)
		}
		cfg.Selector = m
	}
	return cfg, nil
}

// SlogLevel returns the configured log level, defaulting to info.
func (l LogSection) SlogLevel() slog.Level {
	lvl, err := parseLevel(l.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	err := lvl.UnmarshalText([]byte(strings.ToUpper(s)))
	return lvl, err
}
