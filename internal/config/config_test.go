package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dshills/hoverintent/internal/config/loader"
	"github.com/dshills/hoverintent/internal/geom"
	"github.com/dshills/hoverintent/internal/intent"
	"github.com/dshills/hoverintent/internal/surface"
)

const tomlConfig = `
hooks = "hooks.lua"

[log]
level = "debug"

[defaults]
move_threshold = "100ms"
scroll_threshold = 8

[[binding]]
name = "menubar"
root = "bar"
selector = ".menu-item"
idle_threshold = "2s"

[[binding]]
name = "toolbar"
selector = "#tools, [tip]"
`

const yamlConfig = `
hooks: hooks.lua
log:
  level: debug
defaults:
  move_threshold: 100ms
  scroll_threshold: 8
bindings:
  - name: menubar
    root: bar
    selector: .menu-item
    idle_threshold: 2s
  - name: toolbar
    selector: "#tools, [tip]"
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	for _, tc := range []struct{ name, content string }{
		{"intent.toml", tomlConfig},
		{"intent.yaml", yamlConfig},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f, err := Load(writeFile(t, tc.name, tc.content))
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if f.Hooks != "hooks.lua" {
				t.Errorf("Hooks = %q, want hooks.lua", f.Hooks)
			}
			if f.Log.SlogLevel() != slog.LevelDebug {
				t.Errorf("SlogLevel() = %v, want debug", f.Log.SlogLevel())
			}
			if len(f.Bindings) != 2 {
				t.Fatalf("len(Bindings) = %d, want 2", len(f.Bindings))
			}

			b, err := f.Lookup("menubar")
			if err != nil {
				t.Fatalf("Lookup() error = %v", err)
			}
			if b.MoveThreshold.Std() != 100*time.Millisecond {
				t.Errorf("MoveThreshold = %v, want 100ms", b.MoveThreshold.Std())
			}
			if b.IdleThreshold.Std() != 2*time.Second {
				t.Errorf("IdleThreshold = %v, want 2s", b.IdleThreshold.Std())
			}
			if b.ActivationDelay.Std() != intent.DefaultActivationDelay {
				t.Errorf("ActivationDelay = %v, want %v", b.ActivationDelay.Std(), intent.DefaultActivationDelay)
			}
			if b.ScrollThreshold != 8 {
				t.Errorf("ScrollThreshold = %v, want 8", b.ScrollThreshold)
			}
			if b.Attr != intent.DefaultAttr {
				t.Errorf("Attr = %q, want %q", b.Attr, intent.DefaultAttr)
			}
		})
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	f, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if f.Defaults.MoveThreshold.Std() != intent.DefaultMoveThreshold {
		t.Errorf("MoveThreshold = %v, want %v", f.Defaults.MoveThreshold.Std(), intent.DefaultMoveThreshold)
	}
	if len(f.Bindings) != 0 {
		t.Errorf("len(Bindings) = %d, want 0", len(f.Bindings))
	}
}

func TestLoadParseError(t *testing.T) {
	_, err := Load(writeFile(t, "bad.toml", "[defaults]\nmove_threshold = \"soon\"\n"))
	if err == nil {
		t.Fatal("Load() error = nil, want parse error")
	}
	var pe *loader.ParseError
	if !errors.As(err, &pe) {
		t.Errorf("Load() error = %T, want *loader.ParseError", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(f *File)
		paths []string
	}{
		{"defaults ok", func(f *File) {}, nil},
		{"bad level", func(f *File) { f.Log.Level = "loud" }, []string{"log.level"}},
		{"bad format", func(f *File) { f.Log.Format = "xml" }, []string{"log.format"}},
		{"negative idle", func(f *File) { f.Defaults.IdleThreshold = -1 }, []string{"defaults.idle_threshold"}},
		{"wildcard topic", func(f *File) { f.Defaults.ForceLeaveTopic = "intent.*" }, []string{"defaults.force_leave_topic"}},
		{"unnamed binding", func(f *File) {
			f.Bindings = []Binding{{Root: "bar"}}
		}, []string{"binding[0].name"}},
		{"duplicate binding", func(f *File) {
			f.Bindings = []Binding{{Name: "a", Root: "bar"}, {Name: "a", Root: "bar"}}
		}, []string{"binding[1].name"}},
		{"no root no selector", func(f *File) {
			f.Bindings = []Binding{{Name: "a"}}
		}, []string{"binding[0].selector"}},
		{"bad selector", func(f *File) {
			f.Bindings = []Binding{{Name: "a", Selector: "div > span"}}
		}, []string{"binding[0].selector"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Default()
			tt.edit(f)
			err := f.Validate()
			if len(tt.paths) == 0 {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, ErrValidationFailed) {
				t.Fatalf("Validate() error = %v, want ErrValidationFailed", err)
			}
			var errs ValidationErrors
			if !errors.As(err, &errs) {
				t.Fatalf("Validate() error = %T, want ValidationErrors", err)
			}
			if len(errs) != len(tt.paths) {
				t.Fatalf("Validate() = %v, want paths %v", errs, tt.paths)
			}
			for i, p := range tt.paths {
				if errs[i].Path != p {
					t.Errorf("errs[%d].Path = %q, want %q", i, errs[i].Path, p)
				}
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	f := Default()
	env := loader.NewEnvLoaderFrom(loader.DefaultEnvPrefix, []string{
		"HOVERINTENT_LOG_LEVEL=warn",
		"HOVERINTENT_DEFAULTS_IDLE_THRESHOLD=3s",
		"HOVERINTENT_DEFAULTS_SCROLL_THRESHOLD=12.5",
	}).Load()

	if err := f.ApplyEnv(env); err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}
	if f.Log.SlogLevel() != slog.LevelWarn {
		t.Errorf("SlogLevel() = %v, want warn", f.Log.SlogLevel())
	}
	if f.Defaults.IdleThreshold.Std() != 3*time.Second {
		t.Errorf("IdleThreshold = %v, want 3s", f.Defaults.IdleThreshold.Std())
	}
	if f.Defaults.ScrollThreshold != 12.5 {
		t.Errorf("ScrollThreshold = %v, want 12.5", f.Defaults.ScrollThreshold)
	}

	err := f.ApplyEnv(map[string]string{"defaults.moveThreshold": "fast"})
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Code != ErrCodeTypeMismatch {
		t.Errorf("ApplyEnv(bad) error = %v, want type mismatch", err)
	}
}

func TestBindingIntent(t *testing.T) {
	f := Default()
	f.Bindings = []Binding{{Name: "menubar", Selector: ".menu-item", ScrollThreshold: 4}}

	b, err := f.Lookup("menubar")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	cfg, err := b.Intent()
	if err != nil {
		t.Fatalf("Intent() error = %v", err)
	}
	if cfg.MoveThreshold != intent.DefaultMoveThreshold {
		t.Errorf("MoveThreshold = %v, want %v", cfg.MoveThreshold, intent.DefaultMoveThreshold)
	}
	if cfg.ScrollThreshold != 4 {
		t.Errorf("ScrollThreshold = %v, want 4", cfg.ScrollThreshold)
	}
	if cfg.ForceLeaveTopic != intent.DefaultForceLeaveTopic {
		t.Errorf("ForceLeaveTopic = %q, want %q", cfg.ForceLeaveTopic, intent.DefaultForceLeaveTopic)
	}

	item := surface.NewElement("file", geom.RectFromSize(0, 0, 4, 1)).AddClass("menu-item")
	other := surface.NewElement("clock", geom.RectFromSize(0, 0, 4, 1))
	if !cfg.Selector(item) || cfg.Selector(other) {
		t.Error("Selector does not match .menu-item")
	}

	if _, err := f.Lookup("nope"); !errors.Is(err, ErrBindingNotFound) {
		t.Errorf("Lookup(nope) error = %v, want ErrBindingNotFound", err)
	}
}

func TestDurationText(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("1.5s")); err != nil {
		t.Fatalf("UnmarshalText() error = %v", err)
	}
	if d.Std() != 1500*time.Millisecond {
		t.Errorf("Std() = %v, want 1.5s", d.Std())
	}
	b, _ := d.MarshalText()
	if string(b) != "1.5s" {
		t.Errorf("MarshalText() = %q, want 1.5s", b)
	}
}
