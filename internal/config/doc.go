// Package config loads hover-intent binding definitions.
//
// A configuration file, TOML or YAML, holds a [defaults] table and any number
// of named bindings:
//
//	hooks = "~/.config/hoverintent/hooks.lua"
//
//	[log]
//	level = "debug"
//	path  = "/tmp/hoverdemo.log"
//
//	[defaults]
//	move_threshold = "150ms"
//	idle_threshold = "1.5s"
//
//	[[binding]]
//	name     = "menubar"
//	root     = "menubar"
//	selector = ".menu-item"
//
// Unset binding fields fall back to [defaults], and unset defaults fall back
// to the intent package defaults. Environment variables prefixed with
// HOVERINTENT_ override file values; see loader.EnvLoader.
//
// # Sub-packages
//
//   - loader: file decoding (TOML, YAML) and environment variables
//   - watcher: file watching for live reload
//
// # Basic Usage
//
//	f, err := config.Load("hoverdemo.toml")
//	if err != nil {
//	    return err
//	}
//	b, err := f.Lookup("menubar")
//	if err != nil {
//	    return err
//	}
//	cfg, err := b.Intent()
package config
