// Package config provides the configuration system for ted.
//
// # Sources
//
// Settings are resolved from three sources, higher overriding lower:
//
//	┌─────────────────────────────┐
//	│  3. Environment (TED_*)     │  ← Highest priority
//	├─────────────────────────────┤
//	│  2. Config file             │  ← ~/.config/ted/config.toml (or .yaml)
//	├─────────────────────────────┤
//	│  1. Built-in defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// A missing config file is not an error. Command line flags are applied by
// the caller after loading.
//
// # Sub-packages
//
//   - loader: file (TOML, YAML) and environment loading, map merging
//   - watcher: fsnotify-based change notification for live reload
//
// # Basic Usage
//
//	cfg, err := config.Load(config.DefaultPath())
//	if err != nil {
//	    return err
//	}
//	timeout := cfg.ReadTimeout()
//
// # File Format
//
//	[editor]
//	eob_char = "~"
//	welcome = true
//
//	[terminal]
//	read_timeout_ms = 100
//	escape_timeout_ms = 100
//	alternate_screen = true
//
//	[log]
//	level = "info"
//	file = "/tmp/ted.log"
//
//	[keymap]
//	"Ctrl+S" = "buffer.next"
//	"Ctrl+Q" = "none"
package config
