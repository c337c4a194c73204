package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dshills/ted/internal/config/loader"
)

// Log levels accepted by log.level.
var logLevels = []string{"debug", "info", "warn", "error"}

// Config is the resolved editor configuration.
type Config struct {
	Editor   EditorConfig      `toml:"editor"`
	Terminal TerminalConfig    `toml:"terminal"`
	Log      LogConfig         `toml:"log"`
	Keymap   map[string]string `toml:"keymap"`

	// Path is the file the configuration was loaded from, if any.
	Path string `toml:"-"`
}

// EditorConfig holds editor display settings.
type EditorConfig struct {
	EOBChar string `toml:"eob_char"`
	Welcome bool   `toml:"welcome"`
}

// TerminalConfig holds terminal I/O settings.
type TerminalConfig struct {
	ReadTimeoutMS   int  `toml:"read_timeout_ms"`
	EscapeTimeoutMS int  `toml:"escape_timeout_ms"`
	AlternateScreen bool `toml:"alternate_screen"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Editor: EditorConfig{
			EOBChar: "~",
			Welcome: true,
		},
		Terminal: TerminalConfig{
			ReadTimeoutMS:   100,
			EscapeTimeoutMS: 100,
			AlternateScreen: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/ted/config.toml, falling back to
// ~/.config/ted/config.toml. It returns "" if no home directory is known.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "ted", "config.toml")
}

// Load resolves the configuration from defaults, the file at path and the
// environment. An empty path skips the file.
func Load(path string) (*Config, error) {
	return LoadFS(loader.DefaultFS(), path)
}

// LoadFS is Load reading the file through fsys.
func LoadFS(fsys loader.FileSystem, path string) (*Config, error) {
	data := make(map[string]any)

	if path != "" {
		l, err := loader.ForPath(fsys, path)
		if err != nil {
			return nil, err
		}
		fileData, err := l.Load()
		if err != nil {
			return nil, err
		}
		data = loader.DeepMerge(data, fileData)
	}

	env := loader.NewEnvLoader(loader.DefaultEnvPrefix)
	env.KeepStrings("editor.eob_char", "log.level", "log.file")
	envData, err := env.Load()
	if err != nil {
		return nil, err
	}
	data = loader.DeepMerge(data, envData)

	cfg := Default()
	source := path
	if source == "" {
		source = "<environment>"
	}
	if err := loader.DecodeTOML(source, data, cfg); err != nil {
		return nil, err
	}
	cfg.Path = path

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every setting and reports all failures together.
func (c *Config) Validate() error {
	var errs []error

	if len(c.Editor.EOBChar) != 1 {
		errs = append(errs, &ValidationError{
			Path:    "editor.eob_char",
			Message: "must be a single byte",
			Value:   c.Editor.EOBChar,
		})
	}
	if c.Terminal.ReadTimeoutMS <= 0 {
		errs = append(errs, &ValidationError{
			Path:    "terminal.read_timeout_ms",
			Message: "must be positive",
			Value:   c.Terminal.ReadTimeoutMS,
		})
	}
	if c.Terminal.EscapeTimeoutMS <= 0 {
		errs = append(errs, &ValidationError{
			Path:    "terminal.escape_timeout_ms",
			Message: "must be positive",
			Value:   c.Terminal.EscapeTimeoutMS,
		})
	}
	if !validLogLevel(c.Log.Level) {
		errs = append(errs, &ValidationError{
			Path:    "log.level",
			Message: "must be one of " + strings.Join(logLevels, ", "),
			Value:   c.Log.Level,
		})
	}

	return errors.Join(errs...)
}

func validLogLevel(level string) bool {
	level = strings.ToLower(level)
	for _, l := range logLevels {
		if l == level {
			return true
		}
	}
	return false
}

// EOBByte returns the end-of-buffer marker.
func (c *Config) EOBByte() byte {
	if c.Editor.EOBChar == "" {
		return '~'
	}
	return c.Editor.EOBChar[0]
}

// ReadTimeout returns the idle read timeout.
func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.Terminal.ReadTimeoutMS) * time.Millisecond
}

// EscapeTimeout returns how long to wait for the rest of an escape sequence.
func (c *Config) EscapeTimeout() time.Duration {
	return time.Duration(c.Terminal.EscapeTimeoutMS) * time.Millisecond
}
