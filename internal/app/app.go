//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package app

import (
	"errors"
	"os"
	"sync/atomic"

	"github.com/dshills/ted/internal/config"
	"github.com/dshills/ted/internal/config/watcher"
	"github.com/dshills/ted/internal/dispatcher"
	"github.com/dshills/ted/internal/editor"
	"github.com/dshills/ted/internal/input/decoder"
	"github.com/dshills/ted/internal/lifecycle"
	"github.com/dshills/ted/internal/plugin"
	"github.com/dshills/ted/internal/renderer"
	"github.com/dshills/ted/internal/term"
)

// Application owns every editor component for one session.
type Application struct {
	opts     Options
	registry *lifecycle.Registry
	logger   *Logger
	config   *config.Config

	state      *editor.State
	dispatcher *dispatcher.Dispatcher
	renderer   *renderer.Renderer
	driver     *term.Driver
	decoder    *decoder.Decoder
	watcher    *watcher.Watcher
	plugin     *plugin.Host

	running atomic.Bool
}

// Options configures the application.
type Options struct {
	// ConfigPath is the configuration file. Empty means config.DefaultPath().
	ConfigPath string

	// ScriptPath is the Lua init script. Empty means init.lua next to
	// the configuration file.
	ScriptPath string

	// NoScript skips the init script.
	NoScript bool

	// Files are opened in order on startup; the last one is active.
	Files []string

	// Debug raises the log level to debug.
	Debug bool

	// LogLevel overrides log.level from the config file when set.
	LogLevel string

	// LogFile overrides log.file from the config file when set.
	LogFile string

	// Version is shown in the welcome banner.
	Version string

	// WatchConfig reloads the configuration file when it changes.
	WatchConfig bool

	// Registry receives cleanup actions. A new one is created if nil.
	Registry *lifecycle.Registry

	// Device is the terminal. Defaults to stdin/stdout.
	Device term.Device

	// Logger overrides the logger built from the configuration.
	Logger *Logger
}

// New creates an Application. Nothing touches the terminal until Run.
func New(opts Options) (*Application, error) {
	app := &Application{opts: opts}
	if err := app.bootstrap(); err != nil {
		return nil, err
	}
	return app, nil
}

// bootstrap builds the components in dependency order.
func (app *Application) bootstrap() error {
	app.registry = app.opts.Registry
	if app.registry == nil {
		app.registry = lifecycle.NewRegistry()
	}
	if app.opts.ConfigPath == "" {
		app.opts.ConfigPath = config.DefaultPath()
	}

	// A broken config file is reported once logging is up.
	cfg, cfgErr := config.Load(app.opts.ConfigPath)
	if cfgErr != nil {
		cfg = config.Default()
	}
	app.config = cfg

	if err := app.initLogger(); err != nil {
		return &InitError{Component: "logger", Err: err}
	}
	if cfgErr != nil {
		app.logger.Warn("config %s: %v; using defaults", app.opts.ConfigPath, cfgErr)
	}

	app.state = editor.NewState()
	app.dispatcher = dispatcher.New(app.state)
	if !app.opts.NoScript {
		app.initPlugin()
	}
	app.applySettings(cfg)

	dev := app.opts.Device
	if dev == nil {
		dev = term.NewDevice(os.Stdin, os.Stdout)
	}
	app.driver = term.NewDriver(dev, app.registry,
		term.WithAlternateScreen(cfg.Terminal.AlternateScreen))
	app.decoder = decoder.New(app.driver,
		decoder.WithReadTimeout(cfg.ReadTimeout()),
		decoder.WithEscapeTimeout(cfg.EscapeTimeout()))
	app.renderer = renderer.New(app.driver,
		renderer.WithWelcome(renderer.DefaultWelcome(app.opts.Version)))

	if app.opts.WatchConfig {
		app.initWatcher()
	}
	return nil
}

// initLogger sets up the logger from options and configuration. An opened
// log file is closed in the services ring.
func (app *Application) initLogger() error {
	if app.opts.Logger != nil {
		app.logger = app.opts.Logger
		return nil
	}

	cfg := DefaultLoggerConfig()
	cfg.Level = app.logLevel(app.config)

	path := app.config.Log.File
	if app.opts.LogFile != "" {
		path = app.opts.LogFile
	}
	if path != "" {
		f, err := OpenLogFile(path)
		if err != nil {
			return WrapError(err, "open log file %s", path)
		}
		if err := app.registry.Register(lifecycle.RingServices, "log file", f.Close); err != nil {
			_ = f.Close()
			return err
		}
		cfg.Output = f
	}

	app.logger = NewLogger(cfg)
	return nil
}

// logLevel resolves the log level; flags win over the config file.
func (app *Application) logLevel(cfg *config.Config) LogLevel {
	switch {
	case app.opts.Debug:
		return LogLevelDebug
	case app.opts.LogLevel != "":
		return ParseLogLevel(app.opts.LogLevel)
	default:
		return ParseLogLevel(cfg.Log.Level)
	}
}

// applySettings pushes configuration into the editor state, then the
// script's overrides, and rebuilds the keymap: defaults, then script
// bindings, then the config file.
func (app *Application) applySettings(cfg *config.Config) {
	app.state.SetEOBChar(cfg.EOBByte())
	app.state.SetShowWelcome(cfg.Editor.Welcome)
	if app.plugin != nil {
		app.plugin.ApplyOverrides()
	}

	app.state.SetKeymap(nil)
	if err := app.dispatcher.InstallDefaults(); err != nil {
		app.logger.Error("default keymap: %v", err)
	}
	if app.plugin != nil {
		if err := app.plugin.ApplyBindings(); err != nil {
			app.logger.WithComponent("plugin").Warn("%v", err)
		}
	}
	if err := app.dispatcher.ApplyBindings(cfg.Keymap); err != nil {
		app.logger.WithComponent("keymap").Warn("%v", err)
	}
}

// initPlugin runs the Lua init script. A missing script is not an error;
// a failing one keeps whatever it registered before the failure.
func (app *Application) initPlugin() {
	path := app.opts.ScriptPath
	if path == "" {
		path = plugin.DefaultScriptPath(app.opts.ConfigPath)
	}
	log := app.logger.WithComponent("plugin")

	host := plugin.NewHost(app.dispatcher, log)
	err := host.Load(path)
	if errors.Is(err, plugin.ErrNoScript) {
		_ = host.Close()
		return
	}
	if regErr := app.registry.Register(lifecycle.RingServices, "plugin", host.Close); regErr != nil {
		_ = host.Close()
		log.Warn("scripting disabled: %v", regErr)
		return
	}
	app.plugin = host
	if err != nil {
		log.Warn("%s: %v", path, err)
		return
	}
	log.Info("loaded %s", path)
}

// initWatcher starts watching the config file. Failure only disables
// live reload.
func (app *Application) initWatcher() {
	w, err := watcher.New(app.opts.ConfigPath)
	if err != nil {
		app.logger.WithComponent("config").Warn("live reload disabled: %v", err)
		return
	}
	if err := app.registry.Register(lifecycle.RingServices, "config watcher", w.Close); err != nil {
		_ = w.Close()
		app.logger.WithComponent("config").Warn("live reload disabled: %v", err)
		return
	}
	app.watcher = w
}

// Logger returns the application's logger.
func (app *Application) Logger() *Logger {
	if app.logger == nil {
		return NullLogger
	}
	return app.logger
}

// Config returns the active configuration.
func (app *Application) Config() *config.Config {
	return app.config
}

// State returns the editor state.
func (app *Application) State() *editor.State {
	return app.state
}

// Driver returns the terminal driver.
func (app *Application) Driver() *term.Driver {
	return app.driver
}

// Dispatcher returns the key dispatcher.
func (app *Application) Dispatcher() *dispatcher.Dispatcher {
	return app.dispatcher
}

// Plugin returns the script host, or nil when no script is loaded.
func (app *Application) Plugin() *plugin.Host {
	return app.plugin
}

// Registry returns the cleanup registry.
func (app *Application) Registry() *lifecycle.Registry {
	return app.registry
}
