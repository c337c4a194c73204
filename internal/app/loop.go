//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package app

import (
	"errors"
	"runtime/debug"

	"github.com/dshills/ted/internal/config"
	"github.com/dshills/ted/internal/editor"
	"github.com/dshills/ted/internal/term"
)

// Run opens the startup files, takes over the terminal and runs the main
// loop until an action ends it. A normal quit returns ErrQuit; any other
// error is fatal. Terminal cleanup is left to the registry.
func (app *Application) Run() (err error) {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	defer func() {
		if r := recover(); r != nil {
			err = NewRecoveredPanicError(r, string(debug.Stack()))
		}
	}()

	if err := app.openFiles(); err != nil {
		return err
	}
	if err := app.driver.Init(); err != nil {
		return &InitError{Component: "terminal", Err: err}
	}
	if err := app.updateScreenSize(); err != nil {
		return err
	}
	app.driver.WatchResize()

	size := app.state.ScreenSize()
	app.logger.Info("started with %d buffer(s) on %dx%d", len(app.state.Buffers()), size.Cols, size.Rows)

	return app.eventLoop()
}

// openFiles loads every startup file, or opens one empty buffer if there
// are none. Any failure is fatal.
func (app *Application) openFiles() error {
	if len(app.opts.Files) == 0 {
		app.state.OpenNewBuffer()
		return nil
	}
	for _, path := range app.opts.Files {
		b, err := app.state.OpenFile(path)
		if err != nil {
			return err
		}
		app.logger.Debug("opened %s (%d lines)", path, b.LineCount())
	}
	return nil
}

// updateScreenSize queries the window size into the editor state.
func (app *Application) updateScreenSize() error {
	rows, cols, err := app.driver.Size()
	if err != nil {
		return NewComponentError("terminal", "get window size", err)
	}
	app.state.SetScreenSize(editor.ScreenSize{Rows: rows, Cols: cols})
	return nil
}

// eventLoop renders, reads one event and dispatches it, forever.
func (app *Application) eventLoop() error {
	log := app.logger.WithComponent("loop")

	for {
		app.drainConfigEvents()

		if err := app.renderer.Render(app.state); err != nil {
			log.Debug("render: %v", err)
		}

		ev, status, err := app.decoder.Next()
		if err != nil {
			return NewComponentError("terminal", "read", err)
		}

		switch status {
		case term.ReadTimeout:
			continue
		case term.ReadResize:
			if err := app.updateScreenSize(); err != nil {
				return err
			}
			size := app.state.ScreenSize()
			log.Debug("resized to %dx%d", size.Cols, size.Rows)
			continue
		}

		if err := app.dispatcher.Dispatch(ev); err != nil {
			if errors.Is(err, ErrQuit) {
				log.Info("quit")
				return ErrQuit
			}
			return NewComponentError("dispatcher", ev.String(), err)
		}
	}
}

// drainConfigEvents applies pending config file changes without blocking.
func (app *Application) drainConfigEvents() {
	if app.watcher == nil {
		return
	}
	for {
		select {
		case ev, ok := <-app.watcher.Events():
			if !ok {
				app.watcher = nil
				return
			}
			app.logger.WithComponent("config").Debug("%s %s", ev.Op, ev.Path)
			app.reloadConfig()
		case err, ok := <-app.watcher.Errors():
			if !ok {
				app.watcher = nil
				return
			}
			app.logger.WithComponent("config").Warn("watch: %v", err)
		default:
			return
		}
	}
}

// reloadConfig re-reads the config file. On error the current settings
// stay in effect. The alternate screen setting only applies at startup.
func (app *Application) reloadConfig() {
	log := app.logger.WithComponent("config")

	cfg, err := config.Load(app.opts.ConfigPath)
	if err != nil {
		log.Warn("reload %s: %v", app.opts.ConfigPath, err)
		return
	}

	app.config = cfg
	app.applySettings(cfg)
	app.decoder.SetTimeouts(cfg.ReadTimeout(), cfg.EscapeTimeout())
	if app.opts.Logger == nil {
		app.logger.SetLevel(app.logLevel(cfg))
	}
	log.Info("reloaded %s", app.opts.ConfigPath)
}
