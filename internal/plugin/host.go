package plugin

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/ted/internal/dispatcher"
	"github.com/dshills/ted/internal/editor"
)

// DefaultTimeout bounds a single call into Lua.
const DefaultTimeout = 2 * time.Second

// ScriptName is the init script's file name.
const ScriptName = "init.lua"

// Logger receives script output and diagnostics.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type binding struct {
	keys   string
	action string
}

// Host owns the Lua state for one editor session. Like the rest of the
// editor it must only be used from the main loop goroutine.
type Host struct {
	L          *lua.LState
	dispatcher *dispatcher.Dispatcher
	state      *editor.State
	log        Logger

	path     string
	timeout  time.Duration
	bindings []binding
	eob      byte // 0 when the script left the marker alone
	quit     bool
	closed   bool
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithTimeout sets the deadline for each call into Lua.
func WithTimeout(d time.Duration) HostOption {
	return func(h *Host) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// DefaultScriptPath returns the init script path next to configPath.
func DefaultScriptPath(configPath string) string {
	return filepath.Join(filepath.Dir(configPath), ScriptName)
}

// NewHost creates a host whose scripts drive d.
func NewHost(d *dispatcher.Dispatcher, log Logger, opts ...HostOption) *Host {
	h := &Host{
		dispatcher: d,
		state:      d.State(),
		log:        log,
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}

	h.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(h.L)
	h.installAPI()
	return h
}

// openSafeLibraries opens the libraries that cannot reach the file system
// or the process, then removes the base functions that load code.
func openSafeLibraries(L *lua.LState) {
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.open))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// Path returns the loaded script path, or "".
func (h *Host) Path() string {
	return h.path
}

// Load runs the script at path. A missing file returns ErrNoScript.
func (h *Host) Load(path string) error {
	if h.closed {
		return ErrClosed
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNoScript
		}
		return fmt.Errorf("plugin: %w", err)
	}

	h.path = path
	return h.protect(func() error {
		return h.L.DoFile(path)
	})
}

// DoString runs code in the host's Lua state.
func (h *Host) DoString(code string) error {
	if h.closed {
		return ErrClosed
	}
	return h.protect(func() error {
		return h.L.DoString(code)
	})
}

// protect runs fn under the call deadline and turns Lua panics into errors.
func (h *Host) protect(fn func() error) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()
	h.L.SetContext(ctx)
	defer h.L.RemoveContext()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// ApplyBindings re-applies the bindings made by the script, in the order it
// made them. The keymap is rebuilt on every configuration reload.
func (h *Host) ApplyBindings() error {
	var errs []error
	for _, b := range h.bindings {
		if err := h.dispatcher.Bind(b.keys, b.action); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ApplyOverrides re-applies the display settings the script changed. The
// configuration sets them first on startup and on every reload.
func (h *Host) ApplyOverrides() {
	if h.eob != 0 {
		h.state.SetEOBChar(h.eob)
	}
}

// Bindings returns the script's key bindings as key specification to action.
// Later bindings of the same specification win.
func (h *Host) Bindings() map[string]string {
	out := make(map[string]string, len(h.bindings))
	for _, b := range h.bindings {
		out[b.keys] = b.action
	}
	return out
}

// Close releases the Lua state. Script actions fail afterwards.
func (h *Host) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	h.L.Close()
	return nil
}

// scriptAction wraps a Lua function as a dispatcher action. Script errors
// are logged; only ted.quit ends the session.
func (h *Host) scriptAction(name string, fn *lua.LFunction) dispatcher.Action {
	return func() error {
		if h.closed {
			return fmt.Errorf("action %s: %w", name, ErrClosed)
		}

		h.quit = false
		err := h.protect(func() error {
			return h.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true})
		})
		if err != nil {
			h.log.Warn("script action %s: %s", name, firstLine(err.Error()))
		}
		if h.quit {
			h.quit = false
			return dispatcher.ErrQuit
		}
		return nil
	}
}

// firstLine drops the Lua stack traceback from an error message.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
