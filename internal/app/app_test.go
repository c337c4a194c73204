//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package app

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/dshills/ted/internal/editor"
	"github.com/dshills/ted/internal/input/key"
	"github.com/dshills/ted/internal/lifecycle"
	"github.com/dshills/ted/internal/term"
)

// fakeTerminal is an in-memory terminal. Reads fail with EIO once the
// input is exhausted so a broken loop ends instead of spinning.
type fakeTerminal struct {
	attr   unix.Termios
	getErr error

	ws unix.Winsize

	input  []byte
	onRead func() error

	out bytes.Buffer
}

func newFakeTerminal(input string) *fakeTerminal {
	t := &fakeTerminal{ws: unix.Winsize{Row: 24, Col: 80}, input: []byte(input)}
	t.attr.Lflag = unix.ECHO | unix.ICANON | unix.ISIG
	t.attr.Iflag = unix.ICRNL | unix.IXON
	t.attr.Cc[unix.VMIN] = 1
	return t
}

func (f *fakeTerminal) GetAttr() (*unix.Termios, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	a := f.attr
	return &a, nil
}

func (f *fakeTerminal) SetAttr(t *unix.Termios) error {
	f.attr = *t
	return nil
}

func (f *fakeTerminal) WindowSize() (*unix.Winsize, error) {
	ws := f.ws
	return &ws, nil
}

func (f *fakeTerminal) ReadTimeout(p []byte, _ time.Duration) (int, error) {
	if f.onRead != nil {
		hook := f.onRead
		f.onRead = nil
		if err := hook(); err != nil {
			return 0, err
		}
	}
	if len(f.input) == 0 {
		return 0, unix.EIO
	}
	p[0] = f.input[0]
	f.input = f.input[1:]
	return 1, nil
}

func (f *fakeTerminal) Write(p []byte) (int, error) {
	return f.out.Write(p)
}

type testApp struct {
	app *Application
	reg *lifecycle.Registry
	dev *fakeTerminal
	log *bytes.Buffer
}

func newTestApp(t *testing.T, input string, configure func(*Options)) *testApp {
	t.Helper()

	var logBuf bytes.Buffer
	reg := lifecycle.NewRegistry()
	reg.SetOutput(&bytes.Buffer{})
	dev := newFakeTerminal(input)

	opts := Options{
		ConfigPath: filepath.Join(t.TempDir(), "config.toml"),
		Version:    "test",
		Registry:   reg,
		Device:     dev,
		Logger:     NewLogger(LoggerConfig{Level: LogLevelDebug, Output: &logBuf}),
	}
	if configure != nil {
		configure(&opts)
	}

	app, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return &testApp{app: app, reg: reg, dev: dev, log: &logBuf}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestApplication_QuitRestoresTerminal(t *testing.T) {
	ta := newTestApp(t, "\x11", nil)
	before := ta.dev.attr

	err := ta.app.Run()
	if !errors.Is(err, ErrQuit) {
		t.Fatalf("Run() error = %v, expected ErrQuit", err)
	}
	if ta.dev.attr == before {
		t.Error("terminal still cooked while running")
	}

	if err := ta.reg.Run(); err != nil {
		t.Fatalf("registry Run() error = %v", err)
	}
	if ta.dev.attr != before {
		t.Error("terminal attributes not restored")
	}

	out := ta.dev.out.String()
	if !strings.HasPrefix(out, term.AltScreenEnter) {
		t.Errorf("output does not start with alternate screen enter: %q", out[:min(len(out), 20)])
	}
	if !strings.HasSuffix(out, term.AltScreenLeave) {
		t.Error("output does not end with alternate screen leave")
	}
	if !strings.Contains(out, "ted editor") {
		t.Error("welcome banner not rendered for empty buffer")
	}
}

func TestApplication_TypedTextLandsInBuffer(t *testing.T) {
	ta := newTestApp(t, "hi\rx\x11", nil)

	if err := ta.app.Run(); !errors.Is(err, ErrQuit) {
		t.Fatalf("Run() error = %v, expected ErrQuit", err)
	}

	b := ta.app.State().ActiveBuffer()
	if b.LineCount() != 2 || b.Line(0) != "hi" || b.Line(1) != "x" {
		t.Errorf("buffer = %q/%q (%d lines), expected hi/x", b.Line(0), b.Line(1), b.LineCount())
	}
	if c := ta.app.State().Cursor(); c != (editor.Coord{Row: 1, Col: 1}) {
		t.Errorf("Cursor() = %+v, expected {1 1}", c)
	}
}

func TestApplication_Resize(t *testing.T) {
	ta := newTestApp(t, "\x11", nil)
	ta.dev.onRead = func() error {
		ta.dev.ws = unix.Winsize{Row: 30, Col: 100}
		ta.app.Driver().NotifyResize()
		return unix.EINTR
	}

	if err := ta.app.Run(); !errors.Is(err, ErrQuit) {
		t.Fatalf("Run() error = %v, expected ErrQuit", err)
	}
	if size := ta.app.State().ScreenSize(); size != (editor.ScreenSize{Rows: 30, Cols: 100}) {
		t.Errorf("ScreenSize() = %+v, expected 30x100", size)
	}
}

func TestApplication_OpensFiles(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.txt")
	second := filepath.Join(dir, "b.txt")
	writeFile(t, first, "one\n")
	writeFile(t, second, "two\nthree\n")

	ta := newTestApp(t, "\x11", func(o *Options) { o.Files = []string{first, second} })
	if err := ta.app.Run(); !errors.Is(err, ErrQuit) {
		t.Fatalf("Run() error = %v, expected ErrQuit", err)
	}

	if n := len(ta.app.State().Buffers()); n != 2 {
		t.Fatalf("Buffers() = %d, expected 2", n)
	}
	if active := ta.app.State().ActiveBuffer(); active.Path() != second {
		t.Errorf("active buffer = %s, expected %s", active.Path(), second)
	}
	if strings.Contains(ta.dev.out.String(), "ted editor") {
		t.Error("welcome banner drawn over a file")
	}
}

func TestApplication_MissingFileIsFatal(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.txt")
	ta := newTestApp(t, "", func(o *Options) { o.Files = []string{missing} })

	err := ta.app.Run()
	var fileErr *editor.FileError
	if !errors.As(err, &fileErr) {
		t.Fatalf("Run() error = %v, expected *editor.FileError", err)
	}
	if ta.dev.out.Len() != 0 {
		t.Errorf("terminal touched before file error: %q", ta.dev.out.String())
	}
}

func TestApplication_TerminalInitError(t *testing.T) {
	ta := newTestApp(t, "", nil)
	ta.dev.getErr = unix.ENOTTY

	err := ta.app.Run()
	var initErr *InitError
	if !errors.As(err, &initErr) || initErr.Component != "terminal" {
		t.Fatalf("Run() error = %v, expected terminal InitError", err)
	}
	if !errors.Is(err, unix.ENOTTY) {
		t.Error("expected InitError to wrap ENOTTY")
	}
}

func TestApplication_ReadErrorIsFatal(t *testing.T) {
	ta := newTestApp(t, "", nil)

	err := ta.app.Run()
	var compErr *ComponentError
	if !errors.As(err, &compErr) || compErr.Component != "terminal" || compErr.Action != "read" {
		t.Fatalf("Run() error = %v, expected terminal read error", err)
	}
	if !errors.Is(err, unix.EIO) {
		t.Error("expected read error to wrap EIO")
	}
}

func TestApplication_RunTwice(t *testing.T) {
	ta := newTestApp(t, "\x11", nil)
	ta.app.running.Store(true)

	if err := ta.app.Run(); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("Run() error = %v, expected ErrAlreadyRunning", err)
	}
}

func TestApplication_ConfigKeymap(t *testing.T) {
	ta := newTestApp(t, "\x18", func(o *Options) {
		writeFile(t, o.ConfigPath, "[keymap]\n\"Ctrl+X\" = \"editor.quit\"\n\"Ctrl+Z\" = \"no.such.action\"\n")
	})

	if err := ta.app.Run(); !errors.Is(err, ErrQuit) {
		t.Fatalf("Run() error = %v, expected ErrQuit", err)
	}
	if !strings.Contains(ta.log.String(), "no.such.action") {
		t.Errorf("expected warning for unknown action, log = %q", ta.log.String())
	}
}

func TestApplication_ConfigErrorFallsBackToDefaults(t *testing.T) {
	ta := newTestApp(t, "", func(o *Options) {
		writeFile(t, o.ConfigPath, "[editor\n")
	})

	if ta.app.Config().Editor.EOBChar != "~" {
		t.Errorf("EOBChar = %q, expected default", ta.app.Config().Editor.EOBChar)
	}
	if !strings.Contains(ta.log.String(), "using defaults") {
		t.Errorf("expected config warning, log = %q", ta.log.String())
	}
}

func TestApplication_ReloadConfig(t *testing.T) {
	ta := newTestApp(t, "", func(o *Options) {
		writeFile(t, o.ConfigPath, "[editor]\neob_char = \"~\"\n")
	})
	if ta.app.State().EOBChar() != '~' {
		t.Fatalf("EOBChar() = %q, expected '~'", ta.app.State().EOBChar())
	}

	writeFile(t, ta.app.opts.ConfigPath, "[editor]\neob_char = \"@\"\nwelcome = false\n\n[terminal]\nread_timeout_ms = 40\n")
	ta.app.reloadConfig()

	if ta.app.State().EOBChar() != '@' {
		t.Errorf("EOBChar() = %q, expected '@'", ta.app.State().EOBChar())
	}
	if ta.app.State().ShowWelcome() {
		t.Error("ShowWelcome() = true after reload")
	}
	if read, _ := ta.app.decoder.Timeouts(); read != 40*time.Millisecond {
		t.Errorf("read timeout = %v, expected 40ms", read)
	}

	// A broken file keeps the current settings.
	writeFile(t, ta.app.opts.ConfigPath, "[editor\n")
	ta.app.reloadConfig()
	if ta.app.State().EOBChar() != '@' {
		t.Errorf("EOBChar() = %q after failed reload, expected '@'", ta.app.State().EOBChar())
	}
}

func TestApplication_LogLevel(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		cfgLevel string
		expected LogLevel
	}{
		{"config", Options{}, "warn", LogLevelWarn},
		{"flag overrides config", Options{LogLevel: "error"}, "warn", LogLevelError},
		{"debug wins", Options{Debug: true, LogLevel: "error"}, "warn", LogLevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ta := newTestApp(t, "", nil)
			ta.app.opts.Debug = tt.opts.Debug
			ta.app.opts.LogLevel = tt.opts.LogLevel
			cfg := ta.app.Config()
			cfg.Log.Level = tt.cfgLevel
			if got := ta.app.logLevel(cfg); got != tt.expected {
				t.Errorf("logLevel() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestApplication_LogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ted.log")
	reg := lifecycle.NewRegistry()

	app, err := New(Options{
		ConfigPath: filepath.Join(t.TempDir(), "config.toml"),
		LogFile:    path,
		Debug:      true,
		Registry:   reg,
		Device:     newFakeTerminal(""),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	app.Logger().Debug("hello")

	if reg.Len(lifecycle.RingServices) != 1 {
		t.Errorf("services ring has %d actions, expected log file close", reg.Len(lifecycle.RingServices))
	}
	_ = reg.Run()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "[DEBUG] ted: hello") {
		t.Errorf("log file = %q", data)
	}
}

func TestApplication_InitScript(t *testing.T) {
	ta := newTestApp(t, "\x18", func(o *Options) {
		dir := filepath.Dir(o.ConfigPath)
		writeFile(t, filepath.Join(dir, "init.lua"), `
ted.action("sign.off", function()
    ted.insert("bye")
    ted.quit()
end)
ted.bind("Ctrl+X", "sign.off")
ted.bind("Ctrl+Y", "sign.off")
`)
		// The config file keymap wins over the script.
		writeFile(t, o.ConfigPath, "[keymap]\n\"Ctrl+Y\" = \"none\"\n")
	})

	if ta.app.Plugin() == nil {
		t.Fatalf("Plugin() = nil, log = %q", ta.log.String())
	}
	if _, ok := ta.app.State().Keymap().Lookup(key.Ctrl('Y')); ok {
		t.Error("Ctrl+Y still bound, expected config to unbind it")
	}

	if err := ta.app.Run(); !errors.Is(err, ErrQuit) {
		t.Fatalf("Run() error = %v, expected ErrQuit", err)
	}
	if got := ta.app.State().ActiveBuffer().Line(0); got != "bye" {
		t.Errorf("Line(0) = %q, expected bye", got)
	}

	// Script bindings survive a reload.
	ta.app.reloadConfig()
	if b, ok := ta.app.State().Keymap().Lookup(key.Ctrl('X')); !ok || b.Name != "sign.off" {
		t.Errorf("Ctrl+X after reload = %+v, %v", b, ok)
	}
}

func TestApplication_NoScript(t *testing.T) {
	ta := newTestApp(t, "", func(o *Options) {
		writeFile(t, filepath.Join(filepath.Dir(o.ConfigPath), "init.lua"), `error("should not run")`)
		o.NoScript = true
	})
	if ta.app.Plugin() != nil {
		t.Error("Plugin() != nil with NoScript")
	}

	broken := newTestApp(t, "", func(o *Options) {
		writeFile(t, filepath.Join(filepath.Dir(o.ConfigPath), "init.lua"), `error("broken script")`)
	})
	if !strings.Contains(broken.log.String(), "broken script") {
		t.Errorf("expected script error in log, got %q", broken.log.String())
	}
}

func TestApplication_ScriptDisplayOverrides(t *testing.T) {
	ta := newTestApp(t, "", func(o *Options) {
		writeFile(t, filepath.Join(filepath.Dir(o.ConfigPath), "init.lua"), `ted.set_eob("@")`)
		writeFile(t, o.ConfigPath, "[editor]\neob_char = \"#\"\n")
	})

	if got := ta.app.State().EOBChar(); got != '@' {
		t.Errorf("EOBChar() after startup = %q, expected '@'", got)
	}

	ta.app.reloadConfig()
	if got := ta.app.State().EOBChar(); got != '@' {
		t.Errorf("EOBChar() after reload = %q, expected '@'", got)
	}
}
