//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package term

import (
	"errors"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"

	"github.com/dshills/ted/internal/lifecycle"
)

// Driver owns the terminal for the lifetime of the editor.
type Driver struct {
	dev      Device
	registry *lifecycle.Registry

	// original is the snapshot taken by EnableRawMode; nil when not raw.
	original *unix.Termios

	useAltScreen bool
	inAltScreen  bool

	resized atomic.Bool

	sigMu sync.Mutex
	sigs  chan os.Signal
	done  chan struct{}
}

// Option configures a Driver.
type Option func(*Driver)

// WithAlternateScreen controls whether Init switches to the alternate screen.
func WithAlternateScreen(enabled bool) Option {
	return func(d *Driver) {
		d.useAltScreen = enabled
	}
}

// NewDriver creates a driver for dev. Teardown is registered with registry
// when raw mode is enabled; registry may be nil in tests.
func NewDriver(dev Device, registry *lifecycle.Registry, opts ...Option) *Driver {
	d := &Driver{
		dev:          dev,
		registry:     registry,
		useAltScreen: true,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Init enters the alternate screen and raw mode.
func (d *Driver) Init() error {
	if d.useAltScreen {
		d.EnterAlternateScreen()
	}
	if err := d.EnableRawMode(); err != nil {
		d.EnterMainScreen()
		return err
	}
	return nil
}

// EnableRawMode captures the current attributes and switches the terminal
// to raw, 8-bit, non-echoing input with a 100ms read timeout. Restoring is
// registered in the terminal ring.
func (d *Driver) EnableRawMode() error {
	if d.original != nil {
		return nil
	}

	orig, err := d.dev.GetAttr()
	if err != nil {
		return NewOSError("tcgetattr", err)
	}

	raw := *orig
	MakeRaw(&raw)
	if err := d.dev.SetAttr(&raw); err != nil {
		return NewOSError("tcsetattr", err)
	}

	saved := *orig
	d.original = &saved

	if d.registry != nil {
		if err := d.registry.Register(lifecycle.RingTerminal, "terminal", d.restore); err != nil {
			_ = d.DisableRawMode()
			return err
		}
	}
	return nil
}

// MakeRaw clears the input, output and local flags that cooked mode relies on.
func MakeRaw(t *unix.Termios) {
	t.Iflag &^= unix.IXON | unix.ICRNL | unix.BRKINT | unix.INPCK | unix.ISTRIP
	t.Oflag &^= unix.OPOST
	t.Cflag |= unix.CS8
	t.Lflag &^= unix.ECHO | unix.ICANON | unix.ISIG | unix.IEXTEN
	t.Cc[unix.VMIN] = 0
	t.Cc[unix.VTIME] = 1
}

// DisableRawMode restores the attributes captured by EnableRawMode.
// Calling it when the terminal is not raw does nothing.
func (d *Driver) DisableRawMode() error {
	if d.original == nil {
		return nil
	}
	orig := d.original
	d.original = nil
	if err := d.dev.SetAttr(orig); err != nil {
		return NewOSError("tcsetattr", err)
	}
	return nil
}

// IsRaw reports whether raw mode is active.
func (d *Driver) IsRaw() bool {
	return d.original != nil
}

// restore is the terminal ring cleanup.
func (d *Driver) restore() error {
	d.StopResize()
	err := d.DisableRawMode()
	d.EnterMainScreen()
	return err
}

// Size returns the terminal dimensions.
func (d *Driver) Size() (rows, cols int, err error) {
	ws, err := d.dev.WindowSize()
	if err != nil {
		return 0, 0, NewOSError("ioctl(TIOCGWINSZ)", err)
	}
	if ws.Col == 0 {
		return 0, 0, NewOSError("ioctl(TIOCGWINSZ)", ErrNoSize)
	}
	return int(ws.Row), int(ws.Col), nil
}

// ReadByte reads one byte, waiting at most timeout.
// A pending resize is reported before any byte is consumed.
func (d *Driver) ReadByte(timeout time.Duration) (byte, ReadStatus, error) {
	if d.resized.Swap(false) {
		return 0, ReadResize, nil
	}

	var buf [1]byte
	n, err := d.dev.ReadTimeout(buf[:], timeout)
	switch {
	case err == nil && n == 1:
		return buf[0], ReadOK, nil
	case err == nil, errors.Is(err, unix.EAGAIN):
	case errors.Is(err, unix.EINTR):
	default:
		return 0, ReadTimeout, NewOSError("read", err)
	}

	if d.resized.Swap(false) {
		return 0, ReadResize, nil
	}
	return 0, ReadTimeout, nil
}

// Write writes p verbatim. Short writes are not retried.
func (d *Driver) Write(p []byte) (int, error) {
	return d.dev.Write(p)
}

// WriteString writes s verbatim.
func (d *Driver) WriteString(s string) (int, error) {
	return d.dev.Write([]byte(s))
}

// EnterAlternateScreen switches to the alternate screen buffer.
func (d *Driver) EnterAlternateScreen() {
	if d.inAltScreen {
		return
	}
	_, _ = d.WriteString(AltScreenEnter)
	d.inAltScreen = true
}

// EnterMainScreen switches back to the main screen buffer.
func (d *Driver) EnterMainScreen() {
	if !d.inAltScreen {
		return
	}
	_, _ = d.WriteString(AltScreenLeave)
	d.inAltScreen = false
}

// InAlternateScreen reports whether the alternate screen is active.
func (d *Driver) InAlternateScreen() bool {
	return d.inAltScreen
}

// NotifyResize marks that the window size changed. It only stores a flag and
// is safe to call from any goroutine.
func (d *Driver) NotifyResize() {
	d.resized.Store(true)
}

// WatchResize starts forwarding SIGWINCH to NotifyResize.
func (d *Driver) WatchResize() {
	d.sigMu.Lock()
	defer d.sigMu.Unlock()
	if d.sigs != nil {
		return
	}

	sigs := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(sigs, unix.SIGWINCH)
	d.sigs, d.done = sigs, done

	go func() {
		for {
			select {
			case <-sigs:
				d.NotifyResize()
			case <-done:
				return
			}
		}
	}()
}

// StopResize stops watching for SIGWINCH.
func (d *Driver) StopResize() {
	d.sigMu.Lock()
	defer d.sigMu.Unlock()
	if d.sigs == nil {
		return
	}
	signal.Stop(d.sigs)
	close(d.done)
	d.sigs, d.done = nil, nil
}
