//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package term

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/dshills/ted/internal/lifecycle"
)

// fakeDevice is an in-memory terminal.
type fakeDevice struct {
	attr     unix.Termios
	setCalls int
	getErr   error
	setErr   error

	ws    unix.Winsize
	wsErr error

	input   []byte
	readErr error
	onRead  func()

	out bytes.Buffer
}

func newFakeDevice() *fakeDevice {
	d := &fakeDevice{ws: unix.Winsize{Row: 24, Col: 80}}
	d.attr.Iflag = unix.ICRNL | unix.IXON | unix.BRKINT
	d.attr.Oflag = unix.OPOST
	d.attr.Lflag = unix.ECHO | unix.ICANON | unix.ISIG | unix.IEXTEN
	d.attr.Cc[unix.VMIN] = 1
	d.attr.Cc[unix.VTIME] = 0
	return d
}

func (d *fakeDevice) GetAttr() (*unix.Termios, error) {
	if d.getErr != nil {
		return nil, d.getErr
	}
	t := d.attr
	return &t, nil
}

func (d *fakeDevice) SetAttr(t *unix.Termios) error {
	d.setCalls++
	if d.setErr != nil {
		return d.setErr
	}
	d.attr = *t
	return nil
}

func (d *fakeDevice) WindowSize() (*unix.Winsize, error) {
	if d.wsErr != nil {
		return nil, d.wsErr
	}
	ws := d.ws
	return &ws, nil
}

func (d *fakeDevice) ReadTimeout(p []byte, _ time.Duration) (int, error) {
	if d.onRead != nil {
		d.onRead()
	}
	if d.readErr != nil {
		return 0, d.readErr
	}
	if len(d.input) == 0 {
		return 0, nil
	}
	n := copy(p, d.input)
	d.input = d.input[n:]
	return n, nil
}

func (d *fakeDevice) Write(p []byte) (int, error) {
	return d.out.Write(p)
}

func TestDriver_EnableDisableRestoresAttributes(t *testing.T) {
	dev := newFakeDevice()
	before := dev.attr
	d := NewDriver(dev, nil)

	if err := d.EnableRawMode(); err != nil {
		t.Fatalf("EnableRawMode() error = %v", err)
	}
	if dev.attr == before {
		t.Fatal("EnableRawMode() did not change attributes")
	}
	if !d.IsRaw() {
		t.Error("IsRaw() = false after EnableRawMode")
	}

	if err := d.DisableRawMode(); err != nil {
		t.Fatalf("DisableRawMode() error = %v", err)
	}
	if dev.attr != before {
		t.Errorf("attributes after restore = %+v, expected %+v", dev.attr, before)
	}

	// A second restore is a no-op.
	calls := dev.setCalls
	if err := d.DisableRawMode(); err != nil {
		t.Fatalf("second DisableRawMode() error = %v", err)
	}
	if dev.setCalls != calls {
		t.Error("second DisableRawMode() touched the device")
	}
}

func TestMakeRaw(t *testing.T) {
	dev := newFakeDevice()
	raw := dev.attr
	MakeRaw(&raw)

	if raw.Iflag&(unix.IXON|unix.ICRNL|unix.BRKINT|unix.INPCK|unix.ISTRIP) != 0 {
		t.Errorf("Iflag = %#x, expected input processing disabled", raw.Iflag)
	}
	if raw.Oflag&unix.OPOST != 0 {
		t.Error("OPOST still set")
	}
	if raw.Lflag&(unix.ECHO|unix.ICANON|unix.ISIG|unix.IEXTEN) != 0 {
		t.Errorf("Lflag = %#x, expected local processing disabled", raw.Lflag)
	}
	if raw.Cflag&unix.CS8 != unix.CS8 {
		t.Error("CS8 not set")
	}
	if raw.Cc[unix.VMIN] != 0 || raw.Cc[unix.VTIME] != 1 {
		t.Errorf("VMIN/VTIME = %d/%d, expected 0/1", raw.Cc[unix.VMIN], raw.Cc[unix.VTIME])
	}
}

func TestDriver_EnableRawModeErrors(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name   string
		setup  func(*fakeDevice)
		wantOp string
	}{
		{"get fails", func(d *fakeDevice) { d.getErr = boom }, "tcgetattr"},
		{"set fails", func(d *fakeDevice) { d.setErr = boom }, "tcsetattr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := newFakeDevice()
			tt.setup(dev)
			d := NewDriver(dev, nil)

			err := d.EnableRawMode()
			var osErr *OSError
			if !errors.As(err, &osErr) {
				t.Fatalf("EnableRawMode() error = %v, expected *OSError", err)
			}
			if osErr.Op != tt.wantOp {
				t.Errorf("Op = %q, expected %q", osErr.Op, tt.wantOp)
			}
			if !errors.Is(err, boom) {
				t.Error("expected error to wrap cause")
			}
			if file, line := osErr.Location(); file != "driver.go" || line == 0 {
				t.Errorf("Location() = %s:%d, expected driver.go", file, line)
			}
			if d.IsRaw() {
				t.Error("IsRaw() = true after failure")
			}
		})
	}
}

func TestDriver_InitRegistersCleanup(t *testing.T) {
	dev := newFakeDevice()
	before := dev.attr
	reg := lifecycle.NewRegistry()
	d := NewDriver(dev, reg)

	if err := d.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if !d.InAlternateScreen() {
		t.Error("expected alternate screen after Init")
	}
	if reg.Len(lifecycle.RingTerminal) != 1 {
		t.Fatalf("terminal ring has %d actions, expected 1", reg.Len(lifecycle.RingTerminal))
	}

	if err := reg.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if dev.attr != before {
		t.Error("cleanup did not restore attributes")
	}
	if got := dev.out.String(); got != AltScreenEnter+AltScreenLeave {
		t.Errorf("output = %q, expected enter then leave alternate screen", got)
	}
}

func TestDriver_InitWithoutAlternateScreen(t *testing.T) {
	dev := newFakeDevice()
	d := NewDriver(dev, nil, WithAlternateScreen(false))

	if err := d.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if dev.out.Len() != 0 {
		t.Errorf("output = %q, expected nothing", dev.out.String())
	}
}

func TestDriver_InitFailureLeavesMainScreen(t *testing.T) {
	dev := newFakeDevice()
	dev.getErr = errors.New("not a tty")
	d := NewDriver(dev, lifecycle.NewRegistry())

	if err := d.Init(); err == nil {
		t.Fatal("Init() expected error")
	}
	if d.InAlternateScreen() {
		t.Error("still in alternate screen after failed Init")
	}
}

func TestDriver_Size(t *testing.T) {
	dev := newFakeDevice()
	d := NewDriver(dev, nil)

	rows, cols, err := d.Size()
	if err != nil {
		t.Fatalf("Size() error = %v", err)
	}
	if rows != 24 || cols != 80 {
		t.Errorf("Size() = %dx%d, expected 24x80", rows, cols)
	}

	dev.ws.Col = 0
	if _, _, err := d.Size(); !errors.Is(err, ErrNoSize) {
		t.Errorf("Size() with zero columns error = %v, expected ErrNoSize", err)
	}

	dev.wsErr = unix.ENOTTY
	if _, _, err := d.Size(); !errors.Is(err, unix.ENOTTY) {
		t.Errorf("Size() error = %v, expected ENOTTY", err)
	}
}

func TestDriver_ReadByte(t *testing.T) {
	dev := newFakeDevice()
	dev.input = []byte("a")
	d := NewDriver(dev, nil)

	b, status, err := d.ReadByte(time.Millisecond)
	if err != nil || status != ReadOK || b != 'a' {
		t.Errorf("ReadByte() = %q, %v, %v; expected 'a', ok, nil", b, status, err)
	}

	_, status, err = d.ReadByte(time.Millisecond)
	if err != nil || status != ReadTimeout {
		t.Errorf("ReadByte() on empty input = %v, %v; expected timeout", status, err)
	}

	dev.readErr = unix.EAGAIN
	_, status, err = d.ReadByte(time.Millisecond)
	if err != nil || status != ReadTimeout {
		t.Errorf("ReadByte() on EAGAIN = %v, %v; expected timeout", status, err)
	}

	dev.readErr = unix.EIO
	_, _, err = d.ReadByte(time.Millisecond)
	if !errors.Is(err, unix.EIO) {
		t.Errorf("ReadByte() on EIO error = %v, expected EIO", err)
	}
}

func TestDriver_ReadByteResize(t *testing.T) {
	dev := newFakeDevice()
	d := NewDriver(dev, nil)

	// The signal lands while the read is blocked.
	dev.onRead = d.NotifyResize
	dev.readErr = unix.EINTR

	_, status, err := d.ReadByte(time.Millisecond)
	if err != nil || status != ReadResize {
		t.Fatalf("ReadByte() = %v, %v; expected resize", status, err)
	}

	// The flag is consumed once.
	dev.onRead = nil
	dev.readErr = nil
	_, status, _ = d.ReadByte(time.Millisecond)
	if status != ReadTimeout {
		t.Errorf("ReadByte() after resize = %v, expected timeout", status)
	}
}

func TestDriver_PendingResizeReportedFirst(t *testing.T) {
	dev := newFakeDevice()
	dev.input = []byte("x")
	d := NewDriver(dev, nil)
	d.NotifyResize()

	_, status, _ := d.ReadByte(time.Millisecond)
	if status != ReadResize {
		t.Fatalf("ReadByte() = %v, expected resize", status)
	}
	b, status, _ := d.ReadByte(time.Millisecond)
	if status != ReadOK || b != 'x' {
		t.Errorf("ReadByte() = %q, %v; expected 'x', ok", b, status)
	}
}

func TestDriver_WatchResizeStop(t *testing.T) {
	d := NewDriver(newFakeDevice(), nil)
	d.WatchResize()
	d.WatchResize()
	d.StopResize()
	d.StopResize()
}

func TestReadStatus_String(t *testing.T) {
	tests := []struct {
		status   ReadStatus
		expected string
	}{
		{ReadOK, "ok"},
		{ReadTimeout, "timeout"},
		{ReadResize, "resize"},
		{ReadStatus(9), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.expected {
			t.Errorf("ReadStatus(%d).String() = %q, expected %q", tt.status, got, tt.expected)
		}
	}
}
