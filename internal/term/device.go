//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package term

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// Device is the operating-system side of the terminal.
type Device interface {
	// GetAttr returns the current terminal attributes.
	GetAttr() (*unix.Termios, error)
	// SetAttr applies attributes after flushing pending input.
	SetAttr(t *unix.Termios) error
	// WindowSize returns the terminal window dimensions.
	WindowSize() (*unix.Winsize, error)
	// ReadTimeout reads into p, waiting at most timeout for data.
	// It returns 0 and a nil error when no data arrived in time.
	ReadTimeout(p []byte, timeout time.Duration) (int, error)
	// Write writes p to the terminal.
	Write(p []byte) (int, error)
}

// unixDevice talks to the terminal through file descriptors.
type unixDevice struct {
	in  int
	out int
}

// NewDevice returns a Device reading from in and writing to out.
func NewDevice(in, out *os.File) Device {
	return &unixDevice{in: int(in.Fd()), out: int(out.Fd())}
}

func (d *unixDevice) GetAttr() (*unix.Termios, error) {
	return unix.IoctlGetTermios(d.in, ioctlGetTermios)
}

func (d *unixDevice) SetAttr(t *unix.Termios) error {
	return unix.IoctlSetTermios(d.in, ioctlSetTermiosFlush, t)
}

func (d *unixDevice) WindowSize() (*unix.Winsize, error) {
	return unix.IoctlGetWinsize(d.out, unix.TIOCGWINSZ)
}

func (d *unixDevice) ReadTimeout(p []byte, timeout time.Duration) (int, error) {
	fds := []unix.PollFd{{Fd: int32(d.in), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, int(timeout/time.Millisecond))
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}
	n, err = unix.Read(d.in, p)
	if n < 0 {
		n = 0
	}
	return n, err
}

func (d *unixDevice) Write(p []byte) (int, error) {
	return unix.Write(d.out, p)
}
