// Package decoder turns raw terminal bytes into key events.
//
// Escape sequences for the arrow and navigation keys are resolved here. A
// lone Esc is told apart from the start of a sequence by the follow-up byte
// timeout: if nothing arrives in time the Esc is reported on its own. Any
// sequence that is incomplete or unknown also degrades to a bare Esc so the
// input loop never stalls.
package decoder

import (
	"time"

	"github.com/dshills/ted/internal/input/key"
	"github.com/dshills/ted/internal/term"
)

// Default timeouts.
const (
	// DefaultReadTimeout is how long Next waits for the first byte.
	DefaultReadTimeout = 100 * time.Millisecond
	// DefaultEscapeTimeout is how long to wait for the byte after an Esc.
	DefaultEscapeTimeout = 100 * time.Millisecond
)

// ByteReader reads single bytes with a timeout. term.Driver implements it.
type ByteReader interface {
	ReadByte(timeout time.Duration) (byte, term.ReadStatus, error)
}

// Decoder produces key events from a ByteReader.
type Decoder struct {
	r             ByteReader
	readTimeout   time.Duration
	escapeTimeout time.Duration

	// pendingResize is set when a resize interrupted an escape sequence.
	pendingResize bool
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithReadTimeout sets the timeout for the first byte of an event.
func WithReadTimeout(d time.Duration) Option {
	return func(dec *Decoder) {
		if d > 0 {
			dec.readTimeout = d
		}
	}
}

// WithEscapeTimeout sets the timeout for the bytes following an Esc.
func WithEscapeTimeout(d time.Duration) Option {
	return func(dec *Decoder) {
		if d > 0 {
			dec.escapeTimeout = d
		}
	}
}

// New creates a decoder reading from r.
func New(r ByteReader, opts ...Option) *Decoder {
	d := &Decoder{
		r:             r,
		readTimeout:   DefaultReadTimeout,
		escapeTimeout: DefaultEscapeTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SetTimeouts changes the read and escape timeouts. Non-positive values
// leave the current setting.
func (d *Decoder) SetTimeouts(read, escape time.Duration) {
	WithReadTimeout(read)(d)
	WithEscapeTimeout(escape)(d)
}

// Timeouts returns the read and escape timeouts.
func (d *Decoder) Timeouts() (read, escape time.Duration) {
	return d.readTimeout, d.escapeTimeout
}

// Next reads the next key event.
//
// The status is term.ReadOK when an event was produced, term.ReadTimeout
// when no input arrived and term.ReadResize when the window was resized.
// A non-nil error is fatal.
func (d *Decoder) Next() (key.Event, term.ReadStatus, error) {
	if d.pendingResize {
		d.pendingResize = false
		return key.Event{}, term.ReadResize, nil
	}

	b, status, err := d.r.ReadByte(d.readTimeout)
	if err != nil || status != term.ReadOK {
		return key.Event{}, status, err
	}

	if key.Code(b) != key.KeyEscape {
		return key.NewByteEvent(b), term.ReadOK, nil
	}

	code, err := d.readEscapeSequence()
	if err != nil {
		return key.Event{}, term.ReadOK, err
	}
	return key.NewEvent(code), term.ReadOK, nil
}

// readEscapeSequence resolves the bytes after an Esc.
func (d *Decoder) readEscapeSequence() (key.Code, error) {
	first, ok, err := d.follow()
	if !ok {
		return key.KeyEscape, err
	}

	switch first {
	case '[':
		second, ok, err := d.follow()
		if !ok {
			return key.KeyEscape, err
		}
		if second >= '0' && second <= '9' {
			third, ok, err := d.follow()
			if !ok {
				return key.KeyEscape, err
			}
			if third != '~' {
				return key.KeyEscape, nil
			}
			return tildeCode(second), nil
		}
		return csiCode(second), nil

	case 'O':
		second, ok, err := d.follow()
		if !ok {
			return key.KeyEscape, err
		}
		switch second {
		case 'H':
			return key.KeyHome, nil
		case 'F':
			return key.KeyEnd, nil
		}
	}
	return key.KeyEscape, nil
}

// follow reads one byte of an escape sequence. ok is false when the
// sequence was cut short by a timeout, a resize or an error.
func (d *Decoder) follow() (byte, bool, error) {
	b, status, err := d.r.ReadByte(d.escapeTimeout)
	if err != nil {
		return 0, false, err
	}
	switch status {
	case term.ReadOK:
		return b, true, nil
	case term.ReadResize:
		d.pendingResize = true
	}
	return 0, false, nil
}

// csiCode maps the final byte of "ESC [ x".
func csiCode(b byte) key.Code {
	switch b {
	case 'A':
		return key.KeyUp
	case 'B':
		return key.KeyDown
	case 'C':
		return key.KeyRight
	case 'D':
		return key.KeyLeft
	case 'H':
		return key.KeyHome
	case 'F':
		return key.KeyEnd
	default:
		return key.KeyEscape
	}
}

// tildeCode maps the digit of "ESC [ n ~".
func tildeCode(digit byte) key.Code {
	switch digit {
	case '1', '7':
		return key.KeyHome
	case '4', '8':
		return key.KeyEnd
	case '5':
		return key.KeyPageUp
	case '6':
		return key.KeyPageDown
	default:
		return key.KeyEscape
	}
}
