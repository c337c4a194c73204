package key

import "fmt"

// Code identifies a logical key. Values below 256 are literal bytes.
type Code uint16

// Literal byte codes with names.
const (
	KeyNull      Code = 0x00
	KeyTab       Code = '\t'
	KeyEnter     Code = '\r'
	KeyEscape    Code = 0x1b
	KeySpace     Code = ' '
	KeyBackspace Code = 0x7f
)

// Named navigation codes.
const (
	KeyUp Code = 256 + iota
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown

	codeLimit
)

// CodeCount is the size of the key domain.
const CodeCount = int(codeLimit)

// Byte returns the code for the literal byte b.
func Byte(b byte) Code {
	return Code(b)
}

// Ctrl returns the code produced by pressing Ctrl with c.
func Ctrl(c byte) Code {
	return Code(c & 0x1f)
}

// IsByte returns true if c is a literal byte.
func (c Code) IsByte() bool {
	return c < 256
}

// IsNamed returns true if c is a named navigation code.
func (c Code) IsNamed() bool {
	return c >= 256 && c < codeLimit
}

// IsValid returns true if c is within the key domain.
func (c Code) IsValid() bool {
	return c < codeLimit
}

// IsControl returns true for C0 control bytes and DEL.
func (c Code) IsControl() bool {
	return c < 0x20 || c == KeyBackspace
}

// IsPrintable returns true if c is a byte that can be inserted as text.
// Bytes at or above 0x80 count as printable; input is not decoded as UTF-8.
func (c Code) IsPrintable() bool {
	if !c.IsByte() {
		return false
	}
	return c == KeyTab || !c.IsControl()
}

var namedCodes = map[Code]string{
	KeyUp:       "Up",
	KeyDown:     "Down",
	KeyLeft:     "Left",
	KeyRight:    "Right",
	KeyHome:     "Home",
	KeyEnd:      "End",
	KeyPageUp:   "PageUp",
	KeyPageDown: "PageDown",
}

// String returns a human-readable name for the key.
func (c Code) String() string {
	if name, ok := namedCodes[c]; ok {
		return name
	}
	switch c {
	case KeyNull:
		return "Ctrl+@"
	case KeyTab:
		return "Tab"
	case KeyEnter:
		return "Enter"
	case KeyEscape:
		return "Esc"
	case KeySpace:
		return "Space"
	case KeyBackspace:
		return "Backspace"
	}
	switch {
	case c < 0x20:
		return "Ctrl+" + string(rune(c|0x40))
	case c < 0x80:
		return string(rune(c))
	case c.IsByte():
		return fmt.Sprintf("0x%02X", uint16(c))
	default:
		return fmt.Sprintf("Code(%d)", uint16(c))
	}
}

// Event is a single decoded key press.
type Event struct {
	Code Code
}

// NewEvent creates an event for code.
func NewEvent(code Code) Event {
	return Event{Code: code}
}

// NewByteEvent creates an event for a literal byte.
func NewByteEvent(b byte) Event {
	return Event{Code: Byte(b)}
}

// IsLiteral returns true if the event carries a literal byte.
func (e Event) IsLiteral() bool {
	return e.Code.IsByte()
}

// Byte returns the literal byte of the event.
func (e Event) Byte() (byte, bool) {
	if !e.Code.IsByte() {
		return 0, false
	}
	return byte(e.Code), true
}

// String returns the key name.
func (e Event) String() string {
	return e.Code.String()
}
