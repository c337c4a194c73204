package key

import (
	"errors"
	"fmt"
	"strings"
)

// Parse errors
var (
	ErrEmptySpec   = errors.New("empty key specification")
	ErrInvalidSpec = errors.New("invalid key specification")
)

var keyNames = map[string]Code{
	"up":        KeyUp,
	"down":      KeyDown,
	"left":      KeyLeft,
	"right":     KeyRight,
	"home":      KeyHome,
	"end":       KeyEnd,
	"pageup":    KeyPageUp,
	"pgup":      KeyPageUp,
	"pagedown":  KeyPageDown,
	"pgdn":      KeyPageDown,
	"esc":       KeyEscape,
	"escape":    KeyEscape,
	"enter":     KeyEnter,
	"return":    KeyEnter,
	"cr":        KeyEnter,
	"tab":       KeyTab,
	"backspace": KeyBackspace,
	"bs":        KeyBackspace,
	"del":       KeyBackspace,
	"space":     KeySpace,
}

// Parse parses a key specification into a Code.
//
// Supported formats:
//   - Single byte: "a", "A", "1", "@"
//   - Key names: "Up", "PageDown", "Home", "Enter", "Esc", "Backspace"
//   - Control keys: "Ctrl+Q", "C-q", "<C-q>", "^Q"
func Parse(spec string) (Code, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return 0, ErrEmptySpec
	}

	// Vim-style <...> notation
	if len(spec) > 2 && strings.HasPrefix(spec, "<") && strings.HasSuffix(spec, ">") {
		spec = spec[1 : len(spec)-1]
	}

	// Caret notation
	if len(spec) == 2 && spec[0] == '^' {
		return parseCtrl(spec[1:])
	}

	lower := strings.ToLower(spec)
	for _, prefix := range []string{"ctrl+", "ctrl-", "c-"} {
		if strings.HasPrefix(lower, prefix) && len(spec) > len(prefix) {
			return parseCtrl(spec[len(prefix):])
		}
	}

	if code, ok := keyNames[lower]; ok {
		return code, nil
	}

	if len(spec) == 1 {
		return Byte(spec[0]), nil
	}

	return 0, fmt.Errorf("%w: %q", ErrInvalidSpec, spec)
}

// parseCtrl parses the key part of a control combination.
func parseCtrl(part string) (Code, error) {
	if len(part) != 1 {
		return 0, fmt.Errorf("%w: control key %q must be a single character", ErrInvalidSpec, part)
	}
	c := part[0]
	switch {
	case c >= 'a' && c <= 'z':
		c -= 'a' - 'A'
	case c >= '@' && c <= '_':
	case c == '?':
		return KeyBackspace, nil
	default:
		return 0, fmt.Errorf("%w: no control code for %q", ErrInvalidSpec, part)
	}
	return Ctrl(c), nil
}

// MustParse is like Parse but panics on error.
func MustParse(spec string) Code {
	code, err := Parse(spec)
	if err != nil {
		panic(err)
	}
	return code
}
