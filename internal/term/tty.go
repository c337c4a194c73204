package term

import xterm "golang.org/x/term"

// IsTerminal reports whether fd refers to an interactive terminal.
func IsTerminal(fd uintptr) bool {
	return xterm.IsTerminal(int(fd))
}
