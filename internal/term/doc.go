// Package term drives the controlling terminal.
//
// The Driver switches the terminal into raw mode, reports its size, reads
// single input bytes with a short timeout and writes raw output. It registers
// its own teardown with the lifecycle registry so the original terminal mode
// and the main screen are restored on every exit path.
//
// Escape codes emitted by this package are plain VT100/xterm sequences and
// are byte-exact; see ansi.go.
package term
