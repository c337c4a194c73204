package term

import "strconv"

// Escape codes.
const (
	CursorHomeCode = "\x1b[H"
	CursorShowCode = "\x1b[?25h"
	CursorHideCode = "\x1b[?25l"
	AltScreenEnter = "\x1b[?1049h"
	AltScreenLeave = "\x1b[?1049l"
)

// EraseLineMode selects which part of the current line is erased.
type EraseLineMode uint8

const (
	EraseLineRight EraseLineMode = iota
	EraseLineLeft
	EraseLineAll
)

var eraseLineCodes = [...]string{
	EraseLineRight: "\x1b[0K",
	EraseLineLeft:  "\x1b[1K",
	EraseLineAll:   "\x1b[2K",
}

// ClearMode selects which part of the screen is cleared.
type ClearMode uint8

const (
	ClearToBottom ClearMode = iota
	ClearToTop
	ClearAll
)

var clearCodes = [...]string{
	ClearToBottom: "\x1b[0J",
	ClearToTop:    "\x1b[1J",
	ClearAll:      "\x1b[2J",
}

// AppendCursorMove appends the code placing the cursor at the zero-based
// row and col. The emitted sequence is one-based.
func AppendCursorMove(buf []byte, row, col int) []byte {
	buf = append(buf, "\x1b["...)
	buf = strconv.AppendInt(buf, int64(row)+1, 10)
	buf = append(buf, ';')
	buf = strconv.AppendInt(buf, int64(col)+1, 10)
	return append(buf, 'H')
}

// CursorMove returns the code placing the cursor at the zero-based row and col.
func CursorMove(row, col int) string {
	return string(AppendCursorMove(make([]byte, 0, 16), row, col))
}

// EraseLine returns the erase-line code for mode.
func EraseLine(mode EraseLineMode) string {
	if int(mode) >= len(eraseLineCodes) {
		mode = EraseLineAll
	}
	return eraseLineCodes[mode]
}

// Clear returns the clear-screen code for mode.
func Clear(mode ClearMode) string {
	if int(mode) >= len(clearCodes) {
		mode = ClearAll
	}
	return clearCodes[mode]
}
