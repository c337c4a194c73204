package editor

import (
	"github.com/dshills/ted/internal/input/keymap"
)

// DefaultEOBChar marks screen rows past the end of the buffer.
const DefaultEOBChar = '~'

// ScreenSize is the terminal size in cells.
type ScreenSize struct {
	Rows int
	Cols int
}

// Coord is a zero-based row and column.
type Coord struct {
	Row int
	Col int
}

// State is the editor state.
//
// Cursor bounds: the row stays within the active buffer's lines, the column
// stays below the screen width when moved with the cursor keys. Text
// insertion may push the column past the screen width; Scroll keeps it
// visible.
type State struct {
	buffers []*Buffer
	active  *Buffer

	screen ScreenSize
	cursor Coord
	offset Coord

	eobChar     byte
	showWelcome bool

	keymap *keymap.Keymap
}

// NewState creates an editor state with default settings and an empty keymap.
func NewState() *State {
	return &State{
		buffers:     make([]*Buffer, 0, 4),
		eobChar:     DefaultEOBChar,
		showWelcome: true,
		keymap:      keymap.New(),
	}
}

// OpenNewBuffer appends an empty buffer and makes it active.
func (s *State) OpenNewBuffer() *Buffer {
	b := NewBuffer()
	s.addBuffer(b)
	return b
}

// OpenFile loads path into a new buffer and makes it active.
func (s *State) OpenFile(path string) (*Buffer, error) {
	b, err := LoadBuffer(path)
	if err != nil {
		return nil, err
	}
	s.addBuffer(b)
	return b, nil
}

func (s *State) addBuffer(b *Buffer) {
	s.buffers = append(s.buffers, b)
	s.activate(b)
}

func (s *State) activate(b *Buffer) {
	s.active = b
	s.cursor = Coord{}
	s.offset = Coord{}
}

// NextBuffer activates the buffer after the active one, wrapping around.
func (s *State) NextBuffer() {
	if len(s.buffers) < 2 {
		return
	}
	for i, b := range s.buffers {
		if b == s.active {
			s.activate(s.buffers[(i+1)%len(s.buffers)])
			return
		}
	}
}

// ActiveBuffer returns the active buffer, or nil.
func (s *State) ActiveBuffer() *Buffer {
	return s.active
}

// Buffers returns the open buffers in opening order.
func (s *State) Buffers() []*Buffer {
	out := make([]*Buffer, len(s.buffers))
	copy(out, s.buffers)
	return out
}

// ScreenSize returns the screen size.
func (s *State) ScreenSize() ScreenSize {
	return s.screen
}

// SetScreenSize updates the screen size.
func (s *State) SetScreenSize(size ScreenSize) {
	if size.Rows < 0 {
		size.Rows = 0
	}
	if size.Cols < 0 {
		size.Cols = 0
	}
	s.screen = size
}

// Cursor returns the cursor position in buffer coordinates.
func (s *State) Cursor() Coord {
	return s.cursor
}

// Offset returns the viewport offset.
func (s *State) Offset() Coord {
	return s.offset
}

// EOBChar returns the end-of-buffer marker.
func (s *State) EOBChar() byte {
	return s.eobChar
}

// SetEOBChar sets the end-of-buffer marker.
func (s *State) SetEOBChar(c byte) {
	s.eobChar = c
}

// ShowWelcome reports whether the welcome banner may be drawn.
func (s *State) ShowWelcome() bool {
	return s.showWelcome
}

// SetShowWelcome enables or disables the welcome banner.
func (s *State) SetShowWelcome(show bool) {
	s.showWelcome = show
}

// Keymap returns the active keymap.
func (s *State) Keymap() *keymap.Keymap {
	return s.keymap
}

// SetKeymap replaces the keymap.
func (s *State) SetKeymap(km *keymap.Keymap) {
	if km == nil {
		km = keymap.New()
	}
	s.keymap = km
}

// lastRow is the largest row the cursor may reach.
func (s *State) lastRow() int {
	if s.active == nil {
		return 0
	}
	return s.active.LineCount() - 1
}

// lastCol is the largest column the cursor keys may reach.
func (s *State) lastCol() int {
	if s.screen.Cols == 0 {
		return 0
	}
	return s.screen.Cols - 1
}

// CursorUp moves the cursor up one row.
func (s *State) CursorUp() {
	if s.cursor.Row > 0 {
		s.cursor.Row--
	}
}

// CursorDown moves the cursor down one row, stopping at the last line.
func (s *State) CursorDown() {
	if s.cursor.Row < s.lastRow() {
		s.cursor.Row++
	}
}

// CursorLeft moves the cursor left one column.
func (s *State) CursorLeft() {
	if s.cursor.Col > 0 {
		s.cursor.Col--
	}
}

// CursorRight moves the cursor right one column, stopping at the last
// screen column.
func (s *State) CursorRight() {
	if s.cursor.Col < s.lastCol() {
		s.cursor.Col++
	}
}

// PageUp moves the cursor up by one screen height.
func (s *State) PageUp() {
	for i := 0; i < s.screen.Rows; i++ {
		s.CursorUp()
	}
}

// PageDown moves the cursor down by one screen height.
func (s *State) PageDown() {
	for i := 0; i < s.screen.Rows; i++ {
		s.CursorDown()
	}
}

// CursorHome moves the cursor to column 0.
func (s *State) CursorHome() {
	s.cursor.Col = 0
}

// CursorEnd moves the cursor to the last screen column.
func (s *State) CursorEnd() {
	s.cursor.Col = s.lastCol()
}

// Scroll adjusts the viewport offset by the smallest amount that puts the
// cursor inside [offset, offset+screen) on both axes.
func (s *State) Scroll() {
	s.offset.Row = scrollAxis(s.cursor.Row, s.offset.Row, s.screen.Rows)
	s.offset.Col = scrollAxis(s.cursor.Col, s.offset.Col, s.screen.Cols)
}

func scrollAxis(pos, offset, extent int) int {
	if extent <= 0 {
		return offset
	}
	if pos < offset {
		return pos
	}
	if pos >= offset+extent {
		return pos - extent + 1
	}
	return offset
}

// ScreenCursor returns the cursor position relative to the viewport.
func (s *State) ScreenCursor() Coord {
	return Coord{
		Row: s.cursor.Row - s.offset.Row,
		Col: s.cursor.Col - s.offset.Col,
	}
}

// InsertByte inserts c at the cursor and advances the cursor.
func (s *State) InsertByte(c byte) error {
	if s.active == nil {
		return ErrNoActiveBuffer
	}
	s.active.insertByte(s.cursor.Row, s.cursor.Col, c)
	s.cursor.Col++
	return nil
}

// InsertNewline breaks the current line at the cursor.
func (s *State) InsertNewline() error {
	if s.active == nil {
		return ErrNoActiveBuffer
	}
	s.active.splitLine(s.cursor.Row, s.cursor.Col)
	s.cursor.Row++
	s.cursor.Col = 0
	return nil
}

// DeleteBackward removes the byte before the cursor, joining with the
// previous line at column 0. A cursor past the end of the line first
// moves back to the end.
func (s *State) DeleteBackward() error {
	if s.active == nil {
		return ErrNoActiveBuffer
	}
	if n := len(s.active.Line(s.cursor.Row)); s.cursor.Col > n {
		s.cursor.Col = n
	}
	if s.cursor.Col > 0 {
		s.active.deleteByte(s.cursor.Row, s.cursor.Col)
		s.cursor.Col--
		return nil
	}
	if s.cursor.Row == 0 {
		return nil
	}
	prev := len(s.active.Line(s.cursor.Row - 1))
	s.active.joinLines(s.cursor.Row - 1)
	s.cursor.Row--
	s.cursor.Col = prev
	return nil
}
