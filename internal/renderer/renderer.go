package renderer

import (
	"bytes"
	"io"

	"github.com/dshills/ted/internal/editor"
	"github.com/dshills/ted/internal/term"
)

// Renderer composes frames and writes them to out.
type Renderer struct {
	out     io.Writer
	buf     bytes.Buffer
	pos     []byte
	welcome []string
	frames  uint64
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithWelcome sets the banner shown over an empty buffer. A nil banner
// disables it.
func WithWelcome(lines []string) Option {
	return func(r *Renderer) {
		r.welcome = lines
	}
}

// New creates a renderer writing to out.
func New(out io.Writer, opts ...Option) *Renderer {
	r := &Renderer{out: out}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render scrolls the viewport to the cursor, draws one frame and flushes it
// in a single write. The frame buffer is cleared whether or not the write
// succeeds.
func (r *Renderer) Render(s *editor.State) error {
	s.Scroll()
	r.compose(s)
	_, err := r.out.Write(r.buf.Bytes())
	r.buf.Reset()
	r.frames++
	return err
}

// Frames returns the number of frames rendered.
func (r *Renderer) Frames() uint64 {
	return r.frames
}

func (r *Renderer) compose(s *editor.State) {
	screen := s.ScreenSize()
	offset := s.Offset()

	r.buf.WriteString(term.CursorHideCode)
	r.buf.WriteString(term.CursorHomeCode)

	b := s.ActiveBuffer()
	lineCount := 0
	if b != nil {
		lineCount = b.LineCount()
	}

	banner := r.bannerFor(s)
	bannerTop := (screen.Rows - len(banner)) / 2
	if first := lineCount - offset.Row; bannerTop < first {
		bannerTop = first
	}

	for y := 0; y < screen.Rows; y++ {
		fileRow := y + offset.Row
		switch {
		case fileRow < lineCount:
			r.drawLine(b.Line(fileRow), offset.Col, screen.Cols)
		case banner != nil && y >= bannerTop && y < bannerTop+len(banner):
			r.drawBannerLine(banner[y-bannerTop], s.EOBChar(), screen.Cols)
		default:
			r.buf.WriteByte(s.EOBChar())
		}

		r.buf.WriteString(term.EraseLine(term.EraseLineRight))
		if y < screen.Rows-1 {
			r.buf.WriteString("\r\n")
		}
	}

	cur := s.ScreenCursor()
	r.pos = term.AppendCursorMove(r.pos[:0], cur.Row, cur.Col)
	r.buf.Write(r.pos)
	r.buf.WriteString(term.CursorShowCode)
}

// drawLine writes the part of line visible from column from.
func (r *Renderer) drawLine(line string, from, cols int) {
	if from >= len(line) {
		return
	}
	line = line[from:]
	if len(line) > cols {
		line = line[:cols]
	}
	r.buf.WriteString(line)
}

// drawBannerLine centers text on the row, keeping the end-of-buffer marker
// in the first column.
func (r *Renderer) drawBannerLine(text string, eob byte, cols int) {
	pad := (cols - len(text)) / 2
	if pad > 0 {
		r.buf.WriteByte(eob)
		pad--
	}
	for ; pad > 0; pad-- {
		r.buf.WriteByte(' ')
	}
	r.buf.WriteString(text)
}

// bannerFor returns the welcome banner if it should be drawn over s.
func (r *Renderer) bannerFor(s *editor.State) []string {
	if len(r.welcome) == 0 || !s.ShowWelcome() {
		return nil
	}
	b := s.ActiveBuffer()
	if b == nil || !b.IsEmpty() {
		return nil
	}
	screen := s.ScreenSize()
	if len(r.welcome) > screen.Rows-b.LineCount() || longest(r.welcome) >= screen.Cols {
		return nil
	}
	return r.welcome
}

func longest(lines []string) int {
	n := 0
	for _, l := range lines {
		if len(l) > n {
			n = len(l)
		}
	}
	return n
}
