package editor

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// maxLineLength bounds a single line read from disk.
const maxLineLength = 16 * 1024 * 1024

// Buffer is an ordered sequence of text lines. A buffer always holds at
// least one line.
type Buffer struct {
	id    string
	path  string
	lines []string
}

// NewBuffer creates a buffer with a single empty line.
func NewBuffer() *Buffer {
	return &Buffer{
		id:    uuid.New().String(),
		lines: []string{""},
	}
}

// LoadBuffer reads path line by line into a new buffer.
// Line terminators, including a trailing CR, are not kept.
func LoadBuffer(path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, newFileError("open", path, err)
	}
	defer f.Close()

	b := &Buffer{
		id:    uuid.New().String(),
		path:  path,
		lines: make([]string, 0, 64),
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	for scanner.Scan() {
		b.lines = append(b.lines, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, newFileError("read", path, err)
	}

	if len(b.lines) == 0 {
		b.lines = append(b.lines, "")
	}
	return b, nil
}

// ID returns the buffer's unique identifier.
func (b *Buffer) ID() string {
	return b.id
}

// Path returns the file path, or "" for a scratch buffer.
func (b *Buffer) Path() string {
	return b.path
}

// Name returns a display name for the buffer.
func (b *Buffer) Name() string {
	if b.path == "" {
		return "[No Name]"
	}
	return filepath.Base(b.path)
}

// LineCount returns the number of lines.
func (b *Buffer) LineCount() int {
	return len(b.lines)
}

// Line returns line i, or "" when i is out of range.
func (b *Buffer) Line(i int) string {
	if i < 0 || i >= len(b.lines) {
		return ""
	}
	return b.lines[i]
}

// Lines returns a copy of all lines.
func (b *Buffer) Lines() []string {
	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

// IsEmpty returns true if the buffer is a single empty line.
func (b *Buffer) IsEmpty() bool {
	return len(b.lines) == 1 && b.lines[0] == ""
}

// insertByte inserts c at row, col. Columns past the end of the line are
// padded with spaces.
func (b *Buffer) insertByte(row, col int, c byte) {
	line := b.lines[row]
	if col > len(line) {
		line += strings.Repeat(" ", col-len(line))
	}
	b.lines[row] = line[:col] + string([]byte{c}) + line[col:]
}

// splitLine breaks row at col, moving the tail to a new following line.
func (b *Buffer) splitLine(row, col int) {
	line := b.lines[row]
	if col > len(line) {
		col = len(line)
	}
	head, tail := line[:col], line[col:]
	b.lines[row] = head
	b.lines = append(b.lines, "")
	copy(b.lines[row+2:], b.lines[row+1:])
	b.lines[row+1] = tail
}

// deleteByte removes the byte before col on row.
func (b *Buffer) deleteByte(row, col int) {
	line := b.lines[row]
	if col <= 0 || col > len(line) {
		return
	}
	b.lines[row] = line[:col-1] + line[col:]
}

// joinLines appends row+1 to row and removes row+1.
func (b *Buffer) joinLines(row int) {
	if row+1 >= len(b.lines) {
		return
	}
	b.lines[row] += b.lines[row+1]
	b.lines = append(b.lines[:row+1], b.lines[row+2:]...)
}
