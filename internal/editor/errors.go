package editor

import (
	"errors"

	"github.com/dshills/ted/internal/lifecycle"
)

// ErrNoActiveBuffer indicates an operation needs an active buffer.
var ErrNoActiveBuffer = errors.New("no active buffer")

// FileError represents a file operation error.
type FileError struct {
	Op   string
	Path string
	Err  error
	file string
	line int
}

func newFileError(op, path string, err error) *FileError {
	file, line := lifecycle.Caller(1)
	return &FileError{Op: op, Path: path, Err: err, file: file, line: line}
}

func (e *FileError) Error() string {
	if e.Err == nil {
		return "cannot " + e.Op + " file " + e.Path
	}
	return "cannot " + e.Op + " file " + e.Path + ": " + e.Err.Error()
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Location implements lifecycle.Locator.
func (e *FileError) Location() (string, int) {
	return e.file, e.line
}
