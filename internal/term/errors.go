package term

import (
	"errors"
	"fmt"

	"github.com/dshills/ted/internal/lifecycle"
)

// ErrNoSize is returned when the terminal reports zero columns.
var ErrNoSize = errors.New("terminal reported zero size")

// OSError is a failed terminal system call. It records where it was raised
// so debug builds can print the call site.
type OSError struct {
	Op   string // system call or ioctl name
	Err  error
	file string
	line int
}

// NewOSError wraps err for op, recording the caller's location.
func NewOSError(op string, err error) *OSError {
	file, line := lifecycle.Caller(1)
	return &OSError{Op: op, Err: err, file: file, line: line}
}

func (e *OSError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return e.Op + " failed"
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *OSError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Location implements lifecycle.Locator.
func (e *OSError) Location() (string, int) {
	return e.file, e.line
}
