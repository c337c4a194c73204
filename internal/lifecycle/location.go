package lifecycle

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
)

// Locator is implemented by errors that remember where they were raised.
type Locator interface {
	Location() (file string, line int)
}

// Caller returns the file and line skip frames above the caller.
func Caller(skip int) (string, int) {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return "", 0
	}
	return filepath.Base(file), line
}

// FormatError renders err for the exit diagnostic.
// With debug set, the innermost known source location is prepended.
func FormatError(err error, debug bool) string {
	if err == nil {
		return ""
	}
	if debug {
		var loc Locator
		if errors.As(err, &loc) {
			if file, line := loc.Location(); file != "" {
				return fmt.Sprintf("%s:%d: %v", file, line, err)
			}
		}
	}
	return err.Error()
}
