package plugin

import "errors"

var (
	// ErrNoScript indicates the init script does not exist.
	ErrNoScript = errors.New("plugin: no init script")

	// ErrClosed indicates the host has been closed.
	ErrClosed = errors.New("plugin: host closed")
)
