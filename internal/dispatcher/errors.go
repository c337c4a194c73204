package dispatcher

import "errors"

// Dispatcher errors.
var (
	// ErrQuit is returned by the quit action to end the main loop normally.
	ErrQuit = errors.New("dispatcher: quit requested")

	// ErrUnknownAction indicates a binding names an action that does not exist.
	ErrUnknownAction = errors.New("dispatcher: unknown action")

	// ErrInvalidAction indicates an action registration without a name or function.
	ErrInvalidAction = errors.New("dispatcher: invalid action")
)
