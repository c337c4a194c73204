// Package editor holds the in-memory editing state: the open buffers, the
// active buffer, the cursor, the viewport offset, the screen size, the
// end-of-buffer marker and the keymap.
//
// A State is owned by the application and passed to the components that
// need it. It is not safe for concurrent use; the main loop is the only
// goroutine that touches it.
package editor
