// Package dispatcher routes decoded key events to editor actions.
//
// The dispatcher owns a table of named actions ("cursor.up",
// "editor.newline", "editor.quit", ...) built over an editor.State. Keys are
// bound to those names in the state's keymap, which lets the configuration
// file rebind keys by action name.
//
// # Dispatch
//
// When an event arrives:
//
//  1. A key bound in the keymap runs its action.
//  2. An unbound printable byte is inserted into the active buffer.
//  3. Anything else is ignored.
//
// The quit action returns ErrQuit, which the main loop treats as a normal
// exit.
package dispatcher
