package dispatcher

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dshills/ted/internal/editor"
	"github.com/dshills/ted/internal/input/keymap"
)

// Action is an alias for keymap.Action.
type Action = keymap.Action

// Action names.
const (
	ActionCursorUp       = "cursor.up"
	ActionCursorDown     = "cursor.down"
	ActionCursorLeft     = "cursor.left"
	ActionCursorRight    = "cursor.right"
	ActionCursorPageUp   = "cursor.page_up"
	ActionCursorPageDown = "cursor.page_down"
	ActionCursorHome     = "cursor.home"
	ActionCursorEnd      = "cursor.end"
	ActionNewline        = "editor.newline"
	ActionBackspace      = "editor.backspace"
	ActionQuit           = "editor.quit"
	ActionNextBuffer     = "buffer.next"
)

// movement wraps a cursor method as an action.
func movement(move func()) Action {
	return func() error {
		move()
		return nil
	}
}

func builtinActions(s *editor.State) map[string]Action {
	return map[string]Action{
		ActionCursorUp:       movement(s.CursorUp),
		ActionCursorDown:     movement(s.CursorDown),
		ActionCursorLeft:     movement(s.CursorLeft),
		ActionCursorRight:    movement(s.CursorRight),
		ActionCursorPageUp:   movement(s.PageUp),
		ActionCursorPageDown: movement(s.PageDown),
		ActionCursorHome:     movement(s.CursorHome),
		ActionCursorEnd:      movement(s.CursorEnd),
		ActionNextBuffer:     movement(s.NextBuffer),
		ActionNewline:        ignoreNoBuffer(s.InsertNewline),
		ActionBackspace:      ignoreNoBuffer(s.DeleteBackward),
		ActionQuit:           func() error { return ErrQuit },
	}
}

func ignoreNoBuffer(edit func() error) Action {
	return func() error {
		if err := edit(); err != nil && !errors.Is(err, editor.ErrNoActiveBuffer) {
			return err
		}
		return nil
	}
}

// RegisterAction adds or replaces a named action.
func (d *Dispatcher) RegisterAction(name string, action Action) error {
	if name == "" || action == nil {
		return fmt.Errorf("register action %q: %w", name, ErrInvalidAction)
	}
	d.actions[name] = action
	return nil
}

// Action returns the named action.
func (d *Dispatcher) Action(name string) (Action, bool) {
	a, ok := d.actions[name]
	return a, ok
}

// ActionNames returns all action names in sorted order.
func (d *Dispatcher) ActionNames() []string {
	names := make([]string, 0, len(d.actions))
	for name := range d.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
