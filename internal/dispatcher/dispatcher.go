package dispatcher

import (
	"errors"

	"github.com/dshills/ted/internal/editor"
	"github.com/dshills/ted/internal/input/key"
)

// Dispatcher resolves key events against the state's keymap.
type Dispatcher struct {
	state   *editor.State
	actions map[string]Action
}

// New creates a dispatcher for state with the built-in named actions.
func New(state *editor.State) *Dispatcher {
	d := &Dispatcher{state: state}
	d.actions = builtinActions(state)
	return d
}

// Dispatch handles a single key event.
func (d *Dispatcher) Dispatch(ev key.Event) error {
	if b, ok := d.state.Keymap().Lookup(ev.Code); ok {
		return b.Action()
	}
	if !ev.Code.IsPrintable() {
		return nil
	}
	err := d.state.InsertByte(byte(ev.Code))
	if errors.Is(err, editor.ErrNoActiveBuffer) {
		return nil
	}
	return err
}

// State returns the editor state the dispatcher acts on.
func (d *Dispatcher) State() *editor.State {
	return d.state
}
