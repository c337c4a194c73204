package dispatcher

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dshills/ted/internal/input/key"
)

// ActionNone in a binding removes the key's binding.
const ActionNone = "none"

// DefaultBinding pairs a key specification with an action name.
type DefaultBinding struct {
	Keys   string
	Action string
}

// DefaultBindings are installed at startup.
var DefaultBindings = []DefaultBinding{
	{"Up", ActionCursorUp},
	{"Down", ActionCursorDown},
	{"Left", ActionCursorLeft},
	{"Right", ActionCursorRight},
	{"PageUp", ActionCursorPageUp},
	{"PageDown", ActionCursorPageDown},
	{"Home", ActionCursorHome},
	{"End", ActionCursorEnd},
	{"Enter", ActionNewline},
	{"Backspace", ActionBackspace},
	{"Ctrl+H", ActionBackspace},
	{"Ctrl+Q", ActionQuit},
}

// InstallDefaults binds DefaultBindings into the state's keymap.
func (d *Dispatcher) InstallDefaults() error {
	for _, b := range DefaultBindings {
		if err := d.Bind(b.Keys, b.Action); err != nil {
			return err
		}
	}
	return nil
}

// Bind binds the key specification keys to the named action.
// The action name "none" removes the binding instead.
func (d *Dispatcher) Bind(keys, name string) error {
	code, err := key.Parse(keys)
	if err != nil {
		return fmt.Errorf("binding %q: %w", keys, err)
	}
	if name == ActionNone {
		d.state.Keymap().Unbind(code)
		return nil
	}
	action, ok := d.actions[name]
	if !ok {
		return fmt.Errorf("binding %q: %w: %s", keys, ErrUnknownAction, name)
	}
	return d.state.Keymap().Bind(code, name, action)
}

// ApplyBindings binds every entry of bindings (key specification to action
// name), in key order so repeated codes resolve deterministically. Invalid
// entries are skipped and reported together.
func (d *Dispatcher) ApplyBindings(bindings map[string]string) error {
	specs := make([]string, 0, len(bindings))
	for spec := range bindings {
		specs = append(specs, spec)
	}
	sort.Strings(specs)

	var errs []error
	for _, spec := range specs {
		if err := d.Bind(spec, bindings[spec]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
