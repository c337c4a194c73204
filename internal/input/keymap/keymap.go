package keymap

import (
	"fmt"
	"sort"

	"github.com/dshills/ted/internal/input/key"
)

// Action is a bound editor command. Any state it needs is captured by the
// closure. A returned error stops the main loop.
type Action func() error

// Binding is a key bound to a named action.
type Binding struct {
	Code   key.Code
	Name   string
	Action Action
}

// Keymap holds at most one action per key code. Later bindings replace
// earlier ones.
type Keymap struct {
	bindings map[key.Code]Binding
}

// New creates an empty keymap.
func New() *Keymap {
	return &Keymap{bindings: make(map[key.Code]Binding)}
}

// Bind binds code to action, replacing any previous binding.
func (k *Keymap) Bind(code key.Code, name string, action Action) error {
	if !code.IsValid() {
		return fmt.Errorf("bind %s: key code %d out of range", name, uint16(code))
	}
	if action == nil {
		return fmt.Errorf("bind %s to %v: nil action", name, code)
	}
	k.bindings[code] = Binding{Code: code, Name: name, Action: action}
	return nil
}

// Unbind removes the binding for code.
func (k *Keymap) Unbind(code key.Code) {
	delete(k.bindings, code)
}

// Lookup returns the binding for code.
func (k *Keymap) Lookup(code key.Code) (Binding, bool) {
	b, ok := k.bindings[code]
	return b, ok
}

// Len returns the number of bound keys.
func (k *Keymap) Len() int {
	return len(k.bindings)
}

// Bindings returns all bindings ordered by key code.
func (k *Keymap) Bindings() []Binding {
	out := make([]Binding, 0, len(k.bindings))
	for _, b := range k.bindings {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Clone returns a copy of the keymap.
func (k *Keymap) Clone() *Keymap {
	c := New()
	for code, b := range k.bindings {
		c.bindings[code] = b
	}
	return c
}
