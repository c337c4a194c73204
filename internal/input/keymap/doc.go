// Package keymap maps key codes to editor actions.
//
// A Keymap is a flat table indexed by key.Code: there are no modes, no key
// sequences and no conditional bindings. Each code holds at most one
// Binding, and binding a code again replaces the previous entry.
//
// Bindings carry the action's name so the keymap can be listed and so a
// configuration reload can rebuild it by name:
//
//	km := keymap.New()
//	_ = km.Bind(key.Ctrl('q'), "editor.quit", quit)
//	if b, ok := km.Lookup(ev.Code); ok {
//	    err = b.Action()
//	}
package keymap
