package plugin

import (
	"errors"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/ted/internal/dispatcher"
)

// installAPI publishes the ted table and redirects print to the log.
func (h *Host) installAPI() {
	mod := h.L.SetFuncs(h.L.NewTable(), map[string]lua.LGFunction{
		"action":  h.luaAction,
		"bind":    h.luaBind,
		"run":     h.luaRun,
		"insert":  h.luaInsert,
		"cursor":  h.luaCursor,
		"line":    h.luaLine,
		"set_eob": h.luaSetEOB,
		"quit":    h.luaQuit,
		"log":     h.luaLog,
	})
	h.L.SetGlobal("ted", mod)
	h.L.SetGlobal("print", h.L.NewFunction(h.luaPrint))
}

func (h *Host) luaAction(L *lua.LState) int {
	name := L.CheckString(1)
	fn := L.CheckFunction(2)
	if err := h.dispatcher.RegisterAction(name, h.scriptAction(name, fn)); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func (h *Host) luaBind(L *lua.LState) int {
	keys := L.CheckString(1)
	name := L.CheckString(2)
	if err := h.dispatcher.Bind(keys, name); err != nil {
		L.RaiseError("%v", err)
	}
	h.bindings = append(h.bindings, binding{keys: keys, action: name})
	return 0
}

func (h *Host) luaRun(L *lua.LState) int {
	name := L.CheckString(1)
	action, ok := h.dispatcher.Action(name)
	if !ok {
		L.RaiseError("%v: %s", dispatcher.ErrUnknownAction, name)
	}
	if err := action(); err != nil {
		if errors.Is(err, dispatcher.ErrQuit) {
			h.quit = true
			return 0
		}
		L.RaiseError("%s: %v", name, err)
	}
	return 0
}

func (h *Host) luaInsert(L *lua.LState) int {
	text := L.CheckString(1)
	for i := 0; i < len(text); i++ {
		var err error
		if text[i] == '\n' {
			err = h.state.InsertNewline()
		} else {
			err = h.state.InsertByte(text[i])
		}
		if err != nil {
			L.RaiseError("insert: %v", err)
		}
	}
	return 0
}

func (h *Host) luaCursor(L *lua.LState) int {
	c := h.state.Cursor()
	L.Push(lua.LNumber(c.Row))
	L.Push(lua.LNumber(c.Col))
	return 2
}

func (h *Host) luaLine(L *lua.LState) int {
	b := h.state.ActiveBuffer()
	row := L.OptInt(1, h.state.Cursor().Row)
	if b == nil || row < 0 || row >= b.LineCount() {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(b.Line(row)))
	return 1
}

func (h *Host) luaSetEOB(L *lua.LState) int {
	s := L.CheckString(1)
	if len(s) != 1 {
		L.ArgError(1, "expected a single character")
	}
	h.eob = s[0]
	h.state.SetEOBChar(s[0])
	return 0
}

func (h *Host) luaQuit(L *lua.LState) int {
	h.quit = true
	return 0
}

func (h *Host) luaLog(L *lua.LState) int {
	h.log.Info("%s", L.CheckString(1))
	return 0
}

func (h *Host) luaPrint(L *lua.LState) int {
	parts := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	h.log.Info("%s", strings.Join(parts, "\t"))
	return 0
}
