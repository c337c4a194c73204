// Package plugin runs the user's Lua init script.
//
// The script lives next to the configuration file (ted/init.lua) and runs
// once at startup in a restricted Lua state: only the base, table, string
// and math libraries are available and file loading functions are removed.
// It talks to the editor through the global ted table:
//
//	ted.action(name, fn)   register fn as a named action
//	ted.bind(keys, name)   bind a key specification to an action
//	ted.run(name)          invoke an action by name
//	ted.insert(text)       insert text at the cursor; "\n" breaks the line
//	ted.cursor()           return the cursor row and column (zero-based)
//	ted.line([row])        return a line of the active buffer, or nil
//	ted.set_eob(char)      change the end-of-buffer marker
//	ted.quit()             end the session after the current action
//	ted.log(msg)           write msg to the editor log
//
// Example:
//
//	ted.action("insert.date", function()
//	    ted.insert("2024-01-01")
//	end)
//	ted.bind("Ctrl+D", "insert.date")
//
// Every call into Lua runs under a deadline. A script action that raises
// an error is logged and otherwise ignored.
package plugin
