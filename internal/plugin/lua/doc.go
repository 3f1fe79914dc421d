// Package lua wraps gopher-lua with a sandboxed state for user scripts.
//
// Only the base, table, string and math libraries are opened. Functions that
// load code from disk or strings are removed, and every execution runs under
// a timeout:
//
//	state := lua.NewState(lua.WithExecutionTimeout(20 * time.Millisecond))
//	defer state.Close()
//
//	if err := state.DoFile("hooks.lua"); err != nil {
//	    return err
//	}
//	rets, err := state.Call("on_hover", tbl)
package lua
