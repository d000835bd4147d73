package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules registers the engine.* Lua tables into L.
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine.log and engine.world are defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()
	L.SetGlobal("engine", engine)
	L.SetField(engine, "log", m.logModule(L))
	L.SetField(engine, "world", m.worldModule(L))
}

func (m *Manager) logModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	levels := map[string]func(string, ...zap.Field){
		"debug": m.logger.Debug,
		"info":  m.logger.Info,
		"warn":  m.logger.Warn,
		"error": m.logger.Error,
	}
	for name, log := range levels {
		log := log
		L.SetField(mod, name, L.NewFunction(func(L *lua.LState) int {
			log(L.CheckString(1), zap.String("source", "lua"))
			return 0
		}))
	}
	return mod
}

func (m *Manager) worldModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	L.SetField(mod, "win_percent", L.NewFunction(func(L *lua.LState) int {
		if m.WinPercent == nil {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LNumber(m.WinPercent()))
		return 1
	}))
	L.SetField(mod, "blur", L.NewFunction(func(L *lua.LState) int {
		if m.SetBlur == nil {
			return 0
		}
		m.SetBlur(
			float64(L.CheckNumber(1)),
			float64(L.CheckNumber(2)),
			float64(L.CheckNumber(3)),
			float64(L.OptNumber(4, 1)),
		)
		return 0
	}))
	return mod
}
