package scripting

import (
	"bytes"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// CrestHook is the global Lua function called on every crest view result.
const CrestHook = "on_crest_view"

// Manager owns one sandboxed LState holding the crest scripts and
// dispatches hooks into it.
//
// Manager is safe for concurrent use; calls into the LState are serialized.
type Manager struct {
	mu        sync.Mutex
	state     *lua.LState
	instLimit int
	logger    *zap.Logger

	// Injected after construction. nil = no-op in engine.* modules.
	WinPercent func() float64
	SetBlur    func(r, g, b, a float64)
}

// NewManager creates a Manager with no scripts loaded.
//
// Precondition: logger must be non-nil.
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		panic("scripting: NewManager requires a logger")
	}
	return &Manager{logger: logger}
}

// Load creates a sandboxed VM, registers the engine.* modules, then executes
// every *.lua file in dir in lexicographic order. A previous VM is replaced
// only when every file loads.
//
// Precondition: dir must be a readable directory of fsys.
// Postcondition: Returns error on read or Lua load failure; the previous VM stays active.
func (m *Manager) Load(fsys fs.FS, dir string, instLimit int) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && path.Ext(e.Name()) == ".lua" {
			files = append(files, path.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)

	L := NewSandboxedState(instLimit)
	m.RegisterModules(L)
	for _, name := range files {
		if err := doFile(L, fsys, name, instLimit); err != nil {
			L.Close()
			return err
		}
	}

	m.mu.Lock()
	if m.state != nil {
		m.state.Close()
	}
	m.state = L
	m.instLimit = instLimit
	m.mu.Unlock()

	m.logger.Info("crest scripts loaded", zap.String("dir", dir), zap.Int("files", len(files)))
	return nil
}

func doFile(L *lua.LState, fsys fs.FS, name string, instLimit int) error {
	src, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("scripting: reading %q: %w", name, err)
	}
	fn, err := L.Load(bytes.NewReader(src), name)
	if err != nil {
		return fmt.Errorf("scripting: compiling %q: %w", name, err)
	}
	cancel := Refill(L, instLimit)
	defer cancel()
	L.Push(fn)
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		return fmt.Errorf("scripting: loading %q: %w", name, err)
	}
	return nil
}

// Loaded reports whether a VM is active.
func (m *Manager) Loaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state != nil
}

// CallHook calls the named Lua global function with a fresh opcode budget.
// Returns LNil if no VM is loaded or the hook is not defined. Lua runtime
// errors are logged at Warn level and never propagated.
//
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(hook string, args ...lua.LValue) lua.LValue {
	m.mu.Lock()
	defer m.mu.Unlock()
	L := m.state
	if L == nil {
		return lua.LNil
	}

	fn := L.GetGlobal(hook)
	if fn.Type() != lua.LTFunction {
		return lua.LNil
	}

	cancel := Refill(L, m.instLimit)
	defer cancel()
	if err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil
	}

	ret := L.Get(-1)
	L.Pop(1)
	return ret
}

// CallCrestHook calls on_crest_view(crest, seen, id).
//
// Postcondition: Returns true only when the hook returned true, meaning the
// script handled the view result itself.
func (m *Manager) CallCrestHook(crest string, seen bool, id string) bool {
	ret := m.CallHook(CrestHook, lua.LString(crest), lua.LBool(seen), lua.LString(id))
	return lua.LVAsBool(ret)
}

// Close releases the VM.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != nil {
		m.state.Close()
		m.state = nil
	}
}
