package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/ascend/internal/game/dice"
)

// Manager owns a single sandboxed LState and exposes hook dispatch.
//
// An LState is single-threaded, so every call into the VM holds mu.
type Manager struct {
	mu        sync.Mutex
	L         *lua.LState
	instLimit int
	roller    *dice.Roller
	logger    *zap.Logger
}

// NewManager creates a Manager with no scripts loaded.
//
// Precondition: roller and logger must be non-nil.
// Postcondition: Returns a non-nil Manager; panics on nil dependencies.
func NewManager(roller *dice.Roller, logger *zap.Logger) *Manager {
	if roller == nil {
		panic("scripting.NewManager: roller must not be nil")
	}
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	return &Manager{roller: roller, logger: logger}
}

// Load creates a sandboxed VM, registers the engine.* modules, then executes
// every *.lua file in scriptDir in lexicographic order. A previously loaded VM
// is replaced only when the new one loads cleanly.
//
// Precondition: scriptDir must be a readable directory.
// Postcondition: Returns an error on read or Lua load failure.
func (m *Manager) Load(scriptDir string, instLimit int) error {
	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q: %w", scriptDir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	L, release := NewSandboxedState(instLimit)
	m.RegisterModules(L)
	for _, path := range luaFiles {
		if err := L.DoFile(path); err != nil {
			release()
			L.Close()
			return fmt.Errorf("scripting: loading %q: %w", path, err)
		}
	}
	release()

	m.mu.Lock()
	old := m.L
	m.L = L
	m.instLimit = instLimit
	m.mu.Unlock()
	if old != nil {
		old.Close()
	}
	m.logger.Info("scripting: scripts loaded",
		zap.String("dir", scriptDir),
		zap.Int("files", len(luaFiles)),
	)
	return nil
}

// CallHookTable calls the named Lua global function with a single table built
// from fields and converts a table result back into a map of its numeric
// entries. Non-numeric entries are ignored. Lua runtime errors, including an
// exhausted instruction budget, are logged at Warn level and never propagated.
//
// Postcondition: Returns (nil, nil) when no VM is loaded or the hook is
// absent, fails, or does not return a table.
func (m *Manager) CallHookTable(hook string, fields map[string]float64) (map[string]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.L == nil {
		return nil, nil
	}

	arg := m.L.NewTable()
	for k, v := range fields {
		m.L.SetField(arg, k, lua.LNumber(v))
	}
	tbl, ok := m.callLocked(hook, arg).(*lua.LTable)
	if !ok {
		return nil, nil
	}

	out := make(map[string]float64)
	tbl.ForEach(func(k, v lua.LValue) {
		key, kok := k.(lua.LString)
		num, vok := v.(lua.LNumber)
		if kok && vok {
			out[string(key)] = float64(num)
		}
	})
	return out, nil
}

func (m *Manager) callLocked(hook string, args ...lua.LValue) lua.LValue {
	if m.L == nil {
		m.logger.Debug("scripting: no VM loaded", zap.String("hook", hook))
		return lua.LNil
	}

	fn := m.L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil
	}

	release := withBudget(m.L, m.instLimit)
	defer release()
	if err := m.L.CallByParam(lua.P{
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

	ret := m.L.Get(-1)
	m.L.Pop(1)
	return ret
}

// Close releases the VM. Later hook calls return LNil.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.L != nil {
		m.L.Close()
		m.L = nil
	}
}
