package scripting

import (
	"fmt"
	"sort"

	lua "github.com/yuin/gopher-lua"

	"github.com/l1jgo/ecsrt/internal/core/system"
)

// Scripts declare systems in the global "systems" table:
//
//	systems.spawner = {
//	  initialize = function() ... end,
//	  execute    = function(frame) ... end,
//	}
//
// Each function present becomes a phase hook; functions are looked up on
// every call so a reload swaps bodies in place.
var hookFields = map[system.Phase]string{
	system.PhaseInitialize:   "initialize",
	system.PhaseExecute:      "execute",
	system.PhaseFixedExecute: "fixed_execute",
	system.PhaseCleanup:      "cleanup",
	system.PhaseTeardown:     "teardown",
}

// SystemNames returns the names registered in the systems table, sorted.
func (e *Engine) SystemNames() []string {
	var names []string
	if t, ok := e.vm.GetGlobal("systems").(*lua.LTable); ok {
		t.ForEach(func(k, v lua.LValue) {
			if _, ok := v.(*lua.LTable); ok {
				names = append(names, k.String())
			}
		})
	}
	sort.Strings(names)
	return names
}

// Systems returns one registration per script system.
func (e *Engine) Systems() []system.System {
	names := e.SystemNames()
	out := make([]system.System, 0, len(names))
	for _, name := range names {
		out = append(out, luaSystem{engine: e, name: name})
	}
	return out
}

type luaSystem struct {
	engine *Engine
	name   string
}

func (s luaSystem) Spec() system.Spec {
	spec := system.Spec{Name: "lua." + s.name}
	for p := system.PhaseInitialize; p <= system.PhaseTeardown; p++ {
		if s.engine.hook(s.name, hookFields[p]) == lua.LNil {
			continue
		}
		run := s.runner(hookFields[p], p == system.PhaseExecute || p == system.PhaseFixedExecute)
		switch p {
		case system.PhaseInitialize:
			spec.Initialize = run
		case system.PhaseExecute:
			spec.Execute = run
		case system.PhaseFixedExecute:
			spec.FixedExecute = run
		case system.PhaseCleanup:
			spec.Cleanup = run
		case system.PhaseTeardown:
			spec.Teardown = run
		}
	}
	return spec
}

func (s luaSystem) runner(field string, passFrame bool) func() error {
	return func() error {
		fn := s.engine.hook(s.name, field)
		if fn == lua.LNil {
			return nil // removed by a reload
		}
		var args []lua.LValue
		if passFrame {
			args = append(args, lua.LNumber(s.engine.frame))
		}
		if err := s.engine.vm.CallByParam(lua.P{
			Fn:      fn,
			NRet:    0,
			Protect: true,
		}, args...); err != nil {
			return fmt.Errorf("lua %s.%s: %w", s.name, field, err)
		}
		return nil
	}
}

func (e *Engine) hook(name, field string) lua.LValue {
	systems, ok := e.vm.GetGlobal("systems").(*lua.LTable)
	if !ok {
		return lua.LNil
	}
	t, ok := systems.RawGetString(name).(*lua.LTable)
	if !ok {
		return lua.LNil
	}
	fn, ok := t.RawGetString(field).(*lua.LFunction)
	if !ok {
		return lua.LNil
	}
	return fn
}
