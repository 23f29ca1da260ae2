package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/l1jgo/ecsrt/internal/core/cql"
)

// api builds the "ecs" table exposed to scripts:
//
//	ecs.entity_count()      live entities in the context
//	ecs.group_count(expr)   members of the group for a query expression
//	ecs.spawn(prefab)       creation index of the spawned entity
//	ecs.frame()             current tick
//	ecs.log(msg)            info log line tagged with the script system
func (e *Engine) api(vm *lua.LState) *lua.LTable {
	t := vm.NewTable()
	vm.SetFuncs(t, map[string]lua.LGFunction{
		"entity_count": func(L *lua.LState) int {
			L.Push(lua.LNumber(e.ctx.Count()))
			return 1
		},
		"group_count": func(L *lua.LState) int {
			expr := L.CheckString(1)
			m, err := cql.Parse(e.ctx.Registry(), expr)
			if err != nil {
				L.RaiseError("group_count: %v", err)
				return 0
			}
			L.Push(lua.LNumber(e.ctx.GetGroup(m).Count()))
			return 1
		},
		"spawn": func(L *lua.LState) int {
			name := L.CheckString(1)
			if e.spawner == nil {
				L.RaiseError("spawn %s: no prefab library loaded", name)
				return 0
			}
			ent, err := e.spawner.Spawn(name)
			if err != nil {
				L.RaiseError("spawn %s: %v", name, err)
				return 0
			}
			L.Push(lua.LNumber(ent.ID()))
			return 1
		},
		"frame": func(L *lua.LState) int {
			L.Push(lua.LNumber(e.frame))
			return 1
		},
		"log": func(L *lua.LState) int {
			e.log.Info("lua", zap.String("msg", L.CheckString(1)), zap.Uint64("frame", e.frame))
			return 0
		},
	})
	return t
}
