package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/l1jgo/ecsrt/internal/core/ecs"
)

// Spawner creates entities from named prefabs.
type Spawner interface {
	Spawn(name string) (*ecs.Entity, error)
}

// Engine wraps a single gopher-lua VM running script-defined systems.
// Single-goroutine access only (game loop).
type Engine struct {
	vm      *lua.LState
	log     *zap.Logger
	dir     string
	ctx     *ecs.Context
	spawner Spawner
	frame   uint64
}

// NewEngine creates a Lua engine bound to ctx and loads all scripts from dir.
// spawner may be nil, in which case ecs.spawn raises an error.
func NewEngine(dir string, ctx *ecs.Context, spawner Spawner, log *zap.Logger) (*Engine, error) {
	e := &Engine{log: log, dir: dir, ctx: ctx, spawner: spawner}
	vm, err := e.load()
	if err != nil {
		return nil, err
	}
	e.vm = vm
	return e, nil
}

func (e *Engine) load() (*lua.LState, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	vm.SetGlobal("systems", vm.NewTable())
	vm.SetGlobal("ecs", e.api(vm))

	if err := e.loadDir(vm, e.dir); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load scripts: %w", err)
	}
	return vm, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(vm *lua.LState, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// Reload rebuilds the VM from the script directory. Systems already
// registered keep working and pick up the new function bodies; on error the
// old VM stays in place.
func (e *Engine) Reload() error {
	vm, err := e.load()
	if err != nil {
		return err
	}
	e.vm.Close()
	e.vm = vm
	e.log.Info("lua scripts reloaded", zap.String("dir", e.dir), zap.Strings("systems", e.SystemNames()))
	return nil
}

// SetFrame sets the tick number scripts see through ecs.frame() and as the
// argument of execute hooks.
func (e *Engine) SetFrame(frame uint64) { e.frame = frame }

func (e *Engine) Frame() uint64 { return e.frame }

func (e *Engine) Close() {
	e.vm.Close()
}
