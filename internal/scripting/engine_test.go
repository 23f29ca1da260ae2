package scripting

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/l1jgo/ecsrt/internal/core/ecs"
	"github.com/l1jgo/ecsrt/internal/core/system"
)

type marker struct{}

func (marker) Name() string { return "marker" }

type fakeSpawner struct {
	ctx   *ecs.Context
	names []string
}

func (f *fakeSpawner) Spawn(name string) (*ecs.Entity, error) {
	if name == "broken" {
		return nil, errors.New("no such prefab")
	}
	f.names = append(f.names, name)
	e := f.ctx.CreateEntity()
	return e, ecs.Add(e, marker{})
}

func writeScript(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func newEngine(t *testing.T, scripts map[string]string) (*Engine, *ecs.Context, *fakeSpawner, string) {
	t.Helper()
	dir := t.TempDir()
	for name, body := range scripts {
		writeScript(t, dir, name, body)
	}
	r := ecs.NewRegistry()
	ecs.IDFor[marker](r)
	ctx := ecs.NewContext(ecs.WithRegistry(r))
	sp := &fakeSpawner{ctx: ctx}
	e, err := NewEngine(dir, ctx, sp, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e, ctx, sp, dir
}

const spawnerScript = `
counts = {}

systems.spawner = {
  initialize = function()
    ecs.spawn("mover")
  end,
  execute = function(frame)
    if frame % 2 == 0 then
      ecs.spawn("mover")
    end
    counts[#counts + 1] = ecs.group_count("ALL(marker)")
  end,
}

systems.reporter = {
  teardown = function()
    ecs.log("entities: " .. ecs.entity_count())
  end,
}
`

func TestScriptSystemsRegisterDeclaredHooks(t *testing.T) {
	e, ctx, sp, _ := newEngine(t, map[string]string{"spawner.lua": spawnerScript})

	assert.Equal(t, []string{"reporter", "spawner"}, e.SystemNames())

	c := system.NewContainer("lua")
	for _, s := range e.Systems() {
		require.NoError(t, c.Add(s))
	}
	assert.Equal(t, 1, c.Count(system.PhaseInitialize))
	assert.Equal(t, 1, c.Count(system.PhaseExecute))
	assert.Equal(t, 1, c.Count(system.PhaseTeardown))
	assert.Equal(t, 0, c.Count(system.PhaseCleanup))

	require.NoError(t, c.Initialize())
	for frame := uint64(1); frame <= 4; frame++ {
		e.SetFrame(frame)
		require.NoError(t, c.Execute())
	}
	require.NoError(t, c.Teardown())

	assert.Equal(t, 3, ctx.Count())
	assert.Len(t, sp.names, 3)

	counts, ok := e.vm.GetGlobal("counts").(*lua.LTable)
	require.True(t, ok)
	var got []int
	for i := 1; i <= counts.Len(); i++ {
		got = append(got, int(lua.LVAsNumber(counts.RawGetInt(i))))
	}
	assert.Equal(t, []int{1, 2, 2, 3}, got)
}

func TestScriptErrorsAreReturned(t *testing.T) {
	e, _, _, _ := newEngine(t, map[string]string{"bad.lua": `
systems.bad = {
  execute = function(frame) ecs.spawn("broken") end,
}
systems.query = {
  execute = function(frame) ecs.group_count("ALL(nothing)") end,
}
`})
	specs := e.Systems()
	require.Len(t, specs, 2)

	err := specs[0].Spec().Execute()
	assert.ErrorContains(t, err, "lua bad.execute")
	assert.ErrorContains(t, err, "no such prefab")

	err = specs[1].Spec().Execute()
	assert.ErrorContains(t, err, "unknown component")
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "syntax.lua", "systems.x = {")
	_, err := NewEngine(dir, ecs.NewContext(), nil, zap.NewNop())
	assert.ErrorContains(t, err, "load scripts")

	e, err := NewEngine(filepath.Join(dir, "missing"), ecs.NewContext(), nil, zap.NewNop())
	require.NoError(t, err, "a missing script dir is empty")
	assert.Empty(t, e.SystemNames())
	e.Close()
}

func TestReloadSwapsFunctionBodies(t *testing.T) {
	e, _, sp, dir := newEngine(t, map[string]string{"a.lua": `
systems.a = { execute = function(frame) ecs.spawn("first") end }
`})
	specs := e.Systems()
	require.Len(t, specs, 1)
	run := specs[0].Spec().Execute

	require.NoError(t, run())
	writeScript(t, dir, "a.lua", `systems.a = { execute = function(frame) ecs.spawn("second") end }`)
	require.NoError(t, e.Reload())
	require.NoError(t, run())
	assert.Equal(t, []string{"first", "second"}, sp.names)

	writeScript(t, dir, "a.lua", `systems.a = {`)
	assert.Error(t, e.Reload(), "broken reload keeps the old VM")
	require.NoError(t, run())
	assert.Equal(t, []string{"first", "second", "second"}, sp.names)

	writeScript(t, dir, "a.lua", `systems.a = {}`)
	require.NoError(t, e.Reload())
	require.NoError(t, run(), "a hook removed by reload is skipped")
	assert.Len(t, sp.names, 3)
}

func TestSpawnWithoutSpawner(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "s.lua", `systems.s = { initialize = function() ecs.spawn("x") end }`)
	e, err := NewEngine(dir, ecs.NewContext(ecs.WithRegistry(ecs.NewRegistry())), nil, zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	err = e.Systems()[0].Spec().Initialize()
	assert.ErrorContains(t, err, "no prefab library")
}
