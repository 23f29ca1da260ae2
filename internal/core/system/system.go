package system

import "github.com/l1jgo/ecsrt/internal/core/ecs"

// Phase identifies one of the lists a Container runs.
type Phase int

const (
	PhaseInitialize   Phase = iota // once, before the first tick
	PhaseExecute                   // every tick
	PhaseFixedExecute              // every fixed-rate step
	PhaseCleanup                   // every tick, after execute
	PhaseTeardown                  // once, on shutdown
)

func (p Phase) String() string {
	switch p {
	case PhaseInitialize:
		return "initialize"
	case PhaseExecute:
		return "execute"
	case PhaseFixedExecute:
		return "fixed_execute"
	case PhaseCleanup:
		return "cleanup"
	case PhaseTeardown:
		return "teardown"
	}
	return "unknown"
}

// Spec declares what a system takes part in. Each non-nil hook places the
// system in the matching phase list; a system with no hooks is accepted and
// never run.
type Spec struct {
	Name         string
	SetContext   func(*ecs.Context)
	Initialize   func() error
	Execute      func() error
	FixedExecute func() error
	Cleanup      func() error
	Teardown     func() error
}

// Hook returns the hook registered for phase p, or nil.
func (s Spec) Hook(p Phase) func() error {
	switch p {
	case PhaseInitialize:
		return s.Initialize
	case PhaseExecute:
		return s.Execute
	case PhaseFixedExecute:
		return s.FixedExecute
	case PhaseCleanup:
		return s.Cleanup
	case PhaseTeardown:
		return s.Teardown
	}
	return nil
}

// Phases lists the phases s takes part in.
func (s Spec) Phases() []Phase {
	var out []Phase
	for p := PhaseInitialize; p <= PhaseTeardown; p++ {
		if s.Hook(p) != nil {
			out = append(out, p)
		}
	}
	return out
}

// System is anything that can describe its registration.
type System interface {
	Spec() Spec
}

// Func adapts a plain execute function into a System.
type Func struct {
	Name string
	Fn   func() error
}

func (f Func) Spec() Spec { return Spec{Name: f.Name, Execute: f.Fn} }
