package ecs

// ComponentPools keeps one LIFO free-list of retired component instances per
// component id. An instance is either live on exactly one entity or parked in
// the free-list of its id.
type ComponentPools struct {
	free [][]any
}

func NewComponentPools() *ComponentPools {
	return &ComponentPools{
		free: make([][]any, 0, 32),
	}
}

func (p *ComponentPools) push(id ComponentID, c any) {
	if c == nil {
		return
	}
	for int(id) >= len(p.free) {
		p.free = append(p.free, nil)
	}
	p.free[id] = append(p.free[id], c)
}

func (p *ComponentPools) pop(id ComponentID) (any, bool) {
	if int(id) >= len(p.free) {
		return nil, false
	}
	stack := p.free[id]
	n := len(stack)
	if n == 0 {
		return nil, false
	}
	c := stack[n-1]
	stack[n-1] = nil
	p.free[id] = stack[:n-1]
	return c, true
}

// Len reports how many retired instances are waiting for reuse under id.
func (p *ComponentPools) Len(id ComponentID) int {
	if int(id) >= len(p.free) {
		return 0
	}
	return len(p.free[id])
}

// Clear drops every retired instance for id.
func (p *ComponentPools) Clear(id ComponentID) {
	if int(id) < len(p.free) {
		p.free[id] = nil
	}
}

// ClearAll drops every retired instance of every id.
func (p *ComponentPools) ClearAll() {
	for i := range p.free {
		p.free[i] = nil
	}
}

// acquire hands out a recycled *T for id, or a fresh one when the free-list is
// empty. The caller overwrites the value before installing it.
func acquire[T any](p *ComponentPools, id ComponentID) *T {
	if c, ok := p.pop(id); ok {
		if t, ok := c.(*T); ok {
			return t
		}
	}
	return new(T)
}
