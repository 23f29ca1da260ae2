package ecs

// Handle encodes a 32-bit slot index in the lower bits and a 32-bit generation
// in the upper bits. The generation increments when the entity in the slot is
// destroyed, so handles held across a destroy resolve to nothing.
type Handle uint64

func newHandle(index uint32, generation uint32) Handle {
	return Handle(uint64(generation)<<32 | uint64(index))
}

func (h Handle) Index() uint32      { return uint32(h) }
func (h Handle) Generation() uint32 { return uint32(h >> 32) }
func (h Handle) IsZero() bool       { return h == 0 }

// handleArena maps slots to entity objects. Entity objects keep their slot for
// life, so recycling an entity reuses its slot under the bumped generation.
// Slot 0 is reserved so the zero Handle never resolves.
type handleArena struct {
	generations []uint32
	entities    []*Entity
}

func newHandleArena() *handleArena {
	return &handleArena{
		generations: make([]uint32, 1, 1024),
		entities:    make([]*Entity, 1, 1024),
	}
}

func (a *handleArena) allocate(e *Entity) Handle {
	idx := uint32(len(a.entities))
	a.entities = append(a.entities, e)
	a.generations = append(a.generations, 0)
	return newHandle(idx, 0)
}

// current returns the live handle for a slot.
func (a *handleArena) current(index uint32) Handle {
	return newHandle(index, a.generations[index])
}

func (a *handleArena) invalidate(h Handle) {
	idx := h.Index()
	if idx == 0 || int(idx) >= len(a.generations) {
		return
	}
	if a.generations[idx] != h.Generation() {
		return // stale
	}
	a.generations[idx]++
}

func (a *handleArena) resolve(h Handle) (*Entity, bool) {
	idx := h.Index()
	if idx == 0 || int(idx) >= len(a.entities) {
		return nil, false
	}
	if a.generations[idx] != h.Generation() {
		return nil, false
	}
	e := a.entities[idx]
	if !e.enabled {
		return nil, false
	}
	return e, true
}
