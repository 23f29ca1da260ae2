package ecs

// Each1 calls fn for every member of g with its A component. Members missing
// A are skipped.
func Each1[A any](g *Group, fn func(*Entity, *A)) {
	r := g.registry
	ida := IDFor[A](r)
	for _, e := range g.Entities() {
		if a, ok := e.components[ida].(*A); ok {
			fn(e, a)
		}
	}
}

// Each2 calls fn for every member of g that has both A and B. The member list
// is a snapshot, so fn may add, remove or replace components freely.
func Each2[A, B any](g *Group, fn func(*Entity, *A, *B)) {
	r := g.registry
	ida, idb := IDFor[A](r), IDFor[B](r)
	for _, e := range g.Entities() {
		a, ok := e.components[ida].(*A)
		if !ok {
			continue
		}
		b, ok := e.components[idb].(*B)
		if !ok {
			continue
		}
		fn(e, a, b)
	}
}

// Each3 calls fn for every member of g that has A, B and C.
func Each3[A, B, C any](g *Group, fn func(*Entity, *A, *B, *C)) {
	r := g.registry
	ida, idb, idc := IDFor[A](r), IDFor[B](r), IDFor[C](r)
	for _, e := range g.Entities() {
		a, ok := e.components[ida].(*A)
		if !ok {
			continue
		}
		b, ok := e.components[idb].(*B)
		if !ok {
			continue
		}
		c, ok := e.components[idc].(*C)
		if !ok {
			continue
		}
		fn(e, a, b, c)
	}
}
