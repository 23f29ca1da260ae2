package ecs

import (
	"slices"
	"strconv"
	"strings"
)

// ComponentIDList is an ordered list of component ids. Lists built by this
// package are sorted ascending with duplicates removed.
type ComponentIDList []ComponentID

func distinct(ids []ComponentID) ComponentIDList {
	if len(ids) == 0 {
		return nil
	}
	out := slices.Clone(ids)
	slices.Sort(out)
	return ComponentIDList(slices.Compact(out))
}

// Matcher is an immutable component predicate: every AllOf id, at least one
// AnyOf id when AnyOf is non-empty, and no NoneOf id.
type Matcher struct {
	allOf   ComponentIDList
	anyOf   ComponentIDList
	noneOf  ComponentIDList
	indices ComponentIDList
	hash    uint32
}

func newMatcher(allOf, anyOf, noneOf []ComponentID) Matcher {
	m := Matcher{
		allOf:  distinct(allOf),
		anyOf:  distinct(anyOf),
		noneOf: distinct(noneOf),
	}
	merged := make([]ComponentID, 0, len(m.allOf)+len(m.anyOf)+len(m.noneOf))
	merged = append(merged, m.allOf...)
	merged = append(merged, m.anyOf...)
	merged = append(merged, m.noneOf...)
	m.indices = distinct(merged)
	m.hash = hashMatcher(m.allOf, m.anyOf, m.noneOf)
	return m
}

func AllOf(ids ...ComponentID) Matcher  { return newMatcher(ids, nil, nil) }
func AnyOf(ids ...ComponentID) Matcher  { return newMatcher(nil, ids, nil) }
func NoneOf(ids ...ComponentID) Matcher { return newMatcher(nil, nil, ids) }

// AllOfMatchers requires every id referenced by any of ms.
func AllOfMatchers(ms ...Matcher) Matcher  { return newMatcher(mergeIndices(ms), nil, nil) }
func AnyOfMatchers(ms ...Matcher) Matcher  { return newMatcher(nil, mergeIndices(ms), nil) }
func NoneOfMatchers(ms ...Matcher) Matcher { return newMatcher(nil, nil, mergeIndices(ms)) }

func mergeIndices(ms []Matcher) []ComponentID {
	var ids []ComponentID
	for _, m := range ms {
		ids = append(ids, m.indices...)
	}
	return ids
}

// AllOf returns a copy of m that additionally requires ids.
func (m Matcher) AllOf(ids ...ComponentID) Matcher {
	return newMatcher(append(slices.Clone(m.allOf), ids...), m.anyOf, m.noneOf)
}

// AnyOf returns a copy of m whose AnyOf list also contains ids.
func (m Matcher) AnyOf(ids ...ComponentID) Matcher {
	return newMatcher(m.allOf, append(slices.Clone(m.anyOf), ids...), m.noneOf)
}

// NoneOf returns a copy of m that additionally excludes ids.
func (m Matcher) NoneOf(ids ...ComponentID) Matcher {
	return newMatcher(m.allOf, m.anyOf, append(slices.Clone(m.noneOf), ids...))
}

func (m Matcher) Matches(e *Entity) bool {
	return e.HasComponents(m.allOf) &&
		(len(m.anyOf) == 0 || e.HasAnyComponent(m.anyOf)) &&
		!e.HasAnyComponent(m.noneOf)
}

// IsEmpty reports whether the matcher references no component at all.
func (m Matcher) IsEmpty() bool { return len(m.indices) == 0 }

// matchesBare reports whether an entity with no components satisfies m.
func (m Matcher) matchesBare() bool { return len(m.allOf) == 0 && len(m.anyOf) == 0 }

func (m Matcher) Indices() ComponentIDList       { return m.indices }
func (m Matcher) AllOfIndices() ComponentIDList  { return m.allOf }
func (m Matcher) AnyOfIndices() ComponentIDList  { return m.anyOf }
func (m Matcher) NoneOfIndices() ComponentIDList { return m.noneOf }
func (m Matcher) Hash() uint32                   { return m.hash }

// Equal compares the three lists. Construction order of ids does not matter.
func (m Matcher) Equal(o Matcher) bool {
	return m.hash == o.hash &&
		slices.Equal(m.allOf, o.allOf) &&
		slices.Equal(m.anyOf, o.anyOf) &&
		slices.Equal(m.noneOf, o.noneOf)
}

func (m Matcher) OnEntityAdded() Trigger   { return Trigger{Matcher: m, Event: GroupEventAdded} }
func (m Matcher) OnEntityRemoved() Trigger { return Trigger{Matcher: m, Event: GroupEventRemoved} }
func (m Matcher) OnEntityAddedOrRemoved() Trigger {
	return Trigger{Matcher: m, Event: GroupEventAddedOrRemoved}
}

const (
	hashPrimeAll1, hashPrimeAll2   = 3, 53
	hashPrimeAny1, hashPrimeAny2   = 307, 367
	hashPrimeNone1, hashPrimeNone2 = 647, 683
)

func hashMatcher(allOf, anyOf, noneOf ComponentIDList) uint32 {
	var h uint32
	h = applyHash(h, allOf, hashPrimeAll1, hashPrimeAll2)
	h = applyHash(h, anyOf, hashPrimeAny1, hashPrimeAny2)
	h = applyHash(h, noneOf, hashPrimeNone1, hashPrimeNone2)
	return h
}

func applyHash(h uint32, ids ComponentIDList, p1, p2 uint32) uint32 {
	if len(ids) == 0 {
		return h
	}
	for _, id := range ids {
		h ^= uint32(id) * p1
	}
	h ^= uint32(len(ids)) * p2
	return h
}

// String renders the matcher with numeric ids, e.g. "ALL(0, 3) & NONE(2)".
func (m Matcher) String() string { return m.format(nil) }

// Format renders the matcher using the component names known to r.
func (m Matcher) Format(r *Registry) string { return m.format(r) }

func (m Matcher) format(r *Registry) string {
	var parts []string
	for _, clause := range []struct {
		op  string
		ids ComponentIDList
	}{{"ALL", m.allOf}, {"ANY", m.anyOf}, {"NONE", m.noneOf}} {
		if len(clause.ids) == 0 {
			continue
		}
		names := make([]string, len(clause.ids))
		for i, id := range clause.ids {
			if r != nil {
				names[i] = r.Name(id)
			}
			if names[i] == "" {
				names[i] = strconv.FormatUint(uint64(id), 10)
			}
		}
		parts = append(parts, clause.op+"("+strings.Join(names, ", ")+")")
	}
	if len(parts) == 0 {
		return "ALL()"
	}
	return strings.Join(parts, " & ")
}
