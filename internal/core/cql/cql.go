// Package cql parses component query expressions into matchers:
//
//	ALL(position, velocity) & ANY(sprite, label) & NONE(expired)
//	position & velocity & !expired
//
// A bare name is shorthand for ALL(name). Clauses are joined with "&"; at most
// one ANY clause is allowed since a matcher holds a single any-of list.
//
// "!" negates a clause: !name and !ANY(a, b) become NONE, !NONE(a, b) becomes
// ANY(a, b) and !ALL(a) becomes NONE(a). !ALL with more than one component
// has no matcher form and is rejected.
package cql

import (
	"github.com/alecthomas/participle/v2"
	"github.com/rotisserie/eris"

	"github.com/l1jgo/ecsrt/internal/core/ecs"
)

type cqlComponent struct {
	Name string `@Ident`
}

type cqlList struct {
	Components []*cqlComponent `"(" ( @@ ( "," @@ )* )? ")"`
}

type cqlClause struct {
	All  *cqlList      `  "ALL" @@`
	Any  *cqlList      `| "ANY" @@`
	None *cqlList      `| "NONE" @@`
	Not  *cqlClause    `| "!" @@`
	Bare *cqlComponent `| @@`
}

type cqlTerm struct {
	Left  *cqlClause   `@@`
	Right []*cqlClause `( "&" @@ )*`
}

var parser = participle.MustBuild[cqlTerm]()

// Parse builds a matcher from expr, resolving component names through r.
func Parse(r *ecs.Registry, expr string) (ecs.Matcher, error) {
	term, err := parser.ParseString("", expr)
	if err != nil {
		return ecs.Matcher{}, eris.Wrapf(err, "parse %q", expr)
	}

	q := query{registry: r, expr: expr}
	for _, clause := range append([]*cqlClause{term.Left}, term.Right...) {
		if err := q.apply(clause, false); err != nil {
			return ecs.Matcher{}, err
		}
	}
	return ecs.AllOf(q.allOf...).AnyOf(q.anyOf...).NoneOf(q.noneOf...), nil
}

// query accumulates the id lists of one expression.
type query struct {
	registry             *ecs.Registry
	expr                 string
	allOf, anyOf, noneOf []ecs.ComponentID
	anyClauses           int
}

func (q *query) resolve(names []*cqlComponent) ([]ecs.ComponentID, error) {
	ids := make([]ecs.ComponentID, 0, len(names))
	for _, c := range names {
		id, ok := q.registry.Lookup(c.Name)
		if !ok {
			return nil, eris.Errorf("unknown component %q in %q", c.Name, q.expr)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (q *query) addAny(ids []ecs.ComponentID) error {
	q.anyClauses++
	if q.anyClauses > 1 {
		return eris.Errorf("more than one ANY clause in %q", q.expr)
	}
	if len(ids) == 0 {
		return eris.Errorf("ANY needs at least one component in %q", q.expr)
	}
	q.anyOf = append(q.anyOf, ids...)
	return nil
}

// apply folds clause into the lists, inverted when negated is set.
func (q *query) apply(clause *cqlClause, negated bool) error {
	if clause.Not != nil {
		return q.apply(clause.Not, !negated)
	}

	var names []*cqlComponent
	switch {
	case clause.All != nil:
		names = clause.All.Components
	case clause.Any != nil:
		names = clause.Any.Components
	case clause.None != nil:
		names = clause.None.Components
	case clause.Bare != nil:
		names = []*cqlComponent{clause.Bare}
	}
	ids, err := q.resolve(names)
	if err != nil {
		return err
	}

	switch {
	case clause.Any != nil && !negated:
		return q.addAny(ids)
	case clause.Any != nil:
		q.noneOf = append(q.noneOf, ids...)
	case clause.None != nil && !negated:
		q.noneOf = append(q.noneOf, ids...)
	case clause.None != nil:
		return q.addAny(ids)
	case !negated:
		q.allOf = append(q.allOf, ids...)
	case len(ids) > 1:
		return eris.Errorf("cannot negate ALL of several components in %q", q.expr)
	default:
		q.noneOf = append(q.noneOf, ids...)
	}
	return nil
}

// MustParse is Parse for expressions known to be valid, such as package-level
// system declarations. It panics on error.
func MustParse(r *ecs.Registry, expr string) ecs.Matcher {
	m, err := Parse(r, expr)
	if err != nil {
		panic(err)
	}
	return m
}

// Format renders m in the syntax Parse accepts.
func Format(r *ecs.Registry, m ecs.Matcher) string {
	return m.Format(r)
}
