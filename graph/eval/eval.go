// Copyright 2026 The Cayley Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package eval evaluates query models against a graph.QuadStore.
//
// Graph patterns are joined with nested loops over QuadStore.Match. Without
// FROM the default graph is the union of all graphs. FILTER expressions,
// aggregates, expression aliases and LOAD are not supported and return
// graph.ErrOperationNotSupported.
package eval

import (
	"context"
	"fmt"

	"github.com/cayleygraph/quad"

	"github.com/cayleygraph/surf/clog"
	"github.com/cayleygraph/surf/graph"
	"github.com/cayleygraph/surf/query"
)

// binding maps variable names to values.
type binding map[string]quad.Value

func (b binding) clone() binding {
	c := make(binding, len(b)+1)
	for k, v := range b {
		c[k] = v
	}
	return c
}

type evaluator struct {
	ctx    context.Context
	qs     graph.QuadStore
	active []quad.Value // graphs forming the default graph; nil means all
	named  []quad.IRI   // graphs allowed in GRAPH; nil means all
}

// Execute evaluates a query or an update.
func Execute(ctx context.Context, qs graph.QuadStore, q *query.Query) (*graph.Result, error) {
	if q == nil {
		return nil, fmt.Errorf("%w: nil query", query.ErrInvalid)
	} else if err := q.Err(); err != nil {
		return nil, err
	}
	if clog.V(2) {
		clog.Infof("eval: %v query with %d pattern items", q.Kind, len(q.Pattern))
	}
	e := &evaluator{ctx: ctx, qs: qs}
	if q.Kind.IsRead() {
		e.setDataset(q.Dataset)
	}
	switch q.Kind {
	case query.KindSelect:
		rows, vars, err := e.selectRows(q)
		if err != nil {
			return nil, err
		}
		res := &graph.Result{Vars: vars, Rows: make([]graph.Row, 0, len(rows))}
		for _, b := range rows {
			res.Rows = append(res.Rows, graph.Row(b))
		}
		return res, nil
	case query.KindAsk:
		sols, err := e.evalGroup(q.Pattern, []binding{{}})
		if err != nil {
			return nil, err
		}
		return &graph.Result{Bool: len(sols) != 0}, nil
	case query.KindConstruct:
		return e.construct(q)
	case query.KindDescribe:
		return e.describe(q)
	case query.KindInsertData, query.KindDeleteData, query.KindInsert, query.KindDelete, query.KindClear:
		if err := e.update(q); err != nil {
			return nil, err
		}
		return &graph.Result{}, nil
	case query.KindLoad:
		return nil, fmt.Errorf("%w: LOAD", graph.ErrOperationNotSupported)
	}
	return nil, fmt.Errorf("%w: query kind %v", graph.ErrOperationNotSupported, q.Kind)
}

func (e *evaluator) setDataset(ds query.Dataset) {
	if len(ds.Default) != 0 {
		e.active = make([]quad.Value, 0, len(ds.Default))
		for _, g := range ds.Default {
			e.active = append(e.active, g)
		}
	} else if len(ds.Named) != 0 {
		// only named graphs are given: the default graph is empty
		e.active = []quad.Value{}
	}
	if len(ds.Named) != 0 {
		e.named = ds.Named
	}
}

func (e *evaluator) graphs() []quad.Value {
	if e.active == nil {
		return []quad.Value{nil}
	}
	return e.active
}

func resolve(v quad.Value, b binding) quad.Value {
	if name, ok := v.(query.Var); ok {
		return b[string(name)]
	}
	return v
}

// extend binds the variables of t to the values of q.
func extend(b binding, t query.Triple, q quad.Quad) (binding, bool) {
	nb := b
	copied := false
	for _, pos := range [...]struct {
		term quad.Value
		val  quad.Value
	}{{t.S, q.Subject}, {t.P, q.Predicate}, {t.O, q.Object}} {
		name, ok := pos.term.(query.Var)
		if !ok {
			continue
		}
		if cur, ok := nb[string(name)]; ok {
			if !graph.ValueEqual(cur, pos.val) {
				return nil, false
			}
			continue
		}
		if !copied {
			nb = b.clone()
			copied = true
		}
		nb[string(name)] = pos.val
	}
	return nb, true
}

func tripleKey(q quad.Quad) string {
	return q.Subject.String() + " " + q.Predicate.String() + " " + q.Object.String()
}

// match returns all extensions of b that match a triple pattern in the
// active graphs. A triple present in several graphs is matched once.
func (e *evaluator) match(t query.Triple, b binding) ([]binding, error) {
	pattern := quad.Quad{
		Subject:   resolve(t.S, b),
		Predicate: resolve(t.P, b),
		Object:    resolve(t.O, b),
	}
	var (
		out  []binding
		seen = make(map[string]struct{})
	)
	for _, g := range e.graphs() {
		pattern.Label = g
		quads, err := e.qs.Match(e.ctx, pattern)
		if err != nil {
			return nil, err
		}
		for _, q := range quads {
			k := tripleKey(q)
			if _, ok := seen[k]; ok {
				continue
			}
			nb, ok := extend(b, t, q)
			if !ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, nb)
		}
	}
	return out, nil
}

func (e *evaluator) evalGroup(items []query.Item, in []binding) ([]binding, error) {
	cur := in
	for _, it := range items {
		if len(cur) == 0 {
			return cur, nil
		}
		if err := e.ctx.Err(); err != nil {
			return nil, err
		}
		var (
			next []binding
			err  error
		)
		switch it := it.(type) {
		case query.Triple:
			for _, b := range cur {
				m, err := e.match(it, b)
				if err != nil {
					return nil, err
				}
				next = append(next, m...)
			}
		case query.Group:
			next, err = e.evalGroup(it, cur)
		case query.OptionalGroup:
			for _, b := range cur {
				r, err := e.evalGroup(it, []binding{b})
				if err != nil {
					return nil, err
				}
				if len(r) == 0 {
					next = append(next, b)
				} else {
					next = append(next, r...)
				}
			}
		case query.Union:
			for _, alt := range it {
				r, err := e.evalGroup([]query.Item{alt}, cur)
				if err != nil {
					return nil, err
				}
				next = append(next, r...)
			}
		case query.NamedGroup:
			next, err = e.evalGraph(it, cur)
		case query.Filter:
			return nil, fmt.Errorf("%w: FILTER %s", graph.ErrOperationNotSupported, string(it))
		case *query.Query:
			next, err = e.evalSubquery(it, cur)
		default:
			return nil, fmt.Errorf("%w: pattern item %T", graph.ErrOperationNotSupported, it)
		}
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

// namedGraphs lists candidate graphs for GRAPH ?var.
func (e *evaluator) namedGraphs() ([]quad.IRI, error) {
	if e.named != nil {
		return e.named, nil
	}
	all, err := e.qs.Match(e.ctx, quad.Quad{})
	if err != nil {
		return nil, err
	}
	var (
		out  []quad.IRI
		seen = make(map[quad.IRI]struct{})
	)
	for _, q := range all {
		g, ok := q.Label.(quad.IRI)
		if !ok {
			continue
		}
		if _, ok := seen[g]; !ok {
			seen[g] = struct{}{}
			out = append(out, g)
		}
	}
	return out, nil
}

func (e *evaluator) allowedNamed(g quad.IRI) bool {
	if e.named == nil {
		return true
	}
	for _, n := range e.named {
		if n == g {
			return true
		}
	}
	return false
}

func (e *evaluator) evalGraph(ng query.NamedGroup, cur []binding) ([]binding, error) {
	var out []binding
	for _, b := range cur {
		var (
			graphs []quad.IRI
			bind   string
		)
		switch name := ng.Name.(type) {
		case quad.IRI:
			graphs = []quad.IRI{name}
		case query.Var:
			if v, ok := b[string(name)]; ok {
				iri, ok := v.(quad.IRI)
				if !ok {
					continue
				}
				graphs = []quad.IRI{iri}
			} else {
				var err error
				if graphs, err = e.namedGraphs(); err != nil {
					return nil, err
				}
				bind = string(name)
			}
		}
		for _, g := range graphs {
			if !e.allowedNamed(g) {
				continue
			}
			sub := *e
			sub.active = []quad.Value{g}
			in := b
			if bind != "" {
				in = b.clone()
				in[bind] = g
			}
			r, err := sub.evalGroup(ng.Items, []binding{in})
			if err != nil {
				return nil, err
			}
			out = append(out, r...)
		}
	}
	return out, nil
}

func compatible(a, b binding) bool {
	for k, v := range b {
		if cur, ok := a[k]; ok && !graph.ValueEqual(cur, v) {
			return false
		}
	}
	return true
}

func (e *evaluator) evalSubquery(q *query.Query, cur []binding) ([]binding, error) {
	rows, _, err := e.selectRows(q)
	if err != nil {
		return nil, err
	}
	var out []binding
	for _, b := range cur {
		for _, r := range rows {
			if !compatible(b, r) {
				continue
			}
			nb := b.clone()
			for k, v := range r {
				nb[k] = v
			}
			out = append(out, nb)
		}
	}
	return out, nil
}
