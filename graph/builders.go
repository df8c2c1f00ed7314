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

package graph

import (
	"sort"

	"github.com/cayleygraph/quad"

	"github.com/cayleygraph/surf/query"
)

// Query models shared by all backends. Remote backends translate them,
// local backends evaluate them.

// edge returns a triple from s to o, or from o to s when not direct.
func edge(s, p, o interface{}, direct bool) query.Triple {
	if direct {
		return query.T(s, p, o)
	}
	return query.T(o, p, s)
}

func scope(q *query.Query, label quad.IRI) *query.Query {
	if label != "" {
		q.From(label)
	}
	return q
}

// GetQuery selects values ?v of a predicate with their types ?t.
func GetQuery(s quad.Value, p quad.IRI, direct bool, label quad.IRI) *query.Query {
	q := query.Select("?v", "?t")
	scope(q, label)
	return q.Where(edge(s, p, "?v", direct)).
		OptionalGroup(query.T("?v", RDFType, "?t"))
}

// LoadQuery selects all predicates ?p with values ?v and their types ?t.
func LoadQuery(s quad.Value, direct bool, label quad.IRI) *query.Query {
	q := query.Select("?p", "?v", "?t")
	scope(q, label)
	return q.Where(edge(s, "?p", "?v", direct)).
		OptionalGroup(query.T("?v", RDFType, "?t"))
}

// IsPresentQuery asks if s has any outgoing triple.
func IsPresentQuery(s quad.Value, label quad.IRI) *query.Query {
	return scope(query.Ask(), label).Where(query.T(s, "?p", "?o"))
}

// AllQuery selects distinct instances ?s of a type.
func AllQuery(typ quad.IRI, limit, offset int, label quad.IRI) *query.Query {
	q := scope(query.Select("?s").Distinct(), label).
		Where(query.T("?s", RDFType, typ))
	if limit > 0 {
		q.Limit(limit)
	}
	if offset > 0 {
		q.Offset(offset)
	}
	return q
}

// InstancesByAttributeQuery selects instances ?s of a type that have any of
// the predicates, with all their types ?c.
func InstancesByAttributeQuery(typ quad.IRI, preds []quad.IRI, direct bool, label quad.IRI) *query.Query {
	q := scope(query.Select("?s", "?c"), label).
		Where(query.T("?s", RDFType, typ))
	switch len(preds) {
	case 0:
	case 1:
		q.Where(edge("?s", preds[0], "?v", direct))
	default:
		alts := make([]query.Item, 0, len(preds))
		for _, p := range preds {
			alts = append(alts, edge("?s", p, "?v", direct))
		}
		q.Union(alts...)
	}
	return q.OptionalGroup(query.T("?s", RDFType, "?c"))
}

// NodesOf groups rows by the value variable, collecting types from the type
// variable. Order of first appearance is kept.
func NodesOf(res *Result, v, t string) []Node {
	var (
		out   []Node
		index = make(map[string]int)
	)
	for _, row := range res.Rows {
		val := row[v]
		if val == nil {
			continue
		}
		k := val.String()
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, Node{Value: val})
		}
		if typ, ok := row[t].(quad.IRI); ok {
			out[i].Types = appendType(out[i].Types, typ)
		}
	}
	return out
}

// PredicatesOf groups (?p, ?v, ?t) rows into a predicate map.
func PredicatesOf(res *Result, p, v, t string) map[quad.IRI][]Node {
	type key struct{ p, v string }
	out := make(map[quad.IRI][]Node)
	index := make(map[key]int)
	for _, row := range res.Rows {
		pred, ok := row[p].(quad.IRI)
		val := row[v]
		if !ok || val == nil {
			continue
		}
		k := key{string(pred), val.String()}
		i, ok := index[k]
		if !ok {
			i = len(out[pred])
			index[k] = i
			out[pred] = append(out[pred], Node{Value: val})
		}
		if typ, ok := row[t].(quad.IRI); ok {
			out[pred][i].Types = appendType(out[pred][i].Types, typ)
		}
	}
	return out
}

func appendType(types []quad.IRI, t quad.IRI) []quad.IRI {
	for _, x := range types {
		if x == t {
			return types
		}
	}
	return append(types, t)
}

// Update models. Each helper returns updates that must run in order.
// Nil entries are never returned; an empty object yields no insert.

func insertTriples(s quad.Value, direct map[quad.IRI][]quad.Value, label quad.IRI) *query.Query {
	preds := make([]quad.IRI, 0, len(direct))
	for p := range direct {
		preds = append(preds, p)
	}
	sort.Slice(preds, func(i, j int) bool { return preds[i] < preds[j] })
	var ts []query.Triple
	for _, p := range preds {
		for _, o := range direct[p] {
			if o == nil {
				continue
			}
			ts = append(ts, query.Triple{S: s, P: p, O: o})
		}
	}
	if len(ts) == 0 {
		return nil
	}
	q := query.InsertData()
	if label != "" {
		q.Into(label)
	}
	return q.Template(ts...)
}

func deleteWhere(label quad.IRI, t query.Triple) *query.Query {
	q := query.Delete()
	if label != "" {
		q.From(label)
	}
	return q.Template(t).Where(t)
}

func appendNonNil(qs []*query.Query, q *query.Query) []*query.Query {
	if q != nil {
		qs = append(qs, q)
	}
	return qs
}

// SaveUpdates replaces all direct triples of the object.
func SaveUpdates(o Object) []*query.Query {
	s := o.Subject()
	qs := []*query.Query{deleteWhere(o.Label(), query.Triple{S: s, P: query.Var("p"), O: query.Var("o")})}
	return appendNonNil(qs, insertTriples(s, o.Direct(), o.Label()))
}

// UpdateUpdates replaces the values of predicates known to the object.
func UpdateUpdates(o Object) []*query.Query {
	s := o.Subject()
	direct := o.Direct()
	preds := make([]quad.IRI, 0, len(direct))
	for p := range direct {
		preds = append(preds, p)
	}
	sort.Slice(preds, func(i, j int) bool { return preds[i] < preds[j] })
	var qs []*query.Query
	for _, p := range preds {
		qs = append(qs, deleteWhere(o.Label(), query.Triple{S: s, P: p, O: query.Var("o")}))
	}
	return appendNonNil(qs, insertTriples(s, direct, o.Label()))
}

// RemoveUpdates deletes the triples of the object.
func RemoveUpdates(o Object, inverse bool) []*query.Query {
	s := o.Subject()
	qs := []*query.Query{deleteWhere(o.Label(), query.Triple{S: s, P: query.Var("p"), O: query.Var("o")})}
	if inverse {
		qs = append(qs, deleteWhere(o.Label(), query.Triple{S: query.Var("s"), P: query.Var("p"), O: s}))
	}
	return qs
}

// AddTripleUpdate inserts a single triple.
func AddTripleUpdate(s quad.Value, p quad.IRI, o quad.Value, label quad.IRI) *query.Query {
	return insertTriples(s, map[quad.IRI][]quad.Value{p: {o}}, label)
}

// SetTripleUpdates replaces all values of (s, p) with o.
func SetTripleUpdates(s quad.Value, p quad.IRI, o quad.Value, label quad.IRI) []*query.Query {
	qs := []*query.Query{deleteWhere(label, query.Triple{S: s, P: p, O: query.Var("o")})}
	return appendNonNil(qs, AddTripleUpdate(s, p, o, label))
}

// RemoveTripleUpdate deletes matching triples. Nil positions match anything.
func RemoveTripleUpdate(s quad.Value, p quad.IRI, o quad.Value, label quad.IRI) *query.Query {
	t := query.Triple{S: s, P: p, O: o}
	if s == nil {
		t.S = query.Var("s")
	}
	if p == "" {
		t.P = query.Var("p")
	}
	if o == nil {
		t.O = query.Var("o")
	}
	if t.IsGround() {
		q := query.DeleteData()
		if label != "" {
			q.From(label)
		}
		return q.Template(t)
	}
	return deleteWhere(label, t)
}

// ClearUpdate removes all triples of a graph, or of the whole store.
func ClearUpdate(label quad.IRI) *query.Query {
	q := query.Clear()
	if label != "" {
		q.Graph(label)
	}
	return q
}
