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

package eval

import (
	"github.com/cayleygraph/quad"

	"github.com/cayleygraph/surf/clog"
	"github.com/cayleygraph/surf/graph"
	"github.com/cayleygraph/surf/query"
)

func graphValues(graphs []quad.IRI) []quad.Value {
	if len(graphs) == 0 {
		return nil
	}
	out := make([]quad.Value, 0, len(graphs))
	for _, g := range graphs {
		out = append(out, g)
	}
	return out
}

// insert stages a triple into every target graph, or into the default graph.
func insert(tx *graph.Transaction, t query.Triple, into []quad.Value) {
	if len(into) == 0 {
		tx.AddQuad(quad.Quad{Subject: t.S, Predicate: t.P, Object: t.O})
		return
	}
	for _, g := range into {
		tx.AddQuad(quad.Quad{Subject: t.S, Predicate: t.P, Object: t.O, Label: g})
	}
}

// remove stages deletion of all stored quads matching the triple in the given
// graphs, or in any graph when none are given.
func (e *evaluator) remove(tx *graph.Transaction, t query.Triple, from []quad.Value) error {
	graphs := from
	if len(graphs) == 0 {
		graphs = []quad.Value{nil}
	}
	for _, g := range graphs {
		quads, err := e.qs.Match(e.ctx, quad.Quad{Subject: t.S, Predicate: t.P, Object: t.O, Label: g})
		if err != nil {
			return err
		}
		for _, q := range quads {
			tx.RemoveQuad(q)
		}
	}
	return nil
}

func (e *evaluator) update(q *query.Query) error {
	tx := graph.NewTransaction()
	into := graphValues(q.Update.Into)
	from := graphValues(q.Update.From)
	switch q.Kind {
	case query.KindInsertData:
		for _, t := range q.Update.Template {
			insert(tx, t, into)
		}
	case query.KindDeleteData:
		for _, t := range q.Update.Template {
			if err := e.remove(tx, t, from); err != nil {
				return err
			}
		}
	case query.KindInsert, query.KindDelete:
		if q.Kind == query.KindDelete {
			e.active = from
		}
		sols, err := e.evalGroup(q.Pattern, []binding{{}})
		if err != nil {
			return err
		}
		for _, b := range sols {
			for _, t := range q.Update.Template {
				it, ok := instantiate(t, b)
				if !ok {
					continue
				}
				if q.Kind == query.KindInsert {
					insert(tx, it, into)
				} else if err := e.remove(tx, it, from); err != nil {
					return err
				}
			}
		}
	case query.KindClear:
		pattern := quad.Quad{}
		if q.Update.Graph != "" {
			pattern.Label = q.Update.Graph
		}
		quads, err := e.qs.Match(e.ctx, pattern)
		if err != nil {
			return err
		}
		for _, qd := range quads {
			tx.RemoveQuad(qd)
		}
	}
	if clog.V(2) {
		clog.Infof("eval: %v applies %d deltas", q.Kind, tx.Len())
	}
	return tx.Apply(e.ctx, e.qs, graph.IgnoreOpts{IgnoreDup: true, IgnoreMissing: true})
}
