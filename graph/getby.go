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
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/cayleygraph/quad"

	"github.com/cayleygraph/surf/clog"
	"github.com/cayleygraph/surf/query"
)

// GetByQuery builds the query used by RunGetBy. It selects subjects ?s with
// their types ?c. Limit and offset apply to subjects, not to rows, so the
// subjects are selected by a subquery.
//
// When ordering by a predicate, the query also returns the optional values
// ?order and leaves sorting and slicing to RunGetBy, since a subject may have
// any number of values.
func GetByQuery(p Params) (*query.Query, error) {
	byValue := p.Order != nil && p.Order.Pred != ""
	var order []string
	if p.Order != nil && !byValue {
		order = []string{"?s"}
		if p.Order.Desc {
			order = []string{"DESC(?s)"}
		}
	}
	sub := query.Select("?s").Distinct()
	if p.Type != "" {
		sub.Where(query.T("?s", RDFType, p.Type))
	}
	for i, f := range p.Filters {
		switch len(f.Values) {
		case 0:
			sub.Where(edge("?s", f.Pred, fmt.Sprintf("?f%d", i), f.Direct))
		case 1:
			sub.Where(edge("?s", f.Pred, f.Values[0], f.Direct))
		default:
			alts := make([]query.Item, 0, len(f.Values))
			for _, v := range f.Values {
				alts = append(alts, edge("?s", f.Pred, v, f.Direct))
			}
			sub.Union(alts...)
		}
	}
	for i, c := range p.Conds {
		if strings.Count(c.Expr, "%s") != 1 {
			return nil, fmt.Errorf("%w: condition %q must contain exactly one %%s", query.ErrInvalid, c.Expr)
		}
		v := fmt.Sprintf("?c%d", i)
		sub.Where(edge("?s", c.Pred, v, c.Direct)).
			Filter(fmt.Sprintf(c.Expr, v))
	}
	if len(sub.Pattern) == 0 {
		sub.Where(query.T("?s", "?p", "?o"))
	}
	if len(order) != 0 {
		sub.OrderBy(order...)
	}
	if !byValue {
		if p.Limit > 0 {
			sub.Limit(p.Limit)
		}
		if p.Offset > 0 {
			sub.Offset(p.Offset)
		}
	}

	vars := []string{"?s", "?c"}
	if byValue {
		vars = append(vars, "?order")
	}
	q := scope(query.Select(vars...), p.Label).Where(sub)
	if byValue {
		q.OptionalGroup(query.T("?s", p.Order.Pred, "?order"))
	}
	q.OptionalGroup(query.T("?s", RDFType, "?c"))
	if len(order) != 0 {
		q.OrderBy(order...)
	}
	if err := q.Err(); err != nil {
		return nil, err
	}
	return q, nil
}

// orderNodes sorts subjects by their ?order values. A subject is ranked by
// its smallest value, or its largest one for descending order. Subjects
// without a value come first in ascending order, as unbound values do in
// SPARQL.
func orderNodes(nodes []Node, res *Result, desc bool) {
	keys := make(map[string]quad.Value, len(nodes))
	for _, row := range res.Rows {
		s, v := row["s"], row["order"]
		if s == nil || v == nil {
			continue
		}
		k := s.String()
		cur, ok := keys[k]
		if !ok {
			keys[k] = v
			continue
		}
		c := CompareValues(v, cur)
		if (!desc && c < 0) || (desc && c > 0) {
			keys[k] = v
		}
	}
	sort.SliceStable(nodes, func(i, j int) bool {
		c := CompareValues(keys[nodes[i].Value.String()], keys[nodes[j].Value.String()])
		if c == 0 {
			c = CompareValues(nodes[i].Value, nodes[j].Value)
			return c < 0
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func sliceNodes(nodes []Node, limit, offset int) []Node {
	if offset > 0 {
		if offset >= len(nodes) {
			return nil
		}
		nodes = nodes[offset:]
	}
	if limit > 0 && limit < len(nodes) {
		nodes = nodes[:limit]
	}
	return nodes
}

// RunGetBy implements Reader.GetBy on top of Execute and Load.
// When p.Full is set every subject is loaded with one call per direction.
func RunGetBy(ctx context.Context, r Reader, p Params) ([]Entry, error) {
	q, err := GetByQuery(p)
	if err != nil {
		return nil, err
	}
	res, err := r.Execute(ctx, q)
	if err != nil {
		return nil, err
	}
	nodes := NodesOf(res, "s", "c")
	if p.Order != nil && p.Order.Pred != "" {
		orderNodes(nodes, res, p.Order.Desc)
		nodes = sliceNodes(nodes, p.Limit, p.Offset)
	}
	if clog.V(2) {
		clog.Infof("get_by: %d subjects", len(nodes))
	}
	out := make([]Entry, 0, len(nodes))
	for _, n := range nodes {
		e := Entry{Subject: n.Value, Types: n.Types}
		if p.Full {
			if e.Direct, err = r.Load(ctx, n.Value, true, p.Label); err != nil {
				return nil, fmt.Errorf("load %v: %w", n.Value, err)
			}
			if !p.OnlyDirect {
				if e.Inverse, err = r.Load(ctx, n.Value, false, p.Label); err != nil {
					return nil, fmt.Errorf("load %v: %w", n.Value, err)
				}
			}
		}
		out = append(out, e)
	}
	return out, nil
}
