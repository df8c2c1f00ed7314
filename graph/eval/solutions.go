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
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/cayleygraph/quad"

	"github.com/cayleygraph/surf/graph"
	"github.com/cayleygraph/surf/query"
)

var (
	reVar   = regexp.MustCompile(`^\?(\w+)$`)
	reOrder = regexp.MustCompile(`(?i)^(asc|desc)\s*\(\s*\?(\w+)\s*\)$`)
)

// patternVars lists variables of a pattern in order of first appearance.
func patternVars(items []query.Item) []string {
	var (
		out  []string
		seen = make(map[string]struct{})
	)
	add := func(v quad.Value) {
		if name, ok := v.(query.Var); ok {
			if _, ok := seen[string(name)]; !ok {
				seen[string(name)] = struct{}{}
				out = append(out, string(name))
			}
		}
	}
	var walk func(items []query.Item)
	walk = func(items []query.Item) {
		for _, it := range items {
			switch it := it.(type) {
			case query.Triple:
				add(it.S)
				add(it.P)
				add(it.O)
			case query.Group:
				walk(it)
			case query.OptionalGroup:
				walk(it)
			case query.Union:
				walk(it)
			case query.NamedGroup:
				add(it.Name)
				walk(it.Items)
			case *query.Query:
				vars, err := projection(it)
				if err != nil {
					continue
				}
				for _, v := range vars {
					add(query.Var(v))
				}
			}
		}
	}
	walk(items)
	return out
}

// projection returns the names of projected variables.
func projection(q *query.Query) ([]string, error) {
	if len(q.Vars) == 0 {
		return patternVars(q.Pattern), nil
	}
	var out []string
	for _, tok := range q.Vars {
		tok = strings.TrimSpace(tok)
		if tok == "*" {
			return patternVars(q.Pattern), nil
		}
		m := reVar.FindStringSubmatch(tok)
		if m == nil {
			return nil, fmt.Errorf("%w: projection %q", graph.ErrOperationNotSupported, tok)
		}
		out = append(out, m[1])
	}
	return out, nil
}

type orderKey struct {
	name string
	desc bool
}

func parseOrder(tokens []string) []orderKey {
	out := make([]orderKey, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if m := reVar.FindStringSubmatch(tok); m != nil {
			out = append(out, orderKey{name: m[1]})
		} else if m := reOrder.FindStringSubmatch(tok); m != nil {
			out = append(out, orderKey{name: m[2], desc: strings.EqualFold(m[1], "desc")})
		}
	}
	return out
}

func sortSolutions(sols []binding, tokens []string) {
	keys := parseOrder(tokens)
	if len(keys) == 0 {
		return
	}
	sort.SliceStable(sols, func(i, j int) bool {
		for _, k := range keys {
			c := graph.CompareValues(sols[i][k.name], sols[j][k.name])
			if c == 0 {
				continue
			}
			if k.desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func rowKey(b binding, vars []string) string {
	var sb strings.Builder
	for _, v := range vars {
		if val := b[v]; val != nil {
			sb.WriteString(val.String())
		}
		sb.WriteByte(0)
	}
	return sb.String()
}

func slice(sols []binding, s query.Slice) []binding {
	if s.Offset > 0 {
		if s.Offset >= len(sols) {
			return nil
		}
		sols = sols[s.Offset:]
	}
	if s.Limit > 0 && s.Limit < len(sols) {
		sols = sols[:s.Limit]
	}
	return sols
}

// solutions evaluates the pattern and applies ORDER BY.
func (e *evaluator) solutions(q *query.Query) ([]binding, error) {
	sols, err := e.evalGroup(q.Pattern, []binding{{}})
	if err != nil {
		return nil, err
	}
	sortSolutions(sols, q.Order)
	return sols, nil
}

// selectRows evaluates a SELECT query: pattern, order, projection,
// DISTINCT and slice, in this order.
func (e *evaluator) selectRows(q *query.Query) ([]binding, []string, error) {
	vars, err := projection(q)
	if err != nil {
		return nil, nil, err
	}
	sols, err := e.solutions(q)
	if err != nil {
		return nil, nil, err
	}
	rows := make([]binding, 0, len(sols))
	seen := make(map[string]struct{})
	for _, s := range sols {
		row := make(binding, len(vars))
		for _, v := range vars {
			if val, ok := s[v]; ok {
				row[v] = val
			}
		}
		if q.Modifier != query.ModifierNone {
			k := rowKey(row, vars)
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
		}
		rows = append(rows, row)
	}
	return slice(rows, q.Slice), vars, nil
}

// instantiate fills a template triple. It returns false if a variable is
// unbound or the resulting triple is not valid RDF.
func instantiate(t query.Triple, b binding) (query.Triple, bool) {
	out := query.Triple{S: resolve(t.S, b), P: resolve(t.P, b), O: resolve(t.O, b)}
	if out.S == nil || out.P == nil || out.O == nil {
		return out, false
	}
	return out, out.Validate() == nil
}

func (e *evaluator) construct(q *query.Query) (*graph.Result, error) {
	tmpl := q.Update.Template
	if len(tmpl) == 0 {
		tmpl = q.Triples()
	}
	sols, err := e.solutions(q)
	if err != nil {
		return nil, err
	}
	sols = slice(sols, q.Slice)
	res := &graph.Result{}
	seen := make(map[string]struct{})
	for _, b := range sols {
		for _, t := range tmpl {
			it, ok := instantiate(t, b)
			if !ok {
				continue
			}
			qd := quad.Quad{Subject: it.S, Predicate: it.P, Object: it.O}
			if k := tripleKey(qd); !contains(seen, k) {
				seen[k] = struct{}{}
				res.Quads = append(res.Quads, qd)
			}
		}
	}
	return res, nil
}

func contains(m map[string]struct{}, k string) bool {
	_, ok := m[k]
	return ok
}

func (e *evaluator) describe(q *query.Query) (*graph.Result, error) {
	sols := []binding{{}}
	if len(q.Pattern) != 0 {
		var err error
		if sols, err = e.solutions(q); err != nil {
			return nil, err
		}
		sols = slice(sols, q.Slice)
	}
	var targets []quad.Value
	for _, tok := range q.Vars {
		tok = strings.TrimSpace(tok)
		switch {
		case tok == "*":
			for _, v := range patternVars(q.Pattern) {
				for _, b := range sols {
					targets = append(targets, b[v])
				}
			}
		case strings.HasPrefix(tok, "<") && strings.HasSuffix(tok, ">"):
			targets = append(targets, quad.IRI(tok[1:len(tok)-1]))
		default:
			m := reVar.FindStringSubmatch(tok)
			if m == nil {
				return nil, fmt.Errorf("%w: DESCRIBE %q", graph.ErrOperationNotSupported, tok)
			}
			for _, b := range sols {
				targets = append(targets, b[m[1]])
			}
		}
	}
	res := &graph.Result{}
	seen := make(map[string]struct{})
	described := make(map[string]struct{})
	for _, t := range targets {
		switch t.(type) {
		case quad.IRI, quad.BNode:
		default:
			continue
		}
		if contains(described, t.String()) {
			continue
		}
		described[t.String()] = struct{}{}
		for _, g := range e.graphs() {
			quads, err := e.qs.Match(e.ctx, quad.Quad{Subject: t, Label: g})
			if err != nil {
				return nil, err
			}
			for _, qd := range quads {
				qd.Label = nil
				if k := tripleKey(qd); !contains(seen, k) {
					seen[k] = struct{}{}
					res.Quads = append(res.Quads, qd)
				}
			}
		}
	}
	return res, nil
}
