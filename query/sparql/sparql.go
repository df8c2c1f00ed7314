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

// Package sparql translates query models into SPARQL and SPARQL/Update text.
package sparql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cayleygraph/quad"

	"github.com/cayleygraph/surf/query"
)

// Dialect selects the update syntax.
type Dialect int

const (
	// SPARUL is the SPARQL/Update member submission syntax: INSERT INTO <g> { ... }.
	SPARUL Dialect = iota
	// SPARQL11 is the SPARQL 1.1 Update syntax: INSERT DATA { GRAPH <g> { ... } }.
	SPARQL11
)

func (d Dialect) String() string {
	switch d {
	case SPARUL:
		return "sparul"
	case SPARQL11:
		return "sparql11"
	}
	return "dialect(" + strconv.Itoa(int(d)) + ")"
}

// ParseDialect returns a dialect by name.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "", "sparul":
		return SPARUL, nil
	case "sparql11", "sparql1.1", "1.1":
		return SPARQL11, nil
	}
	return 0, fmt.Errorf("unknown SPARQL dialect %q", name)
}

// Translator renders query models as text. The zero value uses SPARUL.
type Translator struct {
	Dialect Dialect
}

// Translate renders q using the default dialect.
func Translate(q *query.Query) (string, error) {
	return Translator{}.Translate(q)
}

// Translate renders q. Queries with a recorded validation error are refused.
func (t Translator) Translate(q *query.Query) (string, error) {
	if q == nil {
		return "", fmt.Errorf("%w: nil query", query.ErrInvalid)
	} else if err := q.Err(); err != nil {
		return "", err
	}
	w := &writer{dialect: t.Dialect}
	s := w.query(q)
	if w.err != nil {
		return "", w.err
	}
	return s, nil
}

type writer struct {
	dialect Dialect
	err     error
}

func (w *writer) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

func (w *writer) term(v quad.Value) string {
	s, err := FormatTerm(v)
	if err != nil {
		w.fail(err)
	}
	return s
}

func (w *writer) query(q *query.Query) string {
	var p []string
	switch q.Kind {
	case query.KindSelect, query.KindDescribe:
		p = append(p, q.Kind.String())
		if m := q.Modifier.String(); m != "" {
			p = append(p, m)
		}
		if len(q.Vars) == 0 {
			p = append(p, "*")
		} else {
			p = append(p, q.Vars...)
		}
		p = append(p, w.dataset(q)...)
		if q.Kind == query.KindSelect || len(q.Pattern) != 0 {
			p = append(p, "WHERE", w.group(q.Pattern))
		}
		p = append(p, w.modifiers(q)...)
	case query.KindConstruct:
		tmpl := q.Update.Template
		if len(tmpl) == 0 {
			tmpl = q.Triples()
		}
		p = append(p, "CONSTRUCT", w.triples(tmpl))
		p = append(p, w.dataset(q)...)
		p = append(p, "WHERE", w.group(q.Pattern))
		p = append(p, w.modifiers(q)...)
	case query.KindAsk:
		p = append(p, "ASK")
		p = append(p, w.dataset(q)...)
		p = append(p, w.group(q.Pattern))
	case query.KindInsert, query.KindInsertData:
		p = w.update(q, "INTO", q.Update.Into)
	case query.KindDelete, query.KindDeleteData:
		p = w.update(q, "FROM", q.Update.From)
	case query.KindLoad:
		if q.Update.Source == "" {
			w.fail(fmt.Errorf("%w: LOAD without a source document", query.ErrInvalid))
			return ""
		}
		p = append(p, "LOAD", w.term(q.Update.Source))
		if len(q.Update.Into) != 0 {
			p = append(p, "INTO")
			if w.dialect == SPARQL11 {
				p = append(p, "GRAPH")
			}
			p = append(p, w.term(q.Update.Into[0]))
		}
	case query.KindClear:
		p = append(p, "CLEAR")
		if q.Update.Graph != "" {
			p = append(p, "GRAPH", w.term(q.Update.Graph))
		} else if w.dialect == SPARQL11 {
			p = append(p, "DEFAULT")
		}
	default:
		w.fail(fmt.Errorf("%w: unsupported query kind %v", query.ErrInvalid, q.Kind))
	}
	return strings.Join(p, " ")
}

func (w *writer) dataset(q *query.Query) []string {
	var p []string
	for _, g := range q.Dataset.Default {
		p = append(p, "FROM", w.term(g))
	}
	for _, g := range q.Dataset.Named {
		p = append(p, "FROM NAMED", w.term(g))
	}
	return p
}

func (w *writer) modifiers(q *query.Query) []string {
	var p []string
	if len(q.Order) != 0 {
		p = append(p, "ORDER BY")
		p = append(p, q.Order...)
	}
	if q.Slice.Limit > 0 {
		p = append(p, "LIMIT", strconv.Itoa(q.Slice.Limit))
	}
	if q.Slice.Offset > 0 {
		p = append(p, "OFFSET", strconv.Itoa(q.Slice.Offset))
	}
	return p
}

func (w *writer) update(q *query.Query, kw string, graphs []quad.IRI) []string {
	if len(q.Update.Template) == 0 {
		w.fail(fmt.Errorf("%w: %v without a template", query.ErrInvalid, q.Kind))
		return nil
	}
	data := q.Kind == query.KindInsertData || q.Kind == query.KindDeleteData
	p := []string{q.Kind.String()}
	if w.dialect == SPARQL11 {
		p = append(p, w.graphTemplate(graphs, q.Update.Template))
		if data {
			return p
		}
		// DELETE matches its pattern in the graphs it deletes from.
		if q.Kind == query.KindDelete {
			for _, g := range graphs {
				p = append(p, "USING", w.term(g))
			}
		}
		return append(p, "WHERE", w.group(q.Pattern))
	}
	for _, g := range graphs {
		p = append(p, kw, w.term(g))
	}
	p = append(p, w.triples(q.Update.Template))
	if !data && len(q.Pattern) != 0 {
		p = append(p, "WHERE", w.group(q.Pattern))
	}
	return p
}

// graphTemplate renders a SPARQL 1.1 quad template.
func (w *writer) graphTemplate(graphs []quad.IRI, ts []query.Triple) string {
	if len(graphs) == 0 {
		return w.triples(ts)
	}
	body := w.triples(ts)
	blocks := make([]string, 0, len(graphs))
	for _, g := range graphs {
		blocks = append(blocks, "GRAPH "+w.term(g)+" "+body)
	}
	return "{ " + strings.Join(blocks, " ") + " }"
}

func (w *writer) triple(t query.Triple) string {
	return w.term(t.S) + " " + w.term(t.P) + " " + w.term(t.O)
}

func (w *writer) triples(ts []query.Triple) string {
	if len(ts) == 0 {
		return "{ }"
	}
	parts := make([]string, 0, len(ts))
	for _, t := range ts {
		parts = append(parts, w.triple(t))
	}
	return "{ " + strings.Join(parts, " . ") + " }"
}

func (w *writer) group(items []query.Item) string {
	body := w.items(items)
	if body == "" {
		return "{ }"
	}
	return "{ " + body + " }"
}

// items joins pattern items. A triple followed by another item is
// terminated with a dot; other items are self-delimiting.
func (w *writer) items(items []query.Item) string {
	var sb strings.Builder
	for i, it := range items {
		if i > 0 {
			if _, ok := items[i-1].(query.Triple); ok {
				sb.WriteString(" . ")
			} else {
				sb.WriteString(" ")
			}
		}
		sb.WriteString(w.item(it))
	}
	return sb.String()
}

func (w *writer) item(it query.Item) string {
	switch it := it.(type) {
	case query.Triple:
		return w.triple(it)
	case query.Group:
		return w.group(it)
	case query.OptionalGroup:
		return "OPTIONAL " + w.group(it)
	case query.NamedGroup:
		return "GRAPH " + w.term(it.Name) + " " + w.group(it.Items)
	case query.Union:
		alts := make([]string, 0, len(it))
		for _, alt := range it {
			if g, ok := alt.(query.Group); ok {
				alts = append(alts, w.group(g))
			} else {
				alts = append(alts, w.group([]query.Item{alt}))
			}
		}
		return strings.Join(alts, " UNION ")
	case query.Filter:
		return "FILTER " + string(it)
	case *query.Query:
		return "{ " + w.query(it) + " }"
	}
	w.fail(fmt.Errorf("%w: unsupported pattern item %T", query.ErrInvalid, it))
	return ""
}
