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

package query

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cayleygraph/quad"

	"github.com/cayleygraph/surf/clog"
)

var (
	reAggregate = regexp.MustCompile(`(?i)^(count|min|max|avg|sum)\s*\(\s*(distinct\s+)?(\?\w+|\*)\s*\)$`)
	reAlias     = regexp.MustCompile(`(?i)^\(.+\s+as\s+\?\w+\s*\)$`)
	reIRIToken  = regexp.MustCompile("^<[^<>\"{}|^`\\\\\\x00-\\x20]+>$")
	reOrder     = regexp.MustCompile(`(?i)^((asc|desc)\s*\(\s*\?\w+\s*\)|\?\w+)$`)
)

// fail records the first error. It returns q for chaining.
func (q *Query) fail(err error) *Query {
	if q.err == nil {
		q.err = err
		if clog.V(1) {
			clog.Infof("query: %v", err)
		}
	}
	return q
}

func (q *Query) require(clause string, kinds ...Kind) bool {
	if q.err != nil {
		return false
	}
	for _, k := range kinds {
		if q.Kind == k {
			return true
		}
	}
	q.fail(fmt.Errorf("%w: %s on %v query", ErrClause, clause, q.Kind))
	return false
}

func validVar(tok string, kind Kind) bool {
	switch {
	case reVar.MatchString(tok), reAggregate.MatchString(tok), reAlias.MatchString(tok):
		return true
	case tok == "*":
		return kind == KindSelect || kind == KindDescribe
	case kind == KindDescribe:
		return reIRIToken.MatchString(tok)
	}
	return false
}

func (q *Query) project(vars []string) {
	for _, v := range vars {
		v = strings.TrimSpace(v)
		if !validVar(v, q.Kind) {
			q.fail(invalid("bad projection %q: expected ?var, an aggregate or (expr AS ?var)", v))
			return
		}
	}
	q.Vars = append(q.Vars, vars...)
}

func (q *Query) appendItem(clause string, it Item) *Query {
	if !q.require(clause, KindSelect, KindAsk, KindDescribe, KindConstruct, KindInsert, KindDelete) {
		return q
	}
	if err := validateItem(it); err != nil {
		return q.fail(fmt.Errorf("%s: %w", clause, err))
	}
	q.Pattern = append(q.Pattern, it)
	return q
}

// Where appends items to the where clause. Nothing is appended if any
// of the items is invalid.
func (q *Query) Where(items ...Item) *Query {
	if !q.require("WHERE", KindSelect, KindAsk, KindDescribe, KindConstruct, KindInsert, KindDelete) {
		return q
	}
	if err := validateItems(items); err != nil {
		return q.fail(fmt.Errorf("WHERE: %w", err))
	}
	q.Pattern = append(q.Pattern, items...)
	return q
}

// Group appends a group graph pattern.
func (q *Query) Group(items ...Item) *Query {
	return q.appendItem("group", Group(items))
}

// OptionalGroup appends an OPTIONAL group.
func (q *Query) OptionalGroup(items ...Item) *Query {
	return q.appendItem("OPTIONAL", OptionalGroup(items))
}

// Union appends a union of the given alternatives.
func (q *Query) Union(items ...Item) *Query {
	return q.appendItem("UNION", Union(items))
}

// NamedGroup appends a GRAPH group. The name is a variable ("?g") or an IRI.
func (q *Query) NamedGroup(name interface{}, items ...Item) *Query {
	return q.appendItem("GRAPH", NamedGroup{Name: AsTerm(name), Items: items})
}

// Filter appends a filter expression. An empty expression is ignored.
func (q *Query) Filter(expr string) *Query {
	if strings.TrimSpace(expr) == "" {
		return q
	}
	return q.appendItem("FILTER", Filter(expr))
}

// Limit sets the maximal number of solutions. Zero removes the limit.
func (q *Query) Limit(n int) *Query {
	if !q.require("LIMIT", KindSelect, KindDescribe, KindConstruct) {
		return q
	} else if n < 0 {
		return q.fail(invalid("negative limit %d", n))
	}
	q.Slice.Limit = n
	return q
}

// Offset sets the number of solutions to skip. Zero removes the offset.
func (q *Query) Offset(n int) *Query {
	if !q.require("OFFSET", KindSelect, KindDescribe, KindConstruct) {
		return q
	} else if n < 0 {
		return q.fail(invalid("negative offset %d", n))
	}
	q.Slice.Offset = n
	return q
}

// OrderBy appends ORDER BY conditions: "?v", "ASC(?v)" or "DESC(?v)".
func (q *Query) OrderBy(vars ...string) *Query {
	if !q.require("ORDER BY", KindSelect, KindDescribe, KindConstruct) {
		return q
	}
	for _, v := range vars {
		if !reOrder.MatchString(strings.TrimSpace(v)) {
			return q.fail(invalid("bad order condition %q", v))
		}
	}
	q.Order = append(q.Order, vars...)
	return q
}

// Distinct sets the DISTINCT modifier.
func (q *Query) Distinct() *Query {
	if q.require("DISTINCT", KindSelect, KindDescribe) {
		q.Modifier = ModifierDistinct
	}
	return q
}

// Reduced sets the REDUCED modifier.
func (q *Query) Reduced() *Query {
	if q.require("REDUCED", KindSelect, KindDescribe) {
		q.Modifier = ModifierReduced
	}
	return q
}

func graphIRI(clause string, g interface{}) (quad.IRI, error) {
	var iri quad.IRI
	switch v := AsTerm(g).(type) {
	case quad.IRI:
		iri = v
	case quad.String:
		iri = quad.IRI(v)
	}
	if iri == "" {
		return "", invalid("%s requires a graph IRI, got %v", clause, g)
	} else if !ValidIRI(string(iri)) {
		return "", invalid("%s: IRI %q contains characters not allowed in an IRI reference", clause, string(iri))
	}
	return iri, nil
}

// From adds FROM graphs for read queries or the target graphs of DELETE updates.
func (q *Query) From(graphs ...interface{}) *Query {
	if !q.require("FROM", KindSelect, KindAsk, KindDescribe, KindConstruct, KindDelete, KindDeleteData) {
		return q
	}
	list := make([]quad.IRI, 0, len(graphs))
	for _, g := range graphs {
		iri, err := graphIRI("FROM", g)
		if err != nil {
			return q.fail(err)
		}
		list = append(list, iri)
	}
	if q.Kind.IsUpdate() {
		q.Update.From = append(q.Update.From, list...)
	} else {
		q.Dataset.Default = append(q.Dataset.Default, list...)
	}
	return q
}

// FromNamed adds FROM NAMED graphs.
func (q *Query) FromNamed(graphs ...interface{}) *Query {
	if !q.require("FROM NAMED", KindSelect, KindAsk, KindDescribe, KindConstruct) {
		return q
	}
	for _, g := range graphs {
		iri, err := graphIRI("FROM NAMED", g)
		if err != nil {
			return q.fail(err)
		}
		q.Dataset.Named = append(q.Dataset.Named, iri)
	}
	return q
}

// Into adds target graphs for INSERT and LOAD updates.
// LOAD accepts a single graph.
func (q *Query) Into(graphs ...interface{}) *Query {
	if !q.require("INTO", KindInsert, KindInsertData, KindLoad) {
		return q
	}
	for _, g := range graphs {
		iri, err := graphIRI("INTO", g)
		if err != nil {
			return q.fail(err)
		}
		q.Update.Into = append(q.Update.Into, iri)
	}
	if q.Kind == KindLoad && len(q.Update.Into) > 1 {
		return q.fail(invalid("LOAD accepts a single target graph"))
	}
	return q
}

// Template appends triples to the INSERT, DELETE or CONSTRUCT template.
// DATA updates require ground triples.
func (q *Query) Template(triples ...Triple) *Query {
	if !q.require("template", KindInsert, KindInsertData, KindDelete, KindDeleteData, KindConstruct) {
		return q
	}
	for _, t := range triples {
		if err := t.Validate(); err != nil {
			return q.fail(fmt.Errorf("template: %w", err))
		}
		if (q.Kind == KindInsertData || q.Kind == KindDeleteData) && !t.IsGround() {
			return q.fail(invalid("%v requires ground triples, got variable in %v %v %v", q.Kind, t.S, t.P, t.O))
		}
	}
	q.Update.Template = append(q.Update.Template, triples...)
	return q
}

// Source sets the remote document loaded by a LOAD update.
func (q *Query) Source(uri interface{}) *Query {
	if !q.require("source", KindLoad) {
		return q
	}
	iri, err := graphIRI("LOAD", uri)
	if err != nil {
		return q.fail(err)
	}
	q.Update.Source = iri
	return q
}

// Graph sets the graph cleared by a CLEAR update.
func (q *Query) Graph(g interface{}) *Query {
	if !q.require("GRAPH", KindClear) {
		return q
	}
	iri, err := graphIRI("CLEAR", g)
	if err != nil {
		return q.fail(err)
	}
	q.Update.Graph = iri
	return q
}
