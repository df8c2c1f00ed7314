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
	"testing"

	"github.com/cayleygraph/quad"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/surf/query"
	"github.com/cayleygraph/surf/query/sparql"
)

const (
	rdfType = "<http://www.w3.org/1999/02/22-rdf-syntax-ns#type>"
	foaf    = "http://xmlns.com/foaf/0.1/"
)

var (
	alice  = quad.IRI("http://example.org/alice")
	bob    = quad.IRI("http://example.org/bob")
	person = quad.IRI(foaf + "Person")
	knows  = quad.IRI(foaf + "knows")
	name   = quad.IRI(foaf + "name")
	age    = quad.IRI(foaf + "age")
	label  = quad.IRI("http://example.org/g")
)

type object struct {
	s      quad.Value
	label  quad.IRI
	direct map[quad.IRI][]quad.Value
}

func (o object) Subject() quad.Value               { return o.s }
func (o object) Label() quad.IRI                   { return o.label }
func (o object) Direct() map[quad.IRI][]quad.Value { return o.direct }

func translate(t testing.TB, qs ...*query.Query) []string {
	out := make([]string, 0, len(qs))
	for _, q := range qs {
		s, err := sparql.Translate(q)
		require.NoError(t, err)
		out = append(out, s)
	}
	return out
}

func TestReadQueries(t *testing.T) {
	var cases = []struct {
		name  string
		query *query.Query
		exp   string
	}{
		{
			name:  "get",
			query: GetQuery(alice, knows, true, ""),
			exp:   "SELECT ?v ?t WHERE { <http://example.org/alice> <" + foaf + "knows> ?v . OPTIONAL { ?v " + rdfType + " ?t } }",
		},
		{
			name:  "get inverse",
			query: GetQuery(alice, knows, false, label),
			exp:   "SELECT ?v ?t FROM <http://example.org/g> WHERE { ?v <" + foaf + "knows> <http://example.org/alice> . OPTIONAL { ?v " + rdfType + " ?t } }",
		},
		{
			name:  "load",
			query: LoadQuery(alice, true, ""),
			exp:   "SELECT ?p ?v ?t WHERE { <http://example.org/alice> ?p ?v . OPTIONAL { ?v " + rdfType + " ?t } }",
		},
		{
			name:  "present",
			query: IsPresentQuery(alice, label),
			exp:   "ASK FROM <http://example.org/g> { <http://example.org/alice> ?p ?o }",
		},
		{
			name:  "all",
			query: AllQuery(person, 10, 5, ""),
			exp:   "SELECT DISTINCT ?s WHERE { ?s " + rdfType + " <" + foaf + "Person> } LIMIT 10 OFFSET 5",
		},
		{
			name:  "instances by attribute",
			query: InstancesByAttributeQuery(person, []quad.IRI{knows, name}, true, ""),
			exp: "SELECT ?s ?c WHERE { ?s " + rdfType + " <" + foaf + "Person> . " +
				"{ ?s <" + foaf + "knows> ?v } UNION { ?s <" + foaf + "name> ?v } " +
				"OPTIONAL { ?s " + rdfType + " ?c } }",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, []string{c.exp}, translate(t, c.query))
		})
	}
}

func TestGetByQuery(t *testing.T) {
	q, err := GetByQuery(Params{
		Type:    person,
		Filters: []Filter{{Pred: knows, Values: []quad.Value{bob}, Direct: true}},
		Order:   &Order{Pred: age, Desc: true},
		Limit:   2,
		Label:   label,
	})
	require.NoError(t, err)
	exp := "SELECT ?s ?c ?order FROM <http://example.org/g> WHERE { " +
		"{ SELECT DISTINCT ?s WHERE { ?s " + rdfType + " <" + foaf + "Person> . " +
		"?s <" + foaf + "knows> <http://example.org/bob> } } " +
		"OPTIONAL { ?s <" + foaf + "age> ?order } " +
		"OPTIONAL { ?s " + rdfType + " ?c } }"
	require.Equal(t, []string{exp}, translate(t, q))

	q, err = GetByQuery(Params{})
	require.NoError(t, err)
	require.Equal(t, []string{
		"SELECT ?s ?c WHERE { { SELECT DISTINCT ?s WHERE { ?s ?p ?o } } OPTIONAL { ?s " + rdfType + " ?c } }",
	}, translate(t, q))

	q, err = GetByQuery(Params{
		Filters: []Filter{{Pred: knows, Direct: false}},
		Conds:   []Cond{{Pred: age, Direct: true, Expr: "(%s > 30)"}},
		Order:   &Order{},
	})
	require.NoError(t, err)
	require.Equal(t, []string{
		"SELECT ?s ?c WHERE { { SELECT DISTINCT ?s WHERE { ?f0 <" + foaf + "knows> ?s . " +
			"?s <" + foaf + "age> ?c0 . FILTER (?c0 > 30) } ORDER BY ?s } " +
			"OPTIONAL { ?s " + rdfType + " ?c } } ORDER BY ?s",
	}, translate(t, q))

	_, err = GetByQuery(Params{Conds: []Cond{{Pred: age, Expr: "%s > %s"}}})
	require.ErrorIs(t, err, query.ErrInvalid)
}

func TestUpdateQueries(t *testing.T) {
	o := object{s: alice, direct: map[quad.IRI][]quad.Value{
		name:  {quad.String("Alice")},
		knows: {bob, nil},
	}}
	require.Equal(t, []string{
		"DELETE { <http://example.org/alice> ?p ?o } WHERE { <http://example.org/alice> ?p ?o }",
		"INSERT DATA { <http://example.org/alice> <" + foaf + "knows> <http://example.org/bob> . " +
			"<http://example.org/alice> <" + foaf + "name> \"Alice\" }",
	}, translate(t, SaveUpdates(o)...))

	require.Equal(t, []string{
		"DELETE { <http://example.org/alice> <" + foaf + "knows> ?o } WHERE { <http://example.org/alice> <" + foaf + "knows> ?o }",
		"DELETE { <http://example.org/alice> <" + foaf + "name> ?o } WHERE { <http://example.org/alice> <" + foaf + "name> ?o }",
		"INSERT DATA { <http://example.org/alice> <" + foaf + "knows> <http://example.org/bob> . " +
			"<http://example.org/alice> <" + foaf + "name> \"Alice\" }",
	}, translate(t, UpdateUpdates(o)...))

	o.label = label
	require.Equal(t, []string{
		"DELETE FROM <http://example.org/g> { <http://example.org/alice> ?p ?o } WHERE { <http://example.org/alice> ?p ?o }",
		"DELETE FROM <http://example.org/g> { ?s ?p <http://example.org/alice> } WHERE { ?s ?p <http://example.org/alice> }",
	}, translate(t, RemoveUpdates(o, true)...))

	// an object without values only deletes
	empty := object{s: alice, direct: map[quad.IRI][]quad.Value{name: nil}}
	require.Len(t, SaveUpdates(empty), 1)
	require.Nil(t, AddTripleUpdate(alice, name, nil, ""))

	require.Equal(t, []string{
		"INSERT DATA INTO <http://example.org/g> { <http://example.org/alice> <" + foaf + "age> \"30\"^^<http://www.w3.org/2001/XMLSchema#integer> }",
		"DELETE DATA { <http://example.org/alice> <" + foaf + "name> \"Alice\" }",
		"DELETE { ?s <" + foaf + "name> ?o } WHERE { ?s <" + foaf + "name> ?o }",
		"CLEAR",
		"CLEAR GRAPH <http://example.org/g>",
	}, translate(t,
		AddTripleUpdate(alice, age, quad.Int(30), label),
		RemoveTripleUpdate(alice, name, quad.String("Alice"), ""),
		RemoveTripleUpdate(nil, name, nil, ""),
		ClearUpdate(""),
		ClearUpdate(label),
	))
}

func TestNodesOf(t *testing.T) {
	res := &Result{Rows: []Row{
		{"v": bob, "t": person},
		{"v": alice},
		{"v": bob, "t": quad.IRI(foaf + "Agent")},
		{"v": bob, "t": person},
		{"t": person},
	}}
	assert.Equal(t, []Node{
		{Value: bob, Types: []quad.IRI{person, quad.IRI(foaf + "Agent")}},
		{Value: alice},
	}, NodesOf(res, "v", "t"))

	res = &Result{Rows: []Row{
		{"p": knows, "v": bob, "t": person},
		{"p": name, "v": quad.String("Alice")},
		{"p": knows, "v": alice},
		{"p": quad.String("not a predicate"), "v": alice},
	}}
	assert.Equal(t, map[quad.IRI][]Node{
		knows: {{Value: bob, Types: []quad.IRI{person}}, {Value: alice}},
		name:  {{Value: quad.String("Alice")}},
	}, PredicatesOf(res, "p", "v", "t"))
}

func TestParamsClone(t *testing.T) {
	p := Params{
		Filters: []Filter{{Pred: knows, Values: []quad.Value{bob}}},
		Conds:   []Cond{{Pred: age, Expr: "%s"}},
		Order:   &Order{Pred: age},
	}
	c := p.Clone()
	c.Filters[0].Values[0] = alice
	c.Filters = append(c.Filters, Filter{Pred: name})
	c.Conds[0].Expr = "changed"
	c.Order.Desc = true

	assert.Equal(t, bob, p.Filters[0].Values[0])
	assert.Len(t, p.Filters, 1)
	assert.Equal(t, "%s", p.Conds[0].Expr)
	assert.False(t, p.Order.Desc)
}
