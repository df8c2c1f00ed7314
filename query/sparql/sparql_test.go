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

package sparql_test

import (
	"testing"
	"time"

	"github.com/cayleygraph/quad"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/surf/query"
	"github.com/cayleygraph/surf/query/sparql"
)

const (
	foafName = "http://xmlns.com/foaf/0.1/name"
	foafAge  = "http://xmlns.com/foaf/0.1/age"
	rdfType  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
)

func TestSimpleSelect(t *testing.T) {
	q := query.Select("?s", "?p", "?o").Where(query.T("?s", "?p", "?o"))
	s, err := sparql.Translate(q)
	require.NoError(t, err)
	require.Equal(t, "SELECT ?s ?p ?o WHERE { ?s ?p ?o }", s)
}

func TestAskFrom(t *testing.T) {
	q := query.Ask().From(quad.IRI("http://g")).Where(query.T("?s", "?p", "?o"))
	s, err := sparql.Translate(q)
	require.NoError(t, err)
	require.Equal(t, "ASK FROM <http://g> { ?s ?p ?o }", s)
}

func TestUnion(t *testing.T) {
	q := query.Select("?s").Union(query.T("?s", "?v1", "?v2"), query.T("?s", "?v3", "?v4"))
	s, err := sparql.Translate(q)
	require.NoError(t, err)
	require.Equal(t, "SELECT ?s WHERE { { ?s ?v1 ?v2 } UNION { ?s ?v3 ?v4 } }", s)
}

func TestItemSeparators(t *testing.T) {
	q := query.Select().
		Where(query.T("?s", "?p", "?o"), query.T("?o", "?p", "?x")).
		Filter("(?x != ?s)").
		Where(query.T("?s", "?a", "?b")).
		Group(query.T("?b", "?c", "?d"))
	s, err := sparql.Translate(q)
	require.NoError(t, err)
	require.Equal(t, "SELECT * WHERE { ?s ?p ?o . ?o ?p ?x . FILTER (?x != ?s) ?s ?a ?b . { ?b ?c ?d } }", s)
}

func TestRefusesInvalid(t *testing.T) {
	q := query.Select("?s").Where(query.T("?s", "not a predicate", "?o"))
	_, err := sparql.Translate(q)
	require.ErrorIs(t, err, query.ErrInvalid)

	_, err = sparql.Translate(query.Load().Into("http://g"))
	require.ErrorIs(t, err, query.ErrInvalid)

	_, err = sparql.Translate(query.InsertData())
	require.ErrorIs(t, err, query.ErrInvalid)

	_, err = sparql.Translate(nil)
	require.ErrorIs(t, err, query.ErrInvalid)
}

func TestFormatTerm(t *testing.T) {
	for _, c := range []struct {
		in  interface{}
		out string
	}{
		{"?s", "?s"},
		{query.Var("x"), "?x"},
		{"http://ex.org/a", "<http://ex.org/a>"},
		{quad.IRI("http://ex.org/b"), "<http://ex.org/b>"},
		{quad.BNode("b1"), "_:b1"},
		{"John", `"John"`},
		{"say \"hi\"\\\n\r\t\b\f", `"say \"hi\"\\\n\r\t\b\f"`},
		{quad.LangString{Value: "chat", Lang: "fr"}, `"chat"@fr`},
		{quad.TypedString{Value: "1", Type: "http://ex.org/t"}, `"1"^^<http://ex.org/t>`},
		{5, `"5"^^<http://www.w3.org/2001/XMLSchema#integer>`},
		{1.5, `"1.5"^^<http://www.w3.org/2001/XMLSchema#double>`},
		{false, `"false"^^<http://www.w3.org/2001/XMLSchema#boolean>`},
		{time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC), `"2020-01-02T03:04:05Z"^^<http://www.w3.org/2001/XMLSchema#dateTime>`},
	} {
		s, err := sparql.FormatTerm(c.in)
		require.NoError(t, err, "%v", c.in)
		require.Equal(t, c.out, s, "%v", c.in)
	}
	_, err := sparql.FormatTerm(struct{}{})
	require.ErrorIs(t, err, query.ErrInvalid)
	_, err = sparql.FormatTerm(nil)
	require.ErrorIs(t, err, query.ErrInvalid)
	_, err = sparql.FormatTerm(quad.IRI("http://a> . ?x ?y ?z . <http://b"))
	require.ErrorIs(t, err, query.ErrInvalid)
	_, err = sparql.FormatTerm(quad.LangString{Value: "x", Lang: "en . ?x"})
	require.ErrorIs(t, err, query.ErrInvalid)
}

func TestSPARQL11DeleteMatchesInGraphs(t *testing.T) {
	tr := sparql.Translator{Dialect: sparql.SPARQL11}
	q := query.Delete().From("http://g1", "http://g2").
		Template(query.T("http://ex.org/a", "?p", "?o")).
		Where(query.T("http://ex.org/a", "?p", "?o"))
	s, err := tr.Translate(q)
	require.NoError(t, err)
	require.Equal(t, "DELETE { GRAPH <http://g1> { <http://ex.org/a> ?p ?o } GRAPH <http://g2> { <http://ex.org/a> ?p ?o } }"+
		" USING <http://g1> USING <http://g2> WHERE { <http://ex.org/a> ?p ?o }", s)

	// INSERT keeps matching in the default graph.
	q = query.Insert().Into("http://g1").
		Template(query.T("?s", rdfType, "http://ex.org/Agent")).
		Where(query.T("?s", rdfType, "http://ex.org/Person"))
	s, err = tr.Translate(q)
	require.NoError(t, err)
	require.NotContains(t, s, "USING")
}

func insertData() *query.Query {
	return query.InsertData().Into("http://g").Template(
		query.T("http://ex.org/a", foafName, quad.LangString{Value: "Jane \"J\"\nDoe", Lang: "en"}),
		query.T("http://ex.org/a", foafAge, 30),
	)
}

func TestGolden(t *testing.T) {
	cases := []struct {
		name    string
		dialect sparql.Dialect
		q       *query.Query
	}{
		{"select_full", sparql.SPARUL, query.Select("?s", "?name").Distinct().
			From("http://g1").FromNamed("http://g2").
			Where(query.T("?s", foafName, "?name")).
			OptionalGroup(query.T("?s", foafAge, "?age")).
			Filter("(?age > 18)").
			OrderBy("DESC(?age)", "?name").Limit(10).Offset(20)},
		{"select_graph_subquery", sparql.SPARUL, query.Select("?s", "?g").
			NamedGroup("?g", query.T("?s", "?p", "?o")).
			Where(query.Select("?s").Where(query.T("?s", rdfType, "http://ex.org/Person")).Limit(5))},
		{"select_count", sparql.SPARUL, query.Select("(count(?s) AS ?n)").Reduced().
			Where(query.T("?s", rdfType, "?t"))},
		{"construct", sparql.SPARUL, query.Construct().Where(query.T("?s", "http://ex.org/p", "?o")).Limit(3)},
		{"describe", sparql.SPARUL, query.Describe("<http://ex.org/a>")},
		{"insert_data", sparql.SPARUL, insertData()},
		{"insert_where", sparql.SPARUL, query.Insert().Into("http://g").
			Template(query.T("?s", rdfType, "http://ex.org/Agent")).
			Where(query.T("?s", rdfType, "http://ex.org/Person"))},
		{"delete_data", sparql.SPARUL, query.DeleteData().From("http://g").
			Template(query.T("http://ex.org/a", foafName, "Jane"))},
		{"delete_where", sparql.SPARUL, query.Delete().From("http://g").
			Template(query.T("http://ex.org/a", "?p", "?o")).
			Where(query.T("http://ex.org/a", "?p", "?o"))},
		{"load", sparql.SPARUL, query.Load().Source("http://remote/data.nt").Into("http://g")},
		{"clear", sparql.SPARUL, query.Clear().Graph("http://g")},
		{"clear_all", sparql.SPARUL, query.Clear()},
		{"sparql11_insert_data", sparql.SPARQL11, insertData()},
		{"sparql11_delete_where", sparql.SPARQL11, query.Delete().From("http://g").
			Template(query.T("http://ex.org/a", "?p", "?o")).
			Where(query.T("http://ex.org/a", "?p", "?o"))},
		{"sparql11_load", sparql.SPARQL11, query.Load().Source("http://remote/data.nt").Into("http://g")},
		{"sparql11_clear", sparql.SPARQL11, query.Clear()},
	}
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s, err := sparql.Translator{Dialect: c.dialect}.Translate(c.q)
			require.NoError(t, err)
			g.Assert(t, c.name, []byte(s+"\n"))
		})
	}
}

func TestParseDialect(t *testing.T) {
	d, err := sparql.ParseDialect("SPARQL11")
	require.NoError(t, err)
	require.Equal(t, sparql.SPARQL11, d)
	d, err = sparql.ParseDialect("")
	require.NoError(t, err)
	require.Equal(t, sparql.SPARUL, d)
	_, err = sparql.ParseDialect("xquery")
	require.Error(t, err)
}
