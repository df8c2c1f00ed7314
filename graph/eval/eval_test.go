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

package eval_test

import (
	"context"
	"sort"
	"testing"

	"github.com/cayleygraph/quad"
	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/surf/graph"
	"github.com/cayleygraph/surf/graph/eval"
	"github.com/cayleygraph/surf/graph/graphtest"
	"github.com/cayleygraph/surf/graph/memstore"
	"github.com/cayleygraph/surf/query"
)

const ex = "http://example.org/"

func iri(s string) quad.IRI { return quad.IRI(ex + s) }

func store() graph.QuadStore {
	return memstore.New(graphtest.MakeQuadSet()...)
}

func run(t testing.TB, qs graph.QuadStore, q *query.Query) *graph.Result {
	res, err := eval.Execute(context.Background(), qs, q)
	require.NoError(t, err)
	return res
}

// column returns sorted short names bound to a variable.
func column(res *graph.Result, name string) []string {
	var out []string
	for _, v := range res.Column(name) {
		if i, ok := v.(quad.IRI); ok {
			out = append(out, string(i)[len(ex):])
		} else {
			out = append(out, v.String())
		}
	}
	sort.Strings(out)
	return out
}

func TestBasicPattern(t *testing.T) {
	qs := store()
	res := run(t, qs, query.Select("?x").
		Where(query.T("?x", iri("follows"), iri("B"))))
	require.Equal(t, []string{"x"}, res.Vars)
	require.Equal(t, []string{"A", "C", "D"}, column(res, "x"))

	// join on a shared variable
	res = run(t, qs, query.Select("?x", "?y").
		Where(
			query.T("?x", iri("follows"), "?y"),
			query.T("?y", iri("status"), "?s"),
		))
	require.Len(t, res.Rows, 6)
	for _, row := range res.Rows {
		require.NotContains(t, row, "s", "projection drops ?s")
	}

	// repeated variable
	res = run(t, qs, query.Select("?x").Where(query.T("?x", iri("follows"), "?x")))
	require.Empty(t, res.Rows)

	res = run(t, qs, query.Select().Where(query.T(iri("A"), "?p", "?o")))
	require.Equal(t, []string{"p", "o"}, res.Vars)
}

func TestOptionalAndUnion(t *testing.T) {
	qs := store()
	res := run(t, qs, query.Select("?x", "?s").
		Where(query.T("?x", iri("follows"), iri("F"))).
		OptionalGroup(query.T("?x", iri("status"), "?s")))
	require.Len(t, res.Rows, 2)
	byX := map[quad.Value]quad.Value{}
	for _, row := range res.Rows {
		byX[row["x"]] = row["s"]
	}
	require.Equal(t, iri("cool"), byX[iri("B")])
	require.Nil(t, byX[iri("E")])

	res = run(t, qs, query.Select("?x").
		Union(
			query.T("?x", iri("follows"), iri("G")),
			query.Group{query.T("?x", iri("follows"), iri("D"))},
		))
	require.Equal(t, []string{"C", "D", "F"}, column(res, "x"))
}

func TestNamedGraphs(t *testing.T) {
	qs := store()
	res := run(t, qs, query.Select("?x", "?g").
		NamedGroup("?g", query.T("?x", iri("status"), iri("cool"))))
	require.Len(t, res.Rows, 3)
	for _, row := range res.Rows {
		require.Equal(t, iri("status_graph"), row["g"])
	}

	res = run(t, qs, query.Select("?x").
		NamedGroup(iri("status_graph"), query.T("?x", "?p", "?o")))
	require.Equal(t, []string{"B", "D", "G"}, column(res, "x"))

	res = run(t, qs, query.Select("?x").
		NamedGroup(iri("other"), query.T("?x", "?p", "?o")))
	require.Empty(t, res.Rows)

	res = run(t, qs, query.Select("?x").From(iri("status_graph")).
		Where(query.T("?x", "?p", "?o")))
	require.Equal(t, []string{"B", "D", "G"}, column(res, "x"))

	// FROM NAMED alone leaves an empty default graph
	res = run(t, qs, query.Select("?x").FromNamed(iri("status_graph")).
		Where(query.T("?x", "?p", "?o")))
	require.Empty(t, res.Rows)
}

func TestModifiers(t *testing.T) {
	qs := store()
	res := run(t, qs, query.Select("?o").Distinct().
		Where(query.T("?s", iri("follows"), "?o")).
		OrderBy("DESC(?o)"))
	require.Equal(t, []quad.Value{iri("G"), iri("F"), iri("D"), iri("B")}, res.Column("o"))

	res = run(t, qs, query.Select("?o").Distinct().
		Where(query.T("?s", iri("follows"), "?o")).
		OrderBy("?o").Limit(2).Offset(1))
	require.Equal(t, []quad.Value{iri("D"), iri("F")}, res.Column("o"))

	res = run(t, qs, query.Select("?o").
		Where(query.T("?s", iri("follows"), "?o")).
		Offset(100))
	require.Empty(t, res.Rows)
}

func TestOrderLiterals(t *testing.T) {
	qs := memstore.New(
		quad.Quad{Subject: iri("a"), Predicate: iri("v"), Object: quad.Int(10)},
		quad.Quad{Subject: iri("b"), Predicate: iri("v"), Object: quad.Int(9)},
		quad.Quad{Subject: iri("c"), Predicate: iri("v"), Object: quad.Float(9.5)},
		quad.Quad{Subject: iri("d"), Predicate: iri("v"), Object: iri("x")},
		quad.Quad{Subject: iri("e"), Predicate: iri("v"), Object: quad.BNode("n")},
	)
	res := run(t, qs, query.Select("?s").
		Where(query.T("?s", iri("v"), "?v")).
		OrderBy("ASC(?v)"))
	require.Equal(t, []quad.Value{iri("e"), iri("d"), iri("b"), iri("c"), iri("a")}, res.Column("s"))
}

func TestSubquery(t *testing.T) {
	qs := store()
	sub := query.Select("?x").Distinct().
		Where(query.T("?x", iri("follows"), "?y")).
		OrderBy("?x").Limit(2)
	res := run(t, qs, query.Select("?x", "?y").
		Where(sub, query.T("?x", iri("follows"), "?y")))
	require.Equal(t, []string{"A", "B"}, uniq(column(res, "x")))
	require.Len(t, res.Rows, 2)
}

func uniq(s []string) []string {
	var out []string
	for i, v := range s {
		if i == 0 || s[i-1] != v {
			out = append(out, v)
		}
	}
	return out
}

func TestAskConstructDescribe(t *testing.T) {
	qs := store()
	res := run(t, qs, query.Ask().Where(query.T(iri("A"), iri("follows"), iri("B"))))
	require.True(t, res.Bool)
	res = run(t, qs, query.Ask().Where(query.T(iri("B"), iri("follows"), iri("A"))))
	require.False(t, res.Bool)

	res = run(t, qs, query.Construct().
		Template(query.T("?y", iri("followedBy"), "?x")).
		Where(query.T("?x", iri("follows"), iri("B"))))
	require.Len(t, res.Quads, 3)
	for _, q := range res.Quads {
		require.Equal(t, iri("B"), q.Subject)
		require.Nil(t, q.Label)
	}

	// the template defaults to the pattern
	res = run(t, qs, query.Construct().Where(query.T("?x", iri("status"), "?s")))
	require.Len(t, res.Quads, 3)

	res = run(t, qs, query.Describe("<"+ex+"C>"))
	require.Len(t, res.Quads, 2)

	res = run(t, qs, query.Describe("?x").Where(query.T("?x", iri("follows"), iri("G"))))
	require.Len(t, res.Quads, 4, "D has three triples, F has one")
}

func TestUpdates(t *testing.T) {
	qs := store()
	size := func() int64 {
		n, err := qs.Size(context.Background())
		require.NoError(t, err)
		return n
	}

	run(t, qs, query.InsertData().Into(iri("g")).
		Template(query.T(iri("X"), iri("follows"), iri("A"))))
	require.Equal(t, int64(12), size())
	got, err := qs.Match(context.Background(), quad.Quad{Subject: iri("X")})
	require.NoError(t, err)
	require.Equal(t, iri("g"), got[0].Label)

	run(t, qs, query.DeleteData().
		Template(query.T(iri("X"), iri("follows"), iri("A"))))
	require.Equal(t, int64(11), size())

	run(t, qs, query.Insert().
		Template(query.T("?y", iri("followedBy"), "?x")).
		Where(query.T("?x", iri("follows"), iri("B"))))
	require.Equal(t, int64(14), size())

	run(t, qs, query.Delete().
		Template(query.T("?s", iri("followedBy"), "?o")).
		Where(query.T("?s", iri("followedBy"), "?o")))
	require.Equal(t, int64(11), size())

	// DELETE restricted to a graph
	run(t, qs, query.Delete().From(iri("other")).
		Template(query.T("?s", iri("status"), "?o")).
		Where(query.T("?s", iri("status"), "?o")))
	require.Equal(t, int64(11), size())

	run(t, qs, query.Clear().Graph(iri("status_graph")))
	require.Equal(t, int64(8), size())

	run(t, qs, query.Clear())
	require.Equal(t, int64(0), size())
}

func TestUnsupported(t *testing.T) {
	qs := store()
	ctx := context.Background()

	_, err := eval.Execute(ctx, qs, query.Select("?x").
		Where(query.T("?x", "?p", "?o")).Filter("?x != <a>"))
	require.ErrorIs(t, err, graph.ErrOperationNotSupported)

	_, err = eval.Execute(ctx, qs, query.Select("count(?x)").
		Where(query.T("?x", "?p", "?o")))
	require.ErrorIs(t, err, graph.ErrOperationNotSupported)

	_, err = eval.Execute(ctx, qs, query.Load().Source("http://example.org/data.nt"))
	require.ErrorIs(t, err, graph.ErrOperationNotSupported)

	_, err = eval.Execute(ctx, qs, query.Select("?x").Limit(-1))
	require.ErrorIs(t, err, query.ErrInvalid)

	_, err = eval.Execute(ctx, qs, nil)
	require.ErrorIs(t, err, query.ErrInvalid)
}

func TestCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := eval.Execute(ctx, store(), query.Select("?x").Where(query.T("?x", "?p", "?o")))
	require.ErrorIs(t, err, context.Canceled)
}
