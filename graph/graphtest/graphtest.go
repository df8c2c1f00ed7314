// Copyright 2014 The Cayley Authors. All rights reserved.
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

// Package graphtest contains conformance tests shared by quad stores and
// backends.
package graphtest

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/cayleygraph/quad"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/surf/graph"
)

type DatabaseFunc func(t testing.TB) (graph.QuadStore, func())

type Config struct {
	// UnTyped stores return native literals as typed strings.
	UnTyped bool
}

func TestAll(t *testing.T, gen DatabaseFunc, conf *Config) {
	if conf == nil {
		conf = &Config{}
	}
	t.Run("load one quad", func(t *testing.T) { TestLoadOneQuad(t, gen) })
	t.Run("size", func(t *testing.T) { TestSize(t, gen) })
	t.Run("match", func(t *testing.T) { TestMatch(t, gen) })
	t.Run("deleted", func(t *testing.T) { TestDeletedFromMatch(t, gen) })
	t.Run("delta errors", func(t *testing.T) { TestDeltaErrors(t, gen) })
	t.Run("typed quads", func(t *testing.T) { TestLoadTypedQuads(t, gen, !conf.UnTyped) })
}

func iri(s string) quad.IRI { return quad.IRI("http://example.org/" + s) }

// MakeQuad builds a quad of example IRIs; an empty label means no graph.
func MakeQuad(s, p, o, label string) quad.Quad {
	q := quad.Quad{Subject: iri(s), Predicate: iri(p), Object: iri(o)}
	if label != "" {
		q.Label = iri(label)
	}
	return q
}

// MakeQuadSet returns a small social graph with one named graph.
//
//	A -> B <- C -> D -> B -> F -> G <- D, E -> F
//	B, D and G are "cool" in status_graph.
func MakeQuadSet() []quad.Quad {
	return []quad.Quad{
		MakeQuad("A", "follows", "B", ""),
		MakeQuad("C", "follows", "B", ""),
		MakeQuad("C", "follows", "D", ""),
		MakeQuad("D", "follows", "B", ""),
		MakeQuad("B", "follows", "F", ""),
		MakeQuad("F", "follows", "G", ""),
		MakeQuad("D", "follows", "G", ""),
		MakeQuad("E", "follows", "F", ""),
		MakeQuad("B", "status", "cool", "status_graph"),
		MakeQuad("D", "status", "cool", "status_graph"),
		MakeQuad("G", "status", "cool", "status_graph"),
	}
}

// MakeWriter adds quads to a store, failing the test on error.
func MakeWriter(t testing.TB, qs graph.QuadStore, data ...quad.Quad) graph.BatchWriter {
	w := graph.NewWriter(context.Background(), qs, 0)
	if len(data) > 0 {
		_, err := w.WriteQuads(data)
		require.NoError(t, err)
		require.NoError(t, w.Flush())
	}
	return w
}

func sorted(quads []quad.Quad) []string {
	out := make([]string, 0, len(quads))
	for _, q := range quads {
		out = append(out, q.NQuad())
	}
	sort.Strings(out)
	return out
}

// ExpectMatch checks the quads matching a pattern, ignoring order.
func ExpectMatch(t testing.TB, qs graph.QuadStore, pattern quad.Quad, exp []quad.Quad) {
	got, err := qs.Match(context.Background(), pattern)
	require.NoError(t, err)
	require.Equal(t, sorted(exp), sorted(got), "pattern %v", pattern)
}

func size(t testing.TB, qs graph.QuadStore) int64 {
	n, err := qs.Size(context.Background())
	require.NoError(t, err)
	return n
}

func TestLoadOneQuad(t testing.TB, gen DatabaseFunc) {
	qs, closer := gen(t)
	defer closer()

	q := quad.Quad{
		Subject:   iri("Something"),
		Predicate: iri("points_to"),
		Object:    quad.String("Something Else"),
		Label:     iri("context"),
	}
	MakeWriter(t, qs, q)
	ExpectMatch(t, qs, quad.Quad{}, []quad.Quad{q})
	require.Equal(t, int64(1), size(t, qs), "Unexpected quadstore size")
}

func TestSize(t testing.TB, gen DatabaseFunc) {
	qs, closer := gen(t)
	defer closer()
	ctx := context.Background()

	require.Equal(t, int64(0), size(t, qs))
	MakeWriter(t, qs, MakeQuadSet()...)
	require.Equal(t, int64(11), size(t, qs), "Unexpected quadstore size")

	// duplicates are ignored by the writer
	MakeWriter(t, qs, MakeQuadSet()[:3]...)
	require.Equal(t, int64(11), size(t, qs), "Unexpected quadstore size after duplicates")

	err := qs.ApplyDeltas(ctx, []graph.Delta{
		{Quad: MakeQuad("A", "follows", "B", ""), Action: graph.Delete},
	}, graph.IgnoreOpts{})
	require.NoError(t, err)
	require.Equal(t, int64(10), size(t, qs), "Unexpected quadstore size after delete")
}

func TestMatch(t testing.TB, gen DatabaseFunc) {
	qs, closer := gen(t)
	defer closer()

	MakeWriter(t, qs, MakeQuadSet()...)

	ExpectMatch(t, qs, quad.Quad{Subject: iri("C")}, []quad.Quad{
		MakeQuad("C", "follows", "B", ""),
		MakeQuad("C", "follows", "D", ""),
	})
	ExpectMatch(t, qs, quad.Quad{Object: iri("F")}, []quad.Quad{
		MakeQuad("B", "follows", "F", ""),
		MakeQuad("E", "follows", "F", ""),
	})
	ExpectMatch(t, qs, quad.Quad{Subject: iri("B"), Object: iri("F")}, []quad.Quad{
		MakeQuad("B", "follows", "F", ""),
	})
	status := []quad.Quad{
		MakeQuad("B", "status", "cool", "status_graph"),
		MakeQuad("D", "status", "cool", "status_graph"),
		MakeQuad("G", "status", "cool", "status_graph"),
	}
	ExpectMatch(t, qs, quad.Quad{Predicate: iri("status")}, status)
	ExpectMatch(t, qs, quad.Quad{Label: iri("status_graph")}, status)
	ExpectMatch(t, qs, quad.Quad{Subject: iri("B"), Label: iri("status_graph")}, status[:1])
	ExpectMatch(t, qs, quad.Quad{Subject: iri("nobody")}, nil)
	ExpectMatch(t, qs, quad.Quad{Subject: iri("A"), Object: iri("G")}, nil)
	ExpectMatch(t, qs, quad.Quad{}, MakeQuadSet())
}

func TestDeletedFromMatch(t testing.TB, gen DatabaseFunc) {
	qs, closer := gen(t)
	defer closer()

	MakeWriter(t, qs, MakeQuadSet()...)

	pattern := quad.Quad{Subject: iri("E")}
	ExpectMatch(t, qs, pattern, []quad.Quad{MakeQuad("E", "follows", "F", "")})

	tx := graph.NewTransaction()
	tx.RemoveQuad(MakeQuad("E", "follows", "F", ""))
	require.NoError(t, tx.Apply(context.Background(), qs, graph.IgnoreOpts{}))

	ExpectMatch(t, qs, pattern, nil)

	// re-adding a deleted quad makes it visible again
	MakeWriter(t, qs, MakeQuad("E", "follows", "F", ""))
	ExpectMatch(t, qs, pattern, []quad.Quad{MakeQuad("E", "follows", "F", "")})
}

func TestDeltaErrors(t testing.TB, gen DatabaseFunc) {
	qs, closer := gen(t)
	defer closer()
	ctx := context.Background()

	MakeWriter(t, qs, MakeQuadSet()...)

	err := qs.ApplyDeltas(ctx, []graph.Delta{
		{Quad: MakeQuad("X", "follows", "Y", ""), Action: graph.Add},
		{Quad: MakeQuad("A", "follows", "B", ""), Action: graph.Add},
	}, graph.IgnoreOpts{})
	require.True(t, graph.IsQuadExist(err), "expected quad exists, got %v", err)
	var derr *graph.DeltaError
	require.ErrorAs(t, err, &derr)
	// the whole batch is rejected
	ExpectMatch(t, qs, quad.Quad{Subject: iri("X")}, nil)

	err = qs.ApplyDeltas(ctx, []graph.Delta{
		{Quad: MakeQuad("X", "follows", "Y", ""), Action: graph.Delete},
	}, graph.IgnoreOpts{})
	require.True(t, graph.IsQuadNotExist(err), "expected quad not exist, got %v", err)

	err = qs.ApplyDeltas(ctx, []graph.Delta{
		{Quad: MakeQuad("X", "follows", "Y", ""), Action: graph.Delete},
		{Quad: MakeQuad("A", "follows", "B", ""), Action: graph.Add},
	}, graph.IgnoreOpts{IgnoreDup: true, IgnoreMissing: true})
	require.NoError(t, err)
	require.Equal(t, int64(11), size(t, qs))
}

func TestLoadTypedQuads(t testing.TB, gen DatabaseFunc, typed bool) {
	qs, closer := gen(t)
	defer closer()

	values := []quad.Value{
		quad.BNode("A"), iri("name"), quad.String("B"), iri("graph"),
		iri("B"), iri("type"),
		quad.TypedString{Value: "10", Type: "http://example.org/int"},
		quad.LangString{Value: "value", Lang: "en"},
		quad.Int(-123456789),
		quad.Float(-12345e-6),
		quad.Bool(true),
		quad.Time(time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)),
	}

	MakeWriter(t, qs, []quad.Quad{
		{Subject: values[0], Predicate: values[1], Object: values[2], Label: values[3]},
		{Subject: values[4], Predicate: values[5], Object: values[6], Label: nil},
		{Subject: values[4], Predicate: values[5], Object: values[7], Label: nil},
		{Subject: values[0], Predicate: values[1], Object: values[8], Label: nil},
		{Subject: values[0], Predicate: values[1], Object: values[9], Label: nil},
		{Subject: values[0], Predicate: values[1], Object: values[10], Label: nil},
		{Subject: values[0], Predicate: values[1], Object: values[11], Label: nil},
	}...)
	for _, v := range values[6:] {
		got, err := qs.Match(context.Background(), quad.Quad{Object: v})
		require.NoError(t, err)
		require.Len(t, got, 1, "Failed to find %q (%T)", v, v)
		if typed {
			assert.Equal(t, v, got[0].Object, "Failed to roundtrip %q (%T)", v, v)
		} else {
			assert.True(t, graph.ValueEqual(v, got[0].Object), "Failed to roundtrip raw %q (%T)", v, v)
		}
	}
	require.Equal(t, int64(7), size(t, qs), "Unexpected quadstore size")
}
