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

package memstore

import (
	"context"
	"testing"

	"github.com/cayleygraph/quad"
	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/surf/graph"
	"github.com/cayleygraph/surf/graph/graphtest"
	"github.com/cayleygraph/surf/graph/local"
)

func makeStore(t testing.TB) (graph.QuadStore, func()) {
	return New(), func() {}
}

func TestMemstoreAll(t *testing.T) {
	graphtest.TestAll(t, makeStore, nil)
}

func TestMemstoreBackend(t *testing.T) {
	graphtest.TestBackend(t, func(t testing.TB) (graph.Backend, func()) {
		return local.New(New()), func() {}
	})
}

func TestMemstore(t *testing.T) {
	qs := New(graphtest.MakeQuadSet()...)
	size, err := qs.Size(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(11), size)

	// node ids are assigned in order of first appearance
	for i, name := range []string{"A", "follows", "B", "C", "D"} {
		v := quad.IRI("http://example.org/" + name)
		require.Equal(t, int64(i+1), qs.ValueOf(v), "ValueOf(%q)", name)
		require.Equal(t, v, qs.NameOf(int64(i+1)))
	}
	require.Equal(t, int64(0), qs.ValueOf(quad.IRI("unknown")))
}

func TestMatchOrder(t *testing.T) {
	data := graphtest.MakeQuadSet()
	qs := New(data...)
	got, err := qs.Match(context.Background(), quad.Quad{Predicate: quad.IRI("http://example.org/follows")})
	require.NoError(t, err)
	require.Equal(t, data[:8], got, "quads are returned in insertion order")
}

func TestRemoveQuad(t *testing.T) {
	qs := New(graphtest.MakeQuadSet()...)
	ctx := context.Background()

	rm := graphtest.MakeQuad("E", "follows", "F", "")
	err := qs.ApplyDeltas(ctx, []graph.Delta{{Quad: rm, Action: graph.Delete}}, graph.IgnoreOpts{})
	require.NoError(t, err)

	got, err := qs.Match(ctx, quad.Quad{Subject: rm.Subject, Predicate: rm.Predicate})
	require.NoError(t, err)
	require.Empty(t, got, "E should not have any followers.")

	// the log keeps the deletion
	require.Len(t, qs.log, 1+11+1)
	require.Equal(t, graph.Delete, qs.log[len(qs.log)-1].Action)
}

func TestRegistered(t *testing.T) {
	require.True(t, graph.IsRegistered(QuadStoreType))
	require.False(t, graph.IsPersistent(QuadStoreType))
	b, err := graph.NewBackend(QuadStoreType, "", nil)
	require.NoError(t, err)
	defer b.Close()
	n, err := b.Size(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(0), n)
}
