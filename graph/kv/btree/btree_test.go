// Copyright 2017 The Cayley Authors. All rights reserved.
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

package btree

import (
	"context"
	"testing"

	"github.com/cayleygraph/quad"
	hkv "github.com/hidal-go/hidalgo/kv"
	"github.com/hidal-go/hidalgo/kv/kvdebug"
	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/surf/graph"
	"github.com/cayleygraph/surf/graph/graphtest"
	"github.com/cayleygraph/surf/graph/kv"
)

const debug = false

func makeBtree(t testing.TB) hkv.KV {
	if !debug {
		return New()
	}
	d := kvdebug.New(New())
	d.Log(true)
	t.Cleanup(func() {
		t.Logf("kv stats: %+v", d.Stats())
	})
	return d
}

func makeStore(t testing.TB) (graph.QuadStore, func()) {
	db := makeBtree(t)
	require.NoError(t, kv.Init(context.Background(), db))
	qs, err := kv.New(db)
	require.NoError(t, err)
	return qs, func() { qs.Close() }
}

func TestBtree(t *testing.T) {
	graphtest.TestAll(t, makeStore, &graphtest.Config{UnTyped: true})
}

func TestBtreeBackend(t *testing.T) {
	graphtest.TestBackend(t, func(t testing.TB) (graph.Backend, func()) {
		b, err := graph.NewBackend(Type, "", nil)
		require.NoError(t, err)
		return b, func() { b.Close() }
	})
}

func TestInit(t *testing.T) {
	ctx := context.Background()
	db := New()
	defer db.Close()

	_, err := kv.New(db)
	require.ErrorIs(t, err, graph.ErrNotInitialized)

	require.NoError(t, kv.Init(ctx, db))
	require.ErrorIs(t, kv.Init(ctx, db), graph.ErrDatabaseExists)

	qs, err := kv.New(db)
	require.NoError(t, err)
	err = qs.ApplyDeltas(ctx, []graph.Delta{
		{Quad: graphtest.MakeQuad("A", "follows", "B", ""), Action: graph.Add},
		{Quad: quad.Quad{Subject: quad.IRI("http://example.org/A"), Predicate: quad.IRI("http://example.org/age")}, Action: graph.Add},
	}, graph.IgnoreOpts{})
	var derr *graph.DeltaError
	require.ErrorAs(t, err, &derr)
	require.ErrorIs(t, err, graph.ErrInvalidAction)

	// the failed batch is rolled back
	n, err := qs.Size(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(0), n)

	q := quad.Quad{
		Subject:   quad.IRI("http://example.org/A"),
		Predicate: quad.IRI("http://example.org/age"),
		Object:    quad.Int(42),
	}
	require.NoError(t, qs.ApplyDeltas(ctx, []graph.Delta{{Quad: q, Action: graph.Add}}, graph.IgnoreOpts{}))

	// size survives reopening
	qs, err = kv.New(db)
	require.NoError(t, err)
	n, err = qs.Size(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
	got, err := qs.Match(ctx, quad.Quad{Object: quad.Int(42)})
	require.NoError(t, err)
	require.Equal(t, []quad.Quad{q}, got)
}
