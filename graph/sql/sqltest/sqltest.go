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

// Package sqltest runs the quad store and backend conformance suites
// against a sql flavor.
package sqltest

import (
	"context"
	"testing"
	"unicode/utf8"

	"github.com/cayleygraph/quad"
	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/surf/graph"
	"github.com/cayleygraph/surf/graph/graphtest"
	"github.com/cayleygraph/surf/graph/sql"
)

// DatabaseFunc returns the address of a new empty database.
type DatabaseFunc func(t testing.TB) string

func TestAll(t *testing.T, typ string, fnc DatabaseFunc) {
	create := makeDatabaseFunc(typ, fnc)
	t.Run("graph", func(t *testing.T) {
		graphtest.TestAll(t, create, &graphtest.Config{UnTyped: true})
	})
	t.Run("backend", func(t *testing.T) {
		graphtest.TestBackend(t, func(t testing.TB) (graph.Backend, func()) {
			b, err := graph.NewBackend(typ, fnc(t), graph.Options{"init": true})
			require.NoError(t, err)
			return b, func() { b.Close() }
		})
	})
	t.Run("init", func(t *testing.T) {
		addr := fnc(t)
		_, err := sql.New(typ, addr, nil)
		require.ErrorIs(t, err, graph.ErrNotInitialized)
		require.NoError(t, sql.Init(typ, addr, nil))
		require.ErrorIs(t, sql.Init(typ, addr, nil), graph.ErrDatabaseExists)
	})
	t.Run("zero rune", func(t *testing.T) {
		testZeroRune(t, create)
	})
}

func makeDatabaseFunc(typ string, create DatabaseFunc) graphtest.DatabaseFunc {
	return func(t testing.TB) (graph.QuadStore, func()) {
		addr := create(t)
		if err := sql.Init(typ, addr, nil); err != nil {
			t.Fatal(err)
		}
		qs, err := sql.New(typ, addr, nil)
		if err != nil {
			t.Fatal(err)
		}
		return qs, func() { qs.Close() }
	}
}

func testZeroRune(t testing.TB, create graphtest.DatabaseFunc) {
	qs, closer := create(t)
	defer closer()

	obj := quad.String("AB\u0000CD")
	if !utf8.ValidString(string(obj)) {
		t.Fatal("invalid utf8")
	}
	q := quad.Quad{
		Subject:   quad.IRI("bob"),
		Predicate: quad.IRI("pred"),
		Object:    obj,
	}
	graphtest.MakeWriter(t, qs, q)

	got, err := qs.Match(context.Background(), quad.Quad{Object: obj})
	require.NoError(t, err)
	require.Equal(t, []quad.Quad{q}, got)
}
