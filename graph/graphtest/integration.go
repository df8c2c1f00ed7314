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

package graphtest

import (
	"context"
	"strings"
	"testing"

	"github.com/cayleygraph/quad"
	_ "github.com/cayleygraph/quad/nquads"
	"github.com/cayleygraph/quad/voc/rdf"
	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/surf/graph"
)

type BackendFunc func(t testing.TB) (graph.Backend, func())

const (
	foaf = "http://xmlns.com/foaf/0.1/"
	ex   = "http://example.org/"
)

var (
	Alice  = quad.IRI(ex + "alice")
	Bob    = quad.IRI(ex + "bob")
	Carol  = quad.IRI(ex + "carol")
	Doc    = quad.IRI(ex + "doc")
	Person = quad.IRI(foaf + "Person")
	Admin  = quad.IRI(ex + "Admin")
	Docu   = quad.IRI(ex + "Document")

	Name    = quad.IRI(foaf + "name")
	Knows   = quad.IRI(foaf + "knows")
	Age     = quad.IRI(foaf + "age")
	Creator = quad.IRI("http://purl.org/dc/elements/1.1/creator")
)

// People returns the dataset used by the backend tests.
func People() []quad.Quad {
	typ := quad.IRI(rdf.Type)
	return []quad.Quad{
		{Subject: Alice, Predicate: typ, Object: Person},
		{Subject: Alice, Predicate: Name, Object: quad.String("Alice")},
		{Subject: Alice, Predicate: Knows, Object: Bob},
		{Subject: Alice, Predicate: Age, Object: quad.Int(30)},
		{Subject: Bob, Predicate: typ, Object: Person},
		{Subject: Bob, Predicate: Name, Object: quad.String("Bob")},
		{Subject: Bob, Predicate: Age, Object: quad.Int(25)},
		{Subject: Bob, Predicate: Knows, Object: Carol},
		{Subject: Carol, Predicate: typ, Object: Person},
		{Subject: Carol, Predicate: typ, Object: Admin},
		{Subject: Carol, Predicate: Name, Object: quad.String("Carol")},
		{Subject: Carol, Predicate: Age, Object: quad.Int(41)},
		{Subject: Doc, Predicate: typ, Object: Docu},
		{Subject: Doc, Predicate: Creator, Object: Alice},
	}
}

// Object is a minimal graph.Object.
type Object struct {
	S     quad.Value
	G     quad.IRI
	Attrs map[quad.IRI][]quad.Value
}

func (o Object) Subject() quad.Value               { return o.S }
func (o Object) Label() quad.IRI                   { return o.G }
func (o Object) Direct() map[quad.IRI][]quad.Value { return o.Attrs }

func prepare(t testing.TB, gen BackendFunc) (graph.Backend, func()) {
	b, closer := gen(t)
	var sb strings.Builder
	for _, q := range People() {
		sb.WriteString(q.NQuad())
		sb.WriteByte('\n')
	}
	n, err := b.LoadTriples(context.Background(), strings.NewReader(sb.String()), "nquads", "")
	require.NoError(t, err)
	require.Equal(t, len(People()), n)
	return b, closer
}

func values(nodes []graph.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Value.String())
	}
	return out
}

func strs(vals ...quad.Value) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		out = append(out, v.String())
	}
	return out
}

func subjects(entries []graph.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Subject.String())
	}
	return out
}

// TestBackend runs the reader and writer conformance tests.
func TestBackend(t *testing.T, gen BackendFunc) {
	t.Run("reader", func(t *testing.T) { TestReader(t, gen) })
	t.Run("get by", func(t *testing.T) { TestGetBy(t, gen) })
	t.Run("get by order", func(t *testing.T) { TestGetByOrderValues(t, gen) })
	t.Run("writer", func(t *testing.T) { TestWriter(t, gen) })
	t.Run("labels", func(t *testing.T) { TestLabels(t, gen) })
}

func TestReader(t *testing.T, gen BackendFunc) {
	b, closer := prepare(t, gen)
	defer closer()
	ctx := context.Background()

	nodes, err := b.Get(ctx, Alice, Knows, true, "")
	require.NoError(t, err)
	require.Equal(t, []graph.Node{{Value: Bob, Types: []quad.IRI{Person}}}, nodes)

	nodes, err = b.Get(ctx, Bob, Knows, false, "")
	require.NoError(t, err)
	require.Equal(t, strs(Alice), values(nodes))

	nodes, err = b.Get(ctx, Alice, Name, true, "")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	require.Equal(t, quad.String("Alice"), nodes[0].Value)
	require.Empty(t, nodes[0].Types)

	nodes, err = b.Get(ctx, Alice, Creator, true, "")
	require.NoError(t, err)
	require.Empty(t, nodes)

	attrs, err := b.Load(ctx, Carol, true, "")
	require.NoError(t, err)
	require.Len(t, attrs, 3)
	require.ElementsMatch(t, strs(Person, Admin), values(attrs[graph.RDFType]))
	require.Equal(t, strs(quad.String("Carol")), values(attrs[Name]))

	attrs, err = b.Load(ctx, Alice, false, "")
	require.NoError(t, err)
	require.Equal(t, map[quad.IRI][]graph.Node{
		Creator: {{Value: Doc, Types: []quad.IRI{Docu}}},
	}, attrs)

	ok, err := b.IsPresent(ctx, Alice, "")
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = b.IsPresent(ctx, quad.IRI(ex+"nobody"), "")
	require.NoError(t, err)
	require.False(t, ok)

	all, err := b.All(ctx, Person, 0, 0, "")
	require.NoError(t, err)
	require.ElementsMatch(t, strs(Alice, Bob, Carol), strs(all...))
	all, err = b.All(ctx, Person, 2, 0, "")
	require.NoError(t, err)
	require.Len(t, all, 2)

	nodes, err = b.InstancesByAttribute(ctx, Person, []quad.IRI{Knows}, true, "")
	require.NoError(t, err)
	require.ElementsMatch(t, strs(Alice, Bob), values(nodes))
	for _, n := range nodes {
		require.Equal(t, []quad.IRI{Person}, n.Types)
	}

	nodes, err = b.InstancesByAttribute(ctx, Person, []quad.IRI{Knows, Creator}, false, "")
	require.NoError(t, err)
	require.ElementsMatch(t, strs(Alice, Bob, Carol), values(nodes))
}

func TestGetBy(t *testing.T, gen BackendFunc) {
	b, closer := prepare(t, gen)
	defer closer()
	ctx := context.Background()

	got, err := b.GetBy(ctx, graph.Params{Type: Person, Order: &graph.Order{Pred: Age}})
	require.NoError(t, err)
	require.Equal(t, strs(Bob, Alice, Carol), subjects(got))
	require.ElementsMatch(t, []quad.IRI{Person, Admin}, got[2].Types)
	require.Nil(t, got[0].Direct, "not loaded without Full")

	got, err = b.GetBy(ctx, graph.Params{Type: Person, Order: &graph.Order{Pred: Age, Desc: true}})
	require.NoError(t, err)
	require.Equal(t, strs(Carol, Alice, Bob), subjects(got))

	got, err = b.GetBy(ctx, graph.Params{Type: Person, Order: &graph.Order{Pred: Age}, Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Equal(t, strs(Alice, Carol), subjects(got))

	got, err = b.GetBy(ctx, graph.Params{Type: Person, Filters: []graph.Filter{
		{Pred: Knows, Values: []quad.Value{Bob}, Direct: true},
	}})
	require.NoError(t, err)
	require.Equal(t, strs(Alice), subjects(got))

	got, err = b.GetBy(ctx, graph.Params{Type: Person, Filters: []graph.Filter{
		{Pred: Knows, Values: []quad.Value{Bob, Carol}, Direct: true},
	}})
	require.NoError(t, err)
	require.ElementsMatch(t, strs(Alice, Bob), subjects(got))

	got, err = b.GetBy(ctx, graph.Params{Filters: []graph.Filter{
		{Pred: Knows, Values: []quad.Value{Alice}, Direct: false},
	}})
	require.NoError(t, err)
	require.Equal(t, strs(Bob), subjects(got))

	got, err = b.GetBy(ctx, graph.Params{Type: Person, Full: true, Filters: []graph.Filter{
		{Pred: Name, Values: []quad.Value{quad.String("Bob")}, Direct: true},
	}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, strs(quad.Int(25)), values(got[0].Direct[Age]))
	require.Equal(t, strs(Alice), values(got[0].Inverse[Knows]))

	got, err = b.GetBy(ctx, graph.Params{Type: Person, Full: true, OnlyDirect: true, Filters: []graph.Filter{
		{Pred: Name, Values: []quad.Value{quad.String("Bob")}, Direct: true},
	}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotEmpty(t, got[0].Direct)
	require.Nil(t, got[0].Inverse)
}

// TestGetByOrderValues checks that ordering by a predicate keeps subjects
// without a value and counts every subject once, whatever its number of values.
func TestGetByOrderValues(t *testing.T, gen BackendFunc) {
	b, closer := prepare(t, gen)
	defer closer()
	ctx := context.Background()

	dave := quad.IRI(ex + "dave")
	require.NoError(t, b.AddTriple(ctx, dave, quad.IRI(rdf.Type), Person, ""))
	require.NoError(t, b.AddTriple(ctx, Bob, Age, quad.Int(50), ""))

	order := &graph.Order{Pred: Age}
	got, err := b.GetBy(ctx, graph.Params{Type: Person, Order: order})
	require.NoError(t, err)
	require.Equal(t, strs(dave, Bob, Alice, Carol), subjects(got))

	got, err = b.GetBy(ctx, graph.Params{Type: Person, Order: order, Limit: 2})
	require.NoError(t, err)
	require.Equal(t, strs(dave, Bob), subjects(got))

	got, err = b.GetBy(ctx, graph.Params{Type: Person, Order: order, Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Equal(t, strs(Alice, Carol), subjects(got))

	desc := &graph.Order{Pred: Age, Desc: true}
	got, err = b.GetBy(ctx, graph.Params{Type: Person, Order: desc})
	require.NoError(t, err)
	require.Equal(t, strs(Bob, Carol, Alice, dave), subjects(got))

	got, err = b.GetBy(ctx, graph.Params{Type: Person, Order: desc, Limit: 2, Full: true, OnlyDirect: true})
	require.NoError(t, err)
	require.Equal(t, strs(Bob, Carol), subjects(got))
	require.ElementsMatch(t, strs(quad.Int(25), quad.Int(50)), values(got[0].Direct[Age]))
}

func backendSize(t testing.TB, b graph.Backend) int64 {
	n, err := b.Size(context.Background())
	require.NoError(t, err)
	return n
}

func TestWriter(t *testing.T, gen BackendFunc) {
	b, closer := prepare(t, gen)
	defer closer()
	ctx := context.Background()

	require.Equal(t, int64(14), backendSize(t, b))

	err := b.Save(ctx, Object{S: Alice, Attrs: map[quad.IRI][]quad.Value{
		Name: {quad.String("Alicia")},
	}})
	require.NoError(t, err)
	require.Equal(t, int64(11), backendSize(t, b))
	nodes, err := b.Get(ctx, Alice, Name, true, "")
	require.NoError(t, err)
	require.Equal(t, strs(quad.String("Alicia")), values(nodes))

	err = b.Update(ctx, Object{S: Bob, Attrs: map[quad.IRI][]quad.Value{
		Age: {quad.Int(26)},
	}})
	require.NoError(t, err)
	attrs, err := b.Load(ctx, Bob, true, "")
	require.NoError(t, err)
	require.Equal(t, strs(quad.Int(26)), values(attrs[Age]))
	require.Equal(t, strs(quad.String("Bob")), values(attrs[Name]))

	err = b.Remove(ctx, true, Object{S: Carol})
	require.NoError(t, err)
	ok, err := b.IsPresent(ctx, Carol, "")
	require.NoError(t, err)
	require.False(t, ok)
	nodes, err = b.Get(ctx, Bob, Knows, true, "")
	require.NoError(t, err)
	require.Empty(t, nodes)

	require.NoError(t, b.AddTriple(ctx, Bob, Knows, Alice, ""))
	require.NoError(t, b.AddTriple(ctx, Bob, Knows, Doc, ""))
	nodes, err = b.Get(ctx, Bob, Knows, true, "")
	require.NoError(t, err)
	require.ElementsMatch(t, strs(Alice, Doc), values(nodes))

	require.NoError(t, b.SetTriple(ctx, Bob, Knows, Carol, ""))
	nodes, err = b.Get(ctx, Bob, Knows, true, "")
	require.NoError(t, err)
	require.Equal(t, strs(Carol), values(nodes))

	require.NoError(t, b.RemoveTriple(ctx, Bob, Knows, Carol, ""))
	require.NoError(t, b.RemoveTriple(ctx, Bob, Knows, Carol, ""), "removing a missing triple is not an error")
	require.NoError(t, b.RemoveTriple(ctx, nil, Creator, nil, ""))
	attrs, err = b.Load(ctx, Doc, true, "")
	require.NoError(t, err)
	require.NotContains(t, attrs, Creator)

	require.NoError(t, b.Clear(ctx, ""))
	require.Equal(t, int64(0), backendSize(t, b))
}

func TestLabels(t *testing.T, gen BackendFunc) {
	b, closer := gen(t)
	defer closer()
	ctx := context.Background()
	g1, g2 := quad.IRI(ex+"g1"), quad.IRI(ex+"g2")

	require.NoError(t, b.AddTriple(ctx, Alice, Name, quad.String("Alice"), g1))
	require.NoError(t, b.AddTriple(ctx, Alice, Name, quad.LangString{Value: "Alice", Lang: "en"}, g2))

	nodes, err := b.Get(ctx, Alice, Name, true, g1)
	require.NoError(t, err)
	require.Equal(t, strs(quad.String("Alice")), values(nodes))

	nodes, err = b.Get(ctx, Alice, Name, true, "")
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	text := "<" + ex + "bob> <" + foaf + "name> \"Bob\" .\n"
	n, err := b.LoadTriples(ctx, strings.NewReader(text), "nquads", g2)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	ok, err := b.IsPresent(ctx, Bob, g2)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = b.IsPresent(ctx, Bob, g1)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, b.Clear(ctx, g2))
	require.Equal(t, int64(1), backendSize(t, b))

	_, err = b.LoadTriples(ctx, strings.NewReader(text), "no-such-format", "")
	require.Error(t, err)
}
