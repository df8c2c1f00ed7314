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

// Package graphmock provides a graph.Backend that records calls made to an
// underlying backend.
package graphmock

import (
	"context"
	"io"
	"sort"
	"sync"

	"github.com/cayleygraph/quad"

	"github.com/cayleygraph/surf/graph"
	"github.com/cayleygraph/surf/query"
)

// Backend forwards every call to the wrapped backend and counts them per method.
type Backend struct {
	B graph.Backend

	mu    sync.Mutex
	calls map[string]int
}

var _ graph.Backend = (*Backend)(nil)

// New wraps a backend.
func New(b graph.Backend) *Backend {
	return &Backend{B: b, calls: make(map[string]int)}
}

func (b *Backend) record(method string) {
	b.mu.Lock()
	b.calls[method]++
	b.mu.Unlock()
}

// Calls returns the number of calls of a method, e.g. "Get".
func (b *Backend) Calls(method string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[method]
}

// Total returns the number of calls of all methods.
func (b *Backend) Total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		n += c
	}
	return n
}

// Methods lists the methods that were called at least once.
func (b *Backend) Methods() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.calls))
	for m := range b.calls {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Reset forgets all recorded calls.
func (b *Backend) Reset() {
	b.mu.Lock()
	b.calls = make(map[string]int)
	b.mu.Unlock()
}

func (b *Backend) Get(ctx context.Context, s quad.Value, p quad.IRI, direct bool, label quad.IRI) ([]graph.Node, error) {
	b.record("Get")
	return b.B.Get(ctx, s, p, direct, label)
}

func (b *Backend) Load(ctx context.Context, s quad.Value, direct bool, label quad.IRI) (map[quad.IRI][]graph.Node, error) {
	b.record("Load")
	return b.B.Load(ctx, s, direct, label)
}

func (b *Backend) IsPresent(ctx context.Context, s quad.Value, label quad.IRI) (bool, error) {
	b.record("IsPresent")
	return b.B.IsPresent(ctx, s, label)
}

func (b *Backend) All(ctx context.Context, typ quad.IRI, limit, offset int, label quad.IRI) ([]quad.Value, error) {
	b.record("All")
	return b.B.All(ctx, typ, limit, offset, label)
}

func (b *Backend) InstancesByAttribute(ctx context.Context, typ quad.IRI, preds []quad.IRI, direct bool, label quad.IRI) ([]graph.Node, error) {
	b.record("InstancesByAttribute")
	return b.B.InstancesByAttribute(ctx, typ, preds, direct, label)
}

func (b *Backend) GetBy(ctx context.Context, p graph.Params) ([]graph.Entry, error) {
	b.record("GetBy")
	return b.B.GetBy(ctx, p)
}

func (b *Backend) Execute(ctx context.Context, q *query.Query) (*graph.Result, error) {
	b.record("Execute")
	return b.B.Execute(ctx, q)
}

func (b *Backend) ExecuteSPARQL(ctx context.Context, text string) (*graph.Result, error) {
	b.record("ExecuteSPARQL")
	return b.B.ExecuteSPARQL(ctx, text)
}

func (b *Backend) Save(ctx context.Context, objs ...graph.Object) error {
	b.record("Save")
	return b.B.Save(ctx, objs...)
}

func (b *Backend) Update(ctx context.Context, objs ...graph.Object) error {
	b.record("Update")
	return b.B.Update(ctx, objs...)
}

func (b *Backend) Remove(ctx context.Context, inverse bool, objs ...graph.Object) error {
	b.record("Remove")
	return b.B.Remove(ctx, inverse, objs...)
}

func (b *Backend) Size(ctx context.Context) (int64, error) {
	b.record("Size")
	return b.B.Size(ctx)
}

func (b *Backend) AddTriple(ctx context.Context, s quad.Value, p quad.IRI, o quad.Value, label quad.IRI) error {
	b.record("AddTriple")
	return b.B.AddTriple(ctx, s, p, o, label)
}

func (b *Backend) SetTriple(ctx context.Context, s quad.Value, p quad.IRI, o quad.Value, label quad.IRI) error {
	b.record("SetTriple")
	return b.B.SetTriple(ctx, s, p, o, label)
}

func (b *Backend) RemoveTriple(ctx context.Context, s quad.Value, p quad.IRI, o quad.Value, label quad.IRI) error {
	b.record("RemoveTriple")
	return b.B.RemoveTriple(ctx, s, p, o, label)
}

func (b *Backend) Clear(ctx context.Context, label quad.IRI) error {
	b.record("Clear")
	return b.B.Clear(ctx, label)
}

func (b *Backend) LoadTriples(ctx context.Context, r io.Reader, format string, label quad.IRI) (int, error) {
	b.record("LoadTriples")
	return b.B.LoadTriples(ctx, r, format, label)
}

func (b *Backend) Close() error {
	b.record("Close")
	return b.B.Close()
}
