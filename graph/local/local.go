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

// Package local implements graph.Backend on top of a primitive quad store.
// Reads and writes are expressed as query models and evaluated in process.
package local

import (
	"context"
	"fmt"
	"io"

	"github.com/cayleygraph/quad"

	"github.com/cayleygraph/surf/clog"
	"github.com/cayleygraph/surf/graph"
	"github.com/cayleygraph/surf/graph/eval"
	"github.com/cayleygraph/surf/query"
)

// Store is a graph.Backend backed by a graph.QuadStore.
type Store struct {
	qs    graph.QuadStore
	batch int
}

var _ graph.Backend = (*Store)(nil)

// New wraps a quad store.
func New(qs graph.QuadStore) *Store {
	return &Store{qs: qs, batch: quad.DefaultBatch}
}

// WithBatch sets the number of quads applied at once by LoadTriples.
func (s *Store) WithBatch(n int) *Store {
	if n > 0 {
		s.batch = n
	}
	return s
}

// QuadStore returns the underlying quad store.
func (s *Store) QuadStore() graph.QuadStore { return s.qs }

func (s *Store) Execute(ctx context.Context, q *query.Query) (*graph.Result, error) {
	return eval.Execute(ctx, s.qs, q)
}

// ExecuteSPARQL is not supported: local stores evaluate query models only.
func (s *Store) ExecuteSPARQL(ctx context.Context, text string) (*graph.Result, error) {
	return nil, fmt.Errorf("%w: SPARQL text on a local store", graph.ErrOperationNotSupported)
}

func (s *Store) Get(ctx context.Context, subj quad.Value, p quad.IRI, direct bool, label quad.IRI) ([]graph.Node, error) {
	res, err := s.Execute(ctx, graph.GetQuery(subj, p, direct, label))
	if err != nil {
		return nil, err
	}
	return graph.NodesOf(res, "v", "t"), nil
}

func (s *Store) Load(ctx context.Context, subj quad.Value, direct bool, label quad.IRI) (map[quad.IRI][]graph.Node, error) {
	res, err := s.Execute(ctx, graph.LoadQuery(subj, direct, label))
	if err != nil {
		return nil, err
	}
	return graph.PredicatesOf(res, "p", "v", "t"), nil
}

func (s *Store) IsPresent(ctx context.Context, subj quad.Value, label quad.IRI) (bool, error) {
	res, err := s.Execute(ctx, graph.IsPresentQuery(subj, label))
	if err != nil {
		return false, err
	}
	return res.Bool, nil
}

func (s *Store) All(ctx context.Context, typ quad.IRI, limit, offset int, label quad.IRI) ([]quad.Value, error) {
	res, err := s.Execute(ctx, graph.AllQuery(typ, limit, offset, label))
	if err != nil {
		return nil, err
	}
	return res.Column("s"), nil
}

func (s *Store) InstancesByAttribute(ctx context.Context, typ quad.IRI, preds []quad.IRI, direct bool, label quad.IRI) ([]graph.Node, error) {
	res, err := s.Execute(ctx, graph.InstancesByAttributeQuery(typ, preds, direct, label))
	if err != nil {
		return nil, err
	}
	return graph.NodesOf(res, "s", "c"), nil
}

func (s *Store) GetBy(ctx context.Context, p graph.Params) ([]graph.Entry, error) {
	return graph.RunGetBy(ctx, s, p)
}

// run executes updates in order, stopping at the first error.
func (s *Store) run(ctx context.Context, updates ...*query.Query) error {
	for _, u := range updates {
		if _, err := s.Execute(ctx, u); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Save(ctx context.Context, objs ...graph.Object) error {
	for _, o := range objs {
		if err := s.run(ctx, graph.SaveUpdates(o)...); err != nil {
			return fmt.Errorf("save %v: %w", o.Subject(), err)
		}
	}
	return nil
}

func (s *Store) Update(ctx context.Context, objs ...graph.Object) error {
	for _, o := range objs {
		if err := s.run(ctx, graph.UpdateUpdates(o)...); err != nil {
			return fmt.Errorf("update %v: %w", o.Subject(), err)
		}
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, inverse bool, objs ...graph.Object) error {
	for _, o := range objs {
		if err := s.run(ctx, graph.RemoveUpdates(o, inverse)...); err != nil {
			return fmt.Errorf("remove %v: %w", o.Subject(), err)
		}
	}
	return nil
}

func (s *Store) Size(ctx context.Context) (int64, error) {
	return s.qs.Size(ctx)
}

func (s *Store) AddTriple(ctx context.Context, subj quad.Value, p quad.IRI, o quad.Value, label quad.IRI) error {
	u := graph.AddTripleUpdate(subj, p, o, label)
	if u == nil {
		return fmt.Errorf("%w: missing object", query.ErrInvalid)
	}
	return s.run(ctx, u)
}

func (s *Store) SetTriple(ctx context.Context, subj quad.Value, p quad.IRI, o quad.Value, label quad.IRI) error {
	return s.run(ctx, graph.SetTripleUpdates(subj, p, o, label)...)
}

func (s *Store) RemoveTriple(ctx context.Context, subj quad.Value, p quad.IRI, o quad.Value, label quad.IRI) error {
	return s.run(ctx, graph.RemoveTripleUpdate(subj, p, o, label))
}

func (s *Store) Clear(ctx context.Context, label quad.IRI) error {
	return s.run(ctx, graph.ClearUpdate(label))
}

// LoadTriples decodes quads in any registered quad format. A non-empty label
// overrides the graph of every quad.
func (s *Store) LoadTriples(ctx context.Context, r io.Reader, format string, label quad.IRI) (int, error) {
	f := quad.FormatByName(format)
	if f == nil || f.Reader == nil {
		return 0, fmt.Errorf("%w: cannot read format %q", graph.ErrOperationNotSupported, format)
	}
	qr := f.Reader(r)
	defer qr.Close()

	w := graph.NewWriter(ctx, s.qs, s.batch)
	n := 0
	for {
		q, err := qr.ReadQuad()
		if err == io.EOF {
			break
		} else if err != nil {
			return n, fmt.Errorf("read quad %d: %w", n+1, err)
		}
		if label != "" {
			q.Label = label
		}
		if err = w.WriteQuad(q); err != nil {
			return n, err
		}
		n++
	}
	if err := w.Close(); err != nil {
		return n, err
	}
	if clog.V(1) {
		clog.Infof("loaded %d quads (%s)", n, format)
	}
	return n, nil
}

func (s *Store) Close() error {
	return s.qs.Close()
}
