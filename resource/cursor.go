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

package resource

import (
	"context"
	"fmt"
	"sort"

	"github.com/cayleygraph/quad"

	"github.com/cayleygraph/surf/graph"
	"github.com/cayleygraph/surf/voc"
)

// Cursor is a lazily executed subject lookup.
//
// Builder methods never modify the cursor; they return a new one. Results are
// fetched on the first read and cached by the cursor.
type Cursor struct {
	sess   *Session
	store  string
	params graph.Params
	err    error

	done  bool
	items []interface{}
	rerr  error
}

func (s *Session) cursor(store string, p graph.Params) *Cursor {
	return &Cursor{sess: s, store: store, params: p}
}

// Params returns a copy of the lookup parameters.
func (c *Cursor) Params() graph.Params { return c.params.Clone() }

// Err returns an error made by one of the builder calls.
func (c *Cursor) Err() error { return c.err }

func (c *Cursor) with(fn func(p *graph.Params) error) *Cursor {
	n := &Cursor{sess: c.sess, store: c.store, params: c.params.Clone(), err: c.err}
	if n.err == nil {
		n.err = fn(&n.params)
	}
	return n
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Limit sets the maximal number of subjects. Zero means no limit.
func (c *Cursor) Limit(n int) *Cursor {
	return c.with(func(p *graph.Params) error {
		p.Limit = n
		return nil
	})
}

// Offset skips the first n subjects.
func (c *Cursor) Offset(n int) *Cursor {
	return c.with(func(p *graph.Params) error {
		p.Offset = n
		return nil
	})
}

// Order sorts subjects by a direct attribute. An empty name sorts by subject.
func (c *Cursor) Order(attr string) *Cursor {
	return c.with(func(p *graph.Params) error {
		o := graph.Order{}
		if attr != "" {
			pred, direct, err := c.sess.names().ParseAttr(attr)
			if err != nil {
				return err
			} else if !direct {
				return fmt.Errorf("%w: cannot order by inverse attribute %q", voc.ErrNotPredicate, attr)
			}
			o.Pred = pred
		}
		if p.Order != nil {
			o.Desc = p.Order.Desc
		}
		p.Order = &o
		return nil
	})
}

// OrderBy sorts subjects by a predicate value.
func (c *Cursor) OrderBy(pred quad.IRI) *Cursor {
	return c.with(func(p *graph.Params) error {
		o := graph.Order{Pred: pred}
		if p.Order != nil {
			o.Desc = p.Order.Desc
		}
		p.Order = &o
		return nil
	})
}

// Desc reverses the sort order. Without Order, subjects are sorted.
func (c *Cursor) Desc() *Cursor {
	return c.with(func(p *graph.Params) error {
		if p.Order == nil {
			p.Order = &graph.Order{}
		}
		p.Order.Desc = true
		return nil
	})
}

// Filter adds raw conditions on attribute values. Each expression must contain
// a single %s, for example "(%s > 18)".
func (c *Cursor) Filter(conds map[string]string) *Cursor {
	return c.with(func(p *graph.Params) error {
		for _, name := range sortedKeys(conds) {
			pred, direct, err := c.sess.names().ParseAttr(name)
			if err != nil {
				return err
			}
			p.Conds = append(p.Conds, graph.Cond{Pred: pred, Direct: direct, Expr: conds[name]})
		}
		return nil
	})
}

// GetBy restricts subjects to those having attribute values. A slice means
// any of the values, a nil value only requires the attribute to be present.
// Repeated calls are combined.
func (c *Cursor) GetBy(attrs map[string]interface{}) *Cursor {
	return c.with(func(p *graph.Params) error {
		for _, name := range sortedKeys(attrs) {
			pred, direct, err := c.sess.names().ParseAttr(name)
			if err != nil {
				return err
			}
			terms, _, err := convert(attrs[name])
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			p.Filters = append(p.Filters, graph.Filter{Pred: pred, Values: terms, Direct: direct})
		}
		return nil
	})
}

// Label restricts the lookup to a named graph.
func (c *Cursor) Label(label quad.IRI) *Cursor {
	return c.with(func(p *graph.Params) error {
		p.Label = label
		return nil
	})
}

// Full loads all attributes of returned resources, only the direct ones if
// onlyDirect is set.
func (c *Cursor) Full(onlyDirect bool) *Cursor {
	return c.with(func(p *graph.Params) error {
		p.Full, p.OnlyDirect = true, onlyDirect
		return nil
	})
}

// object turns an entry into a resource of its first type, or into a raw term
// for untyped subjects.
func (c *Cursor) object(e graph.Entry) interface{} {
	if len(e.Types) == 0 {
		return e.Subject
	}
	r := c.sess.newResource(e.Subject, c.sess.GetClass(e.Types[0]), e.Types)
	r.store = c.store
	if c.params.Label != "" {
		r.label = c.params.Label
	}
	if c.params.Full {
		r.fill(e.Direct, e.Inverse, c.params.OnlyDirect)
	}
	return r
}

func (c *Cursor) run(ctx context.Context) error {
	if c.done {
		return c.rerr
	}
	c.done = true
	if c.err != nil {
		c.rerr = c.err
		return c.rerr
	}
	b, err := c.sess.Store(c.store)
	if err != nil {
		c.rerr = err
		return err
	}
	entries, err := b.GetBy(ctx, c.params)
	if err != nil {
		c.rerr = err
		return err
	}
	c.items = make([]interface{}, 0, len(entries))
	for _, e := range entries {
		c.items = append(c.items, c.object(e))
	}
	return nil
}

// All returns all results. Typed subjects are *Resource, others are quad.Value.
func (c *Cursor) All(ctx context.Context) ([]interface{}, error) {
	if err := c.run(ctx); err != nil {
		return nil, err
	}
	return append([]interface{}(nil), c.items...), nil
}

// Resources returns all results as resources, including untyped subjects.
func (c *Cursor) Resources(ctx context.Context) ([]*Resource, error) {
	if err := c.run(ctx); err != nil {
		return nil, err
	}
	out := make([]*Resource, 0, len(c.items))
	for _, it := range c.items {
		switch it := it.(type) {
		case *Resource:
			out = append(out, it)
		case quad.Value:
			r := c.sess.newResource(it, nil, nil)
			r.store, r.label = c.store, c.params.Label
			out = append(out, r)
		}
	}
	return out, nil
}

// Len returns the number of results.
func (c *Cursor) Len(ctx context.Context) (int, error) {
	if err := c.run(ctx); err != nil {
		return 0, err
	}
	return len(c.items), nil
}

// First returns the first result, or nil if there are none.
func (c *Cursor) First(ctx context.Context) (interface{}, error) {
	if err := c.run(ctx); err != nil {
		return nil, err
	} else if len(c.items) == 0 {
		return nil, nil
	}
	return c.items[0], nil
}

// One returns the only result. It fails with ErrNoResult or
// ErrMultipleResults if there is not exactly one.
func (c *Cursor) One(ctx context.Context) (interface{}, error) {
	if err := c.run(ctx); err != nil {
		return nil, err
	}
	switch len(c.items) {
	case 0:
		return nil, ErrNoResult
	case 1:
		return c.items[0], nil
	}
	return nil, ErrMultipleResults
}
