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

	"github.com/cayleygraph/quad"

	"github.com/cayleygraph/surf/clog"
	"github.com/cayleygraph/surf/graph"
)

// Class describes resources of a single rdf:type.
type Class struct {
	Type quad.IRI
	// Store is the key of the session store holding the instances.
	Store string
	// Label is the named graph of the instances. Empty means the default graph.
	Label quad.IRI
	// Predicates is an optional set of predicates declared for instances.
	Predicates []quad.IRI

	sess *Session
}

// Session returns the session the class belongs to.
func (c *Class) Session() *Session { return c.sess }

func (c *Class) String() string { return c.Type.String() }

// New returns an instance with a staged rdf:type. The instance is dirty
// until it is saved. With AutoPersist a failed save is logged and leaves the
// instance dirty, so the error is returned by the next Session.Commit.
func (c *Class) New(subj quad.Value) *Resource {
	r := c.sess.newResource(subj, c, []quad.IRI{c.Type})
	if err := r.markDirty(); err != nil {
		clog.Warningf("resource: cannot persist new %v: %v", subj, err)
	}
	return r
}

// Get returns a clean instance without contacting the backend.
func (c *Class) Get(subj quad.Value) *Resource {
	return c.sess.newResource(subj, c, []quad.IRI{c.Type})
}

// All returns a cursor over all instances of the class.
func (c *Class) All() *Cursor {
	return c.sess.cursor(c.Store, graph.Params{Type: c.Type, Label: c.Label})
}

// Query is an alias of All, kept for symmetry with attribute queries.
func (c *Class) Query() *Cursor { return c.All() }

// GetBy returns a cursor over instances having the given attribute values.
// See Cursor.GetBy.
func (c *Class) GetBy(attrs map[string]interface{}) *Cursor {
	return c.All().GetBy(attrs)
}

// Instances lists instances of the class, without loading their attributes.
// Zero limit means no limit.
func (c *Class) Instances(ctx context.Context, limit, offset int) ([]*Resource, error) {
	b, err := c.sess.Store(c.Store)
	if err != nil {
		return nil, err
	}
	vals, err := b.All(ctx, c.Type, limit, offset, c.Label)
	if err != nil {
		return nil, err
	}
	out := make([]*Resource, 0, len(vals))
	for _, v := range vals {
		out = append(out, c.Get(v))
	}
	return out, nil
}

// InstancesByAttribute lists instances that have a value for any of the
// predicates. With no predicates the declared class predicates are used.
func (c *Class) InstancesByAttribute(ctx context.Context, direct bool, preds ...quad.IRI) ([]*Resource, error) {
	if len(preds) == 0 {
		preds = c.Predicates
	}
	b, err := c.sess.Store(c.Store)
	if err != nil {
		return nil, err
	}
	nodes, err := b.InstancesByAttribute(ctx, c.Type, preds, direct, c.Label)
	if err != nil {
		return nil, err
	}
	out := make([]*Resource, 0, len(nodes))
	for _, n := range nodes {
		types := n.Types
		if len(types) == 0 {
			types = []quad.IRI{c.Type}
		}
		r := c.sess.newResource(n.Value, c, types)
		out = append(out, r)
	}
	return out, nil
}
