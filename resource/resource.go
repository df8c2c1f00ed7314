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
	"sort"

	"github.com/cayleygraph/quad"

	"github.com/cayleygraph/surf/clog"
	"github.com/cayleygraph/surf/graph"
)

type attrKey struct {
	pred   quad.IRI
	direct bool
}

// Resource is an RDF subject with its direct and inverse attributes.
//
// Attributes are read lazily and cached in memory. Changes are kept in memory
// until Save, Update or Session.Commit is called.
type Resource struct {
	subj  quad.Value
	sess  *Session
	class *Class
	store string
	label quad.IRI

	direct  map[quad.IRI][]quad.Value
	inverse map[quad.IRI][]quad.Value

	fullDirect  bool
	fullInverse bool
	dirty       bool

	values map[attrKey]*Values
}

var _ graph.Object = (*Resource)(nil)

// Subject returns the IRI or blank node of the resource.
func (r *Resource) Subject() quad.Value { return r.subj }

// Label returns the named graph of the resource.
func (r *Resource) Label() quad.IRI { return r.label }

// SetLabel moves the resource to a named graph. It does not mark it dirty.
func (r *Resource) SetLabel(label quad.IRI) { r.label = label }

// Class returns the class of the resource, or nil for untyped resources.
func (r *Resource) Class() *Class { return r.class }

// Session returns the session owning the resource.
func (r *Resource) Session() *Session { return r.sess }

// Key returns a string that identifies the subject.
func (r *Resource) Key() string { return quad.StringOf(r.subj) }

// Equal compares subjects of two resources.
func (r *Resource) Equal(o *Resource) bool {
	if r == nil || o == nil {
		return r == o
	}
	return r.Key() == o.Key()
}

func (r *Resource) String() string { return r.Key() }

// IsDirty reports whether the resource has unsaved changes.
func (r *Resource) IsDirty() bool { return r.dirty }

func copyAttrs(m map[quad.IRI][]quad.Value) map[quad.IRI][]quad.Value {
	out := make(map[quad.IRI][]quad.Value, len(m))
	for p, vals := range m {
		out[p] = append([]quad.Value{}, vals...)
	}
	return out
}

// Direct returns a copy of the direct attributes known in memory.
func (r *Resource) Direct() map[quad.IRI][]quad.Value { return copyAttrs(r.direct) }

// Inverse returns a copy of the inverse attributes known in memory.
func (r *Resource) Inverse() map[quad.IRI][]quad.Value { return copyAttrs(r.inverse) }

// Types returns the rdf:types known in memory.
func (r *Resource) Types() []quad.IRI {
	var out []quad.IRI
	for _, v := range r.direct[graph.RDFType] {
		if t, ok := v.(quad.IRI); ok {
			out = append(out, t)
		}
	}
	return out
}

// Attrs returns sorted names of the attributes known in memory.
func (r *Resource) Attrs() []string {
	names := r.sess.names()
	out := make([]string, 0, len(r.direct)+len(r.inverse))
	for p := range r.direct {
		out = append(out, names.AttrName(p, true))
	}
	for p := range r.inverse {
		out = append(out, names.AttrName(p, false))
	}
	sort.Strings(out)
	return out
}

func (r *Resource) attrs(direct bool) map[quad.IRI][]quad.Value {
	if direct {
		return r.direct
	}
	return r.inverse
}

func (r *Resource) full(direct bool) bool {
	if direct {
		return r.fullDirect
	}
	return r.fullInverse
}

func (r *Resource) backend() (graph.Backend, error) {
	return r.sess.Store(r.store)
}

// wrap turns a term into a value returned to callers: resources for IRIs and
// blank nodes, Go natives for literals.
func (r *Resource) wrap(v quad.Value, types []quad.IRI) interface{} {
	switch v.(type) {
	case quad.IRI, quad.BNode:
		o := r.sess.GetResource(v, types...)
		o.store, o.label = r.store, r.label
		return o
	case nil:
		return nil
	}
	return v.Native()
}

func (r *Resource) markDirty() error {
	r.dirty = true
	r.sess.addDirty(r)
	if r.sess.AutoPersist {
		return r.Update(context.Background())
	}
	return nil
}

func (r *Resource) markClean() {
	r.dirty = false
	r.sess.removeDirty(r)
}

func (r *Resource) resetValues(k attrKey) {
	if v, ok := r.values[k]; ok {
		v.reset()
	}
}

// Get returns the container of an attribute by its name, for example
// "foaf_knows" or "is_foaf_knows_of".
func (r *Resource) Get(name string) (*Values, error) {
	pred, direct, err := r.sess.names().ParseAttr(name)
	if err != nil {
		return nil, err
	}
	return r.Attr(pred, direct), nil
}

// Attr returns the container of an attribute. Containers are cached, so
// repeated calls return the same instance.
func (r *Resource) Attr(pred quad.IRI, direct bool) *Values {
	k := attrKey{pred: pred, direct: direct}
	if v, ok := r.values[k]; ok {
		return v
	}
	if r.values == nil {
		r.values = make(map[attrKey]*Values)
	}
	v := &Values{owner: r, pred: pred, direct: direct}
	r.values[k] = v
	return v
}

// fetch returns the terms of an attribute, from memory if they are known and
// from the backend otherwise. Fetched terms are kept without marking the
// resource dirty.
func (r *Resource) fetch(ctx context.Context, pred quad.IRI, direct bool) ([]quad.Value, [][]quad.IRI, error) {
	m := r.attrs(direct)
	if terms, ok := m[pred]; ok {
		mResolves.WithLabelValues("memory").Inc()
		return append([]quad.Value(nil), terms...), nil, nil
	} else if r.full(direct) {
		mResolves.WithLabelValues("memory").Inc()
		return nil, nil, nil
	}
	b, err := r.backend()
	if err != nil {
		return nil, nil, err
	}
	nodes, err := b.Get(ctx, r.subj, pred, direct, r.label)
	if err != nil {
		return nil, nil, err
	}
	mResolves.WithLabelValues("backend").Inc()
	terms := make([]quad.Value, 0, len(nodes))
	types := make([][]quad.IRI, 0, len(nodes))
	for _, n := range nodes {
		terms = append(terms, n.Value)
		types = append(types, n.Types)
	}
	m[pred] = append([]quad.Value(nil), terms...)
	return terms, types, nil
}

// Set replaces values of an attribute by its name.
func (r *Resource) Set(name string, value interface{}) error {
	pred, direct, err := r.sess.names().ParseAttr(name)
	if err != nil {
		return err
	}
	return r.SetAttr(pred, direct, value)
}

// SetAttr replaces values of an attribute. The value may be a Go native, a
// quad.Value, a *Resource, a *Values or a slice of those.
func (r *Resource) SetAttr(pred quad.IRI, direct bool, value interface{}) error {
	terms, _, err := convert(value)
	if err != nil {
		return err
	}
	if terms == nil {
		terms = []quad.Value{}
	}
	r.attrs(direct)[pred] = terms
	r.resetValues(attrKey{pred: pred, direct: direct})
	return r.markDirty()
}

// Delete clears all values of an attribute by its name.
func (r *Resource) Delete(name string) error {
	pred, direct, err := r.sess.names().ParseAttr(name)
	if err != nil {
		return err
	}
	return r.DeleteAttr(pred, direct)
}

// DeleteAttr clears all values of an attribute. The predicate stays known,
// so Update removes its triples from the store.
func (r *Resource) DeleteAttr(pred quad.IRI, direct bool) error {
	r.attrs(direct)[pred] = []quad.Value{}
	r.resetValues(attrKey{pred: pred, direct: direct})
	return r.markDirty()
}

func nodeTerms(m map[quad.IRI][]graph.Node) map[quad.IRI][]quad.Value {
	out := make(map[quad.IRI][]quad.Value, len(m))
	for p, nodes := range m {
		vals := make([]quad.Value, 0, len(nodes))
		for _, n := range nodes {
			vals = append(vals, n.Value)
		}
		out[p] = vals
	}
	return out
}

func (r *Resource) fill(direct, inverse map[quad.IRI][]graph.Node, onlyDirect bool) {
	r.direct, r.fullDirect = nodeTerms(direct), true
	if !onlyDirect {
		r.inverse, r.fullInverse = nodeTerms(inverse), true
	}
	for _, v := range r.values {
		v.reset()
	}
}

// Load reads all direct attributes and, unless directOnly is set, all
// inverse attributes from the backend. Unsaved changes are discarded.
func (r *Resource) Load(ctx context.Context, directOnly bool) error {
	b, err := r.backend()
	if err != nil {
		return err
	}
	direct, err := b.Load(ctx, r.subj, true, r.label)
	if err != nil {
		return err
	}
	var inverse map[quad.IRI][]graph.Node
	if !directOnly {
		if inverse, err = b.Load(ctx, r.subj, false, r.label); err != nil {
			return err
		}
	}
	r.fill(direct, inverse, directOnly)
	if r.class == nil {
		if types := r.Types(); len(types) != 0 {
			r.class = r.sess.GetClass(types[0])
		}
	}
	r.markClean()
	if clog.V(2) {
		clog.Infof("resource: loaded %v (%d direct, %d inverse)", r.subj, len(r.direct), len(r.inverse))
	}
	return nil
}

// Save replaces all direct triples of the subject with the ones in memory.
func (r *Resource) Save(ctx context.Context) error {
	b, err := r.backend()
	if err != nil {
		return err
	}
	if err = b.Save(ctx, r); err != nil {
		return err
	}
	r.markClean()
	return nil
}

// Update replaces triples of the direct predicates known in memory.
func (r *Resource) Update(ctx context.Context) error {
	b, err := r.backend()
	if err != nil {
		return err
	}
	if err = b.Update(ctx, r); err != nil {
		return err
	}
	r.markClean()
	return nil
}

// Remove deletes all triples of the subject, and with inverse set, the triples
// pointing to it. Attributes in memory are discarded.
func (r *Resource) Remove(ctx context.Context, inverse bool) error {
	b, err := r.backend()
	if err != nil {
		return err
	}
	if err = b.Remove(ctx, inverse, r); err != nil {
		return err
	}
	r.direct = make(map[quad.IRI][]quad.Value)
	r.inverse = make(map[quad.IRI][]quad.Value)
	r.fullDirect, r.fullInverse = false, false
	for _, v := range r.values {
		v.reset()
	}
	r.markClean()
	return nil
}

// IsPresent checks if the subject has any triples in the store.
func (r *Resource) IsPresent(ctx context.Context) (bool, error) {
	b, err := r.backend()
	if err != nil {
		return false, err
	}
	return b.IsPresent(ctx, r.subj, r.label)
}
