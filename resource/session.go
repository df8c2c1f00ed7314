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

// Package resource maps RDF subjects stored in a graph.Backend to Go objects.
//
// A Session holds named backends and the set of modified resources. Resources
// are created through a Session, either directly or from a Class, and read
// their attributes lazily:
//
//	sess := resource.NewSession(map[string]graph.Backend{resource.DefaultStore: b})
//	person := sess.GetClass(quad.IRI("http://xmlns.com/foaf/0.1/Person"))
//	alice := person.New(quad.IRI("http://example.org/alice"))
//	alice.Set("foaf_name", "Alice")
//	err := sess.Commit(ctx)
package resource

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cayleygraph/quad"
	"github.com/google/uuid"

	"github.com/cayleygraph/surf/clog"
	"github.com/cayleygraph/surf/graph"
	"github.com/cayleygraph/surf/voc"
)

// DefaultStore is the store key used by classes without an explicit store.
const DefaultStore = "default"

var (
	// ErrNoResult is returned by One when there are no values.
	ErrNoResult = errors.New("no result")
	// ErrMultipleResults is returned by One when there is more than one value.
	ErrMultipleResults = errors.New("multiple results")
	// ErrNoStore is returned when a resource refers to a store key that is not
	// registered in the session.
	ErrNoStore = errors.New("store is not registered")
)

// Session is a unit of work over a set of named backends.
// It is not safe for concurrent use.
type Session struct {
	// AutoPersist makes every attribute change call Update immediately.
	AutoPersist bool
	// Names resolves attribute names. The global registry is used if nil.
	Names *voc.Registry

	stores  map[string]graph.Backend
	classes map[quad.IRI]*Class
	dirty   []*Resource
}

// NewSession creates a session over the given stores. The map may be nil.
func NewSession(stores map[string]graph.Backend) *Session {
	s := &Session{
		stores:  make(map[string]graph.Backend, len(stores)),
		classes: make(map[quad.IRI]*Class),
	}
	for k, b := range stores {
		s.stores[k] = b
	}
	return s
}

// AddStore registers a backend under a key, replacing the previous one.
func (s *Session) AddStore(key string, b graph.Backend) {
	s.stores[key] = b
}

// Store returns a backend by its key. An empty key means DefaultStore.
func (s *Session) Store(key string) (graph.Backend, error) {
	if key == "" {
		key = DefaultStore
	}
	b, ok := s.stores[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoStore, key)
	}
	return b, nil
}

func (s *Session) names() *voc.Registry {
	if s.Names != nil {
		return s.Names
	}
	return voc.Global()
}

// ClassOption configures a Class when it is first requested.
type ClassOption func(c *Class)

// WithStore binds the class to a store key.
func WithStore(key string) ClassOption {
	return func(c *Class) { c.Store = key }
}

// WithLabel places instances of the class in a named graph.
func WithLabel(label quad.IRI) ClassOption {
	return func(c *Class) { c.Label = label }
}

// WithPredicates declares the predicates instances of the class are expected to have.
func WithPredicates(preds ...quad.IRI) ClassOption {
	return func(c *Class) { c.Predicates = append([]quad.IRI(nil), preds...) }
}

// GetClass returns the class bound to an rdf:type. Classes are cached, so
// options only apply to the first call for a type.
func (s *Session) GetClass(typ quad.IRI, opts ...ClassOption) *Class {
	if c, ok := s.classes[typ]; ok {
		return c
	}
	c := &Class{Type: typ, Store: DefaultStore, sess: s}
	for _, opt := range opts {
		opt(c)
	}
	s.classes[typ] = c
	return c
}

// Classes returns all classes requested so far.
func (s *Session) Classes() []*Class {
	out := make([]*Class, 0, len(s.classes))
	for _, c := range s.classes {
		out = append(out, c)
	}
	return out
}

// GetResource returns a clean resource for a subject. The class of the first
// type is used, if any. No backend is contacted.
func (s *Session) GetResource(subj quad.Value, types ...quad.IRI) *Resource {
	var c *Class
	if len(types) != 0 {
		c = s.GetClass(types[0])
	}
	return s.newResource(subj, c, types)
}

// NewResource mints a new urn:uuid subject for an instance of the class.
func (s *Session) NewResource(c *Class) *Resource {
	return c.New(quad.IRI("urn:uuid:" + uuid.New().String()))
}

func (s *Session) newResource(subj quad.Value, c *Class, types []quad.IRI) *Resource {
	r := &Resource{
		subj:    subj,
		sess:    s,
		class:   c,
		store:   DefaultStore,
		direct:  make(map[quad.IRI][]quad.Value),
		inverse: make(map[quad.IRI][]quad.Value),
	}
	if c != nil {
		r.store, r.label = c.Store, c.Label
	}
	if len(types) != 0 {
		vals := make([]quad.Value, 0, len(types))
		for _, t := range types {
			vals = append(vals, t)
		}
		r.direct[graph.RDFType] = vals
	}
	return r
}

func (s *Session) addDirty(r *Resource) {
	for _, d := range s.dirty {
		if d == r {
			return
		}
	}
	s.dirty = append(s.dirty, r)
}

func (s *Session) removeDirty(r *Resource) {
	for i, d := range s.dirty {
		if d == r {
			s.dirty = append(s.dirty[:i], s.dirty[i+1:]...)
			return
		}
	}
}

// Dirty lists modified resources in the order they were first changed.
func (s *Session) Dirty() []*Resource {
	return append([]*Resource(nil), s.dirty...)
}

// Commit updates every dirty resource. It stops on the first error, leaving
// that resource and the following ones dirty.
func (s *Session) Commit(ctx context.Context) error {
	start := time.Now()
	defer func() { mCommitSeconds.Observe(time.Since(start).Seconds()) }()
	n := 0
	for _, r := range s.Dirty() {
		if err := r.Update(ctx); err != nil {
			mCommitErrors.Inc()
			return fmt.Errorf("commit %v: %w", r.subj, err)
		}
		n++
	}
	mCommits.Inc()
	mCommitResources.Add(float64(n))
	if clog.V(2) {
		clog.Infof("session: committed %d resources", n)
	}
	return nil
}

// Close closes all stores of the session and returns the first error.
func (s *Session) Close() error {
	var first error
	for k, b := range s.stores {
		if err := b.Close(); err != nil && first == nil {
			first = fmt.Errorf("close %q: %w", k, err)
		}
	}
	return first
}
