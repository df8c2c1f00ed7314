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

// Package graph defines the contracts between mapped resources and triple
// store backends.
//
// A Backend answers attribute lookups (Reader) and persists resources
// (Writer). Backends are registered by name and opened with NewBackend.
// Stores that only provide primitive quad access implement QuadStore and are
// turned into a Backend by package graph/local.
package graph

import (
	"context"
	"io"

	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/voc/rdf"

	"github.com/cayleygraph/surf/query"
)

// RDFType is the rdf:type predicate.
const RDFType = quad.IRI(rdf.Type)

// Node is an attribute value together with its rdf:types.
// Types is empty for literals and untyped resources.
type Node struct {
	Value quad.Value
	Types []quad.IRI
}

// Entry is a single subject returned by GetBy.
// Direct and Inverse are only set when the subject was fully loaded.
type Entry struct {
	Subject quad.Value
	Types   []quad.IRI
	Direct  map[quad.IRI][]Node
	Inverse map[quad.IRI][]Node
}

// Filter restricts subjects to those having a predicate with one of the
// values. An empty value list only requires the predicate to be present.
type Filter struct {
	Pred   quad.IRI
	Values []quad.Value
	Direct bool
}

// Cond restricts subjects with a raw filter expression over a predicate value.
// Expr must contain a single %s, which is replaced by the value variable.
type Cond struct {
	Pred   quad.IRI
	Direct bool
	Expr   string
}

// Order sorts subjects by a value of a predicate, or by the subject itself
// when Pred is empty.
type Order struct {
	Pred quad.IRI
	Desc bool
}

// Params is the parameter record of a GetBy lookup.
type Params struct {
	Type       quad.IRI
	Filters    []Filter
	Conds      []Cond
	Limit      int
	Offset     int
	Full       bool
	OnlyDirect bool
	Order      *Order
	Label      quad.IRI
}

// Clone returns a deep copy of the parameters.
func (p Params) Clone() Params {
	c := p
	if p.Filters != nil {
		c.Filters = make([]Filter, len(p.Filters))
		for i, f := range p.Filters {
			f.Values = append([]quad.Value(nil), f.Values...)
			c.Filters[i] = f
		}
	}
	if p.Conds != nil {
		c.Conds = append([]Cond(nil), p.Conds...)
	}
	if p.Order != nil {
		o := *p.Order
		c.Order = &o
	}
	return c
}

// Row is one solution of a SELECT query, keyed by variable name without '?'.
type Row map[string]quad.Value

// Result is the result of a query. Which fields are set depends on the
// query kind: Vars and Rows for SELECT, Bool for ASK, Quads for CONSTRUCT
// and DESCRIBE. Updates return an empty result.
type Result struct {
	Vars  []string
	Rows  []Row
	Bool  bool
	Quads []quad.Quad
}

// Column returns all values bound to a variable, skipping unbound rows.
func (r *Result) Column(name string) []quad.Value {
	var out []quad.Value
	for _, row := range r.Rows {
		if v, ok := row[name]; ok && v != nil {
			out = append(out, v)
		}
	}
	return out
}

// Object is a resource that can be persisted by a Writer.
type Object interface {
	// Subject is the IRI or blank node of the resource.
	Subject() quad.Value
	// Label is the named graph of the resource. Empty means the default graph.
	Label() quad.IRI
	// Direct returns the outgoing edges of the resource.
	Direct() map[quad.IRI][]quad.Value
}

// Reader retrieves resource attributes from a backend.
//
// An empty label means the default graph, which for local stores is the
// union of all graphs.
type Reader interface {
	// Get returns values of a single predicate. With direct set to false
	// the subjects pointing to s are returned instead.
	Get(ctx context.Context, s quad.Value, p quad.IRI, direct bool, label quad.IRI) ([]Node, error)
	// Load returns values of all direct or inverse predicates of s.
	Load(ctx context.Context, s quad.Value, direct bool, label quad.IRI) (map[quad.IRI][]Node, error)
	// IsPresent checks if there is at least one triple with s as a subject.
	IsPresent(ctx context.Context, s quad.Value, label quad.IRI) (bool, error)
	// All lists instances of a type. Zero limit means no limit.
	All(ctx context.Context, typ quad.IRI, limit, offset int, label quad.IRI) ([]quad.Value, error)
	// InstancesByAttribute lists instances of a type that have any of the predicates.
	InstancesByAttribute(ctx context.Context, typ quad.IRI, preds []quad.IRI, direct bool, label quad.IRI) ([]Node, error)
	// GetBy runs a parametrized subject lookup.
	GetBy(ctx context.Context, p Params) ([]Entry, error)
	// Execute runs a query model.
	Execute(ctx context.Context, q *query.Query) (*Result, error)
	// ExecuteSPARQL runs a raw SPARQL query. Backends that cannot parse
	// SPARQL return ErrOperationNotSupported.
	ExecuteSPARQL(ctx context.Context, text string) (*Result, error)
}

// Writer persists resources and triples.
type Writer interface {
	// Save replaces all direct triples of each object.
	Save(ctx context.Context, objs ...Object) error
	// Update replaces only the predicates present in each object.
	Update(ctx context.Context, objs ...Object) error
	// Remove deletes all triples of each object, and the triples pointing to
	// it if inverse is set.
	Remove(ctx context.Context, inverse bool, objs ...Object) error
	// Size returns the number of stored triples.
	Size(ctx context.Context) (int64, error)
	// AddTriple adds a single triple.
	AddTriple(ctx context.Context, s quad.Value, p quad.IRI, o quad.Value, label quad.IRI) error
	// SetTriple replaces all values of (s, p) with o.
	SetTriple(ctx context.Context, s quad.Value, p quad.IRI, o quad.Value, label quad.IRI) error
	// RemoveTriple removes matching triples. Nil or empty positions match anything.
	RemoveTriple(ctx context.Context, s quad.Value, p quad.IRI, o quad.Value, label quad.IRI) error
	// Clear removes all triples of a graph, or all triples if label is empty.
	Clear(ctx context.Context, label quad.IRI) error
	// LoadTriples reads quads in a given format and adds them to the store.
	// It returns the number of quads read.
	LoadTriples(ctx context.Context, r io.Reader, format string, label quad.IRI) (int, error)
}

// Backend is a complete triple store connection.
type Backend interface {
	Reader
	Writer
	Close() error
}
