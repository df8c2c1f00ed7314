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

// Package query defines a backend-agnostic model of SPARQL queries and
// updates.
//
// Queries are built by chaining builder calls:
//
//	q := query.Select("?s", "?name").
//		Where(query.T("?s", foaf.Name, "?name")).
//		OrderBy("?name").Limit(10)
//
// Every builder call validates its input. The first invalid call is recorded
// on the query and reported by Err; such a query is refused by translators
// and evaluators.
package query

import (
	"errors"

	"github.com/cayleygraph/quad"
)

var (
	// ErrInvalid is wrapped by all validation errors.
	ErrInvalid = errors.New("invalid query")
	// ErrClause is wrapped by errors about clauses used with a wrong query kind.
	ErrClause = errors.New("clause is not allowed")
)

// Kind is the query operation.
type Kind int

const (
	KindSelect Kind = iota
	KindAsk
	KindDescribe
	KindConstruct
	KindInsert
	KindInsertData
	KindDelete
	KindDeleteData
	KindLoad
	KindClear
)

func (k Kind) String() string {
	switch k {
	case KindSelect:
		return "SELECT"
	case KindAsk:
		return "ASK"
	case KindDescribe:
		return "DESCRIBE"
	case KindConstruct:
		return "CONSTRUCT"
	case KindInsert:
		return "INSERT"
	case KindInsertData:
		return "INSERT DATA"
	case KindDelete:
		return "DELETE"
	case KindDeleteData:
		return "DELETE DATA"
	case KindLoad:
		return "LOAD"
	case KindClear:
		return "CLEAR"
	}
	return "UNKNOWN"
}

// IsUpdate reports whether the kind modifies the graph.
func (k Kind) IsUpdate() bool { return k >= KindInsert }

// IsRead reports whether the kind is one of SELECT, ASK, DESCRIBE or CONSTRUCT.
func (k Kind) IsRead() bool { return k <= KindConstruct }

// Modifier is a solution modifier applied to the projection.
type Modifier int

const (
	ModifierNone Modifier = iota
	ModifierDistinct
	ModifierReduced
)

func (m Modifier) String() string {
	switch m {
	case ModifierDistinct:
		return "DISTINCT"
	case ModifierReduced:
		return "REDUCED"
	}
	return ""
}

// Var is a query variable. The name does not include the leading '?'.
type Var string

var _ quad.Value = Var("")

func (v Var) String() string      { return "?" + string(v) }
func (v Var) Native() interface{} { return v }

// Item is one element of a graph pattern.
type Item interface {
	isItem()
}

// Triple is a triple pattern. Any position may hold a Var.
type Triple struct {
	S, P, O quad.Value
}

// Group is a group graph pattern: { ... }.
type Group []Item

// OptionalGroup is an optional group: OPTIONAL { ... }.
type OptionalGroup []Item

// Union is a union of alternatives: { a } UNION { b } ...
type Union []Item

// NamedGroup is a pattern matched against a named graph: GRAPH name { ... }.
// Name is either a Var or a quad.IRI.
type NamedGroup struct {
	Name  quad.Value
	Items []Item
}

// Filter is a raw filter expression in SPARQL syntax, without the FILTER keyword.
type Filter string

func (Triple) isItem()        {}
func (Group) isItem()         {}
func (OptionalGroup) isItem() {}
func (Union) isItem()         {}
func (NamedGroup) isItem()    {}
func (Filter) isItem()        {}
func (*Query) isItem()        {}

// Dataset holds FROM and FROM NAMED graphs.
type Dataset struct {
	Default []quad.IRI
	Named   []quad.IRI
}

// Slice holds LIMIT and OFFSET. Zero means not set.
type Slice struct {
	Limit  int
	Offset int
}

// Update holds clauses specific to update operations.
type Update struct {
	Into     []quad.IRI // INSERT and LOAD target graphs
	From     []quad.IRI // DELETE graphs
	Template []Triple   // INSERT, DELETE and CONSTRUCT template
	Source   quad.IRI   // LOAD source document
	Graph    quad.IRI   // CLEAR graph
}

// Query is a model of a SPARQL query or update.
type Query struct {
	Kind     Kind
	Vars     []string
	Modifier Modifier
	Dataset  Dataset
	Pattern  []Item
	Order    []string
	Slice    Slice
	Update   Update

	err error
}

func newQuery(kind Kind, vars []string) *Query {
	q := &Query{Kind: kind}
	if len(vars) != 0 {
		q.project(vars)
	}
	return q
}

// Select creates a SELECT query projecting the given variables.
// An empty list selects all variables.
func Select(vars ...string) *Query { return newQuery(KindSelect, vars) }

// Ask creates an ASK query.
func Ask() *Query { return newQuery(KindAsk, nil) }

// Construct creates a CONSTRUCT query.
func Construct(vars ...string) *Query { return newQuery(KindConstruct, vars) }

// Describe creates a DESCRIBE query for the given variables or <IRI> tokens.
func Describe(vars ...string) *Query { return newQuery(KindDescribe, vars) }

// Insert creates an INSERT ... WHERE update.
func Insert() *Query { return newQuery(KindInsert, nil) }

// InsertData creates an INSERT DATA update.
func InsertData() *Query { return newQuery(KindInsertData, nil) }

// Delete creates a DELETE ... WHERE update.
func Delete() *Query { return newQuery(KindDelete, nil) }

// DeleteData creates a DELETE DATA update.
func DeleteData() *Query { return newQuery(KindDeleteData, nil) }

// Load creates a LOAD update.
func Load() *Query { return newQuery(KindLoad, nil) }

// Clear creates a CLEAR update.
func Clear() *Query { return newQuery(KindClear, nil) }

// Err returns the first validation error recorded by a builder call.
func (q *Query) Err() error {
	if q == nil {
		return ErrInvalid
	}
	return q.err
}

// Triples returns all triple patterns at the top level of the where clause.
func (q *Query) Triples() []Triple {
	var out []Triple
	for _, it := range q.Pattern {
		if t, ok := it.(Triple); ok {
			out = append(out, t)
		}
	}
	return out
}
