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

package query

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cayleygraph/quad"
)

var (
	reVar     = regexp.MustCompile(`^\?\w+$`)
	reVarName = regexp.MustCompile(`^\w+$`)
	reAbsIRI  = regexp.MustCompile("^[a-zA-Z][a-zA-Z0-9+.\\-]*:[^\\s<>\"{}|\\\\^`]+$")
	reLang    = regexp.MustCompile(`^[a-zA-Z]+(-[a-zA-Z0-9]+)*$`)
	reBNode   = regexp.MustCompile(`^[\p{L}\p{N}_]([\p{L}\p{N}_.\-]*[\p{L}\p{N}_\-])?$`)
)

// iriForbidden lists characters that cannot appear in an IRIREF, besides
// control characters and space.
const iriForbidden = "<>\"{}|^`\\"

// invalidTerm holds a Go value that has no RDF term representation.
// It is rejected by validation.
type invalidTerm struct {
	v interface{}
}

func (t invalidTerm) String() string      { return fmt.Sprintf("%v (%T)", t.v, t.v) }
func (t invalidTerm) Native() interface{} { return t.v }

// IsAbsoluteIRI reports whether s has the shape of an absolute URI.
func IsAbsoluteIRI(s string) bool { return reAbsIRI.MatchString(s) }

// ValidIRI reports whether s can be written between angle brackets.
func ValidIRI(s string) bool {
	for _, r := range s {
		if r <= 0x20 || strings.ContainsRune(iriForbidden, r) {
			return false
		}
	}
	return true
}

// CheckTerm rejects terms whose text would not stay a single token when
// written into a query.
func CheckTerm(v quad.Value) error {
	switch v := v.(type) {
	case quad.IRI:
		if !ValidIRI(string(v)) {
			return invalid("IRI %q contains characters not allowed in an IRI reference", string(v))
		}
	case quad.BNode:
		if !reBNode.MatchString(string(v)) {
			return invalid("bad blank node label %q", string(v))
		}
	case Var:
		if !reVarName.MatchString(string(v)) {
			return invalid("bad variable name %q", string(v))
		}
	case quad.LangString:
		if !reLang.MatchString(v.Lang) {
			return invalid("bad language tag %q", v.Lang)
		}
	case quad.TypedString:
		if !ValidIRI(string(v.Type)) {
			return invalid("datatype %q contains characters not allowed in an IRI reference", string(v.Type))
		}
	}
	return nil
}

// AsTerm converts a Go value into an RDF term or a variable.
//
// Strings are classified: "?name" is a Var, an absolute URI is a quad.IRI and
// anything else is a plain literal. Values that already are quad.Value are
// returned as is, other natives go through quad.AsValue. Nil stays nil.
func AsTerm(v interface{}) quad.Value {
	switch v := v.(type) {
	case nil:
		return nil
	case quad.Value:
		return v
	case string:
		if reVar.MatchString(v) {
			return Var(v[1:])
		}
		if IsAbsoluteIRI(v) {
			return quad.IRI(v)
		}
		return quad.String(v)
	}
	if qv, ok := quad.AsValue(v); ok {
		return qv
	}
	return invalidTerm{v: v}
}

// T builds a triple pattern from Go values using AsTerm.
func T(s, p, o interface{}) Triple {
	return Triple{S: AsTerm(s), P: AsTerm(p), O: AsTerm(o)}
}

// IsLiteral reports whether v is an RDF literal.
func IsLiteral(v quad.Value) bool {
	switch v.(type) {
	case quad.String, quad.LangString, quad.TypedString,
		quad.Int, quad.Float, quad.Bool, quad.Time:
		return true
	}
	return false
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalid}, args...)...)
}

func describe(v quad.Value) string {
	if v == nil {
		return "<nil>"
	} else if t, ok := v.(invalidTerm); ok {
		return t.String()
	}
	return fmt.Sprintf("%v (%T)", v, v)
}

// Validate checks that every position of the triple holds an allowed term.
func (t Triple) Validate() error {
	switch s := t.S.(type) {
	case quad.IRI, quad.BNode:
	case Var:
		if s == "" {
			return invalid("empty variable in subject")
		}
	default:
		return invalid("subject must be an IRI, blank node or variable, got %s", describe(t.S))
	}
	switch p := t.P.(type) {
	case quad.IRI:
	case Var:
		if p == "" {
			return invalid("empty variable in predicate")
		}
	default:
		return invalid("predicate must be an IRI or variable, got %s", describe(t.P))
	}
	switch o := t.O.(type) {
	case quad.IRI, quad.BNode:
	case Var:
		if o == "" {
			return invalid("empty variable in object")
		}
	default:
		if !IsLiteral(t.O) {
			return invalid("object must be an IRI, blank node, literal or variable, got %s", describe(t.O))
		}
	}
	for _, v := range [...]quad.Value{t.S, t.P, t.O} {
		if err := CheckTerm(v); err != nil {
			return err
		}
	}
	return nil
}

// IsGround reports whether the triple has no variables.
func (t Triple) IsGround() bool {
	_, s := t.S.(Var)
	_, p := t.P.(Var)
	_, o := t.O.(Var)
	return !s && !p && !o
}

func validateItems(items []Item) error {
	for _, it := range items {
		if err := validateItem(it); err != nil {
			return err
		}
	}
	return nil
}

func validateItem(it Item) error {
	switch it := it.(type) {
	case nil:
		return invalid("nil pattern item")
	case Triple:
		return it.Validate()
	case Group:
		return validateItems(it)
	case OptionalGroup:
		return validateItems(it)
	case Union:
		if len(it) == 0 {
			return invalid("empty union")
		}
		return validateItems(it)
	case NamedGroup:
		switch n := it.Name.(type) {
		case quad.IRI:
		case Var:
			if n == "" {
				return invalid("empty variable as graph name")
			}
		default:
			return invalid("graph name must be a variable or IRI, got %s", describe(it.Name))
		}
		if err := CheckTerm(it.Name); err != nil {
			return err
		}
		return validateItems(it.Items)
	case Filter:
		if strings.TrimSpace(string(it)) == "" {
			return invalid("empty filter")
		}
		return nil
	case *Query:
		if it == nil {
			return invalid("nil subquery")
		}
		if err := it.Err(); err != nil {
			return fmt.Errorf("subquery: %w", err)
		}
		if it.Kind != KindSelect {
			return invalid("subquery must be SELECT, got %v", it.Kind)
		}
		return nil
	}
	return invalid("unsupported pattern item %T", it)
}
