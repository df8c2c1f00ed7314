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
	"reflect"
	"strings"

	"github.com/cayleygraph/quad"

	"github.com/cayleygraph/surf/graph"
)

// convert turns a Go value into terms. The second list holds the original
// *Resource for resource values and nil for everything else.
func convert(x interface{}) ([]quad.Value, []interface{}, error) {
	switch x := x.(type) {
	case nil:
		return nil, nil, nil
	case *Resource:
		return []quad.Value{x.subj}, []interface{}{x}, nil
	case *Values:
		terms, err := x.Terms(context.Background())
		if err != nil {
			return nil, nil, err
		}
		return terms, make([]interface{}, len(terms)), nil
	case quad.Value:
		return []quad.Value{x}, []interface{}{nil}, nil
	}
	rv := reflect.ValueOf(x)
	if k := rv.Kind(); (k == reflect.Slice || k == reflect.Array) && rv.Type().Elem().Kind() != reflect.Uint8 {
		var (
			terms []quad.Value
			objs  []interface{}
		)
		for i := 0; i < rv.Len(); i++ {
			t, o, err := convert(rv.Index(i).Interface())
			if err != nil {
				return nil, nil, err
			}
			terms, objs = append(terms, t...), append(objs, o...)
		}
		return terms, objs, nil
	}
	if v, ok := quad.AsValue(x); ok {
		return []quad.Value{v}, []interface{}{nil}, nil
	}
	return nil, nil, fmt.Errorf("cannot convert %T to an RDF term", x)
}

func convertOne(x interface{}) (quad.Value, interface{}, error) {
	terms, objs, err := convert(x)
	if err != nil {
		return nil, nil, err
	} else if len(terms) != 1 {
		return nil, nil, fmt.Errorf("expected a single value, got %d", len(terms))
	}
	return terms[0], objs[0], nil
}

// Values is a lazily resolved list of values of a single resource attribute.
//
// IRIs and blank nodes are returned as *Resource, literals as Go natives.
// Terms returns the raw RDF terms of the same list. Values is resolved once,
// on the first read or change.
type Values struct {
	owner  *Resource
	pred   quad.IRI
	direct bool

	resolved bool
	err      error
	vals     []interface{}
	terms    []quad.Value
}

// Predicate returns the predicate of the attribute and its direction.
func (v *Values) Predicate() (quad.IRI, bool) { return v.pred, v.direct }

// Owner returns the resource the attribute belongs to.
func (v *Values) Owner() *Resource { return v.owner }

// Err returns the error of the resolution, if any.
func (v *Values) Err() error { return v.err }

func (v *Values) reset() {
	v.resolved, v.err = false, nil
	v.vals, v.terms = nil, nil
}

func (v *Values) resolve(ctx context.Context) error {
	if v.resolved {
		return v.err
	}
	terms, types, err := v.owner.fetch(ctx, v.pred, v.direct)
	v.resolved = true
	if err != nil {
		v.err = fmt.Errorf("resolve %s: %w", v.owner.sess.names().AttrName(v.pred, v.direct), err)
		return v.err
	}
	v.terms = terms
	v.vals = make([]interface{}, len(terms))
	for i, t := range terms {
		var tp []quad.IRI
		if i < len(types) {
			tp = types[i]
		}
		v.vals[i] = v.owner.wrap(t, tp)
	}
	return nil
}

// Len returns the number of values.
func (v *Values) Len(ctx context.Context) (int, error) {
	if err := v.resolve(ctx); err != nil {
		return 0, err
	}
	return len(v.vals), nil
}

// At returns the i-th value.
func (v *Values) At(ctx context.Context, i int) (interface{}, error) {
	if err := v.resolve(ctx); err != nil {
		return nil, err
	} else if i < 0 || i >= len(v.vals) {
		return nil, fmt.Errorf("index %d out of range [0, %d)", i, len(v.vals))
	}
	return v.vals[i], nil
}

// All returns all values.
func (v *Values) All(ctx context.Context) ([]interface{}, error) {
	if err := v.resolve(ctx); err != nil {
		return nil, err
	}
	return append([]interface{}(nil), v.vals...), nil
}

// Terms returns the RDF terms of all values.
func (v *Values) Terms(ctx context.Context) ([]quad.Value, error) {
	if err := v.resolve(ctx); err != nil {
		return nil, err
	}
	return append([]quad.Value(nil), v.terms...), nil
}

// Resources returns the values that are resources.
func (v *Values) Resources(ctx context.Context) ([]*Resource, error) {
	if err := v.resolve(ctx); err != nil {
		return nil, err
	}
	var out []*Resource
	for _, x := range v.vals {
		if r, ok := x.(*Resource); ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (v *Values) indexOf(t quad.Value) int {
	key := quad.StringOf(t)
	for i, cur := range v.terms {
		if quad.StringOf(cur) == key {
			return i
		}
	}
	return -1
}

// Contains checks if the attribute has a value.
func (v *Values) Contains(ctx context.Context, x interface{}) (bool, error) {
	t, _, err := convertOne(x)
	if err != nil {
		return false, err
	}
	if err := v.resolve(ctx); err != nil {
		return false, err
	}
	return v.indexOf(t) >= 0, nil
}

// First returns the first value, or nil if there are none.
func (v *Values) First(ctx context.Context) (interface{}, error) {
	if err := v.resolve(ctx); err != nil {
		return nil, err
	} else if len(v.vals) == 0 {
		return nil, nil
	}
	return v.vals[0], nil
}

// One returns the only value. It fails with ErrNoResult or ErrMultipleResults
// if there is not exactly one.
func (v *Values) One(ctx context.Context) (interface{}, error) {
	if err := v.resolve(ctx); err != nil {
		return nil, err
	}
	switch len(v.vals) {
	case 0:
		return nil, ErrNoResult
	case 1:
		return v.vals[0], nil
	}
	return nil, ErrMultipleResults
}

// String resolves the values with a background context and prints their terms.
func (v *Values) String() string {
	if err := v.resolve(context.Background()); err != nil {
		return "<" + err.Error() + ">"
	}
	parts := make([]string, 0, len(v.terms))
	for _, t := range v.terms {
		parts = append(parts, quad.StringOf(t))
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// commit writes terms back to the owner and marks it dirty.
func (v *Values) commit() error {
	v.owner.attrs(v.direct)[v.pred] = append([]quad.Value{}, v.terms...)
	return v.owner.markDirty()
}

func (v *Values) native(t quad.Value, obj interface{}) interface{} {
	if obj != nil {
		return obj
	}
	return v.owner.wrap(t, nil)
}

// Append adds values to the end of the list.
func (v *Values) Append(ctx context.Context, xs ...interface{}) error {
	if err := v.resolve(ctx); err != nil {
		return err
	}
	for _, x := range xs {
		terms, objs, err := convert(x)
		if err != nil {
			return err
		}
		for i, t := range terms {
			v.terms = append(v.terms, t)
			v.vals = append(v.vals, v.native(t, objs[i]))
		}
	}
	return v.commit()
}

// Insert puts a value at position i.
func (v *Values) Insert(ctx context.Context, i int, x interface{}) error {
	t, obj, err := convertOne(x)
	if err != nil {
		return err
	}
	if err := v.resolve(ctx); err != nil {
		return err
	} else if i < 0 || i > len(v.vals) {
		return fmt.Errorf("index %d out of range [0, %d]", i, len(v.vals))
	}
	v.terms = append(v.terms[:i], append([]quad.Value{t}, v.terms[i:]...)...)
	v.vals = append(v.vals[:i], append([]interface{}{v.native(t, obj)}, v.vals[i:]...)...)
	return v.commit()
}

// Remove deletes the first occurrence of a value.
func (v *Values) Remove(ctx context.Context, x interface{}) error {
	t, _, err := convertOne(x)
	if err != nil {
		return err
	}
	if err := v.resolve(ctx); err != nil {
		return err
	}
	i := v.indexOf(t)
	if i < 0 {
		return fmt.Errorf("%w: %v", ErrNoResult, t)
	}
	return v.Delete(ctx, i)
}

// Pop removes and returns the last value.
func (v *Values) Pop(ctx context.Context) (interface{}, error) {
	if err := v.resolve(ctx); err != nil {
		return nil, err
	} else if len(v.vals) == 0 {
		return nil, ErrNoResult
	}
	last := v.vals[len(v.vals)-1]
	return last, v.Delete(ctx, len(v.vals)-1)
}

// Set replaces the value at position i.
func (v *Values) Set(ctx context.Context, i int, x interface{}) error {
	t, obj, err := convertOne(x)
	if err != nil {
		return err
	}
	if err := v.resolve(ctx); err != nil {
		return err
	} else if i < 0 || i >= len(v.vals) {
		return fmt.Errorf("index %d out of range [0, %d)", i, len(v.vals))
	}
	v.terms[i], v.vals[i] = t, v.native(t, obj)
	return v.commit()
}

// Delete removes the value at position i.
func (v *Values) Delete(ctx context.Context, i int) error {
	if err := v.resolve(ctx); err != nil {
		return err
	} else if i < 0 || i >= len(v.vals) {
		return fmt.Errorf("index %d out of range [0, %d)", i, len(v.vals))
	}
	v.terms = append(v.terms[:i], v.terms[i+1:]...)
	v.vals = append(v.vals[:i], v.vals[i+1:]...)
	return v.commit()
}

// Query returns a cursor over the values of the attribute. Values are
// selected by the owner through the reversed attribute, so cursor filters
// and modifiers apply to them.
func (v *Values) Query() *Cursor {
	o := v.owner
	return o.sess.cursor(o.store, graph.Params{
		Filters: []graph.Filter{{Pred: v.pred, Values: []quad.Value{o.subj}, Direct: !v.direct}},
		Label:   o.label,
	})
}

// Limit is Query().Limit(n).
func (v *Values) Limit(n int) *Cursor { return v.Query().Limit(n) }

// Offset is Query().Offset(n).
func (v *Values) Offset(n int) *Cursor { return v.Query().Offset(n) }

// Order is Query().Order(attr).
func (v *Values) Order(attr string) *Cursor { return v.Query().Order(attr) }

// Desc is Query().Desc().
func (v *Values) Desc() *Cursor { return v.Query().Desc() }

// Filter is Query().Filter(conds).
func (v *Values) Filter(conds map[string]string) *Cursor { return v.Query().Filter(conds) }

// GetBy is Query().GetBy(attrs).
func (v *Values) GetBy(attrs map[string]interface{}) *Cursor { return v.Query().GetBy(attrs) }

// Label is Query().Label(label).
func (v *Values) Label(label quad.IRI) *Cursor { return v.Query().Label(label) }

// Full is Query().Full(onlyDirect).
func (v *Values) Full(onlyDirect bool) *Cursor { return v.Query().Full(onlyDirect) }
