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

package graph

import (
	"strings"
	"time"

	"github.com/cayleygraph/quad"

	"github.com/cayleygraph/surf/query/sparql"
)

func rank(v quad.Value) int {
	switch v.(type) {
	case nil:
		return 0
	case quad.BNode:
		return 1
	case quad.IRI:
		return 2
	}
	return 3
}

func numeric(v quad.Value) (float64, bool) {
	switch v := v.(type) {
	case quad.Int:
		return float64(v), true
	case quad.Float:
		return float64(v), true
	}
	return 0, false
}

// CompareValues orders unbound < blank nodes < IRIs < literals.
// Numbers, times and booleans are compared by value, other terms lexically.
func CompareValues(a, b quad.Value) int {
	if ra, rb := rank(a), rank(b); ra != rb {
		return ra - rb
	} else if ra == 0 {
		return 0
	}
	if x, ok := numeric(a); ok {
		if y, ok := numeric(b); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	}
	if x, ok := a.(quad.Time); ok {
		if y, ok := b.(quad.Time); ok {
			return time.Time(x).Compare(time.Time(y))
		}
	}
	if x, ok := a.(quad.Bool); ok {
		if y, ok := b.(quad.Bool); ok && x != y {
			if !x {
				return -1
			}
			return 1
		}
	}
	return strings.Compare(lexical(a), lexical(b))
}

func lexical(v quad.Value) string {
	switch v := v.(type) {
	case quad.IRI:
		return string(v)
	case quad.BNode:
		return string(v)
	}
	if s, _, ok := sparql.Lexical(v); ok {
		return s
	}
	return v.String()
}
