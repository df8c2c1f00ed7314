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

package voc

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/cayleygraph/quad"
)

// ErrNotPredicate is returned for attribute names that do not follow the
// prefix_localname (or is_prefix_localname_of) convention, or that use an
// unknown prefix.
var ErrNotPredicate = errors.New("not an RDF attribute")

var (
	attrDirect  = regexp.MustCompile(`^[a-z0-9]+_[a-zA-Z0-9_\-]+$`)
	attrInverse = regexp.MustCompile(`^is_[a-z0-9]+_[a-zA-Z0-9_\-]+_of$`)
)

// ParseAttr resolves an attribute name into a predicate IRI and a direction.
//
//	ParseAttr("foaf_knows")       // <http://xmlns.com/foaf/0.1/knows>, direct
//	ParseAttr("is_foaf_knows_of") // <http://xmlns.com/foaf/0.1/knows>, inverse
func (r *Registry) ParseAttr(name string) (pred quad.IRI, direct bool, err error) {
	var body string
	switch {
	case attrInverse.MatchString(name):
		body = strings.TrimSuffix(strings.TrimPrefix(name, "is_"), "_of")
	case attrDirect.MatchString(name):
		body, direct = name, true
	default:
		return "", false, fmt.Errorf("%w: %q", ErrNotPredicate, name)
	}
	i := strings.Index(body, "_")
	prefix, local := body[:i], body[i+1:]
	ns, ok := r.NamespaceURL(prefix)
	if !ok {
		return "", false, fmt.Errorf("%w: unknown prefix %q in %q", ErrNotPredicate, prefix, name)
	}
	return quad.IRI(ns + local), direct, nil
}

// AttrName is the inverse of ParseAttr. Namespaces that are not registered
// get a generated prefix.
func (r *Registry) AttrName(pred quad.IRI, direct bool) string {
	prefix, ns := r.Namespace(string(pred))
	name := strings.ToLower(prefix) + "_" + string(pred)[len(ns):]
	if !direct {
		name = "is_" + name + "_of"
	}
	return name
}

// ParseAttr is ParseAttr on the global registry.
func ParseAttr(name string) (quad.IRI, bool, error) { return global.ParseAttr(name) }

// AttrName is AttrName on the global registry.
func AttrName(pred quad.IRI, direct bool) string { return global.AttrName(pred, direct) }
