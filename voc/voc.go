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

// Package voc implements an RDF namespace (vocabulary) registry and the
// naming convention that maps Go-side attribute names to predicate IRIs.
//
// Prefixes are stored without the trailing colon and are matched
// case-insensitively:
//
//	voc.Register("foaf", "http://xmlns.com/foaf/0.1/")
//	voc.NamespaceURL("FOAF") // "http://xmlns.com/foaf/0.1/", true
package voc

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	qvoc "github.com/cayleygraph/quad/voc"
)

// AutoPrefix is the prefix used for namespaces that were never registered.
// Generated prefixes are AutoPrefix followed by a sequence number.
const AutoPrefix = "NS"

// Namespace is a registered prefix-IRI pair.
type Namespace struct {
	Prefix string
	Full   string
}

// Registry is a set of namespaces. The zero value is ready to use.
type Registry struct {
	mu       sync.RWMutex
	byPrefix map[string]Namespace // lower-case prefix -> namespace
	byFull   map[string]string    // namespace IRI -> prefix
	auto     int
	mirror   bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

var global = &Registry{mirror: true}

// Global returns the process-wide registry.
func Global() *Registry { return global }

func (r *Registry) init() {
	if r.byPrefix == nil {
		r.byPrefix = make(map[string]Namespace)
		r.byFull = make(map[string]string)
	}
}

// Register associates a prefix with a namespace IRI. Registering an existing
// prefix again replaces its namespace.
func (r *Registry) Register(prefix, full string) {
	prefix = strings.TrimSuffix(prefix, ":")
	r.mu.Lock()
	r.init()
	key := strings.ToLower(prefix)
	if old, ok := r.byPrefix[key]; ok && r.byFull[old.Full] == old.Prefix {
		delete(r.byFull, old.Full)
	}
	r.byPrefix[key] = Namespace{Prefix: prefix, Full: full}
	r.byFull[full] = prefix
	mirror := r.mirror
	r.mu.Unlock()
	if mirror {
		qvoc.Register(qvoc.Namespace{Full: full, Prefix: strings.ToLower(prefix) + ":"})
	}
}

// NamespaceURL returns a namespace IRI for a given prefix.
func (r *Registry) NamespaceURL(prefix string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ns, ok := r.byPrefix[strings.ToLower(strings.TrimSuffix(prefix, ":"))]
	return ns.Full, ok
}

// Prefix returns a prefix registered for a given namespace IRI.
func (r *Registry) Prefix(full string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byFull[full]
	return p, ok
}

// Namespace returns the prefix and namespace that the IRI belongs to.
//
// The longest registered namespace wins. If none matches, the IRI is split
// with Split and its namespace is registered under a generated prefix
// (NS1, NS2, ...). Generation is deterministic for a given call order.
func (r *Registry) Namespace(iri string) (prefix, full string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.init()
	for ns, p := range r.byFull {
		if strings.HasPrefix(iri, ns) && len(ns) > len(full) {
			prefix, full = p, ns
		}
	}
	if full != "" {
		return prefix, full
	}
	full, _ = Split(iri)
	if p, ok := r.byFull[full]; ok {
		return p, full
	}
	r.auto++
	prefix = fmt.Sprintf("%s%d", AutoPrefix, r.auto)
	for {
		if _, taken := r.byPrefix[strings.ToLower(prefix)]; !taken {
			break
		}
		r.auto++
		prefix = fmt.Sprintf("%s%d", AutoPrefix, r.auto)
	}
	r.byPrefix[strings.ToLower(prefix)] = Namespace{Prefix: prefix, Full: full}
	r.byFull[full] = prefix
	return prefix, full
}

// ShortIRI replaces a base IRI of a known vocabulary with it's prefix.
// Unknown IRIs are returned unchanged.
//
//	ShortIRI("http://www.w3.org/1999/02/22-rdf-syntax-ns#type") // returns "rdf:type"
func (r *Registry) ShortIRI(iri string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	best := ""
	for ns := range r.byFull {
		if strings.HasPrefix(iri, ns) && len(ns) > len(best) {
			best = ns
		}
	}
	if best == "" {
		return iri
	}
	return strings.ToLower(r.byFull[best]) + ":" + iri[len(best):]
}

// FullIRI replaces known prefix in IRI with it's full vocabulary IRI.
//
//	FullIRI("rdf:type") // returns "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
func (r *Registry) FullIRI(iri string) string {
	i := strings.Index(iri, ":")
	if i <= 0 {
		return iri
	}
	if ns, ok := r.NamespaceURL(iri[:i]); ok {
		return ns + iri[i+1:]
	}
	return iri
}

// List enumerates all registered namespaces, sorted by prefix.
func (r *Registry) List() []Namespace {
	r.mu.RLock()
	out := make([]Namespace, 0, len(r.byPrefix))
	for _, ns := range r.byPrefix {
		out = append(out, ns)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Prefix < out[j].Prefix })
	return out
}

// Split splits an IRI into a namespace and a local name. The namespace ends
// with the last '#', or the last '/' when there is no '#'.
func Split(iri string) (ns, local string) {
	i := strings.LastIndex(iri, "#")
	if i < 0 {
		i = strings.LastIndex(iri, "/")
	}
	if i < 0 {
		i = strings.LastIndex(iri, ":")
	}
	return iri[:i+1], iri[i+1:]
}

// Register associates a prefix with a namespace IRI in the global registry.
func Register(prefix, full string) { global.Register(prefix, full) }

// NamespaceURL returns a namespace IRI registered globally for a prefix.
func NamespaceURL(prefix string) (string, bool) { return global.NamespaceURL(prefix) }

// Prefix returns a prefix registered globally for a namespace IRI.
func Prefix(full string) (string, bool) { return global.Prefix(full) }

// GetNamespace is Namespace on the global registry.
func GetNamespace(iri string) (prefix, full string) { return global.Namespace(iri) }

// ShortIRI is ShortIRI on the global registry.
func ShortIRI(iri string) string { return global.ShortIRI(iri) }

// FullIRI is FullIRI on the global registry.
func FullIRI(iri string) string { return global.FullIRI(iri) }

// List enumerates namespaces of the global registry.
func List() []Namespace { return global.List() }
