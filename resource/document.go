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
	"sort"

	"github.com/cayleygraph/quad"

	"github.com/cayleygraph/surf/query/sparql"
)

// Term is an RDF term in the layout of SPARQL JSON results.
type Term struct {
	Type     string `json:"type" yaml:"type"`
	Value    string `json:"value" yaml:"value"`
	Lang     string `json:"xml:lang,omitempty" yaml:"lang,omitempty"`
	Datatype string `json:"datatype,omitempty" yaml:"datatype,omitempty"`
}

// NewTerm converts a value. Values without a lexical form are printed as strings.
func NewTerm(v quad.Value) Term {
	switch v := v.(type) {
	case quad.IRI:
		return Term{Type: "uri", Value: string(v)}
	case quad.BNode:
		return Term{Type: "bnode", Value: string(v)}
	case quad.LangString:
		return Term{Type: "literal", Value: string(v.Value), Lang: v.Lang}
	}
	lex, dt, ok := sparql.Lexical(v)
	if !ok {
		return Term{Type: "literal", Value: quad.StringOf(v)}
	}
	return Term{Type: "literal", Value: lex, Datatype: string(dt)}
}

// Document is a printable snapshot of the attributes of a resource.
type Document struct {
	Subject Term              `json:"subject" yaml:"subject"`
	Label   string            `json:"label,omitempty" yaml:"label,omitempty"`
	Types   []string          `json:"types,omitempty" yaml:"types,omitempty"`
	Direct  map[string][]Term `json:"direct" yaml:"direct"`
	Inverse map[string][]Term `json:"inverse,omitempty" yaml:"inverse,omitempty"`
}

// Document returns the attributes known in memory keyed by attribute name.
// Call Load first to include everything stored in the backend.
func (r *Resource) Document() Document {
	names := r.sess.names()
	doc := Document{
		Subject: NewTerm(r.subj),
		Label:   string(r.label),
		Direct:  make(map[string][]Term, len(r.direct)),
	}
	for _, t := range r.Types() {
		doc.Types = append(doc.Types, string(t))
	}
	sort.Strings(doc.Types)
	terms := func(vals []quad.Value) []Term {
		out := make([]Term, 0, len(vals))
		for _, v := range vals {
			out = append(out, NewTerm(v))
		}
		return out
	}
	for p, vals := range r.direct {
		doc.Direct[names.AttrName(p, true)] = terms(vals)
	}
	if len(r.inverse) != 0 {
		doc.Inverse = make(map[string][]Term, len(r.inverse))
		for p, vals := range r.inverse {
			doc.Inverse[names.AttrName(p, false)] = terms(vals)
		}
	}
	return doc
}
