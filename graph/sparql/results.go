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

package sparql

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/nquads"

	"github.com/cayleygraph/surf/graph"
	"github.com/cayleygraph/surf/query"
)

// term is a single RDF term of the SPARQL 1.1 Query Results JSON format.
type term struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Lang     string `json:"xml:lang,omitempty"`
	Datatype string `json:"datatype,omitempty"`
}

type results struct {
	Head struct {
		Vars []string `json:"vars"`
	} `json:"head"`
	Boolean *bool `json:"boolean,omitempty"`
	Results struct {
		Bindings []map[string]term `json:"bindings"`
	} `json:"results"`
}

// value converts a JSON term. Typed literals of known datatypes become
// native values, so that they compare equal to values of local stores.
func (t term) value() (quad.Value, error) {
	switch t.Type {
	case "uri":
		return quad.IRI(t.Value), nil
	case "bnode":
		return quad.BNode(t.Value), nil
	case "literal", "typed-literal":
		if t.Lang != "" {
			return quad.LangString{Value: quad.String(t.Value), Lang: t.Lang}, nil
		} else if t.Datatype == "" {
			return quad.String(t.Value), nil
		}
		ts := quad.TypedString{Value: quad.String(t.Value), Type: quad.IRI(t.Datatype)}
		if v, err := ts.ParseValue(); err == nil {
			return v, nil
		}
		return ts, nil
	}
	return nil, fmt.Errorf("unknown term type %q", t.Type)
}

func decodeResults(r io.Reader) (*graph.Result, error) {
	var res results
	if err := json.NewDecoder(r).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}
	out := &graph.Result{Vars: res.Head.Vars}
	if res.Boolean != nil {
		out.Bool = *res.Boolean
		return out, nil
	}
	for _, b := range res.Results.Bindings {
		row := make(graph.Row, len(b))
		for name, t := range b {
			v, err := t.value()
			if err != nil {
				return nil, fmt.Errorf("binding %q: %w", name, err)
			}
			row[name] = v
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

func decodeQuads(r io.Reader) (*graph.Result, error) {
	qr := nquads.NewReader(r, false)
	out := &graph.Result{}
	for {
		q, err := qr.ReadQuad()
		if err == io.EOF {
			return out, nil
		} else if err != nil {
			return nil, fmt.Errorf("decode quads: %w", err)
		}
		out.Quads = append(out.Quads, q)
	}
}

var (
	reComment  = regexp.MustCompile(`(?m)^\s*#.*$`)
	rePrologue = regexp.MustCompile(`(?is)^\s*(?:(?:BASE\s*<[^>]*>|PREFIX\s+[^\s:]*:\s*<[^>]*>)\s*)*`)
	reKeyword  = regexp.MustCompile(`^[A-Za-z]+`)
)

// KindOf guesses the kind of a query text from its first keyword.
func KindOf(text string) (query.Kind, error) {
	s := reComment.ReplaceAllString(text, "")
	s = s[len(rePrologue.FindString(s)):]
	switch kw := strings.ToUpper(reKeyword.FindString(s)); kw {
	case "SELECT":
		return query.KindSelect, nil
	case "ASK":
		return query.KindAsk, nil
	case "CONSTRUCT":
		return query.KindConstruct, nil
	case "DESCRIBE":
		return query.KindDescribe, nil
	case "INSERT", "WITH":
		return query.KindInsert, nil
	case "DELETE":
		return query.KindDelete, nil
	case "LOAD":
		return query.KindLoad, nil
	case "CLEAR", "DROP", "CREATE", "ADD", "MOVE", "COPY":
		return query.KindClear, nil
	default:
		return 0, fmt.Errorf("%w: cannot detect query form %q", query.ErrInvalid, kw)
	}
}
