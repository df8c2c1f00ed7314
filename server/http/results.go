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


package surfhttp

import (
	"net/http"

	"github.com/cayleygraph/quad/nquads"

	"github.com/cayleygraph/surf/clog"
	"github.com/cayleygraph/surf/graph"
	"github.com/cayleygraph/surf/query"
	"github.com/cayleygraph/surf/resource"
)

const (
	contentTypeResults = "application/sparql-results+json"
	contentTypeNQuads  = "application/n-quads"
)

type resultsHead struct {
	Vars []string `json:"vars,omitempty"`
}

type selectResults struct {
	Head    resultsHead `json:"head"`
	Results struct {
		Bindings []map[string]resource.Term `json:"bindings"`
	} `json:"results"`
}

type askResults struct {
	Head    resultsHead `json:"head"`
	Boolean bool        `json:"boolean"`
}

// writeResult encodes a result in the format a SPARQL endpoint would use for
// the query kind.
func writeResult(w http.ResponseWriter, kind query.Kind, res *graph.Result) {
	switch kind {
	case query.KindSelect:
		out := selectResults{Head: resultsHead{Vars: res.Vars}}
		out.Results.Bindings = make([]map[string]resource.Term, 0, len(res.Rows))
		for _, row := range res.Rows {
			b := make(map[string]resource.Term, len(row))
			for name, v := range row {
				if v != nil {
					b[name] = resource.NewTerm(v)
				}
			}
			out.Results.Bindings = append(out.Results.Bindings, b)
		}
		w.Header().Set(hdrContentType, contentTypeResults)
		writeJSON(w, out)
	case query.KindAsk:
		w.Header().Set(hdrContentType, contentTypeResults)
		writeJSON(w, askResults{Boolean: res.Bool})
	case query.KindConstruct, query.KindDescribe:
		w.Header().Set(hdrContentType, contentTypeNQuads)
		qw := nquads.NewWriter(w)
		for _, q := range res.Quads {
			if err := qw.WriteQuad(q); err != nil {
				clog.Errorf("write quads: %v", err)
				return
			}
		}
		qw.Close()
	default:
		writeJSON(w, map[string]string{"result": "ok"})
	}
}
