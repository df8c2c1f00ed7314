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
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cayleygraph/quad"
	"github.com/julienschmidt/httprouter"

	"github.com/cayleygraph/surf/clog"
	"github.com/cayleygraph/surf/graph"
	"github.com/cayleygraph/surf/graph/sparql"
	"github.com/cayleygraph/surf/resource"
	"github.com/cayleygraph/surf/voc"
)

func (api *API) names() *voc.Registry {
	if api.cfg.Names != nil {
		return api.cfg.Names
	}
	return voc.Global()
}

// parseNode reads a node from a request parameter. Values in N-Triples
// notation are accepted along with plain and prefixed IRIs.
func (api *API) parseNode(s string) quad.Value {
	if strings.HasPrefix(s, "<") || strings.HasPrefix(s, "_:") {
		return quad.StringToValue(s)
	}
	return quad.IRI(api.names().FullIRI(s))
}

// ServeResource returns all attributes of a subject.
//
//	GET /api/v1/resource?iri=foaf:Person[&label=<graph>][&direct=true]
func (api *API) ServeResource(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := api.queryContext(r)
	defer cancel()
	vals := r.URL.Query()
	iri := vals.Get("iri")
	if iri == "" {
		jsonResponse(w, http.StatusBadRequest, "iri is not specified")
		return
	}
	subj := api.parseNode(iri)
	if subj == nil {
		jsonResponse(w, http.StatusBadRequest, fmt.Errorf("invalid node %q", iri))
		return
	}
	sess := resource.NewSession(map[string]graph.Backend{resource.DefaultStore: api.b})
	sess.Names = api.cfg.Names
	res := sess.GetResource(subj)
	if label := vals.Get("label"); label != "" {
		res.SetLabel(quad.IRI(api.names().FullIRI(label)))
	}
	if err := res.Load(ctx, vals.Get("direct") == "true"); err != nil {
		jsonResponse(w, errorCode(err), err)
		return
	}
	doc := res.Document()
	if len(doc.Direct) == 0 && len(doc.Inverse) == 0 {
		jsonResponse(w, http.StatusNotFound, fmt.Errorf("resource %v not found", subj))
		return
	}
	writeJSON(w, doc)
}

// ServeQuery runs a SPARQL query on the backend. The query is taken from the
// "query" parameter or from the request body.
func (api *API) ServeQuery(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := api.queryContext(r)
	defer cancel()
	text := r.URL.Query().Get("query")
	if text == "" && r.Method == http.MethodPost {
		defer r.Body.Close()
		if strings.HasPrefix(r.Header.Get(hdrContentType), "application/x-www-form-urlencoded") {
			r.Body = http.MaxBytesReader(w, r.Body, maxQuerySize)
			if err := r.ParseForm(); err != nil {
				jsonResponse(w, http.StatusBadRequest, err)
				return
			}
			text = r.PostForm.Get("query")
		} else {
			data, err := readLimit(r.Body)
			if err != nil {
				jsonResponse(w, http.StatusBadRequest, err)
				return
			}
			text = string(data)
		}
	}
	if strings.TrimSpace(text) == "" {
		jsonResponse(w, http.StatusBadRequest, "query is not specified")
		return
	}
	kind, err := sparql.KindOf(text)
	if err != nil {
		jsonResponse(w, http.StatusBadRequest, err)
		return
	}
	if kind.IsUpdate() && api.cfg.ReadOnly {
		jsonResponse(w, http.StatusForbidden, errReadOnly)
		return
	}
	res, err := api.b.ExecuteSPARQL(ctx, text)
	if err != nil {
		jsonResponse(w, errorCode(err), err)
		return
	}
	if clog.V(2) {
		clog.Infof("query %v: %d rows, %d quads", kind, len(res.Rows), len(res.Quads))
	}
	writeResult(w, kind, res)
}

// ServeSize returns the number of stored triples.
func (api *API) ServeSize(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := api.queryContext(r)
	defer cancel()
	n, err := api.b.Size(ctx)
	if err != nil {
		jsonResponse(w, errorCode(err), err)
		return
	}
	writeJSON(w, map[string]int64{"size": n})
}

// ServeFormats lists quad formats known to the server.
func (api *API) ServeFormats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	type Format struct {
		ID     string   `json:"id"`
		Read   bool     `json:"read,omitempty"`
		Write  bool     `json:"write,omitempty"`
		Ext    []string `json:"ext,omitempty"`
		Mime   []string `json:"mime,omitempty"`
		Binary bool     `json:"binary,omitempty"`
	}
	formats := quad.Formats()
	out := make([]Format, 0, len(formats))
	for _, f := range formats {
		out = append(out, Format{
			ID:  f.Name,
			Ext: f.Ext, Mime: f.Mime,
			Read: f.Reader != nil, Write: f.Writer != nil,
			Binary: f.Binary,
		})
	}
	writeJSON(w, out)
}

// writeResponse is the response to a successful write.
type writeResponse struct {
	Result string `json:"result"`
	Count  int    `json:"count"`
}

func newWriteResponse(count int) writeResponse {
	return writeResponse{
		Result: fmt.Sprintf("Successfully wrote %d quads.", count),
		Count:  count,
	}
}

// requestFormat picks the quad format from the "format" parameter or the
// content type, falling back to N-Quads.
func requestFormat(r *http.Request) *quad.Format {
	if name := r.URL.Query().Get("format"); name != "" {
		return quad.FormatByName(name)
	}
	if ct := r.Header.Get(hdrContentType); ct != "" {
		if i := strings.IndexByte(ct, ';'); i >= 0 {
			ct = ct[:i]
		}
		if f := quad.FormatByMime(strings.TrimSpace(ct)); f != nil {
			return f
		}
	}
	return quad.FormatByName("nquads")
}

// ServeWrite loads quads from the request body.
//
//	POST /api/v1/write[?format=nquads][&label=<graph>]
func (api *API) ServeWrite(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	defer r.Body.Close()
	ctx, cancel := api.queryContext(r)
	defer cancel()
	format := requestFormat(r)
	if format == nil || format.Reader == nil {
		jsonResponse(w, http.StatusBadRequest, "format is not supported for reading data")
		return
	}
	var rd io.Reader = r.Body
	if r.Header.Get("Content-Encoding") == "gzip" {
		zr, err := gzip.NewReader(r.Body)
		if err != nil {
			jsonResponse(w, http.StatusBadRequest, err)
			return
		}
		defer zr.Close()
		rd = zr
	}
	var label quad.IRI
	if s := r.URL.Query().Get("label"); s != "" {
		label = quad.IRI(api.names().FullIRI(s))
	}
	n, err := api.b.LoadTriples(ctx, rd, format.Name, label)
	if err != nil {
		jsonResponse(w, errorCode(err), err)
		return
	}
	writeJSON(w, newWriteResponse(n))
}
