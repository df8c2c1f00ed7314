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
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/cayleygraph/quad"
	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/surf/graph"
	"github.com/cayleygraph/surf/graph/graphtest"
	"github.com/cayleygraph/surf/graph/local"
	"github.com/cayleygraph/surf/graph/memstore"
	"github.com/cayleygraph/surf/resource"
	_ "github.com/cayleygraph/surf/voc/core"
)

func newServer(t testing.TB, b graph.Backend, cfg Config) *httptest.Server {
	srv := httptest.NewServer(New(b, cfg))
	t.Cleanup(srv.Close)
	return srv
}

func people() graph.Backend {
	return local.New(memstore.New(graphtest.People()...))
}

func get(t testing.TB, addr string) (int, []byte) {
	resp, err := http.Get(addr)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func post(t testing.TB, addr, ctype, body string) (int, []byte) {
	resp, err := http.Post(addr, ctype, strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func TestResource(t *testing.T) {
	srv := newServer(t, people(), Config{})

	code, data := get(t, srv.URL+"/api/v1/resource?iri="+url.QueryEscape(string(graphtest.Carol)))
	require.Equal(t, http.StatusOK, code, string(data))
	var doc resource.Document
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Equal(t, string(graphtest.Carol), doc.Subject.Value)
	require.Equal(t, []resource.Term{{Type: "literal", Value: "Carol"}}, doc.Direct["foaf_name"])
	require.Equal(t, []resource.Term{{Type: "uri", Value: string(graphtest.Bob)}}, doc.Inverse["is_foaf_knows_of"])

	code, data = get(t, srv.URL+"/api/v1/resource?direct=true&iri="+url.QueryEscape("<"+string(graphtest.Carol)+">"))
	require.Equal(t, http.StatusOK, code, string(data))
	doc = resource.Document{}
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Nil(t, doc.Inverse)

	code, _ = get(t, srv.URL+"/api/v1/resource")
	require.Equal(t, http.StatusBadRequest, code)

	code, data = get(t, srv.URL+"/api/v1/resource?iri="+url.QueryEscape("http://example.org/nobody"))
	require.Equal(t, http.StatusNotFound, code)
	require.Contains(t, string(data), `"error"`)

	code, data = get(t, srv.URL+"/api/v1/resource?iri="+url.QueryEscape("http://example.org/a> ?p ?o . <x"))
	require.Equal(t, http.StatusBadRequest, code, string(data))
}

// textBackend answers raw queries with a fixed result.
type textBackend struct {
	graph.Backend
	res  *graph.Result
	last string
}

func (b *textBackend) ExecuteSPARQL(ctx context.Context, text string) (*graph.Result, error) {
	b.last = text
	return b.res, nil
}

func TestQueryNotSupported(t *testing.T) {
	srv := newServer(t, people(), Config{})

	code, data := post(t, srv.URL+"/api/v1/query", "application/sparql-query", "SELECT * WHERE { ?s ?p ?o }")
	require.Equal(t, http.StatusNotImplemented, code, string(data))

	code, _ = post(t, srv.URL+"/api/v1/query", "application/sparql-query", "EXPLAIN ?s")
	require.Equal(t, http.StatusBadRequest, code)

	code, _ = post(t, srv.URL+"/api/v1/query", "application/sparql-query", "  ")
	require.Equal(t, http.StatusBadRequest, code)
}

func TestQuerySelect(t *testing.T) {
	b := &textBackend{Backend: people(), res: &graph.Result{
		Vars: []string{"s", "n"},
		Rows: []graph.Row{
			{"s": graphtest.Alice, "n": quad.Int(30)},
			{"s": graphtest.Bob},
		},
	}}
	srv := newServer(t, b, Config{})

	const text = "SELECT ?s ?n WHERE { ?s <http://xmlns.com/foaf/0.1/age> ?n }"
	code, data := get(t, srv.URL+"/api/v1/query?query="+url.QueryEscape(text))
	require.Equal(t, http.StatusOK, code, string(data))
	require.Equal(t, text, b.last)

	var out selectResults
	require.NoError(t, json.Unmarshal(data, &out))
	require.Equal(t, []string{"s", "n"}, out.Head.Vars)
	require.Len(t, out.Results.Bindings, 2)
	require.Equal(t, resource.Term{Type: "uri", Value: string(graphtest.Alice)}, out.Results.Bindings[0]["s"])
	require.Equal(t, "30", out.Results.Bindings[0]["n"].Value)
	_, ok := out.Results.Bindings[1]["n"]
	require.False(t, ok)

	form := url.Values{"query": {text}}.Encode()
	code, _ = post(t, srv.URL+"/api/v1/query", "application/x-www-form-urlencoded", form)
	require.Equal(t, http.StatusOK, code)
}

func TestQueryAskConstruct(t *testing.T) {
	b := &textBackend{Backend: people(), res: &graph.Result{Bool: true}}
	srv := newServer(t, b, Config{})

	code, data := post(t, srv.URL+"/api/v1/query", "application/sparql-query", "ASK { ?s ?p ?o }")
	require.Equal(t, http.StatusOK, code)
	var ask askResults
	require.NoError(t, json.Unmarshal(data, &ask))
	require.True(t, ask.Boolean)

	b.res = &graph.Result{Quads: []quad.Quad{
		{Subject: graphtest.Alice, Predicate: graphtest.Knows, Object: graphtest.Bob},
	}}
	code, data = post(t, srv.URL+"/api/v1/query", "application/sparql-query",
		"PREFIX foaf: <http://xmlns.com/foaf/0.1/>\nCONSTRUCT { ?s foaf:knows ?o } WHERE { ?s foaf:knows ?o }")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "<http://example.org/alice> <http://xmlns.com/foaf/0.1/knows> <http://example.org/bob> .\n", string(data))
}

func TestReadOnly(t *testing.T) {
	b := &textBackend{Backend: people(), res: &graph.Result{}}
	srv := newServer(t, b, Config{ReadOnly: true})

	code, data := post(t, srv.URL+"/api/v1/query", "application/sparql-update", "INSERT DATA { <a> <b> <c> }")
	require.Equal(t, http.StatusForbidden, code)
	require.Contains(t, string(data), "read-only")
	require.Empty(t, b.last)

	code, _ = post(t, srv.URL+"/api/v1/write", "application/n-quads", "<a> <b> <c> .\n")
	require.Equal(t, http.StatusForbidden, code)
}

func TestWriteAndSize(t *testing.T) {
	srv := newServer(t, people(), Config{})

	var size map[string]int64
	code, data := get(t, srv.URL+"/api/v1/size")
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(data, &size))
	require.Equal(t, int64(len(graphtest.People())), size["size"])

	const nq = "<http://example.org/dave> <http://xmlns.com/foaf/0.1/name> \"Dave\" .\n" +
		"<http://example.org/dave> <http://xmlns.com/foaf/0.1/knows> <http://example.org/alice> .\n"
	code, data = post(t, srv.URL+"/api/v1/write?label="+url.QueryEscape("http://example.org/g"), "application/n-quads", nq)
	require.Equal(t, http.StatusOK, code, string(data))
	var wr writeResponse
	require.NoError(t, json.Unmarshal(data, &wr))
	require.Equal(t, 2, wr.Count)

	code, data = get(t, srv.URL+"/api/v1/size")
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(data, &size))
	require.Equal(t, int64(len(graphtest.People())+2), size["size"])

	code, _ = post(t, srv.URL+"/api/v1/write?format=no-such-format", "text/plain", nq)
	require.Equal(t, http.StatusBadRequest, code)
}

func TestServiceRoutes(t *testing.T) {
	srv := newServer(t, people(), Config{})

	code, _ := get(t, srv.URL+"/health")
	require.Equal(t, http.StatusNoContent, code)

	code, data := get(t, srv.URL+"/api/v1/formats")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, string(data), `"id":"nquads"`)

	code, data = get(t, srv.URL+"/metrics")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, string(data), "surf_http_requests_total")

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/v1/query", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://example.com")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, "http://example.com", resp.Header.Get("Access-Control-Allow-Origin"))
}
