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
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/cayleygraph/quad"
	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/surf/graph"
	"github.com/cayleygraph/surf/query"
	qsparql "github.com/cayleygraph/surf/query/sparql"
)

type request struct {
	Path   string
	Accept string
	Form   map[string]string
}

// endpoint is a fake SPARQL server answering every query with a canned body.
type endpoint struct {
	mu     sync.Mutex
	reqs   []request
	status int
	ctype  string
	body   string
}

func (e *endpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	req := request{Path: r.URL.Path, Accept: r.Header.Get("Accept"), Form: map[string]string{}}
	for k := range r.PostForm {
		req.Form[k] = r.PostForm.Get(k)
	}
	e.mu.Lock()
	e.reqs = append(e.reqs, req)
	status, ctype, body := e.status, e.ctype, e.body
	e.mu.Unlock()
	if ctype != "" {
		w.Header().Set("Content-Type", ctype)
	}
	if status != 0 {
		w.WriteHeader(status)
	}
	io.WriteString(w, body)
}

func (e *endpoint) requests() []request {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]request(nil), e.reqs...)
}

func newClient(t testing.TB, e *endpoint, opts graph.Options) *Client {
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	if opts == nil {
		opts = graph.Options{}
	}
	if _, ok := opts["update_url"]; !ok {
		opts["update_url"] = srv.URL + "/update"
	}
	c, err := New(srv.URL+"/query", opts)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

const selectBody = `{
  "head": {"vars": ["v", "t"]},
  "results": {"bindings": [
    {"v": {"type": "uri", "value": "http://example.org/bob"},
     "t": {"type": "uri", "value": "http://xmlns.com/foaf/0.1/Person"}},
    {"v": {"type": "literal", "value": "Bob", "xml:lang": "en"}},
    {"v": {"type": "literal", "value": "30", "datatype": "http://www.w3.org/2001/XMLSchema#integer"}},
    {"v": {"type": "typed-literal", "value": "x", "datatype": "http://example.org/custom"}},
    {"v": {"type": "bnode", "value": "b0"}},
    {"v": {"type": "literal", "value": "plain"}}
  ]}
}`

var (
	alice = quad.IRI("http://example.org/alice")
	knows = quad.IRI("http://xmlns.com/foaf/0.1/knows")
)

func TestSelect(t *testing.T) {
	e := &endpoint{ctype: mimeResults, body: selectBody}
	c := newClient(t, e, nil)

	q := graph.GetQuery(alice, knows, true, "")
	res, err := c.Execute(context.Background(), q)
	require.NoError(t, err)
	require.Equal(t, []string{"v", "t"}, res.Vars)
	require.Equal(t, []quad.Value{
		quad.IRI("http://example.org/bob"),
		quad.LangString{Value: "Bob", Lang: "en"},
		quad.Int(30),
		quad.TypedString{Value: "x", Type: "http://example.org/custom"},
		quad.BNode("b0"),
		quad.String("plain"),
	}, res.Column("v"))

	text, err := qsparql.Translate(q)
	require.NoError(t, err)
	reqs := e.requests()
	require.Len(t, reqs, 1)
	require.Equal(t, request{
		Path:   "/query",
		Accept: mimeResults,
		Form:   map[string]string{"query": text},
	}, reqs[0])
}

func TestGet(t *testing.T) {
	e := &endpoint{ctype: mimeResults, body: selectBody}
	c := newClient(t, e, nil)
	nodes, err := c.Get(context.Background(), alice, knows, true, "")
	require.NoError(t, err)
	require.Len(t, nodes, 6)
	require.Equal(t, graph.Node{
		Value: quad.IRI("http://example.org/bob"),
		Types: []quad.IRI{"http://xmlns.com/foaf/0.1/Person"},
	}, nodes[0])
}

func TestAsk(t *testing.T) {
	e := &endpoint{ctype: mimeResults, body: `{"head": {}, "boolean": true}`}
	c := newClient(t, e, nil)
	ok, err := c.IsPresent(context.Background(), alice, "")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestConstruct(t *testing.T) {
	e := &endpoint{ctype: mimeTriples, body: "<http://example.org/alice> <http://xmlns.com/foaf/0.1/knows> <http://example.org/bob> .\n" +
		"<http://example.org/alice> <http://xmlns.com/foaf/0.1/name> \"Alice\" .\n"}
	c := newClient(t, e, nil)
	res, err := c.Execute(context.Background(), query.Describe("<http://example.org/alice>"))
	require.NoError(t, err)
	require.Equal(t, []quad.Quad{
		{Subject: alice, Predicate: knows, Object: quad.IRI("http://example.org/bob")},
		{Subject: alice, Predicate: quad.IRI("http://xmlns.com/foaf/0.1/name"), Object: quad.String("Alice")},
	}, res.Quads)
	require.Equal(t, mimeTriples, e.requests()[0].Accept)
}

func TestCachePurgedOnWrite(t *testing.T) {
	e := &endpoint{ctype: mimeResults, body: selectBody}
	c := newClient(t, e, graph.Options{"cache_size": 10})
	ctx := context.Background()

	count := func(path string) int {
		n := 0
		for _, r := range e.requests() {
			if r.Path == path {
				n++
			}
		}
		return n
	}

	for i := 0; i < 3; i++ {
		_, err := c.Get(ctx, alice, knows, true, "")
		require.NoError(t, err)
	}
	require.Equal(t, 1, count("/query"))

	require.NoError(t, c.AddTriple(ctx, alice, knows, quad.IRI("http://example.org/carol"), ""))
	require.Equal(t, 1, count("/update"))
	reqs := e.requests()
	require.Contains(t, reqs[len(reqs)-1].Form["update"], "INSERT DATA")

	_, err := c.Get(ctx, alice, knows, true, "")
	require.NoError(t, err)
	require.Equal(t, 2, count("/query"))
}

func TestRemoveTripleInGraph(t *testing.T) {
	e := &endpoint{}
	c := newClient(t, e, graph.Options{"dialect": "sparql11"})
	g := quad.IRI("http://example.org/g")
	require.NoError(t, c.SetTriple(context.Background(), alice, knows, quad.IRI("http://example.org/carol"), g))

	reqs := e.requests()
	require.NotEmpty(t, reqs)
	del := reqs[0].Form["update"]
	require.True(t, strings.HasPrefix(del, "DELETE { GRAPH <http://example.org/g> {"), del)
	require.Contains(t, del, "} } USING <http://example.org/g> WHERE {")
	require.Contains(t, reqs[len(reqs)-1].Form["update"], "INSERT DATA { GRAPH <http://example.org/g>")
}

func TestUpdateTruncatedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "100")
		io.WriteString(w, "ok")
	}))
	defer srv.Close()
	c, err := New(srv.URL, nil)
	require.NoError(t, err)
	defer c.Close()

	err = c.AddTriple(context.Background(), alice, knows, quad.IRI("http://example.org/carol"), "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "sparql update")
}

func TestQueryError(t *testing.T) {
	e := &endpoint{status: http.StatusBadRequest, body: "parse error at line 1\n"}
	c := newClient(t, e, nil)

	text := "SELECT ?x WHERE { ?x ?p }"
	_, err := c.ExecuteSPARQL(context.Background(), text)
	var qerr *QueryError
	require.True(t, errors.As(err, &qerr))
	require.Equal(t, http.StatusBadRequest, qerr.Status)
	require.Equal(t, "parse error at line 1\n", qerr.Body)
	require.Equal(t, text, qerr.Query)
	require.Contains(t, err.Error(), "400 Bad Request")

	_, err = c.Execute(context.Background(), query.Select("bad"))
	require.ErrorIs(t, err, query.ErrInvalid)
	require.Len(t, e.requests(), 1, "invalid queries are not sent")
}

func TestKindOf(t *testing.T) {
	cases := []struct {
		text string
		kind query.Kind
	}{
		{"SELECT * WHERE { ?s ?p ?o }", query.KindSelect},
		{"  ask { ?s ?p ?o }", query.KindAsk},
		{"PREFIX foaf: <http://xmlns.com/foaf/0.1/>\nCONSTRUCT { ?s ?p ?o } WHERE { ?s foaf:knows ?o }", query.KindConstruct},
		{"BASE <http://example.org/>\n# comment\nDESCRIBE <alice>", query.KindDescribe},
		{"PREFIX : <http://example.org/> INSERT DATA { :a :b :c }", query.KindInsert},
		{"WITH <g> DELETE { ?s ?p ?o } WHERE { ?s ?p ?o }", query.KindInsert},
		{"DELETE DATA { <a> <b> <c> }", query.KindDelete},
		{"CLEAR ALL", query.KindClear},
		{"DROP GRAPH <g>", query.KindClear},
		{"LOAD <http://example.org/data.nt>", query.KindLoad},
	}
	for _, c := range cases {
		kind, err := KindOf(c.text)
		require.NoError(t, err, c.text)
		require.Equal(t, c.kind, kind, c.text)
	}
	_, err := KindOf("EXPLAIN SELECT")
	require.ErrorIs(t, err, query.ErrInvalid)
}

func TestLoadTriples(t *testing.T) {
	e := &endpoint{}
	c := newClient(t, e, graph.Options{"batch": 2})
	data := `<http://example.org/a> <http://example.org/p> "1" .
<http://example.org/b> <http://example.org/p> "2" <http://example.org/g> .
<http://example.org/c> <http://example.org/p> "3" .
`
	n, err := c.LoadTriples(context.Background(), strings.NewReader(data), "nquads", "")
	require.NoError(t, err)
	require.Equal(t, 3, n)

	var updates []string
	for _, r := range e.requests() {
		require.Equal(t, "/update", r.Path)
		updates = append(updates, r.Form["update"])
	}
	require.Equal(t, []string{
		`INSERT DATA { <http://example.org/a> <http://example.org/p> "1" }`,
		`INSERT DATA INTO <http://example.org/g> { <http://example.org/b> <http://example.org/p> "2" }`,
		`INSERT DATA { <http://example.org/c> <http://example.org/p> "3" }`,
	}, updates)

	_, err = c.LoadTriples(context.Background(), strings.NewReader(data), "no-such-format", "")
	require.ErrorIs(t, err, graph.ErrOperationNotSupported)
}

func TestSize(t *testing.T) {
	e := &endpoint{ctype: mimeResults, body: `{"head": {"vars": ["n"]}, "results": {"bindings": [
		{"n": {"type": "literal", "value": "42", "datatype": "http://www.w3.org/2001/XMLSchema#integer"}}]}}`}
	c := newClient(t, e, nil)
	n, err := c.Size(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(42), n)
}

func TestNew(t *testing.T) {
	require.True(t, graph.IsRegistered(Type))
	_, err := New("", nil)
	require.Error(t, err)
	_, err = New("http://localhost/sparql", graph.Options{"dialect": "sparql2"})
	require.Error(t, err)

	c, err := New("http://localhost/sparql", graph.Options{"dialect": "sparql11", "cache_size": 4})
	require.NoError(t, err)
	require.Equal(t, qsparql.SPARQL11, c.tr.Dialect)
	require.Equal(t, "http://localhost/sparql", c.updateURL)
	require.NotNil(t, c.cache)
}
