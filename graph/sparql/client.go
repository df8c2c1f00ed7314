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

// Package sparql is a backend that talks to a remote store over the SPARQL
// 1.1 protocol. Query models are translated to text and sent as form posts
// to the query or update endpoint.
package sparql

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cayleygraph/quad"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cayleygraph/surf/clog"
	"github.com/cayleygraph/surf/graph"
	"github.com/cayleygraph/surf/query"
	qsparql "github.com/cayleygraph/surf/query/sparql"
)

const Type = "sparql"

const (
	mimeResults  = "application/sparql-results+json"
	mimeTriples  = "application/n-triples"
	maxErrorBody = 64 << 10
)

func init() {
	graph.RegisterBackend(Type, graph.Registration{
		NewFunc: func(addr string, opts graph.Options) (graph.Backend, error) {
			return New(addr, opts)
		},
		IsPersistent: true,
	})
}

// QueryError is returned when an endpoint rejects a request.
type QueryError struct {
	Query  string
	Status int
	Body   string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("sparql: %d %s: %s\nquery: %s",
		e.Status, http.StatusText(e.Status), strings.TrimSpace(e.Body), e.Query)
}

// Client is a graph.Backend for a remote SPARQL endpoint.
type Client struct {
	queryURL  string
	updateURL string
	user      string
	pass      string
	batch     int

	cli   *http.Client
	tr    qsparql.Translator
	cache *lru.Cache[string, *graph.Result]
}

var _ graph.Backend = (*Client)(nil)

// New creates a client for the query endpoint at addr.
//
// Options: update_url (defaults to addr), timeout, cache_size (zero disables
// the result cache), dialect (sparul or sparql11), username, password, batch.
func New(addr string, opts graph.Options) (*Client, error) {
	if addr == "" {
		return nil, fmt.Errorf("sparql: endpoint address is required")
	}
	c := &Client{queryURL: addr}
	var err error
	if c.updateURL, err = opts.StringKey("update_url", addr); err != nil {
		return nil, err
	}
	timeout, err := opts.DurationKey("timeout", 30*time.Second)
	if err != nil {
		return nil, err
	}
	c.cli = &http.Client{Timeout: timeout}
	dialect, err := opts.StringKey("dialect", "")
	if err != nil {
		return nil, err
	}
	if c.tr.Dialect, err = qsparql.ParseDialect(dialect); err != nil {
		return nil, err
	}
	if c.user, err = opts.StringKey("username", ""); err != nil {
		return nil, err
	}
	if c.pass, err = opts.StringKey("password", ""); err != nil {
		return nil, err
	}
	if c.batch, err = opts.IntKey("batch", quad.DefaultBatch); err != nil {
		return nil, err
	} else if c.batch <= 0 {
		c.batch = quad.DefaultBatch
	}
	size, err := opts.IntKey("cache_size", 0)
	if err != nil {
		return nil, err
	} else if size > 0 {
		if c.cache, err = lru.New[string, *graph.Result](size); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Client) post(ctx context.Context, endpoint, addr, text, accept string) (io.ReadCloser, error) {
	form := url.Values{endpoint: {text}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, addr, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", accept)
	if c.user != "" {
		req.SetBasicAuth(c.user, c.pass)
	}
	if clog.V(2) {
		clog.Infof("sparql %s: %s", endpoint, text)
	}
	timer := prometheus.NewTimer(mRequestSeconds.WithLabelValues(endpoint))
	resp, err := c.cli.Do(req)
	timer.ObserveDuration()
	if err != nil {
		mRequests.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("sparql %s: %w", endpoint, err)
	}
	mRequests.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()
	if resp.StatusCode/100 != 2 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &QueryError{Query: text, Status: resp.StatusCode, Body: string(body)}
	}
	return resp.Body, nil
}

func (c *Client) run(ctx context.Context, kind query.Kind, text string) (*graph.Result, error) {
	if kind.IsUpdate() {
		if c.cache != nil {
			c.cache.Purge()
			mCachePurge.Inc()
		}
		body, err := c.post(ctx, "update", c.updateURL, text, "*/*")
		if err != nil {
			return nil, err
		}
		_, err = io.Copy(io.Discard, body)
		body.Close()
		if err != nil {
			return nil, fmt.Errorf("sparql update: %w", err)
		}
		return &graph.Result{}, nil
	}
	if c.cache != nil {
		if res, ok := c.cache.Get(text); ok {
			mCacheHit.Inc()
			return res, nil
		}
		mCacheMiss.Inc()
	}
	accept, decode := mimeResults, decodeResults
	if kind == query.KindConstruct || kind == query.KindDescribe {
		accept, decode = mimeTriples, decodeQuads
	}
	body, err := c.post(ctx, "query", c.queryURL, text, accept)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	res, err := decode(body)
	if err != nil {
		return nil, fmt.Errorf("sparql: %w\nquery: %s", err, text)
	}
	if c.cache != nil {
		c.cache.Add(text, res)
	}
	return res, nil
}

// Execute translates the query and sends it to the matching endpoint.
// Cached results are shared between callers and must not be modified.
func (c *Client) Execute(ctx context.Context, q *query.Query) (*graph.Result, error) {
	text, err := c.tr.Translate(q)
	if err != nil {
		return nil, err
	}
	return c.run(ctx, q.Kind, text)
}

// ExecuteSPARQL sends raw text. The endpoint is chosen by the first keyword
// after the prologue.
func (c *Client) ExecuteSPARQL(ctx context.Context, text string) (*graph.Result, error) {
	kind, err := KindOf(text)
	if err != nil {
		return nil, err
	}
	return c.run(ctx, kind, text)
}

func (c *Client) Get(ctx context.Context, s quad.Value, p quad.IRI, direct bool, label quad.IRI) ([]graph.Node, error) {
	res, err := c.Execute(ctx, graph.GetQuery(s, p, direct, label))
	if err != nil {
		return nil, err
	}
	return graph.NodesOf(res, "v", "t"), nil
}

func (c *Client) Load(ctx context.Context, s quad.Value, direct bool, label quad.IRI) (map[quad.IRI][]graph.Node, error) {
	res, err := c.Execute(ctx, graph.LoadQuery(s, direct, label))
	if err != nil {
		return nil, err
	}
	return graph.PredicatesOf(res, "p", "v", "t"), nil
}

func (c *Client) IsPresent(ctx context.Context, s quad.Value, label quad.IRI) (bool, error) {
	res, err := c.Execute(ctx, graph.IsPresentQuery(s, label))
	if err != nil {
		return false, err
	}
	return res.Bool, nil
}

func (c *Client) All(ctx context.Context, typ quad.IRI, limit, offset int, label quad.IRI) ([]quad.Value, error) {
	res, err := c.Execute(ctx, graph.AllQuery(typ, limit, offset, label))
	if err != nil {
		return nil, err
	}
	return res.Column("s"), nil
}

func (c *Client) InstancesByAttribute(ctx context.Context, typ quad.IRI, preds []quad.IRI, direct bool, label quad.IRI) ([]graph.Node, error) {
	res, err := c.Execute(ctx, graph.InstancesByAttributeQuery(typ, preds, direct, label))
	if err != nil {
		return nil, err
	}
	return graph.NodesOf(res, "s", "c"), nil
}

func (c *Client) GetBy(ctx context.Context, p graph.Params) ([]graph.Entry, error) {
	return graph.RunGetBy(ctx, c, p)
}

func (c *Client) update(ctx context.Context, updates ...*query.Query) error {
	for _, u := range updates {
		if _, err := c.Execute(ctx, u); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) Save(ctx context.Context, objs ...graph.Object) error {
	for _, o := range objs {
		if err := c.update(ctx, graph.SaveUpdates(o)...); err != nil {
			return fmt.Errorf("save %v: %w", o.Subject(), err)
		}
	}
	return nil
}

func (c *Client) Update(ctx context.Context, objs ...graph.Object) error {
	for _, o := range objs {
		if err := c.update(ctx, graph.UpdateUpdates(o)...); err != nil {
			return fmt.Errorf("update %v: %w", o.Subject(), err)
		}
	}
	return nil
}

func (c *Client) Remove(ctx context.Context, inverse bool, objs ...graph.Object) error {
	for _, o := range objs {
		if err := c.update(ctx, graph.RemoveUpdates(o, inverse)...); err != nil {
			return fmt.Errorf("remove %v: %w", o.Subject(), err)
		}
	}
	return nil
}

// Size counts triples of the default graph.
func (c *Client) Size(ctx context.Context) (int64, error) {
	res, err := c.run(ctx, query.KindSelect, `SELECT (COUNT(*) AS ?n) WHERE { ?s ?p ?o }`)
	if err != nil {
		return 0, err
	}
	col := res.Column("n")
	if len(col) != 1 {
		return 0, fmt.Errorf("sparql: unexpected count result: %v", res.Rows)
	}
	switch n := col[0].(type) {
	case quad.Int:
		return int64(n), nil
	case quad.TypedString:
		return strconv.ParseInt(string(n.Value), 10, 64)
	}
	return 0, fmt.Errorf("sparql: unexpected count value: %v", col[0])
}

func (c *Client) AddTriple(ctx context.Context, s quad.Value, p quad.IRI, o quad.Value, label quad.IRI) error {
	u := graph.AddTripleUpdate(s, p, o, label)
	if u == nil {
		return fmt.Errorf("%w: missing object", query.ErrInvalid)
	}
	return c.update(ctx, u)
}

func (c *Client) SetTriple(ctx context.Context, s quad.Value, p quad.IRI, o quad.Value, label quad.IRI) error {
	return c.update(ctx, graph.SetTripleUpdates(s, p, o, label)...)
}

func (c *Client) RemoveTriple(ctx context.Context, s quad.Value, p quad.IRI, o quad.Value, label quad.IRI) error {
	return c.update(ctx, graph.RemoveTripleUpdate(s, p, o, label))
}

func (c *Client) Clear(ctx context.Context, label quad.IRI) error {
	return c.update(ctx, graph.ClearUpdate(label))
}

// insertQuads sends one INSERT DATA per graph, keeping the input order.
func (c *Client) insertQuads(ctx context.Context, quads []quad.Quad) error {
	var (
		order  []quad.IRI
		byName = make(map[quad.IRI][]query.Triple)
	)
	for _, q := range quads {
		var g quad.IRI
		if q.Label != nil {
			iri, ok := q.Label.(quad.IRI)
			if !ok {
				return fmt.Errorf("%w: graph name must be an IRI: %v", query.ErrInvalid, q.Label)
			}
			g = iri
		}
		if _, ok := byName[g]; !ok {
			order = append(order, g)
		}
		byName[g] = append(byName[g], query.T(q.Subject, q.Predicate, q.Object))
	}
	for _, g := range order {
		u := query.InsertData().Template(byName[g]...)
		if g != "" {
			u = u.Into(g)
		}
		if _, err := c.Execute(ctx, u); err != nil {
			return err
		}
	}
	return nil
}

// LoadTriples decodes quads and inserts them in batches. A non-empty label
// overrides the graph of every quad.
func (c *Client) LoadTriples(ctx context.Context, r io.Reader, format string, label quad.IRI) (int, error) {
	f := quad.FormatByName(format)
	if f == nil || f.Reader == nil {
		return 0, fmt.Errorf("%w: cannot read format %q", graph.ErrOperationNotSupported, format)
	}
	qr := f.Reader(r)
	defer qr.Close()

	buf := make([]quad.Quad, 0, c.batch)
	n := 0
	flush := func() error {
		if len(buf) == 0 {
			return nil
		}
		err := c.insertQuads(ctx, buf)
		buf = buf[:0]
		return err
	}
	for {
		q, err := qr.ReadQuad()
		if err == io.EOF {
			break
		} else if err != nil {
			return n, fmt.Errorf("read quad %d: %w", n+1, err)
		}
		if label != "" {
			q.Label = label
		}
		buf = append(buf, q)
		n++
		if len(buf) >= c.batch {
			if err = flush(); err != nil {
				return n, err
			}
		}
	}
	if err := flush(); err != nil {
		return n, err
	}
	if clog.V(1) {
		clog.Infof("loaded %d quads into %s", n, c.updateURL)
	}
	return n, nil
}

func (c *Client) Close() error {
	c.cli.CloseIdleConnections()
	return nil
}
