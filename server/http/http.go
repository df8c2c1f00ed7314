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


// Package surfhttp serves a small REST API over a graph.Backend.
package surfhttp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cayleygraph/surf/clog"
	"github.com/cayleygraph/surf/graph"
	"github.com/cayleygraph/surf/query"
	"github.com/cayleygraph/surf/voc"
)

const (
	prefix = "/api/v1"

	hdrContentType  = "Content-Type"
	contentTypeJSON = "application/json"
)

// Config holds the API options.
type Config struct {
	ReadOnly bool
	Timeout  time.Duration
	// Names resolves attribute names of resources. The global registry is used if nil.
	Names *voc.Registry
}

// API serves requests for a single backend.
type API struct {
	b       graph.Backend
	cfg     Config
	handler http.Handler
}

// New creates an API and registers its routes on a new router.
func New(b graph.Backend, cfg Config) *API {
	r := httprouter.New()
	api := &API{b: b, cfg: cfg, handler: r}
	api.RegisterOn(r)
	return api
}

func (api *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	api.handler.ServeHTTP(w, r)
}

// RegisterOn adds all routes to a router.
func (api *API) RegisterOn(r *httprouter.Router) {
	r.OPTIONS("/*path", CORSFunc)
	r.GET("/health", HandleHealth)
	r.Handler(http.MethodGet, "/metrics", promhttp.Handler())
	r.GET(prefix+"/resource", CORS(LogRequest(api.ServeResource)))
	r.GET(prefix+"/query", CORS(LogRequest(api.ServeQuery)))
	r.POST(prefix+"/query", CORS(LogRequest(api.ServeQuery)))
	r.GET(prefix+"/size", CORS(LogRequest(api.ServeSize)))
	r.GET(prefix+"/formats", CORS(LogRequest(api.ServeFormats)))
	r.POST(prefix+"/write", CORS(api.RWOnly(LogRequest(api.ServeWrite))))
}

// HandleHealth responds with 204 for liveness checks.
func HandleHealth(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	w.WriteHeader(http.StatusNoContent)
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// LogRequest logs the start and the outcome of each request and records its duration.
func LogRequest(handler httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, req *http.Request, params httprouter.Params) {
		start := time.Now()
		addr := req.Header.Get("X-Real-IP")
		if addr == "" {
			addr = req.Header.Get("X-Forwarded-For")
			if addr == "" {
				addr = req.RemoteAddr
			}
		}
		rw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		clog.Infof("started %s %s for %s", req.Method, req.URL.Path, addr)
		handler(rw, req, params)
		dt := time.Since(start)
		mRequests.WithLabelValues(req.URL.Path, strconv.Itoa(rw.code)).Inc()
		mRequestSeconds.WithLabelValues(req.URL.Path).Observe(dt.Seconds())
		clog.Infof("completed %v %s %s in %v", rw.code, http.StatusText(rw.code), req.URL.Path, dt)
	}
}

// CORSFunc sets CORS headers for requests with an Origin.
func CORSFunc(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
	if origin := req.Header.Get("Origin"); origin != "" {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers",
			"Accept, Content-Type, Content-Length, Accept-Encoding, Authorization")
	}
}

// CORS wraps a handler with CORSFunc.
func CORS(h httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, req *http.Request, params httprouter.Params) {
		CORSFunc(w, req, params)
		h(w, req, params)
	}
}

var errReadOnly = errors.New("database is read-only")

// RWOnly rejects requests when the API is read-only.
func (api *API) RWOnly(handler httprouter.Handle) httprouter.Handle {
	if api.cfg.ReadOnly {
		return func(w http.ResponseWriter, req *http.Request, params httprouter.Params) {
			jsonResponse(w, http.StatusForbidden, errReadOnly)
		}
	}
	return handler
}

func jsonResponse(w http.ResponseWriter, code int, err interface{}) {
	w.Header().Set(hdrContentType, contentTypeJSON)
	w.WriteHeader(code)
	var s string
	switch err := err.(type) {
	case string:
		s = err
	case error:
		s = err.Error()
	default:
		s = fmt.Sprint(err)
	}
	data, _ := json.Marshal(s)
	w.Write([]byte(`{"error": `))
	w.Write(data)
	w.Write([]byte("}\n"))
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	if w.Header().Get(hdrContentType) == "" {
		w.Header().Set(hdrContentType, contentTypeJSON)
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		clog.Errorf("write response: %v", err)
	}
}

// errorCode maps backend errors to HTTP status codes.
func errorCode(err error) int {
	switch {
	case errors.Is(err, graph.ErrOperationNotSupported):
		return http.StatusNotImplemented
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, query.ErrInvalid):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (api *API) queryContext(r *http.Request) (context.Context, context.CancelFunc) {
	if api.cfg.Timeout > 0 {
		return context.WithTimeout(r.Context(), api.cfg.Timeout)
	}
	return context.WithCancel(r.Context())
}

const maxQuerySize = 1024 * 1024 // 1 MB

func readLimit(r io.Reader) ([]byte, error) {
	lr := &io.LimitedReader{R: r, N: maxQuerySize + 1}
	data, err := io.ReadAll(lr)
	if err == nil && len(data) > maxQuerySize {
		err = errors.New("request is too large")
	}
	return data, err
}
