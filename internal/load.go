// Copyright 2014 The Cayley Authors. All rights reserved.
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

// Package internal holds the load and dump routines shared by the CLI and
// the HTTP server.
package internal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/cayleygraph/quad"
	_ "github.com/cayleygraph/quad/jsonld"
	_ "github.com/cayleygraph/quad/nquads"

	"github.com/cayleygraph/surf/clog"
	"github.com/cayleygraph/surf/graph"
	"github.com/cayleygraph/surf/internal/decompressor"
)

// DefaultFormat is used when the format is neither given nor detected.
const DefaultFormat = "nquads"

// FormatFor picks a quad format by its name or, if the name is empty, by the
// extension of path.
func FormatFor(name, path string) (*quad.Format, error) {
	var f *quad.Format
	if name != "" {
		if f = quad.FormatByName(name); f == nil {
			return nil, fmt.Errorf("unknown quad format %q", name)
		}
		return f, nil
	}
	if path != "" && path != "-" {
		f = quad.FormatByExt(filepath.Ext(decompressor.TrimExt(path)))
	}
	if f == nil {
		f = quad.FormatByName(DefaultFormat)
	}
	return f, nil
}

// open opens a local file, stdin for "-", or fetches a URL.
func open(ctx context.Context, path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	u, err := url.Parse(path)
	if err != nil || u.Scheme == "file" || u.Scheme == "" || len(u.Scheme) == 1 {
		if err == nil && u.Scheme == "file" {
			// Recovery heuristic for mistyping "file://path/to/file".
			path = filepath.Join(u.Host, u.Path)
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("could not open file %q: %w", path, err)
		}
		return f, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not get resource <%s>: %w", u, err)
	} else if resp.StatusCode/100 != 2 {
		resp.Body.Close()
		return nil, fmt.Errorf("could not get resource <%s>: %s", u, resp.Status)
	}
	return resp.Body, nil
}

// Load reads quads from a file or URL and adds them to the backend. The data
// may be compressed with gzip or bzip2. A non-empty label overrides the
// graph of every quad.
func Load(ctx context.Context, b graph.Writer, path, format string, label quad.IRI) (int, error) {
	f, err := FormatFor(format, path)
	if err != nil {
		return 0, err
	} else if f.Reader == nil {
		return 0, fmt.Errorf("decoding of %q is not supported", f.Name)
	}
	rc, err := open(ctx, path)
	if err != nil {
		return 0, err
	}
	defer rc.Close()
	r, err := decompressor.New(rc)
	if err != nil {
		return 0, err
	}
	start := time.Now()
	n, err := b.LoadTriples(ctx, r, f.Name, label)
	if err != nil {
		return n, fmt.Errorf("failed to load %q: %w", path, err)
	}
	clog.Infof("loaded %d quads from %q in %v", n, path, time.Since(start))
	return n, nil
}
