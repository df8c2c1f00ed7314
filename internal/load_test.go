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

package internal

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/cayleygraph/quad"
	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/surf/graph/local"
	"github.com/cayleygraph/surf/graph/memstore"
)

const data = `<http://example.org/a> <http://example.org/p> "1" .
<http://example.org/b> <http://example.org/p> "2" <http://example.org/g> .
`

func TestFormatFor(t *testing.T) {
	f, err := FormatFor("", "data.nq.gz")
	require.NoError(t, err)
	require.Equal(t, "nquads", f.Name)

	f, err = FormatFor("", "-")
	require.NoError(t, err)
	require.Equal(t, DefaultFormat, f.Name)

	_, err = FormatFor("no-such-format", "")
	require.Error(t, err)
}

func TestLoadDump(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	in := filepath.Join(dir, "in.nq.gz")
	require.NoError(t, os.WriteFile(in, buf.Bytes(), 0644))

	b := local.New(memstore.New())
	n, err := Load(ctx, b, in, "", "")
	require.NoError(t, err)
	require.Equal(t, 2, n)

	quads, err := AllQuads(ctx, b)
	require.NoError(t, err)
	require.Len(t, quads, 2)
	require.Equal(t, quad.IRI("http://example.org/g"), quads[1].Label)

	out := filepath.Join(dir, "out.nq")
	n, err = Dump(ctx, b, out, "")
	require.NoError(t, err)
	require.Equal(t, 2, n)

	b2 := local.New(memstore.New())
	n, err = Load(ctx, b2, out, "nquads", "http://example.org/h")
	require.NoError(t, err)
	require.Equal(t, 2, n)
	quads, err = AllQuads(ctx, b2)
	require.NoError(t, err)
	for _, q := range quads {
		require.Equal(t, quad.IRI("http://example.org/h"), q.Label)
	}

	_, err = Load(ctx, b2, filepath.Join(dir, "missing.nq"), "", "")
	require.Error(t, err)
}

func TestLoadURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data.nq" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(data))
	}))
	defer srv.Close()
	ctx := context.Background()

	b := local.New(memstore.New())
	n, err := Load(ctx, b, srv.URL+"/data.nq", "", "")
	require.NoError(t, err)
	require.Equal(t, 2, n)

	_, err = Load(ctx, b, srv.URL+"/other.nq", "", "")
	require.Error(t, err)
}
