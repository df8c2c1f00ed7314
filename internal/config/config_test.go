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

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cayleygraph/quad"
	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/surf/graph"
	_ "github.com/cayleygraph/surf/graph/memstore"
	"github.com/cayleygraph/surf/voc"
)

func TestDefaults(t *testing.T) {
	c, err := Load(New())
	require.NoError(t, err)
	require.Equal(t, DefaultBackend, c.Backend)
	require.Equal(t, quad.DefaultBatch, c.LoadBatch)
	require.Equal(t, DefaultTimeout, c.Timeout)
	require.Equal(t, "127.0.0.1:64210", c.Listen())
	require.NotNil(t, c.Options)
}

const fileConfig = `
store:
  backend: btree
  path: /tmp/surf
  read_only: true
  options:
    cache_size: 10
load:
  batch: 500
http:
  port: 8080
  timeout: 5s
namespaces:
  ex: http://example.org/ns#
`

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "surf.yml")
	require.NoError(t, os.WriteFile(path, []byte(fileConfig), 0644))

	v := New()
	require.NoError(t, Read(v, path))
	c, err := Load(v)
	require.NoError(t, err)
	require.Equal(t, "btree", c.Backend)
	require.Equal(t, "/tmp/surf", c.Address)
	require.True(t, c.ReadOnly)
	require.Equal(t, 500, c.LoadBatch)
	require.Equal(t, "127.0.0.1:8080", c.Listen())
	require.Equal(t, 5*time.Second, c.Timeout)
	n, err := c.Options.IntKey("cache_size", 0)
	require.NoError(t, err)
	require.Equal(t, 10, n)

	opts := c.storeOptions()
	require.Equal(t, 500, opts["batch"])
	require.NotContains(t, c.Options, "batch")

	r := voc.NewRegistry()
	c.RegisterNamespaces(r)
	ns, ok := r.NamespaceURL("ex")
	require.True(t, ok)
	require.Equal(t, "http://example.org/ns#", ns)
}

func TestReadMissing(t *testing.T) {
	t.Setenv(EnvConfig, "")
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })

	require.NoError(t, Read(New(), ""), "a missing default file is not an error")
	require.Error(t, Read(New(), filepath.Join(dir, "nope.yml")))
}

func TestEnv(t *testing.T) {
	t.Setenv("SURF_STORE_BACKEND", "sqlite")
	t.Setenv("SURF_HTTP_PORT", "9000")
	c, err := Load(New())
	require.NoError(t, err)
	require.Equal(t, "sqlite", c.Backend)
	require.Equal(t, 9000, c.Port)
}

func TestValidate(t *testing.T) {
	v := New()
	v.Set(KeyLoadBatch, 0)
	_, err := Load(v)
	require.Error(t, err)

	v = New()
	v.Set(KeyHTTPPort, 70000)
	_, err = Load(v)
	require.Error(t, err)
}

func TestOpen(t *testing.T) {
	c, err := Load(New())
	require.NoError(t, err)
	require.ErrorIs(t, c.Init(), graph.ErrOperationNotSupported)

	b, err := c.Open(true)
	require.NoError(t, err)
	defer b.Close()
	n, err := b.Size(context.Background())
	require.NoError(t, err)
	require.Zero(t, n)

	c.Backend = "no-such-backend"
	_, err = c.Open(false)
	require.ErrorIs(t, err, graph.ErrBackendNotRegistered)
}
