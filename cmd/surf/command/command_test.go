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


package command

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cayleygraph/quad"
	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/surf/graph"
	"github.com/cayleygraph/surf/graph/graphtest"
	_ "github.com/cayleygraph/surf/graph/memstore"
	"github.com/cayleygraph/surf/query"
	"github.com/cayleygraph/surf/resource"
	_ "github.com/cayleygraph/surf/voc/core"
)

const data = `<http://example.org/alice> <http://xmlns.com/foaf/0.1/name> "Alice" .
<http://example.org/alice> <http://xmlns.com/foaf/0.1/knows> <http://example.org/bob> .
`

func dataFile(t testing.TB) string {
	path := filepath.Join(t.TempDir(), "data.nq")
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	return path
}

func run(t testing.TB, args ...string) (string, error) {
	root := NewRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "surf "), out)
}

func TestSize(t *testing.T) {
	out, err := run(t, "size", "-i", dataFile(t))
	require.NoError(t, err)
	require.Equal(t, "2\n", out)

	out, err = run(t, "size")
	require.NoError(t, err)
	require.Equal(t, "0\n", out)
}

func TestGet(t *testing.T) {
	path := dataFile(t)
	out, err := run(t, "get", "-i", path, "-o", "json", "<http://example.org/alice>")
	require.NoError(t, err)
	var doc resource.Document
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Equal(t, []resource.Term{{Type: "literal", Value: "Alice"}}, doc.Direct["foaf_name"])
	require.Equal(t, []resource.Term{{Type: "uri", Value: "http://example.org/bob"}}, doc.Direct["foaf_knows"])

	out, err = run(t, "get", "-i", path, "http://example.org/bob")
	require.NoError(t, err)
	require.Contains(t, out, "is_foaf_knows_of:")
	require.Contains(t, out, "http://example.org/alice")

	_, err = run(t, "get", "-o", "xml", "http://example.org/bob")
	require.Error(t, err)
}

func TestDump(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.nq")
	_, err := run(t, "dump", "-i", dataFile(t), "-o", out)
	require.NoError(t, err)
	got, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Len(t, strings.Split(strings.TrimSpace(string(got)), "\n"), 2)
	require.Contains(t, string(got), `"Alice"`)
}

func TestNotSupportedOnMemstore(t *testing.T) {
	_, err := run(t, "init")
	require.True(t, errors.Is(err, graph.ErrOperationNotSupported), "%v", err)

	_, err = run(t, "query", "-i", dataFile(t), "SELECT * WHERE { ?s ?p ?o }")
	require.True(t, errors.Is(err, graph.ErrOperationNotSupported), "%v", err)

	_, err = run(t, "query", "EXPLAIN ?s")
	require.True(t, errors.Is(err, query.ErrInvalid), "%v", err)
}

func TestReadOnly(t *testing.T) {
	path := dataFile(t)
	_, err := run(t, "load", "--read_only", path)
	require.Equal(t, errReadOnly, err)

	_, err = run(t, "size", "--read_only", "-i", path)
	require.True(t, errors.Is(err, errReadOnly), "%v", err)

	_, err = run(t, "clear", "--read_only")
	require.Equal(t, errReadOnly, err)
}

func TestLoad(t *testing.T) {
	out, err := run(t, "load", "--label", "http://example.org/g", dataFile(t))
	require.NoError(t, err)
	require.Equal(t, "loaded 2 quads\n", out)

	_, err = run(t, "load")
	require.Error(t, err)
}

func TestPrintResult(t *testing.T) {
	var buf bytes.Buffer
	res := &graph.Result{
		Vars: []string{"s", "n"},
		Rows: []graph.Row{
			{"s": graphtest.Alice, "n": quad.String("Alice")},
			{"s": graphtest.Bob},
		},
	}
	require.NoError(t, printResult(&buf, query.KindSelect, res, "text"))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "s", strings.Fields(lines[0])[0])
	require.Equal(t, []string{"<http://example.org/alice>", `"Alice"`}, strings.Fields(lines[1]))
	require.Equal(t, []string{"<http://example.org/bob>"}, strings.Fields(lines[2]))

	buf.Reset()
	require.NoError(t, printResult(&buf, query.KindSelect, res, "json"))
	var rows []map[string]resource.Term
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 2)
	require.Equal(t, "Alice", rows[0]["n"].Value)

	buf.Reset()
	require.NoError(t, printResult(&buf, query.KindAsk, &graph.Result{Bool: true}, "text"))
	require.Equal(t, "true\n", buf.String())

	buf.Reset()
	require.NoError(t, printResult(&buf, query.KindInsertData, &graph.Result{}, "text"))
	require.Equal(t, "ok\n", buf.String())

	require.Error(t, printResult(&buf, query.KindAsk, &graph.Result{}, "xml"))
}
