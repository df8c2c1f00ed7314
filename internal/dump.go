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
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cayleygraph/quad"

	"github.com/cayleygraph/surf/graph"
	"github.com/cayleygraph/surf/query"
)

// quadSource is implemented by backends that expose their primitive store.
type quadSource interface {
	QuadStore() graph.QuadStore
}

// AllQuads returns every quad of the backend. Local stores are read directly,
// keeping graph labels. Other backends are asked with a CONSTRUCT query,
// which returns triples of the default graph only.
func AllQuads(ctx context.Context, b graph.Reader) ([]quad.Quad, error) {
	if s, ok := b.(quadSource); ok {
		return s.QuadStore().Match(ctx, quad.Quad{})
	}
	q := query.Construct().
		Template(query.T("?s", "?p", "?o")).
		Where(query.T("?s", "?p", "?o"))
	res, err := b.Execute(ctx, q)
	if err != nil {
		return nil, err
	}
	return res.Quads, nil
}

// WriteQuads encodes quads in a format to w.
func WriteQuads(w io.Writer, f *quad.Format, quads []quad.Quad) error {
	if f.Writer == nil {
		return fmt.Errorf("encoding in %s format is not supported", f.Name)
	}
	qw := f.Writer(w)
	for _, q := range quads {
		if err := qw.WriteQuad(q); err != nil {
			qw.Close()
			return err
		}
	}
	return qw.Close()
}

// Dump writes all quads of the backend to a file, or to stdout for "-".
// Files ending with .gz are compressed.
func Dump(ctx context.Context, b graph.Reader, path, format string) (int, error) {
	f, err := FormatFor(format, path)
	if err != nil {
		return 0, err
	}
	quads, err := AllQuads(ctx, b)
	if err != nil {
		return 0, err
	}
	var w io.Writer = os.Stdout
	if path != "-" {
		file, err := os.Create(path)
		if err != nil {
			return 0, fmt.Errorf("could not create file %q: %w", path, err)
		}
		defer file.Close()
		w = file
		if strings.EqualFold(filepath.Ext(path), ".gz") {
			zw := gzip.NewWriter(file)
			defer zw.Close()
			w = zw
		}
	}
	if err = WriteQuads(w, f, quads); err != nil {
		return 0, err
	}
	return len(quads), nil
}
