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

package decompressor

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	gzipData = []byte{
			0x1f, 0x8b, 0x08, 0x00, 0x00, 0x00, 0x00, 0x00, 0x02, 0x03, 0x2b, 0x2e, 0x2d, 0x4a, 0x53, 0x48,
			0x49, 0x2c, 0x49, 0xe4, 0x02, 0x00, 0xec, 0x08, 0x9c, 0x65, 0x0a, 0x00, 0x00, 0x00,
	}
	bzip2Data = []byte{
			0x42, 0x5a, 0x68, 0x39, 0x31, 0x41, 0x59, 0x26, 0x53, 0x59, 0x39, 0x4b, 0x15, 0x2a, 0x00, 0x00,
			0x03, 0xd1, 0x80, 0x00, 0x10, 0x40, 0x00, 0x25, 0x00, 0x1e, 0x00, 0x20, 0x00, 0x22, 0x01, 0xa7,
			0xa4, 0x20, 0xc9, 0x88, 0xbd, 0x12, 0xe6, 0x0f, 0xc5, 0xdc, 0x91, 0x4e, 0x14, 0x24, 0x0e, 0x52,
			0xc5, 0x4a, 0x80,
	}
)

func TestNew(t *testing.T) {
	cases := []struct {
		name   string
		input  io.Reader
		kind   Kind
		expect string
	}{
		{"text", strings.NewReader("surf data\n"), None, "surf data\n"},
		{"short", strings.NewReader("a"), None, "a"},
		{"empty", strings.NewReader(""), None, ""},
		{"gzip", bytes.NewReader(gzipData), Gzip, "surf data\n"},
		{"bzip2", bytes.NewReader(bzip2Data), Bzip2, "surf data\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			data, _ := io.ReadAll(c.input)
			kind, err := Detect(bufio.NewReader(bytes.NewReader(data)))
			require.NoError(t, err)
			require.Equal(t, c.kind, kind)

			r, err := New(bytes.NewReader(data))
			require.NoError(t, err)
			out, err := io.ReadAll(r)
			require.NoError(t, err)
			require.Equal(t, c.expect, string(out))
		})
	}
}

func TestBadInput(t *testing.T) {
	_, err := New(strings.NewReader("\x1f\x8bsurf data\n"))
	require.ErrorIs(t, err, gzip.ErrHeader)

	r, err := New(strings.NewReader("BZhsurf data\n"))
	require.NoError(t, err, "bzip2 header errors show up on read")
	_, err = io.ReadAll(r)
	require.Error(t, err)
}

func TestTrimExt(t *testing.T) {
	require.Equal(t, "data.nq", TrimExt("data.nq.gz"))
	require.Equal(t, "data.nt", TrimExt("data.nt.BZ2"))
	require.Equal(t, "data.nq", TrimExt("data.nq"))
}
