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

// Package decompressor detects and unpacks compressed quad files.
package decompressor

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"io"
	"path/filepath"
	"strings"
)

var (
	gzipMagic  = []byte("\x1f\x8b")
	bzip2Magic = []byte("BZh")
)

// Kind is a compression method.
type Kind int

const (
	None Kind = iota
	Gzip
	Bzip2
)

func (k Kind) String() string {
	switch k {
	case Gzip:
		return "gzip"
	case Bzip2:
		return "bzip2"
	}
	return "none"
}

// Detect peeks at the stream header without consuming it.
func Detect(br *bufio.Reader) (Kind, error) {
	buf, err := br.Peek(len(bzip2Magic))
	if err != nil && err != io.EOF {
		return None, err
	}
	switch {
	case bytes.HasPrefix(buf, gzipMagic):
		return Gzip, nil
	case bytes.HasPrefix(buf, bzip2Magic):
		return Bzip2, nil
	}
	return None, nil
}

// New returns a reader of decompressed data. Uncompressed input, including
// input shorter than any header, is returned as is.
func New(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	kind, err := Detect(br)
	if err != nil {
		return nil, err
	}
	switch kind {
	case Gzip:
		return gzip.NewReader(br)
	case Bzip2:
		return bzip2.NewReader(br), nil
	}
	return br, nil
}

// TrimExt removes a compression extension from a file name, so that the quad
// format can be detected from the remaining one.
func TrimExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".bz2":
		return strings.TrimSuffix(path, filepath.Ext(path))
	}
	return path
}
