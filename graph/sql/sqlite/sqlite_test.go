//go:build cgo
// +build cgo

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

package sqlite

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/surf/graph/sql/sqltest"
)

func makeSqlite(t testing.TB) string {
	return "file:" + filepath.Join(t.TempDir(), "surf.db")
}

func TestSqlite(t *testing.T) {
	sqltest.TestAll(t, Type, makeSqlite)
}

func TestConvError(t *testing.T) {
	plain := errors.New("table quads already exists")
	require.Equal(t, plain, ConvError(plain), "only driver errors are converted")
}
