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


package main

import (
	"flag"
	"os"

	"github.com/cayleygraph/surf/clog"
	_ "github.com/cayleygraph/surf/clog/glog"
	"github.com/cayleygraph/surf/cmd/surf/command"

	// backends
	_ "github.com/cayleygraph/surf/graph/kv/all"
	_ "github.com/cayleygraph/surf/graph/memstore"
	_ "github.com/cayleygraph/surf/graph/sparql"
	_ "github.com/cayleygraph/surf/graph/sql/cockroach"
	_ "github.com/cayleygraph/surf/graph/sql/mysql"
	_ "github.com/cayleygraph/surf/graph/sql/postgres"

	_ "github.com/cayleygraph/surf/voc/core"
)

func main() {
	// glog flags are exposed through cobra
	flag.Set("logtostderr", "true")
	flag.CommandLine.Parse([]string{})

	root := command.NewRootCmd()
	root.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	if err := root.Execute(); err != nil {
		clog.Errorf("%v", err)
		os.Exit(1)
	}
}
