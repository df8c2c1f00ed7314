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


// Package command implements the surf command line.
package command

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cayleygraph/quad"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cayleygraph/surf/clog"
	"github.com/cayleygraph/surf/graph"
	"github.com/cayleygraph/surf/internal"
	"github.com/cayleygraph/surf/internal/config"
	"github.com/cayleygraph/surf/voc"
)

const (
	flagConfig     = "config"
	flagBackend    = "backend"
	flagAddress    = "address"
	flagReadOnly   = "read_only"
	flagInit       = "init"
	flagLoad       = "load"
	flagLoadFormat = "load_format"
	flagLabel      = "label"
	flagFormat     = "format"
	flagOutput     = "output"
)

var errReadOnly = errors.New("database is read-only")

// app carries the configuration shared by all subcommands.
type app struct {
	v   *viper.Viper
	cfg *config.Config
}

// NewRootCmd creates the surf command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	a := &app{v: config.New()}
	root := &cobra.Command{
		Use:           "surf",
		Short:         "Object-RDF mapper and SPARQL toolkit.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString(flagConfig)
			if err := config.Read(a.v, file); err != nil {
				return err
			}
			cfg, err := config.Load(a.v)
			if err != nil {
				return err
			}
			cfg.RegisterNamespaces(voc.Global())
			a.cfg = cfg
			return nil
		},
	}
	fl := root.PersistentFlags()
	fl.StringP(flagConfig, "c", "", "path to an explicit configuration file")
	fl.StringP(flagBackend, "d", config.DefaultBackend, "backend to use: "+strings.Join(graph.Backends(), ", "))
	fl.StringP(flagAddress, "a", "", "address or path of the database")
	fl.Bool(flagReadOnly, false, "disallow writes")
	a.v.BindPFlag(config.KeyBackend, fl.Lookup(flagBackend))
	a.v.BindPFlag(config.KeyAddress, fl.Lookup(flagAddress))
	a.v.BindPFlag(config.KeyReadOnly, fl.Lookup(flagReadOnly))

	root.AddCommand(
		a.newInitCmd(),
		a.newLoadCmd(),
		a.newDumpCmd(),
		a.newQueryCmd(),
		a.newGetCmd(),
		a.newSizeCmd(),
		a.newClearCmd(),
		a.newHTTPCmd(),
		newVersionCmd(),
	)
	return root
}

func formatNames(read bool) string {
	var names []string
	for _, f := range quad.Formats() {
		if (read && f.Reader != nil) || (!read && f.Writer != nil) {
			names = append(names, f.Name)
		}
	}
	sort.Strings(names)
	return `"` + strings.Join(names, `", "`) + `"`
}

// registerOpenFlags adds flags used by commands that query a database.
func registerOpenFlags(cmd *cobra.Command) {
	cmd.Flags().Bool(flagInit, false, "initialize the database before using it")
	cmd.Flags().StringP(flagLoad, "i", "", `quad file to load before running the command (".gz" supported, "-" for stdin)`)
	cmd.Flags().String(flagLoadFormat, "", "quad file format to use instead of auto-detection ("+formatNames(true)+")")
}

// open connects to the configured backend, optionally initializing it and
// loading a file first.
func (a *app) open(cmd *cobra.Command) (graph.Backend, error) {
	init, _ := cmd.Flags().GetBool(flagInit)
	b, err := a.cfg.Open(init)
	if err != nil {
		return nil, err
	}
	if load, _ := cmd.Flags().GetString(flagLoad); load != "" {
		if a.cfg.ReadOnly {
			b.Close()
			return nil, fmt.Errorf("cannot load %q: %w", load, errReadOnly)
		}
		format, _ := cmd.Flags().GetString(flagLoadFormat)
		start := time.Now()
		n, err := internal.Load(ctxOf(cmd), b, load, format, "")
		if err != nil {
			b.Close()
			return nil, err
		}
		clog.Infof("loaded %d quads from %q in %v", n, load, time.Since(start))
	}
	return b, nil
}

func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
