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
	"errors"
	"fmt"
	"time"

	"github.com/cayleygraph/quad"
	"github.com/spf13/cobra"

	"github.com/cayleygraph/surf/clog"
	"github.com/cayleygraph/surf/internal"
	"github.com/cayleygraph/surf/voc"
)

func (a *app) newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create an empty database.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.cfg.Init()
		},
	}
}

func (a *app) newLoadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load <file>",
		Short: "Bulk-load a quad file into the database.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			load, _ := cmd.Flags().GetString(flagLoad)
			if load == "" && len(args) == 1 {
				load = args[0]
			}
			if load == "" {
				return errors.New("one quads file must be specified")
			} else if a.cfg.ReadOnly {
				return errReadOnly
			}
			init, _ := cmd.Flags().GetBool(flagInit)
			b, err := a.cfg.Open(init)
			if err != nil {
				return err
			}
			defer b.Close()

			format, _ := cmd.Flags().GetString(flagLoadFormat)
			label, _ := cmd.Flags().GetString(flagLabel)
			start := time.Now()
			n, err := internal.Load(ctxOf(cmd), b, load, format, quad.IRI(voc.FullIRI(label)))
			if err != nil {
				return err
			}
			clog.Infof("loaded %d quads in %v", n, time.Since(start))
			fmt.Fprintf(cmd.OutOrStdout(), "loaded %d quads\n", n)
			return nil
		},
	}
	registerOpenFlags(cmd)
	cmd.Flags().String(flagLabel, "", "named graph to put the quads into")
	return cmd
}

func (a *app) newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump [file]",
		Short: "Bulk-dump the database into a quad file.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString(flagOutput)
			if out == "" && len(args) == 1 {
				out = args[0]
			}
			if out == "" {
				out = "-"
			}
			b, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer b.Close()

			format, _ := cmd.Flags().GetString(flagFormat)
			n, err := internal.Dump(ctxOf(cmd), b, out, format)
			if err != nil {
				return err
			}
			clog.Infof("dumped %d quads to %q", n, out)
			return nil
		},
	}
	registerOpenFlags(cmd)
	cmd.Flags().StringP(flagOutput, "o", "", `quad file to dump the database to (".gz" supported, "-" for stdout)`)
	cmd.Flags().String(flagFormat, "", "quad file format to use instead of auto-detection ("+formatNames(false)+")")
	return cmd
}

func (a *app) newSizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "size",
		Short: "Print the number of stored triples.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer b.Close()
			n, err := b.Size(ctxOf(cmd))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
	registerOpenFlags(cmd)
	return cmd
}

func (a *app) newClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all triples, or the triples of a single graph.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.ReadOnly {
				return errReadOnly
			}
			b, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer b.Close()
			label, _ := cmd.Flags().GetString(flagLabel)
			return b.Clear(ctxOf(cmd), quad.IRI(voc.FullIRI(label)))
		},
	}
	registerOpenFlags(cmd)
	cmd.Flags().String(flagLabel, "", "named graph to clear; all graphs if empty")
	return cmd
}
