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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/nquads"
	"github.com/spf13/cobra"

	"github.com/cayleygraph/surf/graph"
	"github.com/cayleygraph/surf/graph/sparql"
	"github.com/cayleygraph/surf/query"
	"github.com/cayleygraph/surf/resource"
)

const flagFile = "file"

func (a *app) newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query [sparql]",
		Short: "Run a SPARQL query against the database.",
		Long: "Run a SPARQL query or update. The text is taken from the argument, " +
			"from a file given with --file, or from stdin.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := queryText(cmd, args)
			if err != nil {
				return err
			}
			kind, err := sparql.KindOf(text)
			if err != nil {
				return err
			}
			if kind.IsUpdate() && a.cfg.ReadOnly {
				return errReadOnly
			}
			b, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer b.Close()
			res, err := b.ExecuteSPARQL(ctxOf(cmd), text)
			if err != nil {
				return err
			}
			out, _ := cmd.Flags().GetString(flagOutput)
			return printResult(cmd.OutOrStdout(), kind, res, out)
		},
	}
	registerOpenFlags(cmd)
	cmd.Flags().StringP(flagFile, "f", "", `file with the query text ("-" for stdin)`)
	cmd.Flags().StringP(flagOutput, "o", "text", `output format of SELECT and ASK results ("text" or "json")`)
	return cmd
}

func queryText(cmd *cobra.Command, args []string) (string, error) {
	file, _ := cmd.Flags().GetString(flagFile)
	if len(args) == 1 {
		if file != "" {
			return "", errors.New("both a query and a file were given")
		}
		return args[0], nil
	}
	var (
		data []byte
		err  error
	)
	switch file {
	case "", "-":
		data, err = io.ReadAll(cmd.InOrStdin())
	default:
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", errors.New("query is empty")
	}
	return string(data), nil
}

func printResult(w io.Writer, kind query.Kind, res *graph.Result, format string) error {
	if format != "text" && format != "json" {
		return fmt.Errorf("unknown output format %q", format)
	}
	switch kind {
	case query.KindSelect:
		if format == "json" {
			rows := make([]map[string]resource.Term, 0, len(res.Rows))
			for _, row := range res.Rows {
				m := make(map[string]resource.Term, len(row))
				for name, v := range row {
					if v != nil {
						m[name] = resource.NewTerm(v)
					}
				}
				rows = append(rows, m)
			}
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(rows)
		}
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(res.Vars, "\t"))
		for _, row := range res.Rows {
			cells := make([]string, len(res.Vars))
			for i, name := range res.Vars {
				if v := row[name]; v != nil {
					cells[i] = quad.StringOf(v)
				}
			}
			fmt.Fprintln(tw, strings.Join(cells, "\t"))
		}
		return tw.Flush()
	case query.KindAsk:
		if format == "json" {
			return json.NewEncoder(w).Encode(map[string]bool{"boolean": res.Bool})
		}
		_, err := fmt.Fprintln(w, res.Bool)
		return err
	case query.KindConstruct, query.KindDescribe:
		qw := nquads.NewWriter(w)
		for _, q := range res.Quads {
			if err := qw.WriteQuad(q); err != nil {
				return err
			}
		}
		return qw.Close()
	}
	_, err := fmt.Fprintln(w, "ok")
	return err
}
