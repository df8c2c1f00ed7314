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
	"fmt"
	"strings"

	"github.com/cayleygraph/quad"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cayleygraph/surf/graph"
	"github.com/cayleygraph/surf/resource"
	"github.com/cayleygraph/surf/voc"
)

const flagDirect = "direct"

func (a *app) newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <iri>",
		Short: "Print all attributes of a resource.",
		Example: "  surf get foaf:Person\n" +
			"  surf get -o json '<http://example.org/alice>'",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString(flagOutput)
			if out != "yaml" && out != "json" {
				return fmt.Errorf("unknown output format %q", out)
			}
			subj := parseNode(args[0])
			b, err := a.open(cmd)
			if err != nil {
				return err
			}
			sess := resource.NewSession(map[string]graph.Backend{resource.DefaultStore: b})
			defer sess.Close()

			r := sess.GetResource(subj)
			if label, _ := cmd.Flags().GetString(flagLabel); label != "" {
				r.SetLabel(quad.IRI(voc.FullIRI(label)))
			}
			direct, _ := cmd.Flags().GetBool(flagDirect)
			if err = r.Load(ctxOf(cmd), direct); err != nil {
				return err
			}
			doc := r.Document()
			w := cmd.OutOrStdout()
			if out == "json" {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				enc.SetEscapeHTML(false)
				return enc.Encode(doc)
			}
			enc := yaml.NewEncoder(w)
			enc.SetIndent(2)
			if err = enc.Encode(doc); err != nil {
				return err
			}
			return enc.Close()
		},
	}
	registerOpenFlags(cmd)
	cmd.Flags().StringP(flagOutput, "o", "yaml", `output format ("yaml" or "json")`)
	cmd.Flags().String(flagLabel, "", "named graph to read from")
	cmd.Flags().Bool(flagDirect, false, "print only direct attributes")
	return cmd
}

// parseNode accepts values in N-Triples notation, prefixed and plain IRIs.
func parseNode(s string) quad.Value {
	if strings.HasPrefix(s, "<") || strings.HasPrefix(s, "_:") {
		if v := quad.StringToValue(s); v != nil {
			return v
		}
	}
	return quad.IRI(voc.FullIRI(s))
}
