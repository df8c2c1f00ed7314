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
	"net/http"

	"github.com/spf13/cobra"

	"github.com/cayleygraph/surf/clog"
	"github.com/cayleygraph/surf/internal/config"
	surfhttp "github.com/cayleygraph/surf/server/http"
)

func (a *app) newHTTPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "http",
		Short: "Serve the REST API on the configured host and port.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer b.Close()

			api := surfhttp.New(b, surfhttp.Config{
				ReadOnly: a.cfg.ReadOnly,
				Timeout:  a.cfg.Timeout,
			})
			addr := a.cfg.Listen()
			clog.Infof("listening on %s, API at http://%s/api/v1", addr, addr)
			return http.ListenAndServe(addr, api)
		},
	}
	registerOpenFlags(cmd)
	cmd.Flags().String("host", "", "host to listen on")
	cmd.Flags().Int("port", 0, "port to listen on")
	a.v.BindPFlag(config.KeyHTTPHost, cmd.Flags().Lookup("host"))
	a.v.BindPFlag(config.KeyHTTPPort, cmd.Flags().Lookup("port"))
	return cmd
}
