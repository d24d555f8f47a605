// Copyright 2025 The Mojo Authors
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

// Package cli provides command-line introspection for applications built on
// the routing package, intended to be mounted into an application's own
// cobra command tree.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/avnit/mojo/routing"
)

// RoutesCommand returns a command printing the route tree as an aligned
// table, one row per route with nesting shown by indentation. The verbose
// flag adds the compiled regular expression of each route.
//
// Example:
//
//	root := &cobra.Command{Use: "myapp"}
//	root.AddCommand(cli.RoutesCommand(router))
func RoutesCommand(r *routing.Router) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print the application's route tree",
		Long: "Print every route in matching order, with its method filter and name.\n" +
			"Bridges are marked; indentation shows nesting.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			infos, err := r.RoutesInfo()
			if err != nil {
				return err
			}

			return routing.WriteTable(cmd.OutOrStdout(), infos, verbose)
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false,
		"include the compiled regular expression of each route")

	return cmd
}
