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

package routing

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Info is a flattened view of one route for introspection and tooling.
type Info struct {
	// Name is the route name, custom or automatic.
	Name string

	// Methods is the method filter; empty means any method.
	Methods []string

	// Pattern is the route's own pattern text.
	Pattern string

	// Path is the full pattern from the root down to this route.
	Path string

	// Bridge reports whether the route is a bridge.
	Bridge bool

	// Depth is the nesting level, zero for top-level routes.
	Depth int

	// Regexp is the compiled matching expression.
	Regexp string
}

// RoutesInfo returns every route in the tree in matching order, flattened
// for display. It freezes the router, since the compiled expressions are a
// freeze product.
func (r *Router) RoutesInfo() ([]Info, error) {
	if err := r.Freeze(); err != nil {
		return nil, err
	}

	var infos []Info
	_ = r.root.walk(0, func(rt *Route, depth int) error {
		var path strings.Builder
		for _, n := range routeChain(rt) {
			path.WriteString(n.source)
		}
		full := path.String()
		if full == "" {
			full = "/"
		}
		infos = append(infos, Info{
			Name:    rt.Name(),
			Methods: rt.methods,
			Pattern: rt.source,
			Path:    full,
			Bridge:  rt.bridge,
			Depth:   depth,
			Regexp:  rt.compiled.Regexp().String(),
		})

		return nil
	})

	return infos, nil
}

// routeChain returns the routes from the topmost ancestor down to rt,
// excluding the root.
func routeChain(rt *Route) []*Route {
	var chain []*Route
	for n := rt; n != nil && n.parent != nil; n = n.parent {
		chain = append([]*Route{n}, chain...)
	}

	return chain
}

// WriteTable renders route information as an aligned table. The verbose
// form appends the compiled regular expression of each route.
func WriteTable(w io.Writer, infos []Info, verbose bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if verbose {
		fmt.Fprintln(tw, "PATTERN\tMETHODS\tNAME\tREGEXP")
	} else {
		fmt.Fprintln(tw, "PATTERN\tMETHODS\tNAME")
	}

	for _, info := range infos {
		indent := strings.Repeat("  ", info.Depth)
		display := info.Pattern
		if display == "" {
			display = "/"
		}
		if info.Bridge {
			display += "  (bridge)"
		}

		methods := "*"
		if len(info.Methods) > 0 {
			methods = strings.Join(info.Methods, ",")
		}

		if verbose {
			fmt.Fprintf(tw, "%s%s\t%s\t%s\t%s\n", indent, display, methods, info.Name, info.Regexp)
		} else {
			fmt.Fprintf(tw, "%s%s\t%s\t%s\n", indent, display, methods, info.Name)
		}
	}

	return tw.Flush()
}
