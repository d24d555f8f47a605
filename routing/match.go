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
	"net/http"
	"net/url"
	"strings"

	"github.com/avnit/mojo/routing/pattern"
)

// Match is the result of a successful walk through the route tree: the
// endpoint route, the chain of matched routes from the top down (bridges
// and inner nodes first) and the merged stash. Each request owns its own
// Match and Stash; nothing in a Match is shared with other requests.
type Match struct {
	// Endpoint is the terminal route that produced the match.
	Endpoint *Route

	// Chain holds every matched route from the outermost down to and
	// including the endpoint.
	Chain []*Route

	// Stash is the merged key-value result: destination defaults
	// accumulated parent-to-child, overridden by captured placeholder
	// values. Child values override parent values of the same key.
	Stash *Stash

	router *Router
}

// URLFor reconstructs a path from the in-flight match. The name "current"
// (or an empty name) refers to the matched endpoint; any other name looks
// up a named route. Values are resolved from the overrides first, then
// destination defaults along the chain, then the values captured by this
// match.
func (m *Match) URLFor(name string, values map[string]any) (string, error) {
	if name == "" || name == "current" {
		return m.router.urlFor(m.Endpoint, values, m.Stash)
	}
	rt, ok := m.router.named[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrRouteNotFound, name)
	}

	return m.router.urlFor(rt, values, m.Stash)
}

// chainLink is one matched node while walking the tree.
type chainLink struct {
	route    *Route
	captures []pattern.Capture
	format   string
	rest     string // unmatched remainder, kept for embedded applications
}

// Match walks the route tree for a method, path and optional headers and
// returns the merged result, or nil when no route at any level matches.
// No-match is an absence of result, not an error.
//
// The router freezes implicitly on first use; configuration errors
// collected by Freeze cause a panic here since they are build-time
// mistakes, not request-time conditions.
func (r *Router) Match(method, path string, header http.Header) *Match {
	if header == nil {
		header = http.Header{}
	}
	req := &http.Request{
		Method: strings.ToUpper(method),
		URL:    &url.URL{Path: path},
		Header: header,
	}

	return r.MatchRequest(req)
}

// MatchRequest walks the route tree for an HTTP request.
func (r *Router) MatchRequest(req *http.Request) *Match {
	if err := r.Freeze(); err != nil {
		panic(fmt.Sprintf("routing: Freeze: %v", err))
	}
	path := req.URL.Path
	if path == "" {
		path = "/"
	}

	m := r.matchNode(r.root, req, path, nil)
	if m == nil {
		r.logger.Debug("no route matched", "method", req.Method, "path", path)

		return nil
	}
	r.logger.Debug("route matched",
		"method", req.Method, "path", path, "route", m.Endpoint.Name())

	return m
}

// matchNode tries the children of a node against the remaining path, in
// registration order. The first terminal success wins; failed subtrees move
// matching on to the next sibling.
func (r *Router) matchNode(node *Route, req *http.Request, rem string, chain []chainLink) *Match {
	for _, child := range node.children {
		if !child.matchesMethod(req.Method) {
			continue
		}

		if child.IsEndpoint() {
			if child.hasApp() {
				// Embedded applications consume a prefix; the remainder is
				// theirs to route.
				caps, rest, ok := child.compiled.MatchPartial(rem)
				if !ok || !r.passConditions(child, req, caps) {
					continue
				}

				return r.finish(append(chain, chainLink{route: child, captures: caps, rest: rest}))
			}
			caps, format, ok := child.compiled.Match(rem)
			if !ok || !r.passConditions(child, req, caps) {
				continue
			}

			return r.finish(append(chain, chainLink{route: child, captures: caps, format: format}))
		}

		// Inner node or bridge: consume a prefix and descend. A bridge with
		// no matching child fails as a whole even though it matched.
		caps, rest, ok := child.compiled.MatchPartial(rem)
		if !ok || !r.passConditions(child, req, caps) {
			continue
		}
		if m := r.matchNode(child, req, rest, append(chain, chainLink{route: child, captures: caps})); m != nil {
			return m
		}
	}

	return nil
}

// passConditions runs every condition attached to a route, in attachment
// order, with the values captured for that route.
func (r *Router) passConditions(rt *Route, req *http.Request, caps []pattern.Capture) bool {
	if len(rt.conditions) == 0 {
		return true
	}
	captured := NewStash()
	for _, c := range caps {
		if c.Name != "" {
			captured.Set(c.Name, c.Value)
		}
	}
	for _, check := range rt.conditions {
		fn := r.conditions[check.name] // verified at freeze time
		if !fn(rt, req, captured, check.arg) {
			return false
		}
	}

	return true
}

// finish assembles the final stash from a successful chain. Destination
// defaults merge parent-to-child, captures override defaults, and the
// non-inheritable keys "cb" and "app" are taken only from the endpoint.
func (r *Router) finish(links []chainLink) *Match {
	stash := NewStash()
	chain := make([]*Route, len(links))

	for i, link := range links {
		chain[i] = link.route
		last := i == len(links)-1

		link.route.defaults.Each(func(k string, v any) bool {
			if !last && notInherited(k) {
				return true
			}
			stash.Set(k, v)

			return true
		})
		for _, c := range link.captures {
			if c.Name != "" {
				stash.Set(c.Name, c.Value)
			}
		}
		if last {
			if link.format != "" {
				stash.Set(StashFormat, link.format)
			}
			if link.route.hasApp() {
				rest := link.rest
				if rest == "" {
					rest = "/"
				}
				stash.Set(StashPath, rest)
			}
		}
	}

	return &Match{
		Endpoint: chain[len(chain)-1],
		Chain:    chain,
		Stash:    stash,
		router:   r,
	}
}
