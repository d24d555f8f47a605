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
	"regexp"
	"strings"

	"github.com/avnit/mojo/routing/pattern"
)

var nonWord = regexp.MustCompile(`\W+`)

// Route is one node in the route tree: a path pattern, an HTTP method
// filter, stash defaults, ordered children and optional name, bridge flag
// and conditions. Registration order among siblings is matching priority;
// when two siblings would match the same request, the first one registered
// wins. A route with children never produces a terminal match itself; only
// childless routes end a match, and bridges always continue into their
// children.
//
// Routes are built with the fluent API before the router is frozen and are
// read-only afterwards, so a frozen tree is safely shared across concurrent
// request matches.
type Route struct {
	router   *Router
	parent   *Route
	children []*Route

	source      string
	compiled    *pattern.Pattern
	methods     []string
	defaults    *Stash
	constraints map[string]pattern.Constraint
	conditions  []conditionCheck

	name       string
	customName bool
	bridge     bool
	format     *bool // nil inherits from the parent; detection defaults to on
}

func newRoute(router *Router, parent *Route, source string) *Route {
	return &Route{
		router:   router,
		parent:   parent,
		source:   source,
		defaults: NewStash(),
	}
}

// child creates and registers a child route.
func (r *Route) child(source string, methods ...string) *Route {
	r.router.mustMutable("add route " + source)
	c := newRoute(r.router, r, source)
	c.methods = methods
	r.children = append(r.children, c)

	return c
}

// Any adds a child route matching every HTTP method.
func (r *Route) Any(source string) *Route { return r.child(source) }

// GET adds a child route matching GET requests. HEAD requests match GET
// routes as well; the dispatcher suppresses the response body.
func (r *Route) GET(source string) *Route { return r.child(source, http.MethodGet) }

// POST adds a child route matching POST requests.
func (r *Route) POST(source string) *Route { return r.child(source, http.MethodPost) }

// PUT adds a child route matching PUT requests.
func (r *Route) PUT(source string) *Route { return r.child(source, http.MethodPut) }

// DELETE adds a child route matching DELETE requests.
func (r *Route) DELETE(source string) *Route { return r.child(source, http.MethodDelete) }

// PATCH adds a child route matching PATCH requests.
func (r *Route) PATCH(source string) *Route { return r.child(source, http.MethodPatch) }

// OPTIONS adds a child route matching OPTIONS requests.
func (r *Route) OPTIONS(source string) *Route { return r.child(source, http.MethodOptions) }

// Under adds a bridge child route. A bridge always matches and continues
// dispatch into its children; it never terminates a match on its own, and
// when none of its children match the overall result is no-match even
// though the bridge itself matched. At dispatch time the bridge's own
// destination runs before its children and must signal continuation.
//
// Example:
//
//	auth := r.Under("/admin").To(map[string]any{"cb": routing.BridgeFunc(checkLogin)})
//	auth.GET("/users").To(map[string]any{"controller": "admin", "action": "users"})
func (r *Route) Under(source string) *Route {
	c := r.child(source)
	c.bridge = true

	return c
}

// Via restricts the HTTP methods this route matches. An empty filter
// matches any method.
func (r *Route) Via(methods ...string) *Route {
	r.router.mustMutable("change methods of " + r.source)
	r.methods = r.methods[:0]
	for _, m := range methods {
		r.methods = append(r.methods, strings.ToUpper(m))
	}

	return r
}

// To merges values into the route's destination mapping (stash defaults).
// Defaults are inherited down the tree and overridden by child routes and
// captured placeholder values; the reserved keys "cb" and "app" apply only
// to the route that sets them.
func (r *Route) To(defaults map[string]any) *Route {
	r.router.mustMutable("change destination of " + r.source)
	for k, v := range defaults {
		r.defaults.Set(k, v)
	}

	return r
}

// ToAction is shorthand for destination controller and action keys.
func (r *Route) ToAction(controller, action string) *Route {
	return r.To(map[string]any{StashController: controller, StashAction: action})
}

// ToCallback sets a callback destination bypassing controller dispatch.
func (r *Route) ToCallback(cb HandlerFunc) *Route {
	return r.To(map[string]any{StashCallback: cb})
}

// ToApp embeds a handler as the destination. The remainder of the request
// path is passed to the embedded application in the "path" stash value, so
// the route matches like a prefix rather than a full pattern.
func (r *Route) ToApp(app http.Handler) *Route {
	return r.To(map[string]any{StashApp: app})
}

// Where restricts what a placeholder may capture: an enumeration of
// allowed literal values or a regular expression fragment. Fragments
// containing anchors or capturing groups are rejected when the router is
// frozen, as a configuration error rather than a per-request one.
func (r *Route) Where(name string, constraint pattern.Constraint) *Route {
	r.router.mustMutable("add constraint to " + r.source)
	if r.constraints == nil {
		r.constraints = make(map[string]pattern.Constraint)
	}
	r.constraints[name] = constraint

	return r
}

// WhereValues restricts a placeholder to an enumeration of literal values.
func (r *Route) WhereValues(name string, values ...string) *Route {
	return r.Where(name, pattern.Constraint{Values: values})
}

// WhereRegex restricts a placeholder with a regular expression fragment.
func (r *Route) WhereRegex(name, fragment string) *Route {
	return r.Where(name, pattern.Constraint{Regex: fragment})
}

// Over attaches a registered condition to the route. All attached
// conditions must pass, in attachment order, for the route to match. The
// condition name is resolved when the router freezes; an unknown name is a
// configuration error.
func (r *Route) Over(condition string, arg any) *Route {
	r.router.mustMutable("add condition to " + r.source)
	r.conditions = append(r.conditions, conditionCheck{name: condition, arg: arg})

	return r
}

// SetName assigns a name for reverse URL generation and introspection.
// Custom names must be unique across the tree, verified at freeze time.
// Unnamed routes receive an automatic name: the pattern with non-word
// characters stripped.
func (r *Route) SetName(name string) *Route {
	r.router.mustMutable("rename route " + r.source)
	r.name = name
	r.customName = true

	return r
}

// Format enables or disables detection of a file-extension suffix at the
// end of this route. The setting is inherited by descendant routes and may
// be selectively re-enabled below a route that disabled it. Detection is on
// by default.
func (r *Route) Format(detect bool) *Route {
	r.router.mustMutable("change format detection of " + r.source)
	r.format = &detect

	return r
}

// Name returns the route name: the custom name if one was set, otherwise
// the automatic name derived from the pattern.
func (r *Route) Name() string {
	if r.name != "" || r.customName {
		return r.name
	}

	return nonWord.ReplaceAllString(r.source, "")
}

// Pattern returns the route's own pattern text.
func (r *Route) Pattern() string { return r.source }

// Methods returns the method filter; empty means any method.
func (r *Route) Methods() []string { return r.methods }

// IsBridge reports whether the route is a bridge.
func (r *Route) IsBridge() bool { return r.bridge }

// IsEndpoint reports whether the route is capable of producing a terminal
// match: it has no children and is not a bridge.
func (r *Route) IsEndpoint() bool { return len(r.children) == 0 && !r.bridge }

// Children returns the child routes in registration order.
func (r *Route) Children() []*Route { return r.children }

// Parent returns the parent route, or nil for the root.
func (r *Route) Parent() *Route { return r.parent }

// Defaults returns the route's destination mapping.
func (r *Route) Defaults() *Stash { return r.defaults }

// hasApp reports whether the route's own destination embeds an application.
func (r *Route) hasApp() bool { return r.defaults.Has(StashApp) }

// matchesMethod applies the method filter. GET and HEAD are equivalent for
// matching purposes; the dispatcher suppresses HEAD response bodies.
func (r *Route) matchesMethod(method string) bool {
	if len(r.methods) == 0 {
		return true
	}
	for _, m := range r.methods {
		if m == method {
			return true
		}
		if method == http.MethodHead && m == http.MethodGet {
			return true
		}
	}

	return false
}

// detectsFormat resolves the inherited format-detection flag.
func (r *Route) detectsFormat() bool {
	for n := r; n != nil; n = n.parent {
		if n.format != nil {
			return *n.format
		}
	}

	return true
}

// compile builds the route's pattern matcher. Placeholders whose names have
// defaults in the route's own destination mapping become optional.
func (r *Route) compile() error {
	opts := []pattern.Option{
		pattern.WithDefaults(r.defaults.Keys()...),
		pattern.WithFormat(r.detectsFormat()),
	}
	if len(r.constraints) > 0 {
		opts = append(opts, pattern.WithConstraints(r.constraints))
	}
	p, err := pattern.Compile(r.source, opts...)
	if err != nil {
		return fmt.Errorf("route %q: %w", r.source, err)
	}
	r.compiled = p

	return nil
}

// walk visits the subtree in depth-first registration order, the same order
// the matcher uses.
func (r *Route) walk(depth int, fn func(route *Route, depth int) error) error {
	for _, c := range r.children {
		if err := fn(c, depth); err != nil {
			return err
		}
		if err := c.walk(depth+1, fn); err != nil {
			return err
		}
	}

	return nil
}
