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
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/spf13/cast"
)

// noopLogger is a singleton no-op logger used when no logger is configured.
var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// NoopLogger returns the singleton no-op logger.
func NoopLogger() *slog.Logger { return noopLogger }

// Option defines functional options for router configuration.
type Option func(*Router)

// WithLogger sets the structured logger used for match and dispatch events.
// The default logger discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Router owns a route tree, the condition registry and the named-route
// index for reverse URL generation.
//
// The tree is built during an application's startup phase and frozen before
// the first request: Freeze compiles every pattern, verifies names and
// conditions and makes the tree read-only. Matching never mutates shared
// state afterwards, so a frozen router is safe for concurrent use without
// locking. Mutating a frozen router panics; this is a design constraint to
// prevent data races, not a recoverable condition.
type Router struct {
	root       *Route
	conditions map[string]ConditionFunc
	named      map[string]*Route
	logger     *slog.Logger

	frozen     atomic.Bool
	freezeOnce sync.Once
	freezeErr  error
}

// New creates a router. Construction cannot fail; configuration problems
// such as unsafe constraints or duplicate names surface from Freeze.
func New(opts ...Option) *Router {
	r := &Router{
		conditions: make(map[string]ConditionFunc),
		named:      make(map[string]*Route),
		logger:     noopLogger,
	}
	r.root = newRoute(r, nil, "")
	r.AddCondition("headers", headersCondition)
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Root returns the root route. The root matches nothing itself; requests
// are matched against its children.
func (r *Router) Root() *Route { return r.root }

// Any adds a top-level route matching every HTTP method.
func (r *Router) Any(source string) *Route { return r.root.Any(source) }

// GET adds a top-level route matching GET (and HEAD) requests.
func (r *Router) GET(source string) *Route { return r.root.GET(source) }

// POST adds a top-level route matching POST requests.
func (r *Router) POST(source string) *Route { return r.root.POST(source) }

// PUT adds a top-level route matching PUT requests.
func (r *Router) PUT(source string) *Route { return r.root.PUT(source) }

// DELETE adds a top-level route matching DELETE requests.
func (r *Router) DELETE(source string) *Route { return r.root.DELETE(source) }

// PATCH adds a top-level route matching PATCH requests.
func (r *Router) PATCH(source string) *Route { return r.root.PATCH(source) }

// OPTIONS adds a top-level route matching OPTIONS requests.
func (r *Router) OPTIONS(source string) *Route { return r.root.OPTIONS(source) }

// Under adds a top-level bridge route.
func (r *Router) Under(source string) *Route { return r.root.Under(source) }

// Logger returns the configured logger.
func (r *Router) Logger() *slog.Logger { return r.logger }

// Frozen reports whether the route tree is frozen.
func (r *Router) Frozen() bool { return r.frozen.Load() }

// mustMutable panics when the tree can no longer be modified.
func (r *Router) mustMutable(action string) {
	if r.frozen.Load() {
		panic("routing: cannot " + action + " after router has been frozen.\n" +
			"Routes and conditions must be registered before the first request is handled.")
	}
}

// Freeze compiles every pattern, builds the named-route index and verifies
// attached condition names, then makes the tree immutable. It is safe to
// call from multiple goroutines; all callers observe the same result. The
// first request freezes the router implicitly.
func (r *Router) Freeze() error {
	r.freezeOnce.Do(func() {
		r.freezeErr = r.doFreeze()
		r.frozen.Store(true)
	})

	return r.freezeErr
}

// MustFreeze is like Freeze but panics on configuration errors.
func (r *Router) MustFreeze() {
	if err := r.Freeze(); err != nil {
		panic(fmt.Sprintf("routing: Freeze: %v", err))
	}
}

func (r *Router) doFreeze() error {
	return r.root.walk(0, func(rt *Route, _ int) error {
		if err := rt.compile(); err != nil {
			return err
		}
		for _, check := range rt.conditions {
			if _, ok := r.conditions[check.name]; !ok {
				return fmt.Errorf("route %q: %w: %q", rt.source, ErrUnknownCondition, check.name)
			}
		}
		name := rt.Name()
		if name == "" {
			return nil
		}
		if existing, ok := r.named[name]; ok {
			if rt.customName && existing.customName {
				return fmt.Errorf("%w: %q (%s and %s)",
					ErrDuplicateRouteName, name, existing.source, rt.source)
			}
			// Auto-generated collisions keep the first route registered.
			return nil
		}
		r.named[name] = rt

		return nil
	})
}

// Lookup returns the route registered under a name, or nil. Requires a
// frozen router.
func (r *Router) Lookup(name string) *Route {
	if !r.frozen.Load() {
		return nil
	}

	return r.named[name]
}

// URLFor reconstructs a path for a named route by substituting values into
// the reverse templates along the chain from root to endpoint. Placeholder
// values are taken from the supplied overrides first, then from destination
// defaults along the chain. It fails when a required placeholder has no
// value from any source or a value does not satisfy its constraint.
func (r *Router) URLFor(name string, values map[string]any) (string, error) {
	if !r.frozen.Load() {
		return "", ErrRoutesNotFrozen
	}
	rt, ok := r.named[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrRouteNotFound, name)
	}

	return r.urlFor(rt, values, nil)
}

// urlFor renders the chain root→rt. captured supplies fallback values from
// an in-flight match, consulted after overrides and defaults.
func (r *Router) urlFor(rt *Route, values map[string]any, captured *Stash) (string, error) {
	var chain []*Route
	for n := rt; n != nil && n.parent != nil; n = n.parent {
		chain = append([]*Route{n}, chain...)
	}

	// Merge defaults root→endpoint so child defaults override parent ones.
	defaults := NewStash()
	for _, n := range chain {
		n.defaults.Each(func(k string, v any) bool {
			defaults.Set(k, v)
			return true
		})
	}

	resolve := func(name string) string {
		if v, ok := values[name]; ok {
			return cast.ToString(v)
		}
		if v, ok := defaults.Get(name); ok {
			return cast.ToString(v)
		}
		if captured != nil {
			if v, ok := captured.Get(name); ok {
				return cast.ToString(v)
			}
		}

		return ""
	}

	resolved := make(map[string]string)
	for _, n := range chain {
		for _, ph := range n.compiled.Placeholders() {
			if ph.Name == "" {
				continue
			}
			if v := resolve(ph.Name); v != "" {
				resolved[ph.Name] = v
			}
		}
	}
	format := resolve(StashFormat)

	var b strings.Builder
	for i, n := range chain {
		f := ""
		if i == len(chain)-1 {
			f = format
		}
		part, err := n.compiled.Render(resolved, f)
		if err != nil {
			return "", err
		}
		b.WriteString(part)
	}

	path := b.String()
	if path == "" {
		return "/", nil
	}
	if path != "/" {
		path = strings.TrimSuffix(path, "/")
	}

	return path, nil
}
