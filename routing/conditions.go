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
	"net/http"
	"regexp"
)

// ConditionFunc is a pluggable predicate consulted during matching in
// addition to pattern and method. It receives the candidate route, the
// request, the values captured so far for that route, and the argument the
// route was configured with. Returning false moves matching on to the next
// sibling.
//
// Conditions registered on a router are treated as read-only after the
// first request and must be safe for concurrent use.
type ConditionFunc func(route *Route, req *http.Request, captures *Stash, arg any) bool

// conditionCheck is one condition attached to a route via Over.
type conditionCheck struct {
	name string
	arg  any
}

// AddCondition registers a named condition. Registering a name twice
// replaces the previous predicate. Conditions must be registered before the
// router is frozen; afterwards AddCondition panics, matching the rule that
// the tree is build-once-then-read-only.
func (r *Router) AddCondition(name string, fn ConditionFunc) {
	r.mustMutable("register condition " + name)
	r.conditions[name] = fn
}

// headersCondition is the builtin "headers" condition. Its argument is a
// map of header names to expected values; a value may be a string (exact
// match) or a *regexp.Regexp.
//
// Example:
//
//	r.GET("/api").Over("headers", map[string]any{
//	    "X-API-Key": regexp.MustCompile(`^[0-9a-f]{32}$`),
//	}).To(map[string]any{"controller": "api", "action": "index"})
func headersCondition(_ *Route, req *http.Request, _ *Stash, arg any) bool {
	want, ok := arg.(map[string]any)
	if !ok {
		return false
	}
	for name, expected := range want {
		got := req.Header.Get(name)
		if got == "" {
			return false
		}
		switch e := expected.(type) {
		case string:
			if got != e {
				return false
			}
		case *regexp.Regexp:
			if !e.MatchString(got) {
				return false
			}
		default:
			return false
		}
	}

	return true
}
