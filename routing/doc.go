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

// Package routing provides a tree-based HTTP router with placeholder
// patterns, nested bridge routes, named conditions and reversible URL
// generation.
//
// Routes form a tree. Inner nodes consume a prefix of the request path and
// pass the remainder to their children; childless routes terminate a match.
// Bridges are inner nodes whose own destination runs before their children
// at dispatch time, which is how authentication gates and similar
// middleware-style checks are expressed. Matching walks the tree in
// registration order and the first terminal success wins.
//
// A successful match produces a per-request stash: destination defaults
// merged parent to child, overridden by values captured from placeholders
// in the path. The dispatcher resolves the stash to a destination — a
// callback, an embedded http.Handler or a registered controller action —
// and runs the chain.
//
// Basic usage:
//
//	r := routing.New()
//	r.GET("/users/:id").ToAction("users", "show").SetName("user")
//
//	auth := r.Under("/admin").To(map[string]any{"cb": routing.BridgeFunc(checkLogin)})
//	auth.GET("/dashboard").ToAction("admin", "dashboard")
//
//	d := routing.NewDispatcher(r)
//	d.RegisterController("users", usersController)
//	d.RegisterController("admin", adminController)
//	http.ListenAndServe(":8080", d)
//
// Every pattern is reversible. URLFor rebuilds the path of a named route
// from supplied values, falling back to destination defaults, so matching
// and generation stay consistent by construction:
//
//	path, err := r.URLFor("user", map[string]any{"id": 42}) // "/users/42"
//
// The route tree is mutable only during startup. The first request, or an
// explicit Freeze, compiles every pattern and makes the tree read-only;
// afterwards matching is lock-free and safe for concurrent use.
package routing
