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

// Package pattern compiles path patterns with named placeholders into
// matchers and reverse templates.
//
// A pattern is a path template with three placeholder flavors:
//
//   - :name  generic, matches everything but "/" and "."
//   - #name  relaxed, matches everything but "/"
//   - *name  wildcard, matches everything including "/"
//
// Placeholders can also be written in angle brackets when they need to be
// separated from surrounding text, e.g. "/v<:major>.<:minor>". Compilation
// produces two artifacts from the same token stream:
//
//  1. A regular expression with one capturing group per placeholder. Two
//     variants exist: a fully anchored matcher for endpoint routes and a
//     prefix matcher for inner tree nodes that reports the unmatched
//     remainder of the path.
//  2. A reverse template used by Render to rebuild a path from values,
//     making the compiler and generator exact inverses of each other.
//
// A trailing slash is always optional in the compiled matcher. Placeholders
// become optional when their name carries a default value and nothing
// mandatory follows them in the pattern; a missing optional placeholder
// yields the default at the routing layer instead of a failed match.
//
// Custom constraints restrict what a placeholder may capture, either as an
// enumeration of allowed literals or as a regular expression fragment.
// Fragments are spliced into the compiled expression, so capturing groups
// and anchors are rejected at build time rather than silently corrupting
// group numbering.
//
// Example:
//
//	p, err := pattern.Compile("/users/:id/files/*path",
//	    pattern.WithConstraint("id", pattern.Constraint{Regex: `\d+`}),
//	)
//	caps, format, ok := p.Match("/users/42/files/docs/readme.txt")
package pattern
