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

package pattern

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Kind classifies a placeholder by the characters it refuses to capture.
// The three kinds form a closed set; there is no open-ended dispatch on
// placeholder type anywhere in the matcher.
type Kind uint8

const (
	// Generic placeholders (":name") exclude the path separator and the
	// format separator, so a capture never crosses a segment or swallows a
	// file extension.
	Generic Kind = iota

	// Relaxed placeholders ("#name") exclude the path separator only. The
	// capture keeps dots, which is useful for full file names.
	Relaxed

	// Wildcard placeholders ("*name") exclude nothing and may span multiple
	// path segments.
	Wildcard
)

// String returns the human-readable kind name.
func (k Kind) String() string {
	switch k {
	case Generic:
		return "generic"
	case Relaxed:
		return "relaxed"
	case Wildcard:
		return "wildcard"
	default:
		return "unknown"
	}
}

// sigil returns the pattern syntax prefix for the kind.
func (k Kind) sigil() byte {
	switch k {
	case Relaxed:
		return '#'
	case Wildcard:
		return '*'
	default:
		return ':'
	}
}

// fragment returns the default regular expression fragment for the kind,
// used when a placeholder carries no custom constraint.
func (k Kind) fragment() string {
	switch k {
	case Relaxed:
		return `[^/]+`
	case Wildcard:
		return `.+`
	default:
		return `[^/.]+`
	}
}

// Placeholder is a named slot within a pattern. The name may be empty, in
// which case the capture still constrains matching but is discarded rather
// than stashed, and the placeholder cannot be reversed by Render.
type Placeholder struct {
	Name     string
	Kind     Kind
	Optional bool // set during compilation when the name has a default

	constraint *Constraint
	check      *regexp.Regexp // anchored matcher for render-side validation
}

// String returns the placeholder in pattern syntax.
func (p *Placeholder) String() string { return string(p.Kind.sigil()) + p.Name }

// Constrained reports whether the placeholder carries a custom constraint.
func (p *Placeholder) Constrained() bool { return p.constraint != nil }

// allows reports whether a concrete value could have been captured by this
// placeholder. Used by Render to refuse values that would not round-trip.
func (p *Placeholder) allows(value string) bool {
	if value == "" {
		return false
	}
	return p.check.MatchString(value)
}

// Constraint restricts what a placeholder may capture: either an explicit
// enumeration of allowed literal values, or a custom regular expression
// fragment. Exactly one of the two should be set.
type Constraint struct {
	// Values enumerates allowed literals. Longer values take precedence
	// during matching so that overlapping literals behave predictably.
	Values []string

	// Regex is a regular expression fragment spliced into the compiled
	// pattern. It must not contain anchors or capturing groups.
	Regex string
}

// fragment builds the regular expression fragment for the constraint.
func (c Constraint) fragment() (string, error) {
	if len(c.Values) > 0 {
		quoted := make([]string, len(c.Values))
		for i, v := range c.Values {
			quoted[i] = regexp.QuoteMeta(v)
		}
		// Longest first: Go regexp alternation is leftmost-first for
		// submatches, so "foobar" must come before "foo".
		sort.Slice(quoted, func(i, j int) bool { return len(quoted[i]) > len(quoted[j]) })

		return "(?:" + strings.Join(quoted, "|") + ")", nil
	}
	if c.Regex == "" {
		return "", ErrEmptyConstraint
	}
	if err := checkFragment(c.Regex); err != nil {
		return "", err
	}

	return "(?:" + c.Regex + ")", nil
}

// checkFragment rejects regular expression fragments that would corrupt the
// surrounding pattern: anchors change what the whole route matches, and
// capturing groups shift the group numbering used for placeholder
// extraction. Non-capturing groups "(?:" remain allowed.
func checkFragment(fragment string) error {
	escaped := false
	for i := 0; i < len(fragment); i++ {
		ch := fragment[i]
		if escaped {
			// \A and \z are anchors in disguise.
			if ch == 'A' || ch == 'z' {
				return fmt.Errorf("%w: %q", ErrUnsafeConstraint, fragment)
			}
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			escaped = true
		case '^', '$':
			return fmt.Errorf("%w: %q", ErrUnsafeConstraint, fragment)
		case '(':
			if !strings.HasPrefix(fragment[i+1:], "?:") {
				return fmt.Errorf("%w: %q", ErrUnsafeConstraint, fragment)
			}
		}
	}

	return nil
}
