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
	"strings"
)

// defaultFormatFragment matches file-extension suffixes when format
// detection is enabled and no explicit format constraint is given.
const defaultFormatFragment = `[0-9a-zA-Z]+`

type tokenOp uint8

const (
	opSlash tokenOp = iota
	opText
	opPlaceholder
)

// token is one element of the parsed pattern. The token stream doubles as
// the reverse template: Render walks it forward, the compiler walks it
// backward to build the matcher.
type token struct {
	op    tokenOp
	text  string // literal text for opText
	index int    // placeholder index for opPlaceholder
}

// Pattern is a compiled path pattern. It is immutable and safe for
// concurrent use once Compile returns.
type Pattern struct {
	source       string
	tokens       []token
	placeholders []*Placeholder
	defaults     map[string]struct{}
	detectFormat bool

	full        *regexp.Regexp // anchored matcher for endpoints
	partial     *regexp.Regexp // prefix matcher for inner nodes, nil when the pattern is all slashes
	formatCheck *regexp.Regexp // anchored allowed-format matcher, nil when unconstrained
}

// Capture is one extracted placeholder value, in pattern order.
type Capture struct {
	Name  string
	Value string
}

type config struct {
	defaults     map[string]struct{}
	constraints  map[string]Constraint
	detectFormat bool
}

// Option configures pattern compilation.
type Option func(*config)

// WithDefaults marks placeholder names that have a default value in the
// route's destination mapping. Such placeholders become optional when
// nothing mandatory follows them: absence yields the default at the routing
// layer instead of a failed match.
func WithDefaults(names ...string) Option {
	return func(c *config) {
		for _, n := range names {
			c.defaults[n] = struct{}{}
		}
	}
}

// WithConstraint restricts what the named placeholder may capture. The
// reserved name "format" constrains the detected file-extension suffix.
func WithConstraint(name string, constraint Constraint) Option {
	return func(c *config) {
		c.constraints[name] = constraint
	}
}

// WithConstraints adds multiple placeholder constraints at once.
func WithConstraints(constraints map[string]Constraint) Option {
	return func(c *config) {
		for name, constraint := range constraints {
			c.constraints[name] = constraint
		}
	}
}

// WithFormat enables or disables detection of a file-extension suffix at
// the end of the pattern. Detection is enabled by default.
func WithFormat(detect bool) Option {
	return func(c *config) {
		c.detectFormat = detect
	}
}

// Compile parses and compiles a path pattern. The pattern is normalized to
// start with a slash. Compilation fails on malformed placeholders,
// duplicate placeholder names, constraints for unknown placeholders and
// unsafe constraint fragments.
func Compile(source string, opts ...Option) (*Pattern, error) {
	cfg := config{
		defaults:     make(map[string]struct{}),
		constraints:  make(map[string]Constraint),
		detectFormat: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if source == "" {
		source = "/"
	}
	if source[0] != '/' {
		source = "/" + source
	}

	p := &Pattern{
		source:       source,
		defaults:     cfg.defaults,
		detectFormat: cfg.detectFormat,
	}
	if err := p.parse(source); err != nil {
		return nil, err
	}
	if err := p.applyConstraints(cfg.constraints); err != nil {
		return nil, err
	}
	if err := p.compile(cfg.constraints); err != nil {
		return nil, err
	}

	return p, nil
}

// MustCompile is like Compile but panics on error. Intended for patterns
// known at program startup.
func MustCompile(source string, opts ...Option) *Pattern {
	p, err := Compile(source, opts...)
	if err != nil {
		panic(fmt.Sprintf("pattern: Compile(%q): %v", source, err))
	}

	return p
}

// parse splits the source into slash, text and placeholder tokens.
func (p *Pattern) parse(source string) error {
	seen := make(map[string]struct{})

	addPlaceholder := func(kind Kind, name string) {
		p.tokens = append(p.tokens, token{op: opPlaceholder, index: len(p.placeholders)})
		p.placeholders = append(p.placeholders, &Placeholder{Name: name, Kind: kind})
	}

	for i := 0; i < len(source); {
		switch ch := source[i]; ch {
		case '/':
			p.tokens = append(p.tokens, token{op: opSlash})
			i++
		case '<':
			end := strings.IndexByte(source[i:], '>')
			if end < 0 {
				return fmt.Errorf("%w: unterminated placeholder in %q", ErrBadPattern, source)
			}
			inner := source[i+1 : i+end]
			kind := Generic
			if inner != "" {
				switch inner[0] {
				case ':':
					inner = inner[1:]
				case '#':
					kind, inner = Relaxed, inner[1:]
				case '*':
					kind, inner = Wildcard, inner[1:]
				}
			}
			if inner != "" {
				if _, dup := seen[inner]; dup {
					return fmt.Errorf("%w: %q in %q", ErrDuplicatePlaceholder, inner, source)
				}
				seen[inner] = struct{}{}
			}
			addPlaceholder(kind, inner)
			i += end + 1
		case ':', '#', '*':
			kind := Generic
			switch ch {
			case '#':
				kind = Relaxed
			case '*':
				kind = Wildcard
			}
			j := i + 1
			for j < len(source) && isNameByte(source[j]) {
				j++
			}
			name := source[i+1 : j]
			if name != "" {
				if _, dup := seen[name]; dup {
					return fmt.Errorf("%w: %q in %q", ErrDuplicatePlaceholder, name, source)
				}
				seen[name] = struct{}{}
			}
			addPlaceholder(kind, name)
			i = j
		default:
			j := i
			for j < len(source) && !strings.ContainsRune("/<:#*", rune(source[j])) {
				j++
			}
			p.tokens = append(p.tokens, token{op: opText, text: source[i:j]})
			i = j
		}
	}

	return nil
}

func isNameByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}

// applyConstraints attaches custom constraints to their placeholders.
// "format" is handled separately during compilation.
func (p *Pattern) applyConstraints(constraints map[string]Constraint) error {
	for name, constraint := range constraints {
		if name == "format" {
			continue
		}
		ph := p.placeholder(name)
		if ph == nil {
			return fmt.Errorf("%w: constraint for unknown placeholder %q in %q",
				ErrBadPattern, name, p.source)
		}
		c := constraint
		ph.constraint = &c
	}

	return nil
}

func (p *Pattern) placeholder(name string) *Placeholder {
	if name == "" {
		return nil
	}
	for _, ph := range p.placeholders {
		if ph.Name == name {
			return ph
		}
	}

	return nil
}

// compile builds the matcher regular expressions. The token stream is
// walked backward so that trailing placeholders with defaults, and whole
// trailing path segments made only of such placeholders, compile to
// optional groups.
func (p *Pattern) compile(constraints map[string]Constraint) error {
	fragments := make([]string, len(p.placeholders))
	for i, ph := range p.placeholders {
		fragment := ph.Kind.fragment()
		if ph.constraint != nil {
			f, err := ph.constraint.fragment()
			if err != nil {
				return fmt.Errorf("placeholder %q: %w", ph.Name, err)
			}
			fragment = f
		}
		check, err := regexp.Compile("^(?:" + fragment + ")$")
		if err != nil {
			return fmt.Errorf("%w: placeholder %q: %v", ErrBadPattern, ph.Name, err)
		}
		ph.check = check
		fragments[i] = fragment
	}

	var body string
	block := ""
	optional := true
	for i := len(p.tokens) - 1; i >= 0; i-- {
		switch tok := p.tokens[i]; tok.op {
		case opSlash:
			if optional {
				body = "(?:/" + block + ")?" + body
			} else {
				body = "/" + block + body
			}
			block, optional = "", true
		case opText:
			block = regexp.QuoteMeta(tok.text) + block
			optional = false
		case opPlaceholder:
			ph := p.placeholders[tok.index]
			fragment := "(" + fragments[tok.index] + ")"
			if _, hasDefault := p.defaults[ph.Name]; hasDefault && optional {
				fragment += "?"
				ph.Optional = true
			} else {
				optional = false
			}
			block = fragment + block
		}
	}
	body = block + body // patterns not starting with a slash

	formatPart := ""
	if p.detectFormat {
		fragment := defaultFormatFragment
		if c, ok := constraints["format"]; ok {
			f, err := c.fragment()
			if err != nil {
				return fmt.Errorf("format: %w", err)
			}
			fragment = f
			check, err := regexp.Compile("^(?:" + fragment + ")$")
			if err != nil {
				return fmt.Errorf("%w: format: %v", ErrBadPattern, err)
			}
			p.formatCheck = check
		}
		formatPart = `(?:\.(` + fragment + `))?`
	}

	full, err := regexp.Compile("^" + body + formatPart + "/?$")
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrBadPattern, p.source, err)
	}
	p.full = full

	if p.hasContent() {
		partial, err := regexp.Compile("^" + body)
		if err != nil {
			return fmt.Errorf("%w: %q: %v", ErrBadPattern, p.source, err)
		}
		p.partial = partial
	}

	return nil
}

// hasContent reports whether the pattern contains anything besides
// slashes. Content-free patterns consume no prefix during partial matching.
func (p *Pattern) hasContent() bool {
	for _, tok := range p.tokens {
		if tok.op != opSlash {
			return true
		}
	}

	return false
}

// Match applies the fully anchored matcher to a path. On success it returns
// the captured placeholder values in pattern order (absent optional
// placeholders are omitted) and the detected format suffix, if any. A
// trailing slash on the path is ignored.
func (p *Pattern) Match(path string) (captures []Capture, format string, ok bool) {
	m := p.full.FindStringSubmatch(path)
	if m == nil {
		return nil, "", false
	}
	for i, ph := range p.placeholders {
		if value := m[i+1]; value != "" {
			captures = append(captures, Capture{Name: ph.Name, Value: value})
		}
	}
	if p.detectFormat {
		format = m[len(p.placeholders)+1]
	}

	return captures, format, true
}

// MatchPartial applies the prefix matcher to a path and returns the
// unmatched remainder for deeper tree nodes. The remainder is either empty
// or starts with a slash; a prefix ending mid-segment does not match.
// Content-free patterns such as "/" consume nothing.
func (p *Pattern) MatchPartial(path string) (captures []Capture, rest string, ok bool) {
	if p.partial == nil {
		return nil, path, true
	}
	m := p.partial.FindStringSubmatchIndex(path)
	if m == nil || m[0] != 0 {
		return nil, "", false
	}
	rest = path[m[1]:]
	if rest != "" && rest[0] != '/' {
		return nil, "", false
	}
	for i, ph := range p.placeholders {
		lo, hi := m[2*(i+1)], m[2*(i+1)+1]
		if lo >= 0 && hi > lo {
			captures = append(captures, Capture{Name: ph.Name, Value: path[lo:hi]})
		}
	}

	return captures, rest, true
}

// Render rebuilds a path from placeholder values, the exact inverse of
// Match. Every non-empty-named placeholder needs a value; values must
// satisfy the placeholder's kind and constraint so that the result is
// guaranteed to match the pattern again. A non-empty format is appended as
// a suffix when format detection is enabled.
func (p *Pattern) Render(values map[string]string, format string) (string, error) {
	var b strings.Builder
	for _, tok := range p.tokens {
		switch tok.op {
		case opSlash:
			b.WriteByte('/')
		case opText:
			b.WriteString(tok.text)
		case opPlaceholder:
			ph := p.placeholders[tok.index]
			value := values[ph.Name]
			if value == "" {
				return "", fmt.Errorf("%w: %q in %q", ErrMissingPlaceholder, ph.Name, p.source)
			}
			if !ph.allows(value) {
				return "", fmt.Errorf("%w: %s=%q in %q",
					ErrConstraintViolation, ph.Name, value, p.source)
			}
			b.WriteString(value)
		}
	}
	out := b.String()

	if format != "" && p.detectFormat {
		if p.formatCheck != nil && !p.formatCheck.MatchString(format) {
			return "", fmt.Errorf("%w: format=%q in %q", ErrConstraintViolation, format, p.source)
		}
		out += "." + format
	}

	return out, nil
}

// Source returns the original pattern text.
func (p *Pattern) Source() string { return p.source }

// String returns the original pattern text.
func (p *Pattern) String() string { return p.source }

// Regexp returns the fully anchored matcher, useful for introspection.
func (p *Pattern) Regexp() *regexp.Regexp { return p.full }

// Placeholders returns the placeholders in pattern order.
func (p *Pattern) Placeholders() []*Placeholder { return p.placeholders }

// DetectsFormat reports whether the pattern recognizes a file-extension
// suffix.
func (p *Pattern) DetectsFormat() bool { return p.detectFormat }

// HasDefault reports whether the named placeholder was compiled with a
// default value.
func (p *Pattern) HasDefault(name string) bool {
	_, ok := p.defaults[name]

	return ok
}
