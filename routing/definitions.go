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

	"github.com/goccy/go-yaml"

	"github.com/avnit/mojo/routing/pattern"
)

// Definition describes one route declaratively, typically loaded from a
// YAML document. Nested definitions become child routes, so a document
// mirrors the shape of the tree it builds. Callback and embedded-app
// destinations cannot be expressed declaratively; attach those with the
// fluent API after loading.
//
// Example document:
//
//	- pattern: /admin
//	  bridge: true
//	  to: {controller: auth, action: check}
//	  routes:
//	    - pattern: /users/:id
//	      methods: [GET]
//	      name: admin_user
//	      constraints:
//	        id: '\d+'
type Definition struct {
	Pattern     string                   `yaml:"pattern"`
	Methods     []string                 `yaml:"methods"`
	Name        string                   `yaml:"name"`
	Bridge      bool                     `yaml:"bridge"`
	To          map[string]any           `yaml:"to"`
	Constraints map[string]ConstraintDef `yaml:"constraints"`
	Format      *bool                    `yaml:"format"`
	Conditions  []ConditionRef           `yaml:"conditions"`
	Routes      []Definition             `yaml:"routes"`
}

// ConditionRef names a registered condition and its argument.
type ConditionRef struct {
	Name string `yaml:"name"`
	Arg  any    `yaml:"arg"`
}

// ConstraintDef is a placeholder constraint in definition form: either a
// sequence of allowed literal values or a regular expression fragment.
type ConstraintDef struct {
	constraint pattern.Constraint
}

// UnmarshalYAML accepts a sequence of strings as an enumeration or a single
// string as a regular expression fragment.
func (c *ConstraintDef) UnmarshalYAML(data []byte) error {
	var values []string
	if err := yaml.Unmarshal(data, &values); err == nil {
		c.constraint = pattern.Constraint{Values: values}

		return nil
	}
	var fragment string
	if err := yaml.Unmarshal(data, &fragment); err != nil {
		return fmt.Errorf("%w: constraint must be a string or a sequence of strings: %w",
			ErrBadDefinition, err)
	}
	c.constraint = pattern.Constraint{Regex: fragment}

	return nil
}

// ParseDefinitions decodes a YAML document holding a sequence of route
// definitions.
func ParseDefinitions(data []byte) ([]Definition, error) {
	var defs []Definition
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadDefinition, err)
	}

	return defs, nil
}

// AddDefinitions builds routes from definitions under the root, in order.
// Definition errors are reported immediately; pattern errors still surface
// from Freeze, where all compilation happens.
func (r *Router) AddDefinitions(defs ...Definition) error {
	for _, def := range defs {
		if err := def.apply(r.root); err != nil {
			return err
		}
	}

	return nil
}

// AddDefinitions builds child routes from definitions under this route.
func (r *Route) AddDefinitions(defs ...Definition) error {
	for _, def := range defs {
		if err := def.apply(r); err != nil {
			return err
		}
	}

	return nil
}

func (d Definition) apply(parent *Route) error {
	if d.Pattern == "" && !d.Bridge && len(d.Routes) == 0 {
		return fmt.Errorf("%w: definition needs a pattern, a bridge flag or child routes",
			ErrBadDefinition)
	}
	if d.Bridge && len(d.Methods) > 0 {
		return fmt.Errorf("%w: bridge %q cannot have a method filter",
			ErrBadDefinition, d.Pattern)
	}

	var rt *Route
	if d.Bridge {
		rt = parent.Under(d.Pattern)
	} else {
		rt = parent.Any(d.Pattern)
		if len(d.Methods) > 0 {
			rt.Via(d.Methods...)
		}
	}
	if d.Name != "" {
		rt.SetName(d.Name)
	}
	if len(d.To) > 0 {
		rt.To(d.To)
	}
	for name, c := range d.Constraints {
		rt.Where(name, c.constraint)
	}
	if d.Format != nil {
		rt.Format(*d.Format)
	}
	for _, ref := range d.Conditions {
		if ref.Name == "" {
			return fmt.Errorf("%w: condition on %q needs a name",
				ErrBadDefinition, d.Pattern)
		}
		rt.Over(ref.Name, ref.Arg)
	}
	for _, child := range d.Routes {
		if err := child.apply(rt); err != nil {
			return err
		}
	}

	return nil
}
