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

import "github.com/spf13/cast"

// Reserved stash keys consumed by the dispatcher.
const (
	// StashController names the controller handling the request.
	StashController = "controller"

	// StashAction names the controller action to invoke.
	StashAction = "action"

	// StashNamespace prefixes the controller name during lookup.
	StashNamespace = "namespace"

	// StashCallback holds a callback that bypasses controller dispatch.
	// Not inherited by child routes.
	StashCallback = "cb"

	// StashFormat holds the detected file-extension suffix.
	StashFormat = "format"

	// StashApp holds an embedded http.Handler taking over dispatch.
	// Not inherited by child routes.
	StashApp = "app"

	// StashPath holds the remaining path passed to an embedded application.
	StashPath = "path"
)

// notInherited reports whether a destination key applies only to the route
// that sets it, never to descendants.
func notInherited(key string) bool {
	return key == StashCallback || key == StashApp
}

// Stash is an ordered-insertion key-value mapping holding the accumulated
// result of route matching. Every request owns its own Stash; it is created
// empty at dispatch start, populated from route destinations and captured
// placeholder values, and lives until response generation completes.
//
// A Stash is not safe for concurrent use; it belongs to a single request.
type Stash struct {
	keys   []string
	values map[string]any
}

// NewStash creates an empty stash.
func NewStash() *Stash {
	return &Stash{values: make(map[string]any)}
}

// Set stores a value. Updating an existing key keeps its original insertion
// position. Returns the stash for chaining.
func (s *Stash) Set(key string, value any) *Stash {
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value

	return s
}

// Get returns the value for a key and whether it is present.
func (s *Stash) Get(key string) (any, bool) {
	v, ok := s.values[key]

	return v, ok
}

// Has reports whether the key is present.
func (s *Stash) Has(key string) bool {
	_, ok := s.values[key]

	return ok
}

// Value returns the raw value for a key, or nil.
func (s *Stash) Value(key string) any { return s.values[key] }

// String returns the value for a key coerced to a string.
func (s *Stash) String(key string) string { return cast.ToString(s.values[key]) }

// Int returns the value for a key coerced to an int.
func (s *Stash) Int(key string) int { return cast.ToInt(s.values[key]) }

// Bool returns the value for a key coerced to a bool.
func (s *Stash) Bool(key string) bool { return cast.ToBool(s.values[key]) }

// Delete removes a key.
func (s *Stash) Delete(key string) {
	if _, ok := s.values[key]; !ok {
		return
	}
	delete(s.values, key)
	for i, k := range s.keys {
		if k == key {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order. The slice is a copy.
func (s *Stash) Keys() []string {
	keys := make([]string, len(s.keys))
	copy(keys, s.keys)

	return keys
}

// Len returns the number of keys.
func (s *Stash) Len() int { return len(s.keys) }

// Clone returns an independent copy preserving insertion order.
func (s *Stash) Clone() *Stash {
	c := &Stash{
		keys:   make([]string, len(s.keys)),
		values: make(map[string]any, len(s.values)),
	}
	copy(c.keys, s.keys)
	for k, v := range s.values {
		c.values[k] = v
	}

	return c
}

// Each calls fn for every key in insertion order until fn returns false.
func (s *Stash) Each(fn func(key string, value any) bool) {
	for _, k := range s.keys {
		if !fn(k, s.values[k]) {
			return
		}
	}
}
