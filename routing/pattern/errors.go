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

import "errors"

var (
	// ErrBadPattern indicates that a pattern could not be parsed,
	// for example an unterminated "<...>" placeholder.
	ErrBadPattern = errors.New("malformed pattern")

	// ErrDuplicatePlaceholder indicates that two placeholders in the same
	// pattern share a non-empty name.
	ErrDuplicatePlaceholder = errors.New("duplicate placeholder name")

	// ErrUnsafeConstraint indicates that a user-supplied constraint fragment
	// contains anchors or capturing groups. Fragments are spliced into a
	// larger expression, so these metacharacters are a configuration error.
	ErrUnsafeConstraint = errors.New("constraint contains anchor or capturing group")

	// ErrEmptyConstraint indicates a constraint with neither allowed values
	// nor a regex fragment.
	ErrEmptyConstraint = errors.New("constraint has no values and no regex")

	// ErrMissingPlaceholder indicates that Render had no value for a
	// required placeholder.
	ErrMissingPlaceholder = errors.New("missing value for placeholder")

	// ErrConstraintViolation indicates that a value supplied to Render does
	// not satisfy the placeholder's kind or constraint.
	ErrConstraintViolation = errors.New("value does not satisfy placeholder constraint")
)
