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

import "errors"

var (
	// ErrRoutesNotFrozen indicates that the route tree has not been frozen
	// yet. Reverse URL generation needs compiled patterns.
	ErrRoutesNotFrozen = errors.New("routes not frozen yet")

	// ErrRouteNotFound indicates that no route with the given name exists.
	ErrRouteNotFound = errors.New("route not found")

	// ErrDuplicateRouteName indicates that two routes carry the same custom
	// name. Names are the keys for reverse URL generation and must be
	// unique.
	ErrDuplicateRouteName = errors.New("duplicate route name")

	// ErrUnknownCondition indicates that a route references a condition
	// name that was never registered.
	ErrUnknownCondition = errors.New("unknown condition")

	// ErrChainBroken is returned by controller actions running as bridge
	// steps to halt further dispatch for the request.
	ErrChainBroken = errors.New("dispatch chain broken")

	// ErrBadDefinition indicates an invalid declarative route definition.
	ErrBadDefinition = errors.New("invalid route definition")

	// ErrControllerNotRegistered indicates that a matched stash resolved to
	// a controller that is not a registered extension point. Dispatch is
	// refused rather than guessed.
	ErrControllerNotRegistered = errors.New("controller not registered")
)
