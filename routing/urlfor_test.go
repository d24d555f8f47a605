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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avnit/mojo/routing/pattern"
)

func TestURLFor(t *testing.T) {
	t.Parallel()

	r := New()
	r.GET("/users/:id").ToAction("users", "show").SetName("user")
	r.MustFreeze()

	path, err := r.URLFor("user", map[string]any{"id": 42})
	require.NoError(t, err)
	assert.Equal(t, "/users/42", path)

	path, err = r.URLFor("user", map[string]any{"id": "42", "format": "json"})
	require.NoError(t, err)
	assert.Equal(t, "/users/42.json", path)

	_, err = r.URLFor("nonexistent", nil)
	assert.ErrorIs(t, err, ErrRouteNotFound)

	_, err = r.URLFor("user", nil)
	assert.ErrorIs(t, err, pattern.ErrMissingPlaceholder)
}

func TestURLForRequiresFrozenRouter(t *testing.T) {
	t.Parallel()

	r := New()
	r.GET("/a").SetName("a").ToAction("a", "a")

	_, err := r.URLFor("a", nil)
	assert.ErrorIs(t, err, ErrRoutesNotFrozen)
}

func TestURLForNestedChain(t *testing.T) {
	t.Parallel()

	r := New()
	org := r.Any("/orgs/:org")
	org.GET("/teams/:team").ToAction("teams", "show").SetName("team")
	r.MustFreeze()

	path, err := r.URLFor("team", map[string]any{"org": "acme", "team": "core"})
	require.NoError(t, err)
	assert.Equal(t, "/orgs/acme/teams/core", path)
}

func TestURLForUsesDefaults(t *testing.T) {
	t.Parallel()

	r := New()
	r.GET("/:msg").To(map[string]any{StashController: "greet", "msg": "hi"}).SetName("greet")
	r.MustFreeze()

	// The default fills the placeholder when no value is supplied.
	path, err := r.URLFor("greet", nil)
	require.NoError(t, err)
	assert.Equal(t, "/hi", path)

	path, err = r.URLFor("greet", map[string]any{"msg": "bye"})
	require.NoError(t, err)
	assert.Equal(t, "/bye", path)
}

func TestURLForConstraintViolation(t *testing.T) {
	t.Parallel()

	r := New()
	r.GET("/users/:id").WhereRegex("id", `\d+`).ToAction("users", "show").SetName("user")
	r.MustFreeze()

	_, err := r.URLFor("user", map[string]any{"id": "abc"})
	assert.ErrorIs(t, err, pattern.ErrConstraintViolation)
}

func TestMatchRoundTrip(t *testing.T) {
	t.Parallel()

	r := New()
	r.GET("/users/:id/posts/:slug").ToAction("posts", "show").SetName("post")

	m := r.Match(http.MethodGet, "/users/42/posts/hello", nil)
	require.NotNil(t, m)

	// Generating the current route from its own captures reproduces the path.
	path, err := m.URLFor("current", nil)
	require.NoError(t, err)
	assert.Equal(t, "/users/42/posts/hello", path)

	// Overrides replace individual captured values.
	path, err = m.URLFor("", map[string]any{"slug": "world"})
	require.NoError(t, err)
	assert.Equal(t, "/users/42/posts/world", path)
}

func TestMatchURLForOtherRoute(t *testing.T) {
	t.Parallel()

	r := New()
	r.GET("/users/:id").ToAction("users", "show").SetName("user")
	r.GET("/users/:id/edit").ToAction("users", "edit").SetName("edit_user")

	m := r.Match(http.MethodGet, "/users/7", nil)
	require.NotNil(t, m)

	// Captured values carry over to other routes sharing placeholder names.
	path, err := m.URLFor("edit_user", nil)
	require.NoError(t, err)
	assert.Equal(t, "/users/7/edit", path)

	_, err = m.URLFor("missing", nil)
	assert.ErrorIs(t, err, ErrRouteNotFound)
}

func TestURLForRootCollapse(t *testing.T) {
	t.Parallel()

	r := New()
	r.GET("/").ToAction("home", "index").SetName("home")
	r.MustFreeze()

	path, err := r.URLFor("home", nil)
	require.NoError(t, err)
	assert.Equal(t, "/", path)
}
