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
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticMatch(t *testing.T) {
	t.Parallel()

	r := New()
	r.GET("/foo").ToAction("foo", "index")

	m := r.Match(http.MethodGet, "/foo", nil)
	require.NotNil(t, m)
	assert.Equal(t, "foo", m.Stash.String(StashController))
	assert.Equal(t, "index", m.Stash.String(StashAction))

	assert.Nil(t, r.Match(http.MethodGet, "/bar", nil))
	assert.Nil(t, r.Match(http.MethodPost, "/foo", nil))
}

func TestNestedRoutes(t *testing.T) {
	t.Parallel()

	r := New()
	foo := r.Any("/foo").To(map[string]any{StashController: "foo"})
	foo.GET("/bar").To(map[string]any{StashAction: "bar"})
	foo.GET("/baz").To(map[string]any{StashAction: "baz"})

	m := r.Match(http.MethodGet, "/foo/bar", nil)
	require.NotNil(t, m)
	assert.Equal(t, "foo", m.Stash.String(StashController))
	assert.Equal(t, "bar", m.Stash.String(StashAction))
	require.Len(t, m.Chain, 2)
	assert.Same(t, foo, m.Chain[0])

	m = r.Match(http.MethodGet, "/foo/baz", nil)
	require.NotNil(t, m)
	assert.Equal(t, "baz", m.Stash.String(StashAction))

	// A route with children never terminates a match itself.
	assert.Nil(t, r.Match(http.MethodGet, "/foo", nil))
}

func TestFirstRegisteredWins(t *testing.T) {
	t.Parallel()

	r := New()
	r.GET("/users/:id").ToAction("users", "show").SetName("by_id")
	r.GET("/users/me").ToAction("users", "me").SetName("me")

	m := r.Match(http.MethodGet, "/users/me", nil)
	require.NotNil(t, m)
	assert.Equal(t, "by_id", m.Endpoint.Name())
	assert.Equal(t, "me", m.Stash.String("id"))
}

func TestPlaceholderCapture(t *testing.T) {
	t.Parallel()

	r := New()
	r.GET("/users/:id/posts/:slug").ToAction("posts", "show")

	m := r.Match(http.MethodGet, "/users/42/posts/hello", nil)
	require.NotNil(t, m)
	assert.Equal(t, "42", m.Stash.String("id"))
	assert.Equal(t, "hello", m.Stash.String("slug"))
	assert.Equal(t, 42, m.Stash.Int("id"))
}

func TestCapturesOverrideDefaults(t *testing.T) {
	t.Parallel()

	r := New()
	r.GET("/:action").To(map[string]any{StashController: "pages", StashAction: "index"})

	m := r.Match(http.MethodGet, "/about", nil)
	require.NotNil(t, m)
	assert.Equal(t, "about", m.Stash.String(StashAction))

	// The default fills in when the optional placeholder is absent.
	m = r.Match(http.MethodGet, "/", nil)
	require.NotNil(t, m)
	assert.Equal(t, "index", m.Stash.String(StashAction))
}

func TestOptionalPlaceholderDefault(t *testing.T) {
	t.Parallel()

	r := New()
	r.GET("/:mymessage").To(map[string]any{StashController: "greet", "mymessage": "hi"})

	m := r.Match(http.MethodGet, "/", nil)
	require.NotNil(t, m)
	assert.Equal(t, "hi", m.Stash.String("mymessage"))

	m = r.Match(http.MethodGet, "/bye", nil)
	require.NotNil(t, m)
	assert.Equal(t, "bye", m.Stash.String("mymessage"))
}

func TestChildDefaultsOverrideParent(t *testing.T) {
	t.Parallel()

	r := New()
	api := r.Any("/api").To(map[string]any{StashController: "api", "version": "1"})
	api.GET("/v2/status").To(map[string]any{StashAction: "status", "version": "2"})

	m := r.Match(http.MethodGet, "/api/v2/status", nil)
	require.NotNil(t, m)
	assert.Equal(t, "api", m.Stash.String(StashController))
	assert.Equal(t, "2", m.Stash.String("version"))
}

func TestCallbackNotInherited(t *testing.T) {
	t.Parallel()

	r := New()
	cb := HandlerFunc(func(*Context) {})
	auth := r.Under("/admin").To(map[string]any{StashCallback: cb})
	auth.GET("/users").ToAction("admin", "users")

	m := r.Match(http.MethodGet, "/admin/users", nil)
	require.NotNil(t, m)
	assert.False(t, m.Stash.Has(StashCallback),
		"bridge callbacks must not leak into the endpoint stash")
	assert.Equal(t, "admin", m.Stash.String(StashController))
}

func TestMethodFilter(t *testing.T) {
	t.Parallel()

	r := New()
	r.GET("/things").ToAction("things", "list").SetName("list")
	r.POST("/things").ToAction("things", "create").SetName("create")
	r.Any("/misc").Via("PUT", "delete").ToAction("misc", "change").SetName("change")

	m := r.Match(http.MethodGet, "/things", nil)
	require.NotNil(t, m)
	assert.Equal(t, "list", m.Endpoint.Name())

	m = r.Match(http.MethodPost, "/things", nil)
	require.NotNil(t, m)
	assert.Equal(t, "create", m.Endpoint.Name())

	// Via uppercases and allows several methods.
	require.NotNil(t, r.Match(http.MethodPut, "/misc", nil))
	require.NotNil(t, r.Match(http.MethodDelete, "/misc", nil))
	assert.Nil(t, r.Match(http.MethodGet, "/misc", nil))
}

func TestHeadMatchesGet(t *testing.T) {
	t.Parallel()

	r := New()
	r.GET("/page").ToAction("pages", "show")

	assert.NotNil(t, r.Match(http.MethodHead, "/page", nil))
	assert.Nil(t, r.Match(http.MethodHead, "/missing", nil))
}

func TestBridgeSemantics(t *testing.T) {
	t.Parallel()

	r := New()
	admin := r.Under("/admin").To(map[string]any{StashNamespace: "back"})
	admin.GET("/dash").ToAction("admin", "dash")

	m := r.Match(http.MethodGet, "/admin/dash", nil)
	require.NotNil(t, m)
	require.Len(t, m.Chain, 2)
	assert.True(t, m.Chain[0].IsBridge())
	assert.Equal(t, "back", m.Stash.String(StashNamespace))

	// The bridge matched but no child did: the whole subtree fails.
	assert.Nil(t, r.Match(http.MethodGet, "/admin/other", nil))
	assert.Nil(t, r.Match(http.MethodGet, "/admin", nil))
}

func TestBridgeFailureFallsThroughToSiblings(t *testing.T) {
	t.Parallel()

	r := New()
	gated := r.Under("/files")
	gated.Over("headers", map[string]any{"X-Secret": "letmein"})
	gated.GET("/:name").ToAction("private", "fetch")
	r.GET("/files/public").ToAction("public", "fetch")

	// Condition passes: the bridge's subtree wins, it registered first.
	h := http.Header{}
	h.Set("X-Secret", "letmein")
	m := r.Match(http.MethodGet, "/files/public", h)
	require.NotNil(t, m)
	assert.Equal(t, "private", m.Stash.String(StashController))

	// Condition fails: matching moves on to the next sibling.
	m = r.Match(http.MethodGet, "/files/public", nil)
	require.NotNil(t, m)
	assert.Equal(t, "public", m.Stash.String(StashController))
}

func TestFormatDetection(t *testing.T) {
	t.Parallel()

	r := New()
	r.GET("/data").ToAction("data", "get")

	m := r.Match(http.MethodGet, "/data.json", nil)
	require.NotNil(t, m)
	assert.Equal(t, "json", m.Stash.String(StashFormat))

	m = r.Match(http.MethodGet, "/data", nil)
	require.NotNil(t, m)
	assert.False(t, m.Stash.Has(StashFormat))
}

func TestFormatInheritance(t *testing.T) {
	t.Parallel()

	r := New()
	plain := r.Any("/plain").Format(false)
	plain.GET("/a").ToAction("c", "a")
	plain.GET("/b").Format(true).ToAction("c", "b")

	// Disabled on the parent, inherited by the first child.
	assert.Nil(t, r.Match(http.MethodGet, "/plain/a.json", nil))
	require.NotNil(t, r.Match(http.MethodGet, "/plain/a", nil))

	// Re-enabled selectively below.
	m := r.Match(http.MethodGet, "/plain/b.json", nil)
	require.NotNil(t, m)
	assert.Equal(t, "json", m.Stash.String(StashFormat))
}

func TestConstraints(t *testing.T) {
	t.Parallel()

	r := New()
	r.GET("/users/:id").WhereRegex("id", `\d+`).ToAction("users", "show")
	r.GET("/fruit/:name").WhereValues("name", "apple", "banana").ToAction("fruit", "show")

	require.NotNil(t, r.Match(http.MethodGet, "/users/42", nil))
	assert.Nil(t, r.Match(http.MethodGet, "/users/abc", nil))

	require.NotNil(t, r.Match(http.MethodGet, "/fruit/apple", nil))
	assert.Nil(t, r.Match(http.MethodGet, "/fruit/kiwi", nil))
}

func TestUnsafeConstraintSurfacesFromFreeze(t *testing.T) {
	t.Parallel()

	r := New()
	r.GET("/users/:id").WhereRegex("id", `^(\d+)$`).ToAction("users", "show")

	err := r.Freeze()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "id")
}

func TestFreezeSemantics(t *testing.T) {
	t.Parallel()

	r := New()
	r.GET("/a").ToAction("a", "a")

	require.False(t, r.Frozen())
	require.NoError(t, r.Freeze())
	require.True(t, r.Frozen())

	// Freeze is idempotent and mutation panics afterwards.
	require.NoError(t, r.Freeze())
	assert.Panics(t, func() { r.GET("/b") })
	assert.Panics(t, func() { r.AddCondition("x", nil) })
	assert.Panics(t, func() { r.Lookup("a").SetName("other") })
}

func TestMatchFreezesImplicitly(t *testing.T) {
	t.Parallel()

	r := New()
	r.GET("/a").ToAction("a", "a")

	require.NotNil(t, r.Match(http.MethodGet, "/a", nil))
	assert.True(t, r.Frozen())
}

func TestDuplicateCustomNames(t *testing.T) {
	t.Parallel()

	r := New()
	r.GET("/a").SetName("thing").ToAction("a", "a")
	r.GET("/b").SetName("thing").ToAction("b", "b")

	assert.ErrorIs(t, r.Freeze(), ErrDuplicateRouteName)
}

func TestAutomaticNames(t *testing.T) {
	t.Parallel()

	r := New()
	r.GET("/users/:id").ToAction("users", "show")
	r.MustFreeze()

	rt := r.Lookup("usersid")
	require.NotNil(t, rt)
	assert.Equal(t, "/users/:id", rt.Pattern())
}

func TestUnknownConditionSurfacesFromFreeze(t *testing.T) {
	t.Parallel()

	r := New()
	r.GET("/a").Over("nonexistent", nil).ToAction("a", "a")

	assert.ErrorIs(t, r.Freeze(), ErrUnknownCondition)
}

func TestConcurrentMatch(t *testing.T) {
	t.Parallel()

	r := New()
	r.GET("/users/:id").ToAction("users", "show")
	r.MustFreeze()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m := r.Match(http.MethodGet, "/users/7", nil)
				if m == nil || m.Stash.String("id") != "7" {
					t.Error("concurrent match failed")

					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestEmptyPathNormalizedToRoot(t *testing.T) {
	t.Parallel()

	r := New()
	r.GET("/").ToAction("home", "index")

	m := r.Match(http.MethodGet, "", nil)
	require.NotNil(t, m)
	assert.Equal(t, "home", m.Stash.String(StashController))
}
