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
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Controller is the extension point for controller/action destinations.
// Act dispatches the named action for the request; returning ErrChainBroken
// from a bridge step halts further dispatch for that request.
type Controller interface {
	Act(c *Context, action string) error
}

// ControllerFunc adapts a function to the Controller interface.
type ControllerFunc func(c *Context, action string) error

// Act calls the function.
func (f ControllerFunc) Act(c *Context, action string) error { return f(c, action) }

// DispatcherOption defines functional options for dispatcher configuration.
type DispatcherOption func(*Dispatcher)

// WithNotFound sets the handler invoked when no route matches or when
// dispatch is refused. The default is http.NotFound.
func WithNotFound(h http.HandlerFunc) DispatcherOption {
	return func(d *Dispatcher) {
		if h != nil {
			d.notFound = h
		}
	}
}

// Dispatcher turns a Router into an http.Handler. It resolves the merged
// stash of a match to a destination — a "cb" callback, an embedded "app"
// handler, or a registered controller and action — and runs bridge steps
// top-down before the endpoint.
//
// A destination controller must be registered with RegisterController;
// anything else is refused with the not-found handler rather than guessed.
type Dispatcher struct {
	router      *Router
	controllers map[string]Controller
	notFound    http.HandlerFunc
	obs         *observability
	serving     atomic.Bool
	pool        sync.Pool
}

// NewDispatcher creates a dispatcher for a router.
func NewDispatcher(r *Router, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		router:      r,
		controllers: make(map[string]Controller),
		notFound:    http.NotFound,
	}
	d.pool.New = func() any { return &Context{} }
	for _, opt := range opts {
		opt(d)
	}

	return d
}

// RegisterController registers a named controller. The name is what stash
// "controller" values resolve against, prefixed with "namespace" and a dot
// when a namespace is set. Controllers must be registered before the first
// request; afterwards RegisterController panics.
func (d *Dispatcher) RegisterController(name string, ctrl Controller) {
	if d.serving.Load() {
		panic("routing: cannot register controller " + name + " after dispatcher has started serving")
	}
	d.controllers[name] = ctrl
}

// ServeHTTP matches the request and runs the dispatch chain.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if err := d.router.Freeze(); err != nil {
		panic(fmt.Sprintf("routing: Freeze: %v", err))
	}
	d.serving.Store(true)

	start := time.Now()
	req, span := d.obs.startSpan(req)

	rw := &responseWriter{
		ResponseWriter: w,
		discardBody:    req.Method == http.MethodHead,
	}

	m := d.router.MatchRequest(req)
	if m == nil {
		d.notFound(rw, req)
		d.obs.finish(span, "", "", req.Method, rw.StatusCode(), time.Since(start), true)

		return
	}

	endpoint := d.endpointStep(m)
	if endpoint == nil {
		d.notFound(rw, req)
		d.obs.finish(span, m.Endpoint.Name(), m.Endpoint.Pattern(), req.Method,
			rw.StatusCode(), time.Since(start), false)

		return
	}

	c := d.pool.Get().(*Context)
	c.Request = req
	c.Response = rw
	c.writer = rw
	c.dispatcher = d
	c.match = m
	c.requestID = uuid.NewString()
	c.logger = d.router.logger.With("request_id", c.requestID)

	for _, rt := range m.Chain[:len(m.Chain)-1] {
		if rt.bridge {
			if s := d.bridgeStep(rt); s != nil {
				c.steps = append(c.steps, s)
			}
		}
	}
	c.steps = append(c.steps, endpoint)

	completed := c.run()
	if !completed && !rw.Written() {
		// Broken chain with nothing rendered.
		d.notFound(rw, req)
	}

	d.obs.finish(span, m.Endpoint.Name(), m.Endpoint.Pattern(), req.Method,
		rw.StatusCode(), time.Since(start), false)

	c.reset()
	d.pool.Put(c)
}

// act resolves and invokes a controller action. The controller key is the
// stash controller name, prefixed with the namespace when present.
func (d *Dispatcher) act(c *Context, namespace, controller, action string) error {
	key := controller
	if namespace != "" {
		key = namespace + "." + controller
	}
	ctrl, ok := d.controllers[key]
	if !ok {
		c.Logger().Warn("refusing dispatch to unregistered controller",
			"controller", key, "action", action, "path", c.Request.URL.Path)

		return fmt.Errorf("%w: %q", ErrControllerNotRegistered, key)
	}

	return ctrl.Act(c, action)
}

// routeValue resolves an inheritable destination key for a specific route,
// walking toward the root. Bridges resolve their own destinations this way
// because the merged stash reflects the endpoint's overrides.
func routeValue(rt *Route, key string) string {
	for n := rt; n != nil; n = n.parent {
		if n.defaults.Has(key) {
			return n.defaults.String(key)
		}
	}

	return ""
}

// bridgeStep builds the dispatch step for a bridge route from the bridge's
// own destination. A bridge without a destination is pure grouping and
// contributes no step.
func (d *Dispatcher) bridgeStep(rt *Route) step {
	if cb, ok := rt.defaults.Get(StashCallback); ok {
		switch fn := cb.(type) {
		case BridgeFunc:
			return func(c *Context) bool { return fn(c) }
		case func(*Context) bool:
			return func(c *Context) bool { return fn(c) }
		case HandlerFunc:
			return func(c *Context) bool { fn(c); return true }
		case func(*Context):
			return func(c *Context) bool { fn(c); return true }
		default:
			d.router.logger.Warn("unsupported bridge callback type", "route", rt.source)

			return func(*Context) bool { return false }
		}
	}

	if !rt.defaults.Has(StashController) {
		return nil
	}
	name := rt.defaults.String(StashController)
	action := routeValue(rt, StashAction)
	namespace := routeValue(rt, StashNamespace)

	return func(c *Context) bool {
		err := d.act(c, namespace, name, action)
		if err == nil {
			return true
		}
		if errors.Is(err, ErrChainBroken) {
			return false
		}
		c.Logger().Error("bridge action failed", "route", rt.source, "error", err)
		if !c.Written() {
			http.Error(c.Response, http.StatusText(http.StatusInternalServerError),
				http.StatusInternalServerError)
		}

		return false
	}
}

// endpointStep builds the terminal dispatch step from the merged stash.
// Destination priority: "cb" callback, then embedded "app", then
// controller/action. A nil return refuses dispatch.
func (d *Dispatcher) endpointStep(m *Match) step {
	stash := m.Stash

	if cb, ok := stash.Get(StashCallback); ok {
		switch fn := cb.(type) {
		case HandlerFunc:
			return func(c *Context) bool { fn(c); return true }
		case func(*Context):
			return func(c *Context) bool { fn(c); return true }
		case BridgeFunc:
			return func(c *Context) bool { fn(c); return true }
		case func(*Context) bool:
			return func(c *Context) bool { fn(c); return true }
		default:
			d.router.logger.Warn("unsupported callback type", "route", m.Endpoint.source)

			return nil
		}
	}

	if app, ok := stash.Get(StashApp); ok {
		handler, isHandler := app.(http.Handler)
		if !isHandler {
			d.router.logger.Warn("embedded app does not implement http.Handler",
				"route", m.Endpoint.source)

			return nil
		}

		return func(c *Context) bool {
			sub := c.Request.Clone(c.Request.Context())
			sub.URL.Path = stash.String(StashPath)
			handler.ServeHTTP(c.Response, sub)

			return true
		}
	}

	controller := stash.String(StashController)
	if controller == "" {
		d.router.logger.Warn("route has no destination", "route", m.Endpoint.source)

		return nil
	}
	action := stash.String(StashAction)
	namespace := stash.String(StashNamespace)

	return func(c *Context) bool {
		err := d.act(c, namespace, controller, action)
		if err == nil {
			return true
		}
		if errors.Is(err, ErrControllerNotRegistered) {
			if !c.Written() {
				d.notFound(c.Response, c.Request)
			}

			return false
		}
		c.Logger().Error("action failed",
			"controller", controller, "action", action, "error", err)
		if !c.Written() {
			http.Error(c.Response, http.StatusText(http.StatusInternalServerError),
				http.StatusInternalServerError)
		}

		return false
	}
}
