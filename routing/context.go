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
	"encoding/json"
	"log/slog"
	"net/http"
)

// HandlerFunc is a callback destination for an endpoint route, stored under
// the "cb" stash key.
type HandlerFunc func(*Context)

// BridgeFunc is a callback destination for a bridge route. Returning false
// breaks the dispatch chain: no further steps run for the request unless
// the chain was suspended and is resumed later.
type BridgeFunc func(*Context) bool

// step is one unit of the dispatch chain: the bridges top-down, then the
// endpoint. A false return halts the chain.
type step func(*Context) bool

// Context carries one request through the dispatch chain: the request and
// response, the match result with its stash, and the chain position for
// suspension and resumption.
//
// A Context is bound to a single request and is not safe for concurrent
// use, with one exception: the function returned by Suspend may be called
// from another goroutine to resume the chain. Contexts are pooled; do not
// retain references past the request.
type Context struct {
	Request  *http.Request
	Response http.ResponseWriter

	dispatcher *Dispatcher
	match      *Match
	writer     *responseWriter
	steps      []step
	index      int
	resume     chan bool
	requestID  string
	logger     *slog.Logger
}

func (c *Context) reset() {
	c.Request = nil
	c.Response = nil
	c.dispatcher = nil
	c.match = nil
	c.writer = nil
	c.steps = nil
	c.index = 0
	c.resume = nil
	c.requestID = ""
	c.logger = nil
}

// Match returns the match that produced this dispatch.
func (c *Context) Match() *Match { return c.match }

// Stash returns the per-request stash.
func (c *Context) Stash() *Stash { return c.match.Stash }

// Param returns a stash value coerced to a string, typically a captured
// placeholder value.
func (c *Context) Param(name string) string { return c.match.Stash.String(name) }

// RequestID returns the identifier assigned to this request by the
// dispatcher.
func (c *Context) RequestID() string { return c.requestID }

// Logger returns a logger annotated with the request id.
func (c *Context) Logger() *slog.Logger { return c.logger }

// URLFor reconstructs a path from the current match; see Match.URLFor.
func (c *Context) URLFor(name string, values map[string]any) (string, error) {
	return c.match.URLFor(name, values)
}

// Written reports whether response headers have been written.
func (c *Context) Written() bool { return c.writer.Written() }

// Status writes the response status with no body.
func (c *Context) Status(code int) { c.writer.WriteHeader(code) }

// Text writes a plain text response.
func (c *Context) Text(code int, body string) {
	c.writer.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.writer.WriteHeader(code)
	_, _ = c.writer.Write([]byte(body))
}

// JSON writes a JSON response.
func (c *Context) JSON(code int, value any) {
	c.writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.writer.WriteHeader(code)
	_ = json.NewEncoder(c.writer).Encode(value)
}

// Suspend prepares the dispatch chain for asynchronous continuation. The
// calling bridge should return false after arranging for the returned
// resume function to be called exactly once from another goroutine:
// resume(true) runs the remaining steps on the request goroutine,
// resume(false) abandons the chain. While suspended no further steps
// execute and other requests are unaffected.
//
// Example:
//
//	routing.BridgeFunc(func(c *routing.Context) bool {
//	    resume := c.Suspend()
//	    go func() {
//	        ok := waitForExternalEvent(c.Request.Context())
//	        resume(ok)
//	    }()
//	    return false
//	})
func (c *Context) Suspend() func(proceed bool) {
	ch := make(chan bool, 1)
	c.resume = ch

	return func(proceed bool) { ch <- proceed }
}

// run executes the dispatch chain from the current position. It returns
// true when every step completed. A halted step with a pending suspension
// blocks until resumed or until the request context is done.
func (c *Context) run() bool {
	for c.index < len(c.steps) {
		s := c.steps[c.index]
		c.index++
		if s(c) {
			continue
		}
		if c.resume == nil {
			return false
		}
		ch := c.resume
		c.resume = nil
		select {
		case proceed := <-ch:
			if !proceed {
				return false
			}
		case <-c.Request.Context().Done():
			return false
		}
	}

	return true
}

// responseWriter wraps http.ResponseWriter to capture status code and size
// and to prevent duplicate WriteHeader calls. With discardBody set it
// counts body bytes without forwarding them, which implements HEAD
// responses for routes matched via their GET filter.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	size        int64
	written     bool
	discardBody bool
}

// WriteHeader captures the status code and prevents duplicate calls.
func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.ResponseWriter.WriteHeader(code)
		rw.written = true
	}
}

// Write captures the response size and marks the response as written.
func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.written = true
		if rw.statusCode == 0 {
			rw.statusCode = http.StatusOK
		}
	}
	rw.size += int64(len(b))
	if rw.discardBody {
		return len(b), nil
	}

	return rw.ResponseWriter.Write(b)
}

// StatusCode returns the HTTP status code.
func (rw *responseWriter) StatusCode() int {
	if rw.statusCode == 0 {
		return http.StatusOK
	}

	return rw.statusCode
}

// Size returns the response size in bytes.
func (rw *responseWriter) Size() int64 { return rw.size }

// Written reports whether headers have been written.
func (rw *responseWriter) Written() bool { return rw.written }

// Flush implements http.Flusher.
func (rw *responseWriter) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
