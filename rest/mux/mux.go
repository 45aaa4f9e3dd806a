// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package mux provides the route table and request multiplexer used to
// dispatch requests to endpoints.
package mux

import (
	"net/http"
	"strings"
)

// Method defines an HTTP method expected to be used in a RESTful API.
type Method string

const (
	MethodGet    Method = http.MethodGet
	MethodPut    Method = http.MethodPut
	MethodPost   Method = http.MethodPost
	MethodPatch  Method = http.MethodPatch
	MethodDelete Method = http.MethodDelete
)

// HttpOption defines a configuration option for [Http].
type HttpOption func(*Http)

// NotFoundHandler will register the given [http.Handler] to handle
// any HTTP requests that do not match any other method-pattern combinations.
func NotFoundHandler(h http.Handler) HttpOption {
	return func(mux *Http) {
		mux.notFound = h
	}
}

// MethodNotAllowedHandler will register the given [http.Handler] to handle
// any HTTP requests whose path matches a pattern registered under a different
// method. The Allow header is set before h is called.
//
// Without this option such requests are treated exactly like requests
// whose path matches nothing and are sent to the not found handler.
func MethodNotAllowedHandler(h http.Handler) HttpOption {
	return func(mux *Http) {
		mux.methodNotAllowed = h
	}
}

// Http is a request multiplexer backed by a [Table]. Captured path
// parameters are made available to handlers via [http.Request.PathValue].
type Http struct {
	table *Table

	notFound         http.Handler
	methodNotAllowed http.Handler
}

// NewHttp initializes a request multiplexer with an empty [Table].
func NewHttp(opts ...HttpOption) *Http {
	mux := &Http{
		table:    NewTable(),
		notFound: http.NotFoundHandler(),
	}
	for _, opt := range opts {
		opt(mux)
	}
	return mux
}

// Handle will register the [http.Handler] for the given method and pattern.
// It must not be called once the mux has started serving requests.
func (m *Http) Handle(method Method, pattern string, h http.Handler) error {
	return m.table.Register(method, pattern, h)
}

// ServeHTTP implements the [http.Handler] interface.
func (m *Http) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.EscapedPath()

	match, ok := m.table.Lookup(r.Method, path)
	if ok {
		for name, value := range match.Params {
			r.SetPathValue(name, value)
		}
		match.Handler.ServeHTTP(w, r)
		return
	}

	if m.methodNotAllowed != nil {
		allowed := m.table.Allowed(path)
		if len(allowed) > 0 {
			w.Header().Set("Allow", joinMethods(allowed))
			m.methodNotAllowed.ServeHTTP(w, r)
			return
		}
	}

	m.notFound.ServeHTTP(w, r)
}

func joinMethods(methods []Method) string {
	ss := make([]string, len(methods))
	for i, method := range methods {
		ss[i] = string(method)
	}
	return strings.Join(ss, ", ")
}
