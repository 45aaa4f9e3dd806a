// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package mux

import (
	"fmt"
	"net/http"
	"slices"
)

// Params maps parameter names to the request segments they captured.
type Params map[string]string

// Match is the result of a successful [Table.Lookup].
type Match struct {
	Handler http.Handler
	Pattern Pattern
	Params  Params
}

// DuplicateRouteError is returned when an equivalent method and pattern
// combination has already been registered.
type DuplicateRouteError struct {
	Method   Method
	Pattern  string
	Existing string
}

// Error implements the [error] interface.
func (e DuplicateRouteError) Error() string {
	return fmt.Sprintf("route %s %s conflicts with already registered %s %s", e.Method, e.Pattern, e.Method, e.Existing)
}

type entry struct {
	pattern Pattern
	handler http.Handler
}

// Table maps a method and path pattern to a handler.
//
// A Table is populated once during startup and is only read afterwards.
// It performs no locking so all calls to [Table.Register] must happen
// before the Table is shared with request serving goroutines.
type Table struct {
	// method -> segment count -> entries ordered most specific first
	routes map[Method]map[int][]entry
	keys   map[Method]map[string]string
	order  []Method
}

// NewTable returns an empty route table.
func NewTable() *Table {
	return &Table{
		routes: make(map[Method]map[int][]entry),
		keys:   make(map[Method]map[string]string),
	}
}

// Register adds a route to the table.
func (t *Table) Register(method Method, pattern string, h http.Handler) error {
	p, err := ParsePattern(pattern)
	if err != nil {
		return err
	}

	keys, ok := t.keys[method]
	if !ok {
		keys = make(map[string]string)
		t.keys[method] = keys
		t.routes[method] = make(map[int][]entry)
		t.order = append(t.order, method)
	}

	norm := p.normalized()
	if existing, exists := keys[norm]; exists {
		return DuplicateRouteError{
			Method:   method,
			Pattern:  pattern,
			Existing: existing,
		}
	}
	keys[norm] = pattern

	n := len(p.segments)
	entries := t.routes[method][n]

	// keep entries ordered most specific first, ties keep registration order
	i := len(entries)
	for i > 0 && p.moreSpecific(entries[i-1].pattern) {
		i--
	}
	t.routes[method][n] = slices.Insert(entries, i, entry{pattern: p, handler: h})
	return nil
}

// Lookup finds the most specific route registered for the method which
// matches the escaped request path. A false return means no route matched,
// which includes the case where the path only matches under another method.
func (t *Table) Lookup(method, escapedPath string) (Match, bool) {
	return t.lookup(Method(method), splitPath(escapedPath))
}

func (t *Table) lookup(method Method, segments []string) (Match, bool) {
	for _, e := range t.routes[method][len(segments)] {
		params, ok := e.pattern.match(segments)
		if !ok {
			continue
		}
		return Match{
			Handler: e.handler,
			Pattern: e.pattern,
			Params:  params,
		}, true
	}
	return Match{}, false
}

// Allowed returns every method, in registration order, which has a
// route matching the escaped request path.
func (t *Table) Allowed(escapedPath string) []Method {
	segments := splitPath(escapedPath)

	var methods []Method
	for _, method := range t.order {
		if _, ok := t.lookup(method, segments); ok {
			methods = append(methods, method)
		}
	}
	return methods
}
