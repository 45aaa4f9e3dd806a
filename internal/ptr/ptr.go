// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package ptr provides helpers for the optional fields of OpenAPI documents.
package ptr

// Ref returns a reference to a copy of t.
func Ref[T any](t T) *T {
	return &t
}

// Deref returns the value t points to or the zero value of T if t is nil.
func Deref[T any](t *T) T {
	if t == nil {
		var zero T
		return zero
	}
	return *t
}
