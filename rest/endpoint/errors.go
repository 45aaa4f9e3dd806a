// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package endpoint

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

// MalformedBodyError is returned when the request body of an endpoint
// which declared [JSONBody] is not exactly one well formed JSON value.
type MalformedBodyError struct {
	Cause error
}

// Error implements the [error] interface.
func (e MalformedBodyError) Error() string {
	if e.Cause == nil {
		return "request body is not valid json"
	}
	return fmt.Sprintf("request body is not valid json: %s", e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e MalformedBodyError) Unwrap() error {
	return e.Cause
}

// ServeHTTP implements the [http.Handler] interface.
func (e MalformedBodyError) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusBadRequest, e.Error())
}

// SchemaMismatchError is returned when the request body is well formed
// JSON but does not fit the shape expected by the endpoint.
type SchemaMismatchError struct {
	Cause error
}

// Error implements the [error] interface.
func (e SchemaMismatchError) Error() string {
	return fmt.Sprintf("request body does not match the expected shape: %s", e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e SchemaMismatchError) Unwrap() error {
	return e.Cause
}

// ServeHTTP implements the [http.Handler] interface.
func (e SchemaMismatchError) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusBadRequest, e.Error())
}

// BodyTooLargeError is returned when the request body exceeds the
// limit set by [MaxBodyBytes].
type BodyTooLargeError struct {
	Limit int64
}

// Error implements the [error] interface.
func (e BodyTooLargeError) Error() string {
	return fmt.Sprintf("request body exceeds %d bytes", e.Limit)
}

// ServeHTTP implements the [http.Handler] interface.
func (e BodyTooLargeError) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusRequestEntityTooLarge, e.Error())
}

// MissingParameterError is returned when an endpoint declares a
// [PathParam] which its own route pattern does not capture.
type MissingParameterError struct {
	Method  string
	Pattern string
	Param   string
}

// Error implements the [error] interface.
func (e MissingParameterError) Error() string {
	return fmt.Sprintf("endpoint %s %s declares path parameter %q which its pattern does not capture", e.Method, e.Pattern, e.Param)
}

// ErrMissingContentType is returned when encoding a [Binary] response
// without a content type.
var ErrMissingContentType = errors.New("binary response requires a content type")

// ErrEmptyResponse is returned when encoding the zero value of [Response].
var ErrEmptyResponse = errors.New("response was not constructed")

// MarshalError wraps a failure to serialize a [JSON] response value.
type MarshalError struct {
	Cause error
}

// Error implements the [error] interface.
func (e MarshalError) Error() string {
	return fmt.Sprintf("failed to marshal json response: %s", e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e MarshalError) Unwrap() error {
	return e.Cause
}

func writeText(w http.ResponseWriter, status int, s string) {
	w.Header().Set("Content-Type", textPlain)
	w.Header().Set("Content-Length", strconv.Itoa(len(s)))
	w.WriteHeader(status)
	w.Write([]byte(s))
}
