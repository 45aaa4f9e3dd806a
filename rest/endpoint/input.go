// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package endpoint

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/goccy/go-json"
)

// Request is what a [Handler] sees of an incoming HTTP request. Only the
// inputs the endpoint declared are populated, every other accessor
// returns its zero value.
type Request[Body any] struct {
	method string
	uri    string
	params map[string]string
	query  map[string]string

	// Body holds the decoded request body if [JSONBody] was declared.
	Body Body
}

// Method returns the request method if [Method] was declared.
func (r Request[Body]) Method() string {
	return r.method
}

// URI returns the request URI, path and query, if [URI] was declared.
func (r Request[Body]) URI() string {
	return r.uri
}

// Param returns the value captured for the named path parameter if it
// was declared with [PathParam].
func (r Request[Body]) Param(name string) string {
	return r.params[name]
}

// Query returns the parsed query parameters if [QueryParams] was declared.
// The returned map is never nil when declared.
func (r Request[Body]) Query() map[string]string {
	return r.query
}

type inputs struct {
	method     bool
	uri        bool
	query      bool
	body       bool
	pathParams []string

	maxBodyBytes int64
}

// DefaultMaxBodyBytes is the request body limit of endpoints which
// declare [JSONBody] without [MaxBodyBytes].
const DefaultMaxBodyBytes int64 = 1 << 20

// Method declares that the handler reads the request method.
func Method() Option {
	return func(o *options) {
		o.inputs.method = true
	}
}

// URI declares that the handler reads the request URI.
func URI() Option {
	return func(o *options) {
		o.inputs.uri = true
	}
}

// PathParam declares that the handler reads the named path parameter.
// The endpoint pattern must capture a parameter with the same name,
// otherwise [Endpoint.Validate] reports a [MissingParameterError].
func PathParam(name string) Option {
	return func(o *options) {
		o.inputs.pathParams = append(o.inputs.pathParams, name)
	}
}

// QueryParams declares that the handler reads the query parameters.
func QueryParams() Option {
	return func(o *options) {
		o.inputs.query = true
	}
}

// JSONBody declares that the request body is JSON to be decoded into the
// Body type of the endpoint. Unknown object fields are rejected unless
// Body is an untyped value such as any or map[string]any.
func JSONBody() Option {
	return func(o *options) {
		o.inputs.body = true
	}
}

// MaxBodyBytes limits the size of the request body read by [JSONBody].
// Larger bodies are answered with 413. A limit of zero or less disables it.
func MaxBodyBytes(n int64) Option {
	return func(o *options) {
		o.maxBodyBytes = n
	}
}

func extract[Body any](in inputs, w http.ResponseWriter, r *http.Request) (Request[Body], error) {
	var req Request[Body]
	if in.method {
		req.method = r.Method
	}
	if in.uri {
		req.uri = r.URL.RequestURI()
	}
	if len(in.pathParams) > 0 {
		req.params = make(map[string]string, len(in.pathParams))
		for _, name := range in.pathParams {
			req.params[name] = r.PathValue(name)
		}
	}
	if in.query {
		req.query = ParseQuery(r.URL.RawQuery)
	}
	if !in.body {
		return req, nil
	}

	var rc io.Reader = r.Body
	if in.maxBodyBytes > 0 {
		rc = http.MaxBytesReader(w, r.Body, in.maxBodyBytes)
	}

	body, err := decodeJSON[Body](rc)
	if err != nil {
		return req, err
	}
	req.Body = body
	return req, nil
}

// ParseQuery parses a raw query string into a map. When a key repeats the
// last value wins. Pairs with malformed escapes are skipped and parsing
// never fails.
func ParseQuery(rawQuery string) map[string]string {
	// the error only reports the first skipped pair
	values, _ := url.ParseQuery(rawQuery)

	m := make(map[string]string, len(values))
	for key, vs := range values {
		m[key] = vs[len(vs)-1]
	}
	return m
}

func decodeJSON[Body any](r io.Reader) (Body, error) {
	var body Body

	b, err := io.ReadAll(r)
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return body, BodyTooLargeError{Limit: maxErr.Limit}
	}
	if err != nil {
		return body, MalformedBodyError{Cause: err}
	}
	if !json.Valid(b) {
		return body, MalformedBodyError{}
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	dec.UseNumber()
	err = dec.Decode(&body)
	if err != nil {
		return body, SchemaMismatchError{Cause: err}
	}
	return body, nil
}
