// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package endpoint

import (
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
)

const (
	textPlain       = "text/plain; charset=utf-8"
	textHTML        = "text/html; charset=utf-8"
	applicationJSON = "application/json"
)

type responseKind int

const (
	kindUnset responseKind = iota
	kindText
	kindHTML
	kindJSON
	kindBinary
)

// Response is the value a [Handler] returns. It is one of a closed set of
// shapes, each of which knows its status code and content type. Build one
// with [Text], [HTML], [JSON], [Binary] or [StatusText].
type Response struct {
	kind        responseKind
	status      int
	contentType string
	text        string
	value       any
	raw         []byte
}

// Text responds 200 with a UTF-8 plain text body.
func Text(s string) Response {
	return Response{kind: kindText, status: http.StatusOK, text: s}
}

// HTML responds 200 with a UTF-8 HTML body.
func HTML(s string) Response {
	return Response{kind: kindHTML, status: http.StatusOK, text: s}
}

// JSON responds 200 with v serialized as JSON. Object keys of maps
// are written in sorted order.
func JSON(v any) Response {
	return Response{kind: kindJSON, status: http.StatusOK, value: v}
}

// Binary responds 200 with b verbatim and the given content type.
// The content type is never sniffed from b.
func Binary(contentType string, b []byte) Response {
	return Response{kind: kindBinary, status: http.StatusOK, contentType: contentType, raw: b}
}

// StatusText responds with the given status code and a UTF-8 plain text body.
func StatusText(code int, s string) Response {
	return Response{kind: kindText, status: code, text: s}
}

// Encoded is a [Response] after serialization.
type Encoded struct {
	Status int
	Header http.Header
	Body   []byte
}

// Encode serializes the response. The returned header always
// carries Content-Type and Content-Length.
func (r Response) Encode() (Encoded, error) {
	var (
		contentType string
		body        []byte
	)
	switch r.kind {
	case kindText:
		contentType, body = textPlain, []byte(r.text)
	case kindHTML:
		contentType, body = textHTML, []byte(r.text)
	case kindJSON:
		b, err := json.Marshal(r.value)
		if err != nil {
			return Encoded{}, MarshalError{Cause: err}
		}
		contentType, body = applicationJSON, b
	case kindBinary:
		if r.contentType == "" {
			return Encoded{}, ErrMissingContentType
		}
		contentType, body = r.contentType, r.raw
	default:
		return Encoded{}, ErrEmptyResponse
	}

	header := make(http.Header, 2)
	header.Set("Content-Type", contentType)
	header.Set("Content-Length", strconv.Itoa(len(body)))
	return Encoded{
		Status: r.status,
		Header: header,
		Body:   body,
	}, nil
}

// Write writes the encoded response. It must be called at most once
// per request.
func (e Encoded) Write(w http.ResponseWriter) error {
	h := w.Header()
	for name, values := range e.Header {
		h[name] = values
	}
	w.WriteHeader(e.Status)
	_, err := w.Write(e.Body)
	return err
}
