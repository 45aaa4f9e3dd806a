// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package endpoint turns typed handlers into [http.Handler]s. Each endpoint
// declares the request inputs it reads, extracts only those, and encodes
// the returned [Response].
package endpoint

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/birkin/routedemo/logging"
	"github.com/birkin/routedemo/rest/mux"
)

// Empty is the Body type of endpoints which do not read a request body.
type Empty struct{}

// Handler
type Handler[Body any] interface {
	Handle(context.Context, Request[Body]) (Response, error)
}

// HandlerFunc
type HandlerFunc[Body any] func(context.Context, Request[Body]) (Response, error)

// Handle implements the [Handler] interface.
func (f HandlerFunc[Body]) Handle(ctx context.Context, req Request[Body]) (Response, error) {
	return f(ctx, req)
}

// ErrorHandler writes the response for a request which failed before
// a [Response] could be written.
type ErrorHandler interface {
	HandleError(http.ResponseWriter, *http.Request, error)
}

// ErrorHandlerFunc
type ErrorHandlerFunc func(http.ResponseWriter, *http.Request, error)

// HandleError implements the [ErrorHandler] interface.
func (f ErrorHandlerFunc) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	f(w, r, err)
}

type options struct {
	inputs       inputs
	errHandler   ErrorHandler
	logHandler   slog.Handler
	maxBodyBytes int64
	contentType  string
	summary      string
}

// Option
type Option func(*options)

// OnError overrides how the endpoint responds to errors.
func OnError(eh ErrorHandler) Option {
	return func(o *options) {
		o.errHandler = eh
	}
}

// LogHandler sets the handler used to log errors and failed writes.
// Unless [OnError] is given, errors are logged by a [NewErrorHandler]
// built from h.
func LogHandler(h slog.Handler) Option {
	return func(o *options) {
		o.logHandler = h
	}
}

// Produces documents the content type of successful responses.
func Produces(contentType string) Option {
	return func(o *options) {
		o.contentType = contentType
	}
}

// Summary documents what the endpoint does.
func Summary(s string) Option {
	return func(o *options) {
		o.summary = s
	}
}

// NewErrorHandler returns the default [ErrorHandler]. It lets errors which
// implement [http.Handler] write their own response. Any other error is
// logged to h and answered with 500.
func NewErrorHandler(h slog.Handler) ErrorHandler {
	return errorHandler{log: slog.New(h)}
}

type errorHandler struct {
	log *slog.Logger
}

func (eh errorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	var h http.Handler
	if errors.As(err, &h) {
		h.ServeHTTP(w, r)
		return
	}

	eh.log.ErrorContext(
		r.Context(),
		"unexpected error while handling request",
		slog.String("http.method", r.Method),
		slog.String("http.path", r.URL.Path),
		slog.Any("error", err),
	)
	writeText(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

// Endpoint
type Endpoint[Body any] struct {
	method  string
	pattern mux.Pattern
	raw     string

	inputs     inputs
	handler    Handler[Body]
	errHandler ErrorHandler
	log        *slog.Logger

	contentType string
	summary     string

	err error
}

// New initializes an Endpoint.
func New[Body any](method string, pattern string, handler Handler[Body], opts ...Option) *Endpoint[Body] {
	o := &options{
		logHandler:   logging.NoopHandler{},
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.errHandler == nil {
		o.errHandler = NewErrorHandler(o.logHandler)
	}
	o.inputs.maxBodyBytes = o.maxBodyBytes

	e := &Endpoint[Body]{
		method:      method,
		raw:         pattern,
		inputs:      o.inputs,
		handler:     handler,
		errHandler:  o.errHandler,
		log:         slog.New(o.logHandler),
		contentType: o.contentType,
		summary:     o.summary,
	}

	p, err := mux.ParsePattern(pattern)
	if err != nil {
		e.err = err
		return e
	}
	e.pattern = p

	for _, name := range o.inputs.pathParams {
		if p.HasParam(name) {
			continue
		}
		e.err = MissingParameterError{
			Method:  method,
			Pattern: pattern,
			Param:   name,
		}
		break
	}
	return e
}

// Get returns an Endpoint configured for handling HTTP GET requests.
func Get[Body any](pattern string, handler Handler[Body], opts ...Option) *Endpoint[Body] {
	return New(http.MethodGet, pattern, handler, opts...)
}

// Post returns an Endpoint configured for handling HTTP POST requests.
func Post[Body any](pattern string, handler Handler[Body], opts ...Option) *Endpoint[Body] {
	return New(http.MethodPost, pattern, handler, opts...)
}

// Put returns an Endpoint configured for handling HTTP PUT requests.
func Put[Body any](pattern string, handler Handler[Body], opts ...Option) *Endpoint[Body] {
	return New(http.MethodPut, pattern, handler, opts...)
}

// Patch returns an Endpoint configured for handling HTTP PATCH requests.
func Patch[Body any](pattern string, handler Handler[Body], opts ...Option) *Endpoint[Body] {
	return New(http.MethodPatch, pattern, handler, opts...)
}

// Delete returns an Endpoint configured for handling HTTP DELETE requests.
func Delete[Body any](pattern string, handler Handler[Body], opts ...Option) *Endpoint[Body] {
	return New(http.MethodDelete, pattern, handler, opts...)
}

func (e *Endpoint[Body]) Method() string {
	return e.method
}

func (e *Endpoint[Body]) Pattern() string {
	return e.raw
}

// Validate reports problems with how the endpoint was declared, e.g. an
// invalid pattern or a [MissingParameterError]. Registering an endpoint
// which fails validation must abort startup.
func (e *Endpoint[Body]) Validate() error {
	return e.err
}

// ServeHTTP implements the [http.Handler] interface.
func (e *Endpoint[Body]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, err := extract[Body](e.inputs, w, r)
	if err != nil {
		e.errHandler.HandleError(w, r, err)
		return
	}

	resp, err := e.handler.Handle(r.Context(), req)
	if err != nil {
		e.errHandler.HandleError(w, r, err)
		return
	}

	enc, err := resp.Encode()
	if err != nil {
		e.errHandler.HandleError(w, r, err)
		return
	}

	err = enc.Write(w)
	if err != nil {
		e.log.DebugContext(r.Context(), "failed to write response", slog.Any("error", err))
	}
}
