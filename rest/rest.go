// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package rest assembles [endpoint.Endpoint]s into a single HTTP application.
package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/birkin/routedemo/health"
	"github.com/birkin/routedemo/internal/try"
	"github.com/birkin/routedemo/logging"
	"github.com/birkin/routedemo/rest/accesslog"
	"github.com/birkin/routedemo/rest/endpoint"
	"github.com/birkin/routedemo/rest/mux"
	httpruntime "github.com/birkin/routedemo/runtime/http"

	"github.com/swaggest/openapi-go/openapi3"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultAddr is the address an [App] listens on unless [Addr] or
// [Listener] is given.
const DefaultAddr = "0.0.0.0:3000"

// Operation represents anything that can handle HTTP requests
// for a single method and pattern and provide OpenAPI documentation
// for itself. [endpoint.Endpoint] implements it.
type Operation interface {
	http.Handler

	Method() string
	Pattern() string
	Validate() error

	OpenApiPath() string
	OpenApi() openapi3.Operation
}

// Option represents configurable attributes of [App].
type Option func(*App)

// Listener allows you to configure the [net.Listener] for
// the underlying [http.Server] to use for serving requests.
func Listener(ls net.Listener) Option {
	return func(a *App) {
		a.ls = ls
	}
}

// Addr sets the address to bind when no [Listener] is given.
func Addr(addr string) Option {
	return func(a *App) {
		a.addr = addr
	}
}

// Register adds the [Operation] to both the App wide route table
// and the App wide OpenAPI spec.
func Register(op Operation) Option {
	return func(a *App) {
		a.ops = append(a.ops, op)
	}
}

// Title sets the title of the API in its OpenAPI spec.
func Title(s string) Option {
	return func(a *App) {
		a.spec.Info.Title = s
	}
}

// Version sets the API version in its OpenAPI spec.
func Version(s string) Option {
	return func(a *App) {
		a.spec.Info.Version = s
	}
}

// NotFound replaces the fallback handler.
func NotFound(h http.Handler) Option {
	return func(a *App) {
		a.notFound = h
	}
}

// MethodNotAllowed makes a request whose path only matches routes of
// other methods receive 405 with an Allow header, instead of the
// fallback handler.
func MethodNotAllowed() Option {
	return func(a *App) {
		a.methodNotAllowed = true
	}
}

// OpenApiEndpoint registers a [http.Handler] for serving the OpenAPI spec.
func OpenApiEndpoint(method mux.Method, pattern string, f func(*openapi3.Spec) http.Handler) Option {
	return func(a *App) {
		a.extra = append(a.extra, route{
			method:  method,
			pattern: pattern,
			build: func(log *slog.Logger) http.Handler {
				h := f(a.spec)
				if oh, ok := h.(openApiHandler); ok {
					oh.log = log
					return oh
				}
				return h
			},
		})
	}
}

// Health registers liveness and readiness endpoints under /health.
func Health(liveness, readiness health.Metric) Option {
	return func(a *App) {
		a.extra = append(
			a.extra,
			route{
				method:  mux.MethodGet,
				pattern: "/health/liveness",
				build: func(*slog.Logger) http.Handler {
					return health.Handler(liveness)
				},
			},
			route{
				method:  mux.MethodGet,
				pattern: "/health/readiness",
				build: func(*slog.Logger) http.Handler {
					return health.Handler(readiness)
				},
			},
		)
	}
}

// Logger sets the handler used for panics, access logs and the runtime.
func Logger(h slog.Handler) Option {
	return func(a *App) {
		a.logHandler = h
	}
}

// AccessLog enables request logging, see [accesslog.Middleware] for
// the supported modes.
func AccessLog(mode string, opts ...accesslog.Option) Option {
	return func(a *App) {
		a.accessLog = mode
		a.accessLogOpts = opts
	}
}

// Runtime passes options through to the [httpruntime.Runtime]
// which serves the App.
func Runtime(opts ...httpruntime.Option) Option {
	return func(a *App) {
		a.runtimeOpts = append(a.runtimeOpts, opts...)
	}
}

type route struct {
	method  mux.Method
	pattern string
	build   func(*slog.Logger) http.Handler
}

// App is a [routedemo.App] implementation to help simplify
// building RESTful applications.
type App struct {
	ls   net.Listener
	addr string

	spec *openapi3.Spec
	ops  []Operation

	extra []route

	notFound         http.Handler
	methodNotAllowed bool

	logHandler    slog.Handler
	accessLog     string
	accessLogOpts []accesslog.Option

	runtimeOpts []httpruntime.Option

	listen func(addr string) (net.Listener, error)

	buildOnce  sync.Once
	handler    http.Handler
	handlerErr error
}

// NewApp initializes a [App].
func NewApp(opts ...Option) *App {
	app := &App{
		addr: DefaultAddr,
		spec: &openapi3.Spec{
			Openapi: "3.0.3",
		},
		logHandler: logging.NoopHandler{},
		listen:     httpruntime.Listen,
	}
	for _, opt := range opts {
		opt(app)
	}
	return app
}

// RegistrationError is returned when an [Operation] can not be added
// to the route table or the OpenAPI spec.
type RegistrationError struct {
	Method  string
	Pattern string
	Cause   error
}

// Error implements the [error] interface.
func (e RegistrationError) Error() string {
	return fmt.Sprintf("failed to register %s %s: %s", e.Method, e.Pattern, e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e RegistrationError) Unwrap() error {
	return e.Cause
}

// Handler builds the route table and returns the complete request
// pipeline. Any invalid or duplicate registration fails here, before
// anything is served. The table is built on the first call only, later
// calls return the same handler and error.
func (app *App) Handler() (http.Handler, error) {
	app.buildOnce.Do(func() {
		app.handler, app.handlerErr = app.buildHandler()
	})
	return app.handler, app.handlerErr
}

func (app *App) buildHandler() (http.Handler, error) {
	log := slog.New(app.logHandler)

	notFound := app.notFound
	if notFound == nil {
		notFound = fallback{log: log}
	}
	muxOpts := []mux.HttpOption{mux.NotFoundHandler(notFound)}
	if app.methodNotAllowed {
		muxOpts = append(muxOpts, mux.MethodNotAllowedHandler(methodNotAllowed{log: log}))
	}
	m := mux.NewHttp(muxOpts...)

	for _, op := range app.ops {
		err := app.register(m, op)
		if err != nil {
			return nil, RegistrationError{
				Method:  op.Method(),
				Pattern: op.Pattern(),
				Cause:   err,
			}
		}
	}

	for _, r := range app.extra {
		err := m.Handle(r.method, r.pattern, otelhttp.WithRouteTag(r.pattern, r.build(log)))
		if err != nil {
			return nil, RegistrationError{
				Method:  string(r.method),
				Pattern: r.pattern,
				Cause:   err,
			}
		}
	}

	var h http.Handler = recoverer{log: log, next: m}
	h, err := accesslog.Middleware(
		app.accessLog,
		h,
		append([]accesslog.Option{accesslog.Logger(app.logHandler)}, app.accessLogOpts...)...,
	)
	if err != nil {
		return nil, err
	}

	return otelhttp.NewHandler(
		h,
		"server",
		otelhttp.WithMessageEvents(otelhttp.ReadEvents, otelhttp.WriteEvents),
	), nil
}

func (app *App) register(m *mux.Http, op Operation) error {
	err := op.Validate()
	if err != nil {
		return err
	}

	err = m.Handle(
		mux.Method(op.Method()),
		op.Pattern(),
		otelhttp.WithRouteTag(op.Pattern(), op),
	)
	if err != nil {
		return err
	}

	return app.spec.AddOperation(strings.ToLower(op.Method()), op.OpenApiPath(), op.OpenApi())
}

// Run implements the [routedemo.App] interface.
//
// The route table is built before the listener is bound so a
// misconfigured App never accepts a connection.
func (app *App) Run(ctx context.Context) error {
	h, err := app.Handler()
	if err != nil {
		return err
	}

	ls, err := app.listener()
	if err != nil {
		return err
	}

	opts := append([]httpruntime.Option{httpruntime.Logger(app.logHandler)}, app.runtimeOpts...)
	rt := httpruntime.NewRuntime(ls, h, opts...)
	return rt.Run(ctx)
}

func (app *App) listener() (net.Listener, error) {
	if app.ls != nil {
		return app.ls, nil
	}
	return app.listen(app.addr)
}

type fallback struct {
	log *slog.Logger
}

func (f fallback) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeResponse(f.log, w, r, endpoint.StatusText(http.StatusNotFound, "No route "+r.URL.RequestURI()))
}

type methodNotAllowed struct {
	log *slog.Logger
}

func (m methodNotAllowed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeResponse(m.log, w, r, endpoint.StatusText(
		http.StatusMethodNotAllowed,
		fmt.Sprintf("Method %s not allowed for %s", r.Method, r.URL.Path),
	))
}

func writeResponse(log *slog.Logger, w http.ResponseWriter, r *http.Request, resp endpoint.Response) {
	enc, err := resp.Encode()
	if err != nil {
		endpoint.NewErrorHandler(log.Handler()).HandleError(w, r, err)
		return
	}
	err = enc.Write(w)
	if err != nil {
		log.DebugContext(r.Context(), "failed to write response", slog.Any("error", err))
	}
}

type recoverer struct {
	log  *slog.Logger
	next http.Handler
}

func (rc recoverer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var err error
	defer rc.handlePanic(w, r, &err)
	defer try.Recover(&err)

	rc.next.ServeHTTP(w, r)
}

func (rc recoverer) handlePanic(w http.ResponseWriter, r *http.Request, err *error) {
	if *err == nil {
		return
	}
	if errors.Is(*err, http.ErrAbortHandler) {
		panic(http.ErrAbortHandler)
	}

	rc.log.ErrorContext(
		r.Context(),
		"recovered from panic while handling request",
		slog.String("http.method", r.Method),
		slog.String("http.path", r.URL.Path),
		slog.Any("error", *err),
	)
	writeResponse(rc.log, w, r, endpoint.StatusText(
		http.StatusInternalServerError,
		http.StatusText(http.StatusInternalServerError),
	))
}
