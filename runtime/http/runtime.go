// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/birkin/routedemo/logging"

	"golang.org/x/sync/errgroup"
)

// State is a phase of the [Runtime] lifecycle. A Runtime only ever moves
// forward through Starting, Serving, Draining and Stopped.
type State int32

const (
	Starting State = iota
	Serving
	Draining
	Stopped
)

// String implements the [fmt.Stringer] interface.
func (s State) String() string {
	switch s {
	case Starting:
		return "starting"
	case Serving:
		return "serving"
	case Draining:
		return "draining"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// BindError is returned when the listen address can not be bound.
type BindError struct {
	Addr  string
	Cause error
}

// Error implements the [error] interface.
func (e BindError) Error() string {
	return fmt.Sprintf("failed to bind %s: %s", e.Addr, e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e BindError) Unwrap() error {
	return e.Cause
}

// Listen binds a TCP listener on addr. There is no retry.
func Listen(addr string) (net.Listener, error) {
	ls, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, BindError{Addr: addr, Cause: err}
	}
	return ls, nil
}

// DrainTimeoutError is returned when in-flight requests did not finish
// before the drain deadline. The remaining connections are closed.
type DrainTimeoutError struct {
	Timeout time.Duration
	Cause   error
}

// Error implements the [error] interface.
func (e DrainTimeoutError) Error() string {
	return fmt.Sprintf("in-flight requests did not finish within %s: %s", e.Timeout, e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e DrainTimeoutError) Unwrap() error {
	return e.Cause
}

// Option is a functional option for configuring a [Runtime].
type Option func(*Runtime)

// ReadTimeout sets the maximum duration for reading the entire request,
// including the body. The default is 5 seconds.
func ReadTimeout(d time.Duration) Option {
	return func(rt *Runtime) {
		rt.srv.ReadTimeout = d
	}
}

// ReadHeaderTimeout sets the maximum duration for reading request headers.
// The default is 2 seconds.
func ReadHeaderTimeout(d time.Duration) Option {
	return func(rt *Runtime) {
		rt.srv.ReadHeaderTimeout = d
	}
}

// WriteTimeout sets the maximum duration before timing out writes of the
// response. The default is 10 seconds.
func WriteTimeout(d time.Duration) Option {
	return func(rt *Runtime) {
		rt.srv.WriteTimeout = d
	}
}

// IdleTimeout sets the maximum duration to wait for the next request when
// keep-alives are enabled. The default is 120 seconds.
func IdleTimeout(d time.Duration) Option {
	return func(rt *Runtime) {
		rt.srv.IdleTimeout = d
	}
}

// MaxHeaderBytes sets the maximum number of bytes the server will read
// parsing the request header's keys and values, including the request line.
// The default is 1048576 bytes (1 MB).
func MaxHeaderBytes(n int) Option {
	return func(rt *Runtime) {
		rt.srv.MaxHeaderBytes = n
	}
}

// DrainTimeout bounds how long in-flight requests may run once draining
// begins. Zero, the default, waits for them indefinitely.
func DrainTimeout(d time.Duration) Option {
	return func(rt *Runtime) {
		rt.drainTimeout = d
	}
}

// Logger sets the [slog.Handler] lifecycle events are logged with.
func Logger(h slog.Handler) Option {
	return func(rt *Runtime) {
		rt.log = slog.New(h)
	}
}

// OnStateChange registers f to be called, synchronously, each time the
// Runtime enters a new [State].
func OnStateChange(f func(State)) Option {
	return func(rt *Runtime) {
		rt.onStateChange = append(rt.onStateChange, f)
	}
}

// Runtime serves HTTP requests from a bound listener until its context
// is cancelled and then drains in-flight requests.
type Runtime struct {
	ls  net.Listener
	srv *http.Server
	log *slog.Logger

	drainTimeout  time.Duration
	onStateChange []func(State)

	state atomic.Int32
}

// NewRuntime initializes a [Runtime] serving h on the already bound ls.
func NewRuntime(ls net.Listener, h http.Handler, opts ...Option) *Runtime {
	rt := &Runtime{
		ls: ls,
		srv: &http.Server{
			Handler:           h,
			ReadTimeout:       5 * time.Second,
			ReadHeaderTimeout: 2 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       120 * time.Second,
			MaxHeaderBytes:    1048576,
		},
		log: slog.New(logging.NoopHandler{}),
	}
	for _, opt := range opts {
		opt(rt)
	}
	rt.srv.ErrorLog = slog.NewLogLogger(rt.log.Handler(), slog.LevelWarn)
	return rt
}

// State returns the current lifecycle state.
func (rt *Runtime) State() State {
	return State(rt.state.Load())
}

// Addr returns the address the Runtime is serving on.
func (rt *Runtime) Addr() net.Addr {
	return rt.ls.Addr()
}

func (rt *Runtime) setState(s State) {
	rt.state.Store(int32(s))
	for _, f := range rt.onStateChange {
		f(s)
	}
}

// Run serves requests and blocks until ctx is cancelled or serving fails.
// Once ctx is cancelled the listener stops accepting, in-flight requests
// are allowed to complete and Run returns nil.
func (rt *Runtime) Run(ctx context.Context) error {
	rt.setState(Serving)
	rt.log.InfoContext(ctx, "serving http", slog.String("addr", rt.ls.Addr().String()))

	eg, egctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		err := rt.srv.Serve(rt.ls)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	eg.Go(func() error {
		<-egctx.Done()
		return rt.drain()
	})

	err := eg.Wait()
	rt.setState(Stopped)
	rt.log.Info("stopped serving http")
	return err
}

func (rt *Runtime) drain() error {
	rt.setState(Draining)
	rt.log.Info("draining in-flight requests", slog.Duration("timeout", rt.drainTimeout))

	ctx := context.Background()
	if rt.drainTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rt.drainTimeout)
		defer cancel()
	}

	err := rt.srv.Shutdown(ctx)
	if err == nil {
		return nil
	}

	closeErr := rt.srv.Close()
	if errors.Is(err, context.DeadlineExceeded) {
		return DrainTimeoutError{Timeout: rt.drainTimeout, Cause: errors.Join(err, closeErr)}
	}
	return errors.Join(err, closeErr)
}
