// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package server wires configuration, logging, tracing and the demo
// routes into a runnable [routedemo.App].
package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"syscall"
	"time"

	"github.com/birkin/routedemo"
	"github.com/birkin/routedemo/app"
	"github.com/birkin/routedemo/health"
	"github.com/birkin/routedemo/internal/demo"
	"github.com/birkin/routedemo/lifecycle"
	"github.com/birkin/routedemo/logging"
	"github.com/birkin/routedemo/rest"
	"github.com/birkin/routedemo/rest/accesslog"
	"github.com/birkin/routedemo/rest/mux"
	httpruntime "github.com/birkin/routedemo/runtime/http"
	"github.com/birkin/routedemo/telemetry"
)

// HttpConfig
type HttpConfig struct {
	Addr              string        `config:"addr"`
	ReadTimeout       time.Duration `config:"readTimeout"`
	ReadHeaderTimeout time.Duration `config:"readHeaderTimeout"`
	WriteTimeout      time.Duration `config:"writeTimeout"`
	IdleTimeout       time.Duration `config:"idleTimeout"`
	MaxHeaderBytes    int           `config:"maxHeaderBytes"`
	MaxBodyBytes      int64         `config:"maxBodyBytes"`
	DrainTimeout      time.Duration `config:"drainTimeout"`

	MethodNotAllowed bool `config:"methodNotAllowed"`
	Health           bool `config:"health"`
	OpenApi          bool `config:"openapi"`
}

// Config is the complete demoserver configuration.
type Config struct {
	Logging logging.Config   `config:"logging"`
	Http    HttpConfig       `config:"http"`
	OTel    telemetry.Config `config:"otel"`
}

type options struct {
	ls            net.Listener
	out           io.Writer
	onStateChange []func(httpruntime.State)
}

// Option customizes the [routedemo.AppBuilder] returned by [Build].
type Option func(*options)

// Listener serves on ls instead of binding http.addr.
func Listener(ls net.Listener) Option {
	return func(o *options) {
		o.ls = ls
	}
}

// Output sets where logs, access logs and stdout traces are written.
// It defaults to stderr.
func Output(w io.Writer) Option {
	return func(o *options) {
		o.out = w
	}
}

// OnStateChange observes the lifecycle of the http runtime.
func OnStateChange(f func(httpruntime.State)) Option {
	return func(o *options) {
		o.onStateChange = append(o.onStateChange, f)
	}
}

// ErrNoLifecycle is returned when the build context was not created
// by [routedemo.Run].
var ErrNoLifecycle = errors.New("missing lifecycle context")

// Build returns the builder for the demoserver app.
func Build(opts ...Option) routedemo.AppBuilder[Config] {
	o := &options{
		out: os.Stderr,
	}
	for _, opt := range opts {
		opt(o)
	}

	return routedemo.AppBuilderFunc[Config](func(ctx context.Context, cfg Config) (routedemo.App, error) {
		return o.build(ctx, cfg)
	})
}

func (o *options) build(ctx context.Context, cfg Config) (routedemo.App, error) {
	lc, ok := lifecycle.FromContext(ctx)
	if !ok {
		return nil, ErrNoLifecycle
	}

	log, closer, err := logging.New(cfg.Logging, o.out)
	if err != nil {
		return nil, err
	}
	lc.OnPostRun(lifecycle.HookFunc(func(context.Context) error {
		return closer.Close()
	}))
	slog.SetDefault(log)

	shutdownTracing, err := telemetry.Init(ctx, cfg.OTel, o.out)
	if err != nil {
		return nil, err
	}

	restApp := o.restApp(cfg, log.Handler())

	// route table errors surface as build errors
	_, err = restApp.Handler()
	if err != nil {
		return nil, errors.Join(err, shutdownTracing.Run(context.WithoutCancel(ctx)))
	}

	return app.WithSignalNotifications(
		app.WithLifecycleHooks(app.Recover(restApp), shutdownTracing),
		os.Interrupt,
		syscall.SIGTERM,
	), nil
}

func (o *options) restApp(cfg Config, logHandler slog.Handler) *rest.App {
	var liveness, serving health.Binary
	serving.MarkUnhealthy()
	readiness := health.And(&liveness, &serving)

	runtimeOpts := []httpruntime.Option{
		httpruntime.OnStateChange(func(s httpruntime.State) {
			if s == httpruntime.Serving {
				serving.MarkHealthy()
				return
			}
			serving.MarkUnhealthy()
		}),
	}
	runtimeOpts = append(runtimeOpts, httpOptions(cfg.Http)...)
	for _, f := range o.onStateChange {
		runtimeOpts = append(runtimeOpts, httpruntime.OnStateChange(f))
	}

	restOpts := []rest.Option{
		rest.Title(cfg.OTel.ServiceName),
		rest.Version("v0.1.0"),
		rest.Logger(logHandler),
		rest.AccessLog(cfg.Logging.AccessLog, accesslog.Output(o.out)),
		rest.Runtime(runtimeOpts...),
	}
	if o.ls != nil {
		restOpts = append(restOpts, rest.Listener(o.ls))
	}
	if cfg.Http.Addr != "" {
		restOpts = append(restOpts, rest.Addr(cfg.Http.Addr))
	}
	if cfg.Http.MethodNotAllowed {
		restOpts = append(restOpts, rest.MethodNotAllowed())
	}
	if cfg.Http.Health {
		restOpts = append(restOpts, rest.Health(&liveness, readiness))
	}
	if cfg.Http.OpenApi {
		restOpts = append(
			restOpts,
			rest.OpenApiEndpoint(mux.MethodGet, "/openapi.json", rest.OpenApiJsonHandler),
			rest.OpenApiEndpoint(mux.MethodGet, "/openapi.yaml", rest.OpenApiYamlHandler),
		)
	}

	demoOpts := []demo.Option{demo.LogHandler(logHandler)}
	if cfg.Http.MaxBodyBytes != 0 {
		demoOpts = append(demoOpts, demo.MaxBodyBytes(cfg.Http.MaxBodyBytes))
	}
	for _, op := range demo.Endpoints(demoOpts...) {
		restOpts = append(restOpts, rest.Register(op))
	}

	return rest.NewApp(restOpts...)
}

func httpOptions(cfg HttpConfig) []httpruntime.Option {
	var opts []httpruntime.Option
	if cfg.ReadTimeout > 0 {
		opts = append(opts, httpruntime.ReadTimeout(cfg.ReadTimeout))
	}
	if cfg.ReadHeaderTimeout > 0 {
		opts = append(opts, httpruntime.ReadHeaderTimeout(cfg.ReadHeaderTimeout))
	}
	if cfg.WriteTimeout > 0 {
		opts = append(opts, httpruntime.WriteTimeout(cfg.WriteTimeout))
	}
	if cfg.IdleTimeout > 0 {
		opts = append(opts, httpruntime.IdleTimeout(cfg.IdleTimeout))
	}
	if cfg.MaxHeaderBytes > 0 {
		opts = append(opts, httpruntime.MaxHeaderBytes(cfg.MaxHeaderBytes))
	}
	if cfg.DrainTimeout > 0 {
		opts = append(opts, httpruntime.DrainTimeout(cfg.DrainTimeout))
	}
	return opts
}
