// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package telemetry configures the global OpenTelemetry tracer provider.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/birkin/routedemo/lifecycle"

	texporter "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/trace"
	"go.opentelemetry.io/contrib/detectors/gcp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Supported values of [Config.Exporter].
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
	ExporterGCP    = "gcp"
)

// Config
type Config struct {
	ServiceName string `config:"serviceName"`
	Exporter    string `config:"exporter"`

	// gRPC target string which is passed to grpc.DialContext
	Target string `config:"target"`

	ProjectId string `config:"projectId"`
}

// UnknownExporterError is returned by [Init] for an unsupported exporter.
type UnknownExporterError struct {
	Exporter string
}

// Error implements the [error] interface.
func (e UnknownExporterError) Error() string {
	return fmt.Sprintf("unknown trace exporter: %q", e.Exporter)
}

// InitError wraps a failure to construct the configured exporter.
type InitError struct {
	Exporter string
	Cause    error
}

// Error implements the [error] interface.
func (e InitError) Error() string {
	return fmt.Sprintf("failed to initialize %s trace exporter: %s", e.Exporter, e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e InitError) Unwrap() error {
	return e.Cause
}

// Init installs a global tracer provider and the W3C trace context and
// baggage propagators. The returned hook flushes and shuts the provider
// down and should be run once the app stops serving.
//
// The stdout exporter writes to out.
func Init(ctx context.Context, cfg Config, out io.Writer) (lifecycle.Hook, error) {
	// need to set this so traces can propagate
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	var (
		tp  *sdktrace.TracerProvider
		err error
	)
	switch cfg.Exporter {
	case ExporterNone, "":
		return lifecycle.HookFunc(func(context.Context) error { return nil }), nil
	case ExporterStdout:
		tp, err = stdoutProvider(ctx, cfg, out)
	case ExporterOTLP:
		tp, err = otlpProvider(ctx, cfg)
	case ExporterGCP:
		tp, err = gcpProvider(ctx, cfg)
	default:
		return nil, UnknownExporterError{Exporter: cfg.Exporter}
	}
	if err != nil {
		return nil, InitError{Exporter: cfg.Exporter, Cause: err}
	}

	otel.SetTracerProvider(tp)
	return lifecycle.HookFunc(tp.Shutdown), nil
}

func serviceResource(ctx context.Context, name string) (*resource.Resource, error) {
	return resource.New(
		ctx,
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			semconv.ServiceName(name),
		),
	)
}

func stdoutProvider(ctx context.Context, cfg Config, out io.Writer) (*sdktrace.TracerProvider, error) {
	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(out),
	)
	if err != nil {
		return nil, err
	}

	res, err := serviceResource(ctx, cfg.ServiceName)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	return tp, nil
}

func otlpProvider(ctx context.Context, cfg Config) (*sdktrace.TracerProvider, error) {
	res, err := serviceResource(ctx, cfg.ServiceName)
	if err != nil {
		return nil, err
	}

	dialCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	conn, err := grpc.DialContext(
		dialCtx,
		cfg.Target,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithBlock(),
	)
	if err != nil {
		return nil, err
	}

	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(traceExporter),
	)
	return tp, nil
}

func gcpProvider(ctx context.Context, cfg Config) (*sdktrace.TracerProvider, error) {
	exporter, err := texporter.New(
		texporter.WithProjectID(cfg.ProjectId),
		texporter.WithTraceClientOptions([]option.ClientOption{option.WithTelemetryDisabled()}),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(
		ctx,
		resource.WithDetectors(gcp.NewDetector()),
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	return tp, nil
}
