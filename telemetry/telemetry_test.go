// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInit(t *testing.T) {
	t.Run("will return an UnknownExporterError", func(t *testing.T) {
		t.Run("if the exporter is not supported", func(t *testing.T) {
			_, err := Init(context.Background(), Config{Exporter: "zipkin"}, nil)

			var uerr UnknownExporterError
			if !assert.ErrorAs(t, err, &uerr) {
				return
			}
			assert.Equal(t, "zipkin", uerr.Exporter)
		})
	})

	t.Run("will return a hook which does nothing", func(t *testing.T) {
		t.Run("if no exporter is configured", func(t *testing.T) {
			hook, err := Init(context.Background(), Config{Exporter: ExporterNone}, nil)
			require.NoError(t, err)

			assert.Nil(t, hook.Run(context.Background()))
		})
	})

	t.Run("will export spans to the writer", func(t *testing.T) {
		t.Run("if the stdout exporter is configured", func(t *testing.T) {
			prev := otel.GetTracerProvider()
			defer otel.SetTracerProvider(prev)

			var buf bytes.Buffer
			hook, err := Init(context.Background(), Config{ServiceName: "demoserver", Exporter: ExporterStdout}, &buf)
			require.NoError(t, err)

			_, span := otel.Tracer("telemetry").Start(context.Background(), "GET /items/:id")
			span.End()

			err = hook.Run(context.Background())
			if !assert.Nil(t, err) {
				return
			}
			if !assert.Contains(t, buf.String(), "GET /items/:id") {
				return
			}
			assert.Contains(t, buf.String(), "demoserver")
		})
	})
}
