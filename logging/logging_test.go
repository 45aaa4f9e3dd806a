// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestNew(t *testing.T) {
	t.Run("will return an UnknownFormatError", func(t *testing.T) {
		t.Run("if the format is not supported", func(t *testing.T) {
			_, _, err := New(Config{Format: "xml"}, io.Discard)

			var ferr UnknownFormatError
			if !assert.ErrorAs(t, err, &ferr) {
				return
			}
			assert.Equal(t, "xml", ferr.Format)
		})
	})

	t.Run("will write json records", func(t *testing.T) {
		testCases := []struct {
			Name   string
			Format string
		}{
			{Name: "if the format is empty", Format: ""},
			{Name: "if the format is json", Format: FormatJSON},
			{Name: "if the format is zap", Format: FormatZap},
		}

		for _, testCase := range testCases {
			t.Run(testCase.Name, func(t *testing.T) {
				var buf bytes.Buffer
				log, closer, err := New(Config{Format: testCase.Format}, &buf)
				require.NoError(t, err)
				defer closer.Close()

				log.Info("hello", slog.String("route", "/"))

				var record map[string]any
				err = json.Unmarshal(buf.Bytes(), &record)
				if !assert.Nil(t, err, buf.String()) {
					return
				}
				if !assert.Equal(t, "hello", record["msg"]) {
					return
				}
				assert.Equal(t, "/", record["route"])
			})
		}
	})

	t.Run("will write text records", func(t *testing.T) {
		t.Run("if the format is text", func(t *testing.T) {
			var buf bytes.Buffer
			log, closer, err := New(Config{Format: FormatText}, &buf)
			require.NoError(t, err)
			defer closer.Close()

			log.Info("hello")

			assert.Contains(t, buf.String(), "msg=hello")
		})
	})

	t.Run("will drop records below the configured level", func(t *testing.T) {
		for _, format := range []string{FormatJSON, FormatText, FormatZap} {
			var buf bytes.Buffer
			log, closer, err := New(Config{Format: format, Level: slog.LevelWarn}, &buf)
			require.NoError(t, err)

			log.Info("quiet")
			log.Warn("loud")
			closer.Close()

			if !assert.NotContains(t, buf.String(), "quiet", format) {
				return
			}
			if !assert.Contains(t, buf.String(), "loud", format) {
				return
			}
		}
	})

	t.Run("will write to a file", func(t *testing.T) {
		t.Run("if a file path is configured", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "demoserver.log")

			var buf bytes.Buffer
			log, closer, err := New(Config{File: FileConfig{Path: path, MaxSizeMB: 1}}, &buf)
			require.NoError(t, err)

			log.Info("to file")
			require.NoError(t, closer.Close())

			b, err := os.ReadFile(path)
			if !assert.Nil(t, err) {
				return
			}
			if !assert.True(t, strings.Contains(string(b), "to file")) {
				return
			}
			assert.Zero(t, buf.Len())
		})
	})
}

func TestTraceHandler_Handle(t *testing.T) {
	type record struct {
		Message string `json:"msg"`
		OTel    struct {
			TraceID string `json:"trace_id"`
			SpanID  string `json:"span_id"`
		} `json:"otel"`
	}

	t.Run("will not add trace id and span id", func(t *testing.T) {
		t.Run("if the span context is invalid", func(t *testing.T) {
			var buf bytes.Buffer
			log := slog.New(NewTraceHandler(slog.NewJSONHandler(&buf, nil)))

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			log.InfoContext(ctx, "test")

			var r record
			err := json.Unmarshal(buf.Bytes(), &r)
			if !assert.Nil(t, err) {
				return
			}
			if !assert.Equal(t, "test", r.Message) {
				return
			}
			assert.Empty(t, r.OTel.TraceID)
		})
	})

	t.Run("will add trace id and span id", func(t *testing.T) {
		t.Run("if the span context is valid", func(t *testing.T) {
			var buf bytes.Buffer
			log := slog.New(NewTraceHandler(slog.NewJSONHandler(&buf, nil)))

			exporter, err := stdouttrace.New(stdouttrace.WithWriter(io.Discard))
			require.NoError(t, err)

			tp := sdktrace.NewTracerProvider(
				sdktrace.WithBatcher(exporter),
				sdktrace.WithResource(resource.Default()),
			)
			defer tp.Shutdown(context.Background())

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			spanCtx, span := tp.Tracer("logging").Start(ctx, "test")
			defer span.End()
			if !assert.True(t, span.SpanContext().IsValid()) {
				return
			}

			log.InfoContext(spanCtx, "test")

			var r record
			err = json.Unmarshal(buf.Bytes(), &r)
			if !assert.Nil(t, err) {
				return
			}
			if !assert.Equal(t, span.SpanContext().TraceID().String(), r.OTel.TraceID) {
				return
			}
			assert.Equal(t, span.SpanContext().SpanID().String(), r.OTel.SpanID)
		})
	})
}

func TestNoopHandler(t *testing.T) {
	log := slog.New(NoopHandler{})
	assert.False(t, log.Enabled(context.Background(), slog.LevelError))
}

func TestRedactHandler(t *testing.T) {
	t.Run("will mask the attribute value", func(t *testing.T) {
		t.Run("if its key is redacted", func(t *testing.T) {
			var buf bytes.Buffer
			log, closer, err := New(Config{Redact: []string{"http.query"}}, &buf)
			require.NoError(t, err)
			defer closer.Close()

			log.Info("handled request", slog.String("http.query", "token=abc"), slog.String("http.path", "/"))

			var record map[string]any
			err = json.Unmarshal(buf.Bytes(), &record)
			if !assert.Nil(t, err) {
				return
			}
			if !assert.Equal(t, Redacted, record["http.query"]) {
				return
			}
			assert.Equal(t, "/", record["http.path"])
		})

		t.Run("if the attribute is nested in a group", func(t *testing.T) {
			var buf bytes.Buffer
			log := slog.New(NewRedactHandler(slog.NewJSONHandler(&buf, nil), "secret"))

			log.Info("hello", slog.Group("req", slog.String("secret", "abc"), slog.Int("n", 1)))

			var record struct {
				Req map[string]any `json:"req"`
			}
			err := json.Unmarshal(buf.Bytes(), &record)
			if !assert.Nil(t, err) {
				return
			}
			if !assert.Equal(t, Redacted, record.Req["secret"]) {
				return
			}
			assert.Equal(t, float64(1), record.Req["n"])
		})

		t.Run("if the attribute was added with With", func(t *testing.T) {
			var buf bytes.Buffer
			log := slog.New(NewRedactHandler(slog.NewJSONHandler(&buf, nil), "secret"))

			log.With(slog.String("secret", "abc")).WithGroup("g").Info("hello", slog.String("secret", "def"))

			assert.NotContains(t, buf.String(), "abc")
			assert.NotContains(t, buf.String(), "def")
		})
	})
}
