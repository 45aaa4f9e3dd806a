// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package logging

import (
	"context"
	"log/slog"
)

// Redacted replaces the value of every redacted attribute.
const Redacted = "****"

// RedactHandler is an slog.Handler which masks the values of
// attributes with one of the configured keys.
type RedactHandler struct {
	slog slog.Handler
	keys map[string]struct{}
}

// NewRedactHandler wraps h so attributes named by any of keys are
// written as [Redacted]. Keys are matched against the attribute key
// only, not its group path.
func NewRedactHandler(h slog.Handler, keys ...string) *RedactHandler {
	m := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		m[k] = struct{}{}
	}
	return &RedactHandler{slog: h, keys: m}
}

// Enabled implements the slog.Handler interface.
func (h *RedactHandler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return h.slog.Enabled(ctx, lvl)
}

// Handle implements the slog.Handler interface.
func (h *RedactHandler) Handle(ctx context.Context, record slog.Record) error {
	r := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(a slog.Attr) bool {
		r.AddAttrs(h.redact(a))
		return true
	})
	return h.slog.Handle(ctx, r)
}

func (h *RedactHandler) redact(a slog.Attr) slog.Attr {
	if _, ok := h.keys[a.Key]; ok {
		return slog.String(a.Key, Redacted)
	}
	if a.Value.Kind() != slog.KindGroup {
		return a
	}

	attrs := a.Value.Group()
	redacted := make([]any, len(attrs))
	for i, ga := range attrs {
		redacted[i] = h.redact(ga)
	}
	return slog.Group(a.Key, redacted...)
}

// WithAttrs implements the slog.Handler interface.
func (h *RedactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = h.redact(a)
	}
	return &RedactHandler{slog: h.slog.WithAttrs(redacted), keys: h.keys}
}

// WithGroup implements the slog.Handler interface.
func (h *RedactHandler) WithGroup(name string) slog.Handler {
	return &RedactHandler{slog: h.slog.WithGroup(name), keys: h.keys}
}
