// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package accesslog records one line per handled HTTP request.
package accesslog

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/birkin/routedemo/logging"

	"github.com/charmbracelet/lipgloss"
	"github.com/felixge/httpsnoop"
)

// Supported access log modes.
const (
	ModeOff        = "off"
	ModeStructured = "structured"
	ModePretty     = "pretty"
)

// UnknownModeError is returned by [Middleware] for an unsupported mode.
type UnknownModeError struct {
	Mode string
}

// Error implements the [error] interface.
func (e UnknownModeError) Error() string {
	return fmt.Sprintf("unknown access log mode: %q", e.Mode)
}

type options struct {
	handler slog.Handler
	out     io.Writer
}

// Option configures the access log [Middleware].
type Option func(*options)

// Logger sets the handler used by [ModeStructured].
func Logger(h slog.Handler) Option {
	return func(o *options) {
		o.handler = h
	}
}

// Output sets the writer used by [ModePretty]. It defaults to stderr.
func Output(w io.Writer) Option {
	return func(o *options) {
		o.out = w
	}
}

// Middleware wraps h so every request it serves is logged according
// to mode. An empty mode is treated as [ModeOff].
func Middleware(mode string, h http.Handler, opts ...Option) (http.Handler, error) {
	o := &options{
		handler: logging.NoopHandler{},
		out:     os.Stderr,
	}
	for _, opt := range opts {
		opt(o)
	}

	switch mode {
	case "", ModeOff:
		return h, nil
	case ModeStructured:
		return structured{
			log:  slog.New(o.handler),
			next: h,
		}, nil
	case ModePretty:
		return newPretty(o.out, h), nil
	default:
		return nil, UnknownModeError{Mode: mode}
	}
}

type structured struct {
	log  *slog.Logger
	next http.Handler
}

func (s structured) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m := httpsnoop.CaptureMetrics(s.next, w, r)

	s.log.InfoContext(
		r.Context(),
		"handled request",
		slog.String("http.method", r.Method),
		slog.String("http.path", r.URL.Path),
		slog.String("http.query", r.URL.RawQuery),
		slog.Int("http.status", m.Code),
		slog.Int64("http.bytes", m.Written),
		slog.Duration("http.duration", m.Duration),
	)
}

type pretty struct {
	mu     sync.Mutex
	out    io.Writer
	method lipgloss.Style
	status func(int) lipgloss.Style
	next   http.Handler
}

func newPretty(out io.Writer, next http.Handler) *pretty {
	r := lipgloss.NewRenderer(out)
	return &pretty{
		out:    out,
		method: r.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("12")).Bold(true).Width(8).Align(lipgloss.Center),
		status: func(code int) lipgloss.Style {
			return r.NewStyle().Foreground(statusColor(code)).Bold(true)
		},
		next: next,
	}
}

func statusColor(code int) lipgloss.Color {
	switch {
	case code >= 500:
		return lipgloss.Color("196")
	case code >= 400:
		return lipgloss.Color("208")
	case code >= 300:
		return lipgloss.Color("226")
	case code >= 200:
		return lipgloss.Color("46")
	default:
		return lipgloss.Color("15")
	}
}

func (p *pretty) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m := httpsnoop.CaptureMetrics(p.next, w, r)

	line := fmt.Sprintf(
		"%s %s %s %dB in %s\n",
		p.method.Render(r.Method),
		r.URL.RequestURI(),
		p.status(m.Code).Render(strconv.Itoa(m.Code)),
		m.Written,
		m.Duration.Round(time.Microsecond),
	)

	p.mu.Lock()
	defer p.mu.Unlock()
	io.WriteString(p.out, line)
}
