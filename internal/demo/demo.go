// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package demo implements the demo route surface.
package demo

import (
	"bytes"
	"context"
	"embed"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/birkin/routedemo/internal/try"
	"github.com/birkin/routedemo/rest"
	"github.com/birkin/routedemo/rest/endpoint"

	"github.com/goccy/go-json"
)

//go:embed hello.html html demo.png
var assets embed.FS

const helloHTML = `<!doctype html>
<html>
  <head>
    <title>demo</title>
  </head>
  <body>
    <h1>Hello from a string</h1>
  </body>
</html>
`

// tutorialPNG is a 1x1 PNG.
const tutorialPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNk+M9QDwADhgGAWjR9awAAAABJRU5ErkJggg=="

const imagePNG = "image/png"

// AssetLoadError is returned by handlers which can not load the
// asset they serve.
type AssetLoadError struct {
	Name  string
	Cause error
}

// Error implements the [error] interface.
func (e AssetLoadError) Error() string {
	return fmt.Sprintf("failed to load asset %s: %s", e.Name, e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e AssetLoadError) Unwrap() error {
	return e.Cause
}

type routes struct {
	assets       fs.FS
	tutorial     string
	errHandler   endpoint.ErrorHandler
	logHandler   slog.Handler
	maxBodyBytes int64
}

// Option configures the demo routes.
type Option func(*routes)

// Assets replaces the embedded files served by the html and png routes.
func Assets(fsys fs.FS) Option {
	return func(r *routes) {
		r.assets = fsys
	}
}

// TutorialImage replaces the base64 encoded image served by /demo_tutorial.png.
func TutorialImage(b64 string) Option {
	return func(r *routes) {
		r.tutorial = b64
	}
}

// OnError sets the error handler of every route.
func OnError(eh endpoint.ErrorHandler) Option {
	return func(r *routes) {
		r.errHandler = eh
	}
}

// LogHandler sets where every route logs request errors.
func LogHandler(h slog.Handler) Option {
	return func(r *routes) {
		r.logHandler = h
	}
}

// MaxBodyBytes limits the request body of PUT /demo.json.
func MaxBodyBytes(n int64) Option {
	return func(r *routes) {
		r.maxBodyBytes = n
	}
}

// Endpoints returns every demo route.
func Endpoints(opts ...Option) []rest.Operation {
	r := &routes{
		assets:       assets,
		tutorial:     tutorialPNG,
		maxBodyBytes: endpoint.DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(r)
	}

	var common []endpoint.Option
	if r.logHandler != nil {
		common = append(common, endpoint.LogHandler(r.logHandler))
	}
	if r.errHandler != nil {
		common = append(common, endpoint.OnError(r.errHandler))
	}
	with := func(opts ...endpoint.Option) []endpoint.Option {
		return append(append([]endpoint.Option{}, common...), opts...)
	}

	ops := []rest.Operation{
		endpoint.Get[endpoint.Empty]("/", handler(hello), with(endpoint.Produces("text/plain"))...),
		endpoint.Get[endpoint.Empty]("/demo_from_string.html", handler(demoFromString), with(endpoint.Produces("text/html"))...),
		endpoint.Get[endpoint.Empty]("/demo_from_sibling_file.html", r.htmlFile("hello.html"), with(endpoint.Produces("text/html"))...),
		endpoint.Get[endpoint.Empty]("/demo_from_html_sub_dir.html", r.htmlFile("html/hello.html"), with(endpoint.Produces("text/html"))...),
		endpoint.Get[endpoint.Empty]("/demo_status_code", handler(demoStatusCode), with(endpoint.Produces("text/plain"))...),
		endpoint.Get[endpoint.Empty]("/demo-uri", handler(demoURI), with(endpoint.URI(), endpoint.Produces("text/plain"))...),
		endpoint.Get[endpoint.Empty]("/demo.png", r.pngFile("demo.png"), with(endpoint.Produces(imagePNG))...),
		endpoint.Get[endpoint.Empty]("/demo_tutorial.png", r.tutorialImage(), with(endpoint.Produces(imagePNG))...),
		endpoint.Get[endpoint.Empty]("/demo_direct.png", handler(demoDirect), with(endpoint.Produces(imagePNG))...),
		endpoint.Get[endpoint.Empty]("/items/:id", handler(getItem), with(endpoint.PathParam("id"), endpoint.Produces("text/plain"))...),
		endpoint.Get[endpoint.Empty]("/items_query_params_example_A", handler(queryParamsA), with(endpoint.QueryParams(), endpoint.Produces("text/plain"))...),
		endpoint.Get[endpoint.Empty]("/items_query_params_example_B", handler(queryParamsB), with(endpoint.QueryParams(), endpoint.Produces("text/plain"))...),
		endpoint.Get[endpoint.Empty]("/demo.json", handler(getDemoJSON), with(endpoint.Produces("application/json"))...),
		endpoint.Put[any]("/demo.json", endpoint.HandlerFunc[any](putDemoJSON), with(endpoint.JSONBody(), endpoint.MaxBodyBytes(r.maxBodyBytes), endpoint.Produces("text/plain"))...),
	}

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		ops = append(ops, endpoint.New[endpoint.Empty](
			method,
			"/verb_foo",
			handler(verbFoo),
			with(endpoint.Method(), endpoint.Produces("text/plain"))...,
		))
	}
	return ops
}

func handler(f func(context.Context, endpoint.Request[endpoint.Empty]) (endpoint.Response, error)) endpoint.Handler[endpoint.Empty] {
	return endpoint.HandlerFunc[endpoint.Empty](f)
}

func hello(_ context.Context, _ endpoint.Request[endpoint.Empty]) (endpoint.Response, error) {
	return endpoint.Text("Hello, World!"), nil
}

func demoFromString(_ context.Context, _ endpoint.Request[endpoint.Empty]) (endpoint.Response, error) {
	return endpoint.HTML(helloHTML), nil
}

func (r *routes) htmlFile(name string) endpoint.Handler[endpoint.Empty] {
	return handler(func(_ context.Context, _ endpoint.Request[endpoint.Empty]) (endpoint.Response, error) {
		b, err := r.load(name)
		if err != nil {
			return endpoint.Response{}, err
		}
		return endpoint.HTML(string(b)), nil
	})
}

func (r *routes) pngFile(name string) endpoint.Handler[endpoint.Empty] {
	return handler(func(_ context.Context, _ endpoint.Request[endpoint.Empty]) (endpoint.Response, error) {
		b, err := r.load(name)
		if err != nil {
			return endpoint.Response{}, err
		}
		return endpoint.Binary(imagePNG, b), nil
	})
}

func (r *routes) load(name string) (b []byte, err error) {
	f, err := r.assets.Open(name)
	if err != nil {
		return nil, AssetLoadError{Name: name, Cause: err}
	}
	defer try.Close(&err, f)

	b, err = io.ReadAll(f)
	if err != nil {
		return nil, AssetLoadError{Name: name, Cause: err}
	}
	return b, nil
}

func (r *routes) tutorialImage() endpoint.Handler[endpoint.Empty] {
	return handler(func(_ context.Context, _ endpoint.Request[endpoint.Empty]) (endpoint.Response, error) {
		b, err := base64.StdEncoding.DecodeString(r.tutorial)
		if err != nil {
			return endpoint.Response{}, AssetLoadError{Name: "tutorial image", Cause: err}
		}
		return endpoint.Binary(imagePNG, b), nil
	})
}

func demoDirect(_ context.Context, _ endpoint.Request[endpoint.Empty]) (endpoint.Response, error) {
	const size = 16

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(x * 255 / (size - 1)),
				G: uint8(y * 255 / (size - 1)),
				B: 128,
				A: 255,
			})
		}
	}

	var buf bytes.Buffer
	err := png.Encode(&buf, img)
	if err != nil {
		return endpoint.Response{}, AssetLoadError{Name: "generated image", Cause: err}
	}
	return endpoint.Binary(imagePNG, buf.Bytes()), nil
}

func demoStatusCode(_ context.Context, _ endpoint.Request[endpoint.Empty]) (endpoint.Response, error) {
	return endpoint.StatusText(http.StatusOK, "200/ OK"), nil
}

func demoURI(_ context.Context, req endpoint.Request[endpoint.Empty]) (endpoint.Response, error) {
	return endpoint.Text("The URI is: " + req.URI()), nil
}

func verbFoo(_ context.Context, req endpoint.Request[endpoint.Empty]) (endpoint.Response, error) {
	return endpoint.Text(req.Method() + " foo"), nil
}

func getItem(_ context.Context, req endpoint.Request[endpoint.Empty]) (endpoint.Response, error) {
	return endpoint.Text("Get items with path id: " + req.Param("id")), nil
}

func queryParamsA(_ context.Context, req endpoint.Request[endpoint.Empty]) (endpoint.Response, error) {
	return endpoint.Text("Demo query params: " + formatQuery(req.Query())), nil
}

func queryParamsB(_ context.Context, req endpoint.Request[endpoint.Empty]) (endpoint.Response, error) {
	return endpoint.Text("Get items with query params: " + formatQuery(req.Query())), nil
}

// formatQuery renders m as {"k": "v", ...} with keys in sorted order.
func formatQuery(m map[string]string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.Quote(k))
		sb.WriteString(": ")
		sb.WriteString(strconv.Quote(m[k]))
	}
	sb.WriteByte('}')
	return sb.String()
}

func getDemoJSON(_ context.Context, _ endpoint.Request[endpoint.Empty]) (endpoint.Response, error) {
	return endpoint.JSON(map[string]string{"a": "b"}), nil
}

func putDemoJSON(_ context.Context, req endpoint.Request[any]) (endpoint.Response, error) {
	b, err := json.Marshal(req.Body)
	if err != nil {
		return endpoint.Response{}, endpoint.MarshalError{Cause: err}
	}
	return endpoint.Text("Put demo JSON data: " + string(b)), nil
}
