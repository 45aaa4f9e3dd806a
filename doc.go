// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package routedemo is a small HTTP routing framework and the demo server
// built on it.
//
// A request flows through four pieces:
//
//   - [github.com/birkin/routedemo/rest/mux] matches the method and path
//     against an immutable route table, preferring literal segments over
//     parameters.
//   - [github.com/birkin/routedemo/rest/endpoint] extracts only the inputs a
//     handler declared, path parameters, query parameters, a JSON body, and
//     encodes the handler's [endpoint.Response].
//   - [github.com/birkin/routedemo/rest] assembles endpoints into an App and
//     answers unmatched requests with 404 "No route <uri>".
//   - [github.com/birkin/routedemo/runtime/http] binds, serves and drains
//     in-flight requests when the process is interrupted.
//
// [Run] ties configuration, app construction and lifecycle hooks together:
//
//	err := routedemo.Run(ctx, routedemo.AppBuilderFunc[Config](build), srcs...)
//
// [endpoint.Response]: https://pkg.go.dev/github.com/birkin/routedemo/rest/endpoint#Response
package routedemo
