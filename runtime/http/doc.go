// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package http runs an [net/http.Server] through a small lifecycle:
//
//	Starting -> Serving -> Draining -> Stopped
//
// Binding happens before the [Runtime] is created, see [Listen], so a bind
// failure is reported as a [BindError] without anything being served.
// Cancelling the context passed to [Runtime.Run] moves the Runtime into
// Draining where the listener stops accepting and in-flight requests are
// allowed to complete, optionally bounded by [DrainTimeout].
//
// # Default Values
//
// When server options are not specified, the following defaults are applied:
//
//   - ReadTimeout: 5 seconds
//   - ReadHeaderTimeout: 2 seconds
//   - WriteTimeout: 10 seconds
//   - IdleTimeout: 120 seconds
//   - MaxHeaderBytes: 1048576 bytes (1 MB)
//   - DrainTimeout: none
package http
