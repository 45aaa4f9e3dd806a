// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package app provides helpers for common [routedemo.App] implementation patterns.
package app

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/birkin/routedemo"
	"github.com/birkin/routedemo/internal/try"
	"github.com/birkin/routedemo/lifecycle"
)

type runFunc func(context.Context) error

func (f runFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// PanicError is returned by [Recover] when the wrapped App panics.
type PanicError = try.PanicError

// Recover will wrap the given [routedemo.App] with panic recovery.
// A recovered panic is returned as a [PanicError]. If the panic value
// is an error it can still be matched with [errors.Is].
func Recover(app routedemo.App) routedemo.App {
	return runFunc(func(ctx context.Context) (err error) {
		defer try.Recover(&err)

		return app.Run(ctx)
	})
}

// WithSignalNotifications wraps a given [routedemo.App] in an implementation
// that cancels the [context.Context] that's passed to app.Run if an [os.Signal]
// is received by the running process.
func WithSignalNotifications(app routedemo.App, signals ...os.Signal) routedemo.App {
	return runFunc(func(ctx context.Context) error {
		sigCtx, cancel := signal.NotifyContext(ctx, signals...)
		defer cancel()

		return app.Run(sigCtx)
	})
}

// WithLifecycleHooks wraps a given [routedemo.App] so postRun is always
// executed after app.Run returns, even if it fails or panics.
func WithLifecycleHooks(app routedemo.App, postRun lifecycle.Hook) routedemo.App {
	return runFunc(func(ctx context.Context) (err error) {
		defer runPostRunHook(ctx, postRun, &err)
		defer try.Recover(&err)

		return app.Run(ctx)
	})
}

func runPostRunHook(ctx context.Context, hook lifecycle.Hook, err *error) {
	if hook == nil {
		return
	}

	hookErr := hook.Run(context.WithoutCancel(ctx))
	if hookErr == nil {
		return
	}
	*err = errors.Join(*err, hookErr)
}
