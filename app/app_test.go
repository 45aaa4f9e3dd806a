// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package app

import (
	"context"
	"errors"
	"testing"

	"github.com/birkin/routedemo/lifecycle"

	"github.com/stretchr/testify/assert"
)

func TestRecover(t *testing.T) {
	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the underlying App returns an error", func(t *testing.T) {
			appErr := errors.New("failed to run")
			app := Recover(runFunc(func(ctx context.Context) error {
				return appErr
			}))

			err := app.Run(context.Background())
			assert.Equal(t, appErr, err)
		})

		t.Run("if the underlying App panics with an error value", func(t *testing.T) {
			appErr := errors.New("failed to run")
			app := Recover(runFunc(func(ctx context.Context) error {
				panic(appErr)
			}))

			err := app.Run(context.Background())
			assert.ErrorIs(t, err, appErr)
		})

		t.Run("if the underlying App panics with a non-error value", func(t *testing.T) {
			app := Recover(runFunc(func(ctx context.Context) error {
				panic("hello world")
			}))

			err := app.Run(context.Background())

			var perr PanicError
			if !assert.ErrorAs(t, err, &perr) {
				return
			}
			if !assert.NotEmpty(t, perr.Error()) {
				return
			}
			assert.Equal(t, "hello world", perr.Value)
		})
	})
}

func TestWithSignalNotifications(t *testing.T) {
	t.Run("will propogate context cancellation", func(t *testing.T) {
		t.Run("if the parent context is cancelled", func(t *testing.T) {
			app := WithSignalNotifications(runFunc(func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			}))

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			err := app.Run(ctx)
			assert.ErrorIs(t, err, context.Canceled)
		})
	})
}

func TestWithLifecycleHooks(t *testing.T) {
	t.Run("will return error", func(t *testing.T) {
		t.Run("if the underlying app fails", func(t *testing.T) {
			baseErr := errors.New("failed to run app")
			base := runFunc(func(ctx context.Context) error {
				return baseErr
			})

			app := WithLifecycleHooks(base, nil)

			err := app.Run(context.Background())
			assert.ErrorIs(t, err, baseErr)
		})

		t.Run("if the post run hook fails", func(t *testing.T) {
			base := runFunc(func(ctx context.Context) error {
				return nil
			})

			postRunErr := errors.New("failed to post run")
			app := WithLifecycleHooks(base, lifecycle.HookFunc(func(ctx context.Context) error {
				return postRunErr
			}))

			err := app.Run(context.Background())
			assert.ErrorIs(t, err, postRunErr)
		})

		t.Run("if both the app and the post run hook fail", func(t *testing.T) {
			baseErr := errors.New("failed to run app")
			base := runFunc(func(ctx context.Context) error {
				return baseErr
			})

			postRunErr := errors.New("failed to post run")
			app := WithLifecycleHooks(base, lifecycle.HookFunc(func(ctx context.Context) error {
				return postRunErr
			}))

			err := app.Run(context.Background())
			if !assert.ErrorIs(t, err, baseErr) {
				return
			}
			assert.ErrorIs(t, err, postRunErr)
		})
	})

	t.Run("will run the post run hook", func(t *testing.T) {
		t.Run("if the underlying app panics", func(t *testing.T) {
			ran := false
			base := runFunc(func(ctx context.Context) error {
				panic("hello world")
			})

			app := WithLifecycleHooks(base, lifecycle.HookFunc(func(ctx context.Context) error {
				ran = true
				return nil
			}))

			err := app.Run(context.Background())
			if !assert.True(t, ran) {
				return
			}

			var perr PanicError
			assert.ErrorAs(t, err, &perr)
		})

		t.Run("with an uncancelled context if the run context was cancelled", func(t *testing.T) {
			var hookErr error
			base := runFunc(func(ctx context.Context) error {
				return nil
			})

			app := WithLifecycleHooks(base, lifecycle.HookFunc(func(ctx context.Context) error {
				hookErr = ctx.Err()
				return nil
			}))

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			err := app.Run(ctx)
			if !assert.Nil(t, err) {
				return
			}
			assert.Nil(t, hookErr)
		})
	})
}
