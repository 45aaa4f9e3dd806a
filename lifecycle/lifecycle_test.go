// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package lifecycle

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMultiHook(t *testing.T) {
	t.Run("will run every hook", func(t *testing.T) {
		t.Run("if an earlier hook fails", func(t *testing.T) {
			errA := errors.New("a")
			errB := errors.New("b")

			var ran []string
			hook := MultiHook(
				HookFunc(func(context.Context) error {
					ran = append(ran, "a")
					return errA
				}),
				HookFunc(func(context.Context) error {
					ran = append(ran, "b")
					return errB
				}),
				HookFunc(func(context.Context) error {
					ran = append(ran, "c")
					return nil
				}),
			)

			err := hook.Run(context.Background())
			if !assert.Equal(t, []string{"a", "b", "c"}, ran) {
				return
			}
			if !assert.ErrorIs(t, err, errA) {
				return
			}
			assert.ErrorIs(t, err, errB)
		})
	})

	t.Run("will return nil", func(t *testing.T) {
		t.Run("if there are no hooks", func(t *testing.T) {
			assert.Nil(t, MultiHook().Run(context.Background()))
		})
	})
}

func TestContext_PostRun(t *testing.T) {
	t.Run("will run hooks in reverse registration order", func(t *testing.T) {
		var lc Context

		var ran []int
		for i := range 3 {
			lc.OnPostRun(HookFunc(func(context.Context) error {
				ran = append(ran, i)
				return nil
			}))
		}

		err := lc.PostRun().Run(context.Background())
		if !assert.Nil(t, err) {
			return
		}
		assert.Equal(t, []int{2, 1, 0}, ran)
	})
}

func TestFromContext(t *testing.T) {
	t.Run("will return false", func(t *testing.T) {
		t.Run("if no lifecycle context was set", func(t *testing.T) {
			_, ok := FromContext(context.Background())
			assert.False(t, ok)
		})
	})

	t.Run("will return the lifecycle context", func(t *testing.T) {
		t.Run("if it was set with NewContext", func(t *testing.T) {
			lc := &Context{}
			ctx := NewContext(context.Background(), lc)

			got, ok := FromContext(ctx)
			if !assert.True(t, ok) {
				return
			}
			assert.Same(t, lc, got)
		})
	})
}
