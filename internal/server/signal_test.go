// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

//go:build !windows

package server

import (
	"context"
	"io"
	"net"
	"os"
	"syscall"
	"testing"

	"github.com/birkin/routedemo"
	"github.com/birkin/routedemo/config"
	httpruntime "github.com/birkin/routedemo/runtime/http"

	"github.com/stretchr/testify/assert"
)

func TestBuild_Signal(t *testing.T) {
	t.Run("will drain and return nil", func(t *testing.T) {
		t.Run("if SIGTERM is received", func(t *testing.T) {
			ls, err := net.Listen("tcp", "127.0.0.1:0")
			if !assert.Nil(t, err) {
				return
			}

			serving := make(chan struct{})
			errCh := make(chan error, 1)
			go func() {
				errCh <- routedemo.Run(
					context.Background(),
					Build(
						Listener(ls),
						Output(io.Discard),
						OnStateChange(func(s httpruntime.State) {
							if s == httpruntime.Serving {
								close(serving)
							}
						}),
					),
					config.Map{"otel": map[string]any{"exporter": "none"}},
				)
			}()

			waitServing(t, serving, errCh)
			err = syscall.Kill(os.Getpid(), syscall.SIGTERM)
			if !assert.Nil(t, err) {
				return
			}
			assert.Nil(t, <-errCh)
		})
	})
}
