// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package http

import (
	"context"
	"io"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListen(t *testing.T) {
	t.Run("will return a BindError", func(t *testing.T) {
		t.Run("if the address is already in use", func(t *testing.T) {
			ls, err := Listen("127.0.0.1:0")
			require.NoError(t, err)
			defer ls.Close()

			_, err = Listen(ls.Addr().String())

			var berr BindError
			if !assert.ErrorAs(t, err, &berr) {
				return
			}
			assert.Equal(t, ls.Addr().String(), berr.Addr)
		})

		t.Run("if the address is malformed", func(t *testing.T) {
			_, err := Listen("not-an-address")

			var berr BindError
			assert.ErrorAs(t, err, &berr)
		})
	})
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "starting", Starting.String())
	assert.Equal(t, "serving", Serving.String())
	assert.Equal(t, "draining", Draining.String())
	assert.Equal(t, "stopped", Stopped.String())
	assert.Equal(t, "State(9)", State(9).String())
}

type stateRecorder struct {
	mu     sync.Mutex
	states []State
}

func (r *stateRecorder) record(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *stateRecorder) get() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.states...)
}

func TestRuntime_Run(t *testing.T) {
	t.Run("will complete in-flight requests", func(t *testing.T) {
		t.Run("if the context is cancelled while a slow request is being served", func(t *testing.T) {
			started := make(chan struct{})
			h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				close(started)
				time.Sleep(300 * time.Millisecond)
				io.WriteString(w, "done")
			})

			ls, err := Listen("127.0.0.1:0")
			require.NoError(t, err)
			addr := ls.Addr().String()

			states := &stateRecorder{}
			rt := NewRuntime(ls, h, OnStateChange(states.record))

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			runErr := make(chan error, 1)
			go func() {
				runErr <- rt.Run(ctx)
			}()

			type result struct {
				status int
				body   string
				err    error
			}
			respCh := make(chan result, 1)
			go func() {
				resp, err := http.Get("http://" + addr + "/slow")
				if err != nil {
					respCh <- result{err: err}
					return
				}
				defer resp.Body.Close()
				b, err := io.ReadAll(resp.Body)
				respCh <- result{status: resp.StatusCode, body: string(b), err: err}
			}()

			<-started
			cancel()

			res := <-respCh
			if !assert.Nil(t, res.err) {
				return
			}
			if !assert.Equal(t, http.StatusOK, res.status) {
				return
			}
			if !assert.Equal(t, "done", res.body) {
				return
			}

			select {
			case err := <-runErr:
				if !assert.Nil(t, err) {
					return
				}
			case <-time.After(5 * time.Second):
				t.Fatal("runtime did not stop")
			}

			if !assert.Equal(t, []State{Serving, Draining, Stopped}, states.get()) {
				return
			}
			if !assert.Equal(t, Stopped, rt.State()) {
				return
			}

			_, err = net.DialTimeout("tcp", addr, time.Second)
			assert.NotNil(t, err)
		})
	})

	t.Run("will return a DrainTimeoutError", func(t *testing.T) {
		t.Run("if in-flight requests outlive the drain deadline", func(t *testing.T) {
			started := make(chan struct{})
			release := make(chan struct{})
			defer close(release)

			h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				close(started)
				<-release
			})

			ls, err := Listen("127.0.0.1:0")
			require.NoError(t, err)
			addr := ls.Addr().String()

			rt := NewRuntime(ls, h, DrainTimeout(50*time.Millisecond))

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			runErr := make(chan error, 1)
			go func() {
				runErr <- rt.Run(ctx)
			}()

			go func() {
				resp, err := http.Get("http://" + addr + "/stuck")
				if err == nil {
					resp.Body.Close()
				}
			}()

			<-started
			cancel()

			select {
			case err := <-runErr:
				var derr DrainTimeoutError
				if !assert.ErrorAs(t, err, &derr) {
					return
				}
				assert.Equal(t, 50*time.Millisecond, derr.Timeout)
			case <-time.After(5 * time.Second):
				t.Fatal("runtime did not stop")
			}
		})
	})

	t.Run("will apply the default server timeouts", func(t *testing.T) {
		ls, err := Listen("127.0.0.1:0")
		require.NoError(t, err)
		defer ls.Close()

		rt := NewRuntime(ls, http.NotFoundHandler())
		if !assert.Equal(t, Starting, rt.State()) {
			return
		}
		if !assert.Equal(t, 5*time.Second, rt.srv.ReadTimeout) {
			return
		}
		if !assert.Equal(t, 2*time.Second, rt.srv.ReadHeaderTimeout) {
			return
		}
		if !assert.Equal(t, 10*time.Second, rt.srv.WriteTimeout) {
			return
		}
		if !assert.Equal(t, 120*time.Second, rt.srv.IdleTimeout) {
			return
		}
		assert.Equal(t, 1048576, rt.srv.MaxHeaderBytes)
	})

	t.Run("will override the default server timeouts", func(t *testing.T) {
		ls, err := Listen("127.0.0.1:0")
		require.NoError(t, err)
		defer ls.Close()

		rt := NewRuntime(
			ls,
			http.NotFoundHandler(),
			ReadTimeout(time.Second),
			ReadHeaderTimeout(time.Second),
			WriteTimeout(time.Second),
			IdleTimeout(time.Second),
			MaxHeaderBytes(1024),
		)
		if !assert.Equal(t, time.Second, rt.srv.ReadTimeout) {
			return
		}
		if !assert.Equal(t, time.Second, rt.srv.WriteTimeout) {
			return
		}
		assert.Equal(t, 1024, rt.srv.MaxHeaderBytes)
	})
}
