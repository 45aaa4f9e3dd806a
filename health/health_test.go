// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBinary(t *testing.T) {
	t.Run("will be healthy", func(t *testing.T) {
		t.Run("if it is the zero value", func(t *testing.T) {
			var m Binary
			assert.True(t, m.Healthy(context.Background()))
		})

		t.Run("if it was marked healthy after being unhealthy", func(t *testing.T) {
			var m Binary
			m.MarkUnhealthy()
			m.MarkHealthy()
			assert.True(t, m.Healthy(context.Background()))
		})
	})

	t.Run("will be unhealthy", func(t *testing.T) {
		t.Run("if it was marked unhealthy", func(t *testing.T) {
			var m Binary
			m.MarkUnhealthy()
			assert.False(t, m.Healthy(context.Background()))
		})
	})
}

type healthyMetric bool

func (m healthyMetric) Healthy(_ context.Context) bool {
	return bool(m)
}

func TestAndMetric_Healthy(t *testing.T) {
	t.Run("will return true", func(t *testing.T) {
		testCases := []struct {
			Name    string
			Metrics []Metric
		}{
			{
				Name:    "if there are no metrics",
				Metrics: nil,
			},
			{
				Name:    "if there is a single healthy metric",
				Metrics: []Metric{healthyMetric(true)},
			},
			{
				Name:    "if all metrics are healthy",
				Metrics: []Metric{healthyMetric(true), healthyMetric(true)},
			},
		}
		for _, testCase := range testCases {
			t.Run(testCase.Name, func(t *testing.T) {
				am := And(testCase.Metrics...)
				assert.True(t, am.Healthy(context.Background()))
			})
		}
	})

	t.Run("will return false", func(t *testing.T) {
		t.Run("if any metric is unhealthy", func(t *testing.T) {
			am := And(healthyMetric(true), healthyMetric(false))
			assert.False(t, am.Healthy(context.Background()))
		})
	})
}

func TestHandler(t *testing.T) {
	t.Run("will return 200", func(t *testing.T) {
		t.Run("if the metric is healthy", func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/health/liveness", nil)

			Handler(healthyMetric(true)).ServeHTTP(w, r)

			assert.Equal(t, http.StatusOK, w.Result().StatusCode)
		})
	})

	t.Run("will return 503", func(t *testing.T) {
		t.Run("if the metric is unhealthy", func(t *testing.T) {
			var m Binary
			m.MarkUnhealthy()

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/health/readiness", nil)

			Handler(&m).ServeHTTP(w, r)

			resp := w.Result()
			if !assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode) {
				return
			}
			assert.Equal(t, "Service Unavailable", w.Body.String())
		})
	})
}
