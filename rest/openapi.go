// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"log/slog"
	"net/http"

	"github.com/birkin/routedemo/logging"
	"github.com/birkin/routedemo/rest/endpoint"

	"github.com/goccy/go-json"
	"github.com/swaggest/openapi-go/openapi3"
	"gopkg.in/yaml.v3"
)

type openApiHandler struct {
	log         *slog.Logger
	spec        *openapi3.Spec
	contentType string
	marshal     func(*openapi3.Spec) ([]byte, error)
}

func (h openApiHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b, err := h.marshal(h.spec)
	if err != nil {
		endpoint.NewErrorHandler(h.log.Handler()).HandleError(w, r, endpoint.MarshalError{Cause: err})
		return
	}
	writeResponse(h.log, w, r, endpoint.Binary(h.contentType, b))
}

// OpenApiJsonHandler returns an [http.Handler] which will respond with the OpenAPI schema as JSON.
func OpenApiJsonHandler(spec *openapi3.Spec) http.Handler {
	return openApiHandler{
		log:         slog.New(logging.NoopHandler{}),
		spec:        spec,
		contentType: "application/json",
		marshal: func(s *openapi3.Spec) ([]byte, error) {
			return json.Marshal(s)
		},
	}
}

// OpenApiYamlHandler returns an [http.Handler] which will respond with the OpenAPI schema as YAML.
func OpenApiYamlHandler(spec *openapi3.Spec) http.Handler {
	return openApiHandler{
		log:         slog.New(logging.NoopHandler{}),
		spec:        spec,
		contentType: "application/yaml",
		marshal:     marshalYaml,
	}
}

// JSON is valid YAML, so the JSON encoding is decoded generically and re-encoded.
func marshalYaml(s *openapi3.Spec) ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}

	var v any
	err = yaml.Unmarshal(b, &v)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(v)
}
