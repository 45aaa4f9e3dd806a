// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package endpoint

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/birkin/routedemo/internal/ptr"

	"github.com/swaggest/jsonschema-go"
	"github.com/swaggest/openapi-go/openapi3"
)

// OpenApiPath returns the endpoint pattern using OpenAPI path templating,
// e.g. "/items/:id" becomes "/items/{id}".
func (e *Endpoint[Body]) OpenApiPath() string {
	segments := e.pattern.Segments()
	if len(segments) == 0 {
		return "/"
	}

	var sb strings.Builder
	for _, seg := range segments {
		sb.WriteByte('/')
		if seg.Param {
			sb.WriteString("{" + seg.Value + "}")
			continue
		}
		sb.WriteString(seg.Value)
	}
	return sb.String()
}

// OpenApi describes the endpoint as an OpenAPI operation.
func (e *Endpoint[Body]) OpenApi() openapi3.Operation {
	op := openapi3.Operation{}
	if e.summary != "" {
		op.Summary = ptr.Ref(e.summary)
	}

	// every pattern parameter must be documented, declared or not
	for _, name := range e.pattern.Params() {
		op.Parameters = append(op.Parameters, openapi3.ParameterOrRef{
			Parameter: &openapi3.Parameter{
				Name:     name,
				In:       openapi3.ParameterInPath,
				Required: ptr.Ref(true),
				Schema:   stringSchema(),
			},
		})
	}

	if e.inputs.query {
		op.Parameters = append(op.Parameters, openapi3.ParameterOrRef{
			Parameter: &openapi3.Parameter{
				Name:    "params",
				In:      openapi3.ParameterInQuery,
				Style:   ptr.Ref("form"),
				Explode: ptr.Ref(true),
				Schema: &openapi3.SchemaOrRef{
					Schema: &openapi3.Schema{
						Type: ptr.Ref(openapi3.SchemaTypeObject),
						AdditionalProperties: &openapi3.SchemaAdditionalProperties{
							SchemaOrRef: stringSchema(),
						},
					},
				},
			},
		})
	}

	op.Responses = openapi3.Responses{
		MapOfResponseOrRefValues: map[string]openapi3.ResponseOrRef{
			strconv.Itoa(http.StatusOK): {
				Response: &openapi3.Response{
					Description: http.StatusText(http.StatusOK),
					Content:     e.responseContent(),
				},
			},
		},
	}

	if !e.inputs.body {
		return op
	}

	op.RequestBody = &openapi3.RequestBodyOrRef{
		RequestBody: &openapi3.RequestBody{
			Required: ptr.Ref(true),
			Content: map[string]openapi3.MediaType{
				applicationJSON: {
					Schema: bodySchema[Body](),
				},
			},
		},
	}
	op.Responses.MapOfResponseOrRefValues[strconv.Itoa(http.StatusBadRequest)] = openapi3.ResponseOrRef{
		Response: &openapi3.Response{
			Description: http.StatusText(http.StatusBadRequest),
		},
	}
	return op
}

func (e *Endpoint[Body]) responseContent() map[string]openapi3.MediaType {
	if e.contentType == "" {
		return nil
	}
	return map[string]openapi3.MediaType{
		e.contentType: {},
	}
}

func stringSchema() *openapi3.SchemaOrRef {
	return &openapi3.SchemaOrRef{
		Schema: &openapi3.Schema{
			Type: ptr.Ref(openapi3.SchemaTypeString),
		},
	}
}

func bodySchema[Body any]() *openapi3.SchemaOrRef {
	var body Body
	if any(body) == nil {
		return nil
	}

	var reflector jsonschema.Reflector
	jsonSchema, err := reflector.Reflect(body)
	if err != nil {
		return nil
	}

	var schemaOrRef openapi3.SchemaOrRef
	schemaOrRef.FromJSONSchema(jsonSchema.ToSchemaOrBool())
	return &schemaOrRef
}
