// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3gen"

	"github.com/telekom/pathscope/internal/logger"
)

var errUnknownSchema = errors.New("unknown schema")

// Schema names a Go value whose json shape is published as a component schema.
type Schema struct {
	Name  string
	Value any
}

// Operation describes one documented endpoint.
type Operation struct {
	Path        string
	Method      string
	Summary     string
	Parameters  openapi3.Parameters
	ContentType string
	// Schema is the name of the component schema of the 200 response, if any.
	Schema string
	// Status lists further documented response codes with their description.
	Status map[int]string
}

// OpenAPI builds the OpenAPI document of the api from the given schemas and operations
func OpenAPI(ctx context.Context, version string, schemas []Schema, ops []Operation) (*openapi3.T, error) {
	log := logger.FromContext(ctx)
	doc := &openapi3.T{
		OpenAPI: "3.0.0",
		Info: &openapi3.Info{
			Title:       "pathscope",
			Description: "Route tracing with hop classification and address intelligence",
			Version:     version,
		},
		Paths: openapi3.NewPaths(),
		Components: &openapi3.Components{
			Schemas: make(openapi3.Schemas),
		},
	}

	for _, s := range schemas {
		ref, err := openapi3gen.NewSchemaRefForValue(s.Value, doc.Components.Schemas)
		if err != nil {
			log.ErrorContext(ctx, "Failed to create openapi schema", "name", s.Name, "error", err)
			return nil, &ErrCreateOpenapiSchema{name: s.Name, err: err}
		}
		doc.Components.Schemas[s.Name] = ref
	}

	for _, op := range ops {
		ok := openapi3.NewResponse().WithDescription("OK")
		if op.Schema != "" {
			schema, found := doc.Components.Schemas[op.Schema]
			if !found {
				return nil, &ErrCreateOpenapiSchema{name: op.Schema, err: errUnknownSchema}
			}
			ok.WithContent(openapi3.NewContentWithSchemaRef(
				openapi3.NewSchemaRef("#/components/schemas/"+op.Schema, schema.Value),
				[]string{op.ContentType},
			))
		}
		responses := openapi3.NewResponses(openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{Value: ok}))
		for code, desc := range op.Status {
			responses.Set(strconv.Itoa(code), &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription(desc)})
		}

		item := doc.Paths.Value(op.Path)
		if item == nil {
			item = &openapi3.PathItem{}
			doc.Paths.Set(op.Path, item)
		}
		item.SetOperation(op.Method, &openapi3.Operation{
			Summary:    op.Summary,
			Parameters: op.Parameters,
			Responses:  responses,
		})
	}

	return doc, nil
}
