// Package graphql exposes the organizer operations as a GraphQL schema.
package graphql

import (
	_ "embed"
	"log/slog"
	"net/http"

	"github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"

	"github.com/JaimeStill/veranstalter/internal/veranstalter"
	"github.com/JaimeStill/veranstalter/pkg/openapi"
	"github.com/JaimeStill/veranstalter/pkg/pagination"
	"github.com/JaimeStill/veranstalter/pkg/routes"
)

//go:embed schema.graphql
var schemaSDL string

// Handler serves GraphQL queries and mutations over HTTP.
type Handler struct {
	schema *graphql.Schema
}

// NewSchema parses the embedded schema against a root resolver for sys.
func NewSchema(sys veranstalter.System, logger *slog.Logger, cfg pagination.Config) *graphql.Schema {
	return graphql.MustParseSchema(schemaSDL, NewResolver(sys, logger, cfg))
}

// NewHandler creates a GraphQL handler for sys.
func NewHandler(sys veranstalter.System, logger *slog.Logger, cfg pagination.Config) *Handler {
	return &Handler{schema: NewSchema(sys, logger, cfg)}
}

// Routes returns the route group for the GraphQL endpoint.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/graphql",
		Tags:   []string{"GraphQL"},
		Routes: []routes.Route{
			{
				Method:  "POST",
				Pattern: "",
				Handler: h.serve,
				OpenAPI: &openapi.Operation{
					Summary:     "Execute a GraphQL query or mutation",
					Description: "Mutations require a bearer token. Errors carry extensions.code.",
					RequestBody: &openapi.RequestBody{
						Required: true,
						Content: map[string]*openapi.MediaType{
							"application/json": {Schema: &openapi.Schema{Type: "object"}},
						},
					},
					Responses: map[int]*openapi.Response{
						200: {Description: "GraphQL response with data and errors"},
					},
				},
			},
		},
	}
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request) {
	(&relay.Handler{Schema: h.schema}).ServeHTTP(w, r)
}
