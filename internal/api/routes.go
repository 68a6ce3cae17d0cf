package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/veranstalter/internal/config"
	"github.com/JaimeStill/veranstalter/internal/veranstalter"
	"github.com/JaimeStill/veranstalter/pkg/openapi"
	"github.com/JaimeStill/veranstalter/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
) error {
	groups := []routes.Group{
		domain.Veranstalter.Handler(cfg.API.BasePath, cfg.API.MaxUploadSizeBytes()).Routes(),
		domain.GraphQL.Routes(),
	}
	routes.Register(mux, groups...)

	spec, err := buildSpec(cfg, groups...)
	if err != nil {
		return err
	}
	mux.Handle("GET /openapi.json", openapi.ServeSpec(spec))

	return nil
}

// buildSpec renders the OpenAPI document for groups mounted under the base path.
func buildSpec(cfg *config.Config, groups ...routes.Group) ([]byte, error) {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	spec.Components.AddSchemas(veranstalter.Spec.Schemas())

	routes.Describe(spec, cfg.API.BasePath, groups...)

	data, err := openapi.MarshalJSON(spec)
	if err != nil {
		return nil, fmt.Errorf("marshal openapi spec: %w", err)
	}
	return data, nil
}
