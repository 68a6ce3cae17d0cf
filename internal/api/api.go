// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/JaimeStill/veranstalter/internal/config"
	"github.com/JaimeStill/veranstalter/internal/infrastructure"
	"github.com/JaimeStill/veranstalter/pkg/auth"
	"github.com/JaimeStill/veranstalter/pkg/middleware"
	"github.com/JaimeStill/veranstalter/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// Requests pass CORS, then request logging, then bearer authentication.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	mux := http.NewServeMux()
	if err := registerRoutes(mux, domain, cfg); err != nil {
		return nil, err
	}

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))
	m.Use(auth.Authenticate(runtime.Verifier, runtime.Logger.With("system", "auth")))

	return m, nil
}
