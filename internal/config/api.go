package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/veranstalter/pkg/formatting"
	"github.com/JaimeStill/veranstalter/pkg/middleware"
	"github.com/JaimeStill/veranstalter/pkg/openapi"
	"github.com/JaimeStill/veranstalter/pkg/pagination"
)

const defaultMaxUploadSize = 10 * 1024 * 1024

var corsEnv = &middleware.CORSEnv{
	Enabled:          "VERANSTALTER_CORS_ENABLED",
	Origins:          "VERANSTALTER_CORS_ORIGINS",
	AllowedMethods:   "VERANSTALTER_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "VERANSTALTER_CORS_ALLOWED_HEADERS",
	ExposedHeaders:   "VERANSTALTER_CORS_EXPOSED_HEADERS",
	AllowCredentials: "VERANSTALTER_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "VERANSTALTER_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "VERANSTALTER_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "VERANSTALTER_PAGINATION_MAX_PAGE_SIZE",
}

var openAPIEnv = &openapi.ConfigEnv{
	Title:       "VERANSTALTER_OPENAPI_TITLE",
	Description: "VERANSTALTER_OPENAPI_DESCRIPTION",
}

// APIConfig holds API routing, upload, CORS, pagination, and OpenAPI settings.
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	MaxUploadSize formatting.ByteSize   `toml:"max_upload_size"`
	CORS          middleware.CORSConfig `toml:"cors"`
	Pagination    pagination.Config     `toml:"pagination"`
	OpenAPI       openapi.Config        `toml:"openapi"`
}

// MaxUploadSizeBytes returns the upload limit in bytes.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	if c.MaxUploadSize <= 0 {
		return defaultMaxUploadSize
	}
	return c.MaxUploadSize.Int64()
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	if err := c.loadEnv(); err != nil {
		return err
	}

	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	if err := c.OpenAPI.Finalize(openAPIEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != 0 {
		c.MaxUploadSize = overlay.MaxUploadSize
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
	c.OpenAPI.Merge(&overlay.OpenAPI)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == 0 {
		c.MaxUploadSize = defaultMaxUploadSize
	}
}

func (c *APIConfig) loadEnv() error {
	if v := os.Getenv("VERANSTALTER_API_BASE_PATH"); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv("VERANSTALTER_API_MAX_UPLOAD_SIZE"); v != "" {
		if err := c.MaxUploadSize.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("invalid max_upload_size: %w", err)
		}
	}
	return nil
}
