package openapi

import "maps"

func errorResponse(description string) *Response {
	return &Response{
		Description: description,
		Content: map[string]*MediaType{
			"application/json": {Schema: SchemaRef("Error")},
		},
	}
}

// NewComponents creates Components with shared schemas, error responses,
// and the bearer security scheme.
func NewComponents() *Components {
	return &Components{
		Schemas: map[string]*Schema{
			"Error": {
				Type: "object",
				Properties: map[string]*Schema{
					"error":    {Type: "string", Description: "Error message"},
					"messages": {Type: "array", Items: &Schema{Type: "string"}, Description: "Validation violations as path: message"},
				},
				Required: []string{"error"},
			},
			"PageMetadata": {
				Type: "object",
				Properties: map[string]*Schema{
					"size":          {Type: "integer", Description: "Requested page size"},
					"number":        {Type: "integer", Description: "Zero-based page number"},
					"totalElements": {Type: "integer", Description: "Matching records across all pages"},
					"totalPages":    {Type: "integer", Description: "Number of pages"},
				},
			},
		},
		Responses: map[string]*Response{
			"BadRequest":           errorResponse("Invalid request"),
			"Unauthorized":         errorResponse("Missing or invalid bearer token"),
			"Forbidden":            errorResponse("Token lacks a required role"),
			"NotFound":             errorResponse("Resource not found"),
			"NotAcceptable":        errorResponse("Accept header does not allow JSON"),
			"PreconditionFailed":   errorResponse("Version in If-Match is invalid or outdated"),
			"PreconditionRequired": errorResponse("If-Match header missing"),
			"PayloadTooLarge":      errorResponse("Upload exceeds the configured limit"),
		},
		SecuritySchemes: map[string]*SecurityScheme{
			"bearerAuth": {Type: "http", Scheme: "bearer", BearerFormat: "JWT"},
		},
	}
}

// AddSchemas merges the given schemas into the component schemas.
func (c *Components) AddSchemas(schemas map[string]*Schema) {
	maps.Copy(c.Schemas, schemas)
}

// AddResponses merges the given responses into the component responses.
func (c *Components) AddResponses(responses map[string]*Response) {
	maps.Copy(c.Responses, responses)
}
