package veranstalter

import "github.com/JaimeStill/veranstalter/pkg/openapi"

type spec struct {
	Find     *openapi.Operation
	FindByID *openapi.Operation
	Download *openapi.Operation
	Create   *openapi.Operation
	Upload   *openapi.Operation
	Update   *openapi.Operation
	Delete   *openapi.Operation
}

// Spec holds the OpenAPI operations of the organizer routes.
var Spec = spec{
	Find: &openapi.Operation{
		Summary:     "Search organizers",
		Description: "Returns a page of organizers. Every query parameter except page, size and only is a search key.",
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("page", "integer", "Zero-based page number", false),
			openapi.QueryParam("size", "integer", "Page size", false),
			openapi.QueryParam("only", "string", "Set to count for the total number of organizers", false),
			openapi.QueryParam("name", "string", "Case-insensitive substring of the name", false),
			openapi.QueryParam("email", "string", "Exact email", false),
			openapi.QueryParam("aktiv", "boolean", "Active flag", false),
			openapi.QueryParam("art", "string", "ONLINE, PRAESENZ or HYBRID", false),
			openapi.QueryParam("ort", "string", "Case-insensitive substring of the location", false),
			openapi.QueryParam("land", "string", "Exact country", false),
			openapi.QueryParam("plz", "string", "Exact postal code", false),
			openapi.QueryParam("telefon", "string", "Exact phone number", false),
			openapi.QueryParam("kategorien", "string", "Category the organizer is tagged with", false),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Page of organizers", "VeranstalterPage"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	FindByID: &openapi.Operation{
		Summary: "Find an organizer by id",
		Parameters: []*openapi.Parameter{
			openapi.PathParam("id", "Organizer id"),
			openapi.QueryParam("teilnehmer", "boolean", "Include participants, documents and file metadata", false),
			openapi.HeaderParam("If-None-Match", "Version token from a previous ETag", false),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Organizer", "Veranstalter"),
			304: {Description: "Version unchanged"},
			404: openapi.ResponseRef("NotFound"),
			406: openapi.ResponseRef("NotAcceptable"),
		},
	},
	Download: &openapi.Operation{
		Summary:    "Download the attached file",
		Parameters: []*openapi.Parameter{openapi.PathParam("id", "Organizer id")},
		Responses: map[int]*openapi.Response{
			200: {
				Description: "File content",
				Content: map[string]*openapi.MediaType{
					"application/octet-stream": {Schema: &openapi.Schema{Type: "string", Format: "binary"}},
				},
			},
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Create: &openapi.Operation{
		Summary:     "Create an organizer",
		RequestBody: openapi.RequestBodyJSON("VeranstalterDTO", true),
		Security:    openapi.Bearer,
		Responses: map[int]*openapi.Response{
			201: {Description: "Created, Location points at the organizer"},
			400: openapi.ResponseRef("BadRequest"),
			401: openapi.ResponseRef("Unauthorized"),
			403: openapi.ResponseRef("Forbidden"),
		},
	},
	Upload: &openapi.Operation{
		Summary:     "Attach a file",
		Description: "Accepts PNG, JPEG or PDF content. Replaces an existing attachment.",
		Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Organizer id")},
		RequestBody: openapi.RequestBodyMultipart("file"),
		Security:    openapi.Bearer,
		Responses: map[int]*openapi.Response{
			204: {Description: "Attached, Location points at the download"},
			400: openapi.ResponseRef("BadRequest"),
			401: openapi.ResponseRef("Unauthorized"),
			403: openapi.ResponseRef("Forbidden"),
			404: openapi.ResponseRef("NotFound"),
			413: openapi.ResponseRef("PayloadTooLarge"),
		},
	},
	Update: &openapi.Operation{
		Summary: "Update an organizer",
		Parameters: []*openapi.Parameter{
			openapi.PathParam("id", "Organizer id"),
			openapi.HeaderParam("If-Match", "Current version token", true),
		},
		RequestBody: openapi.RequestBodyJSON("VeranstalterUpdateDTO", true),
		Security:    openapi.Bearer,
		Responses: map[int]*openapi.Response{
			204: {Description: "Updated, ETag carries the new version"},
			400: openapi.ResponseRef("BadRequest"),
			401: openapi.ResponseRef("Unauthorized"),
			403: openapi.ResponseRef("Forbidden"),
			404: openapi.ResponseRef("NotFound"),
			412: openapi.ResponseRef("PreconditionFailed"),
			428: openapi.ResponseRef("PreconditionRequired"),
		},
	},
	Delete: &openapi.Operation{
		Summary:    "Delete an organizer",
		Parameters: []*openapi.Parameter{openapi.PathParam("id", "Organizer id")},
		Security:   openapi.Bearer,
		Responses: map[int]*openapi.Response{
			204: {Description: "Deleted"},
			401: openapi.ResponseRef("Unauthorized"),
			403: openapi.ResponseRef("Forbidden"),
		},
	},
}

func strMax(desc string, n int) *openapi.Schema {
	return &openapi.Schema{Type: "string", Description: desc, MaxLength: &n}
}

func rating() *openapi.Schema {
	lo, hi := 0.0, 5.0
	return &openapi.Schema{Type: "integer", Minimum: &lo, Maximum: &hi}
}

func art() *openapi.Schema {
	return &openapi.Schema{Type: "string", Enum: []any{ArtOnline, ArtPraesenz, ArtHybrid}}
}

func stringList() *openapi.Schema {
	return &openapi.Schema{Type: "array", Items: &openapi.Schema{Type: "string"}}
}

// Schemas returns the component schemas referenced by Spec.
func (spec) Schemas() map[string]*openapi.Schema {
	standort := &openapi.Schema{
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"ort":     {Type: "string", MaxLength: ptr(40), Pattern: ortPattern.String()},
			"plz":     {Type: "string", Pattern: plzPattern.String()},
			"strasse": strMax("Street", 64),
			"land":    strMax("Country", 64),
			"details": strMax("Additional directions", 128),
		},
		Required: []string{"ort"},
	}

	scalars := func() map[string]*openapi.Schema {
		return map[string]*openapi.Schema{
			"name":            strMax("Organizer name", 64),
			"email":           {Type: "string", Format: "email"},
			"telefon":         {Type: "string", Pattern: telefonPattern.String()},
			"homepage":        {Type: "string", Format: "uri"},
			"gruendungsdatum": {Type: "string", Format: "date"},
			"bewertung":       rating(),
			"aktiv":           {Type: "boolean"},
			"art":             art(),
			"kategorien":      stringList(),
		}
	}

	create := scalars()
	create["standort"] = openapi.SchemaRef("StandortDTO")
	create["teilnehmer"] = &openapi.Schema{Type: "array", Items: openapi.SchemaRef("TeilnehmerDTO")}
	create["dokumente"] = &openapi.Schema{Type: "array", Items: openapi.SchemaRef("DokumentDTO")}

	update := scalars()
	update["standort"] = openapi.SchemaRef("StandortDTO")

	entity := scalars()
	entity["id"] = &openapi.Schema{Type: "integer"}
	entity["version"] = &openapi.Schema{Type: "integer"}
	entity["standort"] = openapi.SchemaRef("StandortDTO")
	entity["erzeugt"] = &openapi.Schema{Type: "string", Format: "date-time"}
	entity["aktualisiert"] = &openapi.Schema{Type: "string", Format: "date-time"}

	return map[string]*openapi.Schema{
		"StandortDTO": standort,
		"TeilnehmerDTO": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"vorname":  strMax("First name", 64),
				"nachname": strMax("Last name", 64),
				"email":    {Type: "string", Format: "email"},
			},
			Required: []string{"vorname", "nachname"},
		},
		"DokumentDTO": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"titel":        strMax("Title", 128),
				"beschreibung": strMax("Description", 512),
				"dateiname":    strMax("File name", 255),
			},
			Required: []string{"titel", "dateiname"},
		},
		"VeranstalterDTO":       {Type: "object", Properties: create, Required: []string{"name", "standort"}},
		"VeranstalterUpdateDTO": {Type: "object", Properties: update, Required: []string{"name"}},
		"Veranstalter":          {Type: "object", Properties: entity},
		"VeranstalterPage": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"content": {Type: "array", Items: openapi.SchemaRef("Veranstalter")},
				"page":    openapi.SchemaRef("PageMetadata"),
			},
		},
		"Count": {
			Type:       "object",
			Properties: map[string]*openapi.Schema{"count": {Type: "integer"}},
		},
	}
}

func ptr[T any](v T) *T {
	return &v
}
