package veranstalter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/JaimeStill/veranstalter/pkg/auth"
	"github.com/JaimeStill/veranstalter/pkg/handlers"
	"github.com/JaimeStill/veranstalter/pkg/pagination"
	"github.com/JaimeStill/veranstalter/pkg/routes"
	"github.com/JaimeStill/veranstalter/pkg/validation"
)

// Query parameters that control paging instead of filtering.
var pageKeys = map[string]bool{"page": true, "size": true, "only": true}

// Handler provides HTTP endpoints for organizer operations.
type Handler struct {
	sys           System
	logger        *slog.Logger
	pagination    pagination.Config
	validator     *validation.Validator
	basePath      string
	maxUploadSize int64
}

// NewHandler creates a Handler. basePath is the public prefix the routes are
// mounted under and is used to build Location headers.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
	basePath string,
	maxUploadSize int64,
) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "veranstalter"),
		pagination:    pagination,
		validator:     NewValidator(),
		basePath:      strings.TrimSuffix(basePath, "/"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for organizer endpoints.
func (h *Handler) Routes() routes.Group {
	admin := auth.Require(h.logger, auth.RoleAdmin)
	writer := auth.Require(h.logger, auth.RoleAdmin, auth.RoleUser)

	return routes.Group{
		Prefix: "/veranstalter",
		Tags:   []string{"Veranstalter"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.Find, OpenAPI: Spec.Find},
			{Method: "GET", Pattern: "/{id}", Handler: h.FindByID, OpenAPI: Spec.FindByID},
			{Method: "GET", Pattern: "/file/{id}", Handler: h.Download, OpenAPI: Spec.Download},
			{
				Method:     "POST",
				Pattern:    "",
				Handler:    h.Create,
				Middleware: []func(http.Handler) http.Handler{admin},
				OpenAPI:    Spec.Create,
			},
			{
				Method:     "POST",
				Pattern:    "/{id}",
				Handler:    h.Upload,
				Middleware: []func(http.Handler) http.Handler{writer},
				OpenAPI:    Spec.Upload,
			},
			{
				Method:     "PUT",
				Pattern:    "/{id}",
				Handler:    h.Update,
				Middleware: []func(http.Handler) http.Handler{writer},
				OpenAPI:    Spec.Update,
			},
			{
				Method:     "DELETE",
				Pattern:    "/{id}",
				Handler:    h.Delete,
				Middleware: []func(http.Handler) http.Handler{admin},
				OpenAPI:    Spec.Delete,
			},
		},
	}
}

// FindByID returns one organizer with its ETag.
// A matching If-None-Match yields 304 without a body.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if !acceptable(r.Header.Get("Accept")) {
		handlers.RespondError(w, h.logger, http.StatusNotAcceptable, ErrNotAcceptable)
		return
	}

	opts := FindOptions{Teilnehmer: r.URL.Query().Get("teilnehmer") == "true"}

	v, err := h.sys.FindByID(r.Context(), id, opts)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	etag := FormatVersion(v.Version)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	handlers.RespondJSON(w, http.StatusOK, v)
}

// Find returns a page of organizers matching the query parameters.
// only=count returns the unfiltered number of organizers instead.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()

	if values.Get("only") == "count" {
		n, err := h.sys.Count(r.Context())
		if err != nil {
			handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
			return
		}
		handlers.RespondJSON(w, http.StatusOK, map[string]int{"count": n})
		return
	}

	params := make(Suchparameter)
	for key, vals := range values {
		if pageKeys[key] || len(vals) == 0 || vals[0] == "" {
			continue
		}
		params[key] = vals[0]
	}

	page := pagination.PageRequestFromQuery(values, h.pagination)

	slice, err := h.sys.Find(r.Context(), params, page)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, pagination.NewPage(*slice, page))
}

// Download streams the attached file of an organizer.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	fc, err := h.sys.FindFile(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	if fc == nil {
		handlers.RespondError(w, h.logger, http.StatusNotFound, fmt.Errorf("%w: no file for id %d", ErrNotFound, id))
		return
	}
	defer fc.Body.Close()

	contentType := "image/png"
	if fc.Mimetype != nil && *fc.Mimetype != "" {
		contentType = *fc.Mimetype
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", fc.Filename))
	if fc.SizeBytes > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(fc.SizeBytes, 10))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, fc.Body); err != nil {
		h.logger.Warn("file stream interrupted", "id", id, "error", err)
	}
}

// Create registers a new organizer and points Location at it.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto VeranstalterDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: %v", ErrValidation, err))
		return
	}

	if err := h.validator.Struct(dto); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	v, err := dto.ToVeranstalter()
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	id, err := h.sys.Create(r.Context(), CreateCommand{Veranstalter: v})
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("%s://%s%s/veranstalter/%d", scheme(r), r.Host, h.basePath, id))
	w.WriteHeader(http.StatusCreated)
}

// Upload attaches the multipart field "file" to an organizer.
// Only PNG, JPEG and PDF content is accepted.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
			return
		}
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: %v", ErrInvalidFile, err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: %v", ErrInvalidFile, err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: %v", ErrInvalidFile, err))
		return
	}

	if detected, allowed := DetectMimeType(data); !allowed {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: %s", ErrInvalidMimeType, detected))
		return
	}

	if _, err := h.sys.AddFile(r.Context(), AddFileCommand{
		ID:       id,
		Data:     data,
		Filename: header.Filename,
	}); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("%s/veranstalter/file/%d", h.basePath, id))
	w.WriteHeader(http.StatusNoContent)
}

// Update patches the fields named in the body, guarded by If-Match.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	version := r.Header.Get("If-Match")
	if version == "" {
		handlers.RespondError(w, h.logger, http.StatusPreconditionRequired, ErrPreconditionRequired)
		return
	}

	var dto VeranstalterUpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: %v", ErrValidation, err))
		return
	}

	if err := h.validator.Struct(dto); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	patch, err := dto.Patch()
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	newVersion, err := h.sys.Update(r.Context(), UpdateCommand{
		ID:      id,
		Version: version,
		Patch:   patch,
	})
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.Header().Set("ETag", FormatVersion(newVersion))
	w.WriteHeader(http.StatusNoContent)
}

// Delete removes an organizer. Unknown ids succeed.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// pathID parses the id path value and answers 404 when it is not an integer.
func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.PathValue("id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusNotFound, fmt.Errorf("%w: invalid id %q", ErrNotFound, raw))
		return 0, false
	}
	return id, true
}

// acceptable reports whether an Accept header admits JSON or HTML.
// An absent header admits everything.
func acceptable(header string) bool {
	if strings.TrimSpace(header) == "" {
		return true
	}

	for part := range strings.SplitSeq(header, ",") {
		mediaType, _, _ := strings.Cut(part, ";")
		switch strings.ToLower(strings.TrimSpace(mediaType)) {
		case "*/*", "application/*", "application/json", "text/*", "text/html":
			return true
		}
	}
	return false
}

func scheme(r *http.Request) string {
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		return proto
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
