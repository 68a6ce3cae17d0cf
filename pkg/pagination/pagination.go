package pagination

import (
	"net/url"
	"strconv"
)

// PageRequest identifies a zero-based page of a result set.
type PageRequest struct {
	Number int `json:"number"`
	Size   int `json:"size"`
}

// Normalize adjusts the request to ensure valid pagination values based on the config.
func (r *PageRequest) Normalize(cfg Config) {
	if r.Number < 0 {
		r.Number = 0
	}
	if r.Size < 1 {
		r.Size = cfg.DefaultPageSize
	}
	if r.Size > cfg.MaxPageSize {
		r.Size = cfg.MaxPageSize
	}
}

// Offset calculates the number of records to skip.
func (r PageRequest) Offset() int {
	return r.Number * r.Size
}

// Limit returns the maximum number of records in the page.
func (r PageRequest) Limit() int {
	return r.Size
}

// PageRequestFromQuery parses the page and size query parameters.
// Missing or malformed values fall back to page 0 and the configured default size.
func PageRequestFromQuery(values url.Values, cfg Config) PageRequest {
	return NewPageRequest(values.Get("page"), values.Get("size"), cfg)
}

// NewPageRequest builds a normalized PageRequest from raw number and size strings.
func NewPageRequest(number, size string, cfg Config) PageRequest {
	n, err := strconv.Atoi(number)
	if err != nil {
		n = 0
	}
	s, err := strconv.Atoi(size)
	if err != nil {
		s = 0
	}

	req := PageRequest{Number: n, Size: s}
	req.Normalize(cfg)
	return req
}

// Slice holds one page of content and the size of the whole matching set.
type Slice[T any] struct {
	Content       []T `json:"content"`
	TotalElements int `json:"totalElements"`
}

// Metadata describes the position of a page inside the matching set.
type Metadata struct {
	Size          int `json:"size"`
	Number        int `json:"number"`
	TotalElements int `json:"totalElements"`
	TotalPages    int `json:"totalPages"`
}

// Page is the wire representation of a Slice together with its metadata.
type Page[T any] struct {
	Content []T      `json:"content"`
	Page    Metadata `json:"page"`
}

// NewPage creates a Page with calculated total pages.
func NewPage[T any](slice Slice[T], req PageRequest) Page[T] {
	totalPages := 0
	if req.Size > 0 {
		totalPages = slice.TotalElements / req.Size
		if slice.TotalElements%req.Size != 0 {
			totalPages++
		}
	}

	content := slice.Content
	if content == nil {
		content = []T{}
	}

	return Page[T]{
		Content: content,
		Page: Metadata{
			Size:          req.Size,
			Number:        req.Number,
			TotalElements: slice.TotalElements,
			TotalPages:    totalPages,
		},
	}
}
