package httperrors

import (
	"fmt"
	"net/http"
)

// Common error types surfaced to API consumers.
const (
	TypeGeneric    = "generic"
	TypeValidation = "validation"
	TypeUpstream   = "upstream"
)

// HTTPError is the public JSON error envelope.
type HTTPError struct {
	Code   int    `json:"status"`
	Type   string `json:"type"`
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
}

func NewHTTPError(code int, errorType, title string) *HTTPError {
	return &HTTPError{
		Code:  code,
		Type:  errorType,
		Title: title,
	}
}

func NewHTTPErrorWithDetail(code int, errorType, title, detail string) *HTTPError {
	return &HTTPError{
		Code:   code,
		Type:   errorType,
		Title:  title,
		Detail: detail,
	}
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTPError %d (%s): %s", e.Code, e.Type, e.Title)
}

var (
	ErrBadRequestMalformedBody = NewHTTPError(http.StatusBadRequest, TypeValidation, "Malformed request body.")
	ErrServiceUnavailable      = NewHTTPError(http.StatusServiceUnavailable, TypeGeneric, "Service is not configured for this operation.")
)
