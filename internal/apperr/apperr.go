// Package apperr translates the typed errors raised by the roster parser and
// the hosting-API client into the JSON error envelope returned by every
// handler, so the same domain errors are reused across the whole surface.
package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/yogeshwarirj/github-monitor-analysis/internal/gitmetrics"
	"github.com/yogeshwarirj/github-monitor-analysis/internal/roster"
)

// APIError is propagated up to the handlers' error writer.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New constructs a new APIError.
func New(status int, code, message string) *APIError {
	return &APIError{Status: status, Code: code, Message: message}
}

// FromError classifies any error from the pipeline into an APIError. Unknown
// errors become a generic 500.
func FromError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var urlErr *gitmetrics.InvalidURLError
	if errors.As(err, &urlErr) {
		return New(http.StatusBadRequest, "invalid_url", urlErr.Error())
	}

	var ghErr *gitmetrics.APIError
	if errors.As(err, &ghErr) {
		return New(fetchStatus(ghErr.Kind), string(ghErr.Kind), fetchMessage(ghErr.Kind))
	}

	switch {
	case errors.Is(err, roster.ErrEmptyFile):
		return New(http.StatusUnprocessableEntity, "empty_file", err.Error())
	case errors.Is(err, roster.ErrBadSchema):
		return New(http.StatusUnprocessableEntity, "bad_schema", err.Error())
	case errors.Is(err, roster.ErrNoValidRows):
		return New(http.StatusUnprocessableEntity, "no_valid_rows", err.Error())
	}

	return New(http.StatusInternalServerError, "internal", err.Error())
}

func fetchStatus(kind gitmetrics.ErrorKind) int {
	switch kind {
	case gitmetrics.KindInvalidCredential:
		return http.StatusUnauthorized
	case gitmetrics.KindRateLimited:
		return http.StatusTooManyRequests
	case gitmetrics.KindForbidden:
		return http.StatusForbidden
	case gitmetrics.KindNotFoundOrPrivate:
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

func fetchMessage(kind gitmetrics.ErrorKind) string {
	switch kind {
	case gitmetrics.KindInvalidCredential:
		return "the access token was rejected; submit a valid token and retry"
	case gitmetrics.KindRateLimited:
		return "API rate limit exceeded; wait a while or submit an access token"
	case gitmetrics.KindForbidden:
		return "access to this repository is forbidden"
	case gitmetrics.KindNotFoundOrPrivate:
		return "repository not found; it may be private and need an access token"
	default:
		return "the hosting API returned an unexpected error; retry the fetch"
	}
}

// errorEnvelope is the wire shape of an error response.
type errorEnvelope struct {
	Error *APIError `json:"error"`
}

// Write serialises the error onto the response.
func Write(w http.ResponseWriter, err error) {
	apiErr := FromError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status)
	_ = json.NewEncoder(w).Encode(errorEnvelope{Error: apiErr})
}
