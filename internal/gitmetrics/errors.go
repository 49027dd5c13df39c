package gitmetrics

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/go-github/v62/github"
)

// ErrorKind classifies a failed call against the hosting API.
type ErrorKind string

const (
	KindInvalidCredential ErrorKind = "invalid_credential"
	KindRateLimited       ErrorKind = "rate_limited"
	KindForbidden         ErrorKind = "forbidden"
	KindNotFoundOrPrivate ErrorKind = "not_found_or_private"
	KindAPIError          ErrorKind = "api_error"
)

// APIError wraps a failed hosting-API call with its classified kind so that
// callers can translate it into a user-facing message without inspecting raw
// HTTP responses.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Cause      error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github api: %s (status %d): %v", e.Kind, e.StatusCode, e.Cause)
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// InvalidURLError reports a repository URL that could not be reduced to an
// owner/repo pair.
type InvalidURLError struct {
	URL string
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid repository url %q", e.URL)
}

// classifyError maps a go-github error to an APIError. 403 responses are
// split into rate-limited and plain forbidden using the remaining-quota
// header, matching how the hosting service signals throttling.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return &APIError{Kind: KindRateLimited, StatusCode: http.StatusForbidden, Cause: err}
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		status := respErr.Response.StatusCode
		switch status {
		case http.StatusUnauthorized:
			return &APIError{Kind: KindInvalidCredential, StatusCode: status, Cause: err}
		case http.StatusForbidden:
			if respErr.Response.Header.Get("X-RateLimit-Remaining") == "0" {
				return &APIError{Kind: KindRateLimited, StatusCode: status, Cause: err}
			}
			return &APIError{Kind: KindForbidden, StatusCode: status, Cause: err}
		case http.StatusNotFound:
			return &APIError{Kind: KindNotFoundOrPrivate, StatusCode: status, Cause: err}
		default:
			return &APIError{Kind: KindAPIError, StatusCode: status, Cause: err}
		}
	}

	return &APIError{Kind: KindAPIError, Cause: err}
}
