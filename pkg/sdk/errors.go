package sdk

import "fmt"

// Error codes returned by the API.
const (
	CodeBadRequest       = "bad_request"
	CodeValidationFailed = "validation_failed"
	CodeQuotaExceeded    = "quota_exceeded"
	CodeUpstreamError    = "upstream_error"
	CodeInternalError    = "internal_error"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sdk: api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

// IsQuotaExceeded reports whether err is the server rejecting a user
// over their request allowance.
func IsQuotaExceeded(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Code == CodeQuotaExceeded
}
