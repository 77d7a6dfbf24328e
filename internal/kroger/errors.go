package kroger

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Sentinel errors for callers that branch on failure class.
var (
	// ErrNotFound reports a product ID unknown to the upstream catalog.
	ErrNotFound = errors.New("product not found")

	// ErrUnauthorized reports a request the upstream rejected even after a
	// fresh token exchange.
	ErrUnauthorized = errors.New("kroger api rejected credentials")

	// ErrConnectivity reports a transport-level failure reaching the API.
	ErrConnectivity = errors.New("kroger api unreachable")
)

// APIError is a non-2xx response from the Kroger API. It carries the HTTP
// status and whatever detail the upstream error body provided.
type APIError struct {
	StatusCode int
	Code       string
	Reason     string
	Body       string
}

func (e *APIError) Error() string {
	detail := e.Reason
	if detail == "" {
		detail = e.Body
	}
	if e.Code != "" {
		return fmt.Sprintf("kroger api error (status %d, code %s): %s", e.StatusCode, e.Code, detail)
	}
	return fmt.Sprintf("kroger api error (status %d): %s", e.StatusCode, detail)
}

// upstreamError is the error body shape the Kroger API returns.
type upstreamError struct {
	Errors struct {
		Code   string `json:"code"`
		Reason string `json:"reason"`
	} `json:"errors"`
}

// newAPIError builds an APIError from a response body, tolerating bodies
// that are not the documented error shape.
func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: status,
		Body:       string(body),
	}
	var ue upstreamError
	if err := json.Unmarshal(body, &ue); err == nil {
		apiErr.Code = ue.Errors.Code
		apiErr.Reason = ue.Errors.Reason
	}
	return apiErr
}
