package authsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error codes returned in the "code" field of every error body.
const (
	CodeMissingFields   = "MISSING_FIELDS"
	CodeInvalidUsername = "INVALID_USERNAME"
	CodeWeakPassword    = "WEAK_PASSWORD"
	CodePasswordTooLong = "PASSWORD_TOO_LONG"
	CodeInvalidJSON     = "INVALID_JSON"
	CodeUserExists      = "USER_EXISTS"
	CodeOTPRequired     = "OTP_REQUIRED"
	CodeAuthFailed      = "AUTH_FAILED"
	Code2FANotSetup     = "2FA_NOT_SETUP"
	CodeInvalidOTP      = "INVALID_OTP"
	CodeNoToken         = "NO_TOKEN"
	CodeInvalidToken    = "INVALID_TOKEN"
	CodeUserNotFound    = "USER_NOT_FOUND"
	CodeRoleRequired    = "ROLE_REQUIRED"
	CodeCategoryExists  = "CATEGORY_EXISTS"
	CodeRateLimited     = "RATE_LIMITED"
	CodeServerError     = "SERVER_ERROR"
)

// APIError is a non-2xx response from the service.
type APIError struct {
	// StatusCode is the HTTP status code of the response
	StatusCode int `json:"-"`

	// RetryAfter is the Retry-After header in seconds, set on 429 responses
	RetryAfter int `json:"-"`

	// Message is the human readable error
	Message string `json:"error"`

	// Code is the machine readable error code
	Code string `json:"code"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// IsCode reports whether err is an APIError with the given code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// parseErrorResponse turns an error body into an APIError. Bodies that are
// not in the {error, code} shape become SERVER_ERROR with the status text.
func parseErrorResponse(resp *http.Response, body []byte) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	if v := resp.Header.Get("Retry-After"); v != "" {
		_, _ = fmt.Sscanf(v, "%d", &apiErr.RetryAfter)
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Code != "" {
		apiErr.Message = errResp.Error
		apiErr.Code = errResp.Code
		return apiErr
	}

	apiErr.Code = CodeServerError
	apiErr.Message = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	return apiErr
}
