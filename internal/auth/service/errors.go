package service

import "fmt"

// Kind classifies a service error. The HTTP layer maps each kind to one
// status code.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindAuthentication
	KindForbidden
	KindNotFound
	KindConflict
	KindRateLimit
	KindDependency
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindRateLimit:
		return "rate_limit"
	case KindDependency:
		return "dependency"
	default:
		return "unknown"
	}
}

// Error is returned by every AuthService operation. Message is safe to show
// to the caller, Err is the internal cause and never leaves the process.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on code so a wrapped dependency error still compares equal to
// ErrServer.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrMissingFields   = &Error{Kind: KindValidation, Code: "MISSING_FIELDS", Message: "Missing username or password"}
	ErrInvalidUsername = &Error{Kind: KindValidation, Code: "INVALID_USERNAME", Message: "Username must be 3-50 characters"}
	ErrWeakPassword    = &Error{Kind: KindValidation, Code: "WEAK_PASSWORD", Message: "Password must be at least 8 characters"}
	ErrPasswordTooLong = &Error{Kind: KindValidation, Code: "PASSWORD_TOO_LONG", Message: "Password must be at most 72 bytes"}
	ErrOTPRequired     = &Error{Kind: KindValidation, Code: "OTP_REQUIRED", Message: "One-time code required"}
	ErrInvalidJSON     = &Error{Kind: KindValidation, Code: "INVALID_JSON", Message: "Request body must be valid JSON"}

	ErrUserExists     = &Error{Kind: KindConflict, Code: "USER_EXISTS", Message: "User already exists"}
	ErrCategoryExists = &Error{Kind: KindConflict, Code: "CATEGORY_EXISTS", Message: "Category already exists"}

	ErrAuthFailed  = &Error{Kind: KindAuthentication, Code: "AUTH_FAILED", Message: "Invalid username or password"}
	Err2FANotSetup = &Error{Kind: KindAuthentication, Code: "2FA_NOT_SETUP", Message: "Two-factor authentication is not set up for this account"}
	ErrInvalidOTP  = &Error{Kind: KindAuthentication, Code: "INVALID_OTP", Message: "Invalid one-time code"}
	ErrNoToken     = &Error{Kind: KindAuthentication, Code: "NO_TOKEN", Message: "Access token required"}

	ErrInvalidToken = &Error{Kind: KindForbidden, Code: "INVALID_TOKEN", Message: "Invalid or expired token"}
	ErrRoleRequired = &Error{Kind: KindForbidden, Code: "ROLE_REQUIRED", Message: "Admin role required"}

	ErrUserNotFound = &Error{Kind: KindNotFound, Code: "USER_NOT_FOUND", Message: "User not found"}

	ErrRateLimited = &Error{Kind: KindRateLimit, Code: "RATE_LIMITED", Message: "Too many attempts, please try again later"}

	ErrServer = &Error{Kind: KindDependency, Code: "SERVER_ERROR", Message: "Internal server error"}
)

// errMissingCredentials is the login form of MISSING_FIELDS.
var errMissingCredentials = &Error{Kind: KindValidation, Code: "MISSING_FIELDS", Message: "Missing credentials"}

// errMissingCategoryFields shares MISSING_FIELDS with the credential checks
// but names the category fields.
var errMissingCategoryFields = &Error{Kind: KindValidation, Code: "MISSING_FIELDS", Message: "Missing name or label"}

// dependency wraps a store or backend failure. The cause is kept for logs.
func dependency(err error) *Error {
	return &Error{Kind: ErrServer.Kind, Code: ErrServer.Code, Message: ErrServer.Message, Err: err}
}
