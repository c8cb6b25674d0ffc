package service

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/tollgate/pkg/slogx"
)

// AuthEvent names an audit log entry.
type AuthEvent string

const (
	EventRegisterSuccess AuthEvent = "REGISTER_SUCCESS"
	EventRegisterFailed  AuthEvent = "REGISTER_FAILED"
	EventLoginSuccess    AuthEvent = "LOGIN_SUCCESS"
	EventLoginFailed     AuthEvent = "LOGIN_FAILED"
	EventLogout          AuthEvent = "LOGOUT"
	EventRateLimited     AuthEvent = "RATE_LIMITED"
)

// Reason codes attached to failed events.
const (
	ReasonMissingFields   = "missing_fields"
	ReasonInvalidUsername = "invalid_username"
	ReasonWeakPassword    = "weak_password"
	ReasonPasswordTooLong = "password_too_long"
	ReasonAlreadyExists   = "already_exists"
	ReasonUserNotFound    = "user_not_found"
	ReasonWrongPassword   = "wrong_password"
	ReasonInvalidHash     = "invalid_hash"
	ReasonOTPRequired     = "otp_required"
	ReasonNoSecondFactor  = "2fa_not_setup"
	ReasonInvalidOTP      = "invalid_otp"
	ReasonServerError     = "server_error"
	ReasonTooManyAttempts = "too_many_attempts"
)

// LogAuthEvent writes one audit line through the request logger. Passwords,
// codes and secrets are never passed here.
func LogAuthEvent(ctx context.Context, event AuthEvent, username, reason string) {
	attrs := []any{
		slog.String("event", string(event)),
		slog.String("username", username),
	}
	if reason != "" {
		attrs = append(attrs, slog.String("reason", reason))
	}
	slogx.FromContext(ctx).Info("auth_event", attrs...)
}
