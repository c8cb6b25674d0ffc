package service

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/aussiebroadwan/tollgate/internal/auth/domain"
	"github.com/aussiebroadwan/tollgate/internal/auth/session"
	"github.com/aussiebroadwan/tollgate/internal/auth/store"
	"github.com/aussiebroadwan/tollgate/pkg/cryptox"
	"github.com/aussiebroadwan/tollgate/pkg/idx"
	"github.com/aussiebroadwan/tollgate/pkg/jwtx"
	"github.com/aussiebroadwan/tollgate/pkg/otpx"
	"github.com/aussiebroadwan/tollgate/pkg/slogx"
)

const (
	MinUsernameLength = 3
	MaxUsernameLength = 50
	MinPasswordLength = 8
)

// Policy is the deployment profile of the state machine.
type Policy struct {
	// Require2FA provisions a TOTP secret at registration and demands a
	// valid code at login. When false the service is password-only.
	Require2FA bool

	// Hide2FAState reports a user without a provisioned secret as a plain
	// AUTH_FAILED instead of 2FA_NOT_SETUP, so the response does not reveal
	// that the account exists.
	Hide2FAState bool
}

// AuthService sequences registration, login and protected access. Every
// check runs in a fixed order and the first failure ends the attempt.
type AuthService struct {
	Store  store.Store
	OTP    *otpx.Engine
	Issuer session.Issuer
	Policy Policy

	now func() time.Time
}

func NewAuthService(st store.Store, otp *otpx.Engine, issuer session.Issuer, policy Policy) *AuthService {
	return &AuthService{
		Store:  st,
		OTP:    otp,
		Issuer: issuer,
		Policy: policy,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source used for record timestamps and OTP
// verification.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

type RegisterInput struct {
	Username string
	Password string
}

// EnrollmentMaterial is returned once, in the registration response, and
// can never be fetched again.
type EnrollmentMaterial struct {
	Secret          string
	ProvisioningURI string
	QRCode          string // PNG data URI, empty if rendering failed
}

type RegisterResult struct {
	User       domain.PublicUser
	Enrollment *EnrollmentMaterial
}

// Register walks Received -> FieldsValidated -> UsernameAvailable -> Hashed
// -> SecondFactorProvisioned -> Persisted.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (RegisterResult, error) {
	return s.register(ctx, in, domain.RoleUser)
}

// BootstrapAdmin registers an admin account. It goes through the same
// checks as Register and is only reachable from the server binary.
func (s *AuthService) BootstrapAdmin(ctx context.Context, in RegisterInput) (RegisterResult, error) {
	return s.register(ctx, in, domain.RoleAdmin)
}

func (s *AuthService) register(ctx context.Context, in RegisterInput, role domain.Role) (RegisterResult, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate fields, no store access on failure.
	if reason, err := validateRegistration(in); err != nil {
		LogAuthEvent(ctx, EventRegisterFailed, in.Username, reason)
		return RegisterResult{}, err
	}

	// 2. Username must be free.
	_, err := s.Store.Users().GetUserByUsername(ctx, in.Username)
	switch {
	case err == nil:
		LogAuthEvent(ctx, EventRegisterFailed, in.Username, ReasonAlreadyExists)
		return RegisterResult{}, ErrUserExists
	case !errors.Is(err, store.ErrNotFound):
		log.Error("failed to look up username", slog.Any("error", err))
		LogAuthEvent(ctx, EventRegisterFailed, in.Username, ReasonServerError)
		return RegisterResult{}, dependency(err)
	}

	// 3. Hash the password.
	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		LogAuthEvent(ctx, EventRegisterFailed, in.Username, ReasonServerError)
		return RegisterResult{}, dependency(err)
	}

	now := s.now()
	user := domain.User{
		ID:           idx.NewAt(now).String(),
		Username:     in.Username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
	}

	// 4. Provision the second factor.
	var enrollment *EnrollmentMaterial
	if s.Policy.Require2FA {
		enrollment, err = s.provision(ctx, in.Username)
		if err != nil {
			log.Error("failed to provision second factor", slog.Any("error", err))
			LogAuthEvent(ctx, EventRegisterFailed, in.Username, ReasonServerError)
			return RegisterResult{}, dependency(err)
		}
		user.TwoFactorSecret = &enrollment.Secret
		user.TwoFactorEnabled = true
	}

	// 5. Persist. The unique constraint is authoritative if a concurrent
	// registration won the race after step 2.
	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			LogAuthEvent(ctx, EventRegisterFailed, in.Username, ReasonAlreadyExists)
			return RegisterResult{}, ErrUserExists
		}
		log.Error("failed to create user", slog.Any("error", err))
		LogAuthEvent(ctx, EventRegisterFailed, in.Username, ReasonServerError)
		return RegisterResult{}, dependency(err)
	}

	LogAuthEvent(ctx, EventRegisterSuccess, in.Username, "")
	return RegisterResult{User: user.Public(), Enrollment: enrollment}, nil
}

// validateRegistration returns the audit reason alongside the error.
func validateRegistration(in RegisterInput) (string, error) {
	if in.Username == "" || in.Password == "" {
		return ReasonMissingFields, ErrMissingFields
	}
	if n := utf8.RuneCountInString(in.Username); n < MinUsernameLength || n > MaxUsernameLength {
		return ReasonInvalidUsername, ErrInvalidUsername
	}
	if utf8.RuneCountInString(in.Password) < MinPasswordLength {
		return ReasonWeakPassword, ErrWeakPassword
	}
	if len(in.Password) > cryptox.MaxPasswordBytes {
		return ReasonPasswordTooLong, ErrPasswordTooLong
	}
	return "", nil
}

func (s *AuthService) provision(ctx context.Context, username string) (*EnrollmentMaterial, error) {
	enrollment, err := s.OTP.GenerateSecret(username)
	if err != nil {
		return nil, err
	}

	material := &EnrollmentMaterial{
		Secret:          enrollment.Secret,
		ProvisioningURI: enrollment.ProvisioningURI,
	}

	// The QR image is a convenience, the URI alone is enough to enroll.
	img, err := otpx.RenderEnrollmentImage(enrollment.ProvisioningURI, otpx.DefaultImageSize)
	if err != nil {
		slogx.FromContext(ctx).Warn("failed to render enrollment image", slog.Any("error", err))
		return material, nil
	}
	material.QRCode = "data:image/png;base64," + base64.StdEncoding.EncodeToString(img)
	return material, nil
}

type LoginInput struct {
	Username string
	Password string
	OTP      string
}

type LoginResult struct {
	Token session.Token
	User  domain.PublicUser
}

// dummyHash is compared against when the username is unknown so both
// credential failures cost one bcrypt verification.
var dummyHash = sync.OnceValue(func() string {
	h, err := cryptox.HashPassword("tollgate-timing-equaliser")
	if err != nil {
		return ""
	}
	return h
})

// Login walks Received -> CredentialsPresent -> UserFound ->
// PasswordVerified -> SecondFactorVerified -> TokenIssued.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	log := slogx.FromContext(ctx)

	// 1. Credentials present.
	if in.Username == "" || in.Password == "" {
		LogAuthEvent(ctx, EventLoginFailed, in.Username, ReasonMissingFields)
		return LoginResult{}, errMissingCredentials
	}
	if s.Policy.Require2FA && in.OTP == "" {
		LogAuthEvent(ctx, EventLoginFailed, in.Username, ReasonOTPRequired)
		return LoginResult{}, ErrOTPRequired
	}

	// 2. User found.
	user, err := s.Store.Users().GetUserByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = cryptox.VerifyPassword(in.Password, dummyHash())
			LogAuthEvent(ctx, EventLoginFailed, in.Username, ReasonUserNotFound)
			return LoginResult{}, ErrAuthFailed
		}
		log.Error("failed to look up user", slog.Any("error", err))
		LogAuthEvent(ctx, EventLoginFailed, in.Username, ReasonServerError)
		return LoginResult{}, dependency(err)
	}

	// 3. Password verified.
	if err := cryptox.VerifyPassword(in.Password, user.PasswordHash); err != nil {
		reason := ReasonWrongPassword
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			log.Error("stored password hash is unusable", slog.String("user_id", user.ID), slog.Any("error", err))
			reason = ReasonInvalidHash
		}
		LogAuthEvent(ctx, EventLoginFailed, in.Username, reason)
		return LoginResult{}, ErrAuthFailed
	}

	// 4. Second factor verified.
	amr := []string{jwtx.AMRPassword}
	if s.Policy.Require2FA {
		if !user.HasSecondFactor() {
			LogAuthEvent(ctx, EventLoginFailed, in.Username, ReasonNoSecondFactor)
			if s.Policy.Hide2FAState {
				return LoginResult{}, ErrAuthFailed
			}
			return LoginResult{}, Err2FANotSetup
		}
		if !s.OTP.VerifyAt(*user.TwoFactorSecret, in.OTP, s.now()) {
			LogAuthEvent(ctx, EventLoginFailed, in.Username, ReasonInvalidOTP)
			return LoginResult{}, ErrInvalidOTP
		}
		amr = append(amr, jwtx.AMROTP, jwtx.AMRMFA)
	}

	// 5. Token issued.
	tok, err := s.Issuer.Issue(ctx, user, amr...)
	if err != nil {
		log.Error("failed to issue token", slog.Any("error", err))
		LogAuthEvent(ctx, EventLoginFailed, in.Username, ReasonServerError)
		return LoginResult{}, dependency(err)
	}

	LogAuthEvent(ctx, EventLoginSuccess, in.Username, "")
	return LoginResult{Token: tok, User: user.Public()}, nil
}

// Authenticate resolves a bearer token to its session. An empty token is
// NO_TOKEN, anything the issuer rejects is INVALID_TOKEN.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (domain.Session, error) {
	if raw == "" {
		return domain.Session{}, ErrNoToken
	}
	sess, err := s.Issuer.Verify(ctx, raw)
	if err != nil {
		return domain.Session{}, ErrInvalidToken
	}
	return sess, nil
}

// Logout revokes an opaque token. Signed tokens only expire.
func (s *AuthService) Logout(ctx context.Context, raw string, sess domain.Session) error {
	if err := s.Issuer.Revoke(ctx, raw); err != nil {
		slogx.FromContext(ctx).Error("failed to revoke token", slog.Any("error", err))
		return dependency(err)
	}
	LogAuthEvent(ctx, EventLogout, sess.Username, "")
	return nil
}

// Profile returns the current stored record for an authenticated session.
func (s *AuthService) Profile(ctx context.Context, sess domain.Session) (domain.PublicUser, error) {
	user, err := s.Store.Users().GetUserByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.PublicUser{}, ErrUserNotFound
		}
		slogx.FromContext(ctx).Error("failed to fetch user", slog.Any("error", err))
		return domain.PublicUser{}, dependency(err)
	}
	return user.Public(), nil
}

// RequireAdmin is the admin-only refinement, checked after authentication.
func RequireAdmin(sess domain.Session) error {
	if !sess.Role.IsAdmin() {
		return ErrRoleRequired
	}
	return nil
}
