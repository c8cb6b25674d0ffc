package http

import (
	"net/http"

	"github.com/aussiebroadwan/tollgate/internal/auth/domain"
	"github.com/aussiebroadwan/tollgate/internal/auth/service"
	"github.com/aussiebroadwan/tollgate/pkg/authsdk"
	"github.com/aussiebroadwan/tollgate/pkg/httpx"
)

// AuthHandler serves the credential endpoints and the profile.
type AuthHandler struct {
	AuthService *service.AuthService
}

func toSDKUser(u domain.PublicUser) authsdk.User {
	return authsdk.User{ID: u.ID, Username: u.Username, Role: string(u.Role)}
}

// sessionFrom returns the session injected by the authentication middleware.
func sessionFrom(r *http.Request) (domain.Session, bool) {
	return httpx.PrincipalFromContext[domain.Session](r.Context())
}

// HandleRegister handles POST /register
//
//	@Summary		Register a user
//	@Description	Creates an account with the user role. When two-factor authentication is required the
//	@Description	TOTP secret, provisioning URI and QR code are returned in this response only.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RegisterRequest		true	"Credentials"
//	@Success		201		{object}	authsdk.RegisterResponse	"Created user and enrollment material"
//	@Failure		400		{object}	authsdk.ErrorResponse		"MISSING_FIELDS, INVALID_USERNAME, WEAK_PASSWORD, PASSWORD_TOO_LONG, INVALID_JSON"
//	@Failure		409		{object}	authsdk.ErrorResponse		"USER_EXISTS"
//	@Failure		429		{object}	authsdk.ErrorResponse		"RATE_LIMITED"
//	@Failure		500		{object}	authsdk.ErrorResponse		"SERVER_ERROR"
//	@Router			/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RegisterRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, service.ErrInvalidJSON)
		return
	}

	res, err := h.AuthService.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := authsdk.RegisterResponse{
		Message: "User registered successfully",
		User:    toSDKUser(res.User),
	}
	if e := res.Enrollment; e != nil {
		resp.Secret = e.Secret
		resp.ProvisioningURI = e.ProvisioningURI
		resp.QRCode = e.QRCode
	}
	httpx.WriteJSON(w, http.StatusCreated, resp)
}

// HandleLogin handles POST /login
//
//	@Summary		Log in
//	@Description	Verifies the password and, unless the deployment is password-only, the TOTP code.
//	@Description	Returns a bearer token for the protected endpoints.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials and one-time code"
//	@Success		200		{object}	authsdk.LoginResponse	"Bearer token"
//	@Failure		400		{object}	authsdk.ErrorResponse	"MISSING_FIELDS, OTP_REQUIRED, INVALID_JSON"
//	@Failure		401		{object}	authsdk.ErrorResponse	"AUTH_FAILED, 2FA_NOT_SETUP, INVALID_OTP"
//	@Failure		429		{object}	authsdk.ErrorResponse	"RATE_LIMITED"
//	@Failure		500		{object}	authsdk.ErrorResponse	"SERVER_ERROR"
//	@Router			/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, service.ErrInvalidJSON)
		return
	}

	res, err := h.AuthService.Login(r.Context(), service.LoginInput{
		Username: req.Username,
		Password: req.Password,
		OTP:      req.OTP,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.LoginResponse{
		Message:   "Login successful",
		Token:     res.Token.Value,
		User:      toSDKUser(res.User),
		Role:      string(res.User.Role),
		ExpiresIn: int(res.Token.ExpiresIn.Seconds()),
	})
}

// HandleLogout handles POST /logout
//
//	@Summary		Log out
//	@Description	Revokes an opaque token. Signed tokens cannot be revoked and stay valid until they expire.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.MessageResponse	"Logged out"
//	@Failure		401	{object}	authsdk.ErrorResponse	"NO_TOKEN"
//	@Failure		403	{object}	authsdk.ErrorResponse	"INVALID_TOKEN"
//	@Failure		500	{object}	authsdk.ErrorResponse	"SERVER_ERROR"
//	@Router			/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(r)
	if !ok {
		writeServiceError(w, r, service.ErrNoToken)
		return
	}

	if err := h.AuthService.Logout(r.Context(), httpx.TokenFromContext(r.Context()), sess); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: "Logged out"})
}

// HandleProfile handles GET /profile
//
//	@Summary		Current user
//	@Description	Returns the stored record of the authenticated user.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.ProfileResponse	"Profile"
//	@Failure		401	{object}	authsdk.ErrorResponse	"NO_TOKEN"
//	@Failure		403	{object}	authsdk.ErrorResponse	"INVALID_TOKEN"
//	@Failure		404	{object}	authsdk.ErrorResponse	"USER_NOT_FOUND"
//	@Failure		500	{object}	authsdk.ErrorResponse	"SERVER_ERROR"
//	@Router			/profile [get].
func (h *AuthHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(r)
	if !ok {
		writeServiceError(w, r, service.ErrNoToken)
		return
	}

	user, err := h.AuthService.Profile(r.Context(), sess)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.ProfileResponse{
		Message: "Profile retrieved",
		User:    toSDKUser(user),
	})
}
