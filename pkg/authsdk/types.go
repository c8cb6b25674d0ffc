package authsdk

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	// Error is a human readable message
	Error string `json:"error" example:"Invalid username or password"`

	// Code is the machine readable error code
	Code string `json:"code" example:"AUTH_FAILED"`
}

// User is the public view of an account. Password hashes and second-factor
// secrets are never part of it.
type User struct {
	ID       string `json:"id" example:"01J9Z6S3XKQ5V7T1N8M2B4C6D0"`
	Username string `json:"username" example:"alice"`
	Role     string `json:"role" example:"user" enums:"user,admin"`
}

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	Username string `json:"username" example:"alice"`
	Password string `json:"password" example:"correct horse battery"`
}

// RegisterResponse is returned once on successful registration. When the
// server requires a second factor it carries the enrollment material, which
// cannot be retrieved again.
type RegisterResponse struct {
	Message string `json:"message" example:"User registered successfully"`
	User    User   `json:"user"`

	// Secret is the base32 TOTP secret
	Secret string `json:"secret,omitempty"`

	// ProvisioningURI is the otpauth:// URI for authenticator apps
	ProvisioningURI string `json:"provisioningUri,omitempty"`

	// QRCode is the provisioning URI as a PNG data URI
	QRCode string `json:"qrCode,omitempty"`
}

// LoginRequest is the body of POST /login. OTP is required unless the server
// runs the password-only profile.
type LoginRequest struct {
	Username string `json:"username" example:"alice"`
	Password string `json:"password" example:"correct horse battery"`
	OTP      string `json:"otp,omitempty" example:"123456"`
}

// LoginResponse carries the bearer token.
type LoginResponse struct {
	Message string `json:"message" example:"Login successful"`
	Token   string `json:"token"`
	User    User   `json:"user"`
	Role    string `json:"role" example:"user"`

	// ExpiresIn is the token lifetime in seconds, absent for opaque tokens
	ExpiresIn int `json:"expiresIn,omitempty" example:"900"`
}

// ProfileResponse is returned from GET /profile.
type ProfileResponse struct {
	Message string `json:"message" example:"Profile retrieved"`
	User    User   `json:"user"`
}

// Category is an entry of the reference list.
type Category struct {
	ID    string `json:"id" example:"01J9Z6T0A1B2C3D4E5F6G7H8J9"`
	Name  string `json:"name" example:"work"`
	Label string `json:"label" example:"Work"`
}

// CreateCategoryRequest is the body of POST /categories.
type CreateCategoryRequest struct {
	Name  string `json:"name" example:"work"`
	Label string `json:"label" example:"Work"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message" example:"Logged out"`
}

// HealthResponse represents the response structure for health check endpoints.
// Used by both /health and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results for critical dependencies (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	// Database indicates the database connection status
	Database string `json:"database"`

	// Redis indicates the shared backend status, omitted when none is configured
	Redis string `json:"redis,omitempty"`

	// TokenMode is "signed" or "opaque"
	TokenMode string `json:"token_mode"`
}
