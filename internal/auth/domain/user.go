package domain

import "time"

// User is a credential record. Username is immutable after creation and
// PasswordHash is never empty for a stored user.
type User struct {
	ID               string
	Username         string
	PasswordHash     string  // bcrypt encoded
	Role             Role    // user or admin
	TwoFactorSecret  *string // TOTP secret (nullable, base32 encoded)
	TwoFactorEnabled bool
	CreatedAt        time.Time
}

// HasSecondFactor reports whether a TOTP secret has been provisioned.
func (u User) HasSecondFactor() bool {
	return u.TwoFactorSecret != nil && *u.TwoFactorSecret != ""
}

// PublicUser is the only user shape ever written to a response.
type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, Role: u.Role}
}
