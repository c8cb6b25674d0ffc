// Package otpx is the second-factor engine: TOTP secret provisioning,
// enrollment QR codes and code verification with a skew window.
package otpx

import (
	"bytes"
	"crypto/subtle"
	"errors"
	"fmt"
	"image/png"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	DefaultPeriod     = 30 // seconds per step
	DefaultSkew       = 2  // steps either side of now (±60s)
	DefaultSecretSize = 20 // bytes, 160 bits
	DefaultImageSize  = 256

	codeLength = 6
)

var ErrInvalidURI = errors.New("otpx: invalid provisioning uri")

// Enrollment is the material handed to a user once at registration.
type Enrollment struct {
	Secret          string // base32, no padding
	ProvisioningURI string // otpauth://totp/...
}

// Engine carries the issuer name and the verification window. The zero
// value is not usable, build one with New.
type Engine struct {
	Issuer string
	Skew   uint
}

func New(issuer string, skew uint) *Engine {
	return &Engine{Issuer: issuer, Skew: skew}
}

// GenerateSecret provisions a fresh 160-bit secret for username.
func (e *Engine) GenerateSecret(username string) (Enrollment, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      e.Issuer,
		AccountName: username,
		Period:      DefaultPeriod,
		SecretSize:  DefaultSecretSize,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return Enrollment{}, fmt.Errorf("otpx: generate key: %w", err)
	}

	return Enrollment{
		Secret:          key.Secret(),
		ProvisioningURI: key.URL(),
	}, nil
}

// Verify checks code against the current time using the engine's window.
func (e *Engine) Verify(secret, code string) bool {
	return e.VerifyAt(secret, code, time.Now())
}

// VerifyAt checks code against an explicit clock reading.
func (e *Engine) VerifyAt(secret, code string, at time.Time) bool {
	return VerifyCodeAt(secret, code, e.Skew, at)
}

// RenderEnrollmentImage encodes the provisioning URI as a PNG QR code of
// size x size pixels.
func RenderEnrollmentImage(uri string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultImageSize
	}

	key, err := otp.NewKeyFromURL(uri)
	if err != nil || key.Type() != "totp" {
		return nil, ErrInvalidURI
	}

	img, err := key.Image(size, size)
	if err != nil {
		return nil, fmt.Errorf("otpx: render qr: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("otpx: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// VerifyCode checks a submitted code against now ± windowSteps steps.
func VerifyCode(secret, code string, windowSteps uint) bool {
	return VerifyCodeAt(secret, code, windowSteps, time.Now())
}

// VerifyCodeAt is VerifyCode at an explicit instant. Every candidate step is
// generated and compared, the loop never exits early on a match.
func VerifyCodeAt(secret, code string, windowSteps uint, at time.Time) bool {
	if !wellFormed(code) {
		return false
	}

	opts := totp.ValidateOpts{
		Period:    DefaultPeriod,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}

	matched := 0
	step := time.Duration(DefaultPeriod) * time.Second
	for i := -int(windowSteps); i <= int(windowSteps); i++ {
		candidate, err := totp.GenerateCodeCustom(secret, at.Add(time.Duration(i)*step), opts)
		if err != nil {
			// Undecodable secret, nothing can match.
			return false
		}
		matched |= subtle.ConstantTimeCompare([]byte(candidate), []byte(code))
	}

	return matched == 1
}

func wellFormed(code string) bool {
	if len(code) != codeLength {
		return false
	}
	for i := range len(code) {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}
