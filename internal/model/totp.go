package model

import (
	"encoding/base32"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// TOTP errors.
var (
	ErrMissingTOTPSecret = errors.New("TOTP secret is required")
	ErrInvalidTOTPSecret = errors.New("TOTP secret must be valid base32")
	ErrInvalidTOTPDigits = errors.New("TOTP digits must be 6 or 8")
	ErrInvalidTOTPPeriod = errors.New("TOTP period must be positive")
)

// TOTPAlgorithm represents the hash algorithm used for TOTP.
type TOTPAlgorithm string

const (
	// TOTPAlgorithmSHA1 is the SHA1 algorithm (default).
	TOTPAlgorithmSHA1 TOTPAlgorithm = "SHA1"
	// TOTPAlgorithmSHA256 is the SHA256 algorithm.
	TOTPAlgorithmSHA256 TOTPAlgorithm = "SHA256"
	// TOTPAlgorithmSHA512 is the SHA512 algorithm.
	TOTPAlgorithmSHA512 TOTPAlgorithm = "SHA512"
)

// String returns the lowercase name used by the credential exchange format.
func (a TOTPAlgorithm) String() string {
	switch a {
	case TOTPAlgorithmSHA256:
		return "sha256"
	case TOTPAlgorithmSHA512:
		return "sha512"
	default:
		return "sha1"
	}
}

// TOTPData contains Time-based One-Time Password configuration.
type TOTPData struct {
	// Secret is the base32-encoded TOTP secret.
	Secret string

	Algorithm TOTPAlgorithm
	Digits    int
	Period    int

	// Issuer is the service that issued the TOTP.
	Issuer string

	// AccountName is the account identifier for the TOTP.
	AccountName string
}

// NewTOTPData creates a TOTPData with default values.
func NewTOTPData(secret string) *TOTPData {
	return &TOTPData{
		Secret:    secret,
		Algorithm: TOTPAlgorithmSHA1,
		Digits:    6,
		Period:    30,
	}
}

// ParseTOTP parses an entry's TOTP value, either an otpauth:// URI or a
// bare seed. It returns nil for an empty value.
func ParseTOTP(totp string) *TOTPData {
	totp = strings.TrimSpace(totp)
	if totp == "" {
		return nil
	}
	if strings.HasPrefix(totp, "otpauth://totp/") {
		return parseOTPAuthURI(totp)
	}
	return NewTOTPData(totp)
}

func parseOTPAuthURI(uri string) *TOTPData {
	parsed, err := url.Parse(uri)
	if err != nil {
		return NewTOTPData(uri)
	}

	// Label is "Issuer:Account" or just "Account"
	label := strings.TrimPrefix(parsed.Path, "/")
	var issuer, accountName string
	if idx := strings.Index(label, ":"); idx > 0 {
		issuer = label[:idx]
		accountName = label[idx+1:]
	} else {
		accountName = label
	}

	params := parsed.Query()

	secret := params.Get("secret")
	if secret == "" {
		return NewTOTPData(uri)
	}

	algorithm := TOTPAlgorithmSHA1
	switch strings.ToUpper(params.Get("algorithm")) {
	case "SHA256":
		algorithm = TOTPAlgorithmSHA256
	case "SHA512":
		algorithm = TOTPAlgorithmSHA512
	}

	digits := 6
	if d := params.Get("digits"); d != "" {
		if n, err := strconv.Atoi(d); err == nil && n > 0 {
			digits = n
		}
	}

	period := 30
	if p := params.Get("period"); p != "" {
		if n, err := strconv.Atoi(p); err == nil && n > 0 {
			period = n
		}
	}

	if i := params.Get("issuer"); i != "" {
		issuer = i
	}

	return &TOTPData{
		Secret:      secret,
		Algorithm:   algorithm,
		Digits:      digits,
		Period:      period,
		Issuer:      issuer,
		AccountName: accountName,
	}
}

// Validate checks that the secret is base32 and the parameters are usable.
func (t *TOTPData) Validate() error {
	if t == nil || t.Secret == "" {
		return ErrMissingTOTPSecret
	}

	// Allow lowercase, spaces and missing padding
	secret := strings.ToUpper(strings.TrimRight(t.Secret, "="))
	secret = strings.ReplaceAll(secret, " ", "")
	if _, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(secret); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTOTPSecret, err)
	}

	if t.Digits != 0 && t.Digits != 6 && t.Digits != 8 {
		return ErrInvalidTOTPDigits
	}
	if t.Period < 0 {
		return ErrInvalidTOTPPeriod
	}

	return nil
}
