package services

import (
	"net/mail"
	"strings"
)

const verificationCodeLength = 6

func NormalizeAuthEmail(raw string) string {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return ""
	}
	address, err := mail.ParseAddress(email)
	if err != nil || address.Address != email {
		return ""
	}
	return email
}

func NormalizeCredentialsInput(emailRaw string, passwordRaw string) (string, string, error) {
	email := NormalizeAuthEmail(emailRaw)
	password := strings.TrimSpace(passwordRaw)
	if email == "" || password == "" {
		return "", "", validationError("email and password are required")
	}
	return email, password, nil
}

// NormalizeVerificationCode trims input and reports whether it has the
// shape of an issued code.
func NormalizeVerificationCode(raw string) (string, bool) {
	code := strings.TrimSpace(raw)
	if len(code) != verificationCodeLength {
		return "", false
	}
	for _, char := range code {
		if char < '0' || char > '9' {
			return "", false
		}
	}
	return code, true
}

func normalizeOptionalText(raw string) *string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}
	return &value
}
