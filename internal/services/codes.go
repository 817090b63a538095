package services

import (
	"context"
	"time"

	"github.com/terraincognita07/khare/internal/models"
	"github.com/terraincognita07/khare/internal/security"
)

const DefaultCodeTTL = 10 * time.Minute

type VerificationCodeStore interface {
	Generate(ctx context.Context, email string, code string, now time.Time, ttl time.Duration) (models.VerificationCode, error)
	Verify(ctx context.Context, email string, code string, now time.Time) (bool, error)
}

// CodeIssuer generates and redeems email verification codes.
type CodeIssuer struct {
	codes    VerificationCodeStore
	ttl      time.Duration
	now      func() time.Time
	generate func() (string, error)
}

func NewCodeIssuer(codes VerificationCodeStore, ttl time.Duration) *CodeIssuer {
	if ttl <= 0 {
		ttl = DefaultCodeTTL
	}
	return &CodeIssuer{
		codes: codes,
		ttl:   ttl,
		now:   time.Now,
		generate: func() (string, error) {
			return security.NumericCode(verificationCodeLength)
		},
	}
}

func (issuer *CodeIssuer) TTL() time.Duration {
	return issuer.ttl
}

// GenerateCode stores a fresh code for emailRaw. Any older pending code for
// the same address stops validating.
func (issuer *CodeIssuer) GenerateCode(ctx context.Context, emailRaw string) (models.VerificationCode, error) {
	email := NormalizeAuthEmail(emailRaw)
	if email == "" {
		return models.VerificationCode{}, validationError("a valid email address is required")
	}

	code, err := issuer.generate()
	if err != nil {
		return models.VerificationCode{}, newError(ErrGeneration, "failed to generate verification code", err)
	}

	entry, err := issuer.codes.Generate(ctx, email, code, issuer.now().UTC(), issuer.ttl)
	if err != nil {
		return models.VerificationCode{}, newError(ErrGeneration, "failed to store verification code", err)
	}
	return entry, nil
}

// VerifyCode redeems code for emailRaw. Malformed input, unknown, expired and
// already used codes all report false with a nil error.
func (issuer *CodeIssuer) VerifyCode(ctx context.Context, emailRaw string, codeRaw string) (bool, error) {
	email := NormalizeAuthEmail(emailRaw)
	code, ok := NormalizeVerificationCode(codeRaw)
	if email == "" || !ok {
		return false, nil
	}

	verified, err := issuer.codes.Verify(ctx, email, code, issuer.now().UTC())
	if err != nil {
		return false, newError(ErrNetwork, "failed to check verification code", err)
	}
	return verified, nil
}
