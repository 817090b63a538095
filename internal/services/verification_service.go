package services

import (
	"context"
	"time"

	"github.com/terraincognita07/khare/internal/email"
	"github.com/terraincognita07/khare/internal/logging"
)

// VerificationDispatch describes a code that was issued and handed to the mailer.
// Code is only filled when demo echo is enabled.
type VerificationDispatch struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
	Code      string    `json:"code,omitempty"`
}

type VerificationSender struct {
	issuer    *CodeIssuer
	mailer    email.Sender
	echoCodes bool
}

func NewVerificationSender(issuer *CodeIssuer, mailer email.Sender, echoCodes bool) *VerificationSender {
	return &VerificationSender{issuer: issuer, mailer: mailer, echoCodes: echoCodes}
}

// SendVerificationCode writes one code row and makes one delivery attempt.
func (sender *VerificationSender) SendVerificationCode(ctx context.Context, emailRaw string) (VerificationDispatch, error) {
	address := NormalizeAuthEmail(emailRaw)
	if address == "" {
		return VerificationDispatch{}, validationError("a valid email address is required")
	}

	entry, err := sender.issuer.GenerateCode(ctx, address)
	if err != nil {
		return VerificationDispatch{}, err
	}

	message, err := email.VerificationMessage(address, email.VerificationData{
		Code:      entry.Code,
		ExpiresIn: entry.ExpiresAt.Sub(entry.CreatedAt),
	})
	if err != nil {
		return VerificationDispatch{}, newError(ErrDelivery, "failed to send verification code", err)
	}
	if _, err := sender.mailer.Send(ctx, message); err != nil {
		return VerificationDispatch{}, newError(ErrDelivery, "failed to send verification code", err)
	}

	logger := logging.FromContext(ctx)
	dispatch := VerificationDispatch{Email: address, ExpiresAt: entry.ExpiresAt}
	if sender.echoCodes {
		dispatch.Code = entry.Code
		logger.Warn("verification code echoed to caller", "email", address, "code", entry.Code)
	} else {
		logger.Info("verification code sent", "email", address, "expires_at", entry.ExpiresAt)
	}
	return dispatch, nil
}
