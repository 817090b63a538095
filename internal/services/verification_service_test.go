package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/khare/internal/email"
)

func TestSendVerificationCodeMailsTheCode(t *testing.T) {
	store := &memoryCodeStore{}
	recorder := &email.Recorder{}
	sender := NewVerificationSender(newFixedCodeIssuer(store, newTestClock(), "483920"), recorder, false)

	dispatch, err := sender.SendVerificationCode(context.Background(), "A@x.com")
	require.NoError(t, err)

	assert.Equal(t, "a@x.com", dispatch.Email)
	assert.Empty(t, dispatch.Code, "code must not be echoed outside demo mode")
	assert.Len(t, store.codes, 1)

	message, ok := recorder.Last()
	require.True(t, ok)
	assert.Equal(t, []string{"a@x.com"}, message.To)
	assert.Contains(t, message.HTMLBody, "483920")
}

func TestSendVerificationCodeEchoesInDemoMode(t *testing.T) {
	sender := NewVerificationSender(newFixedCodeIssuer(&memoryCodeStore{}, newTestClock(), "483920"), &email.Recorder{}, true)

	dispatch, err := sender.SendVerificationCode(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "483920", dispatch.Code)
}

func TestSendVerificationCodeErrorKinds(t *testing.T) {
	ctx := context.Background()

	sender := NewVerificationSender(newFixedCodeIssuer(&memoryCodeStore{}, newTestClock(), "483920"), &email.Recorder{}, false)
	_, err := sender.SendVerificationCode(ctx, "")
	assert.True(t, errors.Is(err, ErrValidation))

	sender = NewVerificationSender(newFixedCodeIssuer(&memoryCodeStore{generateErr: errStorageDown}, newTestClock(), "483920"), &email.Recorder{}, false)
	_, err = sender.SendVerificationCode(ctx, "a@x.com")
	assert.True(t, errors.Is(err, ErrGeneration))

	store := &memoryCodeStore{}
	recorder := &email.Recorder{Err: errors.New("smtp refused")}
	sender = NewVerificationSender(newFixedCodeIssuer(store, newTestClock(), "483920"), recorder, false)
	_, err = sender.SendVerificationCode(ctx, "a@x.com")
	assert.True(t, errors.Is(err, ErrDelivery))
	assert.Len(t, store.codes, 1, "exactly one row per call, even when delivery fails")
	assert.Empty(t, recorder.Messages())
}
