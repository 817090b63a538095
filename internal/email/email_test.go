package email

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerificationMessageContainsCodeAndExpiry(t *testing.T) {
	message, err := VerificationMessage("a@x.com", VerificationData{Code: "483920", ExpiresIn: 10 * time.Minute})
	require.NoError(t, err)

	assert.Equal(t, []string{"a@x.com"}, message.To)
	assert.Contains(t, message.HTMLBody, "483920")
	assert.Contains(t, message.HTMLBody, "10 minutes")
	assert.Contains(t, message.TextBody, "483920")
}

func TestInterestMessageEscapesUserInput(t *testing.T) {
	message, err := InterestMessage("owner@x.com", InterestData{
		ProjectTitle:      "Deck <b>rebuild</b>",
		InterestedEmail:   "lead@x.com",
		InterestedContact: "<script>alert(1)</script>",
	})
	require.NoError(t, err)

	assert.Equal(t, "New Interest in Your Project: Deck <b>rebuild</b>", message.Subject)
	assert.NotContains(t, message.HTMLBody, "<script>")
	assert.Contains(t, message.HTMLBody, "&lt;script&gt;")
	assert.Contains(t, message.HTMLBody, "lead@x.com")
}

func TestRecorderCapturesAndFails(t *testing.T) {
	recorder := &Recorder{}
	ctx := context.Background()

	receipt, err := recorder.Send(ctx, Message{To: []string{"a@x.com"}, Subject: "hi"})
	require.NoError(t, err)
	assert.NotEmpty(t, receipt.ID)
	assert.Equal(t, "hi", receipt.Subject)

	last, ok := recorder.Last()
	require.True(t, ok)
	assert.Equal(t, "hi", last.Subject)

	_, err = recorder.Send(ctx, Message{Subject: "nobody"})
	assert.True(t, errors.Is(err, ErrNoRecipient))

	recorder.Err = errors.New("provider down")
	_, err = recorder.Send(ctx, Message{To: []string{"a@x.com"}})
	assert.EqualError(t, err, "provider down")
	assert.Len(t, recorder.Messages(), 1)
}

func TestLogSenderDoesNotLogBody(t *testing.T) {
	var buf bytes.Buffer
	sender := NewLogSender(slog.New(slog.NewTextHandler(&buf, nil)))

	_, err := sender.Send(context.Background(), Message{To: []string{"a@x.com"}, Subject: "code", HTMLBody: "secret-483920"})
	require.NoError(t, err)

	out := buf.String()
	assert.True(t, strings.Contains(out, "subject=code"))
	assert.False(t, strings.Contains(out, "secret-483920"))
}

func TestSMTPSenderHonoursCancelledContext(t *testing.T) {
	sender := NewSMTPSender(SMTPConfig{Host: "127.0.0.1", Port: 1, From: "noreply@x.com"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sender.Send(ctx, Message{To: []string{"a@x.com"}, Subject: "hi", HTMLBody: "<p>hi</p>"})
	assert.True(t, errors.Is(err, context.Canceled))
}
