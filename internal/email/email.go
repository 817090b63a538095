// Package email renders and delivers the portal's transactional mail.
package email

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrNoRecipient = errors.New("email has no recipient")

type Message struct {
	To       []string
	Subject  string
	HTMLBody string
	TextBody string
}

// Receipt identifies one accepted message.
type Receipt struct {
	ID      string    `json:"id"`
	To      []string  `json:"to"`
	Subject string    `json:"subject"`
	SentAt  time.Time `json:"sent_at"`
}

type Sender interface {
	Send(ctx context.Context, message Message) (Receipt, error)
}

func (message Message) validate() error {
	for _, to := range message.To {
		if strings.TrimSpace(to) != "" {
			return nil
		}
	}
	return ErrNoRecipient
}

func newReceipt(message Message, sentAt time.Time) Receipt {
	return Receipt{
		ID:      uuid.NewString(),
		To:      append([]string(nil), message.To...),
		Subject: message.Subject,
		SentAt:  sentAt.UTC(),
	}
}

// Recorder keeps every message in memory instead of delivering it.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
	Err      error
}

func (r *Recorder) Send(_ context.Context, message Message) (Receipt, error) {
	if err := message.validate(); err != nil {
		return Receipt{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return Receipt{}, r.Err
	}
	r.messages = append(r.messages, message)
	return newReceipt(message, time.Now()), nil
}

func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// Last returns the most recent message, if any.
func (r *Recorder) Last() (Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return Message{}, false
	}
	return r.messages[len(r.messages)-1], true
}
