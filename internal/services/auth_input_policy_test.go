package services

import (
	"errors"
	"testing"
)

func TestNormalizeAuthEmail(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "normalizes case and spaces", raw: " USER@EXAMPLE.COM ", want: "user@example.com"},
		{name: "invalid email returns empty", raw: "not-email", want: ""},
		{name: "display name form is rejected", raw: "Ada <ada@example.com>", want: ""},
		{name: "empty returns empty", raw: "   ", want: ""},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			if got := NormalizeAuthEmail(testCase.raw); got != testCase.want {
				t.Fatalf("NormalizeAuthEmail(%q) = %q, want %q", testCase.raw, got, testCase.want)
			}
		})
	}
}

func TestNormalizeCredentialsInput(t *testing.T) {
	email, password, err := NormalizeCredentialsInput(" USER@EXAMPLE.COM ", "  StrongPass1  ")
	if err != nil {
		t.Fatalf("expected valid credentials input, got %v", err)
	}
	if email != "user@example.com" {
		t.Fatalf("expected normalized email, got %q", email)
	}
	if password != "StrongPass1" {
		t.Fatalf("expected trimmed password, got %q", password)
	}

	_, _, err = NormalizeCredentialsInput("not-email", "StrongPass1")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for invalid email, got %v", err)
	}

	_, _, err = NormalizeCredentialsInput("user@example.com", " ")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for empty password, got %v", err)
	}
}

func TestNormalizeVerificationCode(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{raw: "483920", want: "483920", wantOK: true},
		{raw: " 000000 ", want: "000000", wantOK: true},
		{raw: "48392", wantOK: false},
		{raw: "48392a", wantOK: false},
		{raw: "", wantOK: false},
	}

	for _, test := range tests {
		got, ok := NormalizeVerificationCode(test.raw)
		if got != test.want || ok != test.wantOK {
			t.Fatalf("NormalizeVerificationCode(%q) = (%q, %v), want (%q, %v)", test.raw, got, ok, test.want, test.wantOK)
		}
	}
}

func TestErrorMatchesKindAndCause(t *testing.T) {
	err := authError(ErrInvalidOrExpiredCode)

	if !errors.Is(err, ErrAuth) || !errors.Is(err, ErrInvalidOrExpiredCode) {
		t.Fatalf("expected auth kind and cause to match, got %v", err)
	}
	if err.Error() != "invalid or expired verification code" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if KindOf(err) != ErrAuth {
		t.Fatalf("expected ErrAuth kind, got %v", KindOf(err))
	}
	if KindOf(errors.New("plain")) != nil {
		t.Fatal("expected foreign errors to have no kind")
	}

	wrapped := asAuthError(newError(ErrDelivery, "send failed", nil))
	if KindOf(wrapped) != ErrDelivery {
		t.Fatalf("expected existing kind to be kept, got %v", KindOf(wrapped))
	}
}
