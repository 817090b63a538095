package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/terraincognita07/khare/internal/db"
	"github.com/terraincognita07/khare/internal/models"
)

var testNow = time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: testNow}
}

func (clock *testClock) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.now
}

func (clock *testClock) Advance(step time.Duration) {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	clock.now = clock.now.Add(step)
}

// memoryCodeStore mirrors the database semantics of VerificationCodeRepository.
type memoryCodeStore struct {
	mu          sync.Mutex
	codes       []models.VerificationCode
	generateErr error
	verifyErr   error
}

func (store *memoryCodeStore) Generate(_ context.Context, email string, code string, now time.Time, ttl time.Duration) (models.VerificationCode, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.generateErr != nil {
		return models.VerificationCode{}, store.generateErr
	}
	for index := range store.codes {
		if store.codes[index].Email == email && store.codes[index].Active(now) {
			store.codes[index].ExpiresAt = now
		}
	}
	pending := false
	entry := models.VerificationCode{ID: code + email, Email: email, Code: code, CreatedAt: now, ExpiresAt: now.Add(ttl), Verified: &pending}
	store.codes = append(store.codes, entry)
	return entry, nil
}

func (store *memoryCodeStore) Verify(_ context.Context, email string, code string, now time.Time) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.verifyErr != nil {
		return false, store.verifyErr
	}
	for index := len(store.codes) - 1; index >= 0; index-- {
		entry := &store.codes[index]
		if entry.Email == email && entry.Code == code && entry.Active(now) {
			verified := true
			entry.Verified = &verified
			return true, nil
		}
	}
	return false, nil
}

type memoryTokenStore struct {
	token     string
	expiresAt time.Time
	saves     int
	clears    int
}

func (store *memoryTokenStore) Load() (string, bool) {
	return store.token, store.token != ""
}

func (store *memoryTokenStore) Save(token string, expiresAt time.Time) {
	store.token = token
	store.expiresAt = expiresAt
	store.saves++
}

func (store *memoryTokenStore) Clear() {
	store.token = ""
	store.clears++
}

// alwaysSucceedingProvider hands out a session for any credential.
type alwaysSucceedingProvider struct {
	mu          sync.Mutex
	credentials []Credential
	resolveErr  error
	revokeErr   error
	revoked     []string
}

func (provider *alwaysSucceedingProvider) SignUp(_ context.Context, request SignUpRequest) (models.Account, error) {
	return models.Account{ID: "acc-" + request.Email, Email: NormalizeAuthEmail(request.Email)}, nil
}

func (provider *alwaysSucceedingProvider) Authenticate(_ context.Context, credential Credential) (models.Session, error) {
	provider.mu.Lock()
	defer provider.mu.Unlock()
	provider.credentials = append(provider.credentials, credential)
	return testSession(credential.credentialEmail(), models.RoleClient), nil
}

func (provider *alwaysSucceedingProvider) Resolve(_ context.Context, token string) (models.Session, error) {
	if provider.resolveErr != nil {
		return models.Session{}, provider.resolveErr
	}
	session := testSession("resolved@x.com", models.RoleContractor)
	session.Token = token
	return session, nil
}

func (provider *alwaysSucceedingProvider) Revoke(_ context.Context, token string) error {
	provider.revoked = append(provider.revoked, token)
	return provider.revokeErr
}

func (provider *alwaysSucceedingProvider) authenticateCalls() int {
	provider.mu.Lock()
	defer provider.mu.Unlock()
	return len(provider.credentials)
}

func testSession(email string, role models.Role) models.Session {
	return models.Session{
		ID:        "sid-" + email,
		Token:     "token-" + email,
		User:      models.SessionUser{ID: "acc-" + email, Email: email},
		Profile:   &models.Profile{ID: "acc-" + email, Role: role},
		ExpiresAt: testNow.Add(time.Hour),
	}
}

type stubVerifier struct {
	valid bool
	err   error
	calls int
}

func (verifier *stubVerifier) VerifyCode(context.Context, string, string) (bool, error) {
	verifier.calls++
	return verifier.valid, verifier.err
}

type stubDispatcher struct {
	err  error
	sent []string
}

func (dispatcher *stubDispatcher) SendVerificationCode(_ context.Context, email string) (VerificationDispatch, error) {
	dispatcher.sent = append(dispatcher.sent, email)
	if dispatcher.err != nil {
		return VerificationDispatch{}, dispatcher.err
	}
	return VerificationDispatch{Email: email, ExpiresAt: testNow.Add(DefaultCodeTTL)}, nil
}

var errStorageDown = errors.New("storage down")

func openRepositoriesForTest(t *testing.T) *db.Repositories {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "khare-services.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db.NewRepositories(database)
}
