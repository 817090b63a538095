package services

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/terraincognita07/khare/internal/logging"
	"github.com/terraincognita07/khare/internal/models"
)

type AuthEventType string

const (
	AuthEventInitialSession AuthEventType = "INITIAL_SESSION"
	AuthEventSignedIn       AuthEventType = "SIGNED_IN"
	AuthEventSignedOut      AuthEventType = "SIGNED_OUT"
)

type AuthEvent struct {
	Type    AuthEventType
	Session *models.Session
}

// TokenStore persists the session token between requests.
type TokenStore interface {
	Load() (string, bool)
	Save(token string, expiresAt time.Time)
	Clear()
}

type CodeVerifier interface {
	VerifyCode(ctx context.Context, email string, code string) (bool, error)
}

type VerificationDispatcher interface {
	SendVerificationCode(ctx context.Context, email string) (VerificationDispatch, error)
}

// VerificationResult keeps validity and lookup failure apart: IsValid is
// false whenever Err is set.
type VerificationResult struct {
	IsValid bool
	Err     error
}

// AuthManager runs the sign-up, sign-in, one-time-code and sign-out flows for
// one view and publishes every change to its SessionStore.
type AuthManager struct {
	provider IdentityProvider
	codes    CodeVerifier
	sender   VerificationDispatcher
	tokens   TokenStore
	store    *SessionStore
	now      func() time.Time

	mu           sync.Mutex
	listeners    []authListener
	nextListener int
	initialized  bool
}

func NewAuthManager(provider IdentityProvider, codes CodeVerifier, sender VerificationDispatcher, tokens TokenStore) *AuthManager {
	return &AuthManager{
		provider: provider,
		codes:    codes,
		sender:   sender,
		tokens:   tokens,
		store:    NewSessionStore(),
		now:      time.Now,
	}
}

func (manager *AuthManager) Store() *SessionStore {
	return manager.store
}

func (manager *AuthManager) State() models.AuthState {
	return manager.store.State()
}

// Init wires the store to auth events and resolves the persisted token. It is
// safe to call more than once; only the first call does work.
func (manager *AuthManager) Init(ctx context.Context) models.AuthState {
	manager.mu.Lock()
	if manager.initialized {
		manager.mu.Unlock()
		return manager.store.State()
	}
	manager.initialized = true
	manager.addListenerLocked(manager.applyEvent)
	manager.mu.Unlock()

	token, ok := manager.tokens.Load()
	if !ok {
		manager.emit(AuthEvent{Type: AuthEventInitialSession})
		return manager.store.State()
	}

	session, err := manager.provider.Resolve(ctx, token)
	if err != nil {
		logging.FromContext(ctx).Debug("discarding persisted session", "error", err)
		manager.tokens.Clear()
		manager.emit(AuthEvent{Type: AuthEventInitialSession})
		return manager.store.State()
	}
	manager.emit(AuthEvent{Type: AuthEventInitialSession, Session: &session})
	return manager.store.State()
}

type authListener struct {
	id int
	fn func(AuthEvent)
}

// OnAuthEvent registers fn for raw auth events and returns its cancel func.
// Listeners run in registration order. Cancelling after Dispose is a no-op.
func (manager *AuthManager) OnAuthEvent(fn func(AuthEvent)) func() {
	manager.mu.Lock()
	defer manager.mu.Unlock()
	id := manager.addListenerLocked(fn)

	return func() {
		manager.mu.Lock()
		defer manager.mu.Unlock()
		manager.listeners = slices.DeleteFunc(manager.listeners, func(listener authListener) bool {
			return listener.id == id
		})
	}
}

func (manager *AuthManager) addListenerLocked(fn func(AuthEvent)) int {
	id := manager.nextListener
	manager.nextListener++
	manager.listeners = append(manager.listeners, authListener{id: id, fn: fn})
	return id
}

func (manager *AuthManager) Subscribe(fn func(models.AuthState)) func() {
	return manager.store.Subscribe(fn)
}

func (manager *AuthManager) Dispose() {
	manager.mu.Lock()
	manager.listeners = nil
	manager.mu.Unlock()
	manager.store.Dispose()
}

func (manager *AuthManager) emit(event AuthEvent) {
	manager.mu.Lock()
	listeners := slices.Clone(manager.listeners)
	manager.mu.Unlock()

	for _, listener := range listeners {
		listener.fn(event)
	}
}

func (manager *AuthManager) applyEvent(event AuthEvent) {
	manager.store.Set(models.AuthState{Session: event.Session, Loading: false})
}

// SignUp creates the account and its client profile, then mails a
// confirmation code. A failed confirmation mail does not fail sign-up.
func (manager *AuthManager) SignUp(ctx context.Context, email string, password string, fullName string) (models.Account, error) {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" || strings.TrimSpace(fullName) == "" {
		return models.Account{}, validationError("email, password and full name are required")
	}

	account, err := manager.provider.SignUp(ctx, SignUpRequest{Email: email, Password: password, FullName: fullName})
	if err != nil {
		return models.Account{}, asAuthError(err)
	}

	if manager.sender != nil {
		if _, err := manager.sender.SendVerificationCode(ctx, account.Email); err != nil {
			logging.FromContext(ctx).Warn("confirmation code not sent", "email", account.Email, "error", err)
		}
	}
	return account, nil
}

func (manager *AuthManager) SignIn(ctx context.Context, email string, password string) (models.Session, error) {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return models.Session{}, validationError("email and password are required")
	}

	session, err := manager.provider.Authenticate(ctx, PasswordCredential{Email: email, Password: password})
	if err != nil {
		return models.Session{}, asAuthError(err)
	}
	manager.establish(session)
	return session, nil
}

func (manager *AuthManager) SendVerificationCode(ctx context.Context, email string) (VerificationDispatch, error) {
	dispatch, err := manager.sender.SendVerificationCode(ctx, email)
	if err != nil {
		return VerificationDispatch{}, newError(ErrAuth, err.Error(), err)
	}
	return dispatch, nil
}

func (manager *AuthManager) VerifyEmailCode(ctx context.Context, email string, code string) VerificationResult {
	valid, err := manager.codes.VerifyCode(ctx, email, code)
	if err != nil {
		return VerificationResult{IsValid: false, Err: err}
	}
	return VerificationResult{IsValid: valid}
}

// SignInWithOTP redeems the code first and only asks the provider for a
// session once the code is known to be valid.
func (manager *AuthManager) SignInWithOTP(ctx context.Context, email string, code string) (models.Session, error) {
	result := manager.VerifyEmailCode(ctx, email, code)
	if result.Err != nil || !result.IsValid {
		if result.Err != nil {
			logging.FromContext(ctx).Warn("verification code lookup failed", "error", result.Err)
		}
		return models.Session{}, authError(ErrInvalidOrExpiredCode)
	}

	session, err := manager.provider.Authenticate(ctx, EmailCodeCredential{
		Email:      email,
		VerifiedAt: manager.now().UTC(),
	})
	if err != nil {
		return models.Session{}, asAuthError(err)
	}
	manager.establish(session)
	return session, nil
}

// SignOut always clears the local token and state. A failed remote revoke is
// returned afterwards as ErrNetwork.
func (manager *AuthManager) SignOut(ctx context.Context) error {
	token, hadToken := manager.tokens.Load()

	var revokeErr error
	if hadToken {
		revokeErr = manager.provider.Revoke(ctx, token)
		// a token that no longer parses has no server-side session left to end
		if errors.Is(revokeErr, ErrSessionInvalid) {
			revokeErr = nil
		}
	}

	manager.tokens.Clear()
	manager.emit(AuthEvent{Type: AuthEventSignedOut})

	if revokeErr != nil {
		return newError(ErrNetwork, "sign out could not be confirmed", revokeErr)
	}
	return nil
}

func (manager *AuthManager) establish(session models.Session) {
	manager.tokens.Save(session.Token, session.ExpiresAt)
	manager.emit(AuthEvent{Type: AuthEventSignedIn, Session: &session})
}
