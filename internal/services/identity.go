package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/terraincognita07/khare/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	DefaultSessionTTL = 7 * 24 * time.Hour

	// An EmailCodeCredential must be presented right after the code was redeemed.
	verifiedCredentialMaxAge = time.Minute
)

// Credential is one of PasswordCredential or EmailCodeCredential.
type Credential interface {
	credentialEmail() string
}

type PasswordCredential struct {
	Email    string
	Password string
}

func (credential PasswordCredential) credentialEmail() string { return credential.Email }

// EmailCodeCredential attests that a one-time code for Email was redeemed at VerifiedAt.
type EmailCodeCredential struct {
	Email      string
	VerifiedAt time.Time
}

func (credential EmailCodeCredential) credentialEmail() string { return credential.Email }

type SignUpRequest struct {
	Email    string
	Password string
	FullName string
	Role     models.Role
}

type IdentityProvider interface {
	SignUp(ctx context.Context, request SignUpRequest) (models.Account, error)
	Authenticate(ctx context.Context, credential Credential) (models.Session, error)
	Resolve(ctx context.Context, token string) (models.Session, error)
	Revoke(ctx context.Context, token string) error
}

type IdentityAccountRepository interface {
	CreateWithProfile(ctx context.Context, account *models.Account, profile *models.Profile) error
	ExistsByNormalizedEmail(ctx context.Context, email string) (bool, error)
	FindByNormalizedEmail(ctx context.Context, email string) (models.Account, error)
	FindByID(ctx context.Context, accountID string) (models.Account, error)
	ConfirmEmail(ctx context.Context, accountID string, confirmedAt time.Time) error
}

type IdentityProfileRepository interface {
	FindByID(ctx context.Context, profileID string) (models.Profile, error)
}

type IdentitySessionRepository interface {
	Create(ctx context.Context, session *models.AuthSession) error
	FindByID(ctx context.Context, sessionID string) (models.AuthSession, error)
	Revoke(ctx context.Context, sessionID string, revokedAt time.Time) error
}

type sessionClaims struct {
	AccountID string `json:"uid"`
	Method    string `json:"amr"`
	jwt.RegisteredClaims
}

// LocalIdentityProvider keeps accounts in the database, hashes passwords with
// bcrypt and issues HS256 session tokens backed by revocable auth_sessions rows.
type LocalIdentityProvider struct {
	accounts   IdentityAccountRepository
	profiles   IdentityProfileRepository
	sessions   IdentitySessionRepository
	secretKey  []byte
	sessionTTL time.Duration
	now        func() time.Time
}

func NewLocalIdentityProvider(
	accounts IdentityAccountRepository,
	profiles IdentityProfileRepository,
	sessions IdentitySessionRepository,
	secretKey []byte,
	sessionTTL time.Duration,
) *LocalIdentityProvider {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &LocalIdentityProvider{
		accounts:   accounts,
		profiles:   profiles,
		sessions:   sessions,
		secretKey:  secretKey,
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

func (provider *LocalIdentityProvider) SignUp(ctx context.Context, request SignUpRequest) (models.Account, error) {
	address, password, err := NormalizeCredentialsInput(request.Email, request.Password)
	if err != nil {
		return models.Account{}, err
	}
	if err := ValidatePasswordStrength(password); err != nil {
		return models.Account{}, authError(err)
	}

	exists, err := provider.accounts.ExistsByNormalizedEmail(ctx, address)
	if err != nil {
		return models.Account{}, newError(ErrNetwork, "failed to check email", err)
	}
	if exists {
		return models.Account{}, authError(ErrEmailTaken)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.Account{}, newError(ErrAuth, "failed to hash password", err)
	}

	role := request.Role
	if !role.Valid() {
		role = models.DefaultRole
	}
	now := provider.now().UTC()
	account := models.Account{Email: address, PasswordHash: string(passwordHash), CreatedAt: now}
	profile := models.Profile{FullName: normalizeOptionalText(request.FullName), Role: role, CreatedAt: now}
	if err := provider.accounts.CreateWithProfile(ctx, &account, &profile); err != nil {
		return models.Account{}, newError(ErrAuth, "failed to create account", err)
	}
	return account, nil
}

func (provider *LocalIdentityProvider) Authenticate(ctx context.Context, credential Credential) (models.Session, error) {
	switch credential := credential.(type) {
	case PasswordCredential:
		return provider.authenticatePassword(ctx, credential)
	case EmailCodeCredential:
		return provider.authenticateEmailCode(ctx, credential)
	default:
		return models.Session{}, newError(ErrAuth, fmt.Sprintf("unsupported credential %T", credential), nil)
	}
}

func (provider *LocalIdentityProvider) authenticatePassword(ctx context.Context, credential PasswordCredential) (models.Session, error) {
	address, password, err := NormalizeCredentialsInput(credential.Email, credential.Password)
	if err != nil {
		return models.Session{}, err
	}

	account, err := provider.accounts.FindByNormalizedEmail(ctx, address)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Session{}, authError(ErrInvalidCredentials)
		}
		return models.Session{}, newError(ErrNetwork, "failed to load account", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return models.Session{}, authError(ErrInvalidCredentials)
	}
	return provider.issueSession(ctx, account, models.AuthMethodPassword)
}

// authenticateEmailCode never creates an account: the address must already be registered.
func (provider *LocalIdentityProvider) authenticateEmailCode(ctx context.Context, credential EmailCodeCredential) (models.Session, error) {
	address := NormalizeAuthEmail(credential.Email)
	if address == "" {
		return models.Session{}, validationError("a valid email address is required")
	}

	now := provider.now().UTC()
	if credential.VerifiedAt.IsZero() || now.Sub(credential.VerifiedAt) > verifiedCredentialMaxAge {
		return models.Session{}, authError(ErrInvalidOrExpiredCode)
	}

	account, err := provider.accounts.FindByNormalizedEmail(ctx, address)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Session{}, authError(ErrAccountNotFound)
		}
		return models.Session{}, newError(ErrNetwork, "failed to load account", err)
	}

	if !account.EmailConfirmed() {
		if err := provider.accounts.ConfirmEmail(ctx, account.ID, now); err != nil {
			return models.Session{}, newError(ErrNetwork, "failed to confirm email", err)
		}
		account.EmailConfirmedAt = &now
	}
	return provider.issueSession(ctx, account, models.AuthMethodEmailCode)
}

func (provider *LocalIdentityProvider) issueSession(ctx context.Context, account models.Account, method string) (models.Session, error) {
	now := provider.now().UTC()
	record := models.AuthSession{
		ID:        uuid.NewString(),
		AccountID: account.ID,
		Method:    method,
		CreatedAt: now,
		ExpiresAt: now.Add(provider.sessionTTL),
	}
	if err := provider.sessions.Create(ctx, &record); err != nil {
		return models.Session{}, newError(ErrNetwork, "failed to create session", err)
	}

	claims := sessionClaims{
		AccountID: account.ID,
		Method:    method,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        record.ID,
			Subject:   account.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(record.ExpiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(provider.secretKey)
	if err != nil {
		return models.Session{}, newError(ErrAuth, "failed to sign session", err)
	}

	return provider.buildSession(ctx, account, record, token)
}

func (provider *LocalIdentityProvider) Resolve(ctx context.Context, token string) (models.Session, error) {
	claims, err := provider.parseToken(token, true)
	if err != nil {
		return models.Session{}, err
	}

	record, err := provider.sessions.FindByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Session{}, authError(ErrSessionInvalid)
		}
		return models.Session{}, newError(ErrNetwork, "failed to load session", err)
	}
	if !record.Active(provider.now().UTC()) || record.AccountID != claims.AccountID {
		return models.Session{}, authError(ErrSessionInvalid)
	}

	account, err := provider.accounts.FindByID(ctx, record.AccountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Session{}, authError(ErrSessionInvalid)
		}
		return models.Session{}, newError(ErrNetwork, "failed to load account", err)
	}
	return provider.buildSession(ctx, account, record, token)
}

// Revoke accepts expired tokens so a stale cookie can still be signed out.
func (provider *LocalIdentityProvider) Revoke(ctx context.Context, token string) error {
	claims, err := provider.parseToken(token, false)
	if err != nil {
		return err
	}
	if err := provider.sessions.Revoke(ctx, claims.ID, provider.now().UTC()); err != nil {
		return newError(ErrNetwork, "failed to revoke session", err)
	}
	return nil
}

func (provider *LocalIdentityProvider) parseToken(raw string, validateClaims bool) (*sessionClaims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, authError(ErrSessionInvalid)
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(provider.now),
	}
	if !validateClaims {
		options = append(options, jwt.WithoutClaimsValidation())
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return provider.secretKey, nil
	}, options...)
	if err != nil || !token.Valid || claims.ID == "" || claims.AccountID == "" {
		return nil, authError(ErrSessionInvalid)
	}
	return claims, nil
}

func (provider *LocalIdentityProvider) buildSession(ctx context.Context, account models.Account, record models.AuthSession, token string) (models.Session, error) {
	session := models.Session{
		ID:        record.ID,
		Token:     token,
		User:      models.SessionUser{ID: account.ID, Email: account.Email},
		ExpiresAt: record.ExpiresAt,
	}

	profile, err := provider.profiles.FindByID(ctx, account.ID)
	switch {
	case err == nil:
		session.Profile = &profile
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return models.Session{}, newError(ErrNetwork, "failed to load profile", err)
	}
	return session, nil
}
