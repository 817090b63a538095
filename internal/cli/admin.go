package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/terraincognita07/khare/internal/db"
	"github.com/terraincognita07/khare/internal/models"
	"github.com/terraincognita07/khare/internal/security"
	"github.com/terraincognita07/khare/internal/services"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const temporaryPasswordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"

// PromptPassword reads a password from a terminal without echo. An empty
// answer means the caller should generate one.
func PromptPassword(stdin *os.File, out io.Writer) (string, error) {
	fmt.Fprint(out, "Password (leave empty to generate one): ")
	raw, err := readPasswordNoEcho(stdin)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

// RunCreateAdminCommand registers email as an admin. With an empty password
// a temporary one is generated and printed once.
func RunCreateAdminCommand(ctx context.Context, database *gorm.DB, email string, fullName string, password string, out io.Writer) error {
	address := services.NormalizeAuthEmail(email)
	if address == "" {
		return errors.New("a valid email address is required")
	}
	if strings.TrimSpace(fullName) == "" {
		return errors.New("full name is required")
	}

	generated := false
	if password == "" {
		temporary, err := generateTemporaryPassword(16)
		if err != nil {
			return fmt.Errorf("generate temporary password: %w", err)
		}
		password = temporary
		generated = true
	}

	repos := db.NewRepositories(database)
	provider := services.NewLocalIdentityProvider(repos.Accounts, repos.Profiles, repos.Sessions, nil, 0)
	account, err := provider.SignUp(ctx, services.SignUpRequest{
		Email:    address,
		Password: password,
		FullName: fullName,
		Role:     models.RoleAdmin,
	})
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			return fmt.Errorf("%s is already registered; use set-role to promote it", address)
		}
		return fmt.Errorf("create admin: %w", err)
	}

	fmt.Fprintf(out, "Admin %s created (id %s)\n", account.Email, account.ID)
	if generated {
		fmt.Fprintf(out, "Temporary password: %s\n", password)
	}
	return nil
}

func RunSetRoleCommand(ctx context.Context, database *gorm.DB, email string, role string, out io.Writer) error {
	address := services.NormalizeAuthEmail(email)
	if address == "" {
		return errors.New("a valid email address is required")
	}

	repos := db.NewRepositories(database)
	account, err := repos.Accounts.FindByNormalizedEmail(ctx, address)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("account %s not found", address)
		}
		return fmt.Errorf("load account: %w", err)
	}

	profile, err := services.NewProfileService(repos.Profiles).AssignRole(ctx, account.ID, role)
	if err != nil {
		return fmt.Errorf("set role: %w", err)
	}

	fmt.Fprintf(out, "%s is now %s\n", address, profile.Role)
	return nil
}

// RunResetPasswordCommand replaces the password of email and revokes every
// open session of that account.
func RunResetPasswordCommand(ctx context.Context, database *gorm.DB, email string, password string, out io.Writer) error {
	address := services.NormalizeAuthEmail(email)
	if address == "" {
		return errors.New("a valid email address is required")
	}

	repos := db.NewRepositories(database)
	account, err := repos.Accounts.FindByNormalizedEmail(ctx, address)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("account %s not found", address)
		}
		return fmt.Errorf("load account: %w", err)
	}

	generated := false
	if password == "" {
		if password, err = generateTemporaryPassword(16); err != nil {
			return fmt.Errorf("generate temporary password: %w", err)
		}
		generated = true
	}
	if err := services.ValidatePasswordStrength(password); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := repos.Accounts.UpdatePassword(ctx, account.ID, string(hash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	revoked, err := repos.Sessions.RevokeAllForAccount(ctx, account.ID, time.Now())
	if err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}

	fmt.Fprintf(out, "Password for %s reset, %d session(s) revoked\n", address, revoked)
	if generated {
		fmt.Fprintf(out, "Temporary password: %s\n", password)
	}
	return nil
}

// generateTemporaryPassword retries until the result passes the password policy.
func generateTemporaryPassword(length int) (string, error) {
	if length < 12 {
		length = 12
	}
	for {
		password, err := security.RandomString(length, temporaryPasswordAlphabet)
		if err != nil {
			return "", err
		}
		if services.ValidatePasswordStrength(password) == nil {
			return password, nil
		}
	}
}
