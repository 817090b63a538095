package api

import (
	"time"

	"github.com/terraincognita07/khare/internal/db"
	"github.com/terraincognita07/khare/internal/email"
	"github.com/terraincognita07/khare/internal/services"
	"gorm.io/gorm"
)

type ServiceConfig struct {
	SecretKey  string
	SessionTTL time.Duration
	CodeTTL    time.Duration
	EchoCodes  bool
	PublicURL  string
	FeedBuffer int
}

// NewDependencies wires the repositories over database into the services the
// handler drives.
func NewDependencies(database *gorm.DB, mailer email.Sender, cfg ServiceConfig) Dependencies {
	repos := db.NewRepositories(database)
	issuer := services.NewCodeIssuer(repos.VerificationCodes, cfg.CodeTTL)
	feed := services.NewProjectFeed(cfg.FeedBuffer)

	return Dependencies{
		Identity:     services.NewLocalIdentityProvider(repos.Accounts, repos.Profiles, repos.Sessions, []byte(cfg.SecretKey), cfg.SessionTTL),
		Codes:        issuer,
		Verification: services.NewVerificationSender(issuer, mailer, cfg.EchoCodes),
		Projects:     services.NewProjectService(repos.Projects, repos.Profiles, feed),
		Profiles:     services.NewProfileService(repos.Profiles),
		Interest:     services.NewInterestNotifier(mailer, cfg.PublicURL),
		Feed:         feed,
	}
}
