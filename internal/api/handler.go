package api

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/terraincognita07/khare/internal/logging"
	"github.com/terraincognita07/khare/internal/services"
	"github.com/terraincognita07/khare/internal/validation"
)

// Dependencies are the services the HTTP layer drives. Every field is required.
type Dependencies struct {
	Identity     services.IdentityProvider
	Codes        *services.CodeIssuer
	Verification *services.VerificationSender
	Projects     *services.ProjectService
	Profiles     *services.ProfileService
	Interest     *services.InterestNotifier
	Feed         *services.ProjectFeed
}

type Options struct {
	CookieSecure bool
	AttemptLimit int
	// EmailAttemptLimit caps attempts against one email from all addresses.
	// Zero means three times AttemptLimit.
	EmailAttemptLimit int
	AttemptWindow     time.Duration
	// FeedHeartbeat is how often the project feed writes a keep-alive comment.
	FeedHeartbeat time.Duration
	Logger        *slog.Logger
}

type Handler struct {
	identity     services.IdentityProvider
	codes        *services.CodeIssuer
	verification *services.VerificationSender
	projects     *services.ProjectService
	profiles     *services.ProfileService
	interest     *services.InterestNotifier
	feed         *services.ProjectFeed

	guard         services.RouteGuard
	validator     *validation.Validator
	otpBudget     *otpBudget
	cookieSecure  bool
	feedHeartbeat time.Duration
	logger        *slog.Logger

	closing   chan struct{}
	closeOnce sync.Once
}

func NewHandler(deps Dependencies, opts Options) (*Handler, error) {
	switch {
	case deps.Identity == nil:
		return nil, errors.New("identity provider is required")
	case deps.Codes == nil || deps.Verification == nil:
		return nil, errors.New("verification services are required")
	case deps.Projects == nil || deps.Profiles == nil || deps.Feed == nil:
		return nil, errors.New("project and profile services are required")
	case deps.Interest == nil:
		return nil, errors.New("interest notifier is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	heartbeat := opts.FeedHeartbeat
	if heartbeat <= 0 {
		heartbeat = 25 * time.Second
	}

	budget := newOTPBudget(opts.AttemptLimit, opts.EmailAttemptLimit, opts.AttemptWindow)

	handler := &Handler{
		identity:      deps.Identity,
		codes:         deps.Codes,
		verification:  deps.Verification,
		projects:      deps.Projects,
		profiles:      deps.Profiles,
		interest:      deps.Interest,
		feed:          deps.Feed,
		guard:         services.NewRouteGuard(),
		validator:     validation.New(),
		otpBudget:     budget,
		cookieSecure:  opts.CookieSecure,
		feedHeartbeat: heartbeat,
		logger:        logger,
		closing:       make(chan struct{}),
	}
	go budget.sweepUntil(handler.closing, budget.perClient.window)
	return handler, nil
}
