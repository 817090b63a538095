package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/terraincognita07/khare/internal/logging"
	"github.com/terraincognita07/khare/internal/models"
	"github.com/terraincognita07/khare/internal/services"
)

const (
	contextAuthManagerKey = "auth_manager"
	requestIDContextKey   = "requestid"
)

// RequestContext puts a request-scoped logger into the user context. It runs
// after fiber's requestid middleware.
func (handler *Handler) RequestContext(c *fiber.Ctx) error {
	requestID, _ := c.Locals(requestIDContextKey).(string)
	c.SetUserContext(logging.WithRequest(c.UserContext(), handler.logger, requestID))
	return c.Next()
}

// RequestID is fiber's requestid middleware configured for RequestContext.
func RequestID() fiber.Handler {
	return requestid.New(requestid.Config{ContextKey: requestIDContextKey})
}

// LoadSession builds the per-request AuthManager and resolves the persisted
// session before any route runs.
func (handler *Handler) LoadSession(c *fiber.Ctx) error {
	manager := handler.newAuthManager(c)
	manager.Init(c.UserContext())
	c.Locals(contextAuthManagerKey, manager)

	err := c.Next()
	manager.Dispose()
	return err
}

func (handler *Handler) newAuthManager(c *fiber.Ctx) *services.AuthManager {
	return services.NewAuthManager(
		handler.identity,
		handler.codes,
		handler.verification,
		cookieTokenStore{c: c, secure: handler.cookieSecure},
	)
}

func authManager(c *fiber.Ctx) *services.AuthManager {
	manager, _ := c.Locals(contextAuthManagerKey).(*services.AuthManager)
	return manager
}

// authState is the loading state until LoadSession has run.
func authState(c *fiber.Ctx) models.AuthState {
	manager := authManager(c)
	if manager == nil {
		return models.AuthState{Loading: true}
	}
	return manager.State()
}

func currentSession(c *fiber.Ctx) *models.Session {
	return authState(c).Session
}

func currentViewer(c *fiber.Ctx) services.Viewer {
	return services.ViewerFromSession(currentSession(c))
}

// Protected applies the route guard. Pages are redirected; API routes get
// 401 for a missing session and 403 for a role outside roles.
func (handler *Handler) Protected(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		decision := handler.guard.Evaluate(authState(c), roles)
		switch decision.Outcome {
		case services.GuardRender:
			return c.Next()
		case services.GuardRedirect:
			if !isAPIPath(c.Path()) {
				return c.Redirect(decision.RedirectTo, fiber.StatusSeeOther)
			}
			if decision.RedirectTo == handler.guard.SignInPath {
				return apiError(c, fiber.StatusUnauthorized, "unauthorized")
			}
			return apiError(c, fiber.StatusForbidden, "forbidden")
		default:
			return apiError(c, fiber.StatusServiceUnavailable, "session is still loading")
		}
	}
}
