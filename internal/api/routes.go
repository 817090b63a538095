package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/khare/internal/models"
)

// RegisterRoutes installs the request-scoped middleware and every route.
func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)
	app.Get("/favicon.ico", sendNoContent)

	app.Use(RequestID(), handler.RequestContext, handler.LoadSession)
	registerPageRoutes(app, handler)
	registerAPIRoutes(app, handler)
	registerFunctionRoutes(app, handler)
}

func registerPageRoutes(app *fiber.App, handler *Handler) {
	app.Get("/auth", handler.AuthPage)
	app.Get("/unauthorized", handler.UnauthorizedPage)

	app.Get("/dashboard", handler.Protected(), handler.DashboardPage)
	app.Get("/projects", handler.Protected(), handler.ProjectsPage)
	app.Get("/users", handler.Protected(models.RoleAdmin), handler.UsersPage)
}

func registerAPIRoutes(app *fiber.App, handler *Handler) {
	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/signup", handler.SignUp)
	auth.Post("/signin", handler.SignIn)
	auth.Post("/otp/send", handler.SendCode)
	auth.Post("/otp/verify", handler.VerifyCode)
	auth.Post("/otp/signin", handler.SignInWithCode)
	auth.Post("/signout", handler.SignOut)
	auth.Get("/session", handler.Session)

	api.Get("/navigation", handler.Protected(), handler.Navigation)

	projects := api.Group("/projects", handler.Protected())
	projects.Get("", handler.ListProjects)
	projects.Post("", handler.CreateProject)
	projects.Get("/feed", handler.ProjectFeed)
	projects.Get("/:id", handler.GetProject)
	projects.Patch("/:id", handler.UpdateProject)
	projects.Delete("/:id", handler.DeleteProject)
	projects.Put("/:id/contractor", handler.Protected(models.RoleAdmin), handler.AssignContractor)
	projects.Get("/:id/updates", handler.ListProjectUpdates)
	projects.Post("/:id/updates", handler.CreateProjectUpdate)
	projects.Get("/:id/images", handler.ListProjectImages)
	projects.Post("/:id/images", handler.CreateProjectImage)

	profile := api.Group("/profile", handler.Protected())
	profile.Get("", handler.GetProfile)
	profile.Patch("", handler.UpdateProfile)

	users := api.Group("/users", handler.Protected(models.RoleAdmin))
	users.Get("", handler.ListUsers)
	users.Put("/:id/role", handler.SetUserRole)
}

func registerFunctionRoutes(app *fiber.App, handler *Handler) {
	functions := app.Group("/functions/v1")
	functions.Post("/send-verification-email", handler.SendVerificationEmail)
	functions.Post("/send-interest-notification", handler.Protected(), handler.SendInterestNotification)
}

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
