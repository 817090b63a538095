package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/khare/internal/models"
	"github.com/terraincognita07/khare/internal/services"
)

type navLink struct {
	services.NavItem
	Active bool `json:"active"`
}

type accountSummary struct {
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	Role      models.Role `json:"role"`
	RoleLabel string      `json:"role_label"`
}

// pageDescriptor is what a dashboard page renders from.
type pageDescriptor struct {
	Page       string          `json:"page"`
	Title      string          `json:"title"`
	Message    string          `json:"message,omitempty"`
	Account    *accountSummary `json:"account,omitempty"`
	Navigation []navLink       `json:"navigation,omitempty"`
	Data       any             `json:"data,omitempty"`
}

func navigationFor(role models.Role, path string) []navLink {
	items := services.FilterNavigation(services.DefaultNavigation(), role)
	links := make([]navLink, 0, len(items))
	for _, item := range items {
		links = append(links, navLink{NavItem: item, Active: services.IsActiveRoute(path, item.Href)})
	}
	return links
}

func summarizeAccount(session *models.Session) *accountSummary {
	if session == nil {
		return nil
	}
	summary := &accountSummary{Email: session.User.Email, Name: "User", Role: session.Role(), RoleLabel: session.Role().Label()}
	if session.Profile != nil {
		summary.Name = session.Profile.DisplayName()
	}
	return summary
}

func (handler *Handler) dashboardPage(c *fiber.Ctx, page string, title string, data any) error {
	session := currentSession(c)
	return c.JSON(pageDescriptor{
		Page:       page,
		Title:      title,
		Account:    summarizeAccount(session),
		Navigation: navigationFor(session.Role(), c.Path()),
		Data:       data,
	})
}

// AuthPage sends signed-in visitors on to the dashboard.
func (handler *Handler) AuthPage(c *fiber.Ctx) error {
	if authState(c).Authenticated() {
		return c.Redirect("/dashboard", fiber.StatusSeeOther)
	}
	return c.JSON(pageDescriptor{
		Page:  "auth",
		Title: "Sign in",
		Data:  fiber.Map{"methods": []string{models.AuthMethodPassword, models.AuthMethodEmailCode}},
	})
}

func (handler *Handler) UnauthorizedPage(c *fiber.Ctx) error {
	session := currentSession(c)
	role := "unknown"
	if session.Role().Valid() {
		role = session.Role().String()
	}
	return c.Status(fiber.StatusForbidden).JSON(pageDescriptor{
		Page:    "unauthorized",
		Title:   "Access denied",
		Message: "You don't have permission to access this page.",
		Account: summarizeAccount(session),
		Data:    fiber.Map{"role": role},
	})
}

func (handler *Handler) DashboardPage(c *fiber.Ctx) error {
	projects, err := handler.projects.ListForViewer(c.UserContext(), currentViewer(c))
	if err != nil {
		return respondError(c, err)
	}
	return handler.dashboardPage(c, "dashboard", "Dashboard", fiber.Map{"projects": projects})
}

func (handler *Handler) ProjectsPage(c *fiber.Ctx) error {
	projects, err := handler.projects.ListForViewer(c.UserContext(), currentViewer(c))
	if err != nil {
		return respondError(c, err)
	}
	return handler.dashboardPage(c, "projects", "Projects", fiber.Map{"projects": projects})
}

func (handler *Handler) UsersPage(c *fiber.Ctx) error {
	profiles, err := handler.profiles.List(c.UserContext(), currentViewer(c))
	if err != nil {
		return respondError(c, err)
	}
	return handler.dashboardPage(c, "users", "User Management", fiber.Map{"users": profiles})
}

// Navigation lists the caller's menu, marking items active against ?path=.
func (handler *Handler) Navigation(c *fiber.Ctx) error {
	path := c.Query("path", "/dashboard")
	return c.JSON(fiber.Map{"items": navigationFor(currentSession(c).Role(), path)})
}
