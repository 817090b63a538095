package services

import (
	"strings"

	"github.com/terraincognita07/khare/internal/models"
)

type NavItem struct {
	Label string        `json:"label"`
	Href  string        `json:"href"`
	Icon  string        `json:"icon"`
	Roles []models.Role `json:"-"`
}

func DefaultNavigation() []NavItem {
	everyone := models.AllRoles()
	return []NavItem{
		{Label: "Dashboard", Href: "/dashboard", Icon: "layout-dashboard", Roles: everyone},
		{Label: "Projects", Href: "/projects", Icon: "building", Roles: everyone},
		{Label: "Users", Href: "/users", Icon: "users", Roles: []models.Role{models.RoleAdmin}},
		{Label: "Settings", Href: "/settings", Icon: "settings", Roles: everyone},
	}
}

// FilterNavigation keeps the items whose role list contains role, in order.
func FilterNavigation(items []NavItem, role models.Role) []NavItem {
	filtered := make([]NavItem, 0, len(items))
	for _, item := range items {
		if models.ContainsRole(item.Roles, role) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

func IsActiveRoute(path string, href string) bool {
	return path == href || strings.HasPrefix(path, href+"/")
}
