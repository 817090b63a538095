package services

import (
	"testing"

	"github.com/terraincognita07/khare/internal/models"
)

func navLabels(items []NavItem) []string {
	labels := make([]string, 0, len(items))
	for _, item := range items {
		labels = append(labels, item.Label)
	}
	return labels
}

func TestFilterNavigation(t *testing.T) {
	tests := []struct {
		role models.Role
		want []string
	}{
		{role: models.RoleAdmin, want: []string{"Dashboard", "Projects", "Users", "Settings"}},
		{role: models.RoleContractor, want: []string{"Dashboard", "Projects", "Settings"}},
		{role: models.RoleClient, want: []string{"Dashboard", "Projects", "Settings"}},
		{role: models.Role(""), want: []string{}},
	}

	for _, test := range tests {
		got := navLabels(FilterNavigation(DefaultNavigation(), test.role))
		if len(got) != len(test.want) {
			t.Fatalf("FilterNavigation(%q) = %v, want %v", test.role, got, test.want)
		}
		for index := range got {
			if got[index] != test.want[index] {
				t.Fatalf("FilterNavigation(%q) = %v, want %v", test.role, got, test.want)
			}
		}
	}
}

func TestIsActiveRoute(t *testing.T) {
	tests := []struct {
		path string
		href string
		want bool
	}{
		{path: "/projects", href: "/projects", want: true},
		{path: "/projects/42", href: "/projects", want: true},
		{path: "/projects-archive", href: "/projects", want: false},
		{path: "/dashboard", href: "/projects", want: false},
	}

	for _, test := range tests {
		if got := IsActiveRoute(test.path, test.href); got != test.want {
			t.Fatalf("IsActiveRoute(%q, %q) = %v, want %v", test.path, test.href, got, test.want)
		}
	}
}
