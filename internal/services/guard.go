package services

import "github.com/terraincognita07/khare/internal/models"

const (
	SignInPath       = "/auth"
	UnauthorizedPath = "/unauthorized"
)

type GuardOutcome string

const (
	GuardLoading  GuardOutcome = "loading"
	GuardRedirect GuardOutcome = "redirect"
	GuardRender   GuardOutcome = "render"
)

type GuardDecision struct {
	Outcome    GuardOutcome `json:"outcome"`
	RedirectTo string       `json:"redirect_to,omitempty"`
}

// RouteGuard decides whether a protected view renders for an AuthState.
type RouteGuard struct {
	SignInPath       string
	UnauthorizedPath string
}

func NewRouteGuard() RouteGuard {
	return RouteGuard{SignInPath: SignInPath, UnauthorizedPath: UnauthorizedPath}
}

// Evaluate never redirects while loading, and an empty allow-list admits
// any authenticated session.
func (guard RouteGuard) Evaluate(state models.AuthState, allowed []models.Role) GuardDecision {
	if state.Loading {
		return GuardDecision{Outcome: GuardLoading}
	}
	if state.Session == nil {
		return GuardDecision{Outcome: GuardRedirect, RedirectTo: guard.SignInPath}
	}
	if len(allowed) > 0 && !models.ContainsRole(allowed, state.Session.Role()) {
		return GuardDecision{Outcome: GuardRedirect, RedirectTo: guard.UnauthorizedPath}
	}
	return GuardDecision{Outcome: GuardRender}
}

// Watch reports the decision for the current state and again on every store
// change until the returned stop func is called.
func (guard RouteGuard) Watch(store *SessionStore, allowed []models.Role, fn func(GuardDecision)) func() {
	stop := store.Subscribe(func(state models.AuthState) {
		fn(guard.Evaluate(state, allowed))
	})
	fn(guard.Evaluate(store.State(), allowed))
	return stop
}
