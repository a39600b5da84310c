package session

import (
	"bharatid/internal/portal/token"
	"bharatid/pkg/domain"
)

const (
	PathLogin          = "/login"
	PathDashboard      = "/dashboard"
	PathAdminDashboard = "/admin-dashboard"
)

// Outcome is the result of a guard evaluation.
type Outcome int

const (
	Allow Outcome = iota
	RedirectLogin
	RedirectForbidden
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect_login"
	case RedirectForbidden:
		return "redirect_forbidden"
	default:
		return "unknown"
	}
}

// Target is the path to navigate to. An authenticated caller lacking the
// role lands on the dashboard, not on the login page.
func (o Outcome) Target() string {
	switch o {
	case RedirectLogin:
		return PathLogin
	case RedirectForbidden:
		return PathDashboard
	default:
		return ""
	}
}

// Route marks a path as protected, optionally by role.
type Route struct {
	RequiredRole domain.Role
}

var defaultRoutes = map[string]Route{
	PathDashboard:      {},
	PathAdminDashboard: {RequiredRole: domain.RoleAdmin},
}

// Guard evaluates protected navigation against a session.
type Guard struct {
	session *Session
	routes  map[string]Route
}

func NewGuard(s *Session) *Guard {
	return &Guard{session: s, routes: defaultRoutes}
}

// Authorize decides whether a view requiring requiredRole may render.
// RoleNone requires authentication only. An undecodable or expired
// credential is cleared so later evaluations stop at the first check.
func (g *Guard) Authorize(requiredRole domain.Role) Outcome {
	raw := g.session.Token()
	if raw == "" {
		return RedirectLogin
	}

	claims, err := token.Decode(raw)
	if err != nil {
		g.discard("undecodable credential", err)
		return RedirectLogin
	}
	if claims.Expired(g.session.clock()) {
		g.discard("expired credential", nil)
		return RedirectLogin
	}

	if requiredRole != domain.RoleNone && claims.Role != requiredRole {
		return RedirectForbidden
	}
	return Allow
}

// Evaluate resolves path against the route table. Unlisted paths are public.
func (g *Guard) Evaluate(path string) Outcome {
	route, ok := g.routes[path]
	if !ok {
		return Allow
	}
	return g.Authorize(route.RequiredRole)
}

func (g *Guard) discard(reason string, cause error) {
	attrs := []any{"reason", reason}
	if cause != nil {
		attrs = append(attrs, "error", cause)
	}
	if err := g.session.Clear(); err != nil {
		attrs = append(attrs, "clear_error", err)
	}
	g.session.logger.Info("session credential discarded", attrs...)
}

// LandingPath is where a freshly logged in user is sent.
func LandingPath(role domain.Role) string {
	if role == domain.RoleAdmin {
		return PathAdminDashboard
	}
	return PathDashboard
}
