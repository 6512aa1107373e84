package tui

import (
	"strings"

	"github.com/Makepad-fr/itemdesk/internal/session"
)

const (
	RouteRoot      = "/"
	RouteLogin     = "/login"
	RouteRegister  = "/register"
	RouteDashboard = "/dashboard"
)

// Resolve maps a requested path to the route that will actually be shown:
// "/" goes to login, the dashboard needs a session, unknown paths are kept
// as-is and end up on the not-found page.
func Resolve(path string, g session.Guard) string {
	path = normalize(path)
	switch path {
	case RouteRoot:
		return RouteLogin
	case RouteDashboard:
		if !g.Allowed() {
			return RouteLogin
		}
	}
	return path
}

func normalize(path string) string {
	path = strings.TrimSpace(path)
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = RouteRoot
		}
	}
	return strings.ToLower(path)
}

func guarded(route string) bool { return route == RouteDashboard }
