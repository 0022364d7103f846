// Package guard decides whether a navigation or API target is permitted for a session.
package guard

import (
	"errors"
	"fmt"
	"strings"

	"legalai-be/pkg/role"
)

type Decision int

const (
	Allow Decision = iota
	RedirectLogin
	RedirectForbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect_login"
	case RedirectForbidden:
		return "redirect_forbidden"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

const (
	LoginPath     = "/login"
	ForbiddenPath = "/forbidden"
)

// Target is the path a client should be sent to, empty for Allow.
func (d Decision) Target() string {
	switch d {
	case RedirectLogin:
		return LoginPath
	case RedirectForbidden:
		return ForbiddenPath
	default:
		return ""
	}
}

// Session is the credential presented by a client: an opaque token plus a role claim.
// A non-empty token means authenticated.
type Session struct {
	Subject   string
	Token     string
	RoleClaim string
}

func (s Session) Authenticated() bool {
	return s.Token != ""
}

// Route is one entry of the declarative access table. Method is empty for page routes.
// Roles empty means any authenticated visitor.
type Route struct {
	Method       string
	Path         string
	RequiresAuth bool
	Roles        []role.Role
}

func (r Route) Key() string {
	return routeKey(r.Method, r.Path)
}

func routeKey(method, path string) string {
	if method == "" {
		return path
	}
	return strings.ToUpper(method) + " " + path
}

// Decide is a pure function of the route and the session.
// Order: public route, missing token, role mismatch, allow.
func Decide(route Route, s Session) Decision {
	if !route.RequiresAuth {
		return Allow
	}
	if !s.Authenticated() {
		return RedirectLogin
	}
	if len(route.Roles) == 0 {
		return Allow
	}
	for _, r := range route.Roles {
		if r.Matches(s.RoleClaim) {
			return Allow
		}
	}
	return RedirectForbidden
}

var (
	ErrDuplicateRoute  = errors.New("duplicate route")
	ErrUndeclaredRoute = errors.New("route not declared in access table")
	ErrEmptyRoles      = errors.New("role list declared but empty")
)

// Table is the single source of truth for who may reach what.
type Table struct {
	routes []Route
	index  map[string]int
}

func NewTable(routes ...Route) (*Table, error) {
	t := &Table{index: make(map[string]int, len(routes))}
	for _, r := range routes {
		if _, exists := t.index[r.Key()]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRoute, r.Key())
		}
		if r.Roles != nil && len(r.Roles) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptyRoles, r.Key())
		}
		t.index[r.Key()] = len(t.routes)
		t.routes = append(t.routes, r)
	}
	return t, nil
}

// MustTable panics on an inconsistent declaration; tables are fixed at compile time.
func MustTable(routes ...Route) *Table {
	t, err := NewTable(routes...)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup matches the declared path exactly, ignoring one or more trailing
// slashes. Patterns such as ":id" match only themselves.
func (t *Table) Lookup(method, path string) (Route, bool) {
	for len(path) > 1 && strings.HasSuffix(path, "/") {
		path = path[:len(path)-1]
	}
	i, ok := t.index[routeKey(method, path)]
	if !ok {
		return Route{}, false
	}
	return t.routes[i], true
}

// Authorize looks the route up and decides. Undeclared targets are an error, never an Allow.
func (t *Table) Authorize(method, path string, s Session) (Decision, error) {
	r, ok := t.Lookup(method, path)
	if !ok {
		return RedirectForbidden, fmt.Errorf("%w: %s", ErrUndeclaredRoute, routeKey(method, path))
	}
	return Decide(r, s), nil
}

// Routes returns the declarations in order.
func (t *Table) Routes() []Route {
	out := make([]Route, len(t.routes))
	copy(out, t.routes)
	return out
}
