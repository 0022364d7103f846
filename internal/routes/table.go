// Package routes declares every page and API route together with who may reach it.
// The HTTP layer refuses to register anything missing from here.
package routes

import (
	"fmt"
	"sort"
	"strings"

	"legalai-be/pkg/guard"
	"legalai-be/pkg/navigation"
	"legalai-be/pkg/role"
)

var (
	anyRole   []role.Role
	drafters  = []role.Role{role.User, role.Lawyer}
	userOnly  = []role.Role{role.User}
	lawyer    = []role.Role{role.Lawyer}
	judgeOnly = []role.Role{role.Judge}
)

func page(path string, roles []role.Role) guard.Route {
	return guard.Route{Path: path, RequiresAuth: true, Roles: roles}
}

func public(path string) guard.Route {
	return guard.Route{Path: path}
}

func api(method, path string, roles []role.Role) guard.Route {
	return guard.Route{Method: method, Path: path, RequiresAuth: true, Roles: roles}
}

func publicAPI(method, path string) guard.Route {
	return guard.Route{Method: method, Path: path}
}

// PageRoutes are the SPA paths. Role lists mirror the nav catalog so a hidden item
// cannot be reached by typing its path.
func PageRoutes() []guard.Route {
	return []guard.Route{
		public("/"),
		public("/login"),
		public("/signup"),
		public(guard.ForbiddenPath),
		page("/user", userOnly),
		page("/lawyer", lawyer),
		page("/judge", judgeOnly),
		page("/summarisation", []role.Role{role.User, role.Lawyer, role.Judge}),
		page("/transcript", judgeOnly),
		page("/query", drafters),
		page("/draft", drafters),
		page("/advocate-diary", lawyer),
		page("/document-sharing", []role.Role{role.User, role.Lawyer, role.Judge}),
	}
}

// APIRoutes uses Fiber path patterns, prefixed with /api.
func APIRoutes() []guard.Route {
	return []guard.Route{
		api("GET", "/api/role", anyRole),
		api("PUT", "/api/role", anyRole),

		api("GET", "/api/navigation/menu", anyRole),
		publicAPI("GET", "/api/navigation/resolve"),

		api("GET", "/api/draft", drafters),
		api("POST", "/api/draft", drafters),
		api("DELETE", "/api/draft", drafters),
		api("GET", "/api/draft/export/pdf", drafters),
		api("GET", "/api/draft/export/docx", drafters),

		api("GET", "/api/chat", anyRole),
		api("POST", "/api/chat", anyRole),
		api("DELETE", "/api/chat", anyRole),

		api("POST", "/api/summary", anyRole),
		api("GET", "/api/summary/:id", anyRole),
		api("GET", "/api/summary/:id/file", anyRole),
		api("PUT", "/api/summary/:id/file", anyRole),
		api("POST", "/api/summary/:id/retry", anyRole),
		api("DELETE", "/api/summary/:id", anyRole),

		api("POST", "/api/share", anyRole),

		api("GET", "/api/stream", anyRole),
	}
}

// Table builds the combined access table.
func Table() *guard.Table {
	all := append(PageRoutes(), APIRoutes()...)
	return guard.MustTable(all...)
}

// Finding is one coverage gap between the nav catalog and the access table.
type Finding struct {
	Path    string
	Problem string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s", f.Path, f.Problem)
}

// Audit checks that every catalog item is a guarded page whose roles equal the item's roles.
func Audit(table *guard.Table, items []navigation.NavItem) []Finding {
	var findings []Finding
	for _, item := range items {
		r, ok := table.Lookup("", item.Path)
		if !ok {
			findings = append(findings, Finding{Path: item.Path, Problem: "no page route declared"})
			continue
		}
		if !r.RequiresAuth {
			findings = append(findings, Finding{Path: item.Path, Problem: "page route is public"})
			continue
		}
		if !sameRoles(r.Roles, item.Roles) {
			findings = append(findings, Finding{
				Path:    item.Path,
				Problem: fmt.Sprintf("route roles [%s] differ from menu roles [%s]", joinRoles(r.Roles), joinRoles(item.Roles)),
			})
		}
	}
	return findings
}

func sameRoles(a, b []role.Role) bool {
	return joinRoles(a) == joinRoles(b)
}

func joinRoles(rs []role.Role) string {
	names := make([]string, len(rs))
	for i, r := range rs {
		names[i] = r.String()
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}
