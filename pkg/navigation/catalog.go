// Package navigation derives the visible menu from the fixed route catalog.
package navigation

import (
	"legalai-be/pkg/role"
)

// NavItem is immutable once declared in the catalog.
type NavItem struct {
	Label string      `json:"label"`
	ID    string      `json:"id"`
	Path  string      `json:"path"`
	Roles []role.Role `json:"allowed_roles"`
}

func (n NavItem) Allows(r role.Role) bool {
	for _, allowed := range n.Roles {
		if allowed == r {
			return true
		}
	}
	return false
}

var catalog = []NavItem{
	{Label: "User Dashboard", ID: "user-dashboard", Path: "/user", Roles: []role.Role{role.User}},
	{Label: "Lawyer Dashboard", ID: "lawyer-dashboard", Path: "/lawyer", Roles: []role.Role{role.Lawyer}},
	{Label: "Judge Dashboard", ID: "judge-dashboard", Path: "/judge", Roles: []role.Role{role.Judge}},
	{Label: "Summarisation", ID: "summarisation", Path: "/summarisation", Roles: []role.Role{role.User, role.Lawyer, role.Judge}},
	{Label: "Transcript", ID: "transcript", Path: "/transcript", Roles: []role.Role{role.Judge}},
	{Label: "Document Query", ID: "query", Path: "/query", Roles: []role.Role{role.User, role.Lawyer}},
	{Label: "Draft", ID: "draft", Path: "/draft", Roles: []role.Role{role.User, role.Lawyer}},
	{Label: "Advocate Diary", ID: "advocate-diary", Path: "/advocate-diary", Roles: []role.Role{role.Lawyer}},
	{Label: "Document Sharing", ID: "document-sharing", Path: "/document-sharing", Roles: []role.Role{role.User, role.Lawyer, role.Judge}},
}

// Catalog returns a copy of every registered item in declaration order.
func Catalog() []NavItem {
	out := make([]NavItem, len(catalog))
	for i, item := range catalog {
		item.Roles = append([]role.Role(nil), item.Roles...)
		out[i] = item
	}
	return out
}

// VisibleItems keeps catalog order and drops every item r may not see.
func VisibleItems(r role.Role) []NavItem {
	out := make([]NavItem, 0, len(catalog))
	for _, item := range Catalog() {
		if item.Allows(r) {
			out = append(out, item)
		}
	}
	return out
}
