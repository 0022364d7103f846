package guard

import (
	"testing"

	"legalai-be/pkg/role"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecide(t *testing.T) {
	judgeOnly := Route{Path: "/transcript", RequiresAuth: true, Roles: []role.Role{role.Judge}}
	anyAuth := Route{Path: "/summarisation", RequiresAuth: true}
	public := Route{Path: "/"}

	tests := []struct {
		name    string
		route   Route
		session Session
		want    Decision
	}{
		{"no token, role required", judgeOnly, Session{RoleClaim: "judge"}, RedirectLogin},
		{"no token, no role required", anyAuth, Session{}, RedirectLogin},
		{"token, claim mismatch", judgeOnly, Session{Token: "t", RoleClaim: "lawyer"}, RedirectForbidden},
		{"token, claim missing", judgeOnly, Session{Token: "t"}, RedirectForbidden},
		{"token, claim matches case-insensitively", judgeOnly, Session{Token: "t", RoleClaim: "JUDGE"}, Allow},
		{"token, no role required", anyAuth, Session{Token: "t", RoleClaim: "user"}, Allow},
		{"public route, anonymous", public, Session{}, Allow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.route, tt.session))
		})
	}
}

func TestDecideNoTokenAlwaysLogin(t *testing.T) {
	for _, roles := range [][]role.Role{nil, {role.User}, {role.Lawyer, role.Judge}} {
		for _, claim := range []string{"", "user", "lawyer", "judge"} {
			r := Route{Path: "/x", RequiresAuth: true, Roles: roles}
			assert.Equal(t, RedirectLogin, Decide(r, Session{RoleClaim: claim}))
		}
	}
}

func TestDecisionTarget(t *testing.T) {
	assert.Equal(t, "", Allow.Target())
	assert.Equal(t, "/login", RedirectLogin.Target())
	assert.Equal(t, "/forbidden", RedirectForbidden.Target())
	assert.Equal(t, "redirect_forbidden", RedirectForbidden.String())
}

func TestTable(t *testing.T) {
	table, err := NewTable(
		Route{Path: "/"},
		Route{Method: "get", Path: "/api/draft", RequiresAuth: true, Roles: []role.Role{role.Lawyer}},
	)
	require.NoError(t, err)

	r, ok := table.Lookup("GET", "/api/draft")
	require.True(t, ok)
	assert.Equal(t, "GET /api/draft", r.Key())

	d, err := table.Authorize("GET", "/api/draft", Session{Token: "t", RoleClaim: "lawyer"})
	require.NoError(t, err)
	assert.Equal(t, Allow, d)

	d, err = table.Authorize("POST", "/api/draft", Session{Token: "t", RoleClaim: "lawyer"})
	assert.ErrorIs(t, err, ErrUndeclaredRoute)
	assert.Equal(t, RedirectForbidden, d)
}

func TestTableLookupIgnoresTrailingSlash(t *testing.T) {
	table, err := NewTable(
		Route{Path: "/"},
		Route{Path: "/draft", RequiresAuth: true, Roles: []role.Role{role.User, role.Lawyer}},
	)
	require.NoError(t, err)

	r, ok := table.Lookup("", "/draft/")
	require.True(t, ok)
	assert.Equal(t, "/draft", r.Path)

	_, ok = table.Lookup("", "//")
	assert.True(t, ok)

	d, err := table.Authorize("", "/draft//", Session{Token: "t", RoleClaim: "Judge"})
	require.NoError(t, err)
	assert.Equal(t, RedirectForbidden, d)

	_, ok = table.Lookup("", "/drafts")
	assert.False(t, ok)
}

func TestTableRejectsBadDeclarations(t *testing.T) {
	_, err := NewTable(Route{Path: "/a"}, Route{Path: "/a"})
	assert.ErrorIs(t, err, ErrDuplicateRoute)

	_, err = NewTable(Route{Path: "/a", RequiresAuth: true, Roles: []role.Role{}})
	assert.ErrorIs(t, err, ErrEmptyRoles)

	assert.Panics(t, func() { MustTable(Route{Path: "/a"}, Route{Path: "/a"}) })
}
