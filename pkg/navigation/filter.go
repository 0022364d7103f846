package navigation

import (
	"context"
	"sync"

	"legalai-be/pkg/role"
)

// RoleReader is the part of the role store the filter depends on.
type RoleReader interface {
	Get(ctx context.Context, subject string) role.Role
}

// Filter memoizes one menu per role. Every call reads the subject's current
// role first, so a change made by any writer, local or not, shows up on the
// next call.
type Filter struct {
	roles RoleReader

	mu    sync.Mutex
	memos map[role.Role][]NavItem
}

func NewFilter(roles RoleReader) *Filter {
	return &Filter{
		roles: roles,
		memos: make(map[role.Role][]NavItem),
	}
}

// Menu returns the subject's active role and the items visible to it.
func (f *Filter) Menu(ctx context.Context, subject string) (role.Role, []NavItem) {
	r := f.roles.Get(ctx, subject)

	f.mu.Lock()
	defer f.mu.Unlock()
	items, ok := f.memos[r]
	if !ok {
		items = VisibleItems(r)
		f.memos[r] = items
	}
	return r, append([]NavItem(nil), items...)
}
