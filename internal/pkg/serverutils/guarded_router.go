package serverutils

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"legalai-be/internal/pkg/logger"
	"legalai-be/pkg/guard"
	"legalai-be/pkg/role"

	"github.com/gofiber/fiber/v2"
)

// RoleSource resolves the active role of an authenticated subject.
type RoleSource interface {
	Get(ctx context.Context, subject string) role.Role
}

type registry struct {
	mu   sync.Mutex
	keys map[string]bool
}

// GuardedRouter is the only way handlers get mounted. Every route must be
// declared in the access table; anything else panics at startup.
type GuardedRouter struct {
	router   fiber.Router
	prefix   string
	table    *guard.Table
	sessions *SessionReader
	roles    RoleSource
	logger   logger.ILogger
	reg      *registry
}

func NewGuardedRouter(r fiber.Router, prefix string, table *guard.Table, sessions *SessionReader, roles RoleSource, log logger.ILogger) *GuardedRouter {
	return &GuardedRouter{
		router:   r,
		prefix:   prefix,
		table:    table,
		sessions: sessions,
		roles:    roles,
		logger:   log,
		reg:      &registry{keys: make(map[string]bool)},
	}
}

func (g *GuardedRouter) Group(prefix string) *GuardedRouter {
	child := *g
	child.router = g.router.Group(prefix)
	child.prefix = g.prefix + prefix
	return &child
}

func (g *GuardedRouter) Get(path string, handlers ...fiber.Handler) {
	g.add(fiber.MethodGet, path, handlers)
}

func (g *GuardedRouter) Post(path string, handlers ...fiber.Handler) {
	g.add(fiber.MethodPost, path, handlers)
}

func (g *GuardedRouter) Put(path string, handlers ...fiber.Handler) {
	g.add(fiber.MethodPut, path, handlers)
}

func (g *GuardedRouter) Delete(path string, handlers ...fiber.Handler) {
	g.add(fiber.MethodDelete, path, handlers)
}

// Registered lists the keys mounted so far, sorted.
func (g *GuardedRouter) Registered() []string {
	g.reg.mu.Lock()
	defer g.reg.mu.Unlock()
	keys := make([]string, 0, len(g.reg.keys))
	for k := range g.reg.keys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (g *GuardedRouter) add(method, path string, handlers []fiber.Handler) {
	full := g.prefix + path
	route, ok := g.table.Lookup(method, full)
	if !ok {
		panic(fmt.Errorf("%w: %s %s", guard.ErrUndeclaredRoute, method, full))
	}

	g.reg.mu.Lock()
	g.reg.keys[route.Key()] = true
	g.reg.mu.Unlock()

	chain := append([]fiber.Handler{g.authorize(route)}, handlers...)
	g.router.Add(method, path, chain...)
}

func (g *GuardedRouter) authorize(route guard.Route) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		session := g.sessions.Read(ctx)
		var active role.Role
		if session.Authenticated() {
			active = g.roles.Get(ctx.UserContext(), session.Subject)
			session.RoleClaim = active.String()
		}

		decision := guard.Decide(route, session)
		switch decision {
		case guard.RedirectLogin:
			return ctx.Status(fiber.StatusUnauthorized).JSON(
				ErrorResponseWithData(fiber.StatusUnauthorized, "Authentication required", fiber.Map{"redirect": decision.Target()}))
		case guard.RedirectForbidden:
			g.logger.Warn("GUARD", "Forbidden route", map[string]any{
				"route":   route.Key(),
				"subject": session.Subject,
				"role":    session.RoleClaim,
			})
			return ctx.Status(fiber.StatusForbidden).JSON(
				ErrorResponseWithData(fiber.StatusForbidden, "You do not have access to this resource", fiber.Map{"redirect": decision.Target()}))
		}

		if session.Authenticated() {
			ctx.Locals(LocalUserID, session.Subject)
			ctx.Locals(LocalRole, active)
		}
		return ctx.Next()
	}
}

func RoleFrom(ctx *fiber.Ctx) role.Role {
	r, ok := ctx.Locals(LocalRole).(role.Role)
	if !ok {
		return role.Fallback
	}
	return r
}
