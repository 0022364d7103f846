package service

import (
	"context"

	"legalai-be/internal/dto"
	"legalai-be/pkg/guard"
	"legalai-be/pkg/navigation"
	"legalai-be/pkg/role"
)

type INavigationService interface {
	Menu(ctx context.Context, subject string) *dto.MenuResponse
	// Resolve returns guard.ErrUndeclaredRoute for a path missing from the table.
	Resolve(ctx context.Context, path string, session guard.Session) (*dto.ResolveResponse, error)
}

type RoleReader interface {
	Get(ctx context.Context, subject string) role.Role
}

type navigationService struct {
	filter *navigation.Filter
	table  *guard.Table
	roles  RoleReader
}

func NewNavigationService(filter *navigation.Filter, table *guard.Table, roles RoleReader) INavigationService {
	return &navigationService{filter: filter, table: table, roles: roles}
}

func (s *navigationService) Menu(ctx context.Context, subject string) *dto.MenuResponse {
	r, items := s.filter.Menu(ctx, subject)
	return &dto.MenuResponse{Role: r.String(), Items: items}
}

func (s *navigationService) Resolve(ctx context.Context, path string, session guard.Session) (*dto.ResolveResponse, error) {
	if session.Authenticated() {
		session.RoleClaim = s.roles.Get(ctx, session.Subject).String()
	}

	decision, err := s.table.Authorize("", path, session)
	if err != nil {
		return nil, err
	}
	return &dto.ResolveResponse{
		Path:     path,
		Decision: decision.String(),
		Redirect: decision.Target(),
	}, nil
}
