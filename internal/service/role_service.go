package service

import (
	"context"
	"errors"

	"legalai-be/internal/dto"
	"legalai-be/internal/pkg/logger"
	"legalai-be/pkg/events"
	"legalai-be/pkg/role"
)

var ErrRoleUnavailable = errors.New("role storage unavailable")

type IRoleService interface {
	Get(ctx context.Context, subject string) *dto.RoleResponse
	Set(ctx context.Context, subject string, req *dto.UpdateRoleRequest) (*dto.RoleResponse, error)
}

type roleService struct {
	store     *role.Store
	publisher events.Publisher
	logger    logger.ILogger
}

func NewRoleService(store *role.Store, publisher events.Publisher, log logger.ILogger) IRoleService {
	s := &roleService{store: store, publisher: publisher, logger: log}
	store.Subscribe(s.publishChange)
	return s
}

func (s *roleService) Get(ctx context.Context, subject string) *dto.RoleResponse {
	r := s.store.Get(ctx, subject)
	return &dto.RoleResponse{Role: r.String(), LandingPath: role.DefaultPath(r)}
}

// Set returns role.ErrInvalidRole for a value outside the closed set and
// ErrRoleUnavailable when the change could not be persisted.
func (s *roleService) Set(ctx context.Context, subject string, req *dto.UpdateRoleRequest) (*dto.RoleResponse, error) {
	r, err := role.Parse(req.Role)
	if err != nil {
		return nil, err
	}

	landing, err := s.store.Set(ctx, subject, r)
	if err != nil {
		return nil, errors.Join(ErrRoleUnavailable, err)
	}
	return &dto.RoleResponse{Role: r.String(), LandingPath: landing}, nil
}

func (s *roleService) publishChange(ctx context.Context, change role.Change) {
	evt := events.RoleChanged(change.Subject, change.From.String(), change.To.String())
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("RoleService", "Failed to publish role change", map[string]interface{}{
			"subject": change.Subject,
			"error":   err.Error(),
		})
	}
}
