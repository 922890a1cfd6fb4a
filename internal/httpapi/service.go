package httpapi

import (
	"context"

	"bootkit/internal/environment"
	"bootkit/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Environments() []types.Environment
	Current(ctx context.Context) (types.Environment, error)
	Use(ctx context.Context, name string) (types.Environment, error)
}

// EnvironmentService exposes an environment manager to the API. Keys are
// stripped on the way out.
type EnvironmentService struct {
	mgr *environment.Manager[environment.Environment]
}

func NewEnvironmentService(m *environment.Manager[environment.Environment]) *EnvironmentService {
	return &EnvironmentService{mgr: m}
}

func (s *EnvironmentService) Environments() []types.Environment {
	envs := s.mgr.Environments()
	out := make([]types.Environment, 0, len(envs))
	for _, e := range envs {
		out = append(out, toWire(e))
	}
	return out
}

func (s *EnvironmentService) Current(ctx context.Context) (types.Environment, error) {
	e, err := s.mgr.Current(ctx)
	if err != nil {
		return types.Environment{}, err
	}
	return toWire(e), nil
}

func (s *EnvironmentService) Use(ctx context.Context, name string) (types.Environment, error) {
	e, err := s.mgr.Use(ctx, name)
	if err != nil {
		return types.Environment{}, err
	}
	return toWire(e), nil
}

func toWire(e environment.Environment) types.Environment {
	return types.Environment{Name: e.Name, Domain: e.Domain}
}
