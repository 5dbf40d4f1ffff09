package roles

import (
	"context"

	"go.uber.org/zap"

	"github.com/gsdclabs/gsdc-backend/pkg/auth"
)

// Service resolves role sets for wallet addresses. It satisfies
// auth.RoleChecker so the admin middleware can use it directly.
type Service struct {
	store  Store
	logger *zap.Logger
}

var _ auth.RoleChecker = (*Service)(nil)

// NewService creates a role service over the given store.
func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
	}
}

// RolesFor returns the expanded role set for the address.
func (s *Service) RolesFor(ctx context.Context, address string) ([]Role, error) {
	granted, err := s.store.GrantedRoles(ctx, auth.LowerAddress(address))
	if err != nil {
		return nil, err
	}
	return Expand(granted), nil
}

// HasRole reports whether the address holds the role, derivation included.
func (s *Service) HasRole(ctx context.Context, address, role string) (bool, error) {
	expanded, err := s.RolesFor(ctx, address)
	if err != nil {
		return false, err
	}
	for _, r := range expanded {
		if r == Role(role) {
			return true, nil
		}
	}
	return false, nil
}
