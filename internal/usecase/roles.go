package usecase

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type RoleUseCase struct {
	Repo   entity.RoleRepositoryInterface
	logger *zap.Logger
}

func NewRoleUseCase(repo entity.RoleRepositoryInterface, logger *zap.Logger) *RoleUseCase {
	return &RoleUseCase{Repo: repo, logger: logger}
}

// SeedDefaults grants every built-in role its permissions. Running it
// again is a no-op.
func (uc *RoleUseCase) SeedDefaults(ctx context.Context) error {
	roles := make([]string, 0, len(entity.DefaultRoles))
	for role := range entity.DefaultRoles {
		roles = append(roles, role)
	}
	sort.Strings(roles)

	for _, role := range roles {
		if err := uc.Repo.EnsurePermissions(ctx, role, entity.DefaultRoles[role]); err != nil {
			return classify(err, "role", "seed role "+role)
		}
	}
	uc.logger.Info("default roles seeded", zap.Strings("roles", roles))
	return nil
}

func (uc *RoleUseCase) Allowed(ctx context.Context, role, permission string) (bool, error) {
	if role == "" {
		return false, nil
	}
	ok, err := uc.Repo.HasPermission(ctx, role, permission)
	if err != nil {
		return false, classify(err, "role", "check permission")
	}
	return ok, nil
}
