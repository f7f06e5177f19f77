package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type RoleRepository struct {
	DB     *sqlx.DB
	tx     *TxManager
	logger *zap.Logger
}

func NewRoleRepository(db *sqlx.DB, tx *TxManager, logger *zap.Logger) *RoleRepository {
	return &RoleRepository{DB: db, tx: tx, logger: logger}
}

func (r *RoleRepository) EnsurePermissions(ctx context.Context, role string, permissions []string) error {
	return r.tx.WithinTx(ctx, func(ctx context.Context) error {
		q := conn(ctx, r.DB)
		if _, err := q.ExecContext(ctx,
			`INSERT INTO roles (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, role); err != nil {
			return fmt.Errorf("ensure role %s: %w", role, err)
		}

		res, err := q.ExecContext(ctx, `
			INSERT INTO role_permissions (role, permission)
			SELECT $1, p FROM unnest($2::text[]) AS p
			ON CONFLICT (role, permission) DO NOTHING
		`, role, pq.Array(permissions))
		if err != nil {
			return fmt.Errorf("grant permissions to %s: %w", role, err)
		}

		added, _ := res.RowsAffected()
		r.logger.Info("role permissions ensured",
			zap.String("role", role),
			zap.Int("requested", len(permissions)),
			zap.Int64("added", added),
		)
		return nil
	})
}

func (r *RoleRepository) HasPermission(ctx context.Context, role, permission string) (bool, error) {
	var ok bool
	query := `SELECT EXISTS (SELECT 1 FROM role_permissions WHERE role = $1 AND permission = $2)`
	if err := conn(ctx, r.DB).GetContext(ctx, &ok, query, role, permission); err != nil {
		return false, fmt.Errorf("check permission: %w", err)
	}
	return ok, nil
}
