package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type ServiceRepository struct {
	DB *sqlx.DB
}

func NewServiceRepository(db *sqlx.DB) *ServiceRepository {
	return &ServiceRepository{DB: db}
}

func (r *ServiceRepository) Create(ctx context.Context, s *entity.Service) error {
	query := `
		INSERT INTO services (id, name, description, cost, created_at, updated_at)
		VALUES (:id, :name, :description, :cost, :created_at, :updated_at)
	`
	if _, err := conn(ctx, r.DB).NamedExecContext(ctx, query, s); err != nil {
		return fmt.Errorf("create service: %w", translateError(err))
	}
	return nil
}

func (r *ServiceRepository) Update(ctx context.Context, s *entity.Service) error {
	query := `
		UPDATE services
		SET name = :name, description = :description, cost = :cost, updated_at = :updated_at
		WHERE id = :id
	`
	res, err := conn(ctx, r.DB).NamedExecContext(ctx, query, s)
	if err != nil {
		return fmt.Errorf("update service: %w", translateError(err))
	}
	return expectOne(res)
}

func (r *ServiceRepository) Delete(ctx context.Context, id string) error {
	res, err := conn(ctx, r.DB).ExecContext(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete service: %w", translateError(err))
	}
	return expectOne(res)
}

func (r *ServiceRepository) FindByID(ctx context.Context, id string) (*entity.Service, error) {
	var s entity.Service
	query := `SELECT id, name, description, cost, created_at, updated_at FROM services WHERE id = $1`
	if err := conn(ctx, r.DB).GetContext(ctx, &s, query, id); err != nil {
		return nil, translateError(err)
	}
	return &s, nil
}

func (r *ServiceRepository) List(ctx context.Context) ([]entity.Service, error) {
	services := []entity.Service{}
	query := `SELECT id, name, description, cost, created_at, updated_at FROM services ORDER BY created_at, id`
	if err := conn(ctx, r.DB).SelectContext(ctx, &services, query); err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return services, nil
}
