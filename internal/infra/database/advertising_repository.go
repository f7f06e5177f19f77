package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type AdvertisingRepository struct {
	DB *sqlx.DB
}

func NewAdvertisingRepository(db *sqlx.DB) *AdvertisingRepository {
	return &AdvertisingRepository{DB: db}
}

type advertisingRow struct {
	entity.Advertising
	ProductName sql.NullString      `db:"product_name"`
	ProductCost decimal.NullDecimal `db:"product_cost"`
}

func (row advertisingRow) toEntity() entity.Advertising {
	a := row.Advertising
	if row.ProductName.Valid {
		a.Product = &entity.Service{ID: a.ProductID, Name: row.ProductName.String, Cost: row.ProductCost.Decimal}
	}
	return a
}

const selectAdvertising = `
	SELECT a.id, a.name, a.channel, a.budget, a.product_id, a.created_at, a.updated_at,
	       s.name AS product_name, s.cost AS product_cost
	FROM advertisements a
	LEFT JOIN services s ON s.id = a.product_id
`

func (r *AdvertisingRepository) Create(ctx context.Context, a *entity.Advertising) error {
	query := `
		INSERT INTO advertisements (id, name, channel, budget, product_id, created_at, updated_at)
		VALUES (:id, :name, :channel, :budget, :product_id, :created_at, :updated_at)
	`
	if _, err := conn(ctx, r.DB).NamedExecContext(ctx, query, a); err != nil {
		return fmt.Errorf("create advertising: %w", translateError(err))
	}
	return nil
}

func (r *AdvertisingRepository) Update(ctx context.Context, a *entity.Advertising) error {
	query := `
		UPDATE advertisements
		SET name = :name, channel = :channel, budget = :budget, product_id = :product_id, updated_at = :updated_at
		WHERE id = :id
	`
	res, err := conn(ctx, r.DB).NamedExecContext(ctx, query, a)
	if err != nil {
		return fmt.Errorf("update advertising: %w", translateError(err))
	}
	return expectOne(res)
}

func (r *AdvertisingRepository) Delete(ctx context.Context, id string) error {
	res, err := conn(ctx, r.DB).ExecContext(ctx, `DELETE FROM advertisements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete advertising: %w", translateError(err))
	}
	return expectOne(res)
}

func (r *AdvertisingRepository) FindByID(ctx context.Context, id string) (*entity.Advertising, error) {
	var row advertisingRow
	if err := conn(ctx, r.DB).GetContext(ctx, &row, selectAdvertising+` WHERE a.id = $1`, id); err != nil {
		return nil, translateError(err)
	}
	a := row.toEntity()
	return &a, nil
}

func (r *AdvertisingRepository) List(ctx context.Context) ([]entity.Advertising, error) {
	var rows []advertisingRow
	if err := conn(ctx, r.DB).SelectContext(ctx, &rows, selectAdvertising+` ORDER BY a.created_at, a.id`); err != nil {
		return nil, fmt.Errorf("list advertisements: %w", err)
	}
	ads := make([]entity.Advertising, 0, len(rows))
	for _, row := range rows {
		ads = append(ads, row.toEntity())
	}
	return ads, nil
}
