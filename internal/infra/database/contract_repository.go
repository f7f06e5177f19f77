package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type ContractRepository struct {
	DB *sqlx.DB
}

func NewContractRepository(db *sqlx.DB) *ContractRepository {
	return &ContractRepository{DB: db}
}

type contractRow struct {
	entity.Contract
	ProductName sql.NullString `db:"product_name"`
}

func (row contractRow) toEntity() entity.Contract {
	c := row.Contract
	if row.ProductName.Valid {
		c.Product = &entity.Service{ID: c.ProductID, Name: row.ProductName.String}
	}
	return c
}

const selectContract = `
	SELECT c.id, c.name, c.product_id, c.doc, c.start_date, c.end_date, c.cost, c.created_at, c.updated_at,
	       s.name AS product_name
	FROM contracts c
	LEFT JOIN services s ON s.id = c.product_id
`

func (r *ContractRepository) Create(ctx context.Context, c *entity.Contract) error {
	query := `
		INSERT INTO contracts (id, name, product_id, doc, start_date, end_date, cost, created_at, updated_at)
		VALUES (:id, :name, :product_id, :doc, :start_date, :end_date, :cost, :created_at, :updated_at)
	`
	if _, err := conn(ctx, r.DB).NamedExecContext(ctx, query, c); err != nil {
		return fmt.Errorf("create contract: %w", translateError(err))
	}
	return nil
}

// Update never touches start_date.
func (r *ContractRepository) Update(ctx context.Context, c *entity.Contract) error {
	query := `
		UPDATE contracts
		SET name = :name, product_id = :product_id, doc = :doc, end_date = :end_date,
		    cost = :cost, updated_at = :updated_at
		WHERE id = :id
	`
	res, err := conn(ctx, r.DB).NamedExecContext(ctx, query, c)
	if err != nil {
		return fmt.Errorf("update contract: %w", translateError(err))
	}
	return expectOne(res)
}

func (r *ContractRepository) Delete(ctx context.Context, id string) error {
	res, err := conn(ctx, r.DB).ExecContext(ctx, `DELETE FROM contracts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete contract: %w", translateError(err))
	}
	return expectOne(res)
}

func (r *ContractRepository) FindByID(ctx context.Context, id string) (*entity.Contract, error) {
	return r.findOne(ctx, selectContract+` WHERE c.id = $1`, id)
}

func (r *ContractRepository) FindByName(ctx context.Context, name string) (*entity.Contract, error) {
	return r.findOne(ctx, selectContract+` WHERE c.name = $1`, name)
}

func (r *ContractRepository) List(ctx context.Context) ([]entity.Contract, error) {
	var rows []contractRow
	if err := conn(ctx, r.DB).SelectContext(ctx, &rows, selectContract+` ORDER BY c.created_at, c.id`); err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	contracts := make([]entity.Contract, 0, len(rows))
	for _, row := range rows {
		contracts = append(contracts, row.toEntity())
	}
	return contracts, nil
}

// DocKeys returns the document key of every contract.
func (r *ContractRepository) DocKeys(ctx context.Context) ([]string, error) {
	var keys []string
	if err := conn(ctx, r.DB).SelectContext(ctx, &keys, `SELECT doc FROM contracts`); err != nil {
		return nil, fmt.Errorf("list contract documents: %w", err)
	}
	return keys, nil
}

func (r *ContractRepository) findOne(ctx context.Context, query string, args ...any) (*entity.Contract, error) {
	var row contractRow
	if err := conn(ctx, r.DB).GetContext(ctx, &row, query, args...); err != nil {
		return nil, translateError(err)
	}
	c := row.toEntity()
	return &c, nil
}
