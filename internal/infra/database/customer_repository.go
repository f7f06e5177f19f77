package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type CustomerRepository struct {
	DB     *sqlx.DB
	logger *zap.Logger
}

func NewCustomerRepository(db *sqlx.DB, logger *zap.Logger) *CustomerRepository {
	return &CustomerRepository{DB: db, logger: logger}
}

// customerRow carries the linked lead and contract through sqlx's dotted
// column names ("lead.id", "contract.name", ...).
type customerRow struct {
	entity.Customer
	L entity.Lead     `db:"lead"`
	C entity.Contract `db:"contract"`
}

func (row customerRow) toEntity() entity.Customer {
	c := row.Customer
	lead, contract := row.L, row.C
	c.Lead = &lead
	c.Contract = &contract
	return c
}

const selectCustomer = `
	SELECT cu.id, cu.lead_id, cu.contract_id, cu.created_at, cu.updated_at,
	       l.id AS "lead.id", l.first_name AS "lead.first_name", l.last_name AS "lead.last_name",
	       l.phone AS "lead.phone", l.email AS "lead.email", l.ads_id AS "lead.ads_id",
	       l.created_at AS "lead.created_at", l.updated_at AS "lead.updated_at",
	       c.id AS "contract.id", c.name AS "contract.name", c.product_id AS "contract.product_id",
	       c.doc AS "contract.doc", c.start_date AS "contract.start_date", c.end_date AS "contract.end_date",
	       c.cost AS "contract.cost", c.created_at AS "contract.created_at", c.updated_at AS "contract.updated_at"
	FROM customers cu
	JOIN leads l ON l.id = cu.lead_id
	JOIN contracts c ON c.id = cu.contract_id
`

func (r *CustomerRepository) Create(ctx context.Context, c *entity.Customer) error {
	query := `
		INSERT INTO customers (id, lead_id, contract_id, created_at, updated_at)
		VALUES (:id, :lead_id, :contract_id, :created_at, :updated_at)
	`
	if _, err := conn(ctx, r.DB).NamedExecContext(ctx, query, c); err != nil {
		err = translateError(err)
		if _, ok := entity.AsConflict(err); !ok {
			r.logger.Error("create customer failed", zap.String("lead_id", c.LeadID), zap.Error(err))
		}
		return fmt.Errorf("create customer: %w", err)
	}
	return nil
}

func (r *CustomerRepository) Delete(ctx context.Context, id string) error {
	res, err := conn(ctx, r.DB).ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", translateError(err))
	}
	return expectOne(res)
}

func (r *CustomerRepository) FindByID(ctx context.Context, id string) (*entity.Customer, error) {
	return r.findOne(ctx, selectCustomer+` WHERE cu.id = $1`, id)
}

func (r *CustomerRepository) FindByLeadID(ctx context.Context, leadID string) (*entity.Customer, error) {
	return r.findOne(ctx, selectCustomer+` WHERE cu.lead_id = $1`, leadID)
}

func (r *CustomerRepository) List(ctx context.Context) ([]entity.Customer, error) {
	var rows []customerRow
	if err := conn(ctx, r.DB).SelectContext(ctx, &rows, selectCustomer+` ORDER BY cu.created_at, cu.id`); err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	customers := make([]entity.Customer, 0, len(rows))
	for _, row := range rows {
		customers = append(customers, row.toEntity())
	}
	return customers, nil
}

func (r *CustomerRepository) findOne(ctx context.Context, query string, args ...any) (*entity.Customer, error) {
	var row customerRow
	if err := conn(ctx, r.DB).GetContext(ctx, &row, query, args...); err != nil {
		return nil, translateError(err)
	}
	c := row.toEntity()
	return &c, nil
}
