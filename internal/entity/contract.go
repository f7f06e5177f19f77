package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DateLayout is the natural string form of contract dates.
const DateLayout = "2006-01-02"

// Contract is a dated, priced agreement for a Service. Doc holds the key of
// the signed document in the blob store.
type Contract struct {
	ID        string          `json:"id" db:"id"`
	Name      string          `json:"name" db:"name"`
	ProductID string          `json:"product_id" db:"product_id"`
	Doc       string          `json:"doc" db:"doc"`
	StartDate time.Time       `json:"start_date" db:"start_date"`
	EndDate   time.Time       `json:"end_date" db:"end_date"`
	Cost      decimal.Decimal `json:"cost" db:"cost"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`

	Product *Service `json:"product,omitempty" db:"-"`
}

// NewContract stamps StartDate with today; it is never changed afterwards.
func NewContract(name, productID, doc string, endDate time.Time, cost decimal.Decimal, today time.Time) *Contract {
	now := time.Now()
	return &Contract{
		ID:        uuid.New().String(),
		Name:      name,
		ProductID: productID,
		Doc:       doc,
		StartDate: DateOf(today),
		EndDate:   DateOf(endDate),
		Cost:      cost.Round(2),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// DateOf drops the clock part of t.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type ContractRepositoryInterface interface {
	Create(ctx context.Context, c *Contract) error
	Update(ctx context.Context, c *Contract) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Contract, error)
	FindByName(ctx context.Context, name string) (*Contract, error)
	List(ctx context.Context) ([]Contract, error)
}
