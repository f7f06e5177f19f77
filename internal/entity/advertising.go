package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Advertising is a budgeted promotion campaign for a Service. Leads are
// attributed to the campaign they came from.
type Advertising struct {
	ID        string          `json:"id" db:"id"`
	Name      string          `json:"name" db:"name"`
	Channel   string          `json:"channel" db:"channel"`
	Budget    decimal.Decimal `json:"budget" db:"budget"`
	ProductID string          `json:"product_id" db:"product_id"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`

	Product *Service `json:"product,omitempty" db:"-"`
}

func NewAdvertising(name, channel string, budget decimal.Decimal, productID string) *Advertising {
	now := time.Now()
	return &Advertising{
		ID:        uuid.New().String(),
		Name:      name,
		Channel:   channel,
		Budget:    budget.Round(2),
		ProductID: productID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

type AdvertisingRepositoryInterface interface {
	Create(ctx context.Context, a *Advertising) error
	Update(ctx context.Context, a *Advertising) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Advertising, error)
	List(ctx context.Context) ([]Advertising, error)
}
