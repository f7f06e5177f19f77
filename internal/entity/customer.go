package entity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Customer records the conversion of a Lead: it pairs exactly one lead with
// exactly one contract.
type Customer struct {
	ID         string    `json:"id" db:"id"`
	LeadID     string    `json:"lead_id" db:"lead_id"`
	ContractID string    `json:"contract_id" db:"contract_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`

	Lead     *Lead     `json:"lead,omitempty" db:"-"`
	Contract *Contract `json:"contract,omitempty" db:"-"`
}

// Factory
func NewCustomer(leadID, contractID string) (*Customer, error) {
	customer := &Customer{
		ID:         uuid.New().String(),
		LeadID:     leadID,
		ContractID: contractID,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	if err := customer.Validate(); err != nil {
		return nil, err
	}

	return customer, nil
}

func (c *Customer) Validate() error {
	if c.LeadID == "" {
		return errors.New("lead is required")
	}
	if c.ContractID == "" {
		return errors.New("contract is required")
	}
	return nil
}

type CustomerRepositoryInterface interface {
	Create(ctx context.Context, c *Customer) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Customer, error)
	FindByLeadID(ctx context.Context, leadID string) (*Customer, error)
	List(ctx context.Context) ([]Customer, error)
}
