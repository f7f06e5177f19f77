package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service is a product the company sells. Advertising campaigns and
// contracts reference it and are removed together with it.
type Service struct {
	ID          string          `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Cost        decimal.Decimal `json:"cost" db:"cost"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

func NewService(name, description string, cost decimal.Decimal) *Service {
	now := time.Now()
	return &Service{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		Cost:        cost.Round(2),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

type ServiceRepositoryInterface interface {
	Create(ctx context.Context, s *Service) error
	Update(ctx context.Context, s *Service) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Service, error)
	List(ctx context.Context) ([]Service, error)
}
