package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Lead is a prospective client, optionally attributed to the advertising
// campaign that brought them in. Phone and email are unique across leads.
type Lead struct {
	ID        string    `json:"id" db:"id"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	Phone     string    `json:"phone" db:"phone"`
	Email     string    `json:"email" db:"email"`
	AdsID     *string   `json:"ads_id,omitempty" db:"ads_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	Ads *Advertising `json:"ads,omitempty" db:"-"`
}

func NewLead(firstName, lastName, phone, email string, adsID *string) *Lead {
	now := time.Now()
	return &Lead{
		ID:        uuid.New().String(),
		FirstName: firstName,
		LastName:  lastName,
		Phone:     phone,
		Email:     email,
		AdsID:     adsID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Matches reports whether every user supplied field equals the given values.
func (l *Lead) Matches(firstName, lastName, phone, email string, adsID *string) bool {
	if l.FirstName != firstName || l.LastName != lastName || l.Phone != phone || l.Email != email {
		return false
	}
	if l.AdsID == nil || adsID == nil {
		return l.AdsID == nil && adsID == nil
	}
	return *l.AdsID == *adsID
}

type LeadRepositoryInterface interface {
	Create(ctx context.Context, lead *Lead) error
	Update(ctx context.Context, lead *Lead) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Lead, error)
	FindByPhone(ctx context.Context, phone string) (*Lead, error)
	FindByEmail(ctx context.Context, email string) (*Lead, error)
	// FindMatching returns the lead whose fields all equal the given lead's,
	// or ErrNotFound.
	FindMatching(ctx context.Context, lead *Lead) (*Lead, error)
	List(ctx context.Context) ([]Lead, error)
}
