package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type LeadRepository struct {
	DB *sqlx.DB
}

func NewLeadRepository(db *sqlx.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

type leadRow struct {
	entity.Lead
	AdsName    sql.NullString `db:"ads_name"`
	AdsChannel sql.NullString `db:"ads_channel"`
}

func (row leadRow) toEntity() entity.Lead {
	l := row.Lead
	if l.AdsID != nil && row.AdsName.Valid {
		l.Ads = &entity.Advertising{ID: *l.AdsID, Name: row.AdsName.String, Channel: row.AdsChannel.String}
	}
	return l
}

const selectLead = `
	SELECT l.id, l.first_name, l.last_name, l.phone, l.email, l.ads_id, l.created_at, l.updated_at,
	       a.name AS ads_name, a.channel AS ads_channel
	FROM leads l
	LEFT JOIN advertisements a ON a.id = l.ads_id
`

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (id, first_name, last_name, phone, email, ads_id, created_at, updated_at)
		VALUES (:id, :first_name, :last_name, :phone, :email, :ads_id, :created_at, :updated_at)
	`
	if _, err := conn(ctx, r.DB).NamedExecContext(ctx, query, lead); err != nil {
		return fmt.Errorf("create lead: %w", translateError(err))
	}
	return nil
}

func (r *LeadRepository) Update(ctx context.Context, lead *entity.Lead) error {
	query := `
		UPDATE leads
		SET first_name = :first_name, last_name = :last_name, phone = :phone,
		    email = :email, ads_id = :ads_id, updated_at = :updated_at
		WHERE id = :id
	`
	res, err := conn(ctx, r.DB).NamedExecContext(ctx, query, lead)
	if err != nil {
		return fmt.Errorf("update lead: %w", translateError(err))
	}
	return expectOne(res)
}

func (r *LeadRepository) Delete(ctx context.Context, id string) error {
	res, err := conn(ctx, r.DB).ExecContext(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete lead: %w", translateError(err))
	}
	return expectOne(res)
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	return r.findOne(ctx, selectLead+` WHERE l.id = $1`, id)
}

func (r *LeadRepository) FindByPhone(ctx context.Context, phone string) (*entity.Lead, error) {
	return r.findOne(ctx, selectLead+` WHERE l.phone = $1`, phone)
}

func (r *LeadRepository) FindByEmail(ctx context.Context, email string) (*entity.Lead, error) {
	return r.findOne(ctx, selectLead+` WHERE l.email = $1`, email)
}

func (r *LeadRepository) FindMatching(ctx context.Context, lead *entity.Lead) (*entity.Lead, error) {
	query := selectLead + `
		WHERE l.first_name = $1 AND l.last_name = $2 AND l.phone = $3 AND l.email = $4
		  AND l.ads_id IS NOT DISTINCT FROM $5::uuid
	`
	return r.findOne(ctx, query, lead.FirstName, lead.LastName, lead.Phone, lead.Email, lead.AdsID)
}

func (r *LeadRepository) List(ctx context.Context) ([]entity.Lead, error) {
	var rows []leadRow
	if err := conn(ctx, r.DB).SelectContext(ctx, &rows, selectLead+` ORDER BY l.created_at, l.id`); err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	leads := make([]entity.Lead, 0, len(rows))
	for _, row := range rows {
		leads = append(leads, row.toEntity())
	}
	return leads, nil
}

func (r *LeadRepository) findOne(ctx context.Context, query string, args ...any) (*entity.Lead, error) {
	var row leadRow
	if err := conn(ctx, r.DB).GetContext(ctx, &row, query, args...); err != nil {
		return nil, translateError(err)
	}
	l := row.toEntity()
	return &l, nil
}
