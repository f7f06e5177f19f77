package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

// StatisticsRepository computes every aggregate inside Postgres.
type StatisticsRepository struct {
	DB *sqlx.DB
}

func NewStatisticsRepository(db *sqlx.DB) *StatisticsRepository {
	return &StatisticsRepository{DB: db}
}

func (r *StatisticsRepository) CountLeadsByAds(ctx context.Context, adsID string) (int64, error) {
	var n int64
	if err := conn(ctx, r.DB).GetContext(ctx, &n, `SELECT COUNT(*) FROM leads WHERE ads_id = $1`, adsID); err != nil {
		return 0, fmt.Errorf("count leads by ads: %w", err)
	}
	return n, nil
}

func (r *StatisticsRepository) CountCustomersByAds(ctx context.Context, adsID string) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM customers cu
		WHERE cu.lead_id IN (SELECT l.id FROM leads l WHERE l.ads_id = $1)
	`
	var n int64
	if err := conn(ctx, r.DB).GetContext(ctx, &n, query, adsID); err != nil {
		return 0, fmt.Errorf("count customers by ads: %w", err)
	}
	return n, nil
}

func (r *StatisticsRepository) SumContractCostByAds(ctx context.Context, adsID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(c.cost), 0)
		FROM contracts c
		WHERE c.id IN (
			SELECT cu.contract_id FROM customers cu
			WHERE cu.lead_id IN (SELECT l.id FROM leads l WHERE l.ads_id = $1)
		)
	`
	var income decimal.Decimal
	if err := conn(ctx, r.DB).GetContext(ctx, &income, query, adsID); err != nil {
		return decimal.Zero, fmt.Errorf("sum contract cost by ads: %w", err)
	}
	return income, nil
}

func (r *StatisticsRepository) AggregateByAds(ctx context.Context) ([]entity.AdsAggregate, error) {
	query := `
		SELECT a.id AS ads_id, a.name, a.budget,
		       COALESCE(ld.leads_count, 0)     AS leads_count,
		       COALESCE(cs.customers_count, 0) AS customers_count,
		       COALESCE(cs.income, 0)          AS income
		FROM advertisements a
		LEFT JOIN (
			SELECT ads_id, COUNT(*) AS leads_count
			FROM leads
			WHERE ads_id IS NOT NULL
			GROUP BY ads_id
		) ld ON ld.ads_id = a.id
		LEFT JOIN (
			SELECT l.ads_id, COUNT(cu.id) AS customers_count, SUM(c.cost) AS income
			FROM customers cu
			JOIN leads l ON l.id = cu.lead_id
			JOIN contracts c ON c.id = cu.contract_id
			WHERE l.ads_id IS NOT NULL
			GROUP BY l.ads_id
		) cs ON cs.ads_id = a.id
		ORDER BY a.created_at, a.id
	`
	rows := []entity.AdsAggregate{}
	if err := conn(ctx, r.DB).SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("aggregate advertisements: %w", err)
	}
	return rows, nil
}

func (r *StatisticsRepository) Totals(ctx context.Context) (*entity.TotalStatistics, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM services)       AS products_count,
			(SELECT COUNT(*) FROM advertisements) AS advertisements_count,
			(SELECT COUNT(*) FROM leads)          AS leads_count,
			(SELECT COUNT(*) FROM customers)      AS customers_count
	`
	var row struct {
		Products       int64 `db:"products_count"`
		Advertisements int64 `db:"advertisements_count"`
		Leads          int64 `db:"leads_count"`
		Customers      int64 `db:"customers_count"`
	}
	if err := conn(ctx, r.DB).GetContext(ctx, &row, query); err != nil {
		return nil, fmt.Errorf("total statistics: %w", err)
	}
	return &entity.TotalStatistics{
		ProductsCount:       row.Products,
		AdvertisementsCount: row.Advertisements,
		LeadsCount:          row.Leads,
		CustomersCount:      row.Customers,
	}, nil
}
