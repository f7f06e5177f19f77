package entity

import (
	"context"

	"github.com/shopspring/decimal"
)

// AdsStatistics is the performance of one advertising campaign.
type AdsStatistics struct {
	Name           string          `json:"name"`
	LeadsCount     int64           `json:"leads_count"`
	CustomersCount int64           `json:"customers_count"`
	Profit         decimal.Decimal `json:"profit"`
}

type TotalStatistics struct {
	ProductsCount       int64 `json:"products_count"`
	AdvertisementsCount int64 `json:"advertisements_count"`
	LeadsCount          int64 `json:"leads_count"`
	CustomersCount      int64 `json:"customers_count"`
}

// AdsAggregate is the raw per-campaign row the store computes in one pass.
type AdsAggregate struct {
	AdsID          string          `db:"ads_id"`
	Name           string          `db:"name"`
	Budget         decimal.Decimal `db:"budget"`
	LeadsCount     int64           `db:"leads_count"`
	CustomersCount int64           `db:"customers_count"`
	Income         decimal.Decimal `db:"income"`
}

type StatisticsRepositoryInterface interface {
	CountLeadsByAds(ctx context.Context, adsID string) (int64, error)
	CountCustomersByAds(ctx context.Context, adsID string) (int64, error)
	// SumContractCostByAds is zero when the campaign has no customers.
	SumContractCostByAds(ctx context.Context, adsID string) (decimal.Decimal, error)
	AggregateByAds(ctx context.Context) ([]AdsAggregate, error)
	Totals(ctx context.Context) (*TotalStatistics, error)
}
