package usecase

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

// StatisticsUseCase reports campaign performance. Nothing is cached; each
// call reads the store.
type StatisticsUseCase struct {
	Repo   entity.StatisticsRepositoryInterface
	Ads    entity.AdvertisingRepositoryInterface
	logger *zap.Logger
}

func NewStatisticsUseCase(
	repo entity.StatisticsRepositoryInterface,
	ads entity.AdvertisingRepositoryInterface,
	logger *zap.Logger,
) *StatisticsUseCase {
	return &StatisticsUseCase{Repo: repo, Ads: ads, logger: logger}
}

func (uc *StatisticsUseCase) CountAdsLeads(ctx context.Context, adsID string) (int64, error) {
	if _, err := uc.Ads.FindByID(ctx, adsID); err != nil {
		return 0, classify(err, "advertising", "load advertising")
	}
	n, err := uc.Repo.CountLeadsByAds(ctx, adsID)
	if err != nil {
		return 0, classify(err, "advertising", "count leads")
	}
	return n, nil
}

func (uc *StatisticsUseCase) CountAdsCustomers(ctx context.Context, adsID string) (int64, error) {
	if _, err := uc.Ads.FindByID(ctx, adsID); err != nil {
		return 0, classify(err, "advertising", "load advertising")
	}
	n, err := uc.Repo.CountCustomersByAds(ctx, adsID)
	if err != nil {
		return 0, classify(err, "advertising", "count customers")
	}
	return n, nil
}

// CountAdsProfit is the contract income of the campaign's customers minus
// its budget. Without customers the profit is the negated budget.
func (uc *StatisticsUseCase) CountAdsProfit(ctx context.Context, adsID string) (decimal.Decimal, error) {
	ads, err := uc.Ads.FindByID(ctx, adsID)
	if err != nil {
		return decimal.Zero, classify(err, "advertising", "load advertising")
	}
	income, err := uc.Repo.SumContractCostByAds(ctx, adsID)
	if err != nil {
		return decimal.Zero, classify(err, "advertising", "sum contract cost")
	}
	return profit(income, ads.Budget), nil
}

// Campaign returns the statistics of a single campaign.
func (uc *StatisticsUseCase) Campaign(ctx context.Context, adsID string) (*entity.AdsStatistics, error) {
	ads, err := uc.Ads.FindByID(ctx, adsID)
	if err != nil {
		return nil, classify(err, "advertising", "load advertising")
	}
	leads, err := uc.Repo.CountLeadsByAds(ctx, adsID)
	if err != nil {
		return nil, classify(err, "advertising", "count leads")
	}
	customers, err := uc.Repo.CountCustomersByAds(ctx, adsID)
	if err != nil {
		return nil, classify(err, "advertising", "count customers")
	}
	income, err := uc.Repo.SumContractCostByAds(ctx, adsID)
	if err != nil {
		return nil, classify(err, "advertising", "sum contract cost")
	}
	return &entity.AdsStatistics{
		Name:           ads.Name,
		LeadsCount:     leads,
		CustomersCount: customers,
		Profit:         profit(income, ads.Budget),
	}, nil
}

// AdsStatistics returns one record per campaign, oldest first.
func (uc *StatisticsUseCase) AdsStatistics(ctx context.Context) ([]entity.AdsStatistics, error) {
	rows, err := uc.Repo.AggregateByAds(ctx)
	if err != nil {
		return nil, classify(err, "advertising", "aggregate advertisements")
	}
	stats := make([]entity.AdsStatistics, 0, len(rows))
	for _, r := range rows {
		stats = append(stats, entity.AdsStatistics{
			Name:           r.Name,
			LeadsCount:     r.LeadsCount,
			CustomersCount: r.CustomersCount,
			Profit:         profit(r.Income, r.Budget),
		})
	}
	return stats, nil
}

func (uc *StatisticsUseCase) TotalStatistics(ctx context.Context) (*entity.TotalStatistics, error) {
	totals, err := uc.Repo.Totals(ctx)
	if err != nil {
		return nil, classify(err, "statistics", "load totals")
	}
	return totals, nil
}

func profit(income, budget decimal.Decimal) decimal.Decimal {
	return income.Sub(budget).Round(2)
}
