package usecase

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/queue"
	"github.com/xavierca1/ligue-crm/internal/testutil/memstore"
)

// MockEventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishCustomerConverted(ctx context.Context, payload queue.CustomerConvertedPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

var today = time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

type fixture struct {
	store  *memstore.Store
	blobs  *memstore.Blobs
	events *MockEventPublisher

	services  *ServiceUseCase
	ads       *AdvertisingUseCase
	leads     *LeadUseCase
	contracts *ContractUseCase
	customers *CustomerUseCase
	stats     *StatisticsUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	blobs := memstore.NewBlobs()
	events := new(MockEventPublisher)
	events.On("PublishCustomerConverted", mock.Anything, mock.Anything).Return(nil).Maybe()

	logger := zap.NewNop()
	clock := func() time.Time { return today }

	return &fixture{
		store:     store,
		blobs:     blobs,
		events:    events,
		services:  NewServiceUseCase(store.Services(), logger),
		ads:       NewAdvertisingUseCase(store.Ads(), store.Services(), logger),
		leads:     NewLeadUseCase(store.Leads(), store.Ads(), logger),
		contracts: NewContractUseCase(store.Contracts(), store.Services(), blobs, clock, logger),
		customers: NewCustomerUseCase(CustomerDeps{
			Tx:        store.TxManager(),
			Leads:     store.Leads(),
			Ads:       store.Ads(),
			Services:  store.Services(),
			Contracts: store.Contracts(),
			Customers: store.Customers(),
			Blobs:     blobs,
			Events:    events,
			Now:       clock,
		}, logger),
		stats: NewStatisticsUseCase(store.Statistics(), store.Ads(), logger),
	}
}

func (f *fixture) service(t *testing.T) *entity.Service {
	t.Helper()
	s, err := f.services.Create(context.Background(), ServiceInput{
		Name: "Consulting", Description: "Hourly consulting", Cost: dec("100.00"),
	})
	require.NoError(t, err)
	return s
}

func (f *fixture) campaign(t *testing.T, name, productID, budget string) *entity.Advertising {
	t.Helper()
	a, err := f.ads.Create(context.Background(), AdvertisingInput{
		Name: name, Channel: "search", Budget: dec(budget), ProductID: productID,
	})
	require.NoError(t, err)
	return a
}

func (f *fixture) lead(t *testing.T, n int, adsID *string) *entity.Lead {
	t.Helper()
	l, err := f.leads.Create(context.Background(), leadInput(n, adsID))
	require.NoError(t, err)
	return l
}

func leadInput(n int, adsID *string) LeadInput {
	return LeadInput{
		FirstName: "Lead",
		LastName:  fmt.Sprintf("Number%d", n),
		Phone:     fmt.Sprintf("+7 (999) 000 %04d", n),
		Email:     fmt.Sprintf("lead%d@x.com", n),
		AdsID:     adsID,
	}
}

func contractInput(name, productID, endDate, cost string) ContractInput {
	return ContractInput{
		Name:      name,
		ProductID: productID,
		EndDate:   endDate,
		Cost:      dec(cost),
		Document:  &Document{Filename: name + ".pdf", Body: strings.NewReader("signed " + name)},
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr(s string) *string {
	return &s
}

func requireDomainError(t *testing.T, err error, code string) *DomainError {
	t.Helper()
	require.Error(t, err)
	d, ok := AsDomainError(err)
	require.True(t, ok, "expected a domain error, got %v", err)
	require.Equal(t, code, d.Code)
	return d
}
