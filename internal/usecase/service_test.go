package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceUseCase_CRUD(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.services.Create(ctx, ServiceInput{Cost: dec("-5")})
	d := requireDomainError(t, err, CodeValidation)
	assert.Contains(t, d.Errors.Fields(), "name")
	assert.Contains(t, d.Errors.Fields(), "cost")

	svc := f.service(t)
	updated, err := f.services.Update(ctx, svc.ID, ServiceInput{Name: "Audit", Cost: dec("99.999")})
	require.NoError(t, err)
	assert.Equal(t, "100.00", updated.Cost.StringFixed(2))

	list, err := f.services.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Audit", list[0].Name)

	require.NoError(t, f.services.Delete(ctx, svc.ID))
	_, err = f.services.Get(ctx, svc.ID)
	requireDomainError(t, err, CodeNotFound)
}

func TestAdvertisingUseCase_CRUD(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.service(t)

	_, err := f.ads.Create(ctx, AdvertisingInput{
		Name: "Spring", Channel: "tv", Budget: dec("-1"), ProductID: "6f1d8c1e-3a57-4a4b-9a53-0c54a2a3f001",
	})
	d := requireDomainError(t, err, CodeValidation)
	assert.Equal(t, []string{msgProductNotFound}, d.Errors.Fields()["product_id"])
	assert.NotEmpty(t, d.Errors.Fields()["budget"])

	ads := f.campaign(t, "Spring", svc.ID, "10.00")
	got, err := f.ads.Get(ctx, ads.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Product)
	assert.Equal(t, svc.Name, got.Product.Name)

	updated, err := f.ads.Update(ctx, ads.ID, AdvertisingInput{
		Name: "Summer", Channel: "radio", Budget: dec("15"), ProductID: svc.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Summer", updated.Name)

	require.NoError(t, f.services.Delete(ctx, svc.ID))
	_, err = f.ads.Get(ctx, ads.ID)
	requireDomainError(t, err, CodeNotFound)
}
