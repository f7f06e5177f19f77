package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeadUseCase_CreateRejectsDuplicatePhone(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.service(t)
	ads := f.campaign(t, "Spring", svc.ID, "10.00")

	lead, err := f.leads.Create(ctx, LeadInput{
		FirstName: "Ann", LastName: "Lee", Phone: "+7 (999) 000 0001", Email: "a@x.com", AdsID: &ads.ID,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, lead.ID)

	_, err = f.leads.Create(ctx, LeadInput{
		FirstName: "Bob", LastName: "Ray", Phone: "+7 (999) 000 0001", Email: "b@x.com",
	})
	d := requireDomainError(t, err, CodeValidation)
	assert.Equal(t, map[string][]string{"phone": {"Phone already exists"}}, d.Errors.Fields())
	assert.Equal(t, 1, f.store.Count("leads"))
}

func TestLeadUseCase_CreateRejectsBadPhone(t *testing.T) {
	f := newFixture(t)

	_, err := f.leads.Create(context.Background(), LeadInput{
		FirstName: "Ann", LastName: "Lee", Phone: "abc", Email: "a@x.com",
	})
	d := requireDomainError(t, err, CodeValidation)
	assert.Equal(t, []string{"Phone must have format +7 (999) 000 0000"}, d.Errors.Fields()["phone"])
}

func TestLeadUseCase_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	lead := f.lead(t, 1, nil)
	f.lead(t, 2, nil)

	in := leadInput(1, nil)
	in.LastName = "Changed"
	updated, err := f.leads.Update(ctx, lead.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Changed", updated.LastName)

	in.Email = "lead2@x.com"
	_, err = f.leads.Update(ctx, lead.ID, in)
	d := requireDomainError(t, err, CodeValidation)
	assert.Equal(t, []string{msgEmailExists}, d.Errors.Fields()["email"])

	require.NoError(t, f.leads.Delete(ctx, lead.ID))
	_, err = f.leads.Get(ctx, lead.ID)
	requireDomainError(t, err, CodeNotFound)

	list, err := f.leads.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestLeadUseCase_DeletingCampaignKeepsLeads(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.service(t)
	ads := f.campaign(t, "Spring", svc.ID, "10.00")
	lead := f.lead(t, 1, &ads.ID)

	got, err := f.leads.Get(ctx, lead.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Ads)
	assert.Equal(t, "Spring", got.Ads.Name)

	require.NoError(t, f.ads.Delete(ctx, ads.ID))

	got, err = f.leads.Get(ctx, lead.ID)
	require.NoError(t, err)
	assert.Nil(t, got.AdsID)
	assert.Nil(t, got.Ads)
}
