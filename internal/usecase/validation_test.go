package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeadValidator_PhoneFormat(t *testing.T) {
	v := LeadValidator{}

	tests := []struct {
		name  string
		phone string
		ok    bool
	}{
		{"canonical", "+7 (999) 000 0000", true},
		{"trailing text tolerated", "+7 (999) 000 0000 x", true},
		{"letters", "abc", false},
		{"missing country code", "(999) 000 0000", false},
		{"wrong separators", "+7-999-000-0000", false},
		{"short last group", "+7 (999) 000 000", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := leadInput(1, nil)
			in.Phone = tt.phone
			errs := v.Format(in)
			if tt.ok {
				assert.Empty(t, errs)
				return
			}
			assert.Equal(t, []string{msgPhoneFormat}, errs.Fields()["phone"])
		})
	}
}

func TestLeadValidator_StructRules(t *testing.T) {
	errs := LeadValidator{}.Format(LeadInput{Phone: "+7 (999) 000 0000", Email: "not-an-email"})

	fields := errs.Fields()
	assert.Equal(t, []string{"This field is required."}, fields["first_name"])
	assert.Equal(t, []string{"This field is required."}, fields["last_name"])
	assert.Equal(t, []string{"Enter a valid email address."}, fields["email"])
	assert.NotContains(t, fields, "phone")
}

func TestLeadValidator_Uniqueness(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	existing := f.lead(t, 1, nil)
	v := f.leads.Validator

	errs, err := v.Validate(ctx, leadInput(1, nil), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{msgPhoneExists}, errs.Fields()["phone"])
	assert.Equal(t, []string{msgEmailExists}, errs.Fields()["email"])

	errs, err = v.Validate(ctx, leadInput(1, nil), existing)
	require.NoError(t, err)
	assert.Empty(t, errs, "a lead's own values are not duplicates")

	errs, err = v.ValidateInPlace(ctx, leadInput(1, nil))
	require.NoError(t, err)
	assert.Empty(t, errs)
}

func TestLeadValidator_UnknownCampaign(t *testing.T) {
	f := newFixture(t)
	in := leadInput(1, ptr("6f1d8c1e-3a57-4a4b-9a53-0c54a2a3f001"))

	errs, err := f.leads.Validator.Validate(context.Background(), in, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{msgAdsNotFound}, errs.Fields()["ads_id"])
}

func TestContractValidator_EndBeforeToday(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.service(t)
	v := f.contracts.Validator

	errs, err := v.Validate(ctx, contractInput("Fresh", svc.ID, "2026-10-14", "1.00"), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"The end date must not be less than the start date (2026-10-15)."}, errs.NonField())

	errs, err = v.Validate(ctx, contractInput("Fresh", svc.ID, "2026-10-15", "1.00"), nil)
	require.NoError(t, err)
	assert.Empty(t, errs, "ending on the start date is allowed")
}

func TestContractValidator_ExistingNameSetsReference(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.service(t)

	// C1 was started ten days ago.
	f.contracts.Validator.Now = func() time.Time { return today.AddDate(0, 0, -10) }
	c1, err := f.contracts.Create(ctx, contractInput("C1", svc.ID, "2027-01-31", "10.00"))
	require.NoError(t, err)
	f.contracts.Validator.Now = func() time.Time { return today }
	v := f.contracts.Validator

	// Editing C1 compares against its own start date, not today.
	in := contractInput("C1", svc.ID, "2026-10-10", "10.00")
	errs, err := v.Validate(ctx, in, c1)
	require.NoError(t, err)
	assert.Empty(t, errs)

	in = contractInput("C1", svc.ID, "2026-10-04", "10.00")
	errs, err = v.Validate(ctx, in, c1)
	require.NoError(t, err)
	assert.Equal(t, []string{"The end date must not be less than the start date (2026-10-05)."}, errs.NonField())

	// Creating another C1 reports the duplicate name against the same reference.
	errs, err = v.Validate(ctx, contractInput("C1", svc.ID, "2026-10-04", "10.00"), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{msgContractExists}, errs.Fields()["name"])
	assert.Len(t, errs.NonField(), 1)
}

func TestContractValidator_EditHeldToOwnStartDate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.service(t)

	f.contracts.Validator.Now = func() time.Time { return today.AddDate(0, 0, -10) }
	_, err := f.contracts.Create(ctx, contractInput("Old", svc.ID, "2027-01-31", "10.00"))
	require.NoError(t, err)
	f.contracts.Validator.Now = func() time.Time { return today }
	c2, err := f.contracts.Create(ctx, contractInput("C2", svc.ID, "2027-01-31", "10.00"))
	require.NoError(t, err)

	// Taking Old's name must not lower the bound below C2's own start.
	in := contractInput("Old", svc.ID, "2026-10-10", "10.00")
	in.Document = nil
	errs, err := f.contracts.Validator.Validate(ctx, in, c2)
	require.NoError(t, err)
	assert.Equal(t, []string{"The end date must not be less than the start date (2026-10-15)."}, errs.NonField())

	_, err = f.contracts.Update(ctx, c2.ID, in)
	d := requireDomainError(t, err, CodeValidation)
	assert.Equal(t, []string{"The end date must not be less than the start date (2026-10-15)."}, d.Errors.NonField())
}

func TestContractValidator_FieldRules(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	in := ContractInput{Name: "C1", ProductID: "6f1d8c1e-3a57-4a4b-9a53-0c54a2a3f001", EndDate: "31/01/2027", Cost: dec("-1")}
	errs, err := f.contracts.Validator.Validate(ctx, in, nil)
	require.NoError(t, err)

	fields := errs.Fields()
	assert.Equal(t, []string{"Enter a valid date (YYYY-MM-DD)."}, fields["end_date"])
	assert.Equal(t, []string{"Ensure this value is greater than or equal to 0."}, fields["cost"])
	assert.Equal(t, []string{"This field is required."}, fields["doc"])
	assert.Equal(t, []string{msgProductNotFound}, fields["product_id"])
	assert.Empty(t, errs.NonField())
}

func TestValidationErrors_Grouping(t *testing.T) {
	var errs ValidationErrors
	errs.Add("phone", "a")
	errs.Add("phone", "b")
	errs.Add("", "c")

	assert.Equal(t, map[string][]string{"phone": {"a", "b"}}, errs.Fields())
	assert.Equal(t, []string{"c"}, errs.NonField())
	assert.Equal(t, "phone: a; phone: b; c", errs.Error())
}
