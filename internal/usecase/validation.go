package usecase

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

const (
	msgPhoneFormat     = "Phone must have format +7 (999) 000 0000"
	msgPhoneExists     = "Phone already exists"
	msgEmailExists     = "Email already exists"
	msgContractExists  = "Contract name already exists"
	msgEndBeforeStart  = "The end date must not be less than the start date (%s)."
	msgProductNotFound = "Service does not exist"
	msgAdsNotFound     = "Advertising does not exist"
)

// phonePattern is anchored at the start only; trailing text is accepted.
var phonePattern = regexp.MustCompile(`^\+7 \(\d{3}\) \d{3} \d{4}`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidationError addresses one message to a field. An empty Field marks
// a non-field error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, e := range v {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "; ")
}

func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, ValidationError{Field: field, Message: message})
}

// Fields groups the field-scoped messages by field name.
func (v ValidationErrors) Fields() map[string][]string {
	out := map[string][]string{}
	for _, e := range v {
		if e.Field != "" {
			out[e.Field] = append(out[e.Field], e.Message)
		}
	}
	return out
}

func (v ValidationErrors) NonField() []string {
	var out []string
	for _, e := range v {
		if e.Field == "" {
			out = append(out, e.Message)
		}
	}
	return out
}

func (v ValidationErrors) Has(field string) bool {
	for _, e := range v {
		if e.Field == field {
			return true
		}
	}
	return false
}

// structErrors runs the struct tag rules on in.
func structErrors(in any) ValidationErrors {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return ValidationErrors{{Message: err.Error()}}
	}

	var out ValidationErrors
	for _, fe := range verrs {
		out.Add(fe.Field(), tagMessage(fe))
	}
	return out
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "datetime":
		return "Enter a valid date (YYYY-MM-DD)."
	case "uuid":
		return "Enter a valid identifier."
	}
	return fmt.Sprintf("Failed on the %q rule.", fe.Tag())
}

// LeadValidator runs the advisory lead checks that precede any write.
type LeadValidator struct {
	Leads entity.LeadRepositoryInterface
	Ads   entity.AdvertisingRepositoryInterface
}

// Format checks field rules and the phone format. It never reads the store.
func (v LeadValidator) Format(in LeadInput) ValidationErrors {
	errs := structErrors(in)
	if in.Phone != "" && !errs.Has("phone") && !phonePattern.MatchString(in.Phone) {
		errs.Add("phone", msgPhoneFormat)
	}
	return errs
}

// Validate runs Format, checks the campaign reference and the phone and
// email uniqueness. Values equal to self's current ones are not checked for
// uniqueness; self is nil for a new lead.
func (v LeadValidator) Validate(ctx context.Context, in LeadInput, self *entity.Lead) (ValidationErrors, error) {
	errs := v.Format(in)

	if err := v.checkAds(ctx, in, &errs); err != nil {
		return nil, err
	}

	if !errs.Has("phone") && (self == nil || self.Phone != in.Phone) {
		taken, err := exists(func() error { _, err := v.Leads.FindByPhone(ctx, in.Phone); return err })
		if err != nil {
			return nil, err
		}
		if taken {
			errs.Add("phone", msgPhoneExists)
		}
	}

	if !errs.Has("email") && (self == nil || self.Email != in.Email) {
		taken, err := exists(func() error { _, err := v.Leads.FindByEmail(ctx, in.Email); return err })
		if err != nil {
			return nil, err
		}
		if taken {
			errs.Add("email", msgEmailExists)
		}
	}
	return errs, nil
}

// ValidateInPlace is the check for editing a customer's linked lead: no
// uniqueness pre-check, the storage constraint decides.
func (v LeadValidator) ValidateInPlace(ctx context.Context, in LeadInput) (ValidationErrors, error) {
	errs := v.Format(in)
	if err := v.checkAds(ctx, in, &errs); err != nil {
		return nil, err
	}
	return errs, nil
}

func (v LeadValidator) checkAds(ctx context.Context, in LeadInput, errs *ValidationErrors) error {
	if in.AdsID == nil || errs.Has("ads_id") {
		return nil
	}
	found, err := exists(func() error { _, err := v.Ads.FindByID(ctx, *in.AdsID); return err })
	if err != nil {
		return err
	}
	if !found {
		errs.Add("ads_id", msgAdsNotFound)
	}
	return nil
}

// ContractValidator runs the advisory contract checks.
type ContractValidator struct {
	Contracts entity.ContractRepositoryInterface
	Services  entity.ServiceRepositoryInterface
	Now       func() time.Time
}

// Validate checks in against the store. self is the contract being edited
// or nil on creation; name uniqueness is only checked on creation.
//
// The end date is compared with the start date of the stored contract that
// already carries in.Name, or with today when there is none. An edited
// contract is also held to its own start date when that is later.
func (v ContractValidator) Validate(ctx context.Context, in ContractInput, self *entity.Contract) (ValidationErrors, error) {
	errs := structErrors(in)
	if in.Cost.IsNegative() {
		errs.Add("cost", "Ensure this value is greater than or equal to 0.")
	}
	if self == nil && in.Document == nil {
		errs.Add("doc", "This field is required.")
	}

	if in.ProductID != "" && !errs.Has("product_id") {
		found, err := exists(func() error { _, err := v.Services.FindByID(ctx, in.ProductID); return err })
		if err != nil {
			return nil, err
		}
		if !found {
			errs.Add("product_id", msgProductNotFound)
		}
	}

	if in.Name == "" || errs.Has("name") {
		return errs, nil
	}

	reference := entity.DateOf(v.Now())
	existing, err := v.Contracts.FindByName(ctx, in.Name)
	switch {
	case err == nil:
		reference = entity.DateOf(existing.StartDate)
		if self == nil {
			errs.Add("name", msgContractExists)
		}
	case !errors.Is(err, entity.ErrNotFound):
		return nil, err
	}

	if !errs.Has("end_date") {
		end, _ := time.Parse(entity.DateLayout, in.EndDate)
		// Storage checks an edited contract against its own start date.
		if self != nil && !self.StartDate.IsZero() && entity.DateOf(self.StartDate).After(reference) {
			reference = entity.DateOf(self.StartDate)
		}
		if end.Before(reference) {
			errs.Add("", fmt.Sprintf(msgEndBeforeStart, reference.Format(entity.DateLayout)))
		}
	}
	return errs, nil
}

// exists runs a lookup and reports whether it found a row.
func exists(lookup func() error) (bool, error) {
	err := lookup()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, entity.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}
