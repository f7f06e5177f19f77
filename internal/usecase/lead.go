package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type LeadUseCase struct {
	Repo      entity.LeadRepositoryInterface
	Validator LeadValidator
	logger    *zap.Logger
}

func NewLeadUseCase(
	repo entity.LeadRepositoryInterface,
	ads entity.AdvertisingRepositoryInterface,
	logger *zap.Logger,
) *LeadUseCase {
	return &LeadUseCase{
		Repo:      repo,
		Validator: LeadValidator{Leads: repo, Ads: ads},
		logger:    logger,
	}
}

func (uc *LeadUseCase) Create(ctx context.Context, in LeadInput) (*entity.Lead, error) {
	errs, err := uc.Validator.Validate(ctx, in, nil)
	if err != nil {
		return nil, classify(err, "lead", "validate lead")
	}
	if len(errs) > 0 {
		return nil, invalid(errs)
	}

	lead := entity.NewLead(in.FirstName, in.LastName, in.Phone, in.Email, in.AdsID)
	if err := uc.Repo.Create(ctx, lead); err != nil {
		return nil, classify(err, "lead", "create lead")
	}
	uc.logger.Info("lead created", zap.String("lead_id", lead.ID))
	return lead, nil
}

func (uc *LeadUseCase) Update(ctx context.Context, id string, in LeadInput) (*entity.Lead, error) {
	lead, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, classify(err, "lead", "load lead")
	}
	errs, err := uc.Validator.Validate(ctx, in, lead)
	if err != nil {
		return nil, classify(err, "lead", "validate lead")
	}
	if len(errs) > 0 {
		return nil, invalid(errs)
	}

	applyLead(lead, in)
	if err := uc.Repo.Update(ctx, lead); err != nil {
		return nil, classify(err, "lead", "update lead")
	}
	return lead, nil
}

// Delete also removes the customer the lead was converted into.
func (uc *LeadUseCase) Delete(ctx context.Context, id string) error {
	if err := uc.Repo.Delete(ctx, id); err != nil {
		return classify(err, "lead", "delete lead")
	}
	return nil
}

func (uc *LeadUseCase) Get(ctx context.Context, id string) (*entity.Lead, error) {
	lead, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, classify(err, "lead", "load lead")
	}
	return lead, nil
}

func (uc *LeadUseCase) List(ctx context.Context) ([]entity.Lead, error) {
	list, err := uc.Repo.List(ctx)
	if err != nil {
		return nil, classify(err, "lead", "list leads")
	}
	return list, nil
}

func applyLead(lead *entity.Lead, in LeadInput) {
	lead.FirstName = in.FirstName
	lead.LastName = in.LastName
	lead.Phone = in.Phone
	lead.Email = in.Email
	lead.AdsID = in.AdsID
	lead.Ads = nil
	lead.UpdatedAt = time.Now()
}
