package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type AdvertisingUseCase struct {
	Repo     entity.AdvertisingRepositoryInterface
	Services entity.ServiceRepositoryInterface
	logger   *zap.Logger
}

func NewAdvertisingUseCase(
	repo entity.AdvertisingRepositoryInterface,
	services entity.ServiceRepositoryInterface,
	logger *zap.Logger,
) *AdvertisingUseCase {
	return &AdvertisingUseCase{Repo: repo, Services: services, logger: logger}
}

func (uc *AdvertisingUseCase) validate(ctx context.Context, in AdvertisingInput) (ValidationErrors, error) {
	errs := structErrors(in)
	if in.Budget.IsNegative() {
		errs.Add("budget", "Ensure this value is greater than or equal to 0.")
	}
	if !errs.Has("product_id") {
		found, err := exists(func() error { _, err := uc.Services.FindByID(ctx, in.ProductID); return err })
		if err != nil {
			return nil, err
		}
		if !found {
			errs.Add("product_id", msgProductNotFound)
		}
	}
	return errs, nil
}

func (uc *AdvertisingUseCase) Create(ctx context.Context, in AdvertisingInput) (*entity.Advertising, error) {
	errs, err := uc.validate(ctx, in)
	if err != nil {
		return nil, classify(err, "advertising", "validate advertising")
	}
	if len(errs) > 0 {
		return nil, invalid(errs)
	}

	a := entity.NewAdvertising(in.Name, in.Channel, in.Budget, in.ProductID)
	if err := uc.Repo.Create(ctx, a); err != nil {
		return nil, classify(err, "advertising", "create advertising")
	}
	uc.logger.Info("advertising created", zap.String("ads_id", a.ID), zap.String("channel", a.Channel))
	return a, nil
}

func (uc *AdvertisingUseCase) Update(ctx context.Context, id string, in AdvertisingInput) (*entity.Advertising, error) {
	a, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, classify(err, "advertising", "load advertising")
	}
	errs, err := uc.validate(ctx, in)
	if err != nil {
		return nil, classify(err, "advertising", "validate advertising")
	}
	if len(errs) > 0 {
		return nil, invalid(errs)
	}

	a.Name, a.Channel, a.Budget, a.ProductID = in.Name, in.Channel, in.Budget.Round(2), in.ProductID
	a.UpdatedAt = time.Now()
	if err := uc.Repo.Update(ctx, a); err != nil {
		return nil, classify(err, "advertising", "update advertising")
	}
	return a, nil
}

// Delete keeps the campaign's leads; they lose their attribution.
func (uc *AdvertisingUseCase) Delete(ctx context.Context, id string) error {
	if err := uc.Repo.Delete(ctx, id); err != nil {
		return classify(err, "advertising", "delete advertising")
	}
	return nil
}

func (uc *AdvertisingUseCase) Get(ctx context.Context, id string) (*entity.Advertising, error) {
	a, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, classify(err, "advertising", "load advertising")
	}
	return a, nil
}

func (uc *AdvertisingUseCase) List(ctx context.Context) ([]entity.Advertising, error) {
	list, err := uc.Repo.List(ctx)
	if err != nil {
		return nil, classify(err, "advertising", "list advertisements")
	}
	return list, nil
}
