package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type ServiceUseCase struct {
	Repo   entity.ServiceRepositoryInterface
	logger *zap.Logger
}

func NewServiceUseCase(repo entity.ServiceRepositoryInterface, logger *zap.Logger) *ServiceUseCase {
	return &ServiceUseCase{Repo: repo, logger: logger}
}

func validateService(in ServiceInput) ValidationErrors {
	errs := structErrors(in)
	if in.Cost.IsNegative() {
		errs.Add("cost", "Ensure this value is greater than or equal to 0.")
	}
	return errs
}

func (uc *ServiceUseCase) Create(ctx context.Context, in ServiceInput) (*entity.Service, error) {
	if errs := validateService(in); len(errs) > 0 {
		return nil, invalid(errs)
	}
	s := entity.NewService(in.Name, in.Description, in.Cost)
	if err := uc.Repo.Create(ctx, s); err != nil {
		return nil, classify(err, "service", "create service")
	}
	uc.logger.Info("service created", zap.String("service_id", s.ID))
	return s, nil
}

func (uc *ServiceUseCase) Update(ctx context.Context, id string, in ServiceInput) (*entity.Service, error) {
	if errs := validateService(in); len(errs) > 0 {
		return nil, invalid(errs)
	}
	s, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, classify(err, "service", "load service")
	}
	s.Name, s.Description, s.Cost = in.Name, in.Description, in.Cost.Round(2)
	s.UpdatedAt = time.Now()
	if err := uc.Repo.Update(ctx, s); err != nil {
		return nil, classify(err, "service", "update service")
	}
	return s, nil
}

// Delete also removes the campaigns and contracts of the service.
func (uc *ServiceUseCase) Delete(ctx context.Context, id string) error {
	if err := uc.Repo.Delete(ctx, id); err != nil {
		return classify(err, "service", "delete service")
	}
	uc.logger.Info("service deleted", zap.String("service_id", id))
	return nil
}

func (uc *ServiceUseCase) Get(ctx context.Context, id string) (*entity.Service, error) {
	s, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, classify(err, "service", "load service")
	}
	return s, nil
}

func (uc *ServiceUseCase) List(ctx context.Context) ([]entity.Service, error) {
	list, err := uc.Repo.List(ctx)
	if err != nil {
		return nil, classify(err, "service", "list services")
	}
	return list, nil
}
