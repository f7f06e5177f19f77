package usecase

import (
	"context"
	"errors"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type ContractUseCase struct {
	Repo      entity.ContractRepositoryInterface
	Blobs     BlobStore
	Validator ContractValidator
	logger    *zap.Logger
}

func NewContractUseCase(
	repo entity.ContractRepositoryInterface,
	services entity.ServiceRepositoryInterface,
	blobs BlobStore,
	now func() time.Time,
	logger *zap.Logger,
) *ContractUseCase {
	return &ContractUseCase{
		Repo:      repo,
		Blobs:     blobs,
		Validator: ContractValidator{Contracts: repo, Services: services, Now: now},
		logger:    logger,
	}
}

func (uc *ContractUseCase) Create(ctx context.Context, in ContractInput) (*entity.Contract, error) {
	errs, err := uc.Validator.Validate(ctx, in, nil)
	if err != nil {
		return nil, classify(err, "contract", "validate contract")
	}
	if len(errs) > 0 {
		return nil, invalid(errs)
	}

	var c *entity.Contract
	err = withDocument(ctx, uc.Blobs, uc.logger, in.Document, func(ctx context.Context, key string) error {
		c = newContract(in, key, uc.Validator.Now())
		return uc.Repo.Create(ctx, c)
	})
	if err != nil {
		return nil, classify(err, "contract", "create contract")
	}
	uc.logger.Info("contract created", zap.String("contract_id", c.ID), zap.String("name", c.Name))
	return c, nil
}

// Update keeps the start date. A new document replaces the stored one,
// which is removed once the row is saved.
func (uc *ContractUseCase) Update(ctx context.Context, id string, in ContractInput) (*entity.Contract, error) {
	c, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, classify(err, "contract", "load contract")
	}
	errs, err := uc.Validator.Validate(ctx, in, c)
	if err != nil {
		return nil, classify(err, "contract", "validate contract")
	}
	if len(errs) > 0 {
		return nil, invalid(errs)
	}

	oldDoc := c.Doc
	err = withDocument(ctx, uc.Blobs, uc.logger, in.Document, func(ctx context.Context, key string) error {
		applyContract(c, in, key)
		return uc.Repo.Update(ctx, c)
	})
	if err != nil {
		return nil, classify(err, "contract", "update contract")
	}
	if c.Doc != oldDoc {
		discardDocument(ctx, uc.Blobs, uc.logger, oldDoc)
	}
	return c, nil
}

// Delete removes the document before the row. A document that is already
// gone is logged and the row is deleted anyway.
func (uc *ContractUseCase) Delete(ctx context.Context, id string) error {
	c, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		return classify(err, "contract", "load contract")
	}

	if c.Doc != "" {
		err := uc.Blobs.Remove(ctx, c.Doc)
		switch {
		case errors.Is(err, entity.ErrBlobNotFound):
			uc.logger.Warn("contract document already missing",
				zap.String("contract_id", c.ID),
				zap.String("doc", c.Doc),
			)
		case err != nil:
			return classify(err, "contract", "remove contract document")
		}
	}

	if err := uc.Repo.Delete(ctx, id); err != nil {
		return classify(err, "contract", "delete contract")
	}
	uc.logger.Info("contract deleted", zap.String("contract_id", id))
	return nil
}

func (uc *ContractUseCase) Get(ctx context.Context, id string) (*entity.Contract, error) {
	c, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, classify(err, "contract", "load contract")
	}
	return c, nil
}

func (uc *ContractUseCase) List(ctx context.Context) ([]entity.Contract, error) {
	list, err := uc.Repo.List(ctx)
	if err != nil {
		return nil, classify(err, "contract", "list contracts")
	}
	return list, nil
}

// Document opens the signed document of a contract. The caller closes it.
func (uc *ContractUseCase) Document(ctx context.Context, id string) (io.ReadCloser, *entity.Contract, error) {
	c, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, classify(err, "contract", "load contract")
	}
	rc, err := uc.Blobs.Open(ctx, c.Doc)
	if errors.Is(err, entity.ErrBlobNotFound) {
		return nil, nil, notFound("document")
	}
	if err != nil {
		return nil, nil, classify(err, "document", "open contract document")
	}
	return rc, c, nil
}

func newContract(in ContractInput, docKey string, today time.Time) *entity.Contract {
	end, _ := time.Parse(entity.DateLayout, in.EndDate)
	return entity.NewContract(in.Name, in.ProductID, docKey, end, in.Cost, today)
}

func applyContract(c *entity.Contract, in ContractInput, docKey string) {
	end, _ := time.Parse(entity.DateLayout, in.EndDate)
	c.Name = in.Name
	c.ProductID = in.ProductID
	c.EndDate = entity.DateOf(end)
	c.Cost = in.Cost.Round(2)
	c.Product = nil
	if docKey != "" {
		c.Doc = docKey
	}
	c.UpdatedAt = time.Now()
}

// withDocument stores doc and runs persist with its key. The stored blob is
// removed again when persist fails. With a nil doc persist gets "".
func withDocument(
	ctx context.Context,
	blobs BlobStore,
	logger *zap.Logger,
	doc *Document,
	persist func(ctx context.Context, key string) error,
) error {
	saga := NewSaga(logger)
	var key string
	if doc != nil {
		saga.AddStep("store_document",
			func(ctx context.Context) error {
				k, err := blobs.Save(ctx, doc.Filename, doc.Body)
				key = k
				return err
			},
			func(ctx context.Context) error { return blobs.Remove(ctx, key) },
		)
	}
	saga.AddStep("persist", func(ctx context.Context) error { return persist(ctx, key) }, nil)
	return saga.Execute(ctx)
}

func discardDocument(ctx context.Context, blobs BlobStore, logger *zap.Logger, key string) {
	if key == "" {
		return
	}
	if err := blobs.Remove(context.WithoutCancel(ctx), key); err != nil && !errors.Is(err, entity.ErrBlobNotFound) {
		logger.Warn("failed to remove replaced document", zap.String("doc", key), zap.Error(err))
	}
}
