package usecase

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/queue"
)

const (
	originCreate  = "create"
	originConvert = "convert"
)

// CustomerUseCase runs the lead to customer workflows. Each workflow
// validates first, then writes the lead, contract and customer in one
// transaction; the storage constraints are the final word on uniqueness.
type CustomerUseCase struct {
	Tx        TxManager
	Leads     entity.LeadRepositoryInterface
	Contracts entity.ContractRepositoryInterface
	Customers entity.CustomerRepositoryInterface
	Blobs     BlobStore
	Events    EventPublisher // optional

	LeadValidator     LeadValidator
	ContractValidator ContractValidator

	Now    func() time.Time
	logger *zap.Logger
}

type CustomerDeps struct {
	Tx        TxManager
	Leads     entity.LeadRepositoryInterface
	Ads       entity.AdvertisingRepositoryInterface
	Services  entity.ServiceRepositoryInterface
	Contracts entity.ContractRepositoryInterface
	Customers entity.CustomerRepositoryInterface
	Blobs     BlobStore
	Events    EventPublisher
	Now       func() time.Time
}

func NewCustomerUseCase(deps CustomerDeps, logger *zap.Logger) *CustomerUseCase {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &CustomerUseCase{
		Tx:                deps.Tx,
		Leads:             deps.Leads,
		Contracts:         deps.Contracts,
		Customers:         deps.Customers,
		Blobs:             deps.Blobs,
		Events:            deps.Events,
		LeadValidator:     LeadValidator{Leads: deps.Leads, Ads: deps.Ads},
		ContractValidator: ContractValidator{Contracts: deps.Contracts, Services: deps.Services, Now: now},
		Now:               now,
		logger:            logger,
	}
}

// Create registers a customer from one submission: the lead is reused when
// an identical one exists and inserted otherwise.
func (uc *CustomerUseCase) Create(ctx context.Context, in CustomerInput) (*entity.Customer, error) {
	errs, err := uc.LeadValidator.Validate(ctx, in.Lead, nil)
	if err != nil {
		return nil, classify(err, "lead", "validate lead")
	}
	contractErrs, err := uc.ContractValidator.Validate(ctx, in.Contract, nil)
	if err != nil {
		return nil, classify(err, "contract", "validate contract")
	}
	if errs = append(errs, contractErrs...); len(errs) > 0 {
		return nil, invalid(errs)
	}

	var customer *entity.Customer
	err = withDocument(ctx, uc.Blobs, uc.logger, in.Contract.Document, func(ctx context.Context, key string) error {
		return uc.Tx.WithinTx(ctx, func(ctx context.Context) error {
			lead, err := uc.getOrCreateLead(ctx, in.Lead)
			if err != nil {
				return err
			}
			customer, err = uc.link(ctx, lead, in.Contract, key)
			return err
		})
	})
	if err != nil {
		return nil, uc.fail(err, "create customer")
	}

	uc.logger.Info("customer created",
		zap.String("customer_id", customer.ID),
		zap.String("lead_id", customer.LeadID),
		zap.String("contract_id", customer.ContractID),
	)
	uc.notify(ctx, customer, originCreate)
	return customer, nil
}

// ConvertLead turns an existing lead into a customer, updating the lead
// with the submitted values.
func (uc *CustomerUseCase) ConvertLead(ctx context.Context, leadID string, in CustomerInput) (*entity.Customer, error) {
	lead, err := uc.Leads.FindByID(ctx, leadID)
	if err != nil {
		return nil, classify(err, "lead", "load lead")
	}
	converted, err := exists(func() error { _, err := uc.Customers.FindByLeadID(ctx, leadID); return err })
	if err != nil {
		return nil, classify(err, "customer", "load customer")
	}
	if converted {
		return nil, classify(entity.ErrLeadConverted, "lead", "convert lead")
	}

	errs, err := uc.LeadValidator.Validate(ctx, in.Lead, lead)
	if err != nil {
		return nil, classify(err, "lead", "validate lead")
	}
	contractErrs, err := uc.ContractValidator.Validate(ctx, in.Contract, nil)
	if err != nil {
		return nil, classify(err, "contract", "validate contract")
	}
	if errs = append(errs, contractErrs...); len(errs) > 0 {
		return nil, invalid(errs)
	}

	var customer *entity.Customer
	err = withDocument(ctx, uc.Blobs, uc.logger, in.Contract.Document, func(ctx context.Context, key string) error {
		return uc.Tx.WithinTx(ctx, func(ctx context.Context) error {
			applyLead(lead, in.Lead)
			if err := uc.Leads.Update(ctx, lead); err != nil {
				return err
			}
			var err error
			customer, err = uc.link(ctx, lead, in.Contract, key)
			return err
		})
	})
	if err != nil {
		return nil, uc.fail(err, "convert lead")
	}

	uc.logger.Info("lead converted",
		zap.String("customer_id", customer.ID),
		zap.String("lead_id", lead.ID),
	)
	uc.notify(ctx, customer, originConvert)
	return customer, nil
}

// Update rewrites the customer's lead and contract. The customer keeps
// both links and the contract keeps its start date.
func (uc *CustomerUseCase) Update(ctx context.Context, id string, in CustomerInput) (*entity.Customer, error) {
	customer, err := uc.Customers.FindByID(ctx, id)
	if err != nil {
		return nil, classify(err, "customer", "load customer")
	}
	lead, contract := customer.Lead, customer.Contract
	if lead == nil || contract == nil {
		return nil, classify(errors.New("customer loaded without lead or contract"), "customer", "load customer")
	}

	errs, err := uc.LeadValidator.ValidateInPlace(ctx, in.Lead)
	if err != nil {
		return nil, classify(err, "lead", "validate lead")
	}
	contractErrs, err := uc.ContractValidator.Validate(ctx, in.Contract, contract)
	if err != nil {
		return nil, classify(err, "contract", "validate contract")
	}
	if errs = append(errs, contractErrs...); len(errs) > 0 {
		return nil, invalid(errs)
	}

	oldDoc := contract.Doc
	err = withDocument(ctx, uc.Blobs, uc.logger, in.Contract.Document, func(ctx context.Context, key string) error {
		return uc.Tx.WithinTx(ctx, func(ctx context.Context) error {
			applyLead(lead, in.Lead)
			if err := uc.Leads.Update(ctx, lead); err != nil {
				return err
			}
			applyContract(contract, in.Contract, key)
			return uc.Contracts.Update(ctx, contract)
		})
	})
	if err != nil {
		return nil, uc.fail(err, "update customer")
	}
	if contract.Doc != oldDoc {
		discardDocument(ctx, uc.Blobs, uc.logger, oldDoc)
	}

	customer.UpdatedAt = time.Now()
	uc.logger.Info("customer updated", zap.String("customer_id", customer.ID))
	return customer, nil
}

// Delete removes the customer record only; the lead and contract stay.
func (uc *CustomerUseCase) Delete(ctx context.Context, id string) error {
	if err := uc.Customers.Delete(ctx, id); err != nil {
		return classify(err, "customer", "delete customer")
	}
	return nil
}

func (uc *CustomerUseCase) Get(ctx context.Context, id string) (*entity.Customer, error) {
	c, err := uc.Customers.FindByID(ctx, id)
	if err != nil {
		return nil, classify(err, "customer", "load customer")
	}
	return c, nil
}

func (uc *CustomerUseCase) List(ctx context.Context) ([]entity.Customer, error) {
	list, err := uc.Customers.List(ctx)
	if err != nil {
		return nil, classify(err, "customer", "list customers")
	}
	return list, nil
}

func (uc *CustomerUseCase) getOrCreateLead(ctx context.Context, in LeadInput) (*entity.Lead, error) {
	lead := entity.NewLead(in.FirstName, in.LastName, in.Phone, in.Email, in.AdsID)
	existing, err := uc.Leads.FindMatching(ctx, lead)
	switch {
	case err == nil:
		return existing, nil
	case !errors.Is(err, entity.ErrNotFound):
		return nil, err
	}
	if err := uc.Leads.Create(ctx, lead); err != nil {
		return nil, err
	}
	return lead, nil
}

// link creates the contract and the customer joining it to lead.
func (uc *CustomerUseCase) link(ctx context.Context, lead *entity.Lead, in ContractInput, docKey string) (*entity.Customer, error) {
	contract := newContract(in, docKey, uc.Now())
	if err := uc.Contracts.Create(ctx, contract); err != nil {
		return nil, err
	}
	customer, err := entity.NewCustomer(lead.ID, contract.ID)
	if err != nil {
		return nil, err
	}
	if err := uc.Customers.Create(ctx, customer); err != nil {
		return nil, err
	}
	customer.Lead, customer.Contract = lead, contract
	return customer, nil
}

func (uc *CustomerUseCase) fail(err error, op string) error {
	if c, ok := entity.AsConflict(err); ok {
		uc.logger.Warn("workflow rolled back on unique violation",
			zap.String("operation", op),
			zap.String("constraint", c.Constraint),
			zap.String("field", c.Field),
		)
	}
	return classify(err, "customer", op)
}

// notify publishes the conversion event. Failures are logged; the
// customer is already committed.
func (uc *CustomerUseCase) notify(ctx context.Context, c *entity.Customer, origin string) {
	if uc.Events == nil {
		return
	}
	payload := queue.CustomerConvertedPayload{
		CustomerID:   c.ID,
		LeadID:       c.LeadID,
		ContractID:   c.ContractID,
		Origin:       origin,
		FirstName:    c.Lead.FirstName,
		LastName:     c.Lead.LastName,
		Email:        c.Lead.Email,
		Phone:        c.Lead.Phone,
		AdsID:        c.Lead.AdsID,
		ContractName: c.Contract.Name,
		Cost:         c.Contract.Cost.StringFixed(2),
		StartDate:    c.Contract.StartDate.Format(entity.DateLayout),
		EndDate:      c.Contract.EndDate.Format(entity.DateLayout),
	}
	if err := uc.Events.PublishCustomerConverted(ctx, payload); err != nil {
		uc.logger.Warn("failed to publish customer converted event",
			zap.String("customer_id", c.ID),
			zap.Error(err),
		)
	}
}
