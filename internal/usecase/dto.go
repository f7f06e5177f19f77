package usecase

import (
	"io"

	"github.com/shopspring/decimal"
)

type ServiceInput struct {
	Name        string          `json:"name" validate:"required,max=100"`
	Description string          `json:"description"`
	Cost        decimal.Decimal `json:"cost"`
}

type AdvertisingInput struct {
	Name      string          `json:"name" validate:"required,max=100"`
	Channel   string          `json:"channel" validate:"required,max=100"`
	Budget    decimal.Decimal `json:"budget"`
	ProductID string          `json:"product_id" validate:"required,uuid"`
}

type LeadInput struct {
	FirstName string  `json:"first_name" validate:"required,max=100"`
	LastName  string  `json:"last_name" validate:"required,max=100"`
	Phone     string  `json:"phone" validate:"required,max=20"`
	Email     string  `json:"email" validate:"required,email,max=254"`
	AdsID     *string `json:"ads_id" validate:"omitempty,uuid"`
}

// Document is an uploaded contract file.
type Document struct {
	Filename string
	Body     io.Reader
}

// ContractInput carries EndDate in DateLayout form. Document may be nil
// on update to keep the stored file.
type ContractInput struct {
	Name      string          `json:"name" validate:"required,max=100"`
	ProductID string          `json:"product_id" validate:"required,uuid"`
	EndDate   string          `json:"end_date" validate:"required,datetime=2006-01-02"`
	Cost      decimal.Decimal `json:"cost"`
	Document  *Document       `json:"-"`
}

// CustomerInput is one submission carrying both the lead and the contract.
type CustomerInput struct {
	Lead     LeadInput
	Contract ContractInput
}
