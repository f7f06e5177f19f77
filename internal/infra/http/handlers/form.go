package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/xavierca1/ligue-crm/internal/usecase"
)

const maxUploadBytes = 32 << 20

// parseForm accepts multipart bodies and plain urlencoded ones.
func parseForm(r *http.Request) error {
	err := r.ParseMultipartForm(maxUploadBytes)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		return invalidRequest(usecase.ValidationErrors{{Message: "Invalid form: " + err.Error()}})
	}
	return nil
}

// contractForm reads the contract fields. The returned file, if any, must
// be closed by the caller.
func contractForm(r *http.Request) (usecase.ContractInput, multipart.File, error) {
	in := usecase.ContractInput{
		Name:      strings.TrimSpace(r.FormValue("name")),
		ProductID: strings.TrimSpace(r.FormValue("product_id")),
		EndDate:   strings.TrimSpace(r.FormValue("end_date")),
	}

	var errs usecase.ValidationErrors
	raw := strings.TrimSpace(r.FormValue("cost"))
	if raw == "" {
		errs.Add("cost", "This field is required.")
	} else if cost, err := decimal.NewFromString(raw); err != nil {
		errs.Add("cost", "Enter a number.")
	} else {
		in.Cost = cost
	}
	if len(errs) > 0 {
		return in, nil, invalidRequest(errs)
	}

	if r.MultipartForm == nil {
		return in, nil, nil
	}
	file, header, err := r.FormFile("doc")
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil, nil
	}
	if err != nil {
		return in, nil, invalidRequest(usecase.ValidationErrors{{Field: "doc", Message: "Invalid file: " + err.Error()}})
	}
	in.Document = &usecase.Document{Filename: header.Filename, Body: file}
	return in, file, nil
}

func leadForm(r *http.Request) usecase.LeadInput {
	in := usecase.LeadInput{
		FirstName: strings.TrimSpace(r.FormValue("first_name")),
		LastName:  strings.TrimSpace(r.FormValue("last_name")),
		Phone:     strings.TrimSpace(r.FormValue("phone")),
		Email:     strings.TrimSpace(r.FormValue("email")),
	}
	if ads := strings.TrimSpace(r.FormValue("ads_id")); ads != "" {
		in.AdsID = &ads
	}
	return in
}

// customerForm reads one flat form holding the lead and contract fields.
func customerForm(r *http.Request) (usecase.CustomerInput, multipart.File, error) {
	if err := parseForm(r); err != nil {
		return usecase.CustomerInput{}, nil, err
	}
	contract, file, err := contractForm(r)
	if err != nil {
		return usecase.CustomerInput{}, nil, err
	}
	return usecase.CustomerInput{Lead: leadForm(r), Contract: contract}, file, nil
}
