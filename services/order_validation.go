package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/yeremiapane/honda-dealer/models"
)

var nikPattern = regexp.MustCompile(`^[0-9]{16}$`)

// OrderForm is what the buyer fills in on the form step.
type OrderForm struct {
	FullName       string `json:"customer_name"`
	Nickname       string `json:"nickname"`
	NikKK          string `json:"nik_kk"`
	NikKTP         string `json:"nik_ktp"`
	BirthPlace     string `json:"birth_place"`
	BirthDate      string `json:"birth_date"`
	Occupation     string `json:"occupation"`
	Address        string `json:"address"`
	Phone          string `json:"customer_phone"`
	Email          string `json:"customer_email"`
	StnkName       string `json:"stnk_name"`
	SurveyAddress  string `json:"survey_address"`
	EmergencyPhone string `json:"emergency_phone"`

	MotorcycleID uint   `json:"motorcycle_id"`
	Color        string `json:"color"`

	FinancingMethod    models.FinancingMethod `json:"payment_method"`
	DownPaymentPercent int                    `json:"down_payment_percent"`
	LoanTerm           int                    `json:"loan_term"`

	CoSigner models.CoSigner `json:"co_signer"`
}

// ValidateNIK checks the 16 digit national identity number format.
func ValidateNIK(field, nik string) *ValidationError {
	if !nikPattern.MatchString(nik) {
		return &ValidationError{Field: field, Message: "NIK harus 16 digit"}
	}
	return nil
}

// ValidateCreditTerms rejects down payment percentages and terms outside the offered options.
func ValidateCreditTerms(downPaymentPercent, termMonths int) error {
	var errs ValidationErrors
	if !containsInt(DownPaymentOptions, downPaymentPercent) {
		errs = append(errs, &ValidationError{
			Field:   "down_payment_percent",
			Message: fmt.Sprintf("must be one of %v", DownPaymentOptions),
		})
	}
	if !containsInt(TermOptions, termMonths) {
		errs = append(errs, &ValidationError{
			Field:   "loan_term",
			Message: fmt.Sprintf("must be one of %v", TermOptions),
		})
	}
	return errs.orNil()
}

// ValidateOrderForm runs every local rule of the form step. For cash purchases the
// co-signer and credit terms are ignored.
func ValidateOrderForm(form OrderForm) error {
	var errs ValidationErrors

	required := []struct {
		field string
		value string
	}{
		{"customer_name", form.FullName},
		{"nik_kk", form.NikKK},
		{"nik_ktp", form.NikKTP},
		{"birth_place", form.BirthPlace},
		{"birth_date", form.BirthDate},
		{"occupation", form.Occupation},
		{"address", form.Address},
		{"customer_phone", form.Phone},
		{"stnk_name", form.StnkName},
		{"color", form.Color},
		{"survey_address", form.SurveyAddress},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = append(errs, &ValidationError{Field: r.field, Message: "wajib diisi"})
		}
	}

	if form.NikKK != "" {
		if err := ValidateNIK("nik_kk", form.NikKK); err != nil {
			errs = append(errs, err)
		}
	}
	if form.NikKTP != "" {
		if err := ValidateNIK("nik_ktp", form.NikKTP); err != nil {
			errs = append(errs, err)
		}
	}

	if form.MotorcycleID == 0 {
		errs = append(errs, &ValidationError{Field: "motorcycle_id", Message: "wajib diisi"})
	}

	switch form.FinancingMethod {
	case models.FinancingCash:
	case models.FinancingCredit:
		errs = append(errs, validateCoSigner(form.CoSigner)...)
		if err := ValidateCreditTerms(form.DownPaymentPercent, form.LoanTerm); err != nil {
			errs = append(errs, err.(ValidationErrors)...)
		}
	default:
		errs = append(errs, &ValidationError{Field: "payment_method", Message: "must be cash or credit"})
	}

	return errs.orNil()
}

func validateCoSigner(c models.CoSigner) ValidationErrors {
	var errs ValidationErrors
	required := []struct {
		field string
		value string
	}{
		{"spouse_name", c.Name},
		{"spouse_phone", c.Phone},
		{"spouse_nik", c.NIK},
		{"spouse_address", c.Address},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = append(errs, &ValidationError{Field: r.field, Message: "wajib diisi untuk kredit"})
		}
	}
	if c.NIK != "" {
		if err := ValidateNIK("spouse_nik", c.NIK); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func containsInt(options []int, v int) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}
