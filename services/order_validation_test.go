package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/honda-dealer/models"
)

func validCashForm() OrderForm {
	return OrderForm{
		FullName:      "Budi Santoso",
		NikKK:         "3201010101010001",
		NikKTP:        "3201010101010002",
		BirthPlace:    "Bandung",
		BirthDate:     "1990-05-17",
		Occupation:    "Karyawan Swasta",
		Address:       "Jl. Merdeka No. 1, Bandung",
		Phone:         "081234567890",
		Email:         "budi@example.com",
		StnkName:      "Budi Santoso",
		SurveyAddress: "Jl. Merdeka No. 1, Bandung",
		MotorcycleID:  1,
		Color:         "Merah",

		FinancingMethod: models.FinancingCash,
	}
}

func validCreditForm() OrderForm {
	f := validCashForm()
	f.FinancingMethod = models.FinancingCredit
	f.DownPaymentPercent = 20
	f.LoanTerm = 24
	f.CoSigner = models.CoSigner{
		Name:         "Siti Aminah",
		Phone:        "081298765432",
		Relationship: "istri",
		NIK:          "3201010101010003",
		Address:      "Jl. Merdeka No. 1, Bandung",
	}
	return f
}

func fieldsOf(t *testing.T, err error) []string {
	t.Helper()
	var errs ValidationErrors
	require.ErrorAs(t, err, &errs)
	return errs.Fields()
}

func TestValidateNIK(t *testing.T) {
	assert.Nil(t, ValidateNIK("nik_ktp", "3201010101010001"))
	assert.NotNil(t, ValidateNIK("nik_ktp", "320101010101000"))
	assert.NotNil(t, ValidateNIK("nik_ktp", "32010101010100011"))
	assert.NotNil(t, ValidateNIK("nik_ktp", "32010101010100A1"))
	assert.NotNil(t, ValidateNIK("nik_ktp", ""))
}

func TestValidateOrderForm_Cash(t *testing.T) {
	assert.NoError(t, ValidateOrderForm(validCashForm()))

	// co-signer dan tenor diabaikan untuk tunai
	f := validCashForm()
	f.DownPaymentPercent = 15
	f.LoanTerm = 7
	assert.NoError(t, ValidateOrderForm(f))
}

func TestValidateOrderForm_Credit(t *testing.T) {
	assert.NoError(t, ValidateOrderForm(validCreditForm()))
}

func TestValidateOrderForm_MissingFields(t *testing.T) {
	f := validCashForm()
	f.FullName = "  "
	f.Color = ""
	f.MotorcycleID = 0

	err := ValidateOrderForm(f)
	assert.True(t, IsValidation(err))
	assert.ElementsMatch(t, []string{"customer_name", "color", "motorcycle_id"}, fieldsOf(t, err))
}

func TestValidateOrderForm_BadNIK(t *testing.T) {
	f := validCashForm()
	f.NikKTP = "12345"

	assert.Equal(t, []string{"nik_ktp"}, fieldsOf(t, ValidateOrderForm(f)))
}

func TestValidateOrderForm_CreditRequiresCoSigner(t *testing.T) {
	f := validCreditForm()
	f.CoSigner = models.CoSigner{}

	assert.ElementsMatch(t,
		[]string{"spouse_name", "spouse_phone", "spouse_nik", "spouse_address"},
		fieldsOf(t, ValidateOrderForm(f)))
}

func TestValidateOrderForm_CreditTerms(t *testing.T) {
	f := validCreditForm()
	f.DownPaymentPercent = 25
	f.LoanTerm = 48

	assert.ElementsMatch(t, []string{"down_payment_percent", "loan_term"}, fieldsOf(t, ValidateOrderForm(f)))
}

func TestValidateOrderForm_UnknownFinancing(t *testing.T) {
	f := validCashForm()
	f.FinancingMethod = "leasing"

	assert.Equal(t, []string{"payment_method"}, fieldsOf(t, ValidateOrderForm(f)))
}

func TestValidateCreditTerms(t *testing.T) {
	for _, dp := range DownPaymentOptions {
		for _, term := range TermOptions {
			assert.NoError(t, ValidateCreditTerms(dp, term))
		}
	}
	assert.Error(t, ValidateCreditTerms(0, 12))
	assert.Error(t, ValidateCreditTerms(20, 0))
}
