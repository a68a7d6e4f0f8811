package services

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/yeremiapane/honda-dealer/models"
)

// Dealer financing policy.
const (
	AnnualInterestRate = 8.5 // percent, fixed nominal
	AdminFee           = 1_500_000
	CashDiscount       = 2_000_000
)

var (
	DownPaymentOptions = []int{10, 20, 30, 40}
	TermOptions        = []int{12, 24, 36}
)

// CreditResult is derived on demand and never persisted. Amounts are whole rupiah.
type CreditResult struct {
	DownPaymentAmount  int64 `json:"down_payment_amount"`
	LoanAmount         int64 `json:"loan_amount"`
	MonthlyInstallment int64 `json:"monthly_installment"`
	TotalInterest      int64 `json:"total_interest"`
	TotalPayment       int64 `json:"total_payment"`
}

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// CalculateCredit computes the amortized installment at AnnualInterestRate.
// Callers validate downPaymentPercent and termMonths with ValidateCreditTerms first.
func CalculateCredit(price int64, downPaymentPercent, termMonths int) CreditResult {
	return CalculateCreditWithRate(price, downPaymentPercent, termMonths, decimal.NewFromFloat(AnnualInterestRate))
}

// CalculateCreditWithRate is CalculateCredit with an explicit annual rate in percent.
//
// A zero rate falls back to straight-line division of the loan over the term. A zero term
// yields no installment: the loan is due at once and the total payment equals the price.
func CalculateCreditWithRate(price int64, downPaymentPercent, termMonths int, annualRate decimal.Decimal) CreditResult {
	p := decimal.NewFromInt(price)
	dp := roundRupiah(p.Mul(decimal.NewFromInt(int64(downPaymentPercent))).Div(hundred))
	loan := p.Sub(dp)
	monthlyRate := annualRate.Div(hundred).Div(twelve)
	term := decimal.NewFromInt(int64(termMonths))

	installment := decimal.Zero
	switch {
	case termMonths <= 0:
		// nothing financed over time
	case monthlyRate.IsPositive():
		factor := compound(monthlyRate, termMonths)
		installment = loan.Mul(monthlyRate).Mul(factor).DivRound(factor.Sub(decimal.NewFromInt(1)), 16)
	default:
		installment = loan.DivRound(term, 16)
	}

	totalPayment := installment.Mul(term).Add(dp)
	if termMonths <= 0 {
		totalPayment = p
	}

	return CreditResult{
		DownPaymentAmount:  dp.IntPart(),
		LoanAmount:         loan.IntPart(),
		MonthlyInstallment: roundRupiah(installment).IntPart(),
		TotalInterest:      roundRupiah(totalPayment.Sub(p)).IntPart(),
		TotalPayment:       roundRupiah(totalPayment).IntPart(),
	}
}

// compound returns (1+rate)^n by repeated multiplication so the result does not depend on
// floating point pow.
func compound(rate decimal.Decimal, n int) decimal.Decimal {
	base := decimal.NewFromInt(1).Add(rate)
	result := decimal.NewFromInt(1)
	for i := 0; i < n; i++ {
		result = result.Mul(base).Round(24)
	}
	return result
}

// roundRupiah rounds half-up to whole rupiah. Amounts here are never negative except
// TotalInterest at a zero rate, which is exactly zero.
func roundRupiah(d decimal.Decimal) decimal.Decimal {
	return d.Round(0)
}

// CashTotal is the amount due for a cash purchase.
func CashTotal(price int64) int64 {
	return price + AdminFee - CashDiscount
}

// AmountDue is the fixed amount of the payment instruction for order:
// the down payment for credit, the cash total for cash.
func AmountDue(order *models.Order) int64 {
	if order.IsCredit() && order.DownPaymentPercent != nil {
		term := 0
		if order.LoanTerm != nil {
			term = *order.LoanTerm
		}
		return CalculateCredit(order.TotalPrice, *order.DownPaymentPercent, term).DownPaymentAmount
	}
	return CashTotal(order.TotalPrice)
}

// Installment is one row of an amortization schedule.
type Installment struct {
	Number    int       `json:"installment"`
	DueDate   time.Time `json:"due_date"`
	Amount    int64     `json:"amount"`
	Principal int64     `json:"principal"`
	Interest  int64     `json:"interest"`
	Balance   int64     `json:"remaining_balance"`
}

// AmortizationSchedule splits each monthly installment of result into interest and principal.
// Installment i is due i months after start. The final row absorbs rounding drift so the
// balance ends at zero.
func AmortizationSchedule(result CreditResult, termMonths int, start time.Time) []Installment {
	if termMonths <= 0 || result.LoanAmount <= 0 {
		return nil
	}

	monthlyRate := decimal.NewFromFloat(AnnualInterestRate).Div(hundred).Div(twelve)
	balance := result.LoanAmount
	schedule := make([]Installment, 0, termMonths)

	for i := 1; i <= termMonths; i++ {
		interest := roundRupiah(decimal.NewFromInt(balance).Mul(monthlyRate)).IntPart()
		amount := result.MonthlyInstallment
		principal := amount - interest
		if i == termMonths || principal > balance {
			principal = balance
			amount = principal + interest
		}
		balance -= principal

		schedule = append(schedule, Installment{
			Number:    i,
			DueDate:   start.AddDate(0, i, 0),
			Amount:    amount,
			Principal: principal,
			Interest:  interest,
			Balance:   balance,
		})
	}
	return schedule
}
