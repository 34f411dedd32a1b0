// Package engine holds the amortization and payment reconciliation rules. It never
// touches storage or the network: callers pass entities in and persist what comes back.
package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ExpertosTI/presta-pro-sub000/internal/domain"
	customError "github.com/ExpertosTI/presta-pro-sub000/pkg/errors"
	"github.com/ExpertosTI/presta-pro-sub000/pkg/utils"
)

var hundred = decimal.NewFromInt(100)

// LoanTerms are the inputs of a schedule.
type LoanTerms struct {
	Principal  decimal.Decimal
	AnnualRate decimal.Decimal // percent, 10 means 10%
	Term       int
	Frequency  domain.Frequency
	StartDate  time.Time
}

// Validate rejects terms no schedule can be built from.
func (t LoanTerms) Validate() error {
	if t.Term < 1 {
		return customError.WrapInvalidTerm(fmt.Sprintf("term must be at least 1, got %d", t.Term))
	}
	if !t.Principal.IsPositive() {
		return customError.WrapInvalidTerm(fmt.Sprintf("principal must be positive, got %s", t.Principal))
	}
	if !utils.IsMoney(t.Principal) {
		return customError.WrapInvalidTerm(fmt.Sprintf("principal must be whole cents, got %s", t.Principal))
	}
	if t.Principal.LessThan(minimumPrincipal(t.Term)) {
		return customError.WrapInvalidTerm(fmt.Sprintf("principal %s cannot cover one cent on each of %d installments", t.Principal, t.Term))
	}
	if t.AnnualRate.IsNegative() {
		return customError.WrapInvalidTerm(fmt.Sprintf("rate must not be negative, got %s", t.AnnualRate))
	}
	if !t.Frequency.Valid() {
		return customError.WrapInvalidTerm(fmt.Sprintf("unknown frequency %q", t.Frequency))
	}
	return nil
}

// PeriodRate converts the annual percent into the per-installment rate.
func (t LoanTerms) PeriodRate() decimal.Decimal {
	return t.AnnualRate.Div(hundred).Div(decimal.NewFromInt(int64(t.Frequency.PeriodsPerYear())))
}

// Generate builds a fixed-installment (French) schedule.
//
// Interest is rounded to cents every period and the level payment is rounded once, so the
// last installment absorbs the accumulated rounding: it retires the exact remaining
// balance plus its own interest. That keeps sum(principal) == principal exactly.
// When the rounded payment would retire the balance early, principal is capped so every
// later installment still carries at least one cent of it.
// Installments come back without IDs; NewLoan assigns them.
func Generate(terms LoanTerms) ([]*domain.Installment, error) {
	if err := terms.Validate(); err != nil {
		return nil, err
	}

	rate := terms.PeriodRate()
	payment := utils.CalculateAnnuityPayment(terms.Principal, rate, terms.Term)
	days := terms.Frequency.DaysPerPeriod()
	start := utils.StartOfDay(terms.StartDate)

	schedule := make([]*domain.Installment, 0, terms.Term)
	balance := terms.Principal

	for n := 1; n <= terms.Term; n++ {
		interest := utils.RoundMoney(balance.Mul(rate))
		principal := payment.Sub(interest)

		if n == terms.Term {
			principal = balance
		} else if limit := balance.Sub(minimumPrincipal(terms.Term - n)); principal.GreaterThan(limit) {
			principal = limit
		}

		amount := principal.Add(interest)
		balance = balance.Sub(principal)

		schedule = append(schedule, &domain.Installment{
			Number:     n,
			Date:       utils.CalculateDueDate(start, n, days),
			Payment:    amount,
			Interest:   interest,
			Principal:  principal,
			Balance:    balance,
			Status:     domain.InstallmentStatusPending,
			PaidAmount: decimal.Zero,
		})
	}

	return schedule, nil
}

// minimumPrincipal is one cent per installment.
func minimumPrincipal(installments int) decimal.Decimal {
	return utils.RoundingTolerance.Mul(decimal.NewFromInt(int64(installments)))
}

// NewLoan generates the schedule for terms and wraps it in an ACTIVE loan.
// Installment IDs are derived from the loan ID and number, so regenerating a loan
// yields the same IDs.
func NewLoan(id, clientID string, terms LoanTerms, createdAt time.Time) (*domain.Loan, error) {
	if id == "" {
		return nil, customError.WrapInvalidTerm("loan id is required")
	}
	if clientID == "" {
		return nil, customError.WrapInvalidTerm("client id is required")
	}

	schedule, err := Generate(terms)
	if err != nil {
		return nil, err
	}

	totalInterest := decimal.Zero
	for _, inst := range schedule {
		inst.ID = InstallmentID(id, inst.Number)
		inst.LoanID = id
		totalInterest = totalInterest.Add(inst.Interest)
	}

	return &domain.Loan{
		ID:            id,
		ClientID:      clientID,
		Amount:        terms.Principal,
		Rate:          terms.AnnualRate,
		Term:          terms.Term,
		Frequency:     terms.Frequency,
		StartDate:     utils.StartOfDay(terms.StartDate),
		Status:        domain.LoanStatusActive,
		Schedule:      schedule,
		TotalInterest: totalInterest,
		TotalPaid:     decimal.Zero,
		TotalPenalty:  decimal.Zero,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}, nil
}

// InstallmentID is the stable ID of installment number n of a loan.
func InstallmentID(loanID string, n int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s/%d", loanID, n))).String()
}
