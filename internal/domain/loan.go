package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanStatus is the lifecycle state of a loan. PAID is terminal.
type LoanStatus string

const (
	LoanStatusActive LoanStatus = "ACTIVE"
	LoanStatusPaid   LoanStatus = "PAID"
)

// Frequency is how often installments fall due.
type Frequency string

const (
	FrequencyDaily    Frequency = "daily"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
)

// PeriodsPerYear returns the compounding periods per year, or 0 for an unknown frequency.
func (f Frequency) PeriodsPerYear() int {
	switch f {
	case FrequencyDaily:
		return 365
	case FrequencyWeekly:
		return 52
	case FrequencyBiweekly:
		return 24
	case FrequencyMonthly:
		return 12
	default:
		return 0
	}
}

// DaysPerPeriod is a calendar approximation: a month is always 30 days.
func (f Frequency) DaysPerPeriod() int {
	switch f {
	case FrequencyDaily:
		return 1
	case FrequencyWeekly:
		return 7
	case FrequencyBiweekly:
		return 15
	case FrequencyMonthly:
		return 30
	default:
		return 0
	}
}

func (f Frequency) Valid() bool {
	return f.PeriodsPerYear() > 0
}

// Loan represents a loan entity. Its Schedule is owned exclusively by the loan and is
// only mutated through the payment processor.
type Loan struct {
	ID            string          `json:"id" db:"id"`
	ClientID      string          `json:"clientId" db:"client_id"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	Rate          decimal.Decimal `json:"rate" db:"rate"`
	Term          int             `json:"term" db:"term"`
	Frequency     Frequency       `json:"frequency" db:"frequency"`
	StartDate     time.Time       `json:"startDate" db:"start_date"`
	Status        LoanStatus      `json:"status" db:"status"`
	Schedule      []*Installment  `json:"schedule" db:"-"`
	TotalInterest decimal.Decimal `json:"totalInterest" db:"total_interest"`
	TotalPaid     decimal.Decimal `json:"totalPaid" db:"total_paid"`
	TotalPenalty  decimal.Decimal `json:"totalPenalty" db:"total_penalty"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`
}

// TotalDue is principal plus all scheduled interest.
func (l *Loan) TotalDue() decimal.Decimal {
	return l.Amount.Add(l.TotalInterest)
}

// AppliedToDebt is the part of TotalPaid that retired principal or interest.
// Penalties are collected on top of the debt and never reduce it.
func (l *Loan) AppliedToDebt() decimal.Decimal {
	return l.TotalPaid.Sub(l.TotalPenalty)
}

// RemainingBalance = (principal + total interest) - amounts applied to debt.
func (l *Loan) RemainingBalance() decimal.Decimal {
	return l.TotalDue().Sub(l.AppliedToDebt())
}

// PercentPaid is the share of TotalDue already applied, 0..100 with two decimals.
func (l *Loan) PercentPaid() decimal.Decimal {
	due := l.TotalDue()
	if due.IsZero() {
		return decimal.Zero
	}
	pct := l.AppliedToDebt().Div(due).Mul(decimal.NewFromInt(100)).Round(2)
	if pct.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.NewFromInt(100)
	}
	return pct
}

func (l *Loan) PaidCount() int {
	n := 0
	for _, inst := range l.Schedule {
		if inst.IsPaid() {
			n++
		}
	}
	return n
}

// NextPending returns the lowest-numbered unpaid installment, or nil when none is left.
func (l *Loan) NextPending() *Installment {
	for _, inst := range l.Schedule {
		if !inst.IsPaid() {
			return inst
		}
	}
	return nil
}

func (l *Loan) InstallmentByID(id string) *Installment {
	for _, inst := range l.Schedule {
		if inst.ID == id {
			return inst
		}
	}
	return nil
}

func (l *Loan) AllPaid() bool {
	if len(l.Schedule) == 0 {
		return false
	}
	for _, inst := range l.Schedule {
		if !inst.IsPaid() {
			return false
		}
	}
	return true
}

// DTOs for requests and responses

type CreateLoanRequest struct {
	ID        string          `json:"id"`
	ClientID  string          `json:"clientId" validate:"required"`
	Amount    decimal.Decimal `json:"amount" validate:"gt=0"`
	Rate      decimal.Decimal `json:"rate" validate:"gte=0"`
	Term      int             `json:"term" validate:"required,gt=0"`
	Frequency Frequency       `json:"frequency" validate:"required,oneof=daily weekly biweekly monthly"`
	StartDate time.Time       `json:"startDate" validate:"required"`
}

type CreateClientRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name" validate:"required"`
	Address     string `json:"address" validate:"required"`
	Phone       string `json:"phone"`
	CollectorID string `json:"collectorId" validate:"required"`
}

type OutstandingResponse struct {
	LoanID      string          `json:"loanId"`
	Outstanding decimal.Decimal `json:"outstanding"`
	TotalPaid   decimal.Decimal `json:"totalPaid"`
	PercentPaid decimal.Decimal `json:"percentPaid"`
	PaidCount   int             `json:"paidCount"`
	Term        int             `json:"term"`
	Status      LoanStatus      `json:"status"`
}

type DelinquentResponse struct {
	LoanID       string `json:"loanId"`
	IsDelinquent bool   `json:"isDelinquent"`
	MissedCount  int    `json:"missedCount"`
}
