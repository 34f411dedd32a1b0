package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ExpertosTI/presta-pro-sub000/pkg/utils"
)

type InstallmentStatus string

const (
	InstallmentStatusPending InstallmentStatus = "PENDING"
	InstallmentStatusPaid    InstallmentStatus = "PAID"
)

// Installment is one scheduled payment obligation. Payment, Interest, Principal and
// Balance are fixed at generation; only Status, PaidAmount and PaidDate change.
type Installment struct {
	ID         string            `json:"id" db:"id"`
	LoanID     string            `json:"-" db:"loan_id"`
	Number     int               `json:"number" db:"number"`
	Date       time.Time         `json:"date" db:"due_date"`
	Payment    decimal.Decimal   `json:"payment" db:"payment"`
	Interest   decimal.Decimal   `json:"interest" db:"interest"`
	Principal  decimal.Decimal   `json:"principal" db:"principal"`
	Balance    decimal.Decimal   `json:"balance" db:"balance"`
	Status     InstallmentStatus `json:"status" db:"status"`
	PaidAmount decimal.Decimal   `json:"paidAmount" db:"paid_amount"`
	PaidDate   *time.Time        `json:"paidDate" db:"paid_date"`
}

func (i *Installment) IsPaid() bool {
	return i.Status == InstallmentStatusPaid
}

// DaysLate is 0 for paid installments and for ones not yet past due.
func (i *Installment) DaysLate(now time.Time) int {
	if i.IsPaid() {
		return 0
	}
	return utils.DaysLate(i.Date, now)
}

type ScheduleResponse struct {
	LoanID   string         `json:"loanId"`
	Schedule []*Installment `json:"schedule"`
}
