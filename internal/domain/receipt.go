package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Receipt is the immutable record of one successful payment application.
type Receipt struct {
	ID                string          `json:"id" db:"id"`
	Date              time.Time       `json:"date" db:"date"`
	LoanID            string          `json:"loanId" db:"loan_id"`
	ClientID          string          `json:"clientId" db:"client_id"`
	ClientName        string          `json:"clientName" db:"client_name"`
	CollectorID       string          `json:"collectorId" db:"collector_id"`
	InstallmentID     string          `json:"installmentId" db:"installment_id"`
	InstallmentNumber int             `json:"installmentNumber" db:"installment_number"`
	ScheduledAmount   decimal.Decimal `json:"scheduledAmount" db:"scheduled_amount"`
	Amount            decimal.Decimal `json:"amount" db:"amount"`
	PenaltyAmount     decimal.Decimal `json:"penaltyAmount" db:"penalty_amount"`
	RemainingBalance  decimal.Decimal `json:"remainingBalance" db:"remaining_balance"`
}

// Total is the cash collected for this receipt: base amount plus penalty.
func (r *Receipt) Total() decimal.Decimal {
	return r.Amount.Add(r.PenaltyAmount)
}

// Branding holds display-only fields for rendering collaborators.
type Branding struct {
	CompanyName string
	LogoURL     string
}

// ReceiptExport is the contract handed to ticket/PDF/digital-receipt renderers.
type ReceiptExport struct {
	ID                string          `json:"id"`
	Date              time.Time       `json:"date"`
	LoanID            string          `json:"loanId"`
	ClientID          string          `json:"clientId"`
	ClientName        string          `json:"clientName"`
	InstallmentNumber int             `json:"installmentNumber"`
	Amount            decimal.Decimal `json:"amount"`
	PenaltyAmount     decimal.Decimal `json:"penaltyAmount"`
	RemainingBalance  decimal.Decimal `json:"remainingBalance"`
	CompanyName       string          `json:"companyName,omitempty"`
	LogoURL           string          `json:"logoUrl,omitempty"`
}

type CollectPaymentRequest struct {
	LoanID        string           `json:"-"`
	InstallmentID string           `json:"installmentId" validate:"required"`
	Amount        decimal.Decimal  `json:"amount" validate:"gt=0"`
	PenaltyAmount *decimal.Decimal `json:"penaltyAmount,omitempty" validate:"omitempty,gte=0"`
	CollectorID   string           `json:"collectorId" validate:"required"`
}
