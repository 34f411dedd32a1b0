package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Client is the borrower as seen by the route: who to visit and where.
type Client struct {
	ID          string `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Address     string `json:"address" db:"address"`
	Phone       string `json:"phone" db:"phone"`
	CollectorID string `json:"collectorId" db:"collector_id"`
}

// RoutePolicy decides which unpaid installments a collector should visit.
type RoutePolicy string

const (
	// RoutePolicyDue only includes installments due today or earlier.
	RoutePolicyDue RoutePolicy = "due"
	// RoutePolicyAll includes every unpaid installment, future ones too.
	RoutePolicyAll RoutePolicy = "all"
)

func (p RoutePolicy) Valid() bool {
	return p == RoutePolicyDue || p == RoutePolicyAll
}

// RouteStop is one unpaid installment on a collector's route.
type RouteStop struct {
	LoanID            string          `json:"loanId"`
	ClientID          string          `json:"clientId"`
	ClientName        string          `json:"clientName"`
	Address           string          `json:"address"`
	Phone             string          `json:"phone,omitempty"`
	InstallmentID     string          `json:"installmentId"`
	InstallmentNumber int             `json:"installmentNumber"`
	DueDate           time.Time       `json:"dueDate"`
	AmountDue         decimal.Decimal `json:"amountDue"`
	DaysLate          int             `json:"daysLate"`
	SuggestedPenalty  decimal.Decimal `json:"suggestedPenalty"`
}

// RoutePlan is the ordered stop list for one collector and day.
type RoutePlan struct {
	CollectorID  string          `json:"collectorId"`
	Date         time.Time       `json:"date"`
	Policy       RoutePolicy     `json:"policy"`
	Stops        []RouteStop     `json:"stops"`
	TotalDue     decimal.Decimal `json:"totalDue"`
	TotalPenalty decimal.Decimal `json:"totalPenalty"`
}

// RouteClosing is a collector's append-only reconciliation record for a day.
type RouteClosing struct {
	ID            string          `json:"id" db:"id"`
	CollectorID   string          `json:"collectorId" db:"collector_id"`
	Date          time.Time       `json:"date" db:"date"`
	TotalAmount   decimal.Decimal `json:"totalAmount" db:"total_amount"`
	ReceiptsCount int             `json:"receiptsCount" db:"receipts_count"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
}

type CloseRouteResponse struct {
	Closing *RouteClosing `json:"closing"`
	// Duplicate is set when another closing already exists for the same collector and day.
	Duplicate bool `json:"duplicate"`
	// Drift is receipts-now minus the latest prior closing's total; nil without a prior closing.
	Drift *decimal.Decimal `json:"drift,omitempty"`
}
