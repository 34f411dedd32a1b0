package engine

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ExpertosTI/presta-pro-sub000/internal/domain"
	customError "github.com/ExpertosTI/presta-pro-sub000/pkg/errors"
	"github.com/ExpertosTI/presta-pro-sub000/pkg/utils"
)

// Reconciler turns a collector's receipts into closings.
type Reconciler struct {
	now   func() time.Time
	newID func() string
}

func NewReconciler(now func() time.Time, newID func() string) *Reconciler {
	if now == nil {
		now = time.Now
	}
	if newID == nil {
		newID = uuid.NewString
	}
	return &Reconciler{now: now, newID: newID}
}

// CloseRoute sums exactly the receipts given. Closing the same collector and day twice
// produces two independent closings; use HasClosingFor to warn about it.
func (r *Reconciler) CloseRoute(collectorID string, date time.Time, receipts []*domain.Receipt) *domain.RouteClosing {
	return &domain.RouteClosing{
		ID:            r.newID(),
		CollectorID:   collectorID,
		Date:          utils.StartOfDay(date),
		TotalAmount:   SumReceipts(receipts),
		ReceiptsCount: len(receipts),
		CreatedAt:     r.now(),
	}
}

// SumReceipts returns the cash collected (amount + penalty) across receipts.
func SumReceipts(receipts []*domain.Receipt) decimal.Decimal {
	total := decimal.Zero
	for _, rc := range receipts {
		total = total.Add(rc.Total())
	}
	return total
}

// SelectReceipts keeps the receipts collected by collectorID on date's calendar day.
func SelectReceipts(receipts []*domain.Receipt, collectorID string, date time.Time) []*domain.Receipt {
	selected := make([]*domain.Receipt, 0, len(receipts))
	for _, rc := range receipts {
		if rc.CollectorID == collectorID && utils.SameDay(date, rc.Date) {
			selected = append(selected, rc)
		}
	}
	return selected
}

// HasClosingFor reports whether closings already contains one for the collector and day.
func HasClosingFor(closings []*domain.RouteClosing, collectorID string, date time.Time) bool {
	for _, c := range closings {
		if c.CollectorID == collectorID && utils.SameDay(date, c.Date) {
			return true
		}
	}
	return false
}

// ComputeDrift is the signed difference between what the collector's receipts for the
// prior closing's day add up to now and what that closing recorded. Positive means more
// was collected after (or missed by) the closing.
func ComputeDrift(collectorID string, prior *domain.RouteClosing, receipts []*domain.Receipt) decimal.Decimal {
	current := SumReceipts(SelectReceipts(receipts, collectorID, prior.Date))
	return current.Sub(prior.TotalAmount)
}

// BuildRoute lists the unpaid installments a collector should visit.
//
// With RoutePolicyDue only installments due on or before today qualify; RoutePolicyAll
// includes future ones. Stops are ordered by client address (plain byte order), which
// only groups neighbours roughly; it is not route optimization. An empty collectorID
// keeps every collector's clients.
func BuildRoute(
	loans []*domain.Loan,
	clients map[string]*domain.Client,
	collectorID string,
	today time.Time,
	policy domain.RoutePolicy,
	penalty PenaltyFunc,
) (*domain.RoutePlan, error) {
	if !policy.Valid() {
		return nil, customError.WrapInvalidRoutePolicy(string(policy))
	}

	day := utils.StartOfDay(today)
	plan := &domain.RoutePlan{
		CollectorID:  collectorID,
		Date:         day,
		Policy:       policy,
		Stops:        []domain.RouteStop{},
		TotalDue:     decimal.Zero,
		TotalPenalty: decimal.Zero,
	}

	for _, loan := range loans {
		if loan.Status == domain.LoanStatusPaid {
			continue
		}
		client, ok := clients[loan.ClientID]
		if !ok {
			continue
		}
		if collectorID != "" && client.CollectorID != collectorID {
			continue
		}

		for _, inst := range loan.Schedule {
			if inst.IsPaid() {
				continue
			}
			if policy == domain.RoutePolicyDue && utils.StartOfDay(inst.Date).After(day) {
				continue
			}

			suggested := decimal.Zero
			if penalty != nil {
				suggested = penalty(inst, today)
			}

			plan.Stops = append(plan.Stops, domain.RouteStop{
				LoanID:            loan.ID,
				ClientID:          client.ID,
				ClientName:        client.Name,
				Address:           client.Address,
				Phone:             client.Phone,
				InstallmentID:     inst.ID,
				InstallmentNumber: inst.Number,
				DueDate:           inst.Date,
				AmountDue:         inst.Payment,
				DaysLate:          inst.DaysLate(today),
				SuggestedPenalty:  suggested,
			})
			plan.TotalDue = plan.TotalDue.Add(inst.Payment)
			plan.TotalPenalty = plan.TotalPenalty.Add(suggested)
		}
	}

	sort.SliceStable(plan.Stops, func(i, j int) bool {
		a, b := plan.Stops[i], plan.Stops[j]
		if a.Address != b.Address {
			return a.Address < b.Address
		}
		if a.LoanID != b.LoanID {
			return a.LoanID < b.LoanID
		}
		return a.InstallmentNumber < b.InstallmentNumber
	})

	return plan, nil
}
