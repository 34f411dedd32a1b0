package engine

import (
	"time"

	"github.com/ExpertosTI/presta-pro-sub000/internal/domain"
)

// ConsecutiveMissed counts the longest run of overdue unpaid installments as of now.
// A paid installment resets the run.
func ConsecutiveMissed(loan *domain.Loan, now time.Time) int {
	run, longest := 0, 0
	for _, inst := range loan.Schedule {
		switch {
		case inst.IsPaid():
			run = 0
		case inst.DaysLate(now) > 0:
			run++
			if run > longest {
				longest = run
			}
		default:
			// not due yet; later installments cannot be overdue either
			return longest
		}
	}
	return longest
}

// IsDelinquent reports whether loan has at least threshold consecutive missed installments.
func IsDelinquent(loan *domain.Loan, now time.Time, threshold int) (bool, int) {
	if loan.Status == domain.LoanStatusPaid {
		return false, 0
	}
	missed := ConsecutiveMissed(loan, now)
	return threshold > 0 && missed >= threshold, missed
}
