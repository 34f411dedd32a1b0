package engine

import "github.com/ExpertosTI/presta-pro-sub000/internal/domain"

// CanTransition reports whether a loan may move from one status to another.
// ACTIVE -> PAID is the only transition; PAID is terminal.
func CanTransition(from, to domain.LoanStatus) bool {
	if from == to {
		return true
	}
	return from == domain.LoanStatusActive && to == domain.LoanStatusPaid
}

// RefreshStatus re-derives the loan status from its installments and stores it.
func RefreshStatus(loan *domain.Loan) domain.LoanStatus {
	if loan.Status == "" {
		loan.Status = domain.LoanStatusActive
	}
	next := domain.LoanStatusActive
	if loan.AllPaid() {
		next = domain.LoanStatusPaid
	}
	if CanTransition(loan.Status, next) {
		loan.Status = next
	}
	return loan.Status
}
