package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ExpertosTI/presta-pro-sub000/internal/domain"
	customError "github.com/ExpertosTI/presta-pro-sub000/pkg/errors"
)

const (
	loanColumns = `id, client_id, amount, rate, term, frequency, start_date, status,
		total_interest, total_paid, total_penalty, created_at, updated_at`
	joinedLoanColumns = `l.id, l.client_id, l.amount, l.rate, l.term, l.frequency, l.start_date, l.status,
		l.total_interest, l.total_paid, l.total_penalty, l.created_at, l.updated_at`
	installmentColumns = `id, loan_id, number, due_date, payment, interest, principal, balance,
		status, paid_amount, paid_date`
)

type loanRepository struct {
	db *sqlx.DB
}

func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	loanQuery := `
		INSERT INTO loans (` + loanColumns + `)
		VALUES (:id, :client_id, :amount, :rate, :term, :frequency, :start_date, :status,
			:total_interest, :total_paid, :total_penalty, :created_at, :updated_at)
	`
	installmentQuery := `
		INSERT INTO installments (` + installmentColumns + `)
		VALUES (:id, :loan_id, :number, :due_date, :payment, :interest, :principal, :balance,
			:status, :paid_amount, :paid_date)
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}
	defer tx.Rollback()

	if _, err := tx.NamedExecContext(ctx, loanQuery, loan); err != nil {
		return mapError(err, "loan", loan.ID)
	}

	for _, inst := range loan.Schedule {
		if _, err := tx.NamedExecContext(ctx, installmentQuery, inst); err != nil {
			return mapError(err, "installment", inst.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return customError.WrapDatabaseError(err)
	}
	return nil
}

func (r *loanRepository) GetByID(ctx context.Context, loanID string) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`

	var loan domain.Loan
	if err := r.db.GetContext(ctx, &loan, query, loanID); err != nil {
		return nil, mapError(err, "loan", loanID)
	}

	scheduleQuery := `SELECT ` + installmentColumns + ` FROM installments WHERE loan_id = $1 ORDER BY number`
	if err := r.db.SelectContext(ctx, &loan.Schedule, scheduleQuery, loanID); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return &loan, nil
}

func (r *loanRepository) ListActive(ctx context.Context) ([]*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE status = $1 ORDER BY id`

	var loans []*domain.Loan
	if err := r.db.SelectContext(ctx, &loans, query, domain.LoanStatusActive); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return loans, r.attachSchedules(ctx, loans)
}

func (r *loanRepository) ListActiveByCollector(ctx context.Context, collectorID string) ([]*domain.Loan, error) {
	query := `
		SELECT ` + joinedLoanColumns + `
		FROM loans l
		JOIN clients c ON c.id = l.client_id
		WHERE l.status = $1 AND ($2 = '' OR c.collector_id = $2)
		ORDER BY l.id
	`

	var loans []*domain.Loan
	if err := r.db.SelectContext(ctx, &loans, query, domain.LoanStatusActive, collectorID); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return loans, r.attachSchedules(ctx, loans)
}

// attachSchedules loads all installments of loans in one round trip.
func (r *loanRepository) attachSchedules(ctx context.Context, loans []*domain.Loan) error {
	if len(loans) == 0 {
		return nil
	}

	ids := make([]string, len(loans))
	byID := make(map[string]*domain.Loan, len(loans))
	for i, loan := range loans {
		ids[i] = loan.ID
		byID[loan.ID] = loan
	}

	query := `SELECT ` + installmentColumns + ` FROM installments WHERE loan_id = ANY($1) ORDER BY loan_id, number`

	var installments []*domain.Installment
	if err := r.db.SelectContext(ctx, &installments, query, pq.Array(ids)); err != nil {
		return customError.WrapDatabaseError(err)
	}

	for _, inst := range installments {
		if loan, ok := byID[inst.LoanID]; ok {
			loan.Schedule = append(loan.Schedule, inst)
		}
	}
	return nil
}

func (r *loanRepository) SavePayment(ctx context.Context, loan *domain.Loan, inst *domain.Installment, receipt *domain.Receipt) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}
	defer tx.Rollback()

	// Serializes payments on the same loan across processes.
	var locked string
	if err := tx.GetContext(ctx, &locked, `SELECT id FROM loans WHERE id = $1 FOR UPDATE`, loan.ID); err != nil {
		return mapError(err, "loan", loan.ID)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE installments
		SET status = $1, paid_amount = $2, paid_date = $3
		WHERE id = $4 AND loan_id = $5 AND status = $6
	`, domain.InstallmentStatusPaid, inst.PaidAmount, inst.PaidDate, inst.ID, loan.ID, domain.InstallmentStatusPending)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return customError.WrapDatabaseError(err)
	}
	if affected == 0 {
		return customError.WrapAlreadyPaid(loan.ID, inst.ID)
	}

	// Totals are applied as increments so a stale in-memory loan cannot overwrite them.
	_, err = tx.ExecContext(ctx, `
		UPDATE loans
		SET total_paid = total_paid + $2,
			total_penalty = total_penalty + $3,
			status = CASE
				WHEN EXISTS (SELECT 1 FROM installments WHERE loan_id = $1 AND status = $4) THEN status
				ELSE $5
			END,
			updated_at = $6
		WHERE id = $1
	`, loan.ID, receipt.Amount.Add(receipt.PenaltyAmount), receipt.PenaltyAmount,
		domain.InstallmentStatusPending, domain.LoanStatusPaid, loan.UpdatedAt)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}

	if _, err := tx.NamedExecContext(ctx, `
		INSERT INTO receipts (id, date, loan_id, client_id, client_name, collector_id, installment_id,
			installment_number, scheduled_amount, amount, penalty_amount, remaining_balance)
		VALUES (:id, :date, :loan_id, :client_id, :client_name, :collector_id, :installment_id,
			:installment_number, :scheduled_amount, :amount, :penalty_amount, :remaining_balance)
	`, receipt); err != nil {
		return mapError(err, "receipt", receipt.ID)
	}

	if err := tx.Commit(); err != nil {
		return customError.WrapDatabaseError(err)
	}
	return nil
}
