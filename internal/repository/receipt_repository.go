package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ExpertosTI/presta-pro-sub000/internal/domain"
	customError "github.com/ExpertosTI/presta-pro-sub000/pkg/errors"
)

const receiptColumns = `id, date, loan_id, client_id, client_name, collector_id, installment_id,
	installment_number, scheduled_amount, amount, penalty_amount, remaining_balance`

type receiptRepository struct {
	db *sqlx.DB
}

func NewReceiptRepository(db *sqlx.DB) ReceiptRepository {
	return &receiptRepository{db: db}
}

func (r *receiptRepository) GetByID(ctx context.Context, receiptID string) (*domain.Receipt, error) {
	query := `SELECT ` + receiptColumns + ` FROM receipts WHERE id = $1`

	var receipt domain.Receipt
	if err := r.db.GetContext(ctx, &receipt, query, receiptID); err != nil {
		return nil, mapError(err, "receipt", receiptID)
	}

	return &receipt, nil
}

func (r *receiptRepository) ListByCollectorAndDay(ctx context.Context, collectorID string, day time.Time) ([]*domain.Receipt, error) {
	start, end := dayBounds(day)
	query := `
		SELECT ` + receiptColumns + `
		FROM receipts
		WHERE collector_id = $1 AND date >= $2 AND date < $3
		ORDER BY date, id
	`

	var receipts []*domain.Receipt
	if err := r.db.SelectContext(ctx, &receipts, query, collectorID, start, end); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return receipts, nil
}
