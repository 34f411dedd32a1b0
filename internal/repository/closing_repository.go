package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ExpertosTI/presta-pro-sub000/internal/domain"
	customError "github.com/ExpertosTI/presta-pro-sub000/pkg/errors"
)

const closingColumns = `id, collector_id, date, total_amount, receipts_count, created_at`

type closingRepository struct {
	db *sqlx.DB
}

func NewClosingRepository(db *sqlx.DB) ClosingRepository {
	return &closingRepository{db: db}
}

// Create appends a closing. Closings are never updated or deleted.
func (r *closingRepository) Create(ctx context.Context, closing *domain.RouteClosing) error {
	query := `
		INSERT INTO route_closings (` + closingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		closing.ID,
		closing.CollectorID,
		closing.Date.Format(time.DateOnly),
		closing.TotalAmount,
		closing.ReceiptsCount,
		closing.CreatedAt,
	)
	return mapError(err, "route closing", closing.ID)
}

func (r *closingRepository) ListByCollectorAndDay(ctx context.Context, collectorID string, day time.Time) ([]*domain.RouteClosing, error) {
	query := `
		SELECT ` + closingColumns + `
		FROM route_closings
		WHERE collector_id = $1 AND date = $2
		ORDER BY created_at, id
	`

	var closings []*domain.RouteClosing
	if err := r.db.SelectContext(ctx, &closings, query, collectorID, day.Format(time.DateOnly)); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	// DATE columns come back as UTC midnight; report them on the caller's calendar.
	for _, c := range closings {
		y, m, d := c.Date.Date()
		c.Date = time.Date(y, m, d, 0, 0, 0, 0, day.Location())
	}

	return closings, nil
}
