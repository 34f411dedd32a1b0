package repository

import (
	"context"
	"time"

	"github.com/ExpertosTI/presta-pro-sub000/internal/domain"
)

// LoanRepository defines the interface for loan data operations
type LoanRepository interface {
	// Create stores a loan together with its full schedule
	Create(ctx context.Context, loan *domain.Loan) error

	// GetByID retrieves a loan with its schedule ordered by installment number
	GetByID(ctx context.Context, loanID string) (*domain.Loan, error)

	// ListActive retrieves every ACTIVE loan with its schedule
	ListActive(ctx context.Context) ([]*domain.Loan, error)

	// ListActiveByCollector retrieves ACTIVE loans whose client is assigned to collectorID
	ListActiveByCollector(ctx context.Context, collectorID string) ([]*domain.Loan, error)

	// SavePayment atomically marks the installment paid, updates loan totals and stores the receipt.
	// It fails with ALREADY_PAID when the installment is no longer pending.
	SavePayment(ctx context.Context, loan *domain.Loan, inst *domain.Installment, receipt *domain.Receipt) error
}

// ClientRepository defines the interface for borrower lookups
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error

	GetByID(ctx context.Context, clientID string) (*domain.Client, error)

	// GetByIDs returns the clients found, keyed by ID. Unknown IDs are simply absent.
	GetByIDs(ctx context.Context, clientIDs []string) (map[string]*domain.Client, error)

	ListByCollector(ctx context.Context, collectorID string) ([]*domain.Client, error)
}

// ReceiptRepository defines the interface for receipt reads. Receipts are written by
// LoanRepository.SavePayment.
type ReceiptRepository interface {
	GetByID(ctx context.Context, receiptID string) (*domain.Receipt, error)

	// ListByCollectorAndDay returns receipts collected on day's calendar day, oldest first
	ListByCollectorAndDay(ctx context.Context, collectorID string, day time.Time) ([]*domain.Receipt, error)
}

// ClosingRepository defines the interface for the append-only route closing log
type ClosingRepository interface {
	Create(ctx context.Context, closing *domain.RouteClosing) error

	// ListByCollectorAndDay returns closings for the collector and day, oldest first
	ListByCollectorAndDay(ctx context.Context, collectorID string, day time.Time) ([]*domain.RouteClosing, error)
}
