package engine

import (
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ExpertosTI/presta-pro-sub000/internal/domain"
	customError "github.com/ExpertosTI/presta-pro-sub000/pkg/errors"
	"github.com/ExpertosTI/presta-pro-sub000/pkg/utils"
)

const lockStripes = 64

// ClientLookup resolves the client referenced by a loan.
type ClientLookup interface {
	ClientByID(id string) (*domain.Client, bool)
}

// ClientLookupFunc adapts a function to ClientLookup.
type ClientLookupFunc func(id string) (*domain.Client, bool)

func (f ClientLookupFunc) ClientByID(id string) (*domain.Client, bool) {
	return f(id)
}

// Payment is one collection against a single installment.
type Payment struct {
	InstallmentID string
	Amount        decimal.Decimal
	Penalty       decimal.Decimal
	CollectorID   string
}

// Processor applies payments to loans. It is safe for concurrent use; applications on
// the same loan are serialized and the installment status is re-checked under the lock.
type Processor struct {
	stripes [lockStripes]sync.Mutex
	now     func() time.Time
	newID   func() string
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithClock replaces time.Now for paid dates and receipt timestamps.
func WithClock(now func() time.Time) ProcessorOption {
	return func(p *Processor) { p.now = now }
}

// WithIDGenerator replaces uuid.NewString for receipt IDs.
func WithIDGenerator(newID func() string) ProcessorOption {
	return func(p *Processor) { p.newID = newID }
}

func NewProcessor(opts ...ProcessorOption) *Processor {
	p := &Processor{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Processor) lockFor(loanID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(loanID))
	return &p.stripes[h.Sum32()%lockStripes]
}

// ApplyPayment marks the target installment PAID, adds the collected amounts to the
// loan totals, re-derives the loan status and returns the receipt for the event.
//
// The penalty is a side payment: it is recorded in TotalPaid, TotalPenalty and on the
// receipt, never on the installment. No re-amortization happens when Amount differs
// from the scheduled payment.
func (p *Processor) ApplyPayment(loan *domain.Loan, pay Payment, clients ClientLookup) (*domain.Receipt, error) {
	mu := p.lockFor(loan.ID)
	mu.Lock()
	defer mu.Unlock()

	inst := loan.InstallmentByID(pay.InstallmentID)
	if inst == nil {
		return nil, customError.WrapInstallmentNotFound(loan.ID, pay.InstallmentID)
	}
	if inst.IsPaid() {
		return nil, customError.WrapAlreadyPaid(loan.ID, inst.ID)
	}
	if !pay.Amount.IsPositive() {
		return nil, customError.WrapInvalidPaymentAmount(loan.ID, inst.ID, "amount must be positive")
	}
	if pay.Penalty.IsNegative() {
		return nil, customError.WrapInvalidPaymentAmount(loan.ID, inst.ID, "penalty must not be negative")
	}
	if !utils.IsMoney(pay.Amount) || !utils.IsMoney(pay.Penalty) {
		return nil, customError.WrapInvalidPaymentAmount(loan.ID, inst.ID, "amounts must be whole cents")
	}

	var client *domain.Client
	if clients != nil {
		client, _ = clients.ClientByID(loan.ClientID)
	}
	if client == nil {
		return nil, customError.WrapClientMissing(loan.ID, loan.ClientID)
	}

	resulting := loan.TotalDue().Sub(loan.AppliedToDebt().Add(pay.Amount))
	if resulting.LessThan(utils.RoundingTolerance.Neg()) {
		return nil, customError.WrapNegativeBalance(loan.ID, inst.ID, resulting.StringFixed(utils.MoneyScale))
	}

	now := p.now()
	scheduled := inst.Payment

	inst.Status = domain.InstallmentStatusPaid
	inst.PaidAmount = pay.Amount
	inst.PaidDate = &now

	loan.TotalPaid = loan.TotalPaid.Add(pay.Amount).Add(pay.Penalty)
	loan.TotalPenalty = loan.TotalPenalty.Add(pay.Penalty)
	loan.UpdatedAt = now
	RefreshStatus(loan)

	remaining := loan.RemainingBalance()
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	return &domain.Receipt{
		ID:                p.newID(),
		Date:              now,
		LoanID:            loan.ID,
		ClientID:          client.ID,
		ClientName:        client.Name,
		CollectorID:       pay.CollectorID,
		InstallmentID:     inst.ID,
		InstallmentNumber: inst.Number,
		ScheduledAmount:   scheduled,
		Amount:            pay.Amount,
		PenaltyAmount:     pay.Penalty,
		RemainingBalance:  remaining,
	}, nil
}
