package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ExpertosTI/presta-pro-sub000/internal/cache"
	"github.com/ExpertosTI/presta-pro-sub000/internal/config"
	"github.com/ExpertosTI/presta-pro-sub000/internal/domain"
	"github.com/ExpertosTI/presta-pro-sub000/internal/engine"
	"github.com/ExpertosTI/presta-pro-sub000/internal/notify"
	"github.com/ExpertosTI/presta-pro-sub000/internal/repository"
	customError "github.com/ExpertosTI/presta-pro-sub000/pkg/errors"
)

// Dependencies groups the collaborators of LendingService.
type Dependencies struct {
	Loans    repository.LoanRepository
	Clients  repository.ClientRepository
	Receipts repository.ReceiptRepository
	Closings repository.ClosingRepository
	Cache    cache.OutstandingCache
	Locker   cache.Locker
	Notifier notify.Notifier
}

type LendingService struct {
	deps       Dependencies
	processor  *engine.Processor
	reconciler *engine.Reconciler
	penalty    engine.FlatDailyPenalty
	config     *config.Config
	logger     *logrus.Logger
	now        func() time.Time
	newID      func() string
}

type Option func(*LendingService)

// WithClock replaces time.Now for every timestamp the service produces.
func WithClock(now func() time.Time) Option {
	return func(s *LendingService) { s.now = now }
}

// WithIDGenerator replaces uuid.NewString for loan, receipt and closing IDs.
func WithIDGenerator(newID func() string) Option {
	return func(s *LendingService) { s.newID = newID }
}

func NewLendingService(deps Dependencies, cfg *config.Config, logger *logrus.Logger, opts ...Option) *LendingService {
	s := &LendingService{
		deps:   deps,
		config: cfg,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
		penalty: engine.FlatDailyPenalty{
			PerDay:    cfg.GetPenaltyPerDay(),
			GraceDays: cfg.Business.PenaltyGraceDays,
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.processor = engine.NewProcessor(engine.WithClock(s.now), engine.WithIDGenerator(s.newID))
	s.reconciler = engine.NewReconciler(s.now, s.newID)
	return s
}

// CreateClient registers a borrower on a collector's route.
func (s *LendingService) CreateClient(ctx context.Context, request *domain.CreateClientRequest) (*domain.Client, error) {
	client := &domain.Client{
		ID:          request.ID,
		Name:        request.Name,
		Address:     request.Address,
		Phone:       request.Phone,
		CollectorID: request.CollectorID,
	}
	if client.ID == "" {
		client.ID = s.newID()
	}

	if err := s.deps.Clients.Create(ctx, client); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"client_id":    client.ID,
		"collector_id": client.CollectorID,
	}).Info("client created")

	return client, nil
}

func (s *LendingService) GetClient(ctx context.Context, clientID string) (*domain.Client, error) {
	return s.deps.Clients.GetByID(ctx, clientID)
}

// ListClients returns the clients assigned to a collector, ordered by address.
func (s *LendingService) ListClients(ctx context.Context, collectorID string) ([]*domain.Client, error) {
	return s.deps.Clients.ListByCollector(ctx, collectorID)
}

// CreateLoan generates the amortization schedule and stores the loan with it.
func (s *LendingService) CreateLoan(ctx context.Context, request *domain.CreateLoanRequest) (*domain.Loan, error) {
	if _, err := s.deps.Clients.GetByID(ctx, request.ClientID); err != nil {
		return nil, err
	}

	loanID := request.ID
	if loanID == "" {
		loanID = s.newID()
	}

	loan, err := engine.NewLoan(loanID, request.ClientID, engine.LoanTerms{
		Principal:  request.Amount,
		AnnualRate: request.Rate,
		Term:       request.Term,
		Frequency:  request.Frequency,
		StartDate:  request.StartDate,
	}, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.deps.Loans.Create(ctx, loan); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"loan_id":        loan.ID,
		"client_id":      loan.ClientID,
		"term":           loan.Term,
		"frequency":      loan.Frequency,
		"total_interest": loan.TotalInterest.StringFixed(2),
	}).Info("loan created")

	return loan, nil
}

func (s *LendingService) GetLoan(ctx context.Context, loanID string) (*domain.Loan, error) {
	return s.deps.Loans.GetByID(ctx, loanID)
}

func (s *LendingService) GetSchedule(ctx context.Context, loanID string) (*domain.ScheduleResponse, error) {
	loan, err := s.deps.Loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return &domain.ScheduleResponse{LoanID: loan.ID, Schedule: loan.Schedule}, nil
}

// GetOutstanding returns the loan summary, served from cache when possible.
// Cache failures degrade to a database read.
func (s *LendingService) GetOutstanding(ctx context.Context, loanID string) (*domain.OutstandingResponse, error) {
	cached, hit, err := s.deps.Cache.GetOutstanding(ctx, loanID)
	if err != nil {
		s.logger.WithError(err).WithField("loan_id", loanID).Warn("outstanding cache read failed")
	}
	if hit {
		return cached, nil
	}

	loan, err := s.deps.Loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	summary := outstandingOf(loan)
	if err := s.deps.Cache.SetOutstanding(ctx, summary, s.config.GetOutstandingCacheTTL()); err != nil {
		s.logger.WithError(err).WithField("loan_id", loanID).Warn("outstanding cache write failed")
	}
	return summary, nil
}

func (s *LendingService) IsDelinquent(ctx context.Context, loanID string) (*domain.DelinquentResponse, error) {
	loan, err := s.deps.Loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	delinquent, missed := engine.IsDelinquent(loan, s.today(), s.config.Business.DelinquencyThreshold)
	return &domain.DelinquentResponse{LoanID: loan.ID, IsDelinquent: delinquent, MissedCount: missed}, nil
}

// CollectPayment applies a collector's payment to one installment and records the receipt.
//
// Collections on the same loan are serialized by a Redis lock; the repository's
// conditional update still rejects a second payment if the lock is unavailable.
// When the request carries no penalty, the configured late fee is charged.
func (s *LendingService) CollectPayment(ctx context.Context, request *domain.CollectPaymentRequest) (*domain.Receipt, error) {
	log := s.logger.WithFields(logrus.Fields{
		"loan_id":        request.LoanID,
		"installment_id": request.InstallmentID,
		"collector_id":   request.CollectorID,
	})

	release, locked, err := s.deps.Locker.Acquire(ctx, cache.PaymentLockKey(request.LoanID), s.config.GetPaymentLockTTL())
	switch {
	case err != nil:
		log.WithError(err).Warn("payment lock unavailable, relying on database guard")
	case !locked:
		return nil, customError.WrapPaymentInProgress(request.LoanID, request.InstallmentID)
	default:
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				log.WithError(err).Warn("failed to release payment lock")
			}
		}()
	}

	loan, err := s.deps.Loans.GetByID(ctx, request.LoanID)
	if err != nil {
		return nil, err
	}

	client, err := s.deps.Clients.GetByID(ctx, loan.ClientID)
	if err != nil && !errors.Is(err, customError.ErrNotFound) {
		return nil, err
	}
	lookup := engine.ClientLookupFunc(func(id string) (*domain.Client, bool) {
		return client, client != nil && client.ID == id
	})

	payment := engine.Payment{
		InstallmentID: request.InstallmentID,
		Amount:        request.Amount,
		CollectorID:   request.CollectorID,
	}
	if request.PenaltyAmount != nil {
		payment.Penalty = *request.PenaltyAmount
	} else if inst := loan.InstallmentByID(request.InstallmentID); inst != nil {
		payment.Penalty = s.penalty.Compute(inst, s.today())
	}

	receipt, err := s.processor.ApplyPayment(loan, payment, lookup)
	if err != nil {
		log.WithField("code", customError.CodeOf(err)).Info("payment rejected")
		return nil, err
	}

	if err := s.deps.Loans.SavePayment(ctx, loan, loan.InstallmentByID(request.InstallmentID), receipt); err != nil {
		log.WithError(err).Error("failed to persist payment")
		return nil, err
	}

	if err := s.deps.Cache.InvalidateOutstanding(ctx, loan.ID); err != nil {
		log.WithError(err).Warn("failed to invalidate outstanding cache")
	}

	log.WithFields(logrus.Fields{
		"receipt_id":        receipt.ID,
		"amount":            receipt.Amount.StringFixed(2),
		"penalty":           receipt.PenaltyAmount.StringFixed(2),
		"remaining_balance": receipt.RemainingBalance.StringFixed(2),
	}).Info("payment collected")

	s.notify(ctx, notify.Event{
		Type:        notify.EventPaymentCollected,
		LoanID:      loan.ID,
		CollectorID: request.CollectorID,
		Payload:     engine.FormatReceipt(receipt, s.config.Branding()),
	})
	if loan.Status == domain.LoanStatusPaid {
		s.notify(ctx, notify.Event{Type: notify.EventLoanPaid, LoanID: loan.ID})
	}

	return receipt, nil
}

// GetRoute builds the collector's stop list for day. An empty policy uses the configured default.
func (s *LendingService) GetRoute(ctx context.Context, collectorID string, day time.Time, policy domain.RoutePolicy) (*domain.RoutePlan, error) {
	if policy == "" {
		policy = s.config.GetRoutePolicy()
	}
	if !policy.Valid() {
		return nil, customError.WrapInvalidRoutePolicy(string(policy))
	}

	loans, err := s.deps.Loans.ListActiveByCollector(ctx, collectorID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(loans))
	seen := make(map[string]bool, len(loans))
	for _, loan := range loans {
		if !seen[loan.ClientID] {
			seen[loan.ClientID] = true
			ids = append(ids, loan.ClientID)
		}
	}

	clients, err := s.deps.Clients.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	return engine.BuildRoute(loans, clients, collectorID, calendarDay(day), policy, s.penalty.Compute)
}

// CloseRoute records the collector's closing for day (a local calendar day). A second
// closing for the same day is stored too and flagged as a duplicate, with the drift
// against the latest earlier closing.
func (s *LendingService) CloseRoute(ctx context.Context, collectorID string, day time.Time) (*domain.CloseRouteResponse, error) {
	log := s.logger.WithField("collector_id", collectorID)

	receipts, err := s.deps.Receipts.ListByCollectorAndDay(ctx, collectorID, day)
	if err != nil {
		return nil, err
	}

	prior, err := s.deps.Closings.ListByCollectorAndDay(ctx, collectorID, day)
	if err != nil {
		return nil, err
	}

	closing := s.reconciler.CloseRoute(collectorID, day, receipts)
	if err := s.deps.Closings.Create(ctx, closing); err != nil {
		return nil, err
	}

	result := &domain.CloseRouteResponse{
		Closing:   closing,
		Duplicate: engine.HasClosingFor(prior, collectorID, day),
	}
	if len(prior) > 0 {
		drift := engine.ComputeDrift(collectorID, prior[len(prior)-1], receipts)
		result.Drift = &drift
	}

	entry := log.WithFields(logrus.Fields{
		"closing_id":     closing.ID,
		"total_amount":   closing.TotalAmount.StringFixed(2),
		"receipts_count": closing.ReceiptsCount,
	})
	if result.Duplicate {
		entry.WithField("drift", result.Drift.StringFixed(2)).Warn("route closed again for the same day")
	} else {
		entry.Info("route closed")
	}

	s.notify(ctx, notify.Event{Type: notify.EventRouteClosed, CollectorID: collectorID, Payload: closing})
	return result, nil
}

func (s *LendingService) GetReceipt(ctx context.Context, receiptID string) (*domain.ReceiptExport, error) {
	receipt, err := s.deps.Receipts.GetByID(ctx, receiptID)
	if err != nil {
		return nil, err
	}
	export := engine.FormatReceipt(receipt, s.config.Branding())
	return &export, nil
}

// SweepDelinquencies publishes an event for every delinquent active loan and returns how many were found.
func (s *LendingService) SweepDelinquencies(ctx context.Context) (int, error) {
	loans, err := s.deps.Loans.ListActive(ctx)
	if err != nil {
		return 0, err
	}

	today := s.today()
	count := 0
	for _, loan := range loans {
		delinquent, missed := engine.IsDelinquent(loan, today, s.config.Business.DelinquencyThreshold)
		if !delinquent {
			continue
		}
		count++
		s.notify(ctx, notify.Event{
			Type:    notify.EventLoanDelinquent,
			LoanID:  loan.ID,
			Payload: domain.DelinquentResponse{LoanID: loan.ID, IsDelinquent: true, MissedCount: missed},
		})
	}

	s.logger.WithFields(logrus.Fields{"active_loans": len(loans), "delinquent": count}).Info("delinquency sweep finished")
	return count, nil
}

// WarmOutstandingCache precomputes the outstanding summary of every active loan.
func (s *LendingService) WarmOutstandingCache(ctx context.Context) (int, error) {
	loans, err := s.deps.Loans.ListActive(ctx)
	if err != nil {
		return 0, err
	}

	warmed := 0
	for _, loan := range loans {
		if err := s.deps.Cache.SetOutstanding(ctx, outstandingOf(loan), s.config.GetOutstandingCacheTTL()); err != nil {
			return warmed, err
		}
		warmed++
	}
	return warmed, nil
}

func (s *LendingService) notify(ctx context.Context, event notify.Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now()
	}
	if err := s.deps.Notifier.Notify(ctx, event); err != nil {
		s.logger.WithError(err).WithField("event", event.Type).Warn("failed to publish event")
	}
}

// today is the current calendar day in the configured timezone, expressed as UTC
// midnight so it compares directly with stored due dates.
func (s *LendingService) today() time.Time {
	return calendarDay(s.now().In(s.config.GetLocation()))
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func outstandingOf(loan *domain.Loan) *domain.OutstandingResponse {
	outstanding := loan.RemainingBalance()
	if outstanding.IsNegative() {
		outstanding = decimal.Zero
	}
	return &domain.OutstandingResponse{
		LoanID:      loan.ID,
		Outstanding: outstanding,
		TotalPaid:   loan.TotalPaid,
		PercentPaid: loan.PercentPaid(),
		PaidCount:   loan.PaidCount(),
		Term:        loan.Term,
		Status:      loan.Status,
	}
}
