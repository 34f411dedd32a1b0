package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/ExpertosTI/presta-pro-sub000/internal/domain"
)

type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) GetByID(ctx context.Context, loanID string) (*domain.Loan, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) ListActive(ctx context.Context) ([]*domain.Loan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) ListActiveByCollector(ctx context.Context, collectorID string) ([]*domain.Loan, error) {
	args := m.Called(ctx, collectorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) SavePayment(ctx context.Context, loan *domain.Loan, inst *domain.Installment, receipt *domain.Receipt) error {
	args := m.Called(ctx, loan, inst, receipt)
	return args.Error(0)
}

type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) Create(ctx context.Context, client *domain.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *MockClientRepository) GetByID(ctx context.Context, clientID string) (*domain.Client, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

func (m *MockClientRepository) GetByIDs(ctx context.Context, clientIDs []string) (map[string]*domain.Client, error) {
	args := m.Called(ctx, clientIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*domain.Client), args.Error(1)
}

func (m *MockClientRepository) ListByCollector(ctx context.Context, collectorID string) ([]*domain.Client, error) {
	args := m.Called(ctx, collectorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Client), args.Error(1)
}

type MockReceiptRepository struct {
	mock.Mock
}

func (m *MockReceiptRepository) GetByID(ctx context.Context, receiptID string) (*domain.Receipt, error) {
	args := m.Called(ctx, receiptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Receipt), args.Error(1)
}

func (m *MockReceiptRepository) ListByCollectorAndDay(ctx context.Context, collectorID string, day time.Time) ([]*domain.Receipt, error) {
	args := m.Called(ctx, collectorID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Receipt), args.Error(1)
}

type MockClosingRepository struct {
	mock.Mock
}

func (m *MockClosingRepository) Create(ctx context.Context, closing *domain.RouteClosing) error {
	args := m.Called(ctx, closing)
	return args.Error(0)
}

func (m *MockClosingRepository) ListByCollectorAndDay(ctx context.Context, collectorID string, day time.Time) ([]*domain.RouteClosing, error) {
	args := m.Called(ctx, collectorID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RouteClosing), args.Error(1)
}
