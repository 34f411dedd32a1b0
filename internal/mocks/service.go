package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/ExpertosTI/presta-pro-sub000/internal/domain"
)

type MockLendingService struct {
	mock.Mock
}

func (m *MockLendingService) CreateClient(ctx context.Context, request *domain.CreateClientRequest) (*domain.Client, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

func (m *MockLendingService) GetClient(ctx context.Context, clientID string) (*domain.Client, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

func (m *MockLendingService) ListClients(ctx context.Context, collectorID string) ([]*domain.Client, error) {
	args := m.Called(ctx, collectorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Client), args.Error(1)
}

func (m *MockLendingService) CreateLoan(ctx context.Context, request *domain.CreateLoanRequest) (*domain.Loan, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLendingService) GetLoan(ctx context.Context, loanID string) (*domain.Loan, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLendingService) GetSchedule(ctx context.Context, loanID string) (*domain.ScheduleResponse, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScheduleResponse), args.Error(1)
}

func (m *MockLendingService) GetOutstanding(ctx context.Context, loanID string) (*domain.OutstandingResponse, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OutstandingResponse), args.Error(1)
}

func (m *MockLendingService) IsDelinquent(ctx context.Context, loanID string) (*domain.DelinquentResponse, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DelinquentResponse), args.Error(1)
}

func (m *MockLendingService) CollectPayment(ctx context.Context, request *domain.CollectPaymentRequest) (*domain.Receipt, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Receipt), args.Error(1)
}

func (m *MockLendingService) GetRoute(ctx context.Context, collectorID string, day time.Time, policy domain.RoutePolicy) (*domain.RoutePlan, error) {
	args := m.Called(ctx, collectorID, day, policy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RoutePlan), args.Error(1)
}

func (m *MockLendingService) CloseRoute(ctx context.Context, collectorID string, day time.Time) (*domain.CloseRouteResponse, error) {
	args := m.Called(ctx, collectorID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CloseRouteResponse), args.Error(1)
}

func (m *MockLendingService) GetReceipt(ctx context.Context, receiptID string) (*domain.ReceiptExport, error) {
	args := m.Called(ctx, receiptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReceiptExport), args.Error(1)
}
