package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/ExpertosTI/presta-pro-sub000/internal/domain"
	"github.com/ExpertosTI/presta-pro-sub000/internal/notify"
)

type MockOutstandingCache struct {
	mock.Mock
}

func (m *MockOutstandingCache) GetOutstanding(ctx context.Context, loanID string) (*domain.OutstandingResponse, bool, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.OutstandingResponse), args.Bool(1), args.Error(2)
}

func (m *MockOutstandingCache) SetOutstanding(ctx context.Context, summary *domain.OutstandingResponse, ttl time.Duration) error {
	args := m.Called(ctx, summary, ttl)
	return args.Error(0)
}

func (m *MockOutstandingCache) InvalidateOutstanding(ctx context.Context, loanID string) error {
	args := m.Called(ctx, loanID)
	return args.Error(0)
}

// MockLocker records Acquire calls. Released counts how many granted locks were released.
type MockLocker struct {
	mock.Mock
	Released int
}

func (m *MockLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	args := m.Called(ctx, key, ttl)
	if !args.Bool(0) || args.Error(1) != nil {
		return nil, args.Bool(0), args.Error(1)
	}
	return func(context.Context) error {
		m.Released++
		return nil
	}, true, nil
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, event notify.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
