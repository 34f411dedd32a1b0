package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ExpertosTI/presta-pro-sub000/internal/domain"
	"github.com/ExpertosTI/presta-pro-sub000/internal/mocks"
	customError "github.com/ExpertosTI/presta-pro-sub000/pkg/errors"
)

var testNow = time.Date(2024, 2, 1, 10, 30, 0, 0, time.UTC)

func newTestRouter(svc *mocks.MockLendingService) http.Handler {
	lending := NewLendingHandler(svc, time.UTC)
	lending.now = func() time.Time { return testNow }
	health := NewHealthHandler(map[string]Pinger{}, time.Second)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	return NewRouter(lending, health, logger)
}

func do(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	var wrapper struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &wrapper))
	assert.True(t, wrapper.Success)
	require.NoError(t, json.Unmarshal(wrapper.Data, into))
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Code
}

func TestLendingHandler_CreateClient(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		setupMock      func(*mocks.MockLendingService)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "creates client",
			body: map[string]interface{}{"name": "Maria Perez", "address": "Calle 5 #12", "collectorId": "collector-1"},
			setupMock: func(m *mocks.MockLendingService) {
				m.On("CreateClient", mock.Anything, mock.MatchedBy(func(req *domain.CreateClientRequest) bool {
					return req.Name == "Maria Perez" && req.CollectorID == "collector-1"
				})).Return(&domain.Client{ID: "client-1", Name: "Maria Perez", CollectorID: "collector-1"}, nil).Once()
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing collector",
			body:           map[string]interface{}{"name": "Maria Perez", "address": "Calle 5 #12"},
			setupMock:      func(m *mocks.MockLendingService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "duplicate id",
			body: map[string]interface{}{"id": "client-1", "name": "Maria Perez", "address": "Calle 5 #12", "collectorId": "collector-1"},
			setupMock: func(m *mocks.MockLendingService) {
				m.On("CreateClient", mock.Anything, mock.Anything).
					Return(nil, customError.WrapAlreadyExists("client", "client-1")).Once()
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   customError.ErrCodeAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mocks.MockLendingService)
			tt.setupMock(svc)

			w := do(t, newTestRouter(svc), http.MethodPost, "/api/v1/clients", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, errorCode(t, w))
			}
			if tt.expectedStatus == http.StatusCreated {
				var client domain.Client
				decodeData(t, w, &client)
				assert.Equal(t, "client-1", client.ID)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestLendingHandler_ClientQueries(t *testing.T) {
	svc := new(mocks.MockLendingService)
	svc.On("GetClient", mock.Anything, "client-1").Return(&domain.Client{ID: "client-1"}, nil).Once()
	svc.On("GetClient", mock.Anything, "nope").Return(nil, customError.WrapNotFound("client", "nope")).Once()
	svc.On("ListClients", mock.Anything, "collector-1").Return([]*domain.Client{{ID: "client-1"}, {ID: "client-2"}}, nil).Once()
	svc.On("ListClients", mock.Anything, "collector-2").Return(nil, nil).Once()
	router := newTestRouter(svc)

	w := do(t, router, http.MethodGet, "/api/v1/clients/client-1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodGet, "/api/v1/clients/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, router, http.MethodGet, "/api/v1/collectors/collector-1/clients", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var clients []domain.Client
	decodeData(t, w, &clients)
	assert.Len(t, clients, 2)

	w = do(t, router, http.MethodGet, "/api/v1/collectors/collector-2/clients", nil)
	require.Equal(t, http.StatusOK, w.Code)
	clients = nil
	decodeData(t, w, &clients)
	assert.Empty(t, clients)

	svc.AssertExpectations(t)
}

func TestLendingHandler_CreateLoan(t *testing.T) {
	validBody := map[string]interface{}{
		"clientId":  "client-1",
		"amount":    "10000",
		"rate":      "10",
		"term":      12,
		"frequency": "monthly",
		"startDate": "2024-01-01T00:00:00Z",
	}

	tests := []struct {
		name           string
		body           interface{}
		setupMock      func(*mocks.MockLendingService)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "creates loan",
			body: validBody,
			setupMock: func(m *mocks.MockLendingService) {
				m.On("CreateLoan", mock.Anything, mock.MatchedBy(func(req *domain.CreateLoanRequest) bool {
					return req.ClientID == "client-1" &&
						req.Amount.Equal(decimal.NewFromInt(10000)) &&
						req.Term == 12 &&
						req.Frequency == domain.FrequencyMonthly
				})).Return(&domain.Loan{ID: "loan-1", ClientID: "client-1", Status: domain.LoanStatusActive}, nil).Once()
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "malformed json",
			body:           `{"clientId":`,
			setupMock:      func(m *mocks.MockLendingService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "zero amount fails validation",
			body: map[string]interface{}{
				"clientId": "client-1", "amount": "0", "rate": "10", "term": 12,
				"frequency": "monthly", "startDate": "2024-01-01T00:00:00Z",
			},
			setupMock:      func(m *mocks.MockLendingService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "fractional cents in amount",
			body: map[string]interface{}{
				"clientId": "client-1", "amount": "100.001", "rate": "10", "term": 12,
				"frequency": "monthly", "startDate": "2024-01-01T00:00:00Z",
			},
			setupMock:      func(m *mocks.MockLendingService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "unknown frequency fails validation",
			body: map[string]interface{}{
				"clientId": "client-1", "amount": "100", "rate": "10", "term": 12,
				"frequency": "yearly", "startDate": "2024-01-01T00:00:00Z",
			},
			setupMock:      func(m *mocks.MockLendingService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "unknown client",
			body: validBody,
			setupMock: func(m *mocks.MockLendingService) {
				m.On("CreateLoan", mock.Anything, mock.Anything).
					Return(nil, customError.WrapNotFound("client", "client-1")).Once()
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   customError.ErrCodeNotFound,
		},
		{
			name: "invalid term from engine",
			body: validBody,
			setupMock: func(m *mocks.MockLendingService) {
				m.On("CreateLoan", mock.Anything, mock.Anything).
					Return(nil, customError.WrapInvalidTerm("term must be positive")).Once()
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   customError.ErrCodeInvalidTerm,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mocks.MockLendingService)
			tt.setupMock(svc)

			w := do(t, newTestRouter(svc), http.MethodPost, "/api/v1/loans", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, errorCode(t, w))
			}
			if tt.expectedStatus == http.StatusCreated {
				var loan domain.Loan
				decodeData(t, w, &loan)
				assert.Equal(t, "loan-1", loan.ID)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestLendingHandler_CollectPayment(t *testing.T) {
	validBody := map[string]interface{}{
		"installmentId": "loan-1-1",
		"amount":        "879.16",
		"collectorId":   "collector-1",
	}

	tests := []struct {
		name           string
		body           interface{}
		setupMock      func(*mocks.MockLendingService)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "collects payment with loan id from path",
			body: validBody,
			setupMock: func(m *mocks.MockLendingService) {
				m.On("CollectPayment", mock.Anything, mock.MatchedBy(func(req *domain.CollectPaymentRequest) bool {
					return req.LoanID == "loan-1" &&
						req.InstallmentID == "loan-1-1" &&
						req.Amount.Equal(decimal.RequireFromString("879.16")) &&
						req.PenaltyAmount == nil
				})).Return(&domain.Receipt{
					ID:               "receipt-1",
					LoanID:           "loan-1",
					Amount:           decimal.RequireFromString("879.16"),
					RemainingBalance: decimal.RequireFromString("9670.73"),
				}, nil).Once()
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "explicit penalty is passed through",
			body: map[string]interface{}{
				"installmentId": "loan-1-1",
				"amount":        "879.16",
				"penaltyAmount": "0",
				"collectorId":   "collector-1",
			},
			setupMock: func(m *mocks.MockLendingService) {
				m.On("CollectPayment", mock.Anything, mock.MatchedBy(func(req *domain.CollectPaymentRequest) bool {
					return req.PenaltyAmount != nil && req.PenaltyAmount.IsZero()
				})).Return(&domain.Receipt{ID: "receipt-1"}, nil).Once()
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "negative amount fails validation",
			body: map[string]interface{}{
				"installmentId": "loan-1-1",
				"amount":        "-5",
				"collectorId":   "collector-1",
			},
			setupMock:      func(m *mocks.MockLendingService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "negative penalty fails validation",
			body: map[string]interface{}{
				"installmentId": "loan-1-1",
				"amount":        "10",
				"penaltyAmount": "-1",
				"collectorId":   "collector-1",
			},
			setupMock:      func(m *mocks.MockLendingService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "amount below a cent",
			body: map[string]interface{}{
				"installmentId": "loan-1-1",
				"amount":        "0.004",
				"collectorId":   "collector-1",
			},
			setupMock:      func(m *mocks.MockLendingService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "fractional cents in penalty",
			body: map[string]interface{}{
				"installmentId": "loan-1-1",
				"amount":        "879.16",
				"penaltyAmount": "1.005",
				"collectorId":   "collector-1",
			},
			setupMock:      func(m *mocks.MockLendingService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing installment id",
			body:           map[string]interface{}{"amount": "10", "collectorId": "collector-1"},
			setupMock:      func(m *mocks.MockLendingService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "already paid",
			body: validBody,
			setupMock: func(m *mocks.MockLendingService) {
				m.On("CollectPayment", mock.Anything, mock.Anything).
					Return(nil, customError.WrapAlreadyPaid("loan-1", "loan-1-1")).Once()
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   customError.ErrCodeAlreadyPaid,
		},
		{
			name: "payment in progress",
			body: validBody,
			setupMock: func(m *mocks.MockLendingService) {
				m.On("CollectPayment", mock.Anything, mock.Anything).
					Return(nil, customError.WrapPaymentInProgress("loan-1", "loan-1-1")).Once()
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   customError.ErrCodePaymentInProgress,
		},
		{
			name: "client missing",
			body: validBody,
			setupMock: func(m *mocks.MockLendingService) {
				m.On("CollectPayment", mock.Anything, mock.Anything).
					Return(nil, customError.WrapClientMissing("loan-1", "client-1")).Once()
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   customError.ErrCodeClientMissing,
		},
		{
			name: "database failure hides cause",
			body: validBody,
			setupMock: func(m *mocks.MockLendingService) {
				m.On("CollectPayment", mock.Anything, mock.Anything).
					Return(nil, customError.WrapDatabaseError(errors.New("connection reset"))).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   customError.ErrCodeDatabaseError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mocks.MockLendingService)
			tt.setupMock(svc)

			w := do(t, newTestRouter(svc), http.MethodPost, "/api/v1/loans/loan-1/payments", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, errorCode(t, w))
			}
			if tt.expectedStatus == http.StatusInternalServerError {
				assert.NotContains(t, w.Body.String(), "connection reset")
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestLendingHandler_LoanQueries(t *testing.T) {
	svc := new(mocks.MockLendingService)
	svc.On("GetLoan", mock.Anything, "loan-1").Return(&domain.Loan{ID: "loan-1"}, nil).Once()
	svc.On("GetSchedule", mock.Anything, "loan-1").Return(&domain.ScheduleResponse{}, nil).Once()
	svc.On("GetOutstanding", mock.Anything, "loan-1").Return(&domain.OutstandingResponse{
		LoanID:      "loan-1",
		Outstanding: decimal.RequireFromString("9670.73"),
		PaidCount:   1,
		Term:        12,
	}, nil).Once()
	svc.On("IsDelinquent", mock.Anything, "loan-1").Return(&domain.DelinquentResponse{
		LoanID: "loan-1", IsDelinquent: true, MissedCount: 3,
	}, nil).Once()
	svc.On("GetLoan", mock.Anything, "missing").Return(nil, customError.WrapNotFound("loan", "missing")).Once()
	router := newTestRouter(svc)

	w := do(t, router, http.MethodGet, "/api/v1/loans/loan-1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodGet, "/api/v1/loans/loan-1/schedule", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodGet, "/api/v1/loans/loan-1/outstanding", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var outstanding domain.OutstandingResponse
	decodeData(t, w, &outstanding)
	assert.True(t, outstanding.Outstanding.Equal(decimal.RequireFromString("9670.73")))

	w = do(t, router, http.MethodGet, "/api/v1/loans/loan-1/delinquent", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var delinquent domain.DelinquentResponse
	decodeData(t, w, &delinquent)
	assert.True(t, delinquent.IsDelinquent)
	assert.Equal(t, 3, delinquent.MissedCount)

	w = do(t, router, http.MethodGet, "/api/v1/loans/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	svc.AssertExpectations(t)
}

func TestLendingHandler_GetRoute(t *testing.T) {
	sameDay := func(y int, m time.Month, d int) interface{} {
		return mock.MatchedBy(func(day time.Time) bool {
			return day.Equal(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
		})
	}

	tests := []struct {
		name           string
		path           string
		setupMock      func(*mocks.MockLendingService)
		expectedStatus int
	}{
		{
			name: "defaults to today and empty policy",
			path: "/api/v1/routes/collector-1",
			setupMock: func(m *mocks.MockLendingService) {
				m.On("GetRoute", mock.Anything, "collector-1", sameDay(2024, 2, 1), domain.RoutePolicy("")).
					Return(&domain.RoutePlan{CollectorID: "collector-1"}, nil).Once()
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "explicit date and policy",
			path: "/api/v1/routes/collector-1?date=2024-03-05&policy=all",
			setupMock: func(m *mocks.MockLendingService) {
				m.On("GetRoute", mock.Anything, "collector-1", sameDay(2024, 3, 5), domain.RoutePolicyAll).
					Return(&domain.RoutePlan{CollectorID: "collector-1"}, nil).Once()
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "malformed date",
			path:           "/api/v1/routes/collector-1?date=05/03/2024",
			setupMock:      func(m *mocks.MockLendingService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "unknown policy",
			path: "/api/v1/routes/collector-1?policy=weekly",
			setupMock: func(m *mocks.MockLendingService) {
				m.On("GetRoute", mock.Anything, "collector-1", mock.Anything, domain.RoutePolicy("weekly")).
					Return(nil, customError.WrapInvalidRoutePolicy("weekly")).Once()
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mocks.MockLendingService)
			tt.setupMock(svc)

			w := do(t, newTestRouter(svc), http.MethodGet, tt.path, nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestLendingHandler_CloseRoute(t *testing.T) {
	drift := decimal.NewFromInt(500)
	svc := new(mocks.MockLendingService)
	svc.On("CloseRoute", mock.Anything, "collector-1", mock.MatchedBy(func(day time.Time) bool {
		return day.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	})).Return(&domain.CloseRouteResponse{
		Closing:   &domain.RouteClosing{ID: "closing-2", CollectorID: "collector-1", TotalAmount: decimal.RequireFromString("1389.16")},
		Duplicate: true,
		Drift:     &drift,
	}, nil).Once()

	w := do(t, newTestRouter(svc), http.MethodPost, "/api/v1/routes/collector-1/closings", nil)

	require.Equal(t, http.StatusCreated, w.Code)
	var result domain.CloseRouteResponse
	decodeData(t, w, &result)
	assert.True(t, result.Duplicate)
	require.NotNil(t, result.Drift)
	assert.True(t, result.Drift.Equal(drift))
	svc.AssertExpectations(t)
}

func TestLendingHandler_GetReceipt(t *testing.T) {
	svc := new(mocks.MockLendingService)
	svc.On("GetReceipt", mock.Anything, "receipt-1").Return(&domain.ReceiptExport{
		ID:     "receipt-1",
		Amount: decimal.RequireFromString("879.16"),
	}, nil).Once()
	svc.On("GetReceipt", mock.Anything, "nope").Return(nil, customError.WrapNotFound("receipt", "nope")).Once()
	router := newTestRouter(svc)

	w := do(t, router, http.MethodGet, "/api/v1/receipts/receipt-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var export domain.ReceiptExport
	decodeData(t, w, &export)
	assert.Equal(t, "receipt-1", export.ID)

	w = do(t, router, http.MethodGet, "/api/v1/receipts/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	svc.AssertExpectations(t)
}

func TestRouter_UnknownPath(t *testing.T) {
	w := do(t, newTestRouter(new(mocks.MockLendingService)), http.MethodGet, "/api/v1/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthHandler(t *testing.T) {
	healthy := PingerFunc(func(context.Context) error { return nil })
	broken := PingerFunc(func(context.Context) error { return errors.New("dial tcp: refused") })

	tests := []struct {
		name           string
		checks         map[string]Pinger
		expectedStatus int
	}{
		{"all dependencies up", map[string]Pinger{"database": healthy, "redis": healthy}, http.StatusOK},
		{"redis down", map[string]Pinger{"database": healthy, "redis": broken}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.checks, time.Second)

			w := httptest.NewRecorder()
			h.Ready(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}

	w := httptest.NewRecorder()
	NewHealthHandler(nil, time.Second).Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
