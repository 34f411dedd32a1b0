package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/ExpertosTI/presta-pro-sub000/internal/domain"
	"github.com/ExpertosTI/presta-pro-sub000/pkg/response"
	"github.com/ExpertosTI/presta-pro-sub000/pkg/utils"
)

// LendingService is the part of service.LendingService the HTTP layer uses.
type LendingService interface {
	CreateClient(ctx context.Context, request *domain.CreateClientRequest) (*domain.Client, error)
	GetClient(ctx context.Context, clientID string) (*domain.Client, error)
	ListClients(ctx context.Context, collectorID string) ([]*domain.Client, error)
	CreateLoan(ctx context.Context, request *domain.CreateLoanRequest) (*domain.Loan, error)
	GetLoan(ctx context.Context, loanID string) (*domain.Loan, error)
	GetSchedule(ctx context.Context, loanID string) (*domain.ScheduleResponse, error)
	GetOutstanding(ctx context.Context, loanID string) (*domain.OutstandingResponse, error)
	IsDelinquent(ctx context.Context, loanID string) (*domain.DelinquentResponse, error)
	CollectPayment(ctx context.Context, request *domain.CollectPaymentRequest) (*domain.Receipt, error)
	GetRoute(ctx context.Context, collectorID string, day time.Time, policy domain.RoutePolicy) (*domain.RoutePlan, error)
	CloseRoute(ctx context.Context, collectorID string, day time.Time) (*domain.CloseRouteResponse, error)
	GetReceipt(ctx context.Context, receiptID string) (*domain.ReceiptExport, error)
}

type LendingHandler struct {
	service   LendingService
	validator *validator.Validate
	location  *time.Location
	now       func() time.Time
}

// NewLendingHandler builds the handler. Route and closing dates without an explicit
// ?date= are "today" in location.
func NewLendingHandler(service LendingService, location *time.Location) *LendingHandler {
	return &LendingHandler{
		service:   service,
		validator: newValidator(),
		location:  location,
		now:       time.Now,
	}
}

// newValidator lets numeric tags (gt, gte) apply to decimal.Decimal fields and rejects
// money fields carrying digits below a cent.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	v.RegisterStructValidation(func(sl validator.StructLevel) {
		req := sl.Current().Interface().(domain.CollectPaymentRequest)
		if !utils.IsMoney(req.Amount) {
			sl.ReportError(req.Amount, "Amount", "amount", "cents", "")
		}
		if req.PenaltyAmount != nil && !utils.IsMoney(*req.PenaltyAmount) {
			sl.ReportError(req.PenaltyAmount, "PenaltyAmount", "penaltyAmount", "cents", "")
		}
	}, domain.CollectPaymentRequest{})

	v.RegisterStructValidation(func(sl validator.StructLevel) {
		req := sl.Current().Interface().(domain.CreateLoanRequest)
		if !utils.IsMoney(req.Amount) {
			sl.ReportError(req.Amount, "Amount", "amount", "cents", "")
		}
	}, domain.CreateLoanRequest{})
	return v
}

// CreateClient handles POST /api/v1/clients
func (h *LendingHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	client, err := h.service.CreateClient(r.Context(), &request)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, client)
}

// GetClient handles GET /api/v1/clients/{clientId}
func (h *LendingHandler) GetClient(w http.ResponseWriter, r *http.Request) {
	client, err := h.service.GetClient(r.Context(), mux.Vars(r)["clientId"])
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, client)
}

// ListClients handles GET /api/v1/collectors/{collectorId}/clients
func (h *LendingHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.service.ListClients(r.Context(), mux.Vars(r)["collectorId"])
	if err != nil {
		response.FromError(w, err)
		return
	}
	if clients == nil {
		clients = []*domain.Client{}
	}
	response.Success(w, clients)
}

// CreateLoan handles POST /api/v1/loans
func (h *LendingHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	loan, err := h.service.CreateLoan(r.Context(), &request)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, loan)
}

// GetLoan handles GET /api/v1/loans/{loanId}
func (h *LendingHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	loan, err := h.service.GetLoan(r.Context(), mux.Vars(r)["loanId"])
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, loan)
}

// GetSchedule handles GET /api/v1/loans/{loanId}/schedule
func (h *LendingHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	schedule, err := h.service.GetSchedule(r.Context(), mux.Vars(r)["loanId"])
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, schedule)
}

// GetOutstanding handles GET /api/v1/loans/{loanId}/outstanding
func (h *LendingHandler) GetOutstanding(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.GetOutstanding(r.Context(), mux.Vars(r)["loanId"])
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, summary)
}

// IsDelinquent handles GET /api/v1/loans/{loanId}/delinquent
func (h *LendingHandler) IsDelinquent(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.IsDelinquent(r.Context(), mux.Vars(r)["loanId"])
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, status)
}

// CollectPayment handles POST /api/v1/loans/{loanId}/payments
func (h *LendingHandler) CollectPayment(w http.ResponseWriter, r *http.Request) {
	var request domain.CollectPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}
	request.LoanID = mux.Vars(r)["loanId"]

	if err := h.validator.Struct(request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	receipt, err := h.service.CollectPayment(r.Context(), &request)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, receipt)
}

// GetReceipt handles GET /api/v1/receipts/{receiptId}
func (h *LendingHandler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	export, err := h.service.GetReceipt(r.Context(), mux.Vars(r)["receiptId"])
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, export)
}

// GetRoute handles GET /api/v1/routes/{collectorId}?date=YYYY-MM-DD&policy=due|all
func (h *LendingHandler) GetRoute(w http.ResponseWriter, r *http.Request) {
	day, err := h.dayParam(r)
	if err != nil {
		response.BadRequest(w, "date must be formatted as YYYY-MM-DD", err)
		return
	}

	policy := domain.RoutePolicy(r.URL.Query().Get("policy"))
	plan, err := h.service.GetRoute(r.Context(), mux.Vars(r)["collectorId"], day, policy)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, plan)
}

// CloseRoute handles POST /api/v1/routes/{collectorId}/closings?date=YYYY-MM-DD
func (h *LendingHandler) CloseRoute(w http.ResponseWriter, r *http.Request) {
	day, err := h.dayParam(r)
	if err != nil {
		response.BadRequest(w, "date must be formatted as YYYY-MM-DD", err)
		return
	}

	result, err := h.service.CloseRoute(r.Context(), mux.Vars(r)["collectorId"], day)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Created(w, result)
}

// dayParam reads ?date= as a calendar day in the handler's location, defaulting to today.
func (h *LendingHandler) dayParam(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		y, m, d := h.now().In(h.location).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, h.location), nil
	}
	return time.ParseInLocation(time.DateOnly, raw, h.location)
}
