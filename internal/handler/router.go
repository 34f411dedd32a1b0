package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/ExpertosTI/presta-pro-sub000/pkg/response"
)

func NewRouter(lending *LendingHandler, health *HealthHandler, logger *logrus.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware(logger), response.CORSMiddleware)
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "route not found")
	})

	// Health check
	router.HandleFunc("/health", health.Health).Methods(http.MethodGet)
	router.HandleFunc("/health/ready", health.Ready).Methods(http.MethodGet)

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/clients", lending.CreateClient).Methods(http.MethodPost)
	api.HandleFunc("/clients/{clientId}", lending.GetClient).Methods(http.MethodGet)
	api.HandleFunc("/collectors/{collectorId}/clients", lending.ListClients).Methods(http.MethodGet)
	api.HandleFunc("/loans", lending.CreateLoan).Methods(http.MethodPost)
	api.HandleFunc("/loans/{loanId}", lending.GetLoan).Methods(http.MethodGet)
	api.HandleFunc("/loans/{loanId}/schedule", lending.GetSchedule).Methods(http.MethodGet)
	api.HandleFunc("/loans/{loanId}/outstanding", lending.GetOutstanding).Methods(http.MethodGet)
	api.HandleFunc("/loans/{loanId}/delinquent", lending.IsDelinquent).Methods(http.MethodGet)
	api.HandleFunc("/loans/{loanId}/payments", lending.CollectPayment).Methods(http.MethodPost)
	api.HandleFunc("/receipts/{receiptId}", lending.GetReceipt).Methods(http.MethodGet)
	api.HandleFunc("/routes/{collectorId}", lending.GetRoute).Methods(http.MethodGet)
	api.HandleFunc("/routes/{collectorId}/closings", lending.CloseRoute).Methods(http.MethodPost)

	return router
}
