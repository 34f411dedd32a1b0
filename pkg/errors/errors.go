package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrInvalidTerm          = errors.New("invalid loan terms")
	ErrInvalidPaymentAmount = errors.New("invalid payment amount")
	ErrAlreadyPaid          = errors.New("installment already paid")
	ErrNotFound             = errors.New("not found")
	ErrClientMissing        = errors.New("client could not be resolved")
	ErrNegativeBalance      = errors.New("payment would drive balance below zero")
	ErrInvalidRoutePolicy   = errors.New("invalid route policy")
	ErrPaymentInProgress    = errors.New("payment already in progress for installment")
	ErrAlreadyExists        = errors.New("already exists")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code          string
	Message       string
	LoanID        string
	InstallmentID string
	Err           error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeInvalidTerm          = "INVALID_TERM"
	ErrCodeInvalidPaymentAmount = "INVALID_PAYMENT_AMOUNT"
	ErrCodeAlreadyPaid          = "ALREADY_PAID"
	ErrCodeNotFound             = "NOT_FOUND"
	ErrCodeClientMissing        = "CLIENT_MISSING"
	ErrCodeNegativeBalance      = "NEGATIVE_BALANCE_GUARD"
	ErrCodeInvalidRoutePolicy   = "INVALID_ROUTE_POLICY"
	ErrCodePaymentInProgress    = "PAYMENT_IN_PROGRESS"
	ErrCodeAlreadyExists        = "ALREADY_EXISTS"
	ErrCodeDatabaseError        = "DATABASE_ERROR"
	ErrCodeCacheError           = "CACHE_ERROR"
)

// CodeOf returns the business code carried by err, or "" when err is not a BusinessError.
func CodeOf(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

func WrapInvalidTerm(reason string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidTerm,
		fmt.Sprintf("Invalid loan terms: %s", reason),
		ErrInvalidTerm,
	)
}

func WrapInvalidPaymentAmount(loanID, installmentID, reason string) *BusinessError {
	e := NewBusinessError(
		ErrCodeInvalidPaymentAmount,
		fmt.Sprintf("Invalid payment for installment %s of loan %s: %s", installmentID, loanID, reason),
		ErrInvalidPaymentAmount,
	)
	e.LoanID = loanID
	e.InstallmentID = installmentID
	return e
}

func WrapAlreadyPaid(loanID, installmentID string) *BusinessError {
	e := NewBusinessError(
		ErrCodeAlreadyPaid,
		fmt.Sprintf("Installment %s of loan %s is already paid", installmentID, loanID),
		ErrAlreadyPaid,
	)
	e.LoanID = loanID
	e.InstallmentID = installmentID
	return e
}

func WrapInstallmentNotFound(loanID, installmentID string) *BusinessError {
	e := NewBusinessError(
		ErrCodeNotFound,
		fmt.Sprintf("Installment %s does not belong to loan %s", installmentID, loanID),
		ErrNotFound,
	)
	e.LoanID = loanID
	e.InstallmentID = installmentID
	return e
}

// WrapNotFound reports an unresolved entity of the given kind ("loan", "client", "receipt").
func WrapNotFound(kind, id string) *BusinessError {
	e := NewBusinessError(
		ErrCodeNotFound,
		fmt.Sprintf("%s with ID %s not found", kind, id),
		ErrNotFound,
	)
	if kind == "loan" {
		e.LoanID = id
	}
	return e
}

func WrapClientMissing(loanID, clientID string) *BusinessError {
	e := NewBusinessError(
		ErrCodeClientMissing,
		fmt.Sprintf("Client %s of loan %s could not be resolved", clientID, loanID),
		ErrClientMissing,
	)
	e.LoanID = loanID
	return e
}

func WrapNegativeBalance(loanID, installmentID, resulting string) *BusinessError {
	e := NewBusinessError(
		ErrCodeNegativeBalance,
		fmt.Sprintf("Payment on installment %s would leave loan %s with balance %s", installmentID, loanID, resulting),
		ErrNegativeBalance,
	)
	e.LoanID = loanID
	e.InstallmentID = installmentID
	return e
}

func WrapInvalidRoutePolicy(policy string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidRoutePolicy,
		fmt.Sprintf("Unknown route policy %q", policy),
		ErrInvalidRoutePolicy,
	)
}

func WrapPaymentInProgress(loanID, installmentID string) *BusinessError {
	e := NewBusinessError(
		ErrCodePaymentInProgress,
		fmt.Sprintf("Another collection of installment %s on loan %s is in progress", installmentID, loanID),
		ErrPaymentInProgress,
	)
	e.LoanID = loanID
	e.InstallmentID = installmentID
	return e
}

func WrapAlreadyExists(kind, id string) *BusinessError {
	e := NewBusinessError(
		ErrCodeAlreadyExists,
		fmt.Sprintf("%s with ID %s already exists", kind, id),
		ErrAlreadyExists,
	)
	if kind == "loan" {
		e.LoanID = id
	}
	return e
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}
