package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of minor-unit digits kept for currency amounts.
const MoneyScale int32 = 2

// powScale bounds the digits kept while raising rates to a power.
const powScale int32 = 28

// RoundingTolerance is one minor currency unit.
var RoundingTolerance = decimal.New(1, -MoneyScale)

// RoundMoney rounds to cents, half away from zero.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// IsMoney reports whether d has no digits below the minor currency unit.
func IsMoney(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(MoneyScale))
}

// PowInt raises base to a non-negative integer power by repeated squaring.
func PowInt(base decimal.Decimal, n int) decimal.Decimal {
	result := decimal.NewFromInt(1)
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(base).Round(powScale)
		}
		base = base.Mul(base).Round(powScale)
		n >>= 1
	}
	return result
}

// CalculateAnnuityPayment returns the level payment that retires principal in n periods
// at periodRate, rounded to cents.
// Formula: P * r * (1+r)^n / ((1+r)^n - 1)
func CalculateAnnuityPayment(principal, periodRate decimal.Decimal, n int) decimal.Decimal {
	if periodRate.IsZero() {
		return RoundMoney(principal.Div(decimal.NewFromInt(int64(n))))
	}
	factor := PowInt(decimal.NewFromInt(1).Add(periodRate), n)
	payment := principal.Mul(periodRate).Mul(factor).Div(factor.Sub(decimal.NewFromInt(1)))
	return RoundMoney(payment)
}

// CalculateDueDate calculates the due date for installment number n when installments
// are spaced daysPerPeriod apart. Installment 1 is due one period after the start.
func CalculateDueDate(startDate time.Time, number int, daysPerPeriod int) time.Time {
	return startDate.AddDate(0, 0, number*daysPerPeriod)
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day in a's location.
func SameDay(a, b time.Time) bool {
	return StartOfDay(a).Equal(StartOfDay(b.In(a.Location())))
}

// IsDateOverdue checks if dueDate is strictly before the calendar day of now
func IsDateOverdue(dueDate time.Time, now time.Time) bool {
	return StartOfDay(dueDate).Before(StartOfDay(now.In(dueDate.Location())))
}

// DaysLate returns whole calendar days between dueDate and now, or 0 if not overdue.
func DaysLate(dueDate time.Time, now time.Time) int {
	if !IsDateOverdue(dueDate, now) {
		return 0
	}
	due := StartOfDay(dueDate)
	today := StartOfDay(now.In(dueDate.Location()))
	return int(today.Sub(due).Hours() / 24)
}

// DecimalFromString converts string to decimal.Decimal
func DecimalFromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}
