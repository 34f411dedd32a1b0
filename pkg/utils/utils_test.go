package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCalculateAnnuityPayment(t *testing.T) {
	tests := []struct {
		name       string
		principal  decimal.Decimal
		periodRate decimal.Decimal
		periods    int
		expected   decimal.Decimal
	}{
		{
			name:       "monthly 10 percent over a year",
			principal:  decimal.NewFromInt(10000),
			periodRate: decimal.RequireFromString("0.10").Div(decimal.NewFromInt(12)),
			periods:    12,
			expected:   decimal.RequireFromString("879.16"),
		},
		{
			name:       "single period repays principal plus one period of interest",
			principal:  decimal.NewFromInt(1000),
			periodRate: decimal.RequireFromString("0.05"),
			periods:    1,
			expected:   decimal.RequireFromString("1050"),
		},
		{
			name:       "zero interest rate",
			principal:  decimal.NewFromInt(5000000),
			periodRate: decimal.Zero,
			periods:    50,
			expected:   decimal.NewFromInt(100000),
		},
		{
			name:       "zero interest rounds to cents",
			principal:  decimal.NewFromInt(1000),
			periodRate: decimal.Zero,
			periods:    3,
			expected:   decimal.RequireFromString("333.33"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateAnnuityPayment(tt.principal, tt.periodRate, tt.periods)
			assert.True(t, result.Equal(tt.expected),
				"Expected %v, but got %v", tt.expected, result)
		})
	}
}

func TestPowInt(t *testing.T) {
	assert.True(t, PowInt(decimal.NewFromInt(2), 10).Equal(decimal.NewFromInt(1024)))
	assert.True(t, PowInt(decimal.RequireFromString("1.5"), 0).Equal(decimal.NewFromInt(1)))
	assert.True(t, PowInt(decimal.RequireFromString("1.1"), 2).Equal(decimal.RequireFromString("1.21")))
}

func TestCalculateDueDate(t *testing.T) {
	baseDate := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		number        int
		daysPerPeriod int
		expected      time.Time
	}{
		{
			name:          "first monthly installment",
			number:        1,
			daysPerPeriod: 30,
			expected:      time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name:          "second weekly installment",
			number:        2,
			daysPerPeriod: 7,
			expected:      baseDate.AddDate(0, 0, 14),
		},
		{
			name:          "biweekly crosses month",
			number:        3,
			daysPerPeriod: 15,
			expected:      time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateDueDate(baseDate, tt.number, tt.daysPerPeriod)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestDaysLate(t *testing.T) {
	due := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		now      time.Time
		expected int
		overdue  bool
	}{
		{name: "before due date", now: due.AddDate(0, 0, -2), expected: 0},
		{name: "on due date afternoon", now: due.Add(15 * time.Hour), expected: 0},
		{name: "day after", now: due.AddDate(0, 0, 1).Add(time.Hour), expected: 1, overdue: true},
		{name: "ten days", now: due.AddDate(0, 0, 10), expected: 10, overdue: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DaysLate(due, tt.now))
			assert.Equal(t, tt.overdue, IsDateOverdue(due, tt.now))
		})
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	assert.True(t, SameDay(a, a.Add(10*time.Hour)))
	assert.False(t, SameDay(a, a.Add(16*time.Hour)))
}

func TestIsMoney(t *testing.T) {
	tests := []struct {
		value    string
		expected bool
	}{
		{"879.16", true},
		{"10", true},
		{"0.5", true},
		{"879.165", false},
		{"0.004", false},
		{"-12.001", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsMoney(decimal.RequireFromString(tt.value)))
		})
	}
}
