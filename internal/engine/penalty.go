package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ExpertosTI/presta-pro-sub000/internal/domain"
	"github.com/ExpertosTI/presta-pro-sub000/pkg/utils"
)

// PenaltyFunc computes the late fee owed on an installment as of now.
type PenaltyFunc func(inst *domain.Installment, now time.Time) decimal.Decimal

// FlatDailyPenalty charges PerDay for every day late beyond GraceDays.
type FlatDailyPenalty struct {
	PerDay    decimal.Decimal
	GraceDays int
}

func (p FlatDailyPenalty) Compute(inst *domain.Installment, now time.Time) decimal.Decimal {
	days := inst.DaysLate(now) - p.GraceDays
	if days <= 0 || !p.PerDay.IsPositive() {
		return decimal.Zero
	}
	return utils.RoundMoney(p.PerDay.Mul(decimal.NewFromInt(int64(days))))
}
