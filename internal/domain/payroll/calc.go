package payroll

import (
	"github.com/shopspring/decimal"

	"crewshift/internal/domain/apperr"
)

const moneyPlaces = 2

type Rates struct {
	FullDayHours decimal.Decimal
	FullDayRate  decimal.Decimal
}

func DefaultRates() Rates {
	return Rates{
		FullDayHours: decimal.NewFromInt(8),
		FullDayRate:  decimal.NewFromInt(120),
	}
}

func (r Rates) Validate() error {
	if !r.FullDayHours.IsPositive() {
		return apperr.New(apperr.KindInvalidInput, "payroll.Rates", "full day hours must be positive")
	}
	if r.FullDayRate.IsNegative() {
		return apperr.New(apperr.KindInvalidInput, "payroll.Rates", "full day rate must not be negative")
	}
	return nil
}

// Pay is CalculatePay with the configured rates.
func (r Rates) Pay(hours decimal.Decimal) (Breakdown, error) {
	return CalculatePay(hours, r.FullDayHours, r.FullDayRate)
}

// Breakdown keeps the unrounded Amount for aggregation; TotalAmount is the
// value persisted on a payroll record.
type Breakdown struct {
	FullDays       int64
	RemainingHours decimal.Decimal
	HourlyRate     decimal.Decimal
	Amount         decimal.Decimal
	TotalAmount    decimal.Decimal
}

// CalculatePay pays whole full days at fullDayRate and the remainder pro rata
// at fullDayRate/fullDayHours. Only TotalAmount is rounded, half-up to cents.
func CalculatePay(hours, fullDayHours, fullDayRate decimal.Decimal) (Breakdown, error) {
	if !hours.IsPositive() {
		return Breakdown{}, apperr.New(apperr.KindInvalidInput, "payroll.CalculatePay", "hours worked must be positive")
	}
	if !fullDayHours.IsPositive() {
		return Breakdown{}, apperr.New(apperr.KindInvalidInput, "payroll.CalculatePay", "full day hours must be positive")
	}

	fullDays := hours.Div(fullDayHours).Floor()
	remaining := hours.Sub(fullDays.Mul(fullDayHours))
	amount := fullDays.Mul(fullDayRate).Add(remaining.Mul(fullDayRate).Div(fullDayHours))

	return Breakdown{
		FullDays:       fullDays.IntPart(),
		RemainingHours: remaining,
		HourlyRate:     fullDayRate.Div(fullDayHours),
		Amount:         amount,
		TotalAmount:    amount.Round(moneyPlaces),
	}, nil
}

// SumAmounts adds unrounded amounts and rounds once.
func SumAmounts(amounts ...decimal.Decimal) decimal.Decimal {
	return decimal.Sum(decimal.Zero, amounts...).Round(moneyPlaces)
}
