package payroll

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crewshift/internal/domain/apperr"
)

func TestCalculatePay(t *testing.T) {
	tests := []struct {
		name      string
		hours     string
		fdh       string
		rate      string
		wantDays  int64
		wantRem   string
		wantTotal string
	}{
		{name: "two full days", hours: "16", fdh: "8", rate: "120", wantDays: 2, wantRem: "0", wantTotal: "240.00"},
		{name: "day and a quarter", hours: "10", fdh: "8", rate: "120", wantDays: 1, wantRem: "2", wantTotal: "150.00"},
		{name: "exactly one day", hours: "8", fdh: "8", rate: "120", wantDays: 1, wantRem: "0", wantTotal: "120.00"},
		{name: "half day", hours: "4", fdh: "8", rate: "120", wantDays: 0, wantRem: "4", wantTotal: "60.00"},
		{name: "fractional hours", hours: "8.5", fdh: "8", rate: "120", wantDays: 1, wantRem: "0.5", wantTotal: "127.50"},
		{name: "max shift", hours: "24", fdh: "8", rate: "120", wantDays: 3, wantRem: "0", wantTotal: "360.00"},
		{name: "rounds half up", hours: "10", fdh: "7", rate: "100", wantDays: 1, wantRem: "3", wantTotal: "142.86"},
		{name: "zero rate", hours: "5", fdh: "8", rate: "0", wantDays: 0, wantRem: "5", wantTotal: "0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculatePay(dec(tt.hours), dec(tt.fdh), dec(tt.rate))
			require.NoError(t, err)
			assert.Equal(t, tt.wantDays, got.FullDays)
			assertDecimal(t, tt.wantRem, got.RemainingHours)
			assert.Equal(t, tt.wantTotal, got.TotalAmount.StringFixed(2))
		})
	}
}

func TestCalculatePayKeepsUnroundedAmount(t *testing.T) {
	got, err := CalculatePay(dec("1"), dec("3"), dec("1"))
	require.NoError(t, err)
	assert.True(t, got.Amount.GreaterThan(dec("0.3333")))
	assert.True(t, got.Amount.LessThan(dec("0.3334")))
	assertDecimal(t, "0.33", got.TotalAmount)

	// Three pro-rata thirds aggregate to a full unit rather than 0.99.
	assertDecimal(t, "1", SumAmounts(got.Amount, got.Amount, got.Amount))
}

func TestCalculatePayRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		hours string
		fdh   string
	}{
		{name: "zero hours", hours: "0", fdh: "8"},
		{name: "negative hours", hours: "-1", fdh: "8"},
		{name: "zero full day", hours: "8", fdh: "0"},
		{name: "negative full day", hours: "8", fdh: "-8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CalculatePay(dec(tt.hours), dec(tt.fdh), dec("120"))
			assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
		})
	}
}

func TestRates(t *testing.T) {
	rates := DefaultRates()
	require.NoError(t, rates.Validate())

	got, err := rates.Pay(dec("16"))
	require.NoError(t, err)
	assertDecimal(t, "240", got.TotalAmount)
	assertDecimal(t, "15", got.HourlyRate)

	assert.Error(t, Rates{FullDayHours: dec("0"), FullDayRate: dec("120")}.Validate())
	assert.Error(t, Rates{FullDayHours: dec("8"), FullDayRate: dec("-1")}.Validate())
}

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "expected %s, got %s", want, got)
}
