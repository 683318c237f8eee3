package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// Record is written once, when its shift is approved.
type Record struct {
	ID          string          `json:"id"`
	ShiftID     string          `json:"shiftId"`
	WorkerID    string          `json:"workerId"`
	WeekStart   time.Time       `json:"weekStart"`
	WeekEnd     time.Time       `json:"weekEnd"`
	HoursWorked decimal.Decimal `json:"hoursWorked"`
	FullDayRate decimal.Decimal `json:"fullDayRate"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Entry is a record joined with the worker and job it pays for. The joined
// fields are empty when the source row is gone.
type Entry struct {
	Record
	WorkerName  string `json:"workerName"`
	WorkerEmail string `json:"workerEmail"`
	JobTitle    string `json:"jobTitle"`
	JobLocation string `json:"jobLocation"`
}

type Filter struct {
	WorkerID  string
	WeekStart *time.Time
	Limit     int
	Offset    int
}

type WorkerTotal struct {
	WorkerID    string          `json:"workerId"`
	WorkerName  string          `json:"workerName"`
	Shifts      int             `json:"shifts"`
	HoursWorked decimal.Decimal `json:"hoursWorked"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

type WeeklySummary struct {
	WeekStart   time.Time       `json:"weekStart"`
	WeekEnd     time.Time       `json:"weekEnd"`
	Workers     []WorkerTotal   `json:"workers"`
	HoursWorked decimal.Decimal `json:"hoursWorked"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}
