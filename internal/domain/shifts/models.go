package shifts

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusSubmitted Status = "SUBMITTED"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
)

var transitions = map[Status][]Status{
	StatusSubmitted: {StatusApproved, StatusRejected},
}

// CanTransitionTo reports whether next is reachable from s. APPROVED and
// REJECTED are terminal.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s Status) IsDecision() bool {
	return s == StatusApproved || s == StatusRejected
}

var maxShiftHours = decimal.NewFromInt(24)

// hoursScale matches the NUMERIC(5,2) hours column.
const hoursScale = 2

type Submission struct {
	ID           string          `json:"id"`
	AssignmentID string          `json:"assignmentId"`
	WorkerID     string          `json:"workerId"`
	Date         time.Time       `json:"date"`
	HoursWorked  decimal.Decimal `json:"hoursWorked"`
	PhotoURIs    []string        `json:"photoUris"`
	Notes        string          `json:"notes,omitempty"`
	Status       Status          `json:"status"`
	ApprovedByID string          `json:"approvedById,omitempty"`
	ApprovedAt   *time.Time      `json:"approvedAt,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

type SubmitInput struct {
	AssignmentID string          `json:"assignmentId" validate:"required"`
	Date         time.Time       `json:"date" validate:"required"`
	HoursWorked  decimal.Decimal `json:"hoursWorked"`
	PhotoURIs    []string        `json:"photoUris" validate:"required,min=1,dive,required,url"`
	Notes        string          `json:"notes" validate:"omitempty,max=2000"`
}

type Filter struct {
	WorkerID string
	Status   Status
	Limit    int
	Offset   int
}
